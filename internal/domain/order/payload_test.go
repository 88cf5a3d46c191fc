// internal/domain/order/payload_test.go
package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
)

func testBuilder() *Builder {
	return NewBuilder(config.CatalogConfig{
		PortingAddonID:   900,
		NewNumberAddonID: 901,
	})
}

func validPrivateCustomer() Customer {
	return Customer{
		Type:           "Private",
		FirstName:      "Anna",
		LastName:       "Svensson",
		IdentityNumber: "198001011234",
		Email:          "anna@example.se",
		Phone:          "070-123 45 67",
		Street:         "Storgatan 1",
		PostalCode:     "114 55",
		City:           "Stockholm",
	}
}

func broadbandCart() *cart.Cart {
	return &cart.Cart{
		SessionID: "s1",
		Items: []cart.LineItem{
			{
				ID:           1,
				Quantity:     1,
				CategoryType: catalog.CategoryBroadband,
				Config: catalog.ItemConfig{
					catalog.ConfigCityNet:   "stadsnat-1",
					catalog.ConfigServiceID: "fiber-100",
					catalog.ConfigAccessID:  "A-1",
				},
			},
		},
	}
}

func TestBuildValidPrivateOrder(t *testing.T) {
	b := testBuilder()

	payload, err := b.Build(broadbandCart(), validPrivateCustomer(), Options{
		SendInvoiceWith:  "email",
		BillingFrequency: 1,
	})
	require.NoError(t, err)
	require.Len(t, payload.ProductList, 1)

	entry := payload.ProductList[0]
	assert.Equal(t, "broadband", entry.Category)
	assert.Equal(t, "stadsnat-1", entry.CityNet)
	assert.Equal(t, "fiber-100", entry.ServiceID)
	assert.Equal(t, "A-1", entry.AccessID)

	// Phone is normalized to digits only
	assert.Equal(t, "0701234567", payload.Customer.Phone)
}

func TestBuildSwedishIdentityRules(t *testing.T) {
	b := testBuilder()

	// A 10-digit number on a private customer is rejected
	customer := validPrivateCustomer()
	customer.IdentityNumber = "8001011234"
	_, err := b.Build(broadbandCart(), customer, Options{})

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Contains(t, fieldPaths(schemaErr), "customer.identity_number")

	// The same number is a valid organization number for a company
	company := validPrivateCustomer()
	company.Type = "Company"
	company.CompanyName = "Svensson AB"
	company.IdentityNumber = "5561234567"
	_, err = b.Build(broadbandCart(), company, Options{})
	require.NoError(t, err)

	// A 12-digit number on a company customer is rejected
	company.IdentityNumber = "198001011234"
	_, err = b.Build(broadbandCart(), company, Options{})
	require.ErrorAs(t, err, &schemaErr)
	assert.Contains(t, fieldPaths(schemaErr), "customer.identity_number")
}

func TestBuildSwedishPostalCodeRule(t *testing.T) {
	b := testBuilder()

	customer := validPrivateCustomer()
	customer.PostalCode = "11"
	_, err := b.Build(broadbandCart(), customer, Options{})

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Contains(t, fieldPaths(schemaErr), "customer.postal_code")
}

func TestBuildForeignIdentityFallsBackToLengthChecks(t *testing.T) {
	b := testBuilder()

	customer := validPrivateCustomer()
	customer.IdentityNumber = "AB-12345-X"
	customer.PostalCode = "EC1A 1BB"
	_, err := b.Build(broadbandCart(), customer, Options{})
	require.NoError(t, err)

	customer.IdentityNumber = "AB1"
	_, err = b.Build(broadbandCart(), customer, Options{})
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Contains(t, fieldPaths(schemaErr), "customer.identity_number")
}

func TestBuildCompanyRequiresCompanyName(t *testing.T) {
	b := testBuilder()

	company := validPrivateCustomer()
	company.Type = "Company"
	company.IdentityNumber = "5561234567"
	_, err := b.Build(broadbandCart(), company, Options{})

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Contains(t, fieldPaths(schemaErr), "customer.company_name")
}

func TestBuildMissingCustomerFieldsArePathed(t *testing.T) {
	b := testBuilder()

	_, err := b.Build(broadbandCart(), Customer{Type: "Private"}, Options{})

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	paths := fieldPaths(schemaErr)
	assert.Contains(t, paths, "customer.first_name")
	assert.Contains(t, paths, "customer.email")
}

func TestBuildRejectsMultipleExclusiveLines(t *testing.T) {
	b := testBuilder()

	c := broadbandCart()
	second := c.Items[0]
	second.ID = 2
	second.Config = catalog.ItemConfig{
		catalog.ConfigCityNet:   "stadsnat-2",
		catalog.ConfigServiceID: "fiber-250",
		catalog.ConfigAccessID:  "B-7",
	}
	c.Items = append(c.Items, second)

	_, err := b.Build(c, validPrivateCustomer(), Options{})

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Contains(t, fieldPaths(schemaErr), "product_list")
}

func TestBuildTelephonyEntryRequiresPhoneDecision(t *testing.T) {
	b := testBuilder()

	c := &cart.Cart{
		SessionID: "s1",
		Items: []cart.LineItem{
			{ID: 1, Quantity: 1, CategoryType: catalog.CategoryTelephony, Config: catalog.ItemConfig{}},
		},
	}

	_, err := b.Build(c, validPrivateCustomer(), Options{})

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Contains(t, fieldPaths(schemaErr), "product_list[0].phone_number")
}

func TestBuildPortingAddonRequiresAuthorization(t *testing.T) {
	b := testBuilder()

	c := &cart.Cart{
		SessionID: "s1",
		Items: []cart.LineItem{
			{
				ID:           1,
				Quantity:     1,
				CategoryType: catalog.CategoryTelephony,
				Config:       catalog.ItemConfig{catalog.ConfigPhoneNumber: "0812345678"},
				Addons:       []cart.Addon{{ID: 900, Quantity: 1}},
			},
		},
	}

	_, err := b.Build(c, validPrivateCustomer(), Options{})

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Contains(t, fieldPaths(schemaErr), "product_list[0].associated_org_person_nr")
}

func TestBuildNewNumberAddonRequiresAreaCode(t *testing.T) {
	b := testBuilder()

	c := &cart.Cart{
		SessionID: "s1",
		Items: []cart.LineItem{
			{
				ID:           1,
				Quantity:     1,
				CategoryType: catalog.CategoryTelephony,
				Config:       catalog.ItemConfig{},
				Addons:       []cart.Addon{{ID: 901, Quantity: 1}},
			},
		},
	}

	_, err := b.Build(c, validPrivateCustomer(), Options{})

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Contains(t, fieldPaths(schemaErr), "product_list[0].area_code")

	// With an area code configured the addon is accepted
	c.Items[0].Config = catalog.ItemConfig{catalog.ConfigAreaCode: "08"}
	_, err = b.Build(c, validPrivateCustomer(), Options{})
	require.NoError(t, err)
}

func TestBuildMonthlyBoundEntryCarriesBound(t *testing.T) {
	b := testBuilder()

	c := &cart.Cart{
		SessionID: "s1",
		Items: []cart.LineItem{
			{
				ID:           1,
				Quantity:     1,
				CategoryType: catalog.CategoryTelephonyHardwareMonthlyBound,
				Config:       catalog.ItemConfig{catalog.ConfigBound: "24"},
			},
		},
	}

	payload, err := b.Build(c, validPrivateCustomer(), Options{})
	require.NoError(t, err)
	assert.Equal(t, "24", payload.ProductList[0].Bound)
}

func fieldPaths(err *SchemaError) []string {
	paths := make([]string, 0, len(err.Fields))
	for _, f := range err.Fields {
		paths = append(paths, f.Path)
	}
	return paths
}

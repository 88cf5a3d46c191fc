// internal/domain/order/payload.go
package order

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
)

// Customer is the identity and contact information collected at checkout
type Customer struct {
	Type           string `json:"type" validate:"required,oneof=Private Company"`
	FirstName      string `json:"first_name" validate:"required"`
	LastName       string `json:"last_name" validate:"required"`
	CompanyName    string `json:"company_name"`
	IdentityNumber string `json:"identity_number" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone" validate:"required"`
	Street         string `json:"street" validate:"required"`
	PostalCode     string `json:"postal_code" validate:"required"`
	City           string `json:"city" validate:"required"`
	Country        string `json:"country"`
}

// Options are the order-level delivery and billing choices
type Options struct {
	DesiredActivationDate string `json:"desired_activation_date"`
	SendInvoiceWith       string `json:"send_invoice_with"`
	BillingFrequency      int    `json:"billing_frequency"`
}

// Payload is the order document serialized for the external order-creation
// API. It is built fresh from the cart at submission time and never mutated.
type Payload struct {
	Customer              Customer       `json:"customer"`
	ProductList           []ProductEntry `json:"product_list"`
	DesiredActivationDate string         `json:"desired_activation_date,omitempty"`
	SendInvoiceWith       string         `json:"send_invoice_with,omitempty"`
	BillingFrequency      int            `json:"billing_frequency,omitempty"`
}

// ProductEntry is one category-shaped product line in the payload. Fields
// that do not apply to the line's category are omitted.
type ProductEntry struct {
	ID           int          `json:"id"`
	Quantity     int          `json:"quantity"`
	Category     string       `json:"category"`
	CityNet      string       `json:"city_net,omitempty"`
	ServiceID    string       `json:"service_id,omitempty"`
	AccessID     string       `json:"access_id,omitempty"`
	PhoneNumber  string       `json:"phone_number,omitempty"`
	AreaCode     string       `json:"area_code,omitempty"`
	PortingOrgNr string       `json:"associated_org_person_nr,omitempty"`
	Bound        string       `json:"bound,omitempty"`
	Addons       []AddonEntry `json:"addons,omitempty"`
}

// AddonEntry is an attached service on a payload product line
type AddonEntry struct {
	ID       int `json:"id"`
	Quantity int `json:"qty"`
}

// FieldError is one field-pathed schema violation
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// SchemaError reports that an order payload failed shape or field
// validation before submission. It is a validation result, not a runtime
// fault, and is surfaced to the user as form-level messages.
type SchemaError struct {
	Fields []FieldError `json:"fields"`
}

func (e *SchemaError) Error() string {
	if len(e.Fields) == 0 {
		return "order payload validation failed"
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Path, f.Message)
	}
	return "order payload validation failed: " + strings.Join(parts, "; ")
}

func (e *SchemaError) add(path, message string) {
	e.Fields = append(e.Fields, FieldError{Path: path, Message: message})
}

// Swedish personal numbers are 12 digits (YYYYMMDDNNNN) and organization
// numbers 10 digits. This is a format heuristic, not a checksum validation.
var swedishIdentityPattern = regexp.MustCompile(`^\d{10}(\d{2})?$`)

var (
	digitsOnly           = regexp.MustCompile(`\D`)
	swedishPostalPattern = regexp.MustCompile(`^\d{5}$`)
)

// Builder transforms a cart into a validated order payload
type Builder struct {
	catalog  config.CatalogConfig
	validate *validator.Validate
}

// NewBuilder creates an order payload builder
func NewBuilder(catalog config.CatalogConfig) *Builder {
	return &Builder{
		catalog:  catalog,
		validate: validator.New(),
	}
}

// Build maps the cart's line items into the external API's nested schema
// and validates the result. Failures come back as a *SchemaError listing
// every violated field path; the payload is only returned when it is valid.
func (b *Builder) Build(c *cart.Cart, customer Customer, options Options) (*Payload, error) {
	schemaErr := &SchemaError{}

	b.validateCustomer(customer, schemaErr)

	payload := &Payload{
		Customer:              customer,
		ProductList:           make([]ProductEntry, 0, len(c.Items)),
		DesiredActivationDate: options.DesiredActivationDate,
		SendInvoiceWith:       options.SendInvoiceWith,
		BillingFrequency:      options.BillingFrequency,
	}
	payload.Customer.Phone = normalizePhone(customer.Phone)

	counts := map[catalog.CategoryType]int{}
	for i := range c.Items {
		item := &c.Items[i]
		counts[item.CategoryType] += 1
		payload.ProductList = append(payload.ProductList, b.buildEntry(item, i, schemaErr))
	}

	for _, exclusive := range []catalog.CategoryType{catalog.CategoryBroadband, catalog.CategoryTV, catalog.CategoryTelephony} {
		if counts[exclusive] > 1 {
			schemaErr.add("product_list", fmt.Sprintf("at most one %s line is allowed", exclusive))
		}
	}

	if len(schemaErr.Fields) > 0 {
		return nil, schemaErr
	}
	return payload, nil
}

// Private helper methods

func (b *Builder) validateCustomer(customer Customer, schemaErr *SchemaError) {
	if err := b.validate.Struct(customer); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				schemaErr.add("customer."+toSnake(fe.Field()), fmt.Sprintf("failed %q validation", fe.Tag()))
			}
		} else {
			schemaErr.add("customer", err.Error())
		}
	}

	identity := digitsOnly.ReplaceAllString(customer.IdentityNumber, "")
	isCompany := customer.Type == "Company"

	if swedishIdentityPattern.MatchString(identity) {
		if isCompany && len(identity) != 10 {
			schemaErr.add("customer.identity_number", "Swedish organization numbers are 10 digits")
		}
		if !isCompany && len(identity) != 12 {
			schemaErr.add("customer.identity_number", "Swedish personal numbers are 12 digits")
		}
		if !swedishPostalPattern.MatchString(digitsOnly.ReplaceAllString(customer.PostalCode, "")) {
			schemaErr.add("customer.postal_code", "Swedish postal codes are 5 digits")
		}
	} else {
		if len(customer.IdentityNumber) < 5 {
			schemaErr.add("customer.identity_number", "identity number must be at least 5 characters")
		}
		if len(customer.PostalCode) < 3 {
			schemaErr.add("customer.postal_code", "postal code must be at least 3 characters")
		}
	}

	if isCompany && strings.TrimSpace(customer.CompanyName) == "" {
		schemaErr.add("customer.company_name", "company name is required for company customers")
	}

	if phone := normalizePhone(customer.Phone); len(phone) < 8 || len(phone) > 19 {
		schemaErr.add("customer.phone", "phone number must be 8-19 digits")
	}
}

func (b *Builder) buildEntry(item *cart.LineItem, index int, schemaErr *SchemaError) ProductEntry {
	path := fmt.Sprintf("product_list[%d]", index)

	entry := ProductEntry{
		ID:       item.ID,
		Quantity: item.Quantity,
		Category: string(item.CategoryType),
	}

	switch item.CategoryType {
	case catalog.CategoryBroadband:
		entry.CityNet = item.Config[catalog.ConfigCityNet]
		entry.ServiceID = item.Config[catalog.ConfigServiceID]
		entry.AccessID = item.Config[catalog.ConfigAccessID]

	case catalog.CategoryTV:
		entry.CityNet = item.Config[catalog.ConfigCityNet]

	case catalog.CategoryTelephony:
		entry.PhoneNumber = item.Config[catalog.ConfigPhoneNumber]
		entry.AreaCode = item.Config[catalog.ConfigAreaCode]
		entry.PortingOrgNr = item.Config[catalog.ConfigPortingOrgNr]
		if entry.PhoneNumber == "" && entry.AreaCode == "" {
			schemaErr.add(path+".phone_number", "a phone number to port or an area code is required")
		}

	case catalog.CategoryTelephonyHardwareMonthlyBound:
		entry.Bound = item.Config[catalog.ConfigBound]
	}

	for _, addon := range item.Addons {
		entry.Addons = append(entry.Addons, AddonEntry{ID: addon.ID, Quantity: addon.Quantity})
		if b.catalog.PortingAddonID != 0 && addon.ID == b.catalog.PortingAddonID && item.Config[catalog.ConfigPortingOrgNr] == "" {
			schemaErr.add(path+".associated_org_person_nr", "number porting requires a porting authorization id")
		}
		if b.catalog.NewNumberAddonID != 0 && addon.ID == b.catalog.NewNumberAddonID && item.Config[catalog.ConfigAreaCode] == "" {
			schemaErr.add(path+".area_code", "a new number requires an area code")
		}
	}

	return entry
}

func normalizePhone(phone string) string {
	return digitsOnly.ReplaceAllString(phone, "")
}

var snakePattern = regexp.MustCompile(`([a-z0-9])([A-Z])`)

func toSnake(field string) string {
	return strings.ToLower(snakePattern.ReplaceAllString(field, `${1}_${2}`))
}

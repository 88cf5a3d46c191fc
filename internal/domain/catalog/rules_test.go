// internal/domain/catalog/rules_test.go
package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBroadbandRequiredFields(t *testing.T) {
	cfg := ItemConfig{
		ConfigServiceID: "fiber-100",
		ConfigCityNet:   "stadsnat-1",
	}

	err := Validate(cfg, CategoryBroadband)
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, CategoryBroadband, validationErr.Category)
	assert.Equal(t, ConfigAccessID, validationErr.Field)

	cfg[ConfigAccessID] = "A-123"
	assert.NoError(t, Validate(cfg, CategoryBroadband))
}

func TestValidateRouterExemptFromBroadbandRules(t *testing.T) {
	// Routers live in the broadband category upstream but carry no address
	assert.NoError(t, Validate(ItemConfig{}, CategoryRouter))
}

func TestValidateTVRequiresCityNet(t *testing.T) {
	err := Validate(ItemConfig{}, CategoryTV)
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, ConfigCityNet, validationErr.Field)
}

func TestValidateTelephonyPhoneDecision(t *testing.T) {
	// Porting an existing number requires the owner's org/person number
	porting := ItemConfig{ConfigPhoneNumber: "0812345678"}
	err := Validate(porting, CategoryTelephony)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, ConfigPortingOrgNr, validationErr.Field)

	porting[ConfigPortingOrgNr] = "5561234567"
	assert.NoError(t, Validate(porting, CategoryTelephony))

	// A new number needs an area code instead
	newNumber := ItemConfig{ConfigAreaCode: "08"}
	assert.NoError(t, Validate(newNumber, CategoryTelephony))

	// Neither decision made
	err = Validate(ItemConfig{}, CategoryTelephony)
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, validationErr.Field)
	assert.NotEmpty(t, validationErr.Message)
}

func TestValidateHardwareCategoriesAreUnconstrained(t *testing.T) {
	assert.NoError(t, Validate(ItemConfig{}, CategoryTVHardware))
	assert.NoError(t, Validate(ItemConfig{}, CategoryTelephonyHardware))
	assert.NoError(t, Validate(ItemConfig{}, CategoryTelephonyHardwareMonthlyBound))
	assert.NoError(t, Validate(ItemConfig{}, CategoryStandard))
}

func TestRuleForUnknownTypeIsPermissive(t *testing.T) {
	rule := RuleFor(CategoryType("something-new"))
	assert.Equal(t, ExclusivityNone, rule.Exclusivity)
	assert.Empty(t, rule.RequiredFields)
	assert.False(t, rule.FixedQuantity)
}

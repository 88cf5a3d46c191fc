// internal/domain/catalog/rules.go
package catalog

import (
	"fmt"
)

// Exclusivity describes how many items of a category type a cart may hold
type Exclusivity string

const (
	// ExclusivityNone allows any number of items of the category
	ExclusivityNone Exclusivity = "none"
	// ExclusivityPerAddress allows one item per distinct address key
	ExclusivityPerAddress Exclusivity = "per-address"
	// ExclusivityPerCategory allows one item of the category in total
	ExclusivityPerCategory Exclusivity = "per-category"
)

// ItemConfig is the free-form per-category configuration carried on a cart
// line item: address fields, city network, phone number decision, hardware
// type and the like.
type ItemConfig map[string]string

// Well-known ItemConfig keys
const (
	ConfigServiceID    = "serviceId"
	ConfigAccessID     = "accessId"
	ConfigCityNet      = "cityNet"
	ConfigPhoneNumber  = "phoneNumber"
	ConfigAreaCode     = "areaCode"
	ConfigPortingOrgNr = "associatedOrgPersonNr"
	ConfigHardwareType = "hardwareType"
	ConfigBound        = "bound"
)

// Rule declares the cart semantics of one category type
type Rule struct {
	Exclusivity    Exclusivity
	RequiredFields []string
	FixedQuantity  bool // quantity pinned at 1, no stacking
}

var ruleTable = map[CategoryType]Rule{
	CategoryBroadband: {
		Exclusivity:    ExclusivityPerAddress,
		RequiredFields: []string{ConfigServiceID, ConfigAccessID, ConfigCityNet},
		FixedQuantity:  true,
	},
	CategoryTV: {
		Exclusivity:    ExclusivityPerCategory,
		RequiredFields: []string{ConfigCityNet},
		FixedQuantity:  true,
	},
	CategoryTVHardware: {
		Exclusivity: ExclusivityNone,
	},
	CategoryTelephony: {
		// Phone number decision is validated separately since it is an
		// either/or rule, not a plain required field.
		Exclusivity:   ExclusivityPerCategory,
		FixedQuantity: true,
	},
	CategoryTelephonyHardware: {
		Exclusivity: ExclusivityNone,
	},
	CategoryTelephonyHardwareMonthlyBound: {
		// The bound contract length only affects pricing and display
		Exclusivity: ExclusivityNone,
	},
	CategoryRouter: {
		// Routers share the broadband category id upstream but are exempt
		// from its per-address exclusivity and required fields
		Exclusivity: ExclusivityNone,
	},
	CategoryStandard: {
		Exclusivity: ExclusivityNone,
	},
}

// RuleFor returns the cart rule for a category type. Unknown types get the
// permissive standard rule.
func RuleFor(ct CategoryType) Rule {
	if rule, ok := ruleTable[ct]; ok {
		return rule
	}
	return ruleTable[CategoryStandard]
}

// ValidationError reports a category rule violation at add-to-cart time
type ValidationError struct {
	Category CategoryType
	Field    string
	Message  string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: missing required field %q", e.Category, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// Validate checks an item configuration against its category's rule. It
// returns a *ValidationError naming the missing field, or nil.
func Validate(cfg ItemConfig, ct CategoryType) error {
	rule := RuleFor(ct)

	for _, field := range rule.RequiredFields {
		if cfg[field] == "" {
			return &ValidationError{Category: ct, Field: field}
		}
	}

	if ct == CategoryTelephony {
		return validatePhoneDecision(cfg)
	}

	return nil
}

// validatePhoneDecision enforces the telephony either/or rule: port an
// existing number (which needs the owner's org/person number for the porting
// authorization) or request a new one by area code.
func validatePhoneDecision(cfg ItemConfig) error {
	if cfg[ConfigPhoneNumber] != "" {
		if cfg[ConfigPortingOrgNr] == "" {
			return &ValidationError{Category: CategoryTelephony, Field: ConfigPortingOrgNr}
		}
		return nil
	}

	if cfg[ConfigAreaCode] != "" {
		return nil
	}

	return &ValidationError{
		Category: CategoryTelephony,
		Message:  "a phone number to port or an area code for a new number is required",
	}
}

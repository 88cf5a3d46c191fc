// internal/domain/catalog/classifier.go
package catalog

import (
	"strings"

	"github.com/your-org/storefront-backend/internal/config"
)

// Classifier determines the category type of a provider product. It is built
// once from configuration; classification itself is a pure function of the
// product's id and category.
type Classifier struct {
	catalog      config.CatalogConfig
	routers      map[int]bool
	tvServices   map[int]bool
	telServices  map[int]bool
	monthlyBound map[int]bool
}

// NewClassifier creates a classifier from catalog configuration
func NewClassifier(catalog config.CatalogConfig) *Classifier {
	return &Classifier{
		catalog:      catalog,
		routers:      toSet(catalog.RouterProductIDs),
		tvServices:   toSet(catalog.TVServiceIDs),
		telServices:  toSet(catalog.TelephonyServiceIDs),
		monthlyBound: toSet(catalog.MonthlyBoundIDs),
	}
}

// Classify returns the category type for a product. Router detection runs
// first: a router SKU is filed under the broadband category upstream, so id
// membership must beat the category name. Unknown products fall back to
// CategoryStandard rather than failing.
func (c *Classifier) Classify(p *Product) CategoryType {
	if c.routers[p.ID] {
		return CategoryRouter
	}

	switch {
	case p.CategoryID == c.catalog.BroadbandCategoryID || categoryNameIs(p.CategoryName, "bredband"):
		return CategoryBroadband

	case p.CategoryID == c.catalog.TVCategoryID || categoryNameIs(p.CategoryName, "tv"):
		if c.tvServices[p.ID] {
			return CategoryTV
		}
		return CategoryTVHardware

	case p.CategoryID == c.catalog.TelephonyCategoryID || categoryNameIs(p.CategoryName, "telefoni"):
		if c.telServices[p.ID] {
			return CategoryTelephony
		}
		if c.monthlyBound[p.ID] {
			return CategoryTelephonyHardwareMonthlyBound
		}
		return CategoryTelephonyHardware
	}

	return CategoryStandard
}

func categoryNameIs(name, want string) bool {
	return strings.EqualFold(strings.TrimSpace(name), want)
}

func toSet(ids []int) map[int]bool {
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

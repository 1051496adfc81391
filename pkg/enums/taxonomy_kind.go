package enums

import "fmt"

// TaxonomyKind distinguishes the two levels of the catalog tree.
type TaxonomyKind string

const (
	TaxonomyKindCategory    TaxonomyKind = "category"
	TaxonomyKindSubcategory TaxonomyKind = "subcategory"
)

var validTaxonomyKinds = []TaxonomyKind{
	TaxonomyKindCategory,
	TaxonomyKindSubcategory,
}

func (k TaxonomyKind) String() string {
	return string(k)
}

func (k TaxonomyKind) IsValid() bool {
	for _, candidate := range validTaxonomyKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

func ParseTaxonomyKind(value string) (TaxonomyKind, error) {
	for _, candidate := range validTaxonomyKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid taxonomy kind %q", value)
}

package entity

import "time"

// Categorías del catálogo configurable.
const (
	ConfigProductType = "product_type"
	ConfigColor       = "color"
	ConfigSize        = "size"
	ConfigNeckType    = "neck_type"
)

// ConfigCategories categorías válidas de product_config.
var ConfigCategories = []string{ConfigProductType, ConfigColor, ConfigSize, ConfigNeckType}

// ProductConfig entrada del catálogo administrado por el gerente.
type ProductConfig struct {
	ID        string
	Category  string
	Value     string
	SortOrder int
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidConfigCategory indica si c es una categoría soportada.
func ValidConfigCategory(c string) bool {
	for _, v := range ConfigCategories {
		if v == c {
			return true
		}
	}
	return false
}

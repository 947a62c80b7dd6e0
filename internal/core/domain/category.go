package domain

import (
	"fmt"
	"strings"
)

// Category is a support category a donation is earmarked for.
type Category string

const (
	CategoryHousing   Category = "HOUSING"
	CategoryTransport Category = "TRANSPORT"
	CategoryTech      Category = "TECH"
)

// Categories lists the canonical categories in display order.
var Categories = []Category{CategoryHousing, CategoryTransport, CategoryTech}

// categoryAliases is the single mapping from accepted labels to canonical
// categories. WELLNESS is a legacy label folded into HOUSING; stored rows
// always carry the canonical value.
var categoryAliases = map[string]Category{
	"HOUSING":   CategoryHousing,
	"TRANSPORT": CategoryTransport,
	"TECH":      CategoryTech,
	"WELLNESS":  CategoryHousing,
}

// ParseCategory resolves a label (case-insensitive, aliases allowed) to its
// canonical category.
func ParseCategory(raw string) (Category, error) {
	c, ok := categoryAliases[strings.ToUpper(strings.TrimSpace(raw))]
	if !ok {
		return "", fmt.Errorf("unknown category %q", raw)
	}
	return c, nil
}

// IsValid reports whether c is one of the canonical categories.
func (c Category) IsValid() bool {
	switch c {
	case CategoryHousing, CategoryTransport, CategoryTech:
		return true
	}
	return false
}

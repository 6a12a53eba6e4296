package models

import "strings"

// Category groups services and portfolio works by audience.
type Category string

const (
	CategoryChild     Category = "Детский"
	CategoryAdult     Category = "Взрослый"
	CategoryCorporate Category = "Корпоративный"
)

// Categories lists the canonical categories in display order.
var Categories = []Category{CategoryChild, CategoryAdult, CategoryCorporate}

var categoryAliases = map[string]Category{
	"детский":       CategoryChild,
	"child":         CategoryChild,
	"kids":          CategoryChild,
	"взрослый":      CategoryAdult,
	"adult":         CategoryAdult,
	"корпоратив":    CategoryCorporate,
	"корпоративный": CategoryCorporate,
	"corporate":     CategoryCorporate,
}

// ParseCategory normalizes a user supplied category, case-insensitively.
// Older rows written as "детский" or "корпоратив" resolve to the same value.
func ParseCategory(raw string) (Category, bool) {
	c, ok := categoryAliases[strings.ToLower(strings.TrimSpace(raw))]
	return c, ok
}

// Slug is the URL form used by the catalog filter.
func (c Category) Slug() string {
	switch c {
	case CategoryChild:
		return "child"
	case CategoryAdult:
		return "adult"
	case CategoryCorporate:
		return "corporate"
	}
	return ""
}

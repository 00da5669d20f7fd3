package persistence

import (
	"strings"
)

// sortSpec maps the sort keys accepted by the API to real columns. Keys that
// are not listed fall back to the default column, so request input never
// reaches ORDER BY verbatim.
type sortSpec struct {
	columns  map[string]string
	fallback string
}

var carSort = sortSpec{
	fallback: "created_at",
	columns: map[string]string{
		"created_at":   "created_at",
		"updated_at":   "updated_at",
		"price":        "public_price",
		"public_price": "public_price",
		"year":         "year",
		"mileage":      "mileage",
		"make":         "make",
		"model":        "model",
	},
}

var leadSort = sortSpec{
	fallback: "created_at",
	columns: map[string]string{
		"created_at":    "created_at",
		"updated_at":    "updated_at",
		"status":        "status",
		"customer_name": "customer_name",
		"claimed_at":    "claimed_at",
	},
}

var reviewSort = sortSpec{
	fallback: "created_at",
	columns: map[string]string{
		"created_at": "created_at",
		"rating":     "rating",
	},
}

func (s sortSpec) column(key string) string {
	if col, ok := s.columns[strings.ToLower(strings.TrimSpace(key))]; ok {
		return col
	}
	return s.fallback
}

// orderBy returns the ORDER BY clause with id as tie-breaker so pages are stable
func (s sortSpec) orderBy(key, dir string) string {
	return s.column(key) + " " + sortDirection(dir) + ", id ASC"
}

// sortDirection normalizes dir to ASC or DESC, defaulting to newest first
func sortDirection(dir string) string {
	if strings.EqualFold(strings.TrimSpace(dir), "asc") {
		return "ASC"
	}
	return "DESC"
}

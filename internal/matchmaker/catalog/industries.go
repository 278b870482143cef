package catalog

import (
	"sort"
	"strings"

	"github.com/gartstein/matchmaker/internal/matchmaker/models"
)

var industryDisplayNames = map[string]string{
	"fintech":            "FinTech",
	"banking":            "Banking",
	"ecommerce":          "E-Commerce",
	"foodtech":           "FoodTech",
	"hrtech":             "HRTech",
	"consulting":         "Consulting",
	"telecommunications": "Telecommunications",
	"mining":             "Mining",
	"retail":             "Retail",
}

// Industries lists each distinct industry with its company count, sorted by
// display name. Industries without a display name keep the first spelling seen.
func (c *Catalog) Industries() []models.Industry {
	byKey := make(map[string]*models.Industry)
	var order []string
	for _, company := range c.snapshot() {
		key := industryKey(company.Industry)
		if key == "" {
			continue
		}
		ind, ok := byKey[key]
		if !ok {
			name, known := industryDisplayNames[key]
			if !known {
				name = strings.TrimSpace(company.Industry)
			}
			ind = &models.Industry{ID: key, Name: name}
			byKey[key] = ind
			order = append(order, key)
		}
		ind.Count++
	}

	out := make([]models.Industry, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// DisplayName returns the display name of an industry slug.
func DisplayName(industry string) string {
	if name, ok := industryDisplayNames[industryKey(industry)]; ok {
		return name
	}
	return industry
}

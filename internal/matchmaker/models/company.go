// Package models defines the core domain models of the matchmaker: companies,
// job-seeker profiles and the recommendation results derived from them.
package models

import "strings"

// CompanySize represents the headcount bracket of a company.
type CompanySize string

const (
	SizeStartup CompanySize = "startup"
	SizeMedium  CompanySize = "medium"
	SizeLarge   CompanySize = "large"
)

// ParseCompanySize lowercases s and reports whether it names a known size.
func ParseCompanySize(s string) (CompanySize, bool) {
	size := CompanySize(strings.ToLower(strings.TrimSpace(s)))
	switch size {
	case SizeStartup, SizeMedium, SizeLarge:
		return size, true
	default:
		return size, false
	}
}

// Company defines the domain model for a company in the catalog.
type Company struct {
	// ID has the form <industry-slug>-<sequence>.
	ID string `json:"id" yaml:"id"`
	// Name is the company's display name.
	Name string `json:"name" yaml:"name"`
	// Logo is an image URL.
	Logo string `json:"logo,omitempty" yaml:"logo,omitempty"`
	// Description provides details about the company.
	Description string `json:"description" yaml:"description"`
	// Industry is title-cased on creation, e.g. "Fintech".
	Industry string `json:"industry" yaml:"industry"`
	// Size is the headcount bracket.
	Size CompanySize `json:"size" yaml:"size"`
	// Location is a free-text city or region.
	Location string `json:"location" yaml:"location"`
	// Culture lists culture-value labels.
	Culture []string `json:"culture" yaml:"culture"`
	// Benefits lists benefit labels.
	Benefits []string `json:"benefits" yaml:"benefits"`
	// OpenPositions lists role titles.
	OpenPositions []string `json:"openPositions" yaml:"openPositions"`
	// Rating is within [1.0, 5.0].
	Rating float64 `json:"rating" yaml:"rating"`
	// Website is the company homepage.
	Website string `json:"website" yaml:"website"`
	// Tags lists interest keywords used for interest matching.
	Tags []string `json:"tags" yaml:"tags"`
}

// DefaultRating applies to companies stored without a rating.
const DefaultRating = 4.0

// Normalize replaces nil label slices with empty ones so the record always
// serializes with [] instead of null, and fills in a missing rating.
func (c *Company) Normalize() {
	if c.Rating == 0 {
		c.Rating = DefaultRating
	}
	if c.Culture == nil {
		c.Culture = []string{}
	}
	if c.Benefits == nil {
		c.Benefits = []string{}
	}
	if c.OpenPositions == nil {
		c.OpenPositions = []string{}
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
}

// CompanyInput holds the caller-supplied fields for creating a company.
// Optional fields are left at their zero value when absent.
type CompanyInput struct {
	Name          string   `json:"name"`
	Logo          string   `json:"logo"`
	Description   string   `json:"description"`
	Industry      string   `json:"industry"`
	Size          string   `json:"size"`
	Location      string   `json:"location"`
	Culture       []string `json:"culture"`
	Benefits      []string `json:"benefits"`
	OpenPositions []string `json:"openPositions"`
	Rating        *float64 `json:"rating"`
	Website       string   `json:"website"`
	Tags          []string `json:"tags"`
}

// Industry summarizes one industry of the catalog.
type Industry struct {
	// ID is the lowercase industry slug.
	ID string `json:"id"`
	// Name is the display name.
	Name  string `json:"name"`
	Count int    `json:"count"`
}

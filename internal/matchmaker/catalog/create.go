package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	e "github.com/gartstein/matchmaker/internal/matchmaker/errors"
	"github.com/gartstein/matchmaker/internal/matchmaker/models"
	"go.uber.org/zap"
)

const (
	DefaultRating = models.DefaultRating
	MinRating     = 1.0
	MaxRating     = 5.0

	defaultLogo = "https://images.unsplash.com/photo-1560472355-536de3962603?w=100&h=100&fit=crop&crop=center"
)

// RecognizedIndustries lists the industries open to new companies. It is
// narrower than the set of shards that may exist in the store.
var RecognizedIndustries = []string{
	"fintech", "banking", "ecommerce", "foodtech",
	"hrtech", "consulting", "telecommunications",
	"mining", "retail",
}

// Create validates input, assigns the next id within its industry, persists
// the company to the industry shard and then publishes it to readers. The
// catalog is unchanged when any step fails.
func (c *Catalog) Create(ctx context.Context, input *models.CompanyInput) (models.Company, error) {
	if input == nil {
		return models.Company{}, fmt.Errorf("%w: company data required", e.ErrValidation)
	}
	if err := validate(input); err != nil {
		return models.Company{}, err
	}
	size, _ := models.ParseCompanySize(input.Size)
	slug := industryKey(input.Industry)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	current := c.snapshot()
	count := 0
	for _, existing := range current {
		if industryKey(existing.Industry) == slug {
			count++
		}
	}

	name := strings.TrimSpace(input.Name)
	company := models.Company{
		ID:            fmt.Sprintf("%s-%d", slug, count+1),
		Name:          name,
		Logo:          orDefault(input.Logo, defaultLogo),
		Description:   strings.TrimSpace(input.Description),
		Industry:      titleCase(slug),
		Size:          size,
		Location:      strings.TrimSpace(input.Location),
		Culture:       labels(input.Culture),
		Benefits:      labels(input.Benefits),
		OpenPositions: labels(input.OpenPositions),
		Rating:        DefaultRating,
		Website:       orDefault(input.Website, defaultWebsite(name)),
		Tags:          labels(input.Tags),
	}
	if input.Rating != nil {
		company.Rating = *input.Rating
	}

	if err := c.store.AppendCompany(ctx, slug, &company); err != nil {
		return models.Company{}, fmt.Errorf("failed to persist company: %w", err)
	}
	c.swap(append(slices.Clone(current), company))

	c.logger.Info("Company created",
		zap.String("company_id", company.ID),
		zap.String("industry", company.Industry),
	)
	return company, nil
}

func validate(input *models.CompanyInput) error {
	required := []struct {
		field string
		value string
	}{
		{"name", input.Name},
		{"description", input.Description},
		{"industry", input.Industry},
		{"size", input.Size},
		{"location", input.Location},
	}
	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.field)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: required fields: name, description, industry, size, location (missing %s)",
			e.ErrValidation, strings.Join(missing, ", "))
	}

	if !slices.Contains(RecognizedIndustries, industryKey(input.Industry)) {
		return fmt.Errorf("%w: invalid industry %q, valid options: %s",
			e.ErrValidation, input.Industry, strings.Join(RecognizedIndustries, ", "))
	}
	if _, ok := models.ParseCompanySize(input.Size); !ok {
		return fmt.Errorf("%w: invalid size %q, valid options: startup, medium, large", e.ErrValidation, input.Size)
	}
	if input.Rating != nil && (*input.Rating < MinRating || *input.Rating > MaxRating) {
		return fmt.Errorf("%w: rating must be between %.1f and %.1f", e.ErrValidation, MinRating, MaxRating)
	}
	return nil
}

// titleCase upper-cases the first letter and lower-cases the rest.
func titleCase(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func defaultWebsite(name string) string {
	compact := strings.Join(strings.Fields(strings.ToLower(name)), "")
	return "https://" + compact + ".com"
}

// labels trims every entry and drops blanks. The result is never nil.
func labels(in []string) []string {
	out := make([]string, 0, len(in))
	for _, l := range in {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}

package scoring

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gartstein/matchmaker/internal/matchmaker/models"
)

const fallbackReason = "Company with good opportunities"

// Reasons explains which criteria matched. It has no effect on the score.
func Reasons(profile *models.UserProfile, company *models.Company) []string {
	if profile == nil || company == nil {
		return []string{fallbackReason}
	}

	var reasons []string
	if matched := matchedInterests(profile.Interests, company.Tags); len(matched) > 0 {
		reasons = append(reasons, fmt.Sprintf("Shares your interests: %s", strings.Join(matched, ", ")))
	}
	if c := profile.CompanyPreferences.Culture; c != "" && slices.Contains(company.Culture, c) {
		reasons = append(reasons, fmt.Sprintf("Culture alignment: %s", c))
	}
	if b := profile.CompanyPreferences.Benefits; b != "" && slices.Contains(company.Benefits, b) {
		reasons = append(reasons, fmt.Sprintf("Offers the benefit you want: %s", b))
	}

	if len(reasons) == 0 {
		reasons = append(reasons, fallbackReason)
	}
	return reasons
}

// matchedInterests returns the distinct interests found in tags, in profile order.
func matchedInterests(interests, tags []string) []string {
	var out []string
	for _, interest := range interests {
		if slices.Contains(tags, interest) && !slices.Contains(out, interest) {
			out = append(out, interest)
		}
	}
	return out
}

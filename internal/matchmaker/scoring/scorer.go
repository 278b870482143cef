// Package scoring computes the match score between a job-seeker profile and a
// company. Scores are deterministic: five weighted factors are summed, rounded,
// and clamped to [MinScore, MaxScore].
package scoring

import (
	"math"
	"slices"

	"github.com/gartstein/matchmaker/internal/matchmaker/models"
)

// Factor maxima. They sum to 100.
const (
	InterestWeight     = 40.0
	SizeWeight         = 20.0
	CultureWeight      = 20.0
	BenefitsWeight     = 15.0
	WorkLocationWeight = 5.0

	sizeNearMediumCredit  = 12.0
	sizeNearStartupCredit = 10.0
	culturePartialCredit  = 10.0
	officeCredit          = 3.0
)

const (
	MinScore = 65
	MaxScore = 100
)

// Breakdown holds the raw contribution of each factor before rounding.
type Breakdown struct {
	Interests    float64
	Size         float64
	Culture      float64
	Benefits     float64
	WorkLocation float64
}

// Total is the unclamped sum of all factors.
func (b Breakdown) Total() float64 {
	return b.Interests + b.Size + b.Culture + b.Benefits + b.WorkLocation
}

// Scorer scores profiles against companies.
type Scorer struct{}

// NewScorer returns a Scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score returns the clamped percentage and the reasons explaining it.
func (s *Scorer) Score(profile *models.UserProfile, company *models.Company) (int, []string) {
	return Clamp(s.Breakdown(profile, company).Total()), Reasons(profile, company)
}

// Breakdown computes each factor's contribution. Missing preferences
// contribute zero.
func (s *Scorer) Breakdown(profile *models.UserProfile, company *models.Company) Breakdown {
	if profile == nil || company == nil {
		return Breakdown{}
	}
	return Breakdown{
		Interests:    interestScore(profile.Interests, company.Tags),
		Size:         sizeScore(profile.CompanyPreferences.Size, company.Size),
		Culture:      cultureScore(profile.CompanyPreferences.Culture, company.Culture),
		Benefits:     benefitScore(profile.CompanyPreferences.Benefits, company.Benefits),
		WorkLocation: workLocationScore(profile.WorkPreferences.Location, company.Benefits),
	}
}

// Clamp rounds raw half away from zero and bounds it to [MinScore, MaxScore].
func Clamp(raw float64) int {
	score := int(math.Round(raw))
	return max(MinScore, min(MaxScore, score))
}

func interestScore(interests, tags []string) float64 {
	if len(interests) == 0 || len(tags) == 0 {
		return 0
	}
	matched := 0
	for _, interest := range interests {
		if slices.Contains(tags, interest) {
			matched++
		}
	}
	return float64(matched) / float64(len(interests)) * InterestWeight
}

func sizeScore(want, got models.CompanySize) float64 {
	switch {
	case want == "":
		return 0
	case want == got:
		return SizeWeight
	case want == models.SizeMedium && (got == models.SizeStartup || got == models.SizeLarge):
		return sizeNearMediumCredit
	case want == models.SizeStartup && got == models.SizeMedium:
		return sizeNearStartupCredit
	default:
		return 0
	}
}

func cultureScore(priority string, culture []string) float64 {
	if priority == "" || len(culture) == 0 {
		return 0
	}
	if slices.Contains(culture, priority) {
		return CultureWeight
	}
	for _, alt := range cultureCompatibility[priority] {
		if slices.Contains(culture, alt) {
			return culturePartialCredit
		}
	}
	return 0
}

func benefitScore(priority string, benefits []string) float64 {
	if priority != "" && slices.Contains(benefits, priority) {
		return BenefitsWeight
	}
	return 0
}

func workLocationScore(location models.WorkLocation, benefits []string) float64 {
	switch location {
	case models.WorkRemote:
		if slices.Contains(benefits, LabelRemoteWork) {
			return WorkLocationWeight
		}
	case models.WorkHybrid:
		if slices.Contains(benefits, LabelRemoteWork) || slices.Contains(benefits, LabelFlexibleHours) {
			return WorkLocationWeight
		}
	case models.WorkOffice:
		// Office work is assumed available everywhere.
		return officeCredit
	}
	return 0
}

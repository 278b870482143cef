// Package recommend ranks catalog companies for a profile and summarizes the
// ranked set.
package recommend

import (
	"fmt"
	"math"
	"slices"

	e "github.com/gartstein/matchmaker/internal/matchmaker/errors"
	"github.com/gartstein/matchmaker/internal/matchmaker/models"
)

const (
	// DefaultLimit is used by callers that omit a limit.
	DefaultLimit = 8
	// StrongMatchThreshold is the score from which a match counts as strong.
	StrongMatchThreshold = 80
)

// MatchScorer scores a single profile/company pair.
type MatchScorer interface {
	Score(profile *models.UserProfile, company *models.Company) (int, []string)
}

// Engine orchestrates scoring, ranking, truncation and statistics.
type Engine struct {
	scorer MatchScorer
}

// NewEngine constructs an Engine around scorer.
func NewEngine(scorer MatchScorer) *Engine {
	return &Engine{scorer: scorer}
}

// Generate scores every company, sorts by score descending keeping catalog
// order among equal scores, and keeps the first limit entries. limit must be
// positive.
func (en *Engine) Generate(profile *models.UserProfile, companies []models.Company, limit int) (*models.RecommendationResult, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be a positive integer, got %d", e.ErrValidation, limit)
	}
	if profile == nil {
		profile = &models.UserProfile{}
	}

	scored := make([]models.ScoredCompany, 0, len(companies))
	for i := range companies {
		score, reasons := en.scorer.Score(profile, &companies[i])
		scored = append(scored, models.ScoredCompany{
			Company:      companies[i],
			MatchScore:   score,
			MatchReasons: reasons,
		})
	}

	slices.SortStableFunc(scored, func(a, b models.ScoredCompany) int {
		return b.MatchScore - a.MatchScore
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}

	return &models.RecommendationResult{
		Recommendations: scored,
		Stats:           summarize(profile, scored, len(companies)),
	}, nil
}

func summarize(profile *models.UserProfile, top []models.ScoredCompany, total int) models.RecommendationStats {
	stats := models.RecommendationStats{
		TotalCompanies:       total,
		RecommendedCompanies: len(top),
		UserInterests:        []string{},
		Industries:           []string{},
	}
	if profile.Interests != nil {
		stats.UserInterests = profile.Interests
	}
	if len(top) == 0 {
		return stats
	}

	sum := 0
	seen := make(map[string]struct{}, len(top))
	for _, c := range top {
		sum += c.MatchScore
		stats.TopMatch = max(stats.TopMatch, c.MatchScore)
		if c.MatchScore >= StrongMatchThreshold {
			stats.StrongMatches++
		}
		if _, ok := seen[c.Industry]; !ok {
			seen[c.Industry] = struct{}{}
			stats.Industries = append(stats.Industries, c.Industry)
		}
	}
	stats.AverageMatch = int(math.Round(float64(sum) / float64(len(top))))
	return stats
}

// ParseLimit resolves an optional caller-supplied limit.
func ParseLimit(limit *int) (int, error) {
	if limit == nil {
		return DefaultLimit, nil
	}
	if *limit <= 0 {
		return 0, fmt.Errorf("%w: limit must be a positive integer, got %d", e.ErrValidation, *limit)
	}
	return *limit, nil
}

package models

// ScoredCompany is a Company annotated with its match score for one profile.
type ScoredCompany struct {
	Company
	MatchScore   int      `json:"matchScore"`
	MatchReasons []string `json:"matchReasons,omitempty"`
}

// RecommendationStats summarizes the returned recommendations only.
type RecommendationStats struct {
	TotalCompanies       int      `json:"totalCompanies"`
	RecommendedCompanies int      `json:"recommendedCompanies"`
	AverageMatch         int      `json:"averageMatch"`
	TopMatch             int      `json:"topMatch"`
	StrongMatches        int      `json:"strongMatches"`
	UserInterests        []string `json:"userInterests"`
	Industries           []string `json:"industries"`
}

// RecommendationResult is the ranked output of the recommendation engine.
type RecommendationResult struct {
	Recommendations []ScoredCompany     `json:"recommendations"`
	Stats           RecommendationStats `json:"stats"`
}

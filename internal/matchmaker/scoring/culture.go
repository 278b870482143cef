package scoring

// Culture and benefit labels as they appear in the catalog shards.
const (
	CultureInnovation  = "Innovation & Technology"
	CultureWorkLifeBal = "Work-Life Balance"
	CultureGrowth      = "Professional Growth"
	CultureTeamwork    = "Teamwork"
	CultureAutonomy    = "Autonomy"
	CultureDiversity   = "Diversity & Inclusion"
	CultureMentorship  = "Mentorship"
	CultureTraining    = "Training"
	LabelFlexibleHours = "Flexible Hours"
	LabelRemoteWork    = "Remote Work"
)

// cultureCompatibility maps a stated culture priority to the labels that earn
// partial credit. Lookups go one way only: priority to alternates.
var cultureCompatibility = map[string][]string{
	CultureInnovation:  {CultureWorkLifeBal, CultureAutonomy, CultureGrowth},
	CultureWorkLifeBal: {LabelFlexibleHours, CultureAutonomy, LabelRemoteWork},
	CultureGrowth:      {CultureInnovation, CultureMentorship, CultureTraining},
	CultureTeamwork:    {CultureDiversity, CultureGrowth},
	CultureAutonomy:    {CultureWorkLifeBal, CultureInnovation},
}

// CompatibleCultures returns the alternates accepted for priority, or nil.
func CompatibleCultures(priority string) []string {
	alts := cultureCompatibility[priority]
	if alts == nil {
		return nil
	}
	out := make([]string, len(alts))
	copy(out, alts)
	return out
}

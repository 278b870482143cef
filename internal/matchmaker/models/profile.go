package models

// WorkLocation is the preferred work arrangement of a job seeker.
type WorkLocation string

const (
	WorkRemote WorkLocation = "remote"
	WorkHybrid WorkLocation = "hybrid"
	WorkOffice WorkLocation = "office"
)

// UserProfile is submitted with each recommendation request and never stored.
// Empty fields mean "no preference".
type UserProfile struct {
	PersonalInfo       PersonalInfo       `json:"personalInfo"`
	Interests          []string           `json:"interests"`
	CompanyPreferences CompanyPreferences `json:"companyPreferences"`
	WorkPreferences    WorkPreferences    `json:"workPreferences"`
}

// PersonalInfo is collected during onboarding. It does not affect scoring.
type PersonalInfo struct {
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	Career     string `json:"career,omitempty"`
	Semester   string `json:"semester,omitempty"`
	University string `json:"university,omitempty"`
}

// CompanyPreferences holds the single top priority per factor.
type CompanyPreferences struct {
	Size     CompanySize `json:"size,omitempty"`
	Culture  string      `json:"culture,omitempty"`
	Benefits string      `json:"benefits,omitempty"`
}

// WorkPreferences holds work arrangement preferences. Only Location is scored.
type WorkPreferences struct {
	Location WorkLocation `json:"location,omitempty"`
	Schedule string       `json:"schedule,omitempty"`
	Salary   string       `json:"salary,omitempty"`
}

package model

// Employer is the hiring organization attached to a vacancy.
type Employer struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// VacancySalary is the advertised salary range, if any.
type VacancySalary struct {
	From     *int   `json:"from,omitempty"`
	To       *int   `json:"to,omitempty"`
	Currency string `json:"currency,omitempty"`
	Gross    bool   `json:"gross,omitempty"`
}

// Vacancy is a job posting returned by the external API for a search.
// Vacancies are transient; they are fetched fresh on every poll cycle and
// never persisted as their own entity.
type Vacancy struct {
	ID                     string         `json:"id"`
	Name                   string         `json:"name"`
	Employer               Employer       `json:"employer"`
	Salary                 *VacancySalary `json:"salary,omitempty"`
	AlternateURL           string         `json:"alternate_url,omitempty"`
	ApplyAlternateURL      string         `json:"apply_alternate_url,omitempty"`
	ResponseLetterRequired bool           `json:"response_letter_required,omitempty"`
	PublishedAt            string         `json:"published_at,omitempty"`
	Archived               bool           `json:"archived,omitempty"`
	Premium                bool           `json:"premium,omitempty"`
}

// EmployerName returns the employer name or a placeholder for vacancies
// published without one.
func (v *Vacancy) EmployerName() string {
	if v.Employer.Name == "" {
		return "unknown employer"
	}
	return v.Employer.Name
}

// VacancyPage is one page of search results in external-API response order.
type VacancyPage struct {
	Items   []Vacancy `json:"items"`
	Found   int       `json:"found"`
	Pages   int       `json:"pages"`
	Page    int       `json:"page"`
	PerPage int       `json:"per_page"`
}

// Resume is one resume owned by the authenticated user.
type Resume struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ResumeList is the external API's resume listing payload.
type ResumeList struct {
	Items []Resume `json:"items"`
}

// ApplyResultStatus distinguishes the two accepted submission outcomes.
type ApplyResultStatus string

const (
	// ApplyResultSuccess means the application was created on the platform.
	ApplyResultSuccess ApplyResultStatus = "success"
	// ApplyResultExternal means the applicant is redirected to an outside
	// site; the submission still counts as sent from this system's view.
	ApplyResultExternal ApplyResultStatus = "external"
)

// ApplyResult is the gateway's view of an accepted submission.
type ApplyResult struct {
	ID       string            `json:"id"`
	Status   ApplyResultStatus `json:"status"`
	Location string            `json:"location,omitempty"`
}

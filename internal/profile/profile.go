package profile

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
)

// Section keys of the resume document. LLM section classification resolves to
// one of these (or "cover_letter", which has no resume section).
const (
	SectionPersonalInformation = "personal_information"
	SectionSelfIdentification  = "self_identification"
	SectionLegalAuthorization  = "legal_authorization"
	SectionWorkPreferences     = "work_preferences"
	SectionEducationDetails    = "education_details"
	SectionExperienceDetails   = "experience_details"
	SectionProjects            = "projects"
	SectionAchievements        = "achievements"
	SectionAvailability        = "availability"
	SectionSalaryExpectations  = "salary_expectations"
	SectionCertifications      = "certifications"
	SectionLanguages           = "languages"
	SectionInterests           = "interests"
	SectionCoverLetter         = "cover_letter"
)

// requiredSections must all be present in the resume file.
var requiredSections = []string{
	SectionPersonalInformation,
	SectionSelfIdentification,
	SectionLegalAuthorization,
	SectionWorkPreferences,
	SectionEducationDetails,
	SectionExperienceDetails,
	SectionProjects,
	SectionAchievements,
	SectionAvailability,
	SectionSalaryExpectations,
	SectionCertifications,
	SectionLanguages,
	SectionInterests,
}

type PersonalInformation struct {
	FirstName        string `mapstructure:"first_name"`
	LastName         string `mapstructure:"last_name"`
	DateOfBirth      string `mapstructure:"date_of_birth"`
	Country          string `mapstructure:"country"`
	City             string `mapstructure:"city"`
	Address          string `mapstructure:"address"`
	PhoneCountryCode string `mapstructure:"phone_country_code"`
	Phone            string `mapstructure:"phone"`
	EmailAddress     string `mapstructure:"email_address"`
	GitHub           string `mapstructure:"github"`
	LinkedIn         string `mapstructure:"linkedin"`
}

type EducationDetail struct {
	Degree         string `mapstructure:"degree"`
	University     string `mapstructure:"university"`
	GPA            string `mapstructure:"gpa"`
	GraduationYear string `mapstructure:"graduation_year"`
	FieldOfStudy   string `mapstructure:"field_of_study"`
}

type ExperienceDetail struct {
	Position            string   `mapstructure:"position"`
	Company             string   `mapstructure:"company"`
	EmploymentPeriod    string   `mapstructure:"employment_period"`
	Location            string   `mapstructure:"location"`
	Industry            string   `mapstructure:"industry"`
	KeyResponsibilities []string `mapstructure:"key_responsibilities"`
	SkillsAcquired      []string `mapstructure:"skills_acquired"`
}

type Achievement struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
}

type Language struct {
	Language    string `mapstructure:"language"`
	Proficiency string `mapstructure:"proficiency"`
}

type Resume struct {
	PersonalInformation PersonalInformation `mapstructure:"personal_information"`
	EducationDetails    []EducationDetail   `mapstructure:"education_details"`
	ExperienceDetails   []ExperienceDetail  `mapstructure:"experience_details"`
	Skills              map[string]string   `mapstructure:"skills"`
	Projects            []string            `mapstructure:"projects"`
	Achievements        []Achievement       `mapstructure:"achievements"`
	Certifications      []string            `mapstructure:"certifications"`
	Languages           []Language          `mapstructure:"languages"`
	Interests           []string            `mapstructure:"interests"`
	Availability        map[string]string   `mapstructure:"availability"`
	SalaryExpectations  map[string]string   `mapstructure:"salary_expectations"`
	SelfIdentification  map[string]string   `mapstructure:"self_identification"`
	LegalAuthorization  map[string]string   `mapstructure:"legal_authorization"`
	WorkPreferences     map[string]string   `mapstructure:"work_preferences"`

	// raw keeps the decoded document for section-level formatting.
	raw map[string]any
}

// Load reads and validates the resume document.
func Load(path string) (*Resume, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading resume file: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing resume file %q: %w", path, err)
	}

	for _, section := range requiredSections {
		if _, ok := raw[section]; !ok {
			return nil, fmt.Errorf("resume file %q is missing section %q", path, section)
		}
	}

	var resume Resume
	if err := mapstructure.Decode(raw, &resume); err != nil {
		return nil, fmt.Errorf("decoding resume file %q: %w", path, err)
	}
	resume.raw = raw

	return &resume, nil
}

// HasSection reports whether the resume carries the named section.
func (r *Resume) HasSection(name string) bool {
	_, ok := r.raw[name]
	return ok
}

// PredefinedAnswer holds a personal-information field matched against form
// question text before any model call.
type PredefinedAnswer struct {
	Key   string
	Value string
}

// PredefinedAnswers returns the personal-information fields in declaration
// order. Order matters: phone_country_code must be probed before phone, which
// is its substring.
func (r *Resume) PredefinedAnswers() []PredefinedAnswer {
	p := r.PersonalInformation
	return []PredefinedAnswer{
		{"first_name", p.FirstName},
		{"last_name", p.LastName},
		{"date_of_birth", p.DateOfBirth},
		{"country", p.Country},
		{"city", p.City},
		{"address", p.Address},
		{"phone_country_code", p.PhoneCountryCode},
		{"phone", p.Phone},
		{"email_address", p.EmailAddress},
		{"github", p.GitHub},
		{"linkedin", p.LinkedIn},
	}
}

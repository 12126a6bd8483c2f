package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleResume = `{
  "personal_information": {
    "first_name": "Jane",
    "last_name": "Doe",
    "country": "Germany",
    "city": "Berlin",
    "address": "Example Str. 1",
    "phone_country_code": "+49",
    "phone": "1234567890",
    "email_address": "jane@example.com",
    "github": "https://github.com/janedoe",
    "linkedin": "https://linkedin.com/in/janedoe",
    "date_of_birth": "1990-01-01"
  },
  "self_identification": {"gender": "Female", "pronouns": "she/her"},
  "legal_authorization": {"legally_allowed_to_work_in_eu": "Yes"},
  "work_preferences": {"remote_work": "Yes"},
  "education_details": [
    {"degree": "BSc", "university": "TU Berlin", "field_of_study": "CS", "gpa": "1.7", "graduation_year": "2012"}
  ],
  "experience_details": [
    {
      "position": "Engineer",
      "company": "Acme",
      "employment_period": "2012-2020",
      "location": "Berlin",
      "industry": "Software",
      "key_responsibilities": ["built services", "ran deploys"],
      "skills_acquired": ["Go", "SQL"]
    }
  ],
  "skills": {"programming_languages": "Go, Python"},
  "projects": ["side project"],
  "achievements": [{"name": "Top Performer", "description": "Quarterly engineering award"}],
  "availability": {"notice_period": "1 month"},
  "salary_expectations": {"salary_range_usd": "100000"},
  "certifications": ["CKA"],
  "languages": [{"language": "English", "proficiency": "Fluent"}],
  "interests": ["open source"]
}`

func writeResume(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resume.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing resume fixture: %v", err)
	}
	return path
}

func TestLoadCompleteResume(t *testing.T) {
	resume, err := Load(writeResume(t, sampleResume))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resume.PersonalInformation.FirstName != "Jane" {
		t.Fatalf("first name = %q", resume.PersonalInformation.FirstName)
	}
	if len(resume.ExperienceDetails) != 1 || resume.ExperienceDetails[0].Company != "Acme" {
		t.Fatalf("experience not decoded: %+v", resume.ExperienceDetails)
	}
	if len(resume.Achievements) != 1 || resume.Achievements[0].Name != "Top Performer" {
		t.Fatalf("achievements not decoded: %+v", resume.Achievements)
	}
}

func TestLoadRequiresAchievements(t *testing.T) {
	body := strings.Replace(sampleResume, `"achievements": [{"name": "Top Performer", "description": "Quarterly engineering award"}],`, "", 1)

	if _, err := Load(writeResume(t, body)); err == nil {
		t.Fatalf("expected error for missing achievements section")
	} else if !strings.Contains(err.Error(), "achievements") {
		t.Fatalf("error %q does not name the missing section", err)
	}
}

func TestLoadRejectsMissingSection(t *testing.T) {
	body := strings.Replace(sampleResume, `"interests": ["open source"]`, `"hobbies": []`, 1)

	if _, err := Load(writeResume(t, body)); err == nil {
		t.Fatalf("expected error for missing interests section")
	} else if !strings.Contains(err.Error(), "interests") {
		t.Fatalf("error %q does not name the missing section", err)
	}
}

func TestPredefinedAnswersOrder(t *testing.T) {
	resume, err := Load(writeResume(t, sampleResume))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	answers := resume.PredefinedAnswers()
	codeIdx, phoneIdx := -1, -1
	for i, a := range answers {
		switch a.Key {
		case "phone_country_code":
			codeIdx = i
		case "phone":
			phoneIdx = i
		}
	}
	if codeIdx == -1 || phoneIdx == -1 || codeIdx > phoneIdx {
		t.Fatalf("phone_country_code must come before phone: %v", answers)
	}
}

func TestFormatSection(t *testing.T) {
	resume, err := Load(writeResume(t, sampleResume))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	achievements, err := resume.FormatSection(SectionAchievements)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if achievements != "- Top Performer: Quarterly engineering award" {
		t.Fatalf("formatted achievements = %q", achievements)
	}

	text, err := resume.FormatSection(SectionExperienceDetails)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Position: Engineer", "Company: Acme", "(1) built services", "(2) ran deploys"} {
		if !strings.Contains(text, want) {
			t.Fatalf("formatted experience missing %q:\n%s", want, text)
		}
	}

	if _, err := resume.FormatSection("nonexistent"); err == nil {
		t.Fatalf("expected error for unknown section")
	}
}

func TestFormatResumeCoversSections(t *testing.T) {
	resume, err := Load(writeResume(t, sampleResume))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := resume.FormatResume()
	for _, want := range []string{"## Personal Information", "## Experience Details", "## Achievements", "## Skills", "## Languages"} {
		if !strings.Contains(text, want) {
			t.Fatalf("formatted resume missing %q", want)
		}
	}
}

package profile

import (
	"fmt"
	"sort"
	"strings"
)

// FormatSection renders the named resume section as plain text suitable for
// prompt embedding. Unknown sections return an error so callers can surface
// "no chain for section" failures instead of sending empty context.
func (r *Resume) FormatSection(name string) (string, error) {
	switch name {
	case SectionExperienceDetails:
		return r.FormatExperience(), nil
	case SectionEducationDetails:
		return r.formatEducation(), nil
	case "skills":
		return r.FormatSkills(), nil
	case SectionAchievements:
		return r.formatAchievements(), nil
	}

	raw, ok := r.raw[name]
	if !ok {
		return "", fmt.Errorf("resume has no section %q", name)
	}

	var b strings.Builder
	renderValue(&b, raw, 0)
	return strings.TrimSpace(b.String()), nil
}

// FormatResume renders the whole document, section by section.
func (r *Resume) FormatResume() string {
	sections := []string{
		SectionPersonalInformation,
		SectionEducationDetails,
		SectionExperienceDetails,
		SectionAchievements,
		"skills",
		SectionProjects,
		SectionCertifications,
		SectionLanguages,
		SectionInterests,
		SectionAvailability,
		SectionSalaryExpectations,
		SectionSelfIdentification,
		SectionLegalAuthorization,
		SectionWorkPreferences,
	}

	parts := make([]string, 0, len(sections))
	for _, name := range sections {
		body, err := r.FormatSection(name)
		if err != nil || strings.TrimSpace(body) == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("## %s\n%s", titleFor(name), body))
	}
	return strings.Join(parts, "\n\n")
}

// FormatExperience renders the experience entries with numbered
// responsibilities and acquired skills.
func (r *Resume) FormatExperience() string {
	entries := make([]string, 0, len(r.ExperienceDetails))
	for _, d := range r.ExperienceDetails {
		lines := make([]string, 0, 8)
		appendIf(&lines, "Position", d.Position)
		appendIf(&lines, "Company", d.Company)
		appendIf(&lines, "Employment Period", d.EmploymentPeriod)
		appendIf(&lines, "Location", d.Location)
		appendIf(&lines, "Industry", d.Industry)
		lines = append(lines, "Key Responsibilities:\n  "+numbered(d.KeyResponsibilities, "\n  "))
		lines = append(lines, "Skills Acquired: "+numbered(d.SkillsAcquired, ", "))
		entries = append(entries, strings.Join(lines, "\n"))
	}
	return strings.Join(entries, "\n\n")
}

// FormatSkills renders the skills map as a bullet list, keys sorted for
// stable output.
func (r *Resume) FormatSkills() string {
	keys := make([]string, 0, len(r.Skills))
	for k := range r.Skills {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := []string{"Skills Summary:", ""}
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("- %s: %s", titleFor(k), r.Skills[k]))
	}
	return strings.Join(lines, "\n")
}

func (r *Resume) formatAchievements() string {
	lines := make([]string, 0, len(r.Achievements))
	for _, a := range r.Achievements {
		lines = append(lines, fmt.Sprintf("- %s: %s", a.Name, a.Description))
	}
	return strings.Join(lines, "\n")
}

func (r *Resume) formatEducation() string {
	entries := make([]string, 0, len(r.EducationDetails))
	for _, d := range r.EducationDetails {
		lines := make([]string, 0, 5)
		appendIf(&lines, "Degree", d.Degree)
		appendIf(&lines, "University", d.University)
		appendIf(&lines, "Field of Study", d.FieldOfStudy)
		appendIf(&lines, "GPA", d.GPA)
		appendIf(&lines, "Graduation Year", d.GraduationYear)
		entries = append(entries, strings.Join(lines, "\n"))
	}
	return strings.Join(entries, "\n\n")
}

func appendIf(lines *[]string, label, value string) {
	if strings.TrimSpace(value) != "" {
		*lines = append(*lines, fmt.Sprintf("%s: %s", label, value))
	}
}

func numbered(items []string, sep string) string {
	if len(items) == 0 {
		return "N/A"
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		out = append(out, fmt.Sprintf("(%d) %s", i+1, item))
	}
	return strings.Join(out, sep)
}

func renderValue(b *strings.Builder, v any, depth int) {
	indent := strings.Repeat("  ", depth)
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			switch child := val[k].(type) {
			case map[string]any, []any:
				fmt.Fprintf(b, "%s- %s:\n", indent, titleFor(k))
				renderValue(b, child, depth+1)
			default:
				fmt.Fprintf(b, "%s- %s: %v\n", indent, titleFor(k), child)
			}
		}
	case []any:
		for _, item := range val {
			switch child := item.(type) {
			case map[string]any, []any:
				renderValue(b, child, depth)
				b.WriteString("\n")
			default:
				fmt.Fprintf(b, "%s- %v\n", indent, child)
			}
		}
	default:
		fmt.Fprintf(b, "%s%v\n", indent, val)
	}
}

func titleFor(key string) string {
	words := strings.Split(strings.ReplaceAll(key, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

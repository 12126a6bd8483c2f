package config

import (
	"fmt"
	"strings"
)

// Canonical key sets for the preference maps. The search URL builder relies on
// the order of ExperienceLevels, so these are slices, not sets.
var (
	ExperienceLevels = []string{"internship", "entry", "associate", "mid-senior level", "director", "executive"}
	JobTypes         = []string{"full-time", "contract", "part-time", "temporary", "internship", "other", "volunteer"}
	DateWindows      = []string{"all time", "month", "week", "24 hours"}

	allowedDistances = map[int]bool{0: true, 5: true, 10: true, 25: true, 50: true, 100: true}
)

const DefaultOutputDir = "data_folder/output"

// Config is the work-preferences document loaded from the JSON config file.
// It is built once at startup and passed down read-only.
type Config struct {
	Remote           bool            `mapstructure:"remote"`
	ExperienceLevel  map[string]bool `mapstructure:"experienceLevel"`
	JobTypes         map[string]bool `mapstructure:"jobTypes"`
	Date             map[string]bool `mapstructure:"date"`
	Positions        []string        `mapstructure:"positions"`
	Locations        []string        `mapstructure:"locations"`
	Distance         int             `mapstructure:"distance"`
	CompanyBlacklist []string        `mapstructure:"companyBlacklist"`
	TitleBlacklist   []string        `mapstructure:"titleBlacklist"`
	OutputDir        string          `mapstructure:"outputFileDirectory"`
	Uploads          Uploads         `mapstructure:"uploads"`
}

// Uploads holds paths of documents attached to applications.
type Uploads struct {
	Resume      string `mapstructure:"resume"`
	CoverLetter string `mapstructure:"coverLetter"`
}

// ApplyDefaults fills optional fields so the rest of the program never has to
// nil-check them.
func (c *Config) ApplyDefaults() {
	if c.CompanyBlacklist == nil {
		c.CompanyBlacklist = []string{}
	}
	if c.TitleBlacklist == nil {
		c.TitleBlacklist = []string{}
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		c.OutputDir = DefaultOutputDir
	}
}

// Validate checks the config and returns a descriptive error naming the first
// offending key. It never mutates the config.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is required")
	}

	if err := requireKeys("experienceLevel", c.ExperienceLevel, ExperienceLevels); err != nil {
		return err
	}
	if err := requireKeys("jobTypes", c.JobTypes, JobTypes); err != nil {
		return err
	}
	if err := requireKeys("date", c.Date, DateWindows); err != nil {
		return err
	}

	if countEnabled(c.Date) != 1 {
		return fmt.Errorf("config key 'date' must have exactly one window enabled")
	}

	if len(c.Positions) == 0 {
		return fmt.Errorf("config key 'positions' must be a non-empty list")
	}
	if len(c.Locations) == 0 {
		return fmt.Errorf("config key 'locations' must be a non-empty list")
	}
	for i, p := range c.Positions {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("config key 'positions[%d]' is empty", i)
		}
	}
	for i, l := range c.Locations {
		if strings.TrimSpace(l) == "" {
			return fmt.Errorf("config key 'locations[%d]' is empty", i)
		}
	}

	if !allowedDistances[c.Distance] {
		return fmt.Errorf("config key 'distance' must be one of 0, 5, 10, 25, 50, 100; got %d", c.Distance)
	}

	if strings.TrimSpace(c.Uploads.Resume) == "" {
		return fmt.Errorf("config key 'uploads.resume' is required")
	}

	return nil
}

// EnabledExperienceIndexes returns the 1-based positions of enabled experience
// levels in canonical order, as expected by the f_E search parameter.
func (c *Config) EnabledExperienceIndexes() []int {
	indexes := make([]int, 0, len(ExperienceLevels))
	for i, name := range ExperienceLevels {
		if c.ExperienceLevel[name] {
			indexes = append(indexes, i+1)
		}
	}
	return indexes
}

// EnabledJobTypeCodes returns the uppercased first letters of enabled job
// types in canonical order, as expected by the f_JT search parameter.
func (c *Config) EnabledJobTypeCodes() []string {
	codes := make([]string, 0, len(JobTypes))
	for _, name := range JobTypes {
		if c.JobTypes[name] {
			codes = append(codes, strings.ToUpper(name[:1]))
		}
	}
	return codes
}

// EnabledDateWindow returns the single enabled date window, or "all time" when
// nothing is enabled.
func (c *Config) EnabledDateWindow() string {
	for _, name := range DateWindows {
		if c.Date[name] {
			return name
		}
	}
	return "all time"
}

func requireKeys(key string, m map[string]bool, names []string) error {
	if m == nil {
		return fmt.Errorf("config key '%s' is required", key)
	}
	for _, name := range names {
		if _, ok := m[name]; !ok {
			return fmt.Errorf("config key '%s.%s' is required", key, name)
		}
	}
	return nil
}

func countEnabled(m map[string]bool) int {
	n := 0
	for _, v := range m {
		if v {
			n++
		}
	}
	return n
}

package filtering

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"li-responder/internal/jobs"
)

type titleBlacklistFilter struct {
	terms    []string
	patterns []*regexp.Regexp
	disabled bool
	reason   string
}

// NewTitleBlacklist creates a filter dropping jobs whose title contains a
// blacklisted term as a whole word. "sales" blocks "Senior Sales Manager" but
// not "Salesforce Engineer".
func NewTitleBlacklist(terms []string) Filter {
	patterns := make([]*regexp.Regexp, 0, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		patterns = append(patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(term)+`\b`))
	}
	return &titleBlacklistFilter{terms: terms, patterns: patterns}
}

func (f *titleBlacklistFilter) Name() string { return "title_blacklist" }

func (f *titleBlacklistFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *titleBlacklistFilter) IsEnabled() bool { return !f.disabled }

func (f *titleBlacklistFilter) Apply(_ context.Context, deps Deps, list []*jobs.Job) ([]*jobs.Job, Step, error) {
	initial := len(list)
	kept := make([]*jobs.Job, 0, initial)

	for _, job := range list {
		term := f.match(job.Title)
		if term == "" {
			kept = append(kept, job)
			continue
		}
		if deps.Logger != nil {
			deps.Logger.Info("dropping job by title blacklist",
				zap.String("job", job.String()),
				zap.String("term", term),
			)
		}
	}

	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}, nil
}

func (f *titleBlacklistFilter) match(title string) string {
	for i, pattern := range f.patterns {
		if pattern.MatchString(title) {
			return f.terms[i]
		}
	}
	return ""
}

func (f *titleBlacklistFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"terms": strings.Join(f.terms, ",")},
	}
}

type companyBlacklistFilter struct {
	companies []string
	disabled  bool
	reason    string
}

// NewCompanyBlacklist creates a filter dropping jobs whose company equals a
// blacklisted name, case-insensitively.
func NewCompanyBlacklist(companies []string) Filter {
	return &companyBlacklistFilter{companies: companies}
}

func (f *companyBlacklistFilter) Name() string { return "company_blacklist" }

func (f *companyBlacklistFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *companyBlacklistFilter) IsEnabled() bool { return !f.disabled }

func (f *companyBlacklistFilter) Apply(_ context.Context, deps Deps, list []*jobs.Job) ([]*jobs.Job, Step, error) {
	initial := len(list)
	kept := make([]*jobs.Job, 0, initial)

	for _, job := range list {
		if f.blocked(job.Company) {
			if deps.Logger != nil {
				deps.Logger.Info("dropping job by company blacklist", zap.String("job", job.String()))
			}
			continue
		}
		kept = append(kept, job)
	}

	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}, nil
}

func (f *companyBlacklistFilter) blocked(company string) bool {
	company = strings.TrimSpace(company)
	for _, candidate := range f.companies {
		if strings.EqualFold(company, strings.TrimSpace(candidate)) {
			return true
		}
	}
	return false
}

func (f *companyBlacklistFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"companies": strings.Join(f.companies, ",")},
	}
}

type seenLinksFilter struct {
	seen map[string]bool
}

// NewSeenLinks creates a stateful filter dropping jobs whose link was already
// processed during this run.
func NewSeenLinks() Filter {
	return &seenLinksFilter{seen: make(map[string]bool)}
}

func (f *seenLinksFilter) Name() string { return "seen_links" }

func (f *seenLinksFilter) Disable(string) {}

func (f *seenLinksFilter) IsEnabled() bool { return true }

func (f *seenLinksFilter) Apply(_ context.Context, deps Deps, list []*jobs.Job) ([]*jobs.Job, Step, error) {
	initial := len(list)
	kept := make([]*jobs.Job, 0, initial)

	for _, job := range list {
		link := job.NormalizedLink()
		if link == "" {
			kept = append(kept, job)
			continue
		}
		if f.seen[link] {
			if deps.Logger != nil {
				deps.Logger.Debug("dropping already seen job", zap.String("link", link))
			}
			continue
		}
		f.seen[link] = true
		kept = append(kept, job)
	}

	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}, nil
}

func (f *seenLinksFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: true,
		Details: map[string]string{"seen": fmt.Sprintf("%d", len(f.seen))},
	}
}

// apply methods that mean the job cannot be Easy Applied right now.
var skippedApplyMethods = []string{"Continue", "Applied", "Apply"}

type applyMethodFilter struct{}

// NewApplyMethod creates a filter dropping jobs whose apply badge marks them
// as already started, already applied, or external.
func NewApplyMethod() Filter {
	return &applyMethodFilter{}
}

func (f *applyMethodFilter) Name() string { return "apply_method" }

func (f *applyMethodFilter) Disable(string) {}

func (f *applyMethodFilter) IsEnabled() bool { return true }

func (f *applyMethodFilter) Apply(_ context.Context, deps Deps, list []*jobs.Job) ([]*jobs.Job, Step, error) {
	initial := len(list)
	kept := make([]*jobs.Job, 0, initial)

	for _, job := range list {
		if skipMethod(job.ApplyMethod) {
			if deps.Logger != nil {
				deps.Logger.Info("dropping job by apply method",
					zap.String("job", job.String()),
					zap.String("apply_method", job.ApplyMethod),
				)
			}
			continue
		}
		kept = append(kept, job)
	}

	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}, nil
}

func skipMethod(method string) bool {
	method = strings.TrimSpace(method)
	for _, skipped := range skippedApplyMethods {
		if strings.EqualFold(method, skipped) {
			return true
		}
	}
	return false
}

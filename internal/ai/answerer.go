package ai

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"li-responder/internal/logger"
	"li-responder/internal/profile"
)

//go:embed templates
var templatesFS embed.FS

const defaultMaxLogLength = 200

var now = time.Now

// Answerer turns form questions into answers using the resume document and
// the configured Completer. It carries no cache; the answers package wraps it
// with one.
type Answerer struct {
	completer Completer
	resume    *profile.Resume
	logger    *zap.Logger
	maxLogLen int
}

func NewAnswerer(completer Completer, resume *profile.Resume, log *zap.Logger) *Answerer {
	return &Answerer{
		completer: completer,
		resume:    resume,
		logger:    log,
		maxLogLen: defaultMaxLogLength,
	}
}

// ClassifySection asks the model which resume section a question belongs to
// and returns the normalized section key (lowercased, underscores). The
// result is not validated here; callers fail when no chain exists for it.
func (a *Answerer) ClassifySection(ctx context.Context, question string) (string, error) {
	prompt := fill(template("classify_section.md"), map[string]string{
		"QUESTION": question,
	})

	raw, err := a.complete(ctx, "classify_section", prompt)
	if err != nil {
		return "", err
	}

	section := strings.ToLower(strings.TrimSpace(firstLine(raw)))
	section = strings.ReplaceAll(section, " ", "_")
	return section, nil
}

// AnswerText answers a free-text question by routing it to the section chain
// the classifier picks. Cover-letter questions are answered against the job
// description.
func (a *Answerer) AnswerText(ctx context.Context, question, jobDescription string) (string, error) {
	section, err := a.ClassifySection(ctx, question)
	if err != nil {
		return "", err
	}

	a.logger.Debug("question classified",
		zap.String("question", logger.TruncateForLog(question, a.maxLogLen)),
		zap.String("section", section),
	)

	if section == profile.SectionCoverLetter {
		return a.answerCoverLetter(ctx, question, jobDescription)
	}

	tmpl := template("sections/" + section + ".md")
	if tmpl == "" {
		return "", fmt.Errorf("no answer chain for section %q", section)
	}

	body, err := a.resume.FormatSection(section)
	if err != nil {
		return "", fmt.Errorf("section %q: %w", section, err)
	}

	prompt := fill(tmpl, map[string]string{
		"RESUME_SECTION":  body,
		"SKILLS":          a.resume.FormatSkills(),
		"JOB_DESCRIPTION": jobDescription,
		"QUESTION":        question,
	})

	return a.complete(ctx, section, prompt)
}

// AnswerFromOptions answers a closed-choice question. The raw reply is
// returned; the caller projects it onto the options list.
func (a *Answerer) AnswerFromOptions(ctx context.Context, question string, options []string) (string, error) {
	prompt := fill(template("options.md"), map[string]string{
		"RESUME":   a.resume.FormatResume(),
		"QUESTION": question,
		"OPTIONS":  strings.Join(options, ", "),
	})

	return a.complete(ctx, "options", prompt)
}

// AnswerNumeric answers a years-of-experience style question. The reply may
// carry prose; the caller extracts the digits.
func (a *Answerer) AnswerNumeric(ctx context.Context, question string) (string, error) {
	education, _ := a.resume.FormatSection(profile.SectionEducationDetails)
	projects, _ := a.resume.FormatSection(profile.SectionProjects)

	prompt := fill(template("numeric.md"), map[string]string{
		"RESUME_EDUCATION":  education,
		"RESUME_EXPERIENCE": a.resume.FormatExperience(),
		"RESUME_PROJECTS":   projects,
		"QUESTION":          question,
	})

	return a.complete(ctx, "numeric", prompt)
}

// AnswerDate answers a date question. The caller parses the reply.
func (a *Answerer) AnswerDate(ctx context.Context, question string) (string, error) {
	prompt := fill(template("date.md"), map[string]string{
		"TODAY":    now().Format("2006-01-02"),
		"QUESTION": question,
	})

	return a.complete(ctx, "date", prompt)
}

// ResumeOrCover classifies an upload field's label as asking for a resume or
// a cover letter. Anything ambiguous counts as resume.
func (a *Answerer) ResumeOrCover(ctx context.Context, label string) (string, error) {
	prompt := fill(template("resume_or_cover.md"), map[string]string{
		"LABEL": label,
	})

	raw, err := a.complete(ctx, "resume_or_cover", prompt)
	if err != nil {
		return "", err
	}

	if strings.Contains(strings.ToLower(raw), "cover") {
		return "cover", nil
	}
	return "resume", nil
}

// CoverLetter writes a full letter for the job description, for PDF upload.
func (a *Answerer) CoverLetter(ctx context.Context, jobDescription string) (string, error) {
	return a.answerCoverLetter(ctx, "Write the cover letter.", jobDescription)
}

// FixAnswer produces a corrected value after the page rejected the previous
// one with an inline validation error.
func (a *Answerer) FixAnswer(ctx context.Context, question, previous, validationError string) (string, error) {
	prompt := fill(template("fix_answer.md"), map[string]string{
		"QUESTION": question,
		"INPUT":    previous,
		"ERROR":    validationError,
	})

	return a.complete(ctx, "fix_answer", prompt)
}

func (a *Answerer) answerCoverLetter(ctx context.Context, question, jobDescription string) (string, error) {
	prompt := fill(template("cover_letter.md"), map[string]string{
		"QUESTION":        question,
		"JOB_DESCRIPTION": jobDescription,
		"RESUME":          a.resume.FormatResume(),
	})

	return a.complete(ctx, "cover_letter", prompt)
}

func (a *Answerer) complete(ctx context.Context, chain, prompt string) (string, error) {
	a.logger.Debug("llm request",
		zap.String("chain", chain),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.completer.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}

	a.logger.Debug("llm response",
		zap.String("chain", chain),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, a.maxLogLen)),
	)

	return strings.TrimSpace(raw), nil
}

// template returns the named embedded template, or "" when it does not exist.
func template(name string) string {
	data, err := templatesFS.ReadFile("templates/" + name)
	if err != nil {
		return ""
	}
	return string(data)
}

func fill(tmpl string, values map[string]string) string {
	out := tmpl
	for marker, value := range values {
		out = strings.ReplaceAll(out, "{{"+marker+"}}", value)
	}
	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

package form

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"li-responder/internal/answers"
	"li-responder/internal/browser"
	"li-responder/internal/config"
	"li-responder/internal/jobs"
	"li-responder/internal/pdf"
	"li-responder/internal/profile"
	"li-responder/internal/utils"
)

const (
	nextButtonSelector     = ".jobs-easy-apply-content footer button.artdeco-button--primary"
	followCompanySelector  = "label[for='follow-company-checkbox']"
	followCheckboxSelector = "input#follow-company-checkbox"
	anyInlineErrorSelector = ".jobs-easy-apply-content .artdeco-inline-feedback--error"
	submitApplicationLabel = "submit application"

	defaultCooldown = 120 * time.Second
	maxPasses       = 5
	maxSteps        = 20
)

// letterService is the slice of the answering engine the form needs beyond
// the resolver: document classification, letter writing and corrections.
type letterService interface {
	ResumeOrCover(ctx context.Context, label string) (string, error)
	CoverLetter(ctx context.Context, jobDescription string) (string, error)
	FixAnswer(ctx context.Context, question, previous, validationError string) (string, error)
}

// Options tunes the fill loop.
type Options struct {
	Uploads   config.Uploads
	OutputDir string
	Cooldown  time.Duration
}

// Filler walks the Easy Apply modal step by step until the application is
// submitted.
type Filler struct {
	page     browser.Page
	resolver *answers.Resolver
	letters  letterService
	resume   *profile.Resume
	renderer pdf.Renderer
	logger   *zap.Logger

	uploads   config.Uploads
	outputDir string
	cooldown  time.Duration

	// processed remembers section identities filled during this
	// application so a re-entry after a cooldown touches nothing twice.
	// processedControls does the same per control, for sections whose
	// identity shifts when the modal re-renders.
	processed         map[string]bool
	processedControls map[string]bool
	job               *jobs.Job
}

func NewFiller(
	page browser.Page,
	resolver *answers.Resolver,
	letters letterService,
	resume *profile.Resume,
	renderer pdf.Renderer,
	opts Options,
	logger *zap.Logger,
) *Filler {
	cooldown := opts.Cooldown
	if cooldown == 0 {
		cooldown = defaultCooldown
	}
	return &Filler{
		page:      page,
		resolver:  resolver,
		letters:   letters,
		resume:    resume,
		renderer:  renderer,
		logger:    logger,
		uploads:   opts.Uploads,
		outputDir: opts.OutputDir,
		cooldown:  cooldown,
	}
}

// Apply fills every step of the open application modal and submits it. On a
// failed pass it cools down and re-enters; after maxPasses failures the
// application is a lost cause and the caller should discard it.
func (f *Filler) Apply(ctx context.Context, job *jobs.Job) error {
	f.job = job
	f.processed = make(map[string]bool)
	f.processedControls = make(map[string]bool)

	failures := 0
	for step := 0; step < maxSteps; {
		err := f.fillStep(ctx)
		if err == nil {
			var done bool
			done, err = f.advance(ctx)
			if done {
				return nil
			}
			if err == nil {
				step++
				continue
			}
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		failures++
		if failures >= maxPasses {
			return fmt.Errorf("giving up after %d failed passes: %w", failures, err)
		}

		f.logger.Warn("form pass failed, cooling down",
			zap.Int("failures", failures),
			zap.Duration("cooldown", f.cooldown),
			zap.Error(err),
		)
		if werr := utils.WaitFor(ctx, f.cooldown); werr != nil {
			return werr
		}
	}

	return fmt.Errorf("application did not reach submit within %d steps", maxSteps)
}

// fillStep handles every unprocessed section currently on screen.
func (f *Filler) fillStep(ctx context.Context) error {
	sections, err := scanSections(ctx, f.page)
	if err != nil {
		return err
	}

	for _, sec := range sections {
		if f.processed[sec.identity] {
			continue
		}

		sec := sec
		err := browser.WithStaleRetry(
			func() error { return f.dispatch(ctx, sec) },
			func() error { return f.reacquire(ctx, sec) },
		)
		if err != nil {
			return fmt.Errorf("section %q: %w", sec.question, err)
		}

		f.processed[sec.identity] = true
	}
	return nil
}

func (f *Filler) dispatch(ctx context.Context, sec *section) error {
	for _, h := range handlerChain {
		handled, err := h.handle(ctx, f, sec)
		if err != nil {
			return err
		}
		if handled {
			f.logger.Debug("section handled",
				zap.String("handler", h.name()),
				zap.String("question", sec.question),
			)
			return nil
		}
	}
	return fmt.Errorf("no handler for section %q", sec.question)
}

// setControl writes text into a control at most once per application.
func (f *Filler) setControl(ctx context.Context, el browser.Element, text string) error {
	key, err := controlIdentityOf(ctx, el)
	if err != nil {
		return err
	}
	if f.processedControls[key] {
		return nil
	}
	if err := el.SetText(ctx, text); err != nil {
		return err
	}
	f.processedControls[key] = true
	return nil
}

// clickControl clicks a checkbox or radio control at most once per
// application.
func (f *Filler) clickControl(ctx context.Context, sec *section, el browser.Element) error {
	key, err := controlIdentityOf(ctx, el)
	if err != nil {
		return err
	}
	if f.processedControls[key] {
		return nil
	}
	if err := clickCheckbox(ctx, sec, el); err != nil {
		return err
	}
	f.processedControls[key] = true
	return nil
}

// selectControl picks a dropdown option at most once per application.
func (f *Filler) selectControl(ctx context.Context, el browser.Element, label string) error {
	key, err := controlIdentityOf(ctx, el)
	if err != nil {
		return err
	}
	if f.processedControls[key] {
		return nil
	}
	if err := el.SelectByText(ctx, label); err != nil {
		return err
	}
	f.processedControls[key] = true
	return nil
}

// reacquire relocates a section by identity after the modal re-rendered.
func (f *Filler) reacquire(ctx context.Context, stale *section) error {
	sections, err := scanSections(ctx, f.page)
	if err != nil {
		return err
	}
	for _, sec := range sections {
		if sec.identity == stale.identity {
			stale.el = sec.el
			stale.question = sec.question
			return nil
		}
	}
	return fmt.Errorf("%w: section %q after re-render", browser.ErrNotFound, stale.question)
}

// advance clicks the footer button. Submit path unticks follow-company first.
// Returns done=true after submitting.
func (f *Filler) advance(ctx context.Context) (bool, error) {
	button, err := f.page.Find(ctx, nextButtonSelector)
	if err != nil {
		return false, fmt.Errorf("locating next button: %w", err)
	}
	label, err := button.Text(ctx)
	if err != nil {
		return false, err
	}

	if strings.Contains(strings.ToLower(label), submitApplicationLabel) {
		if err := f.unfollowCompany(ctx); err != nil {
			f.logger.Debug("could not untick follow company", zap.Error(err))
		}
		if err := button.Click(ctx); err != nil {
			return false, fmt.Errorf("submitting application: %w", err)
		}
		f.logger.Info("application submitted", zap.String("job", f.job.String()))
		return true, nil
	}

	if err := button.Click(ctx); err != nil {
		return false, fmt.Errorf("advancing to next step: %w", err)
	}
	if err := utils.WaitRandom(ctx, 1*time.Second, 2*time.Second); err != nil {
		return false, err
	}

	// Staying on a step with inline errors means something was rejected.
	if stuck, err := f.page.Exists(ctx, anyInlineErrorSelector); err == nil && stuck {
		return false, fmt.Errorf("validation errors after advancing")
	}
	return false, nil
}

// unfollowCompany unticks the pre-checked "follow company" box on the submit
// step.
func (f *Filler) unfollowCompany(ctx context.Context) error {
	box, err := f.page.Find(ctx, followCheckboxSelector)
	if err != nil {
		return nil
	}
	checked, err := box.Checked(ctx)
	if err != nil || !checked {
		return err
	}
	return f.page.Click(ctx, followCompanySelector)
}

package browser

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"li-responder/internal/utils"
)

// Page is the browsing surface the rest of the program works against. The
// chromedp Session implements it; tests use synthetic fakes.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Location(ctx context.Context) (string, error)
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	Exists(ctx context.Context, selector string) (bool, error)
	Find(ctx context.Context, selector string) (Element, error)
	FindAll(ctx context.Context, selector string) ([]Element, error)
	Click(ctx context.Context, selector string) error
	TypeSlow(ctx context.Context, selector, text string) error
	Evaluate(ctx context.Context, js string, out any) error
	ScrollSlow(ctx context.Context, selector string) error
}

// Options configures the Chrome session.
type Options struct {
	Headless   bool
	ProfileDir string
}

const DefaultProfileDir = "chrome_profile/linkedin_profile"

// Session drives a single Chrome instance with a persistent user profile so
// login cookies survive between runs.
type Session struct {
	ctx     context.Context
	cancels []context.CancelFunc
	logger  *zap.Logger
}

// NewSession starts Chrome. Close must be called to tear it down.
func NewSession(ctx context.Context, opts Options, logger *zap.Logger) (*Session, error) {
	profileDir := opts.ProfileDir
	if profileDir == "" {
		profileDir = DefaultProfileDir
	}
	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating chrome profile dir: %w", err)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-autofill", true),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.WindowSize(1200, 800),
		chromedp.UserDataDir(profileDir),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{cancelBrowser, cancelAlloc},
		logger:  logger,
	}

	// Materialize the browser process before anyone navigates, and keep
	// heavy media off the wire. Pages work fine without it and pages load
	// a lot faster.
	if err := chromedp.Run(browserCtx,
		network.Enable(),
		network.SetBlockedURLs([]string{"*.jpg", "*.jpeg", "*.png", "*.gif", "*.webp", "*.woff", "*.woff2"}),
	); err != nil {
		s.Close()
		return nil, fmt.Errorf("starting chrome: %w", err)
	}

	logger.Info("chrome session started",
		zap.Bool("headless", opts.Headless),
		zap.String("profile_dir", profileDir),
	)

	return s, nil
}

// Close tears the browser down.
func (s *Session) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery))
}

func (s *Session) Location(ctx context.Context) (string, error) {
	var url string
	err := s.run(ctx, chromedp.Location(&url))
	return url, err
}

func (s *Session) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.run(waitCtx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (s *Session) Exists(ctx context.Context, selector string) (bool, error) {
	var count int
	js := fmt.Sprintf(`document.querySelectorAll(%q).length`, selector)
	if err := s.Evaluate(ctx, js, &count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Session) Find(ctx context.Context, selector string) (Element, error) {
	elements, err := s.FindAll(ctx, selector)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, selector)
	}
	return elements[0], nil
}

func (s *Session) FindAll(ctx context.Context, selector string) ([]Element, error) {
	return findAllIn(ctx, s, "", selector)
}

func (s *Session) Click(ctx context.Context, selector string) error {
	return s.run(ctx, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
}

// TypeSlow clears the field and types character by character with human
// pacing.
func (s *Session) TypeSlow(ctx context.Context, selector, text string) error {
	if err := s.run(ctx, chromedp.Clear(selector, chromedp.ByQuery)); err != nil {
		return err
	}
	for _, r := range text {
		if err := s.run(ctx, chromedp.SendKeys(selector, string(r), chromedp.ByQuery)); err != nil {
			return err
		}
		if err := utils.WaitRandom(ctx, 50*time.Millisecond, 150*time.Millisecond); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) Evaluate(ctx context.Context, js string, out any) error {
	return s.run(ctx, chromedp.Evaluate(js, out))
}

// ScrollSlow scrolls the selected container to the bottom in small steps so
// lazily rendered entries load.
func (s *Session) ScrollSlow(ctx context.Context, selector string) error {
	for i := 0; i < 20; i++ {
		var done bool
		js := fmt.Sprintf(`(() => {
			const el = document.querySelector(%q) || document.scrollingElement;
			el.scrollTop += 300;
			return el.scrollTop + el.clientHeight >= el.scrollHeight - 5;
		})()`, selector)
		if err := s.Evaluate(ctx, js, &done); err != nil {
			return err
		}
		if done {
			return nil
		}
		if err := utils.WaitRandom(ctx, 200*time.Millisecond, 500*time.Millisecond); err != nil {
			return err
		}
	}
	return nil
}

// run executes chromedp actions on the session context while honoring the
// caller's cancellation.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

package linkedin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"li-responder/internal/utils"
)

const (
	feedURL  = "https://www.linkedin.com/feed/"
	loginURL = "https://www.linkedin.com/login"

	// shareBoxSelector is the "Start a post" box, only rendered for a
	// logged-in member.
	shareBoxSelector = ".share-box-feed-entry__trigger"

	checkpointTimeout  = 5 * time.Minute
	checkpointInterval = 5 * time.Second
)

// Credentials holds the LinkedIn account login pair.
type Credentials struct {
	Email    string
	Password string
}

// Login makes sure the session is authenticated. The persistent browser
// profile usually carries cookies from the previous run, so the password form
// is the fallback, not the default path.
func (c *Client) Login(ctx context.Context, creds Credentials) error {
	if err := c.page.Navigate(ctx, feedURL); err != nil {
		return fmt.Errorf("opening feed: %w", err)
	}
	if err := utils.WaitRandom(ctx, 2*time.Second, 4*time.Second); err != nil {
		return err
	}

	if ok, err := c.loggedIn(ctx); err != nil {
		return err
	} else if ok {
		c.logger.Info("already logged in")
		return nil
	}

	if creds.Email == "" || creds.Password == "" {
		return fmt.Errorf("not logged in and no credentials provided")
	}

	c.logger.Info("logging in", zap.String("email", creds.Email))

	if err := c.page.Navigate(ctx, loginURL); err != nil {
		return fmt.Errorf("opening login page: %w", err)
	}
	if err := c.page.WaitVisible(ctx, "#username", 15*time.Second); err != nil {
		return fmt.Errorf("waiting for login form: %w", err)
	}

	if err := c.page.TypeSlow(ctx, "#username", creds.Email); err != nil {
		return fmt.Errorf("typing email: %w", err)
	}
	if err := c.page.TypeSlow(ctx, "#password", creds.Password); err != nil {
		return fmt.Errorf("typing password: %w", err)
	}
	if err := c.page.Click(ctx, `button[type="submit"]`); err != nil {
		return fmt.Errorf("submitting login form: %w", err)
	}

	if err := utils.WaitRandom(ctx, 3*time.Second, 5*time.Second); err != nil {
		return err
	}

	return c.awaitFeed(ctx)
}

func (c *Client) loggedIn(ctx context.Context) (bool, error) {
	url, err := c.page.Location(ctx)
	if err != nil {
		return false, err
	}
	if !strings.Contains(url, "/feed") {
		return false, nil
	}
	return c.page.Exists(ctx, shareBoxSelector)
}

// awaitFeed waits out the security checkpoint. LinkedIn sometimes demands a
// captcha or a device confirmation after the password form; the human at the
// keyboard has to solve it, we just wait for the feed.
func (c *Client) awaitFeed(ctx context.Context) error {
	deadline := time.Now().Add(checkpointTimeout)
	warned := false

	for {
		url, err := c.page.Location(ctx)
		if err != nil {
			return err
		}

		if strings.Contains(url, "/feed") {
			c.logger.Info("login complete")
			return nil
		}

		if strings.Contains(url, "checkpoint") || strings.Contains(url, "challenge") {
			if !warned {
				c.logger.Warn("security checkpoint, solve it in the browser window",
					zap.Duration("timeout", checkpointTimeout),
				)
				warned = true
			}
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("login did not reach the feed within %s, stuck at %s", checkpointTimeout, url)
		}

		if err := utils.WaitFor(ctx, checkpointInterval); err != nil {
			return err
		}
	}
}

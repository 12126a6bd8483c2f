package linkedin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"li-responder/internal/jobs"
	"li-responder/internal/utils"
)

const (
	descriptionSelector = ".jobs-description__content"
	seeMoreSelector     = ".jobs-description__footer-button"
	hiringTeamSelector  = ".job-details-people-who-can-help__section a[href*='/in/']"
)

// LoadDetails opens the job posting and fills in its description and, when
// the posting names a hiring-team member, the recruiter profile link.
func (c *Client) LoadDetails(ctx context.Context, job *jobs.Job) error {
	if err := c.page.Navigate(ctx, job.Link); err != nil {
		return fmt.Errorf("opening job page: %w", err)
	}
	if err := c.page.WaitVisible(ctx, descriptionSelector, 10*time.Second); err != nil {
		return fmt.Errorf("waiting for job description: %w", err)
	}
	if err := utils.WaitRandom(ctx, 1*time.Second, 2*time.Second); err != nil {
		return err
	}

	// Descriptions are collapsed by default.
	if ok, err := c.page.Exists(ctx, seeMoreSelector); err == nil && ok {
		if err := c.page.Click(ctx, seeMoreSelector); err != nil {
			c.logger.Debug("could not expand description", zap.Error(err))
		}
	}

	description, err := c.page.Find(ctx, descriptionSelector)
	if err != nil {
		return fmt.Errorf("reading job description: %w", err)
	}
	text, err := description.Text(ctx)
	if err != nil {
		return fmt.Errorf("reading job description: %w", err)
	}
	job.Description = strings.TrimSpace(text)

	if recruiter, err := c.page.Find(ctx, hiringTeamSelector); err == nil {
		if href, err := recruiter.Attr(ctx, "href"); err == nil {
			job.Recruiter = absoluteLink(href)
		}
	}

	return nil
}

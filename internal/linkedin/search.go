package linkedin

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"li-responder/internal/config"
	"li-responder/internal/utils"
)

const (
	searchBase  = "https://www.linkedin.com/jobs/search/"
	jobsPerPage = 25

	resultsListSelector = ".scaffold-layout__list"
	noResultsSelector   = ".jobs-search-no-results-banner"

	navigateAttempts = 3
)

var dateWindowParams = map[string]string{
	"month":    "f_TPR=r2592000",
	"week":     "f_TPR=r604800",
	"24 hours": "f_TPR=r86400",
}

// BuildSearchParams renders the query fragment shared by every page of a
// search, derived from the static configuration. f_LF=f_AL restricts results
// to Easy Apply postings.
func BuildSearchParams(cfg *config.Config) string {
	var params []string

	if cfg.Remote {
		params = append(params, "f_CF=f_WRA")
	}

	if indexes := cfg.EnabledExperienceIndexes(); len(indexes) > 0 {
		codes := make([]string, 0, len(indexes))
		for _, i := range indexes {
			codes = append(codes, strconv.Itoa(i))
		}
		params = append(params, "f_E="+strings.Join(codes, ","))
	}

	params = append(params, "distance="+strconv.Itoa(cfg.Distance))

	if codes := cfg.EnabledJobTypeCodes(); len(codes) > 0 {
		params = append(params, "f_JT="+strings.Join(codes, ","))
	}

	if p, ok := dateWindowParams[cfg.EnabledDateWindow()]; ok {
		params = append(params, p)
	}

	params = append(params, "f_LF=f_AL")

	return strings.Join(params, "&")
}

// BuildSearchURL renders the full URL of one results page for a
// position/location pair. Pages are counted from zero.
func BuildSearchURL(cfg *config.Config, position, location string, page int) string {
	return fmt.Sprintf("%s?%s&keywords=%s&location=%s&start=%d",
		searchBase,
		BuildSearchParams(cfg),
		url.QueryEscape(position),
		url.QueryEscape(location),
		page*jobsPerPage,
	)
}

// ErrNoMoreJobs signals that a results page showed the no-results banner.
var ErrNoMoreJobs = fmt.Errorf("no more jobs")

// OpenSearchPage navigates to one results page, retrying transient failures.
// Returns ErrNoMoreJobs when the search is exhausted.
func (c *Client) OpenSearchPage(ctx context.Context, searchURL string) error {
	backoff := 2 * time.Second
	var lastErr error

	for attempt := 1; attempt <= navigateAttempts; attempt++ {
		if err := c.page.Navigate(ctx, searchURL); err != nil {
			lastErr = err
		} else if err := c.page.WaitVisible(ctx, resultsListSelector, 10*time.Second); err == nil {
			return nil
		} else {
			if empty, eerr := c.page.Exists(ctx, noResultsSelector); eerr == nil && empty {
				return ErrNoMoreJobs
			}
			lastErr = err
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		c.logger.Warn("search page load failed",
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)

		if attempt < navigateAttempts {
			if err := utils.WaitFor(ctx, backoff); err != nil {
				return err
			}
			backoff *= 2
		}
	}

	return fmt.Errorf("loading search page after %d attempts: %w", navigateAttempts, lastErr)
}

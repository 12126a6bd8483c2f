package linkedin

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"li-responder/internal/browser"
	"li-responder/internal/jobs"
	"li-responder/internal/utils"
)

const (
	tileSelector        = ".job-card-container"
	tileTitleSelector   = ".job-card-list__title"
	tileCompanySelector = ".job-card-container__primary-description"
	tileLinkSelector    = "a.job-card-list__title"
	tileMethodSelector  = ".job-card-container__apply-method"
)

// CollectTiles scrolls the results list so lazy tiles render, then extracts
// one Job per tile. Tiles missing a title or a link are skipped, the page
// occasionally renders placeholder cards.
func (c *Client) CollectTiles(ctx context.Context) ([]*jobs.Job, error) {
	if err := c.page.ScrollSlow(ctx, resultsListSelector); err != nil {
		return nil, err
	}
	if err := utils.WaitRandom(ctx, 1*time.Second, 2*time.Second); err != nil {
		return nil, err
	}

	tiles, err := c.page.FindAll(ctx, tileSelector)
	if err != nil {
		return nil, err
	}

	list := make([]*jobs.Job, 0, len(tiles))
	for _, tile := range tiles {
		job, err := c.extractTile(ctx, tile)
		if err != nil {
			if errors.Is(err, browser.ErrStale) || errors.Is(err, browser.ErrNotFound) {
				c.logger.Debug("skipping unreadable tile", zap.Error(err))
				continue
			}
			return nil, err
		}
		list = append(list, job)
	}

	c.logger.Info("extracted job tiles", zap.Int("count", len(list)))
	return list, nil
}

func (c *Client) extractTile(ctx context.Context, tile browser.Element) (*jobs.Job, error) {
	title, err := childText(ctx, tile, tileTitleSelector)
	if err != nil {
		return nil, err
	}

	linkEl, err := tile.Find(ctx, tileLinkSelector)
	if err != nil {
		return nil, err
	}
	href, err := linkEl.Attr(ctx, "href")
	if err != nil {
		return nil, err
	}

	company, _ := childText(ctx, tile, tileCompanySelector)
	method, _ := childText(ctx, tile, tileMethodSelector)

	return &jobs.Job{
		Title:       strings.TrimSpace(title),
		Company:     strings.TrimSpace(company),
		Link:        absoluteLink(href),
		ApplyMethod: strings.TrimSpace(method),
	}, nil
}

func childText(ctx context.Context, root browser.Element, selector string) (string, error) {
	el, err := root.Find(ctx, selector)
	if err != nil {
		return "", err
	}
	return el.Text(ctx)
}

func absoluteLink(href string) string {
	if strings.HasPrefix(href, "/") {
		return "https://www.linkedin.com" + href
	}
	return href
}

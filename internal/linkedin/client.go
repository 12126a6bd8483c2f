package linkedin

import (
	"go.uber.org/zap"

	"li-responder/internal/browser"
)

// Client drives the LinkedIn web UI through a browser page.
type Client struct {
	page   browser.Page
	logger *zap.Logger
}

func New(page browser.Page, logger *zap.Logger) *Client {
	return &Client{page: page, logger: logger}
}

package linkedin

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"li-responder/internal/utils"
)

const (
	easyApplyButtonSelector = "button.jobs-apply-button"
	applyModalSelector      = ".jobs-easy-apply-content"

	safetyTipsSelector         = ".job-search-safety-reminder button.artdeco-modal__dismiss"
	modalDismissSelector       = ".artdeco-modal__dismiss"
	discardConfirmSelector     = ".artdeco-modal__confirm-dialog-btn[data-control-name='discard_application_confirm_btn']"
	discardFirstButtonFallback = ".artdeco-modal__confirm-dialog-btn"
)

// StartEasyApply clicks the Easy Apply button and waits for the application
// modal. The safety-tips popup sometimes lands on top of the button, dismiss
// it first.
func (c *Client) StartEasyApply(ctx context.Context) error {
	if ok, err := c.page.Exists(ctx, safetyTipsSelector); err == nil && ok {
		if err := c.page.Click(ctx, safetyTipsSelector); err != nil {
			c.logger.Debug("could not dismiss safety tips", zap.Error(err))
		}
	}

	if err := c.page.Click(ctx, easyApplyButtonSelector); err != nil {
		return fmt.Errorf("clicking easy apply: %w", err)
	}
	if err := c.page.WaitVisible(ctx, applyModalSelector, 10*time.Second); err != nil {
		return fmt.Errorf("waiting for application modal: %w", err)
	}
	return utils.WaitRandom(ctx, 1*time.Second, 2*time.Second)
}

// Discard abandons the current application: close the modal, then confirm on
// the "discard" dialog so LinkedIn does not keep a half-filled draft around.
func (c *Client) Discard(ctx context.Context) error {
	if err := c.page.Click(ctx, modalDismissSelector); err != nil {
		return fmt.Errorf("closing application modal: %w", err)
	}
	if err := utils.WaitRandom(ctx, 500*time.Millisecond, 1*time.Second); err != nil {
		return err
	}

	selector := discardConfirmSelector
	if ok, err := c.page.Exists(ctx, selector); err != nil || !ok {
		selector = discardFirstButtonFallback
	}
	if err := c.page.Click(ctx, selector); err != nil {
		return fmt.Errorf("confirming discard: %w", err)
	}

	c.logger.Info("application discarded")
	return nil
}

// CloseConfirmation dismisses the post-submit congratulations dialog when it
// shows up.
func (c *Client) CloseConfirmation(ctx context.Context) error {
	if err := utils.WaitRandom(ctx, 1*time.Second, 2*time.Second); err != nil {
		return err
	}
	if ok, err := c.page.Exists(ctx, modalDismissSelector); err != nil || !ok {
		return err
	}
	return c.page.Click(ctx, modalDismissSelector)
}

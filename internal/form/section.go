package form

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"li-responder/internal/browser"
)

const (
	containerSelector = ".jobs-easy-apply-content"
	sectionSelector   = "[data-test-form-element]"

	labelSelector       = "label"
	legendSelector      = "legend"
	inlineErrorSelector = ".artdeco-inline-feedback--error"
	datePickerSelector  = ".artdeco-datepicker__input"
)

// section is one form element group inside the Easy Apply modal, together
// with the text of the question it asks.
type section struct {
	el       browser.Element
	identity string
	question string
}

// scanSections reads the current modal step. Section identity is stable
// across re-renders so re-entry after a cooldown skips what was already
// filled.
func scanSections(ctx context.Context, page browser.Page) ([]*section, error) {
	container, err := page.Find(ctx, containerSelector)
	if err != nil {
		return nil, fmt.Errorf("locating application form: %w", err)
	}

	elements, err := container.FindAll(ctx, sectionSelector)
	if err != nil {
		return nil, err
	}

	sections := make([]*section, 0, len(elements))
	for _, el := range elements {
		sec, err := newSection(ctx, el)
		if err != nil {
			return nil, err
		}
		sections = append(sections, sec)
	}
	return sections, nil
}

func newSection(ctx context.Context, el browser.Element) (*section, error) {
	identity, err := identityOf(ctx, el)
	if err != nil {
		return nil, err
	}
	question, err := questionOf(ctx, el)
	if err != nil {
		return nil, err
	}
	return &section{el: el, identity: identity, question: question}, nil
}

// identityOf derives a stable key for a form node: its id when present,
// otherwise its class joined with a 32-bit hash of its text.
func identityOf(ctx context.Context, el browser.Element) (string, error) {
	if id, err := el.Attr(ctx, "id"); err != nil {
		return "", err
	} else if id != "" {
		return id, nil
	}

	class, err := el.Attr(ctx, "class")
	if err != nil {
		return "", err
	}
	text, err := el.Text(ctx)
	if err != nil {
		return "", err
	}

	h := fnv.New32a()
	h.Write([]byte(text))
	return fmt.Sprintf("%s#%08x", class, h.Sum32()), nil
}

// controlIdentityOf keys an individual control: id, else name, else
// class+type+leading text.
func controlIdentityOf(ctx context.Context, el browser.Element) (string, error) {
	if id, err := el.Attr(ctx, "id"); err != nil {
		return "", err
	} else if id != "" {
		return id, nil
	}

	if name, err := el.Attr(ctx, "name"); err != nil {
		return "", err
	} else if name != "" {
		return name, nil
	}

	class, err := el.Attr(ctx, "class")
	if err != nil {
		return "", err
	}
	typ, err := el.Attr(ctx, "type")
	if err != nil {
		return "", err
	}
	text, err := el.Text(ctx)
	if err != nil {
		return "", err
	}
	if runes := []rune(text); len(runes) > 32 {
		text = string(runes[:32])
	}
	return class + "|" + typ + "|" + text, nil
}

// questionOf extracts the human-readable question a section asks, preferring
// the explicit label or legend over raw section text.
func questionOf(ctx context.Context, el browser.Element) (string, error) {
	for _, selector := range []string{labelSelector, legendSelector} {
		if labelEl, err := el.Find(ctx, selector); err == nil {
			if text, err := labelEl.Text(ctx); err == nil && strings.TrimSpace(text) != "" {
				return firstLine(text), nil
			}
		}
	}

	text, err := el.Text(ctx)
	if err != nil {
		return "", err
	}
	return firstLine(text), nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// inlineError returns the section's validation message, empty when the
// section is clean.
func (s *section) inlineError(ctx context.Context) string {
	errEl, err := s.el.Find(ctx, inlineErrorSelector)
	if err != nil {
		return ""
	}
	text, err := errEl.Text(ctx)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

func (s *section) findAll(ctx context.Context, selector string) ([]browser.Element, error) {
	elements, err := s.el.FindAll(ctx, selector)
	if err != nil {
		return nil, err
	}
	return elements, nil
}

func (s *section) find(ctx context.Context, selector string) (browser.Element, bool) {
	el, err := s.el.Find(ctx, selector)
	if err != nil {
		return nil, false
	}
	return el, true
}

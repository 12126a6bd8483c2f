package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/chromedp/chromedp"
)

// ErrStale signals that a previously located element is gone from the DOM.
// LinkedIn re-renders form sections aggressively, so every element operation
// can fail this way.
var ErrStale = errors.New("stale element")

// ErrNotFound signals that a selector matched nothing.
var ErrNotFound = errors.New("element not found")

// Element is one live DOM node.
type Element interface {
	Text(ctx context.Context) (string, error)
	TagName(ctx context.Context) (string, error)
	Attr(ctx context.Context, name string) (string, error)
	Value(ctx context.Context) (string, error)
	Checked(ctx context.Context) (bool, error)
	SelectedIndex(ctx context.Context) (int, error)
	Click(ctx context.Context) error
	SetText(ctx context.Context, text string) error
	SelectByText(ctx context.Context, label string) error
	Find(ctx context.Context, selector string) (Element, error)
	FindAll(ctx context.Context, selector string) ([]Element, error)
	Upload(ctx context.Context, path string) error
}

// jsHelpers locate nodes by absolute XPath and compute XPaths for query
// results. Elements are addressed by XPath because node handles go stale the
// moment the page re-renders.
const jsHelpers = `function byXPath(p) {
	return document.evaluate(p, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
}
function xpathOf(el) {
	const parts = [];
	while (el && el.nodeType === Node.ELEMENT_NODE) {
		let idx = 1;
		let sib = el.previousElementSibling;
		while (sib) {
			if (sib.tagName === el.tagName) idx++;
			sib = sib.previousElementSibling;
		}
		parts.unshift(el.tagName.toLowerCase() + '[' + idx + ']');
		el = el.parentElement;
	}
	return '/' + parts.join('/');
}`

type evalOut struct {
	OK    bool     `json:"ok"`
	Value string   `json:"value"`
	Flag  bool     `json:"flag"`
	Num   float64  `json:"num"`
	Paths []string `json:"paths"`
}

type element struct {
	session *Session
	xpath   string
}

func (e *element) eval(ctx context.Context, body string) (*evalOut, error) {
	js := fmt.Sprintf(`(() => {
		%s
		const self = byXPath(%q);
		if (!self) return {ok: false};
		%s
	})()`, jsHelpers, e.xpath, body)

	var out evalOut
	if err := e.session.Evaluate(ctx, js, &out); err != nil {
		return nil, err
	}
	if !out.OK {
		return nil, fmt.Errorf("%w: %s", ErrStale, e.xpath)
	}
	return &out, nil
}

func (e *element) Text(ctx context.Context) (string, error) {
	out, err := e.eval(ctx, `return {ok: true, value: (self.innerText || self.textContent || '').trim()};`)
	if err != nil {
		return "", err
	}
	return out.Value, nil
}

func (e *element) TagName(ctx context.Context) (string, error) {
	out, err := e.eval(ctx, `return {ok: true, value: self.tagName.toLowerCase()};`)
	if err != nil {
		return "", err
	}
	return out.Value, nil
}

func (e *element) Attr(ctx context.Context, name string) (string, error) {
	out, err := e.eval(ctx, fmt.Sprintf(`return {ok: true, value: self.getAttribute(%q) || ''};`, name))
	if err != nil {
		return "", err
	}
	return out.Value, nil
}

func (e *element) Value(ctx context.Context) (string, error) {
	out, err := e.eval(ctx, `return {ok: true, value: String(self.value == null ? '' : self.value)};`)
	if err != nil {
		return "", err
	}
	return out.Value, nil
}

func (e *element) Checked(ctx context.Context) (bool, error) {
	out, err := e.eval(ctx, `return {ok: true, flag: self.checked === true};`)
	if err != nil {
		return false, err
	}
	return out.Flag, nil
}

func (e *element) SelectedIndex(ctx context.Context) (int, error) {
	out, err := e.eval(ctx, `return {ok: true, num: self.selectedIndex == null ? -1 : self.selectedIndex};`)
	if err != nil {
		return 0, err
	}
	return int(out.Num), nil
}

func (e *element) Click(ctx context.Context) error {
	_, err := e.eval(ctx, `self.scrollIntoView({block: 'center'}); self.click(); return {ok: true};`)
	return err
}

func (e *element) SetText(ctx context.Context, text string) error {
	_, err := e.eval(ctx, fmt.Sprintf(`self.focus();
		self.value = %q;
		self.dispatchEvent(new Event('input', {bubbles: true}));
		self.dispatchEvent(new Event('change', {bubbles: true}));
		return {ok: true};`, text))
	return err
}

func (e *element) SelectByText(ctx context.Context, label string) error {
	out, err := e.eval(ctx, fmt.Sprintf(`const label = %q;
		for (let i = 0; i < self.options.length; i++) {
			if (self.options[i].text.trim() === label) {
				self.selectedIndex = i;
				self.dispatchEvent(new Event('change', {bubbles: true}));
				return {ok: true, flag: true};
			}
		}
		return {ok: true, flag: false};`, label))
	if err != nil {
		return err
	}
	if !out.Flag {
		return fmt.Errorf("%w: option %q", ErrNotFound, label)
	}
	return nil
}

func (e *element) Find(ctx context.Context, selector string) (Element, error) {
	elements, err := e.FindAll(ctx, selector)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, selector)
	}
	return elements[0], nil
}

func (e *element) FindAll(ctx context.Context, selector string) ([]Element, error) {
	return findAllIn(ctx, e.session, e.xpath, selector)
}

func (e *element) Upload(ctx context.Context, path string) error {
	return e.session.run(ctx, chromedp.SetUploadFiles(e.xpath, []string{path}, chromedp.BySearch))
}

func findAllIn(ctx context.Context, s *Session, rootXPath, selector string) ([]Element, error) {
	root := "document"
	if rootXPath != "" {
		root = fmt.Sprintf("byXPath(%q)", rootXPath)
	}

	js := fmt.Sprintf(`(() => {
		%s
		const root = %s;
		if (!root) return {ok: false};
		return {ok: true, paths: Array.from(root.querySelectorAll(%q)).map(xpathOf)};
	})()`, jsHelpers, root, selector)

	var out evalOut
	if err := s.Evaluate(ctx, js, &out); err != nil {
		return nil, err
	}
	if !out.OK {
		return nil, fmt.Errorf("%w: %s", ErrStale, rootXPath)
	}

	elements := make([]Element, 0, len(out.Paths))
	for _, p := range out.Paths {
		elements = append(elements, &element{session: s, xpath: p})
	}
	return elements, nil
}

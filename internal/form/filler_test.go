package form

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"li-responder/internal/answers"
	"li-responder/internal/browser"
	"li-responder/internal/jobs"
	"li-responder/internal/profile"
)

type fakeElement struct {
	attrs         map[string]string
	tag           string
	text          string
	value         string
	checked       bool
	selectedIndex int
	children      map[string][]*fakeElement

	clicks   int
	setTexts []string
	selected []string
	uploads  []string
}

func (e *fakeElement) Text(context.Context) (string, error)    { return e.text, nil }
func (e *fakeElement) TagName(context.Context) (string, error) { return e.tag, nil }
func (e *fakeElement) Attr(_ context.Context, name string) (string, error) {
	return e.attrs[name], nil
}
func (e *fakeElement) Value(context.Context) (string, error)        { return e.value, nil }
func (e *fakeElement) Checked(context.Context) (bool, error)        { return e.checked, nil }
func (e *fakeElement) SelectedIndex(context.Context) (int, error)   { return e.selectedIndex, nil }
func (e *fakeElement) Click(context.Context) error                  { e.clicks++; return nil }
func (e *fakeElement) SetText(_ context.Context, text string) error {
	e.setTexts = append(e.setTexts, text)
	e.value = text
	return nil
}
func (e *fakeElement) SelectByText(_ context.Context, label string) error {
	e.selected = append(e.selected, label)
	return nil
}
func (e *fakeElement) Find(_ context.Context, selector string) (browser.Element, error) {
	if els := e.children[selector]; len(els) > 0 {
		return els[0], nil
	}
	return nil, fmt.Errorf("%w: %s", browser.ErrNotFound, selector)
}
func (e *fakeElement) FindAll(_ context.Context, selector string) ([]browser.Element, error) {
	els := e.children[selector]
	out := make([]browser.Element, 0, len(els))
	for _, el := range els {
		out = append(out, el)
	}
	return out, nil
}
func (e *fakeElement) Upload(_ context.Context, path string) error {
	e.uploads = append(e.uploads, path)
	return nil
}

type fakePage struct {
	elements map[string][]*fakeElement
	exists   map[string]bool
	clicked  []string
}

func (p *fakePage) Navigate(context.Context, string) error { return nil }
func (p *fakePage) Location(context.Context) (string, error) {
	return "https://www.linkedin.com/jobs/view/1/", nil
}
func (p *fakePage) WaitVisible(context.Context, string, time.Duration) error { return nil }
func (p *fakePage) Exists(_ context.Context, selector string) (bool, error) {
	return p.exists[selector], nil
}
func (p *fakePage) Find(_ context.Context, selector string) (browser.Element, error) {
	if els := p.elements[selector]; len(els) > 0 {
		return els[0], nil
	}
	return nil, fmt.Errorf("%w: %s", browser.ErrNotFound, selector)
}
func (p *fakePage) FindAll(_ context.Context, selector string) ([]browser.Element, error) {
	els := p.elements[selector]
	out := make([]browser.Element, 0, len(els))
	for _, el := range els {
		out = append(out, el)
	}
	return out, nil
}
func (p *fakePage) Click(_ context.Context, selector string) error {
	p.clicked = append(p.clicked, selector)
	return nil
}
func (p *fakePage) TypeSlow(context.Context, string, string) error { return nil }
func (p *fakePage) Evaluate(context.Context, string, any) error    { return nil }
func (p *fakePage) ScrollSlow(context.Context, string) error       { return nil }

type countingAnswerer struct {
	calls int
}

func (c *countingAnswerer) AnswerText(context.Context, string, string) (string, error) {
	c.calls++
	return "Five years of production Go.", nil
}
func (c *countingAnswerer) AnswerFromOptions(_ context.Context, _ string, options []string) (string, error) {
	c.calls++
	return options[0], nil
}
func (c *countingAnswerer) AnswerNumeric(context.Context, string) (string, error) {
	c.calls++
	return "5", nil
}
func (c *countingAnswerer) AnswerDate(context.Context, string) (string, error) {
	c.calls++
	return "2026-09-01", nil
}

type fakeLetters struct {
	fixCalls int
}

func (f *fakeLetters) ResumeOrCover(context.Context, string) (string, error) { return "resume", nil }
func (f *fakeLetters) CoverLetter(context.Context, string) (string, error) {
	return "Dear hiring team,", nil
}
func (f *fakeLetters) FixAnswer(_ context.Context, _, _, _ string) (string, error) {
	f.fixCalls++
	return "fixed", nil
}

func textSection(id, question, inputType, value string) *fakeElement {
	input := &fakeElement{
		tag:   "input",
		attrs: map[string]string{"id": id + "-input", "type": inputType},
		value: value,
	}
	return &fakeElement{
		attrs: map[string]string{"id": id},
		text:  question,
		children: map[string][]*fakeElement{
			"label": {{tag: "label", text: question}},
			"input[type='text'], input[type='tel'], input[type='email']": {input},
			"input[type='text'], input[type='tel'], input[type='email'], input[type='number'], textarea": {input},
		},
	}
}

func radioSection(id, question string, labels []string, checkedIndex int) *fakeElement {
	sec := &fakeElement{
		attrs: map[string]string{"id": id},
		text:  question,
		children: map[string][]*fakeElement{
			"label": {{tag: "label", text: question}},
		},
	}
	radios := make([]*fakeElement, 0, len(labels))
	for i, label := range labels {
		radioID := fmt.Sprintf("%s-opt-%d", id, i)
		radios = append(radios, &fakeElement{
			tag:     "input",
			attrs:   map[string]string{"id": radioID, "type": "radio"},
			checked: i == checkedIndex,
		})
		sec.children[fmt.Sprintf("label[for=%q]", radioID)] = []*fakeElement{{tag: "label", text: label}}
	}
	sec.children["input[type='radio']"] = radios
	return sec
}

func submitPage(sections ...*fakeElement) (*fakePage, *fakeElement) {
	container := &fakeElement{
		attrs:    map[string]string{"id": "apply-modal"},
		children: map[string][]*fakeElement{sectionSelector: sections},
	}
	button := &fakeElement{tag: "button", text: "Submit application"}
	return &fakePage{
		elements: map[string][]*fakeElement{
			containerSelector:  {container},
			nextButtonSelector: {button},
		},
		exists: map[string]bool{},
	}, button
}

func newTestFiller(t *testing.T, page browser.Page, answerer answers.Answerer) (*Filler, *fakeLetters) {
	t.Helper()
	logger := zap.NewNop()
	store := answers.NewStore(filepath.Join(t.TempDir(), "answers.json"), logger)
	letters := &fakeLetters{}
	resume := &profile.Resume{}
	filler := NewFiller(page, answers.NewResolver(store, answerer, logger), letters, resume, nil,
		Options{OutputDir: t.TempDir(), Cooldown: time.Millisecond}, logger)
	return filler, letters
}

func TestApplyFullyPrefilledSubmitsWithoutModelCalls(t *testing.T) {
	page, button := submitPage(
		textSection("sec-years", "Years of experience with Go", "text", "5"),
		radioSection("sec-visa", "Do you require sponsorship?", []string{"Yes", "No"}, 1),
	)

	answerer := &countingAnswerer{}
	filler, _ := newTestFiller(t, page, answerer)

	err := filler.Apply(context.Background(), &jobs.Job{Title: "Engineer", Company: "Acme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if answerer.calls != 0 {
		t.Fatalf("prefilled form must not call the model, got %d calls", answerer.calls)
	}
	if button.clicks != 1 {
		t.Fatalf("expected exactly one submit click, got %d", button.clicks)
	}
}

func TestApplyFillsEmptyTextbox(t *testing.T) {
	sec := textSection("sec-years", "Years of experience with Go", "text", "")
	page, _ := submitPage(sec)

	answerer := &countingAnswerer{}
	filler, _ := newTestFiller(t, page, answerer)

	if err := filler.Apply(context.Background(), &jobs.Job{Title: "Engineer"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	input := sec.children["input[type='text'], input[type='tel'], input[type='email'], input[type='number'], textarea"][0]
	if len(input.setTexts) != 1 || input.setTexts[0] != "Five years of production Go." {
		t.Fatalf("unexpected writes: %v", input.setTexts)
	}
	if answerer.calls != 1 {
		t.Fatalf("expected one model call, got %d", answerer.calls)
	}
}

func TestFillStepIsIdempotent(t *testing.T) {
	sec := textSection("sec-years", "Years of experience with Go", "text", "")
	page, _ := submitPage(sec)

	answerer := &countingAnswerer{}
	filler, _ := newTestFiller(t, page, answerer)
	filler.job = &jobs.Job{Title: "Engineer"}
	filler.processed = make(map[string]bool)
	filler.processedControls = make(map[string]bool)

	for i := 0; i < 3; i++ {
		if err := filler.fillStep(context.Background()); err != nil {
			t.Fatalf("pass %d: %v", i, err)
		}
	}

	input := sec.children["input[type='text'], input[type='tel'], input[type='email'], input[type='number'], textarea"][0]
	if len(input.setTexts) != 1 {
		t.Fatalf("re-entry must not rewrite the field, got %d writes", len(input.setTexts))
	}
	if answerer.calls != 1 {
		t.Fatalf("re-entry must not call the model again, got %d calls", answerer.calls)
	}
}

func TestApplyPredefinedBeatsModel(t *testing.T) {
	sec := textSection("sec-phone", "Phone country code", "tel", "")
	page, _ := submitPage(sec)

	answerer := &countingAnswerer{}
	filler, _ := newTestFiller(t, page, answerer)
	filler.resume = &profile.Resume{
		PersonalInformation: profile.PersonalInformation{PhoneCountryCode: "+1", Phone: "5550100"},
	}

	if err := filler.Apply(context.Background(), &jobs.Job{Title: "Engineer"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	input := sec.children["input[type='text'], input[type='tel'], input[type='email']"][0]
	if len(input.setTexts) != 1 || input.setTexts[0] != "+1" {
		t.Fatalf("expected the country code, got %v", input.setTexts)
	}
	if answerer.calls != 0 {
		t.Fatalf("predefined question must not call the model, got %d calls", answerer.calls)
	}
}

func TestApplyUnhandledSectionFails(t *testing.T) {
	strange := &fakeElement{
		attrs: map[string]string{"id": "sec-odd"},
		text:  "Record a video introduction",
		children: map[string][]*fakeElement{
			"label": {{tag: "label", text: "Record a video introduction"}},
		},
	}
	page, _ := submitPage(strange)

	filler, _ := newTestFiller(t, page, &countingAnswerer{})

	err := filler.Apply(context.Background(), &jobs.Job{Title: "Engineer"})
	if err == nil || !strings.Contains(err.Error(), "no handler for section") {
		t.Fatalf("expected unhandled-section error, got %v", err)
	}
}

func TestTextboxValidationErrorTriggersOneFix(t *testing.T) {
	sec := textSection("sec-years", "Years of experience with Go", "text", "")
	sec.children[inlineErrorSelector] = []*fakeElement{{text: "Enter a whole number"}}
	page, _ := submitPage(sec)

	answerer := &countingAnswerer{}
	filler, letters := newTestFiller(t, page, answerer)

	if err := filler.Apply(context.Background(), &jobs.Job{Title: "Engineer"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if letters.fixCalls != 1 {
		t.Fatalf("expected one corrective round, got %d", letters.fixCalls)
	}
	input := sec.children["input[type='text'], input[type='tel'], input[type='email'], input[type='number'], textarea"][0]
	if len(input.setTexts) != 2 || input.setTexts[1] != "fixed" {
		t.Fatalf("expected the fixed value to be written, got %v", input.setTexts)
	}
}

func TestControlsSurviveSectionIdentityShift(t *testing.T) {
	sec := textSection("sec-years", "Years of experience with Go", "text", "")
	page, _ := submitPage(sec)

	answerer := &countingAnswerer{}
	filler, _ := newTestFiller(t, page, answerer)
	filler.job = &jobs.Job{Title: "Engineer"}
	filler.processed = make(map[string]bool)
	filler.processedControls = make(map[string]bool)

	if err := filler.fillStep(context.Background()); err != nil {
		t.Fatalf("first pass: %v", err)
	}

	// A re-render can hand the section a fresh identity and clear the
	// input; the control itself must still be touched only once.
	input := sec.children["input[type='text'], input[type='tel'], input[type='email'], input[type='number'], textarea"][0]
	sec.attrs["id"] = "sec-years-rerendered"
	input.value = ""

	if err := filler.fillStep(context.Background()); err != nil {
		t.Fatalf("second pass: %v", err)
	}

	if len(input.setTexts) != 1 {
		t.Fatalf("control rewritten after identity shift, got %d writes", len(input.setTexts))
	}
	if answerer.calls != 1 {
		t.Fatalf("expected one model call, got %d", answerer.calls)
	}
}

type vagueDateAnswerer struct {
	countingAnswerer
}

func (v *vagueDateAnswerer) AnswerDate(context.Context, string) (string, error) {
	v.calls++
	return "as soon as possible", nil
}

func TestDateFieldStaysEmptyOnVagueReply(t *testing.T) {
	input := &fakeElement{tag: "input", attrs: map[string]string{"id": "sec-start-input"}}
	sec := &fakeElement{
		attrs: map[string]string{"id": "sec-start"},
		text:  "Earliest start date",
		children: map[string][]*fakeElement{
			"label":            {{tag: "label", text: "Earliest start date"}},
			datePickerSelector: {input},
		},
	}
	page, button := submitPage(sec)

	answerer := &vagueDateAnswerer{}
	filler, _ := newTestFiller(t, page, answerer)

	if err := filler.Apply(context.Background(), &jobs.Job{Title: "Engineer"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(input.setTexts) != 0 {
		t.Fatalf("unusable date reply must leave the field empty, got %v", input.setTexts)
	}
	if button.clicks != 1 {
		t.Fatalf("application must still submit, got %d clicks", button.clicks)
	}
}

func TestIdentityFallsBackToClassAndHash(t *testing.T) {
	a := &fakeElement{attrs: map[string]string{"class": "fb-element"}, text: "Question A"}
	b := &fakeElement{attrs: map[string]string{"class": "fb-element"}, text: "Question B"}

	idA, err := identityOf(context.Background(), a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	idB, err := identityOf(context.Background(), b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if idA == idB {
		t.Fatalf("different questions must not collide: %q", idA)
	}
	idA2, _ := identityOf(context.Background(), a)
	if idA != idA2 {
		t.Fatalf("identity must be stable, got %q then %q", idA, idA2)
	}
}

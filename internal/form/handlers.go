package form

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"li-responder/internal/answers"
	"li-responder/internal/browser"
)

// handler fills one kind of form section. handle returns false when the
// section is not its kind; the first handler that claims a section wins.
type handler interface {
	name() string
	handle(ctx context.Context, f *Filler, sec *section) (bool, error)
}

// handlerChain is ordered by specificity. Predefined personal fields go
// before anything model-backed, and the date picker comes after the generic
// textbox handler excluded it.
var handlerChain = []handler{
	uploadHandler{},
	predefinedHandler{},
	termsHandler{},
	singleCheckboxHandler{},
	radioHandler{},
	dropdownHandler{},
	textboxHandler{},
	multiCheckboxHandler{},
	dateHandler{},
}

type predefinedHandler struct{}

func (predefinedHandler) name() string { return "predefined" }

func (predefinedHandler) handle(ctx context.Context, f *Filler, sec *section) (bool, error) {
	input, ok := sec.find(ctx, "input[type='text'], input[type='tel'], input[type='email']")
	if !ok {
		return false, nil
	}

	question := strings.ToLower(sec.question)
	for _, predefined := range f.resume.PredefinedAnswers() {
		if predefined.Value == "" {
			continue
		}
		if !strings.Contains(question, strings.ReplaceAll(predefined.Key, "_", " ")) {
			continue
		}

		value, err := input.Value(ctx)
		if err != nil {
			return true, err
		}
		if value != "" {
			return true, nil
		}
		return true, f.setControl(ctx, input, predefined.Value)
	}

	return false, nil
}

// termsKeywords mark the consent checkbox that never needs a model call.
var termsKeywords = []string{"terms of service", "privacy policy", "i agree"}

type termsHandler struct{}

func (termsHandler) name() string { return "terms_of_service" }

func (termsHandler) handle(ctx context.Context, f *Filler, sec *section) (bool, error) {
	boxes, err := sec.findAll(ctx, "input[type='checkbox']")
	if err != nil || len(boxes) != 1 {
		return false, err
	}

	text, err := sec.el.Text(ctx)
	if err != nil {
		return true, err
	}
	lower := strings.ToLower(text)

	matched := false
	for _, keyword := range termsKeywords {
		if strings.Contains(lower, keyword) {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}

	checked, err := boxes[0].Checked(ctx)
	if err != nil {
		return true, err
	}
	if checked {
		return true, nil
	}
	return true, f.clickControl(ctx, sec, boxes[0])
}

type singleCheckboxHandler struct{}

func (singleCheckboxHandler) name() string { return "single_checkbox" }

func (singleCheckboxHandler) handle(ctx context.Context, f *Filler, sec *section) (bool, error) {
	boxes, err := sec.findAll(ctx, "input[type='checkbox']")
	if err != nil || len(boxes) != 1 {
		return false, err
	}

	checked, err := boxes[0].Checked(ctx)
	if err != nil {
		return true, err
	}
	if checked {
		return true, nil
	}
	return true, f.clickControl(ctx, sec, boxes[0])
}

type radioHandler struct{}

func (radioHandler) name() string { return "radio" }

func (radioHandler) handle(ctx context.Context, f *Filler, sec *section) (bool, error) {
	radios, err := sec.findAll(ctx, "input[type='radio']")
	if err != nil || len(radios) < 2 {
		return false, err
	}

	for _, radio := range radios {
		checked, err := radio.Checked(ctx)
		if err != nil {
			return true, err
		}
		if checked {
			return true, nil
		}
	}

	options, err := optionLabels(ctx, sec, radios)
	if err != nil {
		return true, err
	}

	answer, err := f.resolver.ResolveOptions(ctx, answers.KindRadio, sec.question, options)
	if err != nil {
		return true, err
	}

	for i, option := range options {
		if option == answer {
			return true, f.clickControl(ctx, sec, radios[i])
		}
	}
	return true, fmt.Errorf("no radio option matches %q for %q", answer, sec.question)
}

type dropdownHandler struct{}

func (dropdownHandler) name() string { return "dropdown" }

func (dropdownHandler) handle(ctx context.Context, f *Filler, sec *section) (bool, error) {
	sel, ok := sec.find(ctx, "select")
	if !ok {
		return false, nil
	}

	index, err := sel.SelectedIndex(ctx)
	if err != nil {
		return true, err
	}
	if index > 0 {
		return true, nil
	}

	optionEls, err := sel.FindAll(ctx, "option")
	if err != nil {
		return true, err
	}
	options := make([]string, 0, len(optionEls))
	for i, el := range optionEls {
		text, err := el.Text(ctx)
		if err != nil {
			return true, err
		}
		text = strings.TrimSpace(text)
		// The first option is usually the "Select an option" placeholder.
		if i == 0 && strings.HasPrefix(strings.ToLower(text), "select") {
			continue
		}
		options = append(options, text)
	}

	answer, err := f.resolver.ResolveOptions(ctx, answers.KindDropdown, sec.question, options)
	if err != nil {
		return true, err
	}
	return true, f.selectControl(ctx, sel, answer)
}

type textboxHandler struct{}

func (textboxHandler) name() string { return "textbox" }

func (textboxHandler) handle(ctx context.Context, f *Filler, sec *section) (bool, error) {
	if _, isDate := sec.find(ctx, datePickerSelector); isDate {
		return false, nil
	}

	input, ok := sec.find(ctx, "input[type='text'], input[type='tel'], input[type='email'], input[type='number'], textarea")
	if !ok {
		return false, nil
	}

	value, err := input.Value(ctx)
	if err != nil {
		return true, err
	}
	if value != "" {
		return true, nil
	}

	numeric, err := isNumericInput(ctx, input)
	if err != nil {
		return true, err
	}

	var answer string
	if numeric {
		answer, err = f.resolver.ResolveNumeric(ctx, sec.question, 0)
	} else {
		answer, err = f.resolver.ResolveText(ctx, sec.question, f.job.Description)
	}
	if err != nil {
		return true, err
	}

	if err := f.setControl(ctx, input, answer); err != nil {
		return true, err
	}

	// One corrective round when the page rejects the value. The corrective
	// write goes to the input directly: the control is already marked.
	if msg := sec.inlineError(ctx); msg != "" {
		f.logger.Debug("fixing rejected answer",
			zap.String("question", sec.question),
			zap.String("error", msg),
		)
		fixed, err := f.letters.FixAnswer(ctx, sec.question, answer, msg)
		if err != nil {
			return true, err
		}
		if err := input.SetText(ctx, fixed); err != nil {
			return true, err
		}
	}
	return true, nil
}

func isNumericInput(ctx context.Context, input browser.Element) (bool, error) {
	typ, err := input.Attr(ctx, "type")
	if err != nil {
		return false, err
	}
	if strings.Contains(strings.ToLower(typ), "number") {
		return true, nil
	}
	id, err := input.Attr(ctx, "id")
	if err != nil {
		return false, err
	}
	return strings.Contains(strings.ToLower(id), "number"), nil
}

type multiCheckboxHandler struct{}

func (multiCheckboxHandler) name() string { return "multi_checkbox" }

func (multiCheckboxHandler) handle(ctx context.Context, f *Filler, sec *section) (bool, error) {
	boxes, err := sec.findAll(ctx, "input[type='checkbox']")
	if err != nil || len(boxes) < 2 {
		return false, err
	}

	for _, box := range boxes {
		checked, err := box.Checked(ctx)
		if err != nil {
			return true, err
		}
		if checked {
			return true, nil
		}
	}

	options, err := optionLabels(ctx, sec, boxes)
	if err != nil {
		return true, err
	}

	answer, err := f.resolver.ResolveOptions(ctx, answers.KindCheckbox, sec.question, options)
	if err != nil {
		return true, err
	}

	for i, option := range options {
		if option == answer {
			return true, f.clickControl(ctx, sec, boxes[i])
		}
	}
	return true, fmt.Errorf("no checkbox option matches %q for %q", answer, sec.question)
}

type dateHandler struct{}

func (dateHandler) name() string { return "date" }

func (dateHandler) handle(ctx context.Context, f *Filler, sec *section) (bool, error) {
	input, ok := sec.find(ctx, datePickerSelector)
	if !ok {
		return false, nil
	}

	value, err := input.Value(ctx)
	if err != nil {
		return true, err
	}
	if value != "" {
		return true, nil
	}

	iso, err := f.resolver.ResolveDate(ctx, sec.question)
	if err != nil {
		return true, err
	}
	// No usable date: leave the optional field empty and move on.
	if iso == "" {
		return true, nil
	}
	parsed, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return true, fmt.Errorf("parsing resolved date %q: %w", iso, err)
	}

	// The picker input wants the US format.
	return true, f.setControl(ctx, input, parsed.Format("01/02/2006"))
}

// optionLabels reads the label text of each option control, by label[for] on
// the control id.
func optionLabels(ctx context.Context, sec *section, controls []browser.Element) ([]string, error) {
	labels := make([]string, 0, len(controls))
	for _, control := range controls {
		id, err := control.Attr(ctx, "id")
		if err != nil {
			return nil, err
		}

		text := ""
		if id != "" {
			if labelEl, ok := sec.find(ctx, fmt.Sprintf("label[for=%q]", id)); ok {
				if text, err = labelEl.Text(ctx); err != nil {
					return nil, err
				}
			}
		}
		if text == "" {
			if text, err = control.Attr(ctx, "value"); err != nil {
				return nil, err
			}
		}
		labels = append(labels, strings.TrimSpace(text))
	}
	return labels, nil
}

// clickCheckbox clicks the control's label when it has one. LinkedIn hides
// the raw input behind the styled label, a direct click lands nowhere.
func clickCheckbox(ctx context.Context, sec *section, control browser.Element) error {
	id, err := control.Attr(ctx, "id")
	if err != nil {
		return err
	}
	if id != "" {
		if labelEl, ok := sec.find(ctx, fmt.Sprintf("label[for=%q]", id)); ok {
			return labelEl.Click(ctx)
		}
	}
	return control.Click(ctx)
}

package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-reportform/pkg/model"
	"github.com/goliatone/go-reportform/pkg/report"
)

const (
	dateLayout  = "2006-01-02"
	noneChoice  = "(none)"
	maxAttempts = 3
)

// Filler drives a report.Controller from terminal prompts.
type Filler struct {
	driver      PromptDriver
	out         io.Writer
	theme       Theme
	logger      *zap.Logger
	maxAttempts int
}

// New constructs a Filler with the survey driver unless one is supplied.
func New(options ...Option) *Filler {
	f := &Filler{
		out:         os.Stdout,
		theme:       DefaultTheme(),
		logger:      zap.NewNop(),
		maxAttempts: maxAttempts,
	}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	if f.driver == nil {
		f.driver = NewSurveyDriver(f.out)
	}
	return f
}

// Fill prompts every visible field once, in section order. The view is
// rebuilt after each answer so fields hidden or revealed by that answer are
// skipped or picked up. Required fields left blank by a visibility change are
// asked again, up to the configured number of passes.
func (f *Filler) Fill(ctx context.Context, c *report.Controller) error {
	if c == nil {
		return ErrNoController
	}

	if err := f.printNotices(ctx, c.View()); err != nil {
		return err
	}

	asked := make(map[string]bool)
	announced := make(map[string]bool)
	for {
		section, field, ok := nextField(c.View(), asked)
		if !ok {
			break
		}
		if !announced[section.ID] {
			announced[section.ID] = true
			if err := f.info(ctx, f.theme.SectionPrefix, section.Title); err != nil {
				return err
			}
		}
		asked[field.Name] = true
		if err := f.prompt(ctx, c, field); err != nil {
			return err
		}
	}

	for attempt := 0; !c.IsFormValid(); attempt++ {
		if attempt >= f.maxAttempts {
			return ErrTooManyAttempts
		}
		for _, field := range invalidFields(c.View()) {
			if err := f.info(ctx, f.theme.ErrorPrefix, field.Label+" needs a valid value."); err != nil {
				return err
			}
			if err := f.prompt(ctx, c, field); err != nil {
				return err
			}
		}
	}
	return nil
}

// Lookup asks for the lookup type and keys, then runs the controller lookup.
func (f *Filler) Lookup(ctx context.Context, c *report.Controller) (model.LookupResult, error) {
	if c == nil {
		return model.LookupResult{}, ErrNoController
	}
	c.SetMode(report.ModeView)

	options := report.LookupTypeOptions()
	labels := make([]string, len(options))
	for i, option := range options {
		labels[i] = option.Label
	}
	idx, err := f.driver.Select(ctx, SelectConfig{
		Message: "How did you submit your report?",
		Options: labels,
	})
	if err != nil {
		return model.LookupResult{}, err
	}
	if idx < 0 || idx >= len(options) {
		idx = 0
	}
	kind := report.ParseLookupType(fmt.Sprint(options[idx].Value))
	c.SetLookupType(kind)

	ask := func(name, message string, validate func(string) error) error {
		value, err := f.driver.Input(ctx, InputConfig{Message: message, Validator: validate})
		if err != nil {
			return err
		}
		c.SetLookupField(name, strings.TrimSpace(value))
		return nil
	}
	if kind == report.LookupAnonymous {
		err = ask(report.LookupFieldAnonymousID, "Anonymous ID", requireText)
	} else {
		err = ask(report.LookupFieldFullName, "Full Name", requireText)
		if err == nil {
			err = ask(report.LookupFieldEmail, "Email", requireEmail)
		}
	}
	if err != nil {
		return model.LookupResult{}, err
	}
	return c.Lookup(ctx)
}

func (f *Filler) prompt(ctx context.Context, c *report.Controller, field model.FieldView) error {
	label := field.Label
	if field.IsRequired {
		label += " *"
	}
	f.logger.Debug("prompt field", zap.String("field", field.Name), zap.String("type", string(field.Type)))

	switch {
	case field.IsCheckbox:
		answer, err := f.driver.Confirm(ctx, ConfirmConfig{
			Message: label,
			Default: isTrue(field.Value),
		})
		if err != nil {
			return err
		}
		c.SetValue(field.Name, answer)

	case (field.IsRadio || field.IsCombobox) && len(field.Options) > 0:
		labels := make([]string, 0, len(field.Options)+1)
		offset := 0
		if field.IsCombobox && !field.IsRequired {
			labels = append(labels, noneChoice)
			offset = 1
		}
		current := fmt.Sprint(field.Value)
		defaultIndex := 0
		for i, option := range field.Options {
			labels = append(labels, option.Label)
			if fmt.Sprint(option.Value) == current {
				defaultIndex = i + offset
			}
		}
		idx, err := f.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      labels,
			DefaultIndex: defaultIndex,
		})
		if err != nil {
			return err
		}
		idx -= offset
		if idx < 0 || idx >= len(field.Options) {
			c.SetValue(field.Name, "")
			return nil
		}
		c.SetValue(field.Name, field.Options[idx].Value)

	case field.IsTextarea:
		answer, err := f.driver.TextArea(ctx, TextAreaConfig{
			Message:   label,
			Default:   stringValue(field.Value),
			Validator: fieldValidator(field),
		})
		if err != nil {
			return err
		}
		c.SetValue(field.Name, strings.TrimSpace(answer))

	default:
		answer, err := f.driver.Input(ctx, InputConfig{
			Message:   label,
			Default:   stringValue(field.Value),
			Help:      inputHelp(field),
			Validator: fieldValidator(field),
		})
		if err != nil {
			return err
		}
		c.SetValue(field.Name, strings.TrimSpace(answer))
	}
	return nil
}

func (f *Filler) printNotices(ctx context.Context, view model.FormView) error {
	if view.Appearance.HeaderTitle != "" {
		if err := f.info(ctx, f.theme.SectionPrefix, view.Appearance.HeaderTitle); err != nil {
			return err
		}
	}
	if view.Appearance.SecurityNotice != "" {
		if err := f.info(ctx, f.theme.NoticePrefix, view.Appearance.SecurityNotice); err != nil {
			return err
		}
	}
	for _, notice := range view.Notices {
		if err := f.info(ctx, f.theme.NoticePrefix, notice.Title+": "+notice.Content); err != nil {
			return err
		}
	}
	return nil
}

func (f *Filler) info(ctx context.Context, prefix, msg string) error {
	if prefix != "" {
		msg = prefix + " " + msg
	}
	return f.driver.Info(ctx, msg)
}

// nextField returns the first visible, not yet asked field in display order.
func nextField(view model.FormView, asked map[string]bool) (model.SectionView, model.FieldView, bool) {
	for _, section := range view.Sections {
		for _, field := range section.Fields {
			if field.IsVisible && !asked[field.Name] {
				return section, field, true
			}
		}
	}
	return model.SectionView{}, model.FieldView{}, false
}

func invalidFields(view model.FormView) []model.FieldView {
	var out []model.FieldView
	for _, section := range view.Sections {
		for _, field := range section.Fields {
			if !field.IsVisible || !field.IsRequired {
				continue
			}
			if validateValue(field, stringValue(field.Value)) != nil && !field.IsCheckbox {
				out = append(out, field)
			}
		}
	}
	return out
}

func fieldValidator(field model.FieldView) func(string) error {
	return func(s string) error {
		return validateValue(field, s)
	}
}

func validateValue(field model.FieldView, raw string) error {
	s := strings.TrimSpace(raw)
	if s == "" {
		if field.IsRequired {
			return errors.New("a value is required")
		}
		return nil
	}
	switch field.Type {
	case model.FieldTypeEmail:
		if !report.ValidEmail(s) {
			return errors.New("enter an email like name@example.com")
		}
	case model.FieldTypeDate:
		date, err := time.Parse(dateLayout, s)
		if err != nil {
			return errors.New("use the YYYY-MM-DD format")
		}
		if field.Max != "" {
			if max, err := time.Parse(dateLayout, field.Max); err == nil && date.After(max) {
				return fmt.Errorf("date cannot be after %s", field.Max)
			}
		}
	}
	return nil
}

func requireText(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("a value is required")
	}
	return nil
}

func requireEmail(s string) error {
	if err := requireText(s); err != nil {
		return err
	}
	if !report.ValidEmail(strings.TrimSpace(s)) {
		return errors.New("enter an email like name@example.com")
	}
	return nil
}

func inputHelp(field model.FieldView) string {
	if field.Type == model.FieldTypeDate {
		help := "Format YYYY-MM-DD"
		if field.Max != "" {
			help += ", no later than " + field.Max
		}
		return help
	}
	return ""
}

func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func isTrue(value any) bool {
	b, ok := model.CoerceBool(value).(bool)
	return ok && b
}

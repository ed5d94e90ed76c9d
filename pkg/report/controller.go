package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-reportform/pkg/gateway"
	"github.com/goliatone/go-reportform/pkg/grammar"
	"github.com/goliatone/go-reportform/pkg/model"
	"github.com/goliatone/go-reportform/pkg/notify"
	"github.com/goliatone/go-reportform/pkg/store"
	"github.com/goliatone/go-reportform/pkg/visibility"
	"github.com/goliatone/go-reportform/pkg/visibility/expr"
)

var (
	// ErrInvalidForm is returned by Submit when client side validation fails.
	ErrInvalidForm = errors.New("report: form is incomplete")
	// ErrLookupInput is returned by Lookup when the lookup keys are empty.
	ErrLookupInput = errors.New("report: lookup input is incomplete")
	// ErrNoGateway is returned when a remote call is attempted without a gateway.
	ErrNoGateway = errors.New("report: gateway is not configured")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s has the local@domain.tld shape.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Controller owns the report form: parsed sections, form values, submission
// and lookup flows. It is safe for concurrent use; remote calls run outside
// the state lock and the last write wins.
type Controller struct {
	cfg        grammar.Config
	gateway    gateway.ReportGateway
	store      *store.Store[State]
	resolver   visibility.Resolver
	notifier   notify.Notifier
	logger     *zap.Logger
	baseline   model.Values
	decorators []model.Decorator
	appearance model.Appearance
	now        func() time.Time
}

// New parses cfg and initialises form values. gw may be nil for offline use
// (parsing, rendering); remote operations then return ErrNoGateway.
func New(cfg grammar.Config, gw gateway.ReportGateway, opts ...Option) *Controller {
	c := &Controller{
		cfg:     cfg,
		gateway: gw,
		resolver: visibility.Resolver{
			Evaluator: expr.New(),
			Rules:     visibility.DefaultRules(),
			Policy:    visibility.FailOpen,
		},
		notifier:   notify.Nop,
		logger:     zap.NewNop(),
		baseline:   DefaultBaseline(),
		appearance: DefaultAppearance(),
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.resolver.Logger == nil {
		c.resolver.Logger = c.logger
	}

	form := c.parse()
	c.store = store.New(State{
		Form:    form,
		Options: map[string][]model.Option{},
		Values:  c.initialValues(form),
		Mode:    ModeSubmit,
		Lookup:  LookupState{Type: LookupContact},
	})
	return c
}

// State returns the current snapshot.
func (c *Controller) State() State {
	return c.store.Get()
}

// Values returns the current form values.
func (c *Controller) Values() model.Values {
	return c.store.Get().Values.Clone()
}

// Value returns the current value of one field.
func (c *Controller) Value(name string) (any, bool) {
	value, ok := c.store.Get().Values[name]
	return value, ok
}

// Form returns the current parsed model.
func (c *Controller) Form() model.FormModel {
	return c.store.Get().Form
}

// Subscribe registers fn for every state transition.
func (c *Controller) Subscribe(fn func(State)) func() {
	return c.store.Subscribe(fn)
}

// parse runs the grammar and decorators. Failures are logged and degrade to
// an empty model.
func (c *Controller) parse() model.FormModel {
	form, err := grammar.Parse(c.cfg)
	if err != nil {
		c.logger.Error("report configuration parse failed", zap.Error(err))
		return model.FormModel{Sections: []model.Section{}, Notices: []model.Notice{}}
	}
	for _, decorator := range c.decorators {
		if err := decorator.Decorate(&form); err != nil {
			c.logger.Error("report decorator failed", zap.Error(err))
			return model.FormModel{Sections: []model.Section{}, Notices: []model.Notice{}}
		}
	}
	return form
}

func (c *Controller) initialValues(form model.FormModel) model.Values {
	values := c.baseline.Clone()
	for _, field := range form.Fields() {
		if field.Name == "" {
			continue
		}
		values[field.Name] = DefaultValue(field)
	}
	return values
}

// DefaultValue returns the initial value of field: checkboxes start false,
// radios take their explicit default or first option, everything else its
// explicit default or "".
func DefaultValue(field model.Field) any {
	switch field.Type {
	case model.FieldTypeCheckbox:
		if field.Default != nil {
			return model.CoerceBool(field.Default)
		}
		return false
	case model.FieldTypeRadio:
		if field.Default != nil {
			return model.CoerceBool(field.Default)
		}
		if len(field.Options) > 0 {
			return model.CoerceBool(field.Options[0].Value)
		}
		return ""
	default:
		if field.Default != nil {
			return field.Default
		}
		return ""
	}
}

// SetOptionSet attaches a named option list and re-parses the configuration.
// Re-parsing is idempotent so arrivals may happen in any order.
func (c *Controller) SetOptionSet(name string, options []model.Option) {
	form := c.parse()
	c.store.Update(func(s State) State {
		s = s.withOptions(name, options)
		s.Form = form
		return s
	})
}

// LoadOptions fetches the category and severity lists concurrently. A failed
// fetch is logged and leaves the other list in place; the first error is
// returned after both calls finish.
func (c *Controller) LoadOptions(ctx context.Context) error {
	if c.gateway == nil {
		return ErrNoGateway
	}
	var g errgroup.Group
	load := func(name string, fetch func(context.Context) ([]model.Option, error)) {
		g.Go(func() error {
			options, err := fetch(ctx)
			if err != nil {
				c.logger.Warn("report option load failed", zap.String("source", name), zap.Error(err))
				return fmt.Errorf("report: load %s: %w", name, err)
			}
			c.SetOptionSet(name, options)
			return nil
		})
	}
	load(grammar.SourceCategories, c.gateway.GetCategoryOptions)
	load(grammar.SourceSeverities, c.gateway.GetSeverityOptions)
	return g.Wait()
}

// SetValue records a field change and applies the cross-field rules. Radio
// inputs deliver "true"/"false" as strings; those become booleans.
func (c *Controller) SetValue(name string, value any) {
	c.store.Update(func(s State) State {
		if field, ok := findField(s.Form, name); ok && field.Type == model.FieldTypeRadio {
			value = model.CoerceBool(value)
		}
		values := s.Values.With(name, value)

		switch name {
		case FieldIsAnonymous:
			if truthy(value) {
				values[FieldReporterName] = ""
				values[FieldReporterPhone] = ""
				values[FieldConsentToContact] = false
				values[FieldPreferredContact] = ContactEmail
			} else {
				values[FieldConsentToContact] = true
				values[FieldPreferredContact] = ContactEmail
			}
		case FieldConsentToContact:
			if !truthy(value) {
				values[FieldPreferredContact] = ContactDoNotContact
			}
		}

		s.Values = values
		s.Error = ""
		return s
	})
}

func truthy(value any) bool {
	switch typed := model.CoerceBool(value).(type) {
	case bool:
		return typed
	case string:
		return typed != ""
	default:
		return typed != nil
	}
}

func findField(form model.FormModel, name string) (model.Field, bool) {
	for _, field := range form.Fields() {
		if field.Name == name {
			return field, true
		}
	}
	return model.Field{}, false
}

// IsRequired resolves the effective required flag of field. The email field
// is always required because anonymous ids are delivered to it; the name is
// required only for identified submissions.
func IsRequired(field model.Field, values model.Values) bool {
	switch field.Name {
	case FieldReporterEmail:
		return true
	case FieldReporterName:
		return field.Required && !values.Bool(FieldIsAnonymous)
	default:
		return field.Required
	}
}

// IsFormValid reports whether every required and visible field holds a
// non-blank value and email fields are well formed.
func (c *Controller) IsFormValid() bool {
	return c.validate(c.store.Get())
}

func (c *Controller) validate(s State) bool {
	for _, section := range c.sectionViews(s) {
		for _, field := range section.Fields {
			if !field.IsRequired || !field.IsVisible {
				continue
			}
			value := s.Values[field.Name]
			if model.IsBlank(value) {
				return false
			}
			if field.Type == model.FieldTypeEmail {
				if str, ok := value.(string); ok && !ValidEmail(str) {
					return false
				}
			}
		}
	}
	return true
}

// Payload returns the JSON document sent on submit: the current values with
// stringly booleans coerced.
func (c *Controller) Payload() ([]byte, error) {
	return json.Marshal(c.store.Get().Values.CoerceBools())
}

// Submit validates and sends the report. Validation failures surface a toast
// and return ErrInvalidForm without contacting the gateway.
func (c *Controller) Submit(ctx context.Context) (model.SubmissionResult, error) {
	snapshot := c.store.Get()
	if !c.validate(snapshot) {
		c.toast(ctx, titleError, msgIncomplete, notify.VariantError)
		return model.SubmissionResult{}, ErrInvalidForm
	}
	if c.gateway == nil {
		return model.SubmissionResult{}, ErrNoGateway
	}

	c.store.Update(func(s State) State {
		s.Loading = true
		s.Error = ""
		return s
	})
	defer c.store.Update(func(s State) State {
		s.Loading = false
		return s
	})

	payload := snapshot.Values.CoerceBools()
	body, err := json.Marshal(payload)
	if err != nil {
		c.fail(ctx, msgUnexpected)
		return model.SubmissionResult{}, fmt.Errorf("report: encode payload: %w", err)
	}

	result, err := c.gateway.SubmitReport(ctx, string(body))
	if err != nil {
		c.logger.Error("report submission failed", zap.Error(err))
		c.fail(ctx, msgUnexpected)
		return result, fmt.Errorf("report: submit: %w", err)
	}
	if !result.Success {
		message := result.ErrorMessage
		if strings.TrimSpace(message) == "" {
			message = msgUnexpected
		}
		c.logger.Warn("report submission rejected", zap.String("message", message))
		c.fail(ctx, message)
		return result, nil
	}

	c.store.Update(func(s State) State {
		res := result
		s.Result = &res
		s.Submitted = true
		return s
	})
	if payload.Bool(FieldIsAnonymous) {
		c.toast(ctx, titleSuccess, fmt.Sprintf(msgAnonymousSuccess, result.AnonymousID), notify.VariantSuccess)
	} else {
		c.toast(ctx, titleSuccess, msgSuccess, notify.VariantSuccess)
	}
	return result, nil
}

func (c *Controller) fail(ctx context.Context, message string) {
	c.store.Update(func(s State) State {
		s.Error = message
		return s
	})
	c.toast(ctx, titleError, message, notify.VariantError)
}

func (c *Controller) toast(ctx context.Context, title, message string, variant notify.Variant) {
	c.notifier.Notify(ctx, notify.Toast{Title: title, Message: message, Variant: variant})
}

// Reset restores field defaults and clears the submission outcome.
func (c *Controller) Reset() {
	c.store.Update(func(s State) State {
		s.Values = c.initialValues(s.Form)
		s.Error = ""
		s.Submitted = false
		s.Result = nil
		return s
	})
}

// SubmitAnother returns to a blank form after a successful submission.
func (c *Controller) SubmitAnother() {
	c.Reset()
}

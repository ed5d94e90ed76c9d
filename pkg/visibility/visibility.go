package visibility

import (
	"strings"

	"go.uber.org/zap"
)

// Evaluator determines whether a field should be visible based on a rule
// string and the current form values.
type Evaluator interface {
	Eval(fieldName, rule string, ctx Context) (bool, error)
}

// Context provides inputs to an Evaluator. Values holds the current form
// state while Extras allows callers to inject arbitrary context such as
// feature flags.
type Context struct {
	Values map[string]any
	Extras map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(fieldName, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(fieldName, rule string, ctx Context) (bool, error) {
	return fn(fieldName, rule, ctx)
}

// Rules maps field names to visibility expressions. Fields without a rule are
// always visible.
type Rules map[string]string

// DefaultRules gates the contact fields on the anonymity toggle.
func DefaultRules() Rules {
	return Rules{
		"preferredContactMethod": "formData.consentToContact && !formData.isAnonymous",
		"reporterName":           "!formData.isAnonymous",
		"reporterPhone":          "!formData.isAnonymous",
		"consentToContact":       "!formData.isAnonymous",
	}
}

// Policy decides what a failed evaluation resolves to.
type Policy string

const (
	// FailOpen shows the field when its rule cannot be evaluated.
	FailOpen Policy = "show"
	// FailClosed hides the field when its rule cannot be evaluated.
	FailClosed Policy = "hide"
)

// ParsePolicy maps a config value onto a Policy, defaulting to FailOpen.
func ParsePolicy(raw string) Policy {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(FailClosed), "closed", "fail-closed":
		return FailClosed
	default:
		return FailOpen
	}
}

// Resolver applies Rules through an Evaluator and turns evaluation errors
// into the configured Policy, logging a warning for each failure.
type Resolver struct {
	Evaluator Evaluator
	Rules     Rules
	Policy    Policy
	Logger    *zap.Logger
}

// Visible reports whether fieldName should render for the given values.
func (r Resolver) Visible(fieldName string, values map[string]any) bool {
	rule, ok := r.Rules[fieldName]
	if !ok || strings.TrimSpace(rule) == "" || r.Evaluator == nil {
		return true
	}

	visible, err := r.Evaluator.Eval(fieldName, rule, Context{Values: values})
	if err == nil {
		return visible
	}

	if r.Logger != nil {
		r.Logger.Warn("visibility rule evaluation failed",
			zap.String("field", fieldName),
			zap.String("rule", rule),
			zap.String("policy", string(r.Policy)),
			zap.Error(err),
		)
	}
	return r.Policy != FailClosed
}

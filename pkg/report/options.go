package report

import (
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-reportform/pkg/model"
	"github.com/goliatone/go-reportform/pkg/notify"
	"github.com/goliatone/go-reportform/pkg/visibility"
)

// Option customises the Controller.
type Option func(*Controller)

// WithLogger sets the logger used for parse, visibility and remote failures.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithNotifier sets the toast surface.
func WithNotifier(n notify.Notifier) Option {
	return func(c *Controller) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithEvaluator replaces the visibility expression evaluator.
func WithEvaluator(e visibility.Evaluator) Option {
	return func(c *Controller) {
		if e != nil {
			c.resolver.Evaluator = e
		}
	}
}

// WithRules replaces the per-field visibility rules.
func WithRules(rules visibility.Rules) Option {
	return func(c *Controller) {
		if rules != nil {
			c.resolver.Rules = rules
		}
	}
}

// WithPolicy decides what a failing visibility rule resolves to.
func WithPolicy(policy visibility.Policy) Option {
	return func(c *Controller) {
		c.resolver.Policy = policy
	}
}

// WithBaseline replaces the values every fresh form starts from before field
// defaults are overlaid.
func WithBaseline(values map[string]any) Option {
	return func(c *Controller) {
		if values != nil {
			c.baseline = model.Values(values).Clone()
		}
	}
}

// WithDecorators registers decorators applied after every parse.
func WithDecorators(decorators ...model.Decorator) Option {
	return func(c *Controller) {
		for _, d := range decorators {
			if d != nil {
				c.decorators = append(c.decorators, d)
			}
		}
	}
}

// WithAppearance sets the presentational properties exposed through View.
func WithAppearance(appearance model.Appearance) Option {
	return func(c *Controller) {
		c.appearance = appearance
	}
}

// WithClock overrides the time source used for the date input upper bound.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// DefaultAppearance returns the stock header and sizing.
func DefaultAppearance() model.Appearance {
	return model.Appearance{
		Width:          "100%",
		MaxWidth:       "900px",
		HeaderTitle:    "Report Fraud, Waste & Abuse",
		HeaderSubtitle: "Office of Inspector General (OIG) - Confidential Reporting Portal",
		HeaderIcon:     "utility:shield",
		SecurityNotice: "Your submission is secure and may be submitted anonymously",
	}
}

// DefaultBaseline returns the values a form holds before field defaults apply.
// Keys outside the configured fields (submissionSource) are still submitted.
func DefaultBaseline() model.Values {
	return model.Values{
		FieldReporterName:     "",
		FieldReporterEmail:    "",
		FieldReporterPhone:    "",
		"category":            "",
		"severity":            "Medium",
		"reportDetails":       "",
		"incidentLocation":    "",
		"incidentDate":        "",
		"witnessInfo":         "",
		"submissionSource":    "Web Portal",
		FieldIsAnonymous:      false,
		FieldPreferredContact: ContactEmail,
		FieldConsentToContact: true,
	}
}

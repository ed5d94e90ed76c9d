package tui

import (
	"io"

	"go.uber.org/zap"
)

// Theme captures optional message prefixes the filler applies when printing.
type Theme struct {
	SectionPrefix string
	NoticePrefix  string
	ErrorPrefix   string
}

// DefaultTheme returns the stock prefixes.
func DefaultTheme() Theme {
	return Theme{
		SectionPrefix: "==",
		NoticePrefix:  "i",
		ErrorPrefix:   "!",
	}
}

// Option configures a Filler.
type Option func(*Filler)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(f *Filler) {
		if driver != nil {
			f.driver = driver
		}
	}
}

// WithOutput sets where the default survey driver prints informational lines.
func WithOutput(out io.Writer) Option {
	return func(f *Filler) {
		if out != nil {
			f.out = out
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(f *Filler) {
		f.theme = theme
	}
}

// WithLogger sets the logger used for prompt diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Filler) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithMaxAttempts bounds the number of passes over invalid required fields.
func WithMaxAttempts(n int) Option {
	return func(f *Filler) {
		if n > 0 {
			f.maxAttempts = n
		}
	}
}

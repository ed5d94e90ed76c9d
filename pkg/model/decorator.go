package model

import "strings"

// Decorator enriches a form model after the section grammar has been parsed.
type Decorator interface {
	Decorate(*FormModel) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(*FormModel) error

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(form *FormModel) error {
	return fn(form)
}

// DefaultsDecorator attaches explicit default values keyed by field name.
// Fields that already declare a default keep it.
func DefaultsDecorator(defaults map[string]any) Decorator {
	return DecoratorFunc(func(form *FormModel) error {
		if form == nil || len(defaults) == 0 {
			return nil
		}
		for si := range form.Sections {
			fields := form.Sections[si].Fields
			for fi := range fields {
				if fields[fi].Default != nil {
					continue
				}
				if value, ok := defaults[strings.TrimSpace(fields[fi].Name)]; ok {
					fields[fi].Default = value
				}
			}
		}
		return nil
	})
}

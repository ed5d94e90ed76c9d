package schema

import (
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-reportform/pkg/model"
)

// EmailPattern mirrors the controller's local@domain.tld check.
const EmailPattern = `^[^\s@]+@[^\s@]+\.[^\s@]+$`

// PayloadSchema describes the submission payload for the current view.
// Hidden fields stay optional and required follows the evaluated view.
func PayloadSchema(view model.FormView) *openapi3.Schema {
	obj := openapi3.NewObjectSchema()
	var required []string
	for _, section := range view.Sections {
		for _, field := range section.Fields {
			if field.Name == "" {
				continue
			}
			obj.WithProperty(field.Name, FieldSchema(field.Field, field.Options))
			if field.IsVisible && field.IsRequired {
				required = append(required, field.Name)
			}
		}
	}
	if len(required) > 0 {
		obj.WithRequired(required)
	}
	return obj
}

// FormSchema describes a payload from the static declarations alone. Option
// sets resolved at runtime can be passed to tighten enums.
func FormSchema(form model.FormModel, optionSets map[string][]model.Option) *openapi3.Schema {
	obj := openapi3.NewObjectSchema()
	var required []string
	for _, field := range form.Fields() {
		if field.Name == "" {
			continue
		}
		options := field.Options
		if len(options) == 0 && field.OptionsSource != "" {
			options = optionSets[field.OptionsSource]
		}
		obj.WithProperty(field.Name, FieldSchema(field, options))
		if field.Required {
			required = append(required, field.Name)
		}
	}
	if len(required) > 0 {
		obj.WithRequired(required)
	}
	return obj
}

// FieldSchema maps a single field declaration onto a JSON schema.
func FieldSchema(field model.Field, options []model.Option) *openapi3.Schema {
	var s *openapi3.Schema
	switch field.Type {
	case model.FieldTypeCheckbox:
		s = openapi3.NewBoolSchema()
	case model.FieldTypeRadio, model.FieldTypeCombobox:
		if boolOptions(options) {
			s = openapi3.NewBoolSchema()
			break
		}
		s = openapi3.NewStringSchema()
		if len(options) > 0 {
			values := make([]any, 0, len(options))
			for _, option := range options {
				values = append(values, fmt.Sprint(option.Value))
			}
			s.WithEnum(values...)
		}
	case model.FieldTypeEmail:
		s = openapi3.NewStringSchema().WithFormat("email").WithPattern(EmailPattern)
	case model.FieldTypeDate:
		s = openapi3.NewStringSchema().WithFormat("date")
	default:
		s = openapi3.NewStringSchema()
	}
	s.Title = field.Label
	return s
}

func boolOptions(options []model.Option) bool {
	if len(options) == 0 {
		return false
	}
	for _, option := range options {
		switch v := option.Value.(type) {
		case bool:
		case string:
			if v != "true" && v != "false" {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Compact drops blank strings so optional fields left empty are treated as
// absent rather than checked against their pattern or format.
func Compact(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload))
	for key, value := range payload {
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		out[key] = value
	}
	return out
}

package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-reportform/pkg/schema"
)

// SchemaIssue represents a validation error with optional location metadata.
type SchemaIssue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// SchemaValidationResult captures payload validation outcomes.
type SchemaValidationResult struct {
	Valid  bool          `json:"valid"`
	Issues []SchemaIssue `json:"issues,omitempty"`
}

// ErrorMap groups issue messages by JSON pointer, the shape accepted by
// render.MapErrorPayload. Issues without a path are keyed by "".
func (r SchemaValidationResult) ErrorMap() map[string][]string {
	if len(r.Issues) == 0 {
		return nil
	}
	out := make(map[string][]string, len(r.Issues))
	for _, issue := range r.Issues {
		out[issue.Path] = append(out[issue.Path], issue.Message)
	}
	return out
}

// ValidatePayload checks payload against sch, reporting every failure. Blank
// strings are treated as missing values.
func ValidatePayload(sch *openapi3.Schema, payload map[string]any) SchemaValidationResult {
	result := SchemaValidationResult{Valid: true}
	if sch == nil {
		return result
	}

	err := sch.VisitJSON(schema.Compact(payload), openapi3.MultiErrors())
	if err == nil {
		return result
	}

	result.Valid = false
	for _, item := range flatten(err) {
		result.Issues = append(result.Issues, issueFromError(item))
	}
	sort.SliceStable(result.Issues, func(i, j int) bool {
		return result.Issues[i].Path < result.Issues[j].Path
	})
	return result
}

// ValidateJSON decodes raw into an object and validates it.
func ValidateJSON(sch *openapi3.Schema, raw []byte) (SchemaValidationResult, error) {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return SchemaValidationResult{}, fmt.Errorf("validation: decode payload: %w", err)
	}
	return ValidatePayload(sch, payload), nil
}

func flatten(err error) []error {
	multi, ok := err.(openapi3.MultiError)
	if !ok {
		return []error{err}
	}
	var out []error
	for _, item := range multi {
		out = append(out, flatten(item)...)
	}
	return out
}

func issueFromError(err error) SchemaIssue {
	if err == nil {
		return SchemaIssue{Message: "unknown error"}
	}
	var schemaErr *openapi3.SchemaError
	if !errors.As(err, &schemaErr) {
		return SchemaIssue{Message: strings.TrimSpace(err.Error())}
	}

	pointer := schemaErr.JSONPointer()
	path := ""
	if len(pointer) > 0 {
		path = "/" + strings.Join(pointer, "/")
	}
	return SchemaIssue{
		Path:    path,
		Field:   strings.Join(pointer, "."),
		Message: message(schemaErr),
	}
}

func message(err *openapi3.SchemaError) string {
	switch err.SchemaField {
	case "required":
		return "This field is required."
	case "enum":
		return "Select one of the available options."
	case "pattern":
		if err.Schema != nil && err.Schema.Format == "email" {
			return "Enter a valid email address."
		}
	case "format":
		if err.Schema != nil && err.Schema.Format == "date" {
			return "Enter a date as YYYY-MM-DD."
		}
	case "type":
		if err.Schema != nil && err.Schema.Type != nil {
			return fmt.Sprintf("Expected a %s value.", strings.Join(err.Schema.Type.Slice(), " or "))
		}
	}
	if reason := strings.TrimSpace(err.Reason); reason != "" {
		return reason
	}
	return strings.TrimSpace(err.Error())
}

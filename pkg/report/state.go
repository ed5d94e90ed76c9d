package report

import (
	"strings"

	"github.com/goliatone/go-reportform/pkg/model"
)

// Field names with cross-field behaviour.
const (
	FieldIsAnonymous      = "isAnonymous"
	FieldReporterName     = "reporterName"
	FieldReporterEmail    = "reporterEmail"
	FieldReporterPhone    = "reporterPhone"
	FieldConsentToContact = "consentToContact"
	FieldPreferredContact = "preferredContactMethod"
)

// Preferred contact method values forced by the cross-field rules.
const (
	ContactEmail        = "Email"
	ContactDoNotContact = "Do Not Contact"
)

// Lookup input names accepted by SetLookupField.
const (
	LookupFieldAnonymousID = "anonymousId"
	LookupFieldFullName    = "fullName"
	LookupFieldEmail       = "email"
)

const (
	defaultFieldWidth = "100%"
	dateLayout        = "2006-01-02"
)

// Mode switches the component between submitting and viewing submissions.
type Mode string

const (
	ModeSubmit Mode = "submit"
	ModeView   Mode = "view"
)

// ParseMode maps raw input onto a Mode, defaulting to ModeSubmit.
func ParseMode(raw string) Mode {
	if strings.EqualFold(strings.TrimSpace(raw), string(ModeView)) {
		return ModeView
	}
	return ModeSubmit
}

// LookupType selects how existing submissions are looked up.
type LookupType string

const (
	LookupAnonymous LookupType = "anonymous"
	LookupContact   LookupType = "contact"
)

// ParseLookupType maps raw input onto a LookupType, defaulting to contact.
func ParseLookupType(raw string) LookupType {
	if strings.EqualFold(strings.TrimSpace(raw), string(LookupAnonymous)) {
		return LookupAnonymous
	}
	return LookupContact
}

// LookupTypeOptions lists the lookup choices shown to the user.
func LookupTypeOptions() []model.Option {
	return []model.Option{
		{Label: "I have my Anonymous ID", Value: string(LookupAnonymous)},
		{Label: "I provided my contact information", Value: string(LookupContact)},
	}
}

// LookupState holds the "view my submissions" inputs and results.
type LookupState struct {
	Type        LookupType
	AnonymousID string
	FullName    string
	Email       string
	Loading     bool
	Submissions []model.Submission
}

// Ready reports whether the inputs required by the current type are present.
func (l LookupState) Ready() bool {
	if l.Type == LookupAnonymous {
		return strings.TrimSpace(l.AnonymousID) != ""
	}
	return strings.TrimSpace(l.FullName) != "" && strings.TrimSpace(l.Email) != ""
}

// State is the full component snapshot. The controller never mutates a
// published State; every transition builds a new one.
type State struct {
	Form      model.FormModel
	Options   map[string][]model.Option
	Values    model.Values
	Loading   bool
	Submitted bool
	Error     string
	Result    *model.SubmissionResult
	Mode      Mode
	Lookup    LookupState
}

func (s State) withOptions(name string, options []model.Option) State {
	next := make(map[string][]model.Option, len(s.Options)+1)
	for key, value := range s.Options {
		next[key] = value
	}
	next[name] = append([]model.Option(nil), options...)
	s.Options = next
	return s
}

package tui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-reportform/pkg/grammar"
	"github.com/goliatone/go-reportform/pkg/model"
	"github.com/goliatone/go-reportform/pkg/report"
	"github.com/goliatone/go-reportform/pkg/testsupport"
)

// stubDriver answers prompts from per-message queues. Unscripted prompts take
// their default.
type stubDriver struct {
	mu      sync.Mutex
	answers map[string][]any
	asked   []string
	info    []string
}

func newStubDriver(answers map[string][]any) *stubDriver {
	return &stubDriver{answers: answers}
}

func (d *stubDriver) next(message string) (any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := strings.TrimSuffix(message, " *")
	d.asked = append(d.asked, key)
	queue := d.answers[key]
	if len(queue) == 0 {
		return nil, false
	}
	answer := queue[0]
	if len(queue) > 1 {
		d.answers[key] = queue[1:]
	}
	return answer, true
}

func (d *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if answer, ok := d.next(cfg.Message); ok {
		if err, isErr := answer.(error); isErr {
			return "", err
		}
		return answer.(string), nil
	}
	return cfg.Default, nil
}

func (d *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	if answer, ok := d.next(cfg.Message); ok {
		return answer.(bool), nil
	}
	return cfg.Default, nil
}

func (d *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	if answer, ok := d.next(cfg.Message); ok {
		return answer.(int), nil
	}
	return cfg.DefaultIndex, nil
}

func (d *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	if answer, ok := d.next(cfg.Message); ok {
		return answer.(string), nil
	}
	return cfg.Default, nil
}

func (d *stubDriver) Info(_ context.Context, msg string) error {
	d.mu.Lock()
	d.info = append(d.info, msg)
	d.mu.Unlock()
	return nil
}

func (d *stubDriver) wasAsked(label string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, asked := range d.asked {
		if asked == label {
			return true
		}
	}
	return false
}

const (
	promptMethod    = "How would you like to submit this report?"
	promptName      = "Full Name"
	promptEmail     = "Email Address (Optional for anonymous)"
	promptPhone     = "Phone Number (Optional)"
	promptConsent   = "I consent to be contacted about this report"
	promptPreferred = "Preferred Contact Method"
	promptCategory  = "Category"
	promptSeverity  = "Severity"
	promptDetails   = "Detailed Description"
)

func newReportController(gw *testsupport.ReportGateway) *report.Controller {
	c := report.New(grammar.DefaultConfig(), gw)
	c.SetOptionSet(grammar.SourceCategories, []model.Option{{Label: "Fraud", Value: "Fraud"}, {Label: "Waste", Value: "Waste"}})
	c.SetOptionSet(grammar.SourceSeverities, []model.Option{{Label: "Low", Value: "Low"}, {Label: "High", Value: "High"}})
	return c
}

func TestFillAnonymousSkipsHiddenFields(t *testing.T) {
	t.Parallel()

	driver := newStubDriver(map[string][]any{
		promptMethod:   {1},
		promptEmail:    {"tipster@example.com"},
		promptCategory: {1},
		promptSeverity: {1},
		promptDetails:  {"  Duplicate invoices.  "},
	})
	c := newReportController(&testsupport.ReportGateway{})

	if err := New(WithPromptDriver(driver)).Fill(context.Background(), c); err != nil {
		t.Fatalf("Fill: %v", err)
	}

	for _, hidden := range []string{promptName, promptPhone, promptConsent, promptPreferred} {
		if driver.wasAsked(hidden) {
			t.Fatalf("%q must not be prompted for anonymous reports", hidden)
		}
	}
	values := c.Values()
	want := map[string]any{
		report.FieldIsAnonymous:   true,
		report.FieldReporterEmail: "tipster@example.com",
		"category":                "Waste",
		"severity":                "High",
		"reportDetails":           "Duplicate invoices.",
	}
	for key, value := range want {
		if diff := cmp.Diff(value, values[key]); diff != "" {
			t.Fatalf("%s mismatch (-want +got):\n%s", key, diff)
		}
	}
	if !c.IsFormValid() {
		t.Fatalf("expected valid form after fill")
	}
}

func TestFillIdentifiedRevealsPreferredContact(t *testing.T) {
	t.Parallel()

	driver := newStubDriver(map[string][]any{
		promptMethod:    {0},
		promptName:      {"Jane Doe"},
		promptEmail:     {"jane@example.com"},
		promptConsent:   {true},
		promptPreferred: {1},
		promptCategory:  {0},
		promptSeverity:  {0},
		promptDetails:   {"Invoices were duplicated."},
	})
	c := newReportController(&testsupport.ReportGateway{})

	if err := New(WithPromptDriver(driver)).Fill(context.Background(), c); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if !driver.wasAsked(promptPreferred) {
		t.Fatalf("expected preferred contact prompt once consent is given")
	}
	if got := c.Values()[report.FieldPreferredContact]; got != "Phone" {
		t.Fatalf("expected Phone, got %v", got)
	}
	if got := c.Values()[report.FieldReporterName]; got != "Jane Doe" {
		t.Fatalf("unexpected name %v", got)
	}

	var sections []string
	for _, msg := range driver.info {
		if strings.HasPrefix(msg, "== ") {
			sections = append(sections, strings.TrimPrefix(msg, "== "))
		}
	}
	if len(sections) < 2 || sections[1] != "Reporting Method" {
		t.Fatalf("expected header then sections announced in order, got %v", sections)
	}
}

func TestFillGivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	driver := newStubDriver(map[string][]any{
		promptMethod:   {1},
		promptCategory: {0},
		promptSeverity: {0},
		promptDetails:  {"Details"},
	})
	c := newReportController(&testsupport.ReportGateway{})

	err := New(WithPromptDriver(driver), WithMaxAttempts(2)).Fill(context.Background(), c)
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestFillPropagatesAbort(t *testing.T) {
	t.Parallel()

	driver := newStubDriver(map[string][]any{
		promptMethod: {0},
		promptName:   {ErrAborted},
	})
	c := newReportController(&testsupport.ReportGateway{})

	if err := New(WithPromptDriver(driver)).Fill(context.Background(), c); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestFillRequiresController(t *testing.T) {
	t.Parallel()

	if err := New(WithPromptDriver(newStubDriver(nil))).Fill(context.Background(), nil); !errors.Is(err, ErrNoController) {
		t.Fatalf("expected ErrNoController, got %v", err)
	}
}

func TestValidateValue(t *testing.T) {
	t.Parallel()

	email := model.FieldView{Field: model.Field{Type: model.FieldTypeEmail}, IsRequired: true}
	date := model.FieldView{Field: model.Field{Type: model.FieldTypeDate}, Max: "2024-05-01"}

	cases := []struct {
		name  string
		field model.FieldView
		input string
		ok    bool
	}{
		{"blank required", email, "  ", false},
		{"bad email", email, "not-an-email", false},
		{"good email", email, "a@b.co", true},
		{"blank optional date", date, "", true},
		{"bad date", date, "05/01/2024", false},
		{"future date", date, "2024-05-02", false},
		{"max date", date, "2024-05-01", true},
	}
	for _, tc := range cases {
		err := validateValue(tc.field, tc.input)
		if (err == nil) != tc.ok {
			t.Fatalf("%s: validateValue(%q) = %v", tc.name, tc.input, err)
		}
	}
}

func TestLookupByAnonymousID(t *testing.T) {
	t.Parallel()

	gw := &testsupport.ReportGateway{
		LookupResult: model.LookupResult{Success: true, Submissions: []model.Submission{{"Name": "RPT-1"}}},
	}
	driver := newStubDriver(map[string][]any{
		"How did you submit your report?": {0},
		"Anonymous ID":                    {" ANON-42 "},
	})
	c := newReportController(gw)

	result, err := New(WithPromptDriver(driver)).Lookup(context.Background(), c)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(result.Submissions) != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	calls := gw.Calls()
	if len(calls) != 1 || calls[0].Method != "GetSubmissionsByAnonymousID" || calls[0].Args[0] != "ANON-42" {
		t.Fatalf("unexpected gateway calls %+v", calls)
	}
	if c.View().Mode != string(report.ModeView) {
		t.Fatalf("lookup must switch to view mode")
	}
}

func TestLookupByContact(t *testing.T) {
	t.Parallel()

	gw := &testsupport.ReportGateway{LookupResult: model.LookupResult{Success: true}}
	driver := newStubDriver(map[string][]any{
		"How did you submit your report?": {1},
		"Full Name":                       {"Jane Doe"},
		"Email":                           {"jane@example.com"},
	})
	c := newReportController(gw)

	if _, err := New(WithPromptDriver(driver)).Lookup(context.Background(), c); err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if gw.Count("GetSubmissionsByContact") != 1 {
		t.Fatalf("expected contact lookup, calls: %+v", gw.Calls())
	}
}

func TestNewDefaultsToSurveyDriver(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	f := New(WithOutput(&out))
	driver, ok := f.driver.(*SurveyDriver)
	if !ok || driver.Out != &out {
		t.Fatalf("expected survey driver writing to the configured output, got %#v", f.driver)
	}
	if err := driver.Info(context.Background(), "hello"); err != nil || out.String() != "hello\n" {
		t.Fatalf("Info wrote %q, err %v", out.String(), err)
	}
}

package tui

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-reportform/pkg/model"
	"github.com/goliatone/go-reportform/pkg/notify"
	"github.com/goliatone/go-reportform/pkg/render"
	"github.com/goliatone/go-reportform/pkg/report"
	"github.com/goliatone/go-reportform/pkg/testsupport"
	"github.com/goliatone/go-reportform/pkg/training"
)

func TestTextRenderForm(t *testing.T) {
	t.Parallel()

	c := newReportController(&testsupport.ReportGateway{})
	c.SetValue(report.FieldReporterName, "Jane <b>Doe</b>")
	c.SetValue("category", "Fraud")

	out, err := NewText().Render(context.Background(), c.View(), render.RenderOptions{
		Toasts: []notify.Toast{{Title: "Error", Message: "Try again", Variant: notify.VariantError}},
		Errors: map[string][]string{report.FieldReporterEmail: {"Email is required"}},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	text := string(out)

	for _, fragment := range []string{
		"Report Fraud, Waste & Abuse",
		"Error: Try again",
		"Reporting Method",
		"Full Name *: Jane <b>Doe</b>",
		"Category *: Fraud",
		"Email is required",
		"Whistleblower Protection",
		"Complete the required fields to submit.",
	} {
		if !strings.Contains(text, fragment) {
			t.Fatalf("expected %q in output:\n%s", fragment, text)
		}
	}
	if strings.Contains(text, "\x1b[") {
		t.Fatalf("expected no escape sequences without a terminal")
	}
}

func TestTextRenderHidesAnonymousFields(t *testing.T) {
	t.Parallel()

	c := newReportController(&testsupport.ReportGateway{})
	c.SetValue(report.FieldIsAnonymous, true)

	out, err := NewText().Render(context.Background(), c.View(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(string(out), "Full Name") {
		t.Fatalf("anonymous reports must not list the name field:\n%s", out)
	}
	if !strings.Contains(string(out), "How would you like to submit this report? *: Submit anonymously") {
		t.Fatalf("expected radio label to be shown:\n%s", out)
	}
}

func TestTextRenderLookupTable(t *testing.T) {
	t.Parallel()

	view := model.FormView{
		Mode: string(report.ModeView),
		Lookup: model.LookupView{
			IsAnonymousLookup: true,
			AnonymousID:       "ANON-1",
			Submissions: []model.Submission{
				{"Name": "RPT-0001", "Status__c": "New"},
				{"Name": "RPT-0002"},
			},
		},
	}
	out, err := NewText().Render(context.Background(), view, render.RenderOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	text := string(out)
	for _, fragment := range []string{"Anonymous ID: ANON-1", "Name", "Status__c", "RPT-0001", "RPT-0002", "New"} {
		if !strings.Contains(text, fragment) {
			t.Fatalf("expected %q in output:\n%s", fragment, text)
		}
	}
}

func TestTextRenderSuccess(t *testing.T) {
	t.Parallel()

	view := model.FormView{
		Mode:        string(report.ModeSubmit),
		ShowSuccess: true,
		Result:      &model.SubmissionResult{Success: true, AnonymousID: "ANON-9"},
	}
	out, err := NewText().Render(context.Background(), view, render.RenderOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(out), "Anonymous ID: ANON-9") {
		t.Fatalf("expected anonymous id in output:\n%s", out)
	}
}

func TestTextRenderDashboardSessions(t *testing.T) {
	t.Parallel()

	view := training.View{
		Tabs: []training.TabView{
			{ID: training.TabCourses, Label: "Courses"},
			{ID: training.TabSessions, Label: "Upcoming Sessions", Active: true},
		},
		ActiveTab:    training.TabSessions,
		ShowSessions: true,
		Sessions: []model.SessionDetail{
			{
				Session: &model.Session{
					ID: "s1", Date: "2024-05-01", StartTime: "09:00", EndTime: "10:00",
					Course: &model.RecordRef{Name: "Ethics 101"}, Instructor: &model.RecordRef{Name: "Alex"},
				},
				AvailableSpots: 0,
			},
			{
				Session:        &model.Session{ID: "s2", Course: &model.RecordRef{}, Instructor: &model.RecordRef{}},
				IsRegistered:   true,
				AvailableSpots: 4,
			},
		},
	}
	out, err := NewText().RenderDashboard(context.Background(), view, render.RenderOptions{})
	if err != nil {
		t.Fatalf("RenderDashboard: %v", err)
	}
	text := string(out)
	for _, fragment := range []string{"[Upcoming Sessions]", "Ethics 101", "5/1/2024", "09:00-10:00", "Full", "Registered"} {
		if !strings.Contains(text, fragment) {
			t.Fatalf("expected %q in output:\n%s", fragment, text)
		}
	}
}

func TestTextRendererMetadata(t *testing.T) {
	t.Parallel()

	r := NewText()
	if r.Name() != TextName || !strings.HasPrefix(r.ContentType(), "text/plain") {
		t.Fatalf("unexpected metadata %q %q", r.Name(), r.ContentType())
	}
}

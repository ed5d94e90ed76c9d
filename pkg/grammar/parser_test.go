package grammar

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-reportform/pkg/model"
)

func TestParseSingleRequiredTextField(t *testing.T) {
	t.Parallel()

	form, err := Parse(Config{SectionsAndFields: "Sec - f1:text:Label:key1:true:50%"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	want := []model.Section{{
		ID:      "section0",
		Title:   "Sec",
		Icon:    "utility:record",
		Visible: true,
		Order:   1,
		Fields: []model.Field{{
			ID:       "f1",
			Type:     model.FieldTypeText,
			Label:    "Label",
			Name:     "key1",
			Required: true,
			Width:    "50%",
			Order:    1,
		}},
	}}
	if diff := cmp.Diff(want, form.Sections); diff != "" {
		t.Fatalf("sections mismatch (-want +got):\n%s", diff)
	}
	if len(form.Notices) != 0 {
		t.Fatalf("expected no notices, got %d", len(form.Notices))
	}
}

func TestParseDefaultConfigPreservesOrder(t *testing.T) {
	t.Parallel()

	form, err := Parse(DefaultConfig())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	var titles []string
	for _, section := range form.Sections {
		titles = append(titles, section.Title)
	}
	wantTitles := []string{
		"Reporting Method",
		"Contact Information",
		"Report Details",
		"Incident Information",
		"Important Information",
	}
	if diff := cmp.Diff(wantTitles, titles); diff != "" {
		t.Fatalf("section titles mismatch (-want +got):\n%s", diff)
	}

	var names []string
	for _, field := range form.Sections[1].Fields {
		names = append(names, field.Name)
	}
	wantNames := []string{"reporterName", "reporterEmail", "reporterPhone", "consentToContact", "preferredContactMethod"}
	if diff := cmp.Diff(wantNames, names); diff != "" {
		t.Fatalf("contact fields mismatch (-want +got):\n%s", diff)
	}

	icons := []string{form.Sections[0].Icon, form.Sections[3].Icon, form.Sections[4].Icon}
	if diff := cmp.Diff([]string{"utility:identity", "utility:location", "utility:info"}, icons); diff != "" {
		t.Fatalf("icons mismatch (-want +got):\n%s", diff)
	}
	if !form.Sections[4].IsNotices {
		t.Fatalf("expected trailing notices section")
	}
}

func TestParseOptionsAndExtras(t *testing.T) {
	t.Parallel()

	form, err := Parse(DefaultConfig())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	anonymous := form.Sections[0].Fields[0]
	wantOptions := []model.Option{
		{Label: "Provide my contact information", Value: false},
		{Label: "Submit anonymously", Value: true},
	}
	if diff := cmp.Diff(wantOptions, anonymous.Options); diff != "" {
		t.Fatalf("radio options mismatch (-want +got):\n%s", diff)
	}

	details := form.Sections[2].Fields
	if details[0].OptionsSource != SourceCategories || details[1].OptionsSource != SourceSeverities {
		t.Fatalf("expected named option sources, got %q and %q", details[0].OptionsSource, details[1].OptionsSource)
	}
	if details[0].Options != nil {
		t.Fatalf("named source should not carry literal options")
	}
	if details[2].Rows != 6 {
		t.Fatalf("expected textarea rows 6, got %d", details[2].Rows)
	}

	preferred := form.Sections[1].Fields[4]
	if len(preferred.Options) != 3 || preferred.Options[2].Value != "Do Not Contact" {
		t.Fatalf("unexpected preferred contact options: %+v", preferred.Options)
	}
}

func TestParseIsIdempotent(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	first, err := Parse(cfg)
	if err != nil {
		t.Fatalf("first parse: %v", err)
	}
	second, err := Parse(cfg)
	if err != nil {
		t.Fatalf("second parse: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("parse not idempotent (-first +second):\n%s", diff)
	}
}

func TestParseDropsShortFieldDefinitions(t *testing.T) {
	t.Parallel()

	form, err := Parse(Config{SectionsAndFields: "Sec - a:text:A:a:true;b:text:B:b:false:100%"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	fields := form.Sections[0].Fields
	if len(fields) != 1 || fields[0].Name != "b" {
		t.Fatalf("expected only field b, got %+v", fields)
	}
	if fields[0].Order != 2 {
		t.Fatalf("expected order to follow input position, got %d", fields[0].Order)
	}
}

func TestParseSkipsSectionsWithoutHeader(t *testing.T) {
	t.Parallel()

	form, err := Parse(Config{SectionsAndFields: "broken, Good - g:text:G:g:false:100%"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(form.Sections) != 1 {
		t.Fatalf("expected one section, got %d", len(form.Sections))
	}
	if form.Sections[0].ID != "section1" || form.Sections[0].Order != 2 {
		t.Fatalf("unexpected id/order: %s/%d", form.Sections[0].ID, form.Sections[0].Order)
	}
}

func TestParseMalformedOptionFails(t *testing.T) {
	t.Parallel()

	_, err := Parse(Config{SectionsAndFields: "Sec - r:radio:R:r:true:100%:Yes|yes,No"})
	if !errors.Is(err, ErrMalformedOption) {
		t.Fatalf("expected ErrMalformedOption, got %v", err)
	}
}

func TestParseLegacyFallback(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.SectionsAndFields = "   "
	cfg.SectionTitles = "Privacy, Contact, Details, Incident, Notices"

	form, err := Parse(cfg)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	var ids []string
	for _, section := range form.Sections {
		ids = append(ids, section.ID)
	}
	if diff := cmp.Diff([]string{"privacy", "contact", "reportDetails", "incident", "notices"}, ids); diff != "" {
		t.Fatalf("legacy ids mismatch (-want +got):\n%s", diff)
	}
	if !form.Sections[4].IsNotices || len(form.Sections[4].Fields) != 0 {
		t.Fatalf("expected empty notices section")
	}

	privacy := form.Sections[0].Fields
	if len(privacy) != 1 || len(privacy[0].Options) != 2 {
		t.Fatalf("expected privacy radio with two options, got %+v", privacy)
	}

	contact := form.Sections[1].Fields
	if len(contact) != 5 {
		t.Fatalf("expected 5 contact fields, got %d", len(contact))
	}
	wantPreferred := []model.Option{
		{Label: "Email", Value: "Email"},
		{Label: "Phone", Value: "Phone"},
		{Label: "Do Not Contact", Value: "Do Not Contact"},
	}
	if diff := cmp.Diff(wantPreferred, contact[4].Options); diff != "" {
		t.Fatalf("continued options mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLegacyExtraTitlesGetEmptySections(t *testing.T) {
	t.Parallel()

	form, err := Parse(Config{SectionTitles: "A,B,C,D,E,F"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(form.Sections) != 6 {
		t.Fatalf("expected 6 sections, got %d", len(form.Sections))
	}
	last := form.Sections[5]
	if last.ID != "section5" || len(last.Fields) != 0 || last.IsNotices {
		t.Fatalf("unexpected overflow section: %+v", last)
	}
}

func TestParseNotices(t *testing.T) {
	t.Parallel()

	notices := ParseNotices(DefaultConfig().NoticeContent)
	if len(notices) != 3 {
		t.Fatalf("expected 3 notices, got %d", len(notices))
	}
	want := "Federal law prohibits retaliation against employees who report fraud, waste, or abuse. You are protected under the Whistleblower Protection Act."
	if notices[0].Content != want {
		t.Fatalf("notice body mismatch:\nwant %q\ngot  %q", want, notices[0].Content)
	}

	if got := ParseNotices("Title|, |Body, ok|fine"); len(got) != 1 || got[0].Title != "ok" {
		t.Fatalf("expected empty entries dropped, got %+v", got)
	}
}

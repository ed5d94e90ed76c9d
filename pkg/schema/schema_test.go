package schema

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-reportform/pkg/grammar"
	"github.com/goliatone/go-reportform/pkg/model"
)

func defaultForm(t *testing.T) model.FormModel {
	t.Helper()

	form, err := grammar.Parse(grammar.DefaultConfig())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return form
}

func TestFormSchemaTypesAndEnums(t *testing.T) {
	t.Parallel()

	sets := map[string][]model.Option{
		grammar.SourceCategories: {{Label: "Fraud", Value: "Fraud"}, {Label: "Waste", Value: "Waste"}},
	}
	s := FormSchema(defaultForm(t), sets)

	props := s.Properties
	if got := props["isAnonymous"].Value.Type.Slice(); !cmp.Equal(got, []string{"boolean"}) {
		t.Fatalf("isAnonymous should be boolean, got %v", got)
	}
	if got := props["consentToContact"].Value.Type.Slice(); !cmp.Equal(got, []string{"boolean"}) {
		t.Fatalf("consentToContact should be boolean, got %v", got)
	}
	if diff := cmp.Diff([]any{"Fraud", "Waste"}, props["category"].Value.Enum); diff != "" {
		t.Fatalf("category enum mismatch (-want +got):\n%s", diff)
	}
	if props["severity"].Value.Enum != nil {
		t.Fatalf("severity has no resolved options and should stay open")
	}
	if diff := cmp.Diff([]any{"Email", "Phone", "Do Not Contact"}, props["preferredContactMethod"].Value.Enum); diff != "" {
		t.Fatalf("preferred contact enum mismatch (-want +got):\n%s", diff)
	}
	if props["reporterEmail"].Value.Pattern != EmailPattern {
		t.Fatalf("expected email pattern")
	}
	if props["incidentDate"].Value.Format != "date" {
		t.Fatalf("expected date format")
	}
	want := []string{"isAnonymous", "reporterName", "category", "severity", "reportDetails"}
	if diff := cmp.Diff(want, s.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
}

func TestPayloadSchemaFollowsView(t *testing.T) {
	t.Parallel()

	view := model.FormView{Sections: []model.SectionView{{Fields: []model.FieldView{
		{Field: model.Field{Name: "a", Type: model.FieldTypeText}, IsRequired: true, IsVisible: true},
		{Field: model.Field{Name: "b", Type: model.FieldTypeText}, IsRequired: true, IsVisible: false},
		{Field: model.Field{Name: "c", Type: model.FieldTypeText}, IsVisible: true},
	}}}}
	s := PayloadSchema(view)

	if diff := cmp.Diff([]string{"a"}, s.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
	if len(s.Properties) != 3 {
		t.Fatalf("hidden fields stay declared, got %d properties", len(s.Properties))
	}
}

func TestCompactDropsBlankStrings(t *testing.T) {
	t.Parallel()

	got := Compact(map[string]any{"a": " ", "b": "x", "c": false, "d": ""})
	want := map[string]any{"b": "x", "c": false}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("compact mismatch (-want +got):\n%s", diff)
	}
}

func TestDocumentIsValidOpenAPI(t *testing.T) {
	t.Parallel()

	doc := Document(DocumentInfo{BasePath: "/api"}, FormSchema(defaultForm(t), nil))
	if err := doc.Validate(context.Background()); err != nil {
		t.Fatalf("document should validate: %v", err)
	}
	if doc.Paths.Find("/api/report/sessions/{id}/submit") == nil {
		t.Fatalf("expected submit path")
	}
	if op := doc.Paths.Value("/api/training/sessions").Post; op == nil || op.OperationID != "createSession" {
		t.Fatalf("expected createSession operation")
	}
	if _, err := json.Marshal(doc); err != nil {
		t.Fatalf("marshal: %v", err)
	}
}

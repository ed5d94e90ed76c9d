package schema

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
)

// Component names registered by Document.
const (
	ReportPayloadSchema   = "ReportPayload"
	LookupRequestSchema   = "LookupRequest"
	FieldValueSchema      = "FieldValue"
	ValidationIssueSchema = "ValidationIssues"
)

// DocumentInfo names the generated API.
type DocumentInfo struct {
	Title   string
	Version string
	// BasePath prefixes every API path, for example "/api".
	BasePath string
}

// Document assembles the portal API description around payload, which is
// usually FormSchema for the configured report.
func Document(info DocumentInfo, payload *openapi3.Schema) *openapi3.T {
	if info.Title == "" {
		info.Title = "Report Portal"
	}
	if info.Version == "" {
		info.Version = "1.0.0"
	}
	if payload == nil {
		payload = openapi3.NewObjectSchema()
	}

	lookup := openapi3.NewObjectSchema().
		WithProperty("type", openapi3.NewStringSchema().WithEnum("anonymous", "contact")).
		WithProperty("anonymousId", openapi3.NewStringSchema()).
		WithProperty("fullName", openapi3.NewStringSchema()).
		WithProperty("email", openapi3.NewStringSchema().WithPattern(EmailPattern)).
		WithRequired([]string{"type"})

	value := openapi3.NewObjectSchema().
		WithProperty("value", &openapi3.Schema{}).
		WithRequired([]string{"value"})

	issues := openapi3.NewObjectSchema().
		WithProperty("errors", openapi3.NewObjectSchema().WithAdditionalProperties(
			openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()),
		))

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info:    &openapi3.Info{Title: info.Title, Version: info.Version},
		Paths:   openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{
				ReportPayloadSchema:   openapi3.NewSchemaRef("", payload),
				LookupRequestSchema:   openapi3.NewSchemaRef("", lookup),
				FieldValueSchema:      openapi3.NewSchemaRef("", value),
				ValidationIssueSchema: openapi3.NewSchemaRef("", issues),
			},
		},
	}

	view := openapi3.NewObjectSchema()
	base := info.BasePath + "/report/sessions"
	session := openapi3.NewPathParameter("id").WithSchema(openapi3.NewStringSchema())
	field := openapi3.NewPathParameter("field").WithSchema(openapi3.NewStringSchema())

	doc.AddOperation(base, http.MethodPost, operation("createReportSession", "Start a report session", nil, view))
	doc.AddOperation(base+"/{id}", http.MethodGet, operation("getReportSession", "Current report view", nil, view, session))
	doc.AddOperation(base+"/{id}/values/{field}", http.MethodPut,
		operation("setReportValue", "Set one field value", ref(FieldValueSchema, value), view, session, field))
	submit := operation("submitReport", "Submit the report", ref(ReportPayloadSchema, payload), view, session)
	submit.Responses.Set("422", &openapi3.ResponseRef{Value: openapi3.NewResponse().
		WithDescription("Payload failed validation").
		WithJSONSchemaRef(ref(ValidationIssueSchema, issues))})
	doc.AddOperation(base+"/{id}/submit", http.MethodPost, submit)
	doc.AddOperation(base+"/{id}/reset", http.MethodPost, operation("resetReport", "Reset the form", nil, view, session))
	doc.AddOperation(base+"/{id}/lookup", http.MethodPost,
		operation("lookupSubmissions", "Look up earlier submissions", ref(LookupRequestSchema, lookup), view, session))

	training := info.BasePath + "/training"
	sessionID := openapi3.NewPathParameter("id").WithSchema(openapi3.NewStringSchema())
	list := openapi3.NewArraySchema().WithItems(openapi3.NewObjectSchema())
	doc.AddOperation(training+"/courses", http.MethodGet, operation("listCourses", "Training courses", nil, list))
	doc.AddOperation(training+"/courses", http.MethodPost, operation("createCourse", "Create a course", openapi3.NewSchemaRef("", openapi3.NewObjectSchema()), view))
	doc.AddOperation(training+"/sessions", http.MethodGet, operation("listSessions", "Upcoming sessions", nil, list))
	doc.AddOperation(training+"/sessions", http.MethodPost, operation("createSession", "Schedule a session", openapi3.NewSchemaRef("", openapi3.NewObjectSchema()), view))
	doc.AddOperation(training+"/attendance", http.MethodGet, operation("listAttendance", "Current user registrations", nil, list))
	doc.AddOperation(training+"/sessions/{id}/register", http.MethodPost, operation("registerSession", "Register for a session", nil, view, sessionID))
	doc.AddOperation(training+"/sessions/{id}/cancel", http.MethodPost, operation("cancelRegistration", "Cancel a registration", nil, view, sessionID))

	return doc
}

func ref(name string, value *openapi3.Schema) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("#/components/schemas/"+name, value)
}

func operation(id, summary string, body *openapi3.SchemaRef, response *openapi3.Schema, params ...*openapi3.Parameter) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = id
	op.Summary = summary
	if body != nil {
		op.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(body)}
	}
	for _, param := range params {
		op.AddParameter(param)
	}
	op.Responses = openapi3.NewResponses(openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
		Value: openapi3.NewResponse().WithDescription("OK").WithJSONSchema(response),
	}))
	return op
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-reportform/internal/config"
	"github.com/goliatone/go-reportform/pkg/gateway"
	"github.com/goliatone/go-reportform/pkg/model"
	"github.com/goliatone/go-reportform/pkg/notify"
	"github.com/goliatone/go-reportform/pkg/render"
	"github.com/goliatone/go-reportform/pkg/testsupport"
)

type fakeLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allow, f.err
}

type fixture struct {
	srv      *Server
	handler  http.Handler
	reports  *testsupport.ReportGateway
	training *testsupport.TrainingGateway
	sessions *MemoryStore
}

func reportGateway() *testsupport.ReportGateway {
	return &testsupport.ReportGateway{
		Categories:   []model.Option{{Label: "Fraud", Value: "Fraud"}, {Label: "Waste", Value: "Waste"}},
		Severities:   []model.Option{{Label: "Low", Value: "Low"}, {Label: "High", Value: "High"}},
		SubmitResult: model.SubmissionResult{Success: true, AnonymousID: "ANON-7"},
	}
}

func trainingGateway() *testsupport.TrainingGateway {
	return &testsupport.TrainingGateway{
		Courses: []model.Course{{ID: "c1", Name: "Ethics 101", Category: "Ethics and Integrity", Hours: 2}},
		Sessions: []model.SessionDetail{
			{Session: &model.Session{ID: "s1", CourseID: "c1", Date: "2024-05-01"}, AvailableSpots: 3},
		},
	}
}

func newFixture(t *testing.T, mutate ...func(*Deps)) fixture {
	t.Helper()

	cfg, err := config.Default()
	require.NoError(t, err)

	f := fixture{
		reports:  reportGateway(),
		training: trainingGateway(),
		sessions: NewMemoryStore(time.Hour),
	}
	deps := Deps{
		Config:   cfg,
		Reports:  f.reports,
		Training: f.training,
		Sessions: f.sessions,
		Registry: prometheus.NewRegistry(),
	}
	for _, fn := range mutate {
		fn(&deps)
	}
	f.srv, err = New(deps)
	require.NoError(t, err)
	f.handler = f.srv.Handler()
	return f
}

func (f fixture) do(t *testing.T, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f fixture) postForm(t *testing.T, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	return f.do(t, http.MethodPost, target, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

func (f fixture) postJSON(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return f.do(t, method, target, strings.NewReader(string(raw)), "application/json")
}

type pageDocument struct {
	View       model.FormView      `json:"view"`
	Errors     map[string][]string `json:"errors"`
	FormErrors []string            `json:"formErrors"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func identifiedForm(session string) url.Values {
	return url.Values{
		render.SessionFieldName:  {session},
		"isAnonymous":            {"false"},
		"reporterName":           {"Jane Doe"},
		"reporterEmail":          {"jane@example.com"},
		"consentToContact":       {"true"},
		"preferredContactMethod": {"Email"},
		"category":               {"Fraud"},
		"severity":               {"High"},
		"reportDetails":          {"Invoices were duplicated."},
	}
}

func sessionCookieValue(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookie {
			return cookie.Value
		}
	}
	t.Fatalf("no %s cookie in response", sessionCookie)
	return ""
}

func TestHealthzAndRootRedirect(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, reportAction, rec.Header().Get("Location"))
}

func TestReportPageStartsSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/report/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	id := sessionCookieValue(t, rec)
	require.Contains(t, rec.Body.String(), id)
	require.Equal(t, 1, f.sessions.Len())

	rec = f.do(t, http.MethodGet, "/report/?mode=view&format=json", nil, "")
	doc := decode[pageDocument](t, rec)
	require.Equal(t, "view", doc.View.Mode)
}

func TestReportPageUnknownFormat(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/report/?format=pdf", nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportSubmitFormFlow(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := sessionCookieValue(t, f.do(t, http.MethodGet, "/report/", nil, ""))

	rec := f.postForm(t, "/report/submit?format=json", identifiedForm(id))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	doc := decode[pageDocument](t, rec)
	require.True(t, doc.View.ShowSuccess)
	require.Equal(t, 1, f.reports.Count("SubmitReport"))

	payload, ok := f.reports.LastPayload()
	require.True(t, ok)
	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &sent))
	require.Equal(t, "Jane Doe", sent["reporterName"])
	require.Equal(t, false, sent["isAnonymous"])

	rec = f.postForm(t, "/report/reset?format=json", url.Values{render.SessionFieldName: {id}})
	doc = decode[pageDocument](t, rec)
	require.False(t, doc.View.ShowSuccess)
	require.Equal(t, "", doc.View.Values["reporterName"])
}

func TestReportSubmitFormMissingFields(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	form := identifiedForm("")
	form.Del("category")
	form.Set("reporterEmail", "not-an-email")

	rec := f.postForm(t, "/report/submit?format=json", form)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	doc := decode[pageDocument](t, rec)
	require.Contains(t, doc.Errors, "category")
	require.Equal(t, []string{"Enter a valid email address."}, doc.Errors["reporterEmail"])
	require.Contains(t, doc.FormErrors, msgCorrect)
	require.Zero(t, f.reports.Count("SubmitReport"))
}

func TestReportSubmitAnonymousIgnoresHiddenFields(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	form := identifiedForm("")
	form.Set("isAnonymous", "true")

	rec := f.postForm(t, "/report/submit?format=json", form)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	payload, _ := f.reports.LastPayload()
	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &sent))
	require.Equal(t, "", sent["reporterName"])
	require.Equal(t, true, sent["isAnonymous"])

	doc := decode[pageDocument](t, rec)
	require.Equal(t, "ANON-7", doc.View.Result.AnonymousID)
}

func TestReportLookupForm(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.reports.LookupResult = model.LookupResult{Success: true, Submissions: []model.Submission{{"Name": "R-1"}}}

	rec := f.postForm(t, "/report/lookup?format=json", url.Values{"type": {"anonymous"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Zero(t, f.reports.Count("GetSubmissionsByAnonymousID"))

	rec = f.postForm(t, "/report/lookup?format=json", url.Values{"type": {"anonymous"}, "anonymousId": {" ANON-7 "}})
	require.Equal(t, http.StatusOK, rec.Code)
	doc := decode[pageDocument](t, rec)
	require.Len(t, doc.View.Lookup.Submissions, 1)
	require.Equal(t, "ANON-7", f.reports.Calls()[len(f.reports.Calls())-1].Args[0])
}

func TestAPIReportSessionLifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := f.postJSON(t, http.MethodPost, "/api/report/sessions", map[string]string{})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[sessionResponse](t, rec)
	require.NotEmpty(t, created.ID)
	base := "/api/report/sessions/" + created.ID

	rec = f.postJSON(t, http.MethodPut, base+"/values/isAnonymous", map[string]any{"value": "true"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decode[sessionResponse](t, rec).View.Values["isAnonymous"])

	rec = f.postJSON(t, http.MethodPut, base+"/values/shoeSize", map[string]any{"value": 42})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.postJSON(t, http.MethodPost, base+"/submit", map[string]any{"reporterEmail": "tips@example.com"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	invalid := decode[sessionResponse](t, rec)
	require.Contains(t, invalid.Errors, "category")
	require.Contains(t, invalid.Errors, "reportDetails")

	rec = f.postJSON(t, http.MethodPost, base+"/submit", map[string]any{
		"category":      "Waste",
		"severity":      "Low",
		"reportDetails": "Unused licences renewed.",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	done := decode[sessionResponse](t, rec)
	require.NotNil(t, done.Result)
	require.Equal(t, "ANON-7", done.Result.AnonymousID)
	require.NotEmpty(t, done.Toasts)

	rec = f.do(t, http.MethodGet, base, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, decode[sessionResponse](t, rec).View.ShowSuccess)

	rec = f.postJSON(t, http.MethodPost, base+"/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, decode[sessionResponse](t, rec).View.Submitted)
}

func TestAPIReportHiddenFieldRejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := f.postJSON(t, http.MethodPost, "/api/report/sessions", map[string]string{})
	require.Equal(t, http.StatusCreated, rec.Code)
	base := "/api/report/sessions/" + decode[sessionResponse](t, rec).ID

	rec = f.postJSON(t, http.MethodPut, base+"/values/isAnonymous", map[string]any{"value": true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.postJSON(t, http.MethodPut, base+"/values/reporterName", map[string]any{"value": "Jane Secret"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), "reporterName")

	rec = f.do(t, http.MethodGet, base, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "", decode[sessionResponse](t, rec).View.Values["reporterName"])

	rec = f.postJSON(t, http.MethodPost, base+"/submit", map[string]any{
		"reporterEmail": "tips@example.com",
		"category":      "Fraud",
		"severity":      "Low",
		"reportDetails": "Unused licences renewed.",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	payload, _ := f.reports.LastPayload()
	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &sent))
	require.Equal(t, true, sent["isAnonymous"])
	require.Equal(t, "", sent["reporterName"])
}

func TestAPIReportUnknownSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/report/sessions/missing", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/report/sessions/missing/submit", strings.NewReader("{"), "application/json")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPIReportSubmitRejectedAndFailed(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	created := decode[sessionResponse](t, f.postJSON(t, http.MethodPost, "/api/report/sessions", nil))
	base := "/api/report/sessions/" + created.ID
	body := map[string]any{
		"isAnonymous":   true,
		"reporterEmail": "tips@example.com",
		"category":      "Fraud",
		"severity":      "High",
		"reportDetails": "Details.",
	}

	f.reports.SubmitResult = model.SubmissionResult{Success: false, ErrorMessage: "Duplicate report"}
	rec := f.postJSON(t, http.MethodPost, base+"/submit", body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "Duplicate report", decode[sessionResponse](t, rec).View.Error)

	f.reports.SubmitErr = errors.New("connection reset")
	rec = f.postJSON(t, http.MethodPost, base+"/submit", body)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	metrics := f.do(t, http.MethodGet, "/metrics", nil, "").Body.String()
	require.Contains(t, metrics, `reportform_submissions_total{outcome="rejected"} 1`)
	require.Contains(t, metrics, `reportform_submissions_total{outcome="error"} 1`)
}

func TestAPIReportWithoutGateway(t *testing.T) {
	t.Parallel()

	f := newFixture(t, func(d *Deps) { d.Reports = nil })
	created := decode[sessionResponse](t, f.postJSON(t, http.MethodPost, "/api/report/sessions", nil))
	rec := f.postJSON(t, http.MethodPost, "/api/report/sessions/"+created.ID+"/lookup", lookupRequest{Type: "anonymous", AnonymousID: "A"})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSubmitRateLimited(t *testing.T) {
	t.Parallel()

	limiter := &fakeLimiter{allow: false}
	f := newFixture(t, func(d *Deps) {
		d.Limiter = limiter
		d.Config.Server.RateLimit.Enabled = true
	})

	req := httptest.NewRequest(http.MethodPost, "/report/submit", strings.NewReader(identifiedForm("").Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "203.0.113.9:5555"
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "60", rec.Header().Get("Retry-After"))
	require.Equal(t, []string{"rate_limit:203.0.113.9:submit"}, limiter.keys)
	require.Zero(t, f.reports.Count("SubmitReport"))

	limiter.err = errors.New("redis down")
	rec = f.postForm(t, "/report/submit?format=json", identifiedForm(""))
	require.Equal(t, http.StatusOK, rec.Code)

	metrics := f.do(t, http.MethodGet, "/metrics", nil, "").Body.String()
	require.Contains(t, metrics, "reportform_rate_limited_total 1")
}

func TestMetricsRecordRoutePatterns(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.do(t, http.MethodGet, "/api/report/sessions/abc", nil, "")

	metrics := f.do(t, http.MethodGet, "/metrics", nil, "").Body.String()
	require.Regexp(t, `reportform_http_requests_total\{method="GET",route="/api/report/sessions/\{id\}/?",status="404"\} 1`, metrics)
}

func TestOpenAPIDocument(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/openapi.json", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		OpenAPI string         `json:"openapi"`
		Paths   map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Equal(t, "3.0.3", doc.OpenAPI)
	require.Contains(t, doc.Paths, "/api/report/sessions")
	require.Contains(t, doc.Paths, "/api/training/courses")
	require.Contains(t, rec.Body.String(), `"Fraud"`)
}

func TestTrainingPage(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/training/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Ethics 101")

	rec = f.do(t, http.MethodGet, "/training/?tab=sessions&format=json", nil, "")
	var doc struct {
		View struct {
			ActiveTab    string `json:"activeTab"`
			ShowSessions bool   `json:"showSessions"`
		} `json:"view"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Equal(t, "sessions", doc.View.ActiveTab)
	require.True(t, doc.View.ShowSessions)
}

func TestTrainingCourseFormValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := f.postForm(t, "/training/courses?format=json", url.Values{"tab": {"courses"}, "name": {"Forensics"}, "hours": {"many"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var doc struct {
		View struct {
			ShowCourseModal bool `json:"showCourseModal"`
		} `json:"view"`
		Errors map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.True(t, doc.View.ShowCourseModal)
	require.Equal(t, []string{"Enter a number."}, doc.Errors["hours"])
	require.Equal(t, []string{"This field is required."}, doc.Errors["category"])
	require.Zero(t, f.training.Count("CreateCourse"))
}

func TestTrainingRegisterForm(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := f.postForm(t, "/training/sessions/s1/register", url.Values{"tab": {"sessions"}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Successfully registered for session!")
	require.Equal(t, 2, f.training.Count("GetUpcomingSessions"))
}

func TestAPITraining(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/training/courses", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]model.Course](t, rec), 1)

	rec = f.do(t, http.MethodGet, "/api/training/attendance", nil, "")
	require.JSONEq(t, `[]`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/training/sessions", nil, "")
	sessions := decode[[]model.SessionDetail](t, rec)
	require.NotNil(t, sessions[0].Session.Course)

	rec = f.postJSON(t, http.MethodPost, "/api/training/sessions/s1/register", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, gateway.StatusSuccess, decode[mutationResponse](t, rec).Status)

	rec = f.postJSON(t, http.MethodPost, "/api/training/courses", map[string]string{"name": "Forensics", "hours": "2", "category": "Data Analysis and Technology"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, f.training.Count("CreateCourse"))

	rec = f.postJSON(t, http.MethodPost, "/api/training/sessions", map[string]string{"courseId": "c1", "sessionDate": "07/01/2024"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	invalid := decode[mutationResponse](t, rec)
	require.Equal(t, []string{"Enter a date as YYYY-MM-DD."}, invalid.Errors["sessionDate"])

	f.training.MutationErr = &gateway.RemoteError{Message: "Registration not found"}
	rec = f.postJSON(t, http.MethodPost, "/api/training/sessions/s9/cancel", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, "Registration not found", decode[mutationResponse](t, rec).Error)
}

func TestAPITrainingWithoutGateway(t *testing.T) {
	t.Parallel()

	f := newFixture(t, func(d *Deps) { d.Training = nil })
	require.Equal(t, http.StatusServiceUnavailable, f.do(t, http.MethodGet, "/api/training/courses", nil, "").Code)
	require.Equal(t, http.StatusServiceUnavailable, f.postJSON(t, http.MethodPost, "/api/training/sessions/s1/register", nil).Code)
}

func TestNewRequiresConfig(t *testing.T) {
	t.Parallel()

	_, err := New(Deps{})
	require.Error(t, err)
}

func TestTrainingErrorsNames(t *testing.T) {
	t.Parallel()

	d := newFixture(t).srv.apiDashboard(&notify.Recorder{})
	d.OpenSessionModal()
	_, err := d.SaveSession(context.Background())
	errs := trainingErrors(err)
	require.Contains(t, errs, "courseId")
	require.Contains(t, errs, "maxAttendees")
	require.Nil(t, trainingErrors(nil))
}

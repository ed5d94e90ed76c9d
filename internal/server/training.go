package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/goliatone/go-reportform/pkg/gateway"
	"github.com/goliatone/go-reportform/pkg/model"
	"github.com/goliatone/go-reportform/pkg/notify"
	"github.com/goliatone/go-reportform/pkg/render"
	"github.com/goliatone/go-reportform/pkg/training"
)

const trainingAction = "/training/"

var (
	courseInputs  = []string{"name", "description", "hours", "category"}
	sessionInputs = []string{"courseId", "sessionDate", "startTime", "endTime", "location", "maxAttendees", "instructorId", "sessionLink"}
)

var tagMessages = map[string]string{
	"required": "This field is required.",
	"numeric":  "Enter a number.",
	"number":   "Enter a whole number.",
	"datetime": "Enter a date as YYYY-MM-DD.",
	"url":      "Enter a valid URL.",
}

// trainingErrors converts validator failures into messages keyed by input
// name, e.g. CourseID becomes courseId.
func trainingErrors(err error) map[string][]string {
	fields := training.FieldErrors(err)
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string][]string, len(fields))
	for field, tag := range fields {
		name := lowerFirst(field)
		if strings.HasSuffix(name, "ID") {
			name = strings.TrimSuffix(name, "ID") + "Id"
		}
		message, ok := tagMessages[tag]
		if !ok {
			message = "Invalid value."
		}
		out[name] = []string{message}
	}
	return out
}

// dashboard builds a per-request dashboard. Refreshes after mutations run
// inline so the rendered page shows fresh lists.
func (s *Server) dashboard(rec *notify.Recorder) *training.Dashboard {
	return training.New(s.training,
		training.WithLogger(s.logger),
		training.WithNotifier(notify.Multi(rec, notify.LogNotifier{Logger: s.logger})),
		training.WithRunner(func(fn func()) { fn() }),
	)
}

// trainingPage loads the dashboard and applies the tab selection carried by
// the query string or the posted form.
func (s *Server) trainingPage(ctx context.Context, r *http.Request) (*training.Dashboard, *notify.Recorder) {
	rec := &notify.Recorder{}
	d := s.dashboard(rec)
	if err := d.Init(ctx); err != nil {
		s.logger.Warn("training dashboard loaded partially", zap.Error(err))
	}
	tab := r.URL.Query().Get("tab")
	if posted := r.PostFormValue("tab"); posted != "" {
		tab = posted
	}
	d.SelectTab(training.ParseTab(tab))
	return d, rec
}

func (s *Server) renderDashboard(w http.ResponseWriter, r *http.Request, d *training.Dashboard, rec *notify.Recorder, status int, errs map[string][]string) {
	renderer, err := s.renderer(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dash, err := s.renderers.Dashboard(renderer.Name())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	view := d.View()
	out, err := dash.RenderDashboard(r.Context(), view, render.RenderOptions{
		Action: trainingAction,
		Hidden: render.MergeHiddenFields(nil, render.Hidden("tab", view.ActiveTab)),
		Toasts: rec.Toasts(),
		Errors: errs,
		Theme:  s.themeFor(r),
	})
	if err != nil {
		s.logger.Error("dashboard render failed", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	writeBody(w, status, dash.ContentType(), out)
}

func (s *Server) handleTrainingPage(w http.ResponseWriter, r *http.Request) {
	d, rec := s.trainingPage(r.Context(), r)
	q := r.URL.Query()
	if course := q.Get("course"); course != "" {
		d.SelectCourse(course)
	}
	switch q.Get("modal") {
	case "course":
		d.OpenCourseModal()
	case "session":
		d.OpenSessionModal()
	}
	s.renderDashboard(w, r, d, rec, http.StatusOK, nil)
}

func (s *Server) handleTrainingCourse(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}
	d, rec := s.trainingPage(r.Context(), r)
	d.OpenCourseModal()
	for _, name := range courseInputs {
		d.SetCourseField(name, r.PostForm.Get(name))
	}
	_, err := d.SaveCourse(r.Context())
	s.renderMutation(w, r, d, rec, err)
}

func (s *Server) handleTrainingSession(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}
	d, rec := s.trainingPage(r.Context(), r)
	d.OpenSessionModal()
	for _, name := range sessionInputs {
		d.SetSessionField(name, r.PostForm.Get(name))
	}
	_, err := d.SaveSession(r.Context())
	s.renderMutation(w, r, d, rec, err)
}

func (s *Server) handleTrainingRegister(w http.ResponseWriter, r *http.Request) {
	d, rec := s.trainingPage(r.Context(), r)
	_, err := d.Register(r.Context(), chi.URLParam(r, "id"))
	s.renderMutation(w, r, d, rec, err)
}

func (s *Server) handleTrainingCancel(w http.ResponseWriter, r *http.Request) {
	d, rec := s.trainingPage(r.Context(), r)
	_, err := d.Cancel(r.Context(), chi.URLParam(r, "id"))
	s.renderMutation(w, r, d, rec, err)
}

// renderMutation redraws the dashboard after a mutation. Remote failures are
// already surfaced as toasts; only invalid modal input changes the status.
func (s *Server) renderMutation(w http.ResponseWriter, r *http.Request, d *training.Dashboard, rec *notify.Recorder, err error) {
	if errors.Is(err, training.ErrInvalidForm) {
		s.renderDashboard(w, r, d, rec, http.StatusUnprocessableEntity, trainingErrors(err))
		return
	}
	if err != nil {
		s.logger.Warn("training mutation failed", zap.Error(err))
	}
	s.renderDashboard(w, r, d, rec, http.StatusOK, nil)
}

// JSON API.

type mutationResponse struct {
	Status gateway.Status      `json:"status,omitempty"`
	Toasts []notify.Toast      `json:"toasts,omitempty"`
	Errors map[string][]string `json:"errors,omitempty"`
	Error  string              `json:"error,omitempty"`
}

func (s *Server) respondMutation(w http.ResponseWriter, status gateway.Status, rec *notify.Recorder, err error) {
	body := mutationResponse{Status: status, Toasts: rec.Toasts()}
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, body)
	case errors.Is(err, training.ErrInvalidForm):
		body.Errors = trainingErrors(err)
		body.Error = "invalid form"
		writeJSON(w, http.StatusUnprocessableEntity, body)
	case errors.Is(err, training.ErrNoGateway):
		body.Error = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, body)
	default:
		s.logger.Warn("training mutation failed", zap.Error(err))
		body.Error = gateway.Message(err)
		writeJSON(w, http.StatusBadGateway, body)
	}
}

// apiDashboard is a dashboard without follow-up refreshes; the API answers
// with the mutation status only.
func (s *Server) apiDashboard(rec *notify.Recorder) *training.Dashboard {
	return training.New(s.training,
		training.WithLogger(s.logger),
		training.WithNotifier(notify.Multi(rec, notify.LogNotifier{Logger: s.logger})),
		training.WithRunner(func(func()) {}),
	)
}

func listResponse[T any](s *Server, w http.ResponseWriter, r *http.Request, fetch func(context.Context) ([]T, error)) {
	if s.training == nil {
		s.writeError(w, http.StatusServiceUnavailable, training.ErrNoGateway.Error(), nil)
		return
	}
	items, err := fetch(r.Context())
	if err != nil {
		s.writeError(w, http.StatusBadGateway, gateway.Message(err), err)
		return
	}
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) apiCourses(w http.ResponseWriter, r *http.Request) {
	listResponse(s, w, r, func(ctx context.Context) ([]model.Course, error) {
		return s.training.GetCourses(ctx)
	})
}

func (s *Server) apiSessions(w http.ResponseWriter, r *http.Request) {
	listResponse(s, w, r, func(ctx context.Context) ([]model.SessionDetail, error) {
		sessions, err := s.training.GetUpcomingSessions(ctx)
		return training.NormalizeSessions(sessions), err
	})
}

func (s *Server) apiAttendance(w http.ResponseWriter, r *http.Request) {
	listResponse(s, w, r, func(ctx context.Context) ([]model.Attendance, error) {
		return s.training.GetUserAttendance(ctx)
	})
}

func (s *Server) apiCreateCourse(w http.ResponseWriter, r *http.Request) {
	var form training.CourseForm
	if err := decodeJSON(r, &form); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed JSON body", err)
		return
	}
	rec := &notify.Recorder{}
	d := s.apiDashboard(rec)
	d.OpenCourseModal()
	d.SetCourseField("name", form.Name)
	d.SetCourseField("description", form.Description)
	d.SetCourseField("hours", form.Hours)
	d.SetCourseField("category", form.Category)
	status, err := d.SaveCourse(r.Context())
	s.respondMutation(w, status, rec, err)
}

func (s *Server) apiCreateTrainingSession(w http.ResponseWriter, r *http.Request) {
	var form training.SessionForm
	if err := decodeJSON(r, &form); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed JSON body", err)
		return
	}
	rec := &notify.Recorder{}
	d := s.apiDashboard(rec)
	d.OpenSessionModal()
	values := map[string]string{
		"courseId":     form.CourseID,
		"sessionDate":  form.SessionDate,
		"startTime":    form.StartTime,
		"endTime":      form.EndTime,
		"location":     form.Location,
		"maxAttendees": form.MaxAttendees,
		"instructorId": form.InstructorID,
		"sessionLink":  form.SessionLink,
	}
	for _, name := range sessionInputs {
		d.SetSessionField(name, values[name])
	}
	status, err := d.SaveSession(r.Context())
	s.respondMutation(w, status, rec, err)
}

func (s *Server) apiRegister(w http.ResponseWriter, r *http.Request) {
	rec := &notify.Recorder{}
	status, err := s.apiDashboard(rec).Register(r.Context(), chi.URLParam(r, "id"))
	s.respondMutation(w, status, rec, err)
}

func (s *Server) apiCancel(w http.ResponseWriter, r *http.Request) {
	rec := &notify.Recorder{}
	status, err := s.apiDashboard(rec).Cancel(r.Context(), chi.URLParam(r, "id"))
	s.respondMutation(w, status, rec, err)
}

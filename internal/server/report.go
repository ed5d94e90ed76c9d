package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-reportform/pkg/model"
	"github.com/goliatone/go-reportform/pkg/notify"
	"github.com/goliatone/go-reportform/pkg/render"
	"github.com/goliatone/go-reportform/pkg/renderers/html"
	"github.com/goliatone/go-reportform/pkg/report"
	"github.com/goliatone/go-reportform/pkg/schema"
	"github.com/goliatone/go-reportform/pkg/validation"
)

const (
	reportAction  = "/report/"
	sessionCookie = "reportform_session"
	msgCorrect    = "Please correct the highlighted fields."
)

// reportSession is a controller rebuilt for one request from its stored
// snapshot. Toasts raised while handling the request are collected in toasts.
type reportSession struct {
	id     string
	ctrl   *report.Controller
	toasts *notify.Recorder
}

func (s *Server) newController(ctx context.Context, rec *notify.Recorder) *report.Controller {
	opts := append(s.cfg.ReportOptions(),
		report.WithLogger(s.logger),
		report.WithNotifier(notify.Multi(rec, notify.LogNotifier{Logger: s.logger})),
	)
	c := report.New(s.cfg.Report, s.reports, opts...)
	s.options.Apply(ctx, c)
	return c
}

// loadSession restores the session id. found is false when the id is blank,
// unknown or expired.
func (s *Server) loadSession(ctx context.Context, id string) (*reportSession, bool, error) {
	rec := &notify.Recorder{}
	sess := &reportSession{id: id, ctrl: s.newController(ctx, rec), toasts: rec}
	if id == "" {
		return sess, false, nil
	}
	snap, ok, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return sess, false, nil
	}
	sess.ctrl.Restore(snap)
	return sess, true, nil
}

// openSession restores id or starts a fresh session.
func (s *Server) openSession(ctx context.Context, id string) (*reportSession, error) {
	sess, found, err := s.loadSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		sess.id = uuid.NewString()
		s.metrics.sessionsCreated.Inc()
	}
	return sess, nil
}

func (s *Server) saveSession(ctx context.Context, sess *reportSession) error {
	if err := s.sessions.Save(ctx, sess.id, sess.ctrl.Snapshot()); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// valueSource yields the submitted value for a field, if any.
type valueSource func(field model.Field) (any, bool)

// formValues reads an HTML form post. Unchecked checkboxes are absent from
// the post and therefore read as false.
func formValues(form url.Values) valueSource {
	return func(field model.Field) (any, bool) {
		if field.Type == model.FieldTypeCheckbox {
			return form.Has(field.Name) && form.Get(field.Name) != "false", true
		}
		if !form.Has(field.Name) {
			return nil, false
		}
		return form.Get(field.Name), true
	}
}

func jsonValues(values map[string]any) valueSource {
	return func(field model.Field) (any, bool) {
		value, ok := values[field.Name]
		if ok && field.Type == model.FieldTypeCheckbox {
			return model.CoerceBool(value) == true, true
		}
		return value, ok
	}
}

// applyValues walks the fields in form order and assigns each visible one.
// Visibility is re-evaluated after every change so a field revealed by an
// earlier answer picks up its value in the same pass. Unchanged values are
// skipped to avoid re-running the cross-field rules.
func applyValues(c *report.Controller, src valueSource) {
	for _, field := range c.Form().Fields() {
		if !c.FieldVisible(field.Name) {
			continue
		}
		value, ok := src(field)
		if !ok {
			continue
		}
		if current, _ := c.Value(field.Name); sameValue(current, value) {
			continue
		}
		c.SetValue(field.Name, value)
	}
}

func sameValue(current, next any) bool {
	return fmt.Sprint(model.CoerceBool(current)) == fmt.Sprint(model.CoerceBool(next))
}

func unknownFields(form model.FormModel, values map[string]any) []string {
	known := make(map[string]struct{})
	for _, field := range form.Fields() {
		known[field.Name] = struct{}{}
	}
	var unknown []string
	for name := range values {
		if _, ok := known[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// submitOutcome is the result of the shared submit flow.
type submitOutcome struct {
	status int
	errors render.ErrorMapping
	result model.SubmissionResult
}

// submit validates the visible payload against its schema and only then
// hands it to the controller.
func (s *Server) submit(ctx context.Context, c *report.Controller) (submitOutcome, error) {
	raw, err := c.Payload()
	if err != nil {
		return submitOutcome{status: http.StatusInternalServerError}, err
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return submitOutcome{status: http.StatusInternalServerError}, err
	}

	checked := validation.ValidatePayload(schema.PayloadSchema(c.View()), payload)
	if !checked.Valid {
		s.metrics.submission(OutcomeInvalid)
		mapping := render.MapErrorPayload(c.Form(), checked.ErrorMap())
		mapping.Form = render.MergeFormErrors(mapping.Form, msgCorrect)
		return submitOutcome{status: http.StatusUnprocessableEntity, errors: mapping}, nil
	}

	result, err := c.Submit(ctx)
	switch {
	case errors.Is(err, report.ErrInvalidForm):
		s.metrics.submission(OutcomeInvalid)
		return submitOutcome{status: http.StatusUnprocessableEntity, errors: render.ErrorMapping{Form: []string{msgCorrect}}}, nil
	case errors.Is(err, report.ErrNoGateway):
		s.metrics.submission(OutcomeError)
		return submitOutcome{status: http.StatusServiceUnavailable}, err
	case err != nil:
		s.metrics.submission(OutcomeError)
		return submitOutcome{status: http.StatusBadGateway}, err
	case !result.Success:
		s.metrics.submission(OutcomeRejected)
		return submitOutcome{status: http.StatusUnprocessableEntity, result: result}, nil
	}
	s.metrics.submission(OutcomeSuccess)
	return submitOutcome{status: http.StatusOK, result: result}, nil
}

// lookupRequest carries the "view my submissions" inputs.
type lookupRequest struct {
	Type        string `json:"type"`
	AnonymousID string `json:"anonymousId"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
}

func (s *Server) lookup(ctx context.Context, c *report.Controller, req lookupRequest) (int, error) {
	c.SetMode(report.ModeView)
	c.SetLookupType(report.ParseLookupType(req.Type))
	c.SetLookupField(report.LookupFieldAnonymousID, strings.TrimSpace(req.AnonymousID))
	c.SetLookupField(report.LookupFieldFullName, strings.TrimSpace(req.FullName))
	c.SetLookupField(report.LookupFieldEmail, strings.TrimSpace(req.Email))

	_, err := c.Lookup(ctx)
	switch {
	case err == nil:
		return http.StatusOK, nil
	case errors.Is(err, report.ErrLookupInput):
		return http.StatusUnprocessableEntity, nil
	case errors.Is(err, report.ErrNoGateway):
		return http.StatusServiceUnavailable, err
	default:
		return http.StatusBadGateway, err
	}
}

// HTML pages.

func (s *Server) sessionID(r *http.Request) string {
	if id := r.PostFormValue(render.SessionFieldName); id != "" {
		return id
	}
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func (s *Server) pageSession(w http.ResponseWriter, r *http.Request) (*reportSession, bool) {
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "malformed form", http.StatusBadRequest)
			return nil, false
		}
	}
	sess, err := s.openSession(r.Context(), s.sessionID(r))
	if err != nil {
		s.logger.Error("report session unavailable", zap.Error(err))
		http.Error(w, "session store unavailable", http.StatusServiceUnavailable)
		return nil, false
	}
	return sess, true
}

func (s *Server) themeFor(r *http.Request) *theme.RendererConfig {
	variant := s.cfg.Theme.Variant
	if v := r.URL.Query().Get("variant"); v != "" {
		variant = v
	}
	return html.ThemeConfig(s.cfg.Theme.Palette, s.cfg.Theme.Variants, variant)
}

func (s *Server) renderer(r *http.Request) (render.Renderer, error) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = html.Name
	}
	return s.renderers.Get(format)
}

func (s *Server) renderReport(w http.ResponseWriter, r *http.Request, sess *reportSession, status int, errs render.ErrorMapping) {
	ctx := r.Context()
	if err := s.saveSession(ctx, sess); err != nil {
		s.logger.Error("report session not saved", zap.String("session", sess.id), zap.Error(err))
		http.Error(w, "session store unavailable", http.StatusServiceUnavailable)
		return
	}

	renderer, err := s.renderer(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	out, err := renderer.Render(ctx, sess.ctrl.View(), render.RenderOptions{
		Action:     reportAction,
		Hidden:     render.MergeHiddenFields(nil, render.SessionField(sess.id)),
		Toasts:     sess.toasts.Toasts(),
		Errors:     errs.Fields,
		FormErrors: errs.Form,
		Theme:      s.themeFor(r),
	})
	if err != nil {
		s.logger.Error("report render failed", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.id,
		Path:     "/",
		MaxAge:   int(s.cfg.Server.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.Server.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeBody(w, status, renderer.ContentType(), out)
}

func (s *Server) handleReportPage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.pageSession(w, r)
	if !ok {
		return
	}
	if mode := r.URL.Query().Get("mode"); mode != "" {
		sess.ctrl.SetMode(report.ParseMode(mode))
	}
	s.renderReport(w, r, sess, http.StatusOK, render.ErrorMapping{})
}

func (s *Server) handleReportSubmit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.pageSession(w, r)
	if !ok {
		return
	}
	applyValues(sess.ctrl, formValues(r.PostForm))
	outcome, err := s.submit(r.Context(), sess.ctrl)
	if err != nil {
		s.logger.Error("report submission failed", zap.String("session", sess.id), zap.Error(err))
	}
	s.renderReport(w, r, sess, outcome.status, outcome.errors)
}

func (s *Server) handleReportReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.pageSession(w, r)
	if !ok {
		return
	}
	sess.ctrl.Reset()
	s.renderReport(w, r, sess, http.StatusOK, render.ErrorMapping{})
}

func (s *Server) handleReportLookup(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.pageSession(w, r)
	if !ok {
		return
	}
	status, err := s.lookup(r.Context(), sess.ctrl, lookupRequest{
		Type:        r.PostForm.Get("type"),
		AnonymousID: r.PostForm.Get(report.LookupFieldAnonymousID),
		FullName:    r.PostForm.Get(report.LookupFieldFullName),
		Email:       r.PostForm.Get(report.LookupFieldEmail),
	})
	if err != nil {
		s.logger.Error("report lookup failed", zap.String("session", sess.id), zap.Error(err))
	}
	s.renderReport(w, r, sess, status, render.ErrorMapping{})
}

// JSON API.

// sessionResponse is the body of every report API answer.
type sessionResponse struct {
	ID         string                  `json:"id"`
	View       model.FormView          `json:"view"`
	Toasts     []notify.Toast          `json:"toasts,omitempty"`
	Errors     map[string][]string     `json:"errors,omitempty"`
	FormErrors []string                `json:"formErrors,omitempty"`
	Result     *model.SubmissionResult `json:"result,omitempty"`
}

func (s *Server) respondSession(w http.ResponseWriter, r *http.Request, sess *reportSession, status int, errs render.ErrorMapping) {
	if err := s.saveSession(r.Context(), sess); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "session store unavailable", err)
		return
	}
	view := sess.ctrl.View()
	writeJSON(w, status, sessionResponse{
		ID:         sess.id,
		View:       view,
		Toasts:     sess.toasts.Toasts(),
		Errors:     errs.Fields,
		FormErrors: errs.Form,
		Result:     view.Result,
	})
}

// apiSession loads the {id} session, answering 404 when it is unknown.
func (s *Server) apiSession(w http.ResponseWriter, r *http.Request) (*reportSession, bool) {
	sess, found, err := s.loadSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "session store unavailable", err)
		return nil, false
	}
	if !found {
		s.writeError(w, http.StatusNotFound, "report session not found", nil)
		return nil, false
	}
	return sess, true
}

func (s *Server) apiReportCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed JSON body", err)
		return
	}
	sess, err := s.openSession(r.Context(), "")
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "session store unavailable", err)
		return
	}
	if req.Mode != "" {
		sess.ctrl.SetMode(report.ParseMode(req.Mode))
	}
	s.respondSession(w, r, sess, http.StatusCreated, render.ErrorMapping{})
}

func (s *Server) apiReportGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.apiSession(w, r)
	if !ok {
		return
	}
	s.respondSession(w, r, sess, http.StatusOK, render.ErrorMapping{})
}

func (s *Server) apiReportSetValue(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.apiSession(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "field")
	var req struct {
		Value any `json:"value"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed JSON body", err)
		return
	}
	if unknown := unknownFields(sess.ctrl.Form(), map[string]any{name: nil}); len(unknown) > 0 {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown field %q", name), nil)
		return
	}
	if !sess.ctrl.FieldVisible(name) {
		s.writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("field %q is hidden", name), nil)
		return
	}
	sess.ctrl.SetValue(name, req.Value)
	s.respondSession(w, r, sess, http.StatusOK, render.ErrorMapping{})
}

func (s *Server) apiReportSubmit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.apiSession(w, r)
	if !ok {
		return
	}
	var values map[string]any
	if err := decodeJSON(r, &values); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed JSON body", err)
		return
	}
	if unknown := unknownFields(sess.ctrl.Form(), values); len(unknown) > 0 {
		s.writeError(w, http.StatusBadRequest, "unknown fields: "+strings.Join(unknown, ", "), nil)
		return
	}
	if len(values) > 0 {
		applyValues(sess.ctrl, jsonValues(values))
	}
	outcome, err := s.submit(r.Context(), sess.ctrl)
	if err != nil {
		s.logger.Error("report submission failed", zap.String("session", sess.id), zap.Error(err))
	}
	s.respondSession(w, r, sess, outcome.status, outcome.errors)
}

func (s *Server) apiReportReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.apiSession(w, r)
	if !ok {
		return
	}
	sess.ctrl.Reset()
	s.respondSession(w, r, sess, http.StatusOK, render.ErrorMapping{})
}

func (s *Server) apiReportLookup(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.apiSession(w, r)
	if !ok {
		return
	}
	var req lookupRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed JSON body", err)
		return
	}
	status, err := s.lookup(r.Context(), sess.ctrl, req)
	if err != nil {
		s.logger.Error("report lookup failed", zap.String("session", sess.id), zap.Error(err))
	}
	s.respondSession(w, r, sess, status, render.ErrorMapping{})
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	rec := &notify.Recorder{}
	c := s.newController(r.Context(), rec)
	doc := schema.Document(schema.DocumentInfo{
		Title:    "Report Form Portal",
		Version:  "1.0.0",
		BasePath: "/api",
	}, schema.FormSchema(c.Form(), s.options.Sets(r.Context())))
	writeJSON(w, http.StatusOK, doc)
}

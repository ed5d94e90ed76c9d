package training

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-reportform/pkg/gateway"
	"github.com/goliatone/go-reportform/pkg/model"
	"github.com/goliatone/go-reportform/pkg/notify"
	"github.com/goliatone/go-reportform/pkg/store"
)

// Tab identifies a dashboard tab.
type Tab string

const (
	TabCourses    Tab = "courses"
	TabSessions   Tab = "sessions"
	TabMyTraining Tab = "mytraining"
)

// Tabs lists the tabs in display order.
func Tabs() []Tab {
	return []Tab{TabCourses, TabSessions, TabMyTraining}
}

// ParseTab maps raw input onto a Tab, defaulting to courses.
func ParseTab(raw string) Tab {
	switch Tab(raw) {
	case TabSessions, TabMyTraining:
		return Tab(raw)
	default:
		return TabCourses
	}
}

// ErrNoGateway is returned when the dashboard has no remote gateway.
var ErrNoGateway = errors.New("training: gateway is not configured")

// State is the dashboard snapshot.
type State struct {
	ActiveTab        Tab
	ShowCourseDetail bool
	SelectedCourse   *model.Course
	ShowCourseModal  bool
	ShowSessionModal bool
	Loading          bool
	NewCourse        CourseForm
	NewSession       SessionForm
	Sessions         []model.SessionDetail
	SessionsErr      string
}

// Runner schedules a background refresh.
type Runner func(fn func())

// Option customises the Dashboard.
type Option func(*Dashboard)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dashboard) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithNotifier sets the toast surface.
func WithNotifier(n notify.Notifier) Option {
	return func(d *Dashboard) {
		if n != nil {
			d.notifier = n
		}
	}
}

// WithRunner replaces how post-mutation refreshes are scheduled. The default
// starts one goroutine per refresh and never waits for them.
func WithRunner(run Runner) Option {
	return func(d *Dashboard) {
		if run != nil {
			d.run = run
		}
	}
}

// Dashboard is the training management controller.
type Dashboard struct {
	gateway     gateway.TrainingGateway
	store       *store.Store[State]
	courses     *Resource[model.Course]
	attendance  *Resource[model.Attendance]
	instructors *Resource[model.Instructor]
	notifier    notify.Notifier
	logger      *zap.Logger
	run         Runner
}

// New builds a dashboard over gw.
func New(gw gateway.TrainingGateway, opts ...Option) *Dashboard {
	d := &Dashboard{
		gateway:  gw,
		store:    store.New(State{ActiveTab: TabCourses, Sessions: []model.SessionDetail{}}),
		notifier: notify.Nop,
		logger:   zap.NewNop(),
		run:      func(fn func()) { go fn() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	if gw != nil {
		d.courses = NewResource(gw.GetCourses)
		d.attendance = NewResource(gw.GetUserAttendance)
		d.instructors = NewResource(gw.GetInstructors)
	}
	return d
}

// State returns the current snapshot.
func (d *Dashboard) State() State {
	return d.store.Get()
}

// Subscribe registers fn for every state transition.
func (d *Dashboard) Subscribe(fn func(State)) func() {
	return d.store.Subscribe(fn)
}

// Init loads the cached lists and the session list concurrently. Failures of
// the cached lists are logged and leave them empty; a session failure is
// surfaced as a toast by LoadSessions. The first error is returned.
func (d *Dashboard) Init(ctx context.Context) error {
	if d.gateway == nil {
		return ErrNoGateway
	}
	var g errgroup.Group
	g.Go(func() error { return d.logLoad("courses", func() error { _, err := d.courses.Load(ctx); return err }) })
	g.Go(func() error {
		return d.logLoad("attendance", func() error { _, err := d.attendance.Load(ctx); return err })
	})
	g.Go(func() error {
		return d.logLoad("instructors", func() error { _, err := d.instructors.Load(ctx); return err })
	})
	g.Go(func() error { return d.LoadSessions(ctx) })
	return g.Wait()
}

func (d *Dashboard) logLoad(name string, load func() error) error {
	if err := load(); err != nil {
		d.logger.Warn("training list load failed", zap.String("list", name), zap.Error(err))
		return fmt.Errorf("training: load %s: %w", name, err)
	}
	return nil
}

// LoadSessions fetches the upcoming sessions. The list is not cached; a
// failure empties it and surfaces an error toast.
func (d *Dashboard) LoadSessions(ctx context.Context) error {
	if d.gateway == nil {
		return ErrNoGateway
	}
	d.setLoading(true)
	defer d.setLoading(false)

	sessions, err := d.gateway.GetUpcomingSessions(ctx)
	if err != nil {
		message := gateway.Message(err)
		d.logger.Error("training sessions load failed", zap.Error(err))
		d.store.Update(func(s State) State {
			s.Sessions = []model.SessionDetail{}
			s.SessionsErr = message
			return s
		})
		d.toast(ctx, titleError, msgLoadSessionsFailed+message, notify.VariantError)
		return fmt.Errorf("training: load sessions: %w", err)
	}
	if sessions == nil {
		sessions = []model.SessionDetail{}
	}
	d.store.Update(func(s State) State {
		s.Sessions = sessions
		s.SessionsErr = ""
		return s
	})
	return nil
}

// Courses returns the cached courses.
func (d *Dashboard) Courses() []model.Course {
	if d.courses == nil {
		return nil
	}
	return d.courses.Data()
}

// Attendance returns the cached attendance records.
func (d *Dashboard) Attendance() []model.Attendance {
	if d.attendance == nil {
		return nil
	}
	return d.attendance.Data()
}

// Instructors returns the cached instructors.
func (d *Dashboard) Instructors() []model.Instructor {
	if d.instructors == nil {
		return nil
	}
	return d.instructors.Data()
}

// Sessions returns the normalised upcoming sessions.
func (d *Dashboard) Sessions() []model.SessionDetail {
	return NormalizeSessions(d.store.Get().Sessions)
}

// SelectTab activates tab and closes any open course detail.
func (d *Dashboard) SelectTab(tab Tab) {
	d.store.Update(func(s State) State {
		s.ActiveTab = tab
		s.ShowCourseDetail = false
		s.SelectedCourse = nil
		return s
	})
}

// SelectCourse opens the detail view of the course with id. It reports
// whether the course is known.
func (d *Dashboard) SelectCourse(id string) bool {
	var selected *model.Course
	for _, course := range d.Courses() {
		if course.ID == id {
			c := course
			selected = &c
			break
		}
	}
	d.store.Update(func(s State) State {
		s.SelectedCourse = selected
		s.ShowCourseDetail = true
		return s
	})
	return selected != nil
}

// BackToCourses closes the course detail view.
func (d *Dashboard) BackToCourses() {
	d.store.Update(func(s State) State {
		s.ShowCourseDetail = false
		s.SelectedCourse = nil
		return s
	})
}

// CourseSessions returns the sessions of the selected course.
func (d *Dashboard) CourseSessions() []model.SessionDetail {
	s := d.store.Get()
	if s.SelectedCourse == nil {
		return []model.SessionDetail{}
	}
	out := []model.SessionDetail{}
	for _, detail := range NormalizeSessions(s.Sessions) {
		if detail.Session.CourseID == s.SelectedCourse.ID {
			out = append(out, detail)
		}
	}
	return out
}

// OpenCourseModal shows an empty new course form.
func (d *Dashboard) OpenCourseModal() {
	d.store.Update(func(s State) State {
		s.ShowCourseModal = true
		s.NewCourse = CourseForm{}
		return s
	})
}

// OpenSessionModal shows an empty new session form, pre-selecting the course
// whose detail view is open.
func (d *Dashboard) OpenSessionModal() {
	d.store.Update(func(s State) State {
		s.ShowSessionModal = true
		s.NewSession = SessionForm{}
		if s.SelectedCourse != nil {
			s.NewSession.CourseID = s.SelectedCourse.ID
		}
		return s
	})
}

// CloseModal hides both modals.
func (d *Dashboard) CloseModal() {
	d.store.Update(func(s State) State {
		s.ShowCourseModal = false
		s.ShowSessionModal = false
		return s
	})
}

// SetCourseField records a new course input.
func (d *Dashboard) SetCourseField(field, value string) {
	d.store.Update(func(s State) State {
		s.NewCourse = s.NewCourse.Set(field, value)
		return s
	})
}

// SetSessionField records a new session input.
func (d *Dashboard) SetSessionField(field, value string) {
	d.store.Update(func(s State) State {
		s.NewSession = s.NewSession.Set(field, value)
		return s
	})
}

// SaveCourse validates and creates the course in the modal. Invalid forms
// return an error wrapping ErrInvalidForm without a remote call.
func (d *Dashboard) SaveCourse(ctx context.Context) (gateway.Status, error) {
	req, err := d.store.Get().NewCourse.Request()
	if err != nil {
		return "", err
	}
	return d.mutate(ctx, msgCourseCreated, d.CloseModal, func() (gateway.Status, error) {
		return d.gateway.CreateCourse(ctx, req)
	})
}

// SaveSession validates and creates the session in the modal.
func (d *Dashboard) SaveSession(ctx context.Context) (gateway.Status, error) {
	req, err := d.store.Get().NewSession.Request()
	if err != nil {
		return "", err
	}
	return d.mutate(ctx, msgSessionCreated, d.CloseModal, func() (gateway.Status, error) {
		return d.gateway.CreateSession(ctx, req)
	})
}

// Register registers the current user for a session.
func (d *Dashboard) Register(ctx context.Context, sessionID string) (gateway.Status, error) {
	return d.mutate(ctx, msgRegistered, nil, func() (gateway.Status, error) {
		return d.gateway.RegisterForSession(ctx, sessionID)
	})
}

// Cancel cancels the current user's registration for a session.
func (d *Dashboard) Cancel(ctx context.Context, sessionID string) (gateway.Status, error) {
	return d.mutate(ctx, msgCancelled, nil, func() (gateway.Status, error) {
		return d.gateway.CancelRegistration(ctx, sessionID)
	})
}

// mutate runs call and maps its status onto a toast. Only SUCCESS runs
// onSuccess and schedules the refresh.
func (d *Dashboard) mutate(ctx context.Context, successMsg string, onSuccess func(), call func() (gateway.Status, error)) (gateway.Status, error) {
	if d.gateway == nil {
		return "", ErrNoGateway
	}
	d.setLoading(true)
	defer d.setLoading(false)

	status, err := call()
	if err != nil {
		d.logger.Error("training mutation failed", zap.Error(err))
		d.toast(ctx, titleError, gateway.Message(err), notify.VariantError)
		return "", fmt.Errorf("training: %w", err)
	}

	switch status {
	case gateway.StatusSuccess:
		d.toast(ctx, titleSuccess, successMsg, notify.VariantSuccess)
		if onSuccess != nil {
			onSuccess()
		}
		d.RefreshData(ctx)
	case gateway.StatusAlreadyRegistered:
		d.toast(ctx, titleInfo, msgAlreadyRegistered, notify.VariantInfo)
	case gateway.StatusSessionFull:
		d.toast(ctx, titleWarning, msgSessionFull, notify.VariantWarning)
	default:
		d.logger.Warn("training mutation returned unknown status", zap.String("status", string(status)))
		d.toast(ctx, titleWarning, fmt.Sprintf(msgUnknownStatus, status), notify.VariantWarning)
	}
	return status, nil
}

// RefreshData re-fetches courses and attendance through their caches and the
// sessions imperatively. Each refresh is scheduled independently on the
// runner; callers cannot rely on them completing together.
func (d *Dashboard) RefreshData(ctx context.Context) {
	if d.gateway == nil {
		return
	}
	bg := context.WithoutCancel(ctx)
	d.run(func() {
		if _, err := d.courses.Refresh(bg); err != nil {
			d.logger.Warn("training courses refresh failed", zap.Error(err))
		}
	})
	d.run(func() {
		_ = d.LoadSessions(bg)
	})
	d.run(func() {
		if _, err := d.attendance.Refresh(bg); err != nil {
			d.logger.Warn("training attendance refresh failed", zap.Error(err))
		}
	})
}

func (d *Dashboard) setLoading(loading bool) {
	d.store.Update(func(s State) State {
		s.Loading = loading
		return s
	})
}

func (d *Dashboard) toast(ctx context.Context, title, message string, variant notify.Variant) {
	d.notifier.Notify(ctx, notify.Toast{Title: title, Message: message, Variant: variant})
}

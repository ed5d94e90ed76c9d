package testsupport

import (
	"context"
	"sync"

	"github.com/goliatone/go-reportform/pkg/gateway"
	"github.com/goliatone/go-reportform/pkg/model"
)

// Call records one gateway invocation.
type Call struct {
	Method string
	Args   []any
}

type recorder struct {
	mu    sync.Mutex
	calls []Call
}

func (r *recorder) record(method string, args ...any) {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Method: method, Args: args})
	r.mu.Unlock()
}

// Calls returns a copy of the recorded invocations.
func (r *recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Count returns how many times method was called.
func (r *recorder) Count(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, call := range r.calls {
		if call.Method == method {
			n++
		}
	}
	return n
}

// ReportGateway is an in-memory gateway.ReportGateway. Zero values answer
// with empty successes; set the fields to script responses.
type ReportGateway struct {
	recorder

	SubmitResult model.SubmissionResult
	SubmitErr    error

	Categories    []model.Option
	CategoriesErr error
	Severities    []model.Option
	SeveritiesErr error

	LookupResult model.LookupResult
	LookupErr    error
}

var _ gateway.ReportGateway = (*ReportGateway)(nil)

// SubmitReport records the payload.
func (g *ReportGateway) SubmitReport(_ context.Context, payloadJSON string) (model.SubmissionResult, error) {
	g.record("SubmitReport", payloadJSON)
	return g.SubmitResult, g.SubmitErr
}

// GetCategoryOptions returns Categories.
func (g *ReportGateway) GetCategoryOptions(context.Context) ([]model.Option, error) {
	g.record("GetCategoryOptions")
	return g.Categories, g.CategoriesErr
}

// GetSeverityOptions returns Severities.
func (g *ReportGateway) GetSeverityOptions(context.Context) ([]model.Option, error) {
	g.record("GetSeverityOptions")
	return g.Severities, g.SeveritiesErr
}

// GetSubmissionsByAnonymousID returns LookupResult.
func (g *ReportGateway) GetSubmissionsByAnonymousID(_ context.Context, id string) (model.LookupResult, error) {
	g.record("GetSubmissionsByAnonymousID", id)
	return g.LookupResult, g.LookupErr
}

// GetSubmissionsByContact returns LookupResult.
func (g *ReportGateway) GetSubmissionsByContact(_ context.Context, fullName, email string) (model.LookupResult, error) {
	g.record("GetSubmissionsByContact", fullName, email)
	return g.LookupResult, g.LookupErr
}

// LastPayload returns the most recent submitted JSON.
func (g *ReportGateway) LastPayload() (string, bool) {
	calls := g.Calls()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Method == "SubmitReport" {
			payload, _ := calls[i].Args[0].(string)
			return payload, true
		}
	}
	return "", false
}

// TrainingGateway is an in-memory gateway.TrainingGateway.
type TrainingGateway struct {
	recorder

	Courses        []model.Course
	CoursesErr     error
	Sessions       []model.SessionDetail
	SessionsErr    error
	Attendance     []model.Attendance
	AttendanceErr  error
	Instructors    []model.Instructor
	InstructorsErr error

	// Status answers every mutating call unless the per-call override is set.
	Status         gateway.Status
	CreateCourseSt gateway.Status
	RegisterSt     gateway.Status
	MutationErr    error
}

var _ gateway.TrainingGateway = (*TrainingGateway)(nil)

func (g *TrainingGateway) status(override gateway.Status) (gateway.Status, error) {
	if g.MutationErr != nil {
		return "", g.MutationErr
	}
	if override != "" {
		return override, nil
	}
	if g.Status == "" {
		return gateway.StatusSuccess, nil
	}
	return g.Status, nil
}

// GetCourses returns Courses.
func (g *TrainingGateway) GetCourses(context.Context) ([]model.Course, error) {
	g.record("GetCourses")
	return g.Courses, g.CoursesErr
}

// GetUpcomingSessions returns Sessions.
func (g *TrainingGateway) GetUpcomingSessions(context.Context) ([]model.SessionDetail, error) {
	g.record("GetUpcomingSessions")
	return g.Sessions, g.SessionsErr
}

// GetUserAttendance returns Attendance.
func (g *TrainingGateway) GetUserAttendance(context.Context) ([]model.Attendance, error) {
	g.record("GetUserAttendance")
	return g.Attendance, g.AttendanceErr
}

// GetInstructors returns Instructors.
func (g *TrainingGateway) GetInstructors(context.Context) ([]model.Instructor, error) {
	g.record("GetInstructors")
	return g.Instructors, g.InstructorsErr
}

// CreateCourse records the course.
func (g *TrainingGateway) CreateCourse(_ context.Context, course gateway.NewCourse) (gateway.Status, error) {
	g.record("CreateCourse", course)
	return g.status(g.CreateCourseSt)
}

// CreateSession records the session.
func (g *TrainingGateway) CreateSession(_ context.Context, session gateway.NewSession) (gateway.Status, error) {
	g.record("CreateSession", session)
	return g.status("")
}

// RegisterForSession records the session id.
func (g *TrainingGateway) RegisterForSession(_ context.Context, id string) (gateway.Status, error) {
	g.record("RegisterForSession", id)
	return g.status(g.RegisterSt)
}

// CancelRegistration records the session id.
func (g *TrainingGateway) CancelRegistration(_ context.Context, id string) (gateway.Status, error) {
	g.record("CancelRegistration", id)
	return g.status("")
}

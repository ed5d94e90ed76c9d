package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-reportform/pkg/model"
)

// Status is the coarse result code returned by mutating training calls.
type Status string

const (
	StatusSuccess           Status = "SUCCESS"
	StatusAlreadyRegistered Status = "ALREADY_REGISTERED"
	StatusSessionFull       Status = "SESSION_FULL"
)

// ReportGateway is the remote controller behind the report form.
type ReportGateway interface {
	SubmitReport(ctx context.Context, payloadJSON string) (model.SubmissionResult, error)
	GetCategoryOptions(ctx context.Context) ([]model.Option, error)
	GetSeverityOptions(ctx context.Context) ([]model.Option, error)
	GetSubmissionsByAnonymousID(ctx context.Context, anonymousID string) (model.LookupResult, error)
	GetSubmissionsByContact(ctx context.Context, fullName, email string) (model.LookupResult, error)
}

// NewCourse carries the createCourse parameters.
type NewCourse struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Hours       float64 `json:"hours"`
	Category    string  `json:"category"`
}

// NewSession carries the createSession parameters.
type NewSession struct {
	CourseID     string `json:"courseId"`
	SessionDate  string `json:"sessionDate"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	Location     string `json:"location"`
	MaxAttendees int    `json:"maxAttendees"`
	InstructorID string `json:"instructorId"`
	SessionLink  string `json:"sessionLink"`
}

// TrainingGateway is the remote controller behind the training dashboard.
type TrainingGateway interface {
	GetCourses(ctx context.Context) ([]model.Course, error)
	GetUpcomingSessions(ctx context.Context) ([]model.SessionDetail, error)
	GetUserAttendance(ctx context.Context) ([]model.Attendance, error)
	GetInstructors(ctx context.Context) ([]model.Instructor, error)
	CreateCourse(ctx context.Context, course NewCourse) (Status, error)
	CreateSession(ctx context.Context, session NewSession) (Status, error)
	RegisterForSession(ctx context.Context, sessionID string) (Status, error)
	CancelRegistration(ctx context.Context, sessionID string) (Status, error)
}

// RemoteError is a rejected remote call. Message is the server supplied text
// shown to users.
type RemoteError struct {
	Controller string
	Method     string
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway: %s.%s failed with status %d", e.Controller, e.Method, e.StatusCode)
	}
	return fmt.Sprintf("gateway: %s.%s: %s", e.Controller, e.Method, e.Message)
}

// Message extracts the user facing text of err: the server message for a
// RemoteError, otherwise err.Error(). It returns "" for nil.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Message
	}
	return err.Error()
}

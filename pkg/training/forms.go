package training

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-reportform/pkg/gateway"
)

// ErrInvalidForm is returned when a modal form fails validation. The
// underlying validator.ValidationErrors is wrapped alongside it.
var ErrInvalidForm = errors.New("training: form is invalid")

var validate = validator.New()

// CourseForm holds the raw inputs of the new course modal.
type CourseForm struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Hours       string `json:"hours" validate:"required,numeric"`
	Category    string `json:"category" validate:"required"`
}

// Set assigns an input by its json name. Unknown names are ignored.
func (f CourseForm) Set(field, value string) CourseForm {
	switch field {
	case "name":
		f.Name = value
	case "description":
		f.Description = value
	case "hours":
		f.Hours = value
	case "category":
		f.Category = value
	}
	return f
}

// Validate checks the form with its struct tags.
func (f CourseForm) Validate() error {
	return check(f)
}

// Request converts the form into gateway parameters.
func (f CourseForm) Request() (gateway.NewCourse, error) {
	if err := f.Validate(); err != nil {
		return gateway.NewCourse{}, err
	}
	hours, err := strconv.ParseFloat(strings.TrimSpace(f.Hours), 64)
	if err != nil {
		return gateway.NewCourse{}, fmt.Errorf("%w: hours: %v", ErrInvalidForm, err)
	}
	return gateway.NewCourse{
		Name:        f.Name,
		Description: f.Description,
		Hours:       hours,
		Category:    f.Category,
	}, nil
}

// SessionForm holds the raw inputs of the new session modal.
type SessionForm struct {
	CourseID     string `json:"courseId" validate:"required"`
	SessionDate  string `json:"sessionDate" validate:"required,datetime=2006-01-02"`
	StartTime    string `json:"startTime" validate:"required"`
	EndTime      string `json:"endTime" validate:"required"`
	Location     string `json:"location"`
	MaxAttendees string `json:"maxAttendees" validate:"required,number"`
	InstructorID string `json:"instructorId"`
	SessionLink  string `json:"sessionLink" validate:"omitempty,url"`
}

// Set assigns an input by its json name. Unknown names are ignored.
func (f SessionForm) Set(field, value string) SessionForm {
	switch field {
	case "courseId":
		f.CourseID = value
	case "sessionDate":
		f.SessionDate = value
	case "startTime":
		f.StartTime = value
	case "endTime":
		f.EndTime = value
	case "location":
		f.Location = value
	case "maxAttendees":
		f.MaxAttendees = value
	case "instructorId":
		f.InstructorID = value
	case "sessionLink":
		f.SessionLink = value
	}
	return f
}

// Validate checks the form with its struct tags.
func (f SessionForm) Validate() error {
	return check(f)
}

// Request converts the form into gateway parameters.
func (f SessionForm) Request() (gateway.NewSession, error) {
	if err := f.Validate(); err != nil {
		return gateway.NewSession{}, err
	}
	maxAttendees, err := strconv.Atoi(strings.TrimSpace(f.MaxAttendees))
	if err != nil {
		return gateway.NewSession{}, fmt.Errorf("%w: maxAttendees: %v", ErrInvalidForm, err)
	}
	return gateway.NewSession{
		CourseID:     f.CourseID,
		SessionDate:  f.SessionDate,
		StartTime:    f.StartTime,
		EndTime:      f.EndTime,
		Location:     f.Location,
		MaxAttendees: maxAttendees,
		InstructorID: f.InstructorID,
		SessionLink:  f.SessionLink,
	}, nil
}

func check(form any) error {
	if err := validate.Struct(form); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidForm, err)
	}
	return nil
}

// FieldErrors maps each failing field to the validation tag it failed.
// It returns nil when err carries no validation errors.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

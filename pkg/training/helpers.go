package training

import (
	"time"

	"github.com/goliatone/go-reportform/pkg/model"
)

// Course categories offered in the new course modal.
var categories = []string{
	"Ethics and Integrity",
	"Investigation Techniques",
	"Legal and Regulatory Compliance",
	"Data Analysis and Technology",
	"Communication and Reporting",
	"Leadership and Management",
	"Professional Development",
}

var categoryBadges = map[string]string{
	"Ethics and Integrity":            "badge-ethics",
	"Investigation Techniques":        "badge-investigation",
	"Legal and Regulatory Compliance": "badge-legal",
	"Data Analysis and Technology":    "badge-data",
	"Communication and Reporting":     "badge-communication",
	"Leadership and Management":       "badge-leadership",
	"Professional Development":        "badge-development",
}

var statusBadges = map[string]string{
	"Registered": "status-registered",
	"Attended":   "status-attended",
	"No Show":    "status-noshow",
	"Cancelled":  "status-cancelled",
}

// CategoryOptions returns the static course categories as picklist options.
func CategoryOptions() []model.Option {
	out := make([]model.Option, 0, len(categories))
	for _, category := range categories {
		out = append(out, model.Option{Label: category, Value: category})
	}
	return out
}

// CategoryBadgeClass returns the CSS classes for a course category badge.
func CategoryBadgeClass(category string) string {
	badge, ok := categoryBadges[category]
	if !ok {
		badge = "badge-default"
	}
	return "category-badge " + badge
}

// StatusBadgeClass returns the CSS classes for an attendance status badge.
func StatusBadgeClass(status string) string {
	badge, ok := statusBadges[status]
	if !ok {
		badge = "status-default"
	}
	return "status-badge " + badge
}

// TabClass returns the CSS classes of a tab button.
func TabClass(tab, active Tab) string {
	if tab == active {
		return "tab-button active"
	}
	return "tab-button "
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05.000Z0700"}

// FormatDate renders an ISO date as M/D/YYYY. Empty input yields "" and
// unparseable input is returned unchanged.
func FormatDate(raw string) string {
	if raw == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("1/2/2006")
		}
	}
	return raw
}

// InstructorOptions maps instructors onto picklist options.
func InstructorOptions(instructors []model.Instructor) []model.Option {
	out := make([]model.Option, 0, len(instructors))
	for _, instructor := range instructors {
		out = append(out, model.Option{Label: instructor.Name, Value: instructor.ID})
	}
	return out
}

// CourseOptions maps courses onto picklist options.
func CourseOptions(courses []model.Course) []model.Option {
	out := make([]model.Option, 0, len(courses))
	for _, course := range courses {
		out = append(out, model.Option{Label: course.Name, Value: course.ID})
	}
	return out
}

// NormalizeSessions copies the details so that every entry has a session
// with non-nil course and instructor references.
func NormalizeSessions(details []model.SessionDetail) []model.SessionDetail {
	out := make([]model.SessionDetail, 0, len(details))
	for _, detail := range details {
		session := model.Session{}
		if detail.Session != nil {
			session = *detail.Session
		}
		if session.Course == nil {
			session.Course = &model.RecordRef{}
		}
		if session.Instructor == nil {
			session.Instructor = &model.RecordRef{}
		}
		detail.Session = &session
		out = append(out, detail)
	}
	return out
}

package tui

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-reportform/pkg/model"
	"github.com/goliatone/go-reportform/pkg/notify"
	"github.com/goliatone/go-reportform/pkg/render"
	htmlrenderer "github.com/goliatone/go-reportform/pkg/renderers/html"
	"github.com/goliatone/go-reportform/pkg/report"
	"github.com/goliatone/go-reportform/pkg/training"
)

// TextName is the registry name of the terminal text renderer.
const TextName = "text"

// TextRenderer draws views as plain terminal text. Colour is only emitted
// when the configured terminal supports it.
type TextRenderer struct {
	term io.Writer
}

var _ render.DashboardRenderer = (*TextRenderer)(nil)

// TextOption configures a TextRenderer.
type TextOption func(*TextRenderer)

// WithTerminal sets the writer used to detect the colour profile. Without it
// output carries no escape sequences.
func WithTerminal(w io.Writer) TextOption {
	return func(r *TextRenderer) {
		r.term = w
	}
}

// NewText constructs the text renderer.
func NewText(opts ...TextOption) *TextRenderer {
	r := &TextRenderer{}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *TextRenderer) Name() string {
	return TextName
}

func (r *TextRenderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

type styles struct {
	Title   lipgloss.Style
	Section lipgloss.Style
	Label   lipgloss.Style
	Body    lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
}

func (r *TextRenderer) styles(options render.RenderOptions) styles {
	var lr *lipgloss.Renderer
	if r.term != nil {
		lr = lipgloss.NewRenderer(r.term)
	} else {
		lr = lipgloss.NewRenderer(io.Discard)
	}

	tokens := map[string]string{
		"header-bg":     "#1e3a8a",
		"section-title": "#1e40af",
	}
	if options.Theme != nil {
		for key, value := range options.Theme.Tokens {
			if value != "" {
				tokens[key] = value
			}
		}
	}

	return styles{
		Title:   lr.NewStyle().Bold(true).Foreground(lipgloss.Color(tokens["header-bg"])),
		Section: lr.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color(tokens["section-title"])),
		Label:   lr.NewStyle().Bold(true),
		Body:    lr.NewStyle(),
		Muted:   lr.NewStyle().Faint(true),
		Error:   lr.NewStyle().Foreground(lipgloss.Color("#e53935")),
		Success: lr.NewStyle().Foreground(lipgloss.Color("#8BC34A")),
		Warning: lr.NewStyle().Foreground(lipgloss.Color("#FFC107")),
		Info:    lr.NewStyle().Foreground(lipgloss.Color("#2196F3")),
	}
}

// Render writes the report view: the form with values in submit mode, the
// lookup panel and submissions in view mode.
func (r *TextRenderer) Render(_ context.Context, view model.FormView, options render.RenderOptions) ([]byte, error) {
	st := r.styles(options)
	var buf bytes.Buffer

	if view.Appearance.HeaderTitle != "" {
		line(&buf, st.Title.Render(view.Appearance.HeaderTitle))
	}
	if view.Appearance.HeaderSubtitle != "" {
		line(&buf, st.Muted.Render(view.Appearance.HeaderSubtitle))
	}
	writeToasts(&buf, st, options.Toasts)
	for _, msg := range options.FormErrors {
		line(&buf, st.Error.Render("! "+msg))
	}
	buf.WriteString("\n")

	switch {
	case view.Mode == string(report.ModeView):
		writeLookup(&buf, st, view.Lookup)
	case view.ShowSuccess:
		line(&buf, st.Success.Render("Report submitted successfully."))
		if view.Result != nil && view.Result.AnonymousID != "" {
			line(&buf, st.Label.Render("Anonymous ID: ")+view.Result.AnonymousID)
			line(&buf, st.Muted.Render("Keep this ID to check on your report."))
		}
	default:
		writeForm(&buf, st, view, options.Errors)
	}
	return buf.Bytes(), nil
}

func writeForm(buf *bytes.Buffer, st styles, view model.FormView, errs map[string][]string) {
	if view.Appearance.SecurityNotice != "" {
		line(buf, st.Info.Render("i "+view.Appearance.SecurityNotice))
	}
	if view.Error != "" {
		line(buf, st.Error.Render("! "+view.Error))
	}

	hasNoticeSection := false
	for _, section := range view.Sections {
		if section.IsNotices {
			hasNoticeSection = true
		}
	}
	if !hasNoticeSection {
		writeNotices(buf, st, view.Notices)
	}

	for _, section := range view.Sections {
		buf.WriteString("\n")
		line(buf, st.Section.Render(htmlrenderer.SanitizeText(section.Title)))
		if section.IsNotices {
			writeNotices(buf, st, view.Notices)
		}
		for _, field := range section.Fields {
			if !field.IsVisible {
				continue
			}
			label := htmlrenderer.SanitizeText(field.Label)
			if field.IsRequired {
				label += " *"
			}
			line(buf, "  "+st.Label.Render(label+":")+" "+displayValue(field))
			for _, msg := range errs[field.Name] {
				line(buf, "    "+st.Error.Render(msg))
			}
		}
	}

	buf.WriteString("\n")
	if view.SubmitDisabled {
		line(buf, st.Muted.Render("Complete the required fields to submit."))
	} else {
		line(buf, st.Success.Render("Ready to submit."))
	}
}

func writeNotices(buf *bytes.Buffer, st styles, notices []model.Notice) {
	for _, notice := range notices {
		line(buf, "  "+st.Label.Render(notice.Title))
		line(buf, "  "+htmlrenderer.SanitizeText(notice.Content))
	}
}

func writeLookup(buf *bytes.Buffer, st styles, lookup model.LookupView) {
	line(buf, st.Section.Render("View My Submissions"))
	if lookup.IsAnonymousLookup {
		line(buf, "  "+st.Label.Render("Anonymous ID:")+" "+lookup.AnonymousID)
	} else {
		line(buf, "  "+st.Label.Render("Full Name:")+" "+lookup.FullName)
		line(buf, "  "+st.Label.Render("Email:")+" "+lookup.Email)
	}
	buf.WriteString("\n")
	if len(lookup.Submissions) == 0 {
		line(buf, st.Muted.Render("No submissions to show."))
		return
	}

	headers := submissionColumns(lookup.Submissions)
	rows := make([][]string, 0, len(lookup.Submissions))
	for _, submission := range lookup.Submissions {
		row := make([]string, len(headers))
		for i, key := range headers {
			if value, ok := submission[key]; ok && value != nil {
				row[i] = fmt.Sprint(value)
			}
		}
		rows = append(rows, row)
	}
	buf.WriteString(table(st, headers, rows))
}

func submissionColumns(submissions []model.Submission) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, submission := range submissions {
		for key := range submission {
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

// RenderDashboard writes the active dashboard tab as tables.
func (r *TextRenderer) RenderDashboard(_ context.Context, view training.View, options render.RenderOptions) ([]byte, error) {
	st := r.styles(options)
	var buf bytes.Buffer

	tabs := make([]string, 0, len(view.Tabs))
	for _, tab := range view.Tabs {
		if tab.Active {
			tabs = append(tabs, st.Title.Render("["+tab.Label+"]"))
		} else {
			tabs = append(tabs, st.Muted.Render(" "+tab.Label+" "))
		}
	}
	line(&buf, strings.Join(tabs, " "))
	writeToasts(&buf, st, options.Toasts)
	buf.WriteString("\n")

	switch {
	case view.ShowCourseDetail && view.SelectedCourse != nil:
		course := view.SelectedCourse
		line(&buf, st.Section.Render(course.Name))
		line(&buf, st.Muted.Render(course.Category+" | "+hours(course.Hours)))
		if course.Description != "" {
			line(&buf, course.Description)
		}
		buf.WriteString("\n")
		buf.WriteString(sessionTable(st, view.CourseSessions))
	case view.ShowCourses:
		rows := make([][]string, 0, len(view.Courses))
		for _, course := range view.Courses {
			rows = append(rows, []string{course.ID, course.Name, course.Category, hours(course.Hours)})
		}
		if len(rows) == 0 {
			line(&buf, st.Muted.Render("No courses available."))
		} else {
			buf.WriteString(table(st, []string{"ID", "Course", "Category", "Duration"}, rows))
		}
	case view.ShowSessions:
		buf.WriteString(sessionTable(st, view.Sessions))
	case view.ShowMyTraining:
		rows := make([][]string, 0, len(view.Attendance))
		for _, a := range view.Attendance {
			course, date := "", ""
			if a.Session != nil {
				date = training.FormatDate(a.Session.Date)
				if a.Session.Course != nil {
					course = a.Session.Course.Name
				}
			}
			rows = append(rows, []string{a.SessionID, course, date, a.Status})
		}
		if len(rows) == 0 {
			line(&buf, st.Muted.Render("You have no training registrations."))
		} else {
			buf.WriteString(table(st, []string{"Session", "Course", "Date", "Status"}, rows))
		}
	}
	return buf.Bytes(), nil
}

func sessionTable(st styles, sessions []model.SessionDetail) string {
	if len(sessions) == 0 {
		return st.Muted.Render("No upcoming sessions.") + "\n"
	}
	rows := make([][]string, 0, len(sessions))
	for _, detail := range sessions {
		s := detail.Session
		if s == nil {
			continue
		}
		course, instructor := "", ""
		if s.Course != nil {
			course = s.Course.Name
		}
		if s.Instructor != nil {
			instructor = s.Instructor.Name
		}
		status := strconv.Itoa(detail.AvailableSpots) + " spots"
		switch {
		case detail.IsRegistered:
			status = "Registered"
		case detail.AvailableSpots <= 0:
			status = "Full"
		}
		rows = append(rows, []string{
			s.ID, course, training.FormatDate(s.Date), s.StartTime + "-" + s.EndTime, s.Location, instructor, status,
		})
	}
	return table(st, []string{"ID", "Course", "Date", "Time", "Location", "Instructor", "Status"}, rows)
}

// table pads every column to its widest cell.
func table(st styles, headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}
	for i := range widths {
		widths[i] += 2
	}

	var sb strings.Builder
	for i, h := range headers {
		sb.WriteString(st.Label.Copy().Padding(0, 1).Width(widths[i]).Render(h))
		if i < len(headers)-1 {
			sb.WriteString(st.Muted.Render("|"))
		}
	}
	sb.WriteString("\n")

	total := len(headers) - 1
	for _, w := range widths {
		total += w
	}
	sb.WriteString(st.Muted.Render(strings.Repeat("-", total)) + "\n")

	cell := st.Body.Copy().Padding(0, 1)
	for _, row := range rows {
		for i := range headers {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			sb.WriteString(cell.Width(widths[i]).Render(value))
			if i < len(headers)-1 {
				sb.WriteString(st.Muted.Render("|"))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func writeToasts(buf *bytes.Buffer, st styles, toasts []notify.Toast) {
	for _, toast := range toasts {
		style := st.Info
		switch toast.Variant {
		case notify.VariantSuccess:
			style = st.Success
		case notify.VariantWarning:
			style = st.Warning
		case notify.VariantError:
			style = st.Error
		}
		line(buf, style.Render(toast.Title+": "+toast.Message))
	}
}

func displayValue(field model.FieldView) string {
	if field.IsCheckbox {
		if isTrue(field.Value) {
			return "yes"
		}
		return "no"
	}
	raw := stringValue(field.Value)
	for _, option := range field.Options {
		if fmt.Sprint(option.Value) == raw {
			return option.Label
		}
	}
	if raw == "" {
		return "-"
	}
	return raw
}

func hours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64) + " hours"
}

func line(buf *bytes.Buffer, s string) {
	buf.WriteString(s)
	buf.WriteString("\n")
}

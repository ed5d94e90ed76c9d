package html

import (
	"fmt"

	"github.com/goliatone/go-reportform/pkg/model"
	"github.com/goliatone/go-reportform/pkg/render"
	"github.com/goliatone/go-reportform/pkg/training"
)

type reportPage struct {
	chrome
	View     model.FormView `json:"view"`
	Header   headerPage     `json:"header"`
	Sections []sectionPage  `json:"sections"`
	Notices  []noticePage   `json:"notices"`
	IsSubmit bool           `json:"isSubmitMode"`
	// Standalone is set when no section hosts the notices.
	Standalone bool `json:"standaloneNotices"`
	IsView     bool `json:"isViewMode"`
}

type headerPage struct {
	Title          string `json:"title"`
	Subtitle       string `json:"subtitle"`
	Icon           string `json:"icon"`
	SecurityNotice string `json:"securityNotice"`
	ContainerStyle string `json:"containerStyle"`
}

type sectionPage struct {
	model.SectionView
	Fields []fieldPage `json:"fields"`
}

type fieldPage struct {
	model.FieldView
	Label   string       `json:"label"`
	DOMID   string       `json:"domId"`
	Errors  []string     `json:"errors"`
	Choices []choicePage `json:"choices"`
}

// choicePage pre-computes selection so templates never compare mixed
// string and bool values.
type choicePage struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

type noticePage struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (r *Renderer) reportPage(view model.FormView, options render.RenderOptions) reportPage {
	page := reportPage{
		chrome: r.chrome(options),
		View:   view,
		Header: headerPage{
			Title:          SanitizeText(view.Appearance.HeaderTitle),
			Subtitle:       SanitizeText(view.Appearance.HeaderSubtitle),
			Icon:           view.Appearance.HeaderIcon,
			SecurityNotice: SanitizeNotice(view.Appearance.SecurityNotice),
			ContainerStyle: view.Appearance.ContainerStyle(),
		},
		IsSubmit: view.Mode != "view",
		IsView:   view.Mode == "view",
	}

	for _, section := range view.Sections {
		sp := sectionPage{SectionView: section}
		sp.Title = SanitizeText(section.Title)
		for _, field := range section.Fields {
			sp.Fields = append(sp.Fields, fieldPageFor(field, options.Errors[field.Name]))
		}
		page.Sections = append(page.Sections, sp)
	}
	page.Standalone = len(view.Notices) > 0
	for _, section := range view.Sections {
		if section.IsNotices {
			page.Standalone = false
		}
	}
	for _, notice := range view.Notices {
		page.Notices = append(page.Notices, noticePage{
			Title:   SanitizeText(notice.Title),
			Content: SanitizeNotice(notice.Content),
		})
	}
	return page
}

func fieldPageFor(field model.FieldView, errs []string) fieldPage {
	fp := fieldPage{
		FieldView: field,
		Label:     SanitizeText(field.Field.Label),
		DOMID:     "field-" + field.Field.ID,
		Errors:    errs,
	}
	current := fmt.Sprint(field.Value)
	for _, option := range field.Options {
		value := fmt.Sprint(option.Value)
		fp.Choices = append(fp.Choices, choicePage{
			Label:    SanitizeText(option.Label),
			Value:    value,
			Selected: value == current,
		})
	}
	return fp
}

type dashboardPage struct {
	chrome
	View     training.View   `json:"view"`
	Courses  []courseCard    `json:"courses"`
	Selected *courseCard     `json:"selected,omitempty"`
	Detail   []sessionRow    `json:"detail"`
	Sessions []sessionRow    `json:"sessions"`
	Training []attendanceRow `json:"training"`
}

type courseCard struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	BadgeClass  string  `json:"badgeClass"`
	Hours       float64 `json:"hours"`
}

type sessionRow struct {
	ID              string `json:"id"`
	Course          string `json:"course"`
	Instructor      string `json:"instructor"`
	Date            string `json:"date"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	Location        string `json:"location"`
	Link            string `json:"link"`
	AvailableSpots  int    `json:"availableSpots"`
	RegisteredCount int    `json:"registeredCount"`
	IsRegistered    bool   `json:"isRegistered"`
	IsFull          bool   `json:"isFull"`
}

type attendanceRow struct {
	ID          string `json:"id"`
	SessionID   string `json:"sessionId"`
	Course      string `json:"course"`
	Date        string `json:"date"`
	Status      string `json:"status"`
	StatusClass string `json:"statusClass"`
	Cancellable bool   `json:"cancellable"`
}

func coursePage(course model.Course) courseCard {
	return courseCard{
		ID:          course.ID,
		Name:        course.Name,
		Description: course.Description,
		Category:    course.Category,
		BadgeClass:  training.CategoryBadgeClass(course.Category),
		Hours:       course.Hours,
	}
}

func coursePages(courses []model.Course) []courseCard {
	out := make([]courseCard, 0, len(courses))
	for _, course := range courses {
		out = append(out, coursePage(course))
	}
	return out
}

func sessionPages(details []model.SessionDetail) []sessionRow {
	details = training.NormalizeSessions(details)
	out := make([]sessionRow, 0, len(details))
	for _, detail := range details {
		s := detail.Session
		out = append(out, sessionRow{
			ID:              s.ID,
			Course:          s.Course.Name,
			Instructor:      s.Instructor.Name,
			Date:            training.FormatDate(s.Date),
			StartTime:       s.StartTime,
			EndTime:         s.EndTime,
			Location:        s.Location,
			Link:            s.Link,
			AvailableSpots:  detail.AvailableSpots,
			RegisteredCount: detail.RegisteredCount,
			IsRegistered:    detail.IsRegistered,
			IsFull:          !detail.IsRegistered && detail.AvailableSpots <= 0,
		})
	}
	return out
}

func attendancePages(records []model.Attendance) []attendanceRow {
	out := make([]attendanceRow, 0, len(records))
	for _, record := range records {
		row := attendanceRow{
			ID:          record.ID,
			SessionID:   record.SessionID,
			Status:      record.Status,
			StatusClass: training.StatusBadgeClass(record.Status),
			Cancellable: record.Status == "Registered",
		}
		if s := record.Session; s != nil {
			if row.SessionID == "" {
				row.SessionID = s.ID
			}
			row.Date = training.FormatDate(s.Date)
			if s.Course != nil {
				row.Course = s.Course.Name
			}
		}
		out = append(out, row)
	}
	return out
}

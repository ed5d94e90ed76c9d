package training

import "github.com/goliatone/go-reportform/pkg/model"

// TabView is a rendered tab button.
type TabView struct {
	ID     Tab    `json:"id"`
	Label  string `json:"label"`
	Class  string `json:"class"`
	Active bool   `json:"active"`
}

var tabLabels = map[Tab]string{
	TabCourses:    "Courses",
	TabSessions:   "Upcoming Sessions",
	TabMyTraining: "My Training",
}

// View is everything a renderer needs to draw the dashboard.
type View struct {
	Tabs             []TabView             `json:"tabs"`
	ActiveTab        Tab                   `json:"activeTab"`
	ShowCourses      bool                  `json:"showCourses"`
	ShowCoursesList  bool                  `json:"showCoursesList"`
	ShowCourseDetail bool                  `json:"showCourseDetail"`
	ShowSessions     bool                  `json:"showSessions"`
	ShowMyTraining   bool                  `json:"showMyTraining"`
	SelectedCourse   *model.Course         `json:"selectedCourse,omitempty"`
	Courses          []model.Course        `json:"courses"`
	CourseSessions   []model.SessionDetail `json:"courseSessions"`
	Sessions         []model.SessionDetail `json:"sessions"`
	Attendance       []model.Attendance    `json:"attendance"`
	Instructors      []model.Option        `json:"instructors"`
	CourseOptions    []model.Option        `json:"courseOptions"`
	CategoryOptions  []model.Option        `json:"categoryOptions"`
	ShowCourseModal  bool                  `json:"showCourseModal"`
	ShowSessionModal bool                  `json:"showSessionModal"`
	NewCourse        CourseForm            `json:"newCourse"`
	NewSession       SessionForm           `json:"newSession"`
	Loading          bool                  `json:"loading"`
}

// View derives the dashboard view from the current snapshot and caches.
func (d *Dashboard) View() View {
	s := d.store.Get()
	courses := d.Courses()
	if courses == nil {
		courses = []model.Course{}
	}
	attendance := d.Attendance()
	if attendance == nil {
		attendance = []model.Attendance{}
	}

	tabs := make([]TabView, 0, 3)
	for _, tab := range Tabs() {
		tabs = append(tabs, TabView{
			ID:     tab,
			Label:  tabLabels[tab],
			Class:  TabClass(tab, s.ActiveTab),
			Active: tab == s.ActiveTab,
		})
	}

	return View{
		Tabs:             tabs,
		ActiveTab:        s.ActiveTab,
		ShowCourses:      s.ActiveTab == TabCourses,
		ShowCoursesList:  s.ActiveTab == TabCourses && !s.ShowCourseDetail,
		ShowCourseDetail: s.ShowCourseDetail,
		ShowSessions:     s.ActiveTab == TabSessions,
		ShowMyTraining:   s.ActiveTab == TabMyTraining,
		SelectedCourse:   s.SelectedCourse,
		Courses:          courses,
		CourseSessions:   d.CourseSessions(),
		Sessions:         NormalizeSessions(s.Sessions),
		Attendance:       attendance,
		Instructors:      InstructorOptions(d.Instructors()),
		CourseOptions:    CourseOptions(courses),
		CategoryOptions:  CategoryOptions(),
		ShowCourseModal:  s.ShowCourseModal,
		ShowSessionModal: s.ShowSessionModal,
		NewCourse:        s.NewCourse,
		NewSession:       s.NewSession,
		Loading:          s.Loading,
	}
}

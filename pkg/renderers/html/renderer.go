package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-reportform/pkg/model"
	"github.com/goliatone/go-reportform/pkg/notify"
	"github.com/goliatone/go-reportform/pkg/render"
	rendertemplate "github.com/goliatone/go-reportform/pkg/render/template"
	"github.com/goliatone/go-reportform/pkg/render/template/gotemplate"
	"github.com/goliatone/go-reportform/pkg/training"
)

// Name is the registry name of the HTML renderer.
const Name = "html"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	theme            *theme.RendererConfig
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithTheme sets the theme used when RenderOptions carry none.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(c *config) {
		if cfg != nil {
			c.theme = cfg
		}
	}
}

// Renderer draws the report form and the training dashboard as standalone
// HTML pages.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	theme     *theme.RendererConfig
}

var _ render.DashboardRenderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.theme == nil {
		cfg.theme = ThemeConfig(DefaultPalette(), nil, "")
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(gotemplate.WithFS(cfg.templateFS))
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{templates: renderer, theme: cfg.theme}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render draws the report form page.
func (r *Renderer) Render(_ context.Context, view model.FormView, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}

	page := r.reportPage(view, options)
	result, err := r.templates.RenderTemplate(reportTemplate, page)
	if err != nil {
		return nil, fmt.Errorf("html renderer: render report: %w", err)
	}
	return []byte(result), nil
}

// RenderDashboard draws the training dashboard page.
func (r *Renderer) RenderDashboard(_ context.Context, view training.View, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}

	page := dashboardPage{
		chrome:   r.chrome(options),
		View:     view,
		Courses:  coursePages(view.Courses),
		Sessions: sessionPages(view.Sessions),
		Detail:   sessionPages(view.CourseSessions),
		Training: attendancePages(view.Attendance),
	}
	if view.SelectedCourse != nil {
		selected := coursePage(*view.SelectedCourse)
		page.Selected = &selected
	}

	result, err := r.templates.RenderTemplate(dashboardTemplate, page)
	if err != nil {
		return nil, fmt.Errorf("html renderer: render dashboard: %w", err)
	}
	return []byte(result), nil
}

// chrome is the page furniture shared by both templates.
type chrome struct {
	Action     string               `json:"action"`
	Hidden     []render.HiddenField `json:"hidden"`
	Toasts     []notify.Toast       `json:"toasts"`
	FormErrors []string             `json:"formErrors"`
	Theme      themeContext         `json:"theme"`
}

func (r *Renderer) chrome(options render.RenderOptions) chrome {
	cfg := options.Theme
	if cfg == nil {
		cfg = r.theme
	}
	return chrome{
		Action:     options.Action,
		Hidden:     render.SortedHiddenFields(options.Hidden),
		Toasts:     options.Toasts,
		FormErrors: options.FormErrors,
		Theme:      buildThemeContext(cfg),
	}
}

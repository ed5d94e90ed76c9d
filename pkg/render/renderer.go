package render

import (
	"context"

	"github.com/goliatone/go-reportform/pkg/model"
	"github.com/goliatone/go-reportform/pkg/training"
)

// Renderer converts a report FormView into a byte representation (HTML, JSON).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view model.FormView, options RenderOptions) ([]byte, error)
}

// DashboardRenderer is implemented by renderers that can also draw the
// training dashboard.
type DashboardRenderer interface {
	Renderer
	RenderDashboard(ctx context.Context, view training.View, options RenderOptions) ([]byte, error)
}

package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-reportform/pkg/notify"
)

// RenderOptions describe per-request data that renderers can use to customise
// their output without touching controller state.
type RenderOptions struct {
	// Action is the base path form posts are joined to ("submit", "reset",
	// "lookup"). It should end with a slash; empty posts relative to the page.
	Action string
	// Hidden inputs emitted with the form, typically the portal session id.
	Hidden map[string]string
	// Toasts raised while handling the request, drawn above the form.
	Toasts []notify.Toast
	// Errors surfaces server-side validation feedback keyed by field name.
	// Use MapErrorPayload to normalise pointer style paths first.
	Errors map[string][]string
	// FormErrors are messages that could not be attributed to a field.
	FormErrors []string
	// Theme carries resolved theme tokens. Nil falls back to the renderer's
	// built-in palette.
	Theme *theme.RendererConfig
}

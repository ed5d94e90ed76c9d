// Package jsonapi renders controller views as JSON documents for API
// clients and the CLI.
package jsonapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-reportform/pkg/model"
	"github.com/goliatone/go-reportform/pkg/notify"
	"github.com/goliatone/go-reportform/pkg/render"
	"github.com/goliatone/go-reportform/pkg/training"
)

// Name is the registry name of the JSON renderer.
const Name = "json"

// Renderer encodes views with encoding/json.
type Renderer struct {
	indent string
}

var _ render.DashboardRenderer = (*Renderer)(nil)

type Option func(*Renderer)

// WithIndent pretty prints output using indent per level.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// New constructs the JSON renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "application/json"
}

// Document is the envelope written by both render calls.
type Document[T any] struct {
	View       T                   `json:"view"`
	Toasts     []notify.Toast      `json:"toasts,omitempty"`
	Errors     map[string][]string `json:"errors,omitempty"`
	FormErrors []string            `json:"formErrors,omitempty"`
	Theme      map[string]string   `json:"theme,omitempty"`
}

// Render encodes the report view.
func (r *Renderer) Render(_ context.Context, view model.FormView, options render.RenderOptions) ([]byte, error) {
	return r.encode(envelope(view, options))
}

// RenderDashboard encodes the training dashboard view.
func (r *Renderer) RenderDashboard(_ context.Context, view training.View, options render.RenderOptions) ([]byte, error) {
	return r.encode(envelope(view, options))
}

func envelope[T any](view T, options render.RenderOptions) Document[T] {
	doc := Document[T]{
		View:       view,
		Toasts:     options.Toasts,
		Errors:     options.Errors,
		FormErrors: options.FormErrors,
	}
	if options.Theme != nil {
		doc.Theme = options.Theme.CSSVars
	}
	return doc
}

func (r *Renderer) encode(doc any) ([]byte, error) {
	var (
		out []byte
		err error
	)
	if r.indent != "" {
		out, err = json.MarshalIndent(doc, "", r.indent)
	} else {
		out, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("json renderer: encode: %w", err)
	}
	return out, nil
}

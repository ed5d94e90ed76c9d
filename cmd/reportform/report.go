package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-reportform/pkg/grammar"
	"github.com/goliatone/go-reportform/pkg/notify"
	"github.com/goliatone/go-reportform/pkg/render"
	"github.com/goliatone/go-reportform/pkg/renderers/html"
	"github.com/goliatone/go-reportform/pkg/renderers/jsonapi"
	"github.com/goliatone/go-reportform/pkg/renderers/tui"
	"github.com/goliatone/go-reportform/pkg/report"
	"github.com/goliatone/go-reportform/pkg/schema"
)

// writeEncoded prints value as indented JSON or as YAML.
func writeEncoded(w io.Writer, format string, value any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (json or yaml)", format)
	}
}

// yamlValue round-trips through JSON so types with custom JSON encoders
// render as YAML with the same keys.
func yamlValue(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// registry returns the renderers usable from the terminal.
func (a *app) registry() (*render.Registry, error) {
	htmlRenderer, err := html.New()
	if err != nil {
		return nil, err
	}
	reg := render.NewRegistry()
	reg.MustRegister(htmlRenderer)
	reg.MustRegister(jsonapi.New(jsonapi.WithIndent("  ")))
	reg.MustRegister(tui.NewText(tui.WithTerminal(a.out)))
	return reg, nil
}

// controller builds a report controller that prints toasts to the terminal.
// Remote option lists are loaded when a gateway is configured; a failure
// leaves the affected list empty.
func (a *app) controller(ctx context.Context) *report.Controller {
	opts := append(a.cfg.ReportOptions(),
		report.WithLogger(a.logger),
		report.WithNotifier(notify.Multi(notify.WriterNotifier{Out: a.out}, notify.LogNotifier{Logger: a.logger})),
	)
	c := report.New(a.cfg.Report, a.reports, opts...)
	if a.reports != nil {
		if err := c.LoadOptions(ctx); err != nil {
			a.logger.Warn("option lists unavailable", zap.Error(err))
		}
	}
	return c
}

func (a *app) filler() *tui.Filler {
	opts := []tui.Option{tui.WithOutput(a.out), tui.WithLogger(a.logger)}
	if a.driver != nil {
		opts = append(opts, tui.WithPromptDriver(a.driver))
	}
	return tui.New(opts...)
}

func outputTarget(a *app, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return a.out, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func parseCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse the section grammar and print the form model",
		RunE: func(*cobra.Command, []string) error {
			form, err := grammar.Parse(a.cfg.Report)
			if err != nil {
				return err
			}
			return writeEncoded(a.out, output, form)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "output format: json or yaml")
	return cmd
}

func renderCmd(a *app) *cobra.Command {
	var (
		format  string
		mode    string
		variant string
		file    string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the report form as html, json or text",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			renderer, err := reg.Get(format)
			if err != nil {
				return fmt.Errorf("%w (available: %s)", err, strings.Join(reg.List(), ", "))
			}

			c := a.controller(cmd.Context())
			c.SetMode(report.ParseMode(mode))
			themeVariant := a.cfg.Theme.Variant
			if variant != "" {
				themeVariant = variant
			}
			out, err := renderer.Render(cmd.Context(), c.View(), render.RenderOptions{
				Theme: html.ThemeConfig(a.cfg.Theme.Palette, a.cfg.Theme.Variants, themeVariant),
			})
			if err != nil {
				return err
			}

			w, done, err := outputTarget(a, file)
			if err != nil {
				return err
			}
			if _, err := w.Write(out); err != nil {
				_ = done()
				return err
			}
			return done()
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", tui.TextName, "renderer: html, json or text")
	cmd.Flags().StringVar(&mode, "mode", string(report.ModeSubmit), "panel to render: submit or view")
	cmd.Flags().StringVar(&variant, "variant", "", "theme variant")
	cmd.Flags().StringVar(&file, "out", "", "write to file instead of stdout")
	return cmd
}

func schemaCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the OpenAPI document of the portal API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := a.controller(cmd.Context())
			doc := schema.Document(schema.DocumentInfo{
				Title:    "Report Form Portal",
				Version:  version,
				BasePath: "/api",
			}, schema.FormSchema(c.Form(), c.State().Options))
			if output == "yaml" {
				value, err := yamlValue(doc)
				if err != nil {
					return err
				}
				return writeEncoded(a.out, output, value)
			}
			return writeEncoded(a.out, output, doc)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output format: json or yaml")
	return cmd
}

func fillCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Fill in and submit a report interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if !dryRun {
				if _, err := a.requireReports(); err != nil {
					return err
				}
			}
			c := a.controller(ctx)
			if err := a.filler().Fill(ctx, c); err != nil {
				return err
			}

			if dryRun {
				payload, err := c.Payload()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(a.out, "%s\n", payload)
				return err
			}

			result, err := c.Submit(ctx)
			if err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("submission rejected: %s", c.View().Error)
			}
			if result.AnonymousID != "" {
				fmt.Fprintf(a.out, "Anonymous ID: %s\n", result.AnonymousID)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the payload instead of submitting it")
	return cmd
}

func lookupCmd(a *app) *cobra.Command {
	var (
		anonymousID string
		fullName    string
		email       string
		format      string
	)

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Look up previously submitted reports",
		Long: `Look up reports by anonymous ID or by the name and email given when
submitting. Without flags the lookup keys are prompted for.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := a.requireReports(); err != nil {
				return err
			}
			reg, err := a.registry()
			if err != nil {
				return err
			}
			renderer, err := reg.Get(format)
			if err != nil {
				return err
			}

			c := a.controller(ctx)
			switch {
			case anonymousID != "":
				c.SetMode(report.ModeView)
				c.SetLookupType(report.LookupAnonymous)
				c.SetLookupField(report.LookupFieldAnonymousID, anonymousID)
				_, err = c.Lookup(ctx)
			case fullName != "" || email != "":
				c.SetMode(report.ModeView)
				c.SetLookupType(report.LookupContact)
				c.SetLookupField(report.LookupFieldFullName, fullName)
				c.SetLookupField(report.LookupFieldEmail, email)
				_, err = c.Lookup(ctx)
			default:
				_, err = a.filler().Lookup(ctx, c)
			}
			if err != nil {
				return err
			}

			out, err := renderer.Render(ctx, c.View(), render.RenderOptions{})
			if err != nil {
				return err
			}
			_, err = a.out.Write(out)
			return err
		},
	}
	cmd.Flags().StringVar(&anonymousID, "anonymous-id", "", "anonymous ID returned on submission")
	cmd.Flags().StringVar(&fullName, "name", "", "full name given on submission")
	cmd.Flags().StringVar(&email, "email", "", "email given on submission")
	cmd.Flags().StringVarP(&format, "format", "f", tui.TextName, "renderer: json or text")
	return cmd
}

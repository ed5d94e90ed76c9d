package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-reportform/internal/config"
	"github.com/goliatone/go-reportform/pkg/grammar"
	"github.com/goliatone/go-reportform/pkg/model"
	"github.com/goliatone/go-reportform/pkg/visibility/expr"
)

type violation struct {
	file     string
	location string
	message  string
}

var knownSources = map[string]struct{}{
	grammar.SourceCategories: {},
	grammar.SourceSeverities: {},
}

func lintCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lint [config files...]",
		Short: "Check the form grammar and visibility rules of config files",
		Long: `Lint parses the section grammar of each config file and checks the
visibility rules against the declared fields. Without arguments the active
configuration is linted.`,
		RunE: func(_ *cobra.Command, args []string) error {
			type target struct {
				name string
				cfg  *config.Config
			}
			var targets []target
			if len(args) == 0 {
				name := a.configPath
				if name == "" {
					name = "(active config)"
				}
				targets = append(targets, target{name: name, cfg: a.cfg})
			}
			for _, path := range args {
				cfg, err := config.Load(path)
				if err != nil {
					return fmt.Errorf("lint %s: %w", path, err)
				}
				targets = append(targets, target{name: path, cfg: cfg})
			}

			var violations []violation
			for _, t := range targets {
				violations = append(violations, lintConfig(t.name, t.cfg)...)
			}
			if len(violations) == 0 {
				return nil
			}

			sort.Slice(violations, func(i, j int) bool {
				if violations[i].file == violations[j].file {
					if violations[i].location == violations[j].location {
						return violations[i].message < violations[j].message
					}
					return violations[i].location < violations[j].location
				}
				return violations[i].file < violations[j].file
			})
			for _, v := range violations {
				fmt.Fprintf(a.errOut, "%s: %s -> %s\n", v.file, v.location, v.message)
			}
			return fmt.Errorf("%d lint violation(s)", len(violations))
		},
	}
}

func lintConfig(file string, cfg *config.Config) []violation {
	form, err := grammar.Parse(cfg.Report)
	if err != nil {
		return []violation{{file: file, location: "report", message: err.Error()}}
	}

	var result []violation
	add := func(path []string, format string, args ...any) {
		result = append(result, violation{
			file:     file,
			location: formatLocation(path),
			message:  fmt.Sprintf(format, args...),
		})
	}

	if len(form.Fields()) == 0 {
		add([]string{"report"}, "no fields declared")
	}

	seen := make(map[string]string)
	for _, section := range form.Sections {
		for _, field := range section.Fields {
			path := []string{"report", section.Title, field.Name}
			if field.Name == "" {
				add(path, "field %q has no name", field.ID)
				continue
			}
			if first, dup := seen[field.Name]; dup {
				add(path, "field name already declared in section %q", first)
			} else {
				seen[field.Name] = section.Title
			}
			lintChoices(field, func(format string, args ...any) { add(path, format, args...) })
		}
	}

	for field, rule := range cfg.Rules() {
		path := []string{"visibility", field}
		if _, ok := seen[field]; !ok {
			add(path, "rule targets an undeclared field")
		}
		if _, err := expr.Compile(rule); err != nil {
			add(path, "%v", err)
		}
	}
	return result
}

func lintChoices(field model.Field, add func(format string, args ...any)) {
	if !field.Type.HasOptions() {
		return
	}
	if field.OptionsSource != "" {
		if _, ok := knownSources[field.OptionsSource]; !ok {
			names := make([]string, 0, len(knownSources))
			for name := range knownSources {
				names = append(names, name)
			}
			sort.Strings(names)
			add("unknown options source %q (supported: %s)", field.OptionsSource, strings.Join(names, ", "))
		}
		return
	}
	if len(field.Options) == 0 {
		add("%s field has neither options nor an options source", field.Type)
	}
}

func formatLocation(path []string) string {
	return strings.Join(path, " > ")
}

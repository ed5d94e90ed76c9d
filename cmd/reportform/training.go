package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-reportform/pkg/gateway"
	"github.com/goliatone/go-reportform/pkg/notify"
	"github.com/goliatone/go-reportform/pkg/render"
	"github.com/goliatone/go-reportform/pkg/renderers/tui"
	"github.com/goliatone/go-reportform/pkg/training"
)

func (a *app) dashboard() (*training.Dashboard, error) {
	gw, err := a.requireTraining()
	if err != nil {
		return nil, err
	}
	return training.New(gw,
		training.WithLogger(a.logger),
		training.WithNotifier(notify.Multi(notify.WriterNotifier{Out: a.out}, notify.LogNotifier{Logger: a.logger})),
		training.WithRunner(func(fn func()) { fn() }),
	), nil
}

func trainingCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "training",
		Short: "Browse courses and sessions and manage registrations",
	}
	cmd.AddCommand(
		trainingShowCmd(a),
		trainingMutationCmd(a, "register <session-id>", "Register for a session", (*training.Dashboard).Register),
		trainingMutationCmd(a, "cancel <session-id>", "Cancel a session registration", (*training.Dashboard).Cancel),
		createCourseCmd(a),
		createSessionCmd(a),
	)
	return cmd
}

func trainingShowCmd(a *app) *cobra.Command {
	var (
		tab    string
		course string
		format string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a dashboard tab",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			d, err := a.dashboard()
			if err != nil {
				return err
			}
			reg, err := a.registry()
			if err != nil {
				return err
			}
			renderer, err := reg.Dashboard(format)
			if err != nil {
				return err
			}

			if err := d.Init(ctx); err != nil {
				a.logger.Warn("dashboard loaded partially", zap.Error(err))
			}
			d.SelectTab(training.ParseTab(tab))
			if course != "" && !d.SelectCourse(course) {
				return fmt.Errorf("unknown course %q", course)
			}
			out, err := renderer.RenderDashboard(ctx, d.View(), render.RenderOptions{})
			if err != nil {
				return err
			}
			_, err = a.out.Write(out)
			return err
		},
	}
	cmd.Flags().StringVar(&tab, "tab", string(training.TabCourses), "tab: courses, sessions or mytraining")
	cmd.Flags().StringVar(&course, "course", "", "show the detail of a course")
	cmd.Flags().StringVarP(&format, "format", "f", tui.TextName, "renderer: json or text")
	return cmd
}

type sessionAction func(*training.Dashboard, context.Context, string) (gateway.Status, error)

func trainingMutationCmd(a *app, use, short string, action sessionAction) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.dashboard()
			if err != nil {
				return err
			}
			_, err = action(d, cmd.Context(), args[0])
			return err
		},
	}
}

func createCourseCmd(a *app) *cobra.Command {
	var form training.CourseForm

	cmd := &cobra.Command{
		Use:   "create-course",
		Short: "Create a course",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := a.dashboard()
			if err != nil {
				return err
			}
			d.OpenCourseModal()
			d.SetCourseField("name", form.Name)
			d.SetCourseField("description", form.Description)
			d.SetCourseField("hours", form.Hours)
			d.SetCourseField("category", form.Category)
			_, err = d.SaveCourse(cmd.Context())
			return formError(err)
		},
	}
	cmd.Flags().StringVar(&form.Name, "name", "", "course name")
	cmd.Flags().StringVar(&form.Description, "description", "", "course description")
	cmd.Flags().StringVar(&form.Hours, "hours", "", "duration in hours")
	cmd.Flags().StringVar(&form.Category, "category", "", "course category")
	return cmd
}

func createSessionCmd(a *app) *cobra.Command {
	var form training.SessionForm

	cmd := &cobra.Command{
		Use:   "create-session",
		Short: "Schedule a session of a course",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := a.dashboard()
			if err != nil {
				return err
			}
			d.OpenSessionModal()
			for name, value := range map[string]string{
				"courseId":     form.CourseID,
				"sessionDate":  form.SessionDate,
				"startTime":    form.StartTime,
				"endTime":      form.EndTime,
				"location":     form.Location,
				"maxAttendees": form.MaxAttendees,
				"instructorId": form.InstructorID,
				"sessionLink":  form.SessionLink,
			} {
				d.SetSessionField(name, value)
			}
			_, err = d.SaveSession(cmd.Context())
			return formError(err)
		},
	}
	cmd.Flags().StringVar(&form.CourseID, "course", "", "course id")
	cmd.Flags().StringVar(&form.SessionDate, "date", "", "session date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&form.StartTime, "start", "", "start time (HH:MM)")
	cmd.Flags().StringVar(&form.EndTime, "end", "", "end time (HH:MM)")
	cmd.Flags().StringVar(&form.Location, "location", "", "location")
	cmd.Flags().StringVar(&form.MaxAttendees, "max-attendees", "", "maximum attendees")
	cmd.Flags().StringVar(&form.InstructorID, "instructor", "", "instructor id")
	cmd.Flags().StringVar(&form.SessionLink, "link", "", "online session link")
	return cmd
}

// formError lists the failing inputs of an invalid modal form.
func formError(err error) error {
	if !errors.Is(err, training.ErrInvalidForm) {
		return err
	}
	fields := training.FieldErrors(err)
	if len(fields) == 0 {
		return err
	}
	parts := make([]string, 0, len(fields))
	for field, tag := range fields {
		parts = append(parts, field+" ("+tag+")")
	}
	sort.Strings(parts)
	return fmt.Errorf("invalid form: %s", strings.Join(parts, ", "))
}

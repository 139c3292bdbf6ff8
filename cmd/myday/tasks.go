package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bijaykarki4742/summer-class-web/client/tui"
	domain "github.com/bijaykarki4742/summer-class-web/domain/task"
)

func tasksCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List and change tasks",
	}
	cmd.AddCommand(tasksListCmd(flags))
	cmd.AddCommand(tasksAddCmd(flags))
	cmd.AddCommand(tasksEditCmd(flags))
	cmd.AddCommand(tasksRmCmd(flags))
	return cmd
}

// withTasks loads the task list after the sign-in check.
func withTasks(flags *rootFlags, fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return run(flags, func(ctx context.Context, a *app, args []string) error {
		if err := a.requireSignIn(); err != nil {
			return err
		}
		if err := a.tasks.Load(ctx); err != nil {
			return fmt.Errorf("failed to fetch tasks: %w", err)
		}
		return fn(ctx, a, args)
	})
}

func tasksListCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks, newest first",
		RunE: withTasks(flags, func(_ context.Context, a *app, _ []string) error {
			printTasks(a.out, a.tasks.Tasks())
			return nil
		}),
	}
}

func printTasks(w io.Writer, tasks []domain.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDUE\tTAG\tDESCRIPTION")
	for _, t := range tasks {
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.String()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", t.ID, t.Name, due, t.Tag, t.Description)
	}
	tw.Flush()
}

type draftFlags struct {
	name        string
	description string
	due         string
	tag         string
}

func (f *draftFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "Task description")
	cmd.Flags().StringVar(&f.due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&f.tag, "tag", "t", "", "Tag ("+strings.Join(domain.DefaultTags, ", ")+")")
}

// apply overwrites the fields of d whose flags were given.
func (f *draftFlags) apply(cmd *cobra.Command, d domain.Draft) (domain.Draft, error) {
	if cmd.Flags().Changed("name") {
		d.Name = f.name
	}
	if cmd.Flags().Changed("description") {
		d.Description = f.description
	}
	if cmd.Flags().Changed("tag") {
		d.Tag = f.tag
	}
	if cmd.Flags().Changed("due") {
		due, err := domain.ParseDate(f.due)
		if err != nil {
			return d, err
		}
		d.DueDate = due
	}
	return d, nil
}

func tasksAddCmd(flags *rootFlags) *cobra.Command {
	df := &draftFlags{}
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = run(flags, func(ctx context.Context, a *app, args []string) error {
		if err := a.requireSignIn(); err != nil {
			return err
		}
		draft, err := df.apply(cmd, domain.Draft{Name: args[0]})
		if err != nil {
			return err
		}
		created, err := a.tasks.Add(ctx, draft)
		if err != nil {
			return fmt.Errorf("error creating task: %w", err)
		}
		fmt.Fprintf(a.out, "Added task %d: %s\n", created.ID, created.Name)
		return nil
	})
	df.register(cmd)
	return cmd
}

func tasksEditCmd(flags *rootFlags) *cobra.Command {
	df := &draftFlags{}
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a task; fields without a flag keep their value",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = withTasks(flags, func(ctx context.Context, a *app, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		current, err := a.tasks.OpenEdit(id)
		if err != nil {
			return fmt.Errorf("task %d: %w", id, err)
		}
		draft, err := df.apply(cmd, current)
		if err != nil {
			return err
		}
		if err := a.tasks.Submit(ctx, draft); err != nil {
			return fmt.Errorf("error updating task: %w", err)
		}
		updated, _ := a.tasks.Find(id)
		fmt.Fprintf(a.out, "Updated task %d: %s\n", updated.ID, updated.Name)
		return nil
	})
	cmd.Flags().StringVarP(&df.name, "name", "n", "", "Task name")
	df.register(cmd)
	return cmd
}

func tasksRmCmd(flags *rootFlags) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: withTasks(flags, func(ctx context.Context, a *app, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.tasks.RequestDelete(id); err != nil {
				return fmt.Errorf("task %d: %w", id, err)
			}
			if !yes {
				t, _ := a.tasks.Find(id)
				answer, err := a.prompt(fmt.Sprintf("Delete task %q? [y/N]", t.Name), "")
				if err != nil {
					return err
				}
				if !strings.EqualFold(strings.TrimSpace(answer), "y") {
					a.tasks.CancelDelete()
					fmt.Fprintln(a.out, "Cancelled.")
					return nil
				}
			}
			if err := a.tasks.ConfirmDelete(ctx); err != nil {
				return fmt.Errorf("error deleting task: %w", err)
			}
			fmt.Fprintf(a.out, "Deleted task %d\n", id)
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}

func uiCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the full-screen interface",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.session.Close()
			return tui.Run(cmd.Context(), tui.Deps{
				Session: a.session,
				Tasks:   a.tasks,
				Notes:   a.notes,
			})
		},
	}
}

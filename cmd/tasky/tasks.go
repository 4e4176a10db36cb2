package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tasky/internal/model"
	"tasky/internal/render"
	"tasky/internal/service"
	"tasky/internal/taskcache"
)

func parseFilter(v string) (model.StatusFilter, error) {
	filter, ok := model.ParseStatusFilter(strings.ToUpper(v))
	if !ok {
		return "", fmt.Errorf("unknown status %q: use ALL, PENDING, IN_PROGRESS or COMPLETED", v)
	}
	return filter, nil
}

func newListCmd(a *app) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFilter(status)
			if err != nil {
				return err
			}
			loc, err := a.location()
			if err != nil {
				return err
			}
			store, err := a.newStore(a)
			if err != nil {
				return err
			}
			tasks, err := store.Tasks(cmd.Context())
			if err != nil {
				return fmt.Errorf("load tasks: %w", err)
			}
			fmt.Fprintln(a.out, render.TaskList(model.FilterTasks(tasks, filter), loc))
			return nil
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "ALL", "Only show tasks with this status")
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	var status, date string

	cmd := &cobra.Command{
		Use:   "add NAME...",
		Short: "Add a task",
		Example: `  tasky add Dentist --date 2024-03-12
  tasky add "File taxes" --status IN_PROGRESS`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := taskcache.NewTask{Name: strings.Join(args, " ")}
			if status != "" {
				in.Status = model.TaskStatus(strings.ToUpper(status))
				if !in.Status.Valid() {
					return fmt.Errorf("unknown status %q", status)
				}
			}
			eventDate, err := service.ParseEventDate(date)
			if err != nil {
				return err
			}
			in.EventDate = eventDate

			store, err := a.newStore(a)
			if err != nil {
				return err
			}
			task, err := store.Create(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("add task: %w", err)
			}
			fmt.Fprintf(a.out, "added #%d %s\n", task.ID, task.Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "", "Initial status (default PENDING)")
	cmd.Flags().StringVarP(&date, "date", "d", "", "Event date, YYYY-MM-DD or RFC3339")
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(strings.TrimPrefix(args[0], "#"), 10, 64)
			if err != nil || id == 0 {
				return fmt.Errorf("invalid task id %q", args[0])
			}
			store, err := a.newStore(a)
			if err != nil {
				return err
			}
			if err := store.Delete(cmd.Context(), uint(id)); err != nil {
				if taskcache.IsNotFound(err) {
					return fmt.Errorf("task #%d not found", id)
				}
				return fmt.Errorf("delete task: %w", err)
			}
			fmt.Fprintf(a.out, "deleted #%d\n", id)
			return nil
		},
	}
}

func newRefreshCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Reload the task cache from the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.newStore(a)
			if err != nil {
				return err
			}
			tasks, err := store.Refresh(cmd.Context())
			if err != nil {
				return fmt.Errorf("refresh: %w", err)
			}
			fmt.Fprintf(a.out, "%d tasks\n", len(tasks))
			return nil
		},
	}
}

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-cache",
		Short: "Forget the cached task list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.newStore(a)
			if err != nil {
				return err
			}
			return store.Invalidate()
		},
	}
}

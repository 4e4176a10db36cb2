package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tasky/internal/calendar"
	"tasky/internal/model"
	"tasky/internal/render"
)

func newCalendarCmd(a *app) *cobra.Command {
	var month, weekStart, status string

	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal"},
		Short:   "Show a month with your tasks on their days",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := a.location()
			if err != nil {
				return err
			}
			ref, err := calendar.ParseMonth(month, a.now(), loc)
			if err != nil {
				return err
			}
			ws, err := calendar.ParseWeekday(weekStart)
			if err != nil {
				return err
			}
			filter, err := parseFilter(status)
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

			cells := calendar.Layout(ref, ws, model.FilterTasks(tasks, filter))
			fmt.Fprintln(a.out, render.Month(ref, ws, cells))
			return nil
		},
	}
	cmd.Flags().StringVarP(&month, "month", "m", "", "Month to show as YYYY-MM (default: current)")
	cmd.Flags().StringVarP(&weekStart, "week-start", "w", "sunday", "First day of the week")
	cmd.Flags().StringVarP(&status, "status", "s", "ALL", "Only show tasks with this status")
	return cmd
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/shift-rules/pkg/core/model"
)

// WeeklyStatsCmd creates the weeklyStats command
func WeeklyStatsCmd(app *AppContext) *cobra.Command {
	var employeeID string

	cmd := &cobra.Command{
		Use:   "weeklyStats <date>",
		Short: "Show hours and shift counts for the ISO week containing the date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var stats []model.WeeklyStatistics
			if employeeID != "" {
				week, err := app.Scheduler.EmployeeWeek(employeeID, args[0])
				if err != nil {
					return err
				}
				stats = []model.WeeklyStatistics{week}
			} else {
				var err error
				stats, err = app.Scheduler.WeeklyStatistics(args[0])
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if len(stats) == 0 {
				fmt.Fprintln(out, "No schedules in this week.")
				return nil
			}

			weeklyMax := app.Scheduler.Catalog().WeeklyMaxHours
			fmt.Fprintf(out, "\nWeek starting %s:\n\n", stats[0].WeekStart)
			fmt.Fprintf(out, "  %-20s %8s %7s\n", "Employee", "Hours", "Shifts")
			for _, s := range stats {
				color := colorReset
				if s.TotalHours > weeklyMax {
					color = colorYellow
				}
				fmt.Fprintf(out, "  %-20s %s%8.1f%s %7d\n", s.EmployeeID, color, s.TotalHours, colorReset, s.TotalShifts)
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&employeeID, "employee", "", "Only show this employee")
	return cmd
}

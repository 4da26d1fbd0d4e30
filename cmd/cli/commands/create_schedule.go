package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// CreateScheduleCmd creates the createSchedule command
func CreateScheduleCmd(app *AppContext) *cobra.Command {
	var flags scheduleFlags

	cmd := &cobra.Command{
		Use:   "createSchedule <employee_id> <date> <start> <end>",
		Short: "Validate and save a schedule; refused if any rule reports an error",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := flags.input(args)
			app.Logger.Debug("createSchedule command",
				zap.String("employee_id", input.EmployeeID),
				zap.String("date", input.Date))

			opts, err := app.validationOptions()
			if err != nil {
				return err
			}

			result, err := app.Scheduler.CreateSchedule(app.Ctx, input, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printResult(out, result.ValidationResult)
			if !result.Success {
				fmt.Fprintln(out)
				return result.Err
			}

			record := result.Record
			fmt.Fprintf(out, "\n%s✓ Schedule created%s\n\n", colorGreen, colorReset)
			fmt.Fprintf(out, "ID:       %s\n", record.ID)
			fmt.Fprintf(out, "Employee: %s\n", record.EmployeeID)
			if record.StoreID != "" {
				fmt.Fprintf(out, "Store:    %s\n", record.StoreID)
			}
			fmt.Fprintf(out, "Date:     %s\n", record.Date)
			fmt.Fprintf(out, "Shift:    %s-%s (%s, %.1fh)\n", record.ShiftStart, record.ShiftEnd, record.ShiftType, record.Hours)
			return nil
		},
	}

	flags.register(cmd, true)
	return cmd
}

package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ValidateCmd creates the validate command
func ValidateCmd(app *AppContext) *cobra.Command {
	var flags scheduleFlags

	cmd := &cobra.Command{
		Use:   "validate <employee_id> <date> <start> <end>",
		Short: "Check a candidate schedule against every rule without saving it",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := flags.input(args)
			app.Logger.Debug("validate command",
				zap.String("employee_id", input.EmployeeID),
				zap.String("date", input.Date))

			opts, err := app.validationOptions()
			if err != nil {
				return err
			}

			result, err := app.Scheduler.Validate(app.Ctx, input, opts)
			if err != nil {
				return err
			}

			printResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	flags.register(cmd, false)
	return cmd
}

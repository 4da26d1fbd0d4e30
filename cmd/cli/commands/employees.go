package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-rules/pkg/core/services"
)

// ListEmployeesCmd creates the listEmployees command
func ListEmployeesCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listEmployees",
		Short: "List the active employees of the configured roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			employees, err := app.Directory.ListEmployees(app.Ctx)
			if err != nil {
				return fmt.Errorf("failed to list employees: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\nFound %d employees:\n\n", len(employees))
			for _, e := range employees {
				skill := ""
				if e.Skill != "" {
					skill = fmt.Sprintf(" [%s]", e.Skill)
				}
				fmt.Fprintf(out, "- %s (%s) - %s - preference %+.1f%s\n", e.Name, e.ID, e.StoreID, e.Preference, skill)
			}
			return nil
		},
	}
}

// ImportEmployeesCmd creates the importEmployees command
func ImportEmployeesCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "importEmployees",
		Short: "Copy the employee roster from Google Sheets into the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Database == nil {
				return errors.New("importEmployees needs a postgres or sqlite database")
			}

			client, err := app.SheetsClient()
			if err != nil {
				return err
			}

			result, err := services.ImportEmployees(app.Ctx, app.Database, client, app.Logger)
			if err != nil {
				return err
			}

			app.Logger.Info("Employees imported",
				zap.Int("total", result.Total),
				zap.Int("added", result.Added),
				zap.Int("updated", result.Updated))

			fmt.Fprintf(cmd.OutOrStdout(), "\n%s✓ Imported %d employees%s (%d added, %d updated)\n\n",
				colorGreen, result.Total, colorReset, result.Added, result.Updated)
			return nil
		},
	}
}

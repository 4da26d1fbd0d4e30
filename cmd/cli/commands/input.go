package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/shift-rules/pkg/core/model"
	"github.com/jakechorley/shift-rules/pkg/core/services"
)

// scheduleFlags are the optional fields of a schedule input
type scheduleFlags struct {
	storeID   string
	createdBy string
	notes     string
	dedupKey  string
}

func (f *scheduleFlags) register(cmd *cobra.Command, withRecordFields bool) {
	cmd.Flags().StringVar(&f.storeID, "store", "", "Store id (defaults to the employee's store)")
	if withRecordFields {
		cmd.Flags().StringVar(&f.createdBy, "created-by", "", "Who is creating the schedule")
		cmd.Flags().StringVar(&f.notes, "notes", "", "Free-text notes")
		cmd.Flags().StringVar(&f.dedupKey, "dedup-key", "", "Client key making retries idempotent")
	}
}

// input builds a schedule input from <employee_id> <date> <start> <end>
func (f *scheduleFlags) input(args []string) model.ScheduleInput {
	return model.ScheduleInput{
		EmployeeID: args[0],
		StoreID:    f.storeID,
		Date:       args[1],
		ShiftStart: args[2],
		ShiftEnd:   args[3],
		CreatedBy:  f.createdBy,
		Notes:      f.notes,
		DedupKey:   f.dedupKey,
	}
}

// validationOptions compares candidates against the whole active roster
func (app *AppContext) validationOptions() (services.ValidationOptions, error) {
	roster, err := app.Directory.ListEmployees(app.Ctx)
	if err != nil {
		return services.ValidationOptions{}, fmt.Errorf("failed to list employees: %w", err)
	}
	return services.ValidationOptions{Roster: roster}, nil
}

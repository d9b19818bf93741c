package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/manpower/pkg/core/services"
)

// AcceptScheduleCmd creates the acceptSchedule command
func AcceptScheduleCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "acceptSchedule <schedule_id> <employee_id>",
		Short: "Record an employee accepting their schedule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			employeeID, err := parseID("employee_id", args[1])
			if err != nil {
				return err
			}

			schedule, err := services.AcceptSchedule(app.Ctx, app.Database, app.Logger, args[0], employeeID)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Schedule %s accepted\n\n", schedule.ID)
			return nil
		},
	}
}

// RejectScheduleCmd creates the rejectSchedule command
func RejectScheduleCmd(app *AppContext) *cobra.Command {
	var reason, date string

	cmd := &cobra.Command{
		Use:   "rejectSchedule <schedule_id> <employee_id> --reason <reason>",
		Short: "Record an employee rejecting their schedule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			employeeID, err := parseID("employee_id", args[1])
			if err != nil {
				return err
			}

			referenceDate, err := app.referenceDate(date)
			if err != nil {
				return err
			}

			schedule, err := services.RejectSchedule(app.Ctx, app.Database, app.Logger, args[0], employeeID, reason, referenceDate)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Schedule %s rejected for employee %d\n\n", schedule.ID, schedule.EmployeeID)
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Why the schedule was rejected (required)")
	cmd.Flags().StringVar(&date, "date", "", "Schedules from this date on keep the employee assigned (default today)")

	return cmd
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/manpower/pkg/core/model"
	"github.com/jakechorley/manpower/pkg/core/services"
)

// FulfillCmd creates the fulfill command
func FulfillCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "fulfill <request_id> <employee_id>...",
		Short: "Schedule the chosen employees against a request",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			requestID, err := parseID("request_id", args[0])
			if err != nil {
				return err
			}
			employeeIDs, err := parseIDs("employee_id", args[1:])
			if err != nil {
				return err
			}

			result, err := services.Fulfill(app.Ctx, app.Database, app.Notifier, app.Logger, requestID, employeeIDs)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Request %d fulfilled\n\n", result.Request.ID)
			for _, s := range result.Schedules {
				fmt.Printf("  Schedule %s: employee %d on %s\n", s.ID, s.EmployeeID, s.Date.Format(model.DateLayout))
			}
			fmt.Println()

			for _, f := range result.NotificationFailures {
				fmt.Printf("⚠ Could not notify employee %d: %v\n", f.EmployeeID, f.Err)
			}

			return nil
		},
	}
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/manpower/pkg/core/services"
)

// SyncStatusesCmd creates the syncStatuses command
func SyncStatusesCmd(app *AppContext) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "syncStatuses",
		Short: "Reconcile employee statuses with schedules and approved permits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			referenceDate, err := app.referenceDate(date)
			if err != nil {
				return err
			}

			changes, err := services.SyncStatuses(app.Ctx, app.Database, app.Logger, referenceDate)
			if err != nil {
				return err
			}

			if len(changes) == 0 {
				fmt.Printf("\n✓ All employee statuses are up to date\n\n")
				return nil
			}

			fmt.Printf("\n✓ Updated %d employee(s)\n\n", len(changes))
			for _, c := range changes {
				leave := ""
				if c.OnLeave {
					leave = " (on leave)"
				}
				fmt.Printf("  Employee %d: %s -> %s%s\n", c.EmployeeID, c.From, c.To, leave)
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date to reconcile against (default today)")

	return cmd
}

// InvalidateMetricsCmd creates the invalidateMetrics command
func InvalidateMetricsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "invalidateMetrics <employee_id>...",
		Short: "Drop cached ranking metrics after they change upstream",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.MetricsCache == nil {
				fmt.Printf("\nMetrics caching is not configured, nothing to invalidate\n\n")
				return nil
			}

			employeeIDs, err := parseIDs("employee_id", args)
			if err != nil {
				return err
			}

			if err := app.MetricsCache.Invalidate(app.Ctx, employeeIDs...); err != nil {
				return err
			}

			fmt.Printf("\n✓ Invalidated cached metrics for %d employee(s)\n\n", len(employeeIDs))
			return nil
		},
	}
}

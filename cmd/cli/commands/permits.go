package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/manpower/pkg/core/model"
	"github.com/jakechorley/manpower/pkg/core/services"
)

// FilePermitCmd creates the filePermit command
func FilePermitCmd(app *AppContext) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "filePermit <employee_id> <leave|sick|special> <start_date> <end_date>",
		Short: "File an absence permit for an employee",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			employeeID, err := parseID("employee_id", args[0])
			if err != nil {
				return err
			}
			start, err := parseDate("start_date", args[2])
			if err != nil {
				return err
			}
			end, err := parseDate("end_date", args[3])
			if err != nil {
				return err
			}

			permit, err := services.FilePermit(app.Ctx, app.Database, app.Logger, services.NewPermit{
				EmployeeID: employeeID,
				Type:       model.PermitType(args[1]),
				StartDate:  start,
				EndDate:    end,
				Reason:     reason,
			})
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Permit %s filed (%s, %s to %s)\n\n", permit.ID, permit.Type,
				permit.StartDate.Format(model.DateLayout), permit.EndDate.Format(model.DateLayout))
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Reason for the absence (required)")

	return cmd
}

// ShowPermitCmd creates the showPermit command
func ShowPermitCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "showPermit <permit_id>",
		Short: "Show a permit and its status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			permit, err := services.GetPermit(app.Ctx, app.Database, app.Logger, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\nPermit %s\n", permit.ID)
			fmt.Printf("  Employee: %d\n", permit.EmployeeID)
			fmt.Printf("  Type:     %s\n", permit.Type)
			fmt.Printf("  Dates:    %s to %s\n", permit.StartDate.Format(model.DateLayout), permit.EndDate.Format(model.DateLayout))
			fmt.Printf("  Status:   %s\n", permit.Status)
			fmt.Printf("  Reason:   %s\n\n", permit.Reason)
			return nil
		},
	}
}

// ApprovePermitCmd creates the approvePermit command
func ApprovePermitCmd(app *AppContext) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "approvePermit <permit_id>",
		Short: "Approve a pending permit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			referenceDate, err := app.referenceDate(date)
			if err != nil {
				return err
			}

			decision, err := services.ApprovePermit(app.Ctx, app.Database, app.Logger, args[0], referenceDate)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Permit %s approved\n\n", decision.Permit.ID)
			if len(decision.ConflictingSchedules) > 0 {
				fmt.Printf("⚠ The employee still holds schedules inside the permit:\n")
				for _, s := range decision.ConflictingSchedules {
					fmt.Printf("  Schedule %s on %s (%s)\n", s.ID, s.Date.Format(model.DateLayout), s.Status)
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date used to decide whether the permit is in effect (default today)")

	return cmd
}

// RejectPermitCmd creates the rejectPermit command
func RejectPermitCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rejectPermit <permit_id>",
		Short: "Reject a pending permit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			permit, err := services.RejectPermit(app.Ctx, app.Database, app.Logger, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Permit %s rejected\n\n", permit.ID)
			return nil
		},
	}
}

// CancelPermitCmd creates the cancelPermit command
func CancelPermitCmd(app *AppContext) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "cancelPermit <permit_id>",
		Short: "Cancel a pending or approved permit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			referenceDate, err := app.referenceDate(date)
			if err != nil {
				return err
			}

			permit, err := services.CancelPermit(app.Ctx, app.Database, app.Logger, args[0], referenceDate)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Permit %s cancelled\n\n", permit.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date used to decide whether the employee returns from leave (default today)")

	return cmd
}

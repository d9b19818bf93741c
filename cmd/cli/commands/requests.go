package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/manpower/pkg/core/model"
	"github.com/jakechorley/manpower/pkg/core/services"
)

// CreateRequestCmd creates the createRequest command
func CreateRequestCmd(app *AppContext) *cobra.Command {
	var (
		subSectionID int64
		shiftID      int64
		amount       int
		maleCount    int
		femaleCount  int
	)

	cmd := &cobra.Command{
		Use:   "createRequest <date>",
		Short: "Raise a manpower request for a sub-section and shift",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate("date", args[0])
			if err != nil {
				return err
			}

			req, err := services.CreateRequest(app.Ctx, app.Database, app.Logger, services.NewRequest{
				SubSectionID:    subSectionID,
				ShiftID:         shiftID,
				Date:            date,
				RequestedAmount: amount,
				MaleCount:       maleCount,
				FemaleCount:     femaleCount,
			})
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Request %d created for %s\n\n", req.ID, req.Date.Format(model.DateLayout))
			return nil
		},
	}

	cmd.Flags().Int64Var(&subSectionID, "sub-section", 0, "Sub-section ID (required)")
	cmd.Flags().Int64Var(&shiftID, "shift", 0, "Shift ID (required)")
	cmd.Flags().IntVar(&amount, "amount", 0, "Number of employees wanted (required)")
	cmd.Flags().IntVar(&maleCount, "male", 0, "Minimum number of male employees")
	cmd.Flags().IntVar(&femaleCount, "female", 0, "Minimum number of female employees")

	return cmd
}

// RejectRequestCmd creates the rejectRequest command
func RejectRequestCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rejectRequest <request_id>",
		Short: "Reject a pending manpower request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requestID, err := parseID("request_id", args[0])
			if err != nil {
				return err
			}

			req, err := services.RejectRequest(app.Ctx, app.Database, app.Logger, requestID)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Request %d rejected\n\n", req.ID)
			return nil
		},
	}
}

// GenerateRecurringRequestsCmd creates the generateRecurringRequests command
func GenerateRecurringRequestsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "generateRecurringRequests <from> <to>",
		Short: "Raise requests for every configured recurring template between two dates",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseDate("from", args[0])
			if err != nil {
				return err
			}
			to, err := parseDate("to", args[1])
			if err != nil {
				return err
			}

			if len(app.Cfg.RecurringRequests) == 0 {
				fmt.Printf("\nNo recurring requests configured\n\n")
				return nil
			}

			result, err := services.GenerateRecurringRequests(app.Ctx, app.Database, app.Logger, app.Cfg.RecurringRequests, from, to)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Created %d request(s), skipped %d existing\n\n", len(result.Created), result.Skipped)
			for _, req := range result.Created {
				fmt.Printf("  %5d  %s  sub-section %d  shift %d  amount %d\n",
					req.ID, req.Date.Format(model.DateLayout), req.SubSectionID, req.ShiftID, req.RequestedAmount)
			}
			if len(result.Created) > 0 {
				fmt.Println()
			}

			return nil
		},
	}
}

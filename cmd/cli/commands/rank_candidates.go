package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/manpower/pkg/core/model"
	"github.com/jakechorley/manpower/pkg/core/services"
)

// RankCandidatesCmd creates the rankCandidates command
func RankCandidatesCmd(app *AppContext) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "rankCandidates <request_id>",
		Short: "Show the ranked candidate list and auto-selection for a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requestID, err := parseID("request_id", args[0])
			if err != nil {
				return err
			}
			referenceDate, err := app.referenceDate(date)
			if err != nil {
				return err
			}

			result, err := services.RankCandidates(app.Ctx, app.Database, app.Metrics, app.Logger, requestID, referenceDate)
			if err != nil {
				return err
			}

			req := result.Request
			fmt.Printf("\nRequest %d on %s (%s)\n", req.ID, req.Date.Format(model.DateLayout), req.Status)
			fmt.Printf("Wanted: %d (male %d, female %d)\n\n", req.RequestedAmount, req.MaleCount, req.FemaleCount)

			if len(result.Candidates) == 0 {
				fmt.Printf("No eligible candidates\n\n")
				return nil
			}

			selected := make(map[int64]bool)
			for _, id := range result.Selection.EmployeeIDs() {
				selected[id] = true
			}

			fmt.Printf("  %-3s %-4s %-8s %-25s %-7s %-8s %-6s %-6s %-8s\n",
				"#", "", "ID", "Name", "Gender", "Pool", "Week", "Score", "Hours")
			for i, c := range result.Candidates {
				mark := ""
				if selected[c.Employee.ID] {
					mark = "✓"
				}
				fmt.Printf("  %-3d %-4s %-8d %-25s %-7s %-8s %-6d %-6s %-8s\n",
					i+1, mark, c.Employee.ID, c.Employee.Name, c.Employee.Gender, c.Pool,
					c.WeeklyCount, c.TotalScore.StringFixed(2), c.TotalAssignedHours.String())
			}
			fmt.Println()

			for _, s := range result.Selection.Shortfalls {
				fmt.Printf("⚠ Shortfall: %s\n", s.Description)
			}
			for _, w := range result.Warnings {
				fmt.Printf("⚠ Data warning (employee %d, schedule %s): %s\n", w.EmployeeID, w.ScheduleID, w.Description)
			}
			if len(result.Selection.Shortfalls) > 0 || len(result.Warnings) > 0 {
				fmt.Println()
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Reference date for the weekly workload window (default today)")

	return cmd
}

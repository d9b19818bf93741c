package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// MigrateCmd creates the migrate command
func MigrateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			applied, err := app.Database.RunMigrations(app.Ctx)
			if err != nil {
				return err
			}

			if len(applied) == 0 {
				fmt.Printf("\n✓ Database is up to date\n\n")
				return nil
			}

			fmt.Printf("\n✓ Applied %d migration(s)\n\n", len(applied))
			for _, filename := range applied {
				fmt.Printf("  %s\n", filename)
			}
			fmt.Println()
			return nil
		},
	}
}

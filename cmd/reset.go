package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all tasks, history and odometer state",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetForce {
			return fmt.Errorf("reset discards every task and completion record; pass --force to confirm")
		}

		application, err := openApp()
		if err != nil {
			return err
		}
		defer application.close()

		if err := application.repository.ClearAll(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("all data cleared")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetForce, "force", false, "confirm the reset")
	rootCmd.AddCommand(resetCmd)
}

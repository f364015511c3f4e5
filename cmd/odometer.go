package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var odometerCmd = &cobra.Command{
	Use:   "odometer",
	Short: "Show the current odometer value",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := openApp()
		if err != nil {
			return err
		}
		defer application.close()

		kilometers, err := application.repository.CurrentDistance(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%.0f km\n", kilometers)
		return nil
	},
}

var odometerSetCmd = &cobra.Command{
	Use:   "set <kilometers>",
	Short: "Update the odometer (decreases are rejected)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kilometers, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("parsing kilometers: %w", err)
		}

		application, err := openApp()
		if err != nil {
			return err
		}
		defer application.close()

		if err := application.repository.SetCurrentDistance(cmd.Context(), kilometers); err != nil {
			return err
		}
		fmt.Printf("odometer set to %.0f km\n", kilometers)
		return nil
	},
}

func init() {
	odometerCmd.AddCommand(odometerSetCmd)
	rootCmd.AddCommand(odometerCmd)
}

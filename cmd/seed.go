package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Install the built-in default task set",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := openApp()
		if err != nil {
			return err
		}
		defer application.close()

		added, err := application.tasks.SeedDefaults(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("added %d default task(s)\n", added)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kwheeler/garage/internal/services"
)

var calendarOut string

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Export scheduled due dates as an iCalendar file",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := openApp()
		if err != nil {
			return err
		}
		defer application.close()

		ctx := cmd.Context()
		tasks, err := application.repository.List(ctx)
		if err != nil {
			return err
		}
		currentDistance, err := application.repository.CurrentDistance(ctx)
		if err != nil {
			return err
		}

		content := services.DueDateCalendar(tasks, currentDistance, time.Now())
		if err := os.WriteFile(calendarOut, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing calendar file: %w", err)
		}
		fmt.Printf("wrote %s\n", calendarOut)
		return nil
	},
}

func init() {
	calendarCmd.Flags().StringVar(&calendarOut, "out", "maintenance.ics", "output path")
	rootCmd.AddCommand(calendarCmd)
}

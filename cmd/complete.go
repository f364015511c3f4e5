package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kwheeler/garage/internal/services"
)

var (
	completeDate     string
	completeCost     float64
	completeOdometer float64
	completeNotes    string
)

var completeCmd = &cobra.Command{
	Use:   "complete <task-id>",
	Short: "Record a completion against a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := openApp()
		if err != nil {
			return err
		}
		defer application.close()

		date := time.Now()
		if completeDate != "" {
			parsed, err := time.ParseInLocation("2006-01-02", completeDate, time.Local)
			if err != nil {
				return fmt.Errorf("parsing --date: %w", err)
			}
			date = parsed
		}

		input := services.CompletionInput{
			Date:  date,
			Cost:  completeCost,
			Notes: completeNotes,
		}
		if cmd.Flags().Changed("odometer") {
			reading := completeOdometer
			input.OdometerReading = &reading
		}

		record, err := application.tasks.RecordCompletion(cmd.Context(), args[0], input)
		if err != nil {
			return err
		}

		fmt.Printf("recorded completion %s for %q\n", record.ID, record.Title)
		switch {
		case record.NextDueAt != nil:
			fmt.Printf("next due %s\n", record.NextDueAt.Format("2006-01-02"))
		case record.NextDueAtDistance != nil:
			fmt.Printf("next due at %.0f km\n", *record.NextDueAtDistance)
		}
		return nil
	},
}

func init() {
	completeCmd.Flags().StringVar(&completeDate, "date", "", "completion date (YYYY-MM-DD, default today)")
	completeCmd.Flags().Float64Var(&completeCost, "cost", 0, "cost of the maintenance")
	completeCmd.Flags().Float64Var(&completeOdometer, "odometer", 0, "odometer reading at completion")
	completeCmd.Flags().StringVar(&completeNotes, "notes", "", "free-form notes")

	rootCmd.AddCommand(completeCmd)
}

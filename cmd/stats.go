package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/kwheeler/garage/internal/models"
	"github.com/kwheeler/garage/internal/services"
)

var (
	statsFrom string
	statsTo   string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cost and frequency statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := openApp()
		if err != nil {
			return err
		}
		defer application.close()

		tasks, err := application.repository.List(cmd.Context())
		if err != nil {
			return err
		}

		dateRange := models.DateRange{AllTime: true}
		if statsFrom != "" || statsTo != "" {
			if statsFrom == "" || statsTo == "" {
				return fmt.Errorf("--from and --to must be given together")
			}
			dateRange, err = services.ParseDateRange(statsFrom, statsTo)
			if err != nil {
				return err
			}
		}

		scoped := tasks
		if !dateRange.AllTime {
			scoped = services.TasksInDateRange(tasks, dateRange)
		}
		records := services.AllRecords(scoped)

		fmt.Printf("completions: %d\n", len(records))
		fmt.Printf("total cost: %.2f\n", services.TotalCost(records))
		fmt.Printf("average cost per completion: %.2f\n", services.AverageCostPerCompletion(records))

		fmt.Println("\ncost by kind:")
		byKind := services.CostsByKind(scoped)
		for _, kind := range []services.DisplayKind{services.DisplayTimeBased, services.DisplayDistanceBased, services.DisplayUserCreated} {
			fmt.Printf("  %-15s %.2f\n", kind, byKind[kind])
		}

		byTag := services.CostsByTag(scoped)
		if len(byTag) > 0 {
			fmt.Println("\ncost by tag:")
			tags := make([]string, 0, len(byTag))
			for tag := range byTag {
				tags = append(tags, tag)
			}
			sort.Strings(tags)
			for _, tag := range tags {
				fmt.Printf("  %-15s %.2f\n", tag, byTag[tag])
			}
		}

		trends := services.CostTrends(records, time.Now())
		if len(trends) > 0 {
			fmt.Println("\nmonthly spend, trailing 6 months:")
			for _, bucket := range trends {
				fmt.Printf("  %s  %.2f (%d completions)\n", bucket.Period, bucket.Cost, bucket.Count)
			}
		}

		frequency := services.TaskFrequency(scoped)
		if len(frequency) > 0 {
			fmt.Println("\ncompletions per task:")
			titles := make([]string, 0, len(frequency))
			for title := range frequency {
				titles = append(titles, title)
			}
			sort.Strings(titles)
			for _, title := range titles {
				fmt.Printf("  %-15s %d\n", title, frequency[title])
			}
		}

		return nil
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsFrom, "from", "", "range start (YYYY-MM-DD)")
	statsCmd.Flags().StringVar(&statsTo, "to", "", "range end (YYYY-MM-DD)")
	rootCmd.AddCommand(statsCmd)
}

package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kwheeler/garage/internal/models"
	"github.com/kwheeler/garage/internal/services"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage maintenance tasks",
}

var (
	addTitle       string
	addDescription string
	addKind        string
	addInterval    string
	addKilometers  float64
	addTags        []string
	addSubtasks    []string
	addOnce        bool
)

var taskAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a maintenance task",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := openApp()
		if err != nil {
			return err
		}
		defer application.close()

		task, err := application.tasks.CreateTask(cmd.Context(), services.TaskInput{
			Title:            addTitle,
			Description:      addDescription,
			Kind:             models.TaskKind(addKind),
			Interval:         addInterval,
			DistanceInterval: addKilometers,
			Tags:             addTags,
			Subtasks:         addSubtasks,
			NotRecurring:     addOnce,
		})
		if err != nil {
			return err
		}

		fmt.Printf("created task %s (%s)\n", task.ID, task.Title)
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks with their due status",
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

		now := time.Now()
		writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(writer, "ID\tTITLE\tKIND\tSTATUS\tNEXT DUE")
		for _, task := range tasks {
			fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n",
				task.ID, task.Title, displayKindColumn(task),
				services.TaskStatus(task, currentDistance, now),
				nextDueColumn(task))
		}
		return writer.Flush()
	},
}

var taskRemoveCmd = &cobra.Command{
	Use:   "rm <task-id>",
	Short: "Delete a task and its completion history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := openApp()
		if err != nil {
			return err
		}
		defer application.close()

		if err := application.tasks.DeleteTask(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted task %s\n", args[0])
		return nil
	},
}

func displayKindColumn(task models.MaintenanceTask) string {
	if task.CreatedByUser {
		return string(task.Kind) + " (user)"
	}
	return string(task.Kind)
}

func nextDueColumn(task models.MaintenanceTask) string {
	switch {
	case task.NextDueAt != nil:
		return task.NextDueAt.Format("2006-01-02")
	case task.NextDueAtDistance != nil:
		return fmt.Sprintf("%.0f km", *task.NextDueAtDistance)
	}
	return "-"
}

func init() {
	taskAddCmd.Flags().StringVar(&addTitle, "title", "", "task title")
	taskAddCmd.Flags().StringVar(&addDescription, "description", "", "task description")
	taskAddCmd.Flags().StringVar(&addKind, "kind", string(models.KindTimeBased), "task kind: time-based or distance-based")
	taskAddCmd.Flags().StringVar(&addInterval, "interval", "", `time interval (e.g. "monthly", "90 days")`)
	taskAddCmd.Flags().Float64Var(&addKilometers, "km", 0, "distance interval in kilometers")
	taskAddCmd.Flags().StringSliceVar(&addTags, "tag", nil, "tags (repeatable)")
	taskAddCmd.Flags().StringSliceVar(&addSubtasks, "step", nil, "subtask steps (repeatable)")
	taskAddCmd.Flags().BoolVar(&addOnce, "once", false, "one-off task, not recurring")
	taskAddCmd.MarkFlagRequired("title")

	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskRemoveCmd)
	rootCmd.AddCommand(taskCmd)
}

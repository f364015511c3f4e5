package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kwheeler/garage/internal/transfer"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all tasks to a CSV file",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := openApp()
		if err != nil {
			return err
		}
		defer application.close()

		content, err := application.codec.ExportAll(cmd.Context())
		if err != nil {
			return err
		}

		out := exportOut
		if out == "" {
			out = transfer.Filename(time.Now())
		}
		if err := os.WriteFile(out, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing export file: %w", err)
		}
		fmt.Printf("exported to %s\n", out)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Merge tasks from a CSV export (existing ids are skipped)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading import file: %w", err)
		}
		if !strings.HasSuffix(args[0], ".csv") {
			return fmt.Errorf("expected a .csv file")
		}

		application, err := openApp()
		if err != nil {
			return err
		}
		defer application.close()

		result, err := application.codec.ImportMerge(cmd.Context(), string(data))
		if err != nil {
			return err
		}
		fmt.Printf("imported %d task(s), skipped %d existing\n", result.Imported, result.Skipped)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (default maintenance_tasks_<date>.csv)")
	rootCmd.AddCommand(exportCmd, importCmd)
}

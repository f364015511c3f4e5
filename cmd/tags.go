package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kwheeler/garage/internal/services"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List predefined and custom tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := openApp()
		if err != nil {
			return err
		}
		defer application.close()

		custom, err := application.repository.CustomTags(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println("predefined:")
		for _, tag := range services.PredefinedTags() {
			fmt.Printf("  %s\n", tag)
		}
		if len(custom) > 0 {
			fmt.Println("custom:")
			for _, tag := range custom {
				fmt.Printf("  %s\n", tag)
			}
		}
		return nil
	},
}

var tagsAddCmd = &cobra.Command{
	Use:   "add <tag>",
	Short: "Remember a custom tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := openApp()
		if err != nil {
			return err
		}
		defer application.close()

		if err := application.repository.SaveCustomTag(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("saved tag %q\n", args[0])
		return nil
	},
}

func init() {
	tagsCmd.AddCommand(tagsAddCmd)
	rootCmd.AddCommand(tagsCmd)
}

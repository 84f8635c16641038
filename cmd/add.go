package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/searchbench/internal/queryset"
)

var (
	addCategory string
	addNotes    string
)

var addCmd = &cobra.Command{
	Use:   "add <query>",
	Short: "Append a query to the private set",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		id, err := queryset.Append(cfg.Queries.Dir, args[0], addCategory, addNotes)
		if err != nil {
			return err
		}
		fmt.Printf("Added private query as %s\n", id)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addCategory, "category", "custom", "category for the private query")
	addCmd.Flags().StringVar(&addNotes, "notes", "", "optional notes for judging")
	rootCmd.AddCommand(addCmd)
}

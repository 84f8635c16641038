package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List providers and their key status",
	RunE: func(_ *cobra.Command, _ []string) error {
		for _, pk := range providerKeys() {
			status := "set"
			if pk.key == "" {
				status = "missing"
			}
			fmt.Printf("%s (%s): %s\n", pk.name, pk.envVar, status)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}

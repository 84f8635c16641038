package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sells-group/searchbench/internal/calibrate"
	"github.com/sells-group/searchbench/internal/history"
)

const configFile = "config.yaml"

var calibrateApply bool

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Suggest per-provider timeouts from timeout history",
	RunE: func(_ *cobra.Command, _ []string) error {
		doc := history.Load(history.Path(cfg.Results.Dir))
		suggestions := calibrate.SuggestTimeouts(doc)
		if len(suggestions) == 0 {
			fmt.Println("No timeout suggestions available.")
			return nil
		}

		changes := make(map[string]int)
		for provider, secs := range suggestions {
			if cfg.Timeouts[provider] != secs {
				changes[provider] = secs
			}
		}
		if len(changes) == 0 {
			fmt.Println("All timeouts are well-calibrated.")
			return nil
		}

		names := make([]string, 0, len(changes))
		for name := range changes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("%s: %ds -> %ds\n", name, cfg.Timeouts[name], changes[name])
		}

		if !calibrateApply {
			fmt.Println("Run with --apply to update config.yaml.")
			return nil
		}

		merged := make(map[string]int, len(cfg.Timeouts)+len(changes))
		for provider, secs := range cfg.Timeouts {
			merged[provider] = secs
		}
		for provider, secs := range changes {
			merged[provider] = secs
		}
		if err := calibrate.ApplyTimeouts(configFile, merged); err != nil {
			return err
		}
		fmt.Println("config.yaml updated.")
		return nil
	},
}

func init() {
	calibrateCmd.Flags().BoolVar(&calibrateApply, "apply", false, "apply suggested timeouts to config.yaml")
	rootCmd.AddCommand(calibrateCmd)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check API keys and run the judge preflight",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var missing []string
		for _, pk := range providerKeys() {
			if pk.key == "" {
				missing = append(missing, fmt.Sprintf("%s: %s", pk.name, pk.envVar))
			}
		}
		if len(missing) > 0 {
			fmt.Println("Missing API keys:")
			for _, entry := range missing {
				fmt.Printf("  - %s\n", entry)
			}
		} else {
			fmt.Println("All provider API keys present.")
		}

		j, err := newJudge()
		if err != nil {
			fmt.Printf("Judge preflight: FAILED (%v)\n", err)
			return nil
		}
		if err := j.Preflight(cmd.Context()); err != nil {
			fmt.Printf("Judge preflight: FAILED (%v)\n", err)
			return nil
		}
		fmt.Println("Judge preflight: OK")
		return nil
	},
}

type providerKey struct {
	name   string
	envVar string
	key    string
}

// providerKeys pairs each provider with its configured key and the env var
// that sets it.
func providerKeys() []providerKey {
	return []providerKey{
		{"exa", "SEARCHBENCH_PROVIDERS_EXA_KEY", cfg.Providers.Exa.Key},
		{"parallel", "SEARCHBENCH_PROVIDERS_PARALLEL_KEY", cfg.Providers.Parallel.Key},
		{"brave", "SEARCHBENCH_PROVIDERS_BRAVE_KEY", cfg.Providers.Brave.Key},
		{"linkup", "SEARCHBENCH_PROVIDERS_LINKUP_KEY", cfg.Providers.Linkup.Key},
		{"tavily", "SEARCHBENCH_PROVIDERS_TAVILY_KEY", cfg.Providers.Tavily.Key},
	}
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

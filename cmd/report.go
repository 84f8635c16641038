package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var reportNoOpen bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the latest report path and open it",
	RunE: func(_ *cobra.Command, _ []string) error {
		latest := filepath.Join(cfg.Results.Dir, "latest.html")
		if _, err := os.Stat(latest); err != nil {
			return eris.New("no report found, run `searchbench run` first")
		}

		fmt.Printf("Latest report: %s\n", latest)
		if reportNoOpen {
			return nil
		}
		if err := openBrowser(latest); err != nil {
			fmt.Fprintf(os.Stderr, "could not open browser: %v\n", err)
		}
		return nil
	},
}

func openBrowser(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", abs).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", abs).Start()
	default:
		return exec.Command("xdg-open", abs).Start()
	}
}

func init() {
	reportCmd.Flags().BoolVar(&reportNoOpen, "no-open", false, "do not open the latest report in a browser")
	rootCmd.AddCommand(reportCmd)
}

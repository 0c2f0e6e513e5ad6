// Command vmsim runs workloads against the software MMU and records the
// translation traffic they generate.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var rootCmd = &cobra.Command{
	Use:   "vmsim",
	Short: "vmsim exercises a software MMU with configurable geometry.",
	Long: `vmsim builds a software MMU over a simulated physical memory and ` +
		`runs workloads against it. Translation traffic (page faults, ` +
		`evictions, restores) is recorded into a SQLite database.`,
}

func main() {
	// A .env file can preset defaults such as VMSIM_TRACE_DB. Running
	// without one is fine.
	_ = godotenv.Load()

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}

	atexit.Exit(0)
}

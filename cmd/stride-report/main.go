// Command stride-report is the command-line companion to the analysis
// service: run gait and squat analyses against downloaded sessions, browse
// recorded runs, and manage the results database schema.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/gaitlab/stride.report/internal/db"
)

var (
	flagRunsSession string
	flagRunsLimit   int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Browse recorded analysis runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := db.Open(cfg.GetDatabasePath())
		if err != nil {
			return err
		}
		defer database.Close()
		if err := database.CheckMigrations(); err != nil {
			return err
		}

		runs, err := database.Runs(cmd.Context(), flagRunsSession, flagRunsLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header([]string{"ID", "Session", "Trial", "Kind", "Leg", "Cycles", "Created"})
		var rows [][]string
		for _, run := range runs {
			rows = append(rows, []string{
				run.ID,
				run.SessionID,
				run.TrialName,
				run.Kind,
				run.Leg,
				fmt.Sprintf("%d", run.NumCycles),
				run.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		if err := table.Bulk(rows); err != nil {
			return err
		}
		return table.Render()
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run_id>",
	Short: "Print one run's scalars as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := db.Open(cfg.GetDatabasePath())
		if err != nil {
			return err
		}
		defer database.Close()

		run, err := database.Run(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s %s/%s (%s, %d cycles)\n%s\n",
			run.ID, run.SessionID, run.TrialName, run.Kind, run.NumCycles, run.Scalars)
		return nil
	},
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run_id>",
	Short: "Delete a recorded run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := db.Open(cfg.GetDatabasePath())
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.DeleteRun(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted run %s\n", args[0])
		return nil
	},
}

func init() {
	runsListCmd.Flags().StringVar(&flagRunsSession, "session", "", "only show runs for this session")
	runsListCmd.Flags().IntVar(&flagRunsLimit, "limit", 50, "maximum number of runs to list")
	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsDeleteCmd)
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/gaitlab/stride.report/internal/analysis"
	"github.com/gaitlab/stride.report/internal/config"
	"github.com/gaitlab/stride.report/internal/db"
	"github.com/gaitlab/stride.report/internal/gait"
	"github.com/gaitlab/stride.report/internal/kinematics"
	"github.com/gaitlab/stride.report/internal/report"
	"github.com/gaitlab/stride.report/internal/session"
	"github.com/gaitlab/stride.report/internal/squat"
)

var (
	goodColor = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	badColor  = color.New(color.FgRed)
)

var (
	flagLeg        string
	flagCycles     int
	flagStyle      string
	flagReps       int
	flagCutoff     float64
	flagTrimStart  float64
	flagTrimEnd    float64
	flagNoDownload bool
	flagNoRecord   bool
	flagPlotPath   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run an analysis on a session trial",
}

var analyzeGaitCmd = &cobra.Command{
	Use:   "gait <session_id> <trial_name>",
	Short: "Segment a walking trial into gait cycles and compute its metrics",
	Args:  cobra.ExactArgs(2),
	RunE:  runAnalyzeGait,
}

var analyzeSquatCmd = &cobra.Command{
	Use:   "squat <session_id> <trial_name>",
	Short: "Segment a squat trial into repetitions and compute its metrics",
	Args:  cobra.ExactArgs(2),
	RunE:  runAnalyzeSquat,
}

func init() {
	pf := analyzeCmd.PersistentFlags()
	pf.Float64Var(&flagCutoff, "cutoff", 0, "lowpass filter cutoff in Hz (0 uses the per-analysis default)")
	pf.Float64Var(&flagTrimStart, "trim-start", 0, "seconds to discard from the start of the trial")
	pf.Float64Var(&flagTrimEnd, "trim-end", 0, "seconds to discard from the end of the trial")
	pf.BoolVar(&flagNoDownload, "no-download", false, "fail instead of downloading when trial files are missing")
	pf.BoolVar(&flagNoRecord, "no-record", false, "do not record the run in the results database")
	pf.StringVar(&flagPlotPath, "plot", "", "write a segmentation plot PNG to this path")

	analyzeGaitCmd.Flags().StringVar(&flagLeg, "leg", "auto", "ipsilateral leg: auto, l, or r")
	analyzeGaitCmd.Flags().IntVar(&flagCycles, "cycles", -1, "number of gait cycles to analyze, -1 for all")
	analyzeGaitCmd.Flags().StringVar(&flagStyle, "style", "auto", "gait style: auto, treadmill, or overground")
	analyzeSquatCmd.Flags().IntVar(&flagReps, "reps", -1, "number of repetitions to analyze, -1 for all")

	analyzeCmd.AddCommand(analyzeGaitCmd, analyzeSquatCmd)
}

// resolveTrial locates or downloads the trial files and returns the session
// directory plus the canonical trial name.
func resolveTrial(ctx context.Context, cfg *config.AnalysisConfig, sessionID, trialName string) (string, string, error) {
	sessionDir := filepath.Join(cfg.GetDataDir(), sessionID)
	trcPath := filepath.Join(sessionDir, "MarkerData", trialName+".trc")
	motPath := filepath.Join(sessionDir, "OpenSimData", "Kinematics", trialName+".mot")

	if fileExists(trcPath) && fileExists(motPath) {
		return sessionDir, trialName, nil
	}
	if flagNoDownload {
		return "", "", fmt.Errorf("trial %s/%s not on disk and --no-download given", sessionID, trialName)
	}

	client := session.NewClient(cfg.GetAPIBaseURL(), cfg.GetDataDir())
	return client.FetchTrial(ctx, sessionID, trialName)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func runAnalyzeGait(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	gaitCfg := cfg.GaitConfig()
	leg, err := gait.ParseLegSelector(flagLeg)
	if err != nil {
		return err
	}
	gaitCfg.Leg = leg
	style, err := gait.ParseGaitStyle(flagStyle)
	if err != nil {
		return err
	}
	gaitCfg.Style = style
	gaitCfg.NumCycles = flagCycles
	applySharedFlags(&gaitCfg.LowpassCutoffHz, &gaitCfg.TrimStart, &gaitCfg.TrimEnd)

	sessionDir, trialName, err := resolveTrial(cmd.Context(), cfg, args[0], args[1])
	if err != nil {
		return err
	}

	trial, err := kinematics.LoadTrial(sessionDir, trialName, gaitCfg.LowpassCutoffHz)
	if err != nil {
		return err
	}

	a, err := gait.New(trial, gaitCfg)
	if err != nil {
		return err
	}

	fmt.Printf("Trial %s/%s: %d gait cycles, leg %s", args[0], trialName, a.NumCycles(), a.Leg())
	if speed := a.TreadmillSpeed(); speed > 0 {
		fmt.Printf(", treadmill %.2f m/s", speed)
	}
	fmt.Println()

	scalars, err := a.Scalars(nil)
	if err != nil {
		return err
	}

	var rep *report.Report
	if meta, err := session.LoadMetadata(sessionDir); err == nil {
		if rep, err = report.GaitReport(a, meta.HeightM); err != nil {
			return err
		}
	}
	if err := printScalars(scalars, rep); err != nil {
		return err
	}

	if flagPlotPath != "" {
		if err := a.SaveSegmentationPlot(a.Leg(), flagPlotPath); err != nil {
			return err
		}
		fmt.Printf("Wrote segmentation plot to %s\n", flagPlotPath)
	}

	if flagNoRecord {
		return nil
	}
	return recordRun(cmd.Context(), cfg, db.AnalysisRun{
		SessionID:      args[0],
		TrialName:      trialName,
		Kind:           db.RunKindGait,
		Leg:            string(a.Leg()),
		NumCycles:      a.NumCycles(),
		TreadmillSpeed: a.TreadmillSpeed(),
	}, scalars)
}

func runAnalyzeSquat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	squatCfg := cfg.SquatConfig()
	squatCfg.NumRepetitions = flagReps
	applySharedFlags(&squatCfg.LowpassCutoffHz, &squatCfg.TrimStart, &squatCfg.TrimEnd)

	sessionDir, trialName, err := resolveTrial(cmd.Context(), cfg, args[0], args[1])
	if err != nil {
		return err
	}

	trial, err := kinematics.LoadTrial(sessionDir, trialName, squatCfg.LowpassCutoffHz)
	if err != nil {
		return err
	}

	a, err := squat.New(trial, squatCfg)
	if err != nil {
		return err
	}

	fmt.Printf("Trial %s/%s: %d squat repetitions\n", args[0], trialName, a.NumRepetitions())

	scalars, err := a.Scalars(nil)
	if err != nil {
		return err
	}

	rep, err := report.SquatReport(a)
	if err != nil {
		return err
	}
	if err := printScalars(scalars, rep); err != nil {
		return err
	}

	if flagPlotPath != "" {
		if err := a.SaveSegmentationPlot(flagPlotPath); err != nil {
			return err
		}
		fmt.Printf("Wrote segmentation plot to %s\n", flagPlotPath)
	}

	if flagNoRecord {
		return nil
	}
	return recordRun(cmd.Context(), cfg, db.AnalysisRun{
		SessionID: args[0],
		TrialName: trialName,
		Kind:      db.RunKindSquat,
		NumCycles: a.NumRepetitions(),
	}, scalars)
}

func applySharedFlags(cutoff, trimStart, trimEnd *float64) {
	if flagCutoff != 0 {
		*cutoff = flagCutoff
	}
	if flagTrimStart != 0 {
		*trimStart = flagTrimStart
	}
	if flagTrimEnd != 0 {
		*trimEnd = flagTrimEnd
	}
}

// printScalars renders the metric table. When a threshold report is available
// its metrics come first with a colored in-range status.
func printScalars(scalars *analysis.ScalarSet, rep *report.Report) error {
	table := tablewriter.NewWriter(os.Stdout)

	if rep != nil {
		table.Header([]string{"Metric", "Value", "Range", "Status"})
		var rows [][]string
		for _, m := range rep.Metrics {
			rows = append(rows, []string{
				m.Label,
				fmt.Sprintf("%g", m.Value),
				fmt.Sprintf("%g .. %g", m.MinLimit, m.MaxLimit),
				statusLabel(m),
			})
		}
		if err := table.Bulk(rows); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
		fmt.Println()
		table = tablewriter.NewWriter(os.Stdout)
	}

	table.Header([]string{"Metric", "Mean", "Std", "Unit"})
	var rows [][]string
	for _, name := range scalars.Names() {
		sc, _ := scalars.Get(name)
		rows = append(rows, []string{
			name,
			fmt.Sprintf("%.4g", sc.Value),
			fmt.Sprintf("%.4g", sc.Std),
			sc.Unit,
		})
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// statusLabel maps a metric value onto its color band.
func statusLabel(m report.Metric) string {
	switch {
	case len(m.Colors) == 3 && m.Colors[0] == "red" && m.Colors[2] == "red":
		// Centered band: good inside the limits.
		if m.Value >= m.MinLimit && m.Value <= m.MaxLimit {
			return goodColor.Sprint("in range")
		}
		return badColor.Sprint("out of range")
	case len(m.Colors) == 3 && m.Colors[0] == "green":
		// Lower is better.
		if m.Value <= m.MinLimit {
			return goodColor.Sprint("good")
		}
		if m.Value <= m.MaxLimit {
			return warnColor.Sprint("borderline")
		}
		return badColor.Sprint("high")
	default:
		// Higher is better.
		if m.Value >= m.MaxLimit {
			return goodColor.Sprint("good")
		}
		if m.Value >= m.MinLimit {
			return warnColor.Sprint("borderline")
		}
		return badColor.Sprint("low")
	}
}

func recordRun(ctx context.Context, cfg *config.AnalysisConfig, run db.AnalysisRun, scalars *analysis.ScalarSet) error {
	payload, err := json.Marshal(scalars)
	if err != nil {
		return err
	}
	run.Scalars = payload

	database, err := db.Open(cfg.GetDatabasePath())
	if err != nil {
		return err
	}
	defer database.Close()
	if err := database.CheckMigrations(); err != nil {
		return err
	}

	recorded, err := database.RecordRun(ctx, run)
	if err != nil {
		return err
	}
	fmt.Printf("Recorded run %s\n", recorded.ID)
	return nil
}

package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gaitlab/stride.report/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "stride-report",
	Short:         "Extract gait and squat metrics from motion-capture trials.",
	Long:          `stride-report segments walking and squatting trials into cycles and reduces them to interpretable metrics: speeds, lengths, timings, joint-angle peaks and ranges of motion.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

func init() {
	cobra.OnInitialize(initViper)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "path to analysis config JSON")
	pf.String("db-path", "", "results database path")
	pf.String("data-dir", "", "session data directory")
	pf.String("api-url", "", "motion-capture platform API base URL")
	_ = viper.BindPFlags(pf)

	rootCmd.AddCommand(analyzeCmd, runsCmd, migrateCmd)
}

func initViper() {
	viper.SetEnvPrefix("STRIDE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// loadConfig resolves the effective configuration from the config file (when
// given) plus flag and environment overrides.
func loadConfig() (*config.AnalysisConfig, error) {
	cfg := config.EmptyAnalysisConfig()
	if path := viper.GetString("config"); path != "" {
		loaded, err := config.LoadAnalysisConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if v := viper.GetString("db-path"); v != "" {
		cfg.DatabasePath = &v
	}
	if v := viper.GetString("data-dir"); v != "" {
		cfg.DataDir = &v
	}
	if v := viper.GetString("api-url"); v != "" {
		cfg.APIBaseURL = &v
	}
	return cfg, nil
}

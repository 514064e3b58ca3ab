// Package cli implements the churnctl command line tool.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"churn-prediction-engine/internal/bootstrap"
	"churn-prediction-engine/internal/config"
	"churn-prediction-engine/internal/utils"
)

var rootCmd = &cobra.Command{
	Use:   "churnctl",
	Short: "Score bank customers for churn risk",
	Long:  "churnctl scores customers against the churn model, runs CSV batches and manages model artifacts.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		return utils.InitLogger(level)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		utils.Sync()
	},
	SilenceUsage: true,
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("model", "", "Path to a model artifact (overrides MODEL_SOURCE/MODEL_PATH)")
	rootCmd.PersistentFlags().String("source", "", "Model source: file, s3 or postgres (overrides MODEL_SOURCE)")
	rootCmd.PersistentFlags().Float64("threshold", -1, "Decision threshold (overrides CHURN_THRESHOLD)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if src, _ := cmd.Flags().GetString("source"); src != "" {
		cfg.ModelSource = src
	}
	if path, _ := cmd.Flags().GetString("model"); path != "" {
		cfg.ModelSource = config.ModelSourceFile
		cfg.ModelPath = path
	}
	if t, _ := cmd.Flags().GetFloat64("threshold"); t >= 0 {
		cfg.ChurnThreshold = t
	}

	return cfg, cfg.Validate()
}

// loadRuntime builds the prediction runtime for commands that score.
func loadRuntime(ctx context.Context, cmd *cobra.Command) (*bootstrap.Runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return bootstrap.NewRuntime(ctx, cfg)
}

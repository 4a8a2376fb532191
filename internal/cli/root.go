// Package cli hosts the command-line surface of the practice engine.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ahmetildirim/sightreading.studio/internal/config"
	"github.com/ahmetildirim/sightreading.studio/pkg/logger"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "sightreading",
	Short: "Sight-reading practice engine",
	Long: `Generates deterministic sight-reading exercises and judges live
MIDI input against them in real time.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cmd.Context())
		if err != nil {
			return err
		}
		cfg = loaded
		if err := logger.SetLevelString(cfg.LogLevel); err != nil {
			logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
				logger.String("log_level", cfg.LogLevel))
			_ = logger.SetLevelString("info")
		}
		return nil
	},
}

// ExecuteContext runs the root command under the given context.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

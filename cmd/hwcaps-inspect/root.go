package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jrelvas-ipc/hwcaps-loader/internal/version"
	"github.com/jrelvas-ipc/hwcaps-loader/pkg/config"
	"github.com/jrelvas-ipc/hwcaps-loader/pkg/logging"
)

var (
	verbosity int
	prefix    string

	cfg config.Config

	rootCmd = &cobra.Command{
		Use:   "hwcaps-inspect",
		Short: "Inspect hwcaps-loader dispatch decisions",
		Long: `hwcaps-inspect shows what the hwcaps-loader dispatch shim would do on
this machine: the detected CPU capability tier, how an invocation path
resolves to a target, and which candidate binary would be executed.

It never executes anything; every walk is a dry-run.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetupInspect(verbosity)

			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			if prefix != "" {
				cfg.Prefix = prefix
			}
			log.Debug().Str("prefix", cfg.Prefix).Str("command", cmd.Name()).Msg("inspect started")
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		log.Error().Err(err).Msg("command failed")
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().StringVar(&prefix, "prefix", "", "Installation prefix to inspect (default /usr, or config file)")

	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(candidatesCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("hwcaps-inspect version %s\n", version.Version)
		fmt.Printf("  commit: %s\n", version.Commit)
		fmt.Printf("  built:  %s\n", version.Date)
	},
}

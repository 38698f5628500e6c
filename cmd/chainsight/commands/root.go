package commands

import (
	"chainsight/internal/config"
	"chainsight/internal/engine"
	"chainsight/internal/logging"
	"chainsight/internal/mcp"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig

	orchestrator *engine.Orchestrator
)

var rootCmd = &cobra.Command{
	Use:   "chainsight",
	Short: "Chainsight is a supply-chain analytics MCP server",
	Long: `A specialized MCP server that analyzes supply-chain datasets and process event logs:
schema inference, demand volatility, bottleneck scoring, statistical anomaly detection
and rule-based recommendations.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		// No embedding collaborator is wired by default; text analysis
		// reports itself as degraded rather than faking vectors.
		orchestrator = engine.New(cfg.Engine, nil)

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("Chainsight starting")
	},
	Run: func(cmd *cobra.Command, args []string) {
		log.Info().Msg("MCP Server starting Stdio loop")
		server := mcp.NewServer(orchestrator)
		if err := server.Serve(); err != nil {
			log.Fatal().Err(err).Msg("Stdio loop failed")
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

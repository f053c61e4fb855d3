// Package main provides the gofetch CLI entry point.
package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dzhu8/GoFetch-sub002/internal/config"
	"github.com/dzhu8/GoFetch-sub002/internal/scholar"
	"github.com/dzhu8/GoFetch-sub002/internal/snowball"
	"github.com/dzhu8/GoFetch-sub002/internal/throttle"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// configPath is the configuration file location.
var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gofetch",
	Short: "Citation-graph relevance engine for scanned papers",
	Long: `gofetch turns a scanned paper's OCR output into a ranked list of
related papers.

It stitches bibliography entries back together from noisy OCR blocks,
resolves them against a bibliographic graph API, expands a bounded
two-hop citation neighborhood, and ranks the pooled candidates by a
bibliographic-coupling / co-citation blend. All commands output JSON by
default for easy integration with other tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(func() {
		// Pick up SEMANTIC_SCHOLAR_API_KEY and friends from .env.
		_ = godotenv.Load()
	})
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Configuration file path")
	rootCmd.Version = Version
}

// mustLoadConfig loads configuration or exits with a config error.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// newLogger builds the CLI logger. Logs go to stderr so stdout stays
// parseable.
func newLogger() *zap.Logger {
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{"stderr"}
	if humanOutput {
		zcfg = zap.NewDevelopmentConfig()
	}
	log, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// newEngine assembles the graph client and snowball engine from config.
func newEngine(cfg *config.Config, log *zap.Logger) *snowball.Engine {
	opts := []scholar.ClientOption{
		scholar.WithLimiter(throttle.New(cfg.API.RateLimit)),
		scholar.WithLogger(log),
		scholar.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout()}),
	}
	if cfg.API.BaseURL != "" {
		opts = append(opts, scholar.WithBaseURL(cfg.API.BaseURL))
	}
	if cfg.API.Key != "" {
		opts = append(opts, scholar.WithAPIKey(cfg.API.Key))
	}
	client := scholar.NewClient(opts...)

	return snowball.NewEngine(client, log, snowball.Options{
		ResolveBatchSize: cfg.Engine.ResolveBatchSize,
		ExpandBatchSize:  cfg.Engine.ExpandBatchSize,
		TopN:             cfg.Engine.TopN,
	})
}

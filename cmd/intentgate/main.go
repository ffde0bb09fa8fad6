package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/zen-systems/intentgate/pkg/adapter"
	"github.com/zen-systems/intentgate/pkg/config"
	"github.com/zen-systems/intentgate/pkg/pipeline"
	"github.com/zen-systems/intentgate/pkg/router"
)

var (
	configFile string
	verbose    bool
	logger     = zap.NewNop()
	aliases    *config.ModelAliases
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "intentgate",
		Short: "Intent-classifying request router for multi-agent LLM work",
		Long: `Intentgate classifies a natural-language request, picks the tools and
execution shape it needs, and runs it as a single agent or a
plan/execute/report pipeline against the configured model providers.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := zap.NewProductionConfig()
			if verbose {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			l, err := cfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to routing config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(decideCmd())
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(toolsCmd())
	rootCmd.AddCommand(triageCmd())
	rootCmd.AddCommand(prioritizeCmd())
	rootCmd.AddCommand(modelsCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configFile != "" {
		cfg, err = config.LoadWithRoutingFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	aliases, err = config.LoadAliasesWithFallback(cfg.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load model aliases: %w", err)
	}
	if cfg.CustomModel != "" {
		if aliases.Providers == nil {
			aliases.Providers = make(map[string][]string)
		}
		aliases.Providers["custom"] = []string{cfg.CustomModel}
	}
	return cfg, nil
}

// servedProviders names the providers a runner built from cfg has adapters
// for.
func servedProviders(cfg *config.Config, useMock bool) []string {
	if useMock {
		return []string{"mock"}
	}
	var names []string
	for _, p := range aliases.ProviderNames() {
		if p != "mock" && cfg.HasAdapter(p) {
			names = append(names, p)
		}
	}
	return names
}

func newModelRouter(cfg *config.Config, useMock bool) *router.ModelRouter {
	return router.NewModelRouter(cfg.RoutingConfig.Models, aliases, router.WithProviders(servedProviders(cfg, useMock)...))
}

func createAdapters(ctx context.Context, cfg *config.Config) ([]adapter.Adapter, error) {
	var adapters []adapter.Adapter

	if cfg.AnthropicAPIKey != "" {
		a, err := adapter.NewAnthropicAdapter(cfg.AnthropicAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create anthropic adapter: %w", err)
		}
		adapters = append(adapters, a)
	}

	if cfg.OpenAIAPIKey != "" {
		a, err := adapter.NewOpenAIAdapter(cfg.OpenAIAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai adapter: %w", err)
		}
		adapters = append(adapters, a)
	}

	if cfg.GoogleAPIKey != "" {
		a, err := adapter.NewGoogleAdapter(ctx, cfg.GoogleAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create google adapter: %w", err)
		}
		adapters = append(adapters, a)
	}

	if cfg.CustomBaseURL != "" {
		a, err := adapter.NewCompatibleAdapter("custom", cfg.CustomBaseURL, cfg.CustomAPIKey, aliases.Providers["custom"])
		if err != nil {
			return nil, fmt.Errorf("failed to create custom adapter: %w", err)
		}
		adapters = append(adapters, a)
	}

	return adapters, nil
}

// newRunner builds a plan runner. With useMock, or when no provider is
// configured, every model is served by the mock adapter.
func newRunner(ctx context.Context, cfg *config.Config, useMock bool) (*pipeline.Runner, error) {
	opts := []pipeline.Option{
		pipeline.WithAliases(aliases),
		pipeline.WithRetry(cfg.RoutingConfig.Retry),
		pipeline.WithTemperature(cfg.RoutingConfig.Temperature),
		pipeline.WithLogger(logger),
	}

	if useMock {
		opts = append(opts, pipeline.WithAdapter(adapter.NewMockAdapter()))
		return pipeline.NewRunner(opts...), nil
	}

	adapters, err := createAdapters(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if len(adapters) == 0 {
		return nil, fmt.Errorf("no model provider configured; set an API key or use --mock")
	}
	for _, a := range adapters {
		opts = append(opts, pipeline.WithAdapter(a))
	}
	if fb := cfg.RoutingConfig.Models.Fallback; fb != "" {
		if model := firstModelOfFamily(newModelRouter(cfg, false).Available(), fb); model != "" {
			opts = append(opts, pipeline.WithFallbackModel(model))
		}
	}
	return pipeline.NewRunner(opts...), nil
}

package main

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bryanwahyu/healthsync/internal/config"
	domai "github.com/bryanwahyu/healthsync/internal/domain/ai"
	"github.com/bryanwahyu/healthsync/internal/infra/ai/gemini"
	openaiclient "github.com/bryanwahyu/healthsync/internal/infra/ai/openai"
	"github.com/bryanwahyu/healthsync/internal/infra/ai/prompt"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "healthsync",
		Short:         "Lab report analysis API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", configPath(), "path to config.yaml")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(analyzeCmd())

	if err := rootCmd.Execute(); err != nil {
		logger := newLogger("info", false)
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func configPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "config.yaml"
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

func newLogger(level string, pretty bool) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if pretty || os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return logger.Level(lvl)
}

// newAIClient returns nil when no key is configured, which makes the
// analysis service fall back to demo results.
func newAIClient(ctx context.Context, provider, apiKey, model, baseURL string) (domai.Client, error) {
	switch provider {
	case "local":
		return prompt.LocalAnalyzer{}, nil
	case "openai":
		if apiKey == "" {
			return nil, nil
		}
		if baseURL != "" {
			return openaiclient.NewClientWithBaseURL(apiKey, model, baseURL), nil
		}
		return openaiclient.NewClient(apiKey, model), nil
	default:
		if apiKey == "" {
			return nil, nil
		}
		c, err := gemini.NewClientWithBaseURL(ctx, apiKey, model, baseURL)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

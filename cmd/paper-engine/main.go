// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-engine CLI.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-engine/internal/logging"
	"github.com/pdiddy/paper-engine/internal/secrets"
	"github.com/pdiddy/paper-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// secretsDir holds one file per credential, named after the key.
const secretsDir = ".secrets/"

// Loaded by the root command before any subcommand runs.
var (
	cfg    types.PipelineConfig
	logger = zap.NewNop()
)

// rootCmd is the base command for the paper-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-engine",
	Short: "Turn drafts into formatted English and Chinese papers",
	Long: `paper-engine reads a draft (text or PDF), infers its topic, gathers
references from arXiv, OpenAlex, and an optional web search page, asks an
OpenAI-compatible model to write the paper in English and Chinese, and strips
AI-style artifacts from the replies before writing <base>_SCI_EN.txt and
<base>_SCI_CN.txt.

The formatter, search, and topic stages are also available as their own
subcommands.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		l, err := logging.New(c.LogLevel)
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		logger = l

		s, err := secrets.Load(secretsDir, logger)
		if err != nil {
			return err
		}
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", zap.Strings("keys", keys))
		}
		secrets.Apply(&c, s)

		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		cfg = c
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync(logger)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-engine.yaml or ~/.config/paper-engine/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Ignoring .env:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	configure(viper.GetViper(), cfgFile)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintln(os.Stderr, "Reading config file:", err)
	}
}

// configure points v at the config file and environment and registers the
// defaults. Registering every key lets PAPER_ENGINE_* variables override
// settings the file leaves out.
func configure(v *viper.Viper, cfgFile string) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("paper-engine")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "paper-engine"))
		}
	}

	v.SetEnvPrefix("PAPER_ENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := types.DefaultPipelineConfig()
	defaults := map[string]any{
		"log_level": d.LogLevel,

		"search.timeout":             d.Search.Timeout,
		"search.user_agent":          d.Search.UserAgent,
		"search.max_retries":         d.Search.MaxRetries,
		"search.max_results":         d.Search.MaxResults,
		"search.enable_arxiv":        d.Search.EnableArxiv,
		"search.enable_openalex":     d.Search.EnableOpenAlex,
		"search.openalex_email":      d.Search.OpenAlexEmail,
		"search.web.url_template":    d.Search.Web.URLTemplate,
		"search.web.result_selector": d.Search.Web.ResultSelector,
		"search.web.link_selector":   d.Search.Web.LinkSelector,
		"search.web.min_card_length": d.Search.Web.MinCardLength,
		"search.inter_backend_delay": d.Search.InterBackendDelay,
		"search.recency_bias_window": d.Search.RecencyBiasWindow,
		"search.cache_size":          d.Search.CacheSize,
		"search.references_file":     d.Search.ReferencesFile,

		"generation.base_url":    d.Generation.BaseURL,
		"generation.model":       d.Generation.Model,
		"generation.api_key":     d.Generation.APIKey,
		"generation.max_retries": d.Generation.MaxRetries,
		"generation.retry_delay": d.Generation.RetryDelay,
		"generation.timeout":     d.Generation.Timeout,
		"generation.max_tokens":  d.Generation.MaxTokens,
		"generation.temperature": d.Generation.Temperature,
		"generation.stream":      d.Generation.Stream,
		"generation.max_workers": d.Generation.MaxWorkers,
		"generation.output_dir":  d.Generation.OutputDir,

		"format.strict_header_collapse": d.Format.StrictHeaderCollapse,

		"store.dir":              d.Store.Dir,
		"store.disabled":         d.Store.Disabled,
		"store.search_cache_ttl": d.Store.SearchCacheTTL,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// loadConfig decodes v over the default configuration.
func loadConfig(v *viper.Viper) (types.PipelineConfig, error) {
	c := types.DefaultPipelineConfig()
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decoding configuration: %w", err)
	}
	return c, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the propverify CLI. It generates
// property verification reports from case files and delivers them: saved
// locally, previewed, printed, or uploaded.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/propverify/internal/observability"
	"github.com/pdiddy/propverify/internal/secrets"
	"github.com/pdiddy/propverify/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is the effective configuration after defaults, file, and env.
	cfg = types.DefaultConfig()

	// loadedSecrets holds API keys loaded from .secrets/ at startup.
	loadedSecrets secrets.Secrets

	logger = zap.NewNop()
)

// rootCmd is the base command for the propverify CLI.
var rootCmd = &cobra.Command{
	Use:   "propverify",
	Short: "Generate and deliver property verification reports",
	Long: `propverify turns a property verification case (registration details,
title records, tax details, and risk observations) into a paginated A4 PDF
report.

generate runs the full pipeline: an optional model-written risk conclusion,
page rendering, headless browser capture, and PDF assembly. The finished
report can be saved, previewed, printed, or uploaded. serve runs the upload
endpoint that receives reports.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("decoding configuration: %w", err)
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Log.Level = lvl
		}
		logger = observability.NewLogger(cfg.Log, os.Stderr)

		s, err := secrets.Load(".secrets/", logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./propverify.yaml or ~/.config/propverify/propverify.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("propverify")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "propverify"))
		}
	}

	setDefaults(viper.GetViper(), types.DefaultConfig())

	viper.SetEnvPrefix("PROPVERIFY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every configuration key so environment variables
// can override keys that no config file mentions.
func setDefaults(v *viper.Viper, d types.Config) {
	defaults := map[string]any{
		"summarizer.backend":      string(d.Summarizer.Backend),
		"summarizer.model":        d.Summarizer.Model,
		"summarizer.api_key":      d.Summarizer.APIKey,
		"summarizer.max_tokens":   d.Summarizer.MaxTokens,
		"summarizer.timeout":      d.Summarizer.Timeout,
		"capture.backend":         string(d.Capture.Backend),
		"capture.scale":           d.Capture.Scale,
		"capture.workers":         d.Capture.Workers,
		"capture.chrome_path":     d.Capture.ChromePath,
		"capture.timeout":         d.Capture.Timeout,
		"document.page_width":     d.Document.PageWidth,
		"document.page_height":    d.Document.PageHeight,
		"document.title":          d.Document.Title,
		"document.author":         d.Document.Author,
		"delivery.output_dir":     d.Delivery.OutputDir,
		"delivery.upload_url":     d.Delivery.UploadURL,
		"delivery.print_command":  d.Delivery.PrintCommand,
		"delivery.open_command":   d.Delivery.OpenCommand,
		"delivery.timeout":        d.Delivery.Timeout,
		"server.addr":             d.Server.Addr,
		"server.storage_dir":      d.Server.StorageDir,
		"server.ledger_path":      d.Server.LedgerPath,
		"server.public_base_url":  d.Server.PublicBaseURL,
		"server.max_upload_bytes": d.Server.MaxUploadBytes,
		"log.level":               d.Log.Level,
		"log.format":              d.Log.Format,
		"log.file":                d.Log.File,
		"log.max_size_mb":         d.Log.MaxSizeMB,
		"log.max_backups":         d.Log.MaxBackups,
		"log.max_age_days":        d.Log.MaxAgeDays,
		"log.compress":            d.Log.Compress,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

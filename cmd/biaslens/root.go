package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/biaslens/biaslens/internal/api"
	"github.com/biaslens/biaslens/internal/config"
	"github.com/biaslens/biaslens/internal/home"
	"github.com/biaslens/biaslens/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "biaslens",
	Short: "Bias detection for written text",
	Long: `Biaslens detects biased language in written text.

Two analysis backends are available:
  - A multi-label classifier served from a local container, scoring each
    clause against eleven bias categories
  - A generative LLM backend that locates biased spans and suggests
    neutral revisions

Results are persisted per user so past analyses can be listed and
retrieved later.`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.biaslens/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "biaslens home directory (default: ~/.biaslens)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "json", "output format: json or yaml",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write a config file with default values to the biaslens home
directory. Existing config files are left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := getHome()
		if err != nil {
			return err
		}
		if h.ConfigExists() {
			return fmt.Errorf("config already exists at %s", h.ConfigPath())
		}
		if err := config.WriteDefault(h.ConfigPath()); err != nil {
			return err
		}
		fmt.Printf("Wrote default config to %s\n", h.ConfigPath())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
}

// getHome returns the home directory manager.
func getHome() (*home.Dir, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}
	if err := h.EnsureExists(); err != nil {
		return nil, fmt.Errorf("failed to create home directory: %w", err)
	}
	return h, nil
}

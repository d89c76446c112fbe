// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the taskdeck CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/taskdeck/internal/board"
	"github.com/pdiddy/taskdeck/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the taskdeck CLI.
var rootCmd = &cobra.Command{
	Use:   "taskdeck",
	Short: "Project task boards, templates, and review tooling",
	Long: `taskdeck manages per-project task boards stored under a project's
.taskdeck/ directory. It covers the full task lifecycle (create, move,
update, import from markdown), reusable task templates with
{{key=value}} placeholders, an encrypted credential vault, full-text
task search, a shell command guard, and GitLab merge-request review.

Select a project with --project (a directory path or a registered
project name); without it the current directory is used.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./taskdeck.yaml or ~/.config/taskdeck/config.yaml)")
	rootCmd.PersistentFlags().StringP("project", "p", "", "project directory or registered project name")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("taskdeck")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "taskdeck"))
		}
	}

	viper.SetEnvPrefix("TASKDECK")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// appConfig assembles the component configuration from viper.
func appConfig() types.Config {
	return types.Config{
		Registry: types.RegistryConfig{
			Path: viper.GetString("registry.path"),
		},
		Templates: types.TemplateConfig{
			GlobalDir: viper.GetString("templates.global_dir"),
		},
		Vault: types.VaultConfig{
			KeyFile: viper.GetString("vault.key_file"),
		},
		Index: types.IndexConfig{
			MaxResults: viper.GetInt("index.max_results"),
		},
		Guard: types.GuardConfig{
			StrictMode: viper.GetBool("guard.strict_mode"),
		},
		GitLab: types.GitLabConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("gitlab.timeout"),
				UserAgent: viper.GetString("gitlab.user_agent"),
			},
			MaxRetries: viper.GetInt("gitlab.max_retries"),
		},
	}
}

// projectDir resolves the --project flag: an existing directory is used
// directly, anything else is looked up in the project registry, and an
// empty flag selects the current directory.
func projectDir(cmd *cobra.Command) (string, error) {
	selector, _ := cmd.Flags().GetString("project")
	if selector == "" {
		return os.Getwd()
	}

	if info, err := os.Stat(selector); err == nil && info.IsDir() {
		return filepath.Abs(selector)
	}

	registry, err := board.NewRegistry(appConfig().Registry)
	if err != nil {
		return "", err
	}
	project, err := registry.Get(selector)
	if err != nil {
		return "", err
	}
	return project.Path, nil
}

// truncate shortens s to max runes, marking the cut with an ellipsis.
// Rune-based so multi-byte titles are never split mid-character.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

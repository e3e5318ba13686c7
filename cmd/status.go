// Copyright (c) 2025 Gridmove
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"
	"strings"

	"gridmove/cli/internal/config"
	"gridmove/cli/internal/logging"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// statusCmd represents the status command for displaying the current
// configuration. It shows the configured base, server and workspace along
// with where each API key comes from, with the keys themselves masked.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configured source base and destination workspace",
	Long: `The status command displays the configured Airtable base, Grist server and
workspace, and whether each API key is available from the environment or the
OS keychain. API keys are never printed in full.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		airtableKey := resolveAirtableKey()
		gristKey := resolveGristKey()

		keySource := func(envName, key string) string {
			if key == "" {
				return "not configured - run 'gridmove connect'"
			}
			if strings.TrimSpace(os.Getenv(envName)) != "" {
				return fmt.Sprintf("%s (from %s)", logging.MaskKey(key), envName)
			}
			return fmt.Sprintf("%s (from OS keychain)", logging.MaskKey(key))
		}

		base := cfg.Airtable.BaseID
		if base == "" {
			base = "not configured"
		}
		workspace := "not configured"
		if cfg.Grist.WorkspaceID != 0 {
			workspace = fmt.Sprintf("%d", cfg.Grist.WorkspaceID)
		}

		lines := []string{
			"Airtable base:  " + base,
			"Airtable key:   " + keySource("AIRTABLE_API_KEY", airtableKey),
			"Grist server:   " + cfg.Grist.ServerURL,
			"Grist key:      " + keySource("GRIST_API_KEY", gristKey),
			"Workspace:      " + workspace,
		}

		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Gridmove Configuration")).
			WithPadding(1).
			Println(strings.Join(lines, "\n"))
		pterm.Println()
		pterm.Println("To update this configuration, run: gridmove connect")
		pterm.Println()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

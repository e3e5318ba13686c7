// Copyright (c) 2025 Gridmove
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"

	"gridmove/cli/internal/airtable"
	"gridmove/cli/internal/config"
	"gridmove/cli/internal/httperrors"
	"gridmove/cli/internal/migrate"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// inspectCmd represents the inspect command for previewing the source base.
// It lists the base's tables and fields together with the Grist column type
// each field will translate to, so the user can see what a migration would
// create before running one.
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "List the source base's tables and their translated column types",
	Long: `The inspect command fetches the configured Airtable base's schema and prints
every table with its fields, each annotated with the Grist column type the
migration will create for it. No data is read and nothing is written.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.Airtable.BaseID == "" {
			pterm.Println("⚠️  No Airtable base configured.")
			pterm.Println("   Please run: gridmove connect")
			return nil
		}
		apiKey := resolveAirtableKey()
		if apiKey == "" {
			pterm.Println("⚠️  No Airtable API key configured.")
			pterm.Println("   Please run: gridmove connect")
			return nil
		}

		client := airtable.NewClient(apiKey)
		tables, err := client.BaseSchema(cmd.Context(), cfg.Airtable.BaseID)
		if err != nil {
			return httperrors.FormatNetworkError(err, "fetching the base schema from "+httperrors.ExtractHostFromURL(airtable.DefaultBaseURL))
		}
		if len(tables) == 0 {
			return errors.New("the base has no tables")
		}

		pterm.Println()
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprintf("Base %s - %d tables", cfg.Airtable.BaseID, len(tables)))
		pterm.Println()
		for _, table := range tables {
			pterm.Println(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(table.Name) +
				pterm.NewStyle(pterm.FgGray).Sprintf("  (%s)", table.ID))
			items := make([]pterm.BulletListItem, len(table.Fields))
			for i, field := range table.Fields {
				colType, _ := migrate.TranslateFieldType(field)
				items[i] = pterm.BulletListItem{
					Level: 0,
					Text:  fmt.Sprintf("%s  %s → %s", field.Name, field.Type, colType),
				}
			}
			_ = pterm.DefaultBulletList.WithItems(items).Render()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

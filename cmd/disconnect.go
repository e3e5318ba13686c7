// Copyright (c) 2025 Gridmove
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"gridmove/cli/internal/keychain"

	"github.com/spf13/cobra"
)

// disconnectCmd removes the stored API keys from the OS keychain. The config
// file (base, server, workspace) is left in place so a later 'connect' offers
// the previous values as defaults.
var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Remove the stored Airtable and Grist API keys",
	Long: `The disconnect command deletes both API keys from the OS keychain. Non-secret
settings (base id, server URL, workspace id) stay in the config file and are
offered as defaults the next time you run 'gridmove connect'.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := keychain.GetManager()
		if err != nil {
			fmt.Println("⚠️  Secure storage is not available on this system; nothing to remove.")
			return nil
		}
		if err := km.ClearAll(); err != nil {
			fmt.Println("❌ Failed to remove the stored API keys.")
			return err
		}
		fmt.Println("✅ Stored API keys removed.")
		fmt.Println("   Run 'gridmove connect' to configure new credentials.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(disconnectCmd)
}

// Copyright (c) 2025 Gridmove
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gridmove/cli/internal/airtable"
	"gridmove/cli/internal/config"
	"gridmove/cli/internal/grist"
	"gridmove/cli/internal/keychain"
	"gridmove/cli/internal/logging"
	"gridmove/cli/internal/terminal"

	"github.com/spf13/cobra"
)

// connectCmd represents the connect command for configuring service credentials.
// It prompts the user for the Airtable and Grist API keys plus the source base
// and destination workspace, verifies both services are reachable with those
// keys, then stores the keys securely in the OS keychain and the non-secret
// settings in the config file.
var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Configure and verify Airtable and Grist credentials",
	Long: `The connect command prompts for an Airtable API key, the source base id,
a Grist server URL, a Grist API key and the destination workspace id. Both API
keys are verified against their service before anything is saved. The keys are
stored in the OS keychain; base, server and workspace go to the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		reader := bufio.NewReader(os.Stdin)

		// Secrets are read first and wiped from the terminal right after.
		promptText := "Enter Airtable API key (pat...): "
		fmt.Print(promptText)
		airtableKey, _ := reader.ReadString('\n')
		airtableKey = strings.TrimSpace(airtableKey)
		terminal.ClearPreviousLines(len(promptText) + len(airtableKey))
		if airtableKey == "" {
			return errors.New("Airtable API key is required")
		}
		fmt.Printf("Airtable API key: %s\n", logging.MaskKey(airtableKey))

		baseID := promptWithDefault(reader, "Airtable base id", cfg.Airtable.BaseID)
		if baseID == "" {
			return errors.New("Airtable base id is required")
		}

		serverURL := promptWithDefault(reader, "Grist server URL", cfg.Grist.ServerURL)

		promptText = "Enter Grist API key: "
		fmt.Print(promptText)
		gristKey, _ := reader.ReadString('\n')
		gristKey = strings.TrimSpace(gristKey)
		terminal.ClearPreviousLines(len(promptText) + len(gristKey))
		if gristKey == "" {
			return errors.New("Grist API key is required")
		}
		fmt.Printf("Grist API key:    %s\n", logging.MaskKey(gristKey))

		workspaceDefault := ""
		if cfg.Grist.WorkspaceID != 0 {
			workspaceDefault = strconv.FormatInt(cfg.Grist.WorkspaceID, 10)
		}
		workspaceRaw := promptWithDefault(reader, "Grist workspace id", workspaceDefault)
		workspaceID, err := strconv.ParseInt(workspaceRaw, 10, 64)
		if err != nil {
			fmt.Println("❌ Workspace id must be a number.")
			return err
		}

		// Verify both services before saving anything.
		stopSpinner := startInlineSpinner(os.Stdout, "verifying credentials", []string{"-", "\\", "|", "/"}, 100*time.Millisecond)
		startTime := time.Now()

		verifyErr := func() error {
			at := airtable.NewClient(airtableKey)
			if err := at.Whoami(ctx); err != nil {
				return fmt.Errorf("Airtable: %w", err)
			}
			gr := grist.NewClient(serverURL, gristKey)
			if err := gr.CheckAccess(ctx); err != nil {
				return fmt.Errorf("Grist: %w", err)
			}
			return nil
		}()

		// Keep the spinner visible for a moment so the check reads as real work
		if elapsed := time.Since(startTime); elapsed < 2*time.Second {
			time.Sleep(2*time.Second - elapsed)
		}
		stopSpinner()

		if verifyErr != nil {
			fmt.Println("❌ Credential verification failed.")
			fmt.Println("   " + logging.PresentError("", verifyErr))
			return verifyErr
		}

		// Save keys securely in the OS keychain
		km, err := keychain.GetManager()
		if err != nil {
			fmt.Println("❌ Secure storage is not available on this system.")
			fmt.Println("   Keychain is only supported on macOS and Windows.")
			fmt.Println("   Credentials verified but not saved.")
			return err
		}
		if err := km.SaveAirtableAPIKey(airtableKey); err != nil {
			fmt.Println("❌ Failed to save the Airtable API key securely.")
			return err
		}
		if err := km.SaveGristAPIKey(gristKey); err != nil {
			fmt.Println("❌ Failed to save the Grist API key securely.")
			return err
		}

		cfg.Airtable.BaseID = baseID
		cfg.Grist.ServerURL = serverURL
		cfg.Grist.WorkspaceID = workspaceID
		if err := config.Save(cfg); err != nil {
			fmt.Println("❌ Failed to save configuration.")
			return err
		}

		fmt.Println("✅ Credentials verified and saved!")
		fmt.Println("   You're ready to run 'gridmove migrate'")
		return nil
	},
}

// promptWithDefault asks for a value, showing and falling back to the current
// one when the user just presses Enter.
func promptWithDefault(reader *bufio.Reader, label, current string) string {
	if current != "" {
		fmt.Printf("%s [%s]: ", label, current)
	} else {
		fmt.Printf("%s: ", label)
	}
	v, _ := reader.ReadString('\n')
	v = strings.TrimSpace(v)
	if v == "" {
		return current
	}
	return v
}

func init() {
	rootCmd.AddCommand(connectCmd)
}

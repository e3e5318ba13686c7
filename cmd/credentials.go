// Copyright (c) 2025 Gridmove
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"
	"strings"

	"gridmove/cli/internal/keychain"
)

// resolveAirtableKey returns the Airtable API key from the environment or,
// failing that, the OS keychain. Empty string means not configured.
func resolveAirtableKey() string {
	if env := os.Getenv("AIRTABLE_API_KEY"); strings.TrimSpace(env) != "" {
		return strings.TrimSpace(env)
	}
	if km, err := keychain.GetManager(); err == nil {
		if v, err := km.LoadAirtableAPIKey(); err == nil && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// resolveGristKey returns the Grist API key from the environment or, failing
// that, the OS keychain. Empty string means not configured.
func resolveGristKey() string {
	if env := os.Getenv("GRIST_API_KEY"); strings.TrimSpace(env) != "" {
		return strings.TrimSpace(env)
	}
	if km, err := keychain.GetManager(); err == nil {
		if v, err := km.LoadGristAPIKey(); err == nil && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

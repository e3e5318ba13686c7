// Copyright (c) 2025 Gridmove
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package logging provides utilities for secure logging and error presentation.
// It includes functions for masking sensitive information in log messages and
// formatting errors for user-friendly display while protecting credentials.
//
// The package helps ensure that sensitive data like API keys and bearer tokens
// are not accidentally exposed in logs or error messages shown to users. Both
// services authenticate with long-lived API keys, so a leaked message is a
// leaked credential.
package logging

import (
	"regexp"
)

var (
	reToken  = regexp.MustCompile(`(?i)(token=|bearer\s+)([A-Za-z0-9._-]+)`)
	reAPIKey = regexp.MustCompile(`(?i)(apikey=|api_key=)([^\s;&]+)`)
	// Airtable personal access tokens are self-identifying: pat<14 chars>.<32 hex>
	reAirtablePAT = regexp.MustCompile(`\bpat[A-Za-z0-9]{14}\.[0-9a-f]{32}\b`)
)

// Mask replaces sensitive values in the input string with "*".
// Airtable personal access tokens are masked wherever they appear, even
// outside key=value pairs. The api_key pattern also covers env-style
// assignments like AIRTABLE_API_KEY=... and GRIST_API_KEY=....
func Mask(s string) string {
	out := s
	out = reToken.ReplaceAllString(out, "$1***")
	out = reAPIKey.ReplaceAllString(out, "$1***")
	out = reAirtablePAT.ReplaceAllString(out, "pat***")
	return out
}

// MaskKey shortens an API key for display, keeping only a recognizable prefix.
func MaskKey(key string) string {
	if len(key) <= 6 {
		return "***"
	}
	return key[:6] + "***"
}

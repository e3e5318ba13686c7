// Copyright (c) 2025 Gridmove
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors turns low-level network failures from the Airtable and
// Grist clients into actionable messages. Both services sit behind plain
// HTTPS, so the interesting distinctions are timeout, DNS, refused
// connections, TLS problems and server-side 5xx.
package httperrors

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

// FormatNetworkError prints a troubleshooting message for err and returns a
// wrapped error for the caller to propagate. context describes the attempted
// operation, e.g. "fetching the base schema from api.airtable.com".
func FormatNetworkError(err error, context string) error {
	if err == nil {
		return nil
	}

	switch classify(err) {
	case kindTimeout:
		show("⏱️  Connection timed out while "+context,
			"The server took too long to respond.",
			"Check your connection and try again in a few moments.")
	case kindDNS:
		show("🌐 Cannot resolve the server address while "+context,
			"The host name did not resolve.",
			"Check your connection, and that the Grist server URL in 'gridmove status' is spelled correctly.")
	case kindRefused:
		show("🚫 Connection refused while "+context,
			"The server is not accepting connections on that address.",
			"A self-hosted Grist server may be down, or the URL may point at the wrong port.")
	case kindTLS:
		show("🔒 Secure connection failed while "+context,
			"The HTTPS handshake did not complete.",
			"Check the system clock and any proxy that intercepts TLS.")
	case kindServer:
		show("⚠️  Server error while "+context,
			"The remote service reported an internal error; this is not a problem with your setup.",
			"Try again in a few minutes.")
	default:
		show("❌ Cannot reach the service while "+context,
			trim(err.Error()),
			"Check your connection and that the service is reachable from this network.")
	}

	return fmt.Errorf("network error: %w", err)
}

// ExtractHostFromURL returns the host part of a URL for use in error
// contexts, or "server" when the URL cannot be parsed.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}

type errorKind int

const (
	kindGeneric errorKind = iota
	kindTimeout
	kindDNS
	kindRefused
	kindTLS
	kindServer
)

func classify(err error) errorKind {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return kindTimeout
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return kindDNS
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return kindRefused
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return kindTimeout
	case strings.Contains(msg, "connection refused"):
		return kindRefused
	case strings.Contains(msg, "tls") || strings.Contains(msg, "certificate") || strings.Contains(msg, "handshake"):
		return kindTLS
	case strings.Contains(msg, " 500 ") || strings.Contains(msg, " 502 ") ||
		strings.Contains(msg, " 503 ") || strings.Contains(msg, " 504 ") ||
		strings.Contains(msg, "internal server error") || strings.Contains(msg, "bad gateway") ||
		strings.Contains(msg, "service unavailable"):
		return kindServer
	}
	return kindGeneric
}

func show(headline, cause, advice string) {
	pterm.Println(headline)
	pterm.Println()
	pterm.Println("  " + cause)
	pterm.Println("  " + pterm.NewStyle(pterm.FgYellow).Sprint("→ "+advice))
	pterm.Println()
}

func trim(s string) string {
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}

// Copyright (C) 2025 Mono Technologies Inc.
//
// This program is free software; you can redistribute it and/or
// modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.

// Package validation provides reusable validation helpers for l23net
// configuration and discovered values.
package validation

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
)

// MaxInterfaceNameLen is IFNAMSIZ minus the terminating NUL.
const MaxInterfaceNameLen = 15

var domainRegex = regexp.MustCompile(`^(\*\.)?([a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)

// ValidatePort validates that a port number is in the valid range [1, 65535].
func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port %d out of valid range [1, 65535]", port)
	}
	return nil
}

// ValidateIP validates that a string is a valid IPv4 or IPv6 address.
func ValidateIP(ip string) error {
	if ip == "" {
		return fmt.Errorf("IP address cannot be empty")
	}

	if net.ParseIP(ip) == nil {
		return fmt.Errorf("invalid IP address: %s", ip)
	}

	return nil
}

// ValidateDomain validates a DNS domain name.
// Allows standard domain names and wildcards (e.g., "*.example.com").
func ValidateDomain(domain string) error {
	if domain == "" {
		return nil
	}

	if !domainRegex.MatchString(domain) {
		return fmt.Errorf("invalid domain name: %s", domain)
	}

	// RFC 1035: max 253 characters
	if len(domain) > 253 {
		return fmt.Errorf("domain name too long: %s (max 253 characters)", domain)
	}

	labels := strings.Split(strings.TrimPrefix(domain, "*."), ".")
	for _, label := range labels {
		if len(label) > 63 {
			return fmt.Errorf("domain label too long in %s (max 63 characters per label)", domain)
		}
	}

	return nil
}

// ValidateMTU validates that an MTU value is within reasonable bounds.
// RFC 791: Minimum IPv4 MTU is 68 bytes
func ValidateMTU(mtu int) error {
	if mtu < 68 || mtu > 65535 {
		return fmt.Errorf("MTU %d out of valid range [68, 65535]", mtu)
	}
	return nil
}

// ValidateVLANID validates that a VLAN ID is in the valid range [1, 4094].
// VLAN ID 0 is reserved for priority tagging, 4095 is reserved.
func ValidateVLANID(vlanID int) error {
	if vlanID < 1 || vlanID > 4094 {
		return fmt.Errorf("VLAN ID %d out of valid range [1, 4094]", vlanID)
	}
	return nil
}

// ValidateInterfaceName validates a kernel network interface name.
func ValidateInterfaceName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("interface name cannot be empty")
	case len(name) > MaxInterfaceNameLen:
		return fmt.Errorf("interface name %s too long (max %d characters)", name, MaxInterfaceNameLen)
	case name == "." || name == "..":
		return fmt.Errorf("invalid interface name %s", name)
	case strings.ContainsAny(name, "/: \t\n"):
		return fmt.Errorf("interface name %s contains invalid characters", name)
	}
	return nil
}

// ValidateEndpoint validates an endpoint in "host:port" format.
// Host can be an IP address or hostname. An empty host means all
// addresses, as accepted by net.Listen.
func ValidateEndpoint(endpoint string) error {
	if endpoint == "" {
		return nil
	}

	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint format %s (expected 'host:port'): %w", endpoint, err)
	}

	if host != "" && net.ParseIP(host) == nil {
		if err := ValidateDomain(host); err != nil {
			return fmt.Errorf("invalid endpoint host %s: %w", endpoint, err)
		}
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid endpoint port in %s: %w", endpoint, err)
	}

	if err := ValidatePort(port); err != nil {
		return fmt.Errorf("invalid endpoint port in %s: %w", endpoint, err)
	}

	return nil
}

// ValidateOVSDBEndpoint validates an OVSDB connection string:
// "unix:<path>", "tcp:<host>:<port>" or "ssl:<host>:<port>".
func ValidateOVSDBEndpoint(endpoint string) error {
	if endpoint == "" {
		return nil
	}

	scheme, rest, ok := strings.Cut(endpoint, ":")
	if !ok {
		return fmt.Errorf("invalid OVSDB endpoint %s (expected unix:, tcp: or ssl: prefix)", endpoint)
	}

	switch scheme {
	case "unix":
		if !strings.HasPrefix(rest, "/") {
			return fmt.Errorf("invalid OVSDB endpoint %s: socket path must be absolute", endpoint)
		}
		return nil
	case "tcp", "ssl":
		if rest == "" || strings.HasPrefix(rest, ":") {
			return fmt.Errorf("invalid OVSDB endpoint %s: host is required", endpoint)
		}
		if err := ValidateEndpoint(rest); err != nil {
			return fmt.Errorf("invalid OVSDB endpoint: %w", err)
		}
		return nil
	}
	return fmt.Errorf("invalid OVSDB endpoint %s: unsupported scheme %s", endpoint, scheme)
}

// ValidateOneOf validates that value is one of allowed. An empty value is
// accepted so that optional fields can fall back to defaults.
func ValidateOneOf(field, value string, allowed []string) error {
	if value == "" {
		return nil
	}

	for _, a := range allowed {
		if value == a {
			return nil
		}
	}

	return fmt.Errorf("invalid %s %s (must be one of: %s)", field, value, strings.Join(allowed, ", "))
}

// ValidateNonNegative validates that a numeric setting is not negative.
func ValidateNonNegative(field string, value int) error {
	if value < 0 {
		return fmt.Errorf("%s %d cannot be negative", field, value)
	}
	return nil
}

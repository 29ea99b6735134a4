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

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePort(t *testing.T) {
	tests := []struct {
		name      string
		port      int
		wantError bool
	}{
		{"valid port 80", 80, false},
		{"valid port 1", 1, false},
		{"valid port 65535", 65535, false},
		{"port too low", 0, true},
		{"port negative", -1, true},
		{"port too high", 65536, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePort(tt.port)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateIP(t *testing.T) {
	tests := []struct {
		name      string
		ip        string
		wantError bool
	}{
		{"valid IPv4", "192.168.1.1", false},
		{"valid IPv6", "2001:db8::1", false},
		{"loopback", "127.0.0.1", false},
		{"empty", "", true},
		{"hostname", "localhost", true},
		{"out of range", "256.1.1.1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIP(tt.ip)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDomain(t *testing.T) {
	tests := []struct {
		name      string
		domain    string
		wantError bool
	}{
		{"simple", "example.com", false},
		{"subdomain", "ovsdb.dc1.example.com", false},
		{"wildcard", "*.example.com", false},
		{"single label", "localhost", false},
		{"empty", "", false},
		{"underscore", "bad_host", true},
		{"leading hyphen", "-example.com", true},
		{"label too long", "a123456789012345678901234567890123456789012345678901234567890123.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDomain(tt.domain)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateMTU(t *testing.T) {
	tests := []struct {
		name      string
		mtu       int
		wantError bool
	}{
		{"minimum", 68, false},
		{"ethernet", 1500, false},
		{"jumbo", 9000, false},
		{"maximum", 65535, false},
		{"too small", 67, true},
		{"too large", 65536, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMTU(tt.mtu)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateVLANID(t *testing.T) {
	tests := []struct {
		name      string
		vlanID    int
		wantError bool
	}{
		{"valid VLAN 1", 1, false},
		{"valid VLAN 100", 100, false},
		{"valid VLAN 4094", 4094, false},
		{"reserved 0", 0, true},
		{"reserved 4095", 4095, true},
		{"negative", -1, true},
		{"too high", 5000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVLANID(tt.vlanID)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateInterfaceName(t *testing.T) {
	tests := []struct {
		name      string
		iface     string
		wantError bool
	}{
		{"physical", "eth0", false},
		{"vlan", "eth0.101", false},
		{"ovs bridge", "br-ex", false},
		{"fifteen characters", "abcdefghijklmno", false},
		{"empty", "", true},
		{"sixteen characters", "abcdefghijklmnop", true},
		{"dot", ".", true},
		{"dot dot", "..", true},
		{"slash", "eth/0", true},
		{"space", "eth 0", true},
		{"colon", "eth0:1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInterfaceName(tt.iface)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEndpoint(t *testing.T) {
	tests := []struct {
		name      string
		endpoint  string
		wantError bool
	}{
		{"IP with port", "127.0.0.1:9476", false},
		{"hostname with port", "agent.example.com:9476", false},
		{"IPv6 with port", "[::1]:9476", false},
		{"all addresses", ":9476", false},
		{"empty endpoint", "", false},
		{"missing port", "127.0.0.1", true},
		{"invalid port", "127.0.0.1:abc", true},
		{"port too high", "127.0.0.1:65536", true},
		{"port zero", "127.0.0.1:0", true},
		{"invalid hostname", "invalid_host:9476", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEndpoint(tt.endpoint)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateOVSDBEndpoint(t *testing.T) {
	tests := []struct {
		name      string
		endpoint  string
		wantError bool
	}{
		{"unix socket", "unix:/var/run/openvswitch/db.sock", false},
		{"tcp", "tcp:127.0.0.1:6640", false},
		{"ssl hostname", "ssl:ovsdb.example.com:6640", false},
		{"empty", "", false},
		{"no scheme", "/var/run/openvswitch/db.sock", true},
		{"relative socket", "unix:db.sock", true},
		{"tcp without host", "tcp::6640", true},
		{"tcp without port", "tcp:127.0.0.1", true},
		{"unknown scheme", "udp:127.0.0.1:6640", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOVSDBEndpoint(tt.endpoint)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateOneOf(t *testing.T) {
	allowed := []string{"vsctl", "ovsdb", "none"}

	assert.NoError(t, ValidateOneOf("ovs source", "ovsdb", allowed))
	assert.NoError(t, ValidateOneOf("ovs source", "", allowed))

	err := ValidateOneOf("ovs source", "snmp", allowed)
	if assert.Error(t, err) {
		assert.Equal(t, "invalid ovs source snmp (must be one of: vsctl, ovsdb, none)", err.Error())
	}
}

func TestValidateNonNegative(t *testing.T) {
	assert.NoError(t, ValidateNonNegative("timeout_ms", 0))
	assert.NoError(t, ValidateNonNegative("timeout_ms", 500))
	assert.EqualError(t, ValidateNonNegative("timeout_ms", -1), "timeout_ms -1 cannot be negative")
}

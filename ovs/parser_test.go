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

package ovs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bridgeListing = `_uuid               : 4f1c9a2e-1111-4d0e-9a51-0f6c1b9d0001
datapath_type       : ""
external_ids        : {bridge-id="br-ex"}
name                : br-ex
other_config        : {}
stp_enable          : true

_uuid               : 4f1c9a2e-1111-4d0e-9a51-0f6c1b9d0002
datapath_type       : netdev
external_ids        : {}
name                : "br-int"
other_config        : {hwaddr="aa:bb:cc:dd:ee:ff"}
stp_enable          : false
`

func TestParseBlocks(t *testing.T) {
	records, diags := ParseBlocks(strings.Split(bridgeListing, "\n"))
	assert.Empty(t, diags)
	require.Len(t, records, 2)

	assert.Equal(t, "br-ex", records["br-ex"]["name"])
	assert.Equal(t, "true", records["br-ex"]["stp_enable"])
	assert.Equal(t, "", records["br-ex"]["datapath_type"])
	assert.Equal(t, "{bridge-id=br-ex}", records["br-ex"]["external_ids"])
	assert.Equal(t, "netdev", records["br-int"]["datapath_type"])
}

func TestParseBlocksIgnoresExtraBlankLines(t *testing.T) {
	padded := "\n\n" + strings.ReplaceAll(bridgeListing, "\n\n", "\n\n\n  \n") + "\n\n"

	want, _ := ParseBlocks(strings.Split(bridgeListing, "\n"))
	got, diags := ParseBlocks(strings.Split(padded, "\n"))
	assert.Empty(t, diags)
	assert.Equal(t, want, got)
}

func TestParseBlocksDiagnostics(t *testing.T) {
	tests := []struct {
		name      string
		lines     []string
		records   []string
		diagLines []string
	}{
		{
			name:      "record without name",
			lines:     []string{"_uuid : 1234", "type : internal", "", "name : eth0"},
			records:   []string{"eth0"},
			diagLines: []string{""},
		},
		{
			name:      "misformatted line",
			lines:     []string{"name : eth0", "this is not a field", "mtu : 9000"},
			records:   []string{"eth0"},
			diagLines: []string{"this is not a field"},
		},
		{
			name:    "empty set",
			lines:   []string{"name : eth0", "trunks : []"},
			records: []string{"eth0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, diags := ParseBlocks(tt.lines)

			var names []string
			for name := range records {
				names = append(names, name)
			}
			assert.ElementsMatch(t, tt.records, names)

			require.Len(t, diags, len(tt.diagLines))
			for i, d := range diags {
				assert.Equal(t, Component, d.Component)
				assert.Equal(t, tt.diagLines[i], d.Line)
			}
		})
	}
}

func TestParseBlocksEmptySetBecomesEmptyString(t *testing.T) {
	records, _ := ParseBlocks([]string{"name : eth0", "trunks : []"})
	assert.Equal(t, "", records["eth0"]["trunks"])
}

func TestParseFlat(t *testing.T) {
	lines := []string{"br-ex", "  br-int  ", "", "eth0.101", "bond_0"}
	assert.Equal(t, []string{"br-ex", "br-int", "eth0.101", "bond_0"}, ParseFlat(lines))
	assert.Nil(t, ParseFlat(nil))
}

func TestParseOptHash(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{name: "empty", input: "{}", want: map[string]string{}},
		{name: "not a hash", input: "eth0", want: map[string]string{}},
		{name: "single", input: `{peer="patch-int"}`, want: map[string]string{"peer": "patch-int"}},
		{
			name:  "several",
			input: `{bond-detect-mode=miimon, bond-miimon-interval="100", lacp-time=fast}`,
			want: map[string]string{
				"bond-detect-mode":     "miimon",
				"bond-miimon-interval": "100",
				"lacp-time":            "fast",
			},
		},
		{name: "value with equals", input: `{key="a=b"}`, want: map[string]string{"key": "a=b"}},
		{name: "key without value", input: `{flag}`, want: map[string]string{"flag": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseOptHash(tt.input))
		})
	}
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, splitLines([]byte("")))
	assert.Nil(t, splitLines([]byte("\n")))
	assert.Equal(t, []string{"a", "b"}, splitLines([]byte("a\r\nb\n")))
}

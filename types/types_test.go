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

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMTU(t *testing.T) {
	tests := []struct {
		name string
		mtu  int
		want *int
	}{
		{"default is absent", 1500, nil},
		{"jumbo", 9000, Ptr(9000)},
		{"small", 1400, Ptr(1400)},
		{"zero is absent", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeMTU(tt.mtu))
		})
	}
}

func TestTagsAdd(t *testing.T) {
	var tags Tags
	tags.Add(TagBond, TagUnremovable)
	tags.Add(TagBond, TagBridgeSlave)

	assert.Equal(t, Tags{TagBond, TagUnremovable, TagBridgeSlave}, tags)
	assert.True(t, tags.Has(TagBridgeSlave))
	assert.False(t, tags.Has(TagJack))
}

func TestPortOmitsAbsentValues(t *testing.T) {
	port := Port{Name: "eth0", Provider: ProviderNative}

	data, err := json.Marshal(port)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "eth0", decoded["name"])
	assert.NotContains(t, decoded, "mtu")
	assert.NotContains(t, decoded, "admin_up")
	assert.NotContains(t, decoded, "vendor_specific")
}

func TestBondPropertiesModeFields(t *testing.T) {
	props := BondProperties{Mode: "active-backup", Miimon: "100"}

	data, err := json.Marshal(props)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "xmit_hash_policy")
	assert.NotContains(t, string(data), "lacp_rate")
}

func TestVendorSpecificIsEmpty(t *testing.T) {
	var nilVendor *VendorSpecific
	assert.True(t, nilVendor.IsEmpty())
	assert.True(t, (&VendorSpecific{}).IsEmpty())
	assert.False(t, (&VendorSpecific{DatapathType: "system"}).IsEmpty())
}

func TestSortedKeys(t *testing.T) {
	m := map[string]int{"br2": 1, "br-ex": 2, "br1": 3}
	assert.Equal(t, []string{"br-ex", "br1", "br2"}, SortedKeys(m))
}

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

	"github.com/we-are-mono/l23net/types"
)

func newShowInventory(t *testing.T) *Inventory {
	t.Helper()
	tree, diags := ParseTree(strings.Split(showOutput, "\n"))
	require.Empty(t, diags)

	inv := NewInventory()
	inv.Available = true
	inv.Tree = tree
	inv.Bridges["br-ex"] = BridgeRecord{Name: "br-ex", STP: true, DatapathType: "netdev"}
	inv.Ports["vlan101"] = PortRecord{Name: "vlan101", Tag: types.Ptr(101)}
	inv.Ports["bond0"] = PortRecord{Name: "bond0", Trunks: []string{"10", "20"}}
	inv.Interfaces["eth0"] = InterfaceRecord{Name: "eth0", MTU: types.Ptr(9000)}
	inv.Interfaces["eth1"] = InterfaceRecord{Name: "eth1", MTU: types.Ptr(9000)}
	inv.Interfaces["br-ex"] = InterfaceRecord{Name: "br-ex", Type: "internal", Provider: types.ProviderOVS}
	inv.Interfaces["patch-ex-int"] = InterfaceRecord{
		Name:     "patch-ex-int",
		Type:     "patch",
		Provider: types.ProviderOVS,
		Options:  map[string]string{"peer": "patch-int-ex"},
	}
	inv.Interfaces["vlan101"] = InterfaceRecord{Name: "vlan101", Type: "internal", Provider: types.ProviderOVS}
	return inv
}

func TestBuildConfigBridges(t *testing.T) {
	cfg := BuildConfig(newShowInventory(t))

	require.Len(t, cfg.Bridges, 2)
	ex := cfg.Bridges["br-ex"]
	assert.Equal(t, types.BridgeKindOVS, ex.Kind)
	assert.True(t, ex.STP)
	require.NotNil(t, ex.Vendor)
	assert.Equal(t, "netdev", ex.Vendor.DatapathType)

	assert.False(t, cfg.Bridges["br-int"].STP)
	assert.Nil(t, cfg.Bridges["br-int"].Vendor)
}

func TestBuildConfigPorts(t *testing.T) {
	cfg := BuildConfig(newShowInventory(t))
	require.Len(t, cfg.Ports, 4)

	tests := []struct {
		port     string
		tags     types.Tags
		provider types.Provider
		bridge   string
		mtu      *int
	}{
		{port: "br-ex", tags: types.Tags{types.TagBridge, types.TagInternal}, provider: types.ProviderOVS, bridge: "br-ex"},
		{port: "bond0", tags: types.Tags{types.TagBond}, provider: types.ProviderOVS, bridge: "br-ex", mtu: types.Ptr(9000)},
		{port: "patch-ex-int", tags: types.Tags{types.TagJack}, provider: types.ProviderOVS, bridge: "br-ex"},
		{port: "vlan101", tags: types.Tags{types.TagInternal, types.TagVLAN}, provider: types.ProviderOVS, bridge: "br-int"},
	}

	for _, tt := range tests {
		t.Run(tt.port, func(t *testing.T) {
			p := cfg.Ports[tt.port]
			require.NotNil(t, p)
			assert.Equal(t, tt.tags, p.Tags)
			assert.Equal(t, tt.provider, p.Provider)
			assert.Equal(t, tt.bridge, p.Bridge)
			assert.Equal(t, tt.mtu, p.MTU)
		})
	}

	patch := cfg.Ports["patch-ex-int"]
	require.NotNil(t, patch.Vendor)
	assert.Equal(t, "patch", patch.Vendor.Type)
	assert.Equal(t, map[string]string{"peer": "patch-int-ex"}, patch.Vendor.Options)

	assert.Equal(t, types.Ptr(101), cfg.Ports["vlan101"].VLANID)
	assert.Equal(t, []string{"10", "20"}, cfg.Ports["bond0"].Trunks)
	assert.Equal(t, "bond0", cfg.InterfacePorts["eth1"])
}

func TestBuildConfigKernelInterfaceHasNoProvider(t *testing.T) {
	inv := NewInventory()
	inv.Tree, _ = ParseTree([]string{"    Bridge br0", "        Port eth3", "            Interface eth3"})
	inv.Interfaces["eth3"] = InterfaceRecord{Name: "eth3", Status: map[string]string{"driver_name": "e1000e"}}

	port := BuildConfig(inv).Ports["eth3"]
	require.NotNil(t, port)
	assert.Equal(t, types.Provider(""), port.Provider)
	assert.Empty(t, port.Tags)
	assert.Nil(t, port.Vendor)
}

func TestBuildConfigNil(t *testing.T) {
	cfg := BuildConfig(nil)
	assert.Empty(t, cfg.Bridges)
	assert.Empty(t, cfg.Ports)
}

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
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/we-are-mono/l23net/logger"
	"github.com/we-are-mono/l23net/system"
	"github.com/we-are-mono/l23net/types"
)

const interfaceListing = `_uuid               : i1
admin_state         : up
mtu                 : 9000
name                : eth0
status              : {driver_name=ixgbe}
type                : ""

_uuid               : i2
admin_state         : up
mtu                 : 9000
name                : eth1
status              : {driver_name=ixgbe}
type                : ""

_uuid               : i3
admin_state         : up
mtu                 : 1500
name                : br-ex
status              : {driver_name=openvswitch}
type                : internal
`

const bondPortJSON = `{"data":[
 [["set",[["uuid","i1"],["uuid","i2"]]],"balance-slb",["set",[]],0,0,["set",[]],"bond0",["map",[]]],
 [["set",[["uuid","i7"],["uuid","i8"]]],"active-backup",["set",[]],0,0,["set",[]],"bond1",["map",[]]],
 [["uuid","i3"],["set",[]],["set",[]],0,0,["set",[]],"br-ex",["map",[]]]
],"headings":["interfaces","bond_mode","bond_active_slave","bond_updelay","bond_downdelay","lacp","name","other_config"]}`

func vsctl(args ...string) []string {
	return args
}

func newVsctlRunner() *system.MockCommandRunner {
	r := system.NewMockCommandRunner()
	r.SetOutput(DefaultVsctlPath, vsctl("show"), []byte(showOutput))
	r.SetOutput(DefaultVsctlPath, vsctl("list", "Bridge"), []byte(bridgeListing))
	r.SetOutput(DefaultVsctlPath, vsctl("list", "Port"), []byte("name : bond0\n\nname : vlan101\ntag : 101\n"))
	r.SetOutput(DefaultVsctlPath, vsctl("list", "Interface"), []byte(interfaceListing))
	r.SetOutput(DefaultVsctlPath, vsctl("list-br"), []byte("br-ex\nbr-int\n"))
	r.SetOutput(DefaultVsctlPath, vsctl("list-ports", "br-ex"), []byte("bond0\npatch-ex-int\n"))
	r.SetOutput(DefaultVsctlPath, vsctl("list-ports", "br-int"), []byte("vlan101\n"))
	r.SetOutput(DefaultVsctlPath, vsctl("--format=json", "list", "Port"), []byte(bondPortJSON))
	r.SetOutput(DefaultVsctlPath, vsctl("get", "Interface", "i7", "name"), []byte("\"eth7\"\n"))
	r.SetError(DefaultVsctlPath, vsctl("get", "Interface", "i8", "name"), errors.New("no row"))
	r.SetOutput(DefaultVsctlPath, vsctl("port-to-br", "bond1"), []byte("br-int\n"))
	return r
}

func TestVsctlArgs(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		want    []string
	}{
		{name: "no timeout", want: []string{"show"}},
		{name: "whole seconds", timeout: 5 * time.Second, want: []string{"--timeout=5", "show"}},
		{name: "rounded up", timeout: 1500 * time.Millisecond, want: []string{"--timeout=2", "show"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVsctl(system.NewMockCommandRunner(), "", tt.timeout, nil)
			assert.Equal(t, tt.want, v.Args("show"))
		})
	}
}

func TestVsctlSourceCollect(t *testing.T) {
	runner := newVsctlRunner()
	src := NewVsctlSource(NewVsctl(runner, "", 0, nil))

	inv, err := src.Collect(context.Background())
	require.NoError(t, err)
	assert.True(t, inv.Available)

	assert.Equal(t, []string{"br-ex", "br-int"}, inv.Tree.Bridges)
	assert.Len(t, inv.Bridges, 2)
	assert.Equal(t, types.Ptr(101), inv.Ports["vlan101"].Tag)
	assert.Equal(t, types.Ptr(9000), inv.Interfaces["eth0"].MTU)
	assert.Nil(t, inv.Interfaces["br-ex"].MTU)

	assert.Equal(t, "br-ex", inv.PortBridges["bond0"].Bridge)
	assert.Equal(t, "br-int", inv.PortBridges["br-int"].Bridge)

	require.Len(t, inv.Bonds, 2)
	bond0 := inv.Bonds["bond0"]
	assert.Equal(t, []string{"eth0", "eth1"}, bond0.Slaves)
	assert.Equal(t, "br-ex", bond0.Bridge)
	assert.Equal(t, types.Ptr(9000), bond0.MTU)
	assert.Equal(t, types.Ptr(true), bond0.AdminUp)

	bond1 := inv.Bonds["bond1"]
	assert.Equal(t, []string{"eth7"}, bond1.Slaves)
	assert.Equal(t, "br-int", bond1.Bridge)

	require.Len(t, inv.Diagnostics, 1)
	assert.Contains(t, inv.Diagnostics[0].Message, "i8")
}

func TestVsctlSourceUnavailable(t *testing.T) {
	runner := system.NewMockCommandRunner()
	runner.SetError(DefaultVsctlPath, vsctl("show"), errors.New("exit status 1: database connection failed"))

	mem := logger.NewMemoryBackend(nil, "text")
	log := logger.New(logger.Config{Level: "debug"}, []logger.Backend{mem})

	inv, err := NewVsctlSource(NewVsctl(runner, "", 0, log)).Collect(context.Background())
	require.NoError(t, err)
	assert.False(t, inv.Available)
	assert.Equal(t, 1, runner.RunCalls)
	assert.Equal(t, []string{"OVS unavailable"}, mem.Messages("warn"))
	assert.Empty(t, inv.Bridges)
	assert.Empty(t, inv.Bonds)

	require.Len(t, inv.Diagnostics, 1)
	assert.Equal(t, Component, inv.Diagnostics[0].Component)
	assert.Contains(t, inv.Diagnostics[0].Message, "database connection failed")
}

func TestVsctlSourceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inv, err := NewVsctlSource(NewVsctl(newVsctlRunner(), "", 0, nil)).Collect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, inv.Available)
}

func TestVsctlPartialFailure(t *testing.T) {
	runner := newVsctlRunner()
	runner.SetError(DefaultVsctlPath, vsctl("list", "Interface"), errors.New("exit status 1"))

	inv, err := NewVsctlSource(NewVsctl(runner, "", 0, nil)).Collect(context.Background())
	require.NoError(t, err)
	assert.True(t, inv.Available)
	assert.Empty(t, inv.Interfaces)
	assert.Len(t, inv.Bridges, 2)

	// Slaves are then resolved one by one.
	assert.Contains(t, runner.Commands, []string{DefaultVsctlPath, "get", "Interface", "i1", "name"})
}

func TestVsctlLookups(t *testing.T) {
	v := NewVsctl(newVsctlRunner(), "", 0, nil)
	ctx := context.Background()

	name, err := v.InterfaceName(ctx, "i7")
	require.NoError(t, err)
	assert.Equal(t, "eth7", name)

	_, err = v.InterfaceName(ctx, "i8")
	assert.Error(t, err)

	_, err = v.InterfaceName(ctx, "unknown")
	assert.Error(t, err)

	br, err := v.PortToBridge(ctx, "bond1")
	require.NoError(t, err)
	assert.Equal(t, "br-int", br)

	_, err = v.PortToBridge(ctx, "missing")
	assert.Error(t, err)
}

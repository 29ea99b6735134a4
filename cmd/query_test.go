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

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/we-are-mono/l23net/types"
)

type mockQuerier struct {
	topo      *types.Topology
	vlans     map[string]types.VLAN
	err       error
	discovers int
}

func (m *mockQuerier) Discover(ctx context.Context) (*types.Topology, error) {
	m.discovers++
	if m.err != nil {
		return nil, m.err
	}
	return m.topo, nil
}

func (m *mockQuerier) VLANs(ctx context.Context) (map[string]types.VLAN, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.vlans, nil
}

func (m *mockQuerier) PatchOrder(a, b string) [2]string {
	if b == "br-ex" {
		return [2]string{b, a}
	}
	return [2]string{a, b}
}

func newMockTopology() *types.Topology {
	topo := types.NewTopology()
	topo.OVSAvailable = true
	topo.Bridges["br-ex"] = &types.Bridge{Name: "br-ex", Kind: types.BridgeKindOVS, STP: true, Members: []string{"br-ex", "bond0"}}
	topo.Ports["eth0"] = &types.Port{
		Name:       "eth0",
		Provider:   types.ProviderNative,
		Tags:       types.Tags{types.TagBondSlave},
		BondMaster: "bond0",
	}
	topo.Bonds["bond0"] = &types.Bond{
		Name:       "bond0",
		Kind:       types.BridgeKindNative,
		Slaves:     []string{"eth0", "eth1"},
		Properties: types.BondProperties{Mode: "802.3ad"},
	}
	topo.PortBridges["bond0"] = types.PortOwner{Bridge: "br-ex", Kind: types.BridgeKindOVS}
	topo.VLANs["eth0.101"] = types.VLAN{Name: "eth0.101", Dev: "eth0", ID: 101, Mode: types.VLANModeEth}
	topo.Diagnostics = []types.Diagnostic{{Component: "ovs", Message: "unparsable line", Line: "garbage"}}
	return topo
}

func TestExecuteQuery(t *testing.T) {
	tests := []struct {
		name          string
		entity        string
		wantKeys      []string
		wantDiscovers int
	}{
		{name: "bridges", entity: entityBridges, wantKeys: []string{"br-ex"}, wantDiscovers: 1},
		{name: "ports", entity: entityPorts, wantKeys: []string{"eth0"}, wantDiscovers: 1},
		{name: "bonds", entity: entityBonds, wantKeys: []string{"bond0"}, wantDiscovers: 1},
		{name: "port bridges", entity: entityPortBridges, wantKeys: []string{"bond0"}, wantDiscovers: 1},
		{name: "vlans skip discovery", entity: entityVLANs, wantKeys: []string{"eth0.101"}, wantDiscovers: 0},
		{
			name:          "topology",
			entity:        entityTopology,
			wantKeys:      []string{"ports", "bridges", "bonds", "vlans", "port_bridges", "ovs_available", "diagnostics"},
			wantDiscovers: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			topo := newMockTopology()
			q := &mockQuerier{topo: topo, vlans: topo.VLANs}

			err := executeQuery(context.Background(), &buf, q, tt.entity, formatJSON)
			require.NoError(t, err)

			var out map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
			for _, k := range tt.wantKeys {
				assert.Contains(t, out, k)
			}
			assert.Len(t, out, len(tt.wantKeys))
			assert.Equal(t, tt.wantDiscovers, q.discovers)
		})
	}
}

func TestExecuteQueryErrors(t *testing.T) {
	tests := []struct {
		name           string
		entity         string
		format         string
		err            error
		wantErrContain string
	}{
		{
			name:           "discovery failure",
			entity:         entityPorts,
			format:         formatJSON,
			err:            errors.New("failed to scan interfaces: permission denied"),
			wantErrContain: "permission denied",
		},
		{
			name:           "vlan failure",
			entity:         entityVLANs,
			format:         formatJSON,
			err:            errors.New("boom"),
			wantErrContain: "boom",
		},
		{
			name:           "unknown entity",
			entity:         "routes",
			format:         formatJSON,
			wantErrContain: `unknown entity "routes"`,
		},
		{
			name:           "unknown format",
			entity:         entityBonds,
			format:         "xml",
			wantErrContain: `unknown output format "xml"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			q := &mockQuerier{topo: newMockTopology(), err: tt.err}

			err := executeQuery(context.Background(), &buf, q, tt.entity, tt.format)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErrContain)
		})
	}
}

func TestExecutePatchOrder(t *testing.T) {
	tests := []struct {
		name           string
		a, b           string
		format         string
		wantOutput     string
		wantErrContain string
	}{
		{name: "ovs first", a: "br0", b: "br-ex", format: formatText, wantOutput: "br-ex  br0\n"},
		{name: "json", a: "br-a", b: "br-b", format: formatJSON, wantOutput: "[\n  \"br-a\",\n  \"br-b\"\n]\n"},
		{name: "empty name", a: "", b: "br0", format: formatText, wantErrContain: "cannot be empty"},
		{name: "too long", a: "br0", b: "a-very-long-bridge-name", format: formatText, wantErrContain: "too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := executePatchOrder(&buf, &mockQuerier{}, tt.a, tt.b, tt.format)

			if tt.wantErrContain != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrContain)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOutput, buf.String())
		})
	}
}

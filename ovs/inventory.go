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

// Package ovs reads Open vSwitch state, either by parsing ovs-vsctl output
// or by querying the OVSDB server, and turns it into topology entities.
package ovs

import (
	"context"

	"github.com/we-are-mono/l23net/types"
)

// Component is the diagnostic component name used by this package.
const Component = "ovs"

// Inventory is everything one OVS source knows about the host.
type Inventory struct {
	// Available is false when OVS could not be queried at all.
	Available   bool
	Bridges     map[string]BridgeRecord
	Ports       map[string]PortRecord
	Interfaces  map[string]InterfaceRecord
	Tree        *Tree
	PortBridges map[string]types.PortOwner
	Bonds       map[string]*types.Bond
	Diagnostics []types.Diagnostic
}

// NewInventory returns an empty, unavailable inventory.
func NewInventory() *Inventory {
	return &Inventory{
		Bridges:     make(map[string]BridgeRecord),
		Ports:       make(map[string]PortRecord),
		Interfaces:  make(map[string]InterfaceRecord),
		Tree:        NewTree(),
		PortBridges: make(map[string]types.PortOwner),
		Bonds:       make(map[string]*types.Bond),
	}
}

func (inv *Inventory) diag(msg, line string) {
	inv.Diagnostics = append(inv.Diagnostics, types.Diagnostic{Component: Component, Message: msg, Line: line})
}

// Source produces an Inventory. Implementations degrade to an unavailable
// inventory instead of failing when OVS is absent; errors are reserved
// for cancellation.
type Source interface {
	Collect(ctx context.Context) (*Inventory, error)
}

// NoSource is used when OVS discovery is disabled.
type NoSource struct{}

// Collect returns an empty inventory.
func (NoSource) Collect(ctx context.Context) (*Inventory, error) {
	return NewInventory(), ctx.Err()
}

// PortBridgesFromTree maps every port of the tree to its bridge. Each
// bridge is also mapped to itself, since OVS never lists the local port.
func PortBridgesFromTree(tree *Tree) map[string]types.PortOwner {
	owners := make(map[string]types.PortOwner)
	for _, p := range tree.Ports {
		owners[p.Name] = types.PortOwner{Bridge: p.Bridge, Kind: types.BridgeKindOVS}
	}
	for _, br := range tree.Bridges {
		owners[br] = types.PortOwner{Bridge: br, Kind: types.BridgeKindOVS}
	}
	return owners
}

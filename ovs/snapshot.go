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
	"github.com/we-are-mono/l23net/types"
)

// Config is the OVS view of the host: bridges and ports with their roles.
type Config struct {
	Bridges map[string]*types.Bridge
	Ports   map[string]*types.Port
	// InterfacePorts maps each interface to the port that holds it.
	InterfacePorts map[string]string
}

// BuildConfig merges the show layout with the table records and
// classifies every port. Record data wins over layout placeholders.
func BuildConfig(inv *Inventory) *Config {
	cfg := &Config{
		Bridges:        make(map[string]*types.Bridge),
		Ports:          make(map[string]*types.Port),
		InterfacePorts: make(map[string]string),
	}
	if inv == nil || inv.Tree == nil {
		return cfg
	}

	for _, name := range inv.Tree.Bridges {
		br := &types.Bridge{Name: name, Kind: types.BridgeKindOVS}
		if rec, ok := inv.Bridges[name]; ok {
			br.STP = rec.STP
			br.Vendor = rec.Vendor()
		}
		cfg.Bridges[name] = br
	}

	for name, tp := range inv.Tree.Ports {
		port := &types.Port{Name: name, Bridge: tp.Bridge}
		if rec, ok := inv.Ports[name]; ok {
			port.VLANID = rec.Tag
			port.Trunks = rec.Trunks
			port.Vendor = rec.Vendor()
		}
		if name == tp.Bridge {
			port.Tags.Add(types.TagBridge)
		}

		ifaces := inv.Tree.PortInterfaces(name)
		for _, ti := range ifaces {
			cfg.InterfacePorts[ti.Name] = name
			port.Provider = interfaceProvider(inv, ti.Name)
		}
		classifyPort(port, ifaces, inv.Interfaces)

		cfg.Ports[name] = port
	}

	return cfg
}

func interfaceProvider(inv *Inventory, iface string) types.Provider {
	if rec, ok := inv.Interfaces[iface]; ok {
		return rec.Provider
	}
	return ""
}

// interfaceType prefers the Interface table over the show listing.
func interfaceType(ti *TreeInterface, records map[string]InterfaceRecord) string {
	if rec, ok := records[ti.Name]; ok && rec.Type != "" {
		return rec.Type
	}
	return ti.Type
}

// classifyPort tags a port from its interfaces: several interfaces make a
// bond, a sole patch interface a jack, a sole internal interface an
// internal port. The MTU comes from the first interface.
func classifyPort(port *types.Port, ifaces []*TreeInterface, records map[string]InterfaceRecord) {
	switch {
	case len(ifaces) > 1:
		port.Tags.Add(types.TagBond)
		port.Provider = types.ProviderOVS
	case len(ifaces) == 1:
		ifType := interfaceType(ifaces[0], records)
		switch ifType {
		case "patch":
			port.Tags.Add(types.TagJack)
		case "internal":
			port.Tags.Add(types.TagInternal)
		}
		if ifType != "" || len(ifaces[0].Options) > 0 {
			if port.Vendor == nil {
				port.Vendor = &types.VendorSpecific{}
			}
			port.Vendor.Type = ifType
			port.Vendor.Options = ifaces[0].Options
			if rec, ok := records[ifaces[0].Name]; ok && len(rec.Options) > 0 {
				port.Vendor.Options = rec.Options
			}
		}
	}

	if len(ifaces) > 0 {
		if rec, ok := records[ifaces[0].Name]; ok {
			port.MTU = rec.MTU
		}
	}

	if port.VLANID != nil {
		port.Tags.Add(types.TagVLAN)
	}
}

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
	"sort"
	"strconv"

	"github.com/samber/lo"

	"github.com/we-are-mono/l23net/types"
)

// PortRow holds the Port columns needed to describe a bond.
type PortRow struct {
	Name            string
	Interfaces      InterfaceRefs
	BondMode        string
	BondActiveSlave string
	BondUpdelay     string
	BondDowndelay   string
	LACP            string
	OtherConfig     map[string]string
}

// PortRowFromCells converts one row of `--format=json list Port`.
func PortRowFromCells(row map[string]Cell) PortRow {
	return PortRow{
		Name:            row["name"].String(),
		Interfaces:      RefsFromCell(row["interfaces"]),
		BondMode:        row["bond_mode"].String(),
		BondActiveSlave: row["bond_active_slave"].String(),
		BondUpdelay:     row["bond_updelay"].String(),
		BondDowndelay:   row["bond_downdelay"].String(),
		LACP:            row["lacp"].String(),
		OtherConfig:     row["other_config"].Map,
	}
}

// IsBond reports whether the port aggregates interfaces.
func (p PortRow) IsBond() bool {
	return p.Interfaces.IsMulti() || p.BondMode != "" || p.BondActiveSlave != ""
}

func (p PortRow) column(name string) string {
	switch name {
	case "bond_mode":
		return p.BondMode
	case "bond_updelay":
		return p.BondUpdelay
	case "bond_downdelay":
		return p.BondDowndelay
	case "lacp":
		return p.LACP
	}
	return ""
}

// bondProperty maps a bond property onto a Port column or an
// other_config key.
type bondProperty struct {
	name            string
	column          string
	otherConfig     bool
	def             string
	allow           []string
	overrideInteger []string
}

var ovsBondProperties = []bondProperty{
	{name: "downdelay", column: "bond_downdelay"},
	{name: "updelay", column: "bond_updelay"},
	{name: "use_carrier", column: "bond-detect-mode", otherConfig: true, def: "carrier", overrideInteger: []string{"miimon", "carrier"}},
	{name: "mode", column: "bond_mode", def: "active-backup", allow: []string{"balance-slb", "active-backup", "balance-tcp", "stable"}},
	{name: "lacp", column: "lacp", allow: []string{"off", "active", "passive"}},
	{name: "lacp_rate", column: "lacp_time", otherConfig: true},
	{name: "miimon", column: "bond-miimon-interval", otherConfig: true},
	{name: "slb_rebalance_interval", column: "bond-rebalance-interval", otherConfig: true},
}

// OVSBondAllowedProperties returns the sorted names of the bond properties
// OVS supports.
func OVSBondAllowedProperties() []string {
	names := lo.Map(ovsBondProperties, func(p bondProperty, _ int) string { return p.name })
	sort.Strings(names)
	return names
}

func (bp bondProperty) value(row PortRow) string {
	v := bp.def
	if bp.otherConfig {
		if x, ok := row.OtherConfig[bp.column]; ok {
			v = x
		}
	} else if x := row.column(bp.column); x != "" {
		v = x
	}
	if bp.overrideInteger != nil {
		idx := lo.IndexOf(bp.overrideInteger, v)
		if idx < 0 {
			return ""
		}
		return strconv.Itoa(idx)
	}
	return v
}

// BondPropertiesFromPort maps Port columns onto bond properties. Values
// outside a property's allowed set are kept and reported.
func BondPropertiesFromPort(row PortRow) (types.BondProperties, []types.Diagnostic) {
	var props types.BondProperties
	var diags []types.Diagnostic

	for _, bp := range ovsBondProperties {
		v := bp.value(row)
		if v == "" {
			continue
		}
		if bp.allow != nil && !lo.Contains(bp.allow, v) {
			diags = append(diags, types.Diagnostic{
				Component: Component,
				Message:   "bond " + row.Name + ": unexpected " + bp.name + " " + strconv.Quote(v),
			})
		}
		switch bp.name {
		case "downdelay":
			props.Downdelay = v
		case "updelay":
			props.Updelay = v
		case "use_carrier":
			props.UseCarrier = v
		case "mode":
			props.Mode = v
		case "lacp":
			props.LACP = types.Ptr(v)
		case "lacp_rate":
			props.LACPRate = types.Ptr(v)
		case "miimon":
			props.Miimon = v
		case "slb_rebalance_interval":
			props.SLBRebalanceInterval = types.Ptr(v)
		}
	}
	return props, diags
}

// BuildBonds turns bond ports into bonds. nameOf resolves an interface
// uuid to its name; unresolvable slaves are dropped with a diagnostic.
func BuildBonds(rows []PortRow, nameOf func(uuid string) (string, bool), ifaces map[string]InterfaceRecord,
	owners map[string]types.PortOwner) (map[string]*types.Bond, []types.Diagnostic) {

	bonds := make(map[string]*types.Bond)
	var diags []types.Diagnostic

	for _, row := range rows {
		if row.Name == "" || !row.IsBond() {
			continue
		}

		props, propDiags := BondPropertiesFromPort(row)
		diags = append(diags, propDiags...)

		bond := &types.Bond{
			Name:       row.Name,
			Kind:       types.BridgeKindOVS,
			Properties: props,
			Bridge:     owners[row.Name].Bridge,
		}

		for _, id := range row.Interfaces.All() {
			name, ok := nameOf(id)
			if !ok {
				diags = append(diags, types.Diagnostic{
					Component: Component,
					Message:   "bond " + row.Name + ": slave " + id + " not resolved",
				})
				continue
			}
			bond.Slaves = append(bond.Slaves, name)
		}
		sort.Strings(bond.Slaves)

		if len(bond.Slaves) > 0 {
			if rec, ok := ifaces[bond.Slaves[0]]; ok {
				bond.MTU = rec.MTU
				switch rec.AdminState {
				case "up":
					bond.AdminUp = types.Ptr(true)
				case "down":
					bond.AdminUp = types.Ptr(false)
				}
			}
		}

		bonds[row.Name] = bond
	}
	return bonds, diags
}

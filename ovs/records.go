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
	"regexp"
	"strconv"
	"strings"

	"github.com/we-are-mono/l23net/types"
)

// BridgeRecord is a row of the Bridge table.
type BridgeRecord struct {
	Name         string
	STP          bool
	ExternalIDs  map[string]string
	OtherConfig  map[string]string
	Status       map[string]string
	DatapathType string
}

// PortRecord is a row of the Port table.
type PortRecord struct {
	Name        string
	Tag         *int
	Trunks      []string
	OtherConfig map[string]string
	Status      map[string]string
}

// InterfaceRecord is a row of the Interface table.
type InterfaceRecord struct {
	Name       string
	UUID       string
	Type       string
	MTU        *int
	AdminState string
	Status     map[string]string
	Options    map[string]string
	// Provider is ovs for datapath-owned interfaces, empty for kernel
	// devices attached to OVS.
	Provider types.Provider
}

var trunkSep = regexp.MustCompile(`[,\s]+`)

// BridgeFromRecord converts a `list Bridge` block.
func BridgeFromRecord(r Record) BridgeRecord {
	return BridgeRecord{
		Name:         r["name"],
		STP:          strings.EqualFold(r["stp_enable"], "true"),
		ExternalIDs:  ParseOptHash(r["external_ids"]),
		OtherConfig:  ParseOptHash(r["other_config"]),
		Status:       ParseOptHash(r["status"]),
		DatapathType: r["datapath_type"],
	}
}

// PortFromRecord converts a `list Port` block.
func PortFromRecord(r Record) PortRecord {
	rec := PortRecord{
		Name:        r["name"],
		OtherConfig: ParseOptHash(r["other_config"]),
		Status:      ParseOptHash(r["status"]),
	}
	if tag, err := strconv.Atoi(r["tag"]); err == nil {
		rec.Tag = &tag
	}
	if trunks := strings.Trim(r["trunks"], "[] "); trunks != "" {
		rec.Trunks = trunkSep.Split(trunks, -1)
	}
	return rec
}

// InterfaceFromRecord converts a `list Interface` block.
func InterfaceFromRecord(r Record) InterfaceRecord {
	rec := InterfaceRecord{
		Name:       r["name"],
		UUID:       r["_uuid"],
		Type:       r["type"],
		AdminState: r["admin_state"],
		Status:     ParseOptHash(r["status"]),
		Options:    ParseOptHash(r["options"]),
	}
	if mtu, err := strconv.Atoi(r["mtu"]); err == nil {
		rec.MTU = types.NormalizeMTU(mtu)
	}
	rec.Provider = InterfaceProvider(rec.Status["driver_name"])
	return rec
}

// InterfaceProvider maps a status:driver_name value to a provider.
// Interfaces driven by the openvswitch module, or with no driver reported,
// belong to OVS.
func InterfaceProvider(driver string) types.Provider {
	if driver == "" || driver == "openvswitch" {
		return types.ProviderOVS
	}
	return ""
}

// Vendor returns the vendor-specific sub-map of a bridge.
func (b BridgeRecord) Vendor() *types.VendorSpecific {
	v := &types.VendorSpecific{
		ExternalIDs:  nilIfEmpty(b.ExternalIDs),
		OtherConfig:  nilIfEmpty(b.OtherConfig),
		Status:       nilIfEmpty(b.Status),
		DatapathType: b.DatapathType,
	}
	if v.IsEmpty() {
		return nil
	}
	return v
}

// Vendor returns the vendor-specific sub-map of a port.
func (p PortRecord) Vendor() *types.VendorSpecific {
	v := &types.VendorSpecific{
		OtherConfig: nilIfEmpty(p.OtherConfig),
		Status:      nilIfEmpty(p.Status),
	}
	if v.IsEmpty() {
		return nil
	}
	return v
}

func nilIfEmpty(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	return m
}

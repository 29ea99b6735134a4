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

// Package types defines the unified topology model produced by l23net:
// ports, bridges, bonds and VLAN sub-interfaces discovered from the kernel
// network tree and Open vSwitch.
package types

import (
	"sort"

	"github.com/samber/lo"
)

// DefaultMTU is the kernel default. It is never reported; an MTU equal to
// it is represented as absent.
const DefaultMTU = 1500

// Provider identifies which subsystem manages an entity.
type Provider string

const (
	ProviderNative Provider = "native"
	ProviderOVS    Provider = "ovs"
)

// BridgeKind identifies the implementation behind a bridge.
type BridgeKind string

const (
	BridgeKindNative BridgeKind = "native"
	BridgeKindOVS    BridgeKind = "ovs"
)

// Tag is a role marker attached to a port. A port may carry several.
type Tag string

const (
	TagJack        Tag = "jack"
	TagBond        Tag = "bond"
	TagBondSlave   Tag = "bond-slave"
	TagBridge      Tag = "bridge"
	TagBridgeSlave Tag = "bridge-slave"
	TagVLAN        Tag = "vlan"
	TagInternal    Tag = "internal"
	TagUnremovable Tag = "unremovable"
	TagOVSAffected Tag = "ovs-affected"
)

// VLANMode describes how a VLAN sub-interface is named.
type VLANMode string

const (
	// VLANModeEth is used for dotted names like eth0.101.
	VLANModeEth VLANMode = "eth"
	// VLANModeVLAN is used for free-form names like vlan101.
	VLANModeVLAN VLANMode = "vlan"
)

// Tags is an ordered set of tags. Insertion order is preserved.
type Tags []Tag

// Add appends tags that are not already present.
func (t *Tags) Add(tags ...Tag) {
	for _, tag := range tags {
		if !lo.Contains(*t, tag) {
			*t = append(*t, tag)
		}
	}
}

// Has reports whether tag is present.
func (t Tags) Has(tag Tag) bool {
	return lo.Contains(t, tag)
}

// VendorSpecific carries OVS database columns that have no portable
// equivalent.
type VendorSpecific struct {
	ExternalIDs  map[string]string `json:"external_ids,omitempty" yaml:"external_ids,omitempty"`
	OtherConfig  map[string]string `json:"other_config,omitempty" yaml:"other_config,omitempty"`
	Status       map[string]string `json:"status,omitempty" yaml:"status,omitempty"`
	Options      map[string]string `json:"options,omitempty" yaml:"options,omitempty"`
	DatapathType string            `json:"datapath_type,omitempty" yaml:"datapath_type,omitempty"`
	Type         string            `json:"type,omitempty" yaml:"type,omitempty"`
}

// IsEmpty reports whether no vendor data is set.
func (v *VendorSpecific) IsEmpty() bool {
	return v == nil || (len(v.ExternalIDs) == 0 && len(v.OtherConfig) == 0 &&
		len(v.Status) == 0 && len(v.Options) == 0 && v.DatapathType == "" && v.Type == "")
}

// Port is a network endpoint: a kernel interface or an OVS port.
type Port struct {
	Name        string          `json:"name" yaml:"name"`
	Provider    Provider        `json:"provider,omitempty" yaml:"provider,omitempty"`
	Tags        Tags            `json:"tags,omitempty" yaml:"tags,omitempty"`
	MTU         *int            `json:"mtu,omitempty" yaml:"mtu,omitempty"`
	IfIndex     *int            `json:"if_index,omitempty" yaml:"if_index,omitempty"`
	AdminUp     *bool           `json:"admin_up,omitempty" yaml:"admin_up,omitempty"`
	PeerIfIndex *int            `json:"peer_if_index,omitempty" yaml:"peer_if_index,omitempty"`
	Slaves      []string        `json:"slaves,omitempty" yaml:"slaves,omitempty"`
	BondMaster  string          `json:"bond_master,omitempty" yaml:"bond_master,omitempty"`
	Bridge      string          `json:"bridge,omitempty" yaml:"bridge,omitempty"`
	VLANDev     string          `json:"vlan_dev,omitempty" yaml:"vlan_dev,omitempty"`
	VLANID      *int            `json:"vlan_id,omitempty" yaml:"vlan_id,omitempty"`
	VLANMode    VLANMode        `json:"vlan_mode,omitempty" yaml:"vlan_mode,omitempty"`
	Trunks      []string        `json:"trunks,omitempty" yaml:"trunks,omitempty"`
	Offload     map[string]bool `json:"offload,omitempty" yaml:"offload,omitempty"`
	Vendor      *VendorSpecific `json:"vendor_specific,omitempty" yaml:"vendor_specific,omitempty"`
}

// Bridge is a layer-2 switch, native or OVS.
type Bridge struct {
	Name    string          `json:"name" yaml:"name"`
	Kind    BridgeKind      `json:"kind" yaml:"kind"`
	Members []string        `json:"members,omitempty" yaml:"members,omitempty"`
	STP     bool            `json:"stp" yaml:"stp"`
	Vendor  *VendorSpecific `json:"vendor_specific,omitempty" yaml:"vendor_specific,omitempty"`
}

// BondProperties are the tunables of a bond. Mode dependent fields are nil
// when the mode does not use them.
type BondProperties struct {
	Mode                 string  `json:"mode,omitempty" yaml:"mode,omitempty"`
	Miimon               string  `json:"miimon,omitempty" yaml:"miimon,omitempty"`
	Updelay              string  `json:"updelay,omitempty" yaml:"updelay,omitempty"`
	Downdelay            string  `json:"downdelay,omitempty" yaml:"downdelay,omitempty"`
	UseCarrier           string  `json:"use_carrier,omitempty" yaml:"use_carrier,omitempty"`
	XmitHashPolicy       *string `json:"xmit_hash_policy,omitempty" yaml:"xmit_hash_policy,omitempty"`
	LACPRate             *string `json:"lacp_rate,omitempty" yaml:"lacp_rate,omitempty"`
	ADSelect             *string `json:"ad_select,omitempty" yaml:"ad_select,omitempty"`
	LACP                 *string `json:"lacp,omitempty" yaml:"lacp,omitempty"`
	SLBRebalanceInterval *string `json:"slb_rebalance_interval,omitempty" yaml:"slb_rebalance_interval,omitempty"`
}

// Bond is an aggregate of slave interfaces.
type Bond struct {
	Name       string         `json:"name" yaml:"name"`
	Kind       BridgeKind     `json:"kind" yaml:"kind"`
	Slaves     []string       `json:"slaves,omitempty" yaml:"slaves,omitempty"`
	MTU        *int           `json:"mtu,omitempty" yaml:"mtu,omitempty"`
	Properties BondProperties `json:"properties" yaml:"properties"`
	Bridge     string         `json:"bridge,omitempty" yaml:"bridge,omitempty"`
	AdminUp    *bool          `json:"admin_up,omitempty" yaml:"admin_up,omitempty"`
}

// VLAN is an 802.1q sub-interface registered in the kernel VLAN table.
type VLAN struct {
	Name string   `json:"name" yaml:"name"`
	Dev  string   `json:"dev" yaml:"dev"`
	ID   int      `json:"id" yaml:"id"`
	Mode VLANMode `json:"mode" yaml:"mode"`
}

// PortOwner names the bridge a port is attached to.
type PortOwner struct {
	Bridge string     `json:"bridge" yaml:"bridge"`
	Kind   BridgeKind `json:"kind" yaml:"kind"`
}

// Diagnostic records something discovery skipped or could not read.
type Diagnostic struct {
	Component string `json:"component" yaml:"component"`
	Message   string `json:"message" yaml:"message"`
	Line      string `json:"line,omitempty" yaml:"line,omitempty"`
}

// Topology is one complete discovery snapshot.
type Topology struct {
	Ports        map[string]*Port     `json:"ports" yaml:"ports"`
	Bridges      map[string]*Bridge   `json:"bridges" yaml:"bridges"`
	Bonds        map[string]*Bond     `json:"bonds" yaml:"bonds"`
	VLANs        map[string]VLAN      `json:"vlans" yaml:"vlans"`
	PortBridges  map[string]PortOwner `json:"port_bridges" yaml:"port_bridges"`
	OVSAvailable bool                 `json:"ovs_available" yaml:"ovs_available"`
	Diagnostics  []Diagnostic         `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// NewTopology returns a topology with all maps allocated.
func NewTopology() *Topology {
	return &Topology{
		Ports:       make(map[string]*Port),
		Bridges:     make(map[string]*Bridge),
		Bonds:       make(map[string]*Bond),
		VLANs:       make(map[string]VLAN),
		PortBridges: make(map[string]PortOwner),
	}
}

// NormalizeMTU maps the kernel default to absent.
func NormalizeMTU(mtu int) *int {
	if mtu == DefaultMTU || mtu <= 0 {
		return nil
	}
	return &mtu
}

// SortedKeys returns the keys of m in lexicographic order.
func SortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

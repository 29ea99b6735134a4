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

// Package native interprets the kernel network tree: it classifies
// interfaces and enumerates Linux bridges and bonds, independently of OVS.
package native

import (
	"sort"

	"github.com/samber/lo"

	"github.com/we-are-mono/l23net/logger"
	"github.com/we-are-mono/l23net/sysfs"
	"github.com/we-are-mono/l23net/types"
)

// Component is the diagnostic component name used by this package.
const Component = "native"

// OVSSystem is the kernel datapath device of Open vSwitch.
const OVSSystem = "ovs-system"

var (
	hashPolicyModes = []string{"802.3ad", "balance-xor", "balance-tlb", "balance-alb"}
	lacpModes       = []string{"802.3ad"}
)

var lnxBondAllowedProperties = []string{
	"active_slave", "ad_select", "all_slaves_active", "arp_interval",
	"arp_ip_target", "arp_validate", "arp_all_targets", "downdelay",
	"updelay", "fail_over_mac", "lacp_rate", "miimon", "min_links",
	"mode", "num_grat_arp", "num_unsol_na", "packets_per_slave",
	"primary", "primary_reselect", "tlb_dynamic_lb", "use_carrier",
	"xmit_hash_policy", "resend_igmp", "lp_interval",
}

// LnxBondAllowedProperties returns the sorted bonding driver properties a
// native bond may be configured with.
func LnxBondAllowedProperties() []string {
	names := append([]string(nil), lnxBondAllowedProperties...)
	sort.Strings(names)
	return names
}

// Scanner builds native entities from a sysfs Reader.
type Scanner struct {
	reader *sysfs.Reader
	log    logger.Logger
}

// NewScanner creates a Scanner.
func NewScanner(reader *sysfs.Reader, log logger.Logger) *Scanner {
	if log == nil {
		log = logger.Nop()
	}
	return &Scanner{
		reader: reader,
		log:    log.With(logger.F("component", Component)),
	}
}

func (s *Scanner) diag(diags []types.Diagnostic, msg string) []types.Diagnostic {
	s.log.Debug(msg)
	return append(diags, types.Diagnostic{Component: Component, Message: msg})
}

// Ports classifies every interface of the host and resolves master links.
// The error is only set when the network root cannot be listed.
func (s *Scanner) Ports() (map[string]*types.Port, []types.Diagnostic, error) {
	names, err := s.reader.ListInterfaces()
	if err != nil {
		return nil, nil, err
	}
	vlans, diags := s.reader.VLANs()

	ports := make(map[string]*types.Port, len(names))
	masters := make(map[string]string)
	for _, name := range names {
		facts := s.reader.Interface(name)
		port := &types.Port{
			Name:        name,
			Provider:    types.ProviderNative,
			MTU:         facts.MTU,
			IfIndex:     facts.IfIndex,
			AdminUp:     facts.AdminUp,
			PeerIfIndex: facts.PeerIfIndex,
		}
		if name == OVSSystem {
			port.Provider = types.ProviderOVS
		}

		if facts.PeerIfIndex != nil {
			port.Tags.Add(types.TagJack, types.TagUnremovable)
		}
		if facts.HasBonding {
			port.Tags.Add(types.TagBond, types.TagUnremovable)
			port.Slaves = s.reader.BondSlaves(name)
		}
		if facts.HasBridge && facts.HasBrif {
			port.Tags.Add(types.TagBridge, types.TagUnremovable)
			port.Slaves = s.reader.BridgeMembers(name)
		}
		if vlan, ok := vlans[name]; ok {
			port.Tags.Add(types.TagVLAN)
			port.VLANDev = vlan.Dev
			port.VLANID = types.Ptr(vlan.ID)
			port.VLANMode = vlan.Mode
		}

		if facts.Master != "" {
			masters[name] = facts.Master
		}
		ports[name] = port
	}

	for _, name := range types.SortedKeys(masters) {
		diags = s.resolveMaster(ports, ports[name], masters[name], diags)
	}
	s.claimListedSlaves(ports)

	return ports, diags, nil
}

func (s *Scanner) resolveMaster(ports map[string]*types.Port, port *types.Port, master string,
	diags []types.Diagnostic) []types.Diagnostic {

	if master == OVSSystem {
		port.Tags.Add(types.TagOVSAffected)
		return diags
	}
	mp, ok := ports[master]
	switch {
	case !ok:
		return s.diag(diags, "interface "+port.Name+": unknown master "+master)
	case mp.Tags.Has(types.TagBond):
		port.Tags.Add(types.TagBondSlave)
		port.BondMaster = master
	case mp.Tags.Has(types.TagBridge):
		port.Tags.Add(types.TagBridgeSlave)
		port.Bridge = master
	default:
		return s.diag(diags, "interface "+port.Name+": master "+master+" is neither a bond nor a bridge")
	}
	return diags
}

// claimListedSlaves marks interfaces named in a bond or bridge member list
// that carry no master link of their own.
func (s *Scanner) claimListedSlaves(ports map[string]*types.Port) {
	for _, name := range types.SortedKeys(ports) {
		master := ports[name]
		for _, slave := range master.Slaves {
			sp, ok := ports[slave]
			if !ok || sp.BondMaster != "" || sp.Bridge != "" {
				continue
			}
			switch {
			case master.Tags.Has(types.TagBond):
				sp.Tags.Add(types.TagBondSlave)
				sp.BondMaster = name
			case master.Tags.Has(types.TagBridge):
				sp.Tags.Add(types.TagBridgeSlave)
				sp.Bridge = name
			}
		}
	}
}

// Bridges returns the Linux bridges of the host.
func (s *Scanner) Bridges() (map[string]*types.Bridge, error) {
	names, err := s.reader.ListInterfaces()
	if err != nil {
		return nil, err
	}
	bridges := make(map[string]*types.Bridge)
	for _, name := range names {
		if !s.reader.IsNativeBridge(name) {
			continue
		}
		bridges[name] = &types.Bridge{
			Name:    name,
			Kind:    types.BridgeKindNative,
			Members: s.reader.BridgeMembers(name),
			STP:     s.reader.BridgeSTP(name),
		}
	}
	return bridges, nil
}

// PortBridges maps every member of a Linux bridge to that bridge.
func (s *Scanner) PortBridges() (map[string]types.PortOwner, error) {
	bridges, err := s.Bridges()
	if err != nil {
		return nil, err
	}
	return OwnersFromBridges(bridges), nil
}

// OwnersFromBridges maps bridge members to their bridge.
func OwnersFromBridges(bridges map[string]*types.Bridge) map[string]types.PortOwner {
	owners := make(map[string]types.PortOwner)
	for _, br := range bridges {
		for _, m := range br.Members {
			owners[m] = types.PortOwner{Bridge: br.Name, Kind: types.BridgeKindNative}
		}
	}
	return owners
}

// Bonds returns the bonds registered in bonding_masters. owners supplies
// the bridge each bond is attached to.
func (s *Scanner) Bonds(owners map[string]types.PortOwner) map[string]*types.Bond {
	bonds := make(map[string]*types.Bond)
	for _, name := range s.reader.BondingMasters() {
		bonds[name] = &types.Bond{
			Name:       name,
			Kind:       types.BridgeKindNative,
			Slaves:     s.reader.BondSlaves(name),
			MTU:        s.reader.MTU(name),
			Properties: s.bondProperties(name),
			Bridge:     owners[name].Bridge,
			AdminUp:    s.reader.AdminUp(name),
		}
	}
	return bonds
}

func (s *Scanner) bondProperties(name string) types.BondProperties {
	attr := func(key string) string {
		if v := s.reader.BondAttr(name, key); v != nil {
			return *v
		}
		return ""
	}

	props := types.BondProperties{
		Mode:       attr("mode"),
		Miimon:     attr("miimon"),
		Updelay:    attr("updelay"),
		Downdelay:  attr("downdelay"),
		UseCarrier: attr("use_carrier"),
	}
	if lo.Contains(hashPolicyModes, props.Mode) {
		props.XmitHashPolicy = s.reader.BondAttr(name, "xmit_hash_policy")
	}
	if lo.Contains(lacpModes, props.Mode) {
		props.LACPRate = s.reader.BondAttr(name, "lacp_rate")
		props.ADSelect = s.reader.BondAttr(name, "ad_select")
	}
	return props
}

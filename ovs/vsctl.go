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
	"fmt"
	"strings"
	"time"

	"github.com/we-are-mono/l23net/logger"
	"github.com/we-are-mono/l23net/system"
	"github.com/we-are-mono/l23net/types"
)

// DefaultVsctlPath is the ovs-vsctl binary looked up in PATH.
const DefaultVsctlPath = "ovs-vsctl"

// Vsctl runs ovs-vsctl queries. Every query degrades to an empty result
// and a diagnostic when the command fails.
type Vsctl struct {
	runner  system.CommandRunner
	path    string
	timeout time.Duration
	log     logger.Logger
}

// NewVsctl creates a Vsctl. A positive timeout is passed to ovs-vsctl as
// --timeout so that a dead ovsdb-server cannot block discovery.
func NewVsctl(runner system.CommandRunner, path string, timeout time.Duration, log logger.Logger) *Vsctl {
	if path == "" {
		path = DefaultVsctlPath
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Vsctl{
		runner:  runner,
		path:    path,
		timeout: timeout,
		log:     log.With(logger.F("component", Component)),
	}
}

// Args returns the full argument list for an ovs-vsctl invocation.
func (v *Vsctl) Args(args ...string) []string {
	if v.timeout <= 0 {
		return args
	}
	secs := int((v.timeout + time.Second - 1) / time.Second)
	return append([]string{fmt.Sprintf("--timeout=%d", secs)}, args...)
}

func (v *Vsctl) exec(ctx context.Context, args ...string) ([]byte, error) {
	out, err := v.runner.Run(ctx, v.path, v.Args(args...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to run '%s %s': %w", v.path, strings.Join(args, " "), err)
	}
	return out, nil
}

func (v *Vsctl) lines(ctx context.Context, args ...string) ([]string, error) {
	out, err := v.exec(ctx, args...)
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

func failure(err error) []types.Diagnostic {
	return []types.Diagnostic{{Component: Component, Message: err.Error()}}
}

func (v *Vsctl) list(ctx context.Context, table string) (map[string]Record, []types.Diagnostic) {
	lines, err := v.lines(ctx, "list", table)
	if err != nil {
		v.log.Debug("Listing failed", logger.F("table", table), logger.F("error", err))
		return map[string]Record{}, failure(err)
	}
	return parseBlocks(lines, Component)
}

// ListBridges parses `list Bridge`.
func (v *Vsctl) ListBridges(ctx context.Context) (map[string]BridgeRecord, []types.Diagnostic) {
	records, diags := v.list(ctx, "Bridge")
	rv := make(map[string]BridgeRecord, len(records))
	for name, r := range records {
		rv[name] = BridgeFromRecord(r)
	}
	return rv, diags
}

// ListPorts parses `list Port`.
func (v *Vsctl) ListPorts(ctx context.Context) (map[string]PortRecord, []types.Diagnostic) {
	records, diags := v.list(ctx, "Port")
	rv := make(map[string]PortRecord, len(records))
	for name, r := range records {
		rv[name] = PortFromRecord(r)
	}
	return rv, diags
}

// ListInterfaces parses `list Interface`.
func (v *Vsctl) ListInterfaces(ctx context.Context) (map[string]InterfaceRecord, []types.Diagnostic) {
	records, diags := v.list(ctx, "Interface")
	rv := make(map[string]InterfaceRecord, len(records))
	for name, r := range records {
		rv[name] = InterfaceFromRecord(r)
	}
	return rv, diags
}

// Show parses `show`. The returned error reports that OVS is unreachable.
func (v *Vsctl) Show(ctx context.Context) (*Tree, []types.Diagnostic, error) {
	lines, err := v.lines(ctx, "show")
	if err != nil {
		return NewTree(), failure(err), err
	}
	tree, diags := ParseTree(lines)
	return tree, diags, nil
}

// BridgeNames parses `list-br`.
func (v *Vsctl) BridgeNames(ctx context.Context) ([]string, []types.Diagnostic) {
	lines, err := v.lines(ctx, "list-br")
	if err != nil {
		return nil, failure(err)
	}
	return ParseFlat(lines), nil
}

// BridgePorts parses `list-ports <bridge>`.
func (v *Vsctl) BridgePorts(ctx context.Context, bridge string) ([]string, []types.Diagnostic) {
	lines, err := v.lines(ctx, "list-ports", bridge)
	if err != nil {
		return nil, failure(err)
	}
	return ParseFlat(lines), nil
}

// PortBridges maps every OVS port to its bridge. Bridges map to
// themselves because list-ports omits the local port.
func (v *Vsctl) PortBridges(ctx context.Context) (map[string]types.PortOwner, []types.Diagnostic) {
	owners := make(map[string]types.PortOwner)
	bridges, diags := v.BridgeNames(ctx)
	for _, br := range bridges {
		ports, portDiags := v.BridgePorts(ctx, br)
		diags = append(diags, portDiags...)
		for _, p := range ports {
			owners[p] = types.PortOwner{Bridge: br, Kind: types.BridgeKindOVS}
		}
		owners[br] = types.PortOwner{Bridge: br, Kind: types.BridgeKindOVS}
	}
	return owners, diags
}

// InterfaceName resolves an interface uuid with `get Interface <uuid> name`.
func (v *Vsctl) InterfaceName(ctx context.Context, uuid string) (string, error) {
	out, err := v.exec(ctx, "get", "Interface", uuid, "name")
	if err != nil {
		return "", err
	}
	name := strings.Trim(strings.TrimSpace(string(out)), `"`)
	if name == "" {
		return "", fmt.Errorf("interface %s has no name", uuid)
	}
	return name, nil
}

// PortToBridge resolves the bridge of a port with `port-to-br`.
func (v *Vsctl) PortToBridge(ctx context.Context, port string) (string, error) {
	lines, err := v.lines(ctx, "port-to-br", port)
	if err != nil {
		return "", err
	}
	names := ParseFlat(lines)
	if len(names) == 0 {
		return "", fmt.Errorf("port %s has no bridge", port)
	}
	return names[0], nil
}

// Bonds reads bond ports from the JSON Port listing. Slave uuids are
// resolved through ifaces when possible and through `get` otherwise.
func (v *Vsctl) Bonds(ctx context.Context, ifaces map[string]InterfaceRecord,
	owners map[string]types.PortOwner) (map[string]*types.Bond, []types.Diagnostic) {

	out, err := v.exec(ctx, "--format=json", "list", "Port")
	if err != nil {
		return map[string]*types.Bond{}, failure(err)
	}
	table, err := ParseJSONTable(out)
	if err != nil {
		return map[string]*types.Bond{}, failure(fmt.Errorf("failed to parse port listing: %w", err))
	}

	byUUID := make(map[string]string, len(ifaces))
	for name, rec := range ifaces {
		if rec.UUID != "" {
			byUUID[rec.UUID] = name
		}
	}
	nameOf := func(uuid string) (string, bool) {
		if name, ok := byUUID[uuid]; ok {
			return name, true
		}
		name, err := v.InterfaceName(ctx, uuid)
		if err != nil {
			v.log.Debug("Interface lookup failed", logger.F("uuid", uuid), logger.F("error", err))
			return "", false
		}
		return name, true
	}

	rows := make([]PortRow, 0, len(table.Rows))
	for _, r := range table.Rows {
		rows = append(rows, PortRowFromCells(r))
	}
	bonds, diags := BuildBonds(rows, nameOf, ifaces, owners)

	for name, bond := range bonds {
		if bond.Bridge != "" {
			continue
		}
		br, err := v.PortToBridge(ctx, name)
		if err != nil {
			diags = append(diags, failure(err)...)
			continue
		}
		bond.Bridge = br
	}
	return bonds, diags
}

// VsctlSource collects an Inventory through ovs-vsctl.
type VsctlSource struct {
	vsctl *Vsctl
}

// NewVsctlSource creates a Source backed by v.
func NewVsctlSource(v *Vsctl) *VsctlSource {
	return &VsctlSource{vsctl: v}
}

// Collect runs `show` first; when it fails OVS is reported unavailable and
// no further commands are run.
func (s *VsctlSource) Collect(ctx context.Context) (*Inventory, error) {
	inv := NewInventory()

	tree, diags, err := s.vsctl.Show(ctx)
	inv.Diagnostics = append(inv.Diagnostics, diags...)
	if err != nil {
		if ctx.Err() != nil {
			return inv, ctx.Err()
		}
		s.vsctl.log.Warn("OVS unavailable", logger.F("error", err))
		return inv, nil
	}
	inv.Available = true
	inv.Tree = tree

	var d []types.Diagnostic
	inv.Bridges, d = s.vsctl.ListBridges(ctx)
	inv.Diagnostics = append(inv.Diagnostics, d...)
	inv.Ports, d = s.vsctl.ListPorts(ctx)
	inv.Diagnostics = append(inv.Diagnostics, d...)
	inv.Interfaces, d = s.vsctl.ListInterfaces(ctx)
	inv.Diagnostics = append(inv.Diagnostics, d...)
	inv.PortBridges, d = s.vsctl.PortBridges(ctx)
	inv.Diagnostics = append(inv.Diagnostics, d...)
	inv.Bonds, d = s.vsctl.Bonds(ctx, inv.Interfaces, inv.PortBridges)
	inv.Diagnostics = append(inv.Diagnostics, d...)

	s.vsctl.log.Debug("Collected OVS inventory",
		logger.F("bridges", len(inv.Bridges)),
		logger.F("ports", len(inv.Ports)),
		logger.F("interfaces", len(inv.Interfaces)),
		logger.F("bonds", len(inv.Bonds)))

	return inv, ctx.Err()
}

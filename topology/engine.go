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

// Package topology merges the native and OVS views of the host into one
// Topology.
package topology

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/we-are-mono/l23net/logger"
	"github.com/we-are-mono/l23net/native"
	"github.com/we-are-mono/l23net/ovs"
	"github.com/we-are-mono/l23net/sysfs"
	"github.com/we-are-mono/l23net/system"
	"github.com/we-are-mono/l23net/types"
)

// Component is the diagnostic component name used by this package.
const Component = "topology"

// Options holds the collaborators of an Engine. Only Reader is required.
type Options struct {
	Reader *sysfs.Reader
	// OVS defaults to ovs.NoSource.
	OVS ovs.Source
	// Features enables per-port offload collection when set.
	Features  system.FeatureReader
	Namespace system.NamespaceChecker
	Logger    logger.Logger
}

// Engine runs discovery passes. It holds no state between passes and is
// safe for concurrent use.
type Engine struct {
	reader   *sysfs.Reader
	scanner  *native.Scanner
	ovs      ovs.Source
	features system.FeatureReader
	netns    system.NamespaceChecker
	log      logger.Logger
}

// NewEngine creates an Engine.
func NewEngine(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	src := opts.OVS
	if src == nil {
		src = ovs.NoSource{}
	}
	return &Engine{
		reader:   opts.Reader,
		scanner:  native.NewScanner(opts.Reader, log),
		ovs:      src,
		features: opts.Features,
		netns:    opts.Namespace,
		log:      log.With(logger.F("component", Component)),
	}
}

// Discover builds a fresh Topology. It fails only when the network root
// cannot be listed or ctx is cancelled; every other problem is reported
// as a diagnostic.
func (e *Engine) Discover(ctx context.Context) (*types.Topology, error) {
	log := e.log.With(logger.F("run_id", uuid.NewString()))
	log.Debug("Starting discovery")

	topo := types.NewTopology()
	topo.Diagnostics = append(topo.Diagnostics, e.checkNamespace()...)

	ports, diags, err := e.scanner.Ports()
	if err != nil {
		return nil, fmt.Errorf("failed to scan interfaces: %w", err)
	}
	topo.Diagnostics = append(topo.Diagnostics, diags...)

	nativeBridges, err := e.scanner.Bridges()
	if err != nil {
		return nil, fmt.Errorf("failed to scan bridges: %w", err)
	}

	inv, err := e.ovs.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("OVS discovery interrupted: %w", err)
	}
	topo.OVSAvailable = inv.Available
	topo.Diagnostics = append(topo.Diagnostics, inv.Diagnostics...)
	ovsConfig := ovs.BuildConfig(inv)

	nativeOwners := native.OwnersFromBridges(nativeBridges)
	topo.PortBridges = MergePortBridges(nativeOwners, inv.PortBridges)

	mergePorts(topo, ports, ovsConfig.Ports, nativeOwners)
	mergeBridges(topo, ovsConfig.Bridges, nativeBridges)

	for name, bond := range inv.Bonds {
		topo.Bonds[name] = bond
	}
	for name, bond := range e.scanner.Bonds(topo.PortBridges) {
		topo.Bonds[name] = bond
	}

	topo.VLANs, _ = e.reader.VLANs()

	if e.features != nil {
		e.collectOffload(topo, log)
	}

	for _, d := range topo.Diagnostics {
		log.Debug(d.Message, logger.F("source", d.Component), logger.F("line", d.Line))
	}
	log.Info("Discovery complete",
		logger.F("ports", len(topo.Ports)),
		logger.F("bridges", len(topo.Bridges)),
		logger.F("bonds", len(topo.Bonds)),
		logger.F("vlans", len(topo.VLANs)),
		logger.F("ovs_available", topo.OVSAvailable),
		logger.F("diagnostics", len(topo.Diagnostics)))

	return topo, nil
}

func (e *Engine) checkNamespace() []types.Diagnostic {
	if e.netns == nil {
		return nil
	}
	inDefault, err := e.netns.InDefaultNamespace()
	switch {
	case err != nil:
		return []types.Diagnostic{{Component: Component, Message: "namespace check failed: " + err.Error()}}
	case !inDefault:
		e.log.Warn("Not running in the default network namespace")
		return []types.Diagnostic{{
			Component: Component,
			Message:   "not running in the default network namespace; host interfaces may be missing",
		}}
	}
	return nil
}

// mergePorts layers OVS ports over native ones. Ports only OVS knows are
// added as OVS ports; natively bridged ports keep their native view.
func mergePorts(topo *types.Topology, nativePorts, ovsPorts map[string]*types.Port,
	nativeOwners map[string]types.PortOwner) {

	for name, p := range nativePorts {
		topo.Ports[name] = p
	}

	for name, op := range ovsPorts {
		np, ok := topo.Ports[name]
		if !ok {
			if op.Provider == "" {
				op.Provider = types.ProviderOVS
			}
			topo.Ports[name] = op
			continue
		}
		if _, bridged := nativeOwners[name]; bridged {
			continue
		}

		np.Tags.Add(op.Tags...)
		if op.Provider != "" {
			np.Provider = op.Provider
		}
		if np.Bridge == "" {
			np.Bridge = op.Bridge
		}
		if np.VLANID == nil {
			np.VLANID = op.VLANID
		}
		np.Trunks = op.Trunks
		np.Vendor = op.Vendor
	}

	for name, p := range topo.Ports {
		if owner, ok := topo.PortBridges[name]; ok && owner.Kind == types.BridgeKindNative {
			p.Bridge = owner.Bridge
		}
	}
}

// mergeBridges overlays native bridges on OVS ones and recomputes members
// from the final owner map.
func mergeBridges(topo *types.Topology, ovsBridges, nativeBridges map[string]*types.Bridge) {
	for name, br := range ovsBridges {
		topo.Bridges[name] = br
	}
	for name, br := range nativeBridges {
		topo.Bridges[name] = br
	}

	for _, br := range topo.Bridges {
		br.Members = nil
	}
	for _, port := range types.SortedKeys(topo.PortBridges) {
		owner := topo.PortBridges[port]
		if br, ok := topo.Bridges[owner.Bridge]; ok && br.Kind == owner.Kind {
			br.Members = append(br.Members, port)
		}
	}
	for _, br := range topo.Bridges {
		sort.Strings(br.Members)
	}
}

func (e *Engine) collectOffload(topo *types.Topology, log logger.Logger) {
	for _, name := range types.SortedKeys(topo.Ports) {
		feats, err := e.features.Features(name)
		if err != nil {
			log.Debug("Offload features unavailable", logger.F("interface", name), logger.F("error", err))
			continue
		}
		if len(feats) > 0 {
			topo.Ports[name].Offload = feats
		}
	}
}

// Bridges runs a discovery pass and returns its bridges.
func (e *Engine) Bridges(ctx context.Context) (map[string]*types.Bridge, error) {
	topo, err := e.Discover(ctx)
	if err != nil {
		return nil, err
	}
	return topo.Bridges, nil
}

// Ports runs a discovery pass and returns its ports.
func (e *Engine) Ports(ctx context.Context) (map[string]*types.Port, error) {
	topo, err := e.Discover(ctx)
	if err != nil {
		return nil, err
	}
	return topo.Ports, nil
}

// Bonds runs a discovery pass and returns its bonds.
func (e *Engine) Bonds(ctx context.Context) (map[string]*types.Bond, error) {
	topo, err := e.Discover(ctx)
	if err != nil {
		return nil, err
	}
	return topo.Bonds, nil
}

// VLANs returns the VLAN sub-interfaces. Only the VLAN control file is read.
func (e *Engine) VLANs(_ context.Context) (map[string]types.VLAN, error) {
	vlans, _ := e.reader.VLANs()
	return vlans, nil
}

// PortBridges runs a discovery pass and returns the port to bridge map.
func (e *Engine) PortBridges(ctx context.Context) (map[string]types.PortOwner, error) {
	topo, err := e.Discover(ctx)
	if err != nil {
		return nil, err
	}
	return topo.PortBridges, nil
}

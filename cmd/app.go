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
	"fmt"
	"io"
	"os"
	"time"

	"github.com/we-are-mono/l23net/logger"
	"github.com/we-are-mono/l23net/ovs"
	"github.com/we-are-mono/l23net/state"
	"github.com/we-are-mono/l23net/sysfs"
	"github.com/we-are-mono/l23net/system"
	"github.com/we-are-mono/l23net/topology"
	"github.com/we-are-mono/l23net/types"
)

// app bundles what a command needs to run discovery.
type app struct {
	config *types.Config
	log    logger.Logger
	engine *topology.Engine
	close  func()
}

// newApp loads the configuration, applies the command line overrides and
// wires the discovery engine.
func newApp(stderr io.Writer) (*app, error) {
	config, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	log, closeLog, err := logger.Setup(logger.Config{
		Level:     config.Logging.Level,
		Format:    config.Logging.Format,
		Outputs:   config.Logging.Outputs,
		FilePath:  config.Logging.FilePath,
		Component: "l23net",
		Stderr:    stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Init(log)

	return &app{
		config: config,
		log:    log,
		engine: newEngine(config, log),
		close:  closeLog,
	}, nil
}

func loadConfig(o globalOptions) (*types.Config, error) {
	if o.configDir != "" {
		if err := os.Setenv(state.ConfigDirEnv, o.configDir); err != nil {
			return nil, err
		}
	}

	config, err := state.LoadL23netConfig()
	if err != nil {
		return nil, err
	}
	applyOverrides(config, o)

	if err := state.Validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// applyOverrides layers command line flags over file values.
func applyOverrides(config *types.Config, o globalOptions) {
	if o.hostRoot != "" {
		config.HostRoot = o.hostRoot
	}
	if o.ovsSource != "" {
		config.OVS.Source = o.ovsSource
	}
	if o.debug {
		config.Logging.Level = "debug"
	}
}

// newEngine builds the collaborators named by config. A host root means a
// captured tree, so the live netlink and namespace checks are skipped.
func newEngine(config *types.Config, log logger.Logger) *topology.Engine {
	fs := system.NewFilesystemClientAt(config.HostRoot)

	var peers system.PeerResolver
	var netns system.NamespaceChecker
	if config.HostRoot == "" {
		peers = system.NewDefaultPeerResolver()
		netns = system.NewHostNamespaceChecker()
	}

	reader := sysfs.NewReader(fs, peers, sysfs.Paths{
		NetRoot:        config.SysfsNetRoot,
		VLANConfig:     config.ProcVLANConfig,
		BondingMasters: config.BondingMasters,
	}, log)

	engineOpts := topology.Options{
		Reader:    reader,
		OVS:       newOVSSource(config, log),
		Namespace: netns,
		Logger:    log,
	}
	if config.CollectOffload {
		engineOpts.Features = system.NewEthtoolFeatureReader()
	}
	return topology.NewEngine(engineOpts)
}

func newOVSSource(config *types.Config, log logger.Logger) ovs.Source {
	timeout := time.Duration(config.OVS.TimeoutMS) * time.Millisecond

	switch config.OVS.Source {
	case types.OVSSourceNone:
		return ovs.NoSource{}
	case types.OVSSourceOVSDB:
		return ovs.NewDBSource(config.OVS.DBEndpoint, timeout, log)
	default:
		runner := system.NewDefaultCommandRunner(timeout)
		return ovs.NewVsctlSource(ovs.NewVsctl(runner, config.OVS.VsctlPath, timeout, log))
	}
}

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

package types

// OVS source names accepted in OVSConfig.Source.
const (
	OVSSourceVsctl = "vsctl"
	OVSSourceOVSDB = "ovsdb"
	OVSSourceNone  = "none"
)

// OVSConfig selects how Open vSwitch state is read.
type OVSConfig struct {
	Source     string `json:"source" yaml:"source"`           // vsctl, ovsdb or none (default: vsctl)
	VsctlPath  string `json:"vsctl_path" yaml:"vsctl_path"`   // ovs-vsctl binary (default: ovs-vsctl)
	TimeoutMS  int    `json:"timeout_ms" yaml:"timeout_ms"`   // per-command timeout (default: 10000)
	DBEndpoint string `json:"db_endpoint" yaml:"db_endpoint"` // OVSDB endpoint for the ovsdb source
}

// LoggingConfig represents configuration for the logging system
type LoggingConfig struct {
	Level    string   `json:"level" yaml:"level"`         // debug, info, warn, error (default: info)
	Format   string   `json:"format" yaml:"format"`       // text, json (default: text)
	Outputs  []string `json:"outputs" yaml:"outputs"`     // ["console", "file", "journald"] (default: console)
	FilePath string   `json:"file_path" yaml:"file_path"` // Log file path (default: /var/log/l23net/l23net.log)
}

// ServerConfig configures the agent HTTP API.
type ServerConfig struct {
	Bind    string `json:"bind" yaml:"bind"`       // listen address (default: 127.0.0.1:9475)
	Metrics bool   `json:"metrics" yaml:"metrics"` // expose /metrics
}

// WatchConfig configures the link watcher.
type WatchConfig struct {
	DebounceMS int `json:"debounce_ms" yaml:"debounce_ms"` // quiet period before rediscovery (default: 500)
}

// Config represents the l23net configuration (/etc/l23net/l23net.json)
type Config struct {
	HostRoot       string         `json:"host_root,omitempty" yaml:"host_root,omitempty"` // prefix for all sysfs/procfs paths
	SysfsNetRoot   string         `json:"sysfs_net_root" yaml:"sysfs_net_root"`
	ProcVLANConfig string         `json:"proc_vlan_config" yaml:"proc_vlan_config"`
	BondingMasters string         `json:"bonding_masters" yaml:"bonding_masters"`
	CollectOffload bool           `json:"collect_offload" yaml:"collect_offload"`
	OVS            *OVSConfig     `json:"ovs" yaml:"ovs"`
	Logging        *LoggingConfig `json:"logging" yaml:"logging"`
	Server         *ServerConfig  `json:"server" yaml:"server"`
	Watch          *WatchConfig   `json:"watch" yaml:"watch"`
	Version        string         `json:"version" yaml:"version"`
}

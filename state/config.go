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

package state

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/we-are-mono/l23net/types"
	"github.com/we-are-mono/l23net/validation"
)

// ConfigNamespace is the file name (without .json) of the configuration.
const ConfigNamespace = "l23net"

// DebugEnv forces debug logging when set to a true value.
const DebugEnv = "L23NET_DEBUG"

// Defaults applied to missing configuration values.
const (
	DefaultVersion        = "1.0"
	DefaultSysfsNetRoot   = "/sys/class/net"
	DefaultProcVLANConfig = "/proc/net/vlan/config"
	DefaultVsctlPath      = "ovs-vsctl"
	DefaultOVSDBEndpoint  = "unix:/var/run/openvswitch/db.sock"
	DefaultOVSTimeoutMS   = 10000
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	DefaultLogFile        = "/var/log/l23net/l23net.log"
	DefaultServerBind     = "127.0.0.1:9475"
	DefaultDebounceMS     = 500
)

var (
	ovsSources = []string{types.OVSSourceVsctl, types.OVSSourceOVSDB, types.OVSSourceNone}
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
	logOutputs = []string{"console", "file", "journald"}
)

// LoadL23netConfig loads l23net.json from the config directory. A missing
// file yields the default configuration.
func LoadL23netConfig() (*types.Config, error) {
	var config types.Config
	if err := LoadConfig(ConfigNamespace, &config); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load l23net config: %w", err)
		}
		config = types.Config{}
	}

	ApplyDefaults(&config)
	applyEnv(&config)
	return &config, nil
}

// SaveL23netConfig writes l23net.json to the config directory.
func SaveL23netConfig(config *types.Config) error {
	return SaveConfig(ConfigNamespace, config)
}

// DefaultConfig returns a configuration with every default filled in.
func DefaultConfig() *types.Config {
	config := &types.Config{}
	ApplyDefaults(config)
	return config
}

// ApplyDefaults fills unset fields in place.
func ApplyDefaults(config *types.Config) {
	if config.Version == "" {
		config.Version = DefaultVersion
	}
	if config.SysfsNetRoot == "" {
		config.SysfsNetRoot = DefaultSysfsNetRoot
	}
	if config.ProcVLANConfig == "" {
		config.ProcVLANConfig = DefaultProcVLANConfig
	}

	if config.OVS == nil {
		config.OVS = &types.OVSConfig{}
	}
	if config.OVS.Source == "" {
		config.OVS.Source = types.OVSSourceVsctl
	}
	if config.OVS.VsctlPath == "" {
		config.OVS.VsctlPath = DefaultVsctlPath
	}
	if config.OVS.TimeoutMS == 0 {
		config.OVS.TimeoutMS = DefaultOVSTimeoutMS
	}
	if config.OVS.DBEndpoint == "" {
		config.OVS.DBEndpoint = DefaultOVSDBEndpoint
	}

	if config.Logging == nil {
		config.Logging = &types.LoggingConfig{}
	}
	if config.Logging.Level == "" {
		config.Logging.Level = DefaultLogLevel
	}
	if config.Logging.Format == "" {
		config.Logging.Format = DefaultLogFormat
	}
	if len(config.Logging.Outputs) == 0 {
		config.Logging.Outputs = []string{"console"}
	}
	if config.Logging.FilePath == "" {
		config.Logging.FilePath = DefaultLogFile
	}

	if config.Server == nil {
		config.Server = &types.ServerConfig{Metrics: true}
	}
	if config.Server.Bind == "" {
		config.Server.Bind = DefaultServerBind
	}

	if config.Watch == nil {
		config.Watch = &types.WatchConfig{}
	}
	if config.Watch.DebounceMS == 0 {
		config.Watch.DebounceMS = DefaultDebounceMS
	}
}

func applyEnv(config *types.Config) {
	if debug, err := strconv.ParseBool(os.Getenv(DebugEnv)); err == nil && debug {
		config.Logging.Level = "debug"
	}
}

// Validate reports every invalid setting at once.
func Validate(config *types.Config) error {
	v := validation.NewCollector()

	if config.OVS != nil {
		ov := validation.NewCollector().WithContext("ovs")
		ov.Check(validation.ValidateOneOf("source", config.OVS.Source, ovsSources))
		ov.Check(validation.ValidateNonNegative("timeout_ms", config.OVS.TimeoutMS))
		ov.Check(validation.ValidateOVSDBEndpoint(config.OVS.DBEndpoint))
		v.Check(ov.Error())
	}

	if config.Logging != nil {
		lv := validation.NewCollector().WithContext("logging")
		lv.Check(validation.ValidateOneOf("level", config.Logging.Level, logLevels))
		lv.Check(validation.ValidateOneOf("format", config.Logging.Format, logFormats))
		for _, out := range config.Logging.Outputs {
			lv.Check(validation.ValidateOneOf("output", out, logOutputs))
		}
		v.Check(lv.Error())
	}

	if config.Server != nil {
		sv := validation.NewCollector().WithContext("server")
		sv.CheckMsg(validation.ValidateEndpoint(config.Server.Bind), "invalid bind address")
		v.Check(sv.Error())
	}

	if config.Watch != nil {
		v.CheckMsg(validation.ValidateNonNegative("debounce_ms", config.Watch.DebounceMS), "watch")
	}

	return v.Error()
}

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

// Package cmd implements the l23net CLI using cobra.
// It provides the root command structure and version management.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version is the application version string.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configDir string
	output    string
	hostRoot  string
	ovsSource string
	debug     bool
}

var opts globalOptions

var rootCmd = &cobra.Command{
	Use:   "l23net",
	Short: "l23net - layer 2/3 topology discovery",
	Long: `l23net discovers the layer 2/3 topology of a Linux host.

It reads native bridges, bonds and VLANs from sysfs and procfs, merges
them with the Open vSwitch view, and reports one consistent picture.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("l23net v%s (built: %s)\n", Version, BuildTime))

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configDir, "config-dir", "", "Configuration directory (default $L23NET_CONFIG_DIR or /etc/l23net)")
	flags.StringVarP(&opts.output, "output", "o", formatJSON, "Output format: json, yaml or text")
	flags.StringVar(&opts.hostRoot, "host-root", "", "Prefix for sysfs and procfs paths")
	flags.StringVar(&opts.ovsSource, "ovs-source", "", "OVS source: vsctl, ovsdb or none")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
}

// Execute runs the root command and handles any errors.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		exitWithError()
	}
}

// SetVersion updates the version and build time for display in help and version output.
func SetVersion(version, buildTime string) {
	Version = version
	BuildTime = buildTime
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("l23net v%s (built: %s)\n", version, buildTime))
}

// exitWithError is a helper function that exits with code 1.
// It can be overridden in tests to avoid actual exit.
var exitWithError = func() {
	os.Exit(1)
}

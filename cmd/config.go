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

	"github.com/spf13/cobra"

	"github.com/we-are-mono/l23net/state"
	"github.com/we-are-mono/l23net/types"
)

var forceInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the l23net configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long:  `Prints the configuration after defaults and command line overrides are applied.`,
	Args:  cobra.NoArgs,
	Run:   runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Args:  cobra.NoArgs,
	Run:   runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configInitCmd)
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing file (a backup is kept)")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	config, err := loadConfig(opts)
	if err == nil {
		err = executeConfigShow(cmd.OutOrStdout(), config, opts.output)
	}
	if err != nil {
		cmd.PrintErrln(fmt.Sprintf("[ERROR] %v", err))
		exitWithError()
	}
}

func executeConfigShow(w io.Writer, config *types.Config, format string) error {
	if format == formatText {
		format = formatYAML
	}
	return render(w, format, config)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	if opts.configDir != "" {
		if err := os.Setenv(state.ConfigDirEnv, opts.configDir); err != nil {
			cmd.PrintErrln(fmt.Sprintf("[ERROR] %v", err))
			exitWithError()
			return
		}
	}
	if err := executeConfigInit(cmd.OutOrStdout(), forceInit); err != nil {
		cmd.PrintErrln(fmt.Sprintf("[ERROR] %v", err))
		exitWithError()
	}
}

// executeConfigInit writes the default configuration into the config
// directory. An existing file is kept unless force is set.
func executeConfigInit(w io.Writer, force bool) error {
	path := state.ConfigPath(state.ConfigNamespace)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := state.SaveL23netConfig(state.DefaultConfig()); err != nil {
		return err
	}
	fmt.Fprintf(w, "[OK] Wrote %s\n", path)
	return nil
}

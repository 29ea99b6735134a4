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
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/we-are-mono/l23net/types"
	"github.com/we-are-mono/l23net/validation"
)

// querier is the part of the topology engine the commands use.
type querier interface {
	Discover(ctx context.Context) (*types.Topology, error)
	VLANs(ctx context.Context) (map[string]types.VLAN, error)
	PatchOrder(a, b string) [2]string
}

// Entity selectors accepted by executeQuery.
const (
	entityTopology    = "topology"
	entityBridges     = "bridges"
	entityPorts       = "ports"
	entityBonds       = "bonds"
	entityVLANs       = "vlans"
	entityPortBridges = "port-bridges"
)

var queryCommands = []struct {
	use    string
	short  string
	entity string
}{
	{"discover", "Discover the full layer 2/3 topology", entityTopology},
	{"bridges", "List native and OVS bridges", entityBridges},
	{"ports", "List ports with their roles", entityPorts},
	{"bonds", "List native and OVS bonds", entityBonds},
	{"vlans", "List kernel VLAN sub-interfaces", entityVLANs},
	{"port-bridges", "Map every port to its bridge", entityPortBridges},
}

var patchOrderCmd = &cobra.Command{
	Use:   "patch-order BRIDGE BRIDGE",
	Short: "Order two bridges for a patch connection",
	Long: `Orders two bridges for a patch connection.

Bridges of the same kind are ordered by name; otherwise the OVS bridge
comes first.`,
	Args: cobra.ExactArgs(2),
	Run:  runPatchOrder,
}

func init() {
	for _, q := range queryCommands {
		entity := q.entity
		rootCmd.AddCommand(&cobra.Command{
			Use:   q.use,
			Short: q.short,
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				runQuery(cmd, entity)
			},
		})
	}
	rootCmd.AddCommand(patchOrderCmd)
}

func runQuery(cmd *cobra.Command, entity string) {
	a, err := newApp(cmd.ErrOrStderr())
	if err == nil {
		defer a.close()
		err = executeQuery(cmd.Context(), cmd.OutOrStdout(), a.engine, entity, opts.output)
	}
	if err != nil {
		cmd.PrintErrln(fmt.Sprintf("[ERROR] %v", err))
		exitWithError()
	}
}

// executeQuery runs one discovery and writes the selected entities.
func executeQuery(ctx context.Context, w io.Writer, q querier, entity, format string) error {
	if entity == entityVLANs {
		vlans, err := q.VLANs(ctx)
		if err != nil {
			return err
		}
		return render(w, format, vlans)
	}

	topo, err := q.Discover(ctx)
	if err != nil {
		return err
	}

	switch entity {
	case entityTopology:
		return render(w, format, topo)
	case entityBridges:
		return render(w, format, topo.Bridges)
	case entityPorts:
		return render(w, format, topo.Ports)
	case entityBonds:
		return render(w, format, topo.Bonds)
	case entityPortBridges:
		return render(w, format, topo.PortBridges)
	}
	return fmt.Errorf("unknown entity %q", entity)
}

func runPatchOrder(cmd *cobra.Command, args []string) {
	a, err := newApp(cmd.ErrOrStderr())
	if err == nil {
		defer a.close()
		err = executePatchOrder(cmd.OutOrStdout(), a.engine, args[0], args[1], opts.output)
	}
	if err != nil {
		cmd.PrintErrln(fmt.Sprintf("[ERROR] %v", err))
		exitWithError()
	}
}

// executePatchOrder validates both names and writes their patch order.
func executePatchOrder(w io.Writer, q querier, a, b, format string) error {
	v := validation.NewCollector()
	v.Check(validation.ValidateInterfaceName(a))
	v.Check(validation.ValidateInterfaceName(b))
	if err := v.Error(); err != nil {
		return err
	}
	return render(w, format, q.PatchOrder(a, b))
}

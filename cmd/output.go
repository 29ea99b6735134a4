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
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/we-are-mono/l23net/types"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatText = "text"
)

// render writes v in the requested format.
func render(w io.Writer, format string, v interface{}) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case formatText:
		return writeText(w, v)
	}
	return fmt.Errorf("unknown output format %q (must be json, yaml or text)", format)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func intOrDash(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func joinOrDash(items []string) string {
	return orDash(strings.Join(items, ","))
}

// writeText renders entity maps as aligned tables. Anything else falls
// back to YAML.
func writeText(w io.Writer, v interface{}) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	switch x := v.(type) {
	case *types.Topology:
		return writeTopologyText(w, x)
	case map[string]*types.Bridge:
		fmt.Fprintln(tw, "NAME\tKIND\tSTP\tMEMBERS")
		for _, name := range types.SortedKeys(x) {
			br := x[name]
			fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", name, br.Kind, br.STP, joinOrDash(br.Members))
		}
	case map[string]*types.Port:
		fmt.Fprintln(tw, "NAME\tPROVIDER\tTAGS\tMTU\tBRIDGE\tBOND")
		for _, name := range types.SortedKeys(x) {
			p := x[name]
			tags := lo.Map(p.Tags, func(t types.Tag, _ int) string { return string(t) })
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", name, orDash(string(p.Provider)),
				joinOrDash(tags), intOrDash(p.MTU), orDash(p.Bridge), orDash(p.BondMaster))
		}
	case map[string]*types.Bond:
		fmt.Fprintln(tw, "NAME\tKIND\tMODE\tSLAVES\tBRIDGE")
		for _, name := range types.SortedKeys(x) {
			b := x[name]
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", name, b.Kind, orDash(b.Properties.Mode),
				joinOrDash(b.Slaves), orDash(b.Bridge))
		}
	case map[string]types.VLAN:
		fmt.Fprintln(tw, "NAME\tDEV\tID\tMODE")
		for _, name := range types.SortedKeys(x) {
			vlan := x[name]
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", name, vlan.Dev, vlan.ID, vlan.Mode)
		}
	case map[string]types.PortOwner:
		fmt.Fprintln(tw, "PORT\tBRIDGE\tKIND")
		for _, name := range types.SortedKeys(x) {
			owner := x[name]
			fmt.Fprintf(tw, "%s\t%s\t%s\n", name, owner.Bridge, owner.Kind)
		}
	case [2]string:
		fmt.Fprintf(tw, "%s\t%s\n", x[0], x[1])
	default:
		return render(w, formatYAML, v)
	}
	return tw.Flush()
}

func writeTopologyText(w io.Writer, topo *types.Topology) error {
	sections := []struct {
		title string
		value interface{}
		empty bool
	}{
		{"Bridges", topo.Bridges, len(topo.Bridges) == 0},
		{"Ports", topo.Ports, len(topo.Ports) == 0},
		{"Bonds", topo.Bonds, len(topo.Bonds) == 0},
		{"VLANs", topo.VLANs, len(topo.VLANs) == 0},
	}

	for _, s := range sections {
		fmt.Fprintf(w, "%s:\n", s.title)
		if s.empty {
			fmt.Fprintln(w, "  (none)")
		} else if err := writeText(w, s.value); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	if topo.OVSAvailable {
		fmt.Fprintln(w, "[OK] OVS: available")
	} else {
		fmt.Fprintln(w, "[INFO] OVS: not available")
	}
	for _, d := range topo.Diagnostics {
		if d.Line != "" {
			fmt.Fprintf(w, "[WARN] %s: %s (%s)\n", d.Component, d.Message, d.Line)
		} else {
			fmt.Fprintf(w, "[WARN] %s: %s\n", d.Component, d.Message)
		}
	}
	return nil
}

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

package sysfs

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/we-are-mono/l23net/types"
	"github.com/we-are-mono/l23net/validation"
)

// vlanLine matches "<name> | <id> | <dev>" rows of /proc/net/vlan/config.
// Header rows never match because their second column is not numeric.
var vlanLine = regexp.MustCompile(`([\w+.\-]+)\s*\|\s*(\d+)\s*\|\s*([\w+\-]+)`)

// ParseVLANConfig parses the lines of the VLAN control file.
func ParseVLANConfig(lines []string) (map[string]types.VLAN, []types.Diagnostic) {
	vlans := make(map[string]types.VLAN)
	var diags []types.Diagnostic

	for _, line := range lines {
		m := vlanLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		id, err := strconv.Atoi(m[2])
		if err == nil {
			err = validation.ValidateVLANID(id)
		}
		if err != nil {
			diags = append(diags, types.Diagnostic{
				Component: Component,
				Message:   "invalid VLAN id: " + err.Error(),
				Line:      line,
			})
			continue
		}

		mode := types.VLANModeVLAN
		if strings.Contains(m[1], ".") {
			mode = types.VLANModeEth
		}
		vlans[m[1]] = types.VLAN{Name: m[1], Dev: m[3], ID: id, Mode: mode}
	}

	return vlans, diags
}

// VLANs reads and parses the VLAN control file. A missing file (8021q not
// loaded) yields an empty map.
func (r *Reader) VLANs() (map[string]types.VLAN, []types.Diagnostic) {
	data, err := r.fs.ReadFile(r.paths.VLANConfig)
	if err != nil {
		return map[string]types.VLAN{}, nil
	}
	return ParseVLANConfig(strings.Split(string(data), "\n"))
}

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

// Package sysfstest builds fake /sys/class/net trees on top of
// system.MockFilesystemClient for tests.
package sysfstest

import (
	"fmt"
	"path"
	"strings"

	"github.com/we-are-mono/l23net/system"
)

// NetRoot is the network root used by fake trees.
const NetRoot = "/sys/class/net"

// VLANConfig is the VLAN control file used by fake trees.
const VLANConfig = "/proc/net/vlan/config"

// Tree is a fake kernel network tree.
type Tree struct {
	FS *system.MockFilesystemClient
}

// New creates an empty tree with an existing network root.
func New() *Tree {
	fs := system.NewMockFilesystemClient()
	fs.AddDir(NetRoot)
	return &Tree{FS: fs}
}

// Iface describes one interface in a tree.
type Iface struct {
	tree *Tree
	name string
}

// Iface adds a symlinked interface with ifindex, mtu and an up flags file.
func (t *Tree) Iface(name string, ifindex, mtu int) *Iface {
	t.FS.AddLink(path.Join(NetRoot, name), "../../devices/virtual/net/"+name)
	t.FS.AddFile(path.Join(NetRoot, name, "ifindex"), fmt.Sprintf("%d\n", ifindex))
	t.FS.AddFile(path.Join(NetRoot, name, "mtu"), fmt.Sprintf("%d\n", mtu))
	t.FS.AddFile(path.Join(NetRoot, name, "flags"), "0x1003\n")
	return &Iface{tree: t, name: name}
}

func (i *Iface) p(elems ...string) string {
	return path.Join(append([]string{NetRoot, i.name}, elems...)...)
}

// Down marks the interface administratively down.
func (i *Iface) Down() *Iface {
	i.tree.FS.AddFile(i.p("flags"), "0x1002\n")
	return i
}

// NoFlags removes the flags file.
func (i *Iface) NoFlags() *Iface {
	delete(i.tree.FS.Files, i.p("flags"))
	return i
}

// Master links the interface to a master device.
func (i *Iface) Master(master string) *Iface {
	i.tree.FS.AddLink(i.p("master"), "../"+master)
	return i
}

// VF marks the interface as an SR-IOV virtual function.
func (i *Iface) VF() *Iface {
	i.tree.FS.AddLink(i.p("device", "physfn"), "../0000:00:01.0")
	return i
}

// Bond makes the interface a bond master with the given slaves and
// bonding attributes, and registers it in bonding_masters.
func (i *Iface) Bond(slaves []string, attrs map[string]string) *Iface {
	i.tree.FS.AddFile(i.p("bonding", "slaves"), strings.Join(slaves, " ")+"\n")
	for k, v := range attrs {
		i.tree.FS.AddFile(i.p("bonding", k), v+"\n")
	}

	masters := path.Join(NetRoot, "bonding_masters")
	current := strings.TrimSpace(string(i.tree.FS.Files[masters]))
	if current != "" {
		current += " "
	}
	i.tree.FS.AddFile(masters, current+i.name+"\n")
	return i
}

// Bridge makes the interface a native bridge with the given members.
func (i *Iface) Bridge(members []string, stp bool) *Iface {
	state := "0"
	if stp {
		state = "1"
	}
	i.tree.FS.AddFile(i.p("bridge", "stp_state"), state+"\n")
	i.tree.FS.AddDir(i.p("brif"))
	for _, m := range members {
		i.tree.FS.AddLink(i.p("brif", m), "../../"+m+"/brport")
	}
	return i
}

// VLANs writes the VLAN control file. Each row is name, id, dev.
func (t *Tree) VLANs(rows ...[3]string) {
	var sb strings.Builder
	sb.WriteString("VLAN Dev name    | VLAN ID\n")
	sb.WriteString("Name-Type: VLAN_NAME_TYPE_RAW_PLUS_VID_NO_PAD\n")
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("%-16s| %s  | %s\n", row[0], row[1], row[2]))
	}
	t.FS.AddFile(VLANConfig, sb.String())
}

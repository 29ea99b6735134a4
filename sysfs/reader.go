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

// Package sysfs reads per-interface facts from the kernel network tree
// (/sys/class/net) and the VLAN control file (/proc/net/vlan/config).
//
// Missing files are never errors: the corresponding fact is reported as
// absent. The only failure is being unable to list the network root.
package sysfs

import (
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/we-are-mono/l23net/logger"
	"github.com/we-are-mono/l23net/system"
	"github.com/we-are-mono/l23net/types"
)

// Component is the diagnostic component name used by this package.
const Component = "sysfs"

// Paths locates the kernel files the reader consumes.
type Paths struct {
	NetRoot        string
	VLANConfig     string
	BondingMasters string
}

// DefaultPaths returns the standard kernel locations.
func DefaultPaths() Paths {
	return Paths{
		NetRoot:        "/sys/class/net",
		VLANConfig:     "/proc/net/vlan/config",
		BondingMasters: "/sys/class/net/bonding_masters",
	}
}

// Facts are the raw per-interface observations.
type Facts struct {
	Name        string
	MTU         *int
	IfIndex     *int
	AdminUp     *bool
	PeerIfIndex *int
	HasBonding  bool
	HasBridge   bool
	HasBrif     bool
	Master      string
}

// Reader reads interface facts through a FilesystemClient.
type Reader struct {
	fs    system.FilesystemClient
	peers system.PeerResolver
	paths Paths
	log   logger.Logger
}

// NewReader creates a Reader. peers may be nil, in which case no interface
// reports a peer index.
func NewReader(fs system.FilesystemClient, peers system.PeerResolver, paths Paths, log logger.Logger) *Reader {
	if log == nil {
		log = logger.Nop()
	}
	defaults := DefaultPaths()
	if paths.NetRoot == "" {
		paths.NetRoot = defaults.NetRoot
	}
	if paths.VLANConfig == "" {
		paths.VLANConfig = defaults.VLANConfig
	}
	if paths.BondingMasters == "" {
		paths.BondingMasters = path.Join(paths.NetRoot, "bonding_masters")
	}
	return &Reader{
		fs:    fs,
		peers: peers,
		paths: paths,
		log:   log.With(logger.F("component", Component)),
	}
}

// Paths returns the file locations in use.
func (r *Reader) Paths() Paths {
	return r.paths
}

func (r *Reader) ifPath(name string, elems ...string) string {
	return path.Join(append([]string{r.paths.NetRoot, name}, elems...)...)
}

// ListInterfaces returns the sorted names of the symlink entries under the
// network root, excluding SR-IOV virtual functions.
func (r *Reader) ListInterfaces() ([]string, error) {
	entries, err := r.fs.ReadDir(r.paths.NetRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.paths.NetRoot, err)
	}

	names := make([]string, 0, len(entries))
	for _, name := range entries {
		if !r.fs.IsSymlink(r.ifPath(name)) {
			continue
		}
		if r.fs.Exists(r.ifPath(name, "device", "physfn")) {
			r.log.Debug("Skipping virtual function", logger.F("interface", name))
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Interface collects the facts of a single interface.
func (r *Reader) Interface(name string) Facts {
	facts := Facts{
		Name:       name,
		HasBonding: r.fs.IsDir(r.ifPath(name, "bonding")),
		HasBridge:  r.fs.IsDir(r.ifPath(name, "bridge")),
		HasBrif:    r.fs.IsDir(r.ifPath(name, "brif")),
	}

	if mtu, ok := r.readInt(r.ifPath(name, "mtu")); ok {
		facts.MTU = types.NormalizeMTU(mtu)
	}
	if idx, ok := r.readInt(r.ifPath(name, "ifindex")); ok {
		facts.IfIndex = &idx
	}
	facts.AdminUp = r.adminUp(name)

	if r.peers != nil {
		idx, ok, err := r.peers.PeerIndex(name)
		if err != nil {
			r.log.Debug("Peer lookup failed", logger.F("interface", name), logger.F("error", err))
		} else if ok {
			facts.PeerIfIndex = &idx
		}
	}

	masterLink := r.ifPath(name, "master")
	if r.fs.IsSymlink(masterLink) {
		if target, err := r.fs.Readlink(masterLink); err == nil {
			facts.Master = path.Base(target)
		}
	}

	return facts
}

// adminUp decodes IFF_UP from the flags file.
func (r *Reader) adminUp(name string) *bool {
	value, ok := r.ReadAttr(name, "flags")
	if !ok {
		return nil
	}
	flags, err := strconv.ParseUint(value, 0, 32)
	if err != nil {
		r.log.Debug("Unparsable flags", logger.F("interface", name), logger.F("value", value))
		return nil
	}
	up := flags&unix.IFF_UP != 0
	return &up
}

// ReadAttr returns the trimmed content of <root>/<name>/<attr>.
func (r *Reader) ReadAttr(name, attr string) (string, bool) {
	return r.readTrimmed(r.ifPath(name, attr))
}

func (r *Reader) readTrimmed(p string) (string, bool) {
	data, err := r.fs.ReadFile(p)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

func (r *Reader) readInt(p string) (int, bool) {
	value, ok := r.readTrimmed(p)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return n, true
}

// MTU returns the normalized MTU of an interface.
func (r *Reader) MTU(name string) *int {
	mtu, ok := r.readInt(r.ifPath(name, "mtu"))
	if !ok {
		return nil
	}
	return types.NormalizeMTU(mtu)
}

// AdminUp returns the administrative state of an interface, nil if unknown.
func (r *Reader) AdminUp(name string) *bool {
	return r.adminUp(name)
}

// BondSlaves returns the sorted slaves listed in bonding/slaves.
func (r *Reader) BondSlaves(name string) []string {
	value, ok := r.readTrimmed(r.ifPath(name, "bonding", "slaves"))
	if !ok {
		return nil
	}
	slaves := strings.Fields(value)
	sort.Strings(slaves)
	return slaves
}

// BondAttr returns the first whitespace separated field of
// bonding/<attr>, or nil when the file is missing or empty. Kernel values
// such as "802.3ad 4" are reduced to "802.3ad".
func (r *Reader) BondAttr(name, attr string) *string {
	value, ok := r.readTrimmed(r.ifPath(name, "bonding", attr))
	if !ok {
		return nil
	}
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return nil
	}
	return &fields[0]
}

// BondingMasters returns the sorted bond names registered with the kernel.
func (r *Reader) BondingMasters() []string {
	value, ok := r.readTrimmed(r.paths.BondingMasters)
	if !ok {
		return nil
	}
	masters := strings.Fields(value)
	sort.Strings(masters)
	return masters
}

// IsBridge reports whether <root>/<name>/bridge is a directory.
func (r *Reader) IsBridge(name string) bool {
	return r.fs.IsDir(r.ifPath(name, "bridge"))
}

// IsNativeBridge reports whether name has both bridge/ and brif/.
func (r *Reader) IsNativeBridge(name string) bool {
	return r.IsBridge(name) && r.fs.IsDir(r.ifPath(name, "brif"))
}

// BridgeMembers returns the sorted entries of brif/.
func (r *Reader) BridgeMembers(name string) []string {
	members, err := r.fs.ReadDir(r.ifPath(name, "brif"))
	if err != nil {
		return nil
	}
	sort.Strings(members)
	return members
}

// BridgeSTP reports whether bridge/stp_state is 1.
func (r *Reader) BridgeSTP(name string) bool {
	state, ok := r.readInt(r.ifPath(name, "bridge", "stp_state"))
	return ok && state == 1
}

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

// Package system provides the host collaborators used by discovery:
// filesystem access to the kernel network tree, external command
// execution, netlink link lookups, ethtool feature queries and the
// network namespace guard.
package system

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/safchain/ethtool"
	"github.com/spf13/afero"
	"github.com/vishvananda/netlink"
	"github.com/vishvananda/netns"
)

// FilesystemClient abstracts read access to sysfs and procfs for testability.
type FilesystemClient interface {
	// ReadFile reads the entire file content
	ReadFile(filename string) ([]byte, error)
	// ReadDir returns the entry names of a directory, sorted
	ReadDir(dirname string) ([]string, error)
	// Readlink returns the target of a symbolic link
	Readlink(name string) (string, error)
	// IsSymlink reports whether name is a symbolic link
	IsSymlink(name string) bool
	// IsDir reports whether name is a directory (following links)
	IsDir(name string) bool
	// Exists reports whether name exists
	Exists(name string) bool
}

// CommandRunner abstracts command execution for testability.
type CommandRunner interface {
	// Run executes a command and returns its standard output
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NetlinkClient abstracts the netlink link queries discovery needs.
type NetlinkClient interface {
	LinkByName(name string) (netlink.Link, error)
	LinkList() ([]netlink.Link, error)
	VethPeerIndex(link *netlink.Veth) (int, error)
}

// PeerResolver finds the peer ifindex of a point-to-point link.
type PeerResolver interface {
	// PeerIndex returns the peer index and true for veth links.
	PeerIndex(name string) (int, bool, error)
}

// FeatureReader reads ethtool offload features.
type FeatureReader interface {
	Features(name string) (map[string]bool, error)
}

// NamespaceChecker reports whether the process runs in the host network namespace.
type NamespaceChecker interface {
	InDefaultNamespace() (bool, error)
}

// DefaultFilesystemClient implements FilesystemClient on an afero filesystem.
type DefaultFilesystemClient struct {
	fs afero.Fs
}

// NewDefaultFilesystemClient creates a FilesystemClient over the real root filesystem.
func NewDefaultFilesystemClient() *DefaultFilesystemClient {
	return &DefaultFilesystemClient{fs: afero.NewOsFs()}
}

// NewFilesystemClientAt creates a FilesystemClient rooted at root, so that
// /sys/class/net resolves to <root>/sys/class/net. An empty root or "/"
// uses the real root filesystem.
func NewFilesystemClientAt(root string) *DefaultFilesystemClient {
	if root == "" || filepath.Clean(root) == "/" {
		return NewDefaultFilesystemClient()
	}
	return &DefaultFilesystemClient{fs: afero.NewBasePathFs(afero.NewOsFs(), root)}
}

// NewFilesystemClientFromFs wraps an existing afero filesystem.
func NewFilesystemClientFromFs(fs afero.Fs) *DefaultFilesystemClient {
	return &DefaultFilesystemClient{fs: fs}
}

func (c *DefaultFilesystemClient) ReadFile(filename string) ([]byte, error) {
	return afero.ReadFile(c.fs, filename)
}

func (c *DefaultFilesystemClient) ReadDir(dirname string) ([]string, error) {
	infos, err := afero.ReadDir(c.fs, dirname)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name())
	}
	return names, nil
}

func (c *DefaultFilesystemClient) Readlink(name string) (string, error) {
	reader, ok := c.fs.(afero.LinkReader)
	if !ok {
		return "", fmt.Errorf("readlink %s: %w", name, afero.ErrNoReadlink)
	}
	return reader.ReadlinkIfPossible(name)
}

func (c *DefaultFilesystemClient) IsSymlink(name string) bool {
	lstater, ok := c.fs.(afero.Lstater)
	if !ok {
		return false
	}
	info, lstatCalled, err := lstater.LstatIfPossible(name)
	if err != nil || !lstatCalled {
		return false
	}
	return info.Mode()&os.ModeSymlink != 0
}

func (c *DefaultFilesystemClient) IsDir(name string) bool {
	ok, err := afero.IsDir(c.fs, name)
	return err == nil && ok
}

func (c *DefaultFilesystemClient) Exists(name string) bool {
	ok, err := afero.Exists(c.fs, name)
	return err == nil && ok
}

// DefaultCommandRunner implements CommandRunner using real command execution.
// A non-zero Timeout bounds every command.
type DefaultCommandRunner struct {
	Timeout time.Duration
}

// NewDefaultCommandRunner creates a new DefaultCommandRunner.
func NewDefaultCommandRunner(timeout time.Duration) *DefaultCommandRunner {
	return &DefaultCommandRunner{Timeout: timeout}
}

func (c *DefaultCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", err, msg)
	}
	return stdout.Bytes(), nil
}

// DefaultNetlinkClient implements NetlinkClient using real netlink calls.
type DefaultNetlinkClient struct{}

// NewDefaultNetlinkClient creates a new DefaultNetlinkClient.
func NewDefaultNetlinkClient() *DefaultNetlinkClient {
	return &DefaultNetlinkClient{}
}

func (c *DefaultNetlinkClient) LinkByName(name string) (netlink.Link, error) {
	return netlink.LinkByName(name)
}

func (c *DefaultNetlinkClient) LinkList() ([]netlink.Link, error) {
	return netlink.LinkList()
}

func (c *DefaultNetlinkClient) VethPeerIndex(link *netlink.Veth) (int, error) {
	return netlink.VethPeerIndex(link)
}

// LinkPeerResolver resolves veth peers through netlink.
type LinkPeerResolver struct {
	netlink NetlinkClient
}

// NewLinkPeerResolver creates a PeerResolver backed by nl.
func NewLinkPeerResolver(nl NetlinkClient) *LinkPeerResolver {
	return &LinkPeerResolver{netlink: nl}
}

// NewDefaultPeerResolver creates a PeerResolver using real netlink calls.
func NewDefaultPeerResolver() *LinkPeerResolver {
	return NewLinkPeerResolver(NewDefaultNetlinkClient())
}

func (r *LinkPeerResolver) PeerIndex(name string) (int, bool, error) {
	link, err := r.netlink.LinkByName(name)
	if err != nil {
		var notFound netlink.LinkNotFoundError
		if errors.As(err, &notFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get link %s: %w", name, err)
	}

	veth, ok := link.(*netlink.Veth)
	if !ok {
		return 0, false, nil
	}

	idx, err := r.netlink.VethPeerIndex(veth)
	if err != nil {
		return 0, false, fmt.Errorf("failed to get peer index of %s: %w", name, err)
	}
	return idx, true, nil
}

// EthtoolFeatureReader reads offload features through the ethtool ioctl.
type EthtoolFeatureReader struct{}

// NewEthtoolFeatureReader creates a new EthtoolFeatureReader.
func NewEthtoolFeatureReader() *EthtoolFeatureReader {
	return &EthtoolFeatureReader{}
}

func (r *EthtoolFeatureReader) Features(name string) (map[string]bool, error) {
	e, err := ethtool.NewEthtool()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ethtool: %w", err)
	}
	defer e.Close()

	features, err := e.Features(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read features of %s: %w", name, err)
	}
	return features, nil
}

// HostNamespaceChecker compares the current namespace with the one of PID 1.
type HostNamespaceChecker struct{}

// NewHostNamespaceChecker creates a new HostNamespaceChecker.
func NewHostNamespaceChecker() *HostNamespaceChecker {
	return &HostNamespaceChecker{}
}

func (c *HostNamespaceChecker) InDefaultNamespace() (bool, error) {
	current, err := netns.Get()
	if err != nil {
		return false, fmt.Errorf("failed to get current netns: %w", err)
	}
	defer current.Close()

	host, err := netns.GetFromPid(1)
	if err != nil {
		return false, fmt.Errorf("failed to get host netns: %w", err)
	}
	defer host.Close()

	return current.Equal(host), nil
}

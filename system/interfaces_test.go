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

package system

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vishvananda/netlink"
)

// buildSysTree lays out a tiny /sys/class/net under root.
func buildSysTree(t *testing.T, root string) {
	t.Helper()

	devices := filepath.Join(root, "sys", "devices", "virtual", "net")
	net := filepath.Join(root, "sys", "class", "net")
	require.NoError(t, os.MkdirAll(filepath.Join(devices, "eth0"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(devices, "br0", "bridge"), 0755))
	require.NoError(t, os.MkdirAll(net, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(devices, "eth0", "mtu"), []byte("9000\n"), 0644))
	require.NoError(t, os.Symlink("../../devices/virtual/net/eth0", filepath.Join(net, "eth0")))
	require.NoError(t, os.Symlink("../../devices/virtual/net/br0", filepath.Join(net, "br0")))
	require.NoError(t, os.Symlink("../../../virtual/net/br0", filepath.Join(devices, "eth0", "master")))
	require.NoError(t, os.WriteFile(filepath.Join(net, "bonding_masters"), []byte("\n"), 0644))
}

func TestFilesystemClientAt(t *testing.T) {
	root := t.TempDir()
	buildSysTree(t, root)

	fs := NewFilesystemClientAt(root)

	names, err := fs.ReadDir("/sys/class/net")
	require.NoError(t, err)
	assert.Equal(t, []string{"bonding_masters", "br0", "eth0"}, names)

	assert.True(t, fs.IsSymlink("/sys/class/net/eth0"))
	assert.False(t, fs.IsSymlink("/sys/class/net/bonding_masters"))

	data, err := fs.ReadFile("/sys/class/net/eth0/mtu")
	require.NoError(t, err)
	assert.Equal(t, "9000\n", string(data))

	assert.True(t, fs.IsDir("/sys/class/net/br0/bridge"))
	assert.False(t, fs.IsDir("/sys/class/net/eth0/bridge"))
	assert.True(t, fs.Exists("/sys/class/net/eth0/master"))
	assert.False(t, fs.Exists("/sys/class/net/eth0/bonding"))

	target, err := fs.Readlink("/sys/class/net/eth0/master")
	require.NoError(t, err)
	assert.Equal(t, "br0", filepath.Base(target))
}

func TestFilesystemClientMissingDir(t *testing.T) {
	fs := NewFilesystemClientAt(t.TempDir())

	_, err := fs.ReadDir("/sys/class/net")
	assert.Error(t, err)
}

func TestNewFilesystemClientAtRoot(t *testing.T) {
	for _, root := range []string{"", "/", "//"} {
		fs := NewFilesystemClientAt(root)
		assert.NotNil(t, fs)
	}
}

func TestDefaultCommandRunner(t *testing.T) {
	runner := NewDefaultCommandRunner(5 * time.Second)

	t.Run("stdout only", func(t *testing.T) {
		out, err := runner.Run(context.Background(), "sh", "-c", "echo hello; echo noise >&2")
		require.NoError(t, err)
		assert.Equal(t, "hello\n", string(out))
	})

	t.Run("stderr becomes error", func(t *testing.T) {
		_, err := runner.Run(context.Background(), "sh", "-c", "echo broken >&2; exit 3")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broken")
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := runner.Run(ctx, "sleep", "1")
		assert.Error(t, err)
	})
}

func TestLinkPeerResolver(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(*MockNetlinkClient)
		link      string
		wantIdx   int
		wantFound bool
		wantErr   bool
	}{
		{
			name: "veth with peer",
			setup: func(m *MockNetlinkClient) {
				m.Links["veth0"] = &netlink.Veth{LinkAttrs: netlink.LinkAttrs{Name: "veth0"}}
				m.PeerIndexes["veth0"] = 12
			},
			link:      "veth0",
			wantIdx:   12,
			wantFound: true,
		},
		{
			name: "not a veth",
			setup: func(m *MockNetlinkClient) {
				m.Links["eth0"] = &netlink.Device{LinkAttrs: netlink.LinkAttrs{Name: "eth0"}}
			},
			link: "eth0",
		},
		{
			name:  "missing link",
			setup: func(m *MockNetlinkClient) {},
			link:  "ghost",
		},
		{
			name: "veth without peer",
			setup: func(m *MockNetlinkClient) {
				m.Links["veth1"] = &netlink.Veth{LinkAttrs: netlink.LinkAttrs{Name: "veth1"}}
			},
			link:    "veth1",
			wantErr: true,
		},
		{
			name: "netlink failure",
			setup: func(m *MockNetlinkClient) {
				m.LinkByNameError = errors.New("netlink socket closed")
			},
			link:    "eth0",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nl := NewMockNetlinkClient()
			tt.setup(nl)
			resolver := NewLinkPeerResolver(nl)

			idx, found, err := resolver.PeerIndex(tt.link)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantIdx, idx)
			assert.Equal(t, tt.wantFound, found)
		})
	}
}

func TestMockFilesystemClientImpliedDirs(t *testing.T) {
	fs := NewMockFilesystemClient()
	fs.AddLink("/sys/class/net/eth0", "../../devices/eth0")
	fs.AddFile("/sys/class/net/eth0/mtu", "1500")
	fs.AddDir("/sys/class/net/br0/brif")

	assert.True(t, fs.IsDir("/sys/class/net"))
	assert.True(t, fs.IsDir("/sys/class/net/br0/brif"))
	assert.True(t, fs.Exists("/sys/class/net/eth0/mtu"))

	names, err := fs.ReadDir("/sys/class/net")
	require.NoError(t, err)
	assert.Equal(t, []string{"br0", "eth0"}, names)

	names, err = fs.ReadDir("/sys/class/net/br0/brif")
	require.NoError(t, err)
	assert.Empty(t, names)
}

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

package topology

import (
	"github.com/we-are-mono/l23net/types"
)

// ResolvePortOwner picks the bridge that owns a port claimed by the native
// and OVS views. A native claim always wins. nil means unowned.
func ResolvePortOwner(nativeOwner, ovsOwner *types.PortOwner) *types.PortOwner {
	if nativeOwner != nil {
		return nativeOwner
	}
	return ovsOwner
}

// MergePortBridges builds the final port to bridge map from both views.
func MergePortBridges(nativeOwners, ovsOwners map[string]types.PortOwner) map[string]types.PortOwner {
	merged := make(map[string]types.PortOwner, len(nativeOwners)+len(ovsOwners))
	for _, owners := range []map[string]types.PortOwner{nativeOwners, ovsOwners} {
		for port := range owners {
			if _, done := merged[port]; done {
				continue
			}
			if owner := ResolvePortOwner(lookup(nativeOwners, port), lookup(ovsOwners, port)); owner != nil {
				merged[port] = *owner
			}
		}
	}
	return merged
}

func lookup(owners map[string]types.PortOwner, port string) *types.PortOwner {
	if owner, ok := owners[port]; ok {
		return &owner
	}
	return nil
}

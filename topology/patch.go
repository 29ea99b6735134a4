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

// OrderForPatch orders two bridges for patch cord creation. Bridges of the
// same kind are ordered by name; otherwise the OVS bridge comes first.
// The result does not depend on argument order.
func OrderForPatch(a, b string, kindOf func(string) types.BridgeKind) [2]string {
	ka, kb := kindOf(a), kindOf(b)
	if ka == kb {
		if b < a {
			return [2]string{b, a}
		}
		return [2]string{a, b}
	}
	if kb == types.BridgeKindOVS {
		return [2]string{b, a}
	}
	return [2]string{a, b}
}

// BridgeKind reports native for Linux bridges and ovs for anything else.
func (e *Engine) BridgeKind(name string) types.BridgeKind {
	if e.reader.IsBridge(name) {
		return types.BridgeKindNative
	}
	return types.BridgeKindOVS
}

// PatchOrder orders two bridges using the live kernel tree.
func (e *Engine) PatchOrder(a, b string) [2]string {
	return OrderForPatch(a, b, e.BridgeKind)
}

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

package ovs

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// CellKind discriminates the shapes an OVSDB JSON value can take.
type CellKind int

const (
	// CellScalar is a string, number or boolean atom.
	CellScalar CellKind = iota
	// CellUUID is ["uuid", "<id>"].
	CellUUID
	// CellSet is ["set", [<atom>...]].
	CellSet
	// CellMap is ["map", [[<key>, <value>]...]].
	CellMap
)

// Cell is one decoded column value of `--format=json` output.
type Cell struct {
	Kind   CellKind
	Scalar string
	UUID   string
	Set    []Cell
	Map    map[string]string
}

// String returns the text of a scalar or uuid, the sole element of a
// one-element set, and "" otherwise.
func (c Cell) String() string {
	switch c.Kind {
	case CellScalar:
		return c.Scalar
	case CellUUID:
		return c.UUID
	case CellSet:
		if len(c.Set) == 1 {
			return c.Set[0].String()
		}
	}
	return ""
}

// IsEmpty reports whether the cell holds no value. An empty set is the
// OVSDB encoding of an unset optional column.
func (c Cell) IsEmpty() bool {
	switch c.Kind {
	case CellSet:
		return len(c.Set) == 0
	case CellMap:
		return len(c.Map) == 0
	case CellUUID:
		return c.UUID == ""
	default:
		return c.Scalar == ""
	}
}

// Lookup returns a key of a map cell.
func (c Cell) Lookup(key string) (string, bool) {
	if c.Kind != CellMap {
		return "", false
	}
	v, ok := c.Map[key]
	return v, ok
}

// UUIDs returns the uuids held by a uuid cell or a set of uuids.
func (c Cell) UUIDs() []string {
	switch c.Kind {
	case CellUUID:
		return []string{c.UUID}
	case CellSet:
		var ids []string
		for _, e := range c.Set {
			if e.Kind == CellUUID {
				ids = append(ids, e.UUID)
			}
		}
		return ids
	}
	return nil
}

// InterfaceRefs is the `interfaces` column of a port: a single uuid for an
// ordinary port, a set of uuids for a bond.
type InterfaceRefs struct {
	Single string
	Multi  []string
}

// RefsFromCell converts an `interfaces` cell.
func RefsFromCell(c Cell) InterfaceRefs {
	if c.Kind == CellSet && len(c.Set) != 1 {
		return InterfaceRefs{Multi: c.UUIDs()}
	}
	if ids := c.UUIDs(); len(ids) == 1 {
		return InterfaceRefs{Single: ids[0]}
	}
	return InterfaceRefs{}
}

// IsMulti reports whether the port references more than one interface.
func (r InterfaceRefs) IsMulti() bool {
	return len(r.Multi) > 1
}

// All returns every referenced uuid.
func (r InterfaceRefs) All() []string {
	if r.Single != "" {
		return []string{r.Single}
	}
	return r.Multi
}

// Table is a decoded `--format=json list <Table>` document.
type Table struct {
	Headings []string
	Rows     []map[string]Cell
}

// ParseJSONTable decodes `ovs-vsctl --format=json list <Table>` output.
func ParseJSONTable(data []byte) (*Table, error) {
	var doc struct {
		Headings []string            `json:"headings"`
		Data     [][]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode json table: %w", err)
	}

	table := &Table{Headings: doc.Headings}
	for i, raw := range doc.Data {
		if len(raw) != len(doc.Headings) {
			return nil, fmt.Errorf("row %d has %d cells, expected %d", i, len(raw), len(doc.Headings))
		}
		row := make(map[string]Cell, len(raw))
		for j, rawCell := range raw {
			cell, err := decodeCell(rawCell)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", i, doc.Headings[j], err)
			}
			row[doc.Headings[j]] = cell
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func decodeCell(raw json.RawMessage) (Cell, error) {
	var pair []json.RawMessage
	if err := json.Unmarshal(raw, &pair); err == nil {
		return decodeTagged(pair)
	}
	return decodeAtom(raw)
}

func decodeTagged(pair []json.RawMessage) (Cell, error) {
	if len(pair) != 2 {
		return Cell{}, fmt.Errorf("expected [tag, value], got %d elements", len(pair))
	}
	var tag string
	if err := json.Unmarshal(pair[0], &tag); err != nil {
		return Cell{}, fmt.Errorf("invalid tag: %w", err)
	}

	switch tag {
	case "uuid", "named-uuid":
		var id string
		if err := json.Unmarshal(pair[1], &id); err != nil {
			return Cell{}, fmt.Errorf("invalid uuid: %w", err)
		}
		return Cell{Kind: CellUUID, UUID: id}, nil
	case "set":
		var elems []json.RawMessage
		if err := json.Unmarshal(pair[1], &elems); err != nil {
			return Cell{}, fmt.Errorf("invalid set: %w", err)
		}
		cell := Cell{Kind: CellSet, Set: make([]Cell, 0, len(elems))}
		for _, e := range elems {
			elem, err := decodeCell(e)
			if err != nil {
				return Cell{}, err
			}
			cell.Set = append(cell.Set, elem)
		}
		return cell, nil
	case "map":
		var pairs [][2]json.RawMessage
		if err := json.Unmarshal(pair[1], &pairs); err != nil {
			return Cell{}, fmt.Errorf("invalid map: %w", err)
		}
		cell := Cell{Kind: CellMap, Map: make(map[string]string, len(pairs))}
		for _, kv := range pairs {
			k, err := decodeCell(kv[0])
			if err != nil {
				return Cell{}, err
			}
			v, err := decodeCell(kv[1])
			if err != nil {
				return Cell{}, err
			}
			cell.Map[k.String()] = v.String()
		}
		return cell, nil
	}
	return Cell{}, fmt.Errorf("unknown tag %q", tag)
}

func decodeAtom(raw json.RawMessage) (Cell, error) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return Cell{}, fmt.Errorf("invalid atom: %w", err)
	}
	switch a := v.(type) {
	case string:
		return Cell{Kind: CellScalar, Scalar: a}, nil
	case float64:
		return Cell{Kind: CellScalar, Scalar: strconv.FormatFloat(a, 'f', -1, 64)}, nil
	case bool:
		return Cell{Kind: CellScalar, Scalar: strconv.FormatBool(a)}, nil
	case nil:
		return Cell{Kind: CellScalar}, nil
	}
	return Cell{}, fmt.Errorf("unsupported atom %s", string(raw))
}

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
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/ovn-kubernetes/libovsdb/client"
	"github.com/ovn-kubernetes/libovsdb/model"

	"github.com/we-are-mono/l23net/logger"
	"github.com/we-are-mono/l23net/types"
)

// DefaultDBEndpoint is the local ovsdb-server socket.
const DefaultDBEndpoint = "unix:/var/run/openvswitch/db.sock"

const (
	DatabaseName   = "Open_vSwitch"
	BridgeTable    = "Bridge"
	PortTable      = "Port"
	InterfaceTable = "Interface"
)

// BridgeModel is the subset of the Bridge table read by discovery.
type BridgeModel struct {
	UUID         string            `ovsdb:"_uuid"`
	Name         string            `ovsdb:"name"`
	Ports        []string          `ovsdb:"ports"`
	STPEnable    bool              `ovsdb:"stp_enable"`
	DatapathType string            `ovsdb:"datapath_type"`
	ExternalIDs  map[string]string `ovsdb:"external_ids"`
	OtherConfig  map[string]string `ovsdb:"other_config"`
	Status       map[string]string `ovsdb:"status"`
}

// PortModel is the subset of the Port table read by discovery.
type PortModel struct {
	UUID            string            `ovsdb:"_uuid"`
	Name            string            `ovsdb:"name"`
	Interfaces      []string          `ovsdb:"interfaces"`
	Tag             *int              `ovsdb:"tag"`
	Trunks          []int             `ovsdb:"trunks"`
	BondMode        *string           `ovsdb:"bond_mode"`
	BondActiveSlave *string           `ovsdb:"bond_active_slave"`
	BondUpdelay     int               `ovsdb:"bond_updelay"`
	BondDowndelay   int               `ovsdb:"bond_downdelay"`
	LACP            *string           `ovsdb:"lacp"`
	OtherConfig     map[string]string `ovsdb:"other_config"`
	Status          map[string]string `ovsdb:"status"`
}

// InterfaceModel is the subset of the Interface table read by discovery.
type InterfaceModel struct {
	UUID       string            `ovsdb:"_uuid"`
	Name       string            `ovsdb:"name"`
	Type       string            `ovsdb:"type"`
	MTU        *int              `ovsdb:"mtu"`
	AdminState *string           `ovsdb:"admin_state"`
	Options    map[string]string `ovsdb:"options"`
	Status     map[string]string `ovsdb:"status"`
}

// dbReader is the part of a libovsdb client the source needs.
type dbReader interface {
	List(ctx context.Context, result interface{}) error
	Disconnect()
}

// DBSource collects an Inventory from the OVSDB server with libovsdb.
type DBSource struct {
	endpoint string
	timeout  time.Duration
	log      logger.Logger
	connect  func(ctx context.Context) (dbReader, error)
}

// NewDBSource creates a Source reading the database at endpoint.
func NewDBSource(endpoint string, timeout time.Duration, log logger.Logger) *DBSource {
	if endpoint == "" {
		endpoint = DefaultDBEndpoint
	}
	if log == nil {
		log = logger.Nop()
	}
	s := &DBSource{
		endpoint: endpoint,
		timeout:  timeout,
		log:      log.With(logger.F("component", Component), logger.F("endpoint", endpoint)),
	}
	s.connect = s.dial
	return s
}

func (s *DBSource) dial(ctx context.Context) (dbReader, error) {
	dbModel, err := model.NewClientDBModel(DatabaseName, map[string]model.Model{
		BridgeTable:    &BridgeModel{},
		PortTable:      &PortModel{},
		InterfaceTable: &InterfaceModel{},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DB model: %w", err)
	}

	ovs, err := client.NewOVSDBClient(dbModel, client.WithEndpoint(s.endpoint))
	if err != nil {
		return nil, fmt.Errorf("failed to create OVSDB client: %w", err)
	}
	if err := ovs.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to OVSDB: %w", err)
	}
	if _, err := ovs.MonitorAll(ctx); err != nil {
		ovs.Disconnect()
		return nil, fmt.Errorf("failed to monitor OVSDB: %w", err)
	}
	return ovs, nil
}

// Collect connects, snapshots the three tables and disconnects.
func (s *DBSource) Collect(ctx context.Context) (*Inventory, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	db, err := s.connect(ctx)
	if err != nil {
		inv := NewInventory()
		inv.Diagnostics = failure(err)
		s.log.Warn("OVS unavailable", logger.F("error", err))
		return inv, nil
	}
	defer db.Disconnect()

	var bridges []BridgeModel
	var ports []PortModel
	var ifaces []InterfaceModel
	for _, rows := range []interface{}{&bridges, &ports, &ifaces} {
		if err := db.List(ctx, rows); err != nil {
			inv := NewInventory()
			inv.Diagnostics = failure(fmt.Errorf("failed to list OVSDB rows: %w", err))
			return inv, ctx.Err()
		}
	}

	return InventoryFromModels(bridges, ports, ifaces), nil
}

// InventoryFromModels assembles an Inventory from database rows. The
// layout is rebuilt from the uuid references between the tables.
func InventoryFromModels(bridges []BridgeModel, ports []PortModel, ifaces []InterfaceModel) *Inventory {
	inv := NewInventory()
	inv.Available = true

	ifaceByUUID := make(map[string]InterfaceModel, len(ifaces))
	for _, i := range ifaces {
		ifaceByUUID[i.UUID] = i
		rec := InterfaceRecord{
			Name:    i.Name,
			UUID:    i.UUID,
			Type:    i.Type,
			Status:  i.Status,
			Options: i.Options,
		}
		if i.MTU != nil {
			rec.MTU = types.NormalizeMTU(*i.MTU)
		}
		if i.AdminState != nil {
			rec.AdminState = *i.AdminState
		}
		rec.Provider = InterfaceProvider(i.Status["driver_name"])
		inv.Interfaces[i.Name] = rec
	}

	portByUUID := make(map[string]PortModel, len(ports))
	for _, p := range ports {
		portByUUID[p.UUID] = p
		rec := PortRecord{Name: p.Name, Tag: p.Tag, OtherConfig: p.OtherConfig, Status: p.Status}
		for _, t := range p.Trunks {
			rec.Trunks = append(rec.Trunks, strconv.Itoa(t))
		}
		inv.Ports[p.Name] = rec
	}

	sort.Slice(bridges, func(i, j int) bool { return bridges[i].Name < bridges[j].Name })
	for _, b := range bridges {
		inv.Bridges[b.Name] = BridgeRecord{
			Name:         b.Name,
			STP:          b.STPEnable,
			ExternalIDs:  b.ExternalIDs,
			OtherConfig:  b.OtherConfig,
			Status:       b.Status,
			DatapathType: b.DatapathType,
		}
		inv.Tree.Bridges = append(inv.Tree.Bridges, b.Name)

		for _, pid := range b.Ports {
			p, ok := portByUUID[pid]
			if !ok {
				inv.diag("bridge "+b.Name+" references unknown port", pid)
				continue
			}
			tp := &TreePort{Name: p.Name, Bridge: b.Name}
			for _, iid := range p.Interfaces {
				i, ok := ifaceByUUID[iid]
				if !ok {
					inv.diag("port "+p.Name+" references unknown interface", iid)
					continue
				}
				tp.Interfaces = append(tp.Interfaces, i.Name)
				inv.Tree.Interfaces[i.Name] = &TreeInterface{Name: i.Name, Port: p.Name, Type: i.Type, Options: i.Options}
			}
			inv.Tree.Ports[p.Name] = tp
		}
	}

	inv.PortBridges = PortBridgesFromTree(inv.Tree)

	rows := make([]PortRow, 0, len(ports))
	for _, p := range ports {
		row := PortRow{
			Name:          p.Name,
			BondUpdelay:   strconv.Itoa(p.BondUpdelay),
			BondDowndelay: strconv.Itoa(p.BondDowndelay),
			OtherConfig:   p.OtherConfig,
		}
		if len(p.Interfaces) == 1 {
			row.Interfaces = InterfaceRefs{Single: p.Interfaces[0]}
		} else {
			row.Interfaces = InterfaceRefs{Multi: p.Interfaces}
		}
		if p.BondMode != nil {
			row.BondMode = *p.BondMode
		}
		if p.BondActiveSlave != nil {
			row.BondActiveSlave = *p.BondActiveSlave
		}
		if p.LACP != nil {
			row.LACP = *p.LACP
		}
		rows = append(rows, row)
	}
	nameOf := func(id string) (string, bool) {
		i, ok := ifaceByUUID[id]
		return i.Name, ok
	}
	var diags []types.Diagnostic
	inv.Bonds, diags = BuildBonds(rows, nameOf, inv.Interfaces, inv.PortBridges)
	inv.Diagnostics = append(inv.Diagnostics, diags...)

	return inv
}

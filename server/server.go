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

// Package server exposes discovery over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v4"

	"github.com/we-are-mono/l23net/logger"
	"github.com/we-are-mono/l23net/types"
	"github.com/we-are-mono/l23net/validation"
)

// Component is the log component name used by this package.
const Component = "server"

const shutdownTimeout = 5 * time.Second

// Discoverer is the part of the topology engine served over HTTP.
type Discoverer interface {
	Discover(ctx context.Context) (*types.Topology, error)
	VLANs(ctx context.Context) (map[string]types.VLAN, error)
	PatchOrder(a, b string) [2]string
}

// Server is the agent HTTP API. Every request runs a fresh discovery.
type Server struct {
	e       *echo.Echo
	topo    Discoverer
	metrics *Metrics
	log     logger.Logger
}

// NewServer creates a Server. A nil metrics disables /metrics.
func NewServer(topo Discoverer, metrics *Metrics, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	s := &Server{e: e, topo: topo, metrics: metrics, log: log.With(logger.F("component", Component))}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	s.e.GET("/topology", s.handleTopology)
	s.e.GET("/bridges", s.handleBridges)
	s.e.GET("/ports", s.handlePorts)
	s.e.GET("/bonds", s.handleBonds)
	s.e.GET("/port-bridges", s.handlePortBridges)
	s.e.GET("/vlans", s.handleVLANs)
	s.e.GET("/patch-order", s.handlePatchOrder)
	if s.metrics != nil {
		s.e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}
}

func errorJSON(c echo.Context, code int, err error) error {
	return c.JSON(code, map[string]string{"error": err.Error()})
}

func (s *Server) discover(c echo.Context) (*types.Topology, error) {
	start := time.Now()
	topo, err := s.topo.Discover(c.Request().Context())
	if s.metrics != nil {
		s.metrics.Observe(topo, time.Since(start), err)
	}
	if err != nil {
		s.log.Error("Discovery failed", logger.F("path", c.Path()), logger.F("error", err))
	}
	return topo, err
}

func (s *Server) handleTopology(c echo.Context) error {
	topo, err := s.discover(c)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, topo)
}

func (s *Server) handleBridges(c echo.Context) error {
	topo, err := s.discover(c)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, topo.Bridges)
}

func (s *Server) handlePorts(c echo.Context) error {
	topo, err := s.discover(c)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, topo.Ports)
}

func (s *Server) handleBonds(c echo.Context) error {
	topo, err := s.discover(c)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, topo.Bonds)
}

func (s *Server) handlePortBridges(c echo.Context) error {
	topo, err := s.discover(c)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, topo.PortBridges)
}

func (s *Server) handleVLANs(c echo.Context) error {
	vlans, err := s.topo.VLANs(c.Request().Context())
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, vlans)
}

type patchOrderResponse struct {
	Order [2]string `json:"order"`
}

func (s *Server) handlePatchOrder(c echo.Context) error {
	a, b := c.QueryParam("a"), c.QueryParam("b")
	v := validation.NewCollector()
	v.CheckMsg(validation.ValidateInterfaceName(a), "a")
	v.CheckMsg(validation.ValidateInterfaceName(b), "b")
	if err := v.Error(); err != nil {
		return errorJSON(c, http.StatusBadRequest, err)
	}
	return c.JSON(http.StatusOK, patchOrderResponse{Order: s.topo.PatchOrder(a, b)})
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.e
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Listening", logger.F("address", addr))
		errCh <- s.e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("Server stopped")
	return nil
}

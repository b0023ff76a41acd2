// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type Config struct {
	ReadTimeout       time.Duration `json:"readTimeout"`
	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout"`
	WriteTimeout      time.Duration `json:"writeTimeout"`
	IdleTimeout       time.Duration `json:"idleTimeout"`

	// Bound on how long in-flight requests may drain after [Server.Shutdown].
	ShutdownTimeout time.Duration `json:"shutdownTimeout"`
	AllowedOrigins  []string      `json:"allowedOrigins"`
}

func NewDefaultConfig() Config {
	return Config{
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		AllowedOrigins:    []string{"*"},
	}
}

// Server routes the node's APIs. Every route is served under
// "/[base]/[endpoint]" behind CORS and gzip.
type Server struct {
	log             logging.Logger
	listener        net.Listener
	shutdownTimeout time.Duration

	router *router
	http   *http.Server
}

func New(log logging.Logger, listener net.Listener, cfg Config) *Server {
	r := newRouter()
	handler := gziphandler.GzipHandler(cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
	}).Handler(r))

	return &Server{
		log:             log,
		listener:        listener,
		shutdownTimeout: cfg.ShutdownTimeout,
		router:          r,
		http: &http.Server{
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
	}
}

// AddRoute mounts [handler] at "/[base]/[endpoint]".
func (s *Server) AddRoute(handler http.Handler, base, endpoint string) error {
	s.log.Info("adding route",
		zap.String("base", base),
		zap.String("endpoint", endpoint),
	)
	return s.router.AddRouter("/"+base, endpoint, handler)
}

// Addr is the address the server listens on.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Dispatch serves until [Shutdown]. A clean shutdown returns nil.
func (s *Server) Dispatch() error {
	s.log.Info("API server listening",
		zap.Stringer("address", s.listener.Addr()),
	)
	if err := s.http.Serve(s.listener); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	err := s.http.Shutdown(ctx)
	// Connections still open after the timeout are dropped.
	_ = s.http.Close()
	return err
}

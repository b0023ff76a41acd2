// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// "countervm" runs a single node executing the counter program behind a
// JSON-RPC and websocket API.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/profiler"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/countervm/config"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/genesis"
	"github.com/ava-labs/countervm/rpc"
	"github.com/ava-labs/countervm/server"
	"github.com/ava-labs/countervm/trace"
	"github.com/ava-labs/countervm/utils"
	"github.com/ava-labs/countervm/vm"
)

const statusInterval = time.Minute

var (
	configFile string

	rootCmd = &cobra.Command{
		Use:          consts.Name,
		Short:        "Counter program node",
		Version:      consts.Version,
		SilenceUsage: true,
		RunE:         runNode,
	}
)

func init() {
	rootCmd.Flags().StringVar(&configFile, "config", "", "path to the JSON node config")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		utils.Outf("{{red}}%s exited with error:{{/}} %+v\n", consts.Name, err)
		os.Exit(1)
	}
	os.Exit(0)
}

func readConfig() (*config.Config, error) {
	var b []byte
	if len(configFile) > 0 {
		var err error
		b, err = os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read config", err)
		}
	}
	return config.New(b)
}

// readGenesis returns the genesis and the chain ID derived from its bytes.
func readGenesis(cfg *config.Config) (*genesis.Genesis, ids.ID, error) {
	var b []byte
	if len(cfg.GenesisFile) > 0 {
		var err error
		b, err = os.ReadFile(cfg.GenesisFile)
		if err != nil {
			return nil, ids.Empty, fmt.Errorf("%w: failed to read genesis", err)
		}
	}
	g, err := genesis.New(b)
	if err != nil {
		return nil, ids.Empty, err
	}
	p := wrappers.Packer{Bytes: make([]byte, 0, wrappers.IntLen+len(b)), MaxSize: wrappers.IntLen + len(b)}
	p.PackInt(cfg.NetworkID)
	p.PackFixedBytes(b)
	return g, utils.ToID(p.Bytes), p.Err
}

func runNode(*cobra.Command, []string) error {
	cfg, err := readConfig()
	if err != nil {
		return err
	}
	log, closeLog := newLogger(cfg)
	defer func() {
		_ = closeLog()
	}()

	g, chainID, err := readGenesis(cfg)
	if err != nil {
		return err
	}
	tracer, err := trace.New(&cfg.Trace)
	if err != nil {
		return err
	}
	defer func() {
		if err := tracer.Close(); err != nil {
			log.Warn("failed to close tracer", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	errs := wrappers.Errs{}
	errs.Add(
		reg.Register(collectors.NewGoCollector()),
		reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})),
	)
	if errs.Errored() {
		return errs.Err
	}

	db, err := openDatabase(cfg, reg)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	node, err := vm.New(ctx, log, tracer, g, g.Rules(cfg.NetworkID, chainID), db, reg)
	if err != nil {
		_ = db.Close()
		return err
	}

	listener, err := net.Listen("tcp", cfg.HTTPAddress)
	if err != nil {
		_ = node.Close()
		return err
	}
	srv := server.New(log, listener, cfg.HTTP)
	stream, err := addRoutes(srv, node, reg, cfg.StreamingBacklogSize)
	if err != nil {
		_ = node.Close()
		return err
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(srv.Dispatch)
	if pcfg := cfg.GetContinuousProfilerConfig(); pcfg.Enabled {
		p := profiler.NewContinuous(pcfg.Dir, pcfg.Freq, pcfg.MaxNumFiles)
		eg.Go(p.Dispatch)
		eg.Go(func() error {
			<-ctx.Done()
			p.Shutdown()
			return nil
		})
	}
	eg.Go(func() error {
		reportStatus(ctx, node)
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		stream.Close()
		serr := srv.Shutdown()
		if err := node.Close(); err != nil {
			log.Warn("failed to close vm", zap.Error(err))
		}
		return serr
	})
	return eg.Wait()
}

func addRoutes(srv *server.Server, node *vm.VM, reg *prometheus.Registry, backlog int) (*rpc.WebSocketServer, error) {
	handler, err := server.NewHandler(rpc.NewJSONRPCServer(node), rpc.Name)
	if err != nil {
		return nil, err
	}
	stream, ws := rpc.NewWebSocketServer(node, backlog)
	errs := wrappers.Errs{}
	errs.Add(
		srv.AddRoute(handler, rpc.Name, rpc.JSONRPCEndpoint),
		srv.AddRoute(ws, rpc.Name, rpc.WebSocketEndpoint),
		srv.AddRoute(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), "metrics", ""),
	)
	return stream, errs.Err
}

// reportStatus logs throughput until [ctx] is done.
func reportStatus(ctx context.Context, node *vm.VM) {
	t := time.NewTicker(statusInterval)
	defer t.Stop()

	var last uint64
	for {
		select {
		case <-t.C:
			executed, lastExecuted := node.Executed()
			node.Logger().Info("status",
				zap.Uint64("executed", executed),
				zap.Uint64("sinceLast", executed-last),
				zap.Time("lastExecuted", time.UnixMilli(lastExecuted)),
			)
			last = executed
		case <-ctx.Done():
			return
		}
	}
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	txsSubmitted prometheus.Counter
	txsRejected  prometheus.Counter
	txsSucceeded prometheus.Counter
	txsFailed    prometheus.Counter
	stateChanges prometheus.Counter
	computeUnits prometheus.Counter
	seenTxs      prometheus.Gauge
	txVerify     metric.Averager
	txExecute    metric.Averager
	txCommit     metric.Averager
}

func newMetrics(r prometheus.Registerer) (*Metrics, error) {
	txVerify, err := metric.NewAverager(
		"chain_tx_verify",
		"time spent verifying transaction signatures",
		r,
	)
	if err != nil {
		return nil, err
	}
	txExecute, err := metric.NewAverager(
		"chain_tx_execute",
		"time spent executing transactions",
		r,
	)
	if err != nil {
		return nil, err
	}
	txCommit, err := metric.NewAverager(
		"chain_tx_commit",
		"time spent committing state changes",
		r,
	)
	if err != nil {
		return nil, err
	}

	m := &Metrics{
		txsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "txs_submitted",
			Help:      "number of txs submitted to vm",
		}),
		txsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "txs_rejected",
			Help:      "number of txs rejected before execution",
		}),
		txsSucceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "txs_succeeded",
			Help:      "number of txs executed and committed",
		}),
		txsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "txs_failed",
			Help:      "number of txs executed and rolled back",
		}),
		stateChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "state_changes",
			Help:      "number of state changes",
		}),
		computeUnits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "compute_units",
			Help:      "compute units consumed by executed txs",
		}),
		seenTxs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vm",
			Name:      "seen_txs",
			Help:      "number of tx IDs tracked for replay protection",
		}),
		txVerify:  txVerify,
		txExecute: txExecute,
		txCommit:  txCommit,
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.txsSubmitted),
		r.Register(m.txsRejected),
		r.Register(m.txsSucceeded),
		r.Register(m.txsFailed),
		r.Register(m.stateChanges),
		r.Register(m.computeUnits),
		r.Register(m.seenTxs),
	)
	return m, errs.Err
}

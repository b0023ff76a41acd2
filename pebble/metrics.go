// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"time"

	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace       = "counter_pebble"
	metricsInterval = 10 * time.Second
)

// sample reads one value out of a pebble metrics snapshot.
type sample struct {
	gauge prometheus.Gauge
	read  func(*pebble.Metrics) float64
}

type metrics struct {
	stallStart time.Time
	stall      metric.Averager
	get        metric.Averager
	commit     metric.Averager

	compactions       *prometheus.CounterVec
	activeCompactions prometheus.Gauge

	samples []sample
}

func newSample(name, help string, read func(*pebble.Metrics) float64) sample {
	return sample{
		gauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}),
		read: read,
	}
}

func newMetrics(r prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		compactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compactions",
			Help:      "number of compactions started, by input level",
		}, []string{"level"}),
		activeCompactions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_compactions",
			Help:      "number of compactions in progress",
		}),
		samples: []sample{
			newSample("tombstones", "approximate count of internal tombstones", func(pm *pebble.Metrics) float64 {
				return float64(pm.Keys.TombstoneCount)
			}),
			newSample("obsolete_table_bytes", "bytes held by tables the db no longer references", func(pm *pebble.Metrics) float64 {
				return float64(pm.Table.ObsoleteSize)
			}),
			newSample("obsolete_tables", "tables the db no longer references", func(pm *pebble.Metrics) float64 {
				return float64(pm.Table.ObsoleteCount)
			}),
			newSample("zombie_table_bytes", "bytes held by unreferenced tables still pinned by iterators", func(pm *pebble.Metrics) float64 {
				return float64(pm.Table.ZombieSize)
			}),
			newSample("zombie_tables", "unreferenced tables still pinned by iterators", func(pm *pebble.Metrics) float64 {
				return float64(pm.Table.ZombieCount)
			}),
			newSample("obsolete_wal_bytes", "bytes held by WAL files the db no longer needs", func(pm *pebble.Metrics) float64 {
				return float64(pm.WAL.ObsoletePhysicalSize)
			}),
			newSample("obsolete_wals", "WAL files the db no longer needs", func(pm *pebble.Metrics) float64 {
				return float64(pm.WAL.ObsoleteFiles)
			}),
		},
	}

	var (
		errs = wrappers.Errs{}
		err  error
	)
	m.stall, err = metric.NewAverager(namespace+"_write_stall", "time writes spent stalled", r)
	errs.Add(err)
	m.get, err = metric.NewAverager(namespace+"_get_latency", "time spent reading a counter key", r)
	errs.Add(err)
	m.commit, err = metric.NewAverager(namespace+"_commit_latency", "time spent committing a block of changes", r)
	errs.Add(err)
	errs.Add(
		r.Register(m.compactions),
		r.Register(m.activeCompactions),
	)
	for _, s := range m.samples {
		errs.Add(r.Register(s.gauge))
	}
	return m, errs.Err
}

func (m *metrics) listener() *pebble.EventListener {
	return &pebble.EventListener{
		CompactionBegin: func(info pebble.CompactionInfo) {
			m.activeCompactions.Inc()
			level := "l1+"
			if len(info.Input) > 0 && info.Input[0].Level == 0 {
				level = "l0"
			}
			m.compactions.WithLabelValues(level).Inc()
		},
		CompactionEnd: func(pebble.CompactionInfo) {
			m.activeCompactions.Dec()
		},
		WriteStallBegin: func(pebble.WriteStallBeginInfo) {
			m.stallStart = time.Now()
		},
		WriteStallEnd: func() {
			m.stall.Observe(float64(time.Since(m.stallStart)))
		},
	}
}

func (m *metrics) update(pm *pebble.Metrics) {
	for _, s := range m.samples {
		s.gauge.Set(s.read(pm))
	}
}

func (db *Database) collectMetrics() {
	t := time.NewTicker(metricsInterval)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			db.metrics.update(db.db.Metrics())
		case <-db.closing:
			return
		}
	}
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/neilotoole/errgroup"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/ava-labs/countervm/auth"
	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/emap"
	"github.com/ava-labs/countervm/genesis"
	"github.com/ava-labs/countervm/pda"
	"github.com/ava-labs/countervm/state"
	"github.com/ava-labs/countervm/storage"
	"github.com/ava-labs/countervm/tstate"

	avatrace "github.com/ava-labs/avalanchego/trace"
)

// Listener is called with the result of every executed transaction.
type Listener = func(*chain.Result)

// VM verifies, executes and commits transactions one at a time.
type VM struct {
	log     logging.Logger
	tracer  avatrace.Tracer
	genesis *genesis.Genesis
	rules   *genesis.Rules
	db      state.Database
	metrics *Metrics

	counterAddress codec.Address
	counterBump    uint8

	// [l] serializes submissions. Reads take it shared so they never observe
	// a partially written transaction.
	l    sync.RWMutex
	seen *emap.EMap[*chain.Transaction]
	now  func() int64

	listenersL sync.RWMutex
	listeners  []Listener

	executed     atomic.Uint64
	lastExecuted atomic.Int64
	closed       atomic.Bool
}

func New(
	ctx context.Context,
	log logging.Logger,
	tracer avatrace.Tracer,
	g *genesis.Genesis,
	rules *genesis.Rules,
	db state.Database,
	reg prometheus.Registerer,
	opts ...Option,
) (*VM, error) {
	metrics, err := newMetrics(reg)
	if err != nil {
		return nil, err
	}
	counterAddress, counterBump, err := pda.FindProgramAddress(
		[][]byte{[]byte(consts.CounterSeed)},
		rules.GetProgramID(),
	)
	if err != nil {
		return nil, err
	}
	vm := &VM{
		log:            log,
		tracer:         tracer,
		genesis:        g,
		rules:          rules,
		db:             db,
		metrics:        metrics,
		counterAddress: counterAddress,
		counterBump:    counterBump,
		seen:           emap.NewEMap[*chain.Transaction](),
		now:            func() int64 { return time.Now().UnixMilli() },
	}
	for _, opt := range opts {
		opt(vm)
	}
	if err := vm.initGenesis(ctx); err != nil {
		return nil, err
	}
	log.Info("initialized vm",
		zap.Stringer("chainID", rules.GetChainID()),
		zap.Stringer("programID", rules.GetProgramID()),
		zap.Stringer("counter", counterAddress),
		zap.Uint8("bump", counterBump),
	)
	return vm, nil
}

// initGenesis applies the genesis allocations to an empty database.
func (vm *VM) initGenesis(ctx context.Context) error {
	ctx, span := vm.tracer.Start(ctx, "VM.initGenesis")
	defer span.End()

	_, err := vm.db.GetValue(ctx, storage.GenesisKey())
	if err == nil {
		vm.log.Info("genesis state already created")
		return nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return err
	}

	scope := state.Keys{string(storage.GenesisKey()): state.All}
	for _, alloc := range vm.genesis.CustomAllocation {
		addr, err := codec.ParseAddress(alloc.Address)
		if err != nil {
			return err
		}
		scope.Add(string(storage.AccountKey(addr)), state.All)
	}
	ts := tstate.New(len(scope))
	view := ts.NewView(scope, map[string][]byte{})
	if err := vm.genesis.Load(ctx, vm.tracer, view); err != nil {
		return err
	}
	view.Commit()
	if err := ts.WriteChanges(ctx, vm.tracer, vm.db); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitFailed, err)
	}
	vm.log.Info("genesis state created", zap.Int("allocations", len(vm.genesis.CustomAllocation)))
	return nil
}

// Submit executes [tx]. An error means [tx] was rejected before execution
// and nothing about it was recorded. Otherwise the returned result says
// whether its changes were committed.
func (vm *VM) Submit(ctx context.Context, tx *chain.Transaction) (*chain.Result, error) {
	return vm.submit(ctx, tx, true)
}

// SubmitBatch verifies the signatures of [txs] together and then submits
// each in order. If the batch does not verify, every signature is checked on
// its own so one bad transaction does not reject the rest.
func (vm *VM) SubmitBatch(ctx context.Context, txs []*chain.Transaction) ([]*chain.Result, []error) {
	results := make([]*chain.Result, len(txs))
	errs := make([]error, len(txs))
	if !vm.verifyBatch(ctx, txs) {
		errs = vm.verifyEach(ctx, txs)
	}
	for i, tx := range txs {
		if errs[i] != nil {
			vm.metrics.txsRejected.Inc()
			continue
		}
		results[i], errs[i] = vm.submit(ctx, tx, false)
	}
	return results, errs
}

// verifyEach checks every signature in [txs] concurrently and returns the
// verdict of each.
func (vm *VM) verifyEach(ctx context.Context, txs []*chain.Transaction) []error {
	start := time.Now()
	defer func() {
		vm.metrics.txVerify.Observe(float64(time.Since(start)))
	}()

	verdicts := make([]error, len(txs))
	g, gctx := errgroup.WithContextN(ctx, runtime.NumCPU(), len(txs))
	for i, tx := range txs {
		i, tx := i, tx
		g.Go(func() error {
			verdicts[i] = tx.Verify(gctx)
			return nil
		})
	}
	_ = g.Wait()
	return verdicts
}

func (vm *VM) verifyBatch(ctx context.Context, txs []*chain.Transaction) bool {
	start := time.Now()
	defer func() {
		vm.metrics.txVerify.Observe(float64(time.Since(start)))
	}()

	bv := auth.NewBatchVerifier(len(txs))
	for _, tx := range txs {
		msg, err := tx.Digest()
		if err != nil {
			return false
		}
		bv.Add(msg, tx.Auth)
	}
	if err := bv.Verify(ctx); err != nil {
		vm.log.Debug("batch verification failed", zap.Int("txs", len(txs)), zap.Error(err))
		return false
	}
	return true
}

func (vm *VM) submit(ctx context.Context, tx *chain.Transaction, verifyAuth bool) (*chain.Result, error) {
	ctx, span := vm.tracer.Start(ctx, "VM.Submit")
	defer span.End()

	if vm.closed.Load() {
		return nil, ErrClosed
	}
	vm.metrics.txsSubmitted.Inc()

	vm.l.Lock()
	var (
		result *chain.Result
		err    error
	)
	// [Close] may have run while this call waited for the lock.
	if vm.closed.Load() {
		err = ErrClosed
	} else {
		result, err = vm.execute(ctx, tx, verifyAuth)
	}
	vm.l.Unlock()
	if err != nil {
		vm.metrics.txsRejected.Inc()
		vm.log.Debug("rejected tx",
			zap.Stringer("txID", tx.ID()),
			zap.Error(err),
		)
		return nil, err
	}
	vm.publish(result)
	return result, nil
}

// execute must be called with [vm.l] held.
func (vm *VM) execute(ctx context.Context, tx *chain.Transaction, verifyAuth bool) (*chain.Result, error) {
	now := vm.now()
	if evicted := vm.seen.SetMin(now); len(evicted) > 0 {
		vm.log.Debug("txs evicted from seen", zap.Int("len", len(evicted)))
	}
	if err := tx.PreExecute(vm.rules, now); err != nil {
		return nil, err
	}
	if vm.seen.Any([]*chain.Transaction{tx}) {
		return nil, fmt.Errorf("%w: %s", chain.ErrDuplicateTx, tx.ID())
	}
	if verifyAuth {
		start := time.Now()
		err := tx.Verify(ctx)
		vm.metrics.txVerify.Observe(float64(time.Since(start)))
		if err != nil {
			return nil, err
		}
	}
	stateKeys, err := tx.StateKeys()
	if err != nil {
		return nil, err
	}
	values, err := vm.readKeys(ctx, stateKeys)
	if err != nil {
		return nil, err
	}

	ts := tstate.New(len(stateKeys))
	view := ts.NewView(stateKeys, values)
	start := time.Now()
	result := tx.Execute(ctx, vm.rules, view, now)
	vm.metrics.txExecute.Observe(float64(time.Since(start)))
	for _, line := range result.Logs {
		vm.log.Debug("program log",
			zap.Stringer("txID", tx.ID()),
			zap.String("msg", line),
		)
	}

	if result.Success {
		view.Commit()
		start = time.Now()
		if err := ts.WriteChanges(ctx, vm.tracer, vm.db); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCommitFailed, err)
		}
		vm.metrics.txCommit.Observe(float64(time.Since(start)))
		vm.metrics.stateChanges.Add(float64(ts.PendingChanges()))
		vm.metrics.txsSucceeded.Inc()
	} else {
		vm.metrics.txsFailed.Inc()
	}

	vm.seen.Add([]*chain.Transaction{tx})
	vm.metrics.seenTxs.Set(float64(vm.seen.Len()))
	vm.metrics.computeUnits.Add(float64(result.Units))
	vm.executed.Inc()
	vm.lastExecuted.Store(now)
	vm.log.Info("executed tx",
		zap.Stringer("txID", tx.ID()),
		zap.Stringer("actor", result.Actor),
		zap.Bool("success", result.Success),
		zap.String("error", result.Error),
		zap.Uint64("units", result.Units),
	)
	return result, nil
}

func (vm *VM) readKeys(ctx context.Context, stateKeys state.Keys) (map[string][]byte, error) {
	values := make(map[string][]byte, len(stateKeys))
	for k := range stateKeys {
		v, err := vm.db.GetValue(ctx, []byte(k))
		if errors.Is(err, database.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		values[k] = v
	}
	return values, nil
}

// Subscribe registers [l] for every future result.
func (vm *VM) Subscribe(l Listener) {
	vm.listenersL.Lock()
	defer vm.listenersL.Unlock()

	vm.listeners = append(vm.listeners, l)
}

func (vm *VM) publish(result *chain.Result) {
	vm.listenersL.RLock()
	defer vm.listenersL.RUnlock()

	for _, l := range vm.listeners {
		l(result)
	}
}

// ReadState reads committed values. Missing keys return
// [database.ErrNotFound].
func (vm *VM) ReadState(ctx context.Context, keys [][]byte) ([][]byte, []error) {
	vm.l.RLock()
	defer vm.l.RUnlock()

	values := make([][]byte, len(keys))
	errs := make([]error, len(keys))
	for i, k := range keys {
		values[i], errs[i] = vm.db.GetValue(ctx, k)
	}
	return values, errs
}

// CounterAddress is the canonical counter address and its bump.
func (vm *VM) CounterAddress() (codec.Address, uint8) {
	return vm.counterAddress, vm.counterBump
}

// GetCounter returns the counter record, or false if it has not been
// initialized.
func (vm *VM) GetCounter(ctx context.Context) (*storage.Counter, bool, error) {
	c, err := storage.LoadCounterFromState(ctx, vm.ReadState, vm.counterAddress, vm.rules.GetProgramID())
	if errors.Is(err, storage.ErrAccountNotInitialized) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

func (vm *VM) GetBalance(ctx context.Context, addr codec.Address) (uint64, error) {
	return storage.GetBalanceFromState(ctx, vm.ReadState, addr)
}

func (vm *VM) Rules() *genesis.Rules {
	return vm.rules
}

func (*VM) Parser() chain.Parser {
	return Parser
}

func (vm *VM) Logger() logging.Logger {
	return vm.log
}

func (vm *VM) Tracer() avatrace.Tracer {
	return vm.tracer
}

// Executed is the number of transactions executed since start and the time
// of the last one.
func (vm *VM) Executed() (uint64, int64) {
	return vm.executed.Load(), vm.lastExecuted.Load()
}

// Close stops accepting transactions and closes the database.
func (vm *VM) Close() error {
	if !vm.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	vm.l.Lock()
	defer vm.l.Unlock()

	return vm.db.Close()
}

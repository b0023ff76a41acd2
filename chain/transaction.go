// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/emap"
	"github.com/ava-labs/countervm/keys"
	"github.com/ava-labs/countervm/state"
	"github.com/ava-labs/countervm/tstate"
	"github.com/ava-labs/countervm/utils"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

var _ emap.Item = (*Transaction)(nil)

type Transaction struct {
	Base *Base `json:"base"`

	Actions []Action `json:"actions"`
	Auth    Auth     `json:"auth"`

	digest    []byte
	bytes     []byte
	size      int
	id        ids.ID
	stateKeys state.Keys
}

func NewTx(base *Base, actions []Action) *Transaction {
	return &Transaction{
		Base:    base,
		Actions: actions,
	}
}

// Digest is the message signed by [Auth]: the base and every action.
func (t *Transaction) Digest() ([]byte, error) {
	if len(t.digest) > 0 {
		return t.digest, nil
	}
	size := t.Base.Size() + consts.IntLen
	for _, action := range t.Actions {
		size += consts.ByteLen + action.Size()
	}
	p := codec.NewWriter(size, consts.NetworkSizeLimit)
	t.marshalUnsigned(p)
	return p.Bytes(), p.Err()
}

// Sign attaches the signature of [factory] and returns the transaction
// reparsed from its bytes, so the returned value has its ID populated.
func (t *Transaction) Sign(factory AuthFactory, parser Parser) (*Transaction, error) {
	msg, err := t.Digest()
	if err != nil {
		return nil, err
	}
	auth, err := factory.Sign(msg)
	if err != nil {
		return nil, err
	}
	t.Auth = auth

	size := len(msg) + consts.ByteLen + t.Auth.Size()
	p := codec.NewWriter(size, consts.NetworkSizeLimit)
	if err := t.Marshal(p); err != nil {
		return nil, err
	}
	p = codec.NewReader(p.Bytes(), consts.NetworkSizeLimit)
	return UnmarshalTx(p, parser)
}

func (t *Transaction) Bytes() []byte { return t.bytes }

func (t *Transaction) Size() int { return t.size }

func (t *Transaction) ID() ids.ID { return t.id }

func (t *Transaction) Expiry() int64 { return t.Base.Timestamp }

// StateKeys is the union of the keys declared by every action.
func (t *Transaction) StateKeys() (state.Keys, error) {
	if t.stateKeys != nil {
		return t.stateKeys, nil
	}
	stateKeys := make(state.Keys)
	for _, action := range t.Actions {
		for k, v := range action.StateKeys(t.Auth.Actor()) {
			if !keys.Valid([]byte(k)) {
				return nil, ErrInvalidKeyValue
			}
			stateKeys.Add(k, v)
		}
	}
	t.stateKeys = stateKeys
	return stateKeys, nil
}

// Verify checks the signature of the transaction.
func (t *Transaction) Verify(ctx context.Context) error {
	msg, err := t.Digest()
	if err != nil {
		return err
	}
	if err := t.Auth.Verify(ctx, msg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	return nil
}

// PreExecute runs the stateless checks that must pass before the
// transaction is executed at [timestamp].
func (t *Transaction) PreExecute(r Rules, timestamp int64) error {
	if err := t.Base.Verify(r, timestamp); err != nil {
		return err
	}
	// Parsed transactions always carry an action; this catches ones built
	// with [NewTx].
	if len(t.Actions) == 0 {
		return ErrNoActions
	}
	if len(t.Actions) > int(r.GetMaxActionsPerTx()) {
		return fmt.Errorf("%w: actions=%d max=%d", ErrTooManyActions, len(t.Actions), r.GetMaxActionsPerTx())
	}
	return nil
}

// Execute runs every action in [ts]. If any action fails, [ts] is rolled back
// to where it started and the result is unsuccessful. Logs are kept either
// way.
//
// Invariant: [PreExecute] and [Verify] are called just before [Execute]
func (t *Transaction) Execute(ctx context.Context, r Rules, ts *tstate.View, timestamp int64) *Result {
	var (
		start   = ts.OpIndex()
		logs    = &Logs{}
		actor   = t.Auth.Actor()
		outputs = make([]codec.Bytes, 0, len(t.Actions))
		units   = r.GetBaseComputeUnits()
	)
	result := &Result{
		TxID:      t.id,
		Actor:     actor,
		Timestamp: timestamp,
	}
	fail := func(err error) *Result {
		ts.Rollback(ctx, start)
		result.Success = false
		result.Error = err.Error()
		result.Logs = logs.Lines()
		result.Units = units
		return result
	}

	var err error
	units, err = smath.Add(units, t.Auth.ComputeUnits(r))
	if err != nil {
		return fail(err)
	}
	for i, action := range t.Actions {
		units, err = smath.Add(units, action.ComputeUnits(r))
		if err != nil {
			return fail(err)
		}
		output, err := action.Execute(ctx, r, ts, actor, logs)
		if err != nil {
			return fail(fmt.Errorf("action %d: %w", i, err))
		}
		outputs = append(outputs, MarshalOutput(output))
	}
	result.Success = true
	result.Outputs = outputs
	result.Logs = logs.Lines()
	result.Units = units
	return result
}

func (t *Transaction) Marshal(p *codec.Packer) error {
	if len(t.bytes) > 0 {
		p.PackFixedBytes(t.bytes)
		return p.Err()
	}
	t.marshalUnsigned(p)
	p.PackByte(t.Auth.GetTypeID())
	t.Auth.Marshal(p)
	return p.Err()
}

func (t *Transaction) marshalUnsigned(p *codec.Packer) {
	t.Base.Marshal(p)
	p.PackInt(uint32(len(t.Actions)))
	for _, action := range t.Actions {
		p.PackByte(action.GetTypeID())
		action.Marshal(p)
	}
}

// ParseTx decodes a single transaction from [raw]. Trailing bytes are an
// error.
func ParseTx(raw []byte, parser Parser) (*Transaction, error) {
	p := codec.NewReader(raw, consts.NetworkSizeLimit)
	tx, err := UnmarshalTx(p, parser)
	if err != nil {
		return nil, err
	}
	if !p.Empty() {
		return nil, fmt.Errorf("%w: trailing bytes", ErrInvalidObject)
	}
	return tx, nil
}

func UnmarshalTx(p *codec.Packer, parser Parser) (*Transaction, error) {
	start := p.Offset()
	base, err := UnmarshalBase(p)
	if err != nil {
		return nil, fmt.Errorf("%w: could not unmarshal base", err)
	}
	actions, err := unmarshalActions(p, parser.ActionRegistry())
	if err != nil {
		return nil, fmt.Errorf("%w: could not unmarshal actions", err)
	}
	digest := p.Offset()
	auth, err := parser.AuthRegistry().Unmarshal(p)
	if err != nil {
		return nil, fmt.Errorf("%w: could not unmarshal auth", err)
	}
	if err := p.Err(); err != nil {
		return nil, err
	}

	var tx Transaction
	tx.Base = base
	tx.Actions = actions
	tx.Auth = auth
	codecBytes := p.Bytes()
	tx.digest = codecBytes[start:digest]
	tx.bytes = codecBytes[start:p.Offset()]
	tx.size = len(tx.bytes)
	tx.id = utils.ToID(tx.bytes)
	return &tx, nil
}

func unmarshalActions(p *codec.Packer, actionRegistry *codec.TypeParser[Action]) ([]Action, error) {
	actionCount := p.UnpackInt(true)
	if err := p.Err(); err != nil {
		return nil, err
	}
	if actionCount > uint32(consts.MaxUint8) {
		return nil, fmt.Errorf("%w: actions=%d", ErrTooManyActions, actionCount)
	}
	actions := make([]Action, 0, actionCount)
	for i := uint32(0); i < actionCount; i++ {
		action, err := actionRegistry.Unmarshal(p)
		if err != nil {
			return nil, fmt.Errorf("%w: could not unmarshal action", err)
		}
		actions = append(actions, action)
	}
	return actions, nil
}

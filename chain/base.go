// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
)

const BaseSize = consts.Int64Len + consts.IDLen

// Base binds a transaction to one chain and a window of time. The pair plays
// the role of a recent blockhash: a signed transaction can be replayed
// neither on another chain nor after [Timestamp].
type Base struct {
	// Last millisecond, rounded to a second, at which the transaction may
	// execute.
	Timestamp int64  `json:"timestamp"`
	ChainID   ids.ID `json:"chainId"`
}

// Verify checks that [b] may execute at [now] under [r].
func (b *Base) Verify(r Rules, now int64) error {
	if b.Timestamp%consts.MillisecondsPerSecond != 0 {
		return fmt.Errorf("%w: timestamp=%d", ErrMisalignedTime, b.Timestamp)
	}
	if b.Timestamp < now {
		return fmt.Errorf("%w: expiry=%d now=%d", ErrTimestampTooLate, b.Timestamp, now)
	}
	if window := r.GetValidityWindow(); b.Timestamp-now > window {
		return fmt.Errorf("%w: expiry=%d now=%d window=%d", ErrTimestampTooEarly, b.Timestamp, now, window)
	}
	if b.ChainID != r.GetChainID() {
		return fmt.Errorf("%w: expected=%s got=%s", ErrInvalidChainID, r.GetChainID(), b.ChainID)
	}
	return nil
}

func (*Base) Size() int {
	return BaseSize
}

func (b *Base) Marshal(p *codec.Packer) {
	p.PackInt64(b.Timestamp)
	p.PackID(b.ChainID)
}

func UnmarshalBase(p *codec.Packer) (*Base, error) {
	b := &Base{Timestamp: p.UnpackInt64(true)}
	p.UnpackID(true, &b.ChainID)
	if err := p.Err(); err != nil {
		return nil, err
	}
	if b.Timestamp%consts.MillisecondsPerSecond != 0 {
		return nil, fmt.Errorf("%w: timestamp=%d", ErrMisalignedTime, b.Timestamp)
	}
	return b, nil
}

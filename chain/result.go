// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
)

// Result is the outcome of executing a transaction.
type Result struct {
	TxID      ids.ID        `json:"txId"`
	Actor     codec.Address `json:"actor"`
	Timestamp int64         `json:"timestamp"`

	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	// Outputs holds one encoded [Output] per action (only on success).
	Outputs []codec.Bytes `json:"outputs"`
	Logs    []string      `json:"logs"`
	Units   uint64        `json:"units"`
}

// MarshalOutput encodes [o] as its type ID followed by its fields.
func MarshalOutput(o Output) []byte {
	p := codec.NewWriter(consts.ByteLen, consts.NetworkSizeLimit)
	p.PackByte(o.GetTypeID())
	o.Marshal(p)
	return p.Bytes()
}

// UnmarshalOutput decodes an output written by [MarshalOutput].
func UnmarshalOutput(b []byte, parser Parser) (Output, error) {
	p := codec.NewReader(b, consts.NetworkSizeLimit)
	o, err := parser.OutputRegistry().Unmarshal(p)
	if err != nil {
		return nil, err
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	if !p.Empty() {
		return nil, ErrInvalidObject
	}
	return o, nil
}

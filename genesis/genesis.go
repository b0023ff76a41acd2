// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v2"

	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/state"
	"github.com/ava-labs/countervm/storage"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

var (
	ErrInvalidProgramID      = errors.New("invalid program ID")
	ErrInvalidValidityWindow = errors.New("validity window must be positive")
	ErrInvalidMaxActions     = errors.New("max actions per tx must be positive")
)

type CustomAllocation struct {
	Address string `json:"address" yaml:"address"` // base58 address
	Balance uint64 `json:"balance" yaml:"balance"`
}

type Genesis struct {
	// Program that owns the counter record
	ProgramID string `json:"programID" yaml:"programID"`

	// Tx Parameters
	ValidityWindow  int64 `json:"validityWindow" yaml:"validityWindow"` // ms
	MaxActionsPerTx uint8 `json:"maxActionsPerTx" yaml:"maxActionsPerTx"`

	// Tx Compute Parameters
	BaseComputeUnits uint64 `json:"baseComputeUnits" yaml:"baseComputeUnits"`

	// Allocation Cost
	Rent storage.Rent `json:"rent" yaml:"rent"`

	// Allocations
	CustomAllocation []*CustomAllocation `json:"customAllocation" yaml:"customAllocation"`

	programID codec.Address
}

func Default() *Genesis {
	return &Genesis{
		ProgramID: consts.DefaultProgramID,

		// Tx Parameters
		ValidityWindow:  60 * consts.MillisecondsPerSecond, // ms
		MaxActionsPerTx: 16,

		// Tx Compute Parameters
		BaseComputeUnits: 1,

		Rent: storage.DefaultRent(),
	}
}

// New parses [b] over the defaults. [b] may be JSON or YAML; an empty [b]
// yields the defaults.
func New(b []byte) (*Genesis, error) {
	g := Default()
	trimmed := bytes.TrimSpace(b)
	switch {
	case len(trimmed) == 0:
	case trimmed[0] == '{':
		if err := json.Unmarshal(trimmed, g); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config %s: %w", string(b), err)
		}
	default:
		if err := yaml.UnmarshalStrict(trimmed, g); err != nil {
			return nil, fmt.Errorf("failed to unmarshal yaml genesis: %w", err)
		}
	}
	if err := g.Verify(); err != nil {
		return nil, err
	}
	return g, nil
}

// Verify checks the parameters and caches the parsed program ID.
func (g *Genesis) Verify() error {
	programID, err := codec.ParseAddress(g.ProgramID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProgramID, err)
	}
	if programID == storage.SystemProgramID {
		return fmt.Errorf("%w: system program", ErrInvalidProgramID)
	}
	if g.ValidityWindow <= 0 {
		return ErrInvalidValidityWindow
	}
	if g.MaxActionsPerTx == 0 {
		return ErrInvalidMaxActions
	}
	for _, alloc := range g.CustomAllocation {
		if _, err := codec.ParseAddress(alloc.Address); err != nil {
			return fmt.Errorf("%w: %s", err, alloc.Address)
		}
	}
	g.programID = programID
	return nil
}

func (g *Genesis) Load(ctx context.Context, tracer trace.Tracer, mu state.Mutable) error {
	ctx, span := tracer.Start(ctx, "Genesis.Load")
	defer span.End()

	supply := uint64(0)
	for _, alloc := range g.CustomAllocation {
		pk, err := codec.ParseAddress(alloc.Address)
		if err != nil {
			return err
		}
		supply, err = smath.Add(supply, alloc.Balance)
		if err != nil {
			return err
		}
		if _, err := storage.AddBalance(ctx, mu, pk, alloc.Balance); err != nil {
			return fmt.Errorf("%w: addr=%s, bal=%d", err, alloc.Address, alloc.Balance)
		}
	}
	return mu.Insert(ctx, storage.GenesisKey(), binaryUint64(supply))
}

func binaryUint64(v uint64) []byte {
	p := codec.NewWriter(consts.Uint64Len, consts.Uint64Len)
	p.PackUint64(v)
	return p.Bytes()
}

// Supply decodes the value stored under [storage.GenesisKey].
func Supply(b []byte) (uint64, error) {
	p := codec.NewReader(b, consts.Uint64Len)
	v := p.UnpackUint64(false)
	return v, p.Err()
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/countervm/consts"
)

type Blah interface {
	Typed
	Bark() string
}

type Blah1 struct{}

func (*Blah1) Bark() string { return "blah1" }

func (*Blah1) GetTypeID() uint8 { return 0 }

type Blah2 struct{}

func (*Blah2) Bark() string { return "blah2" }

func (*Blah2) GetTypeID() uint8 { return 1 }

func TestTypeParser(t *testing.T) {
	tp := NewTypeParser[Blah]()

	t.Run("empty parser", func(t *testing.T) {
		require := require.New(t)
		f, ok := tp.LookupIndex(0)
		require.Nil(f)
		require.False(ok)
	})

	t.Run("populated parser", func(t *testing.T) {
		require := require.New(t)

		require.NoError(tp.Register(&Blah1{}, func(*Packer) (Blah, error) { return &Blah1{}, nil }))
		require.NoError(tp.Register(&Blah2{}, func(*Packer) (Blah, error) { return &Blah2{}, nil }))

		f, ok := tp.LookupIndex(1)
		require.True(ok)
		res, err := f(nil)
		require.NoError(err)
		require.Equal("blah2", res.Bark())
	})

	t.Run("duplicate item", func(t *testing.T) {
		require := require.New(t)
		err := tp.Register(&Blah1{}, nil)
		require.ErrorIs(err, ErrDuplicateItem)
	})

	t.Run("unmarshal", func(t *testing.T) {
		require := require.New(t)

		p := NewWriter(1, consts.MaxInt)
		p.PackByte(0)
		res, err := tp.Unmarshal(NewReader(p.Bytes(), consts.MaxInt))
		require.NoError(err)
		require.Equal("blah1", res.Bark())

		p = NewWriter(1, consts.MaxInt)
		p.PackByte(7)
		_, err = tp.Unmarshal(NewReader(p.Bytes(), consts.MaxInt))
		require.ErrorIs(err, ErrUnknownType)
	})
}

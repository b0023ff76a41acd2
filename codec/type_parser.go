// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import "fmt"

// Typed is implemented by every object that can be registered in a
// [TypeParser].
type Typed interface {
	GetTypeID() uint8
}

// TypeParser maps a type ID to the decoder for that type.
type TypeParser[T Typed] struct {
	indexToDecoder map[uint8]func(*Packer) (T, error)
}

func NewTypeParser[T Typed]() *TypeParser[T] {
	return &TypeParser[T]{
		indexToDecoder: map[uint8]func(*Packer) (T, error){},
	}
}

// Register adds [f] as the decoder for [o]'s type ID.
func (p *TypeParser[T]) Register(o T, f func(*Packer) (T, error)) error {
	typeID := o.GetTypeID()
	if _, ok := p.indexToDecoder[typeID]; ok {
		return fmt.Errorf("%w: typeID=%d", ErrDuplicateItem, typeID)
	}
	p.indexToDecoder[typeID] = f
	return nil
}

// LookupIndex returns the decoder registered for [index].
func (p *TypeParser[T]) LookupIndex(index uint8) (func(*Packer) (T, error), bool) {
	f, ok := p.indexToDecoder[index]
	return f, ok
}

// Unmarshal reads a type ID followed by the object it identifies.
func (p *TypeParser[T]) Unmarshal(pk *Packer) (T, error) {
	var empty T
	typeID := pk.UnpackByte()
	if err := pk.Err(); err != nil {
		return empty, err
	}
	f, ok := p.LookupIndex(typeID)
	if !ok {
		return empty, fmt.Errorf("%w: typeID=%d", ErrUnknownType, typeID)
	}
	return f(pk)
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package boltdb persists committed state in a single bbolt file.
package boltdb

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/maybe"

	"github.com/ava-labs/countervm/state"

	bolt "go.etcd.io/bbolt"
)

var (
	_ state.Database = (*Database)(nil)

	stateBucket = []byte("state")

	ErrClosed = errors.New("database closed")
)

const openTimeout = time.Second

type Database struct {
	db *bolt.DB
}

func New(file string, mode os.FileMode) (*Database, error) {
	db, err := bolt.Open(file, mode, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(stateBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Database{db: db}, nil
}

func (d *Database) GetValue(_ context.Context, key []byte) ([]byte, error) {
	var v []byte
	err := d.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(stateBucket)
		if b == nil {
			return ErrClosed
		}
		// Values are only valid for the life of the transaction.
		if raw := b.Get(key); raw != nil {
			v = append([]byte{}, raw...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, database.ErrNotFound
	}
	return v, nil
}

// Commit applies [changes] in one read-write transaction.
func (d *Database) Commit(_ context.Context, changes map[string]maybe.Maybe[[]byte]) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(stateBucket)
		for k, v := range changes {
			var err error
			if v.IsNothing() {
				err = b.Delete([]byte(k))
			} else {
				err = b.Put([]byte(k), v.Value())
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *Database) Close() error {
	return d.db.Close()
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/maybe"
)

var _ Database = (*AvalancheDB)(nil)

// AvalancheDB adapts an avalanchego [database.Database] (memdb, leveldb) to
// [Database]. Changes are written in a single batch.
type AvalancheDB struct {
	db database.Database
}

func NewAvalancheDB(db database.Database) *AvalancheDB {
	return &AvalancheDB{db: db}
}

func (a *AvalancheDB) GetValue(_ context.Context, key []byte) ([]byte, error) {
	return a.db.Get(key)
}

func (a *AvalancheDB) Commit(_ context.Context, changes map[string]maybe.Maybe[[]byte]) error {
	batch := a.db.NewBatch()
	for k, v := range changes {
		var err error
		if v.IsNothing() {
			err = batch.Delete([]byte(k))
		} else {
			err = batch.Put([]byte(k), v.Value())
		}
		if err != nil {
			return err
		}
	}
	return batch.Write()
}

func (a *AvalancheDB) Close() error {
	return a.db.Close()
}

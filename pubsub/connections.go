// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"sync"

	"github.com/ava-labs/avalanchego/utils/set"
)

// registry tracks the live subscribers of a [Server]. Once closed it refuses
// new connections.
type registry struct {
	lock   sync.RWMutex
	closed bool
	conns  set.Set[*Connection]
}

func (r *registry) add(conn *Connection) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.closed {
		return false
	}
	r.conns.Add(conn)
	return true
}

func (r *registry) remove(conn *Connection) {
	r.lock.Lock()
	r.conns.Remove(conn)
	r.lock.Unlock()
}

func (r *registry) snapshot() []*Connection {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.conns.List()
}

func (r *registry) len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.conns.Len()
}

// close rejects future connections and returns the ones still registered.
func (r *registry) close() []*Connection {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.closed = true
	conns := r.conns.List()
	r.conns = nil
	return conns
}

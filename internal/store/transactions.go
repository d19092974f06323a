// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package store

import (
	"sync"

	"github.com/kvnode/kvnode/internal/wire"
)

// TransactionStore tracks, per client, the queue of commands submitted
// between MULTI and EXEC/DISCARD. A client is "in a transaction" iff an
// entry exists in the map, even an empty one.
type TransactionStore struct {
	mu     sync.Mutex
	queues map[string][]wire.Command
}

func NewTransactionStore() *TransactionStore {
	return &TransactionStore{queues: make(map[string][]wire.Command)}
}

// Create starts an empty queue for clientID if one doesn't already exist.
// Idempotent: a second MULTI inside a transaction leaves the existing
// queue untouched.
func (t *TransactionStore) Create(clientID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.queues[clientID]; !ok {
		t.queues[clientID] = nil
	}
}

// Enqueue appends cmd to clientID's queue. The caller must have already
// confirmed Has(clientID).
func (t *TransactionStore) Enqueue(clientID string, cmd wire.Command) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.queues[clientID] = append(t.queues[clientID], cmd)
}

// Has reports whether clientID currently has an open transaction.
func (t *TransactionStore) Has(clientID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.queues[clientID]
	return ok
}

// Remove clears and returns clientID's queue (EXEC/DISCARD), reporting
// ok == false if no transaction was open.
func (t *TransactionStore) Remove(clientID string) (queue []wire.Command, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	queue, ok = t.queues[clientID]
	delete(t.queues, clientID)
	return queue, ok
}

// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package store

import "sync/atomic"

// KeyType is the coarse type tag TYPE reports for a key.
type KeyType string

const (
	KeyTypeNone   KeyType = "none"
	KeyTypeString KeyType = "string"
	KeyTypeList   KeyType = "list"
	KeyTypeStream KeyType = "stream"
)

// GlobalStore composes the typed sub-stores behind the single set of
// operations dispatcher workers call. Every method here takes exactly the
// locks it needs for one logical operation and releases them before
// returning; no caller ever holds two sub-store locks at once. When an
// operation also touches the Notifier (RPUSH/LPUSH/XADD waking a blocked
// reader), the sub-store guard is taken and released first and the
// Notifier is only ever engaged afterward, so the Notifier's own guard is
// always the last taken and first released of the pair.
type GlobalStore struct {
	Strings      *MapStore
	Lists        *ListStore
	Streams      *StreamStore
	Notifier     *Notifier
	Transactions *TransactionStore

	connectedFollowers atomic.Int64
}

func NewGlobalStore() *GlobalStore {
	return &GlobalStore{
		Strings:      NewMapStore(),
		Lists:        NewListStore(),
		Streams:      NewStreamStore(),
		Notifier:     NewNotifier(),
		Transactions: NewTransactionStore(),
	}
}

// KeyType probes each sub-store in turn (string, then non-empty list, then
// stream) and reports the first match, or KeyTypeNone if key exists
// nowhere; a list key whose list is empty counts as absent. The three
// probes are independent single-store operations; nothing holds more than
// one sub-store lock at a time.
func (g *GlobalStore) KeyType(key string) KeyType {
	if g.Strings.Has(key) {
		return KeyTypeString
	}
	if g.Lists.Len(key) > 0 {
		return KeyTypeList
	}
	if g.Streams.Has(key) {
		return KeyTypeStream
	}
	return KeyTypeNone
}

// NotifyListPush wakes a blocked BLPOP reader of key, if any, after a
// RPUSH/LPUSH has already been committed to the ListStore. Must be called
// after the ListStore mutation has returned, never while holding its lock.
func (g *GlobalStore) NotifyListPush(key string) {
	g.Notifier.Publish(key)
}

// NotifyStreamAdd wakes a blocked XREAD BLOCK reader of key, if any, after
// an XADD has already been committed to the StreamStore.
func (g *GlobalStore) NotifyStreamAdd(key string) {
	g.Notifier.Publish(key)
}

// AddFollower increments the count of currently connected replication
// followers, returning the new count. Called by the replication leader
// when a PSYNC handshake completes.
func (g *GlobalStore) AddFollower() int64 {
	return g.connectedFollowers.Add(1)
}

// RemoveFollower decrements the connected-follower count on disconnect.
func (g *GlobalStore) RemoveFollower() int64 {
	return g.connectedFollowers.Add(-1)
}

// ConnectedFollowers reports the current connected-follower count, as shown
// by /debug/status and the housekeeping stats log.
func (g *GlobalStore) ConnectedFollowers() int64 {
	return g.connectedFollowers.Load()
}

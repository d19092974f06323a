// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package store

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// backlogSize bounds how many distinct keys the Notifier's backlog
// remembers. The backlog is keyed by key name, so each key has at most one
// deduplicated entry; a producer that publishes a key nobody is yet
// registered for cannot grow it unboundedly.
const backlogSize = 1024

// waiter is one client's blocking-wait registration.
type waiter struct {
	interest     map[string]struct{}
	registeredAt time.Time
	ch           chan string
}

// Notifier lets dispatcher goroutines block on a set of keys (BLPOP,
// XREAD BLOCK) and lets writers wake exactly one waiter per publish: the
// single longest-registered client whose interest set contains the
// published key. A bounded backlog remembers keys published with no
// registered waiter so a client that registers moments later can still
// pick them up when its wait times out (see DrainBacklog).
type Notifier struct {
	mu      sync.Mutex
	clients map[string]*waiter
	backlog *lru.Cache[string, struct{}]
}

func NewNotifier() *Notifier {
	backlog, err := lru.New[string, struct{}](backlogSize)
	if err != nil {
		// Only returns an error for a non-positive size, which backlogSize
		// never is.
		panic(err)
	}
	return &Notifier{
		clients: make(map[string]*waiter),
		backlog: backlog,
	}
}

// Register records clientID's interest in keys and returns a channel that
// receives exactly one key when a writer satisfies the wait. A client has
// at most one registration at a time; registering again replaces any
// previous one.
func (n *Notifier) Register(clientID string, keys []string) <-chan string {
	n.mu.Lock()
	defer n.mu.Unlock()

	interest := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		interest[k] = struct{}{}
	}

	w := &waiter{interest: interest, registeredAt: time.Now(), ch: make(chan string, 1)}
	n.clients[clientID] = w
	return w.ch
}

// Unregister removes clientID's registration, if any. Safe to call more
// than once and on exit paths that never registered.
func (n *Notifier) Unregister(clientID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.clients, clientID)
}

// Publish wakes the single longest-waiting client interested in key, if
// any is currently registered. If none is registered, key is recorded in
// the bounded backlog for a later DrainBacklog call. Returns true if a
// waiter was woken.
func (n *Notifier) Publish(key string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	var (
		bestID string
		best   *waiter
	)
	for id, w := range n.clients {
		if _, interested := w.interest[key]; !interested {
			continue
		}
		if best == nil ||
			w.registeredAt.Before(best.registeredAt) ||
			(w.registeredAt.Equal(best.registeredAt) && id < bestID) {
			best, bestID = w, id
		}
	}

	if best == nil {
		n.backlog.Add(key, struct{}{})
		return false
	}

	delete(n.clients, bestID)
	best.ch <- key
	return true
}

// DrainBacklog reports whether any of keys has a pending backlog entry,
// consuming it if so. Called once, on timeout, by a client that
// registered after the key was published with no waiter present.
func (n *Notifier) DrainBacklog(keys []string) (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, k := range keys {
		if _, ok := n.backlog.Get(k); ok {
			n.backlog.Remove(k)
			return k, true
		}
	}
	return "", false
}

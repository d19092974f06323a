// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dispatch

import (
	"sync"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
)

// replica is one follower that has completed the PSYNC handshake: its
// reply channel receives a clone of every replicated command frame, in
// the exact order the leader finalized them.
type replica struct {
	clientID string
	ch       chan<- []byte
}

// replicaSet is the leader's registry of attached followers, keyed by
// client id. It is guarded by its own mutex, independent of GlobalStore's
// locks, since it is dispatcher-private bookkeeping rather than shared
// data.
type replicaSet struct {
	mu       sync.RWMutex
	replicas map[string]replica
}

func newReplicaSet() *replicaSet {
	return &replicaSet{replicas: make(map[string]replica)}
}

// Attach registers clientID as a follower. Called by cmdPsync when a PSYNC
// arrives, just before FULLRESYNC and the RDB snapshot are sent.
func (r *replicaSet) Attach(clientID string, ch chan<- []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replicas[clientID] = replica{clientID: clientID, ch: ch}
	cclog.Infof("dispatch: replica %s attached, %d connected", clientID, len(r.replicas))
}

// Detach removes clientID from the registry, e.g. on disconnect or a
// failed send.
func (r *replicaSet) Detach(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.replicas[clientID]; ok {
		delete(r.replicas, clientID)
		cclog.Infof("dispatch: replica %s detached, %d connected", clientID, len(r.replicas))
	}
}

// Count reports the number of currently attached followers.
func (r *replicaSet) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.replicas)
}

// Broadcast forwards raw to every attached follower's reply channel. A
// follower whose channel is full or closed is dropped from the registry
// rather than blocking the broadcaster; per spec, a replication send
// failure removes the follower and client serving continues.
func (r *replicaSet) Broadcast(raw []byte) {
	r.mu.RLock()
	targets := make([]replica, 0, len(r.replicas))
	for _, rep := range r.replicas {
		targets = append(targets, rep)
	}
	r.mu.RUnlock()

	for _, rep := range targets {
		sent := func() (ok bool) {
			// A send on a closed channel panics; treat it like a full one.
			defer func() {
				if recover() != nil {
					ok = false
				}
			}()
			select {
			case rep.ch <- raw:
				return true
			default:
				return false
			}
		}()
		if !sent {
			cclog.Warnf("dispatch: replica %s reply channel full or closed, dropping replica", rep.clientID)
			r.Detach(rep.clientID)
		}
	}
}

// IDs returns the client ids of every currently attached follower, a
// snapshot used by WAIT to know who to collect ACKs from.
func (r *replicaSet) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.replicas))
	for id := range r.replicas {
		ids = append(ids, id)
	}
	return ids
}

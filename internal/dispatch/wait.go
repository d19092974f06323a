// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dispatch

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ackCollector fans out incoming REPLCONF ACK notifications (received as
// ordinary commands on a replica's connection) to any WAIT call currently
// listening. A WAIT in progress registers once and counts distinct
// replica ids it hears from; per the open question left in the original
// design, any ACK is counted regardless of the offset it carries.
type ackCollector struct {
	mu        sync.Mutex
	listeners map[string]chan string
}

func newAckCollector() *ackCollector {
	return &ackCollector{listeners: make(map[string]chan string)}
}

func (a *ackCollector) register(waitID string) <-chan string {
	ch := make(chan string, 64)
	a.mu.Lock()
	a.listeners[waitID] = ch
	a.mu.Unlock()
	return ch
}

func (a *ackCollector) unregister(waitID string) {
	a.mu.Lock()
	delete(a.listeners, waitID)
	a.mu.Unlock()
}

// publish notifies every active WAIT listener that replicaID has acked.
func (a *ackCollector) publish(replicaID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, ch := range a.listeners {
		select {
		case ch <- replicaID:
		default:
		}
	}
}

// getAckCommand is the exact wire form of REPLCONF GETACK *, broadcast to
// every follower as the first step of WAIT.
var getAckCommand = []byte("*3\r\n$8\r\nREPLCONF\r\n$6\r\nGETACK\r\n$1\r\n*\r\n")

// runWait implements WAIT numreplicas timeout_ms: broadcasts GETACK to
// every attached follower, then collects distinct replica acks until
// either numreplicas have answered or timeoutMS elapses (0 meaning
// infinite). It paces its re-checks of the accumulated ack count with a
// rate.Limiter instead of spinning in a tight select loop.
func (d *Dispatcher) runWait(numReplicas int, timeoutMS int64) int64 {
	if numReplicas <= 0 {
		return 0
	}

	connected := int64(d.replicas.Count())
	if connected == 0 {
		return 0
	}

	waitID := NewClientID()
	acks := d.acks.register(waitID)
	defer d.acks.unregister(waitID)

	d.replicas.Broadcast(getAckCommand)

	var deadline <-chan time.Time
	if timeoutMS > 0 {
		timer := time.NewTimer(time.Duration(timeoutMS) * time.Millisecond)
		defer timer.Stop()
		deadline = timer.C
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	limiter := rate.NewLimiter(rate.Limit(50), 1)

	seen := make(map[string]struct{})
	for len(seen) < numReplicas {
		select {
		case id := <-acks:
			seen[id] = struct{}{}
		case <-deadline:
			return int64(len(seen))
		default:
		}
		if len(seen) >= numReplicas {
			break
		}
		if err := limiter.Wait(ctx); err != nil {
			return int64(len(seen))
		}
	}
	return int64(len(seen))
}

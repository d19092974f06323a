// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dispatch

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"sync/atomic"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/kvnode/kvnode/internal/obs"
	"github.com/kvnode/kvnode/internal/store"
	"github.com/kvnode/kvnode/internal/wire"
)

// replicatedCommands is the set of command kinds whose raw frame is
// forwarded to every attached follower before the client is replied to.
// SET is the only mutating command specified today; the set is
// extensible as the store grows more mutating operations.
var replicatedCommands = map[wire.CommandKind]bool{
	wire.CmdSet: true,
}

// Dispatcher is the worker pool described in spec.md §4.8: workers pull
// requests off a buffered queue (see Submit), consult TransactionStore for
// queueing, execute against GlobalStore, and reply.
type Dispatcher struct {
	Store    *store.GlobalStore
	Metrics  *obs.Metrics
	queue    chan Request
	replicas *replicaSet
	acks     *ackCollector
	replID   string

	clients atomic.Int64
	wg      sync.WaitGroup
}

// ClientConnected records a new client connection, for stats reporting.
// The acceptor calls this once per accepted socket.
func (d *Dispatcher) ClientConnected() int64 {
	n := d.clients.Add(1)
	if d.Metrics != nil {
		d.Metrics.ConnectedClients.Set(float64(n))
	}
	return n
}

// ClientDisconnected is ClientConnected's counterpart, called once the
// connection is closed.
func (d *Dispatcher) ClientDisconnected() int64 {
	n := d.clients.Add(-1)
	if d.Metrics != nil {
		d.Metrics.ConnectedClients.Set(float64(n))
	}
	return n
}

// ConnectedClients reports the current connected-client count.
func (d *Dispatcher) ConnectedClients() int64 {
	return d.clients.Load()
}

// New builds a Dispatcher backed by store and ready to spawn workers.
func New(st *store.GlobalStore, metrics *obs.Metrics) *Dispatcher {
	return &Dispatcher{
		Store:    st,
		Metrics:  metrics,
		queue:    make(chan Request, 4096),
		replicas: newReplicaSet(),
		acks:     newAckCollector(),
		replID:   newReplID(),
	}
}

// newReplID generates the leader's fixed 40-hex-character replication id,
// generated once at process startup.
func newReplID() string {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		cclog.Fatalf("dispatch: generating replication id: %v", err)
	}
	return hex.EncodeToString(buf)
}

// Submit enqueues req for processing by a worker. Blocks only if the
// queue's internal buffer is momentarily exhausted; the queue is sized
// generously rather than truly unbounded, matching a real process's
// memory limits.
func (d *Dispatcher) Submit(req Request) {
	d.queue <- req
}

// Run spawns n worker goroutines that drain the request queue until ctx
// is cancelled, then waits for in-flight requests to finish.
func (d *Dispatcher) Run(ctx context.Context, n int) {
	for i := 0; i < n; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}
	<-ctx.Done()
	d.wg.Wait()
	cclog.Info("dispatch: all workers stopped")
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()
	cclog.Debugf("dispatch: worker %d started", id)
	for {
		select {
		case <-ctx.Done():
			cclog.Debugf("dispatch: worker %d stopping", id)
			return
		case req := <-d.queue:
			d.handle(ctx, req)
		}
	}
}

// ApplyReplicated executes cmd's side effect locally without replying,
// the behavior a follower applies for every command ingested from its
// leader after the initial snapshot (spec.md §4.10). It reuses the exact
// same command handlers a client request would run, just with its reply
// discarded.
func (d *Dispatcher) ApplyReplicated(cmd wire.Command) {
	discard := make(chan []byte, 1)
	v, ok := d.execute(context.Background(), Request{Cmd: cmd, ClientID: "replication", Reply: discard})
	if ok {
		sendValue(discard, v)
	}
	close(discard)
}

// handle is one request's full lifecycle: transaction queueing, dispatch
// to a command handler, and replication fan-out.
func (d *Dispatcher) handle(ctx context.Context, req Request) {
	if d.Metrics != nil {
		d.Metrics.CommandsTotal.WithLabelValues(req.Cmd.Name).Inc()
	}

	if d.Store.Transactions.Has(req.ClientID) &&
		req.Cmd.Kind != wire.CmdExec && req.Cmd.Kind != wire.CmdDiscard && req.Cmd.Kind != wire.CmdMulti {
		d.Store.Transactions.Enqueue(req.ClientID, req.Cmd)
		sendValue(req.Reply, wire.SimpleString([]byte("QUEUED")))
		return
	}

	if replicatedCommands[req.Cmd.Kind] {
		d.replicas.Broadcast(req.Raw)
	}

	v, ok := d.execute(ctx, req)
	if ok {
		sendValue(req.Reply, v)
	}
}

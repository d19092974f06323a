// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dispatch

import (
	"bytes"
	"context"
	"strconv"
	"time"

	"github.com/kvnode/kvnode/internal/store"
	"github.com/kvnode/kvnode/internal/wire"
)

// awaitKey blocks the calling worker until key becomes available (via the
// Notifier), the connection's context is cancelled, or timeoutMS elapses
// (0 meaning infinite). It never holds a store lock across the wait, and
// unregisters interest on every exit path, per spec.md §9. Returns
// timedOut == true when neither the channel nor a backlog entry satisfied
// the wait before the deadline, and when ctx is cancelled.
func (d *Dispatcher) awaitKey(ctx context.Context, clientID string, keys []string, timeoutMS int64) (key string, timedOut bool) {
	ch := d.Store.Notifier.Register(clientID, keys)
	defer d.Store.Notifier.Unregister(clientID)

	if d.Metrics != nil {
		d.Metrics.BlockedWaiters.Inc()
		defer d.Metrics.BlockedWaiters.Dec()
	}

	var deadline <-chan time.Time
	if timeoutMS > 0 {
		timer := time.NewTimer(time.Duration(timeoutMS) * time.Millisecond)
		defer timer.Stop()
		deadline = timer.C
	}

	select {
	case k := <-ch:
		return k, false
	case <-deadline:
		if k, ok := d.Store.Notifier.DrainBacklog(keys); ok {
			return k, false
		}
		return "", true
	case <-ctx.Done():
		return "", true
	}
}

func (d *Dispatcher) cmdBLPop(ctx context.Context, req Request) wire.Value {
	cmd := req.Cmd
	if len(cmd.Args) < 2 {
		return insufficientArgs(cmd.Name)
	}
	keys := make([]string, len(cmd.Args)-1)
	for i, k := range cmd.Args[:len(cmd.Args)-1] {
		keys[i] = string(k)
	}
	timeoutMS, err := parseBlockTimeout(string(cmd.Args[len(cmd.Args)-1]))
	if err != nil {
		return wire.Error([]byte("ERR timeout is not a float or integer"))
	}

	// A value may already be present (a prior push with no registered
	// waiter): check before blocking.
	for _, k := range keys {
		if v, ok := d.Store.Lists.PopFrontOne(k); ok {
			return wire.Array([]wire.Value{wire.BulkString([]byte(k)), wire.BulkString(v)})
		}
	}

	key, timedOut := d.awaitKey(ctx, req.ClientID, keys, timeoutMS)
	if timedOut {
		return wire.NullArray()
	}

	v, ok := d.Store.Lists.PopFrontOne(key)
	if !ok {
		// Woken but another worker already drained it; report timeout
		// rather than a phantom element.
		return wire.NullArray()
	}
	return wire.Array([]wire.Value{wire.BulkString([]byte(key)), wire.BulkString(v)})
}

// parseBlockTimeout parses a millisecond timeout given either as an
// integer (BLPOP's native form) or the reference protocol's fractional
// seconds form, matched against what the original connection handler
// accepts for BLOCK/timeout arguments.
func parseBlockTimeout(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f * 1000), nil
}

func (d *Dispatcher) cmdXRead(ctx context.Context, req Request) wire.Value {
	cmd := req.Cmd
	args := cmd.Args

	blockMS := int64(-1)
	i := 0
	if len(args) >= 2 && bytes.EqualFold(args[0], []byte("BLOCK")) {
		ms, err := strconv.ParseInt(string(args[1]), 10, 64)
		if err != nil {
			return wire.Error([]byte("ERR timeout is not an integer or out of range"))
		}
		blockMS = ms
		i = 2
	}
	if len(args) <= i || !bytes.EqualFold(args[i], []byte("STREAMS")) {
		return wire.Errorf("ERR syntax error")
	}
	i++

	rest := args[i:]
	if len(rest) == 0 || len(rest)%2 != 0 {
		return insufficientArgs(cmd.Name)
	}
	n := len(rest) / 2
	keys := make([]string, n)
	ids := make([]store.EntryID, n)
	for j := 0; j < n; j++ {
		keys[j] = string(rest[j])
		idTok := string(rest[n+j])
		if idTok == "$" {
			last, ok := d.Store.Streams.LastID(keys[j])
			if ok {
				ids[j] = last
			}
			continue
		}
		id, err := store.ParseEntryID(idTok)
		if err != nil {
			return wire.Error([]byte(err.Error()))
		}
		ids[j] = id
	}

	result := d.xreadCollect(keys, ids)
	if len(result) > 0 || blockMS < 0 {
		if len(result) == 0 {
			return wire.NullArray()
		}
		return wire.Array(result)
	}

	_, timedOut := d.awaitKey(ctx, req.ClientID, keys, blockMS)
	if timedOut {
		return wire.NullArray()
	}

	result = d.xreadCollect(keys, ids)
	if len(result) == 0 {
		return wire.NullArray()
	}
	return wire.Array(result)
}

func (d *Dispatcher) xreadCollect(keys []string, ids []store.EntryID) []wire.Value {
	var out []wire.Value
	for i, key := range keys {
		entries := d.Store.Streams.After(key, ids[i])
		if len(entries) == 0 {
			continue
		}
		out = append(out, wire.Array([]wire.Value{
			wire.BulkString([]byte(key)),
			entriesToValue(entries),
		}))
	}
	return out
}

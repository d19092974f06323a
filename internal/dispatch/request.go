// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package dispatch implements the worker-pool request engine: it decodes
// a client's command, runs it against the store, and writes back zero or
// more reply frames, serializing access to the shared GlobalStore and
// fanning mutating commands out to replication followers.
package dispatch

import (
	"github.com/google/uuid"
	"github.com/kvnode/kvnode/internal/wire"
)

// NewClientID returns a fresh opaque per-connection identifier. The
// dispatcher never holds a session object keyed by anything else; every
// piece of per-client state (transaction queue, notifier registration,
// replica registry entry) is keyed by this string.
func NewClientID() string {
	return uuid.New().String()
}

// Request is one decoded command awaiting execution, submitted to the
// dispatcher's queue by the (out-of-scope) connection acceptor. Reply
// carries already-encoded wire bytes rather than structured Values: this
// lets the same channel type serve both ordinary client replies (encoded
// by the dispatcher) and replicated command fan-out (forwarded verbatim,
// never re-encoded from parsed args).
type Request struct {
	Cmd      wire.Command
	ClientID string
	Raw      []byte
	Reply    chan<- []byte
}

// sendValue encodes v and writes it to reply. The dispatcher never
// constructs reply frames any other way, so every client-facing response
// passes through here.
func sendValue(reply chan<- []byte, v wire.Value) {
	reply <- wire.Encode(nil, v)
}

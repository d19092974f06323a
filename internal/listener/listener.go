// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package listener accepts TCP connections for the wire protocol and
// feeds each one into the dispatcher, mirroring the accept-then-serve
// split of the teacher's own HTTP listener in cmd/cc-backend/server.go.
package listener

import (
	"context"
	"errors"
	"net"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/kvnode/kvnode/internal/dispatch"
	"github.com/kvnode/kvnode/internal/wire"
)

// Listener owns the TCP socket new client and replica connections arrive
// on.
type Listener struct {
	addr       string
	dispatcher *dispatch.Dispatcher
	ln         net.Listener
}

// New binds addr without yet accepting connections.
func New(addr string, d *dispatch.Dispatcher) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Listener{addr: addr, dispatcher: d, ln: ln}, nil
}

// Run accepts connections until ctx is cancelled or Accept fails for a
// reason other than the listener having been closed.
func (l *Listener) Run(ctx context.Context) error {
	cclog.Infof("listener: accepting connections on %s", l.addr)

	go func() {
		<-ctx.Done()
		l.ln.Close()
	}()

	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var opErr *net.OpError
			if errors.As(err, &opErr) && opErr.Op == "accept" {
				return nil
			}
			return err
		}
		go l.serve(ctx, conn)
	}
}

// serve is one client connection's full lifecycle: frame decoding,
// command parsing, request submission, and writing replies (its own and
// any replicated fan-out) back to the socket, until the connection
// closes or a decode error occurs.
func (l *Listener) serve(ctx context.Context, conn net.Conn) {
	clientID := dispatch.NewClientID()
	l.dispatcher.ClientConnected()
	defer func() {
		conn.Close()
		l.dispatcher.DetachFollower(clientID)
		l.dispatcher.ClientDisconnected()
	}()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	replies := make(chan []byte, 64)
	go l.writeReplies(conn, replies)

	var buf []byte
	chunk := make([]byte, 4096)
	for {
		v, raw, err := decodeOne(conn, &buf, chunk)
		if err != nil {
			cclog.Debugf("listener: connection %s closed: %v", clientID, err)
			close(replies)
			return
		}

		cmd, err := wire.ParseCommand(v, len(raw))
		if err != nil {
			replies <- wire.Encode(nil, wire.Error([]byte("ERR "+err.Error())))
			continue
		}

		l.dispatcher.Submit(dispatch.Request{
			Cmd:      cmd,
			ClientID: clientID,
			Raw:      raw,
			Reply:    replies,
		})
	}
}

func (l *Listener) writeReplies(conn net.Conn, replies <-chan []byte) {
	for b := range replies {
		if _, err := conn.Write(b); err != nil {
			return
		}
	}
}

// decodeOne reads from conn until a full frame is available in *buf,
// then returns it, a copy of its exact raw bytes (for byte-for-byte
// replication fan-out), and advances *buf past the consumed bytes.
func decodeOne(conn net.Conn, buf *[]byte, chunk []byte) (wire.Value, []byte, error) {
	for {
		v, n, err := wire.Decode(*buf)
		if err != nil {
			return wire.Value{}, nil, err
		}
		if n > 0 {
			raw := make([]byte, n)
			copy(raw, (*buf)[:n])

			rest := make([]byte, len(*buf)-n)
			copy(rest, (*buf)[n:])
			*buf = rest
			return v, raw, nil
		}

		read, err := conn.Read(chunk)
		if read > 0 {
			*buf = append(*buf, chunk[:read]...)
		}
		if read == 0 && err != nil {
			return wire.Value{}, nil, err
		}
	}
}

// Close stops accepting new connections.
func (l *Listener) Close() error {
	return l.ln.Close()
}

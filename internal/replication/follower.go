// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package replication implements the follower side of the leader/follower
// protocol: the handshake a node performs when started with --replicaof,
// and the continuous command-ingestion loop that follows it. The leader
// side (replica registry, WAIT ack collection, PSYNC handler) lives in
// internal/dispatch, since it is reached through the same request queue
// every other client command is.
package replication

import (
	"bytes"
	"fmt"
	"net"
	"strconv"
	"sync/atomic"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/kvnode/kvnode/internal/dispatch"
	"github.com/kvnode/kvnode/internal/wire"
)

// Follower holds the connection to this node's leader, the running byte
// offset of replicated commands applied so far, and the resumable read
// buffer the codec decodes against. buf persists across reads exactly as
// spec.md §4.1/§9 requires: a short read leaves undecoded bytes in place
// for the next attempt, and bytes belonging to the next frame that
// happened to arrive in the same socket read are never discarded.
type Follower struct {
	conn          net.Conn
	buf           []byte
	dispatcher    *dispatch.Dispatcher
	appliedOffset atomic.Int64
	ownListenPort string
}

// Dial performs the four-step handshake against masterAddr strictly in
// order (PING, REPLCONF listening-port, REPLCONF capa psync2, PSYNC ? -1)
// and returns a Follower ready to ingest the replication stream. localhost
// in masterAddr is normalized to 127.0.0.1 by the caller (the CLI layer),
// per spec.md §6.
func Dial(masterAddr, ownListenPort string, d *dispatch.Dispatcher) (*Follower, error) {
	conn, err := net.Dial("tcp", masterAddr)
	if err != nil {
		return nil, fmt.Errorf("replication: dialing leader %s: %w", masterAddr, err)
	}

	f := &Follower{
		conn:          conn,
		dispatcher:    d,
		ownListenPort: ownListenPort,
	}

	if err := f.handshake(); err != nil {
		conn.Close()
		return nil, err
	}
	return f, nil
}

func (f *Follower) handshake() error {
	steps := []struct {
		name string
		args []string
	}{
		{"PING", nil},
		{"REPLCONF", []string{"listening-port", f.ownListenPort}},
		{"REPLCONF", []string{"capa", "psync2"}},
		{"PSYNC", []string{"?", "-1"}},
	}

	for _, step := range steps {
		items := []wire.Value{wire.BulkString([]byte(step.name))}
		for _, a := range step.args {
			items = append(items, wire.BulkString([]byte(a)))
		}
		if _, err := f.conn.Write(wire.Encode(nil, wire.Array(items))); err != nil {
			return fmt.Errorf("replication: sending %s: %w", step.name, err)
		}

		v, _, err := f.readFrame()
		if err != nil {
			return fmt.Errorf("replication: reading reply to %s: %w", step.name, err)
		}
		cclog.Debugf("replication: handshake step %s -> %s", step.name, describe(v))
	}

	// After PSYNC's FULLRESYNC reply, the leader immediately sends the
	// RDB snapshot frame with no trailing CRLF; discard it, our store
	// starts empty regardless since persistence is out of scope.
	if err := f.consumeRdb(); err != nil {
		return fmt.Errorf("replication: consuming RDB snapshot: %w", err)
	}

	cclog.Infof("replication: handshake complete, entering ingest loop")
	return nil
}

// AppliedOffset reports the cumulative byte count of replicated commands
// applied so far.
func (f *Follower) AppliedOffset() int64 {
	return f.appliedOffset.Load()
}

// Run ingests the continuous replication stream until the connection
// closes or a decode error occurs, which per spec.md §4.10/§7 is fatal to
// the follower process — the caller is expected to exit non-zero.
func (f *Follower) Run() error {
	for {
		v, n, err := f.readFrame()
		if err != nil {
			return fmt.Errorf("replication: fatal decode error on replication stream: %w", err)
		}

		cmd, err := wire.ParseCommand(v, n)
		if err != nil {
			return fmt.Errorf("replication: fatal: replicated frame is not a command array: %w", err)
		}

		offsetBefore := f.appliedOffset.Load()

		if cmd.Kind == wire.CmdReplConf && isGetAck(cmd) {
			ack := wire.Array([]wire.Value{
				wire.BulkString([]byte("REPLCONF")),
				wire.BulkString([]byte("ACK")),
				wire.BulkString([]byte(strconv.FormatInt(offsetBefore, 10))),
			})
			if _, err := f.conn.Write(wire.Encode(nil, ack)); err != nil {
				return fmt.Errorf("replication: sending ACK: %w", err)
			}
		} else {
			f.dispatcher.ApplyReplicated(cmd)
		}

		f.appliedOffset.Add(int64(n))
		cclog.Debugf("replication: applied %s, offset now %d", cmd.Name, f.appliedOffset.Load())
	}
}

func isGetAck(cmd wire.Command) bool {
	return len(cmd.Args) >= 1 && bytes.EqualFold(cmd.Args[0], []byte("GETACK"))
}

func describe(v wire.Value) string {
	switch v.Kind {
	case wire.KindSimpleString:
		return string(v.Str)
	case wire.KindError:
		return "error: " + string(v.Str)
	default:
		return "(frame)"
	}
}

// fill reads at least one more chunk from the connection into f.buf.
func (f *Follower) fill() error {
	chunk := make([]byte, 4096)
	n, err := f.conn.Read(chunk)
	if n > 0 {
		f.buf = append(f.buf, chunk[:n]...)
	}
	if n == 0 && err != nil {
		return err
	}
	return nil
}

// readFrame decodes one frame from f.buf, reading more from the
// connection as needed, and advances f.buf past the consumed bytes.
func (f *Follower) readFrame() (wire.Value, int, error) {
	for {
		v, n, err := wire.Decode(f.buf)
		if err != nil {
			return wire.Value{}, 0, err
		}
		if n > 0 {
			rest := make([]byte, len(f.buf)-n)
			copy(rest, f.buf[n:])
			f.buf = rest
			return v, n, nil
		}
		if err := f.fill(); err != nil {
			return wire.Value{}, 0, err
		}
	}
}

// consumeRdb decodes the RDB snapshot frame from f.buf the same way
// readFrame decodes an ordinary frame, via wire.DecodeRdb.
func (f *Follower) consumeRdb() error {
	for {
		_, n, err := wire.DecodeRdb(f.buf)
		if err != nil {
			return err
		}
		if n > 0 {
			rest := make([]byte, len(f.buf)-n)
			copy(rest, f.buf[n:])
			f.buf = rest
			return nil
		}
		if err := f.fill(); err != nil {
			return err
		}
	}
}

// Close terminates the connection to the leader.
func (f *Follower) Close() error {
	return f.conn.Close()
}

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

// emptyRDBSnapshot is the fixed, valid-but-empty snapshot payload shipped
// to every follower during PSYNC. Persistence beyond this constant is out
// of scope.
var emptyRDBSnapshot = []byte{
	0x52, 0x45, 0x44, 0x49, 0x53, 0x30, 0x30, 0x31, 0x31, // "REDIS0011"
	0xFF, // EOF opcode
	0, 0, 0, 0, 0, 0, 0, 0, // checksum placeholder (disabled)
}

// execute runs a parsed command against the store and returns the reply
// Value together with whether a reply should actually be sent — false
// only for REPLCONF ACK, which is informational and produces no response
// on the connection that sent it.
func (d *Dispatcher) execute(ctx context.Context, req Request) (wire.Value, bool) {
	cmd := req.Cmd
	switch cmd.Kind {
	case wire.CmdPing:
		if len(cmd.Args) > 0 {
			return wire.BulkString(cmd.Args[0]), true
		}
		return wire.SimpleString([]byte("PONG")), true

	case wire.CmdEcho:
		if len(cmd.Args) != 1 {
			return insufficientArgs(cmd.Name), true
		}
		return wire.BulkString(cmd.Args[0]), true

	case wire.CmdGet:
		if len(cmd.Args) != 1 {
			return insufficientArgs(cmd.Name), true
		}
		v, ok := d.Store.Strings.Get(string(cmd.Args[0]))
		if !ok {
			return wire.NullBulkString(), true
		}
		return wire.BulkString(v), true

	case wire.CmdSet:
		return d.cmdSet(cmd), true

	case wire.CmdIncr:
		if len(cmd.Args) != 1 {
			return insufficientArgs(cmd.Name), true
		}
		n, err := d.Store.Strings.Incr(string(cmd.Args[0]))
		if err != nil {
			return wire.Error([]byte("ERR " + err.Error())), true
		}
		return wire.Integer(n), true

	case wire.CmdRPush:
		return d.cmdPush(cmd, d.Store.Lists.Append), true

	case wire.CmdLPush:
		return d.cmdPush(cmd, d.Store.Lists.Prepend), true

	case wire.CmdLRange:
		return d.cmdLRange(cmd), true

	case wire.CmdLLen:
		if len(cmd.Args) != 1 {
			return insufficientArgs(cmd.Name), true
		}
		return wire.Integer(int64(d.Store.Lists.Len(string(cmd.Args[0])))), true

	case wire.CmdLPop:
		return d.cmdLPop(cmd), true

	case wire.CmdBLPop:
		return d.cmdBLPop(ctx, req), true

	case wire.CmdType:
		if len(cmd.Args) != 1 {
			return insufficientArgs(cmd.Name), true
		}
		return wire.SimpleString([]byte(d.Store.KeyType(string(cmd.Args[0])))), true

	case wire.CmdXAdd:
		return d.cmdXAdd(cmd), true

	case wire.CmdXRange:
		return d.cmdXRange(cmd), true

	case wire.CmdXRead:
		return d.cmdXRead(ctx, req), true

	case wire.CmdMulti:
		d.Store.Transactions.Create(req.ClientID)
		return wire.SimpleString([]byte("OK")), true

	case wire.CmdExec:
		return d.cmdExec(ctx, req), true

	case wire.CmdDiscard:
		if _, ok := d.Store.Transactions.Remove(req.ClientID); !ok {
			return wire.Error([]byte("ERR DISCARD without MULTI")), true
		}
		return wire.SimpleString([]byte("OK")), true

	case wire.CmdInfo:
		return d.cmdInfo(cmd), true

	case wire.CmdReplConf:
		return d.cmdReplConf(cmd, req.ClientID)

	case wire.CmdPsync:
		return d.cmdPsync(req), true

	case wire.CmdWait:
		return d.cmdWait(cmd), true

	default:
		return wire.Errorf("ERR unsupported command '%s'", cmd.Name), true
	}
}

func insufficientArgs(name string) wire.Value {
	return wire.Errorf("ERR insufficient arguments for command '%s'", name)
}

func (d *Dispatcher) cmdSet(cmd wire.Command) wire.Value {
	if len(cmd.Args) < 2 {
		return insufficientArgs(cmd.Name)
	}
	key, value := string(cmd.Args[0]), cmd.Args[1]

	hasTTL := false
	var ttl time.Duration
	if len(cmd.Args) >= 4 {
		opt := string(bytes.ToUpper(cmd.Args[2]))
		n, err := strconv.ParseInt(string(cmd.Args[3]), 10, 64)
		if err != nil {
			return wire.Error([]byte("ERR value is not an integer or out of range"))
		}
		switch opt {
		case "PX":
			hasTTL, ttl = true, time.Duration(n)*time.Millisecond
		case "EX":
			hasTTL, ttl = true, time.Duration(n)*time.Second
		default:
			return wire.Errorf("ERR syntax error")
		}
	}

	d.Store.Strings.Set(key, value, hasTTL, ttl)
	return wire.SimpleString([]byte("OK"))
}

func (d *Dispatcher) cmdPush(cmd wire.Command, push func(key string, v []byte) int) wire.Value {
	if len(cmd.Args) < 2 {
		return insufficientArgs(cmd.Name)
	}
	key := string(cmd.Args[0])
	var n int
	for _, v := range cmd.Args[1:] {
		n = push(key, v)
	}
	d.Store.NotifyListPush(key)
	return wire.Integer(int64(n))
}

func (d *Dispatcher) cmdLRange(cmd wire.Command) wire.Value {
	if len(cmd.Args) != 3 {
		return insufficientArgs(cmd.Name)
	}
	start, err1 := strconv.Atoi(string(cmd.Args[1]))
	end, err2 := strconv.Atoi(string(cmd.Args[2]))
	if err1 != nil || err2 != nil {
		return wire.Error([]byte("ERR value is not an integer or out of range"))
	}

	items := d.Store.Lists.Slice(string(cmd.Args[0]), start, end)
	out := make([]wire.Value, len(items))
	for i, v := range items {
		out[i] = wire.BulkString(v)
	}
	return wire.Array(out)
}

func (d *Dispatcher) cmdLPop(cmd wire.Command) wire.Value {
	if len(cmd.Args) < 1 {
		return insufficientArgs(cmd.Name)
	}
	key := string(cmd.Args[0])

	if len(cmd.Args) == 1 {
		v, ok := d.Store.Lists.PopFrontOne(key)
		if !ok {
			return wire.NullBulkString()
		}
		return wire.BulkString(v)
	}

	count, err := strconv.Atoi(string(cmd.Args[1]))
	if err != nil {
		return wire.Error([]byte("ERR value is not an integer or out of range"))
	}
	items := d.Store.Lists.PopFront(key, count)
	if items == nil {
		return wire.NullArray()
	}
	out := make([]wire.Value, len(items))
	for i, v := range items {
		out[i] = wire.BulkString(v)
	}
	return wire.Array(out)
}

func (d *Dispatcher) cmdXAdd(cmd wire.Command) wire.Value {
	if len(cmd.Args) < 4 || len(cmd.Args)%2 != 0 {
		return insufficientArgs(cmd.Name)
	}
	key, reqID := string(cmd.Args[0]), string(cmd.Args[1])

	fields := make([]store.Field, 0, (len(cmd.Args)-2)/2)
	for i := 2; i+1 < len(cmd.Args); i += 2 {
		fields = append(fields, store.Field{Name: cmd.Args[i], Value: cmd.Args[i+1]})
	}

	id, err := d.Store.Streams.Add(key, reqID, fields, time.Now().UnixMilli())
	if err != nil {
		return wire.Error([]byte(err.Error()))
	}
	if d.Metrics != nil {
		d.Metrics.StreamEntriesTotal.Inc()
	}
	d.Store.NotifyStreamAdd(key)
	return wire.BulkString([]byte(id.String()))
}

func (d *Dispatcher) cmdXRange(cmd wire.Command) wire.Value {
	if len(cmd.Args) != 3 {
		return insufficientArgs(cmd.Name)
	}
	key := string(cmd.Args[0])

	start, startOpen, err := parseRangeBound(string(cmd.Args[1]), true)
	if err != nil {
		return wire.Error([]byte(err.Error()))
	}
	end, endOpen, err := parseRangeBound(string(cmd.Args[2]), false)
	if err != nil {
		return wire.Error([]byte(err.Error()))
	}

	entries := d.Store.Streams.Range(key, start, end, startOpen, endOpen)
	return entriesToValue(entries)
}

func parseRangeBound(s string, isStart bool) (store.EntryID, bool, error) {
	if isStart && s == "-" {
		return store.EntryID{}, true, nil
	}
	if !isStart && s == "+" {
		return store.EntryID{}, true, nil
	}
	id, err := store.ParseEntryID(s)
	return id, false, err
}

func entriesToValue(entries []store.Entry) wire.Value {
	out := make([]wire.Value, len(entries))
	for i, e := range entries {
		fields := make([]wire.Value, 0, len(e.Fields)*2)
		for _, f := range e.Fields {
			fields = append(fields, wire.BulkString(f.Name), wire.BulkString(f.Value))
		}
		out[i] = wire.Array([]wire.Value{
			wire.BulkString([]byte(e.ID.String())),
			wire.Array(fields),
		})
	}
	return wire.Array(out)
}

func (d *Dispatcher) cmdExec(ctx context.Context, req Request) wire.Value {
	queue, ok := d.Store.Transactions.Remove(req.ClientID)
	if !ok {
		return wire.Error([]byte("ERR EXEC without MULTI"))
	}

	results := make([]wire.Value, len(queue))
	for i, queued := range queue {
		v, _ := d.execute(ctx, Request{Cmd: queued, ClientID: req.ClientID, Raw: nil, Reply: req.Reply})
		results[i] = v
	}
	return wire.Array(results)
}

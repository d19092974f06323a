// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"errors"
)

// Kind of a decoded command, matched case-insensitively against the
// bulk string array the client sent.
type CommandKind int

const (
	CmdUnknown CommandKind = iota
	CmdPing
	CmdEcho
	CmdGet
	CmdSet
	CmdIncr
	CmdRPush
	CmdLPush
	CmdLRange
	CmdLLen
	CmdLPop
	CmdBLPop
	CmdType
	CmdXAdd
	CmdXRange
	CmdXRead
	CmdMulti
	CmdExec
	CmdDiscard
	CmdInfo
	CmdReplConf
	CmdPsync
	CmdWait
)

var commandNames = map[string]CommandKind{
	"PING":     CmdPing,
	"ECHO":     CmdEcho,
	"GET":      CmdGet,
	"SET":      CmdSet,
	"INCR":     CmdIncr,
	"RPUSH":    CmdRPush,
	"LPUSH":    CmdLPush,
	"LRANGE":   CmdLRange,
	"LLEN":     CmdLLen,
	"LPOP":     CmdLPop,
	"BLPOP":    CmdBLPop,
	"TYPE":     CmdType,
	"XADD":     CmdXAdd,
	"XRANGE":   CmdXRange,
	"XREAD":    CmdXRead,
	"MULTI":    CmdMulti,
	"EXEC":     CmdExec,
	"DISCARD":  CmdDiscard,
	"INFO":     CmdInfo,
	"REPLCONF": CmdReplConf,
	"PSYNC":    CmdPsync,
	"WAIT":     CmdWait,
}

// Command is a request frame reduced to its command kind, its arguments
// (the bulk strings after the command name), the command name upper-cased
// (for error messages), and the number of wire bytes
// the enclosing Array frame consumed (needed for replication offset
// accounting on followers).
type Command struct {
	Kind    CommandKind
	Name    string
	Args    [][]byte
	RawSize int
}

var (
	ErrNotArray    = errors.New("wire: command frame must be an array")
	ErrEmptyArray  = errors.New("wire: command array must not be empty")
	ErrNotBulkElem = errors.New("wire: command array elements must be bulk/simple strings")
)

// ParseCommand converts a decoded Array frame into a Command. rawSize is
// the byte count Decode reported for this frame and is copied verbatim
// into Command.RawSize.
func ParseCommand(v Value, rawSize int) (Command, error) {
	if v.Kind != KindArray || v.Null {
		return Command{}, ErrNotArray
	}
	if len(v.Items) == 0 {
		return Command{}, ErrEmptyArray
	}

	args := make([][]byte, 0, len(v.Items)-1)
	for _, item := range v.Items {
		switch item.Kind {
		case KindBulkString, KindSimpleString:
			if item.Null {
				return Command{}, ErrNotBulkElem
			}
		default:
			return Command{}, ErrNotBulkElem
		}
	}

	name := string(bytes.ToUpper(v.Items[0].Str))
	for _, item := range v.Items[1:] {
		args = append(args, item.Str)
	}

	kind, ok := commandNames[name]
	if !ok {
		kind = CmdUnknown
	}

	return Command{Kind: kind, Name: name, Args: args, RawSize: rawSize}, nil
}

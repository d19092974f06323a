// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wire implements the resumable, zero-copy frame codec for the
// key/value server's request/response protocol: simple strings, errors,
// integers, bulk strings, arrays, and the leader-to-follower RDB snapshot
// frame (the same wire shape a well-known lightweight data store uses).
package wire

import "fmt"

// Kind identifies which of the six frame shapes a Value holds.
type Kind uint8

const (
	KindSimpleString Kind = iota
	KindError
	KindInteger
	KindBulkString
	KindArray
	KindRdb
)

// Value is the decoded/encodable frame. Only the fields relevant to Kind
// are meaningful:
//
//	KindSimpleString, KindError: Str
//	KindInteger:                 Int
//	KindBulkString:              Str (Null == true means "$-1", Str must be nil)
//	KindArray:                   Items (Null == true means "*-1", Items must be nil)
//	KindRdb:                     Str (raw snapshot payload, never null)
//
// Str and the byte slices reachable from Items alias the buffer Decode was
// called with until the caller freezes the consumed prefix (see Decode).
type Value struct {
	Kind  Kind
	Str   []byte
	Int   int64
	Items []Value
	Null  bool
}

func SimpleString(s []byte) Value { return Value{Kind: KindSimpleString, Str: s} }

func Error(s []byte) Value { return Value{Kind: KindError, Str: s} }

func Errorf(format string, args ...any) Value {
	return Value{Kind: KindError, Str: []byte(fmt.Sprintf(format, args...))}
}

func Integer(i int64) Value { return Value{Kind: KindInteger, Int: i} }

func BulkString(s []byte) Value { return Value{Kind: KindBulkString, Str: s} }

func NullBulkString() Value { return Value{Kind: KindBulkString, Null: true} }

func Array(items []Value) Value { return Value{Kind: KindArray, Items: items} }

func NullArray() Value { return Value{Kind: KindArray, Null: true} }

func Rdb(payload []byte) Value { return Value{Kind: KindRdb, Str: payload} }

// IsNullString reports whether v is a null bulk string ("$-1").
func (v Value) IsNullString() bool { return v.Kind == KindBulkString && v.Null }

// IsNullArray reports whether v is a null array ("*-1").
func (v Value) IsNullArray() bool { return v.Kind == KindArray && v.Null }

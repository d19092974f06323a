// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"strconv"
)

// Decode parses exactly one frame from the start of buf.
//
// On success it returns the frame, the number of bytes consumed (> 0),
// and a nil error. On an incomplete frame (not enough bytes have arrived
// yet) it returns a zero Value, n == 0, and a nil error: the caller must
// retry once more bytes have been appended to buf, starting again from
// offset 0. A non-nil error is fatal for the connection the bytes came
// from (InvalidByte / InvalidSize / NumberParse, see errors.go).
//
// The returned Value's byte slices alias buf. Callers that need to keep
// the Value past the next read into buf's backing array must copy
// (freeze) the consumed prefix first, e.g. via bytes.Clone(buf[:n]) or by
// handing ownership of that exact sub-slice to the Value and allocating a
// fresh buffer for the next read.
func Decode(buf []byte) (Value, int, error) {
	pos := 0
	for pos < len(buf) && (buf[pos] == '\r' || buf[pos] == '\n') {
		pos++
	}
	if pos >= len(buf) {
		return Value{}, 0, nil
	}

	v, end, err := decodeAt(buf, pos)
	if err != nil || end == 0 {
		return v, 0, err
	}
	return v, end, nil
}

// decodeAt decodes the single frame whose prefix byte sits at buf[pos],
// returning the absolute end offset (exclusive) of the consumed bytes, or
// end == 0 to signal "incomplete". It never skips stray bytes: within an
// array, every element begins exactly where the previous one ended.
func decodeAt(buf []byte, pos int) (Value, int, error) {
	if pos >= len(buf) {
		return Value{}, 0, nil
	}

	switch buf[pos] {
	case '+':
		return decodeLine(buf, pos+1, KindSimpleString)
	case '-':
		return decodeLine(buf, pos+1, KindError)
	case ':':
		return decodeInteger(buf, pos+1)
	case '$':
		return decodeBulkString(buf, pos+1)
	case '*':
		return decodeArray(buf, pos+1)
	default:
		return Value{}, 0, errInvalidByte(buf[pos])
	}
}

// word locates the line starting at pos and ending at the next CRLF,
// returning the offset just past that CRLF and the [start,end) bounds of
// the line itself. It reports "incomplete" (ok == false) rather than an
// error when the CRLF has not arrived yet.
func word(buf []byte, pos int) (next int, start int, end int, ok bool) {
	if pos > len(buf) {
		return 0, 0, 0, false
	}

	idx := bytes.IndexByte(buf[pos:], '\r')
	if idx < 0 {
		return 0, 0, 0, false
	}

	end = pos + idx
	if end+1 >= len(buf) {
		// '\r' arrived but its '\n' has not.
		return 0, 0, 0, false
	}

	return end + 2, pos, end, true
}

func parseInt(buf []byte, pos int) (next int, value int64, ok bool, err error) {
	next, start, end, ok := word(buf, pos)
	if !ok {
		return 0, 0, false, nil
	}

	value, convErr := strconv.ParseInt(string(buf[start:end]), 10, 64)
	if convErr != nil {
		return 0, 0, false, errNumberParse
	}

	return next, value, true, nil
}

func decodeLine(buf []byte, pos int, kind Kind) (Value, int, error) {
	next, start, end, ok := word(buf, pos)
	if !ok {
		return Value{}, 0, nil
	}

	return Value{Kind: kind, Str: buf[start:end]}, next, nil
}

func decodeInteger(buf []byte, pos int) (Value, int, error) {
	next, n, ok, err := parseInt(buf, pos)
	if err != nil {
		return Value{}, 0, err
	}
	if !ok {
		return Value{}, 0, nil
	}

	return Integer(n), next, nil
}

func decodeBulkString(buf []byte, pos int) (Value, int, error) {
	next, size, ok, err := parseInt(buf, pos)
	if err != nil {
		return Value{}, 0, err
	}
	if !ok {
		return Value{}, 0, nil
	}

	if size == -1 {
		return NullBulkString(), next, nil
	}
	if size < -1 {
		return Value{}, 0, errInvalidSize(size)
	}

	end := next + int(size)
	if len(buf) < end+2 {
		return Value{}, 0, nil
	}

	return BulkString(buf[next:end]), end + 2, nil
}

func decodeArray(buf []byte, pos int) (Value, int, error) {
	next, size, ok, err := parseInt(buf, pos)
	if err != nil {
		return Value{}, 0, err
	}
	if !ok {
		return Value{}, 0, nil
	}

	if size == -1 {
		return NullArray(), next, nil
	}
	if size < -1 {
		return Value{}, 0, errInvalidSize(size)
	}

	items := make([]Value, 0, size)
	cur := next
	for range size {
		item, end, err := decodeAt(buf, cur)
		if err != nil {
			return Value{}, 0, err
		}
		if end == 0 {
			return Value{}, 0, nil
		}
		items = append(items, item)
		cur = end
	}

	return Array(items), cur, nil
}

// DecodeRdb parses the leader's snapshot frame: "$<n>\r\n" followed by
// exactly n raw bytes with NO trailing CRLF (unlike an ordinary bulk
// string). It is only ever called on a connection right after a
// FULLRESYNC reply, since the same prefix otherwise means BulkString.
func DecodeRdb(buf []byte) (Value, int, error) {
	if len(buf) == 0 {
		return Value{}, 0, nil
	}
	if buf[0] != '$' {
		return Value{}, 0, errInvalidByte(buf[0])
	}

	next, size, ok, err := parseInt(buf, 1)
	if err != nil {
		return Value{}, 0, err
	}
	if !ok {
		return Value{}, 0, nil
	}
	if size < 0 {
		return Value{}, 0, errInvalidSize(size)
	}

	end := next + int(size)
	if len(buf) < end {
		return Value{}, 0, nil
	}

	return Rdb(buf[next:end]), end, nil
}

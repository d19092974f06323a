// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeMatchesScenarios(t *testing.T) {
	require.Equal(t, "+PONG\r\n", string(Encode(nil, SimpleString([]byte("PONG")))))
	require.Equal(t, ":3\r\n", string(Encode(nil, Integer(3))))
	require.Equal(t, "$-1\r\n", string(Encode(nil, NullBulkString())))
	require.Equal(t, "*-1\r\n", string(Encode(nil, NullArray())))

	arr := Array([]Value{BulkString([]byte("a")), BulkString([]byte("b")), BulkString([]byte("c"))})
	require.Equal(t, "*3\r\n$1\r\na\r\n$1\r\nb\r\n$1\r\nc\r\n", string(Encode(nil, arr)))
}

// Codec round-trip: for any frame not containing Rdb, decode(encode(v))
// yields v and consumes exactly the bytes produced.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []Value{
		SimpleString([]byte("OK")),
		Error([]byte("ERR boom")),
		Integer(0),
		Integer(-99),
		BulkString([]byte("hello world")),
		BulkString([]byte{}),
		NullBulkString(),
		NullArray(),
		Array(nil),
		Array([]Value{Integer(1), BulkString([]byte("x")), Array([]Value{SimpleString([]byte("nested"))})}),
	}

	for _, v := range cases {
		buf := Encode(nil, v)
		got, n, err := Decode(buf)
		require.NoError(t, err)
		require.Equal(t, len(buf), n)
		assertValueEqual(t, v, got)
	}
}

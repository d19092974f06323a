// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSimpleFrames(t *testing.T) {
	v, n, err := Decode([]byte("+OK\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, SimpleString([]byte("OK")), v)

	v, n, err = Decode([]byte("-ERR boom\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 11, n)
	assert.Equal(t, Error([]byte("ERR boom")), v)

	v, n, err = Decode([]byte(":42\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, Integer(42), v)

	v, n, err = Decode([]byte(":-7\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, Integer(-7), v)
}

func TestDecodeBulkString(t *testing.T) {
	v, n, err := Decode([]byte("$3\r\nbar\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 9, n)
	assert.Equal(t, BulkString([]byte("bar")), v)

	v, n, err = Decode([]byte("$0\r\n\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, BulkString([]byte{}), v)

	v, n, err = Decode([]byte("$-1\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.True(t, v.IsNullString())
}

func TestDecodeArray(t *testing.T) {
	v, n, err := Decode([]byte("*1\r\n$4\r\nPING\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 14, n)
	require.Equal(t, KindArray, v.Kind)
	require.Len(t, v.Items, 1)
	assert.Equal(t, BulkString([]byte("PING")), v.Items[0])

	v, n, err = Decode([]byte("*-1\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.True(t, v.IsNullArray())

	v, n, err = Decode([]byte("*0\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, 0, len(v.Items))

	v, n, err = Decode([]byte("*2\r\n*1\r\n+PING\r\n:5\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 19, n)
	require.Len(t, v.Items, 2)
}

func TestDecodeIncomplete(t *testing.T) {
	cases := []string{
		"",
		"*2\r\n$4\r\nEC",
		"$5\r\nhello",
		":4",
		"+OK",
		"*1\r\n",
	}
	for _, c := range cases {
		v, n, err := Decode([]byte(c))
		require.NoError(t, err, c)
		assert.Equal(t, 0, n, c)
		assert.Equal(t, Value{}, v, c)
	}
}

func TestDecodeFatalErrors(t *testing.T) {
	_, _, err := Decode([]byte("!nope\r\n"))
	require.Error(t, err)
	var de *DecodeError
	require.ErrorAs(t, err, &de)

	_, _, err = Decode([]byte("$-2\r\n"))
	require.Error(t, err)

	_, _, err = Decode([]byte(":notanumber\r\n"))
	require.Error(t, err)
}

func TestDecodeSkipsStrayCRLF(t *testing.T) {
	v, n, err := Decode([]byte("\r\n\r\n+OK\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 9, n)
	assert.Equal(t, SimpleString([]byte("OK")), v)
}

func TestDecodeRdbFrame(t *testing.T) {
	payload := []byte("REDIS0011fake-payload")
	wireBytes := append([]byte("$21\r\n"), payload...)

	v, n, err := DecodeRdb(wireBytes)
	require.NoError(t, err)
	assert.Equal(t, len(wireBytes), n)
	assert.Equal(t, KindRdb, v.Kind)
	assert.Equal(t, payload, v.Str)

	// No trailing CRLF required: the next frame starts immediately after.
	rest := append(append([]byte{}, wireBytes...), []byte("+OK\r\n")...)
	v, n, err = DecodeRdb(rest)
	require.NoError(t, err)
	assert.Equal(t, len(wireBytes), n)

	next, nn, err := Decode(rest[n:])
	require.NoError(t, err)
	assert.Equal(t, 5, nn)
	assert.Equal(t, SimpleString([]byte("OK")), next)
}

// Framing resumability: splitting a valid byte stream at ANY boundary and
// feeding the halves sequentially yields the same frames as feeding it
// whole.
func TestResumability(t *testing.T) {
	whole := []byte("*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n+PONG\r\n:123\r\n")

	var wantFrames []Value
	{
		buf := append([]byte{}, whole...)
		for len(buf) > 0 {
			v, n, err := Decode(buf)
			require.NoError(t, err)
			if n == 0 {
				break
			}
			wantFrames = append(wantFrames, v)
			buf = buf[n:]
		}
	}

	for split := 0; split <= len(whole); split++ {
		first := append([]byte{}, whole[:split]...)
		second := whole[split:]

		var got []Value
		buf := first
		feedMore := false
		for {
			v, n, err := Decode(buf)
			require.NoError(t, err)
			if n == 0 {
				if feedMore {
					break
				}
				buf = append(buf, second...)
				feedMore = true
				continue
			}
			got = append(got, v)
			buf = buf[n:]
		}

		require.Len(t, got, len(wantFrames), "split at %d", split)
		for i := range got {
			assertValueEqual(t, wantFrames[i], got[i])
		}
	}
}

func assertValueEqual(t *testing.T, want, got Value) {
	t.Helper()
	require.Equal(t, want.Kind, got.Kind)
	require.Equal(t, want.Null, got.Null)
	require.Equal(t, want.Int, got.Int)
	require.Equal(t, string(want.Str), string(got.Str))
	require.Equal(t, len(want.Items), len(got.Items))
	for i := range want.Items {
		assertValueEqual(t, want.Items[i], got.Items[i])
	}
}

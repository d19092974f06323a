// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	v, n, err := Decode([]byte("*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n"))
	require.NoError(t, err)

	cmd, err := ParseCommand(v, n)
	require.NoError(t, err)
	require.Equal(t, CmdSet, cmd.Kind)
	require.Equal(t, "SET", cmd.Name)
	require.Equal(t, n, cmd.RawSize)
	require.Equal(t, [][]byte{[]byte("foo"), []byte("bar")}, cmd.Args)
}

func TestParseCommandCaseInsensitive(t *testing.T) {
	v, _, err := Decode([]byte("*1\r\n$4\r\nping\r\n"))
	require.NoError(t, err)

	cmd, err := ParseCommand(v, 0)
	require.NoError(t, err)
	require.Equal(t, CmdPing, cmd.Kind)
}

func TestParseCommandUnknown(t *testing.T) {
	v, _, err := Decode([]byte("*1\r\n$7\r\nFOOBARX\r\n"))
	require.NoError(t, err)

	cmd, err := ParseCommand(v, 0)
	require.NoError(t, err)
	require.Equal(t, CmdUnknown, cmd.Kind)
	require.Equal(t, "FOOBARX", cmd.Name)
}

func TestParseCommandRejectsNonArray(t *testing.T) {
	_, err := ParseCommand(SimpleString([]byte("PING")), 0)
	require.ErrorIs(t, err, ErrNotArray)
}

// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package store

import (
	"testing"

	"github.com/kvnode/kvnode/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionStoreCreateAndEnqueue(t *testing.T) {
	tx := NewTransactionStore()

	assert.False(t, tx.Has("c1"))
	tx.Create("c1")
	assert.True(t, tx.Has("c1"))

	tx.Enqueue("c1", wire.Command{Kind: wire.CmdSet, Name: "SET"})
	tx.Enqueue("c1", wire.Command{Kind: wire.CmdIncr, Name: "INCR"})

	queue, ok := tx.Remove("c1")
	require.True(t, ok)
	require.Len(t, queue, 2)
	assert.Equal(t, wire.CmdSet, queue[0].Kind)
	assert.Equal(t, wire.CmdIncr, queue[1].Kind)
	assert.False(t, tx.Has("c1"))
}

// TestTransactionStoreNestedMultiIsIdempotent covers MULTI called twice in
// a row without an intervening EXEC/DISCARD: the second call must not
// reset the already-queued commands.
func TestTransactionStoreNestedMultiIsIdempotent(t *testing.T) {
	tx := NewTransactionStore()

	tx.Create("c1")
	tx.Enqueue("c1", wire.Command{Kind: wire.CmdSet, Name: "SET"})
	tx.Create("c1")

	queue, ok := tx.Remove("c1")
	require.True(t, ok)
	assert.Len(t, queue, 1)
}

func TestTransactionStoreRemoveWithoutMulti(t *testing.T) {
	tx := NewTransactionStore()
	_, ok := tx.Remove("c1")
	assert.False(t, ok)
}

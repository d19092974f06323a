// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapStoreGetSet(t *testing.T) {
	m := NewMapStore()

	_, ok := m.Get("foo")
	assert.False(t, ok)

	m.Set("foo", []byte("bar"), false, 0)
	v, ok := m.Get("foo")
	require.True(t, ok)
	assert.Equal(t, []byte("bar"), v)
}

// TestMapStoreTTLMonotonicity implements the spec's TTL monotonicity
// invariant: a value set with a TTL is visible before expiry and absent
// after it.
func TestMapStoreTTLMonotonicity(t *testing.T) {
	m := NewMapStore()
	m.Set("foo", []byte("bar"), true, 50*time.Millisecond)

	v, ok := m.Get("foo")
	require.True(t, ok)
	assert.Equal(t, []byte("bar"), v)

	time.Sleep(80 * time.Millisecond)
	_, ok = m.Get("foo")
	assert.False(t, ok)
}

func TestMapStoreIncr(t *testing.T) {
	m := NewMapStore()

	n, err := m.Incr("counter")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = m.Incr("counter")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestMapStoreIncrNonInteger(t *testing.T) {
	m := NewMapStore()
	m.Set("foo", []byte("not-a-number"), false, 0)

	_, err := m.Incr("foo")
	assert.ErrorIs(t, err, ErrNotAnInteger)
}

func TestMapStoreIncrOnExpiredKeyStartsFresh(t *testing.T) {
	m := NewMapStore()
	m.Set("foo", []byte("41"), true, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	n, err := m.Incr("foo")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMapStoreIncrPreservesTTL(t *testing.T) {
	m := NewMapStore()
	m.Set("foo", []byte("1"), true, time.Hour)

	_, err := m.Incr("foo")
	require.NoError(t, err)

	m.mu.RLock()
	e := m.data["foo"]
	m.mu.RUnlock()
	assert.True(t, e.hasTTL)
}

func TestMapStoreSweepExpired(t *testing.T) {
	m := NewMapStore()
	m.Set("a", []byte("1"), true, 10*time.Millisecond)
	m.Set("b", []byte("2"), false, 0)

	time.Sleep(30 * time.Millisecond)
	removed := m.SweepExpired(time.Now())
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, m.Len())
}

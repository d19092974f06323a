// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamStoreAddAutogen(t *testing.T) {
	s := NewStreamStore()

	id1, err := s.Add("s", "*", []Field{{Name: []byte("f"), Value: []byte("v1")}}, 1000)
	require.NoError(t, err)
	assert.Equal(t, EntryID{MS: 1000, Seq: 0}, id1)

	id2, err := s.Add("s", "*", []Field{{Name: []byte("f"), Value: []byte("v2")}}, 1000)
	require.NoError(t, err)
	assert.Equal(t, EntryID{MS: 1000, Seq: 1}, id2)
}

func TestStreamStoreAddAutoSequence(t *testing.T) {
	s := NewStreamStore()

	id1, err := s.Add("s", "5-*", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, EntryID{MS: 5, Seq: 0}, id1)

	id2, err := s.Add("s", "5-*", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, EntryID{MS: 5, Seq: 1}, id2)
}

// TestStreamStoreZeroMSSpecialCase covers the "0-*" special case: the
// first auto-sequenced entry at ms 0 must be 0-1, since 0-0 is never a
// valid id, but once a prior entry exists at ms 0 the normal increment
// rule applies instead of being overridden.
func TestStreamStoreZeroMSSpecialCase(t *testing.T) {
	s := NewStreamStore()

	id1, err := s.Add("s", "0-*", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, EntryID{MS: 0, Seq: 1}, id1)

	id2, err := s.Add("s", "0-*", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, EntryID{MS: 0, Seq: 2}, id2)
}

func TestStreamStoreExplicitIDZeroRejected(t *testing.T) {
	s := NewStreamStore()
	_, err := s.Add("s", "0-0", nil, 0)
	assert.ErrorIs(t, err, ErrStreamIDZero)
}

// TestStreamStoreIDMonotonicity implements the spec's stream ID
// monotonicity invariant: ids assigned across a sequence of adds strictly
// increase under numeric (ms, seq) ordering, and any explicit id that
// would violate this is rejected.
func TestStreamStoreIDMonotonicity(t *testing.T) {
	s := NewStreamStore()

	_, err := s.Add("s", "5-5", nil, 0)
	require.NoError(t, err)

	_, err = s.Add("s", "5-5", nil, 0)
	assert.ErrorIs(t, err, ErrStreamIDNotIncreasing)

	_, err = s.Add("s", "5-4", nil, 0)
	assert.ErrorIs(t, err, ErrStreamIDNotIncreasing)

	_, err = s.Add("s", "5-6", nil, 0)
	assert.NoError(t, err)
}

func TestStreamStoreRange(t *testing.T) {
	s := NewStreamStore()
	id1, _ := s.Add("s", "1-1", nil, 0)
	id2, _ := s.Add("s", "2-1", nil, 0)
	_, _ = s.Add("s", "3-1", nil, 0)

	got := s.Range("s", id1, id2, false, false)
	require.Len(t, got, 2)
	assert.Equal(t, id1, got[0].ID)
	assert.Equal(t, id2, got[1].ID)

	all := s.Range("s", EntryID{}, EntryID{}, true, true)
	assert.Len(t, all, 3)
}

func TestStreamStoreAfter(t *testing.T) {
	s := NewStreamStore()
	id1, _ := s.Add("s", "1-1", nil, 0)
	id2, _ := s.Add("s", "2-1", nil, 0)

	got := s.After("s", id1)
	require.Len(t, got, 1)
	assert.Equal(t, id2, got[0].ID)
}

func TestParseEntryID(t *testing.T) {
	id, err := ParseEntryID("5-10")
	require.NoError(t, err)
	assert.Equal(t, EntryID{MS: 5, Seq: 10}, id)

	_, err = ParseEntryID("not-an-id")
	assert.ErrorIs(t, err, ErrStreamIDMalformed)
}

func TestEntryIDNumericOrdering(t *testing.T) {
	// Numeric comparison, not lexicographic: "9-0" sorts before "10-0"
	// even though "9" > "1" as strings.
	lo := EntryID{MS: 9, Seq: 0}
	hi := EntryID{MS: 10, Seq: 0}
	assert.True(t, lo.Less(hi))
	assert.False(t, hi.Less(lo))
}

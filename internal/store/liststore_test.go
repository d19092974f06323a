// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListStoreAppendAndRange(t *testing.T) {
	l := NewListStore()

	assert.Equal(t, 1, l.Append("k", []byte("a")))
	assert.Equal(t, 2, l.Append("k", []byte("b")))
	assert.Equal(t, 3, l.Append("k", []byte("c")))

	got := l.Slice("k", 0, -1)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b"), []byte("c")}, got)
}

func TestListStorePrepend(t *testing.T) {
	l := NewListStore()
	l.Append("k", []byte("a"))
	l.Prepend("k", []byte("z"))

	got := l.Slice("k", 0, -1)
	assert.Equal(t, [][]byte{[]byte("z"), []byte("a")}, got)
}

func TestListStoreSliceNegativeIndices(t *testing.T) {
	l := NewListStore()
	for _, v := range []string{"a", "b", "c", "d"} {
		l.Append("k", []byte(v))
	}

	assert.Equal(t, [][]byte{[]byte("c"), []byte("d")}, l.Slice("k", -2, -1))
	assert.Equal(t, [][]byte{[]byte("a")}, l.Slice("k", 0, 0))
	assert.Nil(t, l.Slice("k", 5, 10))
	assert.Nil(t, l.Slice("missing", 0, -1))
}

func TestListStorePopFront(t *testing.T) {
	l := NewListStore()
	for _, v := range []string{"a", "b", "c"} {
		l.Append("k", []byte(v))
	}

	got := l.PopFront("k", 2)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b")}, got)
	assert.Equal(t, 1, l.Len("k"))
}

func TestListStorePopFrontOneEmpty(t *testing.T) {
	l := NewListStore()
	_, ok := l.PopFrontOne("missing")
	assert.False(t, ok)
}

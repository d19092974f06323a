// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package store

import "sync"

// ListStore holds an ordered sequence of byte-string elements per key. A
// missing key behaves like an empty sequence for reads; it is created
// implicitly on the first Append/Prepend and is never removed again once
// created, even once empty.
type ListStore struct {
	mu   sync.RWMutex
	data map[string][][]byte
}

func NewListStore() *ListStore {
	return &ListStore{data: make(map[string][][]byte)}
}

// Append pushes v onto the back of key's list (RPUSH) and returns the new
// length.
func (l *ListStore) Append(key string, v []byte) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.data[key] = append(l.data[key], v)
	return len(l.data[key])
}

// Prepend pushes v onto the front of key's list (LPUSH) and returns the
// new length.
func (l *ListStore) Prepend(key string, v []byte) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur := l.data[key]
	next := make([][]byte, 0, len(cur)+1)
	next = append(next, v)
	next = append(next, cur...)
	l.data[key] = next
	return len(next)
}

// Slice returns the inclusive range [start, end] after normalizing both
// bounds against the current length: negative indices count back from the
// end (clamped at 0), and end is clamped to len-1. If the normalized range
// is empty (start > end or start >= len) it returns nil.
func (l *ListStore) Slice(key string, start, end int) [][]byte {
	l.mu.RLock()
	defer l.mu.RUnlock()

	seq := l.data[key]
	n := len(seq)
	if n == 0 {
		return nil
	}

	start = normalizeIndex(start, n)
	end = normalizeIndex(end, n)
	if end >= n {
		end = n - 1
	}
	if start > end || start >= n {
		return nil
	}

	out := make([][]byte, end-start+1)
	copy(out, seq[start:end+1])
	return out
}

func normalizeIndex(idx, n int) int {
	if idx < 0 {
		idx = n + idx
		if idx < 0 {
			idx = 0
		}
	}
	return idx
}

// Len returns the current length of key's list (0 if missing).
func (l *ListStore) Len(key string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.data[key])
}

// PopFront removes and returns up to count elements from the front of
// key's list (LPOP [count]).
func (l *ListStore) PopFront(key string, count int) [][]byte {
	l.mu.Lock()
	defer l.mu.Unlock()

	seq := l.data[key]
	if len(seq) == 0 || count <= 0 {
		return nil
	}
	if count > len(seq) {
		count = len(seq)
	}

	out := make([][]byte, count)
	copy(out, seq[:count])
	l.data[key] = seq[count:]
	return out
}

// PopFrontOne removes and returns the first element of key's list, or
// ok == false if the list is empty or missing.
func (l *ListStore) PopFrontOne(key string) (value []byte, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	seq := l.data[key]
	if len(seq) == 0 {
		return nil, false
	}

	v := seq[0]
	l.data[key] = seq[1:]
	return v, true
}

// KeyCount returns the number of distinct list keys, for stats reporting.
func (l *ListStore) KeyCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.data)
}

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

func TestNotifierRegisterPublish(t *testing.T) {
	n := NewNotifier()
	ch := n.Register("client-1", []string{"k"})

	woke := n.Publish("k")
	assert.True(t, woke)

	select {
	case key := <-ch:
		assert.Equal(t, "k", key)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for publish")
	}
}

func TestNotifierPublishWithNoWaiterBacklogs(t *testing.T) {
	n := NewNotifier()
	woke := n.Publish("k")
	assert.False(t, woke)

	key, ok := n.DrainBacklog([]string{"other", "k"})
	require.True(t, ok)
	assert.Equal(t, "k", key)

	_, ok = n.DrainBacklog([]string{"k"})
	assert.False(t, ok, "backlog entry should be consumed exactly once")
}

func TestNotifierUnregister(t *testing.T) {
	n := NewNotifier()
	n.Register("client-1", []string{"k"})
	n.Unregister("client-1")

	woke := n.Publish("k")
	assert.False(t, woke, "unregistered client must not be woken")
}

// TestNotifierFairness implements the spec's notifier fairness invariant:
// when several clients are interested in the same key, the longest-
// registered waiter is woken, not an arbitrary or most-recent one.
func TestNotifierFairness(t *testing.T) {
	n := NewNotifier()

	chOld := n.Register("client-old", []string{"k"})
	time.Sleep(5 * time.Millisecond)
	chNew := n.Register("client-new", []string{"k"})

	woke := n.Publish("k")
	require.True(t, woke)

	select {
	case <-chOld:
	case <-chNew:
		t.Fatal("newer waiter was woken instead of the longest-waiting one")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for publish")
	}
}

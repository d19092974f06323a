// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dispatch

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/kvnode/kvnode/internal/wire"
)

// cmdInfo answers INFO [section]. Only the "replication" section is
// meaningful; it is also the default when no section is given, per the
// supplemented behavior grounded in the original connection handler.
func (d *Dispatcher) cmdInfo(cmd wire.Command) wire.Value {
	section := "replication"
	if len(cmd.Args) >= 1 {
		section = string(bytes.ToLower(cmd.Args[0]))
	}

	if section != "replication" {
		return wire.BulkString(nil)
	}

	payload := fmt.Sprintf("role:master\nmaster_replid:%s\nmaster_repl_offset:0\n", d.replID)
	return wire.BulkString([]byte(payload))
}

// cmdReplConf handles REPLCONF <key> <value>. GETACK is never sent to
// this node by a client directly (it is the leader's own broadcast to
// followers); an ACK arriving here means this node is the leader and
// clientID is a previously PSYNC'd follower reporting its offset. Every
// other key/value pair (listening-port, capa, ...) is acknowledged with
// +OK without this node needing to understand it.
func (d *Dispatcher) cmdReplConf(cmd wire.Command, clientID string) (wire.Value, bool) {
	if len(cmd.Args) >= 1 {
		key := string(bytes.ToUpper(cmd.Args[0]))
		if key == "ACK" {
			d.acks.publish(clientID)
			return wire.Value{}, false
		}
	}
	return wire.SimpleString([]byte("OK")), true
}

// cmdPsync handles PSYNC ? -1: registers the requesting connection as a
// follower and replies with FULLRESYNC followed immediately by the fixed
// empty RDB snapshot. Both frames are written to the same reply channel,
// in order, ahead of anything else so the follower's parser sees them
// back to back as spec.md §4.8 and §9 require.
func (d *Dispatcher) cmdPsync(req Request) wire.Value {
	d.replicas.Attach(req.ClientID, req.Reply)
	followers := d.Store.AddFollower()
	if d.Metrics != nil {
		d.Metrics.ConnectedReplicas.Set(float64(followers))
	}
	cclog.Infof("dispatch: PSYNC from %s, replid %s", req.ClientID, d.replID)

	sendValue(req.Reply, wire.SimpleString([]byte(fmt.Sprintf("FULLRESYNC %s 0", d.replID))))
	return wire.Rdb(emptyRDBSnapshot)
}

// DetachFollower removes clientID from the replica registry and
// decrements the connected-follower count. The (out-of-scope) acceptor
// calls this on every disconnect; it does nothing for a client that is not
// an attached follower.
func (d *Dispatcher) DetachFollower(clientID string) {
	if !slices.Contains(d.replicas.IDs(), clientID) {
		return
	}
	d.replicas.Detach(clientID)
	followers := d.Store.RemoveFollower()
	if d.Metrics != nil {
		d.Metrics.ConnectedReplicas.Set(float64(followers))
	}
}

func (d *Dispatcher) cmdWait(cmd wire.Command) wire.Value {
	if len(cmd.Args) != 2 {
		return insufficientArgs(cmd.Name)
	}
	numReplicas, err1 := strconv.Atoi(string(cmd.Args[0]))
	timeoutMS, err2 := strconv.ParseInt(string(cmd.Args[1]), 10, 64)
	if err1 != nil || err2 != nil {
		return wire.Error([]byte("ERR value is not an integer or out of range"))
	}

	n := d.runWait(numReplicas, timeoutMS)
	return wire.Integer(n)
}

// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config holds the node's ProgramConfig: the settings a JSON
// config file and then explicitly set CLI flags may override, in that
// order, after flag.Parse has run. The read-if-exists/validate-if-present/decode
// pattern in Init mirrors the teacher's own config package.
package config

import (
	"bytes"
	"encoding/json"
	"os"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
)

// ProgramConfig is the complete set of node settings, populated with
// defaults below and optionally overridden by an on-disk JSON file.
type ProgramConfig struct {
	// Addr is the TCP listen address for the wire protocol.
	Addr string `json:"addr"`

	// HTTPAddr is the listen address for the observability server
	// (/metrics, /debug/status).
	HTTPAddr string `json:"http-addr"`

	// Workers is the dispatcher's worker pool size.
	Workers int `json:"workers"`

	// ReplicaOf is "<host> <port>" of this node's leader, empty if this
	// node is a leader.
	ReplicaOf string `json:"replicaof"`

	// RetentionSweep is the active TTL-sweep interval, as a
	// time.ParseDuration string.
	RetentionSweep string `json:"retention-sweep"`

	// LogLevel is the minimum level cclog emits at.
	LogLevel string `json:"log-level"`

	// LogDateTime turns on a date/time prefix on every log line.
	LogDateTime bool `json:"log-date-time"`
}

// Keys holds the effective configuration, seeded with defaults and
// optionally overwritten by Init.
var Keys ProgramConfig = ProgramConfig{
	Addr:           ":6379",
	HTTPAddr:       ":6380",
	Workers:        10,
	ReplicaOf:      "",
	RetentionSweep: "1m",
	LogLevel:       "info",
	LogDateTime:    false,
}

// Init reads flagConfigFile if it exists, validates it against
// configSchema, and decodes it over Keys. A missing file is not an
// error: the defaults above apply as-is, the same tolerance the
// teacher's Init affords a missing config.json.
func Init(flagConfigFile string) {
	if flagConfigFile == "" {
		return
	}

	raw, err := os.ReadFile(flagConfigFile)
	if err != nil {
		if !os.IsNotExist(err) {
			cclog.Fatalf("config: reading %s: %v", flagConfigFile, err)
		}
		return
	}

	Validate(configSchema, raw)

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&Keys); err != nil {
		cclog.Fatalf("config: decoding %s: %v", flagConfigFile, err)
	}
}

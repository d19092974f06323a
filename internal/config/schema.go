// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

// configSchema validates the on-disk JSON config file against
// ProgramConfig's shape before it is decoded, catching typos and
// unsupported fields early rather than failing confusingly deep in the
// CLI or store startup path.
var configSchema = `
{
  "type": "object",
  "properties": {
    "addr": {
      "description": "TCP address the wire protocol listens on (for example ':6379').",
      "type": "string"
    },
    "http-addr": {
      "description": "Address the observability HTTP server (/metrics, /debug/status) listens on.",
      "type": "string"
    },
    "workers": {
      "description": "Number of dispatcher worker goroutines.",
      "type": "integer",
      "minimum": 1
    },
    "replicaof": {
      "description": "'<host> <port>' of this node's leader. Empty if this node is a leader.",
      "type": "string"
    },
    "retention-sweep": {
      "description": "Active TTL-sweep interval, parsable by time.ParseDuration.",
      "type": "string"
    },
    "log-level": {
      "description": "Minimum log level: debug, info, warn, error.",
      "type": "string"
    },
    "log-date-time": {
      "description": "Prefix log lines with a date/time stamp.",
      "type": "boolean"
    }
  }
}`

// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import "flag"

var (
	flagPort, flagWorkers                                     int
	flagGops, flagLogDateTime                                 bool
	flagReplicaOf, flagConfigFile, flagHTTPAddr, flagLogLevel string
)

func cliInit() {
	flag.IntVar(&flagPort, "port", 6379, "TCP port the wire protocol listens on")
	flag.StringVar(&flagReplicaOf, "replicaof", "", "Start as a follower of \"<host> <port>\"")
	flag.StringVar(&flagConfigFile, "config", "./config.json", "Specify alternative path to `config.json`")
	flag.IntVar(&flagWorkers, "workers", 10, "Number of dispatcher worker goroutines")
	flag.StringVar(&flagHTTPAddr, "http-addr", ":6380", "Address the observability HTTP server listens on")
	flag.BoolVar(&flagGops, "gops", false, "Listen via github.com/google/gops/agent (for debugging)")
	flag.StringVar(&flagLogLevel, "loglevel", "info", "Sets the logging level: `[debug, info, warn, err]`")
	flag.BoolVar(&flagLogDateTime, "logdate", false, "Set this flag to add date and time to log messages")
	flag.Parse()
}

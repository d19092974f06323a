// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/google/gops/agent"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/kvnode/kvnode/internal/config"
	"github.com/kvnode/kvnode/internal/dispatch"
	"github.com/kvnode/kvnode/internal/housekeeping"
	"github.com/kvnode/kvnode/internal/listener"
	"github.com/kvnode/kvnode/internal/obs"
	"github.com/kvnode/kvnode/internal/replication"
	"github.com/kvnode/kvnode/internal/runtimeEnv"
	"github.com/kvnode/kvnode/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		cclog.Fatalf("loading .env failed: %s", err.Error())
	}

	cliInit()

	if flagGops {
		if err := agent.Listen(agent.Options{}); err != nil {
			cclog.Fatalf("gops/agent.Listen failed: %s", err.Error())
		}
	}

	config.Init(flagConfigFile)
	applyFlagOverrides()

	cclog.Init(config.Keys.LogLevel, config.Keys.LogDateTime)

	st := store.NewGlobalStore()
	metrics := obs.NewMetrics()
	d := dispatch.New(st, metrics)

	sched, err := housekeeping.New(st, d, config.Keys.RetentionSweep)
	if err != nil {
		cclog.Fatalf("housekeeping: %s", err.Error())
	}

	ln, err := listener.New(config.Keys.Addr, d)
	if err != nil {
		cclog.Fatalf("listener: binding %s: %s", config.Keys.Addr, err.Error())
	}

	role := "master"
	var follower *replication.Follower
	if config.Keys.ReplicaOf != "" {
		leaderAddr, err := normalizeReplicaOf(config.Keys.ReplicaOf)
		if err != nil {
			cclog.Fatalf("replicaof: %s", err.Error())
		}

		_, ownPort, _ := strings.Cut(config.Keys.Addr, ":")
		follower, err = replication.Dial(leaderAddr, ownPort, d)
		if err != nil {
			cclog.Fatalf("replication: %s", err.Error())
		}
		role = "slave"
	}

	started := time.Now()
	httpServer := obs.NewServer(config.Keys.HTTPAddr, func() obs.Status {
		return obs.Status{
			Role:              role,
			UptimeSeconds:     int64(time.Since(started).Seconds()),
			ConnectedClients:  d.ConnectedClients(),
			ConnectedReplicas: st.ConnectedFollowers(),
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		d.Run(gctx, config.Keys.Workers)
		return nil
	})
	g.Go(func() error {
		return ln.Run(gctx)
	})
	g.Go(func() error {
		return httpServer.Run(gctx)
	})
	g.Go(func() error {
		sched.Start()
		<-gctx.Done()
		return sched.Shutdown()
	})

	if follower != nil {
		g.Go(func() error {
			errCh := make(chan error, 1)
			go func() { errCh <- follower.Run() }()
			select {
			case <-gctx.Done():
				follower.Close()
				return nil
			case err := <-errCh:
				return err
			}
		})
	}

	runtimeEnv.SystemdNotifiy(true, "running")
	cclog.Infof("kvnode: listening on %s as %s", config.Keys.Addr, role)

	if err := g.Wait(); err != nil {
		cclog.Errorf("kvnode: shutting down after error: %s", err.Error())
		runtimeEnv.SystemdNotifiy(false, "shutting down")
		os.Exit(1)
	}
	runtimeEnv.SystemdNotifiy(false, "shutting down")
}

// applyFlagOverrides lets explicitly-set CLI flags win over config.json,
// the same precedence order the teacher's cliInit/config.Init split
// establishes: defaults, then config file, then flags.
func applyFlagOverrides() {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["port"] {
		config.Keys.Addr = ":" + strconv.Itoa(flagPort)
	}
	if flagReplicaOf != "" {
		config.Keys.ReplicaOf = flagReplicaOf
	}
	if set["workers"] {
		config.Keys.Workers = flagWorkers
	}
	if set["http-addr"] {
		config.Keys.HTTPAddr = flagHTTPAddr
	}
	if set["loglevel"] {
		config.Keys.LogLevel = flagLogLevel
	}
	if flagLogDateTime {
		config.Keys.LogDateTime = true
	}
}

// normalizeReplicaOf turns "<host> <port>" into a dialable address,
// normalizing localhost to 127.0.0.1 per spec.md §6.
func normalizeReplicaOf(raw string) (string, error) {
	parts := strings.Fields(raw)
	if len(parts) != 2 {
		return "", fmt.Errorf("replicaof: expected \"<host> <port>\", got %q", raw)
	}
	host := parts[0]
	if host == "localhost" {
		host = "127.0.0.1"
	}
	return host + ":" + parts[1], nil
}

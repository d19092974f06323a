// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package runtimeEnv carries the process-lifecycle helpers that don't
// belong to any one store or protocol component. .env loading and
// privileged-port user dropping are superseded by joho/godotenv and the
// absence of a privileged-port requirement; only the systemd readiness
// notification survives, used by cmd/kvnode around its errgroup-managed
// startup and shutdown.
package runtimeEnv

import (
	"fmt"
	"os"
	"os/exec"
)

// SystemdNotifiy informs systemd of a readiness or shutdown transition,
// a no-op unless the process was started under systemd (NOTIFY_SOCKET
// set in the environment):
// https://www.freedesktop.org/software/systemd/man/sd_notify.html
func SystemdNotifiy(ready bool, status string) {
	if os.Getenv("NOTIFY_SOCKET") == "" {
		return
	}

	args := []string{fmt.Sprintf("--pid=%d", os.Getpid())}
	if ready {
		args = append(args, "--ready")
	}
	if status != "" {
		args = append(args, fmt.Sprintf("--status=%s", status))
	}

	cmd := exec.Command("systemd-notify", args...)
	cmd.Run() // errors ignored on purpose, there is not much to do anyways.
}

// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package config

import (
	"os"
	"path/filepath"
	"testing"

	_ "github.com/santhosh-tekuri/jsonschema/v5/httploader"
)

func TestInitMissingFileKeepsDefaults(t *testing.T) {
	Keys = ProgramConfig{Addr: ":6379", Workers: 10}
	Init(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if Keys.Addr != ":6379" {
		t.Errorf("wrong addr\ngot: %s \nwant: :6379", Keys.Addr)
	}
}

func TestInitOverridesDefaults(t *testing.T) {
	fp := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(fp, []byte(`{"addr":":7000","workers":4}`), 0o644); err != nil {
		t.Fatal(err)
	}

	Keys = ProgramConfig{Addr: ":6379", Workers: 10}
	Init(fp)

	if Keys.Addr != ":7000" {
		t.Errorf("wrong addr\ngot: %s \nwant: :7000", Keys.Addr)
	}
	if Keys.Workers != 4 {
		t.Errorf("wrong workers\ngot: %d \nwant: 4", Keys.Workers)
	}
}

func TestInitEmptyPathNoop(t *testing.T) {
	Keys = ProgramConfig{Addr: ":6379"}
	Init("")
	if Keys.Addr != ":6379" {
		t.Errorf("Init(\"\") should not touch Keys, got addr %s", Keys.Addr)
	}
}

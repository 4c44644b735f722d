// Copyright 2024 The Minos Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runmos.toml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
debug = true
log-format = "json"
threads = 7
`)
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed, err: %v", err)
	}
	want := &Config{
		Debug:          true,
		LogFormat:      "json",
		DeadlockDetect: true,
		Threads:        7,
		Rounds:         10,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("loaded config differs (-want +got):\n%s", diff)
	}
}

func TestLoadUnknownKey(t *testing.T) {
	path := writeConfig(t, `philosopher-count = 3`)
	if _, err := Load(path); err == nil {
		t.Errorf("Load with unknown key succeeded, expected error")
	}
}

func TestLoadInvalid(t *testing.T) {
	for _, tc := range []struct {
		name     string
		contents string
	}{
		{"bad log format", `log-format = "xml"`},
		{"too few threads", `threads = 1`},
		{"zero rounds", `rounds = 0`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.contents)
			if _, err := Load(path); err == nil {
				t.Errorf("Load(%q) succeeded, expected error", tc.contents)
			}
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

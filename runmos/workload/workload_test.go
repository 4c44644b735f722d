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

package workload

import (
	"context"
	"testing"
	"time"

	"minos.dev/minos/runmos/config"
)

func testConfig() *config.Config {
	c := config.Default()
	c.Threads = 3
	c.Rounds = 3
	return c
}

func TestPhilosophers(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	if err := Philosophers(ctx, testConfig()); err != nil {
		t.Fatalf("Philosophers failed, err: %v", err)
	}
}

func TestPool(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	if err := Pool(ctx, testConfig()); err != nil {
		t.Fatalf("Pool failed, err: %v", err)
	}
}

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

package cmd

import (
	"context"
	"flag"
	"time"

	"github.com/google/subcommands"

	"minos.dev/minos/pkg/log"
	"minos.dev/minos/runmos/config"
	"minos.dev/minos/runmos/workload"
)

// Philosophers implements subcommands.Command for the "philosophers" command.
type Philosophers struct {
	threads int
	rounds  int
}

// Name implements subcommands.Command.Name.
func (*Philosophers) Name() string {
	return "philosophers"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Philosophers) Synopsis() string {
	return "run the dining philosophers workload"
}

// Usage implements subcommands.Command.Usage.
func (*Philosophers) Usage() string {
	return `philosophers [flags] - run the dining philosophers workload.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (p *Philosophers) SetFlags(f *flag.FlagSet) {
	f.IntVar(&p.threads, "threads", 0, "number of philosophers, overrides the config file.")
	f.IntVar(&p.rounds, "rounds", 0, "rounds each philosopher eats, overrides the config file.")
}

// Execute implements subcommands.Command.Execute.
func (p *Philosophers) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	conf := args[0].(*config.Config)
	if p.threads > 0 {
		conf.Threads = p.threads
	}
	if p.rounds > 0 {
		conf.Rounds = p.rounds
	}
	if err := conf.Validate(); err != nil {
		Fatalf("invalid configuration: %v", err)
	}

	start := time.Now()
	if err := workload.Philosophers(ctx, conf); err != nil {
		Fatalf("philosophers workload failed: %v", err)
	}
	log.Infof("philosophers workload finished in %v", time.Since(start))
	return subcommands.ExitSuccess
}

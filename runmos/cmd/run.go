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

// workloads maps workload names to their runners.
var workloads = map[string]func(context.Context, *config.Config) error{
	"philosophers": workload.Philosophers,
	"pool":         workload.Pool,
}

// Run implements subcommands.Command for the "run" command.
type Run struct {
	threads int
	rounds  int
}

// Name implements subcommands.Command.Name.
func (*Run) Name() string {
	return "run"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Run) Synopsis() string {
	return "run the named workload"
}

// Usage implements subcommands.Command.Usage.
func (*Run) Usage() string {
	return `run [flags] <workload> - run the named workload.

Workloads: philosophers, pool.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (r *Run) SetFlags(f *flag.FlagSet) {
	f.IntVar(&r.threads, "threads", 0, "number of workers, overrides the config file.")
	f.IntVar(&r.rounds, "rounds", 0, "iterations per worker, overrides the config file.")
}

// Execute implements subcommands.Command.Execute.
func (r *Run) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	name := f.Arg(0)
	run, ok := workloads[name]
	if !ok {
		Fatalf("unknown workload %q", name)
	}

	conf := args[0].(*config.Config)
	if r.threads > 0 {
		conf.Threads = r.threads
	}
	if r.rounds > 0 {
		conf.Rounds = r.rounds
	}
	if err := conf.Validate(); err != nil {
		Fatalf("invalid configuration: %v", err)
	}

	start := time.Now()
	if err := run(ctx, conf); err != nil {
		Fatalf("%s workload failed: %v", name, err)
	}
	log.Infof("%s workload finished in %v", name, time.Since(start))
	return subcommands.ExitSuccess
}

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

// Package cli is the main entrypoint for runmos.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"minos.dev/minos/pkg/log"
	"minos.dev/minos/runmos/cmd"
	"minos.dev/minos/runmos/config"
)

// version is set at build time.
var version = "unknown"

var (
	configFile  = flag.String("config", "", "path to a TOML workload configuration file.")
	debug       = flag.Bool("debug", false, "enable debug logging.")
	logFilename = flag.String("log", "", "file path to log to, empty for stderr.")
	logFormat   = flag.String("log-format", "", `log format: "text" or "json", overrides the config file.`)
	showVersion = flag.Bool("version", false, "show version and exit.")
)

// Main is the main entrypoint.
func Main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(new(cmd.Syscalls), "")

	const workloadGroup = "workloads"
	subcommands.Register(new(cmd.Run), workloadGroup)
	subcommands.Register(new(cmd.Philosophers), workloadGroup)
	subcommands.Register(new(cmd.Pool), workloadGroup)

	// All subcommands must be registered before flag parsing.
	flag.Parse()

	if *showVersion {
		fmt.Fprintf(os.Stdout, "runmos version %s\n", version)
		os.Exit(0)
	}

	conf := config.Default()
	if *configFile != "" {
		var err error
		conf, err = config.Load(*configFile)
		if err != nil {
			cmd.Fatalf("%v", err)
		}
	}
	if *debug {
		conf.Debug = true
	}
	if *logFormat != "" {
		conf.LogFormat = *logFormat
	}

	// Set up logging.
	logWriter := io.Writer(os.Stderr)
	if *logFilename != "" {
		f, err := os.OpenFile(*logFilename, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			cmd.Fatalf("error opening log file %q: %v", *logFilename, err)
		}
		logWriter = f
	}
	log.SetTarget(newEmitter(conf.LogFormat, logWriter))
	if conf.Debug {
		log.SetLevel(log.Debug)
	}

	log.Infof("runmos version %s, PID %d", version, os.Getpid())
	log.Debugf("args: %v", os.Args)

	os.Exit(int(subcommands.Execute(context.Background(), conf)))
}

func newEmitter(format string, logFile io.Writer) log.Emitter {
	switch format {
	case "text":
		return log.TextEmitter{Writer: &log.Writer{Next: logFile}}
	case "json":
		return log.JSONEmitter{Writer: &log.Writer{Next: logFile}}
	}
	cmd.Fatalf("invalid log format %q, must be 'text' or 'json'", format)
	panic("unreachable")
}

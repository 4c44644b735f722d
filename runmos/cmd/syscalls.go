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
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/google/subcommands"

	"minos.dev/minos/pkg/kernel"
)

// Syscalls implements subcommands.Command for the "syscalls" command.
type Syscalls struct {
	output string
}

type syscallEntry struct {
	Num  uintptr `json:"num"`
	Name string  `json:"name"`
}

// Name implements subcommands.Command.Name.
func (*Syscalls) Name() string {
	return "syscalls"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Syscalls) Synopsis() string {
	return "print the syscalls the kernel implements"
}

// Usage implements subcommands.Command.Usage.
func (*Syscalls) Usage() string {
	return `syscalls [flags] - print the syscalls the kernel implements.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (s *Syscalls) SetFlags(f *flag.FlagSet) {
	f.StringVar(&s.output, "o", "table", "output format (table, json).")
}

// Execute implements subcommands.Command.Execute.
func (s *Syscalls) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	entries := make([]syscallEntry, 0, len(kernel.SyscallNames))
	for num, name := range kernel.SyscallNames {
		entries = append(entries, syscallEntry{Num: num, Name: name})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Num < entries[j].Num })

	switch s.output {
	case "table":
		outputTable(os.Stdout, entries)
	case "json":
		if err := outputJSON(os.Stdout, entries); err != nil {
			Fatalf("writing syscall table: %v", err)
		}
	default:
		Fatalf("unsupported output format %q", s.output)
	}
	return subcommands.ExitSuccess
}

func outputTable(w io.Writer, entries []syscallEntry) {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "NUM\tNAME")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\n", e.Num, e.Name)
	}
	tw.Flush()
}

func outputJSON(w io.Writer, entries []syscallEntry) error {
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(entries)
}

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

package log

import (
	"fmt"
	"strings"
	"testing"
)

type testWriter struct {
	lines []string
	fail  bool
}

func (w *testWriter) Write(bytes []byte) (int, error) {
	if w.fail {
		return 0, fmt.Errorf("simulated failure")
	}
	w.lines = append(w.lines, string(bytes))
	return len(bytes), nil
}

func TestDropMessages(t *testing.T) {
	tw := &testWriter{}
	w := Writer{Next: tw}
	if _, err := w.Write([]byte("line 1\n")); err != nil {
		t.Fatalf("Write failed, err: %v", err)
	}

	tw.fail = true
	if _, err := w.Write([]byte("error\n")); err == nil {
		t.Fatalf("Write should have failed")
	}
	if _, err := w.Write([]byte("error\n")); err == nil {
		t.Fatalf("Write should have failed")
	}

	tw.fail = false
	if _, err := w.Write([]byte("line 2\n")); err != nil {
		t.Fatalf("Write failed, err: %v", err)
	}

	expected := []string{
		"line 1\n",
		"line 2\n",
		"\n*** Dropped 2 log messages ***\n",
	}
	if len(tw.lines) != len(expected) {
		t.Fatalf("Writer should have logged %d lines, got: %v, expected: %v", len(expected), tw.lines, expected)
	}
	for i, l := range tw.lines {
		if l != expected[i] {
			t.Fatalf("line %d doesn't match, got: %v, expected: %v", i, l, expected[i])
		}
	}
}

// messages returns logged lines, ignoring the line feeds the Writer appends
// as separate writes.
func (w *testWriter) messages() []string {
	var msgs []string
	for _, l := range w.lines {
		if l != "\n" {
			msgs = append(msgs, l)
		}
	}
	return msgs
}

func TestLevels(t *testing.T) {
	tw := &testWriter{}
	logger := &BasicLogger{Level: Info, Emitter: &Writer{Next: tw}}

	logger.Debugf("debug")
	if got := tw.messages(); len(got) != 0 {
		t.Fatalf("Debugf should not be logged at Info level, got: %v", got)
	}

	logger.Infof("info")
	logger.Warningf("warning")
	if got := tw.messages(); len(got) != 2 {
		t.Fatalf("Infof and Warningf should be logged, got: %v", got)
	}

	logger.SetLevel(Debug)
	logger.Debugf("debug")
	if got := tw.messages(); len(got) != 3 {
		t.Fatalf("Debugf should be logged at Debug level, got: %v", got)
	}
	if !logger.IsLogging(Debug) {
		t.Fatalf("IsLogging(Debug) got: false, expected: true")
	}
}

func TestJSONEmitter(t *testing.T) {
	tw := &testWriter{}
	logger := &BasicLogger{Level: Info, Emitter: JSONEmitter{&Writer{Next: tw}}}

	logger.Infof("hello %d", 42)
	out := strings.Join(tw.lines, "")
	if !strings.Contains(out, `"msg":"hello 42"`) || !strings.Contains(out, `"level":"info"`) {
		t.Fatalf("unexpected json log output: %q", out)
	}
}

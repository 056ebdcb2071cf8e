// Copyright 2025 oneDAL-core Authors
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

// Package profiler implements the scoped task profiler: tasks timed
// with a monotonic clock, forming a hierarchical call tree by stack
// depth, with a verbosity-gated tree summary emitted at teardown.
package profiler

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Verbosity selects which profiler behaviors are active, read once from
// the VERBOSE environment variable.
type Verbosity int

const (
	// Off disables the profiler entirely: Start is a no-op.
	Off Verbosity = 0
	// Logger prints a header line per task as it starts.
	Logger Verbosity = 1
	// Tracer prints each task's duration as it ends.
	Tracer Verbosity = 2
	// Analyzer produces the indented tree summary at Shutdown.
	Analyzer Verbosity = 3
	// All combines Logger, Tracer, and Analyzer.
	All Verbosity = 4
	// Debug additionally reports threading-task durations as they end.
	Debug Verbosity = 5
)

func (v Verbosity) loggerEnabled() bool   { return v == Logger || v == All || v == Debug }
func (v Verbosity) tracerEnabled() bool   { return v == Tracer || v == All || v == Debug }
func (v Verbosity) profilerEnabled() bool { return v >= Logger && v <= Debug }
func (v Verbosity) analyzerEnabled() bool { return v == Analyzer || v == All || v == Debug }
func (v Verbosity) debugEnabled() bool    { return v == Debug }

// verbosityFromEnv parses VERBOSE into a Verbosity, defaulting to Off on
// any malformed or out-of-range value.
func verbosityFromEnv(raw string) Verbosity {
	if raw == "" {
		return Off
	}
	var n int
	if _, err := fmt.Sscanf(raw, "%d", &n); err != nil {
		return Off
	}
	if n < int(Off) || n > int(Debug) {
		return Off
	}
	return Verbosity(n)
}

// entry records one task occurrence. While a task is open, duration is
// unset and startedAt holds its start timestamp; End() fills duration in.
type entry struct {
	idx       int64
	name      string
	duration  time.Duration
	startedAt time.Time
	level     int64
	count     int64
	threading bool
}

// Profiler is the process-wide task tree. Obtain the shared instance via
// Instance(); construction reads VERBOSE once.
type Profiler struct {
	mu           sync.Mutex
	verbosity    Verbosity
	entries      []entry
	currentLevel int64
	nextIdx      int64
	out          io.Writer
}

var (
	instance     *Profiler
	instanceOnce sync.Once
)

// Instance returns the process-wide Profiler, constructing it lazily.
func Instance() *Profiler {
	instanceOnce.Do(func() {
		instance = newProfiler(verbosityFromEnv(os.Getenv("VERBOSE")), os.Stderr)
	})
	return instance
}

func newProfiler(v Verbosity, out io.Writer) *Profiler {
	p := &Profiler{verbosity: v, out: out}
	if v.loggerEnabled() {
		p.printHeader()
	}
	return p
}

// printHeader emits a two-line startup banner (a rule and the title
// "task profiler") when the profiler
// constructs with logger output enabled.
func (p *Profiler) printHeader() {
	fmt.Fprintln(p.out, "-----------------------------------------------------------------------------")
	fmt.Fprintln(p.out, "task profiler")
}

// Verbosity returns the profiler's active verbosity mode.
func (p *Profiler) Verbosity() Verbosity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.verbosity
}

// Task is the scoped handle returned by Start/StartThreading. Call End
// on every exit path, typically via defer.
type Task struct {
	p         *Profiler
	name      string
	idx       int64
	threading bool
	noop      bool
}

// Start opens a non-threading task named name at the caller's current
// stack depth. It is a no-op (End is free) when the profiler is disabled.
func (p *Profiler) Start(name string) *Task {
	if !p.verbosity.profilerEnabled() {
		return &Task{noop: true}
	}
	if p.verbosity.loggerEnabled() {
		fmt.Fprintf(p.out, "Profiler task_name: %s\n", name)
	}

	p.mu.Lock()
	idx := p.nextIdx
	p.nextIdx++
	level := p.currentLevel
	p.currentLevel++
	p.entries = append(p.entries, entry{
		idx:       idx,
		name:      name,
		startedAt: now(),
		level:     level,
		count:     1,
	})
	p.mu.Unlock()

	return &Task{p: p, name: name, idx: idx}
}

// StartThreading opens a threading task: one whose concurrent siblings
// at teardown are merged by taking the maximum duration across
// repetitions rather than summing them. Threading tasks take the
// profiler mutex on both start and end, since they are expected to be
// opened concurrently from multiple parallel-for workers.
func (p *Profiler) StartThreading(name string) *Task {
	if !p.verbosity.profilerEnabled() {
		return &Task{noop: true}
	}
	if p.verbosity.debugEnabled() {
		fmt.Fprintf(p.out, "Profiler task_name: %s\n", name)
	}

	p.mu.Lock()
	idx := p.nextIdx
	p.nextIdx++
	// Threading tasks record the current level but never increment it,
	// since concurrent siblings share one logical depth.
	level := p.currentLevel
	p.entries = append(p.entries, entry{
		idx:       idx,
		name:      name,
		startedAt: now(),
		level:     level,
		count:     1,
		threading: true,
	})
	p.mu.Unlock()

	return &Task{p: p, name: name, idx: idx, threading: true}
}

// End closes the task, recording its elapsed duration. Safe to call via
// defer on every exit path including error returns.
func (t *Task) End() {
	if t == nil || t.noop {
		return
	}
	p := t.p
	end := now()
	var elapsed time.Duration

	p.mu.Lock()
	for i := range p.entries {
		if p.entries[i].idx == t.idx {
			elapsed = end.Sub(p.entries[i].startedAt)
			p.entries[i].duration = elapsed
			break
		}
	}
	if !t.threading {
		p.currentLevel--
	}
	tracer := p.verbosity.tracerEnabled()
	debug := p.verbosity.debugEnabled()
	p.mu.Unlock()

	if t.threading {
		if debug {
			fmt.Fprintf(p.out, "%s %s\n", t.name, formatDuration(elapsed))
		}
	} else if tracer {
		fmt.Fprintf(p.out, "%s %s\n", t.name, formatDuration(elapsed))
	}
}

// now is a seam so tests can substitute a deterministic clock.
var now = time.Now

// forceDuration overwrites the task's recorded duration directly,
// bypassing the clock. Used by tests that need exact, reproducible
// durations for merge-rule assertions.
func (t *Task) forceDuration(d time.Duration) {
	p := t.p
	p.mu.Lock()
	for i := range p.entries {
		if p.entries[i].idx == t.idx {
			p.entries[i].duration = d
			break
		}
	}
	if !t.threading {
		p.currentLevel--
	}
	p.mu.Unlock()
}

// formatDuration renders a duration as seconds above 1s, milliseconds
// above 1ms, microseconds above 1us, and nanoseconds otherwise.
func formatDuration(d time.Duration) string {
	ns := float64(d.Nanoseconds())
	switch {
	case ns <= 0:
		return "0.00s"
	case ns > 1e9:
		return fmt.Sprintf("%.2fs", ns/1e9)
	case ns > 1e6:
		return fmt.Sprintf("%.2fms", ns/1e6)
	case ns > 1e3:
		return fmt.Sprintf("%.2fus", ns/1e3)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}

// mergeEntries collapses sibling tasks that share both level and name
// into a single row, preserving the first sibling's position in the
// tree. Threading-task siblings are merged by keeping the maximum
// duration observed (the longest-running concurrent repetition);
// non-threading siblings are merged by summing durations. Both kinds
// accumulate a repetition count.
func mergeEntries(entries []entry) []entry {
	type key struct {
		level int64
		name  string
	}
	merged := make([]entry, 0, len(entries))
	index := make(map[key]int)
	for _, e := range entries {
		k := key{e.level, e.name}
		if i, ok := index[k]; ok {
			if e.threading {
				if e.duration > merged[i].duration {
					merged[i].duration = e.duration
				}
			} else {
				merged[i].duration += e.duration
			}
			merged[i].count++
			continue
		}
		index[k] = len(merged)
		merged = append(merged, e)
	}
	return merged
}

// Reset clears all recorded tasks and resets level/index counters,
// without changing the configured verbosity. Intended for tests that
// need a clean tree between scenarios.
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = nil
	p.currentLevel = 0
	p.nextIdx = 0
}

// Shutdown emits the analyzer tree summary to the profiler's writer when
// verbosity is Analyzer/All/Debug. It does not reset the profiler's state.
func (p *Profiler) Shutdown() {
	p.mu.Lock()
	if !p.verbosity.analyzerEnabled() {
		p.mu.Unlock()
		return
	}
	merged := mergeEntries(p.entries)
	out := p.out
	p.mu.Unlock()

	var total time.Duration
	for _, e := range merged {
		if e.level == 0 {
			total += e.duration
		}
	}

	fmt.Fprintln(out, "Algorithm tree analyzer")
	for _, e := range merged {
		prefix := strings.Repeat("|   ", int(e.level)) + "|-- "
		pct := 0.0
		if total > 0 {
			pct = float64(e.duration) / float64(total) * 100
		}
		fmt.Fprintf(out, "%s%s time: %s %.2f%% %d times in a %v region\n",
			prefix, e.name, formatDuration(e.duration), pct, e.count, e.threading)
	}
	fmt.Fprintln(out, "|---(end)")
	fmt.Fprintf(out, "total time %s\n", formatDuration(total))
}

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

// Package env implements the process-wide execution environment
// singleton: detected ISA level, thread count, an optional pinning flag,
// and memory-limit hints.
package env

import (
	"os"
	"runtime"
	"strconv"
	"sync"

	"github.com/uxlfoundation/onedal-core/dal"
	"github.com/uxlfoundation/onedal-core/dal/cpu"
)

// MemKind identifies the category of memory a limit hint applies to.
type MemKind int

const (
	// MemTypeTLS is thread-local scratch allocated by the threader.
	MemTypeTLS MemKind = iota
	// MemTypeGlobal is process-wide scratch (conversion buffers, caches).
	MemTypeGlobal
)

// Environment is the process-wide execution context. Obtain the shared
// instance with Instance(); construction is lazy (topology is probed on
// first use), and every field may be mutated after construction.
type Environment struct {
	mu sync.Mutex

	topo *cpu.Topology

	numThreads    int
	pinningOn     bool
	memLimits     map[MemKind]uint64
	cpuidOverride *dal.ISALevel
}

var (
	instance     *Environment
	instanceOnce sync.Once
)

// Instance returns the process-wide Environment, constructing it lazily
// on first call.
func Instance() *Environment {
	instanceOnce.Do(func() {
		instance = newEnvironment()
	})
	return instance
}

func newEnvironment() *Environment {
	e := &Environment{
		memLimits: make(map[MemKind]uint64),
	}
	e.topo = cpu.Probe()
	e.numThreads = defaultThreadCount(e.topo)
	return e
}

// defaultThreadCount applies the rule: if SMT is detected, default
// thread count to the physical-core count; otherwise leave the
// scheduler default (GOMAXPROCS). An ONEDAL_NUM_THREADS override is
// consulted first.
func defaultThreadCount(topo *cpu.Topology) int {
	if v := os.Getenv("ONEDAL_NUM_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	if topo.SMT() > 1 && topo.PhysicalCoreCount() > 0 {
		return topo.PhysicalCoreCount()
	}
	return runtime.GOMAXPROCS(0)
}

// Topology returns the probed CPU topology descriptor.
func (e *Environment) Topology() *cpu.Topology {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.topo
}

// SetCPUID records an ISA level override that CPUID reports from then
// on, and returns the level in effect. Passing a level is only honored if
// no override has been set yet: it is a one-shot latch, not a mutable
// setting. The override is not seen by dal.DispatchTable.Select, which
// always selects against dal.CurrentLevel.
func (e *Environment) SetCPUID(level dal.ISALevel) dal.ISALevel {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cpuidOverride == nil {
		lvl := level
		e.cpuidOverride = &lvl
	}
	return *e.cpuidOverride
}

// CPUID returns the ISA level in effect: the override set via SetCPUID,
// or the process-detected level.
func (e *Environment) CPUID() dal.ISALevel {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cpuidOverride != nil {
		return *e.cpuidOverride
	}
	return dal.CurrentLevel()
}

// SetNumThreads sets the thread count subsequent parallel-for calls will
// use. Permitted at any time.
func (e *Environment) SetNumThreads(n int) {
	if n <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.numThreads = n
}

// NumThreads returns the thread count parallel_for should use.
func (e *Environment) NumThreads() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.numThreads
}

// EnableThreadPinning toggles whether the threader binds worker k to the
// k-th entry of the topology's pinning queue.
func (e *Environment) EnableThreadPinning(enable bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pinningOn = enable
}

// ThreadPinningEnabled reports whether pinning is currently enabled.
func (e *Environment) ThreadPinningEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pinningOn
}

// SetMemoryLimit records a memory-limit hint for the given kind. The
// limit is advisory: callers (e.g. the threader's scalable allocator)
// may consult it to bound scratch allocation, but nothing in this
// package enforces it directly.
func (e *Environment) SetMemoryLimit(kind MemKind, bytes uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.memLimits[kind] = bytes
}

// MemoryLimit returns the recorded limit for kind, or 0 if none was set.
func (e *Environment) MemoryLimit(kind MemKind) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.memLimits[kind]
}

// PinningQueue returns the logical-processor id worker k should bind to,
// or -1 if pinning is disabled or k is out of range.
func (e *Environment) PinningQueue(k int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.pinningOn {
		return -1
	}
	q := e.topo.PinningQueue()
	if k < 0 || k >= len(q) {
		return -1
	}
	return q[k]
}

// resetForTest tears down the singleton so tests can observe a fresh
// Environment. Not exported: production code never needs to re-init the
// process-wide environment mid-run.
func resetForTest() {
	instanceOnce = sync.Once{}
	instance = nil
}

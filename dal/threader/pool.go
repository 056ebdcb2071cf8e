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

// Package threader implements the bounded-parallel "parallel for" loop
// the rest of the module builds kernels on top of: a persistent worker
// pool reused across calls (so hot loops do not pay goroutine-spawn cost
// per invocation), a minimum-grain heuristic, and an optional
// pinned-thread variant that passes worker k the logical-processor id
// its pin function returns (for example an entry of a CPU topology's
// pinning queue); it sets no OS thread affinity itself.
package threader

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/uxlfoundation/onedal-core/dal/env"
)

// Pool is a persistent worker pool. Workers are spawned once at creation
// and reused across every subsequent ParallelFor call.
//
// The calling goroutine always participates as a worker for its own
// call: ParallelForRange pulls units of work directly in the caller
// alongside whatever helper goroutines it manages to enlist from the
// pool via a non-blocking handoff. This is what makes nested
// ParallelFor calls deadlock-free: a task running inside a pool worker
// that itself calls ParallelForRange on the same pool never blocks
// waiting for a pool slot. If every other worker is busy, the nested
// call simply runs on the calling goroutine alone, which is always
// correct and always makes progress.
type Pool struct {
	numWorkers int
	workC      chan func()
	closeOnce  sync.Once
	closed     atomic.Bool
}

// NewDefault creates a worker pool sized from the process-wide
// execution environment's thread count (env.Instance().NumThreads()),
// the portable stand-in for the original reading TBB's global thread
// control.
func NewDefault() *Pool {
	return New(env.Instance().NumThreads())
}

// New creates a worker pool with the given number of workers. If n <= 0,
// GOMAXPROCS is used.
func New(n int) *Pool {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		numWorkers: n,
		workC:      make(chan func(), n*4),
	}
	for range n {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for fn := range p.workC {
		fn()
	}
}

// NumWorkers returns the pool's worker count.
func (p *Pool) NumWorkers() int { return p.numWorkers }

// Close shuts the pool down. Safe to call multiple times. Pending work
// already handed to a worker completes; nothing new is accepted.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.workC)
	})
}

// ParallelFor runs body(i) for i in [0, n), with at least grain units of
// work handed to each worker before it checks back in, on up to
// pool.NumWorkers() goroutines, in no guaranteed order. If grain <= 0, a
// grain of 1 is used (no minimum-grain coalescing).
func ParallelFor(p *Pool, n, grain int, body func(i int)) {
	ParallelForRange(p, n, grain, func(start, end int) {
		for i := start; i < end; i++ {
			body(i)
		}
	})
}

// ParallelForRange is ParallelFor's range-batched form: body receives
// [start, end) directly instead of one index at a time, letting a
// kernel amortize per-call overhead (e.g. block-acquire a table view
// once per range instead of once per row).
func ParallelForRange(p *Pool, n, grain int, body func(start, end int)) {
	if n <= 0 {
		return
	}
	if grain <= 0 {
		grain = 1
	}
	if p == nil || p.closed.Load() {
		body(0, n)
		return
	}

	totalUnits := int64((n + grain - 1) / grain)
	if totalUnits <= 1 {
		body(0, n)
		return
	}

	workers := min(int64(p.numWorkers), totalUnits)
	if workers <= 1 {
		body(0, n)
		return
	}

	var nextUnit atomic.Int64
	claim := func() (int, int, bool) {
		unit := nextUnit.Add(1) - 1
		if unit >= totalUnits {
			return 0, 0, false
		}
		start := int(unit) * grain
		end := min(start+grain, n)
		return start, end, true
	}

	var wg sync.WaitGroup
	helpers := int(workers) - 1 // the caller itself is one worker
	for range helpers {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			for {
				start, end, ok := claim()
				if !ok {
					return
				}
				body(start, end)
			}
		}
		select {
		case p.workC <- task:
		default:
			// Pool saturated: the caller picks up this share too.
			wg.Done()
		}
	}

	// The calling goroutine always does its share directly, which is
	// what guarantees nested calls on a saturated pool still progress.
	for {
		start, end, ok := claim()
		if !ok {
			break
		}
		body(start, end)
	}
	wg.Wait()
}

// PinnedParallelFor behaves like ParallelFor, but body additionally
// receives the worker's logical-processor pinning id (as returned by
// pin(workerIndex)), or -1 if pinning is disabled. Go's goroutine
// scheduler gives no portable thread-affinity syscall in the standard
// library, so "pinning" here is advisory: it threads the intended
// logical-processor id through to body so a caller that does have an
// affinity mechanism (e.g. via a platform-specific syscall) can apply it
// per work item, without taking on a cgo dependency.
func PinnedParallelFor(p *Pool, n, grain int, pin func(workerIndex int) int, body func(i, pinnedCPU int)) {
	if n <= 0 {
		return
	}
	if pin == nil {
		ParallelFor(p, n, grain, func(i int) { body(i, -1) })
		return
	}
	if grain <= 0 {
		grain = 1
	}
	if p == nil || p.closed.Load() {
		cpuID := pin(0)
		for i := 0; i < n; i++ {
			body(i, cpuID)
		}
		return
	}

	totalUnits := int64((n + grain - 1) / grain)
	workers := min(int64(p.numWorkers), max(totalUnits, 1))
	if workers <= 1 {
		cpuID := pin(0)
		for i := 0; i < n; i++ {
			body(i, cpuID)
		}
		return
	}

	var nextUnit atomic.Int64
	claim := func() (int, int, bool) {
		unit := nextUnit.Add(1) - 1
		if unit >= totalUnits {
			return 0, 0, false
		}
		start := int(unit) * grain
		end := min(start+grain, n)
		return start, end, true
	}

	var wg sync.WaitGroup
	helpers := int(workers) - 1
	for w := 1; w <= helpers; w++ {
		workerIdx := w
		wg.Add(1)
		task := func() {
			defer wg.Done()
			cpuID := pin(workerIdx)
			for {
				start, end, ok := claim()
				if !ok {
					return
				}
				for i := start; i < end; i++ {
					body(i, cpuID)
				}
			}
		}
		select {
		case p.workC <- task:
		default:
			wg.Done()
		}
	}

	cpuID := pin(0)
	for {
		start, end, ok := claim()
		if !ok {
			break
		}
		for i := start; i < end; i++ {
			body(i, cpuID)
		}
	}
	wg.Wait()
}

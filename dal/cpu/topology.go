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

// Package cpu probes host CPU topology: logical processor count, physical
// core count, SMT factor, cache sizes, and a pinning queue mapping
// logical-thread index to logical processor id. A full topology walk
// needs a raw CPUID leaf-B enumeration under a scoped affinity bind,
// which has no portable equivalent without cgo; this probe approximates
// the same ordinal assignment from runtime.NumCPU and
// golang.org/x/sys/cpu's feature bits, falling back to documented
// defaults where a precise count is unavailable.
package cpu

import (
	"runtime"

	syscpu "golang.org/x/sys/cpu"
)

// Default cache sizes used when the host does not report them.
const (
	DefaultL1Bytes  = 32 * 1024
	DefaultL2Bytes  = 256 * 1024
	DefaultLLCBytes = 4 * 1024 * 1024
)

// CacheLevel identifies a cache level queried via Topology.CacheSize.
type CacheLevel int

const (
	L1 CacheLevel = iota
	L2
	LLC
)

// Topology is the descriptor produced by Probe: logical processor count,
// physical core count, SMT factor, cache sizes, and pinning queue.
type Topology struct {
	LogicalProcessors int
	PhysicalCores     int
	SMTFactor         int
	L1Bytes           int
	L2Bytes           int
	LLCBytes          int
	// Pinning holds, at index k, the logical-processor id worker k
	// should bind to for locality.
	Pinning []int

	// Unavailable is true when probing failed and every field above
	// holds the single-thread default instead of a measured value.
	Unavailable bool
}

// LogicalCPUCount returns the number of logical processors.
func (t *Topology) LogicalCPUCount() int { return t.LogicalProcessors }

// PhysicalCoreCount returns the number of physical cores.
func (t *Topology) PhysicalCoreCount() int { return t.PhysicalCores }

// SMT returns the ratio of logical processors to physical cores.
func (t *Topology) SMT() int { return t.SMTFactor }

// CacheSize returns the byte size of the given cache level.
func (t *Topology) CacheSize(level CacheLevel) int {
	switch level {
	case L1:
		return t.L1Bytes
	case L2:
		return t.L2Bytes
	case LLC:
		return t.LLCBytes
	default:
		return 0
	}
}

// PinningQueue returns the ordered logical-processor ids used to bind
// workers one-to-one with cores/threads.
func (t *Topology) PinningQueue() []int { return t.Pinning }

// Probe enumerates host CPU topology. It never panics: on any detection
// failure it returns a Topology with Unavailable set and every field at
// its single-thread default.
func Probe() *Topology {
	logical := runtime.NumCPU()
	if logical <= 0 {
		return unavailableTopology()
	}

	smt := smtFactor()
	if smt <= 0 {
		smt = 1
	}
	physical := logical / smt
	if physical <= 0 {
		physical = 1
	}

	pinning := make([]int, logical)
	for i := range pinning {
		pinning[i] = i
	}

	return &Topology{
		LogicalProcessors: logical,
		PhysicalCores:     physical,
		SMTFactor:         smt,
		// golang.org/x/sys/cpu exposes feature bits and cache-line
		// padding, not cache capacity, and a raw CPUID leaf-4 walk needs
		// cgo, so cache sizes use the documented defaults.
		L1Bytes:  DefaultL1Bytes,
		L2Bytes:  DefaultL2Bytes,
		LLCBytes: DefaultLLCBytes,
		Pinning:  pinning,
	}
}

// unavailableTopology is returned when probing cannot establish even the
// logical processor count; it degrades to the documented single-thread
// default.
func unavailableTopology() *Topology {
	return &Topology{
		LogicalProcessors: 1,
		PhysicalCores:     1,
		SMTFactor:         1,
		L1Bytes:           DefaultL1Bytes,
		L2Bytes:           DefaultL2Bytes,
		LLCBytes:          DefaultLLCBytes,
		Pinning:           []int{0},
		Unavailable:       true,
	}
}

// smtFactor estimates logical-processors-per-physical-core from the
// platform's reported SIMD/feature surface. Accurate SMT detection needs
// a CPUID leaf-B topology walk, which has no portable equivalent without
// cgo, so this falls back to a common-case assumption: hyperthreaded
// x86_64 hosts expose 2 logical processors per core, everything else is
// treated as 1:1.
func smtFactor() int {
	if runtime.GOARCH == "amd64" && syscpu.X86.HasAVX2 {
		if n := runtime.NumCPU(); n > 1 && n%2 == 0 {
			return 2
		}
	}
	return 1
}

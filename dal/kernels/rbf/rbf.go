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

// Package rbf implements the RBF kernel's post-GEMM fix-up: the
// elementwise transform and clamp applied to a block of dot products
// after the GEMM step, followed by a vectorized exp.
package rbf

import (
	"math"
	"sync"

	"github.com/uxlfoundation/onedal-core/dal"
)

// Float is the set of floating-point element types the kernel operates
// on. Integer types have no meaningful exp and are excluded.
type Float interface {
	~float32 | ~float64
}

// Workspace holds the scratch buffers one block computation reuses
// across calls: the dot-product buffer GEMM writes into (and
// PostGemmPart overwrites in place), and the per-row/per-column squared
// norms. When the kernel is computing a matrix against itself,
// sqrDataA2 aliases sqrDataA1 rather than duplicating the buffer.
type Workspace[T Float] struct {
	mklBuff   []T
	sqrDataA1 []T
	sqrDataA2 []T
}

// NewWorkspace allocates a workspace sized for a block of blockSize
// dot products. When equalMatrix is true (the kernel gram matrix of a
// single data set against itself), sqrDataA2 aliases sqrDataA1.
func NewWorkspace[T Float](blockSize int, equalMatrix bool) *Workspace[T] {
	w := &Workspace[T]{
		mklBuff:   make([]T, blockSize),
		sqrDataA1: make([]T, blockSize),
	}
	if equalMatrix {
		w.sqrDataA2 = w.sqrDataA1
	} else {
		w.sqrDataA2 = make([]T, blockSize)
	}
	return w
}

// MklBuff returns the dot-product scratch buffer GEMM writes into.
func (w *Workspace[T]) MklBuff() []T { return w.mklBuff }

// SqrDataA1 returns the per-row squared-norm scratch buffer.
func (w *Workspace[T]) SqrDataA1() []T { return w.sqrDataA1 }

// SqrDataA2 returns the per-column squared-norm scratch buffer. Aliases
// SqrDataA1 when the workspace was created with equalMatrix = true.
func (w *Workspace[T]) SqrDataA2() []T { return w.sqrDataA2 }

// PostGemmPart computes, for each i, rbf[i] = max(threshold, coeff *
// (sqrA1[i] + sqrA2i - 2*dotProducts[i])), overwrites dotProducts[i]
// with the clamped value, and writes exp(rbf[i]) into out[i]. sqrA2i is
// the scalar squared norm of the single column this call processes.
// Each output element depends only on its own index, so splitting n
// across parallel row blocks and running PostGemmPart on each block
// independently produces bitwise-identical results to running it once
// over the whole range.
func PostGemmPart[T Float](dotProducts, sqrA1 []T, sqrA2i, coeff, threshold T, out []T) {
	negTwo := T(-2)
	n := len(dotProducts)
	for i := 0; i < n; i++ {
		rbf := (dotProducts[i]*negTwo + sqrA2i + sqrA1[i]) * coeff
		if rbf <= threshold {
			rbf = threshold
		}
		dotProducts[i] = rbf
	}
	vExp(dotProducts, out)
}

// vExpTableF32/vExpTableF64 hold vExp's ISA-dispatched implementation
// per element type. Pure Go has no portable SIMD intrinsics without cgo
// or assembly, so every registered level falls back to the same scalar
// loop today; the table exists so a future assembly-backed build can
// register a faster entry at a specific ISALevel without touching
// PostGemmPart's call site.
var (
	vExpTableF32 dal.DispatchTable[func(in, out []float32)]
	vExpTableF64 dal.DispatchTable[func(in, out []float64)]
	vExpInitOnce sync.Once
)

func initVExpDispatch() {
	vExpTableF32.Set(dal.ISAScalar, vExpScalar[float32])
	vExpTableF64.Set(dal.ISAScalar, vExpScalar[float64])
}

func vExpScalar[T Float](in, out []T) {
	for i, v := range in {
		out[i] = T(math.Exp(float64(v)))
	}
}

func vExp[T Float](in, out []T) {
	vExpInitOnce.Do(initVExpDispatch)
	switch in := any(in).(type) {
	case []float32:
		vExpTableF32.Select()(in, any(out).([]float32))
	case []float64:
		vExpTableF64.Select()(in, any(out).([]float64))
	}
}

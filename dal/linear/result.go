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

// Package linear implements the normal-equations linear-model training
// core: a row-blocked, thread-parallel update of the X'^T*X' / X'^T*Y
// accumulators, elementwise merge of partial accumulators, and a ridge
// Cholesky solve at finalize.
package linear

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"

	"github.com/uxlfoundation/onedal-core/dal"
	"github.com/uxlfoundation/onedal-core/dal/profiler"
	"github.com/uxlfoundation/onedal-core/dal/threader"
)

// State is a PartialResult's position in its update/finalize lifecycle.
type State int

const (
	StateEmpty State = iota
	StateAccumulating
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateAccumulating:
		return "accumulating"
	case StateFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// PartialResult accumulates the normal-equations sufficient statistics
// (xtx, xty) across one or more calls to Update, optionally combined
// with other partial results via Merge, until Finalize solves for the
// trained coefficients. States move empty -> accumulating -> finalized
// and never backward; Update and Merge are only legal in accumulating
// (the first Update call performs the empty -> accumulating move).
type PartialResult struct {
	mu sync.Mutex

	state State

	pPrime        int // P' = P+1 if intercept, else P; the augmented feature count
	nFeatures     int // P, the caller-visible (unaugmented) feature count
	nResponses    int // R
	intercept     bool
	nObservations int64

	xtx *mat.SymDense // P' x P', upper-stored
	xty *mat.Dense    // P' x R

	ytyDiag []float64 // R, sum of y_j^2 across all observed rows; feeds residual-sum-of-squares diagnostics
}

// NewPartialResult returns an empty accumulator.
func NewPartialResult() *PartialResult {
	return &PartialResult{state: StateEmpty}
}

const defaultUpdateGrain = 4096

// augmentRowTable holds Update's per-row augmentation step (copy a
// feature row, append the intercept's trailing one) keyed by ISA level.
// As with dal/kernels/rbf's vExp, pure Go has no portable SIMD
// intrinsics, so only the Scalar entry is populated today; the table
// gives a future assembly-backed build a place to register a faster
// entry without changing Update's call site.
var augmentRowTable dal.DispatchTable[func(dst, src []float64, intercept bool)]

func init() {
	augmentRowTable.Set(dal.ISAScalar, augmentRowScalar)
}

func augmentRowScalar(dst, src []float64, intercept bool) {
	nFeatures := len(src)
	copy(dst[:nFeatures], src)
	if intercept {
		dst[nFeatures] = 1.0
	}
}

// Update blocks rows [0, n) of X (n x nFeatures, row-major) and Y (n x
// nResponses, row-major) across pool's workers. Each block forms its own
// thread-local X'^T*X' (via SYRK) and X'^T*Y (via GEMM) from a
// scalable-allocated augmented copy of the block (with a trailing column
// of ones when intercept is requested), then the block contributions are
// reduced into the accumulator's running xtx/xty. pool may be nil to run
// serially.
func (p *PartialResult) Update(pool *threader.Pool, x, y []float64, n, nFeatures, nResponses int, intercept bool) error {
	return p.UpdateWithDescriptor(pool, x, y, n, nFeatures, nResponses, Descriptor{ComputeIntercept: intercept, CPUGrainSize: defaultUpdateGrain, CPUSmallRowsThreshold: 0})
}

// UpdateWithDescriptor is Update parameterized by a Descriptor: desc.ComputeIntercept
// replaces the bare intercept flag, desc.grainSize() replaces the fixed
// blocking grain, and rows below desc.CPUSmallRowsThreshold bypass pool
// dispatch entirely (the per-block thread-local accumulate/reduce pays
// for itself only once blockRows amortizes its setup cost).
func (p *PartialResult) UpdateWithDescriptor(pool *threader.Pool, x, y []float64, n, nFeatures, nResponses int, desc Descriptor) error {
	intercept := desc.ComputeIntercept
	if nFeatures <= 0 || nResponses <= 0 {
		return fmt.Errorf("%w: nFeatures and nResponses must be positive", dal.ErrInvalidArgument)
	}
	pPrime := nFeatures
	if intercept {
		pPrime++
	}

	p.mu.Lock()
	switch p.state {
	case StateFinalized:
		p.mu.Unlock()
		return fmt.Errorf("%w: update called on a finalized accumulator", dal.ErrInvalidArgument)
	case StateEmpty:
		p.pPrime = pPrime
		p.nFeatures = nFeatures
		p.nResponses = nResponses
		p.intercept = intercept
		p.xtx = mat.NewSymDense(pPrime, nil)
		p.xty = mat.NewDense(pPrime, nResponses, nil)
		p.ytyDiag = make([]float64, nResponses)
		p.state = StateAccumulating
	case StateAccumulating:
		if p.pPrime != pPrime || p.nResponses != nResponses || p.intercept != intercept {
			p.mu.Unlock()
			return fmt.Errorf("%w: update shape does not match accumulator", dal.ErrInvalidArgument)
		}
	}
	p.mu.Unlock()

	if n == 0 {
		return nil
	}
	if len(x) != n*nFeatures {
		return fmt.Errorf("%w: x has %d elements, want %d", dal.ErrInvalidArgument, len(x), n*nFeatures)
	}
	if len(y) != n*nResponses {
		return fmt.Errorf("%w: y has %d elements, want %d", dal.ErrInvalidArgument, len(y), n*nResponses)
	}

	task := profiler.Instance().Start("linear.Update")
	defer task.End()

	dispatchPool := pool
	if desc.CPUSmallRowsThreshold > 0 && n < desc.CPUSmallRowsThreshold {
		// Too few rows to amortize a block-parallel dispatch: run the
		// single block directly on the caller's goroutine, same as
		// passing a nil pool.
		dispatchPool = nil
	}

	augPool := threader.NewScalablePool[float64]()
	xtxPool := threader.NewScalablePool[float64]()
	xtyPool := threader.NewScalablePool[float64]()

	augmentRow := augmentRowTable.Select()

	var reduceMu sync.Mutex
	totalXtx := make([]float64, pPrime*pPrime)
	totalXty := make([]float64, pPrime*nResponses)
	totalYty2 := make([]float64, nResponses)

	threader.ParallelForRange(dispatchPool, n, desc.grainSize(), func(start, end int) {
		blockRows := end - start

		aug := augPool.Get(blockRows * pPrime)
		defer augPool.Put(aug)
		for r := 0; r < blockRows; r++ {
			srcOff := (start + r) * nFeatures
			dstOff := r * pPrime
			augmentRow(aug[dstOff:dstOff+pPrime], x[srcOff:srcOff+nFeatures], intercept)
		}

		localXtx := xtxPool.Get(pPrime * pPrime)
		defer xtxPool.Put(localXtx)
		localXty := xtyPool.Get(pPrime * nResponses)
		defer xtyPool.Put(localXty)

		aGeneral := blas64.General{Rows: blockRows, Cols: pPrime, Stride: pPrime, Data: aug}
		cSym := blas64.Symmetric{Uplo: blas.Upper, N: pPrime, Stride: pPrime, Data: localXtx}
		blas64.Syrk(blas.Trans, 1.0, aGeneral, 0.0, cSym)

		yGeneral := blas64.General{Rows: blockRows, Cols: nResponses, Stride: nResponses, Data: y[start*nResponses : end*nResponses]}
		xtyGeneral := blas64.General{Rows: pPrime, Cols: nResponses, Stride: nResponses, Data: localXty}
		blas64.Gemm(blas.Trans, blas.NoTrans, 1.0, aGeneral, yGeneral, 0.0, xtyGeneral)

		localYty2 := make([]float64, nResponses)
		for row := start; row < end; row++ {
			for j := 0; j < nResponses; j++ {
				v := y[row*nResponses+j]
				localYty2[j] += v * v
			}
		}

		reduceMu.Lock()
		for i := range totalXtx {
			totalXtx[i] += localXtx[i]
		}
		for i := range totalXty {
			totalXty[i] += localXty[i]
		}
		for j := range totalYty2 {
			totalYty2[j] += localYty2[j]
		}
		reduceMu.Unlock()
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	for i := 0; i < pPrime; i++ {
		for j := i; j < pPrime; j++ {
			p.xtx.SetSym(i, j, p.xtx.At(i, j)+totalXtx[i*pPrime+j])
		}
	}
	for i := 0; i < pPrime; i++ {
		for j := 0; j < nResponses; j++ {
			p.xty.Set(i, j, p.xty.At(i, j)+totalXty[i*nResponses+j])
		}
	}
	for j := 0; j < nResponses; j++ {
		p.ytyDiag[j] += totalYty2[j]
	}
	p.nObservations += int64(n)
	return nil
}

// Merge adds other's accumulator into p elementwise and sums observation
// counts. Both sides must already be accumulating with matching (P', R).
func (p *PartialResult) Merge(other *PartialResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	other.mu.Lock()
	defer other.mu.Unlock()

	if p.state != StateAccumulating || other.state != StateAccumulating {
		return fmt.Errorf("%w: merge requires both accumulators to be accumulating", dal.ErrInvalidArgument)
	}
	if p.pPrime != other.pPrime || p.nResponses != other.nResponses {
		return fmt.Errorf("%w: merge requires matching (P', R)", dal.ErrInvalidArgument)
	}

	for i := 0; i < p.pPrime; i++ {
		for j := i; j < p.pPrime; j++ {
			p.xtx.SetSym(i, j, p.xtx.At(i, j)+other.xtx.At(i, j))
		}
	}
	p.xty.Add(p.xty, other.xty)
	for j := range p.ytyDiag {
		p.ytyDiag[j] += other.ytyDiag[j]
	}
	p.nObservations += other.nObservations
	return nil
}

// Finalize solves the normal equations, adding a ridge term alpha*I to
// the diagonal first (skipping the intercept row/column when intercept
// is enabled), and moves the accumulator to the finalized state. The
// original xtx/xty are left untouched; the solve runs against a working
// copy. A non-positive-definite factorization surfaces ErrInternal.
func (p *PartialResult) Finalize(alpha float64) (*TrainedModel, error) {
	return p.FinalizeWithDescriptor(Descriptor{Alpha: alpha, ResultOptions: ResultCoefficients | ResultIntercept})
}

// FinalizeWithDescriptor is Finalize parameterized by a Descriptor:
// desc.Alpha replaces the bare alpha argument, and when
// desc.ResultOptions requests ResultDiagnostics the returned model's
// Diagnostics are populated with the residual sum of squares. Since the
// solved coefficients satisfy the normal equations exactly
// (X'X*beta = X'Y), RSS reduces to Y'Y - beta'X'Y without needing the
// raw rows back: Y'Y's diagonal is the ytyDiag accumulated alongside
// xtx/xty in Update.
func (p *PartialResult) FinalizeWithDescriptor(desc Descriptor) (*TrainedModel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateAccumulating {
		return nil, fmt.Errorf("%w: finalize called on a %s accumulator", dal.ErrInvalidArgument, p.state)
	}

	pPrime := p.pPrime
	r := p.nResponses

	working := mat.NewSymDense(pPrime, nil)
	working.CopySym(p.xtx)

	if desc.Alpha != 0 {
		limit := pPrime
		if p.intercept {
			limit = pPrime - 1 // the trailing ones-column stays unregularized
		}
		for i := 0; i < limit; i++ {
			working.SetSym(i, i, working.At(i, i)+desc.Alpha)
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(working); !ok {
		return nil, fmt.Errorf("%w: xtx is not positive-definite", dal.ErrInternal)
	}

	var solved mat.Dense // P' x R
	if err := chol.SolveTo(&solved, p.xty); err != nil {
		return nil, fmt.Errorf("%w: %v", dal.ErrInternal, err)
	}

	// Our augmented design places the intercept's ones column last
	// (index pPrime-1). Re-lay the solved coefficients into the
	// intercept-first (column 0) convention used by TrainedModel and
	// Predict, so callers never need to know the internal augmentation
	// order. When intercept is disabled, column 0 is a leading zero so
	// downstream code may always assume this layout.
	betas := mat.NewDense(r, p.nFeatures+1, nil)
	for i := 0; i < r; i++ {
		if p.intercept {
			betas.Set(i, 0, solved.At(pPrime-1, i))
		}
		for j := 0; j < p.nFeatures; j++ {
			betas.Set(i, j+1, solved.At(j, i))
		}
	}

	model := &TrainedModel{
		nFeatures:     p.nFeatures,
		nResponses:    r,
		intercept:     p.intercept,
		nObservations: p.nObservations,
		betas:         betas,
	}

	if desc.ResultOptions.Has(ResultDiagnostics) {
		rss := make([]float64, r)
		for j := 0; j < r; j++ {
			sum := p.ytyDiag[j]
			for i := 0; i < pPrime; i++ {
				sum -= solved.At(i, j) * p.xty.At(i, j)
			}
			rss[j] = sum
		}
		model.diagnostics = &Diagnostics{ResidualSumOfSquares: rss}
	}

	p.state = StateFinalized
	return model, nil
}

// State returns the accumulator's current lifecycle state.
func (p *PartialResult) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// NumObservations returns the total row count accumulated so far.
func (p *PartialResult) NumObservations() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nObservations
}

// flattenSize returns the element count flattenInto writes for a P'/R
// shape: pPrime*pPrime for xtx, pPrime*r for xty, and r for ytyDiag.
func flattenSize(pPrime, r int) int {
	return pPrime*pPrime + pPrime*r + r
}

func (p *PartialResult) flattenInto(dst []float64) {
	pPrime := p.pPrime
	r := p.nResponses
	for i := 0; i < pPrime; i++ {
		for j := 0; j < pPrime; j++ {
			dst[i*pPrime+j] += p.xtx.At(i, j)
		}
	}
	base := pPrime * pPrime
	for i := 0; i < pPrime; i++ {
		for j := 0; j < r; j++ {
			dst[base+i*r+j] += p.xty.At(i, j)
		}
	}
	base2 := base + pPrime*r
	for j := 0; j < r; j++ {
		dst[base2+j] += p.ytyDiag[j]
	}
}

func (p *PartialResult) unflattenFrom(src []float64) {
	pPrime := p.pPrime
	r := p.nResponses
	for i := 0; i < pPrime; i++ {
		for j := i; j < pPrime; j++ {
			p.xtx.SetSym(i, j, src[i*pPrime+j])
		}
	}
	base := pPrime * pPrime
	for i := 0; i < pPrime; i++ {
		for j := 0; j < r; j++ {
			p.xty.Set(i, j, src[base+i*r+j])
		}
	}
	base2 := base + pPrime*r
	if p.ytyDiag == nil {
		p.ytyDiag = make([]float64, r)
	}
	for j := 0; j < r; j++ {
		p.ytyDiag[j] = src[base2+j]
	}
}

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

package linear

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"

	"github.com/uxlfoundation/onedal-core/dal"
	"github.com/uxlfoundation/onedal-core/dal/profiler"
	"github.com/uxlfoundation/onedal-core/dal/threader"
)

// predictRowBlock is the reference row-block size for the outer
// parallel dimension of Predict.
const predictRowBlock = 1024

// Predict computes Y := X * betas[:, 1:]^T, broadcasting the intercept
// column across every row when the model was trained with one. X is n x
// model.NumFeatures() row-major; the result is n x model.NumResponses()
// row-major. Rows are blocked at predictRowBlock and parallelized across
// pool's workers; pool may be nil to run serially.
func Predict(pool *threader.Pool, model *TrainedModel, x []float64, n int) ([]float64, error) {
	return PredictWithDescriptor(pool, model, x, n, Descriptor{CPUMacroBlock: predictRowBlock})
}

// PredictWithDescriptor is Predict parameterized by a Descriptor:
// desc.CPUMacroBlock replaces the fixed predictRowBlock blocking size.
func PredictWithDescriptor(pool *threader.Pool, model *TrainedModel, x []float64, n int, desc Descriptor) ([]float64, error) {
	task := profiler.Instance().Start("linear.Predict")
	defer task.End()

	blockSize := desc.CPUMacroBlock
	if blockSize <= 0 {
		blockSize = predictRowBlock
	}

	p := model.nFeatures
	r := model.nResponses
	if len(x) != n*p {
		return nil, fmt.Errorf("%w: x has %d elements, want %d", dal.ErrInvalidArgument, len(x), n*p)
	}

	coef := make([]float64, p*r)
	for i := 0; i < p; i++ {
		for j := 0; j < r; j++ {
			coef[i*r+j] = model.Coefficient(j, i)
		}
	}
	coefGeneral := blas64.General{Rows: p, Cols: r, Stride: r, Data: coef}

	y := make([]float64, n*r)

	dispatchPool := pool
	if desc.CPUSmallRowsThreshold > 0 && n < desc.CPUSmallRowsThreshold {
		// Too few rows to amortize block-parallel dispatch: run the
		// single block directly on the caller's goroutine, same as
		// passing a nil pool.
		dispatchPool = nil
	}

	threader.ParallelForRange(dispatchPool, n, blockSize, func(start, end int) {
		blockRows := end - start
		xGeneral := blas64.General{Rows: blockRows, Cols: p, Stride: p, Data: x[start*p : end*p]}
		yGeneral := blas64.General{Rows: blockRows, Cols: r, Stride: r, Data: y[start*r : end*r]}
		blas64.Gemm(blas.NoTrans, blas.NoTrans, 1.0, xGeneral, coefGeneral, 0.0, yGeneral)

		if model.intercept {
			for row := 0; row < blockRows; row++ {
				for j := 0; j < r; j++ {
					yGeneral.Data[row*r+j] += model.InterceptValue(j)
				}
			}
		}
	})

	return y, nil
}

// PredictColumnMajor computes the same result as Predict, but accepts
// X stored column-major (column c occupies x[c*n : c*n+n]) instead of
// row-major. Each row block is gathered into a small row-major scratch
// buffer by iterating columns before handing the block to the same
// blocked GEMM path Predict uses; the scratch is reused across blocks
// so its size stays bounded by predictRowBlock regardless of n.
func PredictColumnMajor(pool *threader.Pool, model *TrainedModel, x []float64, n int) ([]float64, error) {
	p := model.nFeatures
	if len(x) != n*p {
		return nil, fmt.Errorf("%w: x has %d elements, want %d", dal.ErrInvalidArgument, len(x), n*p)
	}

	scratch := make([]float64, min(n, predictRowBlock)*p)
	y := make([]float64, 0, n*model.nResponses)
	for start := 0; start < n; start += predictRowBlock {
		end := min(start+predictRowBlock, n)
		blockRows := end - start
		block := scratch[:blockRows*p]
		for c := 0; c < p; c++ {
			col := x[c*n+start : c*n+end]
			for r, v := range col {
				block[r*p+c] = v
			}
		}
		blockY, err := Predict(pool, model, block, blockRows)
		if err != nil {
			return nil, err
		}
		y = append(y, blockY...)
	}
	return y, nil
}

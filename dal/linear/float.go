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

import "github.com/uxlfoundation/onedal-core/dal/threader"

// Float is the set of floating-point element types a caller may hand
// UpdateSlice/PredictSlice, matching dal/kernels/rbf's Float constraint.
type Float interface {
	~float32 | ~float64
}

// UpdateSlice is UpdateWithDescriptor genericized over element type T.
// The normal-equations accumulator itself stays float64-internal: gonum's
// mat.Cholesky (the library Finalize's solve is built on) has no
// float32 equivalent, so x and y are widened to float64 at the
// boundary rather than threading T through SymDense/Dense/Cholesky.
func UpdateSlice[T Float](p *PartialResult, pool *threader.Pool, x, y []T, n, nFeatures, nResponses int, desc Descriptor) error {
	return p.UpdateWithDescriptor(pool, widenToFloat64(x), widenToFloat64(y), n, nFeatures, nResponses, desc)
}

// PredictSlice is PredictWithDescriptor genericized over element type T:
// x is widened to float64 for the GEMM core, and the result is narrowed
// back to T before returning.
func PredictSlice[T Float](pool *threader.Pool, model *TrainedModel, x []T, n int, desc Descriptor) ([]T, error) {
	y, err := PredictWithDescriptor(pool, model, widenToFloat64(x), n, desc)
	if err != nil {
		return nil, err
	}
	return narrowFromFloat64[T](y), nil
}

func widenToFloat64[T Float](s []T) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = float64(v)
	}
	return out
}

func narrowFromFloat64[T Float](s []float64) []T {
	out := make([]T, len(s))
	for i, v := range s {
		out[i] = T(v)
	}
	return out
}

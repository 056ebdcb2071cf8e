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

import "gonum.org/v1/gonum/mat"

// TrainedModel is the output of Finalize: a coefficient matrix of shape
// (nResponses, nFeatures+1), column 0 holding the intercept term (a
// leading zero column when the model was trained without an intercept).
type TrainedModel struct {
	nFeatures     int
	nResponses    int
	intercept     bool
	nObservations int64
	betas         *mat.Dense
	diagnostics   *Diagnostics
}

// NumFeatures returns P, the number of input features the model expects.
func (m *TrainedModel) NumFeatures() int { return m.nFeatures }

// NumResponses returns R, the number of target columns the model predicts.
func (m *TrainedModel) NumResponses() int { return m.nResponses }

// Intercept reports whether the model was trained with an intercept term.
func (m *TrainedModel) Intercept() bool { return m.intercept }

// NumObservations returns the total row count the model was trained on.
func (m *TrainedModel) NumObservations() int64 { return m.nObservations }

// Coefficient returns beta[response][feature], excluding the intercept.
func (m *TrainedModel) Coefficient(response, feature int) float64 {
	return m.betas.At(response, feature+1)
}

// InterceptValue returns the intercept term for the given response, or 0
// if the model was trained without one.
func (m *TrainedModel) InterceptValue(response int) float64 {
	return m.betas.At(response, 0)
}

// Diagnostics returns the model's training diagnostics, or nil if they
// were not requested via Descriptor.ResultOptions at Finalize time.
func (m *TrainedModel) Diagnostics() *Diagnostics { return m.diagnostics }

// Betas returns the full coefficient matrix flattened row-major, shape
// (nResponses, nFeatures+1) with column 0 holding the intercept.
func (m *TrainedModel) Betas() []float64 {
	r, c := m.betas.Dims()
	out := make([]float64, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out[i*c+j] = m.betas.At(i, j)
		}
	}
	return out
}

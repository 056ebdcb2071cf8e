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

// Package testfixture holds small, hand-checkable data sets shared
// across this module's test files, so each package's tests build on the
// same known-good numbers instead of hand-duplicating them.
package testfixture

// KnownLinearDataset returns an 8-row, 2-feature, single-response data
// set generated exactly from y = b + w[0]*x1 + w[1]*x2 with no noise: a
// well-conditioned, non-collinear fixture that lets a test assert exact
// recovery of w and b (up to solver precision) rather than just
// checking residuals are small.
func KnownLinearDataset() (x, y []float64, n int, w [2]float64, b float64) {
	x = []float64{
		1, 2,
		3, 1,
		5, 4,
		2, 6,
		4, 3,
		6, 5,
		1, 5,
		3, 3,
	}
	w = [2]float64{2, -1}
	b = 3
	n = 8
	y = make([]float64, n)
	for i := 0; i < n; i++ {
		x1, x2 := x[i*2], x[i*2+1]
		y[i] = b + w[0]*x1 + w[1]*x2
	}
	return x, y, n, w, b
}

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
	"math"
	"testing"

	"github.com/uxlfoundation/onedal-core/dal/table"
)

func TestUpdateIntoTableMatchesUpdateOnSlices(t *testing.T) {
	x, y, n, w, b := knownLinearDataset()

	xTable := table.WrapDense[float64](n, 2, append([]float64(nil), x...))
	yTable := table.WrapDense[float64](n, 1, append([]float64(nil), y...))

	pr := NewPartialResult()
	if err := UpdateIntoTable(pr, nil, xTable, yTable, Descriptor{ComputeIntercept: true}); err != nil {
		t.Fatal(err)
	}
	model, err := pr.Finalize(0)
	if err != nil {
		t.Fatal(err)
	}

	const tol = 1e-6
	if math.Abs(model.InterceptValue(0)-b) > tol {
		t.Errorf("intercept = %v, want %v", model.InterceptValue(0), b)
	}
	for feature := 0; feature < 2; feature++ {
		if math.Abs(model.Coefficient(0, feature)-w[feature]) > tol {
			t.Errorf("coefficient %d = %v, want %v", feature, model.Coefficient(0, feature), w[feature])
		}
	}
}

func TestPredictTableMatchesPredictOnSlices(t *testing.T) {
	x, y, n, _, _ := knownLinearDataset()

	pr := NewPartialResult()
	if err := pr.Update(nil, x, y, n, 2, 1, true); err != nil {
		t.Fatal(err)
	}
	model, err := pr.Finalize(0)
	if err != nil {
		t.Fatal(err)
	}

	sliceY, err := Predict(nil, model, x, n)
	if err != nil {
		t.Fatal(err)
	}

	xTable := table.WrapDense[float64](n, 2, append([]float64(nil), x...))
	tableY, err := PredictTable(nil, model, xTable, Descriptor{})
	if err != nil {
		t.Fatal(err)
	}

	for i := range sliceY {
		if math.Abs(tableY[i]-sliceY[i]) > 1e-9 {
			t.Errorf("PredictTable[%d] = %v, want %v", i, tableY[i], sliceY[i])
		}
	}
}

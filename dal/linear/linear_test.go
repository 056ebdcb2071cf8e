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
	"errors"
	"math"
	"testing"

	"github.com/uxlfoundation/onedal-core/dal"
	"github.com/uxlfoundation/onedal-core/internal/testfixture"
)

func TestUpdateEmptyToAccumulatingTransition(t *testing.T) {
	pr := NewPartialResult()
	if pr.State() != StateEmpty {
		t.Fatalf("new accumulator state = %v, want empty", pr.State())
	}
	x := []float64{1, 2, 3, 4}
	y := []float64{1, 2}
	if err := pr.Update(nil, x, y, 2, 2, 1, false); err != nil {
		t.Fatal(err)
	}
	if pr.State() != StateAccumulating {
		t.Fatalf("state after update = %v, want accumulating", pr.State())
	}
	if pr.NumObservations() != 2 {
		t.Fatalf("NumObservations() = %d, want 2", pr.NumObservations())
	}
}

func TestUpdateAfterFinalizeErrors(t *testing.T) {
	pr := NewPartialResult()
	x := []float64{1, 2, 3, 4}
	y := []float64{1, 2}
	if err := pr.Update(nil, x, y, 2, 2, 1, false); err != nil {
		t.Fatal(err)
	}
	if _, err := pr.Finalize(1.0); err != nil {
		t.Fatal(err)
	}
	if err := pr.Update(nil, x, y, 2, 2, 1, false); !errors.Is(err, dal.ErrInvalidArgument) {
		t.Fatalf("Update after Finalize: got %v, want ErrInvalidArgument", err)
	}
}

func TestMergeRequiresAccumulatingState(t *testing.T) {
	empty := NewPartialResult()
	accumulating := NewPartialResult()
	if err := accumulating.Update(nil, []float64{1, 2}, []float64{1}, 1, 2, 1, false); err != nil {
		t.Fatal(err)
	}
	if err := accumulating.Merge(empty); !errors.Is(err, dal.ErrInvalidArgument) {
		t.Fatalf("Merge with empty accumulator: got %v, want ErrInvalidArgument", err)
	}
}

func TestMergeDimensionMismatchErrors(t *testing.T) {
	a := NewPartialResult()
	b := NewPartialResult()
	if err := a.Update(nil, []float64{1, 2}, []float64{1}, 1, 2, 1, false); err != nil {
		t.Fatal(err)
	}
	if err := b.Update(nil, []float64{1, 2, 3}, []float64{1}, 1, 3, 1, false); err != nil {
		t.Fatal(err)
	}
	if err := a.Merge(b); !errors.Is(err, dal.ErrInvalidArgument) {
		t.Fatalf("Merge with mismatched P': got %v, want ErrInvalidArgument", err)
	}
}

// The literal scenario-S1 matrix X = [[1,2],[3,4],[5,6],[7,8]] has x2 =
// x1 + 1 on every row: once augmented with an intercept column of ones,
// the three columns are linearly dependent and X'^T*X' is singular.
// Finalize must report this rather than silently returning a solution.
func TestFinalizeSingularSystemSurfacesInternalError(t *testing.T) {
	pr := NewPartialResult()
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	y := []float64{3, 7, 11, 15}
	if err := pr.Update(nil, x, y, 4, 2, 1, true); err != nil {
		t.Fatal(err)
	}
	if _, err := pr.Finalize(0); !errors.Is(err, dal.ErrInternal) {
		t.Fatalf("Finalize on singular xtx: got %v, want ErrInternal", err)
	}
}

// Scenario S2: same X, Y, intercept = false, alpha = 1e6. Expected
// coefficient magnitudes < 1e-3 (the ridge term swamps the signal).
func TestRidgeShrinkageMatchesScenarioS2(t *testing.T) {
	pr := NewPartialResult()
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	y := []float64{3, 7, 11, 15}
	if err := pr.Update(nil, x, y, 4, 2, 1, false); err != nil {
		t.Fatal(err)
	}
	model, err := pr.Finalize(1e6)
	if err != nil {
		t.Fatal(err)
	}
	for feature := 0; feature < 2; feature++ {
		if math.Abs(model.Coefficient(0, feature)) >= 1e-3 {
			t.Errorf("coefficient %d = %v, want magnitude < 1e-3", feature, model.Coefficient(0, feature))
		}
	}
}

// Scenario S2 with intercept enabled: the ridge term must still swamp
// the feature coefficients while leaving the intercept free to fit the
// data's mean, since the augmented design's trailing column (index
// pPrime-1) holds the intercept and stays unregularized.
func TestRidgeShrinkageWithInterceptLeavesInterceptUnregularized(t *testing.T) {
	pr := NewPartialResult()
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	y := []float64{3, 7, 11, 15}
	if err := pr.Update(nil, x, y, 4, 2, 1, true); err != nil {
		t.Fatal(err)
	}
	model, err := pr.Finalize(1e6)
	if err != nil {
		t.Fatal(err)
	}
	for feature := 0; feature < 2; feature++ {
		if math.Abs(model.Coefficient(0, feature)) >= 1e-3 {
			t.Errorf("coefficient %d = %v, want magnitude < 1e-3", feature, model.Coefficient(0, feature))
		}
	}
	// The mean of y is 9; a heavily shrunk feature-coefficient model
	// should still fit close to that through the unregularized
	// intercept, not collapse toward 0.
	if math.Abs(model.InterceptValue(0)-9) >= 1e-2 {
		t.Errorf("intercept = %v, want close to y's mean 9 (unregularized)", model.InterceptValue(0))
	}
}

// knownLinearDataset is an 8-row, non-collinear data set generated from
// a known W=[2,-1], b=3 with no noise, so the noiseless fit has an exact
// closed-form answer; used by the merge-equivalence, distributed-
// equivalence, and predict-recovery tests. Defined in internal/
// testfixture so other packages' tests share the same numbers.
func knownLinearDataset() (x, y []float64, n int, w [2]float64, b float64) {
	return testfixture.KnownLinearDataset()
}

// Testable property 3: splitting the input by rows into two partitions,
// updating each independently, merging, and finalizing must match the
// single-shot result.
func TestIncrementalEquivalenceMergeMatchesSingleShot(t *testing.T) {
	x, y, n, _, _ := knownLinearDataset()

	singleShot := NewPartialResult()
	if err := singleShot.Update(nil, x, y, n, 2, 1, true); err != nil {
		t.Fatal(err)
	}
	singleModel, err := singleShot.Finalize(0)
	if err != nil {
		t.Fatal(err)
	}

	half := n / 2
	first := NewPartialResult()
	if err := first.Update(nil, x[:half*2], y[:half], half, 2, 1, true); err != nil {
		t.Fatal(err)
	}
	second := NewPartialResult()
	if err := second.Update(nil, x[half*2:], y[half:], n-half, 2, 1, true); err != nil {
		t.Fatal(err)
	}
	if err := first.Merge(second); err != nil {
		t.Fatal(err)
	}
	mergedModel, err := first.Finalize(0)
	if err != nil {
		t.Fatal(err)
	}

	const tol = 1e-9
	if math.Abs(singleModel.InterceptValue(0)-mergedModel.InterceptValue(0)) > tol {
		t.Errorf("intercept: single=%v merged=%v", singleModel.InterceptValue(0), mergedModel.InterceptValue(0))
	}
	for feature := 0; feature < 2; feature++ {
		d := math.Abs(singleModel.Coefficient(0, feature) - mergedModel.Coefficient(0, feature))
		if d > tol {
			t.Errorf("coefficient %d: single=%v merged=%v", feature, singleModel.Coefficient(0, feature), mergedModel.Coefficient(0, feature))
		}
	}
}

// Testable property 4: running the same training across K simulated
// ranks through an in-process allreduce must match the single-shot
// result. The data set is integer-valued so float64 sums are exact
// regardless of partitioning or reduction order, making the comparison
// legitimately bit-identical rather than only tolerance-close.
func TestDistributedTrainingMatchesSingleShot(t *testing.T) {
	x, y, n, _, _ := knownLinearDataset()

	singleShot := NewPartialResult()
	if err := singleShot.Update(nil, x, y, n, 2, 1, true); err != nil {
		t.Fatal(err)
	}
	singleModel, err := singleShot.Finalize(0)
	if err != nil {
		t.Fatal(err)
	}

	half := n / 2
	shards := []Shard{
		{X: x[:half*2], Y: y[:half], N: half, NumFeatures: 2, NumResponses: 1},
		{X: x[half*2:], Y: y[half:], N: n - half, NumFeatures: 2, NumResponses: 1},
	}
	identity := func(vec []float64) ([]float64, error) { return vec, nil }
	models, err := TrainDistributed(nil, shards, true, 0, identity)
	if err != nil {
		t.Fatal(err)
	}

	for rank, model := range models {
		if model.InterceptValue(0) != singleModel.InterceptValue(0) {
			t.Errorf("rank %d intercept = %v, want %v (bit-identical)", rank, model.InterceptValue(0), singleModel.InterceptValue(0))
		}
		for feature := 0; feature < 2; feature++ {
			if model.Coefficient(0, feature) != singleModel.Coefficient(0, feature) {
				t.Errorf("rank %d coefficient %d = %v, want %v (bit-identical)", rank, feature, model.Coefficient(0, feature), singleModel.Coefficient(0, feature))
			}
		}
	}
}

func TestDistributedTrainingSurfacesCollectiveFailure(t *testing.T) {
	x, y, n, _, _ := knownLinearDataset()
	shards := []Shard{{X: x, Y: y, N: n, NumFeatures: 2, NumResponses: 1}}
	boom := errors.New("boom")
	failing := func(vec []float64) ([]float64, error) { return nil, boom }
	if _, err := TrainDistributed(nil, shards, true, 0, failing); !errors.Is(err, dal.ErrCollectiveFailed) {
		t.Fatalf("got %v, want ErrCollectiveFailed", err)
	}
}

// Testable property 5: training with intercept=true on Y = X*W^T + b
// recovers W and b within 1e-6 when X^TX is well conditioned.
func TestPredictRoundTripRecoversKnownCoefficients(t *testing.T) {
	x, y, n, w, b := knownLinearDataset()

	pr := NewPartialResult()
	if err := pr.Update(nil, x, y, n, 2, 1, true); err != nil {
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

	predicted, err := Predict(nil, model, x, n)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < n; i++ {
		if math.Abs(predicted[i]-y[i]) > 1e-6 {
			t.Errorf("predicted[%d] = %v, want %v", i, predicted[i], y[i])
		}
	}
}

func TestFinalizeWithDescriptorPopulatesDiagnosticsOnlyWhenRequested(t *testing.T) {
	x, y, n, _, _ := knownLinearDataset()

	pr := NewPartialResult()
	if err := pr.Update(nil, x, y, n, 2, 1, true); err != nil {
		t.Fatal(err)
	}
	plain, err := pr.Finalize(0)
	if err != nil {
		t.Fatal(err)
	}
	if plain.Diagnostics() != nil {
		t.Fatalf("Finalize's Diagnostics() = %v, want nil", plain.Diagnostics())
	}

	pr2 := NewPartialResult()
	if err := pr2.Update(nil, x, y, n, 2, 1, true); err != nil {
		t.Fatal(err)
	}
	withDiag, err := pr2.FinalizeWithDescriptor(Descriptor{
		ResultOptions: ResultCoefficients | ResultIntercept | ResultDiagnostics,
	})
	if err != nil {
		t.Fatal(err)
	}
	diag := withDiag.Diagnostics()
	if diag == nil {
		t.Fatal("Diagnostics() = nil, want populated")
	}
	// knownLinearDataset is an exact linear fit: the residual sum of
	// squares against the recovered coefficients should be ~0.
	if len(diag.ResidualSumOfSquares) != 1 || math.Abs(diag.ResidualSumOfSquares[0]) > 1e-6 {
		t.Errorf("ResidualSumOfSquares = %v, want ~[0]", diag.ResidualSumOfSquares)
	}
}

func TestPredictColumnMajorMatchesPredict(t *testing.T) {
	x, y, n, _, _ := knownLinearDataset()

	pr := NewPartialResult()
	if err := pr.Update(nil, x, y, n, 2, 1, true); err != nil {
		t.Fatal(err)
	}
	model, err := pr.Finalize(0)
	if err != nil {
		t.Fatal(err)
	}

	rowMajorY, err := Predict(nil, model, x, n)
	if err != nil {
		t.Fatal(err)
	}

	colMajor := make([]float64, len(x))
	for row := 0; row < n; row++ {
		for c := 0; c < 2; c++ {
			colMajor[c*n+row] = x[row*2+c]
		}
	}
	colMajorY, err := PredictColumnMajor(nil, model, colMajor, n)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < n; i++ {
		if math.Abs(colMajorY[i]-rowMajorY[i]) > 1e-9 {
			t.Errorf("PredictColumnMajor[%d] = %v, want %v", i, colMajorY[i], rowMajorY[i])
		}
	}
}

// Testable property 3: training and predicting through the float32
// entry points must match the float64 core within float32 precision.
func TestUpdateSlicePredictSliceFloat32MatchesFloat64WithinTolerance(t *testing.T) {
	x64, y64, n, w, b := knownLinearDataset()
	x32 := narrowFromFloat64[float32](x64)
	y32 := narrowFromFloat64[float32](y64)

	pr := NewPartialResult()
	if err := UpdateSlice[float32](pr, nil, x32, y32, n, 2, 1, Descriptor{ComputeIntercept: true}); err != nil {
		t.Fatal(err)
	}
	model, err := pr.Finalize(0)
	if err != nil {
		t.Fatal(err)
	}

	const tol = 1e-4
	if math.Abs(model.InterceptValue(0)-b) > tol {
		t.Errorf("intercept = %v, want %v", model.InterceptValue(0), b)
	}
	for feature := 0; feature < 2; feature++ {
		if math.Abs(model.Coefficient(0, feature)-w[feature]) > tol {
			t.Errorf("coefficient %d = %v, want %v", feature, model.Coefficient(0, feature), w[feature])
		}
	}

	predicted32, err := PredictSlice[float32](nil, model, x32, n, Descriptor{})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < n; i++ {
		if math.Abs(float64(predicted32[i])-y64[i]) > tol {
			t.Errorf("predicted32[%d] = %v, want %v", i, predicted32[i], y64[i])
		}
	}
}

func TestPredictRejectsMismatchedInputWidth(t *testing.T) {
	pr := NewPartialResult()
	x, y, n, _, _ := knownLinearDataset()
	if err := pr.Update(nil, x, y, n, 2, 1, true); err != nil {
		t.Fatal(err)
	}
	model, err := pr.Finalize(0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Predict(nil, model, []float64{1, 2, 3}, 1); !errors.Is(err, dal.ErrInvalidArgument) {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}
}

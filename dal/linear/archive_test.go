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
)

func TestPartialResultMarshalUnmarshalRoundTrip(t *testing.T) {
	x, y, n, _, _ := knownLinearDataset()
	half := n / 2

	original := NewPartialResult()
	if err := original.Update(nil, x[:half*2], y[:half], half, 2, 1, true); err != nil {
		t.Fatal(err)
	}

	data, err := original.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}

	restored, err := UnmarshalPartialResult(data)
	if err != nil {
		t.Fatal(err)
	}
	if restored.State() != StateAccumulating {
		t.Fatalf("restored state = %v, want accumulating", restored.State())
	}
	if restored.NumObservations() != original.NumObservations() {
		t.Fatalf("restored NumObservations = %d, want %d", restored.NumObservations(), original.NumObservations())
	}

	// Continue training on both the original and the restored
	// accumulator with the remaining rows; they must finalize to the
	// same model.
	if err := original.Update(nil, x[half*2:], y[half:], n-half, 2, 1, true); err != nil {
		t.Fatal(err)
	}
	if err := restored.Update(nil, x[half*2:], y[half:], n-half, 2, 1, true); err != nil {
		t.Fatal(err)
	}

	wantModel, err := original.Finalize(0)
	if err != nil {
		t.Fatal(err)
	}
	gotModel, err := restored.Finalize(0)
	if err != nil {
		t.Fatal(err)
	}

	if gotModel.InterceptValue(0) != wantModel.InterceptValue(0) {
		t.Errorf("intercept = %v, want %v", gotModel.InterceptValue(0), wantModel.InterceptValue(0))
	}
	for feature := 0; feature < 2; feature++ {
		if gotModel.Coefficient(0, feature) != wantModel.Coefficient(0, feature) {
			t.Errorf("coefficient %d = %v, want %v", feature, gotModel.Coefficient(0, feature), wantModel.Coefficient(0, feature))
		}
	}
}

func TestMarshalBinaryRejectsNonAccumulatingState(t *testing.T) {
	empty := NewPartialResult()
	if _, err := empty.MarshalBinary(); !errors.Is(err, dal.ErrInvalidArgument) {
		t.Fatalf("marshal of empty accumulator: got %v, want ErrInvalidArgument", err)
	}

	x, y, n, _, _ := knownLinearDataset()
	finalized := NewPartialResult()
	if err := finalized.Update(nil, x, y, n, 2, 1, true); err != nil {
		t.Fatal(err)
	}
	if _, err := finalized.Finalize(0); err != nil {
		t.Fatal(err)
	}
	if _, err := finalized.MarshalBinary(); !errors.Is(err, dal.ErrInvalidArgument) {
		t.Fatalf("marshal of finalized accumulator: got %v, want ErrInvalidArgument", err)
	}
}

func TestTrainedModelMarshalUnmarshalRoundTrip(t *testing.T) {
	x, y, n, w, b := knownLinearDataset()
	pr := NewPartialResult()
	if err := pr.Update(nil, x, y, n, 2, 1, true); err != nil {
		t.Fatal(err)
	}
	model, err := pr.Finalize(0)
	if err != nil {
		t.Fatal(err)
	}

	data, err := model.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	restored, err := UnmarshalTrainedModel(data)
	if err != nil {
		t.Fatal(err)
	}

	if restored.NumFeatures() != model.NumFeatures() || restored.NumResponses() != model.NumResponses() {
		t.Fatalf("restored shape = (%d, %d), want (%d, %d)", restored.NumFeatures(), restored.NumResponses(), model.NumFeatures(), model.NumResponses())
	}
	if restored.Intercept() != model.Intercept() {
		t.Errorf("restored Intercept() = %v, want %v", restored.Intercept(), model.Intercept())
	}
	if restored.NumObservations() != model.NumObservations() {
		t.Errorf("restored NumObservations() = %d, want %d", restored.NumObservations(), model.NumObservations())
	}
	const tol = 1e-9
	if math.Abs(restored.InterceptValue(0)-b) > tol {
		t.Errorf("restored intercept = %v, want %v", restored.InterceptValue(0), b)
	}
	for feature := 0; feature < 2; feature++ {
		if math.Abs(restored.Coefficient(0, feature)-w[feature]) > tol {
			t.Errorf("restored coefficient %d = %v, want %v", feature, restored.Coefficient(0, feature), w[feature])
		}
	}
}

func TestUnmarshalPartialResultRejectsWrongTag(t *testing.T) {
	if _, err := UnmarshalPartialResult([]byte{0, 0, 0, 0, 1, 0, 0, 0}); !errors.Is(err, dal.ErrInvalidArgument) {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}
}

func TestUnmarshalTrainedModelRejectsWrongTag(t *testing.T) {
	if _, err := UnmarshalTrainedModel([]byte{0, 0, 0, 0, 1, 0, 0, 0}); !errors.Is(err, dal.ErrInvalidArgument) {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}
}

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

package table

import (
	"testing"

	"github.com/uxlfoundation/onedal-core/dal"
)

// Scenario S5: column 0 is i32 [1,2,3], column 1 is f32 [0.5,1.5,2.5];
// pulling as f64 rows must produce [[1.0,0.5],[2.0,1.5],[3.0,2.5]].
func TestHeterogeneousPullMatchesScenarioS5(t *testing.T) {
	h := NewHeterogeneous([]dal.DataType{dal.Int32, dal.Float32})
	if err := AppendChunk(h, 0, []int32{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if err := AppendChunk(h, 1, []float32{0.5, 1.5, 2.5}); err != nil {
		t.Fatal(err)
	}

	view, err := h.Rows(0, 3, ReadOnly, dal.Float64)
	if err != nil {
		t.Fatal(err)
	}
	defer view.Release()

	got := Data[float64](view)
	want := []float64{1.0, 0.5, 2.0, 1.5, 3.0, 2.5}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestHeterogeneousMultipleChunksConcatenate(t *testing.T) {
	h := NewHeterogeneous([]dal.DataType{dal.Float64})
	AppendChunk(h, 0, []float64{1, 2})
	AppendChunk(h, 0, []float64{3, 4})
	if h.RowCount() != 4 {
		t.Fatalf("RowCount() = %d, want 4", h.RowCount())
	}

	view, err := h.ColumnValues(0, 0, 4, ReadOnly, dal.Float64)
	if err != nil {
		t.Fatal(err)
	}
	defer view.Release()
	got := Data[float64](view)
	want := []float64{1, 2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestHeterogeneousRowBlockingSpansMultipleBlocks(t *testing.T) {
	// Two f64 columns are 16 bytes a row, so one row block holds
	// maxConversionBufferBytes/16 rows; one more row forces a second block.
	const n = maxConversionBufferBytes/16 + 1
	h := NewHeterogeneous([]dal.DataType{dal.Float64, dal.Float64})
	col0 := make([]float64, n)
	col1 := make([]float64, n)
	for i := range col0 {
		col0[i] = float64(i)
		col1[i] = float64(i) * 10
	}
	AppendChunk(h, 0, col0)
	AppendChunk(h, 1, col1)

	view, err := h.Rows(0, n, ReadOnly, dal.Float64)
	if err != nil {
		t.Fatal(err)
	}
	defer view.Release()
	got := Data[float64](view)
	for r := 0; r < n; r++ {
		if got[r*2] != col0[r] || got[r*2+1] != col1[r] {
			t.Errorf("row %d = (%v, %v), want (%v, %v)", r, got[r*2], got[r*2+1], col0[r], col1[r])
		}
	}
}

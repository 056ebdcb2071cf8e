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

func TestSOARowsGathersHeterogeneousColumns(t *testing.T) {
	s := NewSOA(3, []dal.DataType{dal.Int32, dal.Float32})
	if err := WrapSOAColumn(s, 0, []int32{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if err := WrapSOAColumn(s, 1, []float32{0.5, 1.5, 2.5}); err != nil {
		t.Fatal(err)
	}

	view, err := s.Rows(0, 3, ReadOnly, dal.Float64)
	if err != nil {
		t.Fatal(err)
	}
	defer view.Release()
	got := Data[float64](view)
	want := []float64{1, 0.5, 2, 1.5, 3, 2.5}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSOAColumnValuesDirectBorrow(t *testing.T) {
	s := NewSOA(3, []dal.DataType{dal.Float64})
	WrapSOAColumn(s, 0, []float64{1, 2, 3})
	view, err := s.ColumnValues(0, 0, 3, ReadOnly, dal.Float64)
	if err != nil {
		t.Fatal(err)
	}
	if view.Owned() {
		t.Fatal("expected direct borrow")
	}
}

func TestSOAWriteOnlyThenReadOnlyRoundTrip(t *testing.T) {
	s := NewSOA(2, []dal.DataType{dal.Int32, dal.Int32})
	wv, err := s.Rows(0, 2, WriteOnly, dal.Float64)
	if err != nil {
		t.Fatal(err)
	}
	copy(Data[float64](wv), []float64{10, 20, 30, 40})
	if err := wv.Release(); err != nil {
		t.Fatal(err)
	}

	rv, err := s.Rows(0, 2, ReadOnly, dal.Float64)
	if err != nil {
		t.Fatal(err)
	}
	defer rv.Release()
	got := Data[float64](rv)
	want := []float64{10, 20, 30, 40}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

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

package svm

import (
	"errors"
	"testing"

	"github.com/uxlfoundation/onedal-core/dal"
	"github.com/uxlfoundation/onedal-core/dal/table"
)

// sumKernel is a deterministic stand-in kernel: K(x, y) = sum(x) +
// 10*sum(y). It has no bearing on a real SVM kernel's math; it exists
// so cache contents are hand-verifiable without floating point noise.
func sumKernel(wsBlock []float64, rows int, trainingSet []float64, n int, out []float64) {
	p := len(wsBlock) / rows
	q := len(trainingSet) / n
	for i := 0; i < rows; i++ {
		var sws float64
		for k := 0; k < p; k++ {
			sws += wsBlock[i*p+k]
		}
		for j := 0; j < n; j++ {
			var str float64
			for k := 0; k < q; k++ {
				str += trainingSet[j*q+k]
			}
			out[i*n+j] = sws + 10*str
		}
	}
}

func trainingRows() []float64 {
	// sums: 1, 1, 2, 4, 4
	return []float64{
		1, 0,
		0, 1,
		1, 1,
		2, 2,
		3, 1,
	}
}

func TestComputeFillsFullBlockOnFirstCall(t *testing.T) {
	c, err := NewCache(4, 5, 2, trainingRows(), sumKernel)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Compute([]int{0, 1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	want := []float64{
		11, 11, 21, 41, 41,
		11, 11, 21, 41, 41,
		12, 12, 22, 42, 42,
		14, 14, 24, 44, 44,
	}
	got := c.Values()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("values[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

// After copy_last_to_first, the first W/2 x N cache rows correspond to
// the working-set indices that survived selection (here: the original
// ws rows 2 and 3), and the next Compute call only regathers and
// recomputes the remaining half.
func TestCopyLastToFirstThenComputeOnlyRefillsTrailingHalf(t *testing.T) {
	c, err := NewCache(4, 5, 2, trainingRows(), sumKernel)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Compute([]int{0, 1, 2, 3}); err != nil {
		t.Fatal(err)
	}

	c.CopyLastToFirst()
	if c.NumSelectRows() != 2 {
		t.Fatalf("NumSelectRows() = %d, want 2", c.NumSelectRows())
	}
	if !c.ComputedSubKernel() {
		t.Fatal("expected ComputedSubKernel() to be true immediately after CopyLastToFirst")
	}

	survivors := []float64{
		12, 12, 22, 42, 42,
		14, 14, 24, 44, 44,
	}
	got := c.Values()
	for i := range survivors {
		if got[i] != survivors[i] {
			t.Fatalf("after copy, values[%d] = %v, want %v", i, got[i], survivors[i])
		}
	}

	// New working set: positions 0,1 keep the surviving indices 2,3;
	// positions 2,3 introduce new candidates 4 and 0.
	if err := c.Compute([]int{2, 3, 4, 0}); err != nil {
		t.Fatal(err)
	}
	if c.ComputedSubKernel() {
		t.Fatal("expected ComputedSubKernel() to clear after Compute")
	}

	want := []float64{
		12, 12, 22, 42, 42,
		14, 14, 24, 44, 44,
		14, 14, 24, 44, 44,
		11, 11, 21, 41, 41,
	}
	got = c.Values()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("values[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNewCacheValidatesDimensions(t *testing.T) {
	if _, err := NewCache(0, 5, 2, trainingRows(), sumKernel); !errors.Is(err, dal.ErrInvalidArgument) {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}
	if _, err := NewCache(4, 5, 2, []float64{1, 2, 3}, sumKernel); !errors.Is(err, dal.ErrInvalidArgument) {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}
	if _, err := NewCache(4, 5, 2, trainingRows(), nil); !errors.Is(err, dal.ErrInvalidArgument) {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}
}

func TestComputeRejectsWrongIndexCount(t *testing.T) {
	c, err := NewCache(4, 5, 2, trainingRows(), sumKernel)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Compute([]int{0, 1}); !errors.Is(err, dal.ErrInvalidArgument) {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}
}

func TestNewCacheFromTableMatchesNewCacheOnSlices(t *testing.T) {
	trainingSet := table.WrapDense[float64](5, 2, append([]float64(nil), trainingRows()...))

	c, err := NewCacheFromTable(4, 2, trainingSet, sumKernel)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Compute([]int{0, 1, 2, 3}); err != nil {
		t.Fatal(err)
	}

	want := []float64{
		11, 11, 21, 41, 41,
		11, 11, 21, 41, 41,
		12, 12, 22, 42, 42,
		14, 14, 24, 44, 44,
	}
	got := c.Values()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("values[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNewCacheFromTableRejectsColumnMismatch(t *testing.T) {
	trainingSet := table.WrapDense[float64](5, 2, append([]float64(nil), trainingRows()...))
	if _, err := NewCacheFromTable(4, 3, trainingSet, sumKernel); !errors.Is(err, dal.ErrInvalidArgument) {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}
}

func TestComputeRejectsOutOfRangeIndex(t *testing.T) {
	c, err := NewCache(4, 5, 2, trainingRows(), sumKernel)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Compute([]int{0, 1, 2, 5}); !errors.Is(err, dal.ErrInvalidArgument) {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}
}

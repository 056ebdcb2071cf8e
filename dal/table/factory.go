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

import "github.com/uxlfoundation/onedal-core/dal"

// MakeDense allocates a zeroed dense row-major table.
func MakeDense[T dal.Numeric](rows, cols int) *Dense {
	return NewDense[T](rows, cols)
}

// MakeSOA allocates a zeroed struct-of-arrays table with the given
// per-column types.
func MakeSOA(types []dal.DataType, rows int) *SOA {
	return NewSOA(rows, types)
}

// MakeCSR builds a CSR table from caller-supplied arrays without
// copying.
func MakeCSR[T dal.Numeric](values []T, colIndices, rowOffsets []int32, rows, cols int) *CSR {
	return NewCSR(rows, cols, values, colIndices, rowOffsets, false)
}

// MakeHeterogeneous builds an empty heterogeneous table with the given
// per-column types; populate with AppendChunk.
func MakeHeterogeneous(types []dal.DataType) *Heterogeneous {
	return NewHeterogeneous(types)
}

// WrapBorrowed wraps caller-owned row-major storage as a dense table
// without copying.
func WrapBorrowed[T dal.Numeric](data []T, rows, cols int) *Dense {
	return WrapDense(rows, cols, data)
}

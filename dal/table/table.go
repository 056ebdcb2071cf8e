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

// Package table implements the numeric-table abstraction: a handful of
// storage layouts sharing one scoped, type-coercing block-access
// protocol. Every variant exposes rows and columns as contiguous blocks
// of a caller-requested element type regardless of how it actually
// stores its data.
package table

import (
	"fmt"

	"github.com/uxlfoundation/onedal-core/dal"
)

// Layout identifies a table's storage variant. It is fixed for a
// table's lifetime.
type Layout int

const (
	LayoutDense Layout = iota
	LayoutSOA
	LayoutCSR
	LayoutHeterogeneous
	LayoutPacked
)

func (l Layout) String() string {
	switch l {
	case LayoutDense:
		return "dense"
	case LayoutSOA:
		return "soa"
	case LayoutCSR:
		return "csr"
	case LayoutHeterogeneous:
		return "heterogeneous"
	case LayoutPacked:
		return "packed"
	default:
		return "unknown"
	}
}

// AccessMode selects how a block view may be used.
type AccessMode int

const (
	ReadOnly AccessMode = iota
	ReadWrite
	WriteOnly
)

// Table is the common surface every storage variant implements.
type Table interface {
	RowCount() int
	ColumnCount() int
	DataType(col int) dal.DataType
	Layout() Layout
	IsAllFeaturesEqual() bool
	Dictionary() *Dictionary

	// Rows acquires rows [i, i+n) as a contiguous block of type dt. If
	// i >= RowCount(), it returns an empty view rather than an error.
	Rows(i, n int, mode AccessMode, dt dal.DataType) (*BlockView, error)
	// ColumnValues acquires rows [i, i+n) of column c as a contiguous
	// block of type dt.
	ColumnValues(c, i, n int, mode AccessMode, dt dal.DataType) (*BlockView, error)
}

// Resizable is implemented by tables that support in-place row-count
// change.
type Resizable interface {
	Resize(rowCount int) error
}

// RowSlicer is implemented by tables that support row-range slicing into
// a new table. Whether the slice shares the original's storage depends
// on the variant: Dense shares it, CSR shares its value and index
// arrays, Heterogeneous copies, and Packed returns
// dal.ErrUnsupportedOperation.
type RowSlicer interface {
	SliceRows(i, n int) (Table, error)
}

func emptyBlockView(dt dal.DataType, cols int) *BlockView {
	return &BlockView{
		data: allocTyped(dt, 0), dtype: dt, mode: ReadOnly,
		rowCount: 0, colCount: cols,
	}
}

func allocTyped(dt dal.DataType, n int) any {
	switch dt {
	case dal.Float32:
		return make([]float32, n)
	case dal.Float64:
		return make([]float64, n)
	case dal.Int32:
		return make([]int32, n)
	case dal.Int64:
		return make([]int64, n)
	case dal.Uint32:
		return make([]uint32, n)
	case dal.Uint64:
		return make([]uint64, n)
	default:
		panic(fmt.Sprintf("dal/table: unregistered data type %v", dt))
	}
}

func sliceLenOf(s any) int {
	switch v := s.(type) {
	case []float32:
		return len(v)
	case []float64:
		return len(v)
	case []int32:
		return len(v)
	case []int64:
		return len(v)
	case []uint32:
		return len(v)
	case []uint64:
		return len(v)
	default:
		panic(fmt.Sprintf("dal/table: unsupported backing type %T", s))
	}
}

// windowOf returns the sub-slice [start:stop) of s, which must hold one
// of the registered numeric slice types, as a borrowed (non-copying)
// window.
func windowOf(s any, start, stop int) any {
	switch v := s.(type) {
	case []float32:
		return v[start:stop]
	case []float64:
		return v[start:stop]
	case []int32:
		return v[start:stop]
	case []int64:
		return v[start:stop]
	case []uint32:
		return v[start:stop]
	case []uint64:
		return v[start:stop]
	default:
		panic(fmt.Sprintf("dal/table: unsupported backing type %T", s))
	}
}

// toFloat64Slice widens any registered numeric slice into a fresh
// []float64, used as the common intermediate for cross-type conversion.
func toFloat64Slice(s any) []float64 {
	switch v := s.(type) {
	case []float32:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out
	case []float64:
		out := make([]float64, len(v))
		copy(out, v)
		return out
	case []int32:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out
	case []int64:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out
	case []uint32:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out
	case []uint64:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out
	default:
		panic(fmt.Sprintf("dal/table: unsupported backing type %T", s))
	}
}

// convertSlice allocates a fresh slice of dstType holding src's values
// cast element-wise.
func convertSlice(src any, dstType dal.DataType) any {
	fs := toFloat64Slice(src)
	dst := allocTyped(dstType, len(fs))
	copyInto(dst, 0, src)
	return dst
}

// copyInto writes len(src) converted values of src into dst starting at
// dstStart. dst must be long enough; both dst and src must hold one of
// the registered numeric slice types.
func copyInto(dst any, dstStart int, src any) {
	fs := toFloat64Slice(src)
	switch d := dst.(type) {
	case []float32:
		for i, v := range fs {
			d[dstStart+i] = float32(v)
		}
	case []float64:
		for i, v := range fs {
			d[dstStart+i] = v
		}
	case []int32:
		for i, v := range fs {
			d[dstStart+i] = int32(v)
		}
	case []int64:
		for i, v := range fs {
			d[dstStart+i] = int64(v)
		}
	case []uint32:
		for i, v := range fs {
			d[dstStart+i] = uint32(v)
		}
	case []uint64:
		for i, v := range fs {
			d[dstStart+i] = uint64(v)
		}
	default:
		panic(fmt.Sprintf("dal/table: unsupported backing type %T", dst))
	}
}

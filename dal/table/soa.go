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

// SOA is a struct-of-arrays table: one contiguous buffer per column,
// each free to hold its own element type.
type SOA struct {
	rows    int
	columns []any
	dict    *Dictionary
}

// NewSOA allocates a zeroed struct-of-arrays table with one zeroed
// column per entry of types.
func NewSOA(rows int, types []dal.DataType) *SOA {
	cols := make([]any, len(types))
	for i, t := range types {
		cols[i] = allocTyped(t, rows)
	}
	return &SOA{rows: rows, columns: cols, dict: NewDictionary(types)}
}

// WrapSOAColumn installs data as column c's backing storage without
// copying; data's length must equal the table's row count.
func WrapSOAColumn[T dal.Numeric](s *SOA, c int, data []T) error {
	if c < 0 || c >= len(s.columns) || len(data) != s.rows {
		return dal.ErrInvalidArgument
	}
	s.columns[c] = data
	return nil
}

func (s *SOA) RowCount() int            { return s.rows }
func (s *SOA) ColumnCount() int         { return len(s.columns) }
func (s *SOA) DataType(col int) dal.DataType {
	return s.dict.At(col).Type
}
func (s *SOA) Layout() Layout           { return LayoutSOA }
func (s *SOA) IsAllFeaturesEqual() bool { return s.dict.IsAllEqual() }
func (s *SOA) Dictionary() *Dictionary  { return s.dict }

// Rows gathers a row-major block of type dt from every column.
func (s *SOA) Rows(i, n int, mode AccessMode, dt dal.DataType) (*BlockView, error) {
	if i < 0 || n < 0 {
		return nil, dal.ErrInvalidArgument
	}
	cols := len(s.columns)
	if i >= s.rows {
		return emptyBlockView(dt, cols), nil
	}
	if i+n > s.rows {
		return nil, dal.ErrInvalidArgument
	}

	var data any
	if mode == WriteOnly {
		data = allocTyped(dt, n*cols)
	} else {
		packed := allocTyped(dt, n*cols)
		for c := 0; c < cols; c++ {
			colWindow := windowOf(s.columns[c], i, i+n)
			colVals := toFloat64Slice(colWindow)
			for r, v := range colVals {
				setRowMajorElement(packed, r*cols+c, v)
			}
		}
		data = packed
	}

	bv := &BlockView{data: data, dtype: dt, mode: mode, rowOffset: i, rowCount: n, colOffset: 0, colCount: cols, owned: true}
	bv.scatter = func(out any) error {
		fs := toFloat64Slice(out)
		for c := 0; c < cols; c++ {
			for r := 0; r < n; r++ {
				setRowMajorElement(s.columns[c], i+r, fs[r*cols+c])
			}
		}
		return nil
	}
	return bv, nil
}

// ColumnValues acquires rows [i, i+n) of a single column. When dt
// matches the column's native type it is a direct borrow.
func (s *SOA) ColumnValues(c, i, n int, mode AccessMode, dt dal.DataType) (*BlockView, error) {
	if c < 0 || c >= len(s.columns) || i < 0 || n < 0 {
		return nil, dal.ErrInvalidArgument
	}
	if i >= s.rows {
		return emptyBlockView(dt, 1), nil
	}
	if i+n > s.rows {
		return nil, dal.ErrInvalidArgument
	}

	if dt == s.dict.At(c).Type {
		return &BlockView{
			data: windowOf(s.columns[c], i, i+n), dtype: dt, mode: mode,
			rowOffset: i, rowCount: n, colOffset: c, colCount: 1,
		}, nil
	}

	var data any
	if mode == WriteOnly {
		data = allocTyped(dt, n)
	} else {
		data = convertSlice(windowOf(s.columns[c], i, i+n), dt)
	}
	bv := &BlockView{data: data, dtype: dt, mode: mode, rowOffset: i, rowCount: n, colOffset: c, colCount: 1, owned: true}
	bv.scatter = func(out any) error {
		copyInto(s.columns[c], i, out)
		return nil
	}
	return bv, nil
}

// Resize grows or shrinks every column's row count in place.
func (s *SOA) Resize(rowCount int) error {
	if rowCount < 0 {
		return dal.ErrInvalidArgument
	}
	n := min(s.rows, rowCount)
	for c, col := range s.columns {
		fresh := allocTyped(s.dict.At(c).Type, rowCount)
		copyInto(fresh, 0, windowOf(col, 0, n))
		s.columns[c] = fresh
	}
	s.rows = rowCount
	return nil
}

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

// CSR is a sparse table stored as three parallel arrays: nonzero
// values, their column indices, and per-row offsets into both.
type CSR struct {
	rows, cols int
	dtype      dal.DataType
	values     any
	colIndices []int32
	rowOffsets []int32
	oneBased   bool
}

// NewCSR builds a CSR table from caller-supplied arrays without
// copying. rowOffsets must have length rows+1. Indices are interpreted
// as zero-based unless oneBased is true.
func NewCSR[T dal.Numeric](rows, cols int, values []T, colIndices, rowOffsets []int32, oneBased bool) *CSR {
	return &CSR{
		rows: rows, cols: cols, dtype: dal.DataTypeOf[T](),
		values: values, colIndices: colIndices, rowOffsets: rowOffsets, oneBased: oneBased,
	}
}

func (c *CSR) RowCount() int            { return c.rows }
func (c *CSR) ColumnCount() int         { return c.cols }
func (c *CSR) DataType(int) dal.DataType { return c.dtype }
func (c *CSR) Layout() Layout           { return LayoutCSR }
func (c *CSR) IsAllFeaturesEqual() bool { return true }
func (c *CSR) Dictionary() *Dictionary  { return NewUniformDictionary(c.dtype) }

// Values returns the CSR table's raw nonzero-value array.
func (c *CSR) Values() any { return c.values }

// ColumnIndices returns the CSR table's raw column-index array.
func (c *CSR) ColumnIndices() []int32 { return c.colIndices }

// RowOffsets returns the row-offset array, rebased to one-based
// indexing (each entry incremented by one) when oneBased is true and
// the table was not already stored that way, or vice versa.
func (c *CSR) RowOffsets(oneBased bool) []int32 {
	if oneBased == c.oneBased {
		return c.rowOffsets
	}
	shift := int32(1)
	if c.oneBased {
		shift = -1
	}
	out := make([]int32, len(c.rowOffsets))
	for i, v := range c.rowOffsets {
		out[i] = v + shift
	}
	return out
}

func (c *CSR) offset(row int) int {
	o := int(c.rowOffsets[row])
	if c.oneBased {
		o--
	}
	return o
}

// Rows materializes rows [i, i+n) as a dense row-major block of type
// dt, expanding implicit zeros. Like the original's GetRowsCSR, a
// write-mode view only lets the caller mutate the values of nonzero
// entries that are already stored: writing to a position that is an
// implicit zero in the sparsity pattern is not persisted, since the
// original's sparse block descriptor hands back pointers into the
// table's own values/columns storage rather than densifying and
// restructuring it on release.
func (c *CSR) Rows(i, n int, mode AccessMode, dt dal.DataType) (*BlockView, error) {
	if i < 0 || n < 0 {
		return nil, dal.ErrInvalidArgument
	}
	if i >= c.rows {
		return emptyBlockView(dt, c.cols), nil
	}
	if i+n > c.rows {
		return nil, dal.ErrInvalidArgument
	}

	data := allocTyped(dt, n*c.cols)
	if mode != WriteOnly {
		for r := 0; r < n; r++ {
			start, stop := c.offset(i+r), c.offset(i+r+1)
			rowVals := toFloat64Slice(windowOf(c.values, start, stop))
			for k, v := range rowVals {
				colIdx := int(c.colIndices[start+k])
				if c.oneBased {
					colIdx--
				}
				setRowMajorElement(data, r*c.cols+colIdx, v)
			}
		}
	}

	bv := &BlockView{data: data, dtype: dt, mode: mode, rowOffset: i, rowCount: n, colOffset: 0, colCount: c.cols, owned: true}
	bv.scatter = func(out any) error {
		fs := toFloat64Slice(out)
		for r := 0; r < n; r++ {
			start, stop := c.offset(i+r), c.offset(i+r+1)
			for k := start; k < stop; k++ {
				colIdx := int(c.colIndices[k])
				if c.oneBased {
					colIdx--
				}
				setRowMajorElement(c.values, k, fs[r*c.cols+colIdx])
			}
		}
		return nil
	}
	return bv, nil
}

// ColumnValues materializes rows [i, i+n) of column col as a dense
// block of type dt. As in Rows, a write-mode view only persists back
// to (row, col) pairs that are already stored nonzero entries; see
// Rows's doc comment for the grounding.
func (c *CSR) ColumnValues(col, i, n int, mode AccessMode, dt dal.DataType) (*BlockView, error) {
	if col < 0 || col >= c.cols || i < 0 || n < 0 {
		return nil, dal.ErrInvalidArgument
	}
	if i >= c.rows {
		return emptyBlockView(dt, 1), nil
	}
	if i+n > c.rows {
		return nil, dal.ErrInvalidArgument
	}

	data := allocTyped(dt, n)
	if mode != WriteOnly {
		for r := 0; r < n; r++ {
			start, stop := c.offset(i+r), c.offset(i+r+1)
			for k := start; k < stop; k++ {
				colIdx := int(c.colIndices[k])
				if c.oneBased {
					colIdx--
				}
				if colIdx == col {
					setRowMajorElement(data, r, elementAsFloat64(c.values, k))
					break
				}
			}
		}
	}
	bv := &BlockView{data: data, dtype: dt, mode: mode, rowOffset: i, rowCount: n, colOffset: col, colCount: 1, owned: true}
	bv.scatter = func(out any) error {
		fs := toFloat64Slice(out)
		for r := 0; r < n; r++ {
			start, stop := c.offset(i+r), c.offset(i+r+1)
			for k := start; k < stop; k++ {
				colIdx := int(c.colIndices[k])
				if c.oneBased {
					colIdx--
				}
				if colIdx == col {
					setRowMajorElement(c.values, k, fs[r])
					break
				}
			}
		}
		return nil
	}
	return bv, nil
}

// Resize grows or shrinks the table's row count. Growing appends empty
// rows (no stored nonzeros); shrinking drops trailing rows and their
// nonzero entries.
func (c *CSR) Resize(rowCount int) error {
	if rowCount < 0 {
		return dal.ErrInvalidArgument
	}
	if rowCount <= c.rows {
		cut := c.offset(rowCount)
		c.values = windowOf(c.values, 0, cut)
		c.colIndices = c.colIndices[:cut]
		c.rowOffsets = c.rowOffsets[:rowCount+1]
		c.rows = rowCount
		return nil
	}
	last := c.rowOffsets[c.rows]
	freshOffsets := make([]int32, rowCount+1)
	copy(freshOffsets, c.rowOffsets)
	for r := c.rows + 1; r <= rowCount; r++ {
		freshOffsets[r] = last
	}
	c.rowOffsets = freshOffsets
	c.rows = rowCount
	return nil
}

// SliceRows returns a new CSR table over rows [i, i+n). The value and
// column-index arrays are windows into c's own arrays (shared, not
// copied); the row-offset array is a fresh copy rebuilt relative to the
// slice's own start.
func (c *CSR) SliceRows(i, n int) (Table, error) {
	if i < 0 || n < 0 || i+n > c.rows {
		return nil, dal.ErrInvalidArgument
	}
	base := c.offset(i)
	cut := c.offset(i + n)

	rowOffsets := make([]int32, n+1)
	bias := int32(base)
	for r := 0; r <= n; r++ {
		rowOffsets[r] = c.rowOffsets[i+r] - bias
	}

	return &CSR{
		rows: n, cols: c.cols, dtype: c.dtype,
		values: windowOf(c.values, base, cut), colIndices: c.colIndices[base:cut],
		rowOffsets: rowOffsets, oneBased: c.oneBased,
	}, nil
}

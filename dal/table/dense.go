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

// Dense is a row-major homogeneous table: one contiguous buffer of a
// single element type, indexed row*columnCount+column.
type Dense struct {
	rows, cols int
	dtype      dal.DataType
	buf        any
}

// NewDense allocates a zeroed dense table of shape (rows, cols) holding
// element type T.
func NewDense[T dal.Numeric](rows, cols int) *Dense {
	return &Dense{rows: rows, cols: cols, dtype: dal.DataTypeOf[T](), buf: make([]T, rows*cols)}
}

// WrapDense wraps caller-owned row-major storage without copying. The
// caller guarantees data's lifetime outlives every use of the table.
func WrapDense[T dal.Numeric](rows, cols int, data []T) *Dense {
	return &Dense{rows: rows, cols: cols, dtype: dal.DataTypeOf[T](), buf: data}
}

func (d *Dense) RowCount() int                { return d.rows }
func (d *Dense) ColumnCount() int              { return d.cols }
func (d *Dense) DataType(int) dal.DataType     { return d.dtype }
func (d *Dense) Layout() Layout                { return LayoutDense }
func (d *Dense) IsAllFeaturesEqual() bool      { return true }
func (d *Dense) Dictionary() *Dictionary       { return NewUniformDictionary(d.dtype) }

func (d *Dense) Rows(i, n int, mode AccessMode, dt dal.DataType) (*BlockView, error) {
	if i < 0 || n < 0 {
		return nil, dal.ErrInvalidArgument
	}
	if i >= d.rows {
		return emptyBlockView(dt, d.cols), nil
	}
	if i+n > d.rows {
		return nil, dal.ErrInvalidArgument
	}
	start, stop := i*d.cols, (i+n)*d.cols
	return d.acquireWindow(start, stop, i, n, 0, d.cols, mode, dt), nil
}

func (d *Dense) ColumnValues(c, i, n int, mode AccessMode, dt dal.DataType) (*BlockView, error) {
	if c < 0 || c >= d.cols || i < 0 || n < 0 {
		return nil, dal.ErrInvalidArgument
	}
	if i >= d.rows {
		return emptyBlockView(dt, 1), nil
	}
	if i+n > d.rows {
		return nil, dal.ErrInvalidArgument
	}
	// A column of a row-major dense table is strided, so it is never a
	// direct borrow: gather it into a fresh contiguous buffer.
	src := allocTyped(d.dtype, n)
	gathered := windowOf(d.buf, 0, d.rows*d.cols)
	for r := 0; r < n; r++ {
		copyRowMajorElement(src, r, gathered, (i+r)*d.cols+c)
	}

	var data any
	if mode == WriteOnly {
		data = allocTyped(dt, n)
	} else {
		data = convertSlice(src, dt)
	}
	bv := &BlockView{data: data, dtype: dt, mode: mode, rowOffset: i, rowCount: n, colOffset: c, colCount: 1, owned: true}
	bv.scatter = func(out any) error {
		fs := toFloat64Slice(out)
		buf := windowOf(d.buf, 0, d.rows*d.cols)
		for r, v := range fs {
			setRowMajorElement(buf, (i+r)*d.cols+c, v)
		}
		return nil
	}
	return bv, nil
}

func (d *Dense) acquireWindow(start, stop, rowOff, rowCount, colOff, colCount int, mode AccessMode, dt dal.DataType) *BlockView {
	if dt == d.dtype {
		return &BlockView{
			data: windowOf(d.buf, start, stop), dtype: dt, mode: mode,
			rowOffset: rowOff, rowCount: rowCount, colOffset: colOff, colCount: colCount,
		}
	}

	var data any
	if mode == WriteOnly {
		data = allocTyped(dt, stop-start)
	} else {
		data = convertSlice(windowOf(d.buf, start, stop), dt)
	}
	bv := &BlockView{data: data, dtype: dt, mode: mode, rowOffset: rowOff, rowCount: rowCount, colOffset: colOff, colCount: colCount, owned: true}
	bv.scatter = func(out any) error {
		copyInto(d.buf, start, out)
		return nil
	}
	return bv
}

// Resize grows or shrinks the row count in place, preserving existing
// element values in their original positions and zero-filling new rows.
func (d *Dense) Resize(rowCount int) error {
	if rowCount < 0 {
		return dal.ErrInvalidArgument
	}
	fresh := allocTyped(d.dtype, rowCount*d.cols)
	n := min(d.rows, rowCount) * d.cols
	copyInto(fresh, 0, windowOf(d.buf, 0, n))
	d.buf = fresh
	d.rows = rowCount
	return nil
}

// SliceRows returns a new Dense table sharing the same backing storage
// for rows [i, i+n).
func (d *Dense) SliceRows(i, n int) (Table, error) {
	if i < 0 || n < 0 || i+n > d.rows {
		return nil, dal.ErrInvalidArgument
	}
	return &Dense{rows: n, cols: d.cols, dtype: d.dtype, buf: windowOf(d.buf, i*d.cols, (i+n)*d.cols)}, nil
}

// copyRowMajorElement writes src[row] = storage[idx]'s value converted
// via the float64 intermediate, where storage is typed storage and idx a
// flat row-major offset.
func copyRowMajorElement(src any, row int, storage any, idx int) {
	v := elementAsFloat64(storage, idx)
	switch s := src.(type) {
	case []float32:
		s[row] = float32(v)
	case []float64:
		s[row] = v
	case []int32:
		s[row] = int32(v)
	case []int64:
		s[row] = int64(v)
	case []uint32:
		s[row] = uint32(v)
	case []uint64:
		s[row] = uint64(v)
	}
}

func elementAsFloat64(s any, idx int) float64 {
	switch v := s.(type) {
	case []float32:
		return float64(v[idx])
	case []float64:
		return v[idx]
	case []int32:
		return float64(v[idx])
	case []int64:
		return float64(v[idx])
	case []uint32:
		return float64(v[idx])
	case []uint64:
		return float64(v[idx])
	default:
		return 0
	}
}

func setRowMajorElement(s any, idx int, v float64) {
	switch d := s.(type) {
	case []float32:
		d[idx] = float32(v)
	case []float64:
		d[idx] = v
	case []int32:
		d[idx] = int32(v)
	case []int64:
		d[idx] = int64(v)
	case []uint32:
		d[idx] = uint32(v)
	case []uint64:
		d[idx] = uint64(v)
	}
}

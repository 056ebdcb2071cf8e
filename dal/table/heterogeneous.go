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
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/uxlfoundation/onedal-core/dal"
)

// maxConversionBufferBytes bounds the staged conversion buffer the
// heterogeneous pull allocates per row block.
const maxConversionBufferBytes = 10_000_000

// chunkedColumn is one column's data as an ordered list of chunks, each
// a typed slice, enabling streaming construction without copying on
// append.
type chunkedColumn struct {
	dtype  dal.DataType
	chunks []any
}

func (cc *chunkedColumn) length() int {
	n := 0
	for _, ch := range cc.chunks {
		n += sliceLenOf(ch)
	}
	return n
}

// valueAt returns element idx's value, scanning chunks in order. Exposed
// only for the pull algorithm; heterogeneous columns are not random-
// access-efficient by design (streaming construction is the point).
func (cc *chunkedColumn) valueAt(idx int) float64 {
	for _, ch := range cc.chunks {
		n := sliceLenOf(ch)
		if idx < n {
			return elementAsFloat64(ch, idx)
		}
		idx -= n
	}
	panic("dal/table: heterogeneous column index out of range")
}

// Heterogeneous is a column-partitioned table where each column is a
// possibly-chunked array of its own element type.
type Heterogeneous struct {
	rows    int
	columns []*chunkedColumn
	dict    *Dictionary
}

// NewHeterogeneous builds an empty heterogeneous table with one column
// per entry of types and zero rows; append data with AppendChunk.
func NewHeterogeneous(types []dal.DataType) *Heterogeneous {
	cols := make([]*chunkedColumn, len(types))
	for i, t := range types {
		cols[i] = &chunkedColumn{dtype: t}
	}
	return &Heterogeneous{columns: cols, dict: NewDictionary(types)}
}

// AppendChunk appends data as the next chunk of column c, extending the
// table's logical row count to match the longest column. All columns
// must reach the same total length before the table is used.
func AppendChunk[T dal.Numeric](h *Heterogeneous, c int, data []T) error {
	if c < 0 || c >= len(h.columns) {
		return dal.ErrInvalidArgument
	}
	h.columns[c].chunks = append(h.columns[c].chunks, data)
	if n := h.columns[c].length(); n > h.rows {
		h.rows = n
	}
	return nil
}

func (h *Heterogeneous) RowCount() int    { return h.rows }
func (h *Heterogeneous) ColumnCount() int { return len(h.columns) }
func (h *Heterogeneous) DataType(col int) dal.DataType {
	return h.dict.At(col).Type
}
func (h *Heterogeneous) Layout() Layout           { return LayoutHeterogeneous }
func (h *Heterogeneous) IsAllFeaturesEqual() bool { return h.dict.IsAllEqual() }
func (h *Heterogeneous) Dictionary() *Dictionary  { return h.dict }

// Rows pulls rows [i, i+n) into a row-major block of type dt, staging
// the conversion in row blocks sized to bound memory use and packing
// columns in parallel, per the heterogeneous-column pull algorithm.
func (h *Heterogeneous) Rows(i, n int, mode AccessMode, dt dal.DataType) (*BlockView, error) {
	if i < 0 || n < 0 {
		return nil, dal.ErrInvalidArgument
	}
	cols := len(h.columns)
	if i >= h.rows {
		return emptyBlockView(dt, cols), nil
	}
	if i+n > h.rows {
		return nil, dal.ErrInvalidArgument
	}
	if mode != ReadOnly {
		// A heterogeneous table's columns are built by append-only
		// chunking (AppendChunk), not in-place mutation: there is no
		// storage for a write-mode view to scatter back into.
		return nil, dal.ErrUnsupportedOperation
	}

	out := allocTyped(dt, n*cols)
	fillSentinel(out, dt)

	rowByteSize := 0
	for _, col := range h.columns {
		rowByteSize += col.dtype.Size()
	}
	if rowByteSize == 0 {
		rowByteSize = 1
	}
	rowBlock := maxConversionBufferBytes / rowByteSize
	if rowBlock < 1 {
		rowBlock = 1
	}
	if rowBlock > n {
		rowBlock = n
	}

	for blockStart := 0; blockStart < n; blockStart += rowBlock {
		blockEnd := min(blockStart+rowBlock, n)
		blockLen := blockEnd - blockStart

		packed := make([][]float64, cols)
		g, _ := errgroup.WithContext(context.Background())
		for c := 0; c < cols; c++ {
			c := c
			g.Go(func() error {
				// A column shorter than the table packs only the rows it
				// has, so the rest of its output keeps the sentinel.
				avail := min(blockLen, max(h.columns[c].length()-(i+blockStart), 0))
				vals := make([]float64, avail)
				for r := 0; r < avail; r++ {
					vals[r] = h.columns[c].valueAt(i + blockStart + r)
				}
				packed[c] = vals
				return nil
			})
		}
		_ = g.Wait() // column packing has no fallible step; error is always nil

		for r := 0; r < blockLen; r++ {
			for c := 0; c < cols; c++ {
				if r < len(packed[c]) {
					setRowMajorElement(out, (blockStart+r)*cols+c, packed[c][r])
				}
			}
		}
	}

	return &BlockView{data: out, dtype: dt, mode: mode, rowOffset: i, rowCount: n, colOffset: 0, colCount: cols}, nil
}

// ColumnValues pulls rows [i, i+n) of a single column. Heterogeneous
// views are never write-back scatterable: a heterogeneous table's
// columns are built by append-only chunking, not in-place mutation, so
// write-mode access is rejected outright rather than silently dropped.
func (h *Heterogeneous) ColumnValues(c, i, n int, mode AccessMode, dt dal.DataType) (*BlockView, error) {
	if c < 0 || c >= len(h.columns) || i < 0 || n < 0 {
		return nil, dal.ErrInvalidArgument
	}
	if i >= h.rows {
		return emptyBlockView(dt, 1), nil
	}
	if i+n > h.rows {
		return nil, dal.ErrInvalidArgument
	}
	if mode != ReadOnly {
		return nil, dal.ErrUnsupportedOperation
	}
	data := allocTyped(dt, n)
	for r := 0; r < n; r++ {
		setRowMajorElement(data, r, h.columns[c].valueAt(i+r))
	}
	return &BlockView{data: data, dtype: dt, mode: mode, rowOffset: i, rowCount: n, colOffset: c, colCount: 1, owned: true}, nil
}

// Resize grows or shrinks every column to rowCount, flattening each
// column to a single chunk in the process. Growing pads with zeros.
func (h *Heterogeneous) Resize(rowCount int) error {
	if rowCount < 0 {
		return dal.ErrInvalidArgument
	}
	n := min(h.rows, rowCount)
	for _, col := range h.columns {
		fresh := allocTyped(col.dtype, rowCount)
		for i := 0; i < n; i++ {
			setRowMajorElement(fresh, i, col.valueAt(i))
		}
		col.chunks = []any{fresh}
	}
	h.rows = rowCount
	return nil
}

// SliceRows returns a new heterogeneous table over rows [i, i+n),
// materializing each column's slice into its own single chunk.
func (h *Heterogeneous) SliceRows(i, n int) (Table, error) {
	if i < 0 || n < 0 || i+n > h.rows {
		return nil, dal.ErrInvalidArgument
	}
	types := make([]dal.DataType, len(h.columns))
	cols := make([]*chunkedColumn, len(h.columns))
	for c, col := range h.columns {
		types[c] = col.dtype
		fresh := allocTyped(col.dtype, n)
		for r := 0; r < n; r++ {
			setRowMajorElement(fresh, r, col.valueAt(i+r))
		}
		cols[c] = &chunkedColumn{dtype: col.dtype, chunks: []any{fresh}}
	}
	return &Heterogeneous{rows: n, columns: cols, dict: NewDictionary(types)}, nil
}

// fillSentinel fills buf with T's maximum representable value, the
// pull algorithm's sentinel for detecting malformed input (a column
// with fewer elements than declared leaves sentinel values visible in
// the output instead of silently zero-filling).
func fillSentinel(buf any, dt dal.DataType) {
	switch dt {
	case dal.Float32:
		s := buf.([]float32)
		for i := range s {
			s[i] = maxFloat32
		}
	case dal.Float64:
		s := buf.([]float64)
		for i := range s {
			s[i] = maxFloat64
		}
	case dal.Int32:
		s := buf.([]int32)
		for i := range s {
			s[i] = maxInt32
		}
	case dal.Int64:
		s := buf.([]int64)
		for i := range s {
			s[i] = maxInt64
		}
	case dal.Uint32:
		s := buf.([]uint32)
		for i := range s {
			s[i] = maxUint32
		}
	case dal.Uint64:
		s := buf.([]uint64)
		for i := range s {
			s[i] = maxUint64
		}
	}
}

const (
	maxFloat32 = 3.40282346638528859811704183484516925440e+38
	maxFloat64 = 1.797693134862315708145274237317043567981e+308
	maxInt32   = 1<<31 - 1
	maxInt64   = 1<<63 - 1
	maxUint32  = 1<<32 - 1
	maxUint64  = 1<<64 - 1
)

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

// Triangle selects which half of a symmetric matrix Packed stores.
type Triangle int

const (
	Upper Triangle = iota
	Lower
)

// Packed stores an n*n symmetric matrix as a single linear buffer
// holding only its upper or lower triangle.
type Packed struct {
	n     int
	dtype dal.DataType
	tri   Triangle
	buf   any
}

// NewPacked allocates a zeroed packed table for an n*n symmetric matrix
// of element type T, storing only the given triangle.
func NewPacked[T dal.Numeric](n int, tri Triangle) *Packed {
	return &Packed{n: n, dtype: dal.DataTypeOf[T](), tri: tri, buf: make([]T, n*(n+1)/2)}
}

func (p *Packed) RowCount() int            { return p.n }
func (p *Packed) ColumnCount() int         { return p.n }
func (p *Packed) DataType(int) dal.DataType { return p.dtype }
func (p *Packed) Layout() Layout           { return LayoutPacked }
func (p *Packed) IsAllFeaturesEqual() bool { return true }
func (p *Packed) Dictionary() *Dictionary  { return NewUniformDictionary(p.dtype) }
func (p *Packed) Triangle() Triangle       { return p.tri }

// index returns the packed-buffer offset of logical entry (r, c),
// reflecting across the diagonal if the requested half is not the one
// stored.
func (p *Packed) index(r, c int) int {
	if (p.tri == Upper && r > c) || (p.tri == Lower && r < c) {
		r, c = c, r
	}
	if p.tri == Upper {
		return r*p.n - r*(r-1)/2 + (c - r)
	}
	return r*(r+1)/2 + c
}

// Rows materializes rows [i, i+n) as a dense row-major block of type
// dt, mirroring the stored triangle to fill the implicit half.
func (p *Packed) Rows(i, n int, mode AccessMode, dt dal.DataType) (*BlockView, error) {
	if i < 0 || n < 0 {
		return nil, dal.ErrInvalidArgument
	}
	if i >= p.n {
		return emptyBlockView(dt, p.n), nil
	}
	if i+n > p.n {
		return nil, dal.ErrInvalidArgument
	}
	data := allocTyped(dt, n*p.n)
	if mode != WriteOnly {
		for r := 0; r < n; r++ {
			for c := 0; c < p.n; c++ {
				v := elementAsFloat64(p.buf, p.index(i+r, c))
				setRowMajorElement(data, r*p.n+c, v)
			}
		}
	}
	bv := &BlockView{data: data, dtype: dt, mode: mode, rowOffset: i, rowCount: n, colOffset: 0, colCount: p.n, owned: true}
	bv.scatter = func(out any) error {
		fs := toFloat64Slice(out)
		for r := 0; r < n; r++ {
			for c := 0; c < p.n; c++ {
				// Only write entries belonging to the stored triangle;
				// the mirrored half is derived, not stored.
				if (p.tri == Upper && i+r > c) || (p.tri == Lower && i+r < c) {
					continue
				}
				setRowMajorElement(p.buf, p.index(i+r, c), fs[r*p.n+c])
			}
		}
		return nil
	}
	return bv, nil
}

// ColumnValues materializes rows [i, i+n) of column c as a dense block.
func (p *Packed) ColumnValues(c, i, n int, mode AccessMode, dt dal.DataType) (*BlockView, error) {
	if c < 0 || c >= p.n || i < 0 || n < 0 {
		return nil, dal.ErrInvalidArgument
	}
	if i >= p.n {
		return emptyBlockView(dt, 1), nil
	}
	if i+n > p.n {
		return nil, dal.ErrInvalidArgument
	}
	data := allocTyped(dt, n)
	if mode != WriteOnly {
		for r := 0; r < n; r++ {
			setRowMajorElement(data, r, elementAsFloat64(p.buf, p.index(i+r, c)))
		}
	}
	bv := &BlockView{data: data, dtype: dt, mode: mode, rowOffset: i, rowCount: n, colOffset: c, colCount: 1, owned: true}
	bv.scatter = func(out any) error {
		fs := toFloat64Slice(out)
		for r, v := range fs {
			if (p.tri == Upper && i+r > c) || (p.tri == Lower && i+r < c) {
				continue
			}
			setRowMajorElement(p.buf, p.index(i+r, c), v)
		}
		return nil
	}
	return bv, nil
}

// Resize grows or shrinks the n*n symmetric matrix to rowCount*rowCount,
// preserving the overlapping leading submatrix's stored triangle.
func (p *Packed) Resize(rowCount int) error {
	if rowCount < 0 {
		return dal.ErrInvalidArgument
	}
	fresh := &Packed{n: rowCount, dtype: p.dtype, tri: p.tri, buf: allocTyped(p.dtype, rowCount*(rowCount+1)/2)}
	overlap := min(p.n, rowCount)
	for r := 0; r < overlap; r++ {
		for c := r; c < overlap; c++ {
			v := elementAsFloat64(p.buf, p.index(r, c))
			setRowMajorElement(fresh.buf, fresh.index(r, c), v)
		}
	}
	p.n = fresh.n
	p.buf = fresh.buf
	return nil
}

// SliceRows is not supported: a packed table stores only one triangle
// of a square symmetric matrix, and a sub-range of rows across every
// column is neither square nor symmetric, so it cannot be represented
// as another Packed table without a full dense conversion the Table
// protocol does not offer here.
func (p *Packed) SliceRows(i, n int) (Table, error) {
	return nil, dal.ErrUnsupportedOperation
}

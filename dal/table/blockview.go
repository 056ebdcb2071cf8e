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
	"fmt"

	"github.com/uxlfoundation/onedal-core/dal"
)

// BlockView is a scoped, possibly-converted contiguous window over a
// table's storage. Acquired by Table.Rows/ColumnValues; must be
// released exactly once, on every exit path, via Release.
type BlockView struct {
	data  any
	dtype dal.DataType
	mode  AccessMode

	rowOffset, rowCount int
	colOffset, colCount int

	// owned is true when data is a private conversion buffer rather
	// than a direct borrow into the table's storage.
	owned bool
	// scatter writes data back into the owning table's storage. Set
	// only for owned views acquired in ReadWrite/WriteOnly mode.
	scatter func(data any) error

	released bool
}

// DataType returns the element type the view was acquired as.
func (v *BlockView) DataType() dal.DataType { return v.dtype }

// Mode returns the access mode the view was acquired with.
func (v *BlockView) Mode() AccessMode { return v.mode }

// RowCount returns the number of rows in the view.
func (v *BlockView) RowCount() int { return v.rowCount }

// ColumnCount returns the number of columns in the view.
func (v *BlockView) ColumnCount() int { return v.colCount }

// Owned reports whether the view holds a private conversion buffer
// rather than borrowing the table's storage directly.
func (v *BlockView) Owned() bool { return v.owned }

// Release returns the view's resources to the table, scattering back
// any conversion buffer first when the view was acquired for writing.
// Releasing a view twice is a programming error and panics, matching
// the protocol's "detect and report as a fatal invariant violation"
// contract for double release.
func (v *BlockView) Release() error {
	if v.released {
		panic("dal/table: block view released twice")
	}
	v.released = true
	if v.scatter != nil && (v.mode == ReadWrite || v.mode == WriteOnly) {
		return v.scatter(v.data)
	}
	return nil
}

// Data returns the view's backing slice as []T. It panics if T does not
// match the view's acquired data type, which indicates a caller error:
// always request data via the same T passed to Rows/ColumnValues.
func Data[T dal.Numeric](v *BlockView) []T {
	s, ok := v.data.([]T)
	if !ok {
		panic(fmt.Sprintf("dal/table: block view holds %T, not %T", v.data, s))
	}
	return s
}

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
	"bytes"
	"fmt"

	"github.com/uxlfoundation/onedal-core/dal"
	"github.com/uxlfoundation/onedal-core/dal/serialize"
)

const denseArchiveVersion = 1

// MarshalBinary serializes the table as a versioned archive: shape,
// stored element type, and the row-major payload cast to f64. Host-native
// endianness; the archive is not portable across architectures.
func (d *Dense) MarshalBinary() ([]byte, error) {
	bv, err := d.Rows(0, d.rows, ReadOnly, dal.Float64)
	if err != nil {
		return nil, err
	}
	defer bv.Release()
	data := Data[float64](bv)

	var buf bytes.Buffer
	w := serialize.NewWriter(&buf)
	w.WriteHeader(serialize.TagDenseTable, denseArchiveVersion)
	w.WriteUint32(uint32(d.rows))
	w.WriteUint32(uint32(d.cols))
	w.WriteDataType(d.dtype)
	w.WriteFloat64s(data)
	if err := w.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", dal.ErrInternal, err)
	}
	return buf.Bytes(), nil
}

// UnmarshalDense decodes an archive produced by (*Dense).MarshalBinary
// into a fresh Dense table holding f64 elements, along with the
// originally stored element type (every value has already been
// round-tripped through f64 by MarshalBinary, so a caller that needs the
// narrower type back must cast explicitly).
func UnmarshalDense(data []byte) (*Dense, dal.DataType, error) {
	r := serialize.NewReader(bytes.NewReader(data))
	tag, version := r.ReadHeader()
	if tag != serialize.TagDenseTable {
		return nil, 0, fmt.Errorf("%w: archive tag %v, want %v", dal.ErrInvalidArgument, tag, serialize.TagDenseTable)
	}
	if version != denseArchiveVersion {
		return nil, 0, fmt.Errorf("%w: archive version %d, want %d", dal.ErrUnsupportedOperation, version, denseArchiveVersion)
	}
	rows := int(r.ReadUint32())
	cols := int(r.ReadUint32())
	dtype := r.ReadDataType()
	values := r.ReadFloat64s()
	if err := r.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", dal.ErrInternal, err)
	}
	if rows < 0 || cols < 0 || len(values) != rows*cols {
		return nil, 0, fmt.Errorf("%w: payload has %d elements, want %d", dal.ErrInvalidArgument, len(values), rows*cols)
	}
	return WrapDense[float64](rows, cols, values), dtype, nil
}

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

// Package serialize implements the versioned archive envelope partial
// results and trained models are persisted with: a {u32 tag, u32
// version, payload} header followed by caller-defined nested fields.
// Encoding uses host-native byte order; an archive written on one
// architecture is not guaranteed to read back correctly on another.
package serialize

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/uxlfoundation/onedal-core/dal"
)

// Tag identifies the kind of object an archive's header describes.
type Tag uint32

const (
	TagDenseTable Tag = iota + 1
	TagLinearPartialResult
	TagLinearTrainedModel
)

func (t Tag) String() string {
	switch t {
	case TagDenseTable:
		return "dense_table"
	case TagLinearPartialResult:
		return "linear_partial_result"
	case TagLinearTrainedModel:
		return "linear_trained_model"
	default:
		return "unknown"
	}
}

// Writer appends fixed-width fields to an underlying io.Writer in
// host-native byte order. The first write error is sticky: once set,
// every subsequent write is a no-op, so a caller can issue a sequence
// of writes and check Err once at the end.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter returns a Writer appending to w.
func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

// Err returns the first error encountered by any write call, if any.
func (w *Writer) Err() error { return w.err }

// WriteHeader writes the archive's {tag, version} pair; every archive
// must begin with exactly one header.
func (w *Writer) WriteHeader(tag Tag, version uint32) {
	w.WriteUint32(uint32(tag))
	w.WriteUint32(version)
}

// WriteUint32 appends a single u32 field.
func (w *Writer) WriteUint32(v uint32) {
	if w.err != nil {
		return
	}
	var buf [4]byte
	binary.NativeEndian.PutUint32(buf[:], v)
	_, w.err = w.w.Write(buf[:])
}

// WriteInt64 appends a single i64 field.
func (w *Writer) WriteInt64(v int64) {
	if w.err != nil {
		return
	}
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], uint64(v))
	_, w.err = w.w.Write(buf[:])
}

// WriteBool appends a boolean as a u32 0/1 field.
func (w *Writer) WriteBool(v bool) {
	var u uint32
	if v {
		u = 1
	}
	w.WriteUint32(u)
}

// WriteDataType appends a DataType tag as a u32 field.
func (w *Writer) WriteDataType(dt dal.DataType) {
	w.WriteUint32(uint32(dt))
}

// WriteFloat64s appends a length-prefixed sequence of f64 values.
func (w *Writer) WriteFloat64s(vals []float64) {
	w.WriteUint32(uint32(len(vals)))
	if w.err != nil {
		return
	}
	for _, v := range vals {
		var buf [8]byte
		binary.NativeEndian.PutUint64(buf[:], math.Float64bits(v))
		if _, w.err = w.w.Write(buf[:]); w.err != nil {
			return
		}
	}
}

// Reader reads fixed-width fields from an underlying io.Reader in
// host-native byte order, mirroring Writer's sticky-error convention:
// once a read fails, every subsequent read is a no-op returning the
// zero value, so a caller can issue a sequence of reads and check Err
// once at the end.
type Reader struct {
	r   io.Reader
	err error
}

// NewReader returns a Reader consuming from r.
func NewReader(r io.Reader) *Reader { return &Reader{r: r} }

// Err returns the first error encountered by any read call, if any.
func (r *Reader) Err() error { return r.err }

// ReadHeader reads the archive's {tag, version} pair.
func (r *Reader) ReadHeader() (Tag, uint32) {
	tag := Tag(r.ReadUint32())
	version := r.ReadUint32()
	return tag, version
}

// ReadUint32 reads a single u32 field.
func (r *Reader) ReadUint32() uint32 {
	if r.err != nil {
		return 0
	}
	var buf [4]byte
	if _, r.err = io.ReadFull(r.r, buf[:]); r.err != nil {
		return 0
	}
	return binary.NativeEndian.Uint32(buf[:])
}

// ReadInt64 reads a single i64 field.
func (r *Reader) ReadInt64() int64 {
	if r.err != nil {
		return 0
	}
	var buf [8]byte
	if _, r.err = io.ReadFull(r.r, buf[:]); r.err != nil {
		return 0
	}
	return int64(binary.NativeEndian.Uint64(buf[:]))
}

// ReadBool reads a boolean stored as a u32 0/1 field.
func (r *Reader) ReadBool() bool {
	return r.ReadUint32() != 0
}

// ReadDataType reads a DataType tag stored as a u32 field.
func (r *Reader) ReadDataType() dal.DataType {
	return dal.DataType(r.ReadUint32())
}

// ReadFloat64s reads a length-prefixed sequence of f64 values.
func (r *Reader) ReadFloat64s() []float64 {
	n := r.ReadUint32()
	if r.err != nil {
		return nil
	}
	vals := make([]float64, n)
	for i := range vals {
		var buf [8]byte
		if _, r.err = io.ReadFull(r.r, buf[:]); r.err != nil {
			return nil
		}
		vals[i] = math.Float64frombits(binary.NativeEndian.Uint64(buf[:]))
	}
	return vals
}

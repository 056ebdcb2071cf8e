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

package dal

import "fmt"

// DataType enumerates the element types a table column can hold. Every
// type has a fixed byte size and a cast to every other type, used by the
// block-access protocol to coerce between stored and requested
// representations.
type DataType int

const (
	Float32 DataType = iota
	Float64
	Int32
	Int64
	Uint32
	Uint64
)

// String returns the canonical name of the data type.
func (d DataType) String() string {
	switch d {
	case Float32:
		return "f32"
	case Float64:
		return "f64"
	case Int32:
		return "i32"
	case Int64:
		return "i64"
	case Uint32:
		return "u32"
	case Uint64:
		return "u64"
	default:
		return "unknown"
	}
}

// Size returns the byte size of one element of the data type.
func (d DataType) Size() int {
	switch d {
	case Float32, Int32, Uint32:
		return 4
	case Float64, Int64, Uint64:
		return 8
	default:
		return 0
	}
}

// Numeric is the set of Go types the table and kernel layers operate on,
// covering every element type a column dictionary can name.
type Numeric interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint32 | ~uint64
}

// DataTypeOf returns the DataType tag corresponding to the Go type
// parameter T. It panics if T is not one of the Numeric alternatives,
// which would indicate a programming error (an unregistered element
// type), not a recoverable condition.
func DataTypeOf[T Numeric]() DataType {
	var zero T
	switch any(zero).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int32:
		return Int32
	case int64:
		return Int64
	case uint32:
		return Uint32
	case uint64:
		return Uint64
	default:
		panic(fmt.Sprintf("dal: unregistered data type %T", zero))
	}
}

// Cast converts a single value stored in a float64 carrier to a value of
// data type dt, returned in the same carrier: integer types truncate
// toward zero and Float32 rounds to the nearest float32. Tables store
// heterogeneous columns as their native Go slices and convert through
// their own per-type helpers; no code in the module calls Cast.
func Cast(dt DataType, v float64) float64 {
	switch dt {
	case Int32:
		return float64(int32(v))
	case Int64:
		return float64(int64(v))
	case Uint32:
		return float64(uint32(v))
	case Uint64:
		return float64(uint64(v))
	case Float32:
		return float64(float32(v))
	case Float64:
		return v
	default:
		return v
	}
}

// CastTo converts src, interpreted as the Go type S, into the Go type D
// through a float64 intermediate. This backs the block-access protocol's
// automatic type coercion between a table's stored element type and a
// kernel's requested access type.
func CastTo[S, D Numeric](src S) D {
	return D(float64(src))
}

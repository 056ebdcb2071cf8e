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

// Package dal holds the process-wide primitives shared by every other
// package in the module: ISA-level dispatch, the data-type registry, and
// the sentinel error kinds every fallible operation returns.
package dal

import "errors"

// Sentinel error kinds. Every fallible operation in the module returns one
// of these (optionally wrapped with context via fmt.Errorf("%w", ...)), so
// callers branch with errors.Is rather than on error strings.
var (
	// ErrInvalidArgument signals a malformed or out-of-range argument,
	// e.g. a column index beyond a table's column count.
	ErrInvalidArgument = errors.New("dal: invalid argument")

	// ErrOutOfMemory signals an allocation failure, e.g. a block view's
	// conversion buffer could not be allocated.
	ErrOutOfMemory = errors.New("dal: out of memory")

	// ErrInternal signals a consistency violation or a failed numerical
	// step that is not attributable to caller input, e.g. a non-positive
	// -definite matrix surfacing from Cholesky factorization.
	ErrInternal = errors.New("dal: internal error")

	// ErrUnsupportedOperation signals a request a backend has not
	// implemented, e.g. a cast between two data types with no registered
	// conversion.
	ErrUnsupportedOperation = errors.New("dal: unsupported operation")

	// ErrCollectiveFailed signals that a distributed compute's allreduce
	// collaborator returned an error.
	ErrCollectiveFailed = errors.New("dal: collective failed")

	// ErrTopologyUnavailable signals that CPU topology probing failed;
	// callers degrade to defaults rather than fail outright.
	ErrTopologyUnavailable = errors.New("dal: topology unavailable")
)

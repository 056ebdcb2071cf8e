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

// Package svm implements the working-set kernel value cache used by a
// decomposition-method SVM solver: a bounded (blockSize, lineSize)
// matrix of kernel values between the current working set and the full
// training set, refreshed incrementally as the working set changes
// between outer iterations.
package svm

import (
	"fmt"

	"github.com/uxlfoundation/onedal-core/dal"
	"github.com/uxlfoundation/onedal-core/dal/profiler"
	"github.com/uxlfoundation/onedal-core/dal/table"
)

// KernelFunc computes the kernel value matrix between a block of rows
// gathered by working-set index and the full training set. wsBlock has
// shape (rows, p); trainingSet has shape (n, p); out has shape
// (rows, n), row-major.
type KernelFunc func(wsBlock []float64, rows int, trainingSet []float64, n int, out []float64)

// Cache holds the kernel values for a working set of size blockSize
// against a fixed training set of lineSize rows. A solver calls Compute
// once per outer iteration to refresh the cache against the current
// working-set index list, and CopyLastToFirst between iterations when
// only the trailing half of the working set has changed — the common
// case for a decomposition method that keeps half its working set from
// the previous iteration.
type Cache struct {
	blockSize, lineSize, numFeatures int
	trainingSet                      []float64 // lineSize x numFeatures, row-major
	xBlock                           []float64 // blockSize x numFeatures scratch, gathered rows
	values                           []float64 // blockSize x lineSize kernel values
	nSelectRows                      int
	ifComputeSubKernel               bool
	kernel                           KernelFunc
}

// NewCache allocates a cache for a working set of blockSize rows
// against a training set of lineSize rows with numFeatures columns.
// trainingSet is held by reference, not copied; the caller must not
// mutate it for the cache's lifetime.
func NewCache(blockSize, lineSize, numFeatures int, trainingSet []float64, kernel KernelFunc) (*Cache, error) {
	if blockSize <= 0 || lineSize <= 0 || numFeatures <= 0 {
		return nil, fmt.Errorf("%w: blockSize, lineSize and numFeatures must be positive", dal.ErrInvalidArgument)
	}
	if len(trainingSet) != lineSize*numFeatures {
		return nil, fmt.Errorf("%w: trainingSet has %d elements, want %d", dal.ErrInvalidArgument, len(trainingSet), lineSize*numFeatures)
	}
	if kernel == nil {
		return nil, fmt.Errorf("%w: kernel must not be nil", dal.ErrInvalidArgument)
	}
	return &Cache{
		blockSize:   blockSize,
		lineSize:    lineSize,
		numFeatures: numFeatures,
		trainingSet: trainingSet,
		xBlock:      make([]float64, blockSize*numFeatures),
		values:      make([]float64, blockSize*lineSize),
		kernel:      kernel,
	}, nil
}

// Compute refreshes the cache rows in [nSelectRows, blockSize) by
// gathering the training rows named by wsIndices[nSelectRows:blockSize]
// and running the kernel function against the full training set. Rows
// below nSelectRows are left untouched, so a prior CopyLastToFirst's
// carried-over rows survive across calls.
func (c *Cache) Compute(wsIndices []int) error {
	if len(wsIndices) != c.blockSize {
		return fmt.Errorf("%w: wsIndices has %d entries, want %d", dal.ErrInvalidArgument, len(wsIndices), c.blockSize)
	}
	for i := c.nSelectRows; i < c.blockSize; i++ {
		row := wsIndices[i]
		if row < 0 || row >= c.lineSize {
			return fmt.Errorf("%w: wsIndices[%d] = %d out of range [0, %d)", dal.ErrInvalidArgument, i, row, c.lineSize)
		}
		copy(c.xBlock[i*c.numFeatures:(i+1)*c.numFeatures], c.trainingSet[row*c.numFeatures:(row+1)*c.numFeatures])
	}

	rows := c.blockSize - c.nSelectRows
	if rows == 0 {
		c.ifComputeSubKernel = false
		return nil
	}

	task := profiler.Instance().Start("svm.Cache.Compute")
	defer task.End()

	block := c.xBlock[c.nSelectRows*c.numFeatures : c.blockSize*c.numFeatures]
	out := c.values[c.nSelectRows*c.lineSize : c.blockSize*c.lineSize]
	c.kernel(block, rows, c.trainingSet, c.lineSize, out)
	c.ifComputeSubKernel = false
	return nil
}

// NewCacheFromTable is NewCache for a training set held as a
// table.Table rather than an already-flat, already-owned slice: it
// acquires a read-only row block over the whole table, copies it into a
// cache-owned buffer (the acquired view is released before returning,
// so the cache cannot hold a dangling reference into the table's
// backing storage), and builds the cache from that copy.
func NewCacheFromTable(blockSize, numFeatures int, trainingSet table.Table, kernel KernelFunc) (*Cache, error) {
	lineSize := trainingSet.RowCount()
	if trainingSet.ColumnCount() != numFeatures {
		return nil, fmt.Errorf("%w: trainingSet has %d columns, want %d", dal.ErrInvalidArgument, trainingSet.ColumnCount(), numFeatures)
	}

	view, err := trainingSet.Rows(0, lineSize, table.ReadOnly, dal.Float64)
	if err != nil {
		return nil, err
	}
	defer view.Release()

	owned := append([]float64(nil), table.Data[float64](view)...)
	return NewCache(blockSize, lineSize, numFeatures, owned, kernel)
}

// CopyLastToFirst shifts the cache's second half into its first half
// and marks that only the second half needs regathering and
// recomputation on the next Compute call. After this call, the first
// blockSize/2 * lineSize cache entries correspond to whichever
// working-set rows the caller keeps in the front half of its next
// wsIndices argument — the convention a decomposition solver uses to
// carry surviving working-set members across an outer iteration.
func (c *Cache) CopyLastToFirst() {
	half := c.blockSize / 2
	copy(c.values[:half*c.lineSize], c.values[half*c.lineSize:])
	copy(c.xBlock[:half*c.numFeatures], c.xBlock[half*c.numFeatures:])
	c.nSelectRows = half
	c.ifComputeSubKernel = true
}

// Values returns the cache's full (blockSize, lineSize) row-major
// kernel value matrix.
func (c *Cache) Values() []float64 { return c.values }

// NumSelectRows reports how many leading rows currently hold data
// carried over from a prior CopyLastToFirst rather than freshly
// computed by the most recent Compute call.
func (c *Cache) NumSelectRows() int { return c.nSelectRows }

// ComputedSubKernel reports whether the most recent state transition
// was a CopyLastToFirst not yet followed by a Compute call.
func (c *Cache) ComputedSubKernel() bool { return c.ifComputeSubKernel }

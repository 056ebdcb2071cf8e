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

package threader

import "sync"

// ScalablePool is a size-bucketed allocator for hot-path scratch buffers
// that must not serialize on the runtime's global allocator under
// concurrent use. Every linear-model thread-local accumulator is
// obtained from a ScalablePool rather than a bare make([]float64, n) so
// repeated update calls across many parallel-for iterations reuse
// buffers instead of pressuring the GC.
type ScalablePool[T any] struct {
	pools sync.Map // size (int) -> *sync.Pool
}

// NewScalablePool creates an empty pool. The zero value is also usable.
func NewScalablePool[T any]() *ScalablePool[T] {
	return &ScalablePool[T]{}
}

// Get returns a slice of length n, its contents zeroed, either freshly
// allocated or recycled from a prior Put of the same size.
func (p *ScalablePool[T]) Get(n int) []T {
	bucket := p.bucketFor(n)
	if v := bucket.Get(); v != nil {
		buf := v.([]T)
		clear(buf)
		return buf
	}
	return make([]T, n)
}

// Put returns buf to the pool for reuse by a future Get of the same
// length. Callers must not use buf after calling Put.
func (p *ScalablePool[T]) Put(buf []T) {
	if len(buf) == 0 {
		return
	}
	p.bucketFor(len(buf)).Put(buf)
}

func (p *ScalablePool[T]) bucketFor(n int) *sync.Pool {
	if v, ok := p.pools.Load(n); ok {
		return v.(*sync.Pool)
	}
	bucket := &sync.Pool{
		New: func() any { return make([]T, n) },
	}
	actual, _ := p.pools.LoadOrStore(n, bucket)
	return actual.(*sync.Pool)
}

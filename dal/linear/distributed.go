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

package linear

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/uxlfoundation/onedal-core/dal"
	"github.com/uxlfoundation/onedal-core/dal/threader"
)

// Allreduce sums vec elementwise across every participating rank and
// returns the identical global sum every rank must see. The distributed
// driver assumes the collective is reliable and delivers its result in
// order; a returned error fails the whole compute with ErrCollectiveFailed.
type Allreduce func(vec []float64) ([]float64, error)

// Shard is one rank's row-partitioned local input.
type Shard struct {
	X, Y                         []float64
	N, NumFeatures, NumResponses int
}

// TrainDistributed runs Update independently over each shard (in
// parallel across ranks), combines every rank's local (xtx, xty) into a
// single global sum, passes it through allreduce once, then finalizes
// every rank's accumulator against that identical global sum, so every
// rank returns the same model bit-for-bit. The global sum adds the
// per-shard xtx/xty in shard order, which is not the summation order of
// a single-shot Update over all rows; the two results are bit-identical
// when those sums are exact (for example, integer-valued data) and
// otherwise agree only to floating-point rounding.
func TrainDistributed(pool *threader.Pool, shards []Shard, intercept bool, alpha float64, allreduce Allreduce) ([]*TrainedModel, error) {
	if len(shards) == 0 {
		return nil, fmt.Errorf("%w: no shards", dal.ErrInvalidArgument)
	}

	partials := make([]*PartialResult, len(shards))
	g := new(errgroup.Group)
	for i, shard := range shards {
		i, shard := i, shard
		g.Go(func() error {
			pr := NewPartialResult()
			if err := pr.Update(pool, shard.X, shard.Y, shard.N, shard.NumFeatures, shard.NumResponses, intercept); err != nil {
				return err
			}
			partials[i] = pr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pPrime := partials[0].pPrime
	r := partials[0].nResponses
	combined := make([]float64, flattenSize(pPrime, r))
	for _, pr := range partials {
		pr.flattenInto(combined)
	}

	global, err := allreduce(combined)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dal.ErrCollectiveFailed, err)
	}

	models := make([]*TrainedModel, len(shards))
	for i, pr := range partials {
		pr.unflattenFrom(global)
		m, err := pr.Finalize(alpha)
		if err != nil {
			return nil, err
		}
		models[i] = m
	}
	return models, nil
}

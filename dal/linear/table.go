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

	"github.com/uxlfoundation/onedal-core/dal"
	"github.com/uxlfoundation/onedal-core/dal/table"
	"github.com/uxlfoundation/onedal-core/dal/threader"
)

// UpdateIntoTable is UpdateWithDescriptor for callers holding x/y as
// table.Table rather than raw row-major slices: it acquires a ReadOnly
// float64 view of each whole table, feeds the borrowed or converted
// backing slice into pr's UpdateWithDescriptor, and releases both views
// before returning. Repeated calls across multiple table-backed batches
// accumulate into the same pr, same as repeated Update calls do.
func UpdateIntoTable(pr *PartialResult, pool *threader.Pool, x, y table.Table, desc Descriptor) error {
	n := x.RowCount()
	if y.RowCount() != n {
		return fmt.Errorf("%w: x has %d rows, y has %d", dal.ErrInvalidArgument, n, y.RowCount())
	}
	nFeatures := x.ColumnCount()
	nResponses := y.ColumnCount()

	xView, err := x.Rows(0, n, table.ReadOnly, dal.Float64)
	if err != nil {
		return err
	}
	defer xView.Release()
	yView, err := y.Rows(0, n, table.ReadOnly, dal.Float64)
	if err != nil {
		return err
	}
	defer yView.Release()

	return pr.UpdateWithDescriptor(pool, table.Data[float64](xView), table.Data[float64](yView), n, nFeatures, nResponses, desc)
}

// PredictTable is PredictWithDescriptor for a table.Table input: it
// acquires a ReadOnly float64 view of x's whole row range, predicts
// against the borrowed or converted slice, and releases the view before
// returning.
func PredictTable(pool *threader.Pool, model *TrainedModel, x table.Table, desc Descriptor) ([]float64, error) {
	n := x.RowCount()
	xView, err := x.Rows(0, n, table.ReadOnly, dal.Float64)
	if err != nil {
		return nil, err
	}
	defer xView.Release()

	return PredictWithDescriptor(pool, model, table.Data[float64](xView), n, desc)
}

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

// ResultOptions is a bitset selecting which parts of a trained model a
// caller wants populated. Finalize always fills in coefficients and the
// intercept; ResultDiagnostics is the only bit that changes what it
// computes.
type ResultOptions uint32

const (
	// ResultCoefficients requests the per-feature coefficient matrix.
	ResultCoefficients ResultOptions = 1 << iota
	// ResultIntercept requests the intercept term (only meaningful when
	// the model was trained with one).
	ResultIntercept
	// ResultDiagnostics requests Diagnostics on the returned model:
	// per-response residual sum of squares, obtained from the solved
	// coefficients and the accumulator's xty/ytyDiag without revisiting
	// the training rows.
	ResultDiagnostics
)

// Has reports whether every bit set in want is also set in o.
func (o ResultOptions) Has(want ResultOptions) bool { return o&want == want }

// Descriptor bundles a training run's hyperparameters as plain struct
// fields with documented defaults, following the teacher's pattern of
// exported tunable constants (MinPackedParallelOps, PackedRowsPerStrip)
// rather than a config file or flag parser.
type Descriptor struct {
	// ComputeIntercept requests an intercept column augmented onto X'.
	ComputeIntercept bool
	// Alpha is the ridge penalty added to the diagonal at Finalize; 0
	// disables regularization.
	Alpha float64
	// ResultOptions selects which parts of the trained model to
	// populate. Zero value defaults to coefficients + intercept.
	ResultOptions ResultOptions

	// CPUMacroBlock is the row-block size PredictWithDescriptor splits
	// rows into for its blocked GEMM; zero falls back to predictRowBlock.
	// Update's blocking is set by CPUGrainSize instead.
	CPUMacroBlock int
	// CPUGrainSize is the minimum unit of work handed to a threader
	// worker before it checks back in.
	CPUGrainSize int
	// CPUMaxColsBatched is carried on the Descriptor with a default of
	// DefaultCPUMaxColsBatched; no function in this package reads it, and
	// Predict's GEMM handles all response columns in one pass.
	CPUMaxColsBatched int
	// CPUSmallRowsThreshold: below this row count, Update and Predict
	// run serially rather than paying parallel-dispatch overhead.
	CPUSmallRowsThreshold int
	// CPUSmallRowsMaxColsBatched is carried on the Descriptor with a
	// default of DefaultCPUSmallRowsMaxColsBatched; like CPUMaxColsBatched,
	// no function in this package reads it.
	CPUSmallRowsMaxColsBatched int
}

// Default hyperparameter values. CPUGrainSize/CPUMacroBlock match the
// blocked-update/predict constants already in use; the small-rows and
// batching knobs are conservative defaults chosen to only kick in well
// below a single threader grain.
const (
	DefaultCPUMacroBlock              = predictRowBlock
	DefaultCPUGrainSize               = defaultUpdateGrain
	DefaultCPUMaxColsBatched          = 128
	DefaultCPUSmallRowsThreshold      = 256
	DefaultCPUSmallRowsMaxColsBatched = 32
)

// DefaultDescriptor returns a Descriptor with every hyperparameter set
// to its documented default: intercept enabled, no regularization,
// coefficients and intercept (not diagnostics) in the result.
func DefaultDescriptor() Descriptor {
	return Descriptor{
		ComputeIntercept:           true,
		Alpha:                      0,
		ResultOptions:              ResultCoefficients | ResultIntercept,
		CPUMacroBlock:              DefaultCPUMacroBlock,
		CPUGrainSize:               DefaultCPUGrainSize,
		CPUMaxColsBatched:          DefaultCPUMaxColsBatched,
		CPUSmallRowsThreshold:      DefaultCPUSmallRowsThreshold,
		CPUSmallRowsMaxColsBatched: DefaultCPUSmallRowsMaxColsBatched,
	}
}

// grainSize returns d's configured grain, or the package default when d
// is the zero value (CPUGrainSize unset).
func (d Descriptor) grainSize() int {
	if d.CPUGrainSize > 0 {
		return d.CPUGrainSize
	}
	return DefaultCPUGrainSize
}

// Diagnostics holds optional training diagnostics, populated on a
// TrainedModel only when Descriptor.ResultOptions requests
// ResultDiagnostics.
type Diagnostics struct {
	// ResidualSumOfSquares is, per response column, ||y - X*betas||^2
	// against the training data accumulated into xtx/xty/ytyDiag.
	ResidualSumOfSquares []float64
}

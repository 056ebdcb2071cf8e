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
	"bytes"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/uxlfoundation/onedal-core/dal"
	"github.com/uxlfoundation/onedal-core/dal/serialize"
)

// archiveVersion 2 added the ytyDiag payload tail used for residual-sum-
// of-squares diagnostics; version 1 archives are no longer readable.
const archiveVersion = 2

// MarshalBinary serializes the accumulator's sufficient statistics (P',
// feature/response counts, intercept flag, observation count, and the
// xtx/xty payload) as a versioned archive. Only an accumulating
// accumulator can be serialized.
func (p *PartialResult) MarshalBinary() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateAccumulating {
		return nil, fmt.Errorf("%w: cannot serialize a %s accumulator", dal.ErrInvalidArgument, p.state)
	}

	flat := make([]float64, flattenSize(p.pPrime, p.nResponses))
	p.flattenInto(flat)

	var buf bytes.Buffer
	w := serialize.NewWriter(&buf)
	w.WriteHeader(serialize.TagLinearPartialResult, archiveVersion)
	w.WriteUint32(uint32(p.pPrime))
	w.WriteUint32(uint32(p.nFeatures))
	w.WriteUint32(uint32(p.nResponses))
	w.WriteBool(p.intercept)
	w.WriteInt64(p.nObservations)
	w.WriteFloat64s(flat)
	if err := w.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", dal.ErrInternal, err)
	}
	return buf.Bytes(), nil
}

// UnmarshalPartialResult decodes an archive produced by
// (*PartialResult).MarshalBinary into a fresh accumulator in the
// accumulating state, ready for further Update/Merge calls or Finalize.
func UnmarshalPartialResult(data []byte) (*PartialResult, error) {
	r := serialize.NewReader(bytes.NewReader(data))
	tag, version := r.ReadHeader()
	if tag != serialize.TagLinearPartialResult {
		return nil, fmt.Errorf("%w: archive tag %v, want %v", dal.ErrInvalidArgument, tag, serialize.TagLinearPartialResult)
	}
	if version != archiveVersion {
		return nil, fmt.Errorf("%w: archive version %d, want %d", dal.ErrUnsupportedOperation, version, archiveVersion)
	}

	pPrime := int(r.ReadUint32())
	nFeatures := int(r.ReadUint32())
	nResponses := int(r.ReadUint32())
	intercept := r.ReadBool()
	nObservations := r.ReadInt64()
	flat := r.ReadFloat64s()
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", dal.ErrInternal, err)
	}
	want := flattenSize(pPrime, nResponses)
	if pPrime <= 0 || nResponses <= 0 || len(flat) != want {
		return nil, fmt.Errorf("%w: payload has %d elements, want %d", dal.ErrInvalidArgument, len(flat), want)
	}

	p := &PartialResult{
		state:         StateAccumulating,
		pPrime:        pPrime,
		nFeatures:     nFeatures,
		nResponses:    nResponses,
		intercept:     intercept,
		nObservations: nObservations,
		xtx:           mat.NewSymDense(pPrime, nil),
		xty:           mat.NewDense(pPrime, nResponses, nil),
		ytyDiag:       make([]float64, nResponses),
	}
	p.unflattenFrom(flat)
	return p, nil
}

// MarshalBinary serializes the trained model (feature/response counts,
// intercept flag, observation count, and the row-major beta matrix) as a
// versioned archive.
func (m *TrainedModel) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	w := serialize.NewWriter(&buf)
	w.WriteHeader(serialize.TagLinearTrainedModel, archiveVersion)
	w.WriteUint32(uint32(m.nFeatures))
	w.WriteUint32(uint32(m.nResponses))
	w.WriteBool(m.intercept)
	w.WriteInt64(m.nObservations)
	w.WriteFloat64s(m.Betas())
	if err := w.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", dal.ErrInternal, err)
	}
	return buf.Bytes(), nil
}

// UnmarshalTrainedModel decodes an archive produced by
// (*TrainedModel).MarshalBinary.
func UnmarshalTrainedModel(data []byte) (*TrainedModel, error) {
	r := serialize.NewReader(bytes.NewReader(data))
	tag, version := r.ReadHeader()
	if tag != serialize.TagLinearTrainedModel {
		return nil, fmt.Errorf("%w: archive tag %v, want %v", dal.ErrInvalidArgument, tag, serialize.TagLinearTrainedModel)
	}
	if version != archiveVersion {
		return nil, fmt.Errorf("%w: archive version %d, want %d", dal.ErrUnsupportedOperation, version, archiveVersion)
	}

	nFeatures := int(r.ReadUint32())
	nResponses := int(r.ReadUint32())
	intercept := r.ReadBool()
	nObservations := r.ReadInt64()
	flat := r.ReadFloat64s()
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", dal.ErrInternal, err)
	}
	want := nResponses * (nFeatures + 1)
	if nResponses <= 0 || nFeatures < 0 || len(flat) != want {
		return nil, fmt.Errorf("%w: payload has %d elements, want %d", dal.ErrInvalidArgument, len(flat), want)
	}

	return &TrainedModel{
		nFeatures:     nFeatures,
		nResponses:    nResponses,
		intercept:     intercept,
		nObservations: nObservations,
		betas:         mat.NewDense(nResponses, nFeatures+1, flat),
	}, nil
}

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

import "github.com/uxlfoundation/onedal-core/dal"

// FeatureDescriptor is a column's element type, extensible with
// per-feature metadata in the future (min/max, categorical cardinality).
type FeatureDescriptor struct {
	Type dal.DataType
}

// Dictionary holds one FeatureDescriptor per column, or a single
// descriptor shared by every column when AllEqual is set.
type Dictionary struct {
	descriptors []FeatureDescriptor
	allEqual    bool
}

// NewDictionary builds a dictionary with one descriptor per column.
func NewDictionary(types []dal.DataType) *Dictionary {
	d := &Dictionary{descriptors: make([]FeatureDescriptor, len(types))}
	for i, t := range types {
		d.descriptors[i] = FeatureDescriptor{Type: t}
	}
	return d
}

// NewUniformDictionary builds an all-equal dictionary: one descriptor
// shared logically across every column of the owning table, which
// tracks the column count itself.
func NewUniformDictionary(dt dal.DataType) *Dictionary {
	return &Dictionary{
		descriptors: []FeatureDescriptor{{Type: dt}},
		allEqual:    true,
	}
}

// IsAllEqual reports whether every column shares one descriptor.
func (d *Dictionary) IsAllEqual() bool { return d.allEqual }

// Len returns the number of descriptors actually stored: 1 in all-equal
// mode, or the column count otherwise.
func (d *Dictionary) Len() int { return len(d.descriptors) }

// At returns the descriptor for column c, or the shared descriptor if
// the dictionary is in all-equal mode.
func (d *Dictionary) At(c int) FeatureDescriptor {
	if d.allEqual {
		return d.descriptors[0]
	}
	return d.descriptors[c]
}

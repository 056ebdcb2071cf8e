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

//go:build amd64

package dal

import "golang.org/x/sys/cpu"

func init() {
	if forceScalarEnv() {
		currentLevel = ISAScalar
		return
	}
	currentLevel = detectAMD64Level()
}

// detectAMD64Level probes from the highest ISA downward and stops at the
// first one the hardware reports.
func detectAMD64Level() ISALevel {
	switch {
	case cpu.X86.HasAVX512F && cpu.X86.HasAVX512VL && cpu.X86.HasAVX512BW:
		return ISAAVX512
	case cpu.X86.HasAVX2:
		return ISAAVX2
	case cpu.X86.HasSSE2:
		return ISASSE2
	default:
		return ISAScalar
	}
}

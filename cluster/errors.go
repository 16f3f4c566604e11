// Copyright 2025 Poiesic Systems
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


package cluster

import "errors"

var (
	// ErrNotFitted indicates cluster details were requested before
	// FitPredict.
	ErrNotFitted = errors.New("clusterer has not been fitted")

	// ErrLengthMismatch indicates embeddings and article ids differ in
	// length.
	ErrLengthMismatch = errors.New("embeddings and article ids must have the same length")

	// ErrInvalidMinClusterSize indicates a minimum cluster size below 2.
	ErrInvalidMinClusterSize = errors.New("minimum cluster size must be at least 2")

	// ErrInvalidMinSamples indicates a non-positive density threshold.
	ErrInvalidMinSamples = errors.New("minimum samples must be positive")
)

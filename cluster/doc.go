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


// Package cluster groups article embeddings into topics by density.
//
// Clustering runs through an ordered chain of backends fixed at
// construction time: a hierarchical mutual-reachability backend (the
// primary), a fixed-radius density fallback, and a degenerate backend
// that puts everything in one cluster. A backend failure logs and
// falls through to the next; the chain never fails as a whole.
//
// Points too sparse to join any cluster are labeled noise (-1) rather
// than forced into a group. Every point also receives an outlier score
// in [0,1]; per-cluster coherence is derived from the member scores.
package cluster

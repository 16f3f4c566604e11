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


// Package search provides hybrid keyword and semantic search over articles.
//
// The Searcher type implements a multi-stage search algorithm that combines:
//   - Keyword search using a BM25 inverted index
//   - Semantic search using vector embeddings
//   - Rank fusion (reciprocal rank or normalized weighted scores)
//
// Results from both retrieval paths are fused and ranked so callers get a
// single relevance-ordered list with the per-source scores preserved.
package search

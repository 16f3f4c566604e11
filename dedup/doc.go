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


// Package dedup detects near-duplicate articles with MinHash sketches.
//
// Documents are reduced to character 5-gram shingle sets and sketched
// into fixed-length MinHash signatures whose slot agreement estimates
// Jaccard similarity. The Detector keeps signatures for a corpus and
// finds duplicate pairs either exhaustively or through LSH banding,
// which buckets signatures band by band so only colliding documents
// are compared in full.
//
// Signatures of empty documents are a dedicated sentinel that compares
// as fully dissimilar to everything, other empty documents included;
// two blank articles are never reported as duplicates.
package dedup

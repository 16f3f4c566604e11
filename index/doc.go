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


// Package index provides an in-memory BM25 keyword index over articles.
//
// The Index type implements the Okapi BM25 ranking function with
// lowercase whitespace tokenization. Rebuilds replace the previous
// corpus atomically: a rebuild that yields no tokens leaves the prior
// index intact so searches keep working against stale data rather than
// none at all.
//
// The index is not internally synchronized. Concurrent reads of a built
// index are safe; rebuilds must be serialized by the caller.
package index

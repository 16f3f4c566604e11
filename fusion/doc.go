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


// Package fusion merges ranked result lists from independent retrieval
// signals into a single ordering.
//
// Two strategies are provided: reciprocal rank fusion, which ignores
// raw scores and combines positions, and weighted score combination,
// which min-max normalizes each list and blends the scores. Both are
// pure functions over their inputs and fully deterministic, breaking
// score ties by ascending document id.
package fusion

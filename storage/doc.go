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


// Package storage provides the storage abstraction layer for newsmill.
//
// This package defines repository interfaces that decouple storage
// implementation from business logic, so different backends (BadgerDB,
// in-memory, etc.) can be used interchangeably.
//
// # Constructor Return Type Pattern
//
// Public backend constructors return these interfaces, never their
// concrete types:
//
//	repo, err := badger.NewRepositories(path)  // storage.ArticleRepository etc.
//
// This keeps consumers decoupled from BadgerDB specifics, makes
// alternative backends drop-in and lets tests substitute in-memory
// implementations without modification.
//
// # Architecture
//
//   - Repository: operations common to every repository
//   - ArticleRepository: article CRUD, date range and recency queries,
//     vector similarity search
//   - SnapshotRepository: clustering snapshots and duplicate pairs
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and
// timeout support. Pass context.Background() for operations without
// specific timeout requirements.
package storage

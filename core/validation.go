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


package core

import (
	"fmt"
	"time"
)

// ValidateArticle validates an Article according to domain rules.
//
// Validation rules:
//   - Title or Text must be non-empty
//   - Source must not be empty
//   - PublishedAt must not be in the future
//
// NOT validated (populated by processors):
//   - Vector (can be empty until the embedding processor runs)
//   - ID (0 is valid until a content ID is derived at ingestion)
func ValidateArticle(article *Article) error {
	if article == nil {
		return fmt.Errorf("%w: article is nil", ErrInvalidArticle)
	}

	if article.Title == "" && article.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrEmptyText)
	}

	if article.Source == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrEmptySource)
	}

	if !IsValidTimestamp(article.PublishedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrInvalidTimestamp)
	}

	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
// The zero time is valid; not every feed supplies a publication date.
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}

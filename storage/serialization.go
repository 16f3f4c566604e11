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


package storage

import (
	"github.com/poiesic/newsmill/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalArticle serializes an Article to bytes.
func MarshalArticle(article *core.Article) []byte {
	buf := make([]byte, core.ArticleMUS.Size(*article))
	core.ArticleMUS.Marshal(*article, buf)
	return buf
}

// UnmarshalArticle deserializes an Article from bytes.
func UnmarshalArticle(data []byte) (*core.Article, error) {
	article, _, err := core.ArticleMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// MarshalSnapshot serializes a ClusterSnapshot to bytes.
func MarshalSnapshot(snapshot *core.ClusterSnapshot) []byte {
	buf := make([]byte, core.ClusterSnapshotMUS.Size(*snapshot))
	core.ClusterSnapshotMUS.Marshal(*snapshot, buf)
	return buf
}

// UnmarshalSnapshot deserializes a ClusterSnapshot from bytes.
func UnmarshalSnapshot(data []byte) (*core.ClusterSnapshot, error) {
	snapshot, _, err := core.ClusterSnapshotMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// MarshalDuplicatePair serializes a DuplicatePair to bytes.
func MarshalDuplicatePair(pair core.DuplicatePair) []byte {
	buf := make([]byte, core.DuplicatePairMUS.Size(pair))
	core.DuplicatePairMUS.Marshal(pair, buf)
	return buf
}

// UnmarshalDuplicatePair deserializes a DuplicatePair from bytes.
func UnmarshalDuplicatePair(data []byte) (core.DuplicatePair, error) {
	pair, _, err := core.DuplicatePairMUS.Unmarshal(data)
	return pair, err
}

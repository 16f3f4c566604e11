package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/newsmill/core"
)

// Key prefixes for different data types
const (
	articlePrefix     = "artrec"
	articleDatePrefix = "artrecd"
	snapshotPrefix    = "clusnap"
	dupPairPrefix     = "duppair"
)

// makeArticleKey generates a key for an article by ID.
func makeArticleKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", articlePrefix, id))
}

// makeArticleDateKey generates a composite key for the date index.
// Format: prefix:timestamp:id
func makeArticleDateKey(timestamp time.Time, id core.ID) []byte {
	prefix := articleDatePrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialArticleDateKey generates a partial key for date range queries.
// Format: prefix:timestamp
func makePartialArticleDateKey(timestamp time.Time) []byte {
	prefix := articleDatePrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}

// makeSnapshotKey generates a key for a clustering snapshot.
// Format: prefix:timestamp, so the newest snapshot has the largest key.
func makeSnapshotKey(createdAt time.Time) []byte {
	prefix := snapshotPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAt.UnixMicro()))
	return buf
}

// makeDupPairKey generates a key for a duplicate pair. The key carries
// both ids so re-saving the same pair overwrites it.
func makeDupPairKey(id1, id2 string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", dupPairPrefix, id1, id2))
}

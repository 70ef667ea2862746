package badger

import (
	"encoding/binary"
	"time"

	"github.com/poiesic/tm2map/core"
)

// Key prefixes for different data types
const (
	settingsKey           = "settings:current"
	snapshotLatestKey     = "snapinfo:latest"
	snapshotHistoryPrefix = "snaphist"
)

// makeSnapshotHistoryKey generates a composite key for the snapshot history.
// Format: prefix:timestamp:fingerprint
func makeSnapshotHistoryKey(loadedAt time.Time, fingerprint core.ID) []byte {
	prefixBytes := []byte(snapshotHistoryPrefix + ":")
	buf := make([]byte, len(prefixBytes)+16) // 8 bytes for timestamp + 8 bytes for fingerprint
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(loadedAt.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(fingerprint))
	return buf
}

// makePartialSnapshotHistoryKey generates a partial key for history scans.
// Format: prefix:timestamp
func makePartialSnapshotHistoryKey(loadedAt time.Time) []byte {
	prefixBytes := []byte(snapshotHistoryPrefix + ":")
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(loadedAt.UnixMicro()))
	return buf
}

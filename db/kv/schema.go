package kv

// The schema defines how board records are laid out across BoltDB buckets.
// Records that are pruned by age carry a big-endian timestamp prefix so a
// cursor walk from the first key visits them oldest first, and records
// queried per case carry the case number as a key prefix for range scans.
var (
	currentCourtsBucket        = []byte("current-courts")
	watchlistsBucket           = []byte("watchlists")
	watchlistActiveIndexBucket = []byte("watchlist-active-index")
	caseHistoryBucket          = []byte("case-history")
	caseStatisticsBucket       = []byte("case-statistics")
	devicesBucket              = []byte("devices")
	notificationLogsBucket     = []byte("notification-logs")
	snapshotsBucket            = []byte("snapshots")
)

// keySeparator splits variable-length segments inside composite keys. Court
// and case identifiers are printable upstream strings, so a NUL byte can
// never collide with their contents.
const keySeparator = byte(0x00)

func compositeKey(segments ...[]byte) []byte {
	size := 0
	for _, seg := range segments {
		size += len(seg) + 1
	}
	key := make([]byte, 0, size)
	for i, seg := range segments {
		if i > 0 {
			key = append(key, keySeparator)
		}
		key = append(key, seg...)
	}
	return key
}

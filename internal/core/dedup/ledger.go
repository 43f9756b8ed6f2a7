// Package dedup makes re-ingestion and retried writes safe to count at most
// once. The ledger tracks every (message id, request id) pair it has seen;
// events missing both identifiers collapse onto a single sentinel key and
// conservatively dedupe against each other.
package dedup

// Sentinel components used when an event carries no identifier.
const (
	NoMessageId = "no-message-id"
	NoRequestId = "no-request-id"
)

// Stats is the ledger's counter snapshot.
type Stats struct {
	TotalMessages  int `json:"total_messages"`
	DuplicateCount int `json:"duplicate_count"`
	UniqueMessages int `json:"unique_messages"`
}

// Ledger records which identity keys have been counted. The seen-key set
// grows for the lifetime of the ledger; the corpus is bounded by ingested
// files, so there is no eviction.
type Ledger struct {
	seen           map[string]struct{}
	totalMessages  int
	duplicateCount int
}

// NewLedger creates an empty deduplication ledger.
func NewLedger() *Ledger {
	return &Ledger{
		seen: make(map[string]struct{}),
	}
}

// Key builds the identity key for a (message id, request id) pair,
// substituting sentinels for missing components.
func Key(messageId, requestId string) string {
	if messageId == "" {
		messageId = NoMessageId
	}
	if requestId == "" {
		requestId = NoRequestId
	}
	return messageId + ":" + requestId
}

// IsDuplicate reports whether this identity key was seen before. The first
// occurrence records the key and counts toward total messages; every later
// occurrence only increments the duplicate counter.
func (l *Ledger) IsDuplicate(messageId, requestId string) bool {
	key := Key(messageId, requestId)
	if _, ok := l.seen[key]; ok {
		l.duplicateCount++
		return true
	}

	l.seen[key] = struct{}{}
	l.totalMessages++
	return false
}

// TotalMessages returns how many distinct first occurrences were recorded.
func (l *Ledger) TotalMessages() int {
	return l.totalMessages
}

// DuplicateCount returns how many repeat occurrences were rejected.
func (l *Ledger) DuplicateCount() int {
	return l.duplicateCount
}

// UniqueMessages returns total messages minus duplicates.
func (l *Ledger) UniqueMessages() int {
	return l.totalMessages - l.duplicateCount
}

// Stats returns the current counter snapshot.
func (l *Ledger) Stats() Stats {
	return Stats{
		TotalMessages:  l.totalMessages,
		DuplicateCount: l.duplicateCount,
		UniqueMessages: l.UniqueMessages(),
	}
}

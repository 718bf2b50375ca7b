package calllog

import (
	"sync"
	"time"

	"github.com/tradehook-lab/tradehook/internal/types"
	"github.com/tradehook-lab/tradehook/pkg/errors"
)

// MemoryLog is the in-process Log implementation. Entries live in a slice
// ordered oldest-first; because sequence indexes are dense, any page is an
// index computation plus one copy, no scan from the head.
type MemoryLog struct {
	mu      sync.RWMutex
	entries []types.CallLogEntry
	nextSeq int64
	closed  bool
	now     func() time.Time
}

// NewMemoryLog creates an empty in-memory log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{
		entries: make([]types.CallLogEntry, 0),
		nextSeq: 1,
		now:     time.Now,
	}
}

// MemoryFactory is a Factory producing in-memory logs.
func MemoryFactory(_, _ string) (Log, error) {
	return NewMemoryLog(), nil
}

// Append implements Log.
func (l *MemoryLog) Append(req types.CallRequest, resp types.CallResponse) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return 0, errors.New(errors.ErrCodeLogStoreClosed, "call log is closed")
	}

	seq := l.nextSeq
	l.nextSeq++

	l.entries = append(l.entries, types.CallLogEntry{
		Seq:       seq,
		Timestamp: l.now(),
		Request:   req,
		Response:  resp,
	})

	return seq, nil
}

// Page implements Log.
func (l *MemoryLog) Page(skip, limit int) ([]types.CallLogEntry, int64, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return nil, 0, false, errors.New(errors.ErrCodeLogStoreClosed, "call log is closed")
	}

	if skip < 0 {
		skip = 0
	}

	if limit < 0 {
		limit = 0
	}

	total := int64(len(l.entries))

	entries := make([]types.CallLogEntry, 0, limit)
	// Walk backwards from the newest entry at offset skip.
	for i := len(l.entries) - 1 - skip; i >= 0 && len(entries) < limit; i-- {
		entries = append(entries, l.entries[i])
	}

	hasMore := int64(skip+len(entries)) < total

	return entries, total, hasMore, nil
}

// Total implements Log.
func (l *MemoryLog) Total() (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return 0, errors.New(errors.ErrCodeLogStoreClosed, "call log is closed")
	}

	return int64(len(l.entries)), nil
}

// Close implements Log. Further operations fail with ErrCodeLogStoreClosed.
func (l *MemoryLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	l.entries = nil

	return nil
}

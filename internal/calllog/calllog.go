// Package calllog stores the append-only, time-ordered record of every
// webhook exchange for one strategy.
package calllog

import "github.com/tradehook-lab/tradehook/internal/types"

// Log is the per-strategy audit store. Entries are immutable once appended
// and sequence indexes are strictly increasing. Pages are served in
// reverse-chronological order (newest first).
type Log interface {
	// Append records one exchange and returns its sequence index.
	// Amortized O(1).
	Append(req types.CallRequest, resp types.CallResponse) (int64, error)
	// Page returns up to limit entries starting at offset skip from the
	// most recent entry, plus the total entry count and whether more
	// entries remain beyond this page. A skip beyond the total returns an
	// empty slice with hasMore=false, never an error. O(limit) per call.
	Page(skip, limit int) (entries []types.CallLogEntry, total int64, hasMore bool, err error)
	// Total returns the number of stored entries.
	Total() (int64, error)
	// Close releases the underlying store. Called on strategy deletion.
	Close() error
}

// Factory creates a fresh Log for a newly created strategy.
type Factory func(user, strategy string) (Log, error)

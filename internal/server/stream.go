package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/tradehook-lab/tradehook/internal/types"
	"go.uber.org/zap"
)

const (
	streamPollInterval = time.Second
	streamPageSize     = 50
	streamWriteWait    = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard is served from arbitrary origins in development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleLogStream pushes new call log entries over a websocket. The
// client receives every entry appended after it connected, oldest first,
// ordered by sequence index.
func (s *Server) handleLogStream(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	user, strategy := vars["user"], vars["strategy"]

	// Resolve before upgrading so an unknown strategy still gets a
	// proper HTTP error.
	_, total, _, err := s.engine.Logs(user, strategy, 0, 0)
	if err != nil {
		s.writeError(w, err)

		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))

		return
	}
	defer conn.Close()

	closed := make(chan struct{})

	// Reader goroutine: the client never sends data, but reading is how
	// close frames surface.
	go func() {
		defer close(closed)

		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				return
			}
		}
	}()

	lastSeq := total
	ticker := time.NewTicker(streamPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fresh, err := s.entriesAfter(user, strategy, lastSeq)
			if err != nil {
				return
			}

			for _, entry := range fresh {
				_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))

				if writeErr := conn.WriteJSON(entry); writeErr != nil {
					return
				}

				lastSeq = entry.Seq
			}
		}
	}
}

// entriesAfter returns entries with a sequence index above seq, oldest
// first. Pages come newest first, so it keeps paging until it crosses
// seq; a burst larger than one page still arrives complete.
func (s *Server) entriesAfter(user, strategy string, seq int64) ([]types.CallLogEntry, error) {
	var fresh []types.CallLogEntry

	skip := 0

	for {
		page, _, hasMore, err := s.engine.Logs(user, strategy, skip, streamPageSize)
		if err != nil {
			return nil, err
		}

		crossed := false

		for _, entry := range page {
			if entry.Seq <= seq {
				crossed = true

				break
			}

			fresh = append(fresh, entry)
		}

		if crossed || !hasMore || len(page) == 0 {
			break
		}

		skip += len(page)
	}

	// Newest first to oldest first.
	for i, j := 0, len(fresh)-1; i < j; i, j = i+1, j-1 {
		fresh[i], fresh[j] = fresh[j], fresh[i]
	}

	return fresh, nil
}

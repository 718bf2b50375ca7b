package calllog

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/tradehook-lab/tradehook/internal/types"
	"github.com/tradehook-lab/tradehook/pkg/errors"
)

// DuckDBLog is the Log implementation backed by a DuckDB database. Sequence
// indexes come from a database sequence, pages from an ORDER BY seq DESC
// with LIMIT/OFFSET over the primary key.
type DuckDBLog struct {
	db  *sql.DB
	sq  squirrel.StatementBuilderType
	now func() time.Time
}

// NewDuckDBLog creates a log stored at path. An empty path uses an
// in-memory database.
func NewDuckDBLog(path string) (*DuckDBLog, error) {
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorageInitFailed, "failed to open database", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeStorageInitFailed, "failed to connect to database", err)
	}

	l := &DuckDBLog{
		db:  db,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		now: time.Now,
	}

	if err := l.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return l, nil
}

// DuckDBFactory is a Factory producing one in-memory DuckDB log per strategy.
func DuckDBFactory(_, _ string) (Log, error) {
	return NewDuckDBLog("")
}

func (l *DuckDBLog) initialize() error {
	_, err := l.db.Exec(`CREATE SEQUENCE IF NOT EXISTS call_log_seq`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorageInitFailed, "failed to create sequence", err)
	}

	_, err = l.db.Exec(`
		CREATE TABLE IF NOT EXISTS call_logs (
			seq BIGINT PRIMARY KEY,
			timestamp TIMESTAMP,
			request TEXT,
			resp_status TEXT,
			resp_body TEXT
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorageInitFailed, "failed to create call_logs table", err)
	}

	return nil
}

// Append implements Log.
func (l *DuckDBLog) Append(req types.CallRequest, resp types.CallResponse) (int64, error) {
	if l == nil || l.db == nil {
		return 0, errors.New(errors.ErrCodeLogStoreClosed, "call log is closed")
	}

	var seq int64

	err := l.db.QueryRow("SELECT nextval('call_log_seq')").Scan(&seq)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeLogStoreFailed, "failed to get next sequence index", err)
	}

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeLogStoreFailed, "failed to marshal request", err)
	}

	bodyJSON, err := json.Marshal(resp.Body)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeLogStoreFailed, "failed to marshal response body", err)
	}

	insertQuery := l.sq.
		Insert("call_logs").
		Columns("seq", "timestamp", "request", "resp_status", "resp_body").
		Values(seq, l.now(), string(reqJSON), resp.Status, string(bodyJSON)).
		RunWith(l.db)

	if _, err := insertQuery.Exec(); err != nil {
		return 0, errors.Wrap(errors.ErrCodeLogStoreFailed, "failed to insert call log entry", err)
	}

	return seq, nil
}

// Page implements Log.
func (l *DuckDBLog) Page(skip, limit int) ([]types.CallLogEntry, int64, bool, error) {
	if l == nil || l.db == nil {
		return nil, 0, false, errors.New(errors.ErrCodeLogStoreClosed, "call log is closed")
	}

	if skip < 0 {
		skip = 0
	}

	if limit < 0 {
		limit = 0
	}

	total, err := l.Total()
	if err != nil {
		return nil, 0, false, err
	}

	selectQuery := l.sq.
		Select("seq", "timestamp", "request", "resp_status", "resp_body").
		From("call_logs").
		OrderBy("seq DESC").
		Offset(uint64(skip)).
		Limit(uint64(limit)).
		RunWith(l.db)

	rows, err := selectQuery.Query()
	if err != nil {
		return nil, 0, false, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query call logs", err)
	}
	defer rows.Close()

	entries := make([]types.CallLogEntry, 0, limit)

	for rows.Next() {
		var (
			entry    types.CallLogEntry
			reqJSON  string
			bodyJSON string
		)

		if err := rows.Scan(&entry.Seq, &entry.Timestamp, &reqJSON, &entry.Response.Status, &bodyJSON); err != nil {
			return nil, 0, false, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan call log row", err)
		}

		if err := json.Unmarshal([]byte(reqJSON), &entry.Request); err != nil {
			return nil, 0, false, errors.Wrap(errors.ErrCodeQueryFailed, "failed to unmarshal request", err)
		}

		if err := json.Unmarshal([]byte(bodyJSON), &entry.Response.Body); err != nil {
			return nil, 0, false, errors.Wrap(errors.ErrCodeQueryFailed, "failed to unmarshal response body", err)
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, false, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate call log rows", err)
	}

	hasMore := int64(skip+len(entries)) < total

	return entries, total, hasMore, nil
}

// Total implements Log.
func (l *DuckDBLog) Total() (int64, error) {
	if l == nil || l.db == nil {
		return 0, errors.New(errors.ErrCodeLogStoreClosed, "call log is closed")
	}

	var total int64

	err := l.sq.
		Select("COUNT(*)").
		From("call_logs").
		RunWith(l.db).
		QueryRow().
		Scan(&total)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count call logs", err)
	}

	return total, nil
}

// Close implements Log.
func (l *DuckDBLog) Close() error {
	if l == nil || l.db == nil {
		return nil
	}

	err := l.db.Close()
	l.db = nil

	return err
}

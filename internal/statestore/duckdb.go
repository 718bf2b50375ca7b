package statestore

import (
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/shopspring/decimal"
	"github.com/tradehook-lab/tradehook/internal/types"
	"github.com/tradehook-lab/tradehook/pkg/errors"
)

// DuckDBStore is the Store implementation backed by a DuckDB database.
// One row per strategy, keyed by user and name; Save upserts.
type DuckDBStore struct {
	db *sql.DB
	sq squirrel.StatementBuilderType
}

// NewDuckDBStore creates a store at path. An empty path uses an
// in-memory database.
func NewDuckDBStore(path string) (*DuckDBStore, error) {
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

	s := &DuckDBStore{
		db: db,
		sq: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := s.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return s, nil
}

func (s *DuckDBStore) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS strategies (
			usr TEXT,
			name TEXT,
			display_name TEXT,
			long_symbol TEXT,
			short_symbol TEXT,
			balance TEXT,
			balance_source TEXT,
			balance_updated_at TIMESTAMP,
			cooldown_end TIMESTAMP,
			created_at TIMESTAMP,
			updated_at TIMESTAMP,
			PRIMARY KEY (usr, name)
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorageInitFailed, "failed to create strategies table", err)
	}

	return nil
}

// Save implements Store.
func (s *DuckDBStore) Save(record Record) error {
	if s == nil || s.db == nil {
		return errors.New(errors.ErrCodeLogStoreClosed, "state store is closed")
	}

	var cooldownEnd any
	if record.CooldownEnd != nil {
		cooldownEnd = *record.CooldownEnd
	}

	insertQuery := s.sq.
		Insert("strategies").
		Options("OR REPLACE").
		Columns(
			"usr", "name", "display_name",
			"long_symbol", "short_symbol",
			"balance", "balance_source", "balance_updated_at",
			"cooldown_end", "created_at", "updated_at",
		).
		Values(
			record.User, record.Name, record.DisplayName,
			record.LongSymbol, record.ShortSymbol,
			record.Balance.String(), string(record.BalanceSource), record.BalanceUpdatedAt,
			cooldownEnd, record.CreatedAt, record.UpdatedAt,
		).
		RunWith(s.db)

	if _, err := insertQuery.Exec(); err != nil {
		return errors.Wrapf(errors.ErrCodeLogStoreFailed, err,
			"failed to save strategy state for %s/%s", record.User, record.Name)
	}

	return nil
}

// Delete implements Store.
func (s *DuckDBStore) Delete(user, name string) error {
	if s == nil || s.db == nil {
		return errors.New(errors.ErrCodeLogStoreClosed, "state store is closed")
	}

	deleteQuery := s.sq.
		Delete("strategies").
		Where(squirrel.Eq{"usr": user, "name": name}).
		RunWith(s.db)

	if _, err := deleteQuery.Exec(); err != nil {
		return errors.Wrapf(errors.ErrCodeLogStoreFailed, err,
			"failed to delete strategy state for %s/%s", user, name)
	}

	return nil
}

// LoadAll implements Store.
func (s *DuckDBStore) LoadAll() ([]Record, error) {
	if s == nil || s.db == nil {
		return nil, errors.New(errors.ErrCodeLogStoreClosed, "state store is closed")
	}

	selectQuery := s.sq.
		Select(
			"usr", "name", "display_name",
			"long_symbol", "short_symbol",
			"balance", "balance_source", "balance_updated_at",
			"cooldown_end", "created_at", "updated_at",
		).
		From("strategies").
		OrderBy("created_at", "usr", "name").
		RunWith(s.db)

	rows, err := selectQuery.Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query strategy state", err)
	}
	defer rows.Close()

	var records []Record

	for rows.Next() {
		var (
			record        Record
			balance       string
			balanceSource string
			cooldownEnd   sql.NullTime
		)

		err := rows.Scan(
			&record.User, &record.Name, &record.DisplayName,
			&record.LongSymbol, &record.ShortSymbol,
			&balance, &balanceSource, &record.BalanceUpdatedAt,
			&cooldownEnd, &record.CreatedAt, &record.UpdatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan strategy state row", err)
		}

		record.Balance, err = decimal.NewFromString(balance)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err,
				"invalid persisted balance %q for %s/%s", balance, record.User, record.Name)
		}

		record.BalanceSource = types.BalanceSource(balanceSource)

		if cooldownEnd.Valid {
			end := cooldownEnd.Time
			record.CooldownEnd = &end
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate strategy state rows", err)
	}

	return records, nil
}

// Close implements Store.
func (s *DuckDBStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil

	return err
}

var _ Store = (*DuckDBStore)(nil)

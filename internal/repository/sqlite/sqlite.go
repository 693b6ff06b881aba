package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/garnizeh/campus/internal/db"
	"github.com/garnizeh/campus/pkg/repository"
)

// SQLiteRepo implements repository.Store on top of the internal DB wrapper.
// Timestamps are stored as unix milliseconds, string lists and metadata as
// JSON text.
type SQLiteRepo struct {
	conn   *db.DB
	logger *slog.Logger
}

var _ repository.Store = (*SQLiteRepo)(nil)

func New(conn *db.DB, logger *slog.Logger) *SQLiteRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteRepo{conn: conn, logger: logger}
}

// now is truncated to the stored precision so created values compare equal
// to what a later read returns.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func encodeList(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(b), nil
}

func decodeList(s string) ([]string, error) {
	out := []string{}
	if s == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// isUnique reports whether err is a UNIQUE constraint violation.
func isUnique(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// exists runs a "SELECT 1 ... WHERE id = ?" style query inside tx.
func exists(ctx context.Context, tx *sql.Tx, table string, id int64) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup %s %d: %w", table, id, err)
	}
	return true, nil
}

// mustExist returns a NotFound error naming kind when the row is absent.
func mustExist(ctx context.Context, tx *sql.Tx, table, kind string, id int64) error {
	ok, err := exists(ctx, tx, table, id)
	if err != nil {
		return err
	}
	if !ok {
		return repository.NotFound(kind, id)
	}
	return nil
}

// uniqueField extracts the column named in a UNIQUE failure message,
// e.g. "UNIQUE constraint failed: users.email".
func uniqueField(err error) string {
	msg := err.Error()
	i := strings.LastIndex(msg, ".")
	if i < 0 || i == len(msg)-1 {
		return "value"
	}
	field := msg[i+1:]
	if j := strings.IndexAny(field, " )"); j >= 0 {
		field = field[:j]
	}
	return field
}

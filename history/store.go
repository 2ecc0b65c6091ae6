// Package history keeps a permanent, queryable record of captures in a
// SQLite database, independent of the current session file.
package history

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"clipnote/common"
	"clipnote/session"
)

const schema = `
CREATE TABLE IF NOT EXISTS captures (
	id         TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	source     TEXT NOT NULL,
	signature  TEXT NOT NULL,
	text       TEXT NOT NULL,
	detail     TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS captures_created_at ON captures(created_at);
CREATE INDEX IF NOT EXISTS captures_signature ON captures(signature);
`

// Store wraps a single database connection. The tool is a sequential poller,
// so no connection pool is needed.
type Store struct {
	conn *sqlite.Conn
	log  *zap.Logger
}

func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	flags := []sqlite.OpenFlags{sqlite.OpenReadWrite, sqlite.OpenCreate, sqlite.OpenWAL}
	if path == ":memory:" {
		flags = []sqlite.OpenFlags{sqlite.OpenReadWrite, sqlite.OpenMemory}
	}
	conn, err := sqlite.OpenConn(path, flags...)
	if err != nil {
		return nil, fmt.Errorf("unable to open history database '%s': %w", path, err)
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to prepare history schema: %w", err)
	}
	return &Store{conn: conn, log: log.Named("history")}, nil
}

func (s *Store) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Record inserts a session entry. Re-recording the same entry is harmless.
func (s *Store) Record(e session.Entry) error {
	err := sqlitex.Execute(s.conn,
		`INSERT OR REPLACE INTO captures (id, run_id, created_at, source, signature, text, detail)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{
			e.ID, e.RunID, e.CreatedAt.UnixNano(), e.Source, e.Signature, e.Text, e.Detail,
		}})
	if err != nil {
		return fmt.Errorf("unable to record capture: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. Non-positive limit means
// everything.
func (s *Store) Recent(limit int) ([]session.Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	var out []session.Entry
	err := sqlitex.Execute(s.conn,
		`SELECT id, run_id, created_at, source, signature, text, detail
		 FROM captures ORDER BY created_at DESC LIMIT ?`,
		&sqlitex.ExecOptions{
			Args: []any{limit},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				out = append(out, session.Entry{
					ID:        stmt.ColumnText(0),
					RunID:     stmt.ColumnText(1),
					CreatedAt: time.Unix(0, stmt.ColumnInt64(2)).UTC(),
					Source:    stmt.ColumnText(3),
					Signature: stmt.ColumnText(4),
					Text:      stmt.ColumnText(5),
					Detail:    stmt.ColumnText(6),
				})
				return nil
			}})
	if err != nil {
		return nil, fmt.Errorf("unable to query history: %w", err)
	}
	return out, nil
}

// FindBySignature returns all entries carrying the given signature, newest
// first. The input is normalized first, so case and surrounding whitespace
// from the command line do not matter.
func (s *Store) FindBySignature(signature string) ([]session.Entry, error) {
	normalized, err := common.NormalizeSignature(signature)
	if err != nil {
		return nil, err
	}

	var out []session.Entry
	err = sqlitex.Execute(s.conn,
		`SELECT id, run_id, created_at, source, signature, text, detail
		 FROM captures WHERE signature = ? ORDER BY created_at DESC`,
		&sqlitex.ExecOptions{
			Args: []any{normalized},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				out = append(out, session.Entry{
					ID:        stmt.ColumnText(0),
					RunID:     stmt.ColumnText(1),
					CreatedAt: time.Unix(0, stmt.ColumnInt64(2)).UTC(),
					Source:    stmt.ColumnText(3),
					Signature: stmt.ColumnText(4),
					Text:      stmt.ColumnText(5),
					Detail:    stmt.ColumnText(6),
				})
				return nil
			}})
	if err != nil {
		return nil, fmt.Errorf("unable to query history: %w", err)
	}
	return out, nil
}

// Count returns the number of stored captures.
func (s *Store) Count() (int, error) {
	var count int
	err := sqlitex.Execute(s.conn, `SELECT COUNT(*) FROM captures`,
		&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
			count = stmt.ColumnInt(0)
			return nil
		}})
	if err != nil {
		return 0, fmt.Errorf("unable to count history: %w", err)
	}
	return count, nil
}

// Prune removes everything but the newest max entries. Non-positive max keeps
// everything.
func (s *Store) Prune(max int) error {
	if max <= 0 {
		return nil
	}
	err := sqlitex.Execute(s.conn,
		`DELETE FROM captures WHERE id NOT IN
		 (SELECT id FROM captures ORDER BY created_at DESC LIMIT ?)`,
		&sqlitex.ExecOptions{Args: []any{max}})
	if err != nil {
		return fmt.Errorf("unable to prune history: %w", err)
	}
	if n := s.conn.Changes(); n > 0 {
		s.log.Debug("Pruned history", zap.Int("removed", n))
	}
	return nil
}

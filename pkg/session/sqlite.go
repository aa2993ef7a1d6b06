package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const timeFormat = time.RFC3339Nano

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	token      TEXT NOT NULL,
	version    INTEGER NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLiteStore is a Store backed by a SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string, logger *zap.Logger) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// SQLite allows one writer; serialise through a single connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	logger.Info("session store opened", zap.String("path", path))
	return &SQLiteStore{db: db, logger: logger, now: time.Now}, nil
}

func (s *SQLiteStore) Create(ctx context.Context, id, token string) (*Session, error) {
	sess := Session{ID: id, Token: token, Version: 1, UpdatedAt: s.now().UTC()}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, token, version, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		sess.ID, sess.Token, sess.Version, sess.UpdatedAt.Format(timeFormat))
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, ErrExists
	}
	s.logger.Debug("session created", zap.String("id", id))
	return &sess, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Session, error) {
	var (
		sess    Session
		updated string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, token, version, updated_at FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.Token, &sess.Version, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select session: %w", err)
	}
	if sess.UpdatedAt, err = time.Parse(timeFormat, updated); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &sess, nil
}

func (s *SQLiteStore) Update(ctx context.Context, id, token string, expected int64) (*Session, error) {
	now := s.now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET token = ?, version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		token, now.Format(timeFormat), id, expected)
	if err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return nil, err
		}
		s.logger.Debug("stale session update", zap.String("id", id), zap.Int64("expected", expected))
		return nil, ErrConflict
	}
	return &Session{ID: id, Token: token, Version: expected + 1, UpdatedAt: now}, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)

// Package prefs persists the scheduling scalars that must survive process
// restarts: poll timestamps, the daily call counter, and the limit flag.
package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	_ "modernc.org/sqlite"
)

const (
	keyLastPollAt     = "lastPollAt"
	keyNextPollAt     = "nextPollAt"
	keyCallsMadeToday = "callsMadeToday"
	keyLimitReached   = "limitReached"
	keyCallDay        = "callDay"
)

// Schedule is the persisted scheduling state, read once at startup and
// written back after every cycle.
type Schedule struct {
	LastPollAt     time.Time
	NextPollAt     time.Time
	CallsMadeToday int
	LimitReached   bool
	CallDay        string
}

// Store is a sqlite-backed key/value store for scheduling preferences.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

func New(ctx context.Context, dbPath string, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	s := &Store{db: db, log: log.With().Str("component", "prefs").Logger()}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	statements := []string{
		`PRAGMA journal_mode = WAL;`,
		`CREATE TABLE IF NOT EXISTS prefs (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate failed: %w", err)
		}
	}
	return nil
}

func (s *Store) set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO prefs (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at;`,
		key, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM prefs WHERE key = ?;`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// LoadSchedule reads the persisted scheduling state. Missing keys come back
// as zero values so a fresh database behaves like a first run.
func (s *Store) LoadSchedule(ctx context.Context) (Schedule, error) {
	var sched Schedule

	if v, ok, err := s.get(ctx, keyLastPollAt); err != nil {
		return sched, err
	} else if ok {
		sched.LastPollAt = parseTime(v)
	}
	if v, ok, err := s.get(ctx, keyNextPollAt); err != nil {
		return sched, err
	} else if ok {
		sched.NextPollAt = parseTime(v)
	}
	if v, ok, err := s.get(ctx, keyCallsMadeToday); err != nil {
		return sched, err
	} else if ok {
		sched.CallsMadeToday, _ = strconv.Atoi(v)
	}
	if v, ok, err := s.get(ctx, keyLimitReached); err != nil {
		return sched, err
	} else if ok {
		sched.LimitReached = v == "true"
	}
	if v, ok, err := s.get(ctx, keyCallDay); err != nil {
		return sched, err
	} else if ok {
		sched.CallDay = v
	}

	return sched, nil
}

// SaveSchedule writes the full scheduling state back.
func (s *Store) SaveSchedule(ctx context.Context, sched Schedule) error {
	pairs := []struct{ key, value string }{
		{keyLastPollAt, formatTime(sched.LastPollAt)},
		{keyNextPollAt, formatTime(sched.NextPollAt)},
		{keyCallsMadeToday, strconv.Itoa(sched.CallsMadeToday)},
		{keyLimitReached, strconv.FormatBool(sched.LimitReached)},
		{keyCallDay, sched.CallDay},
	}
	for _, p := range pairs {
		if err := s.set(ctx, p.key, p.value); err != nil {
			return err
		}
	}
	return nil
}

func parseTime(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

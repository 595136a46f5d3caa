// Package sqlite provides a dispatch.Store on a single SQLite file, so pending
// notifications survive between runs of the CLI and the service.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tinywideclouds/go-local-notifications/pkg/dispatch"
	"github.com/tinywideclouds/go-local-notifications/pkg/notification"
)

const busyTimeout = 5000 // milliseconds

// Store implements dispatch.Store using SQLite.
type Store struct {
	db *sql.DB
}

var _ dispatch.Store = (*Store)(nil)

// Open opens (creating if needed) the database at path and applies the schema.
// ":memory:" gives a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)", path, busyTimeout)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer keeps SQLite happy and makes :memory: a single database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := initSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// --- Settings & badge ---

func (s *Store) LoadSettings(ctx context.Context) (notification.Settings, error) {
	var (
		status             string
		alert, sound, bdge bool
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT authorization_status, allow_alert, allow_sound, allow_badge FROM settings WHERE id = 1`,
	).Scan(&status, &alert, &sound, &bdge)
	if err != nil {
		return notification.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	parsed, err := notification.ParseAuthorizationStatus(status)
	if err != nil {
		return notification.Settings{}, err
	}
	return notification.Settings{
		AuthorizationStatus: parsed,
		Options:             notification.AuthorizationOptions{Alert: alert, Sound: sound, Badge: bdge},
	}, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings notification.Settings) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE settings SET authorization_status = ?, allow_alert = ?, allow_sound = ?, allow_badge = ? WHERE id = 1`,
		settings.AuthorizationStatus.String(), settings.Options.Alert, settings.Options.Sound, settings.Options.Badge,
	)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func (s *Store) LoadBadge(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT badge_count FROM settings WHERE id = 1`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to load badge: %w", err)
	}
	return n, nil
}

func (s *Store) SaveBadge(ctx context.Context, n int) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE settings SET badge_count = ? WHERE id = 1`, n); err != nil {
		return fmt.Errorf("failed to save badge: %w", err)
	}
	return nil
}

// --- Pending ---

func (s *Store) PutPending(ctx context.Context, p notification.Pending) error {
	raw, err := json.Marshal(p.Request)
	if err != nil {
		return fmt.Errorf("failed to encode request %s: %w", p.Request.Identifier, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO pending (identifier, request, scheduled_at, fire_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(identifier) DO UPDATE SET request = excluded.request,
		     scheduled_at = excluded.scheduled_at, fire_at = excluded.fire_at`,
		p.Request.Identifier, string(raw), p.ScheduledAt.UnixNano(), p.FireAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save pending %s: %w", p.Request.Identifier, err)
	}
	return nil
}

func (s *Store) RemovePending(ctx context.Context, identifiers []string) error {
	if len(identifiers) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range identifiers {
		if _, err := tx.ExecContext(ctx, `DELETE FROM pending WHERE identifier = ?`, id); err != nil {
			return fmt.Errorf("failed to delete pending %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func (s *Store) RemoveAllPending(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pending`); err != nil {
		return fmt.Errorf("failed to delete pending: %w", err)
	}
	return nil
}

func (s *Store) ListPending(ctx context.Context) ([]notification.Pending, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT request, scheduled_at, fire_at FROM pending ORDER BY fire_at, identifier`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending: %w", err)
	}
	defer rows.Close()

	out := make([]notification.Pending, 0)
	for rows.Next() {
		var (
			raw                 string
			scheduledAt, fireAt int64
		)
		if err := rows.Scan(&raw, &scheduledAt, &fireAt); err != nil {
			return nil, fmt.Errorf("failed to scan pending: %w", err)
		}
		var req notification.Request
		if err := json.Unmarshal([]byte(raw), &req); err != nil {
			return nil, fmt.Errorf("failed to decode pending request: %w", err)
		}
		out = append(out, notification.Pending{
			Request:     req,
			ScheduledAt: time.Unix(0, scheduledAt).UTC(),
			FireAt:      time.Unix(0, fireAt).UTC(),
		})
	}
	return out, rows.Err()
}

// --- Delivered ---

func (s *Store) PutDelivered(ctx context.Context, d notification.Delivered) error {
	raw, err := json.Marshal(d.Request)
	if err != nil {
		return fmt.Errorf("failed to encode request %s: %w", d.Request.Identifier, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO delivered (identifier, request, delivered_at) VALUES (?, ?, ?)`,
		d.Request.Identifier, string(raw), d.DeliveredAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save delivered %s: %w", d.Request.Identifier, err)
	}
	return nil
}

func (s *Store) ListDelivered(ctx context.Context) ([]notification.Delivered, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT request, delivered_at FROM delivered ORDER BY delivered_at, seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to list delivered: %w", err)
	}
	defer rows.Close()

	out := make([]notification.Delivered, 0)
	for rows.Next() {
		var (
			raw string
			at  int64
		)
		if err := rows.Scan(&raw, &at); err != nil {
			return nil, fmt.Errorf("failed to scan delivered: %w", err)
		}
		var req notification.Request
		if err := json.Unmarshal([]byte(raw), &req); err != nil {
			return nil, fmt.Errorf("failed to decode delivered request: %w", err)
		}
		out = append(out, notification.Delivered{Request: req, DeliveredAt: time.Unix(0, at).UTC()})
	}
	return out, rows.Err()
}

func (s *Store) RemoveAllDelivered(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM delivered`); err != nil {
		return fmt.Errorf("failed to delete delivered: %w", err)
	}
	return nil
}

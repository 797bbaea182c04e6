// Package audit provides the append-only operation_log table: every
// write attempt against the inventory is recorded here, success or
// failure, inside or outside the write transaction.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// List pagination limits.
const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// Entry represents a single operation log row.
//
// Success entries are written inside the same transaction as the
// inventory change they describe; failure entries are written on a
// fresh pool connection after the transaction has rolled back.
type Entry struct {
	ID         string    `json:"id"`
	DeviceID   string    `json:"device_id,omitempty"`
	RackID     string    `json:"rack_id,omitempty"`
	EventType  string    `json:"event_type"`
	Success    bool      `json:"success"`
	ErrorCode  string    `json:"error_code,omitempty"`
	Message    string    `json:"message,omitempty"`
	DurationMS float64   `json:"duration_ms"`
	ClientIP   string    `json:"client_ip,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListResult contains the paginated operation log results.
type ListResult struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

// Execer is the subset of database/sql needed to insert a log entry.
// Both *sql.DB and *sql.Tx satisfy it, which lets the success path run
// inside the write transaction and the failure path run on the pool.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Repository reads and writes the operation_log table.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new operation log repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// DB returns the underlying pool for compensating writes.
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Create inserts a new operation log entry using the given execer.
// The ID and CreatedAt are generated if empty.
func (r *Repository) Create(ctx context.Context, execer Execer, entry *Entry) error {
	if entry.ID == "" {
		entry.ID = "log-" + uuid.NewString()[:8]
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	success := 0
	if entry.Success {
		success = 1
	}

	_, err := execer.ExecContext(ctx,
		`INSERT INTO operation_log (id, device_id, rack_id, event_type, success, error_code, message, duration_ms, client_ip, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		nullableString(entry.DeviceID), nullableString(entry.RackID),
		entry.EventType, success,
		nullableString(entry.ErrorCode), nullableString(entry.Message),
		entry.DurationMS,
		nullableString(entry.ClientIP),
		entry.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting operation log entry: %w", err)
	}

	return nil
}

// nullableString returns nil for empty strings, or the string otherwise.
// Used for nullable TEXT columns in SQLite.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// List returns operation log entries, most recent first.
//
// Limit defaults to 100 and is capped at 500; negative offsets are
// treated as zero.
func (r *Repository) List(ctx context.Context, limit, offset int) (*ListResult, error) {
	// Clamp pagination.
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	// Get total count.
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM operation_log").Scan(&total); err != nil {
		return nil, fmt.Errorf("counting operation log entries: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, device_id, rack_id, event_type, success, error_code, message, duration_ms, client_ip, created_at
		 FROM operation_log
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("querying operation log: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var deviceID, rackID, errorCode, message, clientIP sql.NullString
		var success int
		var createdAt string

		if err := rows.Scan(&entry.ID, &deviceID, &rackID, &entry.EventType,
			&success, &errorCode, &message, &entry.DurationMS, &clientIP, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning operation log entry: %w", err)
		}

		entry.Success = success != 0
		if deviceID.Valid {
			entry.DeviceID = deviceID.String
		}
		if rackID.Valid {
			entry.RackID = rackID.String
		}
		if errorCode.Valid {
			entry.ErrorCode = errorCode.String
		}
		if message.Valid {
			entry.Message = message.String
		}
		if clientIP.Valid {
			entry.ClientIP = clientIP.String
		}

		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing operation log timestamp %q: %w", createdAt, err)
		}
		entry.CreatedAt = t

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating operation log: %w", err)
	}

	if entries == nil {
		entries = []Entry{}
	}

	return &ListResult{
		Entries: entries,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}, nil
}

package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/rackview-core/internal/audit"
	"github.com/nerrad567/rackview-core/internal/infrastructure/logging"
)

// Event types pushed to connected clients after a committed write.
const (
	EventDeviceSaved   = "device_saved"
	EventDeviceDeleted = "device_deleted"
)

// Operation names recorded in the operation log.
const (
	opDeviceCreate = "device_create"
	opDeviceDelete = "device_delete"
)

// storageErrorCode is the error code recorded on failed write attempts.
const storageErrorCode = "X102"

// Publisher delivers committed-write events to connected clients.
// Implementations must not block; delivery is best-effort and lossy.
type Publisher interface {
	Publish(eventType string, payload any)
}

// LatencyRecorder receives wall-clock timings for write operations.
// Used for optional telemetry; a nil recorder disables it.
type LatencyRecorder interface {
	WriteOperationLatency(eventType string, durationMS float64, success bool)
}

// Service orchestrates inventory writes.
//
// Each write runs as a single transaction covering the inventory
// change and its success audit entry. Events are published only after
// the transaction commits; a rolled-back write publishes nothing and
// leaves a failure audit entry written outside the transaction.
type Service struct {
	db        *sql.DB
	repo      *SQLiteRepository
	auditLog  *audit.Repository
	publisher Publisher
	latency   LatencyRecorder
	logger    *logging.Logger
}

// NewService creates the write orchestrator.
//
// Parameters:
//   - db: Connection pool shared with the repositories
//   - repo: Inventory repository (reads and tx helpers)
//   - auditLog: Operation log writer
//   - publisher: Post-commit event sink (hub, or hub+broker composite)
//   - latency: Optional telemetry sink (nil disables)
//   - logger: Structured logger
func NewService(db *sql.DB, repo *SQLiteRepository, auditLog *audit.Repository, publisher Publisher, latency LatencyRecorder, logger *logging.Logger) *Service {
	return &Service{
		db:        db,
		repo:      repo,
		auditLog:  auditLog,
		publisher: publisher,
		latency:   latency,
		logger:    logger.With("component", "inventory"),
	}
}

// CreateDevice validates and persists a new device with its bindings.
//
// Flow: validate input (no storage touched on failure) → transaction
// (device row, bindings, success audit entry) → commit → publish
// device_saved → record latency. On storage failure the transaction is
// rolled back and a compensating failure entry is written on the pool.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - input: Device fields and address lists
//   - origin: Client address for the audit trail (may be empty)
//
// Returns:
//   - string: Generated device ID
//   - error: FieldErrors, ErrStorageFailed wrap, or nil
func (s *Service) CreateDevice(ctx context.Context, input DeviceInput, origin string) (string, error) {
	if err := ValidateDeviceInput(input); err != nil {
		return "", err
	}

	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", s.failCreate(ctx, input.RackID, origin, fmt.Errorf("starting transaction: %w", err))
	}

	summary, err := createDeviceTx(ctx, tx, input)
	if err != nil {
		tx.Rollback() //nolint:errcheck // Best effort; failure entry follows
		return "", s.failCreate(ctx, input.RackID, origin, err)
	}

	entry := &audit.Entry{
		DeviceID:   summary.ID,
		RackID:     summary.RackID,
		EventType:  opDeviceCreate,
		Success:    true,
		DurationMS: float64(time.Since(start).Microseconds()) / 1000,
		ClientIP:   origin,
	}
	if err := s.auditLog.Create(ctx, tx, entry); err != nil {
		tx.Rollback() //nolint:errcheck // Best effort; failure entry follows
		return "", s.failCreate(ctx, input.RackID, origin, err)
	}

	if err := tx.Commit(); err != nil {
		return "", s.failCreate(ctx, input.RackID, origin, fmt.Errorf("committing transaction: %w", err))
	}

	// Post-commit only: a rolled-back write must never be announced.
	s.publisher.Publish(EventDeviceSaved, summary)
	s.recordLatency(opDeviceCreate, entry.DurationMS, true)

	s.logger.Info("device created",
		"device_id", summary.ID,
		"rack_id", summary.RackID,
		"kind", summary.Kind,
		"duration_ms", entry.DurationMS,
	)
	return summary.ID, nil
}

// DeleteDevice removes a device and its bindings.
//
// An unknown device ID rolls back without an audit entry or event;
// the caller maps ErrDeviceNotFound to a 404.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - id: Device ID to delete
//   - origin: Client address for the audit trail (may be empty)
//
// Returns:
//   - error: ErrDeviceNotFound, ErrStorageFailed wrap, or nil
func (s *Service) DeleteDevice(ctx context.Context, id, origin string) error {
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.failDelete(ctx, origin, fmt.Errorf("starting transaction: %w", err))
	}

	rackID, err := deleteDeviceTx(ctx, tx, id)
	if err != nil {
		tx.Rollback() //nolint:errcheck // Best effort
		if errors.Is(err, ErrDeviceNotFound) {
			// Nothing was attempted against live data; not audited.
			return ErrDeviceNotFound
		}
		return s.failDelete(ctx, origin, err)
	}

	entry := &audit.Entry{
		DeviceID:   id,
		RackID:     rackID,
		EventType:  opDeviceDelete,
		Success:    true,
		DurationMS: float64(time.Since(start).Microseconds()) / 1000,
		ClientIP:   origin,
	}
	if err := s.auditLog.Create(ctx, tx, entry); err != nil {
		tx.Rollback() //nolint:errcheck // Best effort; failure entry follows
		return s.failDelete(ctx, origin, err)
	}

	if err := tx.Commit(); err != nil {
		return s.failDelete(ctx, origin, fmt.Errorf("committing transaction: %w", err))
	}

	s.publisher.Publish(EventDeviceDeleted, map[string]string{"id": id})
	s.recordLatency(opDeviceDelete, entry.DurationMS, true)

	s.logger.Info("device deleted",
		"device_id", id,
		"rack_id", rackID,
		"duration_ms", entry.DurationMS,
	)
	return nil
}

// failCreate writes the compensating failure entry for a create and
// wraps the cause in ErrStorageFailed.
func (s *Service) failCreate(ctx context.Context, rackID, origin string, cause error) error {
	s.auditFailure(ctx, opDeviceCreate, rackID, origin, cause)
	s.recordLatency(opDeviceCreate, 0, false)
	return fmt.Errorf("%w: %w", ErrStorageFailed, cause)
}

// failDelete writes the compensating failure entry for a delete and
// wraps the cause in ErrStorageFailed.
func (s *Service) failDelete(ctx context.Context, origin string, cause error) error {
	s.auditFailure(ctx, opDeviceDelete, "", origin, cause)
	s.recordLatency(opDeviceDelete, 0, false)
	return fmt.Errorf("%w: %w", ErrStorageFailed, cause)
}

// auditFailure records a failed write attempt on a fresh pool
// connection. The write transaction has already rolled back, so this
// entry must not ride on it.
func (s *Service) auditFailure(ctx context.Context, eventType, rackID, origin string, cause error) {
	entry := &audit.Entry{
		RackID:    rackID,
		EventType: eventType,
		Success:   false,
		ErrorCode: storageErrorCode,
		Message:   cause.Error(),
		ClientIP:  origin,
	}
	if err := s.auditLog.Create(ctx, s.db, entry); err != nil {
		// The operation outcome is already decided; losing the failure
		// entry is logged, not fatal.
		s.logger.Error("failed to record failure audit entry",
			"event_type", eventType,
			"error", err,
		)
	}
}

// recordLatency forwards a timing sample to the optional recorder.
func (s *Service) recordLatency(eventType string, durationMS float64, success bool) {
	if s.latency == nil {
		return
	}
	s.latency.WriteOperationLatency(eventType, durationMS, success)
}

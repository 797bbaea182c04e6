package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository defines the read-side interface for inventory persistence.
// Writes go through the Service, which drives a transaction across the
// unexported tx helpers below.
type Repository interface {
	// ListRacks retrieves all racks ordered by position.
	ListRacks(ctx context.Context) ([]Rack, error)

	// ListDevicesByRack retrieves all devices in a rack, oldest first,
	// with their address bindings attached.
	ListDevicesByRack(ctx context.Context, rackID string) ([]Device, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// ListRacks retrieves all racks ordered by position.
// Ties on position are broken by id so the ordering is stable.
func (r *SQLiteRepository) ListRacks(ctx context.Context) ([]Rack, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, position FROM racks ORDER BY position, id",
	)
	if err != nil {
		return nil, fmt.Errorf("querying racks: %w", err)
	}
	defer rows.Close()

	var racks []Rack
	for rows.Next() {
		var rack Rack
		if err := rows.Scan(&rack.ID, &rack.Name, &rack.Position); err != nil {
			return nil, fmt.Errorf("scanning rack: %w", err)
		}
		racks = append(racks, rack)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating racks: %w", err)
	}

	if racks == nil {
		racks = []Rack{}
	}
	return racks, nil
}

// ListDevicesByRack retrieves all devices in a rack with their bindings.
// Devices are ordered by creation time (ties broken by id); bindings
// are grouped per device in insertion order.
func (r *SQLiteRepository) ListDevicesByRack(ctx context.Context, rackID string) ([]Device, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, rack_id, kind, label, created_at
		 FROM devices
		 WHERE rack_id = ?
		 ORDER BY created_at, id`,
		rackID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	var devices []Device
	index := make(map[string]int)
	for rows.Next() {
		var d Device
		var createdAt string
		if err := rows.Scan(&d.ID, &d.RackID, &d.Kind, &d.Label, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}

		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing device timestamp %q: %w", createdAt, err)
		}
		d.CreatedAt = t
		d.IPs = []IPBinding{}
		d.MACs = []MACBinding{}

		index[d.ID] = len(devices)
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}

	if len(devices) == 0 {
		return []Device{}, nil
	}

	if err := r.attachIPBindings(ctx, rackID, devices, index); err != nil {
		return nil, err
	}
	if err := r.attachMACBindings(ctx, rackID, devices, index); err != nil {
		return nil, err
	}

	return devices, nil
}

// attachIPBindings loads IP bindings for all devices in a rack.
func (r *SQLiteRepository) attachIPBindings(ctx context.Context, rackID string, devices []Device, index map[string]int) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT i.id, i.device_id, i.address
		 FROM ip_addresses i
		 JOIN devices d ON d.id = i.device_id
		 WHERE d.rack_id = ?
		 ORDER BY i.id`,
		rackID,
	)
	if err != nil {
		return fmt.Errorf("querying ip bindings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b IPBinding
		if err := rows.Scan(&b.ID, &b.DeviceID, &b.Address); err != nil {
			return fmt.Errorf("scanning ip binding: %w", err)
		}
		if i, ok := index[b.DeviceID]; ok {
			devices[i].IPs = append(devices[i].IPs, b)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating ip bindings: %w", err)
	}
	return nil
}

// attachMACBindings loads MAC bindings for all devices in a rack.
func (r *SQLiteRepository) attachMACBindings(ctx context.Context, rackID string, devices []Device, index map[string]int) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.id, m.device_id, m.address
		 FROM mac_addresses m
		 JOIN devices d ON d.id = m.device_id
		 WHERE d.rack_id = ?
		 ORDER BY m.id`,
		rackID,
	)
	if err != nil {
		return fmt.Errorf("querying mac bindings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b MACBinding
		if err := rows.Scan(&b.ID, &b.DeviceID, &b.Address); err != nil {
			return fmt.Errorf("scanning mac binding: %w", err)
		}
		if i, ok := index[b.DeviceID]; ok {
			devices[i].MACs = append(devices[i].MACs, b)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating mac bindings: %w", err)
	}
	return nil
}

// createDeviceTx inserts a device and its bindings inside an open
// transaction. The server generates the device ID; duplicate addresses
// within a list are absorbed by INSERT OR IGNORE against the
// UNIQUE(device_id, address) constraint.
//
// A foreign-key violation (unknown rack) surfaces as a plain error and
// is handled by the caller's rollback path.
func createDeviceTx(ctx context.Context, tx *sql.Tx, input DeviceInput) (DeviceSummary, error) {
	summary := DeviceSummary{
		ID:     uuid.NewString(),
		RackID: input.RackID,
		Kind:   input.Kind,
		Label:  input.Label,
	}

	_, err := tx.ExecContext(ctx,
		"INSERT INTO devices (id, rack_id, kind, label, created_at) VALUES (?, ?, ?, ?, ?)",
		summary.ID, summary.RackID, string(summary.Kind), summary.Label,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return DeviceSummary{}, fmt.Errorf("inserting device: %w", err)
	}

	for _, entry := range input.IPs {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO ip_addresses (device_id, address) VALUES (?, ?)",
			summary.ID, entry.Address,
		); err != nil {
			return DeviceSummary{}, fmt.Errorf("inserting ip binding: %w", err)
		}
	}

	for _, entry := range input.MACs {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO mac_addresses (device_id, address) VALUES (?, ?)",
			summary.ID, entry.Address,
		); err != nil {
			return DeviceSummary{}, fmt.Errorf("inserting mac binding: %w", err)
		}
	}

	return summary, nil
}

// deleteDeviceTx removes a device and its bindings inside an open
// transaction. Returns the owning rack ID for the audit entry, or
// ErrDeviceNotFound if no such device exists.
//
// Bindings are deleted explicitly; the schema's ON DELETE CASCADE is a
// backstop, not the mechanism.
func deleteDeviceTx(ctx context.Context, tx *sql.Tx, id string) (string, error) {
	var rackID string
	err := tx.QueryRowContext(ctx,
		"SELECT rack_id FROM devices WHERE id = ?", id,
	).Scan(&rackID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrDeviceNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying device for delete: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM ip_addresses WHERE device_id = ?", id); err != nil {
		return "", fmt.Errorf("deleting ip bindings: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM mac_addresses WHERE device_id = ?", id); err != nil {
		return "", fmt.Errorf("deleting mac bindings: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM devices WHERE id = ?", id)
	if err != nil {
		return "", fmt.Errorf("deleting device: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return "", ErrDeviceNotFound
	}

	return rackID, nil
}

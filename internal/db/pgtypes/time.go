// Package pgtypes provides custom types for PostgreSQL database operations.
// Optional columns are NULL in the database and zero values in the domain
// model; the types here convert between the two.
package pgtypes

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Time maps a nullable TIMESTAMPTZ column to a time.Time whose zero value means NULL.
type Time struct {
	time.Time
}

// NewTime wraps t
func NewTime(t time.Time) Time {
	return Time{Time: t}
}

// Scan implements the sql.Scanner interface
func (t *Time) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v
		return nil
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return fmt.Errorf("failed to parse timestamp %q: %w", v, err)
		}
		t.Time = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Time", src)
	}
}

// Value implements the driver.Valuer interface
func (t Time) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.Time, nil
}

// NullUUID converts an optional UUID reference into a nullable column value
func NullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

// UUIDPtr converts a scanned nullable UUID back into an optional reference
func UUIDPtr(n uuid.NullUUID) *uuid.UUID {
	if !n.Valid {
		return nil
	}
	id := n.UUID
	return &id
}

// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers
// and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"dispatch/internal/domain/entity"
)

// Sentinel errors shared across all store implementations.
var (
	// ErrRevisionConflict is returned by Save when the persisted snapshot's
	// revision moved past the snapshot's base revision. The caller should
	// reload and retry (Update does this automatically).
	ErrRevisionConflict = errors.New("snapshot revision conflict")

	// ErrStorageExhausted is returned when a write cannot fit even after
	// every degradation tier has been applied. The write is abandoned.
	ErrStorageExhausted = errors.New("storage capacity exhausted")
)

// SnapshotStore owns the single serialized snapshot of all domain state.
//
// Load returns a usable snapshot under all circumstances: a missing or
// malformed blob yields a freshly initialized empty snapshot that is
// persisted immediately, and completed requests past the auto-retention
// window are pruned before the snapshot is handed out.
//
// Save writes the whole document atomically with optimistic concurrency.
// On capacity failure it applies the degradation ladder before giving up
// with ErrStorageExhausted.
type SnapshotStore interface {
	Load(ctx context.Context) (*entity.Snapshot, error)
	Save(ctx context.Context, snap *entity.Snapshot) error

	// Update runs a read-modify-write cycle: load, apply fn, save, with a
	// bounded retry on ErrRevisionConflict. All mutating usecases go
	// through Update so no two writers can silently clobber each other.
	Update(ctx context.Context, fn func(snap *entity.Snapshot) error) error
}

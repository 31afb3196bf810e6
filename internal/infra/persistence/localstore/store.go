// Package localstore implements the snapshot store on top of a local blob
// bucket: the entire domain state is one JSON document, read and written
// whole. It is the only component that touches storage.
package localstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"dispatch/config"
	"dispatch/internal/domain/entity"
	domainerrors "dispatch/internal/domain/errors"
	"dispatch/internal/domain/repository"
	"dispatch/internal/errors"

	"go.uber.org/fx"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/gcerrors"
)

// snapshotKey is the blob key holding the serialized document.
const snapshotKey = "snapshot.json"

// updateRetries bounds CAS retry cycles in Update.
const updateRetries = 3

// Store is the blob-backed SnapshotStore. A process-wide mutex serializes
// the probe-and-write cycle so in-process writers get true compare-and-swap;
// cross-process writers still race only on the revision probe.
type Store struct {
	mu           sync.Mutex
	bucket       *blob.Bucket
	logger       *slog.Logger
	maxBytes     int
	autoPruneAge time.Duration
	now          func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithMaxBytes caps the serialized document size; 0 disables the cap.
func WithMaxBytes(n int) Option {
	return func(s *Store) {
		s.maxBytes = n
	}
}

// WithAutoPruneAge sets the retention window applied on every Load.
func WithAutoPruneAge(age time.Duration) Option {
	return func(s *Store) {
		s.autoPruneAge = age
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewWithBucket wraps an already-open bucket. Tests use this with memblob.
func NewWithBucket(bucket *blob.Bucket, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		bucket:       bucket,
		logger:       logger,
		autoPruneAge: 48 * time.Hour,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Params holds dependencies for the store, injected by Fx.
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// New opens a fileblob bucket at the configured path and builds the store.
func New(params Params) (repository.SnapshotStore, error) {
	bucket, err := fileblob.OpenBucket(params.Config.Store.Path, &fileblob.Options{
		CreateDir: true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open store bucket at %s", params.Config.Store.Path)
	}

	store := NewWithBucket(bucket, params.Logger,
		WithMaxBytes(params.Config.Store.MaxBytes),
		WithAutoPruneAge(params.Config.Retention.AutoPruneAge),
	)

	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return errors.WithStack(bucket.Close())
		},
	})

	return store, nil
}

// Load reads the snapshot, recovering from a missing or malformed blob by
// reinitializing an empty document, and applies auto-retention. Either
// recovery or pruning re-persists immediately so the next reader sees the
// same state.
func (s *Store) Load(ctx context.Context) (*entity.Snapshot, error) {
	s.mu.Lock()
	snap, reinitialized, err := s.read(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	pruned := snap.PruneCompleted(s.now().Add(-s.autoPruneAge))
	if pruned > 0 {
		s.logger.Info("auto-pruned old completed requests",
			slog.Int("removed", pruned),
		)
	}

	if reinitialized || pruned > 0 {
		if err := s.Save(ctx, snap); err != nil {
			if !errors.Is(err, repository.ErrRevisionConflict) {
				return nil, errors.Wrap(err, "persist snapshot after load")
			}
			// A concurrent loader persisted its prune or recovery first;
			// its document is the current state, not a read failure.
			s.mu.Lock()
			snap, _, err = s.read(ctx)
			s.mu.Unlock()
			if err != nil {
				return nil, err
			}
			snap.PruneCompleted(s.now().Add(-s.autoPruneAge))
		}
	}

	return snap, nil
}

// read returns the decoded snapshot plus whether it had to be reinitialized.
// Caller holds the mutex.
func (s *Store) read(ctx context.Context) (*entity.Snapshot, bool, error) {
	data, err := s.bucket.ReadAll(ctx, snapshotKey)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return entity.NewSnapshot(), true, nil
		}

		return nil, false, domainerrors.NewStoreExecuteError(err, "read snapshot blob")
	}

	snap := &entity.Snapshot{}
	if err := json.Unmarshal(data, snap); err != nil {
		// Corrupt document: all prior data is discarded. This is loud on
		// purpose. The replacement keeps whatever revision stamp is still
		// readable so the recovery save passes the revision probe.
		s.logger.Error("persisted snapshot is malformed, reinitializing",
			slog.Int("bytes", len(data)),
			slog.Any("error", err),
		)
		fresh := entity.NewSnapshot()
		fresh.Revision = revisionOf(data)

		return fresh, true, nil
	}
	snap.Normalize()

	return snap, false, nil
}

// Save serializes and writes the whole document. The persisted revision must
// still equal the snapshot's base revision; on success the document is
// stored with revision+1 and the snapshot is advanced to match. Capacity
// failures walk the degradation ladder before surfacing
// ErrStorageExhausted.
func (s *Store) Save(ctx context.Context, snap *entity.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := snap.Revision
	persisted, err := s.persistedRevision(ctx)
	if err != nil {
		return err
	}
	if persisted != base {
		return errors.Wrapf(repository.ErrRevisionConflict,
			"base revision %d, persisted revision %d", base, persisted)
	}

	for _, tier := range ladder {
		// The first tier aliases the caller's snapshot, so every failure
		// path must restore the stashed base revision before moving on.
		shed := snap
		if tier.apply != nil {
			shed, err = cloneSnapshot(snap)
			if err != nil {
				return err
			}
			tier.apply(shed)
		}

		shed.Revision = base + 1
		data, err := json.Marshal(shed)
		if err != nil {
			snap.Revision = base

			return errors.Wrap(err, "serialize snapshot")
		}
		if s.overCapacity(data) {
			snap.Revision = base
			s.logger.Warn("snapshot exceeds storage capacity",
				slog.String("tier", tier.name),
				slog.Int("bytes", len(data)),
				slog.Int("maxBytes", s.maxBytes),
			)

			continue
		}

		if err := s.bucket.WriteAll(ctx, snapshotKey, data, nil); err != nil {
			snap.Revision = base
			if gcerrors.Code(err) == gcerrors.ResourceExhausted {
				s.logger.Warn("storage provider rejected write",
					slog.String("tier", tier.name),
					slog.Any("error", err),
				)

				continue
			}

			return domainerrors.NewStoreExecuteError(err, "write snapshot blob")
		}

		if tier.apply != nil {
			s.logger.Warn("snapshot saved after degradation shedding",
				slog.String("tier", tier.name),
			)
			// The caller's snapshot mirrors what was actually persisted.
			*snap = *shed
		} else {
			snap.Revision = shed.Revision
		}

		return nil
	}

	return errors.WithStack(repository.ErrStorageExhausted)
}

// Update runs load-mutate-save with bounded retry on revision conflicts.
func (s *Store) Update(ctx context.Context, fn func(snap *entity.Snapshot) error) error {
	var lastErr error
	for attempt := 0; attempt < updateRetries; attempt++ {
		snap, err := s.Load(ctx)
		if err != nil {
			return err
		}

		if err := fn(snap); err != nil {
			return err
		}

		err = s.Save(ctx, snap)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrRevisionConflict) {
			return err
		}
		lastErr = err
	}

	return lastErr
}

// persistedRevision decodes only the revision stamp of the stored document.
// A missing or undecodable document counts as revision 0.
func (s *Store) persistedRevision(ctx context.Context) (int64, error) {
	data, err := s.bucket.ReadAll(ctx, snapshotKey)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return 0, nil
		}

		return 0, domainerrors.NewStoreExecuteError(err, "probe snapshot revision")
	}

	return revisionOf(data), nil
}

// revisionOf decodes only the revision stamp; undecodable data counts as
// revision 0.
func revisionOf(data []byte) int64 {
	var probe struct {
		Revision int64 `json:"revision"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return 0
	}

	return probe.Revision
}

func (s *Store) overCapacity(data []byte) bool {
	return s.maxBytes > 0 && len(data) > s.maxBytes
}

// cloneSnapshot deep-copies via the JSON codec, which is also the persisted
// representation, so shedding never aliases the caller's collections.
func cloneSnapshot(snap *entity.Snapshot) (*entity.Snapshot, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, errors.Wrap(err, "clone snapshot")
	}
	clone := &entity.Snapshot{}
	if err := json.Unmarshal(data, clone); err != nil {
		return nil, errors.Wrap(err, "clone snapshot")
	}
	clone.Normalize()

	return clone, nil
}

// Package cached wraps repositories with a short-lived in-memory copy of their reads.
package cached

import (
	"context"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/simaogato/wealthflow-reports/internal/domain"
)

// SnapshotRepository keeps loaded snapshots for a fixed TTL so repeated report
// calls for the same user skip the database round-trip
type SnapshotRepository struct {
	inner domain.SnapshotRepository
	store *gocache.Cache
}

var _ domain.SnapshotRepository = (*SnapshotRepository)(nil)

// NewSnapshotRepository wraps inner; expired entries are purged every 2*ttl
func NewSnapshotRepository(inner domain.SnapshotRepository, ttl time.Duration) *SnapshotRepository {
	return &SnapshotRepository{
		inner: inner,
		store: gocache.New(ttl, 2*ttl),
	}
}

// LoadSnapshot returns the cached snapshot for userID or loads and stores it.
// Errors are never cached.
func (r *SnapshotRepository) LoadSnapshot(ctx context.Context, userID uuid.UUID) (*domain.ReportInput, error) {
	key := userID.String()
	if v, ok := r.store.Get(key); ok {
		return v.(*domain.ReportInput), nil
	}

	snapshot, err := r.inner.LoadSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	r.store.SetDefault(key, snapshot)
	return snapshot, nil
}

// Invalidate drops the snapshot of one user
func (r *SnapshotRepository) Invalidate(userID uuid.UUID) {
	r.store.Delete(userID.String())
}

// Flush drops every cached snapshot
func (r *SnapshotRepository) Flush() {
	r.store.Flush()
}

// Len returns the number of snapshots currently held, expired ones included until purged
func (r *SnapshotRepository) Len() int {
	return r.store.ItemCount()
}

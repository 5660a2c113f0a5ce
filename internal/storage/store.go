package storage

import (
	"context"
	"time"
)

// Snapshot is one saved document: its Antimony rendering plus the metadata
// needed to list and restore it.
type Snapshot struct {
	ID          string
	Label       string
	Format      string
	Location    string
	Fingerprint string
	Main        string
	Modules     []string
	CreatedAt   time.Time
	// Source is the Antimony text. It is stored snappy compressed.
	Source []byte
}

// SnapshotStore persists snapshots.
type SnapshotStore interface {
	// SaveSnapshot upserts a snapshot by ID.
	SaveSnapshot(ctx context.Context, s *Snapshot) error

	// LoadSnapshot returns the snapshot with the given ID, or the most
	// recent one carrying that label.
	LoadSnapshot(ctx context.Context, idOrLabel string) (*Snapshot, error)

	// ListSnapshots returns every snapshot without its source, newest first.
	ListSnapshots(ctx context.Context) ([]*Snapshot, error)

	DeleteSnapshot(ctx context.Context, id string) error

	Close() error
}

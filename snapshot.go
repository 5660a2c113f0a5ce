package antimony

import (
	"context"
	"fmt"
	"time"

	"antimony/internal/storage"
)

// Snapshot saves the active document in st under label. The document is
// stored as the Antimony rendering of its main module, so a restore
// reproduces every module the main module reaches.
func (s *Session) Snapshot(ctx context.Context, st storage.SnapshotStore, label string) (*storage.Snapshot, error) {
	doc, err := s.active()
	if err != nil {
		return nil, err
	}
	src, err := s.Render(FormatAntimony, "", false)
	if err != nil {
		return nil, err
	}
	closure, err := doc.Graph.Closure(doc.Graph.Main())
	if err != nil {
		return nil, s.fail(err)
	}
	snap := &storage.Snapshot{
		ID:          doc.ID.String(),
		Label:       label,
		Format:      string(doc.Format),
		Location:    doc.Location,
		Fingerprint: doc.Fingerprint,
		Main:        doc.Graph.Main(),
		Modules:     closure,
		CreatedAt:   time.Now().UTC(),
		Source:      src,
	}
	if err := st.SaveSnapshot(ctx, snap); err != nil {
		return nil, s.fail(fmt.Errorf("save snapshot: %w", err))
	}
	s.logger.Debug("saved snapshot", "id", snap.ID, "label", label, "modules", len(closure))
	return snap, nil
}

// Restore loads the snapshot with the given ID, or the newest one with that
// label, as a new document and makes it active.
func (s *Session) Restore(ctx context.Context, st storage.SnapshotStore, idOrLabel string) (int, error) {
	snap, err := st.LoadSnapshot(ctx, idOrLabel)
	if err != nil {
		return -1, s.fail(err)
	}
	idx, err := s.loadAs(FormatAntimony, snap.Source, snap.Location)
	if err != nil {
		return -1, err
	}
	s.logger.Debug("restored snapshot", "id", snap.ID, "index", idx)
	return idx, nil
}

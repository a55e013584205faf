package store

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/tidwall/buntdb"

	"github.com/andrew/juris-chat/pkg/models"
)

// SaveSnapshot appends a frozen conversation copy to the snapshot list.
// Snapshots are append-only and independent of the live history.
func (s *Store) SaveSnapshot(snap models.Snapshot) error {
	err := s.db.Update(func(tx *buntdb.Tx) error {
		snaps := s.readSnapshots(tx)
		snaps = append(snaps, snap)
		blob, err := json.Marshal(snaps)
		if err != nil {
			return err
		}
		_, _, err = tx.Set(snapshotsKey, string(blob), nil)
		return err
	})
	return errors.Wrap(err, "failed to save snapshot")
}

// ListSnapshots returns all saved snapshots in save order.
func (s *Store) ListSnapshots() ([]models.Snapshot, error) {
	var snaps []models.Snapshot
	err := s.db.View(func(tx *buntdb.Tx) error {
		snaps = s.readSnapshots(tx)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list snapshots")
	}
	return snaps, nil
}

func (s *Store) readSnapshots(tx *buntdb.Tx) []models.Snapshot {
	raw, err := tx.Get(snapshotsKey)
	if err != nil {
		return nil
	}
	var snaps []models.Snapshot
	if err := json.Unmarshal([]byte(raw), &snaps); err != nil {
		s.logger.Warn("persisted snapshots are corrupt, starting empty", "error", err)
		return nil
	}
	return snaps
}

// Package store persists conversation histories and saved snapshots in a
// local buntdb database. The whole history mapping is kept under a single
// key as one JSON blob and read-modified-written wholesale on every
// mutation. Multi-process access is last-write-wins; an accepted limitation.
package store

import (
	"encoding/json"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/tidwall/buntdb"

	"github.com/andrew/juris-chat/pkg/models"
)

const (
	historyKey   = "conversation_history"
	snapshotsKey = "saved_conversations"
)

// Store is a durable conversation store. Safe for use from a single process;
// all mutations run inside buntdb transactions.
type Store struct {
	db     *buntdb.DB
	logger *slog.Logger
}

// Open opens (or creates) the database at path. Pass ":memory:" for an
// ephemeral store.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open store at %s", path)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the persisted thread for the assistant, or an empty thread if
// none exists. Malformed persisted data is treated as absent.
func (s *Store) Load(assistantID string) (models.ConversationThread, error) {
	empty := models.ConversationThread{AssistantID: assistantID}
	var raw string
	err := s.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(historyKey)
		if err != nil {
			return err
		}
		raw = v
		return nil
	})
	if err == buntdb.ErrNotFound {
		return empty, nil
	}
	if err != nil {
		return empty, errors.Wrap(err, "failed to read conversation history")
	}
	history := s.decodeHistory(raw)
	thread, ok := history[assistantID]
	if !ok {
		return empty, nil
	}
	thread.AssistantID = assistantID
	return thread, nil
}

// Save upserts the assistant's thread. The whole history mapping is rewritten
// atomically within one transaction.
func (s *Store) Save(assistantID string, thread models.ConversationThread) error {
	thread.AssistantID = assistantID
	err := s.db.Update(func(tx *buntdb.Tx) error {
		history := s.readHistory(tx)
		history[assistantID] = thread
		blob, err := json.Marshal(history)
		if err != nil {
			return err
		}
		_, _, err = tx.Set(historyKey, string(blob), nil)
		return err
	})
	return errors.Wrap(err, "failed to save conversation history")
}

// Clear removes only the given assistant's entry; other histories are
// untouched.
func (s *Store) Clear(assistantID string) error {
	err := s.db.Update(func(tx *buntdb.Tx) error {
		history := s.readHistory(tx)
		if _, ok := history[assistantID]; !ok {
			return nil
		}
		delete(history, assistantID)
		blob, err := json.Marshal(history)
		if err != nil {
			return err
		}
		_, _, err = tx.Set(historyKey, string(blob), nil)
		return err
	})
	return errors.Wrap(err, "failed to clear conversation history")
}

// readHistory loads the full mapping inside a transaction, failing open to
// an empty history when the key is missing or the blob is corrupt.
func (s *Store) readHistory(tx *buntdb.Tx) models.ConversationHistory {
	raw, err := tx.Get(historyKey)
	if err != nil {
		return models.ConversationHistory{}
	}
	return s.decodeHistory(raw)
}

func (s *Store) decodeHistory(raw string) models.ConversationHistory {
	var history models.ConversationHistory
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		s.logger.Warn("persisted conversation history is corrupt, starting empty", "error", err)
		return models.ConversationHistory{}
	}
	if history == nil {
		history = models.ConversationHistory{}
	}
	return history
}

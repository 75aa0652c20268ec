package store

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hsboy89/NewStep/internal/domain"
	"github.com/hsboy89/NewStep/internal/ports"
)

const vocaSnapshot = "voca"

// VocaStore holds the reader's saved words. Words are unique by
// case-insensitive spelling and the whole list is persisted on every change.
type VocaStore struct {
	mu        sync.RWMutex
	words     []domain.VocabularyEntry
	snapshots ports.SnapshotStore
	logger    *slog.Logger
	now       func() time.Time
}

type vocaSnapshotData struct {
	Words []domain.VocabularyEntry `json:"words"`
}

// NewVocaStore builds an empty vocabulary store.
func NewVocaStore(snapshots ports.SnapshotStore, logger *slog.Logger) *VocaStore {
	return &VocaStore{
		snapshots: snapshots,
		logger:    logger,
		now:       time.Now,
	}
}

// Restore loads the persisted word list from a previous session.
func (s *VocaStore) Restore(ctx context.Context) error {
	if s.snapshots == nil {
		return nil
	}

	var data vocaSnapshotData
	ok, err := s.snapshots.Load(ctx, vocaSnapshot, &data)
	if err != nil {
		return err
	}
	if ok {
		s.mu.Lock()
		s.words = data.Words
		s.mu.Unlock()
	}
	return nil
}

// Words returns a copy of the saved list, insertion order.
func (s *VocaStore) Words() []domain.VocabularyEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.VocabularyEntry, len(s.words))
	copy(out, s.words)
	return out
}

// Word finds a saved entry by case-insensitive spelling.
func (s *VocaStore) Word(word string) (domain.VocabularyEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, w := range s.words {
		if strings.EqualFold(w.Word, word) {
			return w, true
		}
	}
	return domain.VocabularyEntry{}, false
}

// Add saves a word unless it already exists; SavedAt is stamped here.
// Returns false when the word was already saved.
func (s *VocaStore) Add(ctx context.Context, entry domain.VocabularyEntry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range s.words {
		if strings.EqualFold(w.Word, entry.Word) {
			return false
		}
	}

	entry.SavedAt = s.now().UTC().Format(time.RFC3339)
	s.words = append(s.words, entry)
	s.persistLocked(ctx)
	return true
}

// Remove deletes a saved word by case-insensitive spelling; returns false
// when nothing matched.
func (s *VocaStore) Remove(ctx context.Context, word string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.words[:0]
	removed := false
	for _, w := range s.words {
		if strings.EqualFold(w.Word, word) {
			removed = true
			continue
		}
		kept = append(kept, w)
	}
	s.words = kept
	if removed {
		s.persistLocked(ctx)
	}
	return removed
}

// Clear drops the whole list.
func (s *VocaStore) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.words = nil
	s.persistLocked(ctx)
}

func (s *VocaStore) persistLocked(ctx context.Context) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Save(ctx, vocaSnapshot, vocaSnapshotData{Words: s.words}); err != nil && s.logger != nil {
		s.logger.Error("persist voca snapshot", "error", err)
	}
}

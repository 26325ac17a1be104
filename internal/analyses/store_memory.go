package analyses

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps analyses in process memory. Contents are lost on restart.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]memoryEntry
	seq  uint64
	now  func() time.Time
}

type memoryEntry struct {
	result AnalysisResult
	seq    uint64
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID: make(map[string]memoryEntry),
		now:  time.Now,
	}
}

// Create stores a copy of the draft under a fresh UUID.
func (s *MemoryStore) Create(ctx context.Context, draft Draft) (AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return AnalysisResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	for {
		if _, taken := s.byID[id]; !taken {
			break
		}
		id = uuid.NewString()
	}
	s.seq++
	result := newResult(id, s.now().UTC(), draft)
	s.byID[id] = memoryEntry{result: result, seq: s.seq}
	return result.Clone(), nil
}

// Get returns an analysis by its ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return AnalysisResult{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.byID[id]
	if !ok {
		return AnalysisResult{}, ErrNotFound
	}
	return entry.result.Clone(), nil
}

// List returns the newest analyses first. Records created in the same instant keep insertion order, newest first.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	s.mu.RLock()
	entries := make([]memoryEntry, 0, len(s.byID))
	for _, entry := range s.byID {
		entries = append(entries, entry)
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.result.CreatedAt.Equal(b.result.CreatedAt) {
			return a.result.CreatedAt.After(b.result.CreatedAt)
		}
		return a.seq > b.seq
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}

	out := make([]AnalysisResult, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.result.Clone())
	}
	return out, nil
}

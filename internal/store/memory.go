package store

import (
	"context"
	"sort"
	"sync"

	"stockcaster/internal/domain"
)

// MemoryStore is an in-process artifact store. Used in tests and as an
// ephemeral backend; artifacts do not survive a restart.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Exists(_ context.Context, ticker string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[domain.NormalizeTicker(ticker)]
	return ok, nil
}

func (s *MemoryStore) Load(_ context.Context, ticker string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.data[domain.NormalizeTicker(ticker)]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (s *MemoryStore) Save(_ context.Context, ticker string, artifact []byte) error {
	b := make([]byte, len(artifact))
	copy(b, artifact)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[domain.NormalizeTicker(ticker)] = b
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tickers := make([]string, 0, len(s.data))
	for t := range s.data {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers, nil
}

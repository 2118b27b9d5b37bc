package pipeline

import (
	"context"
	"sync"
	"time"
)

// ResultStore keeps finished documents in memory so they can be
// downloaded, evicting them once they are older than the TTL.
type ResultStore struct {
	mu   sync.Mutex
	docs map[string]*Document
	ttl  time.Duration
	now  func() time.Time
}

func NewResultStore(ttl time.Duration) *ResultStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ResultStore{
		docs: make(map[string]*Document),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (s *ResultStore) Put(doc *Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
}

// Get returns nil for unknown or expired ids.
func (s *ResultStore) Get(id string) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.docs[id]
	if doc == nil || s.expired(doc) {
		return nil
	}
	return doc
}

func (s *ResultStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

// Cleanup removes expired documents.
func (s *ResultStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, doc := range s.docs {
		if s.expired(doc) {
			delete(s.docs, id)
		}
	}
}

func (s *ResultStore) expired(doc *Document) bool {
	return s.now().Sub(doc.CreatedAt) > s.ttl
}

// Run calls Cleanup every interval until ctx is done.
func (s *ResultStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}

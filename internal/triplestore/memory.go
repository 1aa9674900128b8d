// Package triplestore provides the relation sources the resolver queries:
// a fast in-memory store and a PostgreSQL-backed store, both implementing
// schemas.TripleSource.
package triplestore

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/maproute/api/schemas"
)

// InMemoryStore is an ephemeral triple store. It's great for testing, short
// lived scripts, or resolving against a mapping document loaded from disk.
type InMemoryStore struct {
	// byPredicate keeps insertion order per predicate, which keeps route
	// numbering deterministic for a given document.
	byPredicate map[string][]schemas.Pair
	ids         []string
	mu          sync.RWMutex
	log         *zap.Logger
}

var _ schemas.TripleSource = (*InMemoryStore)(nil)

// NewInMemoryStore creates a new, empty in-memory triple store.
func NewInMemoryStore(logger *zap.Logger) *InMemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryStore{
		byPredicate: make(map[string][]schemas.Pair),
		log:         logger.Named("InMemoryStore"),
	}
}

// Add asserts a triple and returns its generated id.
func (s *InMemoryStore) Add(ctx context.Context, t schemas.Triple) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.byPredicate[t.Predicate] = append(s.byPredicate[t.Predicate], schemas.Pair{Subject: t.Subject, Object: t.Object})
	s.ids = append(s.ids, id)

	s.log.Debug("Triple asserted",
		zap.String("subject", t.Subject),
		zap.String("predicate", t.Predicate),
		zap.String("object", t.Object))
	return id, nil
}

// AddAll asserts a batch of triples in order.
func (s *InMemoryStore) AddAll(ctx context.Context, triples []schemas.Triple) error {
	for _, t := range triples {
		if _, err := s.Add(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// SubjectObjects returns the (subject, object) pairs asserted under the
// predicate, in insertion order.
func (s *InMemoryStore) SubjectObjects(ctx context.Context, predicate string) ([]schemas.Pair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pairs := s.byPredicate[predicate]
	out := make([]schemas.Pair, len(pairs))
	copy(out, pairs)
	return out, nil
}

// Len returns the number of asserted triples.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

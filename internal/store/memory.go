package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AngelCh415/marketops/internal/models"
)

type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string][]models.Record
}

// NewMemoryStore copies seed so later writes never leak into the caller's maps.
func NewMemoryStore(seed map[string][]models.Record) *MemoryStore {
	s := &MemoryStore{tables: make(map[string][]models.Record, len(seed))}
	for t, recs := range seed {
		cp := make([]models.Record, 0, len(recs))
		for _, r := range recs {
			r.Fields = r.Fields.Clone()
			cp = append(cp, r)
		}
		s.tables[t] = cp
	}
	return s
}

func (s *MemoryStore) List(_ context.Context, q models.Query) ([]models.Record, error) {
	if q.Table == "" {
		return nil, ErrNoTable
	}
	s.mu.RLock()
	src := s.tables[q.Table]
	out := make([]models.Record, 0, len(src))
	for _, r := range src {
		r.Fields = r.Fields.Clone()
		out = append(out, r)
	}
	s.mu.RUnlock()

	sortRecords(out, q.SortField, q.SortDir)
	return limitRecords(out, q.Limit), nil
}

func (s *MemoryStore) Create(_ context.Context, table string, fields models.Fields) (models.Record, error) {
	if table == "" {
		return models.Record{}, ErrNoTable
	}
	r := models.Record{ID: "rec" + uuid.NewString(), Fields: fields.Clone(), CreatedTime: time.Now().UTC()}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = append(s.tables[table], r)
	return r, nil
}

package store

import (
	"context"
	"log/slog"

	"github.com/AngelCh415/marketops/internal/metrics"
	"github.com/AngelCh415/marketops/internal/models"
)

// FallbackStore reads the primary store once and substitutes the fixture
// records for the table when the read fails or comes back empty.
// There is no retry and no mixing of live and fixture rows.
type FallbackStore struct {
	primary  Store
	fixtures *MemoryStore
	log      *slog.Logger
	m        *metrics.Collectors
}

func NewFallbackStore(primary Store, fixtures *MemoryStore, log *slog.Logger, m *metrics.Collectors) *FallbackStore {
	return &FallbackStore{primary: primary, fixtures: fixtures, log: log, m: m}
}

func (s *FallbackStore) Load(ctx context.Context, q models.Query) ([]models.Record, models.Source) {
	recs, err := s.primary.List(ctx, q)
	switch {
	case err != nil:
		s.log.Warn("table read failed, using fallback", slog.String("table", q.Table), slog.String("err", err.Error()))
	case len(recs) == 0:
		s.log.Debug("table empty, using fallback", slog.String("table", q.Table))
	default:
		s.m.Load(q.Table, string(models.SourceLive))
		return recs, models.SourceLive
	}
	s.m.Load(q.Table, string(models.SourceFallback))
	fb, err := s.fixtures.List(ctx, q)
	if err != nil {
		return []models.Record{}, models.SourceFallback
	}
	return fb, models.SourceFallback
}

package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/AngelCh415/marketops/internal/metrics"
)

const (
	ModeVector = "vector"
	ModeText   = "text"

	defaultLimit     = 5
	maxLimit         = 20
	defaultThreshold = 0.7
)

var ErrEmptyQuery = errors.New("query required")

type Result struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

type Request struct {
	Query     string  `json:"query"`
	Limit     int     `json:"limit"`
	Threshold float64 `json:"threshold"`
}

type Response struct {
	Mode    string   `json:"mode"`
	Results []Result `json:"results"`
}

// Service embeds the query and asks the database for the nearest documents,
// falling back to a plain text search when either step fails.
type Service struct {
	emb  Embedder
	repo Repository
	log  *slog.Logger
	m    *metrics.Collectors
}

// NewService accepts nil emb or repo: without an embedder every search is a
// text search, without a repository every search is empty.
func NewService(emb Embedder, repo Repository, log *slog.Logger, m *metrics.Collectors) *Service {
	return &Service{emb: emb, repo: repo, log: log, m: m}
}

func (s *Service) Search(ctx context.Context, req Request) (Response, error) {
	q := strings.TrimSpace(req.Query)
	if q == "" {
		return Response{}, ErrEmptyQuery
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	threshold := req.Threshold
	if threshold <= 0 {
		threshold = defaultThreshold
	}

	if s.repo == nil {
		s.m.Search(ModeText)
		return Response{Mode: ModeText, Results: []Result{}}, nil
	}

	if s.emb != nil {
		vec, err := s.emb.Embed(ctx, q)
		if err == nil {
			res, err := s.repo.MatchDocuments(ctx, vec, threshold, limit)
			if err == nil {
				s.m.Search(ModeVector)
				return Response{Mode: ModeVector, Results: res}, nil
			}
			s.log.Warn("similarity rpc failed, using text search", slog.String("err", err.Error()))
		} else {
			s.log.Warn("embedding failed, using text search", slog.String("err", err.Error()))
		}
	}

	s.m.Search(ModeText)
	res, err := s.repo.TextSearch(ctx, q, limit)
	if err != nil {
		s.log.Error("text search failed", slog.String("err", err.Error()))
		return Response{Mode: ModeText, Results: []Result{}}, nil
	}
	return Response{Mode: ModeText, Results: res}, nil
}

package pages

import (
	"context"
	"errors"
	"log/slog"
	"net/url"

	"github.com/AngelCh415/marketops/internal/listing"
	"github.com/AngelCh415/marketops/internal/models"
	"github.com/AngelCh415/marketops/internal/webhook"
)

var ErrUnknownPage = errors.New("unknown page")

// Loader is the fetch-or-fallback read path.
type Loader interface {
	Load(ctx context.Context, q models.Query) ([]models.Record, models.Source)
}

// Automation starts the external workflow behind a page action.
type Automation interface {
	Fire(ctx context.Context, page, action string) error
}

type Data struct {
	Page   string         `json:"page"`
	Title  string         `json:"title"`
	Table  string         `json:"table"`
	Source models.Source  `json:"source"`
	Total  int            `json:"total"`
	Items  []listing.Item `json:"items"`
}

type ActionResult struct {
	Triggered bool   `json:"triggered"`
	Error     string `json:"error,omitempty"`
	Data      Data   `json:"page"`
}

type Summary struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Table string `json:"table"`
}

type Service struct {
	pages  map[string]Page
	order  []string
	loader Loader
	auto   Automation
	log    *slog.Logger
}

func NewService(pages []Page, loader Loader, auto Automation, log *slog.Logger) *Service {
	s := &Service{pages: make(map[string]Page, len(pages)), loader: loader, auto: auto, log: log}
	for _, p := range pages {
		s.pages[p.Name] = p
		s.order = append(s.order, p.Name)
	}
	return s
}

func (s *Service) List() []Summary {
	out := make([]Summary, 0, len(s.order))
	for _, n := range s.order {
		p := s.pages[n]
		out = append(out, Summary{Name: p.Name, Title: p.Title, Table: p.Table})
	}
	return out
}

// Load reads the page's table once (live or fallback), maps every record and
// applies the query-string filters.
func (s *Service) Load(ctx context.Context, name string, v url.Values) (Data, error) {
	p, ok := s.pages[name]
	if !ok {
		return Data{}, ErrUnknownPage
	}
	recs, src := s.loader.Load(ctx, p.Query())
	items := make([]listing.Item, 0, len(recs))
	for _, r := range recs {
		it := mapRecord(r, p.Fields)
		if p.Enrich != nil {
			p.Enrich(r, it)
		}
		items = append(items, it)
	}
	res := listing.Apply(items, v)
	return Data{Page: p.Name, Title: p.Title, Table: p.Table, Source: src, Total: res.Total, Items: res.Items}, nil
}

// Action fires the page automation then refetches once. A failed trigger still
// refetches; the error is reported alongside the data. Unknown actions and a
// trigger already running for the page are returned as errors.
func (s *Service) Action(ctx context.Context, name, action string, v url.Values) (ActionResult, error) {
	if _, ok := s.pages[name]; !ok {
		return ActionResult{}, ErrUnknownPage
	}
	var res ActionResult
	err := s.auto.Fire(ctx, name, action)
	switch {
	case errors.Is(err, webhook.ErrUnknownAction), errors.Is(err, webhook.ErrInFlight):
		return ActionResult{}, err
	case err != nil:
		res.Error = err.Error()
	default:
		res.Triggered = true
	}
	d, err := s.Load(ctx, name, v)
	if err != nil {
		return ActionResult{}, err
	}
	res.Data = d
	return res, nil
}

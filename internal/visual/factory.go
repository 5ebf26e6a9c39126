package visual

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/AngelCh415/marketops/internal/metrics"
	"github.com/AngelCh415/marketops/internal/models"
	"github.com/AngelCh415/marketops/internal/store"
)

const assetsTable = "Visual_Assets"

var ErrEmptyPrompt = errors.New("prompt required")

type GenerateRequest struct {
	Prompt   string `json:"prompt"`
	Format   Format `json:"format"`
	Campaign string `json:"campaign"`
}

type Generated struct {
	Match
	Prompt  string `json:"prompt"`
	AssetID string `json:"assetId,omitempty"`
	Saved   bool   `json:"saved"`
}

// Factory stands in for an image-generation model: it matches the prompt to a
// stock photo and records the asset metadata in the record store.
type Factory struct {
	matcher *Matcher
	assets  store.Store
	log     *slog.Logger
	m       *metrics.Collectors
}

func NewFactory(matcher *Matcher, assets store.Store, log *slog.Logger, m *metrics.Collectors) *Factory {
	return &Factory{matcher: matcher, assets: assets, log: log, m: m}
}

func (f *Factory) Matcher() *Matcher { return f.matcher }

// Generate never fails once the prompt is present; a failed write is logged
// and reported through Saved.
func (f *Factory) Generate(ctx context.Context, req GenerateRequest) (Generated, error) {
	p := strings.TrimSpace(req.Prompt)
	if p == "" {
		return Generated{}, ErrEmptyPrompt
	}
	m := f.matcher.Match(p, req.Format)
	f.m.Theme(m.Theme)
	out := Generated{Match: m, Prompt: p}

	rec, err := f.assets.Create(ctx, assetsTable, models.Fields{
		"Prompt":     p,
		"Format":     string(m.Format),
		"Theme":      m.Theme,
		"Image_URL":  m.URL,
		"Campaign":   req.Campaign,
		"Status":     "generated",
		"Created_At": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		f.log.Warn("visual asset write failed", slog.String("theme", m.Theme), slog.String("err", err.Error()))
		return out, nil
	}
	out.AssetID, out.Saved = rec.ID, true
	return out, nil
}

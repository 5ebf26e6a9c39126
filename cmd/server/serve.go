package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/AngelCh415/marketops/internal/assistant"
	"github.com/AngelCh415/marketops/internal/config"
	"github.com/AngelCh415/marketops/internal/fixtures"
	"github.com/AngelCh415/marketops/internal/httpx"
	"github.com/AngelCh415/marketops/internal/metrics"
	"github.com/AngelCh415/marketops/internal/models"
	"github.com/AngelCh415/marketops/internal/pages"
	"github.com/AngelCh415/marketops/internal/search"
	"github.com/AngelCh415/marketops/internal/store"
	"github.com/AngelCh415/marketops/internal/upstream"
	"github.com/AngelCh415/marketops/internal/utils"
	"github.com/AngelCh415/marketops/internal/visual"
	"github.com/AngelCh415/marketops/internal/webhook"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	seed, err := fixtures.Load()
	if err != nil {
		return err
	}
	cl := upstream.NewHTTPClient(cfg.HTTPTimeout())

	primary, closeStore, err := openStore(ctx, cfg, cl, seed)
	if err != nil {
		return err
	}
	defer closeStore()
	fb := store.NewFallbackStore(primary, store.NewMemoryStore(seed), logger, m)

	trig := webhook.NewTrigger(cl, cfg.WebhookURL, cfg.WebhookSecret, logger, m)
	pg := pages.NewService(pages.DefaultPages(), fb, trig, logger)

	chat := assistant.NewClaudeClient(cl, cfg.AnthropicAPIKey, cfg.AnthropicBaseURL, cfg.AnthropicModel)
	as := assistant.NewService(fb, chat, primary, logger, m)

	se, closeSearch := openSearch(ctx, cfg, logger, m)
	defer closeSearch()

	vm := visual.NewMatcher(visual.DefaultRegistry(), visual.FallbackTheme, visual.WithBaseURL(cfg.ImageBaseURL))
	vf := visual.NewFactory(vm, primary, logger, m)

	r := httpx.NewRouter(logger, httpx.Deps{Records: primary, Pages: pg, Assistant: as, Search: se, Visuals: vf, Metrics: m})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("port", cfg.Port), slog.String("store", cfg.StoreBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			logger.Error("server error", slog.String("err", err.Error()))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg config.Config, cl upstream.HTTPClient, seed map[string][]models.Record) (store.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendAirtable:
		return store.NewAirtableStore(cl, cfg.AirtableBaseURL, cfg.AirtableBaseID, cfg.AirtableAPIKey), func() {}, nil
	case config.BackendSQLite:
		st, err := store.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := st.Seed(ctx, seed); err != nil {
			st.Close()
			return nil, nil, fmt.Errorf("seed sqlite: %w", err)
		}
		return st, func() { st.Close() }, nil
	default:
		return store.NewMemoryStore(nil), func() {}, nil
	}
}

// openSearch wires whatever part of search is configured. A missing database
// leaves search returning empty results; a missing Gemini key leaves it on
// text search.
func openSearch(ctx context.Context, cfg config.Config, log *slog.Logger, m *metrics.Collectors) (*search.Service, func()) {
	var (
		emb  search.Embedder
		repo search.Repository
		pool *pgxpool.Pool
	)
	if cfg.GeminiAPIKey != "" {
		g, err := search.NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.GeminiEmbedModel)
		if err != nil {
			log.Warn("embeddings disabled", slog.String("err", err.Error()))
		} else {
			emb = g
		}
	}
	if cfg.SupabaseDBURL != "" {
		p, err := search.OpenPool(ctx, cfg.SupabaseDBURL)
		if err == nil {
			b := utils.NewBackoff(500*time.Millisecond, 3)
			err = b.Do(ctx, func(i int) error {
				pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
				defer cancel()
				return p.Ping(pctx)
			})
			if err != nil {
				p.Close()
			}
		}
		if err != nil {
			log.Warn("search database unavailable", slog.String("err", err.Error()))
		} else {
			pool = p
			repo = search.NewPgRepository(p, cfg.SearchTable)
		}
	}
	return search.NewService(emb, repo, log, m), func() {
		if pool != nil {
			pool.Close()
		}
	}
}

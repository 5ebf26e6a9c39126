package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/AngelCh415/marketops/internal/assistant"
	"github.com/AngelCh415/marketops/internal/metrics"
	"github.com/AngelCh415/marketops/internal/models"
	"github.com/AngelCh415/marketops/internal/pages"
	"github.com/AngelCh415/marketops/internal/search"
	"github.com/AngelCh415/marketops/internal/store"
	"github.com/AngelCh415/marketops/internal/utils"
	"github.com/AngelCh415/marketops/internal/visual"
	"github.com/AngelCh415/marketops/internal/webhook"
)

const maxBody = 1 << 20

// Deps are the services behind the routes. Metrics may be nil.
type Deps struct {
	Records   store.Store
	Pages     *pages.Service
	Assistant *assistant.Service
	Search    *search.Service
	Visuals   *visual.Factory
	Metrics   *metrics.Collectors
}

func NewRouter(log *slog.Logger, d Deps) http.Handler {
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log, d.Metrics))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	if d.Metrics != nil {
		mux.Handle("/metrics", d.Metrics.Handler())
	}

	mux.Route("/api", func(api chi.Router) {
		api.Get("/airtable", func(w http.ResponseWriter, r *http.Request) {
			v := r.URL.Query()
			limit, _ := strconv.Atoi(v.Get("limit"))
			q := models.Query{
				Table:     v.Get("table"),
				SortField: v.Get("sortField"),
				SortDir:   models.ParseSortDir(v.Get("sortDir")),
				Limit:     limit,
				View:      v.Get("view"),
			}
			if q.Table == "" {
				writeError(w, 400, store.ErrNoTable.Error())
				return
			}
			recs, err := d.Records.List(r.Context(), q)
			if err != nil {
				log.Warn("record proxy read failed", slog.String("table", q.Table), slog.String("err", err.Error()))
				writeError(w, 502, err.Error())
				return
			}
			if recs == nil {
				recs = []models.Record{}
			}
			writeJSON(w, 200, models.RecordList{Records: recs})
		})

		api.Post("/airtable", func(w http.ResponseWriter, r *http.Request) {
			table := r.URL.Query().Get("table")
			if table == "" {
				writeError(w, 400, store.ErrNoTable.Error())
				return
			}
			var body struct {
				Fields models.Fields `json:"fields"`
			}
			if !decode(w, r, &body) {
				return
			}
			if len(body.Fields) == 0 {
				writeError(w, 400, "fields required")
				return
			}
			rec, err := d.Records.Create(r.Context(), table, body.Fields)
			if err != nil {
				log.Warn("record proxy write failed", slog.String("table", table), slog.String("err", err.Error()))
				writeError(w, 502, err.Error())
				return
			}
			writeJSON(w, 201, rec)
		})

		api.Get("/pages", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 200, d.Pages.List())
		})

		api.Get("/pages/{page}", func(w http.ResponseWriter, r *http.Request) {
			data, err := d.Pages.Load(r.Context(), chi.URLParam(r, "page"), r.URL.Query())
			if errors.Is(err, pages.ErrUnknownPage) {
				writeError(w, 404, err.Error())
				return
			}
			if err != nil {
				writeError(w, 500, err.Error())
				return
			}
			writeJSON(w, 200, data)
		})

		api.Post("/pages/{page}/actions/{action}", func(w http.ResponseWriter, r *http.Request) {
			res, err := d.Pages.Action(r.Context(), chi.URLParam(r, "page"), chi.URLParam(r, "action"), r.URL.Query())
			switch {
			case errors.Is(err, pages.ErrUnknownPage):
				writeError(w, 404, err.Error())
			case errors.Is(err, webhook.ErrUnknownAction):
				writeError(w, 400, err.Error())
			case errors.Is(err, webhook.ErrInFlight):
				writeError(w, 409, err.Error())
			case err != nil:
				writeError(w, 500, err.Error())
			default:
				writeJSON(w, 200, res)
			}
		})

		api.Post("/assistant", func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				Message string `json:"message"`
			}
			if !decode(w, r, &body) {
				return
			}
			rep, err := d.Assistant.Ask(r.Context(), body.Message)
			switch {
			case errors.Is(err, assistant.ErrEmptyMessage):
				writeError(w, 400, err.Error())
			case errors.Is(err, assistant.ErrNoAPIKey):
				writeError(w, 503, "assistant unavailable")
			case err != nil:
				writeError(w, 502, "assistant failed to answer, please retry")
			default:
				writeJSON(w, 200, rep)
			}
		})

		api.Post("/search", func(w http.ResponseWriter, r *http.Request) {
			var req search.Request
			if !decode(w, r, &req) {
				return
			}
			res, err := d.Search.Search(r.Context(), req)
			if errors.Is(err, search.ErrEmptyQuery) {
				writeError(w, 400, err.Error())
				return
			}
			if err != nil {
				writeError(w, 500, err.Error())
				return
			}
			writeJSON(w, 200, res)
		})

		api.Get("/visuals/themes", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 200, map[string]any{
				"themes":   d.Visuals.Matcher().Registry(),
				"formats":  visual.Formats,
				"fallback": visual.FallbackTheme,
			})
		})

		api.Get("/visuals/match", func(w http.ResponseWriter, r *http.Request) {
			v := r.URL.Query()
			m := d.Visuals.Matcher()
			writeJSON(w, 200, map[string]any{
				"match":  m.Match(v.Get("prompt"), visual.Format(v.Get("format"))),
				"scores": m.Scores(v.Get("prompt")),
			})
		})

		api.Post("/visuals/generate", func(w http.ResponseWriter, r *http.Request) {
			var req visual.GenerateRequest
			if !decode(w, r, &req) {
				return
			}
			out, err := d.Visuals.Generate(r.Context(), req)
			if errors.Is(err, visual.ErrEmptyPrompt) {
				writeError(w, 400, err.Error())
				return
			}
			if err != nil {
				writeError(w, 500, err.Error())
				return
			}
			writeJSON(w, 200, out)
		})
	})

	return mux
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v); err != nil {
		writeError(w, 400, "bad json")
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}

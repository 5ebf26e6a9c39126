package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/marketops/internal/metrics"
	"github.com/AngelCh415/marketops/internal/models"
	"github.com/AngelCh415/marketops/internal/upstream"
)

func seed() map[string][]models.Record {
	t0 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return map[string][]models.Record{
		"Leads": {
			{ID: "recA", Fields: models.Fields{"Name": "Moana", "Score": 72.0}, CreatedTime: t0},
			{ID: "recB", Fields: models.Fields{"Name": "Teiva", "Score": 86.0}, CreatedTime: t0.Add(time.Hour)},
			{ID: "recC", Fields: models.Fields{"Name": "Hinano", "Score": "31"}, CreatedTime: t0.Add(2 * time.Hour)},
		},
	}
}

func names(recs []models.Record) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Fields.String("Name", ""))
	}
	return out
}

func TestMemoryStoreSortAndLimit(t *testing.T) {
	s := NewMemoryStore(seed())
	ctx := context.Background()

	recs, err := s.List(ctx, models.Query{Table: "Leads", SortField: "Score", SortDir: models.SortDesc})
	require.NoError(t, err)
	assert.Equal(t, []string{"Teiva", "Moana", "Hinano"}, names(recs))

	recs, err = s.List(ctx, models.Query{Table: "Leads", SortDir: models.SortAsc, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Moana", "Teiva"}, names(recs))

	_, err = s.List(ctx, models.Query{})
	assert.ErrorIs(t, err, ErrNoTable)
}

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	src := seed()
	s := NewMemoryStore(src)
	src["Leads"][0].Fields["Name"] = "changed"

	recs, _ := s.List(context.Background(), models.Query{Table: "Leads", SortDir: models.SortAsc})
	assert.Equal(t, "Moana", recs[0].Fields.String("Name", ""))
	recs[0].Fields["Name"] = "mutated"

	again, _ := s.List(context.Background(), models.Query{Table: "Leads", SortDir: models.SortAsc})
	assert.Equal(t, "Moana", again[0].Fields.String("Name", ""))
}

func TestMemoryStoreCreate(t *testing.T) {
	s := NewMemoryStore(nil)
	r, err := s.Create(context.Background(), "Visual_Assets", models.Fields{"Theme": "lagon"})
	require.NoError(t, err)
	assert.Regexp(t, `^rec`, r.ID)
	assert.False(t, r.CreatedTime.IsZero())
	recs, err := s.List(context.Background(), models.Query{Table: "Visual_Assets"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, r.ID, recs[0].ID)

	_, err = s.Create(context.Background(), "", models.Fields{})
	assert.ErrorIs(t, err, ErrNoTable)
}

type failing struct{ calls int }

func (f *failing) List(context.Context, models.Query) ([]models.Record, error) {
	f.calls++
	return nil, errors.New("boom")
}

func (f *failing) Create(context.Context, string, models.Fields) (models.Record, error) {
	return models.Record{}, errors.New("boom")
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestFallbackStore(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	fx := NewMemoryStore(seed())
	ctx := context.Background()

	f := &failing{}
	recs, src := NewFallbackStore(f, fx, quiet(), m).Load(ctx, models.Query{Table: "Leads"})
	assert.Equal(t, models.SourceFallback, src)
	assert.Len(t, recs, 3)
	assert.Equal(t, 1, f.calls, "no retry")

	recs, src = NewFallbackStore(NewMemoryStore(nil), fx, quiet(), m).Load(ctx, models.Query{Table: "Leads"})
	assert.Equal(t, models.SourceFallback, src)
	assert.Len(t, recs, 3)

	live := NewMemoryStore(map[string][]models.Record{"Leads": {{ID: "recLive", Fields: models.Fields{"Name": "Live"}}}})
	recs, src = NewFallbackStore(live, fx, quiet(), m).Load(ctx, models.Query{Table: "Leads"})
	assert.Equal(t, models.SourceLive, src)
	assert.Equal(t, []string{"Live"}, names(recs))

	recs, src = NewFallbackStore(f, fx, quiet(), m).Load(ctx, models.Query{Table: "Unknown"})
	assert.Equal(t, models.SourceFallback, src)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)

	n, err := testutil.GatherAndCount(reg, "marketops_table_loads_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n, "series: Leads/fallback, Leads/live, Unknown/fallback")
}

func TestAirtableStoreList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0/appX/Pricing_Monitor", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "Checked_At", q.Get("sort[0][field]"))
		assert.Equal(t, "desc", q.Get("sort[0][direction]"))
		assert.Equal(t, "20", q.Get("maxRecords"))
		assert.Equal(t, "Grid view", q.Get("view"))
		w.Write([]byte(`{"records":[{"id":"rec1","createdTime":"2025-03-01T10:00:00.000Z","fields":{"Route":"PPT-LAX","Our_Price":980}}]}`))
	}))
	defer srv.Close()

	s := NewAirtableStore(upstream.NewHTTPClient(2*time.Second), srv.URL+"/v0/", "appX", "key")
	recs, err := s.List(context.Background(), models.Query{Table: "Pricing_Monitor", SortField: "Checked_At", SortDir: models.SortDesc, Limit: 20, View: "Grid view"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "rec1", recs[0].ID)
	assert.Equal(t, 980, recs[0].Fields.Int("Our_Price", 0))
	assert.Equal(t, 2025, recs[0].CreatedTime.Year())
}

func TestAirtableStoreCreateAndErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/appX/Broken" {
			w.WriteHeader(422)
			w.Write([]byte(`{"error":"INVALID"}`))
			return
		}
		var in struct {
			Fields   map[string]any `json:"fields"`
			Typecast bool           `json:"typecast"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.True(t, in.Typecast)
		json.NewEncoder(w).Encode(map[string]any{"id": "recNew", "createdTime": "2025-03-02T00:00:00.000Z", "fields": in.Fields})
	}))
	defer srv.Close()

	s := NewAirtableStore(upstream.NewHTTPClient(2*time.Second), srv.URL, "appX", "key")
	r, err := s.Create(context.Background(), "Chatbot_Logs", models.Fields{"Question": "Bagages ?"})
	require.NoError(t, err)
	assert.Equal(t, "recNew", r.ID)
	assert.Equal(t, "Bagages ?", r.Fields.String("Question", ""))

	_, err = s.List(context.Background(), models.Query{Table: "Broken"})
	var se *upstream.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 422, se.Code)

	_, err = NewAirtableStore(upstream.NewHTTPClient(time.Second), srv.URL, "", "").List(context.Background(), models.Query{Table: "Leads"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSQLiteStore(t *testing.T) {
	st, err := OpenSQLite(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	defer st.Close()
	ctx := context.Background()

	require.NoError(t, st.Seed(ctx, seed()))
	require.NoError(t, st.Seed(ctx, seed()), "seeding twice is a no-op")

	recs, err := st.List(ctx, models.Query{Table: "Leads", SortField: "Score", SortDir: models.SortAsc})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hinano", "Moana", "Teiva"}, names(recs))

	r, err := st.Create(ctx, "Leads", models.Fields{"Name": "Vaea", "Score": 99})
	require.NoError(t, err)
	recs, err = st.List(ctx, models.Query{Table: "Leads", SortField: "Score", SortDir: models.SortDesc, Limit: 1})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, r.ID, recs[0].ID)

	recs, err = st.List(ctx, models.Query{Table: "Empty"})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

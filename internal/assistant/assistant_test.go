package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/marketops/internal/fixtures"
	"github.com/AngelCh415/marketops/internal/models"
	"github.com/AngelCh415/marketops/internal/store"
	"github.com/AngelCh415/marketops/internal/upstream"
)

type downStore struct{}

func (downStore) List(context.Context, models.Query) ([]models.Record, error) {
	return nil, errors.New("down")
}

func (downStore) Create(context.Context, string, models.Fields) (models.Record, error) {
	return models.Record{}, errors.New("down")
}

type fakeCompleter struct {
	system, user string
	err          error
}

func (f *fakeCompleter) Complete(_ context.Context, system, user string) (Completion, error) {
	f.system, f.user = system, user
	if f.err != nil {
		return Completion{}, f.err
	}
	return Completion{Text: "23 kg en soute.", Tokens: 120}, nil
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newTestService(chat Completer, logs store.Store) *Service {
	fb := store.NewFallbackStore(downStore{}, store.NewMemoryStore(fixtures.MustLoad()), quietLogger(), nil)
	s := NewService(fb, chat, logs, quietLogger(), nil)
	s.logged = make(chan struct{}, 1)
	return s
}

func TestAskUsesFAQContextAndLogs(t *testing.T) {
	chat := &fakeCompleter{}
	logs := store.NewMemoryStore(nil)
	s := newTestService(chat, logs)

	r, err := s.Ask(context.Background(), "Quelle est la franchise bagage ?")
	require.NoError(t, err)
	assert.Equal(t, "23 kg en soute.", r.Reply)
	assert.Equal(t, 120, r.Tokens)

	ids := []string{}
	for _, src := range r.Sources {
		ids = append(ids, src.ID)
	}
	assert.Contains(t, ids, "recFaq001")
	assert.LessOrEqual(t, len(r.Sources), topFAQ)
	assert.Contains(t, chat.system, "23 kg par passager")
	assert.Equal(t, "Quelle est la franchise bagage ?", chat.user)

	select {
	case <-s.logged:
	case <-time.After(2 * time.Second):
		t.Fatal("chat log not written")
	}
	recs, err := logs.List(context.Background(), models.Query{Table: logTable})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "23 kg en soute.", recs[0].Fields.String("Answer", ""))
}

func TestAskWithoutMatchUsesPersonaOnly(t *testing.T) {
	chat := &fakeCompleter{}
	s := newTestService(chat, store.NewMemoryStore(nil))
	r, err := s.Ask(context.Background(), "xyzzy")
	require.NoError(t, err)
	assert.Empty(t, r.Sources)
	assert.Equal(t, SystemPrompt(nil), chat.system)
	<-s.logged
}

func TestAskLogFailureDoesNotFailReply(t *testing.T) {
	s := newTestService(&fakeCompleter{}, downStore{})
	_, err := s.Ask(context.Background(), "pass tuamotu")
	require.NoError(t, err)
	<-s.logged
}

func TestAskEmptyMessage(t *testing.T) {
	s := newTestService(&fakeCompleter{}, store.NewMemoryStore(nil))
	_, err := s.Ask(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestAskCompletionError(t *testing.T) {
	s := newTestService(&fakeCompleter{err: ErrNoAPIKey}, store.NewMemoryStore(nil))
	_, err := s.Ask(context.Background(), "retard")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestRelevantRanksByDistinctOverlap(t *testing.T) {
	faqs := []FAQ{
		{ID: "a", Question: "Horaires", Answer: "Ouvert tous les jours"},
		{ID: "b", Question: "Pass îles", Answer: "Le pass couvre les Tuamotu"},
		{ID: "c", Question: "Pass", Answer: "Voir agence"},
	}
	got := relevant("pass tuamotu", faqs, 3)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
	assert.Empty(t, relevant("", faqs, 3))
}

func TestClaudeClientComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "k", r.Header.Get("x-api-key"))
		assert.NotEmpty(t, r.Header.Get("anthropic-version"))
		var req claudeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "sys", req.System)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		w.Write([]byte(`{"content":[{"type":"text","text":"Ia ora na"}],"usage":{"input_tokens":30,"output_tokens":12}}`))
	}))
	defer srv.Close()

	c := NewClaudeClient(upstream.NewHTTPClient(2*time.Second), "k", srv.URL+"/v1/", "model")
	got, err := c.Complete(context.Background(), "sys", "bonjour")
	require.NoError(t, err)
	assert.Equal(t, "Ia ora na", got.Text)
	assert.Equal(t, 42, got.Tokens)
}

func TestClaudeClientErrors(t *testing.T) {
	_, err := NewClaudeClient(upstream.NewHTTPClient(time.Second), "", "http://unused", "m").Complete(context.Background(), "", "hi")
	assert.ErrorIs(t, err, ErrNoAPIKey)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/empty/messages" {
			w.Write([]byte(`{"content":[]}`))
			return
		}
		http.Error(w, `{"error":"overloaded"}`, 529)
	}))
	defer srv.Close()

	_, err = NewClaudeClient(upstream.NewHTTPClient(time.Second), "k", srv.URL, "m").Complete(context.Background(), "", "hi")
	var se *upstream.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 529, se.Code)

	_, err = NewClaudeClient(upstream.NewHTTPClient(time.Second), "k", srv.URL+"/empty", "m").Complete(context.Background(), "", "hi")
	assert.ErrorIs(t, err, ErrNoCompletion)
}

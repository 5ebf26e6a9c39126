package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/AngelCh415/marketops/internal/metrics"
	"github.com/AngelCh415/marketops/internal/upstream"
)

var (
	ErrInFlight      = errors.New("automation already running for this page")
	ErrUnknownAction = errors.New("unknown action")
)

// Actions accepted by the automations.
var Actions = map[string]struct{}{"refresh": {}, "sync": {}, "generate": {}, "analyze": {}}

// URLFunc resolves the fixed automation endpoint of a page.
type URLFunc func(page string) string

// Trigger posts {"action": verb} to n8n and ignores the response body.
// Only one call per page may be outstanding at a time.
type Trigger struct {
	c      upstream.HTTPClient
	url    URLFunc
	secret string
	log    *slog.Logger
	m      *metrics.Collectors

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewTrigger(c upstream.HTTPClient, url URLFunc, secret string, log *slog.Logger, m *metrics.Collectors) *Trigger {
	return &Trigger{c: c, url: url, secret: secret, log: log, m: m, inflight: make(map[string]struct{})}
}

func (t *Trigger) acquire(page string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.inflight[page]; ok {
		return false
	}
	t.inflight[page] = struct{}{}
	return true
}

func (t *Trigger) release(page string) {
	t.mu.Lock()
	delete(t.inflight, page)
	t.mu.Unlock()
}

func (t *Trigger) Fire(ctx context.Context, page, action string) error {
	if _, ok := Actions[action]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	if !t.acquire(page) {
		t.m.Webhook(page, action, "in_flight")
		return ErrInFlight
	}
	defer t.release(page)

	b, _ := json.Marshal(map[string]string{"action": action})
	h := upstream.Header{}
	if t.secret != "" {
		h["X-Signature"] = Sign(t.secret, b)
	}
	url := t.url(page)
	if err := upstream.PostRaw(ctx, t.c, url, h, b, nil); err != nil {
		t.m.Webhook(page, action, "error")
		t.log.Warn("automation trigger failed", slog.String("page", page), slog.String("action", action), slog.String("err", err.Error()))
		return fmt.Errorf("trigger %s/%s: %w", page, action, err)
	}
	t.m.Webhook(page, action, "ok")
	t.log.Info("automation triggered", slog.String("page", page), slog.String("action", action))
	return nil
}

// Sign returns the hex HMAC-SHA256 of body, as sent in X-Signature.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

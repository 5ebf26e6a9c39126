package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AngelCh415/marketops/internal/metrics"
	"github.com/AngelCh415/marketops/internal/models"
	"github.com/AngelCh415/marketops/internal/store"
)

const (
	faqTable  = "FAQ"
	logTable  = "Chatbot_Logs"
	faqLimit  = 50
	topFAQ    = 3
	logWindow = 10 * time.Second
)

const persona = `Tu es l'assistant virtuel de la compagnie aérienne inter-îles de Polynésie française.
Réponds de façon chaleureuse et concise, dans la langue du client (français ou anglais).
Si tu ne connais pas la réponse, propose de contacter le service client au lieu d'inventer.`

type Source struct {
	ID       string `json:"id"`
	Question string `json:"question"`
}

type Reply struct {
	Reply   string   `json:"reply"`
	Tokens  int      `json:"tokens"`
	Sources []Source `json:"sources"`
}

type Loader interface {
	Load(ctx context.Context, q models.Query) ([]models.Record, models.Source)
}

type Service struct {
	faqs   Loader
	chat   Completer
	logs   store.Store
	log    *slog.Logger
	m      *metrics.Collectors
	logged chan struct{} // test hook, nil in production
}

func NewService(faqs Loader, chat Completer, logs store.Store, log *slog.Logger, m *metrics.Collectors) *Service {
	return &Service{faqs: faqs, chat: chat, logs: logs, log: log, m: m}
}

// SystemPrompt appends the retrieved FAQ entries to the persona.
func SystemPrompt(ctx []FAQ) string {
	if len(ctx) == 0 {
		return persona
	}
	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\n\nInformations de la FAQ à utiliser en priorité :\n")
	for _, f := range ctx {
		fmt.Fprintf(&b, "\nQ: %s\nR: %s\n", f.Question, f.Answer)
	}
	return b.String()
}

func (s *Service) Ask(ctx context.Context, message string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, ErrEmptyMessage
	}

	recs, _ := s.faqs.Load(ctx, models.Query{Table: faqTable, Limit: faqLimit, SortDir: models.SortAsc})
	all := make([]FAQ, 0, len(recs))
	for _, r := range recs {
		all = append(all, faqFromRecord(r))
	}
	hits := relevant(message, all, topFAQ)

	c, err := s.chat.Complete(ctx, SystemPrompt(hits), message)
	if err != nil {
		s.m.Assistant("error")
		s.log.Error("assistant completion failed", slog.String("err", err.Error()))
		return Reply{}, err
	}
	s.m.Assistant("ok")

	r := Reply{Reply: c.Text, Tokens: c.Tokens, Sources: make([]Source, 0, len(hits))}
	for _, h := range hits {
		r.Sources = append(r.Sources, Source{ID: h.ID, Question: h.Question})
	}
	go s.logExchange(context.WithoutCancel(ctx), message, r)
	return r, nil
}

// logExchange persists the conversation; failures are only logged.
func (s *Service) logExchange(ctx context.Context, question string, r Reply) {
	if s.logged != nil {
		defer func() { s.logged <- struct{}{} }()
	}
	ctx, cancel := context.WithTimeout(ctx, logWindow)
	defer cancel()
	fields := models.Fields{
		"Question":    question,
		"Answer":      r.Reply,
		"Tokens_Used": r.Tokens,
		"Channel":     "web",
		"Resolved":    len(r.Sources) > 0,
		"Created_At":  time.Now().UTC().Format(time.RFC3339),
	}
	if _, err := s.logs.Create(ctx, logTable, fields); err != nil {
		s.log.Warn("chat log write failed", slog.String("err", err.Error()))
	}
}

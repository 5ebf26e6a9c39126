package assistant

import (
	"sort"
	"strings"
	"unicode"

	"github.com/AngelCh415/marketops/internal/models"
	"github.com/AngelCh415/marketops/internal/visual"
)

type FAQ struct {
	ID       string
	Question string
	Answer   string
	Category string
	Keywords []string
}

func faqFromRecord(r models.Record) FAQ {
	return FAQ{
		ID:       r.ID,
		Question: r.Fields.String("Question", ""),
		Answer:   r.Fields.String("Answer", ""),
		Category: r.Fields.String("Category", ""),
		Keywords: r.Fields.Strings("Keywords", nil),
	}
}

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "what": {}, "can": {}, "how": {}, "are": {}, "you": {}, "my": {},
	"les": {}, "des": {}, "une": {}, "est": {}, "que": {}, "qui": {}, "pour": {}, "avec": {}, "dans": {}, "sur": {},
	"mon": {}, "mes": {}, "vos": {}, "votre": {}, "quel": {}, "quelle": {}, "comment": {}, "puis": {}, "pas": {},
}

// tokens returns the distinct normalised words longer than two letters, minus stopwords.
func tokens(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, w := range strings.FieldsFunc(visual.Normalize(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len(w) <= 2 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

type scored struct {
	faq   FAQ
	score int
}

// relevant ranks FAQ rows by how many distinct query words appear in their text and
// keeps the best n with a non-zero score. Ties keep the input order.
func relevant(query string, faqs []FAQ, n int) []FAQ {
	q := tokens(query)
	if len(q) == 0 {
		return nil
	}
	var hits []scored
	for _, f := range faqs {
		doc := visual.Normalize(f.Question + " " + f.Answer + " " + f.Category + " " + strings.Join(f.Keywords, " "))
		score := 0
		for w := range q {
			if strings.Contains(doc, w) {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, scored{faq: f, score: score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if len(hits) > n {
		hits = hits[:n]
	}
	out := make([]FAQ, len(hits))
	for i, h := range hits {
		out[i] = h.faq
	}
	return out
}

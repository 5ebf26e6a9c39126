// Package reviews scores customer reviews with small lexicon heuristics:
// polarity, irony and the operational topics a review talks about.
package reviews

import (
	"sort"
	"strings"
	"unicode"

	"github.com/AngelCh415/marketops/internal/visual"
)

type Sentiment string

const (
	Positive Sentiment = "positive"
	Neutral  Sentiment = "neutral"
	Negative Sentiment = "negative"
)

type Analysis struct {
	Sentiment Sentiment `json:"sentiment"`
	Score     float64   `json:"score"`
	Ironic    bool      `json:"ironic"`
	Topics    []string  `json:"topics"`
}

// Lexicons are normalised (lowercase, no diacritics).
var positiveWords = []string{
	"super", "genial", "parfait", "excellent", "magnifique", "adorable", "merci", "bravo", "top",
	"agreable", "aimable", "ponctuel", "a l'heure", "great", "amazing", "perfect", "friendly", "love", "wonderful",
}

var negativeWords = []string{
	"retard", "annule", "perdu", "sale", "cher", "impoli", "horrible", "nul", "decu", "attente",
	"inconfortable", "delay", "late", "lost", "rude", "uncomfortable", "expensive", "cancel", "dirty", "worst",
}

// Phrases that read positive but are almost always sarcastic.
var ironyMarkers = []string{
	"merci pour le retard", "encore bravo", "vraiment genial", "quelle surprise", "as usual", "thanks for nothing", "bravo pour",
}

var topicWords = map[string][]string{
	"retard":    {"retard", "attente", "delay", "late", "annule", "cancel"},
	"bagages":   {"bagage", "valise", "soute", "luggage", "baggage"},
	"personnel": {"equipage", "personnel", "hotesse", "staff", "crew", "aimable", "impoli"},
	"confort":   {"siege", "confort", "espace", "seat", "legroom"},
	"prix":      {"prix", "tarif", "cher", "price", "expensive", "ticket"},
	"repas":     {"repas", "collation", "boisson", "meal", "snack"},
}

func split(s string) []string {
	return strings.FieldsFunc(visual.Normalize(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// padded joins the words of s between spaces so entries match at word starts only.
func padded(s string) string {
	return " " + strings.Join(split(s), " ") + " "
}

// count returns how many entries start at a word boundary of text (already padded).
// Entries act as stems: "retard" matches "retardé", "top" never matches "stop".
func count(text string, entries []string) int {
	n := 0
	for _, e := range entries {
		if strings.Contains(text, " "+strings.Join(split(e), " ")) {
			n++
		}
	}
	return n
}

// Analyze scores text in [-1, 1]. rating is the 1-5 star value, 0 when unknown.
func Analyze(text string, rating int) Analysis {
	t := padded(text)
	pos, neg := count(t, positiveWords), count(t, negativeWords)

	var score float64
	if pos+neg > 0 {
		score = float64(pos-neg) / float64(pos+neg)
	}
	if rating > 0 {
		// stars pull the text score halfway toward their own polarity
		score = (score + (float64(rating)-3)/2) / 2
	}

	// praise next to a low rating is only sarcasm when the punctuation says so;
	// an honest mixed review stays mixed
	ironic := count(t, ironyMarkers) > 0
	if !ironic && pos > 0 && rating > 0 && rating <= 2 && (strings.Contains(text, "...") || strings.Contains(text, "!!!")) {
		ironic = true
	}
	if ironic {
		score = -max(abs(score), 0.5)
	}

	a := Analysis{Score: round2(score), Ironic: ironic, Topics: topics(t)}
	switch {
	case a.Score > 0.2:
		a.Sentiment = Positive
	case a.Score < -0.2:
		a.Sentiment = Negative
	default:
		a.Sentiment = Neutral
	}
	return a
}

func topics(t string) []string {
	out := []string{}
	for name, words := range topicWords {
		if count(t, words) > 0 {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func round2(f float64) float64 {
	if f < 0 {
		return -float64(int64(-f*100+0.5)) / 100
	}
	return float64(int64(f*100+0.5)) / 100
}

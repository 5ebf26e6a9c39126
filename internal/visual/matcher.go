package visual

import (
	"math/rand/v2"
	"strings"
)

const DefaultImageBaseURL = "https://images.unsplash.com"

// Rand is the entropy the matcher consumes; *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

type ThemeScore struct {
	Theme   string `json:"theme"`
	Matched int    `json:"matched"`
	Score   int    `json:"score"`
}

type Match struct {
	Theme  string `json:"theme"`
	Score  int    `json:"score"`
	Image  string `json:"image"`
	URL    string `json:"url"`
	Format Format `json:"format"`
}

type Matcher struct {
	reg      Registry
	fallback int
	baseURL  string
	rnd      Rand
}

type Option func(*Matcher)

func WithRand(r Rand) Option { return func(m *Matcher) { m.rnd = r } }

func WithBaseURL(u string) Option {
	return func(m *Matcher) {
		if u != "" {
			m.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// NewMatcher panics if fallback is not a theme of reg: the registry is static data.
func NewMatcher(reg Registry, fallback string, opts ...Option) *Matcher {
	m := &Matcher{reg: reg, fallback: -1, baseURL: DefaultImageBaseURL, rnd: globalRand{}}
	for i, t := range reg {
		if t.Name == fallback {
			m.fallback = i
			break
		}
	}
	if m.fallback < 0 {
		panic("visual: fallback theme " + fallback + " not in registry")
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Matcher) Registry() Registry { return m.reg }

// Scores counts distinct keywords of each theme found in the normalised prompt,
// weighted by the theme priority. Order follows the registry.
func (m *Matcher) Scores(prompt string) []ThemeScore {
	p := Normalize(prompt)
	out := make([]ThemeScore, len(m.reg))
	for i, t := range m.reg {
		n := 0
		if p != "" {
			for _, kw := range t.Keywords {
				if strings.Contains(p, kw) {
					n++
				}
			}
		}
		out[i] = ThemeScore{Theme: t.Name, Matched: n, Score: n * t.Priority}
	}
	return out
}

// Pick returns the best scoring theme. Only a strictly higher score replaces the
// current best, so ties go to the earlier registry entry. No match at all
// returns the fallback theme with score 0.
func (m *Matcher) Pick(prompt string) (Theme, int) {
	best, bestScore := -1, 0
	for i, s := range m.Scores(prompt) {
		if s.Score > bestScore {
			best, bestScore = i, s.Score
		}
	}
	if best < 0 {
		return m.reg[m.fallback], 0
	}
	return m.reg[best], bestScore
}

func (m *Matcher) Match(prompt string, f Format) Match {
	t, score := m.Pick(prompt)
	img := ""
	if len(t.Images) > 0 {
		img = t.Images[m.rnd.IntN(len(t.Images))]
	}
	if _, ok := dimensions[f]; !ok {
		f = DefaultFormat
	}
	return Match{
		Theme:  t.Name,
		Score:  score,
		Image:  img,
		URL:    m.baseURL + "/photo-" + img + "?" + Dimensions(f),
		Format: f,
	}
}

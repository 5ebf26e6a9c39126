package reviews

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		rating    int
		sentiment Sentiment
		ironic    bool
		topics    []string
	}{
		{
			name:      "happy passenger",
			text:      "Equipage adorable, vol à l'heure et vue magnifique sur le lagon. Merci !",
			rating:    5,
			sentiment: Positive,
			topics:    []string{"personnel"},
		},
		{
			name:      "sarcastic delay",
			text:      "Super, encore 3 heures de retard... merci pour le retard, vraiment génial !!!",
			rating:    1,
			sentiment: Negative,
			ironic:    true,
			topics:    []string{"retard"},
		},
		{
			name:      "mixed",
			text:      "Bagage arrivé avec un jour de retard mais personnel aimable à l'aéroport.",
			rating:    3,
			sentiment: Neutral,
			topics:    []string{"bagages", "personnel", "retard"},
		},
		{
			name:      "english complaint",
			text:      "Seats were uncomfortable and the ticket price is way too expensive for a 15 minute flight.",
			rating:    2,
			sentiment: Negative,
			topics:    []string{"confort", "prix"},
		},
		{
			name:      "praise with low stars reads ironic",
			text:      "Bravo... parfait comme toujours",
			rating:    1,
			sentiment: Negative,
			ironic:    true,
			topics:    []string{},
		},
		{
			name:      "honest mixed review with low stars",
			text:      "Personnel top mais valise perdue",
			rating:    2,
			sentiment: Negative,
			topics:    []string{"bagages", "personnel"},
		},
		{
			name:      "lexicon words inside other words do not count",
			text:      "Stop au comptoir rapide",
			sentiment: Neutral,
			topics:    []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Analyze(tt.text, tt.rating)
			assert.Equal(t, tt.sentiment, got.Sentiment, "score=%v", got.Score)
			assert.Equal(t, tt.ironic, got.Ironic)
			assert.Equal(t, tt.topics, got.Topics)
			assert.GreaterOrEqual(t, got.Score, -1.0)
			assert.LessOrEqual(t, got.Score, 1.0)
		})
	}
}

func TestAnalyzeWithoutRatingUsesTextOnly(t *testing.T) {
	assert.Equal(t, Positive, Analyze("great crew, amazing view", 0).Sentiment)
	assert.Equal(t, Negative, Analyze("lost luggage and rude staff", 0).Sentiment)
	assert.Equal(t, Neutral, Analyze("", 0).Sentiment)
}

func TestAnalyzeMatchesWordStarts(t *testing.T) {
	// "nul" is not counted inside "annulé"
	a := Analyze("Vol annulé mais équipage super", 0)
	assert.Equal(t, 0.0, a.Score)
	assert.Equal(t, Neutral, a.Sentiment)
	assert.Equal(t, []string{"personnel", "retard"}, a.Topics)

	// stems still match inflected words
	assert.Equal(t, []string{"bagages", "retard"}, Analyze("Bagages retardés", 0).Topics)
}

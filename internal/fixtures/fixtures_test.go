package fixtures

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEveryTable(t *testing.T) {
	tables, err := Load()
	require.NoError(t, err)

	for _, name := range []string{
		"Chatbot_Logs", "Newsletter_Logs", "Reviews", "Pricing_Monitor", "Leads", "Journeys",
		"AB_Tests", "Visual_Assets", "Social_Posts", "SEO_Keywords", "Attribution", "FAQ",
	} {
		recs := tables[name]
		require.NotEmpty(t, recs, name)
		seen := map[string]bool{}
		for _, r := range recs {
			assert.False(t, seen[r.ID], "duplicate id %s in %s", r.ID, name)
			seen[r.ID] = true
			assert.NotEmpty(t, r.Fields, "%s/%s", name, r.ID)
		}
	}
}

func TestLeadsFixture(t *testing.T) {
	leads := MustLoad()["Leads"]
	require.Len(t, leads, 4)
	assert.Equal(t, 86, leads[0].Fields.Int("Score", 0))
	assert.Equal(t, 2025, leads[0].CreatedTime.Year())
}

func TestParseRejectsMissingID(t *testing.T) {
	_, err := parse([]byte("- fields:\n    Name: x\n"))
	assert.Error(t, err)
}

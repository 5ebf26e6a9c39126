// Package fixtures holds the hand-authored example records shown when the
// record store is unreachable or returns nothing for a table.
package fixtures

import (
	"embed"
	"fmt"
	"path"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AngelCh415/marketops/internal/models"
)

//go:embed data/*.yaml
var files embed.FS

type fixtureRecord struct {
	ID          string         `yaml:"id"`
	CreatedTime string         `yaml:"createdTime"`
	Fields      map[string]any `yaml:"fields"`
}

// Load parses every embedded table. Keys are table names (file names without extension).
func Load() (map[string][]models.Record, error) {
	entries, err := files.ReadDir("data")
	if err != nil {
		return nil, fmt.Errorf("fixtures: read dir: %w", err)
	}
	out := make(map[string][]models.Record, len(entries))
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		b, err := files.ReadFile(path.Join("data", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("fixtures: read %s: %w", e.Name(), err)
		}
		recs, err := parse(b)
		if err != nil {
			return nil, fmt.Errorf("fixtures: parse %s: %w", e.Name(), err)
		}
		out[strings.TrimSuffix(e.Name(), ".yaml")] = recs
	}
	return out, nil
}

// MustLoad panics on malformed embedded data; the files are compiled in.
func MustLoad() map[string][]models.Record {
	m, err := Load()
	if err != nil {
		panic(err)
	}
	return m
}

func parse(b []byte) ([]models.Record, error) {
	var raw []fixtureRecord
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	out := make([]models.Record, 0, len(raw))
	for _, r := range raw {
		if r.ID == "" {
			return nil, fmt.Errorf("record without id")
		}
		ct, _ := time.Parse(time.RFC3339, r.CreatedTime)
		out = append(out, models.Record{ID: r.ID, Fields: models.Fields(r.Fields), CreatedTime: ct})
	}
	return out, nil
}

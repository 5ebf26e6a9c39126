package store

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/AngelCh415/marketops/internal/models"
)

var (
	ErrNoTable       = errors.New("table required")
	ErrNotConfigured = errors.New("record store not configured")
)

// Store is the record proxy backend: Airtable in production, SQLite or memory locally.
type Store interface {
	List(ctx context.Context, q models.Query) ([]models.Record, error)
	Create(ctx context.Context, table string, fields models.Fields) (models.Record, error)
}

const (
	defaultLimit = 100
	maxLimit     = 100
)

func clampLimit(n int) int {
	if n <= 0 {
		return defaultLimit
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}

// sortRecords orders in place by a field, numerically when both sides are numbers.
// An empty field sorts by creation time.
func sortRecords(recs []models.Record, field string, dir models.SortDir) {
	less := func(a, b models.Record) bool {
		if field == "" {
			return a.CreatedTime.Before(b.CreatedTime)
		}
		return lessValue(a.Fields, b.Fields, field)
	}
	sort.SliceStable(recs, func(i, j int) bool {
		if dir == models.SortAsc {
			return less(recs[i], recs[j])
		}
		return less(recs[j], recs[i])
	})
}

func lessValue(a, b models.Fields, field string) bool {
	const missing = -1 << 62
	fa, fb := a.Float(field, missing), b.Float(field, missing)
	if fa != missing && fb != missing {
		return fa < fb
	}
	return strings.ToLower(a.String(field, "")) < strings.ToLower(b.String(field, ""))
}

func limitRecords(recs []models.Record, n int) []models.Record {
	n = clampLimit(n)
	if len(recs) > n {
		return recs[:n]
	}
	return recs
}

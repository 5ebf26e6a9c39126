package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// ParseSortDir defaults anything unknown to descending, like the dashboard does.
func ParseSortDir(s string) SortDir {
	if strings.EqualFold(strings.TrimSpace(s), "asc") {
		return SortAsc
	}
	return SortDesc
}

type Query struct {
	Table     string
	SortField string
	SortDir   SortDir
	Limit     int
	View      string
}

type Record struct {
	ID          string    `json:"id"`
	Fields      Fields    `json:"fields"`
	CreatedTime time.Time `json:"createdTime"`
}

type RecordList struct {
	Records []Record `json:"records"`
}

// Fields is the loosely typed column bag returned by the record store.
// Accessors never fail: a missing or mistyped value yields the default.
type Fields map[string]any

func (f Fields) String(key, def string) string {
	v, ok := f[key]
	if !ok || v == nil {
		return def
	}
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return def
		}
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case []any:
		if len(t) > 0 {
			return Fields{"v": t[0]}.String("v", def)
		}
	}
	return def
}

func (f Fields) Float(key string, def float64) float64 {
	v, ok := f[key]
	if !ok || v == nil {
		return def
	}
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		if n, err := t.Float64(); err == nil {
			return n
		}
	case string:
		s := strings.TrimSuffix(strings.TrimSpace(t), "%")
		if n, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
			return n
		}
	}
	return def
}

func (f Fields) Int(key string, def int) int {
	n := f.Float(key, float64(def))
	return int(n)
}

func (f Fields) Bool(key string, def bool) bool {
	v, ok := f[key]
	if !ok || v == nil {
		return def
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
			return b
		}
	case float64:
		return t != 0
	case int:
		return t != 0
	}
	return def
}

// Strings accepts multi-select arrays as well as comma separated text.
func (f Fields) Strings(key string, def []string) []string {
	v, ok := f[key]
	if !ok || v == nil {
		return def
	}
	var out []string
	switch t := v.(type) {
	case []string:
		out = append(out, t...)
	case []any:
		for _, e := range t {
			if s := (Fields{"v": e}).String("v", ""); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, p := range strings.Split(t, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func (f Fields) Time(key string, def time.Time) time.Time {
	s := f.String(key, "")
	if s == "" {
		return def
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return def
}

// Clone returns a shallow copy so callers can mutate without touching shared fixtures.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

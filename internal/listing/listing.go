package listing

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Item is one mapped view row, keyed by view field name.
type Item map[string]any

// Result is a filtered page of items plus the count before pagination.
type Result struct {
	Items []Item `json:"items"`
	Total int    `json:"total"`
}

var reserved = map[string]struct{}{"q": {}, "sort": {}, "dir": {}, "limit": {}, "offset": {}}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func csvSet(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, p := range strings.Split(s, ",") {
		p = norm(p)
		if p != "" {
			out[p] = struct{}{}
		}
	}
	return out
}

// Apply filters, sorts and paginates items the way the dashboard cards do:
//   - q: case-insensitive substring over every string value
//   - <field>=a,b: keep items whose field is one of the values
//   - sort, dir: order by a field (numbers numerically), dir asc|desc
//   - limit, offset: pagination, limit capped at 1000
func Apply(items []Item, v url.Values) Result {
	q := norm(v.Get("q"))
	filters := map[string]map[string]struct{}{}
	for k := range v {
		if _, ok := reserved[k]; ok {
			continue
		}
		if set := csvSet(v.Get(k)); len(set) > 0 {
			filters[k] = set
		}
	}

	out := make([]Item, 0, len(items))
	for _, it := range items {
		if q != "" && !containsText(it, q) {
			continue
		}
		if !matchFilters(it, filters) {
			continue
		}
		out = append(out, it)
	}

	if field := v.Get("sort"); field != "" {
		desc := norm(v.Get("dir")) == "desc"
		sort.SliceStable(out, func(i, j int) bool {
			if desc {
				return less(out[j][field], out[i][field])
			}
			return less(out[i][field], out[j][field])
		})
	}

	limit, offset := clampLimitOffset(atoiDef(v.Get("limit"), 0), atoiDef(v.Get("offset"), 0), len(out))
	return Result{Items: paginate(out, limit, offset), Total: len(out)}
}

func containsText(it Item, q string) bool {
	for _, val := range it {
		switch t := val.(type) {
		case string:
			if strings.Contains(norm(t), q) {
				return true
			}
		case []string:
			for _, s := range t {
				if strings.Contains(norm(s), q) {
					return true
				}
			}
		}
	}
	return false
}

func matchFilters(it Item, filters map[string]map[string]struct{}) bool {
	for field, set := range filters {
		val, ok := it[field]
		if !ok || !inSet(val, set) {
			return false
		}
	}
	return true
}

// inSet matches scalars by value and lists when any element is in set.
func inSet(val any, set map[string]struct{}) bool {
	switch t := val.(type) {
	case []string:
		for _, s := range t {
			if _, ok := set[norm(s)]; ok {
				return true
			}
		}
		return false
	case []any:
		for _, e := range t {
			if _, ok := set[norm(fmt.Sprint(e))]; ok {
				return true
			}
		}
		return false
	}
	_, ok := set[norm(fmt.Sprint(val))]
	return ok
}

func less(a, b any) bool {
	fa, aok := toFloat(a)
	fb, bok := toFloat(b)
	if aok && bok {
		return fa < fb
	}
	return norm(fmt.Sprint(a)) < norm(fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

func clampLimitOffset(limit, offset, n int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = n
	}
	if limit > 1000 {
		limit = 1000
	} // hard cap
	if offset > n {
		offset = n
	}
	return limit, offset
}

package store

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AngelCh415/marketops/internal/models"
	"github.com/AngelCh415/marketops/internal/upstream"
)

type AirtableStore struct {
	c       upstream.HTTPClient
	baseURL string
	baseID  string
	apiKey  string
}

func NewAirtableStore(c upstream.HTTPClient, baseURL, baseID, apiKey string) *AirtableStore {
	return &AirtableStore{c: c, baseURL: strings.TrimRight(baseURL, "/"), baseID: baseID, apiKey: apiKey}
}

type airtableRecord struct {
	ID          string         `json:"id"`
	CreatedTime string         `json:"createdTime"`
	Fields      map[string]any `json:"fields"`
}

type airtableList struct {
	Records []airtableRecord `json:"records"`
}

func (s *AirtableStore) tableURL(table string) string {
	return s.baseURL + "/" + url.PathEscape(s.baseID) + "/" + url.PathEscape(table)
}

func (s *AirtableStore) headers() upstream.Header {
	return upstream.Header{"Authorization": "Bearer " + s.apiKey}
}

func (s *AirtableStore) List(ctx context.Context, q models.Query) ([]models.Record, error) {
	if q.Table == "" {
		return nil, ErrNoTable
	}
	if s.apiKey == "" || s.baseID == "" {
		return nil, ErrNotConfigured
	}
	v := url.Values{}
	if q.SortField != "" {
		v.Set("sort[0][field]", q.SortField)
		v.Set("sort[0][direction]", string(q.SortDir))
	}
	v.Set("maxRecords", strconv.Itoa(clampLimit(q.Limit)))
	if q.View != "" {
		v.Set("view", q.View)
	}
	var resp airtableList
	if err := upstream.GetJSON(ctx, s.c, s.tableURL(q.Table)+"?"+v.Encode(), s.headers(), &resp); err != nil {
		return nil, fmt.Errorf("airtable list %s: %w", q.Table, err)
	}
	out := make([]models.Record, 0, len(resp.Records))
	for _, r := range resp.Records {
		out = append(out, toRecord(r))
	}
	return out, nil
}

func (s *AirtableStore) Create(ctx context.Context, table string, fields models.Fields) (models.Record, error) {
	if table == "" {
		return models.Record{}, ErrNoTable
	}
	if s.apiKey == "" || s.baseID == "" {
		return models.Record{}, ErrNotConfigured
	}
	var resp airtableRecord
	body := map[string]any{"fields": fields, "typecast": true}
	if err := upstream.PostJSON(ctx, s.c, s.tableURL(table), s.headers(), body, &resp); err != nil {
		return models.Record{}, fmt.Errorf("airtable create %s: %w", table, err)
	}
	return toRecord(resp), nil
}

func toRecord(r airtableRecord) models.Record {
	ct, _ := time.Parse(time.RFC3339, r.CreatedTime)
	return models.Record{ID: r.ID, Fields: models.Fields(r.Fields), CreatedTime: ct}
}

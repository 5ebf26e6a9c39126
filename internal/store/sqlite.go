package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/AngelCh415/marketops/internal/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
	id TEXT PRIMARY KEY,
	tbl TEXT NOT NULL,
	fields TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_tbl ON records(tbl);
`

// SQLiteStore keeps records as JSON blobs, one row per record, for offline demos.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) List(ctx context.Context, q models.Query) ([]models.Record, error) {
	if q.Table == "" {
		return nil, ErrNoTable
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, fields, created_at FROM records WHERE tbl = ?`, q.Table)
	if err != nil {
		return nil, fmt.Errorf("sqlite list %s: %w", q.Table, err)
	}
	defer rows.Close()

	var out []models.Record
	for rows.Next() {
		var id, raw, created string
		if err := rows.Scan(&id, &raw, &created); err != nil {
			return nil, err
		}
		var f models.Fields
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			continue
		}
		ct, _ := time.Parse(time.RFC3339Nano, created)
		out = append(out, models.Record{ID: id, Fields: f, CreatedTime: ct})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortRecords(out, q.SortField, q.SortDir)
	return limitRecords(out, q.Limit), nil
}

func (s *SQLiteStore) Create(ctx context.Context, table string, fields models.Fields) (models.Record, error) {
	if table == "" {
		return models.Record{}, ErrNoTable
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return models.Record{}, fmt.Errorf("encode fields: %w", err)
	}
	r := models.Record{ID: "rec" + uuid.NewString(), Fields: fields.Clone(), CreatedTime: time.Now().UTC()}
	_, err = s.db.ExecContext(ctx, `INSERT INTO records (id, tbl, fields, created_at) VALUES (?, ?, ?, ?)`,
		r.ID, table, string(b), r.CreatedTime.Format(time.RFC3339Nano))
	if err != nil {
		return models.Record{}, fmt.Errorf("sqlite create %s: %w", table, err)
	}
	return r, nil
}

// Seed inserts records for tables that are still empty.
func (s *SQLiteStore) Seed(ctx context.Context, seed map[string][]models.Record) error {
	for table, recs := range seed {
		var n int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE tbl = ?`, table).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			continue
		}
		for _, r := range recs {
			b, err := json.Marshal(r.Fields)
			if err != nil {
				return fmt.Errorf("encode %s/%s: %w", table, r.ID, err)
			}
			if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO records (id, tbl, fields, created_at) VALUES (?, ?, ?, ?)`,
				r.ID, table, string(b), r.CreatedTime.UTC().Format(time.RFC3339Nano)); err != nil {
				return fmt.Errorf("seed %s: %w", table, err)
			}
		}
	}
	return nil
}

package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the Supabase side of search.
type Repository interface {
	MatchDocuments(ctx context.Context, embedding []float32, threshold float64, limit int) ([]Result, error)
	TextSearch(ctx context.Context, query string, limit int) ([]Result, error)
}

// PgRepository talks to the Supabase Postgres database directly. The
// similarity RPC is the match_<table>(query_embedding, match_threshold,
// match_count) SQL function Supabase projects define for pgvector tables.
type PgRepository struct {
	pool  *pgxpool.Pool
	table string
}

// OpenPool builds a small pool for the search database. It does not ping;
// callers decide how long to wait for the database.
func OpenPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	if cfg.MaxConns == 0 || cfg.MaxConns > 4 {
		cfg.MaxConns = 4
	}
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = time.Minute
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: new pool: %w", err)
	}
	return pool, nil
}

func NewPgRepository(pool *pgxpool.Pool, table string) *PgRepository {
	return &PgRepository{pool: pool, table: table}
}

func (r *PgRepository) MatchDocuments(ctx context.Context, embedding []float32, threshold float64, limit int) ([]Result, error) {
	fn := pgx.Identifier{"match_" + r.table}.Sanitize()
	sql := `SELECT id::text, coalesce(title, ''), coalesce(content, ''), similarity FROM ` + fn + `($1::vector, $2, $3)`
	rows, err := r.pool.Query(ctx, sql, VectorLiteral(embedding), threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("similarity rpc: %w", err)
	}
	return collect(rows)
}

func (r *PgRepository) TextSearch(ctx context.Context, query string, limit int) ([]Result, error) {
	tbl := pgx.Identifier{r.table}.Sanitize()
	sql := `SELECT id::text, coalesce(title, ''), coalesce(content, ''), 0::float8 FROM ` + tbl +
		` WHERE content ILIKE $1 OR title ILIKE $1 LIMIT $2`
	rows, err := r.pool.Query(ctx, sql, "%"+escapeLike(query)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("text search: %w", err)
	}
	return collect(rows)
}

func collect(rows pgx.Rows) ([]Result, error) {
	defer rows.Close()
	out := []Result{}
	for rows.Next() {
		var res Result
		if err := rows.Scan(&res.ID, &res.Title, &res.Content, &res.Similarity); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// VectorLiteral renders a pgvector text literal: [0.1,0.2,...].
func VectorLiteral(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

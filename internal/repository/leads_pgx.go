package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/leads-generator/discovery/internal/dto"
	"github.com/octobees/leads-generator/discovery/internal/entity"
)

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

var _ pgxPool = (*pgxpool.Pool)(nil)

const pgLeadsSchema = `
        CREATE TABLE IF NOT EXISTS leads (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            industry TEXT NOT NULL,
            country TEXT NOT NULL,
            city TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            phone_valid BOOLEAN NOT NULL DEFAULT FALSE,
            email TEXT,
            email_valid BOOLEAN NOT NULL DEFAULT FALSE,
            email_source TEXT NOT NULL DEFAULT 'None',
            has_website BOOLEAN NOT NULL DEFAULT FALSE,
            is_active BOOLEAN NOT NULL DEFAULT FALSE,
            maps_url TEXT NOT NULL DEFAULT '',
            directory_source TEXT NOT NULL DEFAULT '',
            review_count INTEGER NOT NULL DEFAULT 0,
            last_review_date TIMESTAMPTZ,
            lead_score INTEGER NOT NULL DEFAULT 0,
            date_added TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            notes TEXT NOT NULL DEFAULT '',
            confidence INTEGER,
            verified BOOLEAN
        );
        CREATE INDEX IF NOT EXISTS leads_country_industry_idx ON leads (country, industry);
    `

// PGXLeadsRepository implements LeadsRepository on PostgreSQL.
type PGXLeadsRepository struct {
	pool pgxPool
}

// NewPGXLeadsRepository wires a pgx backed repository.
func NewPGXLeadsRepository(pool *pgxpool.Pool) *PGXLeadsRepository {
	return &PGXLeadsRepository{pool: pool}
}

// EnsureSchema creates the leads table when missing.
func (r *PGXLeadsRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, pgLeadsSchema); err != nil {
		return fmt.Errorf("ensure leads schema: %w", err)
	}
	return nil
}

func pgPlaceholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func pgTime(t time.Time) any {
	return t
}

// ListAll returns every stored lead, best first.
func (r *PGXLeadsRepository) ListAll(ctx context.Context) ([]entity.Lead, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+leadColumns+" FROM leads ORDER BY lead_score DESC, review_count DESC, name ASC")
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	return scanLeads(rows)
}

// List returns one page of leads matching the filter and the total match count.
func (r *PGXLeadsRepository) List(ctx context.Context, filter dto.ListFilter) ([]entity.Lead, int, error) {
	filter = normalizeFilter(filter)
	q := buildListQuery(filter, pgPlaceholder, "LIKE")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM leads"+q.where, q.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	args := append(append([]any{}, q.args...), filter.PerPage, (filter.Page-1)*filter.PerPage)
	query := fmt.Sprintf("SELECT %s FROM leads%s%s LIMIT %s OFFSET %s",
		leadColumns, q.where, q.order, pgPlaceholder(len(q.args)+1), pgPlaceholder(len(q.args)+2))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads, err := scanLeads(rows)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

// Insert stores new leads in one transaction. Rows whose id already
// exists are left untouched; the returned count only covers new rows.
func (r *PGXLeadsRepository) Insert(ctx context.Context, leads []entity.Lead) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}
	if err := validateForInsert(leads); err != nil {
		return 0, err
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query := fmt.Sprintf("INSERT INTO leads (%s) VALUES (%s) ON CONFLICT (id) DO NOTHING",
		leadColumns, placeholders(leadColumnCount, pgPlaceholder))

	inserted := 0
	for _, lead := range leads {
		tag, err := tx.Exec(ctx, query, leadArgs(lead, pgTime)...)
		if err != nil {
			return 0, fmt.Errorf("insert lead %q: %w", lead.Name, err)
		}
		inserted += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return inserted, nil
}

// Clear deletes every lead and reports how many rows were removed.
func (r *PGXLeadsRepository) Clear(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM leads")
	if err != nil {
		return 0, fmt.Errorf("clear leads: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Stats aggregates the collection per country.
func (r *PGXLeadsRepository) Stats(ctx context.Context) (entity.DiscoveryStats, error) {
	rows, err := r.pool.Query(ctx, statsSQL)
	if err != nil {
		return entity.DiscoveryStats{}, fmt.Errorf("lead stats: %w", err)
	}
	defer rows.Close()

	return scanStats(rows)
}

var _ LeadsRepository = (*PGXLeadsRepository)(nil)

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/octobees/leads-generator/discovery/internal/dto"
	"github.com/octobees/leads-generator/discovery/internal/entity"
)

const sqliteLeadsSchema = `
        CREATE TABLE IF NOT EXISTS leads (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            industry TEXT NOT NULL,
            country TEXT NOT NULL,
            city TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            phone_valid INTEGER NOT NULL DEFAULT 0,
            email TEXT,
            email_valid INTEGER NOT NULL DEFAULT 0,
            email_source TEXT NOT NULL DEFAULT 'None',
            has_website INTEGER NOT NULL DEFAULT 0,
            is_active INTEGER NOT NULL DEFAULT 0,
            maps_url TEXT NOT NULL DEFAULT '',
            directory_source TEXT NOT NULL DEFAULT '',
            review_count INTEGER NOT NULL DEFAULT 0,
            last_review_date TEXT,
            lead_score INTEGER NOT NULL DEFAULT 0,
            date_added TEXT NOT NULL,
            notes TEXT NOT NULL DEFAULT '',
            confidence INTEGER,
            verified INTEGER
        );
        CREATE INDEX IF NOT EXISTS leads_country_industry_idx ON leads (country, industry);
    `

// SQLiteLeadsRepository implements LeadsRepository on an embedded SQLite
// file, used by the standalone discovery CLI.
type SQLiteLeadsRepository struct {
	db *sql.DB
}

// NewSQLiteLeadsRepository wraps an open SQLite handle.
func NewSQLiteLeadsRepository(db *sql.DB) *SQLiteLeadsRepository {
	return &SQLiteLeadsRepository{db: db}
}

// EnsureSchema creates the leads table when missing.
func (r *SQLiteLeadsRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sqliteLeadsSchema); err != nil {
		return fmt.Errorf("ensure leads schema: %w", err)
	}
	return nil
}

func sqlitePlaceholder(int) string {
	return "?"
}

// Fixed-width RFC 3339 so stored timestamps sort lexically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func sqliteTime(t time.Time) any {
	return t.UTC().Format(sqliteTimeLayout)
}

// ListAll returns every stored lead, best first.
func (r *SQLiteLeadsRepository) ListAll(ctx context.Context) ([]entity.Lead, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+leadColumns+" FROM leads ORDER BY lead_score DESC, review_count DESC, name ASC")
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	return scanLeads(rows)
}

// List returns one page of leads matching the filter and the total match count.
func (r *SQLiteLeadsRepository) List(ctx context.Context, filter dto.ListFilter) ([]entity.Lead, int, error) {
	filter = normalizeFilter(filter)
	q := buildListQuery(filter, sqlitePlaceholder, "LIKE")

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM leads"+q.where, q.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	args := append(append([]any{}, q.args...), filter.PerPage, (filter.Page-1)*filter.PerPage)
	rows, err := r.db.QueryContext(ctx, "SELECT "+leadColumns+" FROM leads"+q.where+q.order+" LIMIT ? OFFSET ?", args...)
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

// Insert stores new leads in one transaction, ignoring ids already present.
func (r *SQLiteLeadsRepository) Insert(ctx context.Context, leads []entity.Lead) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}
	if err := validateForInsert(leads); err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT OR IGNORE INTO leads (%s) VALUES (%s)",
		leadColumns, placeholders(leadColumnCount, sqlitePlaceholder)))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, lead := range leads {
		res, err := stmt.ExecContext(ctx, leadArgs(lead, sqliteTime)...)
		if err != nil {
			return 0, fmt.Errorf("insert lead %q: %w", lead.Name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("insert lead %q: %w", lead.Name, err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return inserted, nil
}

// Clear deletes every lead and reports how many rows were removed.
func (r *SQLiteLeadsRepository) Clear(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM leads")
	if err != nil {
		return 0, fmt.Errorf("clear leads: %w", err)
	}
	return res.RowsAffected()
}

// Stats aggregates the collection per country.
func (r *SQLiteLeadsRepository) Stats(ctx context.Context) (entity.DiscoveryStats, error) {
	rows, err := r.db.QueryContext(ctx, statsSQL)
	if err != nil {
		return entity.DiscoveryStats{}, fmt.Errorf("lead stats: %w", err)
	}
	defer rows.Close()

	return scanStats(rows)
}

var _ LeadsRepository = (*SQLiteLeadsRepository)(nil)

// Package storage implements the SQLite ledger backend.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"budget/internal/core"
	"budget/internal/ledger"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ ledger.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const timeLayout = time.RFC3339Nano

func encodeTime(t time.Time) string {
	return t.Format(timeLayout)
}

func decodeTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, amount, type, description, date, category_id, created_at, updated_at
		FROM transactions
		ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t                      core.Transaction
			date, created, updated string
		)
		if err := rows.Scan(&t.ID, &t.Amount, &t.Type, &t.Description, &date, &t.CategoryID, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Date = decodeTime(date)
		t.CreatedAt = decodeTime(created)
		t.UpdatedAt = decodeTime(updated)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	now := time.Now()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, amount, type, description, date, category_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Amount, string(t.Type), t.Description, encodeTime(t.Date), t.CategoryID,
		encodeTime(t.CreatedAt), encodeTime(t.UpdatedAt))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.UpdatedAt = time.Now()

	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET amount = ?, type = ?, description = ?, date = ?, category_id = ?, updated_at = ?
		WHERE id = ?`,
		t.Amount, string(t.Type), t.Description, encodeTime(t.Date), t.CategoryID,
		encodeTime(t.UpdatedAt), t.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if err := requireRow(res, "transaction", t.ID); err != nil {
		return core.Transaction{}, err
	}

	var created string
	if err := r.db.QueryRowContext(ctx, `SELECT created_at FROM transactions WHERE id = ?`, t.ID).Scan(&created); err != nil {
		return core.Transaction{}, fmt.Errorf("reload transaction %s: %w", t.ID, err)
	}
	t.CreatedAt = decodeTime(created)
	return t, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res, "transaction", id)
}

func (r *SQLiteRepository) ListObligations(ctx context.Context, f ledger.ObligationFilter) ([]core.Obligation, error) {
	query := `
		SELECT id, kind, name, amount, due_day, category_id, active,
		       settled_months, last_settled_month, settled_at, created_at, updated_at
		FROM obligations`
	var (
		conds []string
		args  []any
	)
	if f.Kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, string(f.Kind))
	}
	if f.ActiveOnly {
		conds = append(conds, "active = 1")
	}
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY created_at"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list obligations: %w", err)
	}
	defer rows.Close()

	var out []core.Obligation
	for rows.Next() {
		o, err := scanObligation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate obligations: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetObligation(ctx context.Context, id string) (core.Obligation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, kind, name, amount, due_day, category_id, active,
		       settled_months, last_settled_month, settled_at, created_at, updated_at
		FROM obligations WHERE id = ?`, id)

	o, err := scanObligation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Obligation{}, fmt.Errorf("obligation %s: %w", id, ledger.ErrNotFound)
	}
	if err != nil {
		return core.Obligation{}, err
	}
	return o, nil
}

func (r *SQLiteRepository) CreateObligation(ctx context.Context, o core.Obligation) (core.Obligation, error) {
	now := time.Now()
	o.ID = uuid.NewString()
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.Settlement.Months == nil {
		// New records always carry the set representation.
		o.Settlement.Months = []core.MonthKey{}
	}

	months, settledAt, err := encodeSettlement(o.Settlement)
	if err != nil {
		return core.Obligation{}, err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO obligations (id, kind, name, amount, due_day, category_id, active,
		                         settled_months, last_settled_month, settled_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, string(o.Kind), o.Name, o.Amount, o.DueDay, o.CategoryID, boolToInt(o.Active),
		months, string(o.Settlement.LastMonth), settledAt,
		encodeTime(o.CreatedAt), encodeTime(o.UpdatedAt))
	if err != nil {
		return core.Obligation{}, fmt.Errorf("create obligation: %w", err)
	}
	return o, nil
}

func (r *SQLiteRepository) UpdateObligation(ctx context.Context, o core.Obligation) (core.Obligation, error) {
	o.UpdatedAt = time.Now()

	months, settledAt, err := encodeSettlement(o.Settlement)
	if err != nil {
		return core.Obligation{}, err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE obligations
		SET kind = ?, name = ?, amount = ?, due_day = ?, category_id = ?, active = ?,
		    settled_months = ?, last_settled_month = ?, settled_at = ?, updated_at = ?
		WHERE id = ?`,
		string(o.Kind), o.Name, o.Amount, o.DueDay, o.CategoryID, boolToInt(o.Active),
		months, string(o.Settlement.LastMonth), settledAt, encodeTime(o.UpdatedAt), o.ID)
	if err != nil {
		return core.Obligation{}, fmt.Errorf("update obligation: %w", err)
	}
	if err := requireRow(res, "obligation", o.ID); err != nil {
		return core.Obligation{}, err
	}

	var created string
	if err := r.db.QueryRowContext(ctx, `SELECT created_at FROM obligations WHERE id = ?`, o.ID).Scan(&created); err != nil {
		return core.Obligation{}, fmt.Errorf("reload obligation %s: %w", o.ID, err)
	}
	o.CreatedAt = decodeTime(created)
	return o, nil
}

func (r *SQLiteRepository) DeleteObligation(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM obligations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete obligation: %w", err)
	}
	return requireRow(res, "obligation", id)
}

func (r *SQLiteRepository) ListSavingsConfigs(ctx context.Context) ([]core.SavingsConfig, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, monthly_target, yearly_target, created_at, updated_at
		FROM savings_configs
		ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list savings configs: %w", err)
	}
	defer rows.Close()

	var out []core.SavingsConfig
	for rows.Next() {
		var (
			c                core.SavingsConfig
			yearly           sql.NullFloat64
			created, updated string
		)
		if err := rows.Scan(&c.ID, &c.MonthlyTarget, &yearly, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan savings config: %w", err)
		}
		if yearly.Valid {
			v := yearly.Float64
			c.YearlyTarget = &v
		}
		c.CreatedAt = decodeTime(created)
		c.UpdatedAt = decodeTime(updated)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate savings configs: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) CreateSavingsConfig(ctx context.Context, c core.SavingsConfig) (core.SavingsConfig, error) {
	now := time.Now()
	c.ID = uuid.NewString()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO savings_configs (id, monthly_target, yearly_target, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.MonthlyTarget, nullFloat(c.YearlyTarget), encodeTime(c.CreatedAt), encodeTime(c.UpdatedAt))
	if err != nil {
		return core.SavingsConfig{}, fmt.Errorf("create savings config: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) UpdateSavingsConfig(ctx context.Context, c core.SavingsConfig) (core.SavingsConfig, error) {
	c.UpdatedAt = time.Now()

	res, err := r.db.ExecContext(ctx, `
		UPDATE savings_configs
		SET monthly_target = ?, yearly_target = ?, updated_at = ?
		WHERE id = ?`,
		c.MonthlyTarget, nullFloat(c.YearlyTarget), encodeTime(c.UpdatedAt), c.ID)
	if err != nil {
		return core.SavingsConfig{}, fmt.Errorf("update savings config: %w", err)
	}
	if err := requireRow(res, "savings config", c.ID); err != nil {
		return core.SavingsConfig{}, err
	}

	var created string
	if err := r.db.QueryRowContext(ctx, `SELECT created_at FROM savings_configs WHERE id = ?`, c.ID).Scan(&created); err != nil {
		return core.SavingsConfig{}, fmt.Errorf("reload savings config %s: %w", c.ID, err)
	}
	c.CreatedAt = decodeTime(created)
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, color, icon, created_at, updated_at
		FROM categories
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var (
			c                core.Category
			created, updated string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.Icon, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.CreatedAt = decodeTime(created)
		c.UpdatedAt = decodeTime(updated)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	now := time.Now()
	c.ID = uuid.NewString()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, color, icon, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Color, c.Icon, encodeTime(c.CreatedAt), encodeTime(c.UpdatedAt))
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.UpdatedAt = time.Now()

	res, err := r.db.ExecContext(ctx, `
		UPDATE categories
		SET name = ?, color = ?, icon = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, c.Color, c.Icon, encodeTime(c.UpdatedAt), c.ID)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	if err := requireRow(res, "category", c.ID); err != nil {
		return core.Category{}, err
	}

	var created string
	if err := r.db.QueryRowContext(ctx, `SELECT created_at FROM categories WHERE id = ?`, c.ID).Scan(&created); err != nil {
		return core.Category{}, fmt.Errorf("reload category %s: %w", c.ID, err)
	}
	c.CreatedAt = decodeTime(created)
	return c, nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	// Referencing records keep their weak id; readers treat a dangling
	// reference as "no category".
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireRow(res, "category", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanObligation(row rowScanner) (core.Obligation, error) {
	var (
		o                core.Obligation
		active           int
		months           sql.NullString
		lastMonth        string
		settledAt        sql.NullString
		created, updated string
	)
	err := row.Scan(&o.ID, &o.Kind, &o.Name, &o.Amount, &o.DueDay, &o.CategoryID, &active,
		&months, &lastMonth, &settledAt, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Obligation{}, err
	}
	if err != nil {
		return core.Obligation{}, fmt.Errorf("scan obligation: %w", err)
	}

	o.Active = active != 0
	o.Settlement.LastMonth = core.MonthKey(lastMonth)
	if months.Valid {
		if err := json.Unmarshal([]byte(months.String), &o.Settlement.Months); err != nil {
			return core.Obligation{}, fmt.Errorf("decode settled months for %s: %w", o.ID, err)
		}
		if o.Settlement.Months == nil {
			o.Settlement.Months = []core.MonthKey{}
		}
	}
	if settledAt.Valid {
		o.Settlement.SettledAt = decodeTime(settledAt.String)
	}
	o.CreatedAt = decodeTime(created)
	o.UpdatedAt = decodeTime(updated)
	return o, nil
}

// encodeSettlement maps the in-memory settlement onto the three columns. A
// nil month slice stores SQL NULL so legacy records keep their shape across
// round trips.
func encodeSettlement(s core.Settlement) (months sql.NullString, settledAt sql.NullString, err error) {
	if s.Months != nil {
		raw, merr := json.Marshal(s.Months)
		if merr != nil {
			return months, settledAt, fmt.Errorf("encode settled months: %w", merr)
		}
		months = sql.NullString{String: string(raw), Valid: true}
	}
	if !s.SettledAt.IsZero() {
		settledAt = sql.NullString{String: encodeTime(s.SettledAt), Valid: true}
	}
	return months, settledAt, nil
}

func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ledger.ErrNotFound)
	}
	return nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

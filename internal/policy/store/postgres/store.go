package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"sbos/internal/policy"
)

var chainTables = [...]string{"validators", "shadow_validators"}

// Store persists chains and constraints in PostgreSQL.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Replace swaps constraints and both chain tables in one transaction.
func (s *Store) Replace(ctx context.Context, c policy.Constraints, chains policy.Chains) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace policy: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM constraints`); err != nil {
		return fmt.Errorf("clear constraints: %w", err)
	}
	for k, v := range c {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO constraints (key, value) VALUES ($1, $2)`, k, string(v),
		); err != nil {
			return fmt.Errorf("insert constraint %s: %w", k, err)
		}
	}

	for i, chainSet := range []map[string][]policy.ValidatorType{chains.Enforced, chains.Shadow} {
		table := chainTables[i]
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
		var (
			classes   []string
			positions []int64
			vtypes    []string
		)
		for class, chain := range chainSet {
			for pos, t := range chain {
				classes = append(classes, class)
				positions = append(positions, int64(pos))
				vtypes = append(vtypes, string(t))
			}
		}
		if len(classes) == 0 {
			continue
		}
		query := "INSERT INTO " + table + ` (resource_class, position, vtype)
			SELECT * FROM unnest($1::text[], $2::int[], $3::text[])`
		if _, err := tx.ExecContext(ctx, query, pq.Array(classes), pq.Array(positions), pq.Array(vtypes)); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace policy: %w", err)
	}
	return nil
}

func (s *Store) Enforced(ctx context.Context, class string) ([]policy.ValidatorType, error) {
	return s.chain(ctx, "validators", class)
}

func (s *Store) Shadow(ctx context.Context, class string) ([]policy.ValidatorType, error) {
	return s.chain(ctx, "shadow_validators", class)
}

func (s *Store) chain(ctx context.Context, table, class string) ([]policy.ValidatorType, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT vtype FROM "+table+" WHERE resource_class = $1 ORDER BY position ASC", class)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var out []policy.ValidatorType
	for rows.Next() {
		var vtype string
		if err := rows.Scan(&vtype); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, policy.ValidatorType(vtype))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return out, nil
}

// AppendEnforced places entries after the current maximum position, or at 0
// for an empty chain.
func (s *Store) AppendEnforced(ctx context.Context, class string, types []policy.ValidatorType) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var next int64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM validators WHERE resource_class = $1`, class,
	).Scan(&next)
	if err != nil {
		return fmt.Errorf("max enforced position: %w", err)
	}
	for i, t := range types {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO validators (resource_class, position, vtype) VALUES ($1, $2, $3)`,
			class, next+int64(i), string(t),
		); err != nil {
			return fmt.Errorf("append enforced: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

func (s *Store) Constraints(ctx context.Context) (policy.Constraints, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM constraints`)
	if err != nil {
		return nil, fmt.Errorf("query constraints: %w", err)
	}
	defer rows.Close()

	out := policy.Constraints{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan constraint: %w", err)
		}
		out[k] = json.RawMessage(v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate constraints: %w", err)
	}
	return out, nil
}

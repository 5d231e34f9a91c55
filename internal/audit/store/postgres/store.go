package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"sbos/internal/audit"
)

// Store persists the transaction and shadow logs in PostgreSQL.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) AppendTransaction(ctx context.Context, t audit.Transaction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO txlog (id, ts, actor, instance_id, user_id, action, point_id, point_label, value, decision, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.Timestamp, string(t.Actor), t.InstanceID, t.UserID, t.Action,
		t.PointID, t.PointLabel, nullFloat(t.Value), string(t.Decision), t.Reason,
	)
	if err != nil {
		return fmt.Errorf("insert txlog: %w", err)
	}
	return nil
}

func (s *Store) AppendShadow(ctx context.Context, f audit.ShadowFinding) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shadowlog (id, ts, instance_id, user_id, point_id, point_label, value, resource_class, vtype, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		f.ID, f.Timestamp, f.InstanceID, f.UserID, f.PointID, f.PointLabel,
		f.Value, f.Class, f.ValidatorType, f.Reason,
	)
	if err != nil {
		return fmt.Errorf("insert shadowlog: %w", err)
	}
	return nil
}

func (s *Store) RecentTransactions(ctx context.Context, limit int) ([]audit.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ts, actor, instance_id, user_id, action, point_id, point_label, value, decision, reason
		FROM txlog ORDER BY seq DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query txlog: %w", err)
	}
	defer rows.Close()

	var out []audit.Transaction
	for rows.Next() {
		var (
			t        audit.Transaction
			actor    string
			decision string
			value    sql.NullFloat64
		)
		if err := rows.Scan(&t.ID, &t.Timestamp, &actor, &t.InstanceID, &t.UserID, &t.Action,
			&t.PointID, &t.PointLabel, &value, &decision, &t.Reason); err != nil {
			return nil, fmt.Errorf("scan txlog: %w", err)
		}
		t.Actor = audit.Actor(actor)
		t.Decision = audit.Decision(decision)
		if value.Valid {
			v := value.Float64
			t.Value = &v
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate txlog: %w", err)
	}
	return out, nil
}

func (s *Store) RecentShadow(ctx context.Context, limit int) ([]audit.ShadowFinding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ts, instance_id, user_id, point_id, point_label, value, resource_class, vtype, reason
		FROM shadowlog ORDER BY seq DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query shadowlog: %w", err)
	}
	defer rows.Close()

	var out []audit.ShadowFinding
	for rows.Next() {
		var f audit.ShadowFinding
		if err := rows.Scan(&f.ID, &f.Timestamp, &f.InstanceID, &f.UserID, &f.PointID, &f.PointLabel,
			&f.Value, &f.Class, &f.ValidatorType, &f.Reason); err != nil {
			return nil, fmt.Errorf("scan shadowlog: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shadowlog: %w", err)
	}
	return out, nil
}

func (s *Store) ShadowStats(ctx context.Context) ([]audit.ShadowStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT point_label, vtype, reason, COUNT(*)
		FROM shadowlog
		GROUP BY point_label, vtype, reason
		ORDER BY COUNT(*) DESC, point_label, vtype, reason`)
	if err != nil {
		return nil, fmt.Errorf("query shadow stats: %w", err)
	}
	defer rows.Close()

	var out []audit.ShadowStat
	for rows.Next() {
		var st audit.ShadowStat
		if err := rows.Scan(&st.PointLabel, &st.ValidatorType, &st.Reason, &st.Count); err != nil {
			return nil, fmt.Errorf("scan shadow stats: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shadow stats: %w", err)
	}
	return out, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

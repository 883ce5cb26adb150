package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"

	"tutor-backend/internal/models"
)

// NoKeyword is the keyword column value for refused questions.
const NoKeyword = ""

type GateStatsRepo struct {
	pool *pgxpool.Pool
}

func NewGateStatsRepo(pool *pgxpool.Pool) *GateStatsRepo {
	return &GateStatsRepo{pool: pool}
}

// Record bumps one counter per matched keyword, or the NoKeyword counter when
// nothing matched.
func (r *GateStatsRepo) Record(ctx context.Context, outcome string, keywords []string) error {
	keys := decisionKeys(keywords)

	query := `INSERT INTO gate_decisions (keyword, outcome, count, last_seen_at)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (keyword, outcome)
		DO UPDATE SET count = gate_decisions.count + 1, last_seen_at = NOW()`

	batch := &pgx.Batch{}
	for _, k := range keys {
		batch.Queue(query, k, outcome)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for _, k := range keys {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to record %s decision for %q: %w", outcome, k, err)
		}
	}
	return nil
}

func (r *GateStatsRepo) List(ctx context.Context) ([]models.GateDecision, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT keyword, outcome, count, last_seen_at
		FROM gate_decisions
		ORDER BY count DESC, keyword ASC, outcome ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	decisions := []models.GateDecision{}
	for rows.Next() {
		var d models.GateDecision
		if err := rows.Scan(&d.Keyword, &d.Outcome, &d.Count, &d.LastSeenAt); err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

func decisionKeys(keywords []string) []string {
	keys := lo.Uniq(lo.Compact(keywords))
	if len(keys) == 0 {
		return []string{NoKeyword}
	}
	return keys
}

package postgres

import (
	"context"
	"time"

	"driveplane/internal/store"
)

const tierColumns = `tier_name, quantity_limit, num_single_tasks, num_combo_tasks,
	min_price_single, max_price_single, min_price_combo, max_price_combo,
	commission_rate, is_active, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTier(row rowScanner) (*store.TierConfig, error) {
	var t store.TierConfig
	err := row.Scan(
		&t.TierName, &t.QuantityLimit, &t.NumSingleTasks, &t.NumComboTasks,
		&t.MinPriceSingle, &t.MaxPriceSingle, &t.MinPriceCombo, &t.MaxPriceCombo,
		&t.CommissionRate, &t.IsActive, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTier looks a tier up by name, ignoring case.
func (s *Store) GetTier(ctx context.Context, name string) (*store.TierConfig, error) {
	query := "SELECT " + tierColumns + " FROM tier_configs WHERE lower(tier_name) = lower($1)"

	t, err := scanTier(s.db.QueryRowContext(ctx, query, name))
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

func (s *Store) ListTiers(ctx context.Context) ([]store.TierConfig, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+tierColumns+" FROM tier_configs ORDER BY tier_name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tiers []store.TierConfig
	for rows.Next() {
		t, err := scanTier(rows)
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, *t)
	}
	return tiers, rows.Err()
}

// UpsertTier writes a tier row. Callers validate the bands before writing.
func (s *Store) UpsertTier(ctx context.Context, tier *store.TierConfig) error {
	if tier.UpdatedAt.IsZero() {
		tier.UpdatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO tier_configs (` + tierColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (tier_name) DO UPDATE SET
			quantity_limit = EXCLUDED.quantity_limit,
			num_single_tasks = EXCLUDED.num_single_tasks,
			num_combo_tasks = EXCLUDED.num_combo_tasks,
			min_price_single = EXCLUDED.min_price_single,
			max_price_single = EXCLUDED.max_price_single,
			min_price_combo = EXCLUDED.min_price_combo,
			max_price_combo = EXCLUDED.max_price_combo,
			commission_rate = EXCLUDED.commission_rate,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		tier.TierName, tier.QuantityLimit, tier.NumSingleTasks, tier.NumComboTasks,
		tier.MinPriceSingle, tier.MaxPriceSingle, tier.MinPriceCombo, tier.MaxPriceCombo,
		tier.CommissionRate, tier.IsActive, tier.UpdatedAt,
	)
	return err
}

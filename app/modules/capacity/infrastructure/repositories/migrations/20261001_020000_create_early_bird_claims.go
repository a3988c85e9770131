package capacitymigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating early_bird_claims table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS early_bird_claims (
					id BIGSERIAL PRIMARY KEY,
					category_id BIGINT NOT NULL REFERENCES race_categories(id),
					registration_id BIGINT REFERENCES registrations(id),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`); err != nil {
				return fmt.Errorf("failed to create early_bird_claims table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE INDEX IF NOT EXISTS idx_early_bird_claims_category ON early_bird_claims(category_id, id DESC);
				CREATE INDEX IF NOT EXISTS idx_early_bird_claims_registration ON early_bird_claims(registration_id);
			`); err != nil {
				return fmt.Errorf("failed to create early_bird_claims indexes: %w", err)
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping early_bird_claims table...")

		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS early_bird_claims;`); err != nil {
			return fmt.Errorf("failed to drop early_bird_claims table: %w", err)
		}
		return nil
	})
}

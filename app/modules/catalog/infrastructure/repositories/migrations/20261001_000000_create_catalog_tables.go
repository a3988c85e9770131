package catalogmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating race_categories and jersey_options tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS race_categories (
					id BIGSERIAL PRIMARY KEY,
					name VARCHAR(100) NOT NULL UNIQUE,
					base_price BIGINT NOT NULL CHECK (base_price >= 0),
					early_bird_price BIGINT CHECK (early_bird_price >= 0),
					tier1_price BIGINT,
					tier1_min INTEGER,
					tier1_max INTEGER,
					tier2_price BIGINT,
					tier2_min INTEGER,
					tier2_max INTEGER,
					tier3_price BIGINT,
					tier3_min INTEGER,
					tier3_max INTEGER,
					bundle_price BIGINT,
					bundle_size INTEGER CHECK (bundle_size > 0),
					early_bird_capacity INTEGER CHECK (early_bird_capacity >= 0),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CHECK (tier1_price IS NULL OR tier1_price <= base_price),
					CHECK (tier2_price IS NULL OR tier2_price <= base_price),
					CHECK (tier3_price IS NULL OR tier3_price <= base_price)
				);
			`); err != nil {
				return fmt.Errorf("failed to create race_categories table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS jersey_options (
					id BIGSERIAL PRIMARY KEY,
					size VARCHAR(10) NOT NULL UNIQUE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`); err != nil {
				return fmt.Errorf("failed to create jersey_options table: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping race_categories and jersey_options tables...")

		_, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS jersey_options;
			DROP TABLE IF EXISTS race_categories;
		`)
		if err != nil {
			return fmt.Errorf("failed to drop catalog tables: %w", err)
		}
		return nil
	})
}

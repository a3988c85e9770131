package catalogmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Seeding race categories and jersey sizes...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO race_categories (
					name, base_price, early_bird_price,
					tier1_price, tier1_min, tier1_max,
					tier2_price, tier2_min, tier2_max,
					tier3_price, tier3_min, tier3_max,
					bundle_price, bundle_size
				) VALUES
					('3km', 150000, 130000, 140000, 10, 29, 135000, 30, NULL, NULL, NULL, NULL, 145000, 4),
					('5km', 200000, 180000, 190000, 10, 29, 180000, 30, 59, 170000, 60, NULL, NULL, NULL),
					('10km', 250000, 220000, 235000, 10, 29, 225000, 30, 59, 215000, 60, NULL, NULL, NULL)
				ON CONFLICT (name) DO NOTHING;
			`); err != nil {
				return fmt.Errorf("failed to seed race categories: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				INSERT INTO jersey_options (size) VALUES ('XS'), ('S'), ('M'), ('L'), ('XL'), ('XXL')
				ON CONFLICT (size) DO NOTHING;
			`); err != nil {
				return fmt.Errorf("failed to seed jersey options: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Removing seeded catalog rows...")

		_, err := db.ExecContext(ctx, `
			DELETE FROM jersey_options WHERE size IN ('XS', 'S', 'M', 'L', 'XL', 'XXL');
			DELETE FROM race_categories WHERE name IN ('3km', '5km', '10km');
		`)
		if err != nil {
			return fmt.Errorf("failed to remove seeded catalog rows: %w", err)
		}
		return nil
	})
}

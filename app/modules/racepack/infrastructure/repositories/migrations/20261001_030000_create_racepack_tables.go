package racepackmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating qr_codes and race pack claim tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS qr_codes (
					id BIGSERIAL PRIMARY KEY,
					registration_id BIGINT NOT NULL REFERENCES registrations(id),
					category_id BIGINT NOT NULL REFERENCES race_categories(id),
					code UUID NOT NULL UNIQUE,
					total_packs INTEGER NOT NULL CHECK (total_packs > 0),
					max_scans INTEGER NOT NULL CHECK (max_scans >= total_packs),
					scans_remaining INTEGER NOT NULL CHECK (scans_remaining >= 0 AND scans_remaining <= max_scans),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE (registration_id, category_id)
				);
			`); err != nil {
				return fmt.Errorf("failed to create qr_codes table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS race_pack_claims (
					id BIGSERIAL PRIMARY KEY,
					qr_code_id BIGINT NOT NULL REFERENCES qr_codes(id),
					claimed_by VARCHAR(255) NOT NULL,
					packs_claimed_count INTEGER NOT NULL CHECK (packs_claimed_count > 0),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_race_pack_claims_qr ON race_pack_claims(qr_code_id);
			`); err != nil {
				return fmt.Errorf("failed to create race_pack_claims table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS race_pack_claim_participants (
					claim_id BIGINT NOT NULL REFERENCES race_pack_claims(id),
					participant_id BIGINT NOT NULL UNIQUE REFERENCES participants(id),
					PRIMARY KEY (claim_id, participant_id)
				);
			`); err != nil {
				return fmt.Errorf("failed to create race_pack_claim_participants table: %w", err)
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping race pack tables...")

		_, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS race_pack_claim_participants;
			DROP TABLE IF EXISTS race_pack_claims;
			DROP TABLE IF EXISTS qr_codes;
		`)
		if err != nil {
			return fmt.Errorf("failed to drop race pack tables: %w", err)
		}
		return nil
	})
}

package registrationmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating users, registrations, participants and payments tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS users (
					id BIGSERIAL PRIMARY KEY,
					name VARCHAR(255) NOT NULL,
					email VARCHAR(255) NOT NULL UNIQUE,
					phone VARCHAR(50) NOT NULL,
					access_code VARCHAR(40) UNIQUE,
					role VARCHAR(20) NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
					birth_date DATE,
					gender VARCHAR(20),
					current_address TEXT,
					nationality VARCHAR(100),
					id_card_photo_ref TEXT,
					emergency_phone VARCHAR(50),
					medical_history TEXT,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`); err != nil {
				return fmt.Errorf("failed to create users table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS registrations (
					id BIGSERIAL PRIMARY KEY,
					user_id BIGINT NOT NULL REFERENCES users(id),
					registration_type VARCHAR(20) NOT NULL CHECK (registration_type IN ('individual', 'community')),
					total_amount BIGINT NOT NULL CHECK (total_amount >= 0),
					payment_status VARCHAR(20) NOT NULL DEFAULT 'pending'
						CHECK (payment_status IN ('pending', 'confirmed', 'declined')),
					decline_reason TEXT,
					confirmed_at TIMESTAMPTZ,
					declined_at TIMESTAMPTZ,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_registrations_user ON registrations(user_id);
			`); err != nil {
				return fmt.Errorf("failed to create registrations table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS participants (
					id BIGSERIAL PRIMARY KEY,
					registration_id BIGINT NOT NULL REFERENCES registrations(id),
					category_id BIGINT NOT NULL REFERENCES race_categories(id),
					jersey_id BIGINT NOT NULL REFERENCES jersey_options(id),
					early_bird BOOLEAN NOT NULL DEFAULT FALSE,
					unit_price BIGINT NOT NULL CHECK (unit_price >= 0),
					pack_claimed BOOLEAN NOT NULL DEFAULT FALSE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_participants_registration_category
					ON participants(registration_id, category_id, id);
			`); err != nil {
				return fmt.Errorf("failed to create participants table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS payments (
					id BIGSERIAL PRIMARY KEY,
					registration_id BIGINT NOT NULL REFERENCES registrations(id),
					transaction_id UUID NOT NULL UNIQUE,
					amount BIGINT NOT NULL CHECK (amount >= 0),
					proof_ref TEXT NOT NULL,
					status VARCHAR(20) NOT NULL DEFAULT 'pending'
						CHECK (status IN ('pending', 'confirmed', 'declined')),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_payments_registration ON payments(registration_id);
			`); err != nil {
				return fmt.Errorf("failed to create payments table: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping registration tables...")

		_, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS payments;
			DROP TABLE IF EXISTS participants;
			DROP TABLE IF EXISTS registrations;
			DROP TABLE IF EXISTS users;
		`)
		if err != nil {
			return fmt.Errorf("failed to drop registration tables: %w", err)
		}
		return nil
	})
}

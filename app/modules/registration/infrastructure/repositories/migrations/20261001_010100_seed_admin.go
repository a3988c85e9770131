package registrationmigrations

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/uptrace/bun"
)

// Seeds the first admin from RACEPACK_ADMIN_EMAIL and RACEPACK_ADMIN_ACCESS_CODE.
// Nothing is inserted when either is unset.
func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		email := os.Getenv("RACEPACK_ADMIN_EMAIL")
		code := os.Getenv("RACEPACK_ADMIN_ACCESS_CODE")
		if strings.TrimSpace(email) == "" || strings.TrimSpace(code) == "" {
			fmt.Println("Skipping admin seed: RACEPACK_ADMIN_EMAIL or RACEPACK_ADMIN_ACCESS_CODE not set")
			return nil
		}

		fmt.Println("Seeding admin user...")
		return SeedAdmin(ctx, db, email, code)
	}, func(ctx context.Context, db *bun.DB) error {
		return nil
	})
}

// SeedAdmin creates or promotes the admin with the given email. Access codes
// are stored lowercase, the form sessions look them up by.
func SeedAdmin(ctx context.Context, db bun.IDB, email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	code = strings.ToLower(strings.TrimSpace(code))

	_, err := db.ExecContext(ctx, `
		INSERT INTO users (name, email, phone, access_code, role)
		VALUES ('Admin', ?, '', ?, 'admin')
		ON CONFLICT (email) DO UPDATE SET role = 'admin', access_code = EXCLUDED.access_code;
	`, email, code)
	if err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	return nil
}

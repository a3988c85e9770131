package racepackdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var (
	// ErrNotFound is returned when a QR code or registration does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientScans is returned when a guarded decrement matches no row.
	ErrInsufficientScans = errors.New("insufficient scans remaining")
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new race-pack repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) InsertQrCode(ctx context.Context, db bun.IDB, qr *QrCode) (bool, error) {
	db = r.resolveDB(db)
	res, err := db.NewInsert().
		Model(qr).
		On("CONFLICT (registration_id, category_id) DO NOTHING").
		Returning("id, created_at").
		Exec(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("failed to insert qr code: %w", err)
	}
	if err == nil {
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			return true, nil
		}
	}

	err = db.NewSelect().
		Model(qr).
		Where("registration_id = ?", qr.RegistrationID).
		Where("category_id = ?", qr.CategoryID).
		Scan(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load existing qr code: %w", err)
	}
	return false, nil
}

func (r *Impl) ListQrCodes(ctx context.Context, db bun.IDB, registrationID int64) ([]QrCode, error) {
	db = r.resolveDB(db)
	var codes []QrCode
	err := db.NewSelect().
		Model(&codes).
		Where("registration_id = ?", registrationID).
		Order("category_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list qr codes: %w", err)
	}
	return codes, nil
}

func (r *Impl) GetQrCodeByCode(ctx context.Context, db bun.IDB, code uuid.UUID) (*QrCode, error) {
	return r.getQrCode(ctx, r.resolveDB(db), code, false)
}

func (r *Impl) LockQrCodeByCode(ctx context.Context, db bun.IDB, code uuid.UUID) (*QrCode, error) {
	return r.getQrCode(ctx, r.resolveDB(db), code, true)
}

func (r *Impl) getQrCode(ctx context.Context, db bun.IDB, code uuid.UUID, lock bool) (*QrCode, error) {
	qr := new(QrCode)
	q := db.NewSelect().Model(qr).Where("code = ?", code)
	if lock {
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get qr code: %w", err)
	}
	return qr, nil
}

func (r *Impl) DecrementScans(ctx context.Context, db bun.IDB, qrCodeID int64, count int) (int, error) {
	db = r.resolveDB(db)
	var remaining int
	err := db.NewUpdate().
		Model((*QrCode)(nil)).
		Set("scans_remaining = scans_remaining - ?", count).
		Where("id = ?", qrCodeID).
		Where("scans_remaining >= ?", count).
		Returning("scans_remaining").
		Scan(ctx, &remaining)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrInsufficientScans
		}
		return 0, fmt.Errorf("failed to decrement scans: %w", err)
	}
	return remaining, nil
}

func (r *Impl) participantQuery(db bun.IDB, dest *[]PackParticipant) *bun.SelectQuery {
	return db.NewSelect().
		Model(dest).
		Column("p.id", "p.registration_id", "p.category_id", "p.pack_claimed").
		ColumnExpr("jo.size AS jersey_size").
		Join("JOIN jersey_options AS jo ON jo.id = p.jersey_id")
}

func (r *Impl) ListParticipants(ctx context.Context, db bun.IDB, registrationID, categoryID int64) ([]PackParticipant, error) {
	db = r.resolveDB(db)
	var participants []PackParticipant
	err := r.participantQuery(db, &participants).
		Where("p.registration_id = ?", registrationID).
		Where("p.category_id = ?", categoryID).
		Order("p.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return participants, nil
}

func (r *Impl) LockParticipantsByIDs(ctx context.Context, db bun.IDB, ids []int64) ([]PackParticipant, error) {
	db = r.resolveDB(db)
	if len(ids) == 0 {
		return nil, nil
	}
	var participants []PackParticipant
	err := r.participantQuery(db, &participants).
		Where("p.id IN (?)", bun.In(ids)).
		Order("p.id ASC").
		For("UPDATE OF p").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to lock participants: %w", err)
	}
	return participants, nil
}

func (r *Impl) LockUnclaimedParticipants(ctx context.Context, db bun.IDB, registrationID, categoryID int64, limit int) ([]PackParticipant, error) {
	db = r.resolveDB(db)
	var participants []PackParticipant
	err := r.participantQuery(db, &participants).
		Where("p.registration_id = ?", registrationID).
		Where("p.category_id = ?", categoryID).
		Where("p.pack_claimed = FALSE").
		Order("p.id ASC").
		Limit(limit).
		For("UPDATE OF p").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to lock unclaimed participants: %w", err)
	}
	return participants, nil
}

func (r *Impl) MarkClaimed(ctx context.Context, db bun.IDB, ids []int64) (int, error) {
	db = r.resolveDB(db)
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := db.NewUpdate().
		Model((*PackParticipant)(nil)).
		Set("pack_claimed = TRUE").
		Where("id IN (?)", bun.In(ids)).
		Where("pack_claimed = FALSE").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to mark participants claimed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return int(n), nil
}

func (r *Impl) InsertClaim(ctx context.Context, db bun.IDB, claim *RacePackClaim, participantIDs []int64) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(claim).Returning("id, created_at").Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert claim: %w", err)
	}
	links := make([]RacePackClaimParticipant, len(participantIDs))
	for i, id := range participantIDs {
		links[i] = RacePackClaimParticipant{ClaimID: claim.ID, ParticipantID: id}
	}
	if len(links) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&links).Exec(ctx); err != nil {
		return fmt.Errorf("failed to link claim participants: %w", err)
	}
	return nil
}

func (r *Impl) ListClaims(ctx context.Context, db bun.IDB, qrCodeID int64) ([]ClaimWithParticipants, error) {
	db = r.resolveDB(db)
	var claims []RacePackClaim
	err := db.NewSelect().
		Model(&claims).
		Where("qr_code_id = ?", qrCodeID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	if len(claims) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(claims))
	for i, c := range claims {
		ids[i] = c.ID
	}
	var links []RacePackClaimParticipant
	err = db.NewSelect().
		Model(&links).
		Where("claim_id IN (?)", bun.In(ids)).
		Order("claim_id ASC", "participant_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list claim participants: %w", err)
	}

	byClaim := make(map[int64][]int64, len(claims))
	for _, l := range links {
		byClaim[l.ClaimID] = append(byClaim[l.ClaimID], l.ParticipantID)
	}
	out := make([]ClaimWithParticipants, len(claims))
	for i, c := range claims {
		out[i] = ClaimWithParticipants{RacePackClaim: c, ParticipantIDs: byClaim[c.ID]}
	}
	return out, nil
}

func (r *Impl) GetRegistrationSummary(ctx context.Context, db bun.IDB, registrationID int64) (*RegistrationSummary, error) {
	db = r.resolveDB(db)
	summary := new(RegistrationSummary)
	err := db.NewSelect().
		TableExpr("registrations AS r").
		ColumnExpr("r.id AS registration_id").
		ColumnExpr("r.payment_status").
		ColumnExpr("u.name").
		ColumnExpr("u.email").
		Join("JOIN users AS u ON u.id = r.user_id").
		Where("r.id = ?", registrationID).
		Scan(ctx, summary)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get registration summary: %w", err)
	}
	return summary, nil
}

func (r *Impl) CategoryNames(ctx context.Context, db bun.IDB) (map[int64]string, error) {
	db = r.resolveDB(db)
	var rows []struct {
		ID   int64  `bun:"id"`
		Name string `bun:"name"`
	}
	if err := db.NewSelect().TableExpr("race_categories").Column("id", "name").Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to list category names: %w", err)
	}
	out := make(map[int64]string, len(rows))
	for _, row := range rows {
		out[row.ID] = row.Name
	}
	return out, nil
}

func (r *Impl) ClaimsReport(ctx context.Context, db bun.IDB) ([]ClaimReportRow, error) {
	db = r.resolveDB(db)
	var rows []ClaimReportRow
	err := db.NewSelect().
		TableExpr("race_pack_claims AS rpc").
		ColumnExpr("rpc.id AS claim_id").
		ColumnExpr("qr.code").
		ColumnExpr("rc.name AS category_name").
		ColumnExpr("rpc.claimed_by").
		ColumnExpr("rpc.packs_claimed_count").
		ColumnExpr("rpc.created_at").
		Join("JOIN qr_codes AS qr ON qr.id = rpc.qr_code_id").
		Join("JOIN race_categories AS rc ON rc.id = qr.category_id").
		OrderExpr("rpc.id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to build claims report: %w", err)
	}
	return rows, nil
}

func (r *Impl) QrCodesReport(ctx context.Context, db bun.IDB) ([]QrReportRow, error) {
	db = r.resolveDB(db)
	var rows []QrReportRow
	err := db.NewSelect().
		TableExpr("qr_codes AS qr").
		ColumnExpr("qr.code").
		ColumnExpr("qr.registration_id").
		ColumnExpr("rc.name AS category_name").
		ColumnExpr("qr.total_packs").
		ColumnExpr("qr.max_scans").
		ColumnExpr("qr.scans_remaining").
		Join("JOIN race_categories AS rc ON rc.id = qr.category_id").
		OrderExpr("qr.id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to build qr code report: %w", err)
	}
	return rows, nil
}

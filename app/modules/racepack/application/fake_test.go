package racepackservice

import (
	"context"
	"sort"
	"time"

	racepackdb "github.com/Black-And-White-Club/racepack/app/modules/racepack/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// FakeRacePackRepo keeps QR codes, participants and claims in memory.
type FakeRacePackRepo struct {
	trace []string

	codes        []*racepackdb.QrCode
	participants []*racepackdb.PackParticipant
	claims       []racepackdb.ClaimWithParticipants
	nextID       int64

	MarkClaimedFunc    func(ctx context.Context, db bun.IDB, ids []int64) (int, error)
	DecrementScansFunc func(ctx context.Context, db bun.IDB, qrCodeID int64, count int) (int, error)
}

func NewFakeRacePackRepo() *FakeRacePackRepo {
	return &FakeRacePackRepo{trace: []string{}}
}

func (f *FakeRacePackRepo) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeRacePackRepo) id() int64 {
	f.nextID++
	return f.nextID
}

// AddParticipants seeds n unclaimed participants and returns their ids.
func (f *FakeRacePackRepo) AddParticipants(registrationID, categoryID int64, n int) []int64 {
	ids := make([]int64, n)
	for i := range ids {
		p := &racepackdb.PackParticipant{ID: f.id(), RegistrationID: registrationID, CategoryID: categoryID, JerseySize: "M"}
		f.participants = append(f.participants, p)
		ids[i] = p.ID
	}
	return ids
}

func (f *FakeRacePackRepo) participant(id int64) *racepackdb.PackParticipant {
	for _, p := range f.participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (f *FakeRacePackRepo) InsertQrCode(ctx context.Context, db bun.IDB, qr *racepackdb.QrCode) (bool, error) {
	f.record("InsertQrCode")
	for _, existing := range f.codes {
		if existing.RegistrationID == qr.RegistrationID && existing.CategoryID == qr.CategoryID {
			*qr = *existing
			return false, nil
		}
	}
	qr.ID = f.id()
	qr.CreatedAt = time.Now()
	stored := *qr
	f.codes = append(f.codes, &stored)
	return true, nil
}

func (f *FakeRacePackRepo) ListQrCodes(ctx context.Context, db bun.IDB, registrationID int64) ([]racepackdb.QrCode, error) {
	f.record("ListQrCodes")
	var out []racepackdb.QrCode
	for _, c := range f.codes {
		if c.RegistrationID == registrationID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *FakeRacePackRepo) find(code uuid.UUID) (*racepackdb.QrCode, error) {
	for _, c := range f.codes {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, racepackdb.ErrNotFound
}

func (f *FakeRacePackRepo) GetQrCodeByCode(ctx context.Context, db bun.IDB, code uuid.UUID) (*racepackdb.QrCode, error) {
	f.record("GetQrCodeByCode")
	return f.find(code)
}

func (f *FakeRacePackRepo) LockQrCodeByCode(ctx context.Context, db bun.IDB, code uuid.UUID) (*racepackdb.QrCode, error) {
	f.record("LockQrCodeByCode")
	return f.find(code)
}

func (f *FakeRacePackRepo) DecrementScans(ctx context.Context, db bun.IDB, qrCodeID int64, count int) (int, error) {
	f.record("DecrementScans")
	if f.DecrementScansFunc != nil {
		return f.DecrementScansFunc(ctx, db, qrCodeID, count)
	}
	for _, c := range f.codes {
		if c.ID == qrCodeID {
			if c.ScansRemaining < count {
				return 0, racepackdb.ErrInsufficientScans
			}
			c.ScansRemaining -= count
			return c.ScansRemaining, nil
		}
	}
	return 0, racepackdb.ErrInsufficientScans
}

func (f *FakeRacePackRepo) ListParticipants(ctx context.Context, db bun.IDB, registrationID, categoryID int64) ([]racepackdb.PackParticipant, error) {
	f.record("ListParticipants")
	var out []racepackdb.PackParticipant
	for _, p := range f.participants {
		if p.RegistrationID == registrationID && p.CategoryID == categoryID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *FakeRacePackRepo) LockParticipantsByIDs(ctx context.Context, db bun.IDB, ids []int64) ([]racepackdb.PackParticipant, error) {
	f.record("LockParticipantsByIDs")
	var out []racepackdb.PackParticipant
	for _, id := range ids {
		if p := f.participant(id); p != nil {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *FakeRacePackRepo) LockUnclaimedParticipants(ctx context.Context, db bun.IDB, registrationID, categoryID int64, limit int) ([]racepackdb.PackParticipant, error) {
	f.record("LockUnclaimedParticipants")
	var out []racepackdb.PackParticipant
	for _, p := range f.participants {
		if len(out) == limit {
			break
		}
		if p.RegistrationID == registrationID && p.CategoryID == categoryID && !p.PackClaimed {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *FakeRacePackRepo) MarkClaimed(ctx context.Context, db bun.IDB, ids []int64) (int, error) {
	f.record("MarkClaimed")
	if f.MarkClaimedFunc != nil {
		return f.MarkClaimedFunc(ctx, db, ids)
	}
	n := 0
	for _, id := range ids {
		if p := f.participant(id); p != nil && !p.PackClaimed {
			p.PackClaimed = true
			n++
		}
	}
	return n, nil
}

func (f *FakeRacePackRepo) InsertClaim(ctx context.Context, db bun.IDB, claim *racepackdb.RacePackClaim, participantIDs []int64) error {
	f.record("InsertClaim")
	claim.ID = f.id()
	claim.CreatedAt = time.Now()
	f.claims = append(f.claims, racepackdb.ClaimWithParticipants{RacePackClaim: *claim, ParticipantIDs: participantIDs})
	return nil
}

func (f *FakeRacePackRepo) ListClaims(ctx context.Context, db bun.IDB, qrCodeID int64) ([]racepackdb.ClaimWithParticipants, error) {
	f.record("ListClaims")
	var out []racepackdb.ClaimWithParticipants
	for _, c := range f.claims {
		if c.QrCodeID == qrCodeID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *FakeRacePackRepo) GetRegistrationSummary(ctx context.Context, db bun.IDB, registrationID int64) (*racepackdb.RegistrationSummary, error) {
	f.record("GetRegistrationSummary")
	return &racepackdb.RegistrationSummary{RegistrationID: registrationID, PaymentStatus: "confirmed", Name: "Ana", Email: "ana@example.com"}, nil
}

func (f *FakeRacePackRepo) CategoryNames(ctx context.Context, db bun.IDB) (map[int64]string, error) {
	f.record("CategoryNames")
	return map[int64]string{1: "3km", 2: "5km", 3: "10km"}, nil
}

func (f *FakeRacePackRepo) ClaimsReport(ctx context.Context, db bun.IDB) ([]racepackdb.ClaimReportRow, error) {
	f.record("ClaimsReport")
	var rows []racepackdb.ClaimReportRow
	for _, c := range f.claims {
		rows = append(rows, racepackdb.ClaimReportRow{ClaimID: c.ID, ClaimedBy: c.ClaimedBy, PacksClaimedCount: c.PacksClaimedCount, CreatedAt: c.CreatedAt})
	}
	return rows, nil
}

func (f *FakeRacePackRepo) QrCodesReport(ctx context.Context, db bun.IDB) ([]racepackdb.QrReportRow, error) {
	f.record("QrCodesReport")
	var rows []racepackdb.QrReportRow
	for _, c := range f.codes {
		rows = append(rows, racepackdb.QrReportRow{Code: c.Code, RegistrationID: c.RegistrationID, TotalPacks: c.TotalPacks, MaxScans: c.MaxScans, ScansRemaining: c.ScansRemaining})
	}
	return rows, nil
}

var _ racepackdb.Repository = (*FakeRacePackRepo)(nil)

// FakePublisher records published events.
type FakePublisher struct {
	topics   []string
	payloads []any
}

func (f *FakePublisher) Publish(ctx context.Context, topic string, payload any) error {
	f.topics = append(f.topics, topic)
	f.payloads = append(f.payloads, payload)
	return nil
}

func (f *FakePublisher) Close() error { return nil }

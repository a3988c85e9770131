package registrationservice

import (
	"context"
	"io"
	"sort"
	"time"

	catalogdb "github.com/Black-And-White-Club/racepack/app/modules/catalog/infrastructure/repositories"
	notificationservice "github.com/Black-And-White-Club/racepack/app/modules/notification/application"
	racepackservice "github.com/Black-And-White-Club/racepack/app/modules/racepack/application"
	registrationdb "github.com/Black-And-White-Club/racepack/app/modules/registration/infrastructure/repositories"
	"github.com/Black-And-White-Club/racepack/app/shared/apperr"
	"github.com/uptrace/bun"
)

// FakeRegistrationRepo is an in-memory registrationdb.Repository.
type FakeRegistrationRepo struct {
	trace []string

	users         map[int64]*registrationdb.User
	registrations map[int64]*registrationdb.Registration
	participants  []registrationdb.Participant
	payments      []*registrationdb.Payment
	nextID        int64

	CreatePaymentFunc func(ctx context.Context, db bun.IDB, payment *registrationdb.Payment) error
	SetAccessCodeFunc func(ctx context.Context, db bun.IDB, userID int64, code string) (string, error)
}

func NewFakeRegistrationRepo() *FakeRegistrationRepo {
	return &FakeRegistrationRepo{
		trace:         []string{},
		users:         map[int64]*registrationdb.User{},
		registrations: map[int64]*registrationdb.Registration{},
	}
}

func (f *FakeRegistrationRepo) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeRegistrationRepo) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *FakeRegistrationRepo) Trace() []string { return f.trace }

func (f *FakeRegistrationRepo) GetUserByID(ctx context.Context, db bun.IDB, id int64) (*registrationdb.User, error) {
	f.record("GetUserByID")
	u, ok := f.users[id]
	if !ok {
		return nil, registrationdb.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *FakeRegistrationRepo) GetUserByEmail(ctx context.Context, db bun.IDB, email string) (*registrationdb.User, error) {
	f.record("GetUserByEmail")
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, registrationdb.ErrNotFound
}

func (f *FakeRegistrationRepo) GetUserByAccessCode(ctx context.Context, db bun.IDB, code string) (*registrationdb.User, error) {
	f.record("GetUserByAccessCode")
	for _, u := range f.users {
		if u.AccessCode != nil && *u.AccessCode == code {
			cp := *u
			return &cp, nil
		}
	}
	return nil, registrationdb.ErrNotFound
}

func (f *FakeRegistrationRepo) CreateUser(ctx context.Context, db bun.IDB, user *registrationdb.User) error {
	f.record("CreateUser")
	user.ID = f.id()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *FakeRegistrationRepo) UpdateUserProfile(ctx context.Context, db bun.IDB, user *registrationdb.User) error {
	f.record("UpdateUserProfile")
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *FakeRegistrationRepo) AccessCodeExists(ctx context.Context, db bun.IDB, code string) (bool, error) {
	f.record("AccessCodeExists")
	for _, u := range f.users {
		if u.AccessCode != nil && *u.AccessCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *FakeRegistrationRepo) SetAccessCode(ctx context.Context, db bun.IDB, userID int64, code string) (string, error) {
	f.record("SetAccessCode")
	if f.SetAccessCodeFunc != nil {
		return f.SetAccessCodeFunc(ctx, db, userID, code)
	}
	u, ok := f.users[userID]
	if !ok {
		return "", registrationdb.ErrNotFound
	}
	if u.AccessCode == nil {
		u.AccessCode = &code
	}
	return *u.AccessCode, nil
}

func (f *FakeRegistrationRepo) CreateRegistration(ctx context.Context, db bun.IDB, reg *registrationdb.Registration) error {
	f.record("CreateRegistration")
	reg.ID = f.id()
	reg.CreatedAt = time.Now()
	cp := *reg
	f.registrations[reg.ID] = &cp
	return nil
}

func (f *FakeRegistrationRepo) GetRegistration(ctx context.Context, db bun.IDB, id int64) (*registrationdb.Registration, error) {
	f.record("GetRegistration")
	r, ok := f.registrations[id]
	if !ok {
		return nil, registrationdb.ErrNotFound
	}
	cp := *r
	if u, ok := f.users[r.UserID]; ok {
		user := *u
		cp.User = &user
	}
	return &cp, nil
}

func (f *FakeRegistrationRepo) LockRegistration(ctx context.Context, db bun.IDB, id int64) (*registrationdb.Registration, error) {
	f.record("LockRegistration")
	r, ok := f.registrations[id]
	if !ok {
		return nil, registrationdb.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *FakeRegistrationRepo) ResolvePending(ctx context.Context, db bun.IDB, id int64, status string, reason *string, at time.Time) error {
	f.record("ResolvePending")
	r := f.registrations[id]
	if r == nil || r.PaymentStatus != registrationdb.StatusPending {
		return registrationdb.ErrNotPending
	}
	r.PaymentStatus = status
	switch status {
	case registrationdb.StatusConfirmed:
		r.ConfirmedAt = &at
	case registrationdb.StatusDeclined:
		r.DeclinedAt = &at
		r.DeclineReason = reason
	}
	return nil
}

func (f *FakeRegistrationRepo) CreateParticipants(ctx context.Context, db bun.IDB, participants []registrationdb.Participant) error {
	f.record("CreateParticipants")
	for i := range participants {
		participants[i].ID = f.id()
		f.participants = append(f.participants, participants[i])
	}
	return nil
}

func (f *FakeRegistrationRepo) ListParticipants(ctx context.Context, db bun.IDB, registrationID int64) ([]registrationdb.Participant, error) {
	f.record("ListParticipants")
	var out []registrationdb.Participant
	for _, p := range f.participants {
		if p.RegistrationID == registrationID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *FakeRegistrationRepo) CreatePayment(ctx context.Context, db bun.IDB, payment *registrationdb.Payment) error {
	f.record("CreatePayment")
	if f.CreatePaymentFunc != nil {
		return f.CreatePaymentFunc(ctx, db, payment)
	}
	payment.ID = f.id()
	cp := *payment
	f.payments = append(f.payments, &cp)
	return nil
}

func (f *FakeRegistrationRepo) GetPayment(ctx context.Context, db bun.IDB, id int64) (*registrationdb.Payment, error) {
	f.record("GetPayment")
	for _, p := range f.payments {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, registrationdb.ErrNotFound
}

func (f *FakeRegistrationRepo) ListPayments(ctx context.Context, db bun.IDB, registrationID int64) ([]registrationdb.Payment, error) {
	f.record("ListPayments")
	var out []registrationdb.Payment
	for _, p := range f.payments {
		if p.RegistrationID == registrationID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *FakeRegistrationRepo) ResolvePendingPayments(ctx context.Context, db bun.IDB, registrationID int64, status string) (int, error) {
	f.record("ResolvePendingPayments")
	n := 0
	for _, p := range f.payments {
		if p.RegistrationID == registrationID && p.Status == registrationdb.StatusPending {
			p.Status = status
			n++
		}
	}
	return n, nil
}

var _ registrationdb.Repository = (*FakeRegistrationRepo)(nil)

// FakeCatalogRepo serves a fixed set of categories and jerseys.
type FakeCatalogRepo struct {
	categories []catalogdb.RaceCategory
	jerseys    []catalogdb.JerseyOption
	locked     [][]int64
}

func (f *FakeCatalogRepo) ListCategories(ctx context.Context, db bun.IDB) ([]catalogdb.RaceCategory, error) {
	return f.categories, nil
}

func (f *FakeCatalogRepo) GetCategory(ctx context.Context, db bun.IDB, id int64) (*catalogdb.RaceCategory, error) {
	for i := range f.categories {
		if f.categories[i].ID == id {
			return &f.categories[i], nil
		}
	}
	return nil, catalogdb.ErrNotFound
}

func (f *FakeCatalogRepo) LockCategories(ctx context.Context, db bun.IDB, ids []int64) ([]catalogdb.RaceCategory, error) {
	f.locked = append(f.locked, append([]int64(nil), ids...))
	var out []catalogdb.RaceCategory
	for _, c := range f.categories {
		for _, id := range ids {
			if c.ID == id {
				out = append(out, c)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *FakeCatalogRepo) UpsertCategory(ctx context.Context, db bun.IDB, category *catalogdb.RaceCategory) error {
	return nil
}

func (f *FakeCatalogRepo) ListJerseys(ctx context.Context, db bun.IDB) ([]catalogdb.JerseyOption, error) {
	return f.jerseys, nil
}

func (f *FakeCatalogRepo) GetJerseysBySize(ctx context.Context, db bun.IDB, sizes []string) (map[string]catalogdb.JerseyOption, error) {
	out := make(map[string]catalogdb.JerseyOption)
	for _, j := range f.jerseys {
		for _, s := range sizes {
			if j.Size == s {
				out[s] = j
			}
		}
	}
	return out, nil
}

var _ catalogdb.Repository = (*FakeCatalogRepo)(nil)

// FakeLedger tracks early-bird claims per category and registration.
type FakeLedger struct {
	capacity map[int64]int
	claims   map[int64]map[int64]int // category -> registration -> count
	releases []map[int64]int
}

func NewFakeLedger(capacity map[int64]int) *FakeLedger {
	return &FakeLedger{capacity: capacity, claims: map[int64]map[int64]int{}}
}

func (f *FakeLedger) live(categoryID int64) int {
	n := 0
	for _, c := range f.claims[categoryID] {
		n += c
	}
	return n
}

func (f *FakeLedger) Remaining(ctx context.Context, db bun.IDB, categoryID int64) (int, bool, error) {
	limit, ok := f.capacity[categoryID]
	if !ok {
		return 0, false, nil
	}
	return max(0, limit-f.live(categoryID)), true, nil
}

func (f *FakeLedger) Reserve(ctx context.Context, db bun.IDB, categoryID, registrationID int64, count int) ([]int64, error) {
	if limit, ok := f.capacity[categoryID]; ok && limit-f.live(categoryID) < count {
		return nil, apperr.ErrCapacityExceeded
	}
	if f.claims[categoryID] == nil {
		f.claims[categoryID] = map[int64]int{}
	}
	f.claims[categoryID][registrationID] += count
	ids := make([]int64, count)
	return ids, nil
}

func (f *FakeLedger) ReleaseForRegistration(ctx context.Context, db bun.IDB, registrationID int64, perCategory map[int64]int) (int, error) {
	f.releases = append(f.releases, perCategory)
	n := 0
	for categoryID := range perCategory {
		n += f.claims[categoryID][registrationID]
		delete(f.claims[categoryID], registrationID)
	}
	return n, nil
}

var _ CapacityLedger = (*FakeLedger)(nil)

// FakeQrIssuer issues sequential codes and keeps them per registration.
type FakeQrIssuer struct {
	codes     map[int64][]racepackservice.QrCode
	lastSlack int
}

func NewFakeQrIssuer() *FakeQrIssuer {
	return &FakeQrIssuer{codes: map[int64][]racepackservice.QrCode{}}
}

func (f *FakeQrIssuer) IssueQrCodes(ctx context.Context, db bun.IDB, registrationID int64, counts map[int64]int, slack int) ([]racepackservice.QrCode, error) {
	f.lastSlack = slack
	categories := make([]int64, 0, len(counts))
	for id := range counts {
		categories = append(categories, id)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })
	for _, id := range categories {
		f.codes[registrationID] = append(f.codes[registrationID], racepackservice.QrCode{
			Code:           "qr-" + string(rune('a'+id)),
			RegistrationID: registrationID,
			CategoryID:     id,
			TotalPacks:     counts[id],
			MaxScans:       counts[id] + slack,
			ScansRemaining: counts[id] + slack,
		})
	}
	return f.codes[registrationID], nil
}

func (f *FakeQrIssuer) ListQrCodes(ctx context.Context, db bun.IDB, registrationID int64) ([]racepackservice.QrCode, error) {
	return f.codes[registrationID], nil
}

var _ QrIssuer = (*FakeQrIssuer)(nil)

// FakeNotifier records enqueued jobs.
type FakeNotifier struct {
	confirmations []notificationservice.ConfirmationEmailJob
	declines      []notificationservice.DeclineEmailJob
	err           error
}

func (f *FakeNotifier) EnqueueConfirmation(ctx context.Context, job notificationservice.ConfirmationEmailJob) error {
	f.confirmations = append(f.confirmations, job)
	return f.err
}

func (f *FakeNotifier) EnqueueDecline(ctx context.Context, job notificationservice.DeclineEmailJob) error {
	f.declines = append(f.declines, job)
	return f.err
}

// FakePublisher records published events.
type FakePublisher struct {
	topics   []string
	payloads []any
	err      error
}

func (f *FakePublisher) Publish(ctx context.Context, topic string, payload any) error {
	f.topics = append(f.topics, topic)
	f.payloads = append(f.payloads, payload)
	return f.err
}

func (f *FakePublisher) Close() error { return nil }

// FakeBlobStore hands out links under a fixed prefix.
type FakeBlobStore struct {
	err error
}

func (f *FakeBlobStore) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	return key, f.err
}

func (f *FakeBlobStore) URL(ctx context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://blobs.example.com/" + key + "?sig=1", nil
}

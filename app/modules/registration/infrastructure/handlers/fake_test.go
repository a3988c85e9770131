package registrationhandlers

import (
	"bytes"
	"context"
	"errors"
	"io"

	registrationservice "github.com/Black-And-White-Club/racepack/app/modules/registration/application"
)

type FakeRegistrationService struct {
	CreateRegistrationFunc func(ctx context.Context, req registrationservice.CreateRegistrationRequest) (registrationservice.CreateRegistrationResult, error)
	SubmitPaymentFunc      func(ctx context.Context, req registrationservice.SubmitPaymentRequest) (registrationservice.SubmitPaymentResult, error)
	ConfirmPaymentFunc     func(ctx context.Context, registrationID int64) (registrationservice.RegistrationView, error)
	DeclinePaymentFunc     func(ctx context.Context, registrationID int64, reason string) (registrationservice.RegistrationView, error)
	GetRegistrationFunc    func(ctx context.Context, registrationID int64) (registrationservice.RegistrationView, error)
	GetPaymentProofFunc    func(ctx context.Context, paymentID int64) (string, error)
}

func (f *FakeRegistrationService) CreateRegistration(ctx context.Context, req registrationservice.CreateRegistrationRequest) (registrationservice.CreateRegistrationResult, error) {
	if f.CreateRegistrationFunc != nil {
		return f.CreateRegistrationFunc(ctx, req)
	}
	return registrationservice.CreateRegistrationResult{}, nil
}

func (f *FakeRegistrationService) SubmitPayment(ctx context.Context, req registrationservice.SubmitPaymentRequest) (registrationservice.SubmitPaymentResult, error) {
	if f.SubmitPaymentFunc != nil {
		return f.SubmitPaymentFunc(ctx, req)
	}
	return registrationservice.SubmitPaymentResult{}, nil
}

func (f *FakeRegistrationService) ConfirmPayment(ctx context.Context, registrationID int64) (registrationservice.RegistrationView, error) {
	if f.ConfirmPaymentFunc != nil {
		return f.ConfirmPaymentFunc(ctx, registrationID)
	}
	return registrationservice.RegistrationView{}, nil
}

func (f *FakeRegistrationService) DeclinePayment(ctx context.Context, registrationID int64, reason string) (registrationservice.RegistrationView, error) {
	if f.DeclinePaymentFunc != nil {
		return f.DeclinePaymentFunc(ctx, registrationID, reason)
	}
	return registrationservice.RegistrationView{}, nil
}

func (f *FakeRegistrationService) GetRegistration(ctx context.Context, registrationID int64) (registrationservice.RegistrationView, error) {
	if f.GetRegistrationFunc != nil {
		return f.GetRegistrationFunc(ctx, registrationID)
	}
	return registrationservice.RegistrationView{}, nil
}

func (f *FakeRegistrationService) GetPaymentProof(ctx context.Context, paymentID int64) (string, error) {
	if f.GetPaymentProofFunc != nil {
		return f.GetPaymentProofFunc(ctx, paymentID)
	}
	return "", nil
}

var _ registrationservice.Service = (*FakeRegistrationService)(nil)

// FakeBlobStore keeps uploads in memory.
type FakeBlobStore struct {
	objects      map[string][]byte
	contentTypes map[string]string
	fail         bool
}

func NewFakeBlobStore() *FakeBlobStore {
	return &FakeBlobStore{objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (f *FakeBlobStore) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	if f.fail {
		return "", errors.New("bucket unavailable")
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", err
	}
	f.objects[key] = buf.Bytes()
	f.contentTypes[key] = contentType
	return key, nil
}

func (f *FakeBlobStore) URL(ctx context.Context, key string) (string, error) {
	return "https://blobs.example.com/" + key, nil
}

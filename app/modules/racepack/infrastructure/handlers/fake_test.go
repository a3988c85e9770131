package racepackhandlers

import (
	"context"

	racepackservice "github.com/Black-And-White-Club/racepack/app/modules/racepack/application"
)

type FakeRacePackService struct {
	ClaimFunc              func(ctx context.Context, req racepackservice.ClaimRequest) (racepackservice.ClaimResult, error)
	GetQrCodeStateFunc     func(ctx context.Context, code string) (racepackservice.QrCodeState, error)
	ExportClaimsReportFunc func(ctx context.Context) ([]byte, error)
}

func (f *FakeRacePackService) Claim(ctx context.Context, req racepackservice.ClaimRequest) (racepackservice.ClaimResult, error) {
	if f.ClaimFunc != nil {
		return f.ClaimFunc(ctx, req)
	}
	return racepackservice.ClaimResult{}, nil
}

func (f *FakeRacePackService) GetQrCodeState(ctx context.Context, code string) (racepackservice.QrCodeState, error) {
	if f.GetQrCodeStateFunc != nil {
		return f.GetQrCodeStateFunc(ctx, code)
	}
	return racepackservice.QrCodeState{}, nil
}

func (f *FakeRacePackService) ExportClaimsReport(ctx context.Context) ([]byte, error) {
	if f.ExportClaimsReportFunc != nil {
		return f.ExportClaimsReportFunc(ctx)
	}
	return nil, nil
}

var _ racepackservice.Service = (*FakeRacePackService)(nil)

package racepackservice

import (
	"bytes"
	"context"
	"fmt"

	racepackdb "github.com/Black-And-White-Club/racepack/app/modules/racepack/infrastructure/repositories"
	"github.com/Black-And-White-Club/racepack/app/shared/operation"
	"github.com/Black-And-White-Club/racepack/app/shared/results"
	"github.com/uptrace/bun"
	"github.com/xuri/excelize/v2"
)

const (
	sheetClaims  = "Claims"
	sheetQrCodes = "QR Codes"
)

func (s *RacePackService) ExportClaimsReport(ctx context.Context) ([]byte, error) {
	return operation.Unwrap(operation.WithTelemetry(ctx, s.telemetry, "ExportClaimsReport", "all", func(ctx context.Context) (results.OperationResult[[]byte, error], error) {
		var claims []racepackdb.ClaimReportRow
		var codes []racepackdb.QrReportRow
		_, err := operation.InTx(ctx, s.coord, "ExportClaimsReport", func(ctx context.Context, db bun.IDB) (results.OperationResult[struct{}, error], error) {
			var err error
			if claims, err = s.repo.ClaimsReport(ctx, db); err != nil {
				return results.OperationResult[struct{}, error]{}, err
			}
			if codes, err = s.repo.QrCodesReport(ctx, db); err != nil {
				return results.OperationResult[struct{}, error]{}, err
			}
			return results.SuccessResult[struct{}, error](struct{}{}), nil
		})
		if err != nil {
			return results.OperationResult[[]byte, error]{}, err
		}

		out, err := BuildClaimsWorkbook(claims, codes)
		if err != nil {
			return results.OperationResult[[]byte, error]{}, err
		}
		return results.SuccessResult[[]byte, error](out), nil
	}))
}

// BuildClaimsWorkbook writes the claims and QR code sheets to an XLSX file.
func BuildClaimsWorkbook(claims []racepackdb.ClaimReportRow, codes []racepackdb.QrReportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetClaims); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetQrCodes); err != nil {
		return nil, fmt.Errorf("failed to add sheet: %w", err)
	}

	claimRows := [][]any{{"Claim ID", "QR Code", "Category", "Claimed By", "Packs", "Claimed At"}}
	for _, c := range claims {
		claimRows = append(claimRows, []any{
			c.ClaimID, c.Code.String(), c.CategoryName, c.ClaimedBy, c.PacksClaimedCount, c.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		})
	}
	if err := writeRows(f, sheetClaims, claimRows); err != nil {
		return nil, err
	}

	qrRows := [][]any{{"QR Code", "Registration", "Category", "Packs", "Max Scans", "Scans Remaining"}}
	for _, q := range codes {
		qrRows = append(qrRows, []any{
			q.Code.String(), q.RegistrationID, q.CategoryName, q.TotalPacks, q.MaxScans, q.ScansRemaining,
		})
	}
	if err := writeRows(f, sheetQrCodes, qrRows); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

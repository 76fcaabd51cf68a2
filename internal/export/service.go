// Package export renders batch verification results as an XLSX workbook.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/payment-verifier/constants"
	"github.com/joseph-ayodele/payment-verifier/internal/entity"
)

// Sheet is the worksheet the report is written to.
const Sheet = "Verifications"

// Headers are the report columns in order.
var Headers = []string{
	"Transaction ID",
	"Provider",
	"Status",
	"Message",
	"Sender",
	"Receiver",
	"Amount",
	"Date",
	"Debug Info",
}

// Row is one verification to report.
type Row struct {
	Provider constants.Provider
	Result   entity.VerificationResult
}

// Service produces XLSX bytes for batch reports.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ResultsXLSX returns a workbook with one row per result, in the given order.
func (s *Service) ResultsXLSX(ctx context.Context, rows []Row) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", Sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	activeIndex, _ := f.GetSheetIndex(Sheet)
	f.SetActiveSheet(activeIndex)

	for i, h := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(Sheet, cell, h)
	}

	for i, r := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(Sheet, cell, v)
		}

		res := r.Result
		write(1, res.TransactionID)
		write(2, string(r.Provider))
		write(3, res.Status)
		write(4, res.Message)
		if d := res.VerifiedData; d != nil {
			write(5, party(d.SenderName, d.SenderBankName))
			write(6, party(d.ReceiverName, d.ReceiverBankName))
			write(7, d.Amount)
			write(8, entity.Deref(d.Date))
		}
		write(9, truncate(entity.Deref(res.DebugInfo), 200))
	}

	_ = f.SetColWidth(Sheet, "A", "A", 22) // transaction id
	_ = f.SetColWidth(Sheet, "B", "B", 10)
	_ = f.SetColWidth(Sheet, "C", "C", 26)
	_ = f.SetColWidth(Sheet, "D", "D", 48)
	_ = f.SetColWidth(Sheet, "E", "F", 32) // parties
	_ = f.SetColWidth(Sheet, "G", "G", 12)
	_ = f.SetColWidth(Sheet, "H", "H", 22)
	_ = f.SetColWidth(Sheet, "I", "I", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// party prefers the individual's name and falls back to the bank.
func party(name, bank *string) string {
	if n := entity.Deref(name); n != "" {
		return n
	}
	return entity.Deref(bank)
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}

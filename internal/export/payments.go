// Package export builds spreadsheet downloads for the admin dashboard.
package export

import (
	"fmt"
	"io"

	"github.com/GlebRadaev/projecthub/internal/domain"
	"github.com/xuri/excelize/v2"
)

const paymentsSheet = "Payments"

var paymentHeader = []any{
	"ID", "Project ID", "User ID", "Total", "Paid", "Pending", "Status",
	"Gateway payment", "Refund ID", "Refunded", "Refund status", "Created at",
}

// Payments writes one XLSX sheet with a row per payment.
func Payments(w io.Writer, payments []domain.Payment) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", paymentsSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(paymentsSheet, "A1", &paymentHeader); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(paymentsSheet, "A1", "L1", bold); err != nil {
		return err
	}

	for i, p := range payments {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			p.ID, p.ProjectID, p.UserID, p.TotalAmount, p.PaidAmount, p.PendingAmount, p.Status,
			p.GatewayPaymentID, p.RefundID, p.RefundAmount, p.RefundStatus, p.CreatedAt.Format("2006-01-02 15:04"),
		}
		if err := f.SetSheetRow(paymentsSheet, cell, &row); err != nil {
			return fmt.Errorf("can't write payment %d: %w", p.ID, err)
		}
	}
	if err := f.SetColWidth(paymentsSheet, "A", "L", 16); err != nil {
		return err
	}
	return f.Write(w)
}

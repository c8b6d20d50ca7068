// Package invoice renders payment invoices as PDF.
package invoice

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

// Data is everything printed on one invoice.
type Data struct {
	Number        string
	IssuedAt      time.Time
	ProjectCode   string
	ProjectName   string
	StudentName   string
	StudentEmail  string
	TotalAmount   float64
	PaidAmount    float64
	PendingAmount float64
	RefundAmount  float64
	PaymentStatus string
	GatewayRef    string
	PaidAt        time.Time
}

// Number builds the invoice number for a payment.
func Number(projectCode string, paymentID int) string {
	return fmt.Sprintf("INV-%s-%d", projectCode, paymentID)
}

func money(v float64) string {
	return fmt.Sprintf("Rs. %.2f", v)
}

// Render writes the invoice PDF to w.
func Render(w io.Writer, d Data) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+d.Number, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "INVOICE", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	header := [][2]string{
		{"Invoice number", d.Number},
		{"Issued", d.IssuedAt.Format("02 Jan 2006")},
		{"Project", fmt.Sprintf("%s (%s)", d.ProjectName, d.ProjectCode)},
		{"Billed to", fmt.Sprintf("%s <%s>", d.StudentName, d.StudentEmail)},
	}
	for _, row := range header {
		pdf.CellFormat(45, 7, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, row[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(120, 8, "Description", "1", 0, "L", false, 0, "")
	pdf.CellFormat(0, 8, "Amount", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	lines := [][2]string{
		{"Project total", money(d.TotalAmount)},
		{"Paid", money(d.PaidAmount)},
		{"Pending", money(d.PendingAmount)},
	}
	if d.RefundAmount > 0 {
		lines = append(lines, [2]string{"Refunded", money(d.RefundAmount)})
	}
	for _, row := range lines {
		pdf.CellFormat(120, 8, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(0, 8, row[1], "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	pdf.CellFormat(0, 7, "Payment status: "+d.PaymentStatus, "", 1, "L", false, 0, "")
	if d.GatewayRef != "" {
		pdf.CellFormat(0, 7, "Gateway reference: "+d.GatewayRef, "", 1, "L", false, 0, "")
	}
	if !d.PaidAt.IsZero() {
		pdf.CellFormat(0, 7, "Last payment: "+d.PaidAt.Format("02 Jan 2006 15:04"), "", 1, "L", false, 0, "")
	}

	return pdf.Output(w)
}

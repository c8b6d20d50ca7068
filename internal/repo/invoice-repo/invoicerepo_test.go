package invoicerepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/GlebRadaev/projecthub/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	defer mockDB.Close()

	return repo, mockDB
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO invoices")).
		WithArgs(2, 1, "INV-PRJ-1-1", "/uploads/invoices/INV-PRJ-1-1.pdf", 1000.0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(3, now))

	inv, err := repo.Create(context.Background(), &domain.Invoice{
		ProjectID: 2, PaymentID: 1, InvoiceNumber: "INV-PRJ-1-1", FilePath: "/uploads/invoices/INV-PRJ-1-1.pdf", Amount: 1000,
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, inv.ID)
}

func TestRepository_FindByPaymentID(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
		result    *domain.Invoice
	}{
		{
			name: "Invoice found",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("FROM invoices WHERE payment_id = $1")).
					WithArgs(1).
					WillReturnRows(pgxmock.NewRows([]string{"id", "project_id", "payment_id", "invoice_number", "file_path", "amount", "created_at"}).
						AddRow(3, 2, 1, "INV-1", "/uploads/invoices/INV-1.pdf", 1000.0, now))
			},
			result: &domain.Invoice{ID: 3, ProjectID: 2, PaymentID: 1, InvoiceNumber: "INV-1", FilePath: "/uploads/invoices/INV-1.pdf", Amount: 1000, CreatedAt: now},
		},
		{
			name: "No invoice yet",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("FROM invoices WHERE payment_id = $1")).
					WithArgs(1).
					WillReturnError(pgx.ErrNoRows)
			},
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("FROM invoices WHERE payment_id = $1")).
					WithArgs(1).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.FindByPaymentID(context.Background(), 1)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.result, result)
		})
	}
}

package invoicerepo

import (
	"context"
	"errors"

	"github.com/GlebRadaev/projecthub/internal/domain"
	"github.com/GlebRadaev/projecthub/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) Create(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
	query := `
		INSERT INTO invoices (project_id, payment_id, invoice_number, file_path, amount)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (invoice_number) DO UPDATE SET file_path = EXCLUDED.file_path, amount = EXCLUDED.amount
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, inv.ProjectID, inv.PaymentID, inv.InvoiceNumber, inv.FilePath, inv.Amount).
		Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		zap.L().Error("can't save invoice", zap.Error(err))
		return nil, err
	}
	return inv, nil
}

func (r *Repository) FindByPaymentID(ctx context.Context, paymentID int) (*domain.Invoice, error) {
	query := `
		SELECT id, project_id, payment_id, invoice_number, file_path, amount, created_at
		FROM invoices
		WHERE payment_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var inv domain.Invoice
	err := r.db.QueryRow(ctx, query, paymentID).
		Scan(&inv.ID, &inv.ProjectID, &inv.PaymentID, &inv.InvoiceNumber, &inv.FilePath, &inv.Amount, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find invoice", zap.Error(err))
		return nil, err
	}
	return &inv, nil
}

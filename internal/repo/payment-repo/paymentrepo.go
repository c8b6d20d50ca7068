package paymentrepo

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

const paymentColumns = `id, project_id, user_id, total_amount, paid_amount, pending_amount, payment_status,
	gateway_payment_id, refund_id, refund_amount, refund_status, invoice_url, created_at, updated_at`

func paymentFields(p *domain.Payment) []any {
	return []any{
		&p.ID, &p.ProjectID, &p.UserID, &p.TotalAmount, &p.PaidAmount, &p.PendingAmount, &p.Status,
		&p.GatewayPaymentID, &p.RefundID, &p.RefundAmount, &p.RefundStatus, &p.InvoiceURL, &p.CreatedAt, &p.UpdatedAt,
	}
}

func (r *Repository) findOne(ctx context.Context, query string, args ...any) (*domain.Payment, error) {
	var p domain.Payment
	err := r.db.QueryRow(ctx, query, args...).Scan(paymentFields(&p)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find payment", zap.Error(err))
		return nil, err
	}
	return &p, nil
}

func (r *Repository) findMany(ctx context.Context, query string, args ...any) ([]domain.Payment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't get payments", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(paymentFields(&p)...); err != nil {
			zap.L().Error("can't scan payment row", zap.Error(err))
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, nil
}

func (r *Repository) FindByID(ctx context.Context, id int) (*domain.Payment, error) {
	return r.findOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
}

// FindByIDForUpdate locks the row until the surrounding transaction ends.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id int) (*domain.Payment, error) {
	return r.findOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, id)
}

// FindOpenForProject returns the zero-paid pending payment of a project, if any.
func (r *Repository) FindOpenForProject(ctx context.Context, projectID int) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments
		WHERE project_id = $1 AND payment_status = 'pending' AND paid_amount = 0
		ORDER BY id LIMIT 1`
	return r.findOne(ctx, query, projectID)
}

func (r *Repository) FindByProjectID(ctx context.Context, projectID int) ([]domain.Payment, error) {
	return r.findMany(ctx, `SELECT `+paymentColumns+` FROM payments WHERE project_id = $1 ORDER BY created_at ASC`, projectID)
}

func (r *Repository) FindAll(ctx context.Context) ([]domain.Payment, error) {
	return r.findMany(ctx, `SELECT `+paymentColumns+` FROM payments ORDER BY created_at DESC`)
}

func (r *Repository) Create(ctx context.Context, p *domain.Payment) (*domain.Payment, error) {
	query := `
		INSERT INTO payments (project_id, user_id, total_amount, paid_amount, pending_amount, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, p.ProjectID, p.UserID, p.TotalAmount, p.PaidAmount, p.PendingAmount, p.Status).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		zap.L().Error("can't save payment", zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (r *Repository) UpdateAmounts(ctx context.Context, p *domain.Payment) error {
	query := `
		UPDATE payments
		SET total_amount = $1, paid_amount = $2, pending_amount = $3, payment_status = $4,
			gateway_payment_id = $5, updated_at = NOW()
		WHERE id = $6
	`
	_, err := r.db.Exec(ctx, query, p.TotalAmount, p.PaidAmount, p.PendingAmount, p.Status, p.GatewayPaymentID, p.ID)
	if err != nil {
		zap.L().Error("failed to update payment amounts", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) UpdateRefund(ctx context.Context, p *domain.Payment) error {
	query := `
		UPDATE payments
		SET refund_id = $1, refund_amount = $2, refund_status = $3, payment_status = $4, updated_at = NOW()
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query, p.RefundID, p.RefundAmount, p.RefundStatus, p.Status, p.ID)
	if err != nil {
		zap.L().Error("failed to update payment refund", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) SetInvoiceURL(ctx context.Context, id int, url string) error {
	_, err := r.db.Exec(ctx, `UPDATE payments SET invoice_url = $1, updated_at = NOW() WHERE id = $2`, url, id)
	if err != nil {
		zap.L().Error("failed to set invoice url", zap.Error(err))
		return err
	}
	return nil
}

// Totals returns the sum of captured and refunded amounts across all payments.
func (r *Repository) Totals(ctx context.Context) (collected, refunded float64, err error) {
	query := `SELECT COALESCE(SUM(paid_amount), 0), COALESCE(SUM(refund_amount), 0) FROM payments`
	if err = r.db.QueryRow(ctx, query).Scan(&collected, &refunded); err != nil {
		zap.L().Error("can't sum payments", zap.Error(err))
		return 0, 0, err
	}
	return collected, refunded, nil
}

package refundrepo

import (
	"context"

	"github.com/GlebRadaev/projecthub/internal/domain"
	"github.com/GlebRadaev/projecthub/internal/pg"
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

func (r *Repository) Create(ctx context.Context, refund *domain.Refund) (*domain.Refund, error) {
	query := `
		INSERT INTO refunds (payment_id, project_id, gateway_refund_id, amount, status, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, refund.PaymentID, refund.ProjectID, refund.GatewayRefundID, refund.Amount, refund.Status, refund.Reason).
		Scan(&refund.ID, &refund.CreatedAt)
	if err != nil {
		zap.L().Error("can't save refund", zap.Error(err))
		return nil, err
	}
	return refund, nil
}

func (r *Repository) CountPendingForProject(ctx context.Context, projectID int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM refunds
		WHERE status IN ('pending', 'initiated')
		AND payment_id IN (SELECT id FROM payments WHERE project_id = $1)
	`
	var count int
	if err := r.db.QueryRow(ctx, query, projectID).Scan(&count); err != nil {
		zap.L().Error("can't count pending refunds", zap.Error(err))
		return 0, err
	}
	return count, nil
}

// Update stores the gateway refund id and status of an existing refund row.
func (r *Repository) Update(ctx context.Context, refund *domain.Refund) error {
	query := `
		UPDATE refunds
		SET gateway_refund_id = $1, status = $2
		WHERE id = $3
	`
	if _, err := r.db.Exec(ctx, query, refund.GatewayRefundID, refund.Status, refund.ID); err != nil {
		zap.L().Error("can't update refund", zap.Int("refundID", refund.ID), zap.Error(err))
		return err
	}
	return nil
}

// CountOpenForPayment counts refunds on a payment whose gateway result is not applied yet.
func (r *Repository) CountOpenForPayment(ctx context.Context, paymentID int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM refunds
		WHERE payment_id = $1 AND status = 'initiated'
	`
	var count int
	if err := r.db.QueryRow(ctx, query, paymentID).Scan(&count); err != nil {
		zap.L().Error("can't count open refunds", zap.Error(err))
		return 0, err
	}
	return count, nil
}

func (r *Repository) FindByPaymentID(ctx context.Context, paymentID int) ([]domain.Refund, error) {
	query := `
		SELECT id, payment_id, project_id, gateway_refund_id, amount, status, reason, created_at
		FROM refunds
		WHERE payment_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, paymentID)
	if err != nil {
		zap.L().Error("can't get refunds", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var refunds []domain.Refund
	for rows.Next() {
		var rf domain.Refund
		if err := rows.Scan(&rf.ID, &rf.PaymentID, &rf.ProjectID, &rf.GatewayRefundID, &rf.Amount, &rf.Status, &rf.Reason, &rf.CreatedAt); err != nil {
			zap.L().Error("can't scan refund row", zap.Error(err))
			return nil, err
		}
		refunds = append(refunds, rf)
	}
	return refunds, nil
}

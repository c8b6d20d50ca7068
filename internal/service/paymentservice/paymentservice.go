package paymentservice

import (
	"context"
	"io"
	"strings"

	"github.com/GlebRadaev/projecthub/internal/domain"
	"github.com/GlebRadaev/projecthub/internal/export"
	"github.com/GlebRadaev/projecthub/internal/gateway"
	"github.com/GlebRadaev/projecthub/internal/notify"
	"github.com/GlebRadaev/projecthub/internal/pg"
	"github.com/GlebRadaev/projecthub/pkg/apperr"
	"go.uber.org/zap"
)

type Repo interface {
	FindByID(ctx context.Context, id int) (*domain.Payment, error)
	FindByIDForUpdate(ctx context.Context, id int) (*domain.Payment, error)
	FindByProjectID(ctx context.Context, projectID int) ([]domain.Payment, error)
	FindAll(ctx context.Context) ([]domain.Payment, error)
	UpdateAmounts(ctx context.Context, p *domain.Payment) error
	UpdateRefund(ctx context.Context, p *domain.Payment) error
}

type ProjectRepo interface {
	FindWithOwner(ctx context.Context, id int) (*domain.ProjectWithOwner, error)
	UpdatePaymentStatus(ctx context.Context, id int, status string) error
}

type RefundRepo interface {
	Create(ctx context.Context, refund *domain.Refund) (*domain.Refund, error)
	Update(ctx context.Context, refund *domain.Refund) error
	CountOpenForPayment(ctx context.Context, paymentID int) (int, error)
	FindByPaymentID(ctx context.Context, paymentID int) ([]domain.Refund, error)
}

type Gateway interface {
	Refund(ctx context.Context, gatewayPaymentID string, amount float64, reason string) (*gateway.RefundResult, error)
}

type InvoiceGenerator interface {
	Generate(ctx context.Context, paymentID int) (*domain.Invoice, error)
}

type Notifier interface {
	Send(ctx context.Context, msg notify.Message) error
}

type Service struct {
	repo        Repo
	projectRepo ProjectRepo
	refundRepo  RefundRepo
	txManager   pg.TXManager
	gateway     Gateway
	invoices    InvoiceGenerator
	notifier    Notifier
}

func New(repo Repo, projectRepo ProjectRepo, refundRepo RefundRepo, txManager pg.TXManager,
	gateway Gateway, invoices InvoiceGenerator, notifier Notifier) *Service {
	return &Service{
		repo:        repo,
		projectRepo: projectRepo,
		refundRepo:  refundRepo,
		txManager:   txManager,
		gateway:     gateway,
		invoices:    invoices,
		notifier:    notifier,
	}
}

// RefundInput carries an optional amount; nil refunds everything still refundable.
type RefundInput struct {
	Amount *float64
	Reason string
}

type RefundOutcome struct {
	Payment              *domain.Payment
	Refund               *domain.Refund
	ProjectPaymentStatus string
}

func (s *Service) ListForProject(ctx context.Context, projectID int) ([]domain.Payment, error) {
	return s.repo.FindByProjectID(ctx, projectID)
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Payment, error) {
	return s.repo.FindAll(ctx)
}

// Refunds lists the refund attempts recorded against a payment.
func (s *Service) Refunds(ctx context.Context, paymentID int) ([]domain.Refund, error) {
	return s.refundRepo.FindByPaymentID(ctx, paymentID)
}

// Owner returns the id of the user the payment belongs to.
func (s *Service) Owner(ctx context.Context, paymentID int) (int, error) {
	payment, err := s.repo.FindByID(ctx, paymentID)
	if err != nil {
		return 0, err
	}
	if payment == nil {
		return 0, apperr.NotFound("Payment not found")
	}
	return payment.UserID, nil
}

// syncProjectStatus recomputes and stores the project's payment_status from all of its payments.
func (s *Service) syncProjectStatus(ctx context.Context, projectID int) (*domain.ProjectWithOwner, string, error) {
	project, err := s.projectRepo.FindWithOwner(ctx, projectID)
	if err != nil {
		return nil, "", err
	}
	if project == nil {
		return nil, "", apperr.NotFound("Project not found")
	}
	payments, err := s.repo.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, "", err
	}
	status := domain.DeriveProjectPaymentStatus(project.TotalAmount, payments)
	if err := s.projectRepo.UpdatePaymentStatus(ctx, projectID, status); err != nil {
		return nil, "", err
	}
	return project, status, nil
}

// Confirm records a captured amount against a payment.
func (s *Service) Confirm(ctx context.Context, paymentID int, amount float64, gatewayPaymentID string) (*domain.Payment, error) {
	if amount <= 0 {
		return nil, apperr.Validation("Amount must be greater than zero")
	}

	var payment *domain.Payment
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		p, err := s.repo.FindByIDForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		if p == nil {
			return apperr.NotFound("Payment not found")
		}
		switch p.Status {
		case domain.PaymentRefunded:
			return apperr.Forbidden("Payment already refunded")
		case domain.PaymentSuccess:
			return apperr.Forbidden("Payment already processed")
		}

		p.PaidAmount += amount
		p.PendingAmount -= amount
		if p.PendingAmount < 0 {
			p.PendingAmount = 0
		}
		if p.PaidAmount >= p.TotalAmount {
			p.Status = domain.PaymentSuccess
			p.PendingAmount = 0
		} else {
			p.Status = domain.PaymentPartiallyPaid
		}
		if id := strings.TrimSpace(gatewayPaymentID); id != "" {
			p.GatewayPaymentID = id
		}
		if err := s.repo.UpdateAmounts(ctx, p); err != nil {
			return err
		}
		if _, _, err := s.syncProjectStatus(ctx, p.ProjectID); err != nil {
			return err
		}
		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.invoices.Generate(ctx, payment.ID); err != nil {
		zap.L().Error("can't generate invoice after payment", zap.Int("paymentID", payment.ID), zap.Error(err))
	}
	zap.L().Info("payment confirmed", zap.Int("paymentID", payment.ID), zap.Float64("amount", amount), zap.String("status", payment.Status))
	return payment, nil
}

// Refund reverses captured funds through the gateway. The refund row is
// committed before the gateway is called and is finalised in a second
// transaction once the gateway has answered. A refund the gateway executed
// but that could not be applied stays initiated and blocks further refunds
// on the payment.
func (s *Service) Refund(ctx context.Context, paymentID int, in RefundInput) (*RefundOutcome, error) {
	if in.Amount != nil && *in.Amount <= 0 {
		return nil, apperr.Validation("Refund amount must be greater than zero")
	}

	gatewayPaymentID, refund, err := s.reserveRefund(ctx, paymentID, in)
	if err != nil {
		zap.L().Error("refund failed", zap.Int("paymentID", paymentID), zap.Error(err))
		return nil, err
	}

	result, err := s.gateway.Refund(ctx, gatewayPaymentID, refund.Amount, in.Reason)
	if err != nil {
		refund.Status = domain.RefundFailed
		if uerr := s.refundRepo.Update(ctx, refund); uerr != nil {
			zap.L().Error("can't mark refund as failed", zap.Int("refundID", refund.ID), zap.Error(uerr))
		}
		zap.L().Error("refund failed", zap.Int("paymentID", paymentID), zap.Error(err))
		return nil, err
	}

	refund.GatewayRefundID = result.ID
	if err := s.refundRepo.Update(ctx, refund); err != nil {
		zap.L().Error("gateway refund executed but not recorded", zap.Int("refundID", refund.ID),
			zap.String("gatewayRefundID", result.ID), zap.Error(err))
		return nil, err
	}

	outcome, project, err := s.applyRefund(ctx, refund, result)
	if err != nil {
		zap.L().Error("gateway refund executed but not applied", zap.Int("refundID", refund.ID),
			zap.String("gatewayRefundID", result.ID), zap.Error(err))
		return nil, err
	}

	zap.L().Info("refund processed", zap.Int("paymentID", paymentID), zap.String("refundID", outcome.Refund.GatewayRefundID),
		zap.Float64("amount", outcome.Refund.Amount), zap.String("projectPaymentStatus", outcome.ProjectPaymentStatus))
	msg := notify.Refund(project.OwnerEmail, project.OwnerName, project.ProjectName, project.Code,
		outcome.Refund.GatewayRefundID, outcome.Refund.Amount, outcome.Refund.Status)
	if err := s.notifier.Send(ctx, msg); err != nil {
		zap.L().Error("notification failed after refund", zap.Int("paymentID", paymentID), zap.Error(err))
	}
	return outcome, nil
}

// reserveRefund validates the request against the locked payment and records an initiated refund.
func (s *Service) reserveRefund(ctx context.Context, paymentID int, in RefundInput) (string, *domain.Refund, error) {
	var gatewayPaymentID string
	var refund *domain.Refund
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		p, err := s.repo.FindByIDForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		if p == nil {
			return apperr.NotFound("Payment not found")
		}
		if p.Status == domain.PaymentRefunded {
			return apperr.Forbidden("Payment already refunded")
		}
		refundable := p.Refundable()
		if p.PaidAmount <= 0 || refundable <= 0 {
			return apperr.Forbidden("Nothing has been paid on this payment")
		}
		if p.GatewayPaymentID == "" {
			return apperr.Forbidden("Payment has no gateway transaction to refund")
		}
		amount := refundable
		if in.Amount != nil {
			amount = *in.Amount
		}
		if amount > refundable {
			return apperr.Validation("Refund amount exceeds the refundable amount")
		}
		open, err := s.refundRepo.CountOpenForPayment(ctx, p.ID)
		if err != nil {
			return err
		}
		if open > 0 {
			return apperr.Forbidden("A refund on this payment is still being processed")
		}

		refund, err = s.refundRepo.Create(ctx, &domain.Refund{
			PaymentID: p.ID,
			ProjectID: p.ProjectID,
			Amount:    amount,
			Status:    domain.RefundInitiated,
			Reason:    in.Reason,
		})
		if err != nil {
			return err
		}
		gatewayPaymentID = p.GatewayPaymentID
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	return gatewayPaymentID, refund, nil
}

// applyRefund moves the gateway result onto the payment, the refund row and the project.
func (s *Service) applyRefund(ctx context.Context, refund *domain.Refund, result *gateway.RefundResult) (*RefundOutcome, *domain.ProjectWithOwner, error) {
	var outcome RefundOutcome
	var project *domain.ProjectWithOwner
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		p, err := s.repo.FindByIDForUpdate(ctx, refund.PaymentID)
		if err != nil {
			return err
		}
		if p == nil {
			return apperr.NotFound("Payment not found")
		}

		p.RefundID = result.ID
		p.RefundAmount += refund.Amount
		p.RefundStatus = result.Status
		p.Status = domain.PaymentRefunded
		if err := s.repo.UpdateRefund(ctx, p); err != nil {
			return err
		}
		final := *refund
		final.Status = result.Status
		if err := s.refundRepo.Update(ctx, &final); err != nil {
			return err
		}

		proj, status, err := s.syncProjectStatus(ctx, p.ProjectID)
		if err != nil {
			return err
		}
		project = proj
		outcome = RefundOutcome{Payment: p, Refund: &final, ProjectPaymentStatus: status}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &outcome, project, nil
}

// Export writes every payment as an XLSX workbook.
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	payments, err := s.repo.FindAll(ctx)
	if err != nil {
		return err
	}
	if err := export.Payments(w, payments); err != nil {
		zap.L().Error("can't export payments", zap.Error(err))
		return err
	}
	return nil
}

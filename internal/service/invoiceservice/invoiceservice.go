package invoiceservice

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/GlebRadaev/projecthub/internal/domain"
	"github.com/GlebRadaev/projecthub/internal/invoice"
	"github.com/GlebRadaev/projecthub/internal/storage"
	"github.com/GlebRadaev/projecthub/pkg/apperr"
	"go.uber.org/zap"
)

type Repo interface {
	Create(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error)
	FindByPaymentID(ctx context.Context, paymentID int) (*domain.Invoice, error)
}

type PaymentRepo interface {
	FindByID(ctx context.Context, id int) (*domain.Payment, error)
	SetInvoiceURL(ctx context.Context, id int, url string) error
}

type ProjectRepo interface {
	FindWithOwner(ctx context.Context, id int) (*domain.ProjectWithOwner, error)
}

type Storage interface {
	Save(ctx context.Context, category, filename string, r io.Reader) (string, error)
}

type Service struct {
	repo        Repo
	paymentRepo PaymentRepo
	projectRepo ProjectRepo
	storage     Storage
	now         func() time.Time
}

func New(repo Repo, paymentRepo PaymentRepo, projectRepo ProjectRepo, storage Storage) *Service {
	return &Service{
		repo:        repo,
		paymentRepo: paymentRepo,
		projectRepo: projectRepo,
		storage:     storage,
		now:         time.Now,
	}
}

// Generate renders a fresh invoice for the current state of the payment.
func (s *Service) Generate(ctx context.Context, paymentID int) (*domain.Invoice, error) {
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, apperr.NotFound("Payment not found")
	}
	project, err := s.projectRepo.FindWithOwner(ctx, payment.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperr.NotFound("Project not found")
	}

	now := s.now()
	number := invoice.Number(project.Code, payment.ID)
	var buf bytes.Buffer
	err = invoice.Render(&buf, invoice.Data{
		Number:        number,
		IssuedAt:      now,
		ProjectCode:   project.Code,
		ProjectName:   project.ProjectName,
		StudentName:   project.OwnerName,
		StudentEmail:  project.OwnerEmail,
		TotalAmount:   payment.TotalAmount,
		PaidAmount:    payment.PaidAmount,
		PendingAmount: payment.PendingAmount,
		RefundAmount:  payment.RefundAmount,
		PaymentStatus: payment.Status,
		GatewayRef:    payment.GatewayPaymentID,
		PaidAt:        payment.UpdatedAt,
	})
	if err != nil {
		zap.L().Error("can't render invoice", zap.String("number", number), zap.Error(err))
		return nil, err
	}

	path, err := s.storage.Save(ctx, storage.CategoryInvoices, storage.CodedName(project.Code, now, ".pdf"), &buf)
	if err != nil {
		return nil, err
	}
	inv, err := s.repo.Create(ctx, &domain.Invoice{
		ProjectID:     project.ID,
		PaymentID:     payment.ID,
		InvoiceNumber: number,
		FilePath:      path,
		Amount:        payment.PaidAmount,
	})
	if err != nil {
		return nil, err
	}
	if err := s.paymentRepo.SetInvoiceURL(ctx, payment.ID, path); err != nil {
		return nil, err
	}
	zap.L().Info("invoice generated", zap.String("number", number), zap.String("path", path))
	return inv, nil
}

// Get returns the latest invoice of a payment, generating one if none exists.
func (s *Service) Get(ctx context.Context, paymentID int) (*domain.Invoice, error) {
	inv, err := s.repo.FindByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if inv != nil {
		return inv, nil
	}
	return s.Generate(ctx, paymentID)
}

package paymentservice

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/GlebRadaev/projecthub/internal/domain"
	"github.com/GlebRadaev/projecthub/internal/gateway"
	"github.com/GlebRadaev/projecthub/internal/pg"
	"github.com/GlebRadaev/projecthub/pkg/apperr"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

type mocks struct {
	repo        *MockRepo
	projectRepo *MockProjectRepo
	refundRepo  *MockRefundRepo
	tx          *pg.MockTXManager
	gateway     *MockGateway
	invoices    *MockInvoiceGenerator
	notifier    *MockNotifier
}

func NewMock(t *testing.T) (*Service, mocks) {
	ctrl := gomock.NewController(t)
	m := mocks{
		repo:        NewMockRepo(ctrl),
		projectRepo: NewMockProjectRepo(ctrl),
		refundRepo:  NewMockRefundRepo(ctrl),
		tx:          pg.NewMockTXManager(ctrl),
		gateway:     NewMockGateway(ctrl),
		invoices:    NewMockInvoiceGenerator(ctrl),
		notifier:    NewMockNotifier(ctrl),
	}
	service := New(m.repo, m.projectRepo, m.refundRepo, m.tx, m.gateway, m.invoices, m.notifier)
	defer ctrl.Finish()
	return service, m
}

func runTx(m mocks) {
	m.tx.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error {
		return fn(ctx)
	})
}

func amount(v float64) *float64 {
	return &v
}

var project = &domain.ProjectWithOwner{
	Project:    domain.Project{ID: 2, Code: "HT070320241", ProjectName: "Irrigation", TotalAmount: 1000},
	OwnerName:  "Asha",
	OwnerEmail: "asha@example.com",
}

func TestRefund(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		payment       domain.Payment
		input         RefundInput
		gatewayAmount float64
		gatewayResult *gateway.RefundResult
		expectStatus  string
		expectRefund  float64
	}{
		{
			name:          "Partial payment refunded in full",
			payment:       domain.Payment{ID: 1, ProjectID: 2, TotalAmount: 1000, PaidAmount: 400, PendingAmount: 600, Status: domain.PaymentPartiallyPaid, GatewayPaymentID: "order-1"},
			input:         RefundInput{Amount: amount(400), Reason: "cancelled"},
			gatewayAmount: 400,
			gatewayResult: &gateway.RefundResult{ID: "rf_1", Amount: 400, Status: domain.RefundProcessed},
			expectStatus:  domain.ProjectPaymentPending,
			expectRefund:  400,
		},
		{
			name:          "Amount defaults to everything refundable",
			payment:       domain.Payment{ID: 1, ProjectID: 2, TotalAmount: 1000, PaidAmount: 1000, Status: domain.PaymentSuccess, GatewayPaymentID: "order-1"},
			input:         RefundInput{},
			gatewayAmount: 1000,
			gatewayResult: &gateway.RefundResult{ID: "rf_2", Amount: 1000, Status: domain.RefundPending},
			expectStatus:  domain.ProjectPaymentPending,
			expectRefund:  1000,
		},
		{
			name:          "Partial refund of a paid payment",
			payment:       domain.Payment{ID: 1, ProjectID: 2, TotalAmount: 1000, PaidAmount: 1000, Status: domain.PaymentSuccess, GatewayPaymentID: "order-1"},
			input:         RefundInput{Amount: amount(300)},
			gatewayAmount: 300,
			gatewayResult: &gateway.RefundResult{ID: "rf_3", Amount: 300, Status: domain.RefundProcessed},
			expectStatus:  domain.ProjectPaymentPartiallyPaid,
			expectRefund:  300,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			p := tt.payment
			var stored []domain.Refund
			runTx(m)
			runTx(m)
			m.repo.EXPECT().FindByIDForUpdate(gomock.Any(), 1).Return(&p, nil).Times(2)
			m.refundRepo.EXPECT().CountOpenForPayment(gomock.Any(), 1).Return(0, nil)
			m.refundRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, r *domain.Refund) (*domain.Refund, error) {
				assert.Equal(t, domain.RefundInitiated, r.Status)
				assert.Equal(t, tt.expectRefund, r.Amount)
				r.ID = 9
				return r, nil
			})
			m.gateway.EXPECT().Refund(gomock.Any(), "order-1", tt.gatewayAmount, tt.input.Reason).Return(tt.gatewayResult, nil)
			m.refundRepo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, r *domain.Refund) error {
				stored = append(stored, *r)
				return nil
			}).Times(2)
			m.repo.EXPECT().UpdateRefund(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, updated *domain.Payment) error {
				assert.Equal(t, domain.PaymentRefunded, updated.Status)
				assert.Equal(t, tt.expectRefund, updated.RefundAmount)
				assert.Equal(t, tt.gatewayResult.ID, updated.RefundID)
				return nil
			})
			m.projectRepo.EXPECT().FindWithOwner(gomock.Any(), 2).Return(project, nil)
			m.repo.EXPECT().FindByProjectID(gomock.Any(), 2).DoAndReturn(func(ctx context.Context, projectID int) ([]domain.Payment, error) {
				return []domain.Payment{p}, nil
			})
			m.projectRepo.EXPECT().UpdatePaymentStatus(gomock.Any(), 2, tt.expectStatus).Return(nil)
			m.notifier.EXPECT().Send(ctx, gomock.Any()).Return(nil)

			outcome, err := service.Refund(ctx, 1, tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.expectStatus, outcome.ProjectPaymentStatus)
			assert.Equal(t, tt.expectRefund, outcome.Refund.Amount)
			assert.Equal(t, tt.gatewayResult.Status, outcome.Refund.Status)
			assert.Equal(t, domain.PaymentRefunded, outcome.Payment.Status)

			if assert.Len(t, stored, 2) {
				assert.Equal(t, tt.gatewayResult.ID, stored[0].GatewayRefundID)
				assert.Equal(t, domain.RefundInitiated, stored[0].Status)
				assert.Equal(t, tt.gatewayResult.Status, stored[1].Status)
			}
		})
	}
}

func TestRefund_Rejected(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		payment    *domain.Payment
		input      RefundInput
		expectKind error
		lookup     bool
		open       int
	}{
		{
			name:       "Non-positive amount",
			input:      RefundInput{Amount: amount(0)},
			expectKind: apperr.ErrValidation,
		},
		{
			name:       "Negative amount",
			input:      RefundInput{Amount: amount(-5)},
			expectKind: apperr.ErrValidation,
		},
		{
			name:       "Payment missing",
			lookup:     true,
			expectKind: apperr.ErrNotFound,
		},
		{
			name:       "Already refunded",
			payment:    &domain.Payment{ID: 1, PaidAmount: 400, RefundAmount: 400, Status: domain.PaymentRefunded, GatewayPaymentID: "order-1"},
			lookup:     true,
			expectKind: apperr.ErrForbidden,
		},
		{
			name:       "Nothing paid",
			payment:    &domain.Payment{ID: 1, TotalAmount: 1000, Status: domain.PaymentPending, GatewayPaymentID: "order-1"},
			lookup:     true,
			expectKind: apperr.ErrForbidden,
		},
		{
			name:       "No gateway transaction",
			payment:    &domain.Payment{ID: 1, PaidAmount: 400, Status: domain.PaymentPartiallyPaid},
			lookup:     true,
			expectKind: apperr.ErrForbidden,
		},
		{
			name:       "Amount above refundable",
			payment:    &domain.Payment{ID: 1, PaidAmount: 400, Status: domain.PaymentPartiallyPaid, GatewayPaymentID: "order-1"},
			input:      RefundInput{Amount: amount(401)},
			lookup:     true,
			expectKind: apperr.ErrValidation,
		},
		{
			name:       "Earlier refund not applied yet",
			payment:    &domain.Payment{ID: 1, PaidAmount: 400, Status: domain.PaymentPartiallyPaid, GatewayPaymentID: "order-1"},
			lookup:     true,
			open:       1,
			expectKind: apperr.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// No gateway expectation is set, so any call to it fails the test.
			service, m := NewMock(t)
			if tt.lookup {
				runTx(m)
				m.repo.EXPECT().FindByIDForUpdate(gomock.Any(), 1).Return(tt.payment, nil)
			}
			if tt.open > 0 {
				m.refundRepo.EXPECT().CountOpenForPayment(gomock.Any(), 1).Return(tt.open, nil)
			}
			outcome, err := service.Refund(ctx, 1, tt.input)
			assert.ErrorIs(t, err, tt.expectKind)
			assert.Nil(t, outcome)
		})
	}
}

func TestRefund_GatewayFailure(t *testing.T) {
	ctx := context.Background()
	service, m := NewMock(t)
	runTx(m)
	m.repo.EXPECT().FindByIDForUpdate(gomock.Any(), 1).Return(&domain.Payment{
		ID: 1, ProjectID: 2, PaidAmount: 400, Status: domain.PaymentPartiallyPaid, GatewayPaymentID: "order-1",
	}, nil)
	m.refundRepo.EXPECT().CountOpenForPayment(gomock.Any(), 1).Return(0, nil)
	m.refundRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, r *domain.Refund) (*domain.Refund, error) {
		r.ID = 9
		return r, nil
	})
	m.gateway.EXPECT().Refund(gomock.Any(), "order-1", 400.0, "").Return(nil, errors.New("gateway timeout"))
	m.refundRepo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, r *domain.Refund) error {
		assert.Equal(t, 9, r.ID)
		assert.Equal(t, domain.RefundFailed, r.Status)
		return nil
	})

	_, err := service.Refund(ctx, 1, RefundInput{})
	assert.EqualError(t, err, "gateway timeout")
}

func TestRefund_ExecutedButNotApplied(t *testing.T) {
	ctx := context.Background()
	service, m := NewMock(t)
	payment := domain.Payment{ID: 1, ProjectID: 2, TotalAmount: 1000, PaidAmount: 400, Status: domain.PaymentPartiallyPaid, GatewayPaymentID: "order-1"}
	var recorded []domain.Refund

	first := payment
	runTx(m)
	runTx(m)
	m.repo.EXPECT().FindByIDForUpdate(gomock.Any(), 1).Return(&first, nil).Times(2)
	m.refundRepo.EXPECT().CountOpenForPayment(gomock.Any(), 1).Return(0, nil)
	m.refundRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, r *domain.Refund) (*domain.Refund, error) {
		r.ID = 9
		return r, nil
	})
	m.gateway.EXPECT().Refund(gomock.Any(), "order-1", 400.0, "").
		Return(&gateway.RefundResult{ID: "rf-1", Amount: 400, Status: domain.RefundProcessed}, nil).Times(1)
	m.refundRepo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, r *domain.Refund) error {
		recorded = append(recorded, *r)
		return nil
	})
	m.repo.EXPECT().UpdateRefund(gomock.Any(), gomock.Any()).Return(errors.New("db blip"))

	outcome, err := service.Refund(ctx, 1, RefundInput{})
	assert.EqualError(t, err, "db blip")
	assert.Nil(t, outcome)
	if assert.Len(t, recorded, 1) {
		assert.Equal(t, "rf-1", recorded[0].GatewayRefundID)
		assert.Equal(t, domain.RefundInitiated, recorded[0].Status)
	}

	// The initiated row keeps the payment from being refunded a second time.
	again := payment
	runTx(m)
	m.repo.EXPECT().FindByIDForUpdate(gomock.Any(), 1).Return(&again, nil)
	m.refundRepo.EXPECT().CountOpenForPayment(gomock.Any(), 1).Return(1, nil)

	outcome, err = service.Refund(ctx, 1, RefundInput{})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Nil(t, outcome)
}

func TestConfirm(t *testing.T) {
	ctx := context.Background()

	t.Run("Partial capture", func(t *testing.T) {
		service, m := NewMock(t)
		runTx(m)
		m.repo.EXPECT().FindByIDForUpdate(gomock.Any(), 1).Return(&domain.Payment{
			ID: 1, ProjectID: 2, TotalAmount: 1000, PendingAmount: 1000, Status: domain.PaymentPending,
		}, nil)
		m.repo.EXPECT().UpdateAmounts(gomock.Any(), &domain.Payment{
			ID: 1, ProjectID: 2, TotalAmount: 1000, PaidAmount: 400, PendingAmount: 600,
			Status: domain.PaymentPartiallyPaid, GatewayPaymentID: "order-1",
		}).Return(nil)
		m.projectRepo.EXPECT().FindWithOwner(gomock.Any(), 2).Return(project, nil)
		m.repo.EXPECT().FindByProjectID(gomock.Any(), 2).Return([]domain.Payment{
			{ID: 1, TotalAmount: 1000, PaidAmount: 400, Status: domain.PaymentPartiallyPaid},
		}, nil)
		m.projectRepo.EXPECT().UpdatePaymentStatus(gomock.Any(), 2, domain.ProjectPaymentPartiallyPaid).Return(nil)
		m.invoices.EXPECT().Generate(ctx, 1).Return(&domain.Invoice{ID: 1}, nil)

		payment, err := service.Confirm(ctx, 1, 400, "order-1")
		assert.NoError(t, err)
		assert.Equal(t, domain.PaymentPartiallyPaid, payment.Status)
	})

	t.Run("Full capture survives invoice failure", func(t *testing.T) {
		service, m := NewMock(t)
		runTx(m)
		m.repo.EXPECT().FindByIDForUpdate(gomock.Any(), 1).Return(&domain.Payment{
			ID: 1, ProjectID: 2, TotalAmount: 1000, PaidAmount: 400, PendingAmount: 600,
			Status: domain.PaymentPartiallyPaid, GatewayPaymentID: "order-1",
		}, nil)
		m.repo.EXPECT().UpdateAmounts(gomock.Any(), gomock.Any()).Return(nil)
		m.projectRepo.EXPECT().FindWithOwner(gomock.Any(), 2).Return(project, nil)
		m.repo.EXPECT().FindByProjectID(gomock.Any(), 2).Return([]domain.Payment{
			{ID: 1, TotalAmount: 1000, PaidAmount: 1000, Status: domain.PaymentSuccess},
		}, nil)
		m.projectRepo.EXPECT().UpdatePaymentStatus(gomock.Any(), 2, domain.ProjectPaymentPaid).Return(nil)
		m.invoices.EXPECT().Generate(ctx, 1).Return(nil, errors.New("disk full"))

		payment, err := service.Confirm(ctx, 1, 600, "")
		assert.NoError(t, err)
		assert.Equal(t, domain.PaymentSuccess, payment.Status)
		assert.Equal(t, 0.0, payment.PendingAmount)
	})

	t.Run("Zero amount", func(t *testing.T) {
		service, _ := NewMock(t)
		_, err := service.Confirm(ctx, 1, 0, "")
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("Refunded payment", func(t *testing.T) {
		service, m := NewMock(t)
		runTx(m)
		m.repo.EXPECT().FindByIDForUpdate(gomock.Any(), 1).Return(&domain.Payment{ID: 1, Status: domain.PaymentRefunded}, nil)
		_, err := service.Confirm(ctx, 1, 100, "")
		assert.EqualError(t, err, "Payment already refunded")
	})

	t.Run("Settled payment", func(t *testing.T) {
		service, m := NewMock(t)
		runTx(m)
		m.repo.EXPECT().FindByIDForUpdate(gomock.Any(), 1).Return(&domain.Payment{ID: 1, Status: domain.PaymentSuccess}, nil)
		_, err := service.Confirm(ctx, 1, 100, "")
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})
}

func TestOwner(t *testing.T) {
	ctx := context.Background()
	service, m := NewMock(t)

	m.repo.EXPECT().FindByID(ctx, 1).Return(&domain.Payment{ID: 1, UserID: 3}, nil)
	owner, err := service.Owner(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, 3, owner)

	m.repo.EXPECT().FindByID(ctx, 2).Return(nil, nil)
	_, err = service.Owner(ctx, 2)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	service, m := NewMock(t)

	m.repo.EXPECT().FindAll(ctx).Return([]domain.Payment{{ID: 1, ProjectID: 2, TotalAmount: 1000}}, nil)
	var buf bytes.Buffer
	assert.NoError(t, service.Export(ctx, &buf))
	assert.NotZero(t, buf.Len())

	m.repo.EXPECT().FindAll(ctx).Return(nil, errors.New("database error"))
	assert.Error(t, service.Export(ctx, &buf))
}

func TestRefunds(t *testing.T) {
	ctx := context.Background()
	service, m := NewMock(t)

	m.refundRepo.EXPECT().FindByPaymentID(ctx, 1).Return([]domain.Refund{{ID: 9, PaymentID: 1, Amount: 400}}, nil)
	refunds, err := service.Refunds(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, refunds, 1)
}

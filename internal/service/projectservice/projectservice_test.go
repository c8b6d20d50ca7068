package projectservice

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/GlebRadaev/projecthub/internal/domain"
	"github.com/GlebRadaev/projecthub/internal/pg"
	"github.com/GlebRadaev/projecthub/internal/storage"
	"github.com/GlebRadaev/projecthub/pkg/apperr"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

type mocks struct {
	repo        *MockRepo
	paymentRepo *MockPaymentRepo
	refundRepo  *MockRefundRepo
	reportRepo  *MockReportRepo
	userRepo    *MockUserRepo
	tx          *pg.MockTXManager
	storage     *MockStorage
	notifier    *MockNotifier
}

var fixedNow = time.Date(2024, 3, 7, 10, 30, 0, 0, time.UTC)

func NewMock(t *testing.T) (*Service, mocks) {
	ctrl := gomock.NewController(t)
	m := mocks{
		repo:        NewMockRepo(ctrl),
		paymentRepo: NewMockPaymentRepo(ctrl),
		refundRepo:  NewMockRefundRepo(ctrl),
		reportRepo:  NewMockReportRepo(ctrl),
		userRepo:    NewMockUserRepo(ctrl),
		tx:          pg.NewMockTXManager(ctrl),
		storage:     NewMockStorage(ctrl),
		notifier:    NewMockNotifier(ctrl),
	}
	service := New(m.repo, m.paymentRepo, m.refundRepo, m.reportRepo, m.userRepo, m.tx, m.storage, m.notifier, "http://localhost:8080")
	service.now = func() time.Time { return fixedNow }
	defer ctrl.Finish()
	return service, m
}

func runTx(m mocks) {
	m.tx.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error {
		return fn(ctx)
	})
}

func owned(p domain.Project) *domain.ProjectWithOwner {
	return &domain.ProjectWithOwner{Project: p, OwnerName: "Asha", OwnerEmail: "asha@example.com"}
}

func TestCode(t *testing.T) {
	assert.Equal(t, "HT070320241", Code(fixedNow, 0))
	assert.Equal(t, "HT0703202412", Code(fixedNow, 11))
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	errDuplicate := errors.New("duplicate key value violates unique constraint")
	valid := SubmitInput{UserID: 3, ProjectName: "Smart Irrigation", Domain: "IoT", Description: "sensors", DeliveryDate: "2024-04-01"}

	tests := []struct {
		name        string
		input       SubmitInput
		prepareMock func(m mocks)
		expectKind  error
		expectCode  string
	}{
		{
			name:  "Project created with daily code",
			input: valid,
			prepareMock: func(m mocks) {
				m.userRepo.EXPECT().FindByID(ctx, 3).Return(&domain.User{ID: 3}, nil)
				m.repo.EXPECT().CountCreatedOn(ctx, fixedNow).Return(2, nil)
				m.repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(ctx context.Context, p *domain.Project) (*domain.Project, error) {
					p.ID = 10
					return p, nil
				})
			},
			expectCode: "HT070320243",
		},
		{
			name: "Reference file stored",
			input: SubmitInput{UserID: 3, ProjectName: "Smart Irrigation", Domain: "IoT", DeliveryDate: "2024-04-01",
				File: strings.NewReader("pdf"), FileName: "brief.pdf"},
			prepareMock: func(m mocks) {
				m.userRepo.EXPECT().FindByID(ctx, 3).Return(&domain.User{ID: 3}, nil)
				m.storage.EXPECT().Save(ctx, storage.CategoryProjects, storage.TimestampedName(fixedNow, "brief.pdf"), gomock.Any()).
					Return("uploads/projects/brief.pdf", nil)
				m.repo.EXPECT().CountCreatedOn(ctx, fixedNow).Return(0, nil)
				m.repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(ctx context.Context, p *domain.Project) (*domain.Project, error) {
					assert.Equal(t, "uploads/projects/brief.pdf", p.ReferenceFile)
					return p, nil
				})
			},
			expectCode: "HT070320241",
		},
		{
			name: "Failed insert removes the stored file",
			input: SubmitInput{UserID: 3, ProjectName: "Smart Irrigation", Domain: "IoT", DeliveryDate: "2024-04-01",
				File: strings.NewReader("pdf"), FileName: "brief.pdf"},
			prepareMock: func(m mocks) {
				m.userRepo.EXPECT().FindByID(ctx, 3).Return(&domain.User{ID: 3}, nil)
				m.storage.EXPECT().Save(ctx, storage.CategoryProjects, gomock.Any(), gomock.Any()).Return("uploads/projects/brief.pdf", nil)
				m.repo.EXPECT().CountCreatedOn(ctx, fixedNow).Return(0, nil)
				m.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil, errDuplicate)
				m.storage.EXPECT().Remove(ctx, "uploads/projects/brief.pdf").Return(nil)
			},
			expectKind: errDuplicate,
		},
		{
			name: "Failed count removes the stored file",
			input: SubmitInput{UserID: 3, ProjectName: "Smart Irrigation", Domain: "IoT", DeliveryDate: "2024-04-01",
				File: strings.NewReader("pdf"), FileName: "brief.pdf"},
			prepareMock: func(m mocks) {
				m.userRepo.EXPECT().FindByID(ctx, 3).Return(&domain.User{ID: 3}, nil)
				m.storage.EXPECT().Save(ctx, storage.CategoryProjects, gomock.Any(), gomock.Any()).Return("uploads/projects/brief.pdf", nil)
				m.repo.EXPECT().CountCreatedOn(ctx, fixedNow).Return(0, errDuplicate)
				m.storage.EXPECT().Remove(ctx, "uploads/projects/brief.pdf").Return(errors.New("permission denied"))
			},
			expectKind: errDuplicate,
		},
		{
			name:        "Missing project name",
			input:       SubmitInput{UserID: 3, Domain: "IoT", DeliveryDate: "2024-04-01"},
			prepareMock: func(m mocks) {},
			expectKind:  apperr.ErrValidation,
		},
		{
			name:        "Missing delivery date",
			input:       SubmitInput{UserID: 3, ProjectName: "x", Domain: "IoT"},
			prepareMock: func(m mocks) {},
			expectKind:  apperr.ErrValidation,
		},
		{
			name:        "Malformed delivery date",
			input:       SubmitInput{UserID: 3, ProjectName: "x", Domain: "IoT", DeliveryDate: "01/04/2024"},
			prepareMock: func(m mocks) {},
			expectKind:  apperr.ErrValidation,
		},
		{
			name:  "Unknown user",
			input: valid,
			prepareMock: func(m mocks) {
				m.userRepo.EXPECT().FindByID(ctx, 3).Return(nil, nil)
			},
			expectKind: apperr.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)
			project, err := service.Submit(ctx, tt.input)
			if tt.expectKind != nil {
				assert.ErrorIs(t, err, tt.expectKind)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expectCode, project.Code)
			assert.Equal(t, domain.ProjectPending, project.Status)
		})
	}
}

func TestSubmit_MissingFieldsMessage(t *testing.T) {
	service, _ := NewMock(t)
	_, err := service.Submit(context.Background(), SubmitInput{})
	assert.EqualError(t, err, "userId, projectName, domain and deliveryDate are required")
}

func TestApprove(t *testing.T) {
	ctx := context.Background()
	pending := domain.Project{ID: 5, UserID: 3, Code: "HT070320241", ProjectName: "Irrigation", Status: domain.ProjectPending,
		DeliveryDate: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)}

	t.Run("Creates the pending payment", func(t *testing.T) {
		service, m := NewMock(t)
		m.repo.EXPECT().FindWithOwner(ctx, 5).Return(owned(pending), nil)
		runTx(m)
		locked := pending
		m.repo.EXPECT().FindByIDForUpdate(gomock.Any(), 5).Return(&locked, nil)
		m.paymentRepo.EXPECT().FindByProjectID(gomock.Any(), 5).Return(nil, nil)
		m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, p *domain.Project) error {
			assert.Equal(t, domain.ProjectPaymentPending, p.PaymentStatus)
			return nil
		})
		m.paymentRepo.EXPECT().FindOpenForProject(gomock.Any(), 5).Return(nil, nil)
		m.paymentRepo.EXPECT().Create(gomock.Any(), &domain.Payment{
			ProjectID: 5, UserID: 3, TotalAmount: 1000, PendingAmount: 1000, Status: domain.PaymentPending,
		}).Return(&domain.Payment{ID: 1}, nil)
		m.notifier.EXPECT().Send(ctx, gomock.Any()).Return(nil)

		project, err := service.Approve(ctx, 5, ApproveInput{Price: 1000, AdminNotes: "ok"})
		assert.NoError(t, err)
		assert.Equal(t, domain.ProjectApproved, project.Status)
		assert.Equal(t, 1000.0, project.TotalAmount)
		assert.Equal(t, "ok", project.AdminNotes)
	})

	t.Run("Reprices the open payment", func(t *testing.T) {
		service, m := NewMock(t)
		approved := pending
		approved.Status = domain.ProjectApproved
		m.repo.EXPECT().FindWithOwner(ctx, 5).Return(owned(approved), nil)
		runTx(m)
		m.repo.EXPECT().FindByIDForUpdate(gomock.Any(), 5).Return(&approved, nil)
		m.paymentRepo.EXPECT().FindByProjectID(gomock.Any(), 5).Return([]domain.Payment{
			{ID: 1, TotalAmount: 1000, PendingAmount: 1000, Status: domain.PaymentPending},
		}, nil)
		m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		m.paymentRepo.EXPECT().FindOpenForProject(gomock.Any(), 5).Return(&domain.Payment{ID: 1, TotalAmount: 1000, PendingAmount: 1000}, nil)
		m.paymentRepo.EXPECT().UpdateAmounts(gomock.Any(), &domain.Payment{ID: 1, TotalAmount: 1500, PendingAmount: 1500}).Return(nil)
		m.notifier.EXPECT().Send(ctx, gomock.Any()).Return(errors.New("smtp down"))

		_, err := service.Approve(ctx, 5, ApproveInput{Price: 1500, DeliveryDate: "2024-05-01"})
		assert.NoError(t, err)
	})

	t.Run("Partially paid project keeps its price", func(t *testing.T) {
		// No Update or payment writes are expected, so any of them fails the test.
		service, m := NewMock(t)
		approved := pending
		approved.Status = domain.ProjectApproved
		approved.TotalAmount = 1000
		approved.PaymentStatus = domain.ProjectPaymentPartiallyPaid
		m.repo.EXPECT().FindWithOwner(ctx, 5).Return(owned(approved), nil)
		runTx(m)
		m.repo.EXPECT().FindByIDForUpdate(gomock.Any(), 5).Return(&approved, nil)
		m.paymentRepo.EXPECT().FindByProjectID(gomock.Any(), 5).Return([]domain.Payment{
			{ID: 1, TotalAmount: 1000, PaidAmount: 400, PendingAmount: 600, Status: domain.PaymentPartiallyPaid},
		}, nil)

		project, err := service.Approve(ctx, 5, ApproveInput{Price: 1200})
		assert.ErrorIs(t, err, apperr.ErrForbidden)
		assert.Nil(t, project)
	})

	t.Run("Fully refunded project can be re-quoted", func(t *testing.T) {
		service, m := NewMock(t)
		approved := pending
		approved.Status = domain.ProjectApproved
		approved.PaymentStatus = domain.ProjectPaymentRefunded
		m.repo.EXPECT().FindWithOwner(ctx, 5).Return(owned(approved), nil)
		runTx(m)
		m.repo.EXPECT().FindByIDForUpdate(gomock.Any(), 5).Return(&approved, nil)
		m.paymentRepo.EXPECT().FindByProjectID(gomock.Any(), 5).Return([]domain.Payment{
			{ID: 1, TotalAmount: 1000, PaidAmount: 1000, RefundAmount: 1000, Status: domain.PaymentRefunded},
		}, nil)
		m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, p *domain.Project) error {
			assert.Equal(t, domain.ProjectPaymentPending, p.PaymentStatus)
			return nil
		})
		m.paymentRepo.EXPECT().FindOpenForProject(gomock.Any(), 5).Return(nil, nil)
		m.paymentRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(&domain.Payment{ID: 2}, nil)
		m.notifier.EXPECT().Send(ctx, gomock.Any()).Return(nil)

		project, err := service.Approve(ctx, 5, ApproveInput{Price: 800})
		assert.NoError(t, err)
		assert.Equal(t, domain.ProjectPaymentPending, project.PaymentStatus)
	})

	t.Run("Zero price", func(t *testing.T) {
		service, _ := NewMock(t)
		_, err := service.Approve(ctx, 5, ApproveInput{Price: 0})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("Rejected project", func(t *testing.T) {
		service, m := NewMock(t)
		rejected := pending
		rejected.Status = domain.ProjectRejected
		m.repo.EXPECT().FindWithOwner(ctx, 5).Return(owned(rejected), nil)
		_, err := service.Approve(ctx, 5, ApproveInput{Price: 100})
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("Transaction failure skips the email", func(t *testing.T) {
		service, m := NewMock(t)
		m.repo.EXPECT().FindWithOwner(ctx, 5).Return(owned(pending), nil)
		runTx(m)
		locked := pending
		m.repo.EXPECT().FindByIDForUpdate(gomock.Any(), 5).Return(&locked, nil)
		m.paymentRepo.EXPECT().FindByProjectID(gomock.Any(), 5).Return(nil, nil)
		m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(errors.New("database error"))
		_, err := service.Approve(ctx, 5, ApproveInput{Price: 100})
		assert.EqualError(t, err, "database error")
	})
}

func TestReject(t *testing.T) {
	ctx := context.Background()

	t.Run("Blank reason", func(t *testing.T) {
		service, _ := NewMock(t)
		_, err := service.Reject(ctx, 5, "  ")
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("Completed project", func(t *testing.T) {
		service, m := NewMock(t)
		m.repo.EXPECT().FindWithOwner(ctx, 5).Return(owned(domain.Project{ID: 5, Status: domain.ProjectCompleted}), nil)
		_, err := service.Reject(ctx, 5, "scope")
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("Pending project rejected", func(t *testing.T) {
		service, m := NewMock(t)
		m.repo.EXPECT().FindWithOwner(ctx, 5).Return(owned(domain.Project{ID: 5, Status: domain.ProjectPending}), nil)
		m.repo.EXPECT().Update(ctx, gomock.Any()).Return(nil)
		m.notifier.EXPECT().Send(ctx, gomock.Any()).Return(nil)
		project, err := service.Reject(ctx, 5, "scope")
		assert.NoError(t, err)
		assert.Equal(t, domain.ProjectRejected, project.Status)
		assert.Equal(t, "scope", project.AdminNotes)
	})
}

func TestComplete(t *testing.T) {
	ctx := context.Background()

	t.Run("Solution stored under the project code", func(t *testing.T) {
		service, m := NewMock(t)
		m.repo.EXPECT().FindWithOwner(ctx, 5).Return(owned(domain.Project{ID: 5, Code: "HT070320241", Status: domain.ProjectApproved}), nil)
		m.storage.EXPECT().Save(ctx, storage.CategorySolutions, storage.CodedName("HT070320241", fixedNow, ".zip"), gomock.Any()).
			Return("uploads/solutions/HT070320241.zip", nil)
		m.repo.EXPECT().Update(ctx, gomock.Any()).Return(nil)
		m.notifier.EXPECT().Send(ctx, gomock.Any()).Return(nil)

		project, err := service.Complete(ctx, 5, strings.NewReader("zip"), "final.zip")
		assert.NoError(t, err)
		assert.Equal(t, domain.ProjectCompleted, project.Status)
		assert.Equal(t, "uploads/solutions/HT070320241.zip", project.SolutionFile)
	})

	t.Run("Failed update removes the solution", func(t *testing.T) {
		service, m := NewMock(t)
		m.repo.EXPECT().FindWithOwner(ctx, 5).Return(owned(domain.Project{ID: 5, Code: "HT070320241", Status: domain.ProjectApproved}), nil)
		m.storage.EXPECT().Save(ctx, storage.CategorySolutions, gomock.Any(), gomock.Any()).Return("uploads/solutions/HT070320241.zip", nil)
		m.repo.EXPECT().Update(ctx, gomock.Any()).Return(errors.New("database error"))
		m.storage.EXPECT().Remove(ctx, "uploads/solutions/HT070320241.zip").Return(nil)

		_, err := service.Complete(ctx, 5, strings.NewReader("zip"), "final.zip")
		assert.EqualError(t, err, "database error")
	})

	t.Run("Pending project", func(t *testing.T) {
		service, m := NewMock(t)
		m.repo.EXPECT().FindWithOwner(ctx, 5).Return(owned(domain.Project{ID: 5, Status: domain.ProjectPending}), nil)
		_, err := service.Complete(ctx, 5, nil, "")
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	base := domain.Project{ID: 5, UserID: 3, Code: "HT070320241"}

	tests := []struct {
		name          string
		paymentStatus string
		prepareMock   func(m mocks)
		expectKind    error
	}{
		{
			name:          "Unpaid project removed with its owner",
			paymentStatus: domain.ProjectPaymentPending,
			prepareMock: func(m mocks) {
				runTx(m)
				m.paymentRepo.EXPECT().FindByProjectID(gomock.Any(), 5).Return([]domain.Payment{{Status: domain.PaymentPending}}, nil)
				m.refundRepo.EXPECT().CountPendingForProject(gomock.Any(), 5).Return(0, nil)
				m.userRepo.EXPECT().DeleteCascade(gomock.Any(), 3).Return(nil)
				m.notifier.EXPECT().Send(ctx, gomock.Any()).Return(nil)
			},
		},
		{
			name:          "Fully refunded project removed",
			paymentStatus: domain.ProjectPaymentRefunded,
			prepareMock: func(m mocks) {
				runTx(m)
				m.paymentRepo.EXPECT().FindByProjectID(gomock.Any(), 5).Return([]domain.Payment{{Status: domain.PaymentRefunded}}, nil)
				m.refundRepo.EXPECT().CountPendingForProject(gomock.Any(), 5).Return(0, nil)
				m.userRepo.EXPECT().DeleteCascade(gomock.Any(), 3).Return(nil)
				m.notifier.EXPECT().Send(ctx, gomock.Any()).Return(nil)
			},
		},
		{
			name:          "Paid after the first read refused",
			paymentStatus: domain.ProjectPaymentPaid,
			prepareMock: func(m mocks) {
				runTx(m)
			},
			expectKind: apperr.ErrForbidden,
		},
		{
			name:          "Partially paid project refused",
			paymentStatus: domain.ProjectPaymentPartiallyPaid,
			prepareMock: func(m mocks) {
				runTx(m)
			},
			expectKind: apperr.ErrForbidden,
		},
		{
			name:          "Successful payment row refused",
			paymentStatus: domain.ProjectPaymentPending,
			prepareMock: func(m mocks) {
				runTx(m)
				m.paymentRepo.EXPECT().FindByProjectID(gomock.Any(), 5).Return([]domain.Payment{{Status: domain.PaymentSuccess}}, nil)
			},
			expectKind: apperr.ErrForbidden,
		},
		{
			name:          "Pending refund refused",
			paymentStatus: domain.ProjectPaymentRefunded,
			prepareMock: func(m mocks) {
				runTx(m)
				m.paymentRepo.EXPECT().FindByProjectID(gomock.Any(), 5).Return([]domain.Payment{{Status: domain.PaymentRefunded}}, nil)
				m.refundRepo.EXPECT().CountPendingForProject(gomock.Any(), 5).Return(1, nil)
			},
			expectKind: apperr.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			stale := base
			stale.PaymentStatus = domain.ProjectPaymentPending
			locked := base
			locked.PaymentStatus = tt.paymentStatus
			m.repo.EXPECT().FindWithOwner(ctx, 5).Return(owned(stale), nil)
			m.repo.EXPECT().FindByIDForUpdate(gomock.Any(), 5).Return(&locked, nil)
			tt.prepareMock(m)

			err := service.Delete(ctx, 5)
			if tt.expectKind != nil {
				assert.ErrorIs(t, err, tt.expectKind)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDelete_NotFound(t *testing.T) {
	service, m := NewMock(t)
	m.repo.EXPECT().FindWithOwner(gomock.Any(), 99).Return(nil, nil)
	assert.ErrorIs(t, service.Delete(context.Background(), 99), apperr.ErrNotFound)
}

func TestDelete_RemovedBeforeLock(t *testing.T) {
	service, m := NewMock(t)
	m.repo.EXPECT().FindWithOwner(gomock.Any(), 5).Return(owned(domain.Project{ID: 5, UserID: 3}), nil)
	runTx(m)
	m.repo.EXPECT().FindByIDForUpdate(gomock.Any(), 5).Return(nil, nil)
	assert.ErrorIs(t, service.Delete(context.Background(), 5), apperr.ErrNotFound)
}

func TestSummary(t *testing.T) {
	t.Run("Counters collected", func(t *testing.T) {
		service, m := NewMock(t)
		m.repo.EXPECT().CountByStatus(gomock.Any()).Return(map[string]int{"pending": 2, "completed": 1}, nil)
		m.reportRepo.EXPECT().CountOpen(gomock.Any()).Return(4, nil)
		m.paymentRepo.EXPECT().Totals(gomock.Any()).Return(2500.0, 400.0, nil)

		summary, err := service.Summary(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, &domain.Summary{
			ProjectsByStatus: map[string]int{"pending": 2, "completed": 1},
			OpenReports:      4,
			TotalCollected:   2500,
			TotalRefunded:    400,
		}, summary)
	})

	t.Run("One query fails", func(t *testing.T) {
		service, m := NewMock(t)
		m.repo.EXPECT().CountByStatus(gomock.Any()).Return(nil, errors.New("database error"))
		m.reportRepo.EXPECT().CountOpen(gomock.Any()).Return(0, nil).AnyTimes()
		m.paymentRepo.EXPECT().Totals(gomock.Any()).Return(0.0, 0.0, nil).AnyTimes()

		_, err := service.Summary(context.Background())
		assert.Error(t, err)
	})
}

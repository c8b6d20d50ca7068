package projectrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/GlebRadaev/projecthub/internal/domain"
	"github.com/GlebRadaev/projecthub/internal/pg"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface, *pg.MockTXManager) {
	ctrl := gomock.NewController(t)
	mockTxManager := pg.NewMockTXManager(ctrl)

	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB, mockTxManager)
	defer mockDB.Close()

	return repo, mockDB, mockTxManager
}

var projectRowColumns = []string{
	"id", "code", "user_id", "project_name", "domain", "description", "reference_file",
	"solution_file", "status", "admin_notes", "total_amount", "delivery_date",
	"payment_status", "created_at", "updated_at",
}

func TestRepository_FindByID(t *testing.T) {
	repo, mock, _ := NewMock(t)
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	delivery := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		id        int
		mockSetup func()
		expectErr bool
		result    *domain.Project
	}{
		{
			name: "Project found",
			id:   1,
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("FROM projects p WHERE p.id = $1")).
					WithArgs(1).
					WillReturnRows(pgxmock.NewRows(projectRowColumns).AddRow(
						1, "PRJ20240510-001", 4, "Traffic AI", "ML", "desc", "", "",
						"approved", "", 1000.0, delivery, "pending", now, now,
					))
			},
			result: &domain.Project{
				ID: 1, Code: "PRJ20240510-001", UserID: 4, ProjectName: "Traffic AI", Domain: "ML",
				Description: "desc", Status: "approved", TotalAmount: 1000, DeliveryDate: delivery,
				PaymentStatus: "pending", CreatedAt: now, UpdatedAt: now,
			},
		},
		{
			name: "Project not found",
			id:   2,
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("FROM projects p WHERE p.id = $1")).
					WithArgs(2).
					WillReturnError(pgx.ErrNoRows)
			},
		},
		{
			name: "Database error",
			id:   3,
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("FROM projects p WHERE p.id = $1")).
					WithArgs(3).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.FindByID(context.Background(), tt.id)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.result, result)
		})
	}
}

func TestRepository_FindByIDForUpdate(t *testing.T) {
	repo, mock, _ := NewMock(t)
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	delivery := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM projects p WHERE p.id = $1 FOR UPDATE")).
		WithArgs(1).
		WillReturnRows(pgxmock.NewRows(projectRowColumns).AddRow(
			1, "PRJ20240510-001", 4, "Traffic AI", "ML", "desc", "", "",
			"approved", "", 1000.0, delivery, "partially_paid", now, now,
		))

	result, err := repo.FindByIDForUpdate(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, "partially_paid", result.PaymentStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindWithOwner(t *testing.T) {
	repo, mock, _ := NewMock(t)
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("JOIN users u ON u.id = p.user_id WHERE p.id = $1")).
		WithArgs(1).
		WillReturnRows(pgxmock.NewRows(append(projectRowColumns, "name", "email")).AddRow(
			1, "PRJ20240510-001", 4, "Traffic AI", "ML", "", "", "",
			"pending", "", 0.0, now, "", now, now, "Asha", "asha@example.com",
		))

	result, err := repo.FindWithOwner(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, "Asha", result.OwnerName)
	assert.Equal(t, "asha@example.com", result.OwnerEmail)
	assert.Equal(t, "", result.PaymentStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create(t *testing.T) {
	repo, mock, _ := NewMock(t)
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	p := &domain.Project{
		Code: "PRJ20240510-002", UserID: 4, ProjectName: "Traffic AI", Domain: "ML",
		Status: domain.ProjectPending, DeliveryDate: now,
	}

	t.Run("Create project successfully", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO projects")).
			WithArgs(p.Code, 4, "Traffic AI", "ML", "", "", domain.ProjectPending, now).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(9, now, now))

		result, err := repo.Create(context.Background(), p)
		assert.NoError(t, err)
		assert.Equal(t, 9, result.ID)
	})

	t.Run("Duplicate code", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO projects")).
			WithArgs(p.Code, 4, "Traffic AI", "ML", "", "", domain.ProjectPending, now).
			WillReturnError(errors.New("duplicate key value violates unique constraint"))

		result, err := repo.Create(context.Background(), p)
		assert.Error(t, err)
		assert.Nil(t, result)
	})
}

func TestRepository_CountCreatedOn(t *testing.T) {
	repo, mock, _ := NewMock(t)
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM projects WHERE created_at::date = $1::date")).
		WithArgs(day).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountCreatedOn(context.Background(), day)
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRepository_Update(t *testing.T) {
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	p := &domain.Project{ID: 1, Status: domain.ProjectApproved, AdminNotes: "ok", TotalAmount: 1500, DeliveryDate: now, PaymentStatus: "pending"}

	tests := []struct {
		name      string
		dbErr     error
		expectErr bool
	}{
		{name: "Update project successfully"},
		{name: "Database error", dbErr: errors.New("database error"), expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, tx := NewMock(t)
			tx.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error {
				exp := mock.ExpectExec(regexp.QuoteMeta("UPDATE projects")).
					WithArgs(domain.ProjectApproved, "ok", 1500.0, now, "pending", "", 1)
				if tt.dbErr != nil {
					exp.WillReturnError(tt.dbErr)
				} else {
					exp.WillReturnResult(pgxmock.NewResult("UPDATE", 1))
				}
				return fn(ctx)
			})

			err := repo.Update(context.Background(), p)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_UpdatePaymentStatus(t *testing.T) {
	repo, mock, _ := NewMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE projects SET payment_status = $1")).
		WithArgs("refunded", 5).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, repo.UpdatePaymentStatus(context.Background(), 5, "refunded"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CountByStatus(t *testing.T) {
	repo, mock, _ := NewMock(t)

	t.Run("Counts grouped by status", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*) FROM projects GROUP BY status")).
			WillReturnRows(pgxmock.NewRows([]string{"status", "count"}).
				AddRow("pending", 3).
				AddRow("completed", 1))

		counts, err := repo.CountByStatus(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, map[string]int{"pending": 3, "completed": 1}, counts)
	})

	t.Run("Database error", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*) FROM projects GROUP BY status")).
			WillReturnError(errors.New("database error"))

		counts, err := repo.CountByStatus(context.Background())
		assert.Error(t, err)
		assert.Nil(t, counts)
	})
}

func TestRepository_FindAll(t *testing.T) {
	repo, mock, _ := NewMock(t)
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE ($1 = '' OR p.status = $1)")).
		WithArgs("pending").
		WillReturnRows(pgxmock.NewRows(append(projectRowColumns, "name", "email")).
			AddRow(1, "PRJ-1", 4, "A", "ML", "", "", "", "pending", "", 0.0, now, "", now, now, "Asha", "a@x.io").
			AddRow(2, "PRJ-2", 5, "B", "IoT", "", "", "", "pending", "", 0.0, now, "", now, now, "Ravi", "r@x.io"))

	projects, err := repo.FindAll(context.Background(), "pending")
	assert.NoError(t, err)
	assert.Len(t, projects, 2)
	assert.Equal(t, "Ravi", projects[1].OwnerName)
}

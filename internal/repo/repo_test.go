package repo

import (
	"testing"

	"github.com/GlebRadaev/projecthub/internal/pg"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*Repositories, pgxmock.PgxPoolIface) {
	ctrl := gomock.NewController(t)
	mockDB, err := pgxmock.NewPool()
	mockTxManager := pg.NewMockTXManager(ctrl)
	assert.NoError(t, err)
	repo := New(mockDB, mockTxManager)
	defer mockDB.Close()

	return repo, mockDB
}

func TestNew(t *testing.T) {
	repo, mock := NewMock(t)

	assert.NotNil(t, repo.UserRepo)
	assert.NotNil(t, repo.TeamRepo)
	assert.NotNil(t, repo.ProjectRepo)
	assert.NotNil(t, repo.PaymentRepo)
	assert.NotNil(t, repo.RefundRepo)
	assert.NotNil(t, repo.InvoiceRepo)
	assert.NotNil(t, repo.ReportRepo)
	assert.NotNil(t, repo.DomainRepo)
	assert.NotNil(t, repo.CertificateRepo)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unmet expectations: %v", err)
	}
}

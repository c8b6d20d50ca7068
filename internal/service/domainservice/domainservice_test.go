package domainservice

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/GlebRadaev/projecthub/internal/domain"
	"github.com/GlebRadaev/projecthub/internal/storage"
	"github.com/GlebRadaev/projecthub/pkg/apperr"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

var fixedNow = time.Date(2024, 3, 7, 10, 30, 0, 0, time.UTC)

func NewMock(t *testing.T) (*Service, *MockRepo, *MockStorage) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepo(ctrl)
	store := NewMockStorage(ctrl)
	service := New(repo, store)
	service.now = func() time.Time { return fixedNow }
	defer ctrl.Finish()
	return service, repo, store
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		input       Input
		prepareMock func(repo *MockRepo, store *MockStorage)
		expectKind  error
	}{
		{
			name:  "Domain with brochure",
			input: Input{Name: " IoT ", Description: "Internet of Things", File: strings.NewReader("pdf"), FileName: "iot.pdf"},
			prepareMock: func(repo *MockRepo, store *MockStorage) {
				repo.EXPECT().FindByName(ctx, "IoT").Return(nil, nil)
				store.EXPECT().Save(ctx, storage.CategoryDomains, storage.TimestampedName(fixedNow, "iot.pdf"), gomock.Any()).
					Return("uploads/domains/iot.pdf", nil)
				repo.EXPECT().Create(ctx, &domain.Domain{Name: "IoT", Description: "Internet of Things", PDFPath: "uploads/domains/iot.pdf"}).
					Return(&domain.Domain{ID: 1, Name: "IoT"}, nil)
			},
		},
		{
			name:        "Blank name",
			input:       Input{Name: " "},
			prepareMock: func(repo *MockRepo, store *MockStorage) {},
			expectKind:  apperr.ErrValidation,
		},
		{
			name:  "Duplicate name",
			input: Input{Name: "iot"},
			prepareMock: func(repo *MockRepo, store *MockStorage) {
				repo.EXPECT().FindByName(ctx, "iot").Return(&domain.Domain{ID: 1, Name: "IoT"}, nil)
			},
			expectKind: apperr.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, store := NewMock(t)
			tt.prepareMock(repo, store)
			d, err := service.Create(ctx, tt.input)
			if tt.expectKind != nil {
				assert.ErrorIs(t, err, tt.expectKind)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, 1, d.ID)
		})
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("Keeps the old PDF when none is uploaded", func(t *testing.T) {
		service, repo, _ := NewMock(t)
		repo.EXPECT().FindByID(ctx, 1).Return(&domain.Domain{ID: 1, Name: "IoT", PDFPath: "uploads/domains/old.pdf"}, nil)
		repo.EXPECT().FindByName(ctx, "IoT & Robotics").Return(nil, nil)
		repo.EXPECT().Update(ctx, &domain.Domain{ID: 1, Name: "IoT & Robotics", Description: "merged", PDFPath: "uploads/domains/old.pdf"}).Return(nil)

		d, err := service.Update(ctx, 1, Input{Name: "IoT & Robotics", Description: "merged"})
		assert.NoError(t, err)
		assert.Equal(t, "uploads/domains/old.pdf", d.PDFPath)
	})

	t.Run("New PDF replaces the old one", func(t *testing.T) {
		service, repo, store := NewMock(t)
		repo.EXPECT().FindByID(ctx, 1).Return(&domain.Domain{ID: 1, Name: "IoT", PDFPath: "uploads/domains/old.pdf"}, nil)
		repo.EXPECT().FindByName(ctx, "IoT").Return(&domain.Domain{ID: 1, Name: "IoT"}, nil)
		store.EXPECT().Save(ctx, storage.CategoryDomains, storage.TimestampedName(fixedNow, "new.pdf"), gomock.Any()).
			Return("uploads/domains/new.pdf", nil)
		repo.EXPECT().Update(ctx, gomock.Any()).Return(nil)
		store.EXPECT().Remove(ctx, "uploads/domains/old.pdf").Return(errors.New("already gone"))

		d, err := service.Update(ctx, 1, Input{Name: "IoT", File: strings.NewReader("pdf"), FileName: "new.pdf"})
		assert.NoError(t, err)
		assert.Equal(t, "uploads/domains/new.pdf", d.PDFPath)
	})

	t.Run("Same name on itself is allowed", func(t *testing.T) {
		service, repo, _ := NewMock(t)
		repo.EXPECT().FindByID(ctx, 1).Return(&domain.Domain{ID: 1, Name: "IoT"}, nil)
		repo.EXPECT().FindByName(ctx, "IoT").Return(&domain.Domain{ID: 1, Name: "IoT"}, nil)
		repo.EXPECT().Update(ctx, gomock.Any()).Return(nil)

		_, err := service.Update(ctx, 1, Input{Name: "IoT"})
		assert.NoError(t, err)
	})

	t.Run("Missing domain", func(t *testing.T) {
		service, repo, _ := NewMock(t)
		repo.EXPECT().FindByID(ctx, 1).Return(nil, nil)
		_, err := service.Update(ctx, 1, Input{Name: "IoT"})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	service, repo, store := NewMock(t)

	repo.EXPECT().FindByID(ctx, 3).Return(&domain.Domain{ID: 3, PDFPath: "uploads/domains/ai.pdf"}, nil)
	repo.EXPECT().Delete(ctx, 3).Return(nil)
	store.EXPECT().Remove(ctx, "uploads/domains/ai.pdf").Return(nil)
	assert.NoError(t, service.Delete(ctx, 3))

	repo.EXPECT().FindByID(ctx, 1).Return(&domain.Domain{ID: 1}, nil)
	repo.EXPECT().Delete(ctx, 1).Return(errors.New("database error"))
	assert.Error(t, service.Delete(ctx, 1))

	repo.EXPECT().FindByID(ctx, 2).Return(nil, nil)
	assert.ErrorIs(t, service.Delete(ctx, 2), apperr.ErrNotFound)
}

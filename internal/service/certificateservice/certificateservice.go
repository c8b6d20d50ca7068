package certificateservice

import (
	"context"
	"io"
	"time"

	"github.com/GlebRadaev/projecthub/internal/domain"
	"github.com/GlebRadaev/projecthub/internal/storage"
	"github.com/GlebRadaev/projecthub/pkg/apperr"
	"go.uber.org/zap"
)

type Repo interface {
	Create(ctx context.Context, c *domain.Certificate) (*domain.Certificate, error)
	FindByProjectID(ctx context.Context, projectID int) ([]domain.Certificate, error)
}

type ProjectRepo interface {
	FindByID(ctx context.Context, id int) (*domain.Project, error)
}

type Storage interface {
	Save(ctx context.Context, category, filename string, r io.Reader) (string, error)
	Remove(ctx context.Context, path string) error
}

type Service struct {
	repo        Repo
	projectRepo ProjectRepo
	storage     Storage
	now         func() time.Time
}

func New(repo Repo, projectRepo ProjectRepo, storage Storage) *Service {
	return &Service{repo: repo, projectRepo: projectRepo, storage: storage, now: time.Now}
}

// Upload attaches a certificate image to a completed project.
func (s *Service) Upload(ctx context.Context, projectID int, file io.Reader, fileName string) (*domain.Certificate, error) {
	if file == nil {
		return nil, apperr.Validation("Certificate file is required")
	}
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperr.NotFound("Project not found")
	}
	if project.Status != domain.ProjectCompleted {
		return nil, apperr.Forbidden("Certificates can only be issued for completed projects")
	}

	path, err := s.storage.Save(ctx, storage.CategoryCertificates, storage.TimestampedName(s.now(), fileName), file)
	if err != nil {
		return nil, err
	}
	cert, err := s.repo.Create(ctx, &domain.Certificate{
		ProjectID: project.ID,
		UserID:    project.UserID,
		FilePath:  path,
	})
	if err != nil {
		if rerr := s.storage.Remove(ctx, path); rerr != nil {
			zap.L().Error("can't remove orphaned certificate", zap.String("path", path), zap.Error(rerr))
		}
		return nil, err
	}
	zap.L().Info("certificate uploaded", zap.Int("projectID", projectID), zap.String("path", path))
	return cert, nil
}

func (s *Service) ListForProject(ctx context.Context, projectID int) ([]domain.Certificate, error) {
	return s.repo.FindByProjectID(ctx, projectID)
}

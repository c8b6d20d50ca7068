package domainservice

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/GlebRadaev/projecthub/internal/domain"
	"github.com/GlebRadaev/projecthub/internal/storage"
	"github.com/GlebRadaev/projecthub/pkg/apperr"
	"go.uber.org/zap"
)

type Repo interface {
	Create(ctx context.Context, d *domain.Domain) (*domain.Domain, error)
	FindByID(ctx context.Context, id int) (*domain.Domain, error)
	FindByName(ctx context.Context, name string) (*domain.Domain, error)
	FindAll(ctx context.Context) ([]domain.Domain, error)
	Update(ctx context.Context, d *domain.Domain) error
	Delete(ctx context.Context, id int) error
}

type Storage interface {
	Save(ctx context.Context, category, filename string, r io.Reader) (string, error)
	Remove(ctx context.Context, path string) error
}

type Service struct {
	repo    Repo
	storage Storage
	now     func() time.Time
}

func New(repo Repo, storage Storage) *Service {
	return &Service{repo: repo, storage: storage, now: time.Now}
}

type Input struct {
	Name        string
	Description string
	File        io.Reader
	FileName    string
}

func (s *Service) List(ctx context.Context) ([]domain.Domain, error) {
	return s.repo.FindAll(ctx)
}

// checkName rejects blank names and names taken by another domain.
func (s *Service) checkName(ctx context.Context, name string, selfID int) error {
	if name == "" {
		return apperr.Validation("Domain name is required")
	}
	existing, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return apperr.Validation("Domain already exists")
	}
	return nil
}

func (s *Service) savePDF(ctx context.Context, in Input) (string, error) {
	if in.File == nil {
		return "", nil
	}
	return s.storage.Save(ctx, storage.CategoryDomains, storage.TimestampedName(s.now(), in.FileName), in.File)
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Domain, error) {
	name := strings.TrimSpace(in.Name)
	if err := s.checkName(ctx, name, 0); err != nil {
		return nil, err
	}
	path, err := s.savePDF(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, &domain.Domain{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		PDFPath:     path,
	})
}

// Update replaces name and description; the PDF changes only when a new file is given.
func (s *Service) Update(ctx context.Context, id int, in Input) (*domain.Domain, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.NotFound("Domain not found")
	}
	name := strings.TrimSpace(in.Name)
	if err := s.checkName(ctx, name, id); err != nil {
		return nil, err
	}
	path, err := s.savePDF(ctx, in)
	if err != nil {
		return nil, err
	}

	old := d.PDFPath
	d.Name = name
	d.Description = strings.TrimSpace(in.Description)
	if path != "" {
		d.PDFPath = path
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	if path != "" {
		s.removePDF(ctx, old)
	}
	return d, nil
}

// removePDF drops a brochure that is no longer referenced. Failures are only logged.
func (s *Service) removePDF(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := s.storage.Remove(ctx, path); err != nil {
		zap.L().Error("can't remove domain brochure", zap.String("path", path), zap.Error(err))
	}
}

func (s *Service) Delete(ctx context.Context, id int) error {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if d == nil {
		return apperr.NotFound("Domain not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.removePDF(ctx, d.PDFPath)
	return nil
}

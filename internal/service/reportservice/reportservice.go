package reportservice

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/GlebRadaev/projecthub/internal/domain"
	"github.com/GlebRadaev/projecthub/internal/notify"
	"github.com/GlebRadaev/projecthub/internal/storage"
	"github.com/GlebRadaev/projecthub/pkg/apperr"
	"go.uber.org/zap"
)

type Repo interface {
	Create(ctx context.Context, rp *domain.Report) (*domain.Report, error)
	FindByID(ctx context.Context, id int) (*domain.Report, error)
	FindByUserID(ctx context.Context, userID int) ([]domain.Report, error)
	FindAll(ctx context.Context) ([]domain.Report, error)
	Update(ctx context.Context, rp *domain.Report) error
	Delete(ctx context.Context, id int) error
}

type UserRepo interface {
	FindByID(ctx context.Context, id int) (*domain.User, error)
}

type ProjectRepo interface {
	FindByID(ctx context.Context, id int) (*domain.Project, error)
}

type Storage interface {
	Save(ctx context.Context, category, filename string, r io.Reader) (string, error)
	Remove(ctx context.Context, path string) error
}

type Notifier interface {
	Send(ctx context.Context, msg notify.Message) error
}

type Service struct {
	repo        Repo
	userRepo    UserRepo
	projectRepo ProjectRepo
	storage     Storage
	notifier    Notifier
	now         func() time.Time
}

func New(repo Repo, userRepo UserRepo, projectRepo ProjectRepo, storage Storage, notifier Notifier) *Service {
	return &Service{
		repo:        repo,
		userRepo:    userRepo,
		projectRepo: projectRepo,
		storage:     storage,
		notifier:    notifier,
		now:         time.Now,
	}
}

type CreateInput struct {
	UserID      int
	ProjectID   *int
	Title       string
	Description string
	File        io.Reader
	FileName    string
}

var ErrTitleRequired = apperr.Validation("Title and description are required.")

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Report, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" || description == "" {
		return nil, ErrTitleRequired
	}

	if in.ProjectID != nil {
		project, err := s.projectRepo.FindByID(ctx, *in.ProjectID)
		if err != nil {
			return nil, err
		}
		if project == nil {
			return nil, apperr.NotFound("Project not found")
		}
		if project.UserID != in.UserID {
			return nil, apperr.Forbidden("Project does not belong to you")
		}
	}

	report := &domain.Report{
		UserID:      in.UserID,
		ProjectID:   in.ProjectID,
		Title:       title,
		Description: description,
		Status:      domain.ReportOpen,
	}
	if in.File != nil {
		path, err := s.storage.Save(ctx, storage.CategoryReports, storage.TimestampedName(s.now(), in.FileName), in.File)
		if err != nil {
			return nil, err
		}
		report.Attachment = path
	}

	created, err := s.repo.Create(ctx, report)
	if err != nil {
		if report.Attachment != "" {
			if rerr := s.storage.Remove(ctx, report.Attachment); rerr != nil {
				zap.L().Error("can't remove orphaned attachment", zap.String("path", report.Attachment), zap.Error(rerr))
			}
		}
		return nil, err
	}
	zap.L().Info("report created", zap.Int("reportID", created.ID), zap.Int("userID", created.UserID))
	return created, nil
}

func (s *Service) ListForUser(ctx context.Context, userID int) ([]domain.Report, error) {
	return s.repo.FindByUserID(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Report, error) {
	return s.repo.FindAll(ctx)
}

func (s *Service) openReport(ctx context.Context, id int) (*domain.Report, error) {
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, apperr.NotFound("Report not found")
	}
	if report.Status == domain.ReportClosed {
		return nil, apperr.Forbidden("Report is already closed")
	}
	return report, nil
}

func (s *Service) notifyOwner(ctx context.Context, report *domain.Report, build func(email, name string) notify.Message) {
	user, err := s.userRepo.FindByID(ctx, report.UserID)
	if err != nil || user == nil {
		zap.L().Error("can't load report owner for notification", zap.Int("reportID", report.ID), zap.Error(err))
		return
	}
	if err := s.notifier.Send(ctx, build(user.Email, user.Name)); err != nil {
		zap.L().Error("notification failed after report update", zap.Int("reportID", report.ID), zap.Error(err))
	}
}

func (s *Service) Reply(ctx context.Context, id int, note string) (*domain.Report, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, apperr.Validation("Reply note is required")
	}
	report, err := s.openReport(ctx, id)
	if err != nil {
		return nil, err
	}

	report.AdminNote = note
	if err := s.repo.Update(ctx, report); err != nil {
		return nil, err
	}
	s.notifyOwner(ctx, report, func(email, name string) notify.Message {
		return notify.ReportReply(email, name, report.Title, note)
	})
	return report, nil
}

func (s *Service) Close(ctx context.Context, id int) (*domain.Report, error) {
	report, err := s.openReport(ctx, id)
	if err != nil {
		return nil, err
	}

	report.Status = domain.ReportClosed
	if err := s.repo.Update(ctx, report); err != nil {
		return nil, err
	}
	s.notifyOwner(ctx, report, func(email, name string) notify.Message {
		return notify.ReportClosed(email, name, report.Title, report.AdminNote)
	})
	return report, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if report == nil {
		return apperr.NotFound("Report not found")
	}
	return s.repo.Delete(ctx, id)
}

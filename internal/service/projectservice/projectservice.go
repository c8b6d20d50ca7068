package projectservice

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/GlebRadaev/projecthub/internal/domain"
	"github.com/GlebRadaev/projecthub/internal/notify"
	"github.com/GlebRadaev/projecthub/internal/pg"
	"github.com/GlebRadaev/projecthub/internal/storage"
	"github.com/GlebRadaev/projecthub/pkg/apperr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Repo interface {
	CountCreatedOn(ctx context.Context, day time.Time) (int, error)
	Create(ctx context.Context, p *domain.Project) (*domain.Project, error)
	FindByID(ctx context.Context, id int) (*domain.Project, error)
	FindByIDForUpdate(ctx context.Context, id int) (*domain.Project, error)
	FindWithOwner(ctx context.Context, id int) (*domain.ProjectWithOwner, error)
	FindByUserID(ctx context.Context, userID int) ([]domain.Project, error)
	FindAll(ctx context.Context, status string) ([]domain.ProjectWithOwner, error)
	Update(ctx context.Context, p *domain.Project) error
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type PaymentRepo interface {
	FindOpenForProject(ctx context.Context, projectID int) (*domain.Payment, error)
	FindByProjectID(ctx context.Context, projectID int) ([]domain.Payment, error)
	Create(ctx context.Context, p *domain.Payment) (*domain.Payment, error)
	UpdateAmounts(ctx context.Context, p *domain.Payment) error
	Totals(ctx context.Context) (float64, float64, error)
}

type RefundRepo interface {
	CountPendingForProject(ctx context.Context, projectID int) (int, error)
}

type ReportRepo interface {
	CountOpen(ctx context.Context) (int, error)
}

type UserRepo interface {
	FindByID(ctx context.Context, id int) (*domain.User, error)
	DeleteCascade(ctx context.Context, userID int) error
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
	paymentRepo PaymentRepo
	refundRepo  RefundRepo
	reportRepo  ReportRepo
	userRepo    UserRepo
	txManager   pg.TXManager
	storage     Storage
	notifier    Notifier
	baseURL     string
	now         func() time.Time
}

func New(repo Repo, paymentRepo PaymentRepo, refundRepo RefundRepo, reportRepo ReportRepo, userRepo UserRepo,
	txManager pg.TXManager, storage Storage, notifier Notifier, baseURL string) *Service {
	return &Service{
		repo:        repo,
		paymentRepo: paymentRepo,
		refundRepo:  refundRepo,
		reportRepo:  reportRepo,
		userRepo:    userRepo,
		txManager:   txManager,
		storage:     storage,
		notifier:    notifier,
		baseURL:     baseURL,
		now:         time.Now,
	}
}

const dateLayout = "2006-01-02"

type SubmitInput struct {
	UserID       int
	ProjectName  string
	Domain       string
	Description  string
	DeliveryDate string
	File         io.Reader
	FileName     string
}

type ApproveInput struct {
	Price        float64
	AdminNotes   string
	DeliveryDate string
}

// Code formats a project code from the submission day and the number of
// projects already created that day.
func Code(day time.Time, countToday int) string {
	return fmt.Sprintf("HT%02d%02d%04d%d", day.Day(), int(day.Month()), day.Year(), countToday+1)
}

func parseDate(value string) (time.Time, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, apperr.Validation("Invalid delivery date, expected YYYY-MM-DD")
	}
	return d, nil
}

func (s *Service) Submit(ctx context.Context, in SubmitInput) (*domain.Project, error) {
	if in.UserID == 0 || strings.TrimSpace(in.ProjectName) == "" || strings.TrimSpace(in.Domain) == "" || strings.TrimSpace(in.DeliveryDate) == "" {
		return nil, apperr.Validation("userId, projectName, domain and deliveryDate are required")
	}
	deliveryDate, err := parseDate(in.DeliveryDate)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("User not found")
	}

	now := s.now()
	project := &domain.Project{
		UserID:       in.UserID,
		ProjectName:  strings.TrimSpace(in.ProjectName),
		Domain:       strings.TrimSpace(in.Domain),
		Description:  strings.TrimSpace(in.Description),
		Status:       domain.ProjectPending,
		DeliveryDate: deliveryDate,
	}
	if in.File != nil {
		path, err := s.storage.Save(ctx, storage.CategoryProjects, storage.TimestampedName(now, in.FileName), in.File)
		if err != nil {
			return nil, err
		}
		project.ReferenceFile = path
	}

	count, err := s.repo.CountCreatedOn(ctx, now)
	if err != nil {
		s.discard(ctx, project.ReferenceFile)
		return nil, err
	}
	project.Code = Code(now, count)

	created, err := s.repo.Create(ctx, project)
	if err != nil {
		zap.L().Error("can't create project", zap.String("code", project.Code), zap.Error(err))
		s.discard(ctx, project.ReferenceFile)
		return nil, err
	}
	zap.L().Info("project submitted", zap.String("code", created.Code), zap.Int("userID", created.UserID))
	return created, nil
}

func (s *Service) ListForUser(ctx context.Context, userID int) ([]domain.Project, error) {
	return s.repo.FindByUserID(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context, status string) ([]domain.ProjectWithOwner, error) {
	return s.repo.FindAll(ctx, status)
}

func (s *Service) Get(ctx context.Context, id int) (*domain.ProjectWithOwner, error) {
	project, err := s.repo.FindWithOwner(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperr.NotFound("Project not found")
	}
	return project, nil
}

// Owner returns the id of the user that submitted the project.
func (s *Service) Owner(ctx context.Context, id int) (int, error) {
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if project == nil {
		return 0, apperr.NotFound("Project not found")
	}
	return project.UserID, nil
}

// discard removes an upload whose row was never written.
func (s *Service) discard(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := s.storage.Remove(ctx, path); err != nil {
		zap.L().Error("can't remove orphaned upload", zap.String("path", path), zap.Error(err))
	}
}

func (s *Service) notify(ctx context.Context, msg notify.Message) {
	if err := s.notifier.Send(ctx, msg); err != nil {
		zap.L().Error("notification failed after project update", zap.String("to", msg.To), zap.Error(err))
	}
}

func (s *Service) Approve(ctx context.Context, id int, in ApproveInput) (*domain.Project, error) {
	if in.Price <= 0 {
		return nil, apperr.Validation("Price must be greater than zero")
	}
	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.Status != domain.ProjectPending && project.Status != domain.ProjectApproved {
		return nil, apperr.Forbidden(fmt.Sprintf("Project is already %s", project.Status))
	}

	p := &project.Project
	p.Status = domain.ProjectApproved
	p.TotalAmount = in.Price
	if notes := strings.TrimSpace(in.AdminNotes); notes != "" {
		p.AdminNotes = notes
	}
	if strings.TrimSpace(in.DeliveryDate) != "" {
		d, err := parseDate(in.DeliveryDate)
		if err != nil {
			return nil, err
		}
		p.DeliveryDate = d
	}

	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		locked, err := s.repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if locked == nil {
			return apperr.NotFound("Project not found")
		}
		if locked.Status != domain.ProjectPending && locked.Status != domain.ProjectApproved {
			return apperr.Forbidden(fmt.Sprintf("Project is already %s", locked.Status))
		}
		payments, err := s.paymentRepo.FindByProjectID(ctx, id)
		if err != nil {
			return err
		}
		if domain.NetPaid(payments) > 0 {
			return apperr.Forbidden("Project already has captured payments and can't be re-priced")
		}
		p.PaymentStatus = domain.DeriveProjectPaymentStatus(in.Price, payments)

		if err := s.repo.Update(ctx, p); err != nil {
			return err
		}
		open, err := s.paymentRepo.FindOpenForProject(ctx, p.ID)
		if err != nil {
			return err
		}
		if open == nil {
			_, err = s.paymentRepo.Create(ctx, &domain.Payment{
				ProjectID:     p.ID,
				UserID:        p.UserID,
				TotalAmount:   in.Price,
				PendingAmount: in.Price,
				Status:        domain.PaymentPending,
			})
			return err
		}
		open.TotalAmount = in.Price
		open.PendingAmount = in.Price
		return s.paymentRepo.UpdateAmounts(ctx, open)
	})
	if err != nil {
		zap.L().Error("can't approve project", zap.Int("projectID", id), zap.Error(err))
		return nil, err
	}

	s.notify(ctx, notify.ProjectApproved(project.OwnerEmail, project.OwnerName, p.ProjectName, p.Code,
		p.TotalAmount, p.DeliveryDate.Format(dateLayout), p.AdminNotes))
	zap.L().Info("project approved", zap.String("code", p.Code), zap.Float64("price", p.TotalAmount))
	return p, nil
}

func (s *Service) Reject(ctx context.Context, id int, reason string) (*domain.Project, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.Validation("Rejection reason is required")
	}
	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.Status == domain.ProjectCompleted {
		return nil, apperr.Forbidden("Completed projects can't be rejected")
	}

	p := &project.Project
	p.Status = domain.ProjectRejected
	p.AdminNotes = reason
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.notify(ctx, notify.ProjectRejected(project.OwnerEmail, project.OwnerName, p.ProjectName, p.Code, reason))
	return p, nil
}

// Complete marks an approved project as delivered, storing the optional solution file.
func (s *Service) Complete(ctx context.Context, id int, file io.Reader, fileName string) (*domain.Project, error) {
	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.Status != domain.ProjectApproved {
		return nil, apperr.Forbidden("Only approved projects can be completed")
	}

	p := &project.Project
	if file != nil {
		name := storage.CodedName(p.Code, s.now(), filepath.Ext(fileName))
		path, err := s.storage.Save(ctx, storage.CategorySolutions, name, file)
		if err != nil {
			return nil, err
		}
		p.SolutionFile = path
	}
	p.Status = domain.ProjectCompleted
	if err := s.repo.Update(ctx, p); err != nil {
		if file != nil {
			s.discard(ctx, p.SolutionFile)
		}
		return nil, err
	}

	s.notify(ctx, notify.ProjectCompleted(project.OwnerEmail, project.OwnerName, p.ProjectName, p.Code,
		storage.PublicURL(s.baseURL, p.SolutionFile)))
	return p, nil
}

func (s *Service) AddNote(ctx context.Context, id int, note string) (*domain.Project, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, apperr.Validation("Note is required")
	}
	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	p := &project.Project
	p.AdminNotes = note
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.notify(ctx, notify.ProjectNote(project.OwnerEmail, project.OwnerName, p.ProjectName, p.Code, note))
	return p, nil
}

// Delete removes the project together with its owner and everything the owner
// created. It is refused while captured funds or a pending refund exist.
func (s *Service) Delete(ctx context.Context, id int) error {
	project, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		locked, err := s.repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if locked == nil {
			return apperr.NotFound("Project not found")
		}
		if !domain.ProjectDeletable(locked.PaymentStatus) {
			return apperr.Forbidden("Project has successful payments and can't be deleted")
		}
		payments, err := s.paymentRepo.FindByProjectID(ctx, id)
		if err != nil {
			return err
		}
		for _, payment := range payments {
			if domain.PaymentBlocksDeletion(payment.Status) {
				return apperr.Forbidden("Project has successful payments and can't be deleted")
			}
		}
		pending, err := s.refundRepo.CountPendingForProject(ctx, id)
		if err != nil {
			return err
		}
		if pending > 0 {
			return apperr.Forbidden("Project has a pending refund and can't be deleted")
		}
		return s.userRepo.DeleteCascade(ctx, project.UserID)
	})
	if err != nil {
		return err
	}

	zap.L().Info("project deleted", zap.String("code", project.Code), zap.Int("userID", project.UserID))
	s.notify(ctx, notify.ProjectDeleted(project.OwnerEmail, project.OwnerName, project.ProjectName, project.Code))
	return nil
}

// Summary gathers the admin dashboard counters concurrently.
func (s *Service) Summary(ctx context.Context) (*domain.Summary, error) {
	summary := &domain.Summary{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		counts, err := s.repo.CountByStatus(ctx)
		summary.ProjectsByStatus = counts
		return err
	})
	g.Go(func() error {
		open, err := s.reportRepo.CountOpen(ctx)
		summary.OpenReports = open
		return err
	})
	g.Go(func() error {
		collected, refunded, err := s.paymentRepo.Totals(ctx)
		summary.TotalCollected = collected
		summary.TotalRefunded = refunded
		return err
	})

	if err := g.Wait(); err != nil {
		zap.L().Error("can't build summary", zap.Error(err))
		return nil, err
	}
	return summary, nil
}

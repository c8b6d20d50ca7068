package projectrepo

import (
	"context"
	"errors"
	"time"

	"github.com/GlebRadaev/projecthub/internal/domain"
	"github.com/GlebRadaev/projecthub/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type Repository struct {
	db        pg.Database
	txManager pg.TXManager
}

func New(db pg.Database, txManager pg.TXManager) *Repository {
	return &Repository{
		db:        db,
		txManager: txManager,
	}
}

const projectColumns = `p.id, p.code, p.user_id, p.project_name, p.domain, p.description, p.reference_file,
	p.solution_file, p.status, p.admin_notes, p.total_amount, p.delivery_date,
	COALESCE(p.payment_status, ''), p.created_at, p.updated_at`

func projectFields(p *domain.Project) []any {
	return []any{
		&p.ID, &p.Code, &p.UserID, &p.ProjectName, &p.Domain, &p.Description, &p.ReferenceFile,
		&p.SolutionFile, &p.Status, &p.AdminNotes, &p.TotalAmount, &p.DeliveryDate,
		&p.PaymentStatus, &p.CreatedAt, &p.UpdatedAt,
	}
}

func (r *Repository) CountCreatedOn(ctx context.Context, day time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM projects WHERE created_at::date = $1::date`
	var count int
	if err := r.db.QueryRow(ctx, query, day).Scan(&count); err != nil {
		zap.L().Error("can't count projects of the day", zap.Error(err))
		return 0, err
	}
	return count, nil
}

func (r *Repository) Create(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	query := `
		INSERT INTO projects (code, user_id, project_name, domain, description, reference_file, status, delivery_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, p.Code, p.UserID, p.ProjectName, p.Domain, p.Description, p.ReferenceFile, p.Status, p.DeliveryDate).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		zap.L().Error("can't save project", zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (r *Repository) FindByID(ctx context.Context, id int) (*domain.Project, error) {
	return r.findOne(ctx, `SELECT `+projectColumns+` FROM projects p WHERE p.id = $1`, id)
}

// FindByIDForUpdate locks the project row until the surrounding transaction ends.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id int) (*domain.Project, error) {
	return r.findOne(ctx, `SELECT `+projectColumns+` FROM projects p WHERE p.id = $1 FOR UPDATE`, id)
}

func (r *Repository) findOne(ctx context.Context, query string, id int) (*domain.Project, error) {
	var p domain.Project
	err := r.db.QueryRow(ctx, query, id).Scan(projectFields(&p)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find project", zap.Error(err))
		return nil, err
	}
	return &p, nil
}

func (r *Repository) FindWithOwner(ctx context.Context, id int) (*domain.ProjectWithOwner, error) {
	query := `
		SELECT ` + projectColumns + `, u.name, u.email
		FROM projects p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = $1
	`
	var p domain.ProjectWithOwner
	err := r.db.QueryRow(ctx, query, id).Scan(append(projectFields(&p.Project), &p.OwnerName, &p.OwnerEmail)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find project with owner", zap.Error(err))
		return nil, err
	}
	return &p, nil
}

func (r *Repository) FindByUserID(ctx context.Context, userID int) ([]domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects p WHERE p.user_id = $1 ORDER BY p.created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		zap.L().Error("can't get user projects", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(projectFields(&p)...); err != nil {
			zap.L().Error("can't scan project row", zap.Error(err))
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// FindAll lists projects with their owners, newest first. An empty status means all.
func (r *Repository) FindAll(ctx context.Context, status string) ([]domain.ProjectWithOwner, error) {
	query := `
		SELECT ` + projectColumns + `, u.name, u.email
		FROM projects p
		JOIN users u ON u.id = p.user_id
		WHERE ($1 = '' OR p.status = $1)
		ORDER BY p.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, status)
	if err != nil {
		zap.L().Error("can't get projects", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var projects []domain.ProjectWithOwner
	for rows.Next() {
		var p domain.ProjectWithOwner
		if err := rows.Scan(append(projectFields(&p.Project), &p.OwnerName, &p.OwnerEmail)...); err != nil {
			zap.L().Error("can't scan project row", zap.Error(err))
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// Update writes the admin-editable columns of a project.
func (r *Repository) Update(ctx context.Context, p *domain.Project) error {
	query := `
		UPDATE projects
		SET status = $1, admin_notes = $2, total_amount = $3, delivery_date = $4,
			payment_status = NULLIF($5, ''), solution_file = $6, updated_at = NOW()
		WHERE id = $7
	`
	return r.txManager.Begin(ctx, func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, query, p.Status, p.AdminNotes, p.TotalAmount, p.DeliveryDate, p.PaymentStatus, p.SolutionFile, p.ID)
		if err != nil {
			zap.L().Error("failed to update project", zap.Error(err))
			return err
		}
		return nil
	})
}

func (r *Repository) UpdatePaymentStatus(ctx context.Context, id int, status string) error {
	query := `UPDATE projects SET payment_status = $1, updated_at = NOW() WHERE id = $2`
	if _, err := r.db.Exec(ctx, query, status, id); err != nil {
		zap.L().Error("failed to update project payment status", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM projects GROUP BY status`)
	if err != nil {
		zap.L().Error("can't count projects by status", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			zap.L().Error("can't scan project count", zap.Error(err))
			return nil, err
		}
		counts[status] = count
	}
	return counts, nil
}

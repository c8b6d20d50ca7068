package reportrepo

import (
	"context"
	"errors"

	"github.com/GlebRadaev/projecthub/internal/domain"
	"github.com/GlebRadaev/projecthub/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

const reportColumns = `id, user_id, project_id, title, description, attachment, status, admin_note, created_at, updated_at`

func reportFields(rp *domain.Report) []any {
	return []any{&rp.ID, &rp.UserID, &rp.ProjectID, &rp.Title, &rp.Description, &rp.Attachment, &rp.Status, &rp.AdminNote, &rp.CreatedAt, &rp.UpdatedAt}
}

func (r *Repository) Create(ctx context.Context, rp *domain.Report) (*domain.Report, error) {
	query := `
		INSERT INTO reports (user_id, project_id, title, description, attachment, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, rp.UserID, rp.ProjectID, rp.Title, rp.Description, rp.Attachment, rp.Status).
		Scan(&rp.ID, &rp.CreatedAt, &rp.UpdatedAt)
	if err != nil {
		zap.L().Error("can't save report", zap.Error(err))
		return nil, err
	}
	return rp, nil
}

func (r *Repository) FindByID(ctx context.Context, id int) (*domain.Report, error) {
	var rp domain.Report
	err := r.db.QueryRow(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id).Scan(reportFields(&rp)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find report", zap.Error(err))
		return nil, err
	}
	return &rp, nil
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]domain.Report, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't get reports", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var reports []domain.Report
	for rows.Next() {
		var rp domain.Report
		if err := rows.Scan(reportFields(&rp)...); err != nil {
			zap.L().Error("can't scan report row", zap.Error(err))
			return nil, err
		}
		reports = append(reports, rp)
	}
	return reports, nil
}

func (r *Repository) FindByUserID(ctx context.Context, userID int) ([]domain.Report, error) {
	return r.list(ctx, `SELECT `+reportColumns+` FROM reports WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *Repository) FindAll(ctx context.Context) ([]domain.Report, error) {
	return r.list(ctx, `SELECT `+reportColumns+` FROM reports ORDER BY created_at DESC`)
}

func (r *Repository) Update(ctx context.Context, rp *domain.Report) error {
	query := `UPDATE reports SET status = $1, admin_note = $2, updated_at = NOW() WHERE id = $3`
	if _, err := r.db.Exec(ctx, query, rp.Status, rp.AdminNote, rp.ID); err != nil {
		zap.L().Error("failed to update report", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM reports WHERE id = $1`, id); err != nil {
		zap.L().Error("failed to delete report", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) CountOpen(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reports WHERE status = 'open'`).Scan(&count); err != nil {
		zap.L().Error("can't count open reports", zap.Error(err))
		return 0, err
	}
	return count, nil
}

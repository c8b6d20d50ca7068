package certificaterepo

import (
	"context"

	"github.com/GlebRadaev/projecthub/internal/domain"
	"github.com/GlebRadaev/projecthub/internal/pg"
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

func (r *Repository) Create(ctx context.Context, c *domain.Certificate) (*domain.Certificate, error) {
	query := `
		INSERT INTO certificates (project_id, user_id, file_path)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := r.db.QueryRow(ctx, query, c.ProjectID, c.UserID, c.FilePath).Scan(&c.ID, &c.CreatedAt); err != nil {
		zap.L().Error("can't save certificate", zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (r *Repository) FindByProjectID(ctx context.Context, projectID int) ([]domain.Certificate, error) {
	query := `
		SELECT id, project_id, user_id, file_path, created_at
		FROM certificates
		WHERE project_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		zap.L().Error("can't get certificates", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var certs []domain.Certificate
	for rows.Next() {
		var c domain.Certificate
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.UserID, &c.FilePath, &c.CreatedAt); err != nil {
			zap.L().Error("can't scan certificate row", zap.Error(err))
			return nil, err
		}
		certs = append(certs, c)
	}
	return certs, nil
}

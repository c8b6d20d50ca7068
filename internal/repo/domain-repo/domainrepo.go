package domainrepo

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

const domainColumns = `id, name, description, pdf_path, created_at, updated_at`

func domainFields(d *domain.Domain) []any {
	return []any{&d.ID, &d.Name, &d.Description, &d.PDFPath, &d.CreatedAt, &d.UpdatedAt}
}

func (r *Repository) findOne(ctx context.Context, query string, args ...any) (*domain.Domain, error) {
	var d domain.Domain
	if err := r.db.QueryRow(ctx, query, args...).Scan(domainFields(&d)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find domain", zap.Error(err))
		return nil, err
	}
	return &d, nil
}

func (r *Repository) FindByID(ctx context.Context, id int) (*domain.Domain, error) {
	return r.findOne(ctx, `SELECT `+domainColumns+` FROM domains WHERE id = $1`, id)
}

func (r *Repository) FindByName(ctx context.Context, name string) (*domain.Domain, error) {
	return r.findOne(ctx, `SELECT `+domainColumns+` FROM domains WHERE LOWER(name) = LOWER($1)`, name)
}

func (r *Repository) FindAll(ctx context.Context) ([]domain.Domain, error) {
	rows, err := r.db.Query(ctx, `SELECT `+domainColumns+` FROM domains ORDER BY name ASC`)
	if err != nil {
		zap.L().Error("can't get domains", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var domains []domain.Domain
	for rows.Next() {
		var d domain.Domain
		if err := rows.Scan(domainFields(&d)...); err != nil {
			zap.L().Error("can't scan domain row", zap.Error(err))
			return nil, err
		}
		domains = append(domains, d)
	}
	return domains, nil
}

func (r *Repository) Create(ctx context.Context, d *domain.Domain) (*domain.Domain, error) {
	query := `
		INSERT INTO domains (name, description, pdf_path)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRow(ctx, query, d.Name, d.Description, d.PDFPath).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt); err != nil {
		zap.L().Error("can't save domain", zap.Error(err))
		return nil, err
	}
	return d, nil
}

func (r *Repository) Update(ctx context.Context, d *domain.Domain) error {
	query := `UPDATE domains SET name = $1, description = $2, pdf_path = $3, updated_at = NOW() WHERE id = $4`
	if _, err := r.db.Exec(ctx, query, d.Name, d.Description, d.PDFPath, d.ID); err != nil {
		zap.L().Error("failed to update domain", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM domains WHERE id = $1`, id); err != nil {
		zap.L().Error("failed to delete domain", zap.Error(err))
		return err
	}
	return nil
}

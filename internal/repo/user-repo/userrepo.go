package userrepo

import (
	"context"
	"errors"

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

const userColumns = `id, name, email, phone, password_hash, role, is_verified, created_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Phone, &user.PasswordHash, &user.Role, &user.IsVerified, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (repo *Repository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := scanUser(repo.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find user by email", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (repo *Repository) FindByID(ctx context.Context, id int) (*domain.User, error) {
	user, err := scanUser(repo.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find user by id", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (repo *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (name, email, phone, password_hash, role, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := repo.db.QueryRow(ctx, query, user.Name, user.Email, user.Phone, user.PasswordHash, user.Role, user.IsVerified).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		zap.L().Error("can't save user", zap.Error(err))
		return nil, err
	}
	return user, nil
}

// cascadeQueries remove everything owned by a user, children first.
var cascadeQueries = []string{
	`DELETE FROM certificates WHERE user_id = $1`,
	`DELETE FROM reports WHERE user_id = $1`,
	`DELETE FROM refunds WHERE payment_id IN (SELECT id FROM payments WHERE user_id = $1)`,
	`DELETE FROM invoices WHERE project_id IN (SELECT id FROM projects WHERE user_id = $1)`,
	`DELETE FROM payments WHERE user_id = $1`,
	`DELETE FROM projects WHERE user_id = $1`,
	`DELETE FROM students WHERE team_id IN (SELECT id FROM student_teams WHERE user_id = $1)`,
	`DELETE FROM student_teams WHERE user_id = $1`,
	`DELETE FROM users WHERE id = $1`,
}

// DeleteCascade removes the user and all rows hanging off it in one transaction.
func (repo *Repository) DeleteCascade(ctx context.Context, userID int) error {
	return repo.txManager.Begin(ctx, func(ctx context.Context) error {
		for _, query := range cascadeQueries {
			if _, err := repo.db.Exec(ctx, query, userID); err != nil {
				zap.L().Error("can't delete user data", zap.Int("userID", userID), zap.Error(err))
				return err
			}
		}
		return nil
	})
}

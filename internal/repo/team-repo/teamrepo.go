package teamrepo

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

// Create stores the team and all of its members in one transaction.
func (r *Repository) Create(ctx context.Context, team *domain.StudentTeam) (*domain.StudentTeam, error) {
	teamQuery := `
		INSERT INTO student_teams (user_id, team_name, college_name, department, year)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	memberQuery := `
		INSERT INTO students (team_id, name, email, phone, roll_number)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		err := r.db.QueryRow(ctx, teamQuery, team.UserID, team.TeamName, team.CollegeName, team.Department, team.Year).
			Scan(&team.ID, &team.CreatedAt)
		if err != nil {
			zap.L().Error("can't save team", zap.Error(err))
			return err
		}
		for i := range team.Members {
			m := &team.Members[i]
			m.TeamID = team.ID
			if err := r.db.QueryRow(ctx, memberQuery, m.TeamID, m.Name, m.Email, m.Phone, m.RollNumber).Scan(&m.ID); err != nil {
				zap.L().Error("can't save team member", zap.Error(err))
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

func (r *Repository) FindByUserID(ctx context.Context, userID int) (*domain.StudentTeam, error) {
	query := `
		SELECT id, user_id, team_name, college_name, department, year, created_at
		FROM student_teams
		WHERE user_id = $1
	`
	var t domain.StudentTeam
	err := r.db.QueryRow(ctx, query, userID).
		Scan(&t.ID, &t.UserID, &t.TeamName, &t.CollegeName, &t.Department, &t.Year, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find team", zap.Error(err))
		return nil, err
	}
	members, err := r.members(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	t.Members = members
	return &t, nil
}

func (r *Repository) members(ctx context.Context, teamID int) ([]domain.Student, error) {
	query := `SELECT id, team_id, name, email, phone, roll_number FROM students WHERE team_id = $1 ORDER BY id`
	rows, err := r.db.Query(ctx, query, teamID)
	if err != nil {
		zap.L().Error("can't get team members", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var students []domain.Student
	for rows.Next() {
		var s domain.Student
		if err := rows.Scan(&s.ID, &s.TeamID, &s.Name, &s.Email, &s.Phone, &s.RollNumber); err != nil {
			zap.L().Error("can't scan team member", zap.Error(err))
			return nil, err
		}
		students = append(students, s)
	}
	return students, nil
}

// FindAll lists teams without members.
func (r *Repository) FindAll(ctx context.Context) ([]domain.StudentTeam, error) {
	query := `
		SELECT id, user_id, team_name, college_name, department, year, created_at
		FROM student_teams
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		zap.L().Error("can't get teams", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var teams []domain.StudentTeam
	for rows.Next() {
		var t domain.StudentTeam
		if err := rows.Scan(&t.ID, &t.UserID, &t.TeamName, &t.CollegeName, &t.Department, &t.Year, &t.CreatedAt); err != nil {
			zap.L().Error("can't scan team row", zap.Error(err))
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, nil
}

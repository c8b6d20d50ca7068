package teamservice

import (
	"context"
	"strings"

	"github.com/GlebRadaev/projecthub/internal/domain"
	"github.com/GlebRadaev/projecthub/pkg/apperr"
	"go.uber.org/zap"
)

type Repo interface {
	Create(ctx context.Context, team *domain.StudentTeam) (*domain.StudentTeam, error)
	FindByUserID(ctx context.Context, userID int) (*domain.StudentTeam, error)
	FindAll(ctx context.Context) ([]domain.StudentTeam, error)
}

type Service struct {
	repo Repo
}

func New(repo Repo) *Service {
	return &Service{repo: repo}
}

// Submit stores the team of a user. A user can submit only once.
func (s *Service) Submit(ctx context.Context, team *domain.StudentTeam) (*domain.StudentTeam, error) {
	team.TeamName = strings.TrimSpace(team.TeamName)
	if team.TeamName == "" {
		return nil, apperr.Validation("Team name is required")
	}
	if len(team.Members) == 0 {
		return nil, apperr.Validation("At least one team member is required")
	}
	for _, m := range team.Members {
		if strings.TrimSpace(m.Name) == "" {
			return nil, apperr.Validation("Every team member needs a name")
		}
	}

	existing, err := s.repo.FindByUserID(ctx, team.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Forbidden("Team details have already been submitted")
	}

	created, err := s.repo.Create(ctx, team)
	if err != nil {
		return nil, err
	}
	zap.L().Info("team submitted", zap.Int("userID", team.UserID), zap.Int("members", len(team.Members)))
	return created, nil
}

func (s *Service) Get(ctx context.Context, userID int) (*domain.StudentTeam, error) {
	team, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, apperr.NotFound("Team not found")
	}
	return team, nil
}

func (s *Service) List(ctx context.Context) ([]domain.StudentTeam, error) {
	return s.repo.FindAll(ctx)
}

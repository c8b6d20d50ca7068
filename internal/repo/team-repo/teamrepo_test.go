package teamrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/GlebRadaev/projecthub/internal/domain"
	"github.com/GlebRadaev/projecthub/internal/pg"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface, *pg.MockTXManager) {
	ctrl := gomock.NewController(t)
	mockTxManager := pg.NewMockTXManager(ctrl)

	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB, mockTxManager)
	defer mockDB.Close()

	return repo, mockDB, mockTxManager
}

var teamRowColumns = []string{"id", "user_id", "team_name", "college_name", "department", "year", "created_at"}

func TestRepository_Create(t *testing.T) {
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		memberErr error
		expectErr bool
	}{
		{name: "Team and members saved"},
		{name: "Member insert fails", memberErr: errors.New("database error"), expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, tx := NewMock(t)
			team := &domain.StudentTeam{
				UserID: 1, TeamName: "Alpha", CollegeName: "MIT", Department: "CSE", Year: "4",
				Members: []domain.Student{{Name: "Asha", RollNumber: "R1"}, {Name: "Ravi", RollNumber: "R2"}},
			}

			tx.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error {
				mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO student_teams")).
					WithArgs(1, "Alpha", "MIT", "CSE", "4").
					WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(10, now))
				first := mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO students")).
					WithArgs(10, "Asha", "", "", "R1")
				if tt.memberErr != nil {
					first.WillReturnError(tt.memberErr)
				} else {
					first.WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(100))
					mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO students")).
						WithArgs(10, "Ravi", "", "", "R2").
						WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(101))
				}
				return fn(ctx)
			})

			result, err := repo.Create(context.Background(), team)
			if tt.expectErr {
				assert.Error(t, err)
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 10, result.ID)
				assert.Equal(t, 101, result.Members[1].ID)
				assert.Equal(t, 10, result.Members[1].TeamID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_FindByUserID(t *testing.T) {
	repo, mock, _ := NewMock(t)
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	t.Run("Team with members", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM student_teams WHERE user_id = $1")).
			WithArgs(1).
			WillReturnRows(pgxmock.NewRows(teamRowColumns).AddRow(10, 1, "Alpha", "MIT", "CSE", "4", now))
		mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE team_id = $1")).
			WithArgs(10).
			WillReturnRows(pgxmock.NewRows([]string{"id", "team_id", "name", "email", "phone", "roll_number"}).
				AddRow(100, 10, "Asha", "", "", "R1"))

		team, err := repo.FindByUserID(context.Background(), 1)
		assert.NoError(t, err)
		assert.Equal(t, "Alpha", team.TeamName)
		assert.Equal(t, []domain.Student{{ID: 100, TeamID: 10, Name: "Asha", RollNumber: "R1"}}, team.Members)
	})

	t.Run("No team", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM student_teams WHERE user_id = $1")).
			WithArgs(2).
			WillReturnError(pgx.ErrNoRows)

		team, err := repo.FindByUserID(context.Background(), 2)
		assert.NoError(t, err)
		assert.Nil(t, team)
	})
}

func TestRepository_FindAll(t *testing.T) {
	repo, mock, _ := NewMock(t)
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM student_teams ORDER BY created_at DESC")).
		WillReturnRows(pgxmock.NewRows(teamRowColumns).
			AddRow(10, 1, "Alpha", "MIT", "CSE", "4", now).
			AddRow(11, 2, "Beta", "IIT", "ECE", "3", now))

	teams, err := repo.FindAll(context.Background())
	assert.NoError(t, err)
	assert.Len(t, teams, 2)
}

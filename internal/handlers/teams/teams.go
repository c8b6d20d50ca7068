package teams

import (
	"context"
	"net/http"

	"github.com/GlebRadaev/projecthub/internal/domain"
	"github.com/GlebRadaev/projecthub/internal/dto"
	"github.com/GlebRadaev/projecthub/pkg/auth"
	"github.com/GlebRadaev/projecthub/pkg/utils"
	"github.com/GlebRadaev/projecthub/pkg/validate"
)

type Service interface {
	Submit(ctx context.Context, team *domain.StudentTeam) (*domain.StudentTeam, error)
	Get(ctx context.Context, userID int) (*domain.StudentTeam, error)
	List(ctx context.Context) ([]domain.StudentTeam, error)
}

type TeamHandler struct {
	teamService Service
}

func New(teamService Service) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

func toDTO(t domain.StudentTeam) dto.TeamResponseDTO {
	members := make([]dto.TeamMemberDTO, 0, len(t.Members))
	for _, m := range t.Members {
		members = append(members, dto.TeamMemberDTO{Name: m.Name, Email: m.Email, Phone: m.Phone, RollNumber: m.RollNumber})
	}
	return dto.TeamResponseDTO{
		ID:          t.ID,
		UserID:      t.UserID,
		TeamName:    t.TeamName,
		CollegeName: t.CollegeName,
		Department:  t.Department,
		Year:        t.Year,
		Members:     members,
	}
}

// Submit godoc
//
//	@Summary		Submit team details
//	@Description	Each student can submit their team once
//	@Tags			Teams
//	@Accept			json
//	@Produce		json
//	@Param			request	body	dto.TeamRequestDTO	true	"Team and members"
//	@Security		BearerAuth
//	@Success		201	{object}	dto.TeamResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid team details"
//	@Failure		403	{object}	utils.Response	"Team already submitted"
//	@Router			/api/teams [post]
func (h *TeamHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var req dto.TeamRequestDTO
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	team := &domain.StudentTeam{
		UserID:      userID,
		TeamName:    req.TeamName,
		CollegeName: req.CollegeName,
		Department:  req.Department,
		Year:        req.Year,
	}
	for _, m := range req.Members {
		team.Members = append(team.Members, domain.Student{Name: m.Name, Email: m.Email, Phone: m.Phone, RollNumber: m.RollNumber})
	}

	created, err := h.teamService.Submit(r.Context(), team)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, toDTO(*created))
}

// Mine godoc
//
//	@Summary	Own team details
//	@Tags		Teams
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	dto.TeamResponseDTO
//	@Failure	404	{object}	utils.Response	"Team not found"
//	@Router		/api/teams/me [get]
func (h *TeamHandler) Mine(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	team, err := h.teamService.Get(r.Context(), userID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toDTO(*team))
}

// List godoc
//
//	@Summary	All submitted teams
//	@Tags		Admin
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}		dto.TeamResponseDTO
//	@Failure	403	{object}	utils.Response	"Admin access required"
//	@Router		/api/admin/teams [get]
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teamService.List(r.Context())
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	resp := make([]dto.TeamResponseDTO, 0, len(teams))
	for _, t := range teams {
		resp = append(resp, toDTO(t))
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

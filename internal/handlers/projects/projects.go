package projects

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GlebRadaev/projecthub/internal/domain"
	"github.com/GlebRadaev/projecthub/internal/dto"
	"github.com/GlebRadaev/projecthub/internal/service/projectservice"
	"github.com/GlebRadaev/projecthub/pkg/auth"
	"github.com/GlebRadaev/projecthub/pkg/utils"
	"github.com/GlebRadaev/projecthub/pkg/validate"
)

type Service interface {
	Submit(ctx context.Context, in projectservice.SubmitInput) (*domain.Project, error)
	ListForUser(ctx context.Context, userID int) ([]domain.Project, error)
	ListAll(ctx context.Context, status string) ([]domain.ProjectWithOwner, error)
	Get(ctx context.Context, id int) (*domain.ProjectWithOwner, error)
	Approve(ctx context.Context, id int, in projectservice.ApproveInput) (*domain.Project, error)
	Reject(ctx context.Context, id int, reason string) (*domain.Project, error)
	Complete(ctx context.Context, id int, file io.Reader, fileName string) (*domain.Project, error)
	AddNote(ctx context.Context, id int, note string) (*domain.Project, error)
	Delete(ctx context.Context, id int) error
	Summary(ctx context.Context) (*domain.Summary, error)
}

type ProjectHandler struct {
	projectService Service
}

func New(projectService Service) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

const dateLayout = "2006-01-02"

func toDTO(p domain.Project) dto.ProjectResponseDTO {
	resp := dto.ProjectResponseDTO{
		ID:            p.ID,
		Code:          p.Code,
		UserID:        p.UserID,
		ProjectName:   p.ProjectName,
		Domain:        p.Domain,
		Description:   p.Description,
		ReferenceFile: p.ReferenceFile,
		SolutionFile:  p.SolutionFile,
		Status:        p.Status,
		AdminNotes:    p.AdminNotes,
		TotalAmount:   p.TotalAmount,
		PaymentStatus: p.PaymentStatus,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
	if !p.DeliveryDate.IsZero() {
		resp.DeliveryDate = p.DeliveryDate.Format(dateLayout)
	}
	return resp
}

func toOwnedDTO(p domain.ProjectWithOwner) dto.ProjectResponseDTO {
	resp := toDTO(p.Project)
	resp.OwnerName = p.OwnerName
	resp.OwnerEmail = p.OwnerEmail
	return resp
}

// Request godoc
//
//	@Summary		Submit a project request
//	@Description	Multipart form with an optional reference file
//	@Tags			Projects
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			userId			formData	int		true	"Submitting user"
//	@Param			projectName		formData	string	true	"Project name"
//	@Param			domain			formData	string	true	"Domain"
//	@Param			description		formData	string	false	"Description"
//	@Param			deliveryDate	formData	string	true	"Delivery date, YYYY-MM-DD"
//	@Param			referenceFile	formData	file	false	"Reference document"
//	@Security		BearerAuth
//	@Success		201	{object}	dto.ProjectResponseDTO
//	@Failure		400	{object}	utils.Response	"Missing required fields"
//	@Failure		403	{object}	utils.Response	"Submitting for another user"
//	@Router			/api/projects/request [post]
func (h *ProjectHandler) Request(w http.ResponseWriter, r *http.Request) {
	if err := utils.ParseMultipart(r); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	userID, _ := strconv.Atoi(strings.TrimSpace(r.FormValue("userId")))
	if userID != 0 && !auth.CanAccess(r.Context(), userID) {
		utils.RespondWithError(w, http.StatusForbidden, "You can only submit projects for yourself")
		return
	}

	file, fileName, err := utils.FormFile(r, "referenceFile")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	in := projectservice.SubmitInput{
		UserID:       userID,
		ProjectName:  r.FormValue("projectName"),
		Domain:       r.FormValue("domain"),
		Description:  r.FormValue("description"),
		DeliveryDate: r.FormValue("deliveryDate"),
		FileName:     fileName,
	}
	if file != nil {
		defer file.Close()
		in.File = file
	}

	project, err := h.projectService.Submit(r.Context(), in)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, toDTO(*project))
}

// Mine godoc
//
//	@Summary	Projects of the current user
//	@Tags		Projects
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}	dto.ProjectResponseDTO
//	@Router		/api/projects/all [get]
func (h *ProjectHandler) Mine(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	projects, err := h.projectService.ListForUser(r.Context(), userID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	resp := make([]dto.ProjectResponseDTO, 0, len(projects))
	for _, p := range projects {
		resp = append(resp, toDTO(p))
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// Get godoc
//
//	@Summary	Project details
//	@Tags		Projects
//	@Produce	json
//	@Param		id	path	int	true	"Project ID"
//	@Security	BearerAuth
//	@Success	200	{object}	dto.ProjectResponseDTO
//	@Failure	403	{object}	utils.Response	"Access denied"
//	@Failure	404	{object}	utils.Response	"Project not found"
//	@Router		/api/projects/{id} [get]
//	@Router		/api/admin/projects/{id} [get]
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IDParam(r, "id")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	project, err := h.projectService.Get(r.Context(), id)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toOwnedDTO(*project))
}

// List godoc
//
//	@Summary	All projects
//	@Tags		Admin
//	@Produce	json
//	@Param		status	query	string	false	"Filter by status"	Enums(pending, approved, rejected, completed)
//	@Security	BearerAuth
//	@Success	200	{array}	dto.ProjectResponseDTO
//	@Router		/api/admin/projects [get]
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectService.ListAll(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	resp := make([]dto.ProjectResponseDTO, 0, len(projects))
	for _, p := range projects {
		resp = append(resp, toOwnedDTO(p))
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// Approve godoc
//
//	@Summary	Approve and price a project
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		id		path	int								true	"Project ID"
//	@Param		request	body	dto.ApproveProjectRequestDTO	true	"Price and notes"
//	@Security	BearerAuth
//	@Success	200	{object}	dto.ProjectResponseDTO
//	@Failure	400	{object}	utils.Response	"Price must be greater than zero"
//	@Failure	403	{object}	utils.Response	"Project can't be approved"
//	@Failure	404	{object}	utils.Response	"Project not found"
//	@Router		/api/admin/projects/approve/{id} [post]
func (h *ProjectHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IDParam(r, "id")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	var req dto.ApproveProjectRequestDTO
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	project, err := h.projectService.Approve(r.Context(), id, projectservice.ApproveInput{
		Price:        req.Price,
		AdminNotes:   req.AdminNotes,
		DeliveryDate: req.DeliveryDate,
	})
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toDTO(*project))
}

// Reject godoc
//
//	@Summary	Reject a project
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		id		path	int							true	"Project ID"
//	@Param		request	body	dto.RejectProjectRequestDTO	true	"Reason"
//	@Security	BearerAuth
//	@Success	200	{object}	dto.ProjectResponseDTO
//	@Failure	400	{object}	utils.Response	"Rejection reason is required"
//	@Router		/api/admin/projects/reject/{id} [post]
func (h *ProjectHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IDParam(r, "id")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	var req dto.RejectProjectRequestDTO
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	project, err := h.projectService.Reject(r.Context(), id, req.Reason)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toDTO(*project))
}

// Complete godoc
//
//	@Summary	Mark a project as completed
//	@Tags		Admin
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		id				path		int		true	"Project ID"
//	@Param		solutionFile	formData	file	false	"Solution archive"
//	@Security	BearerAuth
//	@Success	200	{object}	dto.ProjectResponseDTO
//	@Failure	403	{object}	utils.Response	"Only approved projects can be completed"
//	@Router		/api/admin/projects/complete/{id} [post]
func (h *ProjectHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IDParam(r, "id")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	if err := utils.ParseMultipart(r); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	file, fileName, err := utils.FormFile(r, "solutionFile")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	var solution io.Reader
	if file != nil {
		defer file.Close()
		solution = file
	}
	project, err := h.projectService.Complete(r.Context(), id, solution, fileName)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toDTO(*project))
}

// AddNote godoc
//
//	@Summary	Set the admin note on a project
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		id		path	int							true	"Project ID"
//	@Param		request	body	dto.ProjectNoteRequestDTO	true	"Note"
//	@Security	BearerAuth
//	@Success	200	{object}	dto.ProjectResponseDTO
//	@Router		/api/admin/projects/{id}/notes [patch]
func (h *ProjectHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IDParam(r, "id")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	var req dto.ProjectNoteRequestDTO
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	project, err := h.projectService.AddNote(r.Context(), id, req.Note)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toDTO(*project))
}

// Delete godoc
//
//	@Summary		Delete a project and its owner
//	@Description	Refused while the project holds captured funds or a pending refund
//	@Tags			Admin
//	@Produce		json
//	@Param			id	path	int	true	"Project ID"
//	@Security		BearerAuth
//	@Success		200	{object}	utils.Response
//	@Failure		403	{object}	utils.Response	"Project has payments"
//	@Failure		404	{object}	utils.Response	"Project not found"
//	@Router			/api/admin/projects/{id} [delete]
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IDParam(r, "id")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	if err := h.projectService.Delete(r.Context(), id); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{Success: true, Message: "Project deleted"})
}

// Summary godoc
//
//	@Summary	Dashboard counters
//	@Tags		Admin
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	dto.SummaryResponseDTO
//	@Router		/api/admin/summary [get]
func (h *ProjectHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.projectService.Summary(r.Context())
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.SummaryResponseDTO{
		ProjectsByStatus: summary.ProjectsByStatus,
		OpenReports:      summary.OpenReports,
		TotalCollected:   summary.TotalCollected,
		TotalRefunded:    summary.TotalRefunded,
	})
}

package reports

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GlebRadaev/projecthub/internal/domain"
	"github.com/GlebRadaev/projecthub/internal/dto"
	"github.com/GlebRadaev/projecthub/internal/service/reportservice"
	"github.com/GlebRadaev/projecthub/pkg/auth"
	"github.com/GlebRadaev/projecthub/pkg/utils"
)

type Service interface {
	Create(ctx context.Context, in reportservice.CreateInput) (*domain.Report, error)
	ListForUser(ctx context.Context, userID int) ([]domain.Report, error)
	ListAll(ctx context.Context) ([]domain.Report, error)
	Reply(ctx context.Context, id int, note string) (*domain.Report, error)
	Close(ctx context.Context, id int) (*domain.Report, error)
	Delete(ctx context.Context, id int) error
}

type ReportHandler struct {
	reportService Service
}

func New(reportService Service) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func toDTO(rp domain.Report) dto.ReportResponseDTO {
	return dto.ReportResponseDTO{
		ID:          rp.ID,
		UserID:      rp.UserID,
		ProjectID:   rp.ProjectID,
		Title:       rp.Title,
		Description: rp.Description,
		Attachment:  rp.Attachment,
		Status:      rp.Status,
		AdminNote:   rp.AdminNote,
		CreatedAt:   rp.CreatedAt.Format(time.RFC3339),
	}
}

func respondWithReports(w http.ResponseWriter, reports []domain.Report) {
	resp := make([]dto.ReportResponseDTO, 0, len(reports))
	for _, rp := range reports {
		resp = append(resp, toDTO(rp))
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// Create godoc
//
//	@Summary		File a report
//	@Description	Optionally tied to one of the caller's projects
//	@Tags			Reports
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			projectId	formData	int		false	"Project ID"
//	@Param			title		formData	string	true	"Title"
//	@Param			description	formData	string	true	"Description"
//	@Param			attachment	formData	file	false	"Attachment"
//	@Security		BearerAuth
//	@Success		201	{object}	dto.ReportResponseDTO
//	@Failure		400	{object}	utils.Response	"Title and description are required."
//	@Failure		403	{object}	utils.Response	"Project does not belong to you"
//	@Router			/api/reports [post]
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := utils.ParseMultipart(r); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	userID, _ := auth.UserID(r.Context())
	in := reportservice.CreateInput{
		UserID:      userID,
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	}
	if raw := strings.TrimSpace(r.FormValue("projectId")); raw != "" {
		projectID, err := strconv.Atoi(raw)
		if err != nil || projectID <= 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid projectId")
			return
		}
		in.ProjectID = &projectID
	}

	file, fileName, err := utils.FormFile(r, "attachment")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	if file != nil {
		defer file.Close()
		in.File = file
		in.FileName = fileName
	}

	report, err := h.reportService.Create(r.Context(), in)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, toDTO(*report))
}

// Mine godoc
//
//	@Summary	Reports of the current user
//	@Tags		Reports
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}	dto.ReportResponseDTO
//	@Router		/api/reports [get]
func (h *ReportHandler) Mine(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	reports, err := h.reportService.ListForUser(r.Context(), userID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	respondWithReports(w, reports)
}

// List godoc
//
//	@Summary	All reports
//	@Tags		Admin
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}	dto.ReportResponseDTO
//	@Router		/api/admin/reports [get]
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reportService.ListAll(r.Context())
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	respondWithReports(w, reports)
}

// Reply godoc
//
//	@Summary	Reply to a report
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		id		path	int						true	"Report ID"
//	@Param		request	body	dto.ReportNoteRequestDTO	true	"Reply"
//	@Security	BearerAuth
//	@Success	200	{object}	dto.ReportResponseDTO
//	@Failure	403	{object}	utils.Response	"Report is already closed"
//	@Failure	404	{object}	utils.Response	"Report not found"
//	@Router		/api/admin/reports/{id}/reply [post]
func (h *ReportHandler) Reply(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IDParam(r, "id")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	var req dto.ReportNoteRequestDTO
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	report, err := h.reportService.Reply(r.Context(), id, req.Note)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toDTO(*report))
}

// Close godoc
//
//	@Summary	Close a report
//	@Tags		Admin
//	@Produce	json
//	@Param		id	path	int	true	"Report ID"
//	@Security	BearerAuth
//	@Success	200	{object}	dto.ReportResponseDTO
//	@Failure	403	{object}	utils.Response	"Report is already closed"
//	@Router		/api/admin/reports/{id}/close [post]
func (h *ReportHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IDParam(r, "id")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	report, err := h.reportService.Close(r.Context(), id)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toDTO(*report))
}

// Delete godoc
//
//	@Summary	Delete a report
//	@Tags		Admin
//	@Produce	json
//	@Param		id	path	int	true	"Report ID"
//	@Security	BearerAuth
//	@Success	200	{object}	utils.Response
//	@Failure	404	{object}	utils.Response	"Report not found"
//	@Router		/api/admin/reports/{id} [delete]
func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IDParam(r, "id")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	if err := h.reportService.Delete(r.Context(), id); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{Success: true, Message: "Report deleted"})
}

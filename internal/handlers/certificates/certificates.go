package certificates

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GlebRadaev/projecthub/internal/domain"
	"github.com/GlebRadaev/projecthub/internal/dto"
	"github.com/GlebRadaev/projecthub/pkg/utils"
)

type Service interface {
	Upload(ctx context.Context, projectID int, file io.Reader, fileName string) (*domain.Certificate, error)
	ListForProject(ctx context.Context, projectID int) ([]domain.Certificate, error)
}

type CertificateHandler struct {
	certificateService Service
}

func New(certificateService Service) *CertificateHandler {
	return &CertificateHandler{certificateService: certificateService}
}

func toDTO(c domain.Certificate) dto.CertificateResponseDTO {
	return dto.CertificateResponseDTO{
		ID:        c.ID,
		ProjectID: c.ProjectID,
		FilePath:  c.FilePath,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

// Upload godoc
//
//	@Summary	Issue a certificate for a completed project
//	@Tags		Admin
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		projectId	formData	int		true	"Project ID"
//	@Param		certificate	formData	file	true	"Certificate image"
//	@Security	BearerAuth
//	@Success	201	{object}	dto.CertificateResponseDTO
//	@Failure	400	{object}	utils.Response	"Certificate file is required"
//	@Failure	403	{object}	utils.Response	"Project is not completed"
//	@Failure	404	{object}	utils.Response	"Project not found"
//	@Router		/api/admin/certificates [post]
func (h *CertificateHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := utils.ParseMultipart(r); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	projectID, err := strconv.Atoi(strings.TrimSpace(r.FormValue("projectId")))
	if err != nil || projectID <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid projectId")
		return
	}
	file, fileName, err := utils.FormFile(r, "certificate")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	var upload io.Reader
	if file != nil {
		defer file.Close()
		upload = file
	}

	cert, err := h.certificateService.Upload(r.Context(), projectID, upload, fileName)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, toDTO(*cert))
}

// ListForProject godoc
//
//	@Summary	Certificates of a project
//	@Tags		Projects
//	@Produce	json
//	@Param		id	path	int	true	"Project ID"
//	@Security	BearerAuth
//	@Success	200	{array}		dto.CertificateResponseDTO
//	@Failure	403	{object}	utils.Response	"Access denied"
//	@Router		/api/projects/{id}/certificates [get]
func (h *CertificateHandler) ListForProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := utils.IDParam(r, "id")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	certs, err := h.certificateService.ListForProject(r.Context(), projectID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	resp := make([]dto.CertificateResponseDTO, 0, len(certs))
	for _, c := range certs {
		resp = append(resp, toDTO(c))
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

package domains

import (
	"context"
	"net/http"

	"github.com/GlebRadaev/projecthub/internal/domain"
	"github.com/GlebRadaev/projecthub/internal/dto"
	"github.com/GlebRadaev/projecthub/internal/service/domainservice"
	"github.com/GlebRadaev/projecthub/pkg/utils"
)

type Service interface {
	List(ctx context.Context) ([]domain.Domain, error)
	Create(ctx context.Context, in domainservice.Input) (*domain.Domain, error)
	Update(ctx context.Context, id int, in domainservice.Input) (*domain.Domain, error)
	Delete(ctx context.Context, id int) error
}

type DomainHandler struct {
	domainService Service
}

func New(domainService Service) *DomainHandler {
	return &DomainHandler{domainService: domainService}
}

func toDTO(d domain.Domain) dto.DomainResponseDTO {
	return dto.DomainResponseDTO{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		PDFPath:     d.PDFPath,
	}
}

// List godoc
//
//	@Summary	Project domains on offer
//	@Tags		Domains
//	@Produce	json
//	@Success	200	{array}	dto.DomainResponseDTO
//	@Router		/api/domains [get]
func (h *DomainHandler) List(w http.ResponseWriter, r *http.Request) {
	domains, err := h.domainService.List(r.Context())
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	resp := make([]dto.DomainResponseDTO, 0, len(domains))
	for _, d := range domains {
		resp = append(resp, toDTO(d))
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// readInput parses the multipart form. The returned closer releases the uploaded file.
func readInput(r *http.Request) (domainservice.Input, func(), error) {
	in := domainservice.Input{}
	if err := utils.ParseMultipart(r); err != nil {
		return in, func() {}, err
	}
	in.Name = r.FormValue("name")
	in.Description = r.FormValue("description")
	file, fileName, err := utils.FormFile(r, "pdf")
	if err != nil {
		return in, func() {}, err
	}
	if file == nil {
		return in, func() {}, nil
	}
	in.File = file
	in.FileName = fileName
	return in, func() { _ = file.Close() }, nil
}

// Create godoc
//
//	@Summary	Add a domain
//	@Tags		Admin
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		name		formData	string	true	"Domain name"
//	@Param		description	formData	string	false	"Description"
//	@Param		pdf			formData	file	false	"Brochure PDF"
//	@Security	BearerAuth
//	@Success	201	{object}	dto.DomainResponseDTO
//	@Failure	400	{object}	utils.Response	"Domain already exists"
//	@Router		/api/admin/domains [post]
func (h *DomainHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, release, err := readInput(r)
	defer release()
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	d, err := h.domainService.Create(r.Context(), in)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, toDTO(*d))
}

// Update godoc
//
//	@Summary		Edit a domain
//	@Description	The PDF is replaced only when a new one is uploaded
//	@Tags			Admin
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id			path		int		true	"Domain ID"
//	@Param			name		formData	string	true	"Domain name"
//	@Param			description	formData	string	false	"Description"
//	@Param			pdf			formData	file	false	"Brochure PDF"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.DomainResponseDTO
//	@Failure		404	{object}	utils.Response	"Domain not found"
//	@Router			/api/admin/domains/{id} [put]
func (h *DomainHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IDParam(r, "id")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	in, release, err := readInput(r)
	defer release()
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	d, err := h.domainService.Update(r.Context(), id, in)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toDTO(*d))
}

// Delete godoc
//
//	@Summary	Remove a domain
//	@Tags		Admin
//	@Produce	json
//	@Param		id	path	int	true	"Domain ID"
//	@Security	BearerAuth
//	@Success	200	{object}	utils.Response
//	@Failure	404	{object}	utils.Response	"Domain not found"
//	@Router		/api/admin/domains/{id} [delete]
func (h *DomainHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IDParam(r, "id")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	if err := h.domainService.Delete(r.Context(), id); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{Success: true, Message: "Domain deleted"})
}

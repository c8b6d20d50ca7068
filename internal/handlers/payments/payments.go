package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/GlebRadaev/projecthub/internal/domain"
	"github.com/GlebRadaev/projecthub/internal/dto"
	"github.com/GlebRadaev/projecthub/internal/service/paymentservice"
	"github.com/GlebRadaev/projecthub/pkg/utils"
)

type Service interface {
	ListForProject(ctx context.Context, projectID int) ([]domain.Payment, error)
	ListAll(ctx context.Context) ([]domain.Payment, error)
	Confirm(ctx context.Context, paymentID int, amount float64, gatewayPaymentID string) (*domain.Payment, error)
	Refund(ctx context.Context, paymentID int, in paymentservice.RefundInput) (*paymentservice.RefundOutcome, error)
	Refunds(ctx context.Context, paymentID int) ([]domain.Refund, error)
	Export(ctx context.Context, w io.Writer) error
}

type InvoiceService interface {
	Get(ctx context.Context, paymentID int) (*domain.Invoice, error)
}

type PaymentHandler struct {
	paymentService Service
	invoiceService InvoiceService
}

func New(paymentService Service, invoiceService InvoiceService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		invoiceService: invoiceService,
	}
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func toDTO(p domain.Payment) dto.PaymentResponseDTO {
	return dto.PaymentResponseDTO{
		ID:               p.ID,
		ProjectID:        p.ProjectID,
		UserID:           p.UserID,
		TotalAmount:      p.TotalAmount,
		PaidAmount:       p.PaidAmount,
		PendingAmount:    p.PendingAmount,
		PaymentStatus:    p.Status,
		GatewayPaymentID: p.GatewayPaymentID,
		RefundID:         p.RefundID,
		RefundAmount:     p.RefundAmount,
		RefundStatus:     p.RefundStatus,
		InvoiceURL:       p.InvoiceURL,
		CreatedAt:        p.CreatedAt.Format(time.RFC3339),
	}
}

func respondWithPayments(w http.ResponseWriter, payments []domain.Payment) {
	resp := make([]dto.PaymentResponseDTO, 0, len(payments))
	for _, p := range payments {
		resp = append(resp, toDTO(p))
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ListForProject godoc
//
//	@Summary	Payments of a project
//	@Tags		Payments
//	@Produce	json
//	@Param		id		path	int	true	"Project ID"
//	@Security	BearerAuth
//	@Success	200	{array}		dto.PaymentResponseDTO
//	@Failure	403	{object}	utils.Response	"Access denied"
//	@Router		/api/projects/{id}/payments [get]
//	@Router		/api/admin/payments/{id} [get]
func (h *PaymentHandler) ListForProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := utils.IDParam(r, "id")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	payments, err := h.paymentService.ListForProject(r.Context(), projectID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	respondWithPayments(w, payments)
}

// List godoc
//
//	@Summary	All payments
//	@Tags		Admin
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}	dto.PaymentResponseDTO
//	@Router		/api/admin/payments [get]
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	payments, err := h.paymentService.ListAll(r.Context())
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	respondWithPayments(w, payments)
}

// Confirm godoc
//
//	@Summary		Confirm a captured payment
//	@Description	Records the amount captured by the gateway and recomputes the project payment status
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			paymentId	path	int								true	"Payment ID"
//	@Param			request		body	dto.ConfirmPaymentRequestDTO	true	"Captured amount"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.PaymentResponseDTO
//	@Failure		400	{object}	utils.Response	"Amount must be greater than zero"
//	@Failure		403	{object}	utils.Response	"Payment already processed"
//	@Router			/api/payments/{paymentId}/confirm [post]
func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	paymentID, err := utils.IDParam(r, "paymentId")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	var req dto.ConfirmPaymentRequestDTO
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	payment, err := h.paymentService.Confirm(r.Context(), paymentID, req.Amount, req.GatewayPaymentID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toDTO(*payment))
}

// Refund godoc
//
//	@Summary		Refund a payment
//	@Description	Without an amount the whole refundable amount is returned
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			paymentId	path	int						true	"Payment ID"
//	@Param			request		body	dto.RefundRequestDTO	false	"Optional amount and reason"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.RefundResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid refund amount"
//	@Failure		403	{object}	utils.Response	"Payment already refunded"
//	@Failure		404	{object}	utils.Response	"Payment not found"
//	@Failure		500	{object}	utils.Response	"Gateway failure"
//	@Router			/api/admin/payments/refund/{paymentId} [post]
func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	paymentID, err := utils.IDParam(r, "paymentId")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	var req dto.RefundRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	outcome, err := h.paymentService.Refund(r.Context(), paymentID, paymentservice.RefundInput{
		Amount: req.Amount,
		Reason: req.Reason,
	})
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.RefundResponseDTO{
		Success:       true,
		Message:       "Refund processed",
		RefundID:      outcome.Refund.GatewayRefundID,
		Amount:        outcome.Refund.Amount,
		Status:        outcome.Refund.Status,
		ProjectStatus: outcome.ProjectPaymentStatus,
	})
}

// Refunds godoc
//
//	@Summary	Refund attempts of a payment
//	@Tags		Admin
//	@Produce	json
//	@Param		paymentId	path	int	true	"Payment ID"
//	@Security	BearerAuth
//	@Success	200	{array}	dto.RefundResponseDTO
//	@Router		/api/admin/payments/refunds/{paymentId} [get]
func (h *PaymentHandler) Refunds(w http.ResponseWriter, r *http.Request) {
	paymentID, err := utils.IDParam(r, "paymentId")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	refunds, err := h.paymentService.Refunds(r.Context(), paymentID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	resp := make([]dto.RefundResponseDTO, 0, len(refunds))
	for _, rf := range refunds {
		resp = append(resp, dto.RefundResponseDTO{
			Success:  true,
			Message:  rf.Reason,
			RefundID: rf.GatewayRefundID,
			Amount:   rf.Amount,
			Status:   rf.Status,
		})
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// Export godoc
//
//	@Summary	Export all payments as a spreadsheet
//	@Tags		Admin
//	@Produce	application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Security	BearerAuth
//	@Success	200	{file}		file
//	@Failure	500	{object}	utils.Response	"Internal server error"
//	@Router		/api/admin/payments/export [get]
func (h *PaymentHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.paymentService.Export(r.Context(), &buf); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="payments.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// Invoice godoc
//
//	@Summary	Invoice of a payment
//	@Tags		Payments
//	@Produce	json
//	@Param		paymentId	path	int	true	"Payment ID"
//	@Security	BearerAuth
//	@Success	200	{object}	dto.InvoiceResponseDTO
//	@Failure	404	{object}	utils.Response	"Payment not found"
//	@Router		/api/payments/{paymentId}/invoice [get]
func (h *PaymentHandler) Invoice(w http.ResponseWriter, r *http.Request) {
	paymentID, err := utils.IDParam(r, "paymentId")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	inv, err := h.invoiceService.Get(r.Context(), paymentID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.InvoiceResponseDTO{
		InvoiceNumber: inv.InvoiceNumber,
		URL:           inv.FilePath,
		Amount:        inv.Amount,
	})
}

package dto

type ConfirmPaymentRequestDTO struct {
	Amount           float64 `json:"amount" example:"5000"`
	GatewayPaymentID string  `json:"gatewayPaymentId" example:"pay_29QQoUBi66xm2f"`
}

// RefundRequestDTO carries an optional amount; nil means the whole refundable amount.
type RefundRequestDTO struct {
	Amount *float64 `json:"amount,omitempty" example:"400"`
	Reason string   `json:"reason,omitempty" example:"Duplicate payment"`
}

type PaymentResponseDTO struct {
	ID               int     `json:"id" example:"1"`
	ProjectID        int     `json:"projectId" example:"1"`
	UserID           int     `json:"userId" example:"3"`
	TotalAmount      float64 `json:"totalAmount" example:"15000"`
	PaidAmount       float64 `json:"paidAmount" example:"5000"`
	PendingAmount    float64 `json:"pendingAmount" example:"10000"`
	PaymentStatus    string  `json:"paymentStatus" example:"partially_paid"`
	GatewayPaymentID string  `json:"gatewayPaymentId,omitempty"`
	RefundID         string  `json:"refundId,omitempty"`
	RefundAmount     float64 `json:"refundAmount,omitempty"`
	RefundStatus     string  `json:"refundStatus,omitempty"`
	InvoiceURL       string  `json:"invoiceUrl,omitempty"`
	CreatedAt        string  `json:"createdAt" example:"2026-10-18T10:00:00Z"`
}

type RefundResponseDTO struct {
	Success       bool    `json:"success" example:"true"`
	Message       string  `json:"message" example:"Refund processed"`
	RefundID      string  `json:"refundId" example:"rfnd_10293"`
	Amount        float64 `json:"amount" example:"400"`
	Status        string  `json:"status" example:"processed"`
	ProjectStatus string  `json:"projectPaymentStatus" example:"pending"`
}

type InvoiceResponseDTO struct {
	InvoiceNumber string  `json:"invoiceNumber" example:"INV-HT181020261-1"`
	URL           string  `json:"url" example:"uploads/invoices/HT181020261-1760000000000.pdf"`
	Amount        float64 `json:"amount" example:"5000"`
}

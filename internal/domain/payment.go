package domain

const (
	PaymentPending       = "pending"
	PaymentSuccess       = "success"
	PaymentPartiallyPaid = "partially_paid"
	PaymentRefunded      = "refunded"
)

// Project-level payment status values.
const (
	ProjectPaymentPending       = "pending"
	ProjectPaymentPartiallyPaid = "partially_paid"
	ProjectPaymentPaid          = "paid"
	ProjectPaymentRefunded      = "refunded"
)

// RefundInitiated marks a refund row written before the gateway has answered.
// It stays in that state until the gateway result has been applied to the payment.
const (
	RefundInitiated = "initiated"
	RefundPending   = "pending"
	RefundProcessed = "processed"
	RefundFailed    = "failed"
)

// countsTowardsPaid lists payment statuses whose captured funds count towards
// a project's paid total. Refunded payments count net of their refund.
var countsTowardsPaid = map[string]bool{
	PaymentSuccess:       true,
	PaymentPartiallyPaid: true,
	PaymentRefunded:      true,
}

// NetPaid sums paid_amount - refund_amount over the payments that hold funds.
func NetPaid(payments []Payment) float64 {
	var total float64
	for _, p := range payments {
		if countsTowardsPaid[p.Status] {
			total += p.PaidAmount - p.RefundAmount
		}
	}
	return total
}

// DeriveProjectPaymentStatus is the single source of a project's payment_status.
func DeriveProjectPaymentStatus(totalAmount float64, payments []Payment) string {
	paid := NetPaid(payments)
	switch {
	case paid >= totalAmount:
		return ProjectPaymentPaid
	case paid > 0:
		return ProjectPaymentPartiallyPaid
	default:
		return ProjectPaymentPending
	}
}

// Refundable is what is left to refund on a payment.
func (p Payment) Refundable() float64 {
	return p.PaidAmount - p.RefundAmount
}

// ProjectDeletable reports whether a project with the given payment status can be removed.
func ProjectDeletable(paymentStatus string) bool {
	switch paymentStatus {
	case "", ProjectPaymentPending, ProjectPaymentRefunded:
		return true
	}
	return false
}

// PaymentBlocksDeletion reports whether a single payment row keeps its project alive.
func PaymentBlocksDeletion(status string) bool {
	switch status {
	case "", PaymentPending, PaymentRefunded:
		return false
	}
	return true
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveProjectPaymentStatus(t *testing.T) {
	tests := []struct {
		name     string
		total    float64
		payments []Payment
		expected string
	}{
		{
			name:     "no payments",
			total:    1000,
			expected: ProjectPaymentPending,
		},
		{
			name:     "zero-paid pending payment",
			total:    1000,
			payments: []Payment{{Status: PaymentPending, TotalAmount: 1000}},
			expected: ProjectPaymentPending,
		},
		{
			name:     "partial payment",
			total:    1000,
			payments: []Payment{{Status: PaymentPartiallyPaid, PaidAmount: 400}},
			expected: ProjectPaymentPartiallyPaid,
		},
		{
			name:     "full payment",
			total:    1000,
			payments: []Payment{{Status: PaymentSuccess, PaidAmount: 1000}},
			expected: ProjectPaymentPaid,
		},
		{
			name:  "overpaid across payments",
			total: 1000,
			payments: []Payment{
				{Status: PaymentSuccess, PaidAmount: 600},
				{Status: PaymentSuccess, PaidAmount: 500},
			},
			expected: ProjectPaymentPaid,
		},
		{
			name:     "fully refunded payment",
			total:    1000,
			payments: []Payment{{Status: PaymentRefunded, PaidAmount: 400, RefundAmount: 400}},
			expected: ProjectPaymentPending,
		},
		{
			name:     "full payment refunded without amount",
			total:    1000,
			payments: []Payment{{Status: PaymentRefunded, PaidAmount: 1000, RefundAmount: 1000}},
			expected: ProjectPaymentPending,
		},
		{
			name:  "partial refund leaves partial",
			total: 1000,
			payments: []Payment{
				{Status: PaymentRefunded, PaidAmount: 1000, RefundAmount: 300},
			},
			expected: ProjectPaymentPartiallyPaid,
		},
		{
			name:  "refund on one of two payments keeps paid",
			total: 1000,
			payments: []Payment{
				{Status: PaymentRefunded, PaidAmount: 200, RefundAmount: 200},
				{Status: PaymentSuccess, PaidAmount: 1000},
			},
			expected: ProjectPaymentPaid,
		},
		{
			name:  "pending rows do not count",
			total: 1000,
			payments: []Payment{
				{Status: PaymentPending, PaidAmount: 900},
				{Status: PaymentSuccess, PaidAmount: 100},
			},
			expected: ProjectPaymentPartiallyPaid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeriveProjectPaymentStatus(tt.total, tt.payments))
		})
	}
}

func TestNetPaid(t *testing.T) {
	payments := []Payment{
		{Status: PaymentSuccess, PaidAmount: 500},
		{Status: PaymentRefunded, PaidAmount: 300, RefundAmount: 100},
		{Status: PaymentPending, PaidAmount: 0},
	}
	assert.InDelta(t, 700.0, NetPaid(payments), 0.001)
}

func TestProjectDeletable(t *testing.T) {
	assert.True(t, ProjectDeletable(""))
	assert.True(t, ProjectDeletable(ProjectPaymentPending))
	assert.True(t, ProjectDeletable(ProjectPaymentRefunded))
	assert.False(t, ProjectDeletable(ProjectPaymentPaid))
	assert.False(t, ProjectDeletable(ProjectPaymentPartiallyPaid))

	assert.False(t, PaymentBlocksDeletion(PaymentPending))
	assert.False(t, PaymentBlocksDeletion(PaymentRefunded))
	assert.True(t, PaymentBlocksDeletion(PaymentSuccess))
	assert.True(t, PaymentBlocksDeletion(PaymentPartiallyPaid))
}

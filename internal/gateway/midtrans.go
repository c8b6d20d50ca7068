// Package gateway talks to the payment provider.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/GlebRadaev/projecthub/internal/domain"
	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"go.uber.org/zap"
)

var ErrNotConfigured = errors.New("payment gateway is not configured")

type RefundResult struct {
	ID     string
	Amount float64
	Status string
}

// Refunder is the slice of the Midtrans core API used for refunds.
type Refunder interface {
	RefundTransaction(orderID string, req *coreapi.RefundReq) (*coreapi.RefundResponse, *midtrans.Error)
}

type Midtrans struct {
	client Refunder
}

// NewMidtrans returns a gateway whose calls fail with ErrNotConfigured when serverKey is empty.
func NewMidtrans(serverKey string, production bool) *Midtrans {
	if serverKey == "" {
		return &Midtrans{}
	}
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	var c coreapi.Client
	c.New(serverKey, env)
	return &Midtrans{client: c}
}

func NewMidtransWithClient(client Refunder) *Midtrans {
	return &Midtrans{client: client}
}

// ToMinorUnits converts a major-unit amount to the integer the gateway expects.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// Refund refunds amount (major units) of the transaction gatewayPaymentID.
func (m *Midtrans) Refund(ctx context.Context, gatewayPaymentID string, amount float64, reason string) (*RefundResult, error) {
	if m.client == nil {
		return nil, ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := &coreapi.RefundReq{
		RefundKey: uuid.NewString(),
		Amount:    ToMinorUnits(amount),
		Reason:    reason,
	}
	resp, mErr := m.client.RefundTransaction(gatewayPaymentID, req)
	if mErr != nil {
		zap.L().Error("gateway refund failed",
			zap.String("gatewayPaymentID", gatewayPaymentID),
			zap.Int("statusCode", mErr.StatusCode),
			zap.String("message", mErr.Message))
		return nil, fmt.Errorf("gateway refund failed: %s", mErr.Message)
	}

	result := &RefundResult{
		ID:     fmt.Sprint(resp.RefundChargebackID),
		Amount: amount,
		Status: domain.RefundPending,
	}
	if result.ID == "" || result.ID == "0" {
		result.ID = req.RefundKey
	}
	switch resp.StatusCode {
	case "200", "201":
		result.Status = domain.RefundProcessed
	}
	return result, nil
}

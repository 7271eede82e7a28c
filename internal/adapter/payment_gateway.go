package adapter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CaptureRequest is a payment capture order. MerchantUID is the idempotency
// key: submitting the same order twice must not charge twice.
type CaptureRequest struct {
	MerchantUID string
	Name        string
	Amount      int64
	BuyerEmail  string
	BuyerName   string
}

// CaptureResult mirrors the gateway's capture response.
type CaptureResult struct {
	Success     bool   `json:"success"`
	ImpUID      string `json:"imp_uid"`
	MerchantUID string `json:"merchant_uid"`
	PaidAmount  int64  `json:"paid_amount"`
	Status      string `json:"status"`
}

// PaymentGateway is the Anti-Corruption Layer interface for the external
// payment provider. Real implementations can fail, time out, or see the
// same merchant_uid twice.
type PaymentGateway interface {
	Capture(ctx context.Context, req CaptureRequest) (CaptureResult, error)
}

// NewMerchantUID generates a unique order id for a capture.
func NewMerchantUID() string {
	return fmt.Sprintf("ord_%d_%s", time.Now().UnixMilli(), uuid.New().String()[:8])
}

// MockPaymentGateway simulates the payment provider for development and
// testing. It resolves after a fixed delay and replays the original result
// when a merchant_uid is submitted again, so duplicate submissions never
// double-charge.
type MockPaymentGateway struct {
	mu        sync.Mutex
	processed map[string]CaptureResult
	delay     time.Duration
	failNext  bool
	logger    *zap.Logger
}

// NewMockPaymentGateway creates a mock gateway for development.
func NewMockPaymentGateway(logger *zap.Logger) *MockPaymentGateway {
	return &MockPaymentGateway{
		processed: make(map[string]CaptureResult),
		delay:     100 * time.Millisecond,
		logger:    logger,
	}
}

// FailNext makes the next capture fail. Used in tests to exercise the
// "payment must succeed before any write" ordering.
func (m *MockPaymentGateway) FailNext() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = true
}

// Capture simulates a capture call against the provider.
func (m *MockPaymentGateway) Capture(ctx context.Context, req CaptureRequest) (CaptureResult, error) {
	select {
	case <-time.After(m.delay):
	case <-ctx.Done():
		return CaptureResult{}, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.processed[req.MerchantUID]; ok {
		m.logger.Info("[MOCK PG] duplicate capture replayed",
			zap.String("merchant_uid", req.MerchantUID),
		)
		return prev, nil
	}

	if m.failNext {
		m.failNext = false
		result := CaptureResult{
			Success:     false,
			MerchantUID: req.MerchantUID,
			Status:      "failed",
		}
		m.processed[req.MerchantUID] = result
		return result, nil
	}

	result := CaptureResult{
		Success:     true,
		ImpUID:      fmt.Sprintf("imp_mock_%s", uuid.New().String()[:8]),
		MerchantUID: req.MerchantUID,
		PaidAmount:  req.Amount,
		Status:      "paid",
	}
	m.processed[req.MerchantUID] = result

	m.logger.Info("[MOCK PG] capture succeeded",
		zap.String("merchant_uid", req.MerchantUID),
		zap.String("imp_uid", result.ImpUID),
		zap.Int64("amount", req.Amount),
	)
	return result, nil
}

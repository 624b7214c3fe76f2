package service

import (
	"context"
	"errors"
	"time"

	"techorbit/internal/models"
	"techorbit/internal/util"

	"go.uber.org/zap"
)

// ErrUnknownPaymentMethod is returned for methods outside Card/UPI/COD.
var ErrUnknownPaymentMethod = errors.New("unknown payment method")

// PaymentService simulates the payment step of checkout. Each method runs
// a fixed synthetic delay and then reports success; there is no gateway
// and no decline path.
type PaymentService struct {
	delays map[string]time.Duration
	logger *zap.Logger
}

// NewPaymentService creates a payment simulator with per-method delays.
func NewPaymentService(cardDelay, upiDelay, codDelay time.Duration) *PaymentService {
	return &PaymentService{
		delays: map[string]time.Duration{
			models.PaymentMethodCard: cardDelay,
			models.PaymentMethodUPI:  upiDelay,
			models.PaymentMethodCOD:  codDelay,
		},
		logger: util.GetLogger(),
	}
}

// Process runs the synthetic delay for the method and returns the payment
// status the order should carry: Pending for cash on delivery, Paid
// otherwise. The delay is cut short if the context is cancelled.
func (ps *PaymentService) Process(ctx context.Context, method string, amount float64) (string, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.Process")
	defer span.End()

	delay, ok := ps.delays[method]
	if !ok {
		return "", ErrUnknownPaymentMethod
	}

	util.PaymentAttemptsTotal.WithLabelValues(method).Inc()
	start := time.Now()
	defer func() {
		util.PaymentProcessingLatency.Observe(time.Since(start).Seconds())
	}()

	ps.logger.Info("Processing payment",
		zap.String("method", method),
		zap.Float64("amount", amount))

	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	if method == models.PaymentMethodCOD {
		return models.PaymentStatusPending, nil
	}
	return models.PaymentStatusPaid, nil
}

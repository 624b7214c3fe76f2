package service

import (
	"context"
	"testing"
	"time"

	"techorbit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPayments() *PaymentService {
	return NewPaymentService(time.Millisecond, time.Millisecond, time.Millisecond)
}

func TestProcessPaymentStatuses(t *testing.T) {
	ps := newTestPayments()
	ctx := context.Background()

	status, err := ps.Process(ctx, models.PaymentMethodCard, 100)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, status)

	status, err = ps.Process(ctx, models.PaymentMethodUPI, 100)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, status)

	status, err = ps.Process(ctx, models.PaymentMethodCOD, 100)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, status)
}

func TestProcessPaymentUnknownMethod(t *testing.T) {
	ps := newTestPayments()

	_, err := ps.Process(context.Background(), "Barter", 100)
	assert.ErrorIs(t, err, ErrUnknownPaymentMethod)
}

func TestProcessPaymentHonoursCancellation(t *testing.T) {
	ps := NewPaymentService(time.Minute, time.Minute, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ps.Process(ctx, models.PaymentMethodCard, 100)
	assert.ErrorIs(t, err, context.Canceled)
}

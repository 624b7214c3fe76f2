package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		allowed  bool
	}{
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusShipped, OrderStatusOutForDelivery, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusOutForDelivery, OrderStatusDelivered, true},

		{OrderStatusProcessing, OrderStatusDelivered, false},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusOutForDelivery, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusShipped, false},
		{OrderStatusCancelled, OrderStatusProcessing, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{"bogus", OrderStatusShipped, false},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.allowed, CanTransition(tc.from, tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestIsTerminalStatus(t *testing.T) {
	assert.True(t, IsTerminalStatus(OrderStatusDelivered))
	assert.True(t, IsTerminalStatus(OrderStatusCancelled))
	assert.False(t, IsTerminalStatus(OrderStatusProcessing))
	assert.False(t, IsTerminalStatus(OrderStatusShipped))
	assert.False(t, IsTerminalStatus(OrderStatusOutForDelivery))
}

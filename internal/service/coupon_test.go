package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCouponSave10(t *testing.T) {
	cs := NewCouponService()

	discount, err := cs.Discount(100.0, "SAVE10")
	require.NoError(t, err)

	assert.Equal(t, 10.0, discount)
	assert.Equal(t, 90.0, 100.0-discount)
}

func TestCouponTable(t *testing.T) {
	cs := NewCouponService()

	tests := []struct {
		code    string
		percent int
	}{
		{"SAVE10", 10},
		{"WELCOME20", 20},
		{"OFF5", 5},
	}
	for _, tc := range tests {
		percent, err := cs.Validate(tc.code)
		require.NoError(t, err, tc.code)
		assert.Equal(t, tc.percent, percent, tc.code)
	}
}

func TestCouponUnknownCodeRejected(t *testing.T) {
	cs := NewCouponService()

	_, err := cs.Validate("NOPE50")
	assert.ErrorIs(t, err, ErrInvalidCoupon)

	discount, err := cs.Discount(100.0, "NOPE50")
	assert.ErrorIs(t, err, ErrInvalidCoupon)
	assert.Zero(t, discount)
}

func TestCouponEmptyCodeMeansNoDiscount(t *testing.T) {
	cs := NewCouponService()

	discount, err := cs.Discount(100.0, "")
	assert.NoError(t, err)
	assert.Zero(t, discount)
}

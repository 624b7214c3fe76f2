package service

import (
	"errors"

	"techorbit/internal/util"
)

// ErrInvalidCoupon is returned for codes missing from the coupon table.
var ErrInvalidCoupon = errors.New("Invalid or expired coupon")

// couponTable is the fixed discount lookup: code -> percentage off.
var couponTable = map[string]int{
	"SAVE10":    10,
	"WELCOME20": 20,
	"OFF5":      5,
}

// CouponService validates discount codes against the fixed table.
type CouponService struct{}

// NewCouponService creates a new coupon service
func NewCouponService() *CouponService {
	return &CouponService{}
}

// Validate returns the discount percentage for a code.
func (cs *CouponService) Validate(code string) (int, error) {
	percent, ok := couponTable[code]
	if !ok {
		util.CouponValidationsTotal.WithLabelValues("rejected").Inc()
		return 0, ErrInvalidCoupon
	}
	util.CouponValidationsTotal.WithLabelValues("accepted").Inc()
	return percent, nil
}

// Discount computes the absolute discount a code yields on a subtotal.
// Unknown codes yield zero discount and the rejection error.
func (cs *CouponService) Discount(subtotal float64, code string) (float64, error) {
	if code == "" {
		return 0, nil
	}
	percent, err := cs.Validate(code)
	if err != nil {
		return 0, err
	}
	return subtotal * float64(percent) / 100, nil
}

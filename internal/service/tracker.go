package service

import "techorbit/internal/models"

// TrackingSteps is the canonical fulfillment progression. Every tracker
// view renders the same four stages; the fraction is the current index
// over the final index.
var TrackingSteps = []string{
	models.OrderStatusProcessing,
	models.OrderStatusShipped,
	models.OrderStatusOutForDelivery,
	models.OrderStatusDelivered,
}

// TrackingProgress describes where an order sits along the stepper.
type TrackingProgress struct {
	Steps     []string `json:"steps"`
	Current   int      `json:"current"`
	Fraction  float64  `json:"fraction"`
	Cancelled bool     `json:"cancelled"`
}

// TrackOrder maps an order status to its stepper position. Unrecognized
// statuses fall back to the first step; Cancelled is terminal with no
// progress along the fulfillment bar.
func TrackOrder(status string) TrackingProgress {
	progress := TrackingProgress{Steps: TrackingSteps}

	if status == models.OrderStatusCancelled {
		progress.Cancelled = true
		return progress
	}

	for i, step := range TrackingSteps {
		if step == status {
			progress.Current = i
			break
		}
	}
	progress.Fraction = float64(progress.Current) / float64(len(TrackingSteps)-1)
	return progress
}

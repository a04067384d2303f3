package drive

import (
	"fmt"
	"math"
	"strings"

	"driveplane/internal/store"
)

// RoundCents rounds a monetary amount to two decimals.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// PurchaseReturn is what a completed purchase pays back.
// Refund restores the principal; Commission is the profit shown to the user.
type PurchaseReturn struct {
	Refund     float64
	Commission float64
}

// Add sums two returns.
func (r PurchaseReturn) Add(o PurchaseReturn) PurchaseReturn {
	return PurchaseReturn{
		Refund:     RoundCents(r.Refund + o.Refund),
		Commission: RoundCents(r.Commission + o.Commission),
	}
}

// ComputePurchaseReturn prices a single frozen product under cfg.
func ComputePurchaseReturn(p store.ProductRef, cfg *store.TierConfig) PurchaseReturn {
	return PurchaseReturn{
		Refund:     RoundCents(p.Price),
		Commission: RoundCents(p.Price * cfg.CommissionRate),
	}
}

// ComputeTaskReturn sums the returns of every product in a task.
func ComputeTaskReturn(item *store.TaskItem, cfg *store.TierConfig) PurchaseReturn {
	var total PurchaseReturn
	for _, p := range item.Products {
		total = total.Add(ComputePurchaseReturn(p, cfg))
	}
	return total
}

// RatingType is how a review was produced.
type RatingType string

const (
	RatingManual RatingType = "manual"
	RatingAI     RatingType = "ai"
)

// ratingBonuses is a fixed table. There is no interpolation between tiers.
var ratingBonuses = map[string]map[RatingType]float64{
	"bronze": {RatingManual: 0.40, RatingAI: 0.20},
	"silver": {RatingManual: 0.70, RatingAI: 0.30},
	"gold":   {RatingManual: 0.90, RatingAI: 0.50},
}

// ComputeRatingBonus looks up the bonus for a tier and rating type.
func ComputeRatingBonus(tier string, rt RatingType) (float64, error) {
	byType, ok := ratingBonuses[tierKey(tier)]
	if !ok {
		return 0, fmt.Errorf("%w: no rating bonus for %q", ErrUnknownTier, tier)
	}
	amount, ok := byType[rt]
	if !ok {
		return 0, fmt.Errorf("%w: unknown rating type %q", ErrInvalidRating, rt)
	}
	return amount, nil
}

// RatingPayload carries the review content.
type RatingPayload struct {
	Stars         int
	ReviewText    string
	GeneratedText string
}

// ValidateRating checks the payload required by each rating type.
func ValidateRating(rt RatingType, payload RatingPayload) error {
	switch rt {
	case RatingManual:
		if payload.Stars < 1 || payload.Stars > 5 {
			return fmt.Errorf("%w: stars must be between 1 and 5, got %d", ErrInvalidRating, payload.Stars)
		}
		if strings.TrimSpace(payload.ReviewText) == "" {
			return fmt.Errorf("%w: review text is required", ErrInvalidRating)
		}
	case RatingAI:
		if strings.TrimSpace(payload.GeneratedText) == "" {
			return fmt.Errorf("%w: generated text is required", ErrInvalidRating)
		}
	default:
		return fmt.Errorf("%w: unknown rating type %q", ErrInvalidRating, rt)
	}
	return nil
}

package drive

import (
	"context"
	"fmt"
	"strings"

	"driveplane/internal/store"
)

// PurchaseFlowHandler settles a completed purchase into a return.
// The handler is chosen when the Service is built.
type PurchaseFlowHandler interface {
	Name() string
	Settle(ctx context.Context, item *store.TaskItem, cfg *store.TierConfig) (PurchaseReturn, error)
}

// StandardPurchaseFlow refunds the price and pays the tier commission rate.
type StandardPurchaseFlow struct{}

func (StandardPurchaseFlow) Name() string { return "standard" }

func (StandardPurchaseFlow) Settle(_ context.Context, item *store.TaskItem, cfg *store.TierConfig) (PurchaseReturn, error) {
	return ComputeTaskReturn(item, cfg), nil
}

// LuxuryPurchaseFlow pays combo tasks a multiple of the standard commission.
// Single tasks settle exactly like StandardPurchaseFlow.
type LuxuryPurchaseFlow struct {
	ComboMultiplier float64
}

func (LuxuryPurchaseFlow) Name() string { return "luxury" }

func (f LuxuryPurchaseFlow) Settle(ctx context.Context, item *store.TaskItem, cfg *store.TierConfig) (PurchaseReturn, error) {
	ret := ComputeTaskReturn(item, cfg)
	if item.IsCombo() && f.ComboMultiplier > 0 {
		ret.Commission = RoundCents(ret.Commission * f.ComboMultiplier)
	}
	return ret, nil
}

// NewPurchaseFlow selects a handler by name.
func NewPurchaseFlow(name string, comboMultiplier float64) (PurchaseFlowHandler, error) {
	switch strings.ToLower(name) {
	case "", "standard":
		return StandardPurchaseFlow{}, nil
	case "luxury":
		if comboMultiplier <= 0 {
			return nil, fmt.Errorf("luxury purchase flow needs a positive combo multiplier")
		}
		return LuxuryPurchaseFlow{ComboMultiplier: comboMultiplier}, nil
	default:
		return nil, fmt.Errorf("unknown purchase flow %q", name)
	}
}

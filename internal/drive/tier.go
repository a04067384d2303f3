package drive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"driveplane/internal/store"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/text/unicode/norm"
)

const tierCacheSize = 64

// TierPolicy resolves tier names to their configuration.
// Rows are read-mostly, so resolved configs are cached until they expire or are rewritten.
type TierPolicy struct {
	store  store.TierStore
	cache  *expirable.LRU[string, store.TierConfig]
	logger *slog.Logger
}

// NewTierPolicy creates a policy backed by ts. A ttl <= 0 keeps entries until they are rewritten.
func NewTierPolicy(ts store.TierStore, ttl time.Duration, logger *slog.Logger) *TierPolicy {
	if logger == nil {
		logger = slog.Default()
	}
	return &TierPolicy{
		store:  ts,
		cache:  expirable.NewLRU[string, store.TierConfig](tierCacheSize, nil, ttl),
		logger: logger,
	}
}

// tierName is the stored form of an admin-supplied name. Names are NFC
// normalized so composed and decomposed spellings refer to the same tier.
func tierName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

func tierKey(name string) string {
	return strings.ToLower(tierName(name))
}

// Resolve returns the active config for tierName.
// A stored band with min > max is reported as ErrInvalidTierConfig.
func (p *TierPolicy) Resolve(ctx context.Context, tierName string) (*store.TierConfig, error) {
	return p.resolve(ctx, tierName, true)
}

// ResolveForSession returns the config of a tier a session already started on.
// Deactivating a tier only stops new sessions, so inactive rows still resolve here.
func (p *TierPolicy) ResolveForSession(ctx context.Context, tierName string) (*store.TierConfig, error) {
	return p.resolve(ctx, tierName, false)
}

func (p *TierPolicy) resolve(ctx context.Context, tierName string, activeOnly bool) (*store.TierConfig, error) {
	key := tierKey(tierName)
	if key == "" {
		return nil, fmt.Errorf("%w: empty tier name", ErrUnknownTier)
	}

	cfg, ok := p.cache.Get(key)
	if !ok {
		row, err := p.store.GetTier(ctx, key)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrUnknownTier, tierName)
			}
			return nil, err
		}
		cfg = *row
		p.cache.Add(key, cfg)
	}

	if activeOnly && !cfg.IsActive {
		return nil, fmt.Errorf("%w: %s is inactive", ErrUnknownTier, tierName)
	}
	if cfg.MinPriceSingle > cfg.MaxPriceSingle || cfg.MinPriceCombo > cfg.MaxPriceCombo {
		p.logger.ErrorContext(ctx, "tier config violates price band",
			"tier", cfg.TierName,
			"min_single", cfg.MinPriceSingle, "max_single", cfg.MaxPriceSingle,
			"min_combo", cfg.MinPriceCombo, "max_combo", cfg.MaxPriceCombo,
		)
		return nil, fmt.Errorf("%w: %s", ErrInvalidTierConfig, cfg.TierName)
	}

	return &cfg, nil
}

// Put validates and stores a tier, then drops any cached copy.
func (p *TierPolicy) Put(ctx context.Context, cfg *store.TierConfig) error {
	cfg.TierName = tierName(cfg.TierName)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTierBand, err)
	}
	if err := p.store.UpsertTier(ctx, cfg); err != nil {
		return err
	}
	p.cache.Remove(tierKey(cfg.TierName))
	return nil
}

func (p *TierPolicy) List(ctx context.Context) ([]store.TierConfig, error) {
	return p.store.ListTiers(ctx)
}

// ValidateProductAgainstTier checks a price against the tier band.
// The result is advisory: callers surface it as a warning and never reject on it.
func ValidateProductAgainstTier(price float64, isCombo bool, cfg *store.TierConfig) error {
	min, max, band := cfg.MinPriceSingle, cfg.MaxPriceSingle, "single"
	if isCombo {
		min, max, band = cfg.MinPriceCombo, cfg.MaxPriceCombo, "combo"
	}
	if price < min || price > max {
		return fmt.Errorf("price %.2f outside %s band %.2f-%.2f for tier %s", price, band, min, max, cfg.TierName)
	}
	return nil
}

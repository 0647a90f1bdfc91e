package services

import (
	"fmt"
	"sync"

	"campaign/internal/models"

	"github.com/google/logger"
)

// DefaultPrizes is the campaign's built-in wheel.
func DefaultPrizes() []models.PrizeVariant {
	return []models.PrizeVariant{
		{ID: "prize1", Name: "Netflix Voucher", Category: models.CategoryStreamingA, Weight: 10, RemainingStock: 50},
		{ID: "prize2", Name: "Shahid Voucher", Category: models.CategoryStreamingB, Weight: 10, RemainingStock: 50},
		{ID: "prize3", Name: "Twix Voucher", Category: models.CategoryVoucher, Weight: 20, RemainingStock: 100},
		{ID: "prize4", Name: "Twix Sticker", Category: models.CategorySticker, Weight: 60, RemainingStock: 500},
	}
}

// PrizeCatalog owns the prize variants and their remaining stock.
type PrizeCatalog struct {
	mu       sync.Mutex
	variants []*models.PrizeVariant
	src      RandomSource
}

// NewPrizeCatalog validates the variants and builds a catalog drawing from src.
// A nil src falls back to CryptoSource.
func NewPrizeCatalog(variants []models.PrizeVariant, src RandomSource) (*PrizeCatalog, error) {
	if src == nil {
		src = CryptoSource{}
	}
	seen := make(map[string]bool, len(variants))
	c := &PrizeCatalog{src: src}
	for i := range variants {
		v := variants[i]
		if v.ID == "" {
			return nil, fmt.Errorf("prize %d: empty id", i)
		}
		if seen[v.ID] {
			return nil, fmt.Errorf("prize %s: duplicate id", v.ID)
		}
		if !v.Category.Valid() {
			return nil, fmt.Errorf("prize %s: unknown category %q", v.ID, v.Category)
		}
		if v.RemainingStock < 0 {
			v.RemainingStock = 0
		}
		seen[v.ID] = true
		c.variants = append(c.variants, &v)
	}
	return c, nil
}

// Draw selects one variant with probability proportional to its weight among
// variants that still have stock, and decrements that variant's stock.
// Selection and decrement happen under one lock.
func (c *PrizeCatalog) Draw() (models.PrizeVariant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx, ok := pickIndex(c.variants, c.src)
	if !ok {
		logger.Warningf("draw rejected: catalog exhausted")
		return models.PrizeVariant{}, ErrExhaustedCatalog
	}
	v := c.variants[idx]
	v.RemainingStock--
	return *v, nil
}

// Variants returns a snapshot of the catalog in its configured order.
func (c *PrizeCatalog) Variants() []models.PrizeVariant {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.PrizeVariant, 0, len(c.variants))
	for _, v := range c.variants {
		out = append(out, *v)
	}
	return out
}

// Restock sets the remaining stock of one variant.
func (c *PrizeCatalog) Restock(id string, stock int) error {
	if stock < 0 {
		return fmt.Errorf("prize %s: negative stock %d", id, stock)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, v := range c.variants {
		if v.ID == id {
			v.RemainingStock = stock
			logger.Infof("prize %s restocked to %d", id, stock)
			return nil
		}
	}
	return fmt.Errorf("prize %s: %w", id, ErrPrizeNotFound)
}

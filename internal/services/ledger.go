package services

import (
	"sync"
	"time"

	"campaign/internal/models"

	"github.com/google/logger"
	"github.com/google/uuid"
)

// AwardLedger is the append-only record of granted prizes, one per profile.
type AwardLedger struct {
	mu        sync.RWMutex
	entries   map[string]*models.AwardLedgerEntry
	order     []string
	catalog   *PrizeCatalog
	inventory *VoucherInventory
	now       func() time.Time
}

// NewAwardLedger creates a ledger drawing from catalog. inventory may be nil,
// in which case voucher prizes are recorded without a code.
func NewAwardLedger(catalog *PrizeCatalog, inventory *VoucherInventory) *AwardLedger {
	return &AwardLedger{
		entries:   make(map[string]*models.AwardLedgerEntry),
		catalog:   catalog,
		inventory: inventory,
		now:       time.Now,
	}
}

// Grant draws exactly one prize for profile and records it.
// If the profile already has an entry, that entry is returned with ErrDuplicatePlay
// and nothing is drawn.
func (l *AwardLedger) Grant(profile models.SessionProfile) (models.AwardLedgerEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.entries[profile.ID]; ok {
		logger.Warningf("duplicate play for profile %s", profile.ID)
		return *existing, ErrDuplicatePlay
	}

	prize, err := l.catalog.Draw()
	if err != nil {
		return models.AwardLedgerEntry{}, err
	}

	entry := &models.AwardLedgerEntry{
		Profile: profile,
		Result: models.DrawResult{
			ID:        uuid.NewString(),
			PrizeID:   prize.ID,
			PrizeName: prize.Name,
			Category:  prize.Category,
			DrawnAt:   l.now(),
		},
	}
	if vt := prize.Category.VoucherType(); vt != "" && l.inventory != nil {
		v, err := l.inventory.Claim(vt, profile.LocationName, profile.ID)
		if err != nil {
			logger.Warningf("profile %s: %v, award recorded without code", profile.ID, err)
		} else {
			entry.VoucherCode = v.Code
		}
	}

	l.entries[profile.ID] = entry
	l.order = append(l.order, profile.ID)
	logger.V(1).Infof("profile %s won %s (%s)", profile.ID, prize.ID, prize.Category)
	return *entry, nil
}

// Lookup returns the entry recorded for profileID.
func (l *AwardLedger) Lookup(profileID string) (models.AwardLedgerEntry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[profileID]
	if !ok {
		return models.AwardLedgerEntry{}, false
	}
	return *e, true
}

// Entries returns every entry in grant order.
func (l *AwardLedger) Entries() []models.AwardLedgerEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.AwardLedgerEntry, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.entries[id])
	}
	return out
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campaign/internal/models"

	"github.com/google/logger"
	"github.com/google/uuid"
)

// DefaultLocationID is used when a registration names no location.
const DefaultLocationID = "loc1"

// DefaultLocations is the campaign's built-in venue list.
func DefaultLocations() []models.Location {
	return []models.Location{
		{ID: "loc1", Name: "Dubai Mall", Country: "UAE"},
		{ID: "loc2", Name: "Mall of the Emirates", Country: "UAE"},
		{ID: "loc3", Name: "City Centre Mirdif", Country: "UAE"},
		{ID: "loc4", Name: "Riyadh Park", Country: "Saudi Arabia"},
		{ID: "loc5", Name: "Red Sea Mall", Country: "Saudi Arabia"},
	}
}

// Registration is the validated contact record handed over by the form collector.
type Registration struct {
	Name       string
	Email      string
	Phone      string
	LocationID string
}

// CampaignService ties a browser session to its registration and its single play.
type CampaignService struct {
	store     SessionStore
	ledger    *AwardLedger
	catalog   *PrizeCatalog
	locations []models.Location
	now       func() time.Time
}

func NewCampaignService(store SessionStore, ledger *AwardLedger, catalog *PrizeCatalog, locations []models.Location) *CampaignService {
	return &CampaignService{
		store:     store,
		ledger:    ledger,
		catalog:   catalog,
		locations: locations,
		now:       time.Now,
	}
}

// Locations returns the configured venues.
func (s *CampaignService) Locations() []models.Location {
	out := make([]models.Location, len(s.locations))
	copy(out, s.locations)
	return out
}

// Prizes returns the wheel with remaining stock.
func (s *CampaignService) Prizes() []models.PrizeVariant {
	return s.catalog.Variants()
}

func (s *CampaignService) location(id string) (models.Location, bool) {
	for _, loc := range s.locations {
		if loc.ID == id {
			return loc, true
		}
	}
	return models.Location{}, false
}

// Register creates a fresh profile for the session, replacing any earlier one.
func (s *CampaignService) Register(ctx context.Context, sessionKey string, reg Registration) (models.SessionProfile, error) {
	locationID := strings.TrimSpace(reg.LocationID)
	if locationID == "" {
		locationID = DefaultLocationID
	}
	profile := models.SessionProfile{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(reg.Name),
		Email:      strings.TrimSpace(reg.Email),
		Phone:      strings.TrimSpace(reg.Phone),
		LocationID: locationID,
		Country:    "Unknown",
		CreatedAt:  s.now(),
	}
	if loc, ok := s.location(locationID); ok {
		profile.LocationName = loc.Name
		profile.Country = loc.Country
	}

	if err := s.store.Save(ctx, sessionKey, models.Session{Profile: profile, Awards: []models.AwardLedgerEntry{}}); err != nil {
		return models.SessionProfile{}, fmt.Errorf("save session: %w", err)
	}
	logger.Infof("profile %s registered at %s", profile.ID, profile.LocationID)
	return profile, nil
}

// Play spins the wheel for the session's registration.
// A registration that already played gets its recorded award back with replay set.
func (s *CampaignService) Play(ctx context.Context, sessionKey string) (entry models.AwardLedgerEntry, replay bool, err error) {
	session, ok, err := s.store.Load(ctx, sessionKey)
	if err != nil {
		return models.AwardLedgerEntry{}, false, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return models.AwardLedgerEntry{}, false, ErrNoActiveSession
	}
	// The session document outlives the in-memory ledger when the store is persistent.
	if len(session.Awards) > 0 {
		return session.Awards[0], true, nil
	}

	entry, err = s.ledger.Grant(session.Profile)
	if errors.Is(err, ErrDuplicatePlay) {
		return entry, true, nil
	}
	if err != nil {
		return models.AwardLedgerEntry{}, false, err
	}

	session.Awards = append(session.Awards, entry)
	if err := s.store.Save(ctx, sessionKey, session); err != nil {
		return models.AwardLedgerEntry{}, false, fmt.Errorf("save session: %w", err)
	}
	return entry, false, nil
}

// Current returns the session document, if any.
func (s *CampaignService) Current(ctx context.Context, sessionKey string) (models.Session, bool, error) {
	return s.store.Load(ctx, sessionKey)
}

// Leave forgets the session. The ledger keeps its entries.
func (s *CampaignService) Leave(ctx context.Context, sessionKey string) error {
	return s.store.Clear(ctx, sessionKey)
}

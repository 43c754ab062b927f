package availability

import (
	"context"
	"time"

	"appointly/models"
)

// ViewQuery asks for the bookable dates, and optionally the slots of one date,
// at a location.
type ViewQuery struct {
	LocationID string
	Selection  models.ProviderSelection
	Date       string
}

type AvailabilityService interface {
	GetView(ctx context.Context, q ViewQuery) (*models.AvailabilityView, error)
	// LoadInput gathers records, roster and appointments for [from, to).
	LoadInput(ctx context.Context, locationID string, sel models.ProviderSelection, from, to time.Time) (*Input, error)
	GetAvailability(ctx context.Context, scope models.Scope, scopeID string) (*models.Availability, error)
	SaveAvailability(ctx context.Context, a *models.Availability) error
}

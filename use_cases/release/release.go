package release

import (
	"context"

	"github.com/harvicreates/inventory/domain/reservation"
	"github.com/harvicreates/inventory/protocols"
)

type Release struct {
	store  *reservation.Store
	events protocols.EventPublisher
	logger protocols.Logger
}

func NewRelease(store *reservation.Store, events protocols.EventPublisher, logger protocols.Logger) *Release {
	return &Release{
		store:  store,
		events: events,
		logger: logger,
	}
}

type Input struct {
	ReservationID string
}

// Release drops every hold under the reservation id. Unknown ids are a no-op.
func (r *Release) Release(ctx context.Context, input Input) {
	released := r.store.ReleaseSession(input.ReservationID)
	if released == 0 {
		return
	}

	if r.logger != nil {
		r.logger.Info("reservation released", "reservationId", input.ReservationID, "itemsReleased", released)
	}
	if r.events != nil {
		_ = r.events.Publish(ctx, protocols.EventReservationReleased, map[string]any{
			"reservationId": input.ReservationID,
			"itemsReleased": released,
		})
	}
}

package status

import (
	"time"

	"github.com/harvicreates/inventory/domain/reservation"
)

type GetStatus struct {
	store *reservation.Store
}

func NewGetStatus(store *reservation.Store) *GetStatus {
	return &GetStatus{store: store}
}

type Output struct {
	Exists        bool
	ItemCount     int32
	ExpiresAt     time.Time
	TimeRemaining time.Duration
	Expired       bool
}

// Status is a pure read of a reservation's live holds.
func (g *GetStatus) Status(reservationID string) Output {
	st := g.store.Status(reservationID)
	return Output{
		Exists:        st.Exists,
		ItemCount:     st.ItemCount,
		ExpiresAt:     st.ExpiresAt,
		TimeRemaining: st.TimeRemaining,
		Expired:       st.Expired,
	}
}

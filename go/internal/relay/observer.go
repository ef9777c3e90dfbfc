package relay

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/duelpong/go/internal/pong/events"
	"github.com/rs/zerolog/log"
)

// RoomEventKind is what happened to a room's membership
type RoomEventKind string

const (
	RoomJoined   RoomEventKind = "joined"
	RoomLeft     RoomEventKind = "left"
	RoomRejected RoomEventKind = "rejected"
)

// RoomEvent describes one membership change. Members is the room size after the change.
type RoomEvent struct {
	ID           uuid.UUID     `json:"eventId"`
	Kind         RoomEventKind `json:"kind"`
	MatchID      string        `json:"matchId"`
	ConnectionID string        `json:"connectionId"`
	Player       events.Player `json:"player,omitempty"`
	Members      int           `json:"members"`
	At           time.Time     `json:"at"`
}

// Observer receives room membership events. Observers never see match traffic.
type Observer interface {
	Observe(ctx context.Context, e RoomEvent) error
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(ctx context.Context, e RoomEvent) error

// Observe calls f(ctx, e)
func (f ObserverFunc) Observe(ctx context.Context, e RoomEvent) error { return f(ctx, e) }

// Dispatcher fans room events out to observers on its own goroutine, so a slow
// observer never stalls a join or a disconnect.
type Dispatcher struct {
	observers []Observer
	eventCh   chan RoomEvent
}

// NewDispatcher creates a dispatcher that buffers up to buffer pending events
func NewDispatcher(buffer int, observers ...Observer) *Dispatcher {
	return &Dispatcher{
		observers: observers,
		eventCh:   make(chan RoomEvent, buffer),
	}
}

// Notify queues an event, dropping it when the buffer is full
func (d *Dispatcher) Notify(e RoomEvent) {
	if d == nil || len(d.observers) == 0 {
		return
	}
	select {
	case d.eventCh <- e:
	default:
		log.Warn().
			Str("match_id", e.MatchID).
			Str("kind", string(e.Kind)).
			Msg("room event channel full, dropping event")
	}
}

// Run delivers events until ctx is cancelled
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-d.eventCh:
			for _, o := range d.observers {
				if err := o.Observe(ctx, e); err != nil {
					log.Error().
						Err(err).
						Str("match_id", e.MatchID).
						Str("kind", string(e.Kind)).
						Msg("room observer failed")
				}
			}
		}
	}
}

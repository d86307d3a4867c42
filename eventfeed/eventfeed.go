package eventfeed

import (
	"context"
	"log"
	"sync"
	"time"
)

// Event types published by the simulation.
const (
	TypeJoined     = "joined"
	TypeRespawned  = "respawned"
	TypeEliminated = "eliminated"
	TypeLeft       = "left"
)

// Event describes something that happened to a player. Score and Radius are
// the player's values at the moment of the event.
type Event struct {
	Type       string    `json:"type" bson:"type"`
	ServerID   string    `json:"serverId" bson:"serverId"`
	Tick       uint64    `json:"tick" bson:"tick"`
	PlayerID   string    `json:"playerId" bson:"playerId"`
	Name       string    `json:"name" bson:"name"`
	Score      float64   `json:"score" bson:"score"`
	Radius     float64   `json:"radius" bson:"radius"`
	KillerID   string    `json:"killerId,omitempty" bson:"killerId,omitempty"`
	KillerName string    `json:"killerName,omitempty" bson:"killerName,omitempty"`
	At         time.Time `json:"at" bson:"at"`
}

// Emitter accepts events without blocking the caller.
type Emitter interface {
	Emit(Event)
}

// Sink receives events from a Dispatcher.
type Sink interface {
	Publish(ctx context.Context, ev Event) error
}

// Dispatcher queues events and delivers them to every sink from a single
// background goroutine. When the queue is full new events are dropped.
type Dispatcher struct {
	serverID string
	sinks    []Sink
	queue    chan Event
	timeout  time.Duration
	done     chan struct{}
	once     sync.Once
}

func NewDispatcher(serverID string, size int, sinks ...Sink) *Dispatcher {
	d := &Dispatcher{
		serverID: serverID,
		sinks:    sinks,
		queue:    make(chan Event, size),
		timeout:  5 * time.Second,
		done:     make(chan struct{}),
	}
	go d.run()
	return d
}

// Emit stamps and enqueues an event.
func (d *Dispatcher) Emit(ev Event) {
	if ev.ServerID == "" {
		ev.ServerID = d.serverID
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	select {
	case d.queue <- ev:
	default:
		log.Printf("Event queue full, dropping %s event for %s", ev.Type, ev.PlayerID)
	}
}

// Close stops accepting events and waits until queued ones are delivered.
// Emit must not be called after Close.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.queue)
		<-d.done
	})
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for ev := range d.queue {
		for _, s := range d.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			if err := s.Publish(ctx, ev); err != nil {
				log.Printf("Error publishing %s event: %v", ev.Type, err)
			}
			cancel()
		}
	}
}

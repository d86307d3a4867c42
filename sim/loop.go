package sim

import (
	"log"
	"math"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Cormuckle/dist_systems_group_M/arena_server/eventfeed"
	"github.com/Cormuckle/dist_systems_group_M/arena_server/playerstate"
	"github.com/Cormuckle/dist_systems_group_M/arena_server/protocol"
)

// Stats is a summary of the world published after every tick.
type Stats struct {
	Tick        uint64 `json:"tick"`
	Players     int    `json:"players"`
	Food        int    `json:"food"`
	Connections int    `json:"connections"`
}

type Options struct {
	TickHz    int
	InboxSize int
	Events    eventfeed.Emitter
}

// Loop owns a World and every client connection. All world mutation happens
// on the goroutine running Run; other goroutines talk to it through Submit.
type Loop struct {
	inbox   chan any
	quit    chan struct{}
	done    chan struct{}
	stop    sync.Once
	running atomic.Bool

	tickHz int
	world  *World
	conns  map[string]Conn
	events eventfeed.Emitter

	mu          sync.RWMutex
	stats       Stats
	leaderboard []protocol.LeaderboardEntry
}

func NewLoop(world *World, opts Options) *Loop {
	if opts.TickHz <= 0 {
		opts.TickHz = TickHz
	}
	if opts.InboxSize <= 0 {
		opts.InboxSize = 1024
	}
	if opts.Events == nil {
		opts.Events = discardEvents{}
	}
	return &Loop{
		inbox:  make(chan any, opts.InboxSize),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		tickHz: opts.TickHz,
		world:  world,
		conns:  make(map[string]Conn),
		events: opts.Events,
	}
}

// Submit queues a command for the loop. It returns false once the loop is stopped.
func (l *Loop) Submit(cmd any) bool {
	select {
	case <-l.quit:
		return false
	default:
	}
	select {
	case l.inbox <- cmd:
		return true
	case <-l.quit:
		return false
	}
}

// Stop ends Run and closes every connection. Safe to call more than once.
func (l *Loop) Stop() {
	l.stop.Do(func() { close(l.quit) })
	if l.running.Load() {
		<-l.done
	}
}

// Run blocks until Stop is called. Ticks that cannot be served on time are
// skipped rather than queued.
func (l *Loop) Run() {
	l.running.Store(true)
	defer close(l.done)
	defer l.closeAll()

	ticker := time.NewTicker(time.Second / time.Duration(l.tickHz))
	defer ticker.Stop()

	log.Printf("Simulation loop started at %d Hz", l.tickHz)
	for {
		select {
		case <-l.quit:
			log.Println("Simulation loop stopped")
			return
		case cmd := <-l.inbox:
			l.handleCommand(cmd)
		case <-ticker.C:
			l.tick()
		}
	}
}

// Stats returns the summary published after the latest tick.
func (l *Loop) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stats
}

// Leaderboard returns the leaderboard published after the latest tick.
func (l *Loop) Leaderboard() []protocol.LeaderboardEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]protocol.LeaderboardEntry, len(l.leaderboard))
	copy(out, l.leaderboard)
	return out
}

func (l *Loop) tick() {
	l.drainInbox()
	elims, ok := l.step()
	if !ok {
		return
	}
	for _, e := range elims {
		l.eliminated(e)
	}
	snapshot := l.world.Snapshot()
	l.broadcast(protocol.MsgGameState, snapshot)
	l.publish(snapshot.Leaderboard)
}

// step runs one world tick. A panic is logged and the tick abandoned so the
// loop keeps serving everyone else.
func (l *Loop) step() (elims []Elimination, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in tick %d: %v\n%s", l.world.Tick(), r, debug.Stack())
			elims, ok = nil, false
		}
	}()
	return l.world.Step(), true
}

func (l *Loop) drainInbox() {
	for {
		select {
		case cmd := <-l.inbox:
			l.handleCommand(cmd)
		default:
			return
		}
	}
}

func (l *Loop) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case Connect:
		if _, ok := l.conns[c.ID]; ok {
			log.Printf("Connection %s already registered", c.ID)
			return
		}
		l.conns[c.ID] = c.Conn
	case Join:
		conn, ok := l.conns[c.ID]
		if !ok {
			return
		}
		p, created := l.world.Players.Join(c.ID, c.Name, c.Color)
		if !created {
			log.Printf("Ignoring join from %s: player already exists", c.ID)
			return
		}
		// Emit before init: a failed send removes the player and emits left.
		l.emit(eventfeed.TypeJoined, p, "", "")
		l.sendInit(c.ID, conn)
	case Respawn:
		conn, ok := l.conns[c.ID]
		if !ok {
			return
		}
		p, created := l.world.Players.Respawn(c.ID, c.Name, c.Color)
		if created {
			l.emit(eventfeed.TypeJoined, p, "", "")
		} else {
			l.emit(eventfeed.TypeRespawned, p, "", "")
		}
		l.sendInit(c.ID, conn)
	case Move:
		l.world.Players.SetInput(c.ID, c.Input)
	case Disconnect:
		l.disconnect(c.ID)
	case Announce:
		l.broadcast(protocol.MsgAnnounce, protocol.Announce{Message: c.Message})
	default:
		log.Printf("Unknown loop command %T", cmd)
	}
}

func (l *Loop) disconnect(id string) {
	if conn, ok := l.conns[id]; ok {
		delete(l.conns, id)
		_ = conn.Close()
	}
	p, ok := l.world.Players.Get(id)
	if !ok {
		return
	}
	l.world.Players.Remove(id)
	log.Printf("Player %s left", id)
	l.emit(eventfeed.TypeLeft, p, "", "")
	l.broadcast(protocol.MsgPlayerLeft, protocol.PlayerLeft{ID: id})
}

func (l *Loop) eliminated(e Elimination) {
	log.Printf("Player %s (%s) eaten by %s (%s)", e.Prey.ID, e.Prey.Name, e.PredatorID, e.PredatorName)
	l.emit(eventfeed.TypeEliminated, &e.Prey, e.PredatorID, e.PredatorName)
	if conn, ok := l.conns[e.Prey.ID]; ok {
		l.sendTo(e.Prey.ID, conn, protocol.MsgDead, protocol.Dead{
			By:    e.PredatorName,
			Score: int(math.Floor(e.Prey.Score)),
		})
	}
}

func (l *Loop) sendInit(id string, conn Conn) {
	l.sendTo(id, conn, protocol.MsgInit, protocol.Init{
		WorldSize: l.world.Tuning.WorldSize,
		ID:        id,
		Food:      l.world.foodViews(),
		Players:   l.world.playerViews(),
	})
}

func (l *Loop) sendTo(id string, conn Conn, t string, payload any) {
	b, err := conn.Codec().Encode(t, payload)
	if err != nil {
		log.Printf("Error encoding %s for %s: %v", t, id, err)
		return
	}
	if err := conn.Send(b); err != nil {
		log.Printf("Dropping connection %s: %v", id, err)
		l.disconnect(id)
	}
}

// broadcast encodes the payload once per codec in use and queues it on every
// connection. Connections that cannot take the frame are dropped afterwards.
func (l *Loop) broadcast(t string, payload any) {
	frames := make(map[string][]byte, 2)
	var failed []string
	for id, conn := range l.conns {
		codec := conn.Codec()
		b, ok := frames[codec.Name()]
		if !ok {
			var err error
			b, err = codec.Encode(t, payload)
			if err != nil {
				log.Printf("Error encoding %s as %s: %v", t, codec.Name(), err)
				b = nil
			}
			// nil marks a codec that failed for this payload.
			frames[codec.Name()] = b
		}
		if b == nil {
			continue
		}
		if err := conn.Send(b); err != nil {
			log.Printf("Dropping connection %s: %v", id, err)
			failed = append(failed, id)
		}
	}
	for _, id := range failed {
		l.disconnect(id)
	}
}

func (l *Loop) publish(leaderboard []protocol.LeaderboardEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.leaderboard = leaderboard
	l.stats = Stats{
		Tick:        l.world.Tick(),
		Players:     l.world.Players.Len(),
		Food:        l.world.Food.Len(),
		Connections: len(l.conns),
	}
}

func (l *Loop) emit(typ string, p *playerstate.Player, killerID, killerName string) {
	l.events.Emit(eventfeed.Event{
		Type:       typ,
		Tick:       l.world.Tick(),
		PlayerID:   p.ID,
		Name:       p.Name,
		Score:      p.Score,
		Radius:     p.Radius,
		KillerID:   killerID,
		KillerName: killerName,
	})
}

func (l *Loop) closeAll() {
	for id, conn := range l.conns {
		_ = conn.Close()
		delete(l.conns, id)
	}
}

type discardEvents struct{}

func (discardEvents) Emit(eventfeed.Event) {}

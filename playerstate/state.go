package playerstate

import (
	"log"
	"math"
	"math/rand/v2"
	"strings"
	"unicode/utf8"
)

// ------------------ Player State ------------------

const (
	DefaultName  = "Guest"
	DefaultColor = "#9d174d"
	maxNameRunes = 16
)

// Input is the latest movement state reported by a client. Missing flags are false.
type Input struct {
	Up    bool
	Down  bool
	Left  bool
	Right bool
	Boost bool
}

// Player is the live entity controlled by one connection.
type Player struct {
	ID       string
	X        float64
	Y        float64
	Radius   float64
	Color    string
	Name     string
	Score    float64
	Boosting bool
	Input    Input
}

// SpawnConfig controls where and how big new players appear.
type SpawnConfig struct {
	WorldSize  float64
	BaseRadius float64
	// Margin keeps spawn positions away from the edges. Never less than BaseRadius.
	Margin float64
	// Candidates is the number of random positions sampled per spawn; the one
	// farthest from every live player is used.
	Candidates int
}

// Registry maps connection ids to players and remembers join order.
// It is not safe for concurrent use; the simulation loop owns it.
type Registry struct {
	players map[string]*Player
	order   []string
	cfg     SpawnConfig
	rng     *rand.Rand
}

func NewRegistry(cfg SpawnConfig, rng *rand.Rand) *Registry {
	if cfg.Margin < cfg.BaseRadius {
		cfg.Margin = cfg.BaseRadius
	}
	if cfg.Candidates < 1 {
		cfg.Candidates = 1
	}
	return &Registry{
		players: make(map[string]*Player),
		cfg:     cfg,
		rng:     rng,
	}
}

// Join creates a player for id. If one already exists it is returned unchanged
// and the second result is false; use Respawn to reset.
func (r *Registry) Join(id, name, color string) (*Player, bool) {
	if p, ok := r.players[id]; ok {
		return p, false
	}
	p := &Player{
		ID:    id,
		Name:  cleanName(name, DefaultName),
		Color: cleanColor(color, DefaultColor),
	}
	r.reset(p)
	r.players[id] = p
	r.order = append(r.order, id)
	log.Printf("Player %s joined as %q", id, p.Name)
	return p, true
}

// Respawn resets an existing player in place, overwriting name and color when
// given. For an unknown id it behaves as Join. The second result reports
// whether a new player was created.
func (r *Registry) Respawn(id, name, color string) (*Player, bool) {
	p, ok := r.players[id]
	if !ok {
		return r.Join(id, name, color)
	}
	p.Name = cleanName(name, p.Name)
	p.Color = cleanColor(color, p.Color)
	r.reset(p)
	log.Printf("Player %s respawned as %q", id, p.Name)
	return p, false
}

// Remove deletes a player. Unknown ids are ignored.
func (r *Registry) Remove(id string) bool {
	if _, ok := r.players[id]; !ok {
		return false
	}
	delete(r.players, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func (r *Registry) Get(id string) (*Player, bool) {
	p, ok := r.players[id]
	return p, ok
}

// SetInput replaces the player's latest input. Unknown ids are ignored.
func (r *Registry) SetInput(id string, in Input) bool {
	p, ok := r.players[id]
	if !ok {
		return false
	}
	p.Input = in
	return true
}

// Ordered returns the live players in join order. The slice is a copy; the
// players are not.
func (r *Registry) Ordered() []*Player {
	out := make([]*Player, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.players[id])
	}
	return out
}

func (r *Registry) Len() int {
	return len(r.players)
}

func (r *Registry) reset(p *Player) {
	p.X, p.Y = r.spawnPosition(p.ID)
	p.Radius = r.cfg.BaseRadius
	p.Score = 0
	p.Boosting = false
	p.Input = Input{}
}

// spawnPosition samples candidate points inside the margin and keeps the one
// with the largest clearance to the nearest other player's edge.
func (r *Registry) spawnPosition(self string) (float64, float64) {
	lo := r.cfg.Margin
	span := r.cfg.WorldSize - 2*lo
	if span < 0 {
		span = 0
	}
	bestX, bestY, bestGap := 0.0, 0.0, math.Inf(-1)
	for i := 0; i < r.cfg.Candidates; i++ {
		x := lo + r.rng.Float64()*span
		y := lo + r.rng.Float64()*span
		gap := math.Inf(1)
		for _, id := range r.order {
			if id == self {
				continue
			}
			o := r.players[id]
			if d := math.Hypot(x-o.X, y-o.Y) - o.Radius; d < gap {
				gap = d
			}
		}
		if gap > bestGap {
			bestX, bestY, bestGap = x, y, gap
		}
	}
	return bestX, bestY
}

func cleanName(name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if utf8.RuneCountInString(name) > maxNameRunes {
		name = string([]rune(name)[:maxNameRunes])
	}
	return name
}

func cleanColor(color, fallback string) string {
	color = strings.TrimSpace(color)
	if color == "" {
		return fallback
	}
	return color
}

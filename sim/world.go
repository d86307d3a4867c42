package sim

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/Cormuckle/dist_systems_group_M/arena_server/playerstate"
	"github.com/Cormuckle/dist_systems_group_M/arena_server/protocol"
)

// World is the authoritative game state. It is not safe for concurrent use;
// a Loop owns it and mutates it only from its own goroutine.
type World struct {
	Tuning  Tuning
	Players *playerstate.Registry
	Food    *playerstate.FoodPool
	tick    uint64
}

// Elimination records one player eaten by another during a tick. Prey holds
// the prey's state at the moment it was eaten.
type Elimination struct {
	Prey         playerstate.Player
	PredatorID   string
	PredatorName string
}

func NewWorld(t Tuning, rng *rand.Rand) *World {
	w := &World{
		Tuning: t,
		Players: playerstate.NewRegistry(playerstate.SpawnConfig{
			WorldSize:  t.WorldSize,
			BaseRadius: t.BaseRadius,
			Margin:     t.SpawnMargin,
			Candidates: t.SpawnCandidates,
		}, rng),
		Food: playerstate.NewFoodPool(t.WorldSize, t.FoodRadius, rng),
	}
	w.Food.EnsureFilled(t.FoodCount)
	return w
}

func (w *World) Tick() uint64 {
	return w.tick
}

// Step advances the world by one tick and returns the eliminations that
// happened, in the order they were resolved. Players are processed in join
// order; a player eliminated earlier in the tick takes no further part in it.
func (w *World) Step() []Elimination {
	w.tick++

	var elims []Elimination
	for _, p := range w.Players.Ordered() {
		if _, alive := w.Players.Get(p.ID); !alive {
			continue
		}
		w.move(p)
		w.eatFood(p)
		elims = w.eatPlayers(p, elims)
		w.keepInside(p)
	}

	w.Food.EnsureFilled(w.Tuning.FoodCount)
	return elims
}

func (w *World) move(p *playerstate.Player) {
	t := w.Tuning
	in := p.Input

	speed := t.speedFor(p.Radius)
	p.Boosting = in.Boost && p.Radius > t.BoostMinRadius
	if p.Boosting {
		speed *= t.BoostFactor
		p.Radius = max(t.BoostMinRadius, p.Radius-t.BoostRadiusDecay)
		p.Score = max(0, p.Score-t.BoostScoreDecay)
	}

	// Flags are applied independently; diagonal movement is not normalized.
	if in.Up {
		p.Y -= speed
	}
	if in.Down {
		p.Y += speed
	}
	if in.Left {
		p.X -= speed
	}
	if in.Right {
		p.X += speed
	}

	w.keepInside(p)
}

// keepInside clamps the radius and then the position so the whole circle is
// inside the world. It must run again after anything that grows the player.
func (w *World) keepInside(p *playerstate.Player) {
	t := w.Tuning
	p.Radius = t.clampRadius(p.Radius)
	p.X = clamp(p.X, p.Radius, t.WorldSize-p.Radius)
	p.Y = clamp(p.Y, p.Radius, t.WorldSize-p.Radius)
}

func (w *World) eatFood(p *playerstate.Player) {
	for _, f := range w.Food.All() {
		if math.Hypot(p.X-f.X, p.Y-f.Y) >= p.Radius {
			continue
		}
		if !w.Food.Consume(f.ID) {
			continue
		}
		p.Score += w.Tuning.FoodScore
		p.Radius = w.Tuning.clampRadius(p.Radius + w.Tuning.FoodGrowth)
	}
}

func (w *World) eatPlayers(pred *playerstate.Player, elims []Elimination) []Elimination {
	t := w.Tuning
	for _, prey := range w.Players.Ordered() {
		if prey.ID == pred.ID {
			continue
		}
		if math.Hypot(pred.X-prey.X, pred.Y-prey.Y) >= pred.Radius {
			continue
		}
		if pred.Radius <= prey.Radius*t.DominanceFactor {
			continue
		}
		pred.Radius = t.clampRadius(pred.Radius + prey.Radius*t.AbsorbFraction)
		pred.Score += prey.Score + t.KillBonus
		w.Players.Remove(prey.ID)
		elims = append(elims, Elimination{
			Prey:         *prey,
			PredatorID:   pred.ID,
			PredatorName: pred.Name,
		})
	}
	return elims
}

// Leaderboard returns the top players by descending score. Ties keep join order.
func (w *World) Leaderboard() []protocol.LeaderboardEntry {
	players := w.Players.Ordered()
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Score > players[j].Score
	})
	n := min(len(players), w.Tuning.LeaderboardSize)
	out := make([]protocol.LeaderboardEntry, 0, n)
	for _, p := range players[:n] {
		out = append(out, protocol.LeaderboardEntry{
			ID:    p.ID,
			Name:  p.Name,
			Score: int(math.Floor(p.Score)),
		})
	}
	return out
}

// Snapshot builds the per-tick broadcast payload.
func (w *World) Snapshot() protocol.GameState {
	return protocol.GameState{
		Tick:        w.tick,
		Players:     w.playerViews(),
		Food:        w.foodViews(),
		Leaderboard: w.Leaderboard(),
	}
}

func (w *World) playerViews() map[string]protocol.PlayerView {
	out := make(map[string]protocol.PlayerView, w.Players.Len())
	for _, p := range w.Players.Ordered() {
		out[p.ID] = playerView(p)
	}
	return out
}

func (w *World) foodViews() []protocol.FoodView {
	food := w.Food.All()
	out := make([]protocol.FoodView, 0, len(food))
	for _, f := range food {
		out = append(out, protocol.FoodView{
			ID:     f.ID,
			X:      f.X,
			Y:      f.Y,
			Color:  f.Color,
			Radius: f.Radius,
		})
	}
	return out
}

func playerView(p *playerstate.Player) protocol.PlayerView {
	return protocol.PlayerView{
		ID:       p.ID,
		X:        p.X,
		Y:        p.Y,
		Radius:   p.Radius,
		Color:    p.Color,
		Name:     p.Name,
		Score:    p.Score,
		Boosting: p.Boosting,
	}
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return (lo + hi) / 2
	}
	return math.Max(lo, math.Min(hi, v))
}

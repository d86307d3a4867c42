package playerstate

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
)

// ---------------- Food Pellets ----------------

// Food is a single consumable pellet. Pellets never move; a consumed pellet is
// replaced by a new one with a new ID.
type Food struct {
	ID     string
	X      float64
	Y      float64
	Color  string
	Radius float64
}

// FoodPool holds the pellets currently on the map.
type FoodPool struct {
	items     []Food
	index     map[string]int
	worldSize float64
	radius    float64
	rng       *rand.Rand
}

func NewFoodPool(worldSize, radius float64, rng *rand.Rand) *FoodPool {
	return &FoodPool{
		index:     make(map[string]int),
		worldSize: worldSize,
		radius:    radius,
		rng:       rng,
	}
}

// EnsureFilled spawns pellets until the pool holds target pellets and returns
// how many were added.
func (f *FoodPool) EnsureFilled(target int) int {
	added := 0
	for len(f.items) < target {
		f.add(f.spawn())
		added++
	}
	return added
}

// Consume removes the pellet with the given ID.
func (f *FoodPool) Consume(id string) bool {
	i, ok := f.index[id]
	if !ok {
		return false
	}
	last := len(f.items) - 1
	if i != last {
		f.items[i] = f.items[last]
		f.index[f.items[i].ID] = i
	}
	f.items = f.items[:last]
	delete(f.index, id)
	return true
}

// All returns a copy of the current pellets.
func (f *FoodPool) All() []Food {
	out := make([]Food, len(f.items))
	copy(out, f.items)
	return out
}

func (f *FoodPool) Len() int {
	return len(f.items)
}

func (f *FoodPool) add(p Food) {
	f.index[p.ID] = len(f.items)
	f.items = append(f.items, p)
}

func (f *FoodPool) spawn() Food {
	span := f.worldSize - 2*f.radius
	return Food{
		ID:     uuid.NewString(),
		X:      f.radius + f.rng.Float64()*span,
		Y:      f.radius + f.rng.Float64()*span,
		Color:  fmt.Sprintf("hsl(%d, 70%%, 60%%)", f.rng.IntN(360)),
		Radius: f.radius,
	}
}

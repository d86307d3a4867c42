package sim

import "fmt"

// Tuning holds every gameplay constant. Speeds and decays are per tick.
type Tuning struct {
	WorldSize       float64
	BaseRadius      float64
	MinRadius       float64
	MaxRadius       float64
	SpawnMargin     float64
	SpawnCandidates int

	FoodCount  int
	FoodRadius float64
	FoodScore  float64
	FoodGrowth float64

	BaseSpeed    float64
	SpeedFalloff float64 // speed lost per unit of radius above BaseRadius
	MinSpeed     float64

	BoostFactor      float64
	BoostMinRadius   float64 // boosting needs Radius > BoostMinRadius
	BoostRadiusDecay float64
	BoostScoreDecay  float64

	DominanceFactor float64 // predator.Radius must exceed prey.Radius * DominanceFactor
	AbsorbFraction  float64
	KillBonus       float64

	LeaderboardSize int
}

func DefaultTuning() Tuning {
	return Tuning{
		WorldSize:       3000,
		BaseRadius:      20,
		MinRadius:       20,
		MaxRadius:       300,
		SpawnMargin:     20,
		SpawnCandidates: 8,

		FoodCount:  150,
		FoodRadius: 5,
		FoodScore:  1,
		FoodGrowth: 0.5,

		BaseSpeed:    3,
		SpeedFalloff: 0.01,
		MinSpeed:     1,

		BoostFactor:      5.0 / 3.0,
		BoostMinRadius:   25,
		BoostRadiusDecay: 0.05,
		BoostScoreDecay:  0.05,

		DominanceFactor: 1.1,
		AbsorbFraction:  1.0 / 3.0,
		KillBonus:       5,

		LeaderboardSize: 5,
	}
}

// Validate reports tunings under which a player or pellet cannot fit inside
// the world.
func (t Tuning) Validate() error {
	if t.MinRadius <= 0 || t.MinRadius > t.MaxRadius {
		return fmt.Errorf("radius bounds [%g, %g] are invalid", t.MinRadius, t.MaxRadius)
	}
	if t.BaseRadius < t.MinRadius || t.BaseRadius > t.MaxRadius {
		return fmt.Errorf("base radius %g outside [%g, %g]", t.BaseRadius, t.MinRadius, t.MaxRadius)
	}
	if t.WorldSize < 2*t.MaxRadius {
		return fmt.Errorf("world size %g is smaller than the largest player (diameter %g)", t.WorldSize, 2*t.MaxRadius)
	}
	if t.WorldSize < 2*t.FoodRadius {
		return fmt.Errorf("world size %g is smaller than a pellet (diameter %g)", t.WorldSize, 2*t.FoodRadius)
	}
	if t.WorldSize < 2*t.SpawnMargin {
		return fmt.Errorf("world size %g leaves no room inside spawn margin %g", t.WorldSize, t.SpawnMargin)
	}
	return nil
}

func (t Tuning) speedFor(radius float64) float64 {
	return max(t.MinSpeed, t.BaseSpeed-(radius-t.BaseRadius)*t.SpeedFalloff)
}

func (t Tuning) clampRadius(r float64) float64 {
	return min(t.MaxRadius, max(t.MinRadius, r))
}

// TickHz is the default simulation rate.
const TickHz = 60

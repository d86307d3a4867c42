package protocol

type Init struct {
	WorldSize float64               `json:"worldSize" msgpack:"worldSize"`
	ID        string                `json:"id" msgpack:"id"`
	Food      []FoodView            `json:"food,omitempty" msgpack:"food,omitempty"`
	Players   map[string]PlayerView `json:"players,omitempty" msgpack:"players,omitempty"`
}

type GameState struct {
	Tick        uint64                `json:"tick" msgpack:"tick"`
	Players     map[string]PlayerView `json:"players" msgpack:"players"`
	Food        []FoodView            `json:"food" msgpack:"food"`
	Leaderboard []LeaderboardEntry    `json:"leaderboard" msgpack:"leaderboard"`
}

type PlayerView struct {
	ID       string  `json:"id" msgpack:"id"`
	X        float64 `json:"x" msgpack:"x"`
	Y        float64 `json:"y" msgpack:"y"`
	Radius   float64 `json:"radius" msgpack:"radius"`
	Color    string  `json:"color" msgpack:"color"`
	Name     string  `json:"name" msgpack:"name"`
	Score    float64 `json:"score" msgpack:"score"`
	Boosting bool    `json:"boosting" msgpack:"boosting"`
}

type FoodView struct {
	ID     string  `json:"id" msgpack:"id"`
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Color  string  `json:"color" msgpack:"color"`
	Radius float64 `json:"radius" msgpack:"radius"`
}

type LeaderboardEntry struct {
	ID    string `json:"id" msgpack:"id"`
	Name  string `json:"name" msgpack:"name"`
	Score int    `json:"score" msgpack:"score"`
}

// Dead is sent only to the eliminated connection.
type Dead struct {
	By    string `json:"by,omitempty" msgpack:"by,omitempty"`
	Score int    `json:"score" msgpack:"score"`
}

type PlayerLeft struct {
	ID string `json:"id" msgpack:"id"`
}

type Announce struct {
	Message string `json:"message" msgpack:"message"`
}

package protocol

import (
	"encoding/json"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func TestEventNames(t *testing.T) {
	names := map[string]string{
		MsgJoin:       "join",
		MsgRespawn:    "respawn",
		MsgMove:       "move",
		MsgInit:       "init",
		MsgGameState:  "gameState",
		MsgDead:       "dead",
		MsgPlayerLeft: "playerLeft",
	}
	for got, want := range names {
		if got != want {
			t.Fatalf("event name = %q, want %q", got, want)
		}
	}
}

func TestJSONDecodeMissingFlagsAreFalse(t *testing.T) {
	m, err := JSON.Decode([]byte(`{"t":"move","p":{"up":true}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.T != MsgMove {
		t.Fatalf("type = %q, want move", m.T)
	}
	want := ClientPayload{Up: true}
	if m.P != want {
		t.Fatalf("payload = %+v, want %+v", m.P, want)
	}
}

func TestJSONDecodeWithoutPayload(t *testing.T) {
	m, err := JSON.Decode([]byte(`{"t":"respawn"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.T != MsgRespawn || m.P != (ClientPayload{}) {
		t.Fatalf("unexpected message %+v", m)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for _, c := range []Codec{JSON, Msgpack} {
		if _, err := c.Decode(nil); err == nil {
			t.Fatalf("%s: expected error for empty frame", c.Name())
		}
		if _, err := c.Decode([]byte{0xc1, 0xff, '{'}); err == nil {
			t.Fatalf("%s: expected error for garbage frame", c.Name())
		}
	}
}

func TestMsgpackDecodeClientMessage(t *testing.T) {
	b, err := msgpack.Marshal(map[string]any{
		"t": "join",
		"p": map[string]any{"name": "alice", "color": "#abc"},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	m, err := Msgpack.Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.T != MsgJoin || m.P.Name != "alice" || m.P.Color != "#abc" || m.P.Boost {
		t.Fatalf("unexpected message %+v", m)
	}
}

func TestJSONEncodeGameState(t *testing.T) {
	b, err := JSON.Encode(MsgGameState, GameState{
		Players:     map[string]PlayerView{"a": {ID: "a", Radius: 20}},
		Food:        []FoodView{{ID: "f1"}},
		Leaderboard: []LeaderboardEntry{{ID: "a", Name: "alice", Score: 3}},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var raw struct {
		T string `json:"t"`
		P struct {
			Players     map[string]map[string]any `json:"players"`
			Food        []map[string]any          `json:"food"`
			Leaderboard []map[string]any          `json:"leaderboard"`
		} `json:"p"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if raw.T != MsgGameState {
		t.Fatalf("t = %q", raw.T)
	}
	if raw.P.Players["a"]["radius"] != 20.0 {
		t.Fatalf("player radius missing: %v", raw.P.Players["a"])
	}
	if len(raw.P.Food) != 1 || raw.P.Leaderboard[0]["name"] != "alice" {
		t.Fatalf("unexpected payload: %s", b)
	}
}

func TestEncodeWithoutPayload(t *testing.T) {
	b, err := JSON.Encode(MsgDead, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(b) != `{"t":"dead"}` {
		t.Fatalf("frame = %s", b)
	}
	if _, err := JSON.Encode("", nil); err == nil {
		t.Fatalf("expected error for empty type")
	}
}

func TestMsgpackEncodeRoundTripsEnvelopeType(t *testing.T) {
	b, err := Msgpack.Encode(MsgPlayerLeft, PlayerLeft{ID: "p1"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var out struct {
		T string     `msgpack:"t"`
		P PlayerLeft `msgpack:"p"`
	}
	if err := msgpack.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.T != MsgPlayerLeft || out.P.ID != "p1" {
		t.Fatalf("unexpected %+v", out)
	}
}

func TestCodecByName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		binary  bool
		wantErr bool
	}{
		{"", CodecJSON, false, false},
		{"json", CodecJSON, false, false},
		{"msgpack", CodecMsgpack, true, false},
		{"xml", "", false, true},
	}
	for _, tt := range tests {
		c, err := CodecByName(tt.name)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("CodecByName(%q): expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Fatalf("CodecByName(%q): %v", tt.name, err)
		}
		if c.Name() != tt.want || c.Binary() != tt.binary {
			t.Fatalf("CodecByName(%q) = %s/%v", tt.name, c.Name(), c.Binary())
		}
	}
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Cormuckle/dist_systems_group_M/arena_server/sim"
	"github.com/gin-gonic/gin"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func newTestRouter(t *testing.T, db pinger) (*gin.Engine, *sim.Loop) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tu := sim.DefaultTuning()
	tu.FoodCount = 7
	loop := sim.NewLoop(sim.NewWorld(tu, rand.New(rand.NewPCG(1, 2))), sim.Options{TickHz: 60})
	return setupRouter(loop, tu, 60, db), loop
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPingRoute(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	w := do(r, http.MethodGet, "/ping", "")
	if w.Code != http.StatusOK || w.Body.String() != "pong" {
		t.Fatalf("GET /ping = %d %q", w.Code, w.Body.String())
	}
}

func TestWorldRoute(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	w := do(r, http.MethodGet, "/world", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /world = %d", w.Code)
	}
	var body struct {
		WorldSize       float64 `json:"worldSize"`
		TickHz          int     `json:"tickHz"`
		FoodCount       int     `json:"foodCount"`
		LeaderboardSize int     `json:"leaderboardSize"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.WorldSize != 3000 || body.TickHz != 60 || body.FoodCount != 7 || body.LeaderboardSize != 5 {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestLeaderboardAndStatsBeforeFirstTick(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := do(r, http.MethodGet, "/leaderboard", "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("GET /leaderboard = %d %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodGet, "/stats", "")
	var stats sim.Stats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if w.Code != http.StatusOK || stats != (sim.Stats{}) {
		t.Fatalf("GET /stats = %d %+v", w.Code, stats)
	}
}

func TestDBConnRoute(t *testing.T) {
	tests := []struct {
		name string
		db   pinger
		want int
	}{
		{"disabled", nil, http.StatusServiceUnavailable},
		{"healthy", fakePinger{}, http.StatusOK},
		{"down", fakePinger{err: errors.New("no reachable servers")}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRouter(t, tt.db)
			if w := do(r, http.MethodGet, "/dbconn", ""); w.Code != tt.want {
				t.Fatalf("GET /dbconn = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestAnnounceRoute(t *testing.T) {
	r, loop := newTestRouter(t, nil)

	if w := do(r, http.MethodPost, "/announce", `{"msg":"x"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing message = %d, want 400", w.Code)
	}
	if w := do(r, http.MethodPost, "/announce", `{"message":"hello arena"}`); w.Code != http.StatusOK {
		t.Fatalf("announce = %d, want 200", w.Code)
	}

	loop.Stop()
	if w := do(r, http.MethodPost, "/announce", `{"message":"late"}`); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("announce after stop = %d, want 503", w.Code)
	}
}

func TestNotifyCentralServer(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/register_chunk" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if got["chunk_id"] == "taken" {
			w.WriteHeader(http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := notifyCentralServer(srv.URL, "arena-1"); err != nil {
		t.Fatalf("notifyCentralServer: %v", err)
	}
	if got["chunk_id"] != "arena-1" {
		t.Fatalf("registered %v", got)
	}
	if err := notifyCentralServer(srv.URL, "taken"); err == nil {
		t.Fatalf("expected error on conflict")
	}
}

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"snake-arena/internal/api"
	"snake-arena/internal/chat"
	"snake-arena/internal/config"
	"snake-arena/internal/session"
	"snake-arena/internal/world"
)

// ============================================================================
// Test Harness
// ============================================================================

// newTestAPI runs a manually ticked session behind the router
func newTestAPI(t *testing.T, cfg config.GameConfig) (*httptest.Server, *session.Session) {
	t.Helper()

	sess := session.New(config.SessionConfig{}, config.NewStore(cfg), world.New())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sess.Run(ctx)
		close(done)
	}()

	handler := chat.NewHandler(sess, chat.RateLimitConfig{MessagesPerSecond: 1000, Burst: 1000})
	limiter := api.NewIPRateLimiter(api.RateLimitConfig{
		RequestsPerSecond: 1000,
		Burst:             1000,
		CleanupInterval:   time.Hour,
	})

	ts := httptest.NewServer(api.NewRouter(api.RouterConfig{
		Session:        sess,
		Chat:           handler,
		RateLimiter:    limiter,
		DisableLogging: true, // Quiet logs in tests
	}))

	t.Cleanup(func() {
		ts.Close()
		limiter.Stop()
		handler.Close()
		cancel()
		<-done
	})
	return ts, sess
}

func soloConfig() config.GameConfig {
	cfg := config.DefaultGame()
	cfg.LocalPlayer = "me"
	return cfg
}

func duoConfig() config.GameConfig {
	cfg := soloConfig()
	cfg.Multiplayer = true
	cfg.PlayerNames = "me,friend"
	return cfg
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("Bad request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return result
}

func spawn(t *testing.T, ts *httptest.Server, name string, x, y int) {
	t.Helper()
	body, _ := json.Marshal(map[string]interface{}{"name": name, "x": x, "y": y})
	resp := do(t, "POST", ts.URL+"/api/entities", string(body))
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Spawn %s: expected 201, got %d", name, resp.StatusCode)
	}
}

// ============================================================================
// Router Tests
// ============================================================================

// TestNewRouterHasNoSideEffects verifies router construction needs no running session
func TestNewRouterHasNoSideEffects(t *testing.T) {
	limiter := api.NewIPRateLimiter(api.DefaultRateLimitConfig)
	defer limiter.Stop()

	router := api.NewRouter(api.RouterConfig{RateLimiter: limiter, DisableLogging: true})
	if router == nil {
		t.Fatal("Router should not be nil")
	}
}

func TestAPIHealth(t *testing.T) {
	ts, _ := newTestAPI(t, soloConfig())

	result := decode(t, do(t, "GET", ts.URL+"/health", ""))
	if result["status"] != "ok" {
		t.Errorf("Unexpected health body %v", result)
	}
}

// ============================================================================
// Game Lifecycle Tests
// ============================================================================

func TestAPIGetStateIdle(t *testing.T) {
	ts, _ := newTestAPI(t, soloConfig())

	resp := do(t, "GET", ts.URL+"/api/state", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
	result := decode(t, resp)
	if result["phase"] != "idle" {
		t.Errorf("Expected idle phase, got %v", result["phase"])
	}
	if _, ok := result["arena"]; ok {
		t.Error("Idle state should not carry an arena")
	}
}

func TestAPIStartRequiresLocalEntity(t *testing.T) {
	ts, _ := newTestAPI(t, soloConfig())

	resp := do(t, "POST", ts.URL+"/api/game/start", "")
	result := decode(t, resp)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("Expected 409, got %d", resp.StatusCode)
	}
	if result["error"] == "" {
		t.Error("Expected an error message")
	}
}

func TestAPIStartAndReset(t *testing.T) {
	ts, _ := newTestAPI(t, soloConfig())
	spawn(t, ts, "me", 100, 100)

	resp := do(t, "POST", ts.URL+"/api/game/start", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	result := decode(t, resp)
	if result["phase"] != "ready" {
		t.Errorf("Expected ready phase, got %v", result["phase"])
	}
	if id, _ := result["gameId"].(string); id == "" {
		t.Error("Expected a game id")
	}

	overlay := decode(t, do(t, "GET", ts.URL+"/api/overlay", ""))
	if overlay["title"] != "Snake: -" {
		t.Errorf("Unexpected overlay title %v", overlay["title"])
	}

	scene := decode(t, do(t, "GET", ts.URL+"/api/scene", ""))
	walls, _ := scene["walls"].([]interface{})
	// default game size 2 is a radius 5 arena
	if len(walls) != 4*5+4 {
		t.Errorf("Expected 24 walls, got %d", len(walls))
	}

	resp = do(t, "POST", ts.URL+"/api/game/reset", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Reset: expected 200, got %d", resp.StatusCode)
	}
	state := decode(t, do(t, "GET", ts.URL+"/api/state", ""))
	if state["phase"] != "idle" {
		t.Errorf("Expected idle after reset, got %v", state["phase"])
	}
}

func TestAPIChatReadiesLobby(t *testing.T) {
	ts, sess := newTestAPI(t, duoConfig())
	spawn(t, ts, "me", 100, 100)
	spawn(t, ts, "friend", 101, 100)

	result := decode(t, do(t, "POST", ts.URL+"/api/game/start", ""))
	if result["phase"] != "waiting_to_start" {
		t.Fatalf("Expected lobby, got %v", result["phase"])
	}

	for _, name := range []string{"me", "friend"} {
		body, _ := json.Marshal(map[string]string{"username": name, "message": "<col=ff0000>R"})
		chatResult := decode(t, do(t, "POST", ts.URL+"/api/chat", string(body)))
		if chatResult["accepted"] != true {
			t.Errorf("Expected %s's line accepted, got %v", name, chatResult)
		}
	}

	// private lines never reach the game
	private := decode(t, do(t, "POST", ts.URL+"/api/chat", `{"type":"private","username":"me","message":"r"}`))
	if private["accepted"] != false {
		t.Error("Private chat should not be accepted")
	}

	if err := sess.Tick(context.Background()); err != nil {
		t.Fatalf("Tick failed: %v", err)
	}
	state := decode(t, do(t, "GET", ts.URL+"/api/state", ""))
	if state["phase"] != "ready" {
		t.Errorf("Expected ready after both signalled, got %v", state["phase"])
	}
}

func TestAPIChatValidation(t *testing.T) {
	ts, _ := newTestAPI(t, soloConfig())

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{invalid}`},
		{"missing username", `{"message": "r"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, "POST", ts.URL+"/api/chat", tt.body)
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestAPILeaderboard(t *testing.T) {
	ts, _ := newTestAPI(t, duoConfig())
	spawn(t, ts, "me", 100, 100)
	spawn(t, ts, "friend", 101, 100)
	decode(t, do(t, "POST", ts.URL+"/api/game/start", ""))

	result := decode(t, do(t, "GET", ts.URL+"/api/leaderboard", ""))
	board, ok := result["leaderboard"].([]interface{})
	if !ok {
		t.Fatal("Response should contain leaderboard array")
	}
	if len(board) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(board))
	}
	first := board[0].(map[string]interface{})
	if first["rank"] != float64(1) {
		t.Errorf("Expected rank 1 first, got %v", first["rank"])
	}
}

func TestAPIScenePNG(t *testing.T) {
	ts, _ := newTestAPI(t, soloConfig())
	spawn(t, ts, "me", 100, 100)
	decode(t, do(t, "POST", ts.URL+"/api/game/start", ""))

	resp := do(t, "GET", ts.URL+"/api/scene.png", "")
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png, got %q", ct)
	}
	if _, err := png.Decode(resp.Body); err != nil {
		t.Errorf("Body is not a PNG: %v", err)
	}
}

// ============================================================================
// Host World Tests
// ============================================================================

func TestAPIEntityErrors(t *testing.T) {
	ts, _ := newTestAPI(t, soloConfig())
	spawn(t, ts, "me", 100, 100)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"empty name", "POST", "/api/entities", `{"name": "", "x": 1, "y": 1}`, http.StatusBadRequest},
		{"invalid json", "POST", "/api/entities", `{invalid}`, http.StatusBadRequest},
		{"duplicate", "POST", "/api/entities", `{"name": "me", "x": 1, "y": 1}`, http.StatusConflict},
		{"move unknown", "PUT", "/api/entities/ghost/position", `{"x": 1, "y": 1}`, http.StatusNotFound},
		{"step unknown", "POST", "/api/entities/ghost/step", `{"dx": 1}`, http.StatusNotFound},
		{"despawn unknown", "DELETE", "/api/entities/ghost", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, ts.URL+tt.path, tt.body)
			resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("Expected %d, got %d", tt.wantStatus, resp.StatusCode)
			}
		})
	}
}

func TestAPIEntityLifecycle(t *testing.T) {
	ts, _ := newTestAPI(t, soloConfig())
	spawn(t, ts, "me", 100, 100)

	resp := do(t, "PUT", ts.URL+"/api/entities/me/position", `{"x": 105, "y": 100}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Move: expected 200, got %d", resp.StatusCode)
	}

	resp = do(t, "POST", ts.URL+"/api/entities/me/step", `{"dx": 0, "dy": 1}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Step: expected 200, got %d", resp.StatusCode)
	}

	resp = do(t, "PUT", ts.URL+"/api/terrain", `{"x": 106, "y": 101, "flags": 256}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Terrain: expected 200, got %d", resp.StatusCode)
	}

	resp = do(t, "DELETE", ts.URL+"/api/entities/me", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Despawn: expected 204, got %d", resp.StatusCode)
	}

	list := decode(t, do(t, "GET", ts.URL+"/api/entities", ""))
	if entities, _ := list["entities"].([]interface{}); len(entities) != 0 {
		t.Errorf("Expected no entities, got %v", entities)
	}
}

// ============================================================================
// Configuration Tests
// ============================================================================

func TestAPIConfig(t *testing.T) {
	ts, sess := newTestAPI(t, soloConfig())

	result := decode(t, do(t, "GET", ts.URL+"/api/config", ""))
	if result["gameSize"] != "2" {
		t.Errorf("Expected gameSize 2, got %v", result["gameSize"])
	}

	resp := do(t, "PUT", ts.URL+"/api/config", `{"gameSize": "3", "theme": "TOA"}`)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
	result = decode(t, resp)
	if result["gameSize"] != "3" {
		t.Errorf("Expected gameSize 3, got %v", result["gameSize"])
	}
	if got := sess.Config().Game().Radius(); got != 7 {
		t.Errorf("Expected radius 7, got %d", got)
	}

	tests := []struct {
		name string
		body string
	}{
		{"invalid size", `{"gameSize": "0"}`},
		{"unknown key", `{"bogus": "1"}`},
		{"invalid json", `[1, 2]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, "PUT", ts.URL+"/api/config", tt.body)
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestAPIAddPlayer(t *testing.T) {
	ts, _ := newTestAPI(t, soloConfig())

	resp := do(t, "POST", ts.URL+"/api/players", `{"name": "bob"}`)
	result := decode(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if result["playerNames"] != "bob" {
		t.Errorf("Expected playerNames bob, got %v", result["playerNames"])
	}

	result = decode(t, do(t, "POST", ts.URL+"/api/players", `{"name": "alice"}`))
	if result["playerNames"] != "bob,alice" {
		t.Errorf("Expected appended names, got %v", result["playerNames"])
	}

	resp = do(t, "POST", ts.URL+"/api/players", `{"name": "a,b"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for comma name, got %d", resp.StatusCode)
	}
}

// TestAPIRateLimited verifies the per-IP limiter rejects bursts
func TestAPIRateLimited(t *testing.T) {
	limiter := api.NewIPRateLimiter(api.RateLimitConfig{
		RequestsPerSecond: 0.001,
		Burst:             2,
		CleanupInterval:   time.Hour,
	})
	defer limiter.Stop()

	ts := httptest.NewServer(api.NewRouter(api.RouterConfig{RateLimiter: limiter, DisableLogging: true}))
	defer ts.Close()

	var last int
	for i := 0; i < 3; i++ {
		resp := do(t, "GET", ts.URL+"/health", "")
		resp.Body.Close()
		last = resp.StatusCode
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("Expected 429 after burst, got %d", last)
	}
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"
	"time"

	"snake-arena/internal/chat"
	"snake-arena/internal/config"
	"snake-arena/internal/game"
	"snake-arena/internal/session"
	"snake-arena/internal/view"
	"snake-arena/internal/world"

	"github.com/go-chi/chi/v5"
)

// LeaderboardLimit caps the leaderboard response
const LeaderboardLimit = 10

// Handler methods for routerHandlers

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.session.Snapshot())
}

func (h *routerHandlers) handleGetOverlay(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, view.BuildOverlay(h.session.Snapshot()))
}

func (h *routerHandlers) scene() (view.Scene, view.Overlay) {
	snap := h.session.Snapshot()
	cfg := h.session.Config().Game()
	return view.BuildScene(snap, view.ThemeByName(cfg.Theme), cfg.ShowAllFood), view.BuildOverlay(snap)
}

func (h *routerHandlers) handleGetScene(w http.ResponseWriter, r *http.Request) {
	scene, _ := h.scene()
	writeJSON(w, scene)
}

func (h *routerHandlers) handleGetScenePNG(w http.ResponseWriter, r *http.Request) {
	scene, overlay := h.scene()
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.renderer.WritePNG(w, scene, overlay); err != nil {
		log.Printf("⚠️ Scene render failed: %v", err)
	}
}

// LeaderboardEntry is one row of /api/leaderboard
type LeaderboardEntry struct {
	Rank  int    `json:"rank"`
	Name  string `json:"name"`
	Score int    `json:"score"`
	Alive bool   `json:"alive"`
}

func (h *routerHandlers) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	snap := h.session.Snapshot()

	players := append([]game.ParticipantSnapshot(nil), snap.Participants...)
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Score > players[j].Score
	})

	limit := LeaderboardLimit
	if len(players) < limit {
		limit = len(players)
	}

	leaderboard := make([]LeaderboardEntry, 0, limit)
	for i := 0; i < limit; i++ {
		leaderboard = append(leaderboard, LeaderboardEntry{
			Rank:  i + 1,
			Name:  players[i].Name,
			Score: players[i].Score,
			Alive: players[i].Alive,
		})
	}

	writeJSON(w, map[string]interface{}{
		"phase":       snap.Phase,
		"leaderboard": leaderboard,
	})
}

func (h *routerHandlers) handleGameStart(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Start(r.Context()); err != nil {
		writeError(w, err.Error(), statusFor(err))
		return
	}
	snap := h.session.Snapshot()
	writeJSON(w, map[string]interface{}{
		"success": true,
		"phase":   snap.Phase,
		"gameId":  snap.GameID,
	})
}

func (h *routerHandlers) handleGameReset(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Reset(r.Context()); err != nil {
		writeError(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, map[string]interface{}{"success": true})
}

type chatRequest struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

func (h *routerHandlers) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Username == "" {
		writeError(w, "Username required", http.StatusBadRequest)
		return
	}

	accepted := h.chat.ProcessMessage(chat.ChatMessage{
		Type:      chat.ParseMessageType(req.Type),
		Username:  req.Username,
		Content:   req.Message,
		Timestamp: time.Now(),
	})
	writeJSON(w, map[string]interface{}{"accepted": accepted})
}

func (h *routerHandlers) handleListEntities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{"entities": h.session.Entities()})
}

type spawnRequest struct {
	Name string `json:"name"`
	game.WorldPoint
}

func (h *routerHandlers) handleSpawnEntity(w http.ResponseWriter, r *http.Request) {
	var req spawnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := h.session.Spawn(r.Context(), req.Name, req.WorldPoint); err != nil {
		writeError(w, err.Error(), statusFor(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":  true,
		"name":     req.Name,
		"location": req.WorldPoint,
	})
}

func (h *routerHandlers) handleMoveEntity(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var to game.WorldPoint
	if err := json.NewDecoder(r.Body).Decode(&to); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := h.session.Move(r.Context(), name, to); err != nil {
		writeError(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, map[string]interface{}{"success": true, "location": to})
}

type stepRequest struct {
	Dx int `json:"dx"`
	Dy int `json:"dy"`
}

func (h *routerHandlers) handleStepEntity(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req stepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := h.session.Step(r.Context(), name, req.Dx, req.Dy); err != nil {
		writeError(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, map[string]interface{}{"success": true})
}

func (h *routerHandlers) handleDespawnEntity(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.session.Despawn(r.Context(), name); err != nil {
		writeError(w, err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type terrainRequest struct {
	game.WorldPoint
	Flags int `json:"flags"`
}

func (h *routerHandlers) handleSetTerrain(w http.ResponseWriter, r *http.Request) {
	var req terrainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := h.session.SetTerrain(r.Context(), req.WorldPoint, req.Flags); err != nil {
		writeError(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, map[string]interface{}{"success": true})
}

func (h *routerHandlers) handleAddPlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := h.session.AddPlayer(req.Name); err != nil {
		writeError(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, map[string]interface{}{
		"success":     true,
		"playerNames": h.session.Config().Game().PlayerNames,
	})
}

func (h *routerHandlers) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.session.Config().All())
}

// handlePutConfig applies keys in sorted order and stops at the first invalid one
func (h *routerHandlers) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	keys := make([]string, 0, len(req))
	for k := range req {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	store := h.session.Config()
	for _, k := range keys {
		if err := store.Set(k, req[k]); err != nil {
			writeError(w, err.Error(), statusFor(err))
			return
		}
	}
	writeJSON(w, store.All())
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, config.ErrUnknownKey),
		errors.Is(err, config.ErrInvalidValue),
		errors.Is(err, game.ErrInvalidSize),
		errors.Is(err, world.ErrEmptyName):
		return http.StatusBadRequest
	case errors.Is(err, world.ErrUnknownEntity):
		return http.StatusNotFound
	case errors.Is(err, world.ErrDuplicate),
		errors.Is(err, game.ErrNoLocalPlayer),
		errors.Is(err, game.ErrNoParticipants):
		return http.StatusConflict
	case errors.Is(err, session.ErrStopped),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Helper functions

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

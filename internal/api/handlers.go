package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/manpreetbhatti/beholder/internal/store"
	"github.com/manpreetbhatti/beholder/internal/ws"
)

type API struct {
	hub   *ws.Hub
	store store.Store
}

func New(hub *ws.Hub, st store.Store) *API {
	return &API{
		hub:   hub,
		store: st,
	}
}

func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

func (a *API) HealthHandler(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"active_rooms":   a.hub.GetRoomCount(),
		"active_clients": a.hub.GetClientCount(),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	}

	if a.store != nil {
		if stored, err := a.store.Count(r.Context()); err == nil {
			stats["stored_views"] = stored
		}
	}

	jsonResponse(w, http.StatusOK, stats)
}

type RoomResponse struct {
	ID          string `json:"id"`
	ActiveUsers int    `json:"active_users"`
}

// RoomsHandler lists rooms with live connections. Stored views without
// any connected client are deliberately not enumerated here; they are
// reachable only by id.
func (a *API) RoomsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	active := a.hub.GetActiveRooms()
	response := make([]RoomResponse, 0, len(active))
	for id, users := range active {
		response = append(response, RoomResponse{ID: id, ActiveUsers: users})
	}

	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"rooms": response,
		"count": len(response),
	})
}

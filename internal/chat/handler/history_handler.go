package handler

import (
	"encoding/json"
	"net/http"

	"relaychat/internal/chat/service"
	"relaychat/internal/presence"
)

// HistoryHandler serves the pull side of deferred delivery: clients fetch
// the persisted pair history on reconnect instead of relying on pushes.
type HistoryHandler struct {
	delivery service.DeliveryService
	registry *presence.Registry
}

func NewHistoryHandler(delivery service.DeliveryService, registry *presence.Registry) *HistoryHandler {
	return &HistoryHandler{delivery: delivery, registry: registry}
}

// MyChats handles GET /my-chats?me=<identity>&to=<identity>
func (h *HistoryHandler) MyChats(w http.ResponseWriter, r *http.Request) {
	me := r.URL.Query().Get("me")
	to := r.URL.Query().Get("to")

	messages, err := h.delivery.History(r.Context(), me, to)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}

// IsOnline handles GET /is-online?identity=<identity>
func (h *HistoryHandler) IsOnline(w http.ResponseWriter, r *http.Request) {
	identity := r.URL.Query().Get("identity")
	if identity == "" {
		writeJSONError(w, http.StatusBadRequest, "identity is required")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"identity": identity,
		"online":   h.registry.IsOnline(identity),
	})
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

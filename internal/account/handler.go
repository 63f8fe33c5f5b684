package account

import (
	"encoding/json"
	"errors"
	"net/http"

	"relaychat/internal/common"
)

// Handler exposes the account REST surface: register, login, the user
// directory, and the authenticated profile endpoint.
type Handler struct {
	service AccountService
}

func NewHandler(service AccountService) *Handler {
	return &Handler{service: service}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}

	user, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Email already exists"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Login handles POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid email or password"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"jwtToken": token})
}

// AllChats handles GET /all-chats: the directory of users a client can
// start a conversation with.
func (h *Handler) AllChats(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to list users"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"allChats": users})
}

// UserInfo handles GET /user-info; identity comes from the auth middleware.
func (h *Handler) UserInfo(w http.ResponseWriter, r *http.Request) {
	email, ok := common.EmailFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "unauthorized"})
		return
	}

	user, err := h.service.GetProfile(r.Context(), email)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "something went wrong"})
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/minstant/messenger/internal/auth"
	"github.com/minstant/messenger/internal/domain"
	"github.com/minstant/messenger/internal/store"
	"github.com/minstant/messenger/internal/token"
)

// Health returns a simple health check handler.
func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Users handles POST (create account, open) and GET (prefix search, gated).
func Users(s store.Store, tokens *token.Service) http.HandlerFunc {
	search := RequireAuth(tokens, func(w http.ResponseWriter, r *http.Request) {
		users, err := s.SearchUsers(r.URL.Query().Get("q"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if users == nil {
			users = []string{}
		}
		writeJSON(w, http.StatusOK, users)
	})

	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var req createUserRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
				writeError(w, http.StatusBadRequest, "need a valid username and password")
				return
			}
			hash, err := auth.HashPassword(req.Password)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			if err := s.CreateUser(req.Username, hash); err != nil {
				// Most commonly a taken username.
				writeError(w, http.StatusBadRequest, "username unavailable")
				return
			}
			writeJSON(w, http.StatusCreated, map[string]string{"user_id": req.Username})
		case http.MethodGet:
			search(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}
}

type createRoomRequest struct {
	OtherUser string   `json:"other_user,omitempty"`
	Name      string   `json:"name,omitempty"`
	Members   []string `json:"members,omitempty"`
}

// Rooms handles GET (rooms of the authenticated user) and POST (create a
// direct room with other_user, or a named group room with members).
func Rooms(s store.Store, tokens *token.Service) http.HandlerFunc {
	return RequireAuth(tokens, func(w http.ResponseWriter, r *http.Request) {
		user := IdentityFrom(r)
		switch r.Method {
		case http.MethodGet:
			rooms, err := s.RoomsFor(user)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			writeJSON(w, http.StatusOK, rooms)
		case http.MethodPost:
			var req createRoomRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			switch {
			case req.OtherUser != "":
				room, err := s.CreateDirectRoom(user, req.OtherUser)
				if err != nil {
					writeError(w, http.StatusInternalServerError, "internal error")
					return
				}
				writeJSON(w, http.StatusOK, room)
			case req.Name != "":
				room, err := s.CreateGroupRoom(req.Name, user, req.Members)
				if err != nil {
					writeError(w, http.StatusInternalServerError, "internal error")
					return
				}
				writeJSON(w, http.StatusOK, room)
			default:
				writeError(w, http.StatusBadRequest, "need another user or a room name")
			}
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	})
}

// RoomExists reports whether a direct room between two users exists.
func RoomExists(s store.Store, tokens *token.Service) http.HandlerFunc {
	return RequireAuth(tokens, func(w http.ResponseWriter, r *http.Request) {
		user1 := r.URL.Query().Get("user1")
		user2 := r.URL.Query().Get("user2")
		if user1 == "" || user2 == "" {
			writeError(w, http.StatusBadRequest, "need two users to search for")
			return
		}
		id, ok, err := s.DirectRoomBetween(user1, user2)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !ok {
			writeError(w, http.StatusBadRequest, "room does not exist")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"room_id": id})
	})
}

// RoomSub routes /api/rooms/{id}/members and /api/rooms/{id}/messages.
func RoomSub(s store.Store, tokens *token.Service, maxHistory int) http.HandlerFunc {
	return RequireAuth(tokens, func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/rooms/")
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) != 2 || parts[0] == "" {
			writeError(w, http.StatusBadRequest, "room id required")
			return
		}
		roomID := parts[0]

		switch parts[1] {
		case "members":
			members, err := s.RoomMembers(roomID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			if members == nil {
				members = []string{}
			}
			writeJSON(w, http.StatusOK, members)
		case "messages":
			limit := maxHistory
			if q := r.URL.Query().Get("limit"); q != "" {
				n, err := strconv.Atoi(q)
				if err != nil || n <= 0 {
					writeError(w, http.StatusBadRequest, "limit must be a positive number")
					return
				}
				if n < limit {
					limit = n
				}
			}
			msgs, err := s.History(roomID, limit)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			if msgs == nil {
				msgs = []domain.MessageEvent{}
			}
			writeJSON(w, http.StatusOK, msgs)
		default:
			writeError(w, http.StatusNotFound, "not found")
		}
	})
}

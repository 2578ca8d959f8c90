// Package handler wires the HTTP surface: WebSocket admission, the token
// lifecycle endpoints, and the REST routes around the store.
package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/minstant/messenger/internal/client"
	"github.com/minstant/messenger/internal/hub"
	"github.com/minstant/messenger/internal/token"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS admits WebSocket connections. The handshake carries a room id and
// an access token; a missing or invalid token rejects the attempt before the
// upgrade, and a rejected attempt never touches the registry.
func ServeWS(reg *hub.Registry, b *hub.Broadcaster, tokens *token.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := strings.TrimSpace(r.URL.Query().Get("room"))
		if room == "" {
			writeError(w, http.StatusBadRequest, "room query param required")
			return
		}

		raw := r.URL.Query().Get("token")
		if raw == "" {
			raw = bearerToken(r)
		}
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		identity, err := tokens.VerifyAccess(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Err(err).Msg("ws upgrade error")
			return
		}

		c := client.New(reg, b, conn, identity, room)
		reg.Join(room, c)
		log.Info().Str("user", identity).Str("room", room).Msg("connection admitted")

		go c.ReadPump()
		go c.WritePump()
	}
}

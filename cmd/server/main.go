package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/minstant/messenger/internal/config"
	"github.com/minstant/messenger/internal/handler"
	"github.com/minstant/messenger/internal/hub"
	"github.com/minstant/messenger/internal/store"
	"github.com/minstant/messenger/internal/token"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	s, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("store")
	}
	defer s.Close()

	tokens := token.NewService([]byte(cfg.AccessSecret), []byte(cfg.RefreshSecret))
	revoked := token.NewRevocationRegistry()
	registry := hub.NewRegistry()
	broadcaster := hub.NewBroadcaster(s, registry)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handler.Health())
	mux.HandleFunc("/api/login", handler.Login(s, tokens, cfg.AccessTTL, cfg.RefreshTTL))
	mux.HandleFunc("/api/token/refresh", handler.Refresh(tokens, revoked, cfg.AccessTTL))
	mux.HandleFunc("/api/token/logout", handler.Logout(revoked))
	mux.HandleFunc("/api/users", handler.Users(s, tokens))
	mux.HandleFunc("/api/rooms", handler.Rooms(s, tokens))
	mux.HandleFunc("/api/rooms/exists", handler.RoomExists(s, tokens))
	mux.HandleFunc("/api/rooms/", handler.RoomSub(s, tokens, cfg.MaxHistory))
	mux.HandleFunc("/ws", handler.ServeWS(registry, broadcaster, tokens))

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Msg("minstant listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

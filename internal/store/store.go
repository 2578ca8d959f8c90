package store

import (
	"errors"

	"github.com/minstant/messenger/internal/domain"
)

// ErrNotFound is returned when a username or room does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface consumed by the core components.
type Store interface {
	// AppendMessage durably records a message and returns the stored event.
	AppendMessage(username, roomID, body string) (domain.MessageEvent, error)
	// ValidateCredentials returns the stored record for a username, or
	// ErrNotFound.
	ValidateCredentials(username string) (domain.UserRecord, error)
	// CreateUser records a new user with an already-hashed password.
	CreateUser(username, passwordHash string) error
	// SearchUsers returns usernames starting with the given prefix.
	SearchUsers(prefix string) ([]string, error)
	// History returns the last `limit` messages for a room, oldest first.
	History(roomID string, limit int) ([]domain.MessageEvent, error)
	// CreateDirectRoom creates a two-member room between the given users.
	CreateDirectRoom(user1, user2 string) (domain.Room, error)
	// CreateGroupRoom creates a named room administered by admin; admin is
	// always a member.
	CreateGroupRoom(name, admin string, members []string) (domain.Room, error)
	// DirectRoomBetween returns the id of an existing room shared by both
	// users, if any.
	DirectRoomBetween(user1, user2 string) (string, bool, error)
	// RoomsFor lists the rooms a user belongs to.
	RoomsFor(username string) ([]domain.Room, error)
	// RoomMembers lists the persisted members of a room.
	RoomMembers(roomID string) ([]string, error)
	// Close releases any resources held by the store.
	Close() error
}

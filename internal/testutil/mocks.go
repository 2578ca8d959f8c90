package testutil

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/minstant/messenger/internal/domain"
	"github.com/minstant/messenger/internal/store"
)

// MockConn implements hub.Conn for testing.
type MockConn struct {
	Name     string
	mu       sync.Mutex
	messages [][]byte
}

// NewMockConn creates a new MockConn for the given identity.
func NewMockConn(name string) *MockConn {
	return &MockConn{Name: name}
}

// Identity returns the mock connection's identity.
func (m *MockConn) Identity() string { return m.Name }

// Send records a message delivered to the mock connection.
func (m *MockConn) Send(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.messages = append(m.messages, cp)
}

// Messages returns a copy of all messages received by the mock connection.
func (m *MockConn) Messages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([][]byte, len(m.messages))
	copy(cp, m.messages)
	return cp
}

// MockStore implements store.Store in memory for testing.
type MockStore struct {
	mu       sync.Mutex
	users    map[string]string
	rooms    []domain.Room
	members  map[string][]string
	messages map[string][]domain.MessageEvent
	nextID   int
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		users:    make(map[string]string),
		members:  make(map[string][]string),
		messages: make(map[string][]domain.MessageEvent),
		nextID:   1,
	}
}

// AppendMessage records a message in memory.
func (s *MockStore) AppendMessage(username, roomID, body string) (domain.MessageEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	evt := domain.MessageEvent{
		ID:     strconv.Itoa(len(s.messages[roomID]) + 1),
		Sender: username,
		RoomID: roomID,
		Body:   body,
		SentAt: time.Now().UTC(),
	}
	s.messages[roomID] = append(s.messages[roomID], evt)
	return evt, nil
}

// ValidateCredentials returns the stored record for a username.
func (s *MockStore) ValidateCredentials(username string) (domain.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hash, ok := s.users[username]
	if !ok {
		return domain.UserRecord{}, store.ErrNotFound
	}
	return domain.UserRecord{Username: username, PasswordHash: hash}, nil
}

// CreateUser records a user in memory.
func (s *MockStore) CreateUser(username, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; ok {
		return errors.New("username taken")
	}
	s.users[username] = passwordHash
	return nil
}

// SearchUsers returns usernames starting with prefix.
func (s *MockStore) SearchUsers(prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for u := range s.users {
		if len(u) >= len(prefix) && u[:len(prefix)] == prefix {
			out = append(out, u)
		}
	}
	return out, nil
}

// History returns stored messages for a room, oldest first.
func (s *MockStore) History(roomID string, limit int) ([]domain.MessageEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.messages[roomID]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	cp := make([]domain.MessageEvent, len(msgs))
	copy(cp, msgs)
	return cp, nil
}

// CreateDirectRoom creates a two-member room.
func (s *MockStore) CreateDirectRoom(user1, user2 string) (domain.Room, error) {
	return s.createRoom(user1+" & "+user2, false, "", []string{user1, user2})
}

// CreateGroupRoom creates a named room with an admin.
func (s *MockStore) CreateGroupRoom(name, admin string, members []string) (domain.Room, error) {
	return s.createRoom(name, true, admin, append([]string{admin}, members...))
}

func (s *MockStore) createRoom(name string, isGroup bool, admin string, members []string) (domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room := domain.Room{
		ID:      strconv.Itoa(s.nextID),
		Name:    name,
		IsGroup: isGroup,
		Admin:   admin,
	}
	s.nextID++
	s.rooms = append(s.rooms, room)
	s.members[room.ID] = members
	return room, nil
}

// DirectRoomBetween returns the id of a room shared by both users.
func (s *MockStore) DirectRoomBetween(user1, user2 string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, members := range s.members {
		has1, has2 := false, false
		for _, m := range members {
			if m == user1 {
				has1 = true
			}
			if m == user2 {
				has2 = true
			}
		}
		if has1 && has2 {
			return id, true, nil
		}
	}
	return "", false, nil
}

// RoomsFor lists rooms a user belongs to.
func (s *MockStore) RoomsFor(username string) ([]domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Room
	for _, r := range s.rooms {
		for _, m := range s.members[r.ID] {
			if m == username {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}

// RoomMembers lists the persisted members of a room.
func (s *MockStore) RoomMembers(roomID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	members, ok := s.members[roomID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := make([]string, len(members))
	copy(cp, members)
	return cp, nil
}

// Close is a no-op for the mock store.
func (s *MockStore) Close() error { return nil }

// FailingStore wraps a MockStore but fails every AppendMessage, for
// persistence-failure paths.
type FailingStore struct {
	*MockStore
}

// NewFailingStore creates a FailingStore.
func NewFailingStore() *FailingStore {
	return &FailingStore{MockStore: NewMockStore()}
}

// AppendMessage always fails.
func (s *FailingStore) AppendMessage(username, roomID, body string) (domain.MessageEvent, error) {
	return domain.MessageEvent{}, errors.New("store unavailable")
}

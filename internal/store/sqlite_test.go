package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateUserAndValidate(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)

	req.NoError(s.CreateUser("alice", "hash-a"))

	rec, err := s.ValidateCredentials("alice")
	req.NoError(err)
	req.Equal("alice", rec.Username)
	req.Equal("hash-a", rec.PasswordHash)

	_, err = s.ValidateCredentials("nobody")
	req.ErrorIs(err, ErrNotFound)
}

func TestCreateUserDuplicate(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)

	req.NoError(s.CreateUser("alice", "hash-a"))
	req.Error(s.CreateUser("alice", "hash-b"))
}

func TestSearchUsers(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)

	for _, u := range []string{"alice", "albert", "bob"} {
		req.NoError(s.CreateUser(u, "h"))
	}

	users, err := s.SearchUsers("al")
	req.NoError(err)
	req.Equal([]string{"albert", "alice"}, users)

	users, err = s.SearchUsers("zz")
	req.NoError(err)
	req.Empty(users)
}

func TestAppendMessageAndHistory(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)

	for _, body := range []string{"msg1", "msg2", "msg3"} {
		evt, err := s.AppendMessage("alice", "42", body)
		req.NoError(err)
		req.NotEmpty(evt.ID)
		req.Equal("alice", evt.Sender)
		req.Equal("42", evt.RoomID)
		req.False(evt.SentAt.IsZero())
	}

	history, err := s.History("42", 50)
	req.NoError(err)
	req.Len(history, 3)
	// Oldest first.
	req.Equal("msg1", history[0].Body)
	req.Equal("msg3", history[2].Body)
}

func TestHistoryLimitAndIsolation(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)

	for i := 0; i < 10; i++ {
		_, err := s.AppendMessage("alice", "1", "hi")
		req.NoError(err)
	}
	_, err := s.AppendMessage("bob", "2", "other room")
	req.NoError(err)

	history, err := s.History("1", 5)
	req.NoError(err)
	req.Len(history, 5)

	history, err = s.History("2", 5)
	req.NoError(err)
	req.Len(history, 1)
	req.Equal("other room", history[0].Body)
}

func TestDirectRooms(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)

	_, ok, err := s.DirectRoomBetween("alice", "bob")
	req.NoError(err)
	req.False(ok)

	room, err := s.CreateDirectRoom("alice", "bob")
	req.NoError(err)
	req.NotEmpty(room.ID)
	req.False(room.IsGroup)

	id, ok, err := s.DirectRoomBetween("alice", "bob")
	req.NoError(err)
	req.True(ok)
	req.Equal(room.ID, id)

	members, err := s.RoomMembers(room.ID)
	req.NoError(err)
	req.Equal([]string{"alice", "bob"}, members)
}

func TestGroupRooms(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)

	room, err := s.CreateGroupRoom("team", "alice", []string{"bob", "carol"})
	req.NoError(err)
	req.True(room.IsGroup)
	req.Equal("alice", room.Admin)

	members, err := s.RoomMembers(room.ID)
	req.NoError(err)
	req.Equal([]string{"alice", "bob", "carol"}, members)
}

func TestRoomsFor(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)

	direct, err := s.CreateDirectRoom("alice", "bob")
	req.NoError(err)
	group, err := s.CreateGroupRoom("team", "alice", []string{"carol"})
	req.NoError(err)

	rooms, err := s.RoomsFor("alice")
	req.NoError(err)
	req.Len(rooms, 2)
	req.Equal(direct.ID, rooms[0].ID)
	req.Equal(group.ID, rooms[1].ID)

	rooms, err = s.RoomsFor("bob")
	req.NoError(err)
	req.Len(rooms, 1)
}

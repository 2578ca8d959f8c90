package store

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/minstant/messenger/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens or creates a SQLite database at the given path.
// Use ":memory:" for an in-memory database.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			username TEXT PRIMARY KEY,
			password_hash TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);
		CREATE TABLE IF NOT EXISTS rooms (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			is_group INTEGER NOT NULL DEFAULT 0,
			admin TEXT
		);
		CREATE TABLE IF NOT EXISTS room_members (
			room_id INTEGER NOT NULL,
			username TEXT NOT NULL,
			PRIMARY KEY (room_id, username)
		);
		CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			room_id TEXT NOT NULL,
			username TEXT NOT NULL,
			body TEXT NOT NULL,
			sent_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_messages_room_sent ON messages(room_id, sent_at);
	`)
	return err
}

// AppendMessage records a message and returns the stored event.
func (s *SQLiteStore) AppendMessage(username, roomID, body string) (domain.MessageEvent, error) {
	evt := domain.MessageEvent{
		ID:     uuid.New().String(),
		Sender: username,
		RoomID: roomID,
		Body:   body,
		SentAt: time.Now().UTC(),
	}
	_, err := s.db.Exec(
		"INSERT INTO messages (id, room_id, username, body, sent_at) VALUES (?, ?, ?, ?, ?)",
		evt.ID, evt.RoomID, evt.Sender, evt.Body, evt.SentAt,
	)
	if err != nil {
		return domain.MessageEvent{}, err
	}
	return evt, nil
}

// ValidateCredentials returns the stored record for a username.
func (s *SQLiteStore) ValidateCredentials(username string) (domain.UserRecord, error) {
	var rec domain.UserRecord
	err := s.db.QueryRow(
		"SELECT username, password_hash FROM users WHERE username = ?", username,
	).Scan(&rec.Username, &rec.PasswordHash)
	if err == sql.ErrNoRows {
		return domain.UserRecord{}, ErrNotFound
	}
	if err != nil {
		return domain.UserRecord{}, err
	}
	return rec, nil
}

// CreateUser records a new user. The username acts as the unique identifier.
func (s *SQLiteStore) CreateUser(username, passwordHash string) error {
	_, err := s.db.Exec(
		"INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)",
		username, passwordHash, time.Now().UTC(),
	)
	return err
}

// SearchUsers returns usernames beginning with the given prefix.
func (s *SQLiteStore) SearchUsers(prefix string) ([]string, error) {
	rows, err := s.db.Query(
		"SELECT username FROM users WHERE username LIKE ? ORDER BY username", prefix+"%",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// History returns the last `limit` messages for a room, oldest first.
func (s *SQLiteStore) History(roomID string, limit int) ([]domain.MessageEvent, error) {
	rows, err := s.db.Query(`
		SELECT id, room_id, username, body, sent_at FROM messages
		WHERE room_id = ?
		ORDER BY sent_at DESC, rowid DESC
		LIMIT ?
	`, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []domain.MessageEvent
	for rows.Next() {
		var m domain.MessageEvent
		if err := rows.Scan(&m.ID, &m.RoomID, &m.Sender, &m.Body, &m.SentAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to oldest-first order.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// CreateDirectRoom creates a two-member room between the given users.
func (s *SQLiteStore) CreateDirectRoom(user1, user2 string) (domain.Room, error) {
	return s.createRoom(user1+" & "+user2, false, "", []string{user1, user2})
}

// CreateGroupRoom creates a named room administered by admin.
func (s *SQLiteStore) CreateGroupRoom(name, admin string, members []string) (domain.Room, error) {
	all := append([]string{admin}, members...)
	return s.createRoom(name, true, admin, all)
}

func (s *SQLiteStore) createRoom(name string, isGroup bool, admin string, members []string) (domain.Room, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return domain.Room{}, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		"INSERT INTO rooms (name, is_group, admin) VALUES (?, ?, ?)",
		name, isGroup, admin,
	)
	if err != nil {
		return domain.Room{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Room{}, err
	}

	for _, m := range members {
		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO room_members (room_id, username) VALUES (?, ?)", id, m,
		); err != nil {
			return domain.Room{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Room{}, err
	}
	return domain.Room{
		ID:      strconv.FormatInt(id, 10),
		Name:    name,
		IsGroup: isGroup,
		Admin:   admin,
	}, nil
}

// DirectRoomBetween returns the id of an existing room shared by both users.
func (s *SQLiteStore) DirectRoomBetween(user1, user2 string) (string, bool, error) {
	var id int64
	err := s.db.QueryRow(`
		SELECT room_id FROM room_members WHERE username = ?
		INTERSECT
		SELECT room_id FROM room_members WHERE username = ?
	`, user1, user2).Scan(&id)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return strconv.FormatInt(id, 10), true, nil
}

// RoomsFor lists the rooms a user belongs to.
func (s *SQLiteStore) RoomsFor(username string) ([]domain.Room, error) {
	rows, err := s.db.Query(`
		SELECT r.id, r.name, r.is_group, COALESCE(r.admin, '')
		FROM rooms r
		JOIN room_members m ON m.room_id = r.id
		WHERE m.username = ?
		ORDER BY r.id
	`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		var r domain.Room
		var id int64
		if err := rows.Scan(&id, &r.Name, &r.IsGroup, &r.Admin); err != nil {
			return nil, err
		}
		r.ID = strconv.FormatInt(id, 10)
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

// RoomMembers lists the persisted members of a room.
func (s *SQLiteStore) RoomMembers(roomID string) ([]string, error) {
	rows, err := s.db.Query(
		"SELECT username FROM room_members WHERE room_id = ? ORDER BY username", roomID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

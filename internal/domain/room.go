package domain

// Room is a chat room as recorded by the store. Direct rooms have exactly
// two members; group rooms are named and have one admin.
type Room struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsGroup bool   `json:"is_group"`
	Admin   string `json:"admin,omitempty"`
}

// UserRecord is a stored identity. The username is the sole subject
// identifier threaded through credentials and room membership.
type UserRecord struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

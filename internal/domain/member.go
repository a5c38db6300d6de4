package domain

import "time"

// Member represents a connection's participation meta.
// No transport or lifecycle logic here.
type Member struct {
	ID ConnID
	// Client is the browser cookie token; several connections may share it.
	Client      string
	ConnectedAt time.Time
}

// NewMember avoids raw literals in adapters and keeps construction obvious.
func NewMember(id ConnID, client string) *Member {
	return &Member{ID: id, Client: client, ConnectedAt: time.Now()}
}

package model

import "time"

// Personnel is a row of the identity registry. The registry binds an
// identifier code (static) to a Discord user; it never stores application
// state.
type Personnel struct {
	DiscordID   string
	Name        string
	Static      string
	Rank        string
	Position    string
	Department  string
	IsDismissed bool
	JoinedAt    time.Time
	UpdatedAt   time.Time
}

package entities

import "time"

// Badge is an achievement awarded once. Daily badges carry the local day they
// were earned on, so the same badge id can be held once per day.
type Badge struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Emoji string    `json:"emoji"`
	Date  time.Time `json:"date"`
	Day   string    `json:"day,omitempty"`
}

// Key identifies the badge within an awarded set.
func (b Badge) Key() string {
	if b.Day == "" {
		return b.ID
	}
	return b.ID + "@" + b.Day
}

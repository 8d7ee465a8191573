package model

import (
	"strings"
	"time"
)

// Session is one interview-prep engagement owned by a single user.
//
// UserID is set once at creation and never changes. Questions is populated
// on reads (it is not a column); every entry has SessionID == ID and
// UserID == Session.UserID.
type Session struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user"`
	Title         string     `json:"title,omitempty"`
	Role          string     `json:"role"`
	Experience    string     `json:"experience"`
	TopicsToFocus string     `json:"topicsToFocus"`
	Description   string     `json:"description"`
	Questions     []Question `json:"questions"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// SplitTopics turns "Node, SQL,,React " into ["Node" "SQL" "React"].
func SplitTopics(raw string) []string {
	parts := strings.Split(raw, ",")
	topics := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			topics = append(topics, p)
		}
	}
	return topics
}

package models

// Role tags who authored a message
type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

// Label returns the display name for the role
func (r Role) Label() string {
	if r == RoleAI {
		return "AI"
	}
	return "You"
}

// Message represents a single chat message
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// UserMessage builds a message authored by the user
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text}
}

// AIMessage builds a message authored by the model
func AIMessage(text string) Message {
	return Message{Role: RoleAI, Text: text}
}

// IsUser reports whether the message was written by the user
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

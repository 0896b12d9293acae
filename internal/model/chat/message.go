package chat

// Role distinguishes who authored a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn in a thread. An assistant draft's content grows
// while its stream is active and is immutable afterwards.
type Message struct {
	ID        MessageID `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt int64     `json:"createdAt"`
}

// NewMessage builds a message with a fresh local id stamped at now.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        NewLocalMessageID(),
		Role:      role,
		Content:   content,
		CreatedAt: nowMillis(),
	}
}

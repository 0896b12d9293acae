package chat

import (
	"strings"
	"time"
)

// DefaultTitle is the placeholder title a thread carries until it is renamed
// or auto-titled from its first user message.
const DefaultTitle = "New chat"

const titleRuneLimit = 50

// Thread is one conversation: an ordered, append-only message log plus
// display metadata. Timestamps are epoch milliseconds, matching the persisted
// snapshot schema.
type Thread struct {
	ID        ThreadID  `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt int64     `json:"createdAt"`
	UpdatedAt int64     `json:"updatedAt"`
}

// NewThread constructs an empty local thread. An empty title falls back to
// DefaultTitle.
func NewThread(title string) Thread {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}
	now := nowMillis()
	return Thread{
		ID:        NewLocalThreadID(),
		Title:     title,
		Messages:  make([]Message, 0, 8),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AppendMessage returns a copy of the thread with the message appended and
// UpdatedAt refreshed. The input thread is not mutated.
func AppendMessage(t Thread, m Message) Thread {
	messages := make([]Message, 0, len(t.Messages)+1)
	messages = append(messages, t.Messages...)
	messages = append(messages, m)
	t.Messages = messages
	t.UpdatedAt = nowMillis()
	return t
}

// RenameThread returns a copy of the thread with the title replaced and
// UpdatedAt refreshed. Message history is untouched.
func RenameThread(t Thread, title string) Thread {
	t.Messages = copyMessages(t.Messages)
	t.Title = title
	t.UpdatedAt = nowMillis()
	return t
}

// WithMessageContent returns a copy of the thread where the message with the
// given id carries the new content, refreshing UpdatedAt. The second return
// reports whether the message was found; on a miss the thread is returned
// unchanged.
func WithMessageContent(t Thread, id MessageID, content string) (Thread, bool) {
	idx := indexOfMessage(t, id)
	if idx < 0 {
		return t, false
	}
	messages := copyMessages(t.Messages)
	messages[idx].Content = content
	t.Messages = messages
	t.UpdatedAt = nowMillis()
	return t, true
}

// AppendMessageContent returns a copy of the thread where delta is appended
// to the identified message's content. Streaming token delivery goes through
// here, so it runs many times per second during an active response.
func AppendMessageContent(t Thread, id MessageID, delta string) (Thread, bool) {
	idx := indexOfMessage(t, id)
	if idx < 0 {
		return t, false
	}
	messages := copyMessages(t.Messages)
	messages[idx].Content += delta
	t.Messages = messages
	t.UpdatedAt = nowMillis()
	return t, true
}

// MessageByID locates a message within the thread.
func MessageByID(t Thread, id MessageID) (Message, bool) {
	idx := indexOfMessage(t, id)
	if idx < 0 {
		return Message{}, false
	}
	return t.Messages[idx], true
}

func indexOfMessage(t Thread, id MessageID) int {
	for i := range t.Messages {
		if t.Messages[i].ID == id {
			return i
		}
	}
	return -1
}

// LastUserMessage returns the most recent user-authored message, scanning
// from the tail. Used for retry-after-error flows.
func LastUserMessage(t Thread) (Message, bool) {
	for i := len(t.Messages) - 1; i >= 0; i-- {
		if t.Messages[i].Role == RoleUser {
			return t.Messages[i], true
		}
	}
	return Message{}, false
}

// LastAssistantMessage returns the most recent assistant reply that has
// content. Empty drafts left behind by failed or interrupted sends are
// skipped.
func LastAssistantMessage(t Thread) (Message, bool) {
	for i := len(t.Messages) - 1; i >= 0; i-- {
		if t.Messages[i].Role == RoleAssistant && strings.TrimSpace(t.Messages[i].Content) != "" {
			return t.Messages[i], true
		}
	}
	return Message{}, false
}

// DeriveTitle produces a thread title from the first line of user input,
// truncated to 50 characters.
func DeriveTitle(text string) string {
	line := strings.TrimSpace(text)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	if line == "" {
		return DefaultTitle
	}
	if runes := []rune(line); len(runes) > titleRuneLimit {
		line = string(runes[:titleRuneLimit])
	}
	return line
}

func copyMessages(messages []Message) []Message {
	copied := make([]Message, len(messages))
	copy(copied, messages)
	return copied
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

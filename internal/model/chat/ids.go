package chat

import (
	"strings"

	"github.com/google/uuid"
)

// Thread and message identifiers are tagged strings. Cloud-backed ids carry
// the server id behind a fixed prefix so the sync layer can route writes; the
// prefix is part of the persisted schema and must stay stable across releases.
const (
	cloudThreadPrefix = "cloud_"
	localThreadPrefix = "t_"
	messagePrefix     = "m_"
)

// ThreadID identifies a thread. Construct values through NewLocalThreadID or
// CloudThreadID rather than raw string conversion.
type ThreadID string

// NewLocalThreadID mints an id for a thread that exists only on this device.
func NewLocalThreadID() ThreadID {
	return ThreadID(localThreadPrefix + uuid.NewString())
}

// CloudThreadID tags a server-side thread id for use as a local key.
func CloudThreadID(serverID string) ThreadID {
	return ThreadID(cloudThreadPrefix + serverID)
}

// ParseThreadID converts an id supplied by the user, e.g. copied from a
// thread listing.
func ParseThreadID(raw string) ThreadID {
	return ThreadID(strings.TrimSpace(raw))
}

// IsCloud reports whether the thread is mirrored to the backend.
func (id ThreadID) IsCloud() bool {
	return strings.HasPrefix(string(id), cloudThreadPrefix)
}

// ServerID returns the backend thread id and whether the id is cloud-backed.
func (id ThreadID) ServerID() (string, bool) {
	if !id.IsCloud() {
		return "", false
	}
	return strings.TrimPrefix(string(id), cloudThreadPrefix), true
}

// MessageID identifies a message within a thread. Server-assigned message ids
// and locally minted ones share the same prefix; messages are never routed by
// id, so no cloud discriminant is needed.
type MessageID string

// NewLocalMessageID mints an id for a locally created message.
func NewLocalMessageID() MessageID {
	return MessageID(messagePrefix + uuid.NewString())
}

// CloudMessageID tags a server-side message id for local use.
func CloudMessageID(serverID string) MessageID {
	return MessageID(messagePrefix + serverID)
}

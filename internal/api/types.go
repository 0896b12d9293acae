package api

import (
	"encoding/json"
	"time"
)

// ID is a server-assigned identifier. The backend serializes ids as JSON
// numbers; strings are accepted too so an id scheme change does not break
// decoding.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// Timestamp decodes the backend's assorted time encodings into epoch
// milliseconds. Zero means the field was absent; callers fall back to their
// own clock.
type Timestamp int64

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*ts = 0
		return nil
	}
	if data[0] != '"' {
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		// Heuristic: values this large are already milliseconds.
		if n >= 1e12 {
			*ts = Timestamp(n)
		} else {
			*ts = Timestamp(n * 1000)
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, time.RFC1123, time.RFC1123Z} {
		if t, err := time.Parse(layout, s); err == nil {
			*ts = Timestamp(t.UnixMilli())
			return nil
		}
	}
	// Unrecognized layout reads as absent rather than failing the whole
	// thread fetch.
	*ts = 0
	return nil
}

// Millis returns the timestamp as epoch milliseconds, zero when absent.
func (ts Timestamp) Millis() int64 { return int64(ts) }

// Session describes the authenticated user session.
type Session struct {
	UserID ID     `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// ThreadSummary is one entry of the thread listing.
type ThreadSummary struct {
	ID        ID        `json:"id"`
	Title     string    `json:"title"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// ThreadDetail is a thread with its full message history.
type ThreadDetail struct {
	ID        ID              `json:"id"`
	Title     string          `json:"title"`
	CreatedAt Timestamp       `json:"created_at"`
	UpdatedAt Timestamp       `json:"updated_at"`
	Messages  []MessageRecord `json:"messages"`
}

// MessageRecord is one stored message inside a thread detail.
type MessageRecord struct {
	ID        ID        `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt Timestamp `json:"created_at"`
}

type threadListEnvelope struct {
	Items []ThreadSummary `json:"items"`
}

// UploadResult is the backend's description of an ingested document.
type UploadResult struct {
	Filename string `json:"filename"`
	Mimetype string `json:"mimetype"`
	Size     int64  `json:"size"`
	Kind     string `json:"kind"`
	Summary  string `json:"summary"`
}

// QuizQuestion is a single generated multiple-choice question.
type QuizQuestion struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
}

// Quiz is the generated question set for a summary.
type Quiz struct {
	Questions []QuizQuestion `json:"questions"`
}

// QuizSizes enumerates the accepted quiz size names.
var QuizSizes = []string{"small", "medium", "large", "comprehensive"}

package chat

import "sort"

// State is the root aggregate for the chat manager: every thread and message
// is owned here, and all mutation flows through whole-value replacement so
// readers can hold snapshots without locks.
type State struct {
	CurrentThreadID ThreadID            `json:"currentThreadId,omitempty"`
	Threads         map[ThreadID]Thread `json:"threads"`
	IsStreaming     bool                `json:"isStreaming"`
	Error           string              `json:"error,omitempty"`
}

// NewState returns an empty state with an initialized thread map.
func NewState() State {
	return State{Threads: make(map[ThreadID]Thread)}
}

// Snapshot is the durable subset of State written to the local state file.
type Snapshot struct {
	CurrentThreadID ThreadID            `json:"currentThreadId,omitempty"`
	Threads         map[ThreadID]Thread `json:"threads"`
}

// EmptySnapshot returns a snapshot with no threads and no selection.
func EmptySnapshot() Snapshot {
	return Snapshot{Threads: make(map[ThreadID]Thread)}
}

// Snapshot copies the persistable subset of the state. The thread map is
// copied so the caller may hold it across later mutations; message slices are
// never mutated in place by the thread helpers, so sharing them is safe.
func (s State) Snapshot() Snapshot {
	threads := make(map[ThreadID]Thread, len(s.Threads))
	for id, t := range s.Threads {
		threads[id] = t
	}
	return Snapshot{CurrentThreadID: s.CurrentThreadID, Threads: threads}
}

// Current returns the selected thread, if any.
func (s State) Current() (Thread, bool) {
	if s.CurrentThreadID == "" {
		return Thread{}, false
	}
	t, ok := s.Threads[s.CurrentThreadID]
	return t, ok
}

// SortThreads orders threads most recently updated first. Ties are broken by
// id so the order is deterministic.
func SortThreads(threads map[ThreadID]Thread) []Thread {
	sorted := make([]Thread, 0, len(threads))
	for _, t := range threads {
		sorted = append(sorted, t)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].UpdatedAt != sorted[j].UpdatedAt {
			return sorted[i].UpdatedAt > sorted[j].UpdatedAt
		}
		return sorted[i].ID > sorted[j].ID
	})
	return sorted
}

// MostRecentThreadID returns the id of the most recently updated thread, or
// empty if the map has no entries.
func MostRecentThreadID(threads map[ThreadID]Thread) ThreadID {
	sorted := SortThreads(threads)
	if len(sorted) == 0 {
		return ""
	}
	return sorted[0].ID
}

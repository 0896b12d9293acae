package chat_test

import (
	"testing"

	chat "github.com/learnnova/learnnova-cli/internal/model/chat"
)

func threadAt(id chat.ThreadID, updated int64) chat.Thread {
	return chat.Thread{ID: id, Title: string(id), CreatedAt: updated, UpdatedAt: updated}
}

func TestSortThreadsMostRecentFirst(t *testing.T) {
	threads := map[chat.ThreadID]chat.Thread{
		"t_a": threadAt("t_a", 100),
		"t_b": threadAt("t_b", 300),
		"t_c": threadAt("t_c", 200),
	}

	sorted := chat.SortThreads(threads)

	want := []chat.ThreadID{"t_b", "t_c", "t_a"}
	for i, id := range want {
		if sorted[i].ID != id {
			t.Fatalf("position %d: got %s want %s", i, sorted[i].ID, id)
		}
	}
}

func TestSortThreadsTieIsDeterministic(t *testing.T) {
	threads := map[chat.ThreadID]chat.Thread{
		"t_a": threadAt("t_a", 100),
		"t_b": threadAt("t_b", 100),
	}

	for i := 0; i < 10; i++ {
		sorted := chat.SortThreads(threads)
		if sorted[0].ID != "t_b" {
			t.Fatalf("tie break not deterministic: got %s first", sorted[0].ID)
		}
	}
}

func TestMostRecentThreadIDEmptyMap(t *testing.T) {
	if id := chat.MostRecentThreadID(map[chat.ThreadID]chat.Thread{}); id != "" {
		t.Fatalf("expected empty id, got %s", id)
	}
}

func TestSnapshotIsIndependentOfLaterMutation(t *testing.T) {
	state := chat.NewState()
	thread := chat.NewThread("stable")
	state.Threads[thread.ID] = thread
	state.CurrentThreadID = thread.ID

	snap := state.Snapshot()

	delete(state.Threads, thread.ID)
	state.CurrentThreadID = ""

	if len(snap.Threads) != 1 {
		t.Fatalf("snapshot lost threads: got %d want 1", len(snap.Threads))
	}
	if snap.CurrentThreadID != thread.ID {
		t.Fatalf("snapshot current id changed: got %s", snap.CurrentThreadID)
	}
}

func TestCurrentMissingSelection(t *testing.T) {
	state := chat.NewState()
	if _, ok := state.Current(); ok {
		t.Fatal("expected no current thread on empty state")
	}

	state.CurrentThreadID = "t_gone"
	if _, ok := state.Current(); ok {
		t.Fatal("expected miss for dangling current id")
	}
}

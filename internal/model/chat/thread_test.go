package chat_test

import (
	"strings"
	"testing"

	chat "github.com/learnnova/learnnova-cli/internal/model/chat"
)

func TestAppendMessageKeepsOrder(t *testing.T) {
	thread := chat.NewThread("biology")

	first := chat.NewMessage(chat.RoleUser, "what is mitosis?")
	second := chat.NewMessage(chat.RoleAssistant, "")

	thread = chat.AppendMessage(thread, first)
	thread = chat.AppendMessage(thread, second)

	if len(thread.Messages) != 2 {
		t.Fatalf("unexpected message count: got %d want 2", len(thread.Messages))
	}
	if thread.Messages[0].ID != first.ID || thread.Messages[1].ID != second.ID {
		t.Fatal("messages out of append order")
	}
}

func TestAppendMessageDoesNotMutateInput(t *testing.T) {
	original := chat.NewThread("untouched")
	original = chat.AppendMessage(original, chat.NewMessage(chat.RoleUser, "hello"))

	_ = chat.AppendMessage(original, chat.NewMessage(chat.RoleUser, "again"))

	if len(original.Messages) != 1 {
		t.Fatalf("input thread mutated: got %d messages want 1", len(original.Messages))
	}
}

func TestRenameThreadSameTitleKeepsMessages(t *testing.T) {
	thread := chat.NewThread("physics")
	thread = chat.AppendMessage(thread, chat.NewMessage(chat.RoleUser, "define inertia"))
	before := thread

	renamed := chat.RenameThread(thread, "physics")

	if renamed.Title != "physics" {
		t.Fatalf("unexpected title: got %q", renamed.Title)
	}
	if len(renamed.Messages) != len(before.Messages) {
		t.Fatalf("rename changed message count: got %d want %d", len(renamed.Messages), len(before.Messages))
	}
	for i := range before.Messages {
		if renamed.Messages[i] != before.Messages[i] {
			t.Fatalf("rename changed message %d", i)
		}
	}
	if renamed.UpdatedAt < before.UpdatedAt {
		t.Fatal("rename must refresh updatedAt")
	}
}

func TestWithMessageContentReplacesDraft(t *testing.T) {
	thread := chat.NewThread("chem")
	draft := chat.NewMessage(chat.RoleAssistant, "")
	thread = chat.AppendMessage(thread, draft)

	updated, ok := chat.WithMessageContent(thread, draft.ID, "a mole is 6.02e23")
	if !ok {
		t.Fatal("draft message not found")
	}
	if updated.Messages[0].Content != "a mole is 6.02e23" {
		t.Fatalf("unexpected content: %q", updated.Messages[0].Content)
	}
	if thread.Messages[0].Content != "" {
		t.Fatal("input thread mutated")
	}
}

func TestWithMessageContentMissingID(t *testing.T) {
	thread := chat.NewThread("chem")
	if _, ok := chat.WithMessageContent(thread, chat.NewLocalMessageID(), "x"); ok {
		t.Fatal("expected miss for unknown message id")
	}
}

func TestAppendMessageContentAccumulates(t *testing.T) {
	thread := chat.NewThread("bio")
	draft := chat.NewMessage(chat.RoleAssistant, "")
	thread = chat.AppendMessage(thread, draft)

	for _, delta := range []string{"Hel", "lo, ", "world"} {
		updated, ok := chat.AppendMessageContent(thread, draft.ID, delta)
		if !ok {
			t.Fatalf("draft lost while appending %q", delta)
		}
		thread = updated
	}

	got, ok := chat.MessageByID(thread, draft.ID)
	if !ok {
		t.Fatal("draft not found after appends")
	}
	if got.Content != "Hello, world" {
		t.Fatalf("unexpected accumulated content: %q", got.Content)
	}
}

func TestAppendMessageContentMissingID(t *testing.T) {
	thread := chat.NewThread("bio")
	if _, ok := chat.AppendMessageContent(thread, chat.NewLocalMessageID(), "x"); ok {
		t.Fatal("expected miss for unknown message id")
	}
}

func TestLastUserMessage(t *testing.T) {
	thread := chat.NewThread("history")
	thread = chat.AppendMessage(thread, chat.NewMessage(chat.RoleUser, "first"))
	thread = chat.AppendMessage(thread, chat.NewMessage(chat.RoleAssistant, "reply"))
	thread = chat.AppendMessage(thread, chat.NewMessage(chat.RoleUser, "second"))
	thread = chat.AppendMessage(thread, chat.NewMessage(chat.RoleAssistant, ""))

	got, ok := chat.LastUserMessage(thread)
	if !ok {
		t.Fatal("expected a user message")
	}
	if got.Content != "second" {
		t.Fatalf("unexpected last user message: %q", got.Content)
	}
}

func TestLastUserMessageEmptyThread(t *testing.T) {
	if _, ok := chat.LastUserMessage(chat.NewThread("empty")); ok {
		t.Fatal("expected no user message in empty thread")
	}
}

func TestLastAssistantMessageSkipsEmptyDraft(t *testing.T) {
	thread := chat.NewThread("history")
	thread = chat.AppendMessage(thread, chat.NewMessage(chat.RoleUser, "first"))
	thread = chat.AppendMessage(thread, chat.NewMessage(chat.RoleAssistant, "a summary"))
	thread = chat.AppendMessage(thread, chat.NewMessage(chat.RoleUser, "second"))
	thread = chat.AppendMessage(thread, chat.NewMessage(chat.RoleAssistant, ""))

	got, ok := chat.LastAssistantMessage(thread)
	if !ok {
		t.Fatal("expected an assistant message")
	}
	if got.Content != "a summary" {
		t.Fatalf("unexpected last assistant message: %q", got.Content)
	}
}

func TestLastAssistantMessageNone(t *testing.T) {
	thread := chat.NewThread("empty")
	thread = chat.AppendMessage(thread, chat.NewMessage(chat.RoleUser, "hello"))
	if _, ok := chat.LastAssistantMessage(thread); ok {
		t.Fatal("expected no assistant message")
	}
}

func TestDeriveTitleFirstLine(t *testing.T) {
	got := chat.DeriveTitle("What is mitosis?\nExplain simply")
	if got != "What is mitosis?" {
		t.Fatalf("unexpected title: %q", got)
	}
}

func TestDeriveTitleTruncates(t *testing.T) {
	long := strings.Repeat("a", 80)
	got := chat.DeriveTitle(long)
	if len([]rune(got)) != 50 {
		t.Fatalf("expected 50-rune title, got %d", len([]rune(got)))
	}
}

func TestDeriveTitleBlankFallsBack(t *testing.T) {
	if got := chat.DeriveTitle("   \n  "); got != chat.DefaultTitle {
		t.Fatalf("unexpected fallback title: %q", got)
	}
}

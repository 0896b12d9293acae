package chat_test

import (
	"testing"

	chat "github.com/learnnova/learnnova-cli/internal/model/chat"
)

func TestCloudThreadIDRoundTrip(t *testing.T) {
	id := chat.CloudThreadID("42")

	if !id.IsCloud() {
		t.Fatal("cloud id not recognized as cloud")
	}
	server, ok := id.ServerID()
	if !ok || server != "42" {
		t.Fatalf("unexpected server id: got %q ok=%v", server, ok)
	}
}

func TestLocalThreadIDIsNotCloud(t *testing.T) {
	id := chat.NewLocalThreadID()

	if id.IsCloud() {
		t.Fatalf("local id classified as cloud: %s", id)
	}
	if _, ok := id.ServerID(); ok {
		t.Fatal("local id must not expose a server id")
	}
}

func TestLocalIDsAreUnique(t *testing.T) {
	seen := make(map[chat.MessageID]bool)
	for i := 0; i < 1000; i++ {
		id := chat.NewLocalMessageID()
		if seen[id] {
			t.Fatalf("duplicate message id generated: %s", id)
		}
		seen[id] = true
	}
}

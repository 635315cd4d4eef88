package cache

import (
	"strings"
	"testing"
)

func TestHashIP_Deterministic(t *testing.T) {
	t.Parallel()

	ip := "192.168.1.100"

	hash1 := hashIP(ip)
	hash2 := hashIP(ip)

	if hash1 != hash2 {
		t.Error("Same IP should produce same hash")
	}
}

func TestHashIP_Length(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ip   string
	}{
		{"IPv4", "192.168.1.1"},
		{"IPv4 localhost", "127.0.0.1"},
		{"IPv6 localhost", "::1"},
		{"IPv6 full", "2001:0db8:85a3:0000:0000:8a2e:0370:7334"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hash := hashIP(tt.ip)
			// hashIP uses first 8 bytes of SHA256, encoded as 16 hex chars
			if len(hash) != 16 {
				t.Errorf("hashIP(%q) length = %d, want 16", tt.ip, len(hash))
			}
		})
	}
}

func TestHashIP_Different(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ip1  string
		ip2  string
	}{
		{"different IPv4", "192.168.1.1", "192.168.1.2"},
		{"different last octet", "10.0.0.1", "10.0.0.2"},
		{"IPv4 vs IPv6", "127.0.0.1", "::1"},
		{"public vs private", "8.8.8.8", "192.168.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hash1 := hashIP(tt.ip1)
			hash2 := hashIP(tt.ip2)

			if hash1 == hash2 {
				t.Errorf("Different IPs should produce different hashes: %q and %q both produced %s", tt.ip1, tt.ip2, hash1)
			}
		})
	}
}

func TestConversationKey(t *testing.T) {
	t.Parallel()

	key := conversationKey("owner-1", "session-1")
	if key != "convo:owner-1:session-1" {
		t.Errorf("conversationKey = %q, want convo:owner-1:session-1", key)
	}

	// Two owners never share a conversation key even for the same session ID.
	if conversationKey("owner-1", "default") == conversationKey("owner-2", "default") {
		t.Error("Different owners should produce different conversation keys")
	}
}

func TestAnswerKey_Scoping(t *testing.T) {
	t.Parallel()

	general := answerKey("owner-1", "what is this?", "")
	scoped := answerKey("owner-1", "what is this?", "doc-1")

	if general == scoped {
		t.Error("General and document-scoped questions should cache separately")
	}

	if !strings.HasPrefix(general, "answer:owner-1:general:") {
		t.Errorf("General key = %q, want answer:owner-1:general: prefix", general)
	}
	if !strings.HasPrefix(scoped, "answer:owner-1:doc-1:") {
		t.Errorf("Scoped key = %q, want answer:owner-1:doc-1: prefix", scoped)
	}
}

func TestAnswerKey_QuestionHashed(t *testing.T) {
	t.Parallel()

	question := "does this document mention my secret project?"
	key := answerKey("owner-1", question, "doc-1")

	// Raw question text must never appear in a Redis key.
	if strings.Contains(key, "secret") {
		t.Errorf("Key %q leaks question text", key)
	}

	// Same question hashes to the same key.
	if key != answerKey("owner-1", question, "doc-1") {
		t.Error("Same question should produce the same key")
	}

	// Different questions diverge.
	if key == answerKey("owner-1", "a different question", "doc-1") {
		t.Error("Different questions should produce different keys")
	}
}

package logger

import "testing"

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{"provider", "primary", "api_key", "sk-123", "Discord_Token", "abc", "dangling"})
	if len(out) != 7 {
		t.Fatalf("len=%d", len(out))
	}
	if out[1] != "primary" {
		t.Fatalf("provider=%v", out[1])
	}
	if out[3] != "[REDACTED]" {
		t.Fatalf("api_key not redacted: %v", out[3])
	}
	if out[5] != "[REDACTED]" {
		t.Fatalf("token not redacted: %v", out[5])
	}
	if out[6] != "dangling" {
		t.Fatalf("dangling key lost: %v", out[6])
	}
}

func TestNopLoggerWith(t *testing.T) {
	l := NewNop().With("service", "test")
	l.Info("hello", "k", "v")
	l.Sync()
}

package utils

import "testing"

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		logger, err := NewLogger("debug", format)
		if err != nil {
			t.Fatalf("format %s: unexpected error: %v", format, err)
		}
		_ = logger.Sync()
	}

	if _, err := NewLogger("loud", "json"); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

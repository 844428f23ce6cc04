package logger

import "testing"

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"dev", "prod", "production", "quiet", ""} {
		l, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q) failed: %v", mode, err)
		}
		l.With("run_id", "r1").Debug("debug line", "k", 1)
	}
}

func TestNopDiscards(t *testing.T) {
	l := Nop().With("component", "test")
	l.Info("dropped")
	l.Warn("dropped")
	l.Error("dropped")
	l.Sync()
}

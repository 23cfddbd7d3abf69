package session

import "testing"

func TestNewSessionsHaveUniqueTokens(t *testing.T) {
	m := NewManager()
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		s := m.New()
		if s.Token() == "" {
			t.Fatal("expected non-empty token")
		}
		if seen[s.Token()] {
			t.Fatalf("duplicate token %q", s.Token())
		}
		seen[s.Token()] = true
	}
}

func TestPrivilegedFlag(t *testing.T) {
	s := NewManager().New()
	if s.Privileged() {
		t.Error("new session must not be privileged")
	}
	s.SetPrivileged(true)
	if !s.Privileged() {
		t.Error("expected privileged after set")
	}
	s.SetPrivileged(false)
	if s.Privileged() {
		t.Error("expected unprivileged after clear")
	}
}

func TestFlashDrainsOnce(t *testing.T) {
	s := NewManager().New()
	s.Flash("one")
	s.Flash("two")

	got := s.PopFlashes()
	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Fatalf("unexpected flashes %v", got)
	}
	if again := s.PopFlashes(); len(again) != 0 {
		t.Errorf("expected drained flashes, got %v", again)
	}
}

func TestGetResolvesToken(t *testing.T) {
	m := NewManager()
	s := m.New()

	if got := m.Get(s.Token()); got != s {
		t.Error("expected Get to resolve the same session")
	}
	if got := m.Get("unknown"); got != nil {
		t.Error("expected nil for unknown token")
	}
}

func TestGetOrNew(t *testing.T) {
	m := NewManager()
	s := m.New()
	s.SetPrivileged(true)

	if got := m.GetOrNew(s.Token()); got != s || !got.Privileged() {
		t.Error("expected existing session back")
	}

	fresh := m.GetOrNew("")
	if fresh == s || fresh.Privileged() {
		t.Error("expected a fresh unprivileged session for empty token")
	}
	stale := m.GetOrNew("unknown-token")
	if stale == s {
		t.Error("expected a fresh session for unknown token")
	}
}

package model

import "testing"

func TestSessionKeyDerivation(t *testing.T) {
	s := Session{Host: "myhost", Port: 8888}
	if s.Key() != "myhost:8888" {
		t.Fatalf("unexpected key: %s", s.Key())
	}
	if SessionKey("myhost", 8888) != s.Key() {
		t.Fatal("SessionKey must match Session.Key")
	}
}

func TestStatusDerivation(t *testing.T) {
	alive := func(pid int) bool { return pid == 42 }

	pid := 42
	s := Session{Host: "h", Port: 1, PID: &pid}
	if s.Status(alive) != StatusConnected {
		t.Fatal("expected connected for a live pid")
	}

	stale := 43
	s.PID = &stale
	if s.Status(alive) != StatusDisconnected {
		t.Fatal("expected disconnected for a dead pid")
	}
	// A liveness query must not clear the stale pid.
	if s.PID == nil || *s.PID != 43 {
		t.Fatal("status probe must not mutate the tracked pid")
	}

	s.PID = nil
	if s.Status(alive) != StatusDisconnected {
		t.Fatal("expected disconnected with no pid")
	}
}

func TestEffectivePIDHidesDeadProcesses(t *testing.T) {
	alive := func(pid int) bool { return pid == 42 }

	pid := 42
	s := Session{PID: &pid}
	if p := s.EffectivePID(alive); p == nil || *p != 42 {
		t.Fatalf("expected live pid, got %v", p)
	}

	stale := 43
	s.PID = &stale
	if p := s.EffectivePID(alive); p != nil {
		t.Fatalf("dead pid must not be reported, got %d", *p)
	}
}

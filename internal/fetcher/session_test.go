package fetcher

import (
	"testing"
	"time"
)

func TestSessionAcquireIsIdempotent(t *testing.T) {
	s := NewSession(time.Second, 2)
	defer s.Release()

	first := s.Acquire()
	second := s.Acquire()
	if first != second {
		t.Error("repeated Acquire should return the same live client")
	}
}

func TestSessionReleaseIsIdempotent(t *testing.T) {
	s := NewSession(time.Second, 2)

	// Safe before any acquire.
	s.Release()

	s.Acquire()
	s.Release()
	// Safe to call again.
	s.Release()
}

func TestSessionRecreatesAfterRelease(t *testing.T) {
	s := NewSession(time.Second, 2)
	defer s.Release()

	first := s.Acquire()
	s.Release()
	second := s.Acquire()
	if first == second {
		t.Error("Acquire after Release should bring up a fresh client")
	}
}

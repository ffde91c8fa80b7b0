package errors

import (
	"testing"
)

func TestSentinelWrapping(t *testing.T) {
	err := Wrap(ErrSearchUnavailable, "efts.sec.gov returned 503")

	if !Is(err, ErrSearchUnavailable) {
		t.Error("wrapped sentinel no longer matches with Is")
	}
	if !IsSearchUnavailable(err) {
		t.Error("IsSearchUnavailable should match wrapped sentinel")
	}
	if IsInvalidQuery(err) {
		t.Error("IsInvalidQuery should not match a search-unavailable error")
	}
}

func TestNewInvalidQuery(t *testing.T) {
	err := NewInvalidQuery("no name tokens in %q", "   ")

	if !IsInvalidQuery(err) {
		t.Error("NewInvalidQuery result should match ErrInvalidQuery")
	}
	if err.Error() == "" {
		t.Error("expected non-empty message")
	}
}

func TestNewSearchUnavailable(t *testing.T) {
	cause := New("connection refused")
	err := NewSearchUnavailable(cause, "full-text search")

	if !IsSearchUnavailable(err) {
		t.Error("NewSearchUnavailable result should match ErrSearchUnavailable")
	}
}

func TestIsTimeout(t *testing.T) {
	if !IsTimeout(Wrap(ErrTimedOut, "scan deadline")) {
		t.Error("IsTimeout should match wrapped ErrTimedOut")
	}
	if !IsTimeout(Wrap(ErrRateLimited, "budget acquire")) {
		t.Error("IsTimeout should match wrapped ErrRateLimited")
	}
	if IsTimeout(nil) {
		t.Error("IsTimeout(nil) should be false")
	}
	if IsTimeout(New("boom")) {
		t.Error("IsTimeout should not match arbitrary errors")
	}
}

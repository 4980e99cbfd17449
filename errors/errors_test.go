package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestHasCode(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap("models.HTTPFetcher.Fetch", NetworkFailure, cause)

	if !HasCode(err, NetworkFailure) {
		t.Errorf("HasCode(%v, NetworkFailure) should be true", err)
	}
	if HasCode(err, NotFound) {
		t.Errorf("HasCode(%v, NotFound) should be false", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(%v, cause) should be true", err)
	}

	wrapped := fmt.Errorf("loading: %w", err)
	if !HasCode(wrapped, NetworkFailure) {
		t.Errorf("HasCode(%v, NetworkFailure) should see through wrapping", wrapped)
	}

	if HasCode(cause, NetworkFailure) {
		t.Error("HasCode() of a plain error should be false")
	}
	if HasCode(nil, NetworkFailure) {
		t.Error("HasCode(nil) should be false")
	}
}

func TestHasCodeNested(t *testing.T) {
	cause := errors.New("context canceled")
	inner := Wrap("models.Store.LoadAvatarByHash", Cancelled, cause)
	outer := Wrap("models.Store.Refresh", NetworkFailure, fmt.Errorf("loading: %w", inner))

	if !HasCode(outer, NetworkFailure) {
		t.Errorf("HasCode(%v, NetworkFailure) should be true", outer)
	}
	if !HasCode(outer, Cancelled) {
		t.Errorf("HasCode(%v, Cancelled) should find the inner code", outer)
	}
	if HasCode(outer, NotFound) {
		t.Errorf("HasCode(%v, NotFound) should be false", outer)
	}
}

func TestError(t *testing.T) {
	err := New("models.Store.SetURL", InvalidURL, "URL cannot be empty")
	if err.Error() != "models.Store.SetURL: URL cannot be empty" {
		t.Errorf("Error() = %q", err.Error())
	}

	err = Wrap("snapshot.FileStore.Load", SnapshotFailure, errors.New("EOF"))
	if err.Error() != "snapshot.FileStore.Load: snapshot failure: EOF" {
		t.Errorf("Error() = %q", err.Error())
	}

	if ErrCode(99).String() != "error code 99" {
		t.Errorf("String() = %q for an unknown code", ErrCode(99).String())
	}
}

package apperr

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownKinds(t *testing.T) {
	tests := []struct {
		kind      Kind
		status    int
		retryable bool
		detailsOK bool
	}{
		{kind: KindInvalidInput, status: http.StatusBadRequest, detailsOK: true},
		{kind: KindUnauthorized, status: http.StatusUnauthorized},
		{kind: KindForbidden, status: http.StatusForbidden},
		{kind: KindNotFound, status: http.StatusNotFound},
		{kind: KindConflict, status: http.StatusConflict},
		{kind: KindInvalidState, status: http.StatusUnprocessableEntity, detailsOK: true},
		{kind: KindOutOfStock, status: http.StatusConflict, detailsOK: true},
		{kind: KindRateLimit, status: http.StatusTooManyRequests},
		{kind: KindTransient, status: http.StatusServiceUnavailable, retryable: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.kind)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("kind %s expected status %d got %d", tt.kind, tt.status, meta.HTTPStatus)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("kind %s expected retryable %v got %v", tt.kind, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("kind %s expected details allowed %v got %v", tt.kind, tt.detailsOK, meta.DetailsAllowed)
		}
		if meta.PublicMessage == "" {
			t.Fatalf("kind %s has no public message", tt.kind)
		}
	}
}

func TestMetadataForUnknownKindIsTransient(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusServiceUnavailable || !meta.Retryable {
		t.Fatalf("expected transient metadata, got %+v", meta)
	}
}

func TestWrapKeepsCauseAndKind(t *testing.T) {
	cause := stdErrors.New("database is locked")
	err := Transient(cause, "create order")

	if !stdErrors.Is(err, cause) {
		t.Fatal("wrapped error should unwrap to its cause")
	}
	if err.Kind() != KindTransient {
		t.Fatalf("expected transient, got %s", err.Kind())
	}
	if err.Message() != "create order" {
		t.Fatalf("unexpected message %q", err.Message())
	}
}

func TestKindOfLooksThroughFmtWrapping(t *testing.T) {
	base := NotFound("album version not found")
	wrapped := fmt.Errorf("add item: %w", base)

	if KindOf(wrapped) != KindNotFound {
		t.Fatalf("expected NOT_FOUND, got %s", KindOf(wrapped))
	}
	if !Is(wrapped, KindNotFound) {
		t.Fatal("Is should match the wrapped kind")
	}
	if KindOf(stdErrors.New("plain")) != KindTransient {
		t.Fatal("untyped errors should be treated as transient")
	}
	if Is(nil, KindNotFound) {
		t.Fatal("nil error carries no kind")
	}
}

func TestWithDetails(t *testing.T) {
	err := New(KindOutOfStock, "not enough stock").WithDetails(map[string]any{"version_id": "v1"})
	details, ok := err.Details().(map[string]any)
	if !ok || details["version_id"] != "v1" {
		t.Fatalf("unexpected details %#v", err.Details())
	}
}

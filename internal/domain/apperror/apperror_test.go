package apperror

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"typed", New(NotFound, "Post not found"), NotFound},
		{"wrapped typed", fmt.Errorf("load: %w", New(Forbidden, "nope")), Forbidden},
		{"deadline", context.DeadlineExceeded, Timeout},
		{"wrapped deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), Timeout},
		{"canceled", context.Canceled, Unavailable},
		{"internal wrapping deadline", Wrap(Internal, "store", context.DeadlineExceeded), Timeout},
		{"plain", errors.New("boom"), Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMessageOf(t *testing.T) {
	err := fmt.Errorf("ctx: %w", New(InvalidContent, "Post content is required"))
	if got := MessageOf(err, "fallback"); got != "Post content is required" {
		t.Errorf("MessageOf() = %q", got)
	}
	if got := MessageOf(errors.New("x"), "fallback"); got != "fallback" {
		t.Errorf("MessageOf() = %q, want fallback", got)
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("driver exploded")
	err := Wrap(Internal, "store failure", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to find cause")
	}
	if err.Error() != "store failure: driver exploded" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestIsCredential(t *testing.T) {
	for _, k := range []Kind{MissingCredential, MalformedCredential, InvalidToken, ExpiredToken, UnknownSubject} {
		if !k.IsCredential() {
			t.Errorf("%v should be a credential kind", k)
		}
	}
	if NotFound.IsCredential() {
		t.Error("NotFound is not a credential kind")
	}
}

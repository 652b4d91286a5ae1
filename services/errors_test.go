package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestKindOf(t *testing.T) {
	cases := map[Kind]error{
		KindValidation:    ValidationError("bad input"),
		KindConflict:      ConflictError("duplicate"),
		KindNotFound:      NotFoundError("missing"),
		KindAuthorization: AuthorizationError("forbidden"),
		KindInternal:      InternalError("broken", errors.New("boom")),
	}
	for want, err := range cases {
		if got := KindOf(err); got != want {
			t.Fatalf("expected kind %s, got %s", want, got)
		}
	}

	if got := KindOf(errors.New("plain")); got != KindInternal {
		t.Fatalf("expected plain errors to map to internal, got %s", got)
	}

	wrapped := fmt.Errorf("while handling request: %w", ConflictError("duplicate"))
	if got := KindOf(wrapped); got != KindConflict {
		t.Fatalf("expected wrapped conflict to keep its kind, got %s", got)
	}
}

func TestErrorMessage(t *testing.T) {
	err := InternalError("failed to create child", errors.New("connection reset"))
	if err.Error() != "failed to create child: connection reset" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
	if ConflictError("duplicate").Error() != "duplicate" {
		t.Fatalf("unexpected message: %s", ConflictError("duplicate").Error())
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(&pq.Error{Code: "23505"}) {
		t.Fatalf("expected 23505 to be a unique violation")
	}
	if !IsUniqueViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})) {
		t.Fatalf("expected wrapped 23505 to be a unique violation")
	}
	if IsUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Fatalf("foreign key violations are not unique violations")
	}
	if IsUniqueViolation(errors.New("boom")) {
		t.Fatalf("plain errors are not unique violations")
	}
}

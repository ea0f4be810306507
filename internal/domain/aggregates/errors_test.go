package aggregates

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	cases := []struct {
		err  *Error
		want string
	}{
		{&Error{Code: CodeNotFound, Op: "Forum.Hierarchy.AttachTopic", Message: "Parent theme not found"}, "Forum.Hierarchy.AttachTopic: Parent theme not found (not_found)"},
		{&Error{Code: CodeConflict, Op: "op"}, "op (conflict)"},
		{&Error{Code: CodeValidation, Message: "Title is required"}, "Title is required (validation)"},
		{&Error{Code: CodeInternal}, "internal"},
	}
	for _, tc := range cases {
		if got := tc.err.Error(); got != tc.want {
			t.Fatalf("Error(): want=%q got=%q", tc.want, got)
		}
	}
}

func TestCodeOfThroughWrapping(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("create topic: %w", Wrap(CodeTimeout, "op", cause))
	if !IsCode(err, CodeTimeout) {
		t.Fatalf("expected timeout code, got=%q", CodeOf(err))
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause should stay reachable")
	}
	if CodeOf(cause) != "" {
		t.Fatalf("plain error should have no code")
	}
	if Wrap(CodeInternal, "op", nil) != nil {
		t.Fatalf("Wrap(nil) should be nil")
	}
}

func TestMessageOf(t *testing.T) {
	err := NewError(CodeValidation, "op", "  Title is required ", nil)
	if got := MessageOf(err); got != "Title is required" {
		t.Fatalf("MessageOf: got=%q", got)
	}
	if got := MessageOf(errors.New("x")); got != "" {
		t.Fatalf("MessageOf plain: got=%q", got)
	}
}

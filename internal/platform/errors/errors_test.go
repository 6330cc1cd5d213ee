package errors

import (
	stderrs "errors"
	"testing"
)

func TestExitStatusMapping(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeInvalidArgument, 2},
		{ErrorCodeUnavailable, 3},
		{ErrorCodeTooManyRequests, 3},
		{ErrorCodeUnauthorized, 3},
		{ErrorCodeNotFound, 3},
		{ErrorCodeDecode, 4},
		{ErrorCodePersistence, 5},
		{ErrorCodeUnknown, 1},
		{9999, 1}, // default branch
	}
	for _, c := range cases {
		if got := ExitStatus(c.code); got != c.want {
			t.Fatalf("ExitStatus(%v) = %d, want %d", c.code, got, c.want)
		}
	}
	if ExitCode(nil) != 0 {
		t.Fatalf("ExitCode(nil) should be 0")
	}
	if ExitCode(stderrs.New("plain")) != 1 {
		t.Fatalf("ExitCode(foreign) should be 1")
	}
}

func TestErrorCodeString(t *testing.T) {
	if ErrorCodeDecode.String() != "decode" || ErrorCodePersistence.String() != "persistence" {
		t.Fatalf("unexpected labels")
	}
	if ErrorCode(77).String() != "unknown" {
		t.Fatalf("default label should be unknown")
	}
}

func TestErrorTypeAndMethods(t *testing.T) {
	// nil *Error should render "<nil>"
	var e *Error
	if e.Error() != "<nil>" {
		t.Fatalf("nil *Error render = %q, want <nil>", e.Error())
	}

	e1 := Newf(ErrorCodeDecode, "bad shape")
	if CodeOf(e1) != ErrorCodeDecode {
		t.Fatalf("CodeOf(New) = %v", CodeOf(e1))
	}
	e2 := Newf(ErrorCodeInvalidArgument, "bad repo %q", "x")
	if got := e2.Error(); got != `bad repo "x"` {
		t.Fatalf("Newf().Error = %q", got)
	}

	src := stderrs.New("root")
	e3 := Wrap(src, ErrorCodePersistence, "write failed")
	if u := stderrs.Unwrap(e3); u == nil || u.Error() != "root" {
		t.Fatalf("Wrap did not keep orig")
	}
	e4 := Wrapf(src, ErrorCodeUnavailable, "gh %s", "api")
	if want := "gh api: root"; e4.Error() != want {
		t.Fatalf("Wrapf().Error = %q, want %q", e4.Error(), want)
	}
	if got, ok := As(e4); !ok || got.Code() != ErrorCodeUnavailable {
		t.Fatalf("As() failed for our error")
	}
	if _, ok := As(src); ok {
		t.Fatalf("As() true for foreign error")
	}

	// copy-on-write mutators
	e5 := Wrap(src, ErrorCodeInvalidArgument, "oops")
	e6 := WithField(e5, "repo")
	e7 := WithOp(e6, "parse")
	if fe, ok := As(e6); !ok || fe.Field() != "repo" {
		t.Fatalf("WithField failed")
	}
	if oe, ok := As(e7); !ok || oe.Op() != "parse" {
		t.Fatalf("WithOp failed")
	}
	if fe0, _ := As(e5); fe0.Field() != "" || fe0.Op() != "" {
		t.Fatalf("copy-on-write mutated original")
	}
	if WithOp(src, "x") != src {
		t.Fatalf("WithOp should pass foreign errors through")
	}

	if !IsCode(InvalidArgf("x"), ErrorCodeInvalidArgument) ||
		!IsCode(Unavailablef("x"), ErrorCodeUnavailable) ||
		!IsCode(Decodef("x"), ErrorCodeDecode) ||
		!IsCode(Persistencef("x"), ErrorCodePersistence) {
		t.Fatalf("sugar helpers code mismatch")
	}
}

func TestCodeOfJoined(t *testing.T) {
	joined := stderrs.Join(stderrs.New("plain"), Unavailablef("weekly fetch"))
	if CodeOf(joined) != ErrorCodeUnavailable {
		t.Fatalf("CodeOf(joined) = %v, want unavailable", CodeOf(joined))
	}
	if ExitCode(joined) != 3 {
		t.Fatalf("ExitCode(joined) = %d", ExitCode(joined))
	}
}

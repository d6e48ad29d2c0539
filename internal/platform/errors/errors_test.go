package errors

import (
	stderrs "errors"
	"fmt"
	"testing"
)

func TestErrorTypeAndMethods(t *testing.T) {
	// nil *Error should render "<nil>"
	var e *Error
	if e.Error() != "<nil>" {
		t.Fatalf("nil *Error render = %q, want <nil>", e.Error())
	}

	// New / Newf
	e1 := New(ErrorCodeValidation, "bad stuff")
	if CodeOf(e1) != ErrorCodeValidation {
		t.Fatalf("CodeOf(New) = %v", CodeOf(e1))
	}
	e2 := Newf(ErrorCodeInvalidArgument, "bad size %d", 12)
	if got := e2.Error(); got != "bad size 12" {
		t.Fatalf("Newf().Error = %q", got)
	}

	// Wrap / Wrapf / Unwrap
	src := stderrs.New("root")
	e3 := Wrap(src, ErrorCodeDB, "db failed")
	if u := stderrs.Unwrap(e3); u == nil || u.Error() != "root" {
		t.Fatalf("Wrap did not keep orig")
	}
	if CodeOf(e3) != ErrorCodeDB {
		t.Fatalf("CodeOf(Wrap) = %v", CodeOf(e3))
	}
	e4 := Wrapf(src, ErrorCodeConflict, "nope %s", "here")
	if want := "nope here: root"; e4.Error() != want {
		t.Fatalf("Wrapf().Error = %q, want %q", e4.Error(), want)
	}

	// As
	if got, ok := As(e4); !ok || got.Code() != ErrorCodeConflict {
		t.Fatalf("As() failed for our error")
	}
	if _, ok := As(src); ok {
		t.Fatalf("As() true for foreign error")
	}

	// WithField (copy-on-write) and WithOp
	e5 := Wrap(src, ErrorCodeInvalidArgument, "oops")
	e6 := WithField(e5, "ngram_size")
	e7 := WithOp(e6, "extract")
	if fe, ok := As(e6); !ok || fe.Field() != "ngram_size" {
		t.Fatalf("WithField failed")
	}
	if oe, ok := As(e7); !ok || oe.Op() != "extract" {
		t.Fatalf("WithOp failed")
	}
	// original unchanged
	if fe0, _ := As(e5); fe0.Field() != "" || fe0.Op() != "" {
		t.Fatalf("copy-on-write mutated original")
	}

	// Helpers (sugar) and IsCode
	if !IsCode(InvalidArgf("x"), ErrorCodeInvalidArgument) ||
		!IsCode(DBf("x"), ErrorCodeDB) ||
		!IsCode(Validationf("x"), ErrorCodeValidation) {
		t.Fatalf("sugar helpers code mismatch")
	}

	// WrapIf
	if WrapIf(nil, ErrorCodeDB, "ignored") != nil {
		t.Fatalf("WrapIf(nil) should return nil")
	}
	if WrapIf(src, ErrorCodeDB, "db") == nil {
		t.Fatalf("WrapIf(non-nil) should wrap")
	}

	// Root traversal
	deep := fmt.Errorf("level2: %w", fmt.Errorf("level1: %w", src))
	if got := Root(deep); got == nil || got.Error() != "root" {
		t.Fatalf("Root() failed, got %v", got)
	}

	// ErrNotFound sentinel behavior
	if !IsCode(ErrNotFound, ErrorCodeNotFound) {
		t.Fatalf("ErrNotFound code mismatch")
	}
}

func TestErrorFamilies(t *testing.T) {
	// IsValidation covers everything a caller can fix before retrying
	for _, err := range []error{Validationf("x"), InvalidArgf("x")} {
		if !IsValidation(err) {
			t.Fatalf("%v should be in the validation family", err)
		}
		if IsPersistence(err) {
			t.Fatalf("%v must not be in the persistence family", err)
		}
	}

	// IsPersistence covers storage failures
	persistence := []error{
		DBf("x"),
		Newf(ErrorCodeUnavailable, "x"),
		Newf(ErrorCodeDuplicateKey, "x"),
		Newf(ErrorCodeConflict, "x"),
	}
	for _, err := range persistence {
		if !IsPersistence(err) {
			t.Fatalf("%v should be in the persistence family", err)
		}
		if IsValidation(err) {
			t.Fatalf("%v must not be in the validation family", err)
		}
	}

	// neither family
	for _, err := range []error{nil, stderrs.New("plain"), Newf(ErrorCodeNotFound, "x")} {
		if IsValidation(err) || IsPersistence(err) {
			t.Fatalf("%v should be in neither family", err)
		}
	}

	// families survive wrapping
	wrapped := fmt.Errorf("caller context: %w", Validationf("inner"))
	if !IsValidation(wrapped) {
		t.Fatalf("family lookup must see through wrapping")
	}
}

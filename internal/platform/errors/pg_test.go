package errors

import (
	stderrs "errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func pg(code string) *pgconn.PgError {
	return &pgconn.PgError{Code: code}
}

func TestDBErrorCodeMappings(t *testing.T) {
	cases := []struct {
		code string
		want ErrorCode
	}{
		{"23505", ErrorCodeDuplicateKey},    // unique violation
		{"23503", ErrorCodeInvalidArgument}, // fk violation -> invalid input
		{"23502", ErrorCodeValidation},      // not null
		{"23514", ErrorCodeValidation},      // check
		{"22P02", ErrorCodeValidation},      // invalid text representation
		{"40001", ErrorCodeDB},              // serialization failure (retryable) mapped to DB
		{"40P01", ErrorCodeDB},              // deadlock
		{"55P03", ErrorCodeDB},              // lock not available
		{"25006", ErrorCodeUnavailable},     // read-only
		{"57P03", ErrorCodeUnavailable},     // cannot connect now
		{"XXXXX", ErrorCodeDB},              // default branch
	}
	for _, c := range cases {
		got, ok := DBErrorCode(pg(c.code))
		if !ok {
			t.Fatalf("expected ok for PgError code %s", c.code)
		}
		if got != c.want {
			t.Fatalf("DBErrorCode(%s) = %v, want %v", c.code, got, c.want)
		}
	}

	// Non-pg error path
	if _, ok := DBErrorCode(stderrs.New("nope")); ok {
		t.Fatalf("DBErrorCode should return ok=false for non-pg error")
	}
}

func TestFromPostgresVariants(t *testing.T) {
	// nil passthrough
	if FromPostgres(nil, "x") != nil {
		t.Fatalf("FromPostgres(nil) should be nil")
	}
	if FromPostgresf(nil, "x %d", 1) != nil {
		t.Fatalf("FromPostgresf(nil) should be nil")
	}

	// mapped: check codes only (PgError string includes SQLSTATE formatting)
	err := FromPostgres(pg("23505"), "insert speed row")
	if CodeOf(err) != ErrorCodeDuplicateKey {
		t.Fatalf("FromPostgres map code = %v", CodeOf(err))
	}
	errf := FromPostgresf(pg("23502"), "bad: %s", "ngram_text")
	if CodeOf(errf) != ErrorCodeValidation {
		t.Fatalf("FromPostgresf code = %v, want %v", CodeOf(errf), ErrorCodeValidation)
	}

	// no rows from a single-row read maps to NotFound
	noRows := FromPostgres(pgxNoRows(), "keyboard target")
	if CodeOf(noRows) != ErrorCodeNotFound {
		t.Fatalf("pgx.ErrNoRows code = %v, want %v", CodeOf(noRows), ErrorCodeNotFound)
	}

	// mapped errors land in the persistence family
	if !IsPersistence(err) {
		t.Fatalf("mapped duplicate key should be a persistence error")
	}

	// constraint violations carry the constraint name as the field
	withConstraint := FromPostgres(
		&pgconn.PgError{Code: "23505", ConstraintName: "session_ngram_speed_pkey"},
		"insert speed row",
	)
	if e, ok := As(withConstraint); !ok || e.Field() != "session_ngram_speed_pkey" {
		t.Fatalf("constraint name not carried as field: %v", withConstraint)
	}
}

func pgxNoRows() error { return pgx.ErrNoRows }

func TestSQLStateHelpers(t *testing.T) {
	if !IsDuplicateKey(pg("23505")) {
		t.Fatalf("23505 is a duplicate key")
	}
	if !IsForeignKeyViolation(pg("23503")) {
		t.Fatalf("23503 is a fk violation")
	}
	if !IsSerializationFailure(pg("40001")) {
		t.Fatalf("40001 is a serialization failure")
	}
	if !IsDeadlock(pg("40P01")) {
		t.Fatalf("40P01 is a deadlock")
	}
	if IsDuplicateKey(stderrs.New("nope")) {
		t.Fatalf("non-pg error is never a duplicate key")
	}

	// helpers see through our wrapper
	wrapped := FromPostgres(pg("23505"), "insert")
	if !IsDuplicateKey(wrapped) {
		t.Fatalf("IsDuplicateKey must unwrap to the root cause")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(pg("40001")) { // serialization failure
		t.Fatalf("40001 should be retryable")
	}
	if !IsRetryable(pg("40P01")) { // deadlock
		t.Fatalf("40P01 should be retryable")
	}
	if !IsRetryable(pg("55P03")) { // lock not available
		t.Fatalf("55P03 should be retryable")
	}
	// non-retryable
	if IsRetryable(pg("23505")) {
		t.Fatalf("23505 should not be retryable")
	}
	if IsRetryable(nil) {
		t.Fatalf("nil should not be retryable")
	}

	// commit text fallback
	if !IsRetryable(stderrs.New("commit unexpectedly resulted in rollback")) {
		t.Fatalf("commit rollback text should be retryable")
	}
	if IsRetryable(stderrs.New("nope")) {
		t.Fatalf("arbitrary error should not be retryable")
	}
}

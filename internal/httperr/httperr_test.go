package httperr

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestBusinessErrorThroughWrap(t *testing.T) {
	err := fmt.Errorf("create booking: %w", ErrBusiness("time_conflict"))
	if !IsBusiness(err, "time_conflict") {
		t.Fatalf("expected wrapped business error to match")
	}
	if code, ok := BusinessCode(err); !ok || code != "time_conflict" {
		t.Fatalf("expected code time_conflict, got %q", code)
	}
	if IsBusiness(fmt.Errorf("plain"), "time_conflict") {
		t.Fatalf("plain error must not match")
	}
}

func TestPgCodes(t *testing.T) {
	excl := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23P01"})
	if !IsExclusionConflict(excl) || IsUniqueViolation(excl) {
		t.Fatalf("expected exclusion violation only")
	}
	uniq := &pgconn.PgError{Code: "23505"}
	if !IsUniqueViolation(uniq) {
		t.Fatalf("expected unique violation")
	}
}

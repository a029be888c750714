package repository

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"carlisting_backend/platform/apperr"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestBuildFilterClauseEmpty(t *testing.T) {
	where, args := buildFilterClause(Filter{})
	if where != "" {
		t.Fatalf("expected empty clause, got %q", where)
	}
	if args != nil {
		t.Fatalf("expected no args, got %v", args)
	}
}

func TestBuildFilterClauseSubstringMatch(t *testing.T) {
	where, args := buildFilterClause(Filter{Make: "toy", Model: "cor"})

	if !strings.Contains(where, "make ILIKE $1") {
		t.Fatalf("expected case-insensitive make filter, got %q", where)
	}
	if !strings.Contains(where, "model ILIKE $2") {
		t.Fatalf("expected case-insensitive model filter, got %q", where)
	}
	if len(args) != 2 || args[0] != "%toy%" || args[1] != "%cor%" {
		t.Fatalf("expected substring args, got %v", args)
	}
}

func TestBuildFilterClauseYearIsExact(t *testing.T) {
	year := 2020
	where, args := buildFilterClause(Filter{Year: &year})

	if !strings.Contains(where, "year = $1") {
		t.Fatalf("expected exact year filter, got %q", where)
	}
	if len(args) != 1 || args[0] != 2020 {
		t.Fatalf("expected year arg, got %v", args)
	}
}

func TestBuildFilterClauseAllFields(t *testing.T) {
	year := 2019
	where, args := buildFilterClause(Filter{
		Make:         "Toyota",
		Model:        "Corolla",
		Year:         &year,
		Transmission: "auto",
		FuelType:     "petrol",
	})

	if strings.Count(where, "AND") != 4 {
		t.Fatalf("expected 5 joined conditions, got %q", where)
	}
	if !strings.Contains(where, "fuel_type ILIKE $5") {
		t.Fatalf("expected fuel_type as final placeholder, got %q", where)
	}
	if len(args) != 5 {
		t.Fatalf("expected 5 args, got %d", len(args))
	}
}

func TestWrapWriteErrorUniqueViolationIsConflict(t *testing.T) {
	// Two inserts racing past the service's VIN pre-check both reach the
	// unique index; the loser must surface as a conflict, not a 500.
	raced := fmt.Errorf("exec insert: %w", &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "car_listings_vin_key",
	})

	err := wrapWriteError("insert listing", raced)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict for unique violation, got %v", err)
	}
	if err.Error() != "A listing with this VIN already exists." {
		t.Fatalf("unexpected conflict message: %q", err.Error())
	}
}

func TestWrapWriteErrorOtherFailuresAreDatabaseErrors(t *testing.T) {
	cases := []error{
		errors.New("connection refused"),
		&pgconn.PgError{Code: "23502"}, // not-null violation
	}
	for _, cause := range cases {
		err := wrapWriteError("update listing", cause)
		if !apperr.Is(err, apperr.KindDatabase) {
			t.Fatalf("expected database error for %v, got %v", cause, err)
		}
	}
}

func TestScanPlaceholderOrderIsStable(t *testing.T) {
	// The placeholder index must follow the arg append order so a partially
	// populated filter still lines up with its args.
	where, args := buildFilterClause(Filter{Model: "civic", FuelType: "hybrid"})

	if !strings.Contains(where, "model ILIKE $1") || !strings.Contains(where, "fuel_type ILIKE $2") {
		t.Fatalf("placeholders out of order: %q", where)
	}
	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(args))
	}
}

package aggregates

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/quitbridge-backend/internal/domain/aggregates"
)

func TestMapError_Validation(t *testing.T) {
	err := MapError("op", ValidationError("bad input"))
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_Conflict(t *testing.T) {
	err := MapError("op", ConflictError("stale"))
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("expected conflict code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_NotFound(t *testing.T) {
	for _, in := range []error{gorm.ErrRecordNotFound, NotFoundError("user missing")} {
		err := MapError("op", in)
		if !domainagg.IsCode(err, domainagg.CodeNotFound) {
			t.Fatalf("expected not_found code, got %q (%v)", domainagg.CodeOf(err), err)
		}
	}
}

func TestMapError_DomainCodes(t *testing.T) {
	if got := domainagg.CodeOf(MapError("op", DuplicateRecordError("dup"))); got != domainagg.CodeDuplicateRecord {
		t.Fatalf("duplicate: want=%s got=%s", domainagg.CodeDuplicateRecord, got)
	}
	if got := domainagg.CodeOf(MapError("op", InvalidTransitionError("paused->paused"))); got != domainagg.CodeInvalidStateTransition {
		t.Fatalf("transition: want=%s got=%s", domainagg.CodeInvalidStateTransition, got)
	}
}

func TestMapError_UniqueViolationIsConflict(t *testing.T) {
	cases := []error{
		gorm.ErrDuplicatedKey,
		&pgconn.PgError{Code: "23505"},
		fmt.Errorf("insert: %w", errors.New("UNIQUE constraint failed: smoking_record.user_id")),
	}
	for _, in := range cases {
		if got := domainagg.CodeOf(MapError("op", in)); got != domainagg.CodeConflict {
			t.Fatalf("unique violation %v: want=%s got=%s", in, domainagg.CodeConflict, got)
		}
	}
}

func TestMapError_PersistenceFallsBackToInternal(t *testing.T) {
	err := MapError("op", errors.New("connection refused"))
	if !domainagg.IsPersistence(err) || domainagg.CodeOf(err) != domainagg.CodeInternal {
		t.Fatalf("expected internal persistence error, got %q", domainagg.CodeOf(err))
	}
}

func TestMapError_PassthroughAggregateError(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeRetryable, "op", "retry", errors.New("boom"))
	out := MapError("other", in)
	if out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
}

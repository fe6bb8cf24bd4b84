// Package store persists exams, component catalogs, enrollments, marks and
// optional choices. It is the single source of truth for an exam's
// published/locked state; the reconciliation core only reads and obeys it.
package store

import (
	"context"
	"errors"

	"github.com/classledger/classledger/internal/component"
	"github.com/classledger/classledger/internal/ledger"
	"github.com/classledger/classledger/internal/optional"
)

var ErrNotFound = errors.New("not found")

type Exam struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	AcademicYear string `json:"academic_year"`
	Class        string `json:"class"`
	Published    bool   `json:"published"`
	CreatedAt    int64  `json:"created_at,omitempty"`
}

type Store interface {
	PutExam(ctx context.Context, e Exam, catalog []component.Group) (Exam, error)
	GetExam(ctx context.Context, id string) (Exam, error)
	PublishExam(ctx context.Context, id string) error
	ExamLocked(ctx context.Context, examID string) (bool, error)

	Catalog(ctx context.Context, examID string) ([]component.Group, error)
	UpdateComponents(ctx context.Context, examID string, updates []component.Update) error
	// OptionalCatalog returns the latest catalog configured for an academic
	// year and class, for optional-group resolution.
	OptionalCatalog(ctx context.Context, academicYear, class string) ([]component.Group, error)

	PutEnrollment(ctx context.Context, en ledger.Enrollment) (ledger.Enrollment, error)
	GetEnrollment(ctx context.Context, id string) (ledger.Enrollment, error)
	ListEnrollments(ctx context.Context, academicYear, class, section string) ([]ledger.Enrollment, error)

	LedgerRows(ctx context.Context, enrollmentID, examID string) ([]ledger.RawRow, error)
	SaveMarks(ctx context.Context, enrollmentID, examID string, updates []ledger.MarkUpdate) error

	OptionalChoices(ctx context.Context, enrollmentID string) ([]optional.Choice, error)
	SaveOptionalChoices(ctx context.Context, enrollmentID string, choices []optional.Choice) error
}

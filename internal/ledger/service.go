package ledger

import (
	"context"
	"fmt"

	"github.com/classledger/classledger/internal/clerr"
	"github.com/classledger/classledger/internal/component"
)

// Store is the slice of persistence the ledger service needs. The store is
// the sole source of truth for an exam's locked state.
type Store interface {
	ExamLocked(ctx context.Context, examID string) (bool, error)
	LedgerRows(ctx context.Context, enrollmentID, examID string) ([]RawRow, error)
	SaveMarks(ctx context.Context, enrollmentID, examID string, updates []MarkUpdate) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service { return &Service{store: store} }

// Load builds a fresh ledger for one enrollment and exam. A fresh load
// always supersedes unsaved local edits; callers discard their edit state
// after calling this.
func (s *Service) Load(ctx context.Context, enrollmentID, examID string) ([]Entry, error) {
	if enrollmentID == "" || examID == "" {
		return nil, clerr.Precondition("enrollment and exam are required to load a ledger")
	}
	rows, err := s.store.LedgerRows(ctx, enrollmentID, examID)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return BuildLedger(rows), nil
}

// SaveResult reports what one save actually did. Skipped lists components
// whose entered marks failed validation and were held back.
type SaveResult struct {
	Updated int      `json:"updated"`
	Skipped []string `json:"skipped,omitempty"`
}

// Save diffs the edited ledger against the persisted one and persists only
// the changes. The exam-lock guard runs before any payload is built; an
// unchanged ledger performs no store call at all.
func (s *Service) Save(ctx context.Context, enrollmentID, examID string, current, edited []Entry) (SaveResult, error) {
	locked, err := s.store.ExamLocked(ctx, examID)
	if err != nil {
		return SaveResult{}, fmt.Errorf("exam lock state: %w", err)
	}
	if locked {
		return SaveResult{}, clerr.ErrExamLocked
	}

	var res SaveResult
	for _, e := range edited {
		if e.Validate() != nil {
			res.Skipped = append(res.Skipped, e.ComponentCode)
		}
	}
	updates := Diff(current, edited)
	if len(updates) == 0 {
		return res, nil
	}
	if err := s.store.SaveMarks(ctx, enrollmentID, examID, updates); err != nil {
		return SaveResult{}, err
	}
	res.Updated = len(updates)
	return res, nil
}

// SaveUpdates persists an already-computed diff for one enrollment, with the
// same lock guard as Save. Every update is validated against the
// enrollment's ledger before any write, so a mark outside a component's
// [0, fullMarks] range fails the whole unit. The batch reconciler sends
// each enrollment's diff through here as one unit.
func (s *Service) SaveUpdates(ctx context.Context, enrollmentID, examID string, updates []MarkUpdate) error {
	if enrollmentID == "" || examID == "" {
		return clerr.Precondition("enrollment and exam are required to save marks")
	}
	locked, err := s.store.ExamLocked(ctx, examID)
	if err != nil {
		return fmt.Errorf("exam lock state: %w", err)
	}
	if locked {
		return clerr.ErrExamLocked
	}
	if len(updates) == 0 {
		return nil
	}

	current, err := s.Load(ctx, enrollmentID, examID)
	if err != nil {
		return err
	}
	full := make(map[string]*float64, len(current))
	for _, e := range current {
		full[e.ComponentCode] = e.FullMarks
	}
	for _, u := range updates {
		code := component.NormalizeCode(u.ComponentCode)
		e := Entry{ComponentCode: code, FullMarks: full[code], Obtained: u.Marks}
		if verr := e.Validate(); verr != nil {
			return verr
		}
	}
	return s.store.SaveMarks(ctx, enrollmentID, examID, updates)
}

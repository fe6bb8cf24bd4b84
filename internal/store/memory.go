package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/classledger/classledger/internal/clerr"
	"github.com/classledger/classledger/internal/component"
	"github.com/classledger/classledger/internal/ledger"
	"github.com/classledger/classledger/internal/optional"
)

type memoryStore struct {
	mu          sync.RWMutex
	exams       map[string]Exam
	catalogs    map[string][]component.Group
	enrollments map[string]ledger.Enrollment
	marks       map[string]map[string]float64 // enrollmentID|examID -> code -> marks
	choices     map[string][]optional.Choice
}

// NewInMemoryStore backs the offline/demo mode and tests. Its ledger rows
// come back in the legacy gateway's camelCase shape, which doubles as a
// live exercise of the row adapter.
func NewInMemoryStore() Store {
	return &memoryStore{
		exams:       map[string]Exam{},
		catalogs:    map[string][]component.Group{},
		enrollments: map[string]ledger.Enrollment{},
		marks:       map[string]map[string]float64{},
		choices:     map[string][]optional.Choice{},
	}
}

func marksKey(enrollmentID, examID string) string { return enrollmentID + "|" + examID }

func (m *memoryStore) PutExam(_ context.Context, e Exam, catalog []component.Group) (Exam, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = time.Now().Unix()
	if prev, ok := m.exams[e.ID]; ok {
		e.Published = prev.Published
		e.CreatedAt = prev.CreatedAt
	}
	m.exams[e.ID] = e
	m.catalogs[e.ID] = catalog
	return e, nil
}

func (m *memoryStore) GetExam(_ context.Context, id string) (Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.exams[id]
	if !ok {
		return Exam{}, fmt.Errorf("exam %s: %w", id, ErrNotFound)
	}
	return e, nil
}

func (m *memoryStore) PublishExam(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.exams[id]
	if !ok {
		return fmt.Errorf("exam %s: %w", id, ErrNotFound)
	}
	e.Published = true
	m.exams[id] = e
	return nil
}

func (m *memoryStore) ExamLocked(_ context.Context, examID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.exams[examID]
	if !ok {
		return false, fmt.Errorf("exam %s: %w", examID, ErrNotFound)
	}
	return e.Published, nil
}

func (m *memoryStore) Catalog(_ context.Context, examID string) ([]component.Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.exams[examID]; !ok {
		return nil, fmt.Errorf("exam %s: %w", examID, ErrNotFound)
	}
	return m.catalogs[examID], nil
}

func (m *memoryStore) UpdateComponents(ctx context.Context, examID string, updates []component.Update) error {
	locked, err := m.ExamLocked(ctx, examID)
	if err != nil {
		return err
	}
	if locked {
		return clerr.ErrExamLocked
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	applyComponentUpdates(m.catalogs[examID], updates)
	return nil
}

func (m *memoryStore) OptionalCatalog(_ context.Context, academicYear, class string) ([]component.Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *Exam
	for id := range m.exams {
		e := m.exams[id]
		if e.AcademicYear != academicYear || e.Class != class {
			continue
		}
		if latest == nil || e.CreatedAt > latest.CreatedAt {
			latest = &e
		}
	}
	if latest == nil {
		return nil, nil
	}
	return m.catalogs[latest.ID], nil
}

func (m *memoryStore) PutEnrollment(_ context.Context, en ledger.Enrollment) (ledger.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if en.ID == "" {
		en.ID = uuid.NewString()
	}
	m.enrollments[en.ID] = en
	return en, nil
}

func (m *memoryStore) GetEnrollment(_ context.Context, id string) (ledger.Enrollment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	en, ok := m.enrollments[id]
	if !ok {
		return ledger.Enrollment{}, fmt.Errorf("enrollment %s: %w", id, ErrNotFound)
	}
	return en, nil
}

func (m *memoryStore) ListEnrollments(_ context.Context, academicYear, class, section string) ([]ledger.Enrollment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ledger.Enrollment
	for _, en := range m.enrollments {
		if en.AcademicYear != academicYear || en.Class != class {
			continue
		}
		if section != "" && en.Section != section {
			continue
		}
		out = append(out, en)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RollNumber != out[j].RollNumber {
			return out[i].RollNumber < out[j].RollNumber
		}
		return out[i].StudentName < out[j].StudentName
	})
	return out, nil
}

func (m *memoryStore) LedgerRows(_ context.Context, enrollmentID, examID string) ([]ledger.RawRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.exams[examID]; !ok {
		return nil, fmt.Errorf("exam %s: %w", examID, ErrNotFound)
	}
	marks := m.marks[marksKey(enrollmentID, examID)]
	var out []ledger.RawRow
	for _, fc := range component.Flatten(m.catalogs[examID]) {
		if !fc.Enabled {
			continue
		}
		code := component.NormalizeCode(fc.Code)
		if code == "" {
			continue
		}
		r := ledger.RawRow{
			"componentCode": code,
			"title":         fc.Title,
			"subject":       fc.SubjectName,
		}
		if fc.FullMarks != nil {
			r["fullMarks"] = *fc.FullMarks
		}
		if v, ok := marks[code]; ok {
			r["marks"] = v
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memoryStore) SaveMarks(ctx context.Context, enrollmentID, examID string, updates []ledger.MarkUpdate) error {
	locked, err := m.ExamLocked(ctx, examID)
	if err != nil {
		return err
	}
	if locked {
		return clerr.ErrExamLocked
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := marksKey(enrollmentID, examID)
	if m.marks[k] == nil {
		m.marks[k] = map[string]float64{}
	}
	for _, u := range updates {
		code := component.NormalizeCode(u.ComponentCode)
		if code == "" {
			continue
		}
		if u.Marks == nil {
			delete(m.marks[k], code)
			continue
		}
		m.marks[k][code] = *u.Marks
	}
	return nil
}

func (m *memoryStore) OptionalChoices(_ context.Context, enrollmentID string) ([]optional.Choice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]optional.Choice, len(m.choices[enrollmentID]))
	copy(out, m.choices[enrollmentID])
	return out, nil
}

func (m *memoryStore) SaveOptionalChoices(_ context.Context, enrollmentID string, choices []optional.Choice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]optional.Choice, len(choices))
	copy(cp, choices)
	m.choices[enrollmentID] = cp
	return nil
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/classledger/classledger/internal/clerr"
	"github.com/classledger/classledger/internal/component"
	"github.com/classledger/classledger/internal/ledger"
	"github.com/classledger/classledger/internal/optional"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutExam(ctx context.Context, e Exam, catalog []component.Group) (Exam, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if catalog == nil {
		catalog = []component.Group{}
	}
	cj, err := json.Marshal(catalog)
	if err != nil {
		return Exam{}, err
	}
	e.CreatedAt = time.Now().Unix()
	_, err = s.db.ExecContext(ctx, `INSERT INTO exams (id,title,academic_year,class,published,catalog_json,created_at)
		VALUES ($1,$2,$3,$4,FALSE,$5,$6)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, academic_year=EXCLUDED.academic_year, class=EXCLUDED.class, catalog_json=EXCLUDED.catalog_json`,
		e.ID, e.Title, e.AcademicYear, e.Class, string(cj), e.CreatedAt)
	if err != nil {
		return Exam{}, err
	}
	return e, nil
}

func (s *SQLStore) GetExam(ctx context.Context, id string) (Exam, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,title,academic_year,class,published,created_at FROM exams WHERE id=$1`, id)
	var e Exam
	if err := row.Scan(&e.ID, &e.Title, &e.AcademicYear, &e.Class, &e.Published, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Exam{}, fmt.Errorf("exam %s: %w", id, ErrNotFound)
		}
		return Exam{}, err
	}
	return e, nil
}

func (s *SQLStore) PublishExam(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE exams SET published=TRUE WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("exam %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLStore) ExamLocked(ctx context.Context, examID string) (bool, error) {
	var published bool
	err := s.db.QueryRowContext(ctx, `SELECT published FROM exams WHERE id=$1`, examID).Scan(&published)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("exam %s: %w", examID, ErrNotFound)
	}
	if err != nil {
		return false, err
	}
	return published, nil
}

func (s *SQLStore) Catalog(ctx context.Context, examID string) ([]component.Group, error) {
	var cj string
	err := s.db.QueryRowContext(ctx, `SELECT catalog_json FROM exams WHERE id=$1`, examID).Scan(&cj)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("exam %s: %w", examID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var groups []component.Group
	if err := json.Unmarshal([]byte(cj), &groups); err != nil {
		return nil, fmt.Errorf("catalog for exam %s: %w", examID, err)
	}
	return groups, nil
}

// UpdateComponents applies configuration updates to the stored catalog,
// matched by normalized component code. Unknown codes are ignored: the
// payload was built from this catalog to begin with. Published exams reject
// the edit.
func (s *SQLStore) UpdateComponents(ctx context.Context, examID string, updates []component.Update) error {
	locked, err := s.ExamLocked(ctx, examID)
	if err != nil {
		return err
	}
	if locked {
		return clerr.ErrExamLocked
	}
	groups, err := s.Catalog(ctx, examID)
	if err != nil {
		return err
	}
	applyComponentUpdates(groups, updates)
	cj, err := json.Marshal(groups)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `UPDATE exams SET catalog_json=$1 WHERE id=$2`, string(cj), examID)
	return err
}

func applyComponentUpdates(groups []component.Group, updates []component.Update) {
	byCode := make(map[string]component.Update, len(updates))
	for _, u := range updates {
		byCode[component.NormalizeCode(u.Code)] = u
	}
	for gi := range groups {
		for si := range groups[gi].Subjects {
			comps := groups[gi].Subjects[si].Components
			for ci := range comps {
				u, ok := byCode[component.NormalizeCode(comps[ci].Code)]
				if !ok {
					continue
				}
				full := u.FullMarks
				comps[ci].FullMarks = &full
				comps[ci].PassMarks = u.PassMarks
				comps[ci].Enabled = u.Enabled
			}
		}
	}
}

func (s *SQLStore) OptionalCatalog(ctx context.Context, academicYear, class string) ([]component.Group, error) {
	var cj string
	err := s.db.QueryRowContext(ctx,
		`SELECT catalog_json FROM exams WHERE academic_year=$1 AND class=$2 ORDER BY created_at DESC LIMIT 1`,
		academicYear, class).Scan(&cj)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // not configured yet; resolver falls back to saved choices
	}
	if err != nil {
		return nil, err
	}
	var groups []component.Group
	if err := json.Unmarshal([]byte(cj), &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (s *SQLStore) PutEnrollment(ctx context.Context, en ledger.Enrollment) (ledger.Enrollment, error) {
	if en.ID == "" {
		en.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO enrollments (id,student_name,roll_number,academic_year,class,section)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET student_name=EXCLUDED.student_name, roll_number=EXCLUDED.roll_number, academic_year=EXCLUDED.academic_year, class=EXCLUDED.class, section=EXCLUDED.section`,
		en.ID, en.StudentName, en.RollNumber, en.AcademicYear, en.Class, en.Section)
	if err != nil {
		return ledger.Enrollment{}, err
	}
	return en, nil
}

func (s *SQLStore) GetEnrollment(ctx context.Context, id string) (ledger.Enrollment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,student_name,roll_number,academic_year,class,section FROM enrollments WHERE id=$1`, id)
	var en ledger.Enrollment
	if err := row.Scan(&en.ID, &en.StudentName, &en.RollNumber, &en.AcademicYear, &en.Class, &en.Section); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.Enrollment{}, fmt.Errorf("enrollment %s: %w", id, ErrNotFound)
		}
		return ledger.Enrollment{}, err
	}
	return en, nil
}

func (s *SQLStore) ListEnrollments(ctx context.Context, academicYear, class, section string) ([]ledger.Enrollment, error) {
	q := `SELECT id,student_name,roll_number,academic_year,class,section FROM enrollments WHERE academic_year=$1 AND class=$2`
	args := []any{academicYear, class}
	if section != "" {
		q += ` AND section=$3`
		args = append(args, section)
	}
	q += ` ORDER BY roll_number, student_name`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ledger.Enrollment
	for rows.Next() {
		var en ledger.Enrollment
		if err := rows.Scan(&en.ID, &en.StudentName, &en.RollNumber, &en.AcademicYear, &en.Class, &en.Section); err != nil {
			return nil, err
		}
		out = append(out, en)
	}
	return out, rows.Err()
}

// LedgerRows joins the exam's enabled components with the enrollment's
// stored marks, in catalog order.
func (s *SQLStore) LedgerRows(ctx context.Context, enrollmentID, examID string) ([]ledger.RawRow, error) {
	groups, err := s.Catalog(ctx, examID)
	if err != nil {
		return nil, err
	}
	marks := map[string]float64{}
	rows, err := s.db.QueryContext(ctx,
		`SELECT component_code, marks FROM marks WHERE enrollment_id=$1 AND exam_id=$2 AND marks IS NOT NULL`,
		enrollmentID, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var code string
		var m float64
		if err := rows.Scan(&code, &m); err != nil {
			return nil, err
		}
		marks[code] = m
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var out []ledger.RawRow
	for _, fc := range component.Flatten(groups) {
		if !fc.Enabled {
			continue
		}
		code := component.NormalizeCode(fc.Code)
		if code == "" {
			continue
		}
		r := ledger.RawRow{
			"component_code":  code,
			"component_title": fc.Title,
			"subject_name":    fc.SubjectName,
		}
		if fc.FullMarks != nil {
			r["full_marks"] = *fc.FullMarks
		}
		if m, ok := marks[code]; ok {
			r["obtained_marks"] = m
		}
		out = append(out, r)
	}
	return out, nil
}

// SaveMarks upserts present marks and deletes cleared ones, atomically per
// enrollment. Published exams reject the save.
func (s *SQLStore) SaveMarks(ctx context.Context, enrollmentID, examID string, updates []ledger.MarkUpdate) error {
	locked, err := s.ExamLocked(ctx, examID)
	if err != nil {
		return err
	}
	if locked {
		return clerr.ErrExamLocked
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, u := range updates {
		code := component.NormalizeCode(u.ComponentCode)
		if code == "" {
			continue
		}
		if u.Marks == nil {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM marks WHERE enrollment_id=$1 AND exam_id=$2 AND component_code=$3`,
				enrollmentID, examID, code); err != nil {
				return err
			}
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO marks (enrollment_id,exam_id,component_code,marks,updated_at)
			VALUES ($1,$2,$3,$4,$5)
			ON CONFLICT (enrollment_id,exam_id,component_code) DO UPDATE SET marks=EXCLUDED.marks, updated_at=EXCLUDED.updated_at`,
			enrollmentID, examID, code, *u.Marks, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStore) OptionalChoices(ctx context.Context, enrollmentID string) ([]optional.Choice, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT group_name, subject_id, subject_name FROM optional_choices WHERE enrollment_id=$1 ORDER BY group_name`, enrollmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []optional.Choice
	for rows.Next() {
		var c optional.Choice
		if err := rows.Scan(&c.GroupName, &c.SubjectID, &c.SubjectName); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SaveOptionalChoices overwrites the enrollment's choices wholesale.
func (s *SQLStore) SaveOptionalChoices(ctx context.Context, enrollmentID string, choices []optional.Choice) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM optional_choices WHERE enrollment_id=$1`, enrollmentID); err != nil {
		return err
	}
	for _, c := range choices {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO optional_choices (enrollment_id,group_name,subject_id,subject_name) VALUES ($1,$2,$3,$4)`,
			enrollmentID, c.GroupName, c.SubjectID, c.SubjectName); err != nil {
			return err
		}
	}
	return tx.Commit()
}

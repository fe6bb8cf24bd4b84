// Package batch drives marks saves across a grid of many students for one
// exam, one enrollment at a time, collecting per-student outcomes instead
// of aborting on the first failure.
package batch

import (
	"context"
	"errors"

	"github.com/classledger/classledger/internal/clerr"
	"github.com/classledger/classledger/internal/component"
	"github.com/classledger/classledger/internal/ledger"
)

// Cell is one editable grid position: (enrollment, component) -> marks.
// Cells are independently valid and independently retryable.
type Cell struct {
	EnrollmentID  string   `json:"enrollment_id"`
	ComponentCode string   `json:"component_code"`
	Marks         *float64 `json:"marks"`
}

// Grid is the planned batch view: the deterministic column layout plus the
// seeded cells, row-major in enrollment order.
type Grid struct {
	Columns     []component.FlatComponent `json:"columns"`
	Enrollments []ledger.Enrollment       `json:"enrollments"`
	Cells       []Cell                    `json:"cells"`
}

// PlanGrid produces one cell per enrollment and enabled component, seeded
// with each enrollment's persisted ledger values. Cell order follows the
// input enrollment order, then the catalog's component order, so repeated
// plans over the same state lay out identically.
func PlanGrid(enrollments []ledger.Enrollment, components []component.FlatComponent, ledgers map[string][]ledger.Entry) Grid {
	cols := make([]component.FlatComponent, 0, len(components))
	for _, c := range components {
		if c.Enabled {
			cols = append(cols, c)
		}
	}

	g := Grid{Columns: cols, Enrollments: enrollments}
	for _, en := range enrollments {
		marks := make(map[string]*float64)
		for _, e := range ledgers[en.ID] {
			marks[e.ComponentCode] = e.Obtained
		}
		for _, c := range cols {
			g.Cells = append(g.Cells, Cell{
				EnrollmentID:  en.ID,
				ComponentCode: component.NormalizeCode(c.Code),
				Marks:         marks[component.NormalizeCode(c.Code)],
			})
		}
	}
	return g
}

// Unit is one enrollment's full diff, sent as a single save.
type Unit struct {
	EnrollmentID string              `json:"enrollment_id"`
	Updates      []ledger.MarkUpdate `json:"updates"`
}

// BuildUnits groups edited cells by enrollment and diffs them against the
// grid's planned cells, emitting one unit per enrollment with at least one
// change. Unit order follows each enrollment's first appearance in the
// plan. Cells naming a component outside the grid's columns, or carrying
// marks outside the component's [0, fullMarks] range, are returned as
// skipped and never enter a unit.
func (g Grid) BuildUnits(edited []Cell) ([]Unit, []Cell) {
	full := make(map[string]*float64, len(g.Columns))
	for _, c := range g.Columns {
		full[component.NormalizeCode(c.Code)] = c.FullMarks
	}

	type row struct {
		current []ledger.Entry
		edited  []ledger.Entry
	}
	var order []string
	rows := map[string]*row{}
	rowFor := func(id string) *row {
		r, ok := rows[id]
		if !ok {
			r = &row{}
			rows[id] = r
			order = append(order, id)
		}
		return r
	}
	for _, c := range g.Cells {
		r := rowFor(c.EnrollmentID)
		r.current = append(r.current, ledger.Entry{ComponentCode: c.ComponentCode, Obtained: c.Marks})
	}

	var skipped []Cell
	for _, c := range edited {
		code := component.NormalizeCode(c.ComponentCode)
		fm, known := full[code]
		e := ledger.Entry{ComponentCode: code, FullMarks: fm, Obtained: c.Marks}
		if !known || e.Validate() != nil {
			skipped = append(skipped, c)
			continue
		}
		rowFor(c.EnrollmentID).edited = append(rowFor(c.EnrollmentID).edited, e)
	}

	var units []Unit
	for _, id := range order {
		r := rows[id]
		updates := ledger.Diff(r.current, r.edited)
		if len(updates) == 0 {
			continue
		}
		units = append(units, Unit{EnrollmentID: id, Updates: updates})
	}
	return units, skipped
}

// Progress is observable after every unit, whatever its outcome.
type Progress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

type Failure struct {
	EnrollmentID string `json:"enrollment_id"`
	Reason       string `json:"reason"`
}

type Result struct {
	Succeeded      int       `json:"succeeded"`
	Failed         []Failure `json:"failed"`
	TotalProcessed int       `json:"total_processed"`
}

// SaveFunc persists one enrollment's updates.
type SaveFunc func(ctx context.Context, enrollmentID string, updates []ledger.MarkUpdate) error

// RunBatch saves units strictly sequentially in input order, one in-flight
// save at a time, advancing progress after every unit. A failing unit is
// recorded and processing continues with the next enrollment. When the
// context is cancelled no further unit is dispatched; the unit already in
// flight runs to completion and the partial result is returned with the
// context's error.
func RunBatch(ctx context.Context, units []Unit, save SaveFunc, onProgress func(Progress)) (Result, error) {
	var res Result
	total := len(units)
	for i, u := range units {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := save(ctx, u.EnrollmentID, u.Updates); err != nil {
			res.Failed = append(res.Failed, Failure{EnrollmentID: u.EnrollmentID, Reason: failureReason(err)})
		} else {
			res.Succeeded++
		}
		res.TotalProcessed++
		if onProgress != nil {
			onProgress(Progress{Done: i + 1, Total: total})
		}
	}
	return res, nil
}

func failureReason(err error) string {
	if errors.Is(err, clerr.ErrExamLocked) {
		return "exam locked"
	}
	var re *clerr.RemoteError
	if errors.As(err, &re) {
		return re.Error()
	}
	return err.Error()
}

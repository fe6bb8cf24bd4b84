package batch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/classledger/classledger/internal/clerr"
	"github.com/classledger/classledger/internal/component"
	"github.com/classledger/classledger/internal/ledger"
)

func fp(v float64) *float64 { return &v }

func seedGrid(t *testing.T) Grid {
	t.Helper()
	components := []component.FlatComponent{
		{Code: "0101", Type: component.TypeTheory, SubjectName: "Physics", FullMarks: fp(75), Enabled: true},
		{Code: "0102", Type: component.TypeInternal, SubjectName: "Physics", FullMarks: fp(25), Enabled: true},
		{Code: "0103", Type: component.TypePractical, SubjectName: "Physics", FullMarks: fp(25), Enabled: false},
	}
	enrollments := []ledger.Enrollment{
		{ID: "enr-1", StudentName: "A", RollNumber: 1},
		{ID: "enr-2", StudentName: "B", RollNumber: 2},
	}
	ledgers := map[string][]ledger.Entry{
		"enr-1": {{ComponentCode: "0101", Obtained: fp(60)}},
	}
	return PlanGrid(enrollments, components, ledgers)
}

func TestPlanGrid(t *testing.T) {
	g := seedGrid(t)
	if len(g.Columns) != 2 {
		t.Fatalf("disabled component leaked into columns: %+v", g.Columns)
	}
	if len(g.Cells) != 4 {
		t.Fatalf("expected 2x2 cells, got %d: %+v", len(g.Cells), g.Cells)
	}
	// Row-major: enr-1 cells first, in component order, seeded from its ledger.
	if g.Cells[0].EnrollmentID != "enr-1" || g.Cells[0].ComponentCode != "0101" || g.Cells[0].Marks == nil || *g.Cells[0].Marks != 60 {
		t.Errorf("cell[0]: %+v", g.Cells[0])
	}
	if g.Cells[1].Marks != nil {
		t.Errorf("unseeded cell has marks: %+v", g.Cells[1])
	}
	if g.Cells[2].EnrollmentID != "enr-2" {
		t.Errorf("cell order: %+v", g.Cells)
	}
}

func TestBuildUnits(t *testing.T) {
	g := seedGrid(t)
	edited := make([]Cell, len(g.Cells))
	copy(edited, g.Cells)

	// Untouched grid: no units.
	if units, skipped := g.BuildUnits(edited); len(units) != 0 || len(skipped) != 0 {
		t.Fatalf("unchanged grid produced units: %+v skipped: %+v", units, skipped)
	}

	// enr-1 clears 0101 and enters 0102; enr-2 enters 0102.
	edited[0].Marks = nil
	edited[1].Marks = fp(20)
	edited[3].Marks = fp(15)

	units, skipped := g.BuildUnits(edited)
	if len(skipped) != 0 {
		t.Fatalf("in-range edits skipped: %+v", skipped)
	}
	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %+v", units)
	}
	if units[0].EnrollmentID != "enr-1" || len(units[0].Updates) != 2 {
		t.Errorf("unit[0]: %+v", units[0])
	}
	if units[1].EnrollmentID != "enr-2" || len(units[1].Updates) != 1 {
		t.Errorf("unit[1]: %+v", units[1])
	}
	for _, u := range units[0].Updates {
		if u.ComponentCode == "0101" && u.Marks != nil {
			t.Errorf("clear not encoded as null: %+v", u)
		}
	}
}

func TestBuildUnitsHoldsBackInvalidCells(t *testing.T) {
	g := seedGrid(t)
	edited := []Cell{
		{EnrollmentID: "enr-1", ComponentCode: "0101", Marks: fp(999)}, // over full marks (75)
		{EnrollmentID: "enr-1", ComponentCode: "0102", Marks: fp(-5)},
		{EnrollmentID: "enr-1", ComponentCode: "0999", Marks: fp(10)}, // not a grid column
		{EnrollmentID: "enr-2", ComponentCode: "0102", Marks: fp(20)},
	}

	units, skipped := g.BuildUnits(edited)
	if len(skipped) != 3 {
		t.Fatalf("expected 3 skipped cells, got %+v", skipped)
	}
	if len(units) != 1 || units[0].EnrollmentID != "enr-2" {
		t.Fatalf("only the valid edit should produce a unit: %+v", units)
	}
	if len(units[0].Updates) != 1 || units[0].Updates[0].ComponentCode != "0102" || *units[0].Updates[0].Marks != 20 {
		t.Fatalf("unit updates: %+v", units[0].Updates)
	}
}

func TestRunBatchPartialFailure(t *testing.T) {
	units := []Unit{
		{EnrollmentID: "enr-1", Updates: []ledger.MarkUpdate{{ComponentCode: "0101", Marks: fp(10)}}},
		{EnrollmentID: "enr-2", Updates: []ledger.MarkUpdate{{ComponentCode: "0101", Marks: fp(11)}}},
		{EnrollmentID: "enr-3", Updates: []ledger.MarkUpdate{{ComponentCode: "0101", Marks: fp(12)}}},
		{EnrollmentID: "enr-4", Updates: []ledger.MarkUpdate{{ComponentCode: "0101", Marks: fp(13)}}},
	}
	fail := map[string]error{
		"enr-2": clerr.Remote(409, "marks conflict with published result"),
		"enr-3": clerr.ErrExamLocked,
	}

	var order []string
	var progress []Progress
	save := func(_ context.Context, enrollmentID string, _ []ledger.MarkUpdate) error {
		order = append(order, enrollmentID)
		return fail[enrollmentID]
	}

	res, err := RunBatch(context.Background(), units, save, func(p Progress) {
		progress = append(progress, p)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalProcessed != 4 || res.Succeeded != 2 || len(res.Failed) != 2 {
		t.Fatalf("result: %+v", res)
	}
	if res.Failed[0].EnrollmentID != "enr-2" || res.Failed[0].Reason != "marks conflict with published result" {
		t.Errorf("failed[0]: %+v", res.Failed[0])
	}
	if res.Failed[1].EnrollmentID != "enr-3" || res.Failed[1].Reason != "exam locked" {
		t.Errorf("failed[1]: %+v", res.Failed[1])
	}

	want := []string{"enr-1", "enr-2", "enr-3", "enr-4"}
	for i, w := range want {
		if order[i] != w {
			t.Fatalf("processing order %v, want %v", order, want)
		}
	}
	// Progress is monotonic and advances after every unit regardless of outcome.
	if len(progress) != 4 {
		t.Fatalf("expected 4 progress ticks, got %d", len(progress))
	}
	for i, p := range progress {
		if p.Done != i+1 || p.Total != 4 {
			t.Errorf("progress[%d] = %+v", i, p)
		}
	}
}

func TestRunBatchCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var units []Unit
	for i := 0; i < 5; i++ {
		units = append(units, Unit{EnrollmentID: fmt.Sprintf("enr-%d", i+1)})
	}
	calls := 0
	save := func(_ context.Context, _ string, _ []ledger.MarkUpdate) error {
		calls++
		if calls == 2 {
			cancel() // the in-flight unit still completes
		}
		return nil
	}

	res, err := RunBatch(ctx, units, save, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected no dispatch after cancellation, got %d calls", calls)
	}
	if res.TotalProcessed != 2 || res.Succeeded != 2 {
		t.Fatalf("partial result: %+v", res)
	}
}

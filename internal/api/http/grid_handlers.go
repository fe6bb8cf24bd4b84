package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/classledger/classledger/internal/batch"
	"github.com/classledger/classledger/internal/component"
	"github.com/classledger/classledger/internal/ledger"
	"github.com/classledger/classledger/internal/store"
)

// loadGrid plans the grid for the exam's class (optionally one section):
// the column layout in catalog order plus every cell seeded from persisted
// marks.
func loadGrid(r *http.Request, st store.Store, svc *ledger.Service) (batch.Grid, error) {
	examID := chi.URLParam(r, "examID")
	exam, err := st.GetExam(r.Context(), examID)
	if err != nil {
		return batch.Grid{}, err
	}
	groups, err := st.Catalog(r.Context(), examID)
	if err != nil {
		return batch.Grid{}, err
	}
	enrollments, err := st.ListEnrollments(r.Context(), exam.AcademicYear, exam.Class, r.URL.Query().Get("section"))
	if err != nil {
		return batch.Grid{}, err
	}
	ledgers := make(map[string][]ledger.Entry, len(enrollments))
	for _, en := range enrollments {
		entries, err := svc.Load(r.Context(), en.ID, examID)
		if err != nil {
			return batch.Grid{}, err
		}
		ledgers[en.ID] = entries
	}
	return batch.PlanGrid(enrollments, component.Flatten(groups), ledgers), nil
}

// GET /exams/{examID}/grid?section=A
func PlanGridHandler(st store.Store, svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		grid, err := loadGrid(r, st, svc)
		if err != nil {
			writeError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(grid)
	}
}

type batchSaveReq struct {
	Cells []batch.Cell `json:"cells"`
}

type batchSaveResp struct {
	batch.Result
	Skipped []batch.Cell `json:"skipped,omitempty"`
}

// POST /exams/{examID}/grid/save
// Takes the edited cells, replans the grid server-side and diffs the two,
// so only marks within each column's full-marks range ever reach the
// store; out-of-range cells come back in the skipped list. Units save one
// enrollment at a time, strictly sequentially; a failing unit is reported
// in the result and never aborts the rest of the batch.
func BatchSaveHandler(st store.Store, svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID := chi.URLParam(r, "examID")
		var req batchSaveReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if len(req.Cells) == 0 {
			http.Error(w, "no cells to save", http.StatusBadRequest)
			return
		}
		grid, err := loadGrid(r, st, svc)
		if err != nil {
			writeError(w, err)
			return
		}
		units, skipped := grid.BuildUnits(req.Cells)

		save := func(ctx context.Context, enrollmentID string, updates []ledger.MarkUpdate) error {
			return svc.SaveUpdates(ctx, enrollmentID, examID, updates)
		}
		res, err := batch.RunBatch(r.Context(), units, save, func(p batch.Progress) {
			log.Printf("grid save exam=%s progress %d/%d", examID, p.Done, p.Total)
		})
		if err != nil {
			// Client went away mid-batch; the partial result is dropped.
			log.Printf("grid save exam=%s aborted after %d units: %v", examID, res.TotalProcessed, err)
			return
		}
		_ = json.NewEncoder(w).Encode(batchSaveResp{Result: res, Skipped: skipped})
	}
}

package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/classledger/classledger/internal/ledger"
)

// GET /enrollments/{enrollmentID}/exams/{examID}/ledger
func GetLedgerHandler(svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := svc.Load(r.Context(), chi.URLParam(r, "enrollmentID"), chi.URLParam(r, "examID"))
		if err != nil {
			writeError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(entries)
	}
}

type markEdit struct {
	ComponentCode string           `json:"component_code"`
	Marks         *json.RawMessage `json:"marks"`
}

type saveMarksReq struct {
	Entries []markEdit `json:"entries"`
}

// PUT /enrollments/{enrollmentID}/exams/{examID}/marks
// Accepts edits against the current ledger and persists only the diff. A
// null or missing marks value clears the score; string values are kept as
// typed so out-of-range input is reported instead of silently dropped.
func SaveMarksHandler(svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		enrollmentID := chi.URLParam(r, "enrollmentID")
		examID := chi.URLParam(r, "examID")

		var req saveMarksReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}

		current, err := svc.Load(r.Context(), enrollmentID, examID)
		if err != nil {
			writeError(w, err)
			return
		}
		edited := applyEdits(current, req.Entries)

		res, err := svc.Save(r.Context(), enrollmentID, examID, current, edited)
		if err != nil {
			writeError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(res)
	}
}

// applyEdits lays the requested edits over a copy of the fresh ledger;
// edits for unknown components are ignored.
func applyEdits(current []ledger.Entry, edits []markEdit) []ledger.Entry {
	edited := make([]ledger.Entry, len(current))
	copy(edited, current)
	index := make(map[string]int, len(edited))
	for i, e := range edited {
		index[e.ComponentCode] = i
	}
	for _, ed := range edits {
		i, ok := index[ed.ComponentCode]
		if !ok {
			continue
		}
		ledger.SetMark(&edited[i], editText(ed.Marks))
	}
	return edited
}

func editText(raw *json.RawMessage) string {
	if raw == nil || string(*raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(*raw, &s); err == nil {
		return s
	}
	return string(*raw) // a bare JSON number
}

package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/classledger/classledger/internal/ledger"
	"github.com/classledger/classledger/internal/store"
)

// POST /enrollments
func CreateEnrollmentHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var en ledger.Enrollment
		if err := json.NewDecoder(r.Body).Decode(&en); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(en.StudentName) == "" {
			http.Error(w, "student_name required", http.StatusBadRequest)
			return
		}
		created, err := st.PutEnrollment(r.Context(), en)
		if err != nil {
			writeError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(created)
	}
}

// GET /enrollments?year=2082&class=10&section=A
func ListEnrollmentsHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		year, class := q.Get("year"), q.Get("class")
		if year == "" || class == "" {
			http.Error(w, "year and class required", http.StatusBadRequest)
			return
		}
		out, err := st.ListEnrollments(r.Context(), year, class, q.Get("section"))
		if err != nil {
			writeError(w, err)
			return
		}
		if out == nil {
			out = []ledger.Enrollment{}
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

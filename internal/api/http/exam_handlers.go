package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/classledger/classledger/internal/component"
	"github.com/classledger/classledger/internal/store"
)

type createExamReq struct {
	Title        string            `json:"title"`
	AcademicYear string            `json:"academic_year"`
	Class        string            `json:"class"`
	Catalog      []component.Group `json:"catalog"`
}

// POST /exams
func CreateExamHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createExamReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Title) == "" {
			http.Error(w, "title required", http.StatusBadRequest)
			return
		}
		e, err := st.PutExam(r.Context(), store.Exam{
			Title:        req.Title,
			AcademicYear: req.AcademicYear,
			Class:        req.Class,
		}, req.Catalog)
		if err != nil {
			writeError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(e)
	}
}

// GET /exams/{examID}/components
func GetComponentsHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID := chi.URLParam(r, "examID")
		groups, err := st.Catalog(r.Context(), examID)
		if err != nil {
			writeError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(component.Flatten(groups))
	}
}

// POST /exams/{examID}/preset
// Validates the preset, applies it over the exam's flattened catalog and
// persists the resulting component configuration in one call.
func ApplyPresetHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID := chi.URLParam(r, "examID")
		var preset component.Preset
		if err := json.NewDecoder(r.Body).Decode(&preset); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := preset.Validate(); err != nil {
			writeError(w, err)
			return
		}
		groups, err := st.Catalog(r.Context(), examID)
		if err != nil {
			writeError(w, err)
			return
		}
		applied := component.ApplyPreset(component.Flatten(groups), preset)
		updates := component.BuildPersistPayload(applied)
		if err := st.UpdateComponents(r.Context(), examID, updates); err != nil {
			writeError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"applied": len(updates),
			"updates": updates,
		})
	}
}

// PUT /exams/{examID}/components
// Direct administrative edits, same payload shape the preset produces.
func UpdateComponentsHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID := chi.URLParam(r, "examID")
		var updates []component.Update
		if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := st.UpdateComponents(r.Context(), examID, updates); err != nil {
			writeError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]int{"applied": len(updates)})
	}
}

// POST /exams/{examID}/publish
// Publishing locks the exam: component configuration and marks become
// read-only from here on.
func PublishExamHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID := chi.URLParam(r, "examID")
		if err := st.PublishExam(r.Context(), examID); err != nil {
			writeError(w, err)
			return
		}
		e, err := st.GetExam(r.Context(), examID)
		if err != nil {
			writeError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(e)
	}
}

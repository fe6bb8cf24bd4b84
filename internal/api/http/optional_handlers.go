package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/classledger/classledger/internal/optional"
	"github.com/classledger/classledger/internal/store"
)

type optionalGroupsResp struct {
	Groups  []optional.Group  `json:"groups"`
	Choices []optional.Choice `json:"choices"`
}

// GET /enrollments/{enrollmentID}/optional-groups
// Resolves the groups from the year/class catalog, falling back to the
// student's saved choices when the catalog is not configured yet, and
// returns the current choices alongside so clients can seed their draft.
func GetOptionalGroupsHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		enrollmentID := chi.URLParam(r, "enrollmentID")
		en, err := st.GetEnrollment(r.Context(), enrollmentID)
		if err != nil {
			writeError(w, err)
			return
		}
		catalog, err := st.OptionalCatalog(r.Context(), en.AcademicYear, en.Class)
		if err != nil {
			writeError(w, err)
			return
		}
		saved, err := st.OptionalChoices(r.Context(), enrollmentID)
		if err != nil {
			writeError(w, err)
			return
		}
		known := make([]optional.SubjectOption, 0, len(saved))
		for _, c := range saved {
			known = append(known, optional.SubjectOption{ID: c.SubjectID, Name: c.SubjectName})
		}
		_ = json.NewEncoder(w).Encode(optionalGroupsResp{
			Groups:  optional.ResolveGroups(catalog, saved, known),
			Choices: saved,
		})
	}
}

type saveChoicesReq struct {
	Choices []optional.Choice `json:"choices"`
}

// PUT /enrollments/{enrollmentID}/optional-choices
// Rebuilds the draft from the submitted choices and saves it wholesale; an
// empty selection is rejected before the store is touched.
func SaveOptionalChoicesHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		enrollmentID := chi.URLParam(r, "enrollmentID")
		var req saveChoicesReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		draft := optional.InitDraft(nil)
		for _, c := range req.Choices {
			draft.Set(c)
		}
		payload, err := draft.BuildSavePayload()
		if err != nil {
			writeError(w, err)
			return
		}
		if err := st.SaveOptionalChoices(r.Context(), enrollmentID, payload); err != nil {
			writeError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]int{"saved": len(payload)})
	}
}

package http

import (
	"errors"
	"net/http"

	"github.com/classledger/classledger/internal/clerr"
	"github.com/classledger/classledger/internal/store"
)

// writeError maps the core's error taxonomy onto HTTP statuses. ExamLocked
// gets its own status so clients can disable editing instead of retrying.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case clerr.IsPrecondition(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, clerr.ErrExamLocked):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	var ve *clerr.ValidationError
	if errors.As(err, &ve) {
		http.Error(w, ve.Error(), http.StatusUnprocessableEntity)
		return
	}
	var re *clerr.RemoteError
	if errors.As(err, &re) {
		status := re.Status
		if status < 400 {
			status = http.StatusBadGateway
		}
		http.Error(w, re.Error(), status)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

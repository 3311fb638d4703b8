package web

// errors.go maps pipeline errors to HTTP responses.
//
// Every error is logged server-side with its full text and a stable code,
// and the client receives a short message with the same code:
//
//	DS001  dataset not prepared yet          404
//	DS002  refresh already running           409
//	DS003  source data has unexpected shape  502
//	DS004  persisted file cannot be read     500
//	NET001 dataset host unreachable          502
//	NET002 dataset host returned an error    502
//	RUN001 anything else                     500

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/JonMunkholm/titanicprep/internal/dataset"
	"github.com/JonMunkholm/titanicprep/internal/logging"
	"github.com/JonMunkholm/titanicprep/internal/table"
)

var (
	// ErrNotPrepared is returned before the first successful run.
	ErrNotPrepared = errors.New("dataset has not been prepared")

	// ErrRefreshInProgress is returned when a refresh is already running.
	ErrRefreshInProgress = errors.New("refresh already in progress")

	// ErrUnreadableOutput is returned when the persisted file is not valid CSV.
	ErrUnreadableOutput = errors.New("persisted dataset cannot be read")
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type userError struct {
	status  int
	code    string
	message string
}

func mapError(err error) userError {
	var urlErr *url.Error
	switch {
	case errors.Is(err, ErrNotPrepared):
		return userError{http.StatusNotFound, "DS001", "Dataset has not been prepared yet. POST /api/dataset/refresh first."}
	case errors.Is(err, ErrRefreshInProgress):
		return userError{http.StatusConflict, "DS002", "A refresh is already running. Try again shortly."}
	case errors.Is(err, ErrUnreadableOutput):
		return userError{http.StatusInternalServerError, "DS004", "Prepared dataset could not be read. POST /api/dataset/refresh to rebuild it."}
	case errors.Is(err, table.ErrColumnNotFound), errors.Is(err, table.ErrEmptyInput):
		return userError{http.StatusBadGateway, "DS003", "Source data does not have the expected columns."}
	case errors.Is(err, dataset.ErrUnexpectedStatus):
		return userError{http.StatusBadGateway, "NET002", "Dataset host returned an error."}
	case errors.As(err, &urlErr):
		return userError{http.StatusBadGateway, "NET001", "Dataset host could not be reached."}
	default:
		return userError{http.StatusInternalServerError, "RUN001", "Dataset preparation failed."}
	}
}

// respondError logs err with request context and writes its JSON mapping.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	ue := mapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", ue.status,
		"code", ue.code,
		"error", err.Error(),
	)

	writeJSON(w, ue.status, ErrorResponse{Error: ue.message, Code: ue.code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package httputil

import (
	"encoding/json"
	"net/http"

	wberrors "github.com/matzehuels/wrldbldr/pkg/errors"
)

// ErrorBody is the JSON body of an error response.
type ErrorBody struct {
	Error string        `json:"error"`
	Code  wberrors.Code `json:"code,omitempty"`
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes err as an ErrorBody. The status is derived from the
// error code.
func WriteError(w http.ResponseWriter, err error) {
	code := wberrors.GetCode(err)
	WriteJSON(w, StatusFor(code), ErrorBody{
		Error: wberrors.UserMessage(err),
		Code:  code,
	})
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(code wberrors.Code) int {
	switch code {
	case wberrors.ErrCodeInvalidInput,
		wberrors.ErrCodeInvalidFormat,
		wberrors.ErrCodeInvalidBlueprint:
		return http.StatusBadRequest
	case wberrors.ErrCodeInvalidTileSet,
		wberrors.ErrCodePrecondition,
		wberrors.ErrCodeExhausted:
		return http.StatusUnprocessableEntity
	case wberrors.ErrCodeBusy:
		return http.StatusConflict
	case wberrors.ErrCodeCanceled:
		return http.StatusRequestTimeout
	case wberrors.ErrCodeNotFound, wberrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case wberrors.ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	}
	return http.StatusInternalServerError
}

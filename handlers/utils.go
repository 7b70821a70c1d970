package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"pickem-app/logging"
	"pickem-app/services"
)

// maxBodyBytes bounds request bodies; every payload here is a few fields
const maxBodyBytes = 1 << 16

// errorResponse is the body of every non-2xx reply
type errorResponse struct {
	Error string `json:"error"`
	Rule  string `json:"rule,omitempty"`
}

var validate = validator.New()

// writeJSON encodes v as the response body
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := sonic.ConfigStd.Marshal(v)
	if err != nil {
		logging.Errorf("Failed to encode response: %v", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, message, rule string) {
	writeJSON(w, status, errorResponse{Error: message, Rule: rule})
}

// writeServiceError maps the service error taxonomy onto status codes
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusUnprocessableEntity, validationErr.Reason, validationErr.Rule)
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error(), "")
	default:
		logging.Errorf("%s %s failed: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "internal error", "")
	}
}

// decodeBody reads a JSON body into dst and runs its validate tags. It
// writes the error response itself and reports whether decoding succeeded.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := sonic.ConfigStd.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body", "")
		return false
	}
	if err := validate.StructCtx(r.Context(), dst); err != nil {
		writeError(w, http.StatusUnprocessableEntity, describeValidation(err), services.RuleInvalidInput)
		return false
	}
	return true
}

func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Sprintf("field %s failed %s", fe.Field(), fe.Tag())
	}
	return err.Error()
}

// intVar parses a positive integer path variable
func intVar(r *http.Request, name string) (int, error) {
	value, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return value, nil
}

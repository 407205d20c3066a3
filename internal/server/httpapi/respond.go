package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/manishrnl/authservice/internal/common"
	"github.com/manishrnl/authservice/internal/server/validation"
)

const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("malformed request body")

type errorResponse struct {
	Error string `json:"error"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %s", errBadRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		// Internal details stay in the logs.
		message = "internal server error"
	}
	writeJSON(w, status, errorResponse{Error: message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, validation.ErrInvalidEmail),
		errors.Is(err, validation.ErrInvalidPassword):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, common.ErrAuthenticationFailed),
		errors.Is(err, common.ErrRefreshTokenExpired),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrInvalidSignature),
		errors.Is(err, common.ErrTokenMalformed),
		errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrRefreshTokenNotFound),
		errors.Is(err, common.ErrAccountNotFound),
		errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

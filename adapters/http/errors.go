package authhttp

import (
	"encoding/json"
	"errors"
	"net/http"

	core "github.com/gharkaam/authcore/core"
)

type errResp struct {
	Error       string `json:"error"`
	Message     string `json:"message,omitempty"`
	WaitSeconds int    `json:"wait_seconds,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func sendErr(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errResp{Error: code, Message: message})
}

func badRequest(w http.ResponseWriter, code, message string) {
	sendErr(w, http.StatusBadRequest, code, message)
}
func unauthorized(w http.ResponseWriter) {
	sendErr(w, http.StatusUnauthorized, "unauthenticated", "")
}
func serverErr(w http.ResponseWriter) {
	sendErr(w, http.StatusInternalServerError, "internal_error", "")
}
func notFound(w http.ResponseWriter, code, message string) {
	sendErr(w, http.StatusNotFound, code, message)
}

// writeCoreError maps the core taxonomy onto stable HTTP shapes. Unknown
// errors become an opaque 500.
func writeCoreError(w http.ResponseWriter, err error) {
	var formatErr *core.PhoneFormatError
	if errors.As(err, &formatErr) {
		badRequest(w, "invalid_phone", formatErr.Reason)
		return
	}
	var rlErr *core.RateLimitError
	if errors.As(err, &rlErr) {
		writeJSON(w, http.StatusTooManyRequests, errResp{
			Error:       "rate_limited",
			WaitSeconds: rlErr.WaitSeconds,
		})
		return
	}
	switch {
	case errors.Is(err, core.ErrInvalidCodeFormat):
		badRequest(w, "invalid_code", err.Error())
	case errors.Is(err, core.ErrAlreadyRegistered):
		sendErr(w, http.StatusConflict, "already_registered", err.Error())
	case errors.Is(err, core.ErrNotRegistered):
		notFound(w, "not_registered", err.Error())
	case errors.Is(err, core.ErrNoChallengeFound):
		badRequest(w, "no_challenge", err.Error())
	case errors.Is(err, core.ErrCodeExpired):
		badRequest(w, "code_expired", err.Error())
	case errors.Is(err, core.ErrCodeMismatch):
		badRequest(w, "code_mismatch", err.Error())
	case errors.Is(err, core.ErrUnauthenticated):
		unauthorized(w)
	default:
		serverErr(w)
	}
}

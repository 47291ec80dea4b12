package authhttp

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	core "github.com/gharkaam/authcore/core"
)

func (s *Service) handlePhoneCheckPOST(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid_request", "")
		return
	}

	status, err := s.svc.CheckPhone(r.Context(), strings.TrimSpace(req.Phone))
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"exists":              status.Exists,
		"is_profile_complete": status.IsProfileComplete,
	})
}

func (s *Service) handleOTPRequestPOST(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone  string `json:"phone"`
		Intent string `json:"intent"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid_request", "")
		return
	}
	intent := core.Intent(strings.TrimSpace(req.Intent))
	if intent != core.IntentSignup && intent != core.IntentSignin {
		badRequest(w, "invalid_intent", "intent must be signup or signin")
		return
	}

	if err := s.svc.RequestOTP(r.Context(), strings.TrimSpace(req.Phone), intent); err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"accepted": true})
}

func (s *Service) handleOTPVerifyPOST(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone  string `json:"phone"`
		Code   string `json:"code"`
		Intent string `json:"intent"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid_request", "")
		return
	}
	intent := core.Intent(strings.TrimSpace(req.Intent))
	if intent != core.IntentSignup && intent != core.IntentSignin {
		badRequest(w, "invalid_intent", "intent must be signup or signin")
		return
	}

	sess, err := s.svc.VerifyOTP(r.Context(), strings.TrimSpace(req.Phone), strings.TrimSpace(req.Code), intent)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	s.log.Info("session issued",
		zap.String("user_id", sess.UserID), zap.String("intent", string(intent)))
	writeJSON(w, http.StatusOK, map[string]any{
		"token": sess.Token,
		"user": map[string]any{
			"id":                  sess.UserID,
			"phone":               sess.Phone,
			"is_profile_complete": sess.IsProfileComplete,
		},
	})
}

func (s *Service) handleOTPResendPOST(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid_request", "")
		return
	}

	if err := s.svc.ResendOTP(r.Context(), strings.TrimSpace(req.Phone)); err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"accepted": true})
}

func (s *Service) handleMeGET(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		unauthorized(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":             claims.UserID,
		"phone":               claims.Phone,
		"auth_method":         claims.AuthMethod,
		"is_profile_complete": claims.IsProfileComplete,
	})
}

// handleDevOTPGET exposes the latest issued code outside production, so flows
// stay testable without a live gateway. Never mounted when Env=production.
func (s *Service) handleDevOTPGET(w http.ResponseWriter, r *http.Request) {
	phone := strings.TrimSpace(r.URL.Query().Get("phone"))
	code, ok := s.svc.PeekCode(r.Context(), phone)
	if !ok {
		notFound(w, "no_code", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"code": code})
}

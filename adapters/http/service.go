// Package authhttp mounts the auth core as a JSON API.
package authhttp

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	core "github.com/gharkaam/authcore/core"
)

// Service wraps core.Service with HTTP mounting helpers.
type Service struct {
	svc *core.Service
	log *zap.Logger
}

func NewService(svc *core.Service) *Service {
	return &Service{svc: svc, log: zap.NewNop()}
}

func (s *Service) WithLogger(log *zap.Logger) *Service {
	if log != nil {
		s.log = log
	}
	return s
}

// Core exposes the wrapped core service.
func (s *Service) Core() *core.Service { return s.svc }

// Routes returns the router for mounting under the host's prefix of choice.
func (s *Service) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/phone/check", s.handlePhoneCheckPOST)
	r.Post("/otp/request", s.handleOTPRequestPOST)
	r.Post("/otp/verify", s.handleOTPVerifyPOST)
	r.Post("/otp/resend", s.handleOTPResendPOST)

	r.Group(func(pr chi.Router) {
		pr.Use(s.Required)
		pr.Get("/me", s.handleMeGET)
	})

	if !s.svc.Config().IsProduction() {
		r.Get("/dev/otp", s.handleDevOTPGET)
	}

	return r
}

var errBadBody = errors.New("invalid request body")

func decodeJSON(r *http.Request, dst any) error {
	defer func() { _, _ = io.Copy(io.Discard, r.Body) }()
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<16))
	if err := dec.Decode(dst); err != nil {
		return errBadBody
	}
	return nil
}

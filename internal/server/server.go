// Package server exposes the conversion controller over HTTP.
//
// The two conversion endpoints answer 503 until the converter is ready and
// the gate binds its handlers to the server.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/f3rmion/tabconv/internal/dispatch"
	"github.com/f3rmion/tabconv/internal/logging"
	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
)

// maxBodyBytes bounds the size of a conversion request.
const maxBodyBytes = 1 << 20

// ConvertRequest is the body of POST /v1/latex and POST /v1/csv. The
// numeric fields are raw text and are parsed the same way the interactive
// fields are.
type ConvertRequest struct {
	Input     string `json:"input"`
	RoundMode string `json:"round_mode,omitempty"`
	Decimals  string `json:"decimals,omitempty"`
	SigFigs   string `json:"sig_figs,omitempty"`
}

// ConvertResponse is returned for a completed conversion.
type ConvertResponse struct {
	Format string `json:"format"`
	Output string `json:"output"`
}

type errorResponse struct {
	Code int    `json:"code"`
	Text string `json:"text"`
}

type handlers struct {
	latex dispatch.Handler
	csv   dispatch.Handler
}

// Server routes HTTP requests to the bound conversion handlers.
type Server struct {
	router   *httprouter.Router
	logger   logrus.FieldLogger
	handlers atomic.Pointer[handlers]
}

// New creates a server with no handlers bound.
func New(logger logrus.FieldLogger) *Server {
	s := &Server{
		router: httprouter.New(),
		logger: logger,
	}

	s.router.POST("/v1/latex", s.convert(dispatch.FormatLaTeX))
	s.router.POST("/v1/csv", s.convert(dispatch.FormatCSV))
	s.router.GET("/healthz", s.health)

	return s
}

// Bind attaches the conversion handlers. It satisfies dispatch.Registrar.
func (s *Server) Bind(latex, csv dispatch.Handler) {
	s.handlers.Store(&handlers{latex: latex, csv: csv})
}

// Handler returns the root handler with request logging applied.
func (s *Server) Handler() http.Handler {
	return NewRequestLoggingMiddleware(s.logger)(s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]bool{"ready": s.handlers.Load() != nil}, s.logger)
}

func (s *Server) convert(f dispatch.Format) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		h := s.handlers.Load()
		if h == nil {
			writeError(w, http.StatusServiceUnavailable, "converter not ready", s.logger)
			return
		}

		var req ConvertRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err := dec.Decode(&req); err != nil {
			logging.FromContext(r.Context()).WithError(err).Debug("rejecting request body")
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "request body too large", s.logger)
				return
			}
			writeError(w, http.StatusBadRequest, "invalid JSON body", s.logger)
			return
		}

		if err := dispatch.CheckParam(req.RoundMode, req.Decimals, req.SigFigs); err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), s.logger)
			return
		}

		page := newRequestPage(req)
		switch f {
		case dispatch.FormatLaTeX:
			h.latex(page)
		case dispatch.FormatCSV:
			h.csv(page)
		}

		out, ok := page.outputs[f]
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, ConvertResponse{Format: f.String(), Output: out}, s.logger)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any, logger logrus.FieldLogger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithError(err).Error("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, text string, logger logrus.FieldLogger) {
	writeJSON(w, status, errorResponse{Code: status, Text: text}, logger)
}

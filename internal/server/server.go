package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/flow"
	"github.com/sirupsen/logrus"

	"lcanotice/internal/lca"
)

const maxRecordBytes = 1 << 20

type Config struct {
	Port            uint
	ReadTimeoutSec  uint
	WriteTimeoutSec uint
}

// Service exposes the LCA exporter over HTTP.
type Service struct {
	logger  *logrus.Logger
	options []lca.Option
	handler http.Handler
	server  *http.Server
}

func New(config Config, logger *logrus.Logger, options ...lca.Option) *Service {
	mux := flow.New()

	s := &Service{
		logger:  logger,
		options: options,
		handler: mux,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.Port),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)
	return s
}

func (s *Service) Handler() http.Handler {
	return s.handler
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)
	r.HandleFunc("/lca/validate", s.handleValidate, http.MethodPost)
	r.HandleFunc("/lca/preview", s.handlePreview, http.MethodPost)
	r.HandleFunc("/lca/pdf", s.handlePDF, http.MethodPost)
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

func (s *Service) handleValidate(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.decodeRecord(w, r)
	if !ok {
		return
	}

	if err := lca.Validate(rec); err != nil {
		s.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"valid":   false,
			"error":   err.Error(),
			"missing": lca.MissingFields(rec),
		})
		return
	}
	if !lca.DryRun(rec, s.options...) {
		s.writeError(w, http.StatusInternalServerError, "document generation failed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"valid": true})
}

func (s *Service) handlePreview(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.decodeRecord(w, r)
	if !ok {
		return
	}

	url, err := lca.Preview(rec, s.options...)
	if err != nil {
		s.writeLCAError(w, rec, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"filename": lca.Filename(rec),
		"dataUrl":  url,
	})
}

func (s *Service) handlePDF(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.decodeRecord(w, r)
	if !ok {
		return
	}

	data, filename, err := lca.Render(rec, s.options...)
	if err != nil {
		s.writeLCAError(w, rec, err)
		return
	}

	writePDFHeaders(w, filename)
	if _, err := w.Write(data); err != nil {
		s.logger.WithError(err).Error("writing PDF to response")
	}
}

// writePDFHeaders sends the headers for an inline PDF. Headers are frozen afterwards.
func writePDFHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
}

func (s *Service) decodeRecord(w http.ResponseWriter, r *http.Request) (lca.Record, bool) {
	var rec lca.Record
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		s.writeError(w, http.StatusUnsupportedMediaType, "expected application/json")
		return rec, false
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxRecordBytes))
	if err := dec.Decode(&rec); err != nil {
		s.logger.WithError(err).Debug("failed to decode record")
		s.writeError(w, http.StatusBadRequest, "invalid record: "+err.Error())
		return rec, false
	}
	return rec, true
}

func (s *Service) writeLCAError(w http.ResponseWriter, rec lca.Record, err error) {
	status := http.StatusInternalServerError
	var lerr *lca.Error
	if errors.As(err, &lerr) && (lerr.Kind == lca.KindMissingField || lerr.Kind == lca.KindInvalid) {
		status = http.StatusUnprocessableEntity
	}

	entry := s.logger.WithError(err).WithField("case", rec.CaseNumber)
	if status == http.StatusInternalServerError {
		entry.Error("failed to generate LCA document")
	} else {
		entry.Info("rejected LCA record")
	}
	s.writeError(w, status, err.Error())
}

func (s *Service) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

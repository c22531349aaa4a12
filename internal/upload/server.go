// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package upload is the document upload boundary. It accepts a report and
// its order identifier, stores the file, records a receipt, and returns a
// reference locator. Each failure mode answers with its own message.
package upload

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pdiddy/propverify/internal/httputil"
	"github.com/pdiddy/propverify/pkg/types"
)

// multipartMemory is how much of a multipart body is buffered in memory
// before spilling to temporary files.
const multipartMemory = 8 << 20

// Server handles upload requests.
type Server struct {
	cfg      types.ServerConfig
	ledger   *Ledger
	metrics  *Metrics
	gatherer prometheus.Gatherer
	logger   *zap.Logger
	clock    func() time.Time
}

// NewServer prepares the storage directory and registers metrics on reg.
func NewServer(cfg types.ServerConfig, ledger *Ledger, reg *prometheus.Registry, logger *zap.Logger) (*Server, error) {
	if ledger == nil {
		return nil, fmt.Errorf("upload server: no ledger")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	if err := os.MkdirAll(cfg.StorageDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = types.DefaultConfig().Server.MaxUploadBytes
	}

	return &Server{
		cfg:      cfg,
		ledger:   ledger,
		metrics:  NewMetrics(reg),
		gatherer: reg,
		logger:   logger.Named("upload"),
		clock:    time.Now,
	}, nil
}

// Routes returns the HTTP handler for the server.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Post("/api/upload", s.handleUpload)
	r.Get("/api/uploads/{orderId}", s.handleReceipts)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, start, outcomeTooLarge, http.StatusRequestEntityTooLarge, types.UploadFailed, err)
			return
		}
		s.fail(w, start, outcomeError, http.StatusInternalServerError, types.UploadFailed, err)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, hdr, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			s.fail(w, start, outcomeMissingFile, http.StatusBadRequest, types.UploadMissingFile, nil)
			return
		}
		s.fail(w, start, outcomeError, http.StatusInternalServerError, types.UploadFailed, err)
		return
	}
	defer file.Close()
	if hdr.Size == 0 {
		s.fail(w, start, outcomeMissingFile, http.StatusBadRequest, types.UploadMissingFile, nil)
		return
	}

	orderID := strings.TrimSpace(r.FormValue("orderId"))
	if orderID == "" {
		s.fail(w, start, outcomeMissingOrderID, http.StatusBadRequest, types.UploadMissingOrderID, nil)
		return
	}

	name := storedName(hdr.Filename, orderID)
	size, sum, err := s.store(name, file)
	if err != nil {
		s.fail(w, start, outcomeError, http.StatusInternalServerError, types.UploadFailed, err)
		return
	}

	receipt := types.UploadReceipt{
		OrderID:    orderID,
		FileName:   name,
		Size:       size,
		SHA256:     sum,
		URL:        s.locator(name),
		ReceivedAt: s.clock(),
	}
	if err := s.ledger.Record(r.Context(), receipt); err != nil {
		s.fail(w, start, outcomeError, http.StatusInternalServerError, types.UploadFailed, err)
		return
	}

	s.metrics.Observe(outcomeStored, size, start)
	s.logger.Info("received file",
		zap.String("order_id", orderID),
		zap.String("file", name),
		zap.Int64("size", size),
	)
	httputil.WriteJSON(w, http.StatusOK, types.UploadAck{
		Message: types.UploadOK,
		OrderID: orderID,
		URL:     receipt.URL,
	})
}

func (s *Server) handleReceipts(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	receipts, err := s.ledger.ForOrder(r.Context(), orderID)
	if err != nil {
		s.logger.Error("listing receipts", zap.String("order_id", orderID), zap.Error(err))
		httputil.WriteMessage(w, http.StatusInternalServerError, types.UploadFailed)
		return
	}
	if len(receipts) == 0 {
		httputil.WriteMessage(w, http.StatusNotFound, "No uploads found.")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, receipts)
}

func (s *Server) fail(w http.ResponseWriter, start time.Time, outcome string, status int, msg string, err error) {
	s.metrics.Observe(outcome, 0, start)
	if err != nil {
		s.logger.Error("upload failed", zap.Error(err))
	}
	httputil.WriteMessage(w, status, msg)
}

// store writes the payload under the storage directory through a temporary
// file so a failed upload never leaves a partial document behind.
func (s *Server) store(name string, src multipart.File) (int64, string, error) {
	tmp, err := os.CreateTemp(s.cfg.StorageDir, ".upload-*")
	if err != nil {
		return 0, "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmp, h), src)
	if err != nil {
		tmp.Close()
		return 0, "", fmt.Errorf("writing upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, "", fmt.Errorf("closing upload: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.cfg.StorageDir, name)); err != nil {
		return 0, "", fmt.Errorf("storing upload: %w", err)
	}
	return n, hex.EncodeToString(h.Sum(nil)), nil
}

func (s *Server) locator(name string) string {
	return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + url.PathEscape(name)
}

// storedName keeps the client's base file name, falling back to the order's
// report name when none was given.
func storedName(filename, orderID string) string {
	name := filepath.Base(filepath.Clean("/" + filename))
	if name == "/" || name == "." || strings.HasPrefix(name, ".") {
		return filepath.Base(filepath.Clean("/"+orderID)) + "-report.pdf"
	}
	return name
}

// Package server exposes chat export analysis over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ccollicutt/chatstat/internal/logging"
	"github.com/ccollicutt/chatstat/pkg/analyzer"
	"github.com/ccollicutt/chatstat/pkg/config"
	"github.com/ccollicutt/chatstat/pkg/detector"
	"github.com/ccollicutt/chatstat/pkg/lexicon"
	"github.com/ccollicutt/chatstat/pkg/output"
	"github.com/ccollicutt/chatstat/pkg/parser"
)

// uploadField is the multipart form field holding the export.
const uploadField = "file"

// defaultSource names a raw-body upload in reports.
const defaultSource = "upload"

// headerReportID echoes the report ID of an analysis response.
const headerReportID = "X-Report-ID"

// Server serves the analysis API. Each request parses its own table;
// nothing is shared between requests except the read-only lexicon.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	lex    *lexicon.Lexicon
	logger zerolog.Logger
}

// New creates a server for cfg. A nil lex uses the built-in lexicon.
func New(cfg *config.Config, lex *lexicon.Lexicon, logger zerolog.Logger) *Server {
	if lex == nil {
		lex = lexicon.Default()
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(logging.HTTPMiddleware(logger))

	s := &Server{
		router: router,
		cfg:    cfg,
		lex:    lex,
		logger: logger,
	}

	router.Get("/health", s.health)
	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", s.analyze)
		r.Post("/authors", s.authors)
		r.Post("/detect", s.detect)
	})

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address until ctx is canceled, then shuts
// down gracefully within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", srv.Addr).Msg("API server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info().Msg("API server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	topN := s.cfg.TopN
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("top: must be a non-negative integer, got %q", v))
			return
		}
		topN = n
	}
	author := r.URL.Query().Get("author")

	table, source, ok := s.parseUpload(w, r)
	if !ok {
		return
	}

	opts := append(s.cfg.AnalyzerOptions(s.lex), analyzer.WithTopN(topN), analyzer.WithAuthor(author))
	a, err := analyzer.NewAnalyzer(opts...)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := a.Analyze(r.Context(), table)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("analyzing upload: %w", err))
		return
	}

	report := output.NewReport(result, source, "")

	l := logging.Ctx(r.Context())
	l.Info().
		Str(logging.FieldReportID, report.ID).
		Str(logging.FieldAuthor, report.Summary.Author).
		Int(logging.FieldRecords, report.Metadata.Records).
		Int(logging.FieldIssues, report.Summary.ParseIssues).
		Msg("analysis complete")

	w.Header().Set(headerReportID, report.ID)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) authors(w http.ResponseWriter, r *http.Request) {
	table, _, ok := s.parseUpload(w, r)
	if !ok {
		return
	}

	a, err := analyzer.NewAnalyzer(s.cfg.AnalyzerOptions(s.lex)...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, a.Authors(table))
}

// detectResponse is the JSON shape of a detection result.
type detectResponse struct {
	Format            string         `json:"format,omitempty"`
	Supported         bool           `json:"supported"`
	Confidence        float64        `json:"confidence"`
	SampledLines      int            `json:"sampled_lines"`
	ParsedLines       int            `json:"parsed_lines"`
	PreambleLines     int            `json:"preamble_lines"`
	InvalidTimestamps int            `json:"invalid_timestamps"`
	DayFirst          bool           `json:"day_first"`
	Separators        map[string]int `json:"separators"`
	Note              string         `json:"note,omitempty"`
}

func (s *Server) detect(w http.ResponseWriter, r *http.Request) {
	body, _, err := s.openUpload(w, r)
	if err != nil {
		writeUploadError(w, err)
		return
	}
	defer body.Close()

	d := detector.New(detector.WithYearBase(s.cfg.YearBase))
	result, err := d.DetectFromReader(r.Context(), body)
	if err != nil {
		writeUploadError(w, err)
		return
	}

	resp := detectResponse{
		Supported:         result.Supported(),
		SampledLines:      result.SampledLines,
		ParsedLines:       result.ParsedLines,
		PreambleLines:     result.PreambleLines,
		InvalidTimestamps: result.InvalidTimestamps,
		DayFirst:          result.DayFirst,
		Separators:        result.Separators,
		Note:              result.AmbiguityNote,
	}
	if best := result.BestMatch(); best != nil {
		resp.Format = best.Format.Name
		resp.Confidence = best.Confidence
	}
	writeJSON(w, http.StatusOK, resp)
}

// parseUpload reads the request export into a table. On failure it writes
// the error response and returns false.
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request) (*parser.Table, string, bool) {
	body, source, err := s.openUpload(w, r)
	if err != nil {
		writeUploadError(w, err)
		return nil, "", false
	}
	defer body.Close()

	table, err := parser.New(s.cfg.ParserOptions()).ParseReader(r.Context(), body)
	if err != nil {
		writeUploadError(w, err)
		return nil, "", false
	}

	l := logging.Ctx(r.Context())
	l.Debug().
		Str(logging.FieldSource, source).
		Int(logging.FieldSegments, table.Segments()).
		Int(logging.FieldRecords, table.Len()).
		Msg("upload parsed")

	return table, source, true
}

// openUpload returns the export from a multipart "file" field, or the raw
// body for any other content type. The body is capped at max_upload_bytes.
func (s *Server) openUpload(w http.ResponseWriter, r *http.Request) (io.ReadCloser, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, defaultSource, nil
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return nil, "", fmt.Errorf("reading multipart field %q: %w", uploadField, err)
	}
	return file, header.Filename, nil
}

func writeUploadError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d bytes", maxErr.Limit))
	case errors.Is(err, parser.ErrTimestamp):
		writeError(w, http.StatusUnprocessableEntity, err)
	default:
		writeError(w, http.StatusBadRequest, err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

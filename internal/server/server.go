// Package server exposes a file store over the file-storage and search-index
// HTTP contract consumed by package remote.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rcliao/draftpad/internal/model"
	"github.com/rcliao/draftpad/internal/store"
)

// Backend is the subset of the store the server needs.
type Backend interface {
	Get(ctx context.Context, p store.GetParams) ([]model.StoredFile, error)
	Put(ctx context.Context, p store.PutParams) (*model.StoredFile, error)
	Search(ctx context.Context, p store.SearchParams) ([]store.SearchResult, error)
}

// DefaultSearchLimit caps results when the request does not set limit.
const DefaultSearchLimit = 20

// Server serves files and search results.
type Server struct {
	backend Backend
	log     *slog.Logger
	mux     *http.ServeMux
}

// New builds a Server. A nil logger discards output.
func New(backend Backend, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{backend: backend, log: log, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /api/files/{category}/{filename}", s.handleGetFile)
	s.mux.HandleFunc("PUT /api/files/{category}/{filename}", s.handlePutFile)
	s.mux.HandleFunc("GET /api/v1/search", s.handleSearch)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.log.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "took", time.Since(start))
}

// ListenAndServe runs until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type fileBody struct {
	Content      string     `json:"content"`
	Filename     string     `json:"filename"`
	LastModified *time.Time `json:"lastModified,omitempty"`
	Version      int        `json:"version,omitempty"`
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	category, filename := r.PathValue("category"), r.PathValue("filename")
	files, err := s.backend.Get(r.Context(), store.GetParams{Category: category, Filename: filename})
	if errors.Is(err, model.ErrNotFound) {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	if err != nil {
		s.log.Warn("get file", "category", category, "filename", filename, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load file")
		return
	}

	f := files[0]
	writeJSON(w, http.StatusOK, fileBody{
		Content:      f.Content,
		Filename:     f.Filename,
		LastModified: &f.LastModified,
		Version:      f.Version,
	})
}

func (s *Server) handlePutFile(w http.ResponseWriter, r *http.Request) {
	category, filename := r.PathValue("category"), r.PathValue("filename")

	var body fileBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 8<<20)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	// The path names the file; the body filename is informational.
	f, err := s.backend.Put(r.Context(), store.PutParams{Category: category, Filename: filename, Content: body.Content})
	if err != nil {
		s.log.Warn("put file", "category", category, "filename", filename, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to save file")
		return
	}

	s.log.Info("saved", "path", category+"/"+filename, "version", f.Version)
	writeJSON(w, http.StatusOK, fileBody{
		Content:      f.Content,
		Filename:     f.Filename,
		LastModified: &f.LastModified,
		Version:      f.Version,
	})
}

type searchBody struct {
	Results []model.SearchResult `json:"results"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusOK, searchBody{Results: []model.SearchResult{}})
		return
	}

	results, err := s.backend.Search(r.Context(), store.SearchParams{
		Category: r.URL.Query().Get("category"),
		Query:    q,
		Limit:    DefaultSearchLimit,
	})
	if err != nil {
		s.log.Warn("search", "q", q, "err", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	out := searchBody{Results: make([]model.SearchResult, 0, len(results))}
	for _, res := range results {
		out.Results = append(out.Results, res.Hit(q))
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

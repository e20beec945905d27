// Package server serves the browser editor: an embedded single-page UI and
// a small JSON API over a shell.Shell.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gaurav-prasanna/mdpreview/core"
	"github.com/gaurav-prasanna/mdpreview/core/export"
	"github.com/gaurav-prasanna/mdpreview/core/extract"
	"github.com/gaurav-prasanna/mdpreview/core/normalize"
	"github.com/gaurav-prasanna/mdpreview/core/render"
	"github.com/gaurav-prasanna/mdpreview/core/shell"
)

//go:embed assets
var assets embed.FS

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 8 << 20

// Config configures a Server.
type Config struct {
	// Shell is the editor state. Required.
	Shell *shell.Shell

	// Logger is the structured logger. Required.
	Logger *slog.Logger

	// Extractor and Normalizer drive HTML import. Defaults are the
	// goquery extractor and the html-to-markdown normalizer.
	Extractor  core.Extractor
	Normalizer core.Normalizer

	// ShutdownTimeout bounds graceful shutdown. Defaults to 10 seconds.
	ShutdownTimeout time.Duration
}

// Server is the editor's HTTP server.
type Server struct {
	shell           *shell.Shell
	logger          *slog.Logger
	extractor       core.Extractor
	normalizer      core.Normalizer
	pdf             core.Exporter
	shutdownTimeout time.Duration
	handler         http.Handler

	ready chan struct{}
	addr  net.Addr
}

// New creates a Server. It panics if a required field is missing.
func New(config Config) *Server {
	if config.Shell == nil {
		panic("server: Shell is required")
	}
	if config.Logger == nil {
		panic("server: Logger is required")
	}
	s := &Server{
		shell:           config.Shell,
		logger:          config.Logger,
		extractor:       config.Extractor,
		normalizer:      config.Normalizer,
		pdf:             export.NewPDFExporter(),
		shutdownTimeout: config.ShutdownTimeout,
		ready:           make(chan struct{}),
	}
	if s.extractor == nil {
		s.extractor = extract.New()
	}
	if s.normalizer == nil {
		s.normalizer = normalize.New()
	}
	if s.shutdownTimeout == 0 {
		s.shutdownTimeout = 10 * time.Second
	}
	s.handler = s.logRequests(s.routes())
	return s
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address. Only valid after Ready is closed.
func (s *Server) Addr() net.Addr {
	return s.addr
}

// Serve listens on address and serves until ctx is cancelled, then drains
// in-flight requests for up to the shutdown timeout.
func (s *Server) Serve(ctx context.Context, address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", address, err)
	}
	s.addr = listener.Addr()
	close(s.ready)

	server := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.logger.Info("editor listening", "url", "http://"+s.addr.String())

	serveDone := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveDone <- err
		}
		close(serveDone)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("editor shutting down")
	case err := <-serveDone:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.logger.Info("editor stopped")
	return nil
}

func (s *Server) routes() http.Handler {
	static, err := fs.Sub(assets, "assets")
	if err != nil {
		panic(err)
	}
	files := http.FileServerFS(static)

	mux := http.NewServeMux()
	mux.Handle("GET /", files)
	mux.HandleFunc("GET /preview.css", s.handleStylesheet)

	mux.HandleFunc("GET /api/document", s.handleGetDocument)
	mux.HandleFunc("PUT /api/document", s.handlePutDocument)
	mux.HandleFunc("POST /api/render", s.handleRender)
	mux.HandleFunc("GET /api/preview", s.handlePreview)
	mux.HandleFunc("GET /api/tree", s.handleTree)
	mux.HandleFunc("POST /api/theme", s.handleTheme)
	mux.HandleFunc("POST /api/reset", s.handleReset)
	mux.HandleFunc("POST /api/copy", s.handleCopy)
	mux.HandleFunc("GET /api/download/source", s.handleDownloadSource)
	mux.HandleFunc("GET /api/download/document", s.handleDownloadDocument)
	mux.HandleFunc("POST /api/import", s.handleImport)
	mux.HandleFunc("GET /api/layout", s.handleGetLayout)
	mux.HandleFunc("PUT /api/layout", s.handlePutLayout)
	return mux
}

// documentResponse is the editor state sent to the page.
type documentResponse struct {
	Text   string       `json:"text"`
	Theme  core.Theme   `json:"theme"`
	Copied bool         `json:"copied"`
	Layout shell.Layout `json:"layout"`
}

type previewResponse struct {
	HTML  string     `json:"html"`
	Theme core.Theme `json:"theme"`
}

type errorResponse struct {
	Error string `json:"error"`
	// Code lets the page choose how to surface the failure.
	Code string `json:"code,omitempty"`
}

func (s *Server) handleStylesheet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	io.WriteString(w, export.Stylesheet().String())
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	s.shell.SetText(body.Text)
	s.writePreview(w)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text  string     `json:"text"`
		Theme core.Theme `json:"theme"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	html, err := render.HTML(s.shell.RenderText(body.Text, body.Theme))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "", err)
		return
	}
	s.writeJSON(w, http.StatusOK, previewResponse{HTML: html, Theme: body.Theme})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	s.writePreview(w)
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	data, err := export.NewJSONExporter().Export(s.shell.Snapshot())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// handleTheme sets the theme named in the body, or toggles it when the
// body names none.
func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Theme string `json:"theme"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	if body.Theme == "" {
		s.shell.ToggleTheme()
	} else {
		theme, err := core.ParseTheme(body.Theme)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "", err)
			return
		}
		s.shell.SetTheme(theme)
	}
	s.writePreview(w)
}

// answer is a Confirmer holding a reply the page already collected.
type answer bool

func (a answer) Confirm(string) (bool, error) { return bool(a), nil }

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Confirm bool `json:"confirm"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	reset, err := s.shell.Reset(answer(body.Confirm))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "", err)
		return
	}
	if !reset {
		s.writeJSON(w, http.StatusConflict, map[string]string{"prompt": shell.ResetPrompt})
		return
	}
	s.writeJSON(w, http.StatusOK, s.state())
}

// capture is a Clipboard that keeps the text for the response; the page
// performs the actual clipboard write.
type capture struct{ text string }

func (c *capture) WriteText(text string) error {
	c.text = text
	return nil
}

func (s *Server) handleCopy(w http.ResponseWriter, r *http.Request) {
	var clip capture
	if err := s.shell.Copy(&clip); err != nil {
		s.writeError(w, http.StatusInternalServerError, "clipboard_denied", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"text":         clip.text,
		"indicator_ms": shell.CopyIndicatorDuration.Milliseconds(),
	})
}

func (s *Server) handleDownloadSource(w http.ResponseWriter, r *http.Request) {
	writeDownload(w, s.shell.DownloadSource(), true)
}

// responsePrinter is a Printer that sends the printable document back to
// the page, which opens it in a print window.
type responsePrinter struct{ w http.ResponseWriter }

func (p responsePrinter) Print(doc core.Download) error {
	writeDownload(p.w, doc, false)
	return nil
}

func (s *Server) handleDownloadDocument(w http.ResponseWriter, r *http.Request) {
	switch format := r.URL.Query().Get("format"); format {
	case "", "html":
		if err := s.shell.DownloadDocument(responsePrinter{w}); err != nil {
			s.writeError(w, http.StatusInternalServerError, "print_unavailable", err)
		}
	case "pdf":
		doc, err := s.shell.Export(s.pdf)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, "print_unavailable",
				fmt.Errorf("%w: %w", shell.ErrPrintUnavailable, err))
			return
		}
		writeDownload(w, doc, true)
	default:
		s.writeError(w, http.StatusBadRequest, "", fmt.Errorf("unknown format %q (want html or pdf)", format))
	}
}

// handleImport converts a pasted HTML body to markdown and makes it the
// document text.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "", fmt.Errorf("reading body: %w", err))
		return
	}
	markdown, err := core.ImportHTML(string(data), s.extractor, s.normalizer)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, "", err)
		return
	}
	s.shell.SetText(markdown)
	s.writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.shell.Layout())
}

func (s *Server) handlePutLayout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Divider    *float64 `json:"divider"`
		SyncScroll *bool    `json:"sync_scroll"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	if body.Divider != nil {
		if err := s.shell.SetDivider(*body.Divider); err != nil {
			s.writeError(w, http.StatusUnprocessableEntity, "", err)
			return
		}
	}
	if body.SyncScroll != nil {
		s.shell.SetSyncScroll(*body.SyncScroll)
	}
	s.writeJSON(w, http.StatusOK, s.shell.Layout())
}

func (s *Server) state() documentResponse {
	return documentResponse{
		Text:   s.shell.Text(),
		Theme:  s.shell.Theme(),
		Copied: s.shell.CopyIndicator(),
		Layout: s.shell.Layout(),
	}
}

func (s *Server) writePreview(w http.ResponseWriter) {
	html, err := s.shell.PreviewHTML()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "", err)
		return
	}
	s.writeJSON(w, http.StatusOK, previewResponse{HTML: html, Theme: s.shell.Theme()})
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, "", fmt.Errorf("decoding request: %w", err))
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("writing response failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code string, err error) {
	s.logger.Warn("request failed", "status", status, "error", err)
	s.writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}

// writeDownload sends doc as an attachment, or inline for the print
// window.
func writeDownload(w http.ResponseWriter, doc core.Download, attachment bool) {
	disposition := "inline"
	if attachment {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", doc.MediaType)
	w.Header().Set("Content-Disposition", disposition+"; filename="+strconv.Quote(doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Body)))
	w.Write(doc.Body)
}

// statusRecorder captures the status code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

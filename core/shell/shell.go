// Package shell holds the editor state behind the preview: the document
// text, the theme, the pane layout and the transient copy indicator. It is
// the single owner of that state; every mutation goes through a Shell
// method, and the methods serialize on one mutex so HTTP handlers can call
// them from their own goroutines.
package shell

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gaurav-prasanna/mdpreview/core"
	"github.com/gaurav-prasanna/mdpreview/core/export"
	"github.com/gaurav-prasanna/mdpreview/core/parse"
	"github.com/gaurav-prasanna/mdpreview/core/render"
)

// DefaultDocument is the showcase document shown at startup and restored
// by Reset.
//
//go:embed default.md
var DefaultDocument string

const (
	// ResetPrompt is the question asked before Reset discards the text.
	ResetPrompt = "Are you sure you want to reset the markdown?"

	// CopyIndicatorDuration is how long the copied indicator stays on.
	CopyIndicatorDuration = 2 * time.Second

	// DefaultSourceFilename is the filename offered for source downloads.
	DefaultSourceFilename = "markdown.md"

	// Divider bounds, as a percentage of the width given to the editor.
	MinDivider     = 20.0
	MaxDivider     = 80.0
	DefaultDivider = 50.0
)

var (
	// ErrClipboardDenied is returned when the clipboard refused the text.
	ErrClipboardDenied = errors.New("clipboard write denied")

	// ErrPrintUnavailable is returned when the printable document could
	// not be handed to any print machinery.
	ErrPrintUnavailable = errors.New("print window unavailable")

	// ErrDividerOutOfRange is returned by SetDivider for positions outside
	// [MinDivider, MaxDivider].
	ErrDividerOutOfRange = fmt.Errorf("divider must be between %g%% and %g%%", MinDivider, MaxDivider)
)

// Renderer maps a node tree to an element tree.
type Renderer interface {
	Render(doc *core.Document, theme core.Theme) *core.Element
}

// Store persists drafts between runs.
type Store interface {
	Load() (core.Draft, bool, error)
	Save(draft core.Draft) error
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Layout is the split-pane state of the editor page.
type Layout struct {
	// Divider is the editor pane width as a percentage.
	Divider float64 `json:"divider"`
	// SyncScroll makes the preview follow the editor's scroll position.
	SyncScroll bool `json:"sync_scroll"`
}

// DefaultLayout returns an even split with scroll sync on.
func DefaultLayout() Layout {
	return Layout{Divider: DefaultDivider, SyncScroll: true}
}

// ScrollMetrics describes one scrollable pane.
type ScrollMetrics struct {
	Top          float64 `json:"top"`
	ScrollHeight float64 `json:"scroll_height"`
	ClientHeight float64 `json:"client_height"`
}

// SyncScroll maps the editor's scroll position proportionally onto the
// preview and returns the preview's new scroll top.
func SyncScroll(editor, preview ScrollMetrics) float64 {
	span := editor.ScrollHeight - editor.ClientHeight
	target := preview.ScrollHeight - preview.ClientHeight
	if span <= 0 || target <= 0 {
		return 0
	}
	ratio := editor.Top / span
	ratio = max(0, min(1, ratio))
	return ratio * target
}

// Option configures a Shell.
type Option func(*Shell)

// WithParser replaces the goldmark parser.
func WithParser(p core.Parser) Option {
	return func(s *Shell) { s.parser = p }
}

// WithRenderer replaces the default renderer.
func WithRenderer(r Renderer) Option {
	return func(s *Shell) { s.renderer = r }
}

// WithDocumentExporter replaces the printable document exporter.
func WithDocumentExporter(e core.Exporter) Option {
	return func(s *Shell) { s.document = e }
}

// WithStore enables draft persistence.
func WithStore(store Store) Option {
	return func(s *Shell) { s.store = store }
}

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(s *Shell) { s.clock = c }
}

// WithLogger sets the logger. The default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Shell) { s.logger = logger }
}

// WithSourceFilename sets the filename offered for source downloads.
func WithSourceFilename(name string) Option {
	return func(s *Shell) {
		if name != "" {
			s.sourceFilename = name
		}
	}
}

// WithText sets the initial document text.
func WithText(text string) Option {
	return func(s *Shell) { s.text = text }
}

// WithTheme sets the initial theme.
func WithTheme(theme core.Theme) Option {
	return func(s *Shell) { s.theme = theme }
}

// Shell is the editor state. Create one with New.
type Shell struct {
	mu sync.Mutex

	parser         core.Parser
	renderer       Renderer
	document       core.Exporter
	store          Store
	clock          Clock
	logger         *slog.Logger
	sourceFilename string

	text        string
	theme       core.Theme
	layout      Layout
	copiedUntil time.Time

	// doc caches the parse of docText. It does not depend on the theme.
	doc     *core.Document
	docText string
}

// New creates a Shell holding DefaultDocument in the light theme unless
// options say otherwise.
func New(opts ...Option) *Shell {
	s := &Shell{
		text:           DefaultDocument,
		layout:         DefaultLayout(),
		clock:          realClock{},
		sourceFilename: DefaultSourceFilename,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.parser == nil {
		s.parser = parse.New()
	}
	if s.renderer == nil {
		s.renderer = render.New()
	}
	if s.document == nil {
		s.document = export.NewDocumentExporter(true)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// Load restores the saved draft, if a store is configured and holds one.
func (s *Shell) Load() error {
	if s.store == nil {
		return nil
	}
	draft, found, err := s.store.Load()
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = draft.Text
	s.theme = draft.Theme
	s.layout = Layout{Divider: draft.Divider, SyncScroll: draft.SyncScroll}
	if !validDivider(s.layout.Divider) {
		s.layout.Divider = DefaultDivider
	}
	s.logger.Debug("draft restored", "bytes", len(draft.Text), "theme", draft.Theme)
	return nil
}

// Text returns the current document text.
func (s *Shell) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// SetText replaces the document text. The next preview re-parses it.
func (s *Shell) SetText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
	s.save()
}

// Theme returns the current theme.
func (s *Shell) Theme() core.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// SetTheme switches the theme. The text and node tree are unaffected.
func (s *Shell) SetTheme(theme core.Theme) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.theme == theme {
		return
	}
	s.theme = theme
	s.save()
}

// ToggleTheme flips between light and dark and returns the new theme.
func (s *Shell) ToggleTheme() core.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = s.theme.Toggle()
	s.save()
	return s.theme
}

// Document returns the node tree for the current text.
func (s *Shell) Document() *core.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parsed()
}

// Preview renders the current text under the current theme.
func (s *Shell) Preview() *core.Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderer.Render(s.parsed(), s.theme)
}

// PreviewHTML is Preview serialized as an HTML fragment.
func (s *Shell) PreviewHTML() (string, error) {
	return render.HTML(s.Preview())
}

// RenderText renders text under theme without touching the editor state.
func (s *Shell) RenderText(text string, theme core.Theme) *core.Element {
	return s.renderer.Render(s.parser.Parse(text), theme)
}

// Snapshot captures the current state for an exporter.
func (s *Shell) Snapshot() core.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Reset restores DefaultDocument after asking confirm. It reports whether
// the text was replaced; a negative answer or a failed prompt leaves the
// text untouched.
func (s *Shell) Reset(confirm core.Confirmer) (bool, error) {
	if confirm == nil {
		return false, errors.New("reset requires confirmation")
	}
	ok, err := confirm.Confirm(ResetPrompt)
	if err != nil {
		return false, fmt.Errorf("confirming reset: %w", err)
	}
	if !ok {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = DefaultDocument
	s.save()
	s.logger.Info("document reset")
	return true, nil
}

// Copy writes the text verbatim to clipboard and turns the copied
// indicator on for CopyIndicatorDuration.
func (s *Shell) Copy(clipboard core.Clipboard) error {
	if clipboard == nil {
		return ErrClipboardDenied
	}
	text := s.Text()
	if err := clipboard.WriteText(text); err != nil {
		return fmt.Errorf("%w: %w", ErrClipboardDenied, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.copiedUntil = s.clock.Now().Add(CopyIndicatorDuration)
	return nil
}

// CopyIndicator reports whether the copied indicator is still on.
func (s *Shell) CopyIndicator() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.Now().Before(s.copiedUntil)
}

// DownloadSource offers the text byte for byte as a markdown file.
func (s *Shell) DownloadSource() core.Download {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.Download{
		Filename:  s.sourceFilename,
		MediaType: export.NewSourceExporter().MediaType(),
		Body:      []byte(s.text),
	}
}

// Export runs exporter over the current snapshot. The filename is the
// source filename with the exporter's extension.
func (s *Shell) Export(exporter core.Exporter) (core.Download, error) {
	s.mu.Lock()
	snap := s.snapshot()
	base := strings.TrimSuffix(s.sourceFilename, filepath.Ext(s.sourceFilename))
	s.mu.Unlock()

	body, err := exporter.Export(snap)
	if err != nil {
		return core.Download{}, fmt.Errorf("exporting %s: %w", exporter.Extension(), err)
	}
	return core.Download{
		Filename:  base + exporter.Extension(),
		MediaType: exporter.MediaType(),
		Body:      body,
	}, nil
}

// DownloadDocument builds the standalone printable document and hands it
// to printer. Any failure is reported as ErrPrintUnavailable.
func (s *Shell) DownloadDocument(printer core.Printer) error {
	if printer == nil {
		return ErrPrintUnavailable
	}
	doc, err := s.Export(s.document)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPrintUnavailable, err)
	}
	if err := printer.Print(doc); err != nil {
		return fmt.Errorf("%w: %w", ErrPrintUnavailable, err)
	}
	return nil
}

// Layout returns the pane layout.
func (s *Shell) Layout() Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout
}

// SetDivider moves the pane divider. Positions outside
// [MinDivider, MaxDivider] are rejected and leave the layout unchanged.
func (s *Shell) SetDivider(percent float64) error {
	if !validDivider(percent) {
		return ErrDividerOutOfRange
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout.Divider = percent
	s.save()
	return nil
}

// SetSyncScroll turns scroll sync on or off.
func (s *Shell) SetSyncScroll(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout.SyncScroll = on
	s.save()
}

func validDivider(percent float64) bool {
	return percent >= MinDivider && percent <= MaxDivider
}

// parsed returns the cached tree, re-parsing when the text changed.
// Callers hold s.mu.
func (s *Shell) parsed() *core.Document {
	if s.doc == nil || s.docText != s.text {
		s.doc = s.parser.Parse(s.text)
		s.docText = s.text
	}
	return s.doc
}

func (s *Shell) snapshot() core.Snapshot {
	doc := s.parsed()
	return core.Snapshot{
		Text:     s.text,
		Document: doc,
		Output:   s.renderer.Render(doc, s.theme),
		Theme:    s.theme,
		Title:    core.Title(doc),
	}
}

// save persists the draft, logging failures. Callers hold s.mu.
func (s *Shell) save() {
	if s.store == nil {
		return
	}
	draft := core.Draft{
		Text:       s.text,
		Theme:      s.theme,
		Divider:    s.layout.Divider,
		SyncScroll: s.layout.SyncScroll,
	}
	if err := s.store.Save(draft); err != nil {
		s.logger.Warn("saving draft failed", "error", err)
	}
}

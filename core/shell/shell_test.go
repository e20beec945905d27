package shell

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/mdpreview/core"
	"github.com/gaurav-prasanna/mdpreview/core/parse"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type confirmer struct {
	answer  bool
	err     error
	prompts []string
}

func (c *confirmer) Confirm(prompt string) (bool, error) {
	c.prompts = append(c.prompts, prompt)
	return c.answer, c.err
}

type clipboard struct {
	text string
	err  error
}

func (c *clipboard) WriteText(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

type printer struct {
	docs []core.Download
	err  error
}

func (p *printer) Print(doc core.Download) error {
	if p.err != nil {
		return p.err
	}
	p.docs = append(p.docs, doc)
	return nil
}

type memStore struct {
	draft   core.Draft
	found   bool
	saves   int
	loadErr error
	saveErr error
}

func (m *memStore) Load() (core.Draft, bool, error) { return m.draft, m.found, m.loadErr }

func (m *memStore) Save(d core.Draft) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.draft, m.found = d, true
	return nil
}

// countingParser counts parses.
type countingParser struct {
	calls int
	inner *parse.Parser
}

func (p *countingParser) Parse(source string) *core.Document {
	p.calls++
	return p.inner.Parse(source)
}

func TestNewStartsWithDefaults(t *testing.T) {
	s := New()
	assert.Equal(t, DefaultDocument, s.Text())
	assert.Equal(t, core.Light, s.Theme())
	assert.Equal(t, DefaultLayout(), s.Layout())
	assert.False(t, s.CopyIndicator())
	assert.True(t, strings.HasPrefix(DefaultDocument, "# Markdown Formatting Showcase"))
}

func TestDefaultDocumentShowcase(t *testing.T) {
	html, err := New().PreviewHTML()
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	for _, sel := range []string{"h1", "h2", "h6", "strong", "em", "ul", "ol", "table", ".md-code-label", "img", "blockquote", "a", "hr"} {
		assert.NotZero(t, doc.Find(sel).Length(), sel)
	}
}

func TestSetTextReparses(t *testing.T) {
	p := &countingParser{inner: parse.New()}
	s := New(WithParser(p), WithText("# one\n"))

	s.Preview()
	s.Preview()
	assert.Equal(t, 1, p.calls, "unchanged text is parsed once")

	s.SetText("## two\n")
	heading := s.Document().Nodes[0].(*core.Heading)
	assert.Equal(t, 2, heading.Level)
	assert.Equal(t, 2, p.calls)
}

func TestToggleThemeKeepsTextAndTree(t *testing.T) {
	p := &countingParser{inner: parse.New()}
	s := New(WithParser(p), WithText("# T\n\n```go\nx := 1\n```\n"))

	tree := s.Document()
	before := s.Preview()
	assert.True(t, before.HasClass("theme-light"))

	assert.Equal(t, core.Dark, s.ToggleTheme())
	after := s.Preview()
	assert.True(t, after.HasClass("theme-dark"))
	assert.Same(t, tree, s.Document())
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, "# T\n\n```go\nx := 1\n```\n", s.Text())

	assert.Equal(t, core.Light, s.ToggleTheme())
	if diff := cmp.Diff(before, s.Preview()); diff != "" {
		t.Errorf("toggling twice changed the preview (-before +after):\n%s", diff)
	}
}

func TestSetTheme(t *testing.T) {
	store := &memStore{}
	s := New(WithStore(store))
	s.SetTheme(core.Dark)
	s.SetTheme(core.Dark)
	assert.Equal(t, core.Dark, s.Theme())
	assert.Equal(t, 1, store.saves)
}

func TestResetRequiresConfirmation(t *testing.T) {
	s := New(WithText("my draft"))

	declined := &confirmer{answer: false}
	reset, err := s.Reset(declined)
	require.NoError(t, err)
	assert.False(t, reset)
	assert.Equal(t, "my draft", s.Text())
	assert.Equal(t, []string{ResetPrompt}, declined.prompts)

	failing := &confirmer{answer: true, err: errors.New("no tty")}
	_, err = s.Reset(failing)
	assert.Error(t, err)
	assert.Equal(t, "my draft", s.Text())

	_, err = s.Reset(nil)
	assert.Error(t, err)
	assert.Equal(t, "my draft", s.Text())

	reset, err = s.Reset(&confirmer{answer: true})
	require.NoError(t, err)
	assert.True(t, reset)
	assert.Equal(t, DefaultDocument, s.Text())
}

func TestCopyIndicator(t *testing.T) {
	clock := newFakeClock()
	s := New(WithClock(clock), WithText("copy *me*\n"))
	clip := &clipboard{}

	require.NoError(t, s.Copy(clip))
	assert.Equal(t, "copy *me*\n", clip.text)
	assert.True(t, s.CopyIndicator())

	clock.Advance(CopyIndicatorDuration - time.Millisecond)
	assert.True(t, s.CopyIndicator())

	clock.Advance(time.Millisecond)
	assert.False(t, s.CopyIndicator())
}

func TestCopyFailure(t *testing.T) {
	s := New(WithClock(newFakeClock()), WithText("text"))

	err := s.Copy(&clipboard{err: errors.New("permission denied")})
	assert.ErrorIs(t, err, ErrClipboardDenied)
	assert.Contains(t, err.Error(), "permission denied")
	assert.False(t, s.CopyIndicator())
	assert.Equal(t, "text", s.Text())

	assert.ErrorIs(t, s.Copy(nil), ErrClipboardDenied)
}

func TestDownloadSourceIsVerbatim(t *testing.T) {
	for _, text := range []string{"", "# T\r\n\ttab  \n\n\n", "ünïcödé ✓"} {
		s := New(WithText(text))
		d := s.DownloadSource()
		assert.Equal(t, DefaultSourceFilename, d.Filename)
		assert.Equal(t, "text/markdown; charset=utf-8", d.MediaType)
		assert.Equal(t, []byte(text), d.Body)
	}

	s := New(WithSourceFilename("notes.md"))
	assert.Equal(t, "notes.md", s.DownloadSource().Filename)
}

func TestDownloadDocument(t *testing.T) {
	s := New(WithText("# Report\n\nbody\n"), WithTheme(core.Dark))
	p := &printer{}
	require.NoError(t, s.DownloadDocument(p))
	require.Len(t, p.docs, 1)

	doc := p.docs[0]
	assert.Equal(t, "markdown.html", doc.Filename)
	assert.True(t, strings.HasPrefix(doc.MediaType, "text/html"))
	body := string(doc.Body)
	assert.Contains(t, body, "<title>Report</title>")
	assert.Contains(t, body, "theme-dark")
	assert.Contains(t, body, "<style>")
}

func TestDownloadDocumentFailsVisibly(t *testing.T) {
	s := New()
	assert.ErrorIs(t, s.DownloadDocument(nil), ErrPrintUnavailable)

	err := s.DownloadDocument(&printer{err: errors.New("popup blocked")})
	assert.ErrorIs(t, err, ErrPrintUnavailable)
	assert.Contains(t, err.Error(), "popup blocked")

	broken := errors.New("no output tree")
	s = New(WithDocumentExporter(failingExporter{err: broken}))
	p := &printer{}
	err = s.DownloadDocument(p)
	assert.ErrorIs(t, err, ErrPrintUnavailable)
	assert.ErrorIs(t, err, broken)
	assert.Empty(t, p.docs)
}

type failingExporter struct{ err error }

func (f failingExporter) Export(core.Snapshot) ([]byte, error) { return nil, f.err }
func (failingExporter) Extension() string { return ".html" }
func (failingExporter) MediaType() string { return "text/html" }

func TestLayout(t *testing.T) {
	s := New()
	require.NoError(t, s.SetDivider(MinDivider))
	require.NoError(t, s.SetDivider(MaxDivider))
	require.NoError(t, s.SetDivider(33.5))
	assert.ErrorIs(t, s.SetDivider(19.9), ErrDividerOutOfRange)
	assert.ErrorIs(t, s.SetDivider(80.1), ErrDividerOutOfRange)
	assert.Equal(t, 33.5, s.Layout().Divider)

	s.SetSyncScroll(false)
	assert.False(t, s.Layout().SyncScroll)
}

func TestSyncScroll(t *testing.T) {
	editor := ScrollMetrics{Top: 250, ScrollHeight: 1100, ClientHeight: 100}
	preview := ScrollMetrics{ScrollHeight: 2100, ClientHeight: 100}
	assert.InDelta(t, 500, SyncScroll(editor, preview), 1e-9)

	assert.Zero(t, SyncScroll(ScrollMetrics{Top: 10, ScrollHeight: 100, ClientHeight: 100}, preview))
	assert.Zero(t, SyncScroll(editor, ScrollMetrics{ScrollHeight: 50, ClientHeight: 100}))

	overscrolled := ScrollMetrics{Top: 5000, ScrollHeight: 1100, ClientHeight: 100}
	assert.InDelta(t, 2000, SyncScroll(overscrolled, preview), 1e-9)
}

func TestStorePersistence(t *testing.T) {
	store := &memStore{}
	s := New(WithStore(store))
	s.SetText("saved")
	s.ToggleTheme()
	require.NoError(t, s.SetDivider(30))
	s.SetSyncScroll(false)

	assert.Equal(t, core.Draft{Text: "saved", Theme: core.Dark, Divider: 30, SyncScroll: false}, store.draft)

	restored := New(WithStore(store))
	require.NoError(t, restored.Load())
	assert.Equal(t, "saved", restored.Text())
	assert.Equal(t, core.Dark, restored.Theme())
	assert.Equal(t, Layout{Divider: 30, SyncScroll: false}, restored.Layout())
}

func TestLoadSanitizesDivider(t *testing.T) {
	store := &memStore{found: true, draft: core.Draft{Text: "x", Divider: 95}}
	s := New(WithStore(store))
	require.NoError(t, s.Load())
	assert.Equal(t, DefaultDivider, s.Layout().Divider)
}

func TestLoadErrorKeepsDefaults(t *testing.T) {
	s := New(WithStore(&memStore{loadErr: errors.New("corrupt")}))
	assert.Error(t, s.Load())
	assert.Equal(t, DefaultDocument, s.Text())
}

func TestSaveFailureDoesNotBlockEditing(t *testing.T) {
	s := New(WithStore(&memStore{saveErr: errors.New("disk full")}))
	s.SetText("still works")
	assert.Equal(t, "still works", s.Text())
}

func TestSnapshotAndRenderText(t *testing.T) {
	s := New(WithText("# Title\n"), WithTheme(core.Dark))
	snap := s.Snapshot()
	assert.Equal(t, "Title", snap.Title)
	assert.Equal(t, core.Dark, snap.Theme)
	assert.Equal(t, "# Title\n", snap.Text)
	require.NotNil(t, snap.Output)

	other := s.RenderText("plain", core.Light)
	assert.True(t, other.HasClass("theme-light"))
	assert.Equal(t, "# Title\n", s.Text())
}

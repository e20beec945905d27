package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/mdpreview/core"
	"github.com/gaurav-prasanna/mdpreview/core/shell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, text string) (*httptest.Server, *shell.Shell) {
	t.Helper()
	sh := shell.New(shell.WithText(text))
	srv := New(Config{Shell: sh, Logger: slog.New(slog.DiscardHandler)})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, sh
}

func do(t *testing.T, ts *httptest.Server, method, path, contentType, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestEditorPage(t *testing.T) {
	ts, _ := newTestServer(t, "")

	resp := do(t, ts, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Find("textarea#editor").Length())
	assert.Equal(t, 1, page.Find("#preview").Length())
	assert.Equal(t, 1, page.Find("#divider").Length())

	for _, path := range []string{"/app.js", "/app.css", "/markdown-mark.svg"} {
		assert.Equal(t, http.StatusOK, do(t, ts, http.MethodGet, path, "", "").StatusCode, path)
	}

	css := do(t, ts, http.MethodGet, "/preview.css", "", "")
	data, _ := io.ReadAll(css.Body)
	assert.Contains(t, css.Header.Get("Content-Type"), "text/css")
	assert.Contains(t, string(data), ".md-preview.theme-dark")
}

func TestEditorScriptDropsStalePreviews(t *testing.T) {
	ts, _ := newTestServer(t, "")
	resp := do(t, ts, http.MethodGet, "/app.js", "", "")
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	script := string(data)

	assert.Contains(t, script, "seq === previewSeq")
	assert.NotContains(t, script, "then(showPreview)", "preview updates go through latestPreview")
	assert.Contains(t, script, `latestPreview(api("PUT", "/api/document"`)
}

func TestDocumentUpdateAndPreview(t *testing.T) {
	ts, sh := newTestServer(t, "")

	resp := do(t, ts, http.MethodPut, "/api/document", "application/json", `{"text":"# Hello\n\n**world**\n"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var preview previewResponse
	decodeJSON(t, resp, &preview)
	assert.Contains(t, preview.HTML, `<h1 class="md-h1">Hello</h1>`)
	assert.Contains(t, preview.HTML, `<strong class="md-strong">world</strong>`)
	assert.Equal(t, "# Hello\n\n**world**\n", sh.Text())

	var state documentResponse
	decodeJSON(t, do(t, ts, http.MethodGet, "/api/document", "", ""), &state)
	assert.Equal(t, "# Hello\n\n**world**\n", state.Text)
	assert.Equal(t, core.Light, state.Theme)
	assert.Equal(t, shell.DefaultLayout(), state.Layout)
}

func TestRenderIsStateless(t *testing.T) {
	ts, sh := newTestServer(t, "kept")

	resp := do(t, ts, http.MethodPost, "/api/render", "application/json", `{"text":"*x*","theme":"dark"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var preview previewResponse
	decodeJSON(t, resp, &preview)
	assert.Contains(t, preview.HTML, "theme-dark")
	assert.Contains(t, preview.HTML, `<em class="md-em">x</em>`)
	assert.Equal(t, "kept", sh.Text())
	assert.Equal(t, core.Light, sh.Theme())
}

func TestTheme(t *testing.T) {
	ts, sh := newTestServer(t, "x")

	var preview previewResponse
	decodeJSON(t, do(t, ts, http.MethodPost, "/api/theme", "application/json", `{}`), &preview)
	assert.Equal(t, core.Dark, preview.Theme)
	assert.Contains(t, preview.HTML, "theme-dark")

	decodeJSON(t, do(t, ts, http.MethodPost, "/api/theme", "application/json", `{"theme":"light"}`), &preview)
	assert.Equal(t, core.Light, sh.Theme())

	resp := do(t, ts, http.MethodPost, "/api/theme", "application/json", `{"theme":"sepia"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestResetNeedsConfirmation(t *testing.T) {
	ts, sh := newTestServer(t, "draft")

	resp := do(t, ts, http.MethodPost, "/api/reset", "application/json", `{"confirm":false}`)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var prompt map[string]string
	decodeJSON(t, resp, &prompt)
	assert.Equal(t, shell.ResetPrompt, prompt["prompt"])
	assert.Equal(t, "draft", sh.Text())

	resp = do(t, ts, http.MethodPost, "/api/reset", "application/json", ``)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, ts, http.MethodPost, "/api/reset", "application/json", `{"confirm":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var state documentResponse
	decodeJSON(t, resp, &state)
	assert.Equal(t, shell.DefaultDocument, state.Text)
}

func TestCopy(t *testing.T) {
	ts, sh := newTestServer(t, "copy me\n")

	resp := do(t, ts, http.MethodPost, "/api/copy", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Text        string `json:"text"`
		IndicatorMS int64  `json:"indicator_ms"`
	}
	decodeJSON(t, resp, &body)
	assert.Equal(t, "copy me\n", body.Text)
	assert.Equal(t, int64(2000), body.IndicatorMS)
	assert.True(t, sh.CopyIndicator())
}

func TestDownloadSource(t *testing.T) {
	text := "# T\r\n\n  trailing  \n"
	ts, _ := newTestServer(t, text)

	resp := do(t, ts, http.MethodGet, "/api/download/source", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/markdown; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="markdown.md"`, resp.Header.Get("Content-Disposition"))
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, text, string(data))
}

func TestDownloadDocument(t *testing.T) {
	ts, _ := newTestServer(t, "# Report\n\n```go\nx := 1\n```\n")

	resp := do(t, ts, http.MethodGet, "/api/download/document", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Disposition"), "inline"))
	page, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Report", page.Find("title").Text())
	assert.Contains(t, page.Find("style").Text(), "@page")
	assert.Contains(t, page.Find("script").Text(), "window.print()")

	resp = do(t, ts, http.MethodGet, "/api/download/document?format=pdf", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	data, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	resp = do(t, ts, http.MethodGet, "/api/download/document?format=docx", "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestImport(t *testing.T) {
	ts, sh := newTestServer(t, "")

	html := `<html><body><nav>menu</nav><main><h2>Imported</h2><p>with <em>style</em></p></main></body></html>`
	resp := do(t, ts, http.MethodPost, "/api/import", "text/html", html)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var state documentResponse
	decodeJSON(t, resp, &state)
	assert.Contains(t, state.Text, "## Imported")
	assert.Contains(t, state.Text, "*style*")
	assert.NotContains(t, state.Text, "menu")
	assert.Equal(t, state.Text, sh.Text())
}

func TestLayout(t *testing.T) {
	ts, sh := newTestServer(t, "")

	resp := do(t, ts, http.MethodPut, "/api/layout", "application/json", `{"divider":30,"sync_scroll":false}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, shell.Layout{Divider: 30, SyncScroll: false}, sh.Layout())

	resp = do(t, ts, http.MethodPut, "/api/layout", "application/json", `{"divider":95}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, 30.0, sh.Layout().Divider)

	var layout shell.Layout
	decodeJSON(t, do(t, ts, http.MethodGet, "/api/layout", "", ""), &layout)
	assert.Equal(t, sh.Layout(), layout)
}

func TestBadJSON(t *testing.T) {
	ts, _ := newTestServer(t, "")
	resp := do(t, ts, http.MethodPut, "/api/document", "application/json", `{"text":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var e errorResponse
	decodeJSON(t, resp, &e)
	assert.NotEmpty(t, e.Error)
}

func TestTree(t *testing.T) {
	ts, _ := newTestServer(t, "# A\n\n[l](u)\n")
	resp := do(t, ts, http.MethodGet, "/api/tree", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tree struct {
		Title     string `json:"title"`
		Structure struct {
			Links []struct {
				Href string `json:"href"`
			} `json:"links"`
		} `json:"structure"`
	}
	decodeJSON(t, resp, &tree)
	assert.Equal(t, "A", tree.Title)
	require.Len(t, tree.Structure.Links, 1)
	assert.Equal(t, "u", tree.Structure.Links[0].Href)
}

func TestServeShutsDown(t *testing.T) {
	srv := New(Config{Shell: shell.New(), Logger: slog.New(slog.DiscardHandler)})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, "127.0.0.1:0") }()

	select {
	case <-srv.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://" + srv.Addr().String() + "/api/layout")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

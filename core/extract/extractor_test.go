package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPrefersMain(t *testing.T) {
	html := `<html><head><title>t</title><style>p{}</style></head><body>
<nav><a href="/">Home</a></nav>
<main><h1>Title</h1><p>Body text</p><script>alert(1)</script></main>
<footer>footer</footer></body></html>`

	got, err := New().Extract(html)
	require.NoError(t, err)
	assert.Equal(t, "<h1>Title</h1><p>Body text</p>", got)
}

func TestExtractArticleThenBody(t *testing.T) {
	got, err := New().Extract(`<body><div>chrome</div><article><p>story</p></article></body>`)
	require.NoError(t, err)
	assert.Equal(t, "<p>story</p>", got)

	got, err = New().Extract(`<p>fragment <b>only</b></p>`)
	require.NoError(t, err)
	assert.Equal(t, "<p>fragment <b>only</b></p>", got)
}

func TestExtractKeepsImagesAndCheckboxes(t *testing.T) {
	html := `<ul><li><input type="checkbox" checked> done</li></ul><img src="a.png" alt="A"><form><input type="text"></form>`
	got, err := New().Extract(html)
	require.NoError(t, err)
	assert.Contains(t, got, `<img src="a.png" alt="A"/>`)
	assert.Contains(t, got, `type="checkbox"`)
	assert.NotContains(t, got, "form")
	assert.NotContains(t, got, `type="text"`)
}

func TestExtractEmpty(t *testing.T) {
	got, err := New().Extract("")
	require.NoError(t, err)
	assert.Empty(t, got)
}

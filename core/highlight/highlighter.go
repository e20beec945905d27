// Package highlight dispatches fenced code to Chroma and converts the token
// stream into core elements styled from one of two style tables, light or
// dark.
package highlight

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gaurav-prasanna/mdpreview/core"
)

// Default style tables.
const (
	DefaultLightStyle = "github"
	DefaultDarkStyle  = "onedark"
)

// Highlighter implements core.Highlighter with Chroma.
type Highlighter struct {
	light *chroma.Style
	dark  *chroma.Style
}

// Option configures a Highlighter.
type Option func(*Highlighter)

// WithStyles selects the Chroma styles used for the light and dark themes.
// Unknown names fall back to Chroma's default style; empty names keep the
// current choice.
func WithStyles(light, dark string) Option {
	return func(h *Highlighter) {
		if light != "" {
			h.light = styles.Get(light)
		}
		if dark != "" {
			h.dark = styles.Get(dark)
		}
	}
}

// New creates a Highlighter with the default style tables.
func New(opts ...Option) *Highlighter {
	h := &Highlighter{
		light: styles.Get(DefaultLightStyle),
		dark:  styles.Get(DefaultDarkStyle),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// StyleTable returns the style table for theme.
func (h *Highlighter) StyleTable(theme core.Theme) *chroma.Style {
	if theme.IsDark() {
		return h.dark
	}
	return h.light
}

// Highlight tokenizes code as language and returns a pre element whose text
// equals code minus one trailing newline. The boolean is false when the
// language is unknown or tokenizing fails; the element then holds the code
// unstyled.
func (h *Highlighter) Highlight(code, language string, theme core.Theme) (*core.Element, bool) {
	code = strings.TrimSuffix(code, "\n")
	style := h.StyleTable(theme)

	body := core.El("code", nil)
	pre := core.El("pre", []core.Attr{
		{Key: "class", Val: "md-code-body chroma"},
		{Key: "style", Val: frameStyle(style)},
	}, body)

	lexer := lexers.Get(language)
	if language == "" || lexer == nil {
		body.Append(core.TextEl(code))
		return pre, false
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		body.Append(core.TextEl(code))
		return pre, false
	}
	tokens := trimTrailingNewline(iterator.Tokens(), !strings.HasSuffix(code, "\n"))

	for _, token := range tokens {
		if token.Value == "" {
			continue
		}
		decl := declarations(style.Get(token.Type))
		if decl == "" {
			body.Append(core.TextEl(token.Value))
			continue
		}
		body.Append(core.El("span", []core.Attr{{Key: "style", Val: decl}}, core.TextEl(token.Value)))
	}
	return pre, true
}

// trimTrailingNewline drops the newline many lexers append to their input
// so the highlighted text matches the original.
func trimTrailingNewline(tokens []chroma.Token, trim bool) []chroma.Token {
	if !trim {
		return tokens
	}
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].Value == "" {
			continue
		}
		tokens[i].Value = strings.TrimSuffix(tokens[i].Value, "\n")
		break
	}
	return tokens
}

// frameStyle is the inline style of the surrounding pre: the style table's
// background and default text colour.
func frameStyle(style *chroma.Style) string {
	entry := style.Get(chroma.Background)
	var parts []string
	if entry.Background.IsSet() {
		parts = append(parts, "background-color:"+entry.Background.String())
	}
	if entry.Colour.IsSet() {
		parts = append(parts, "color:"+entry.Colour.String())
	}
	return strings.Join(parts, ";")
}

func declarations(entry chroma.StyleEntry) string {
	var parts []string
	if entry.Colour.IsSet() {
		parts = append(parts, "color:"+entry.Colour.String())
	}
	if entry.Bold == chroma.Yes {
		parts = append(parts, "font-weight:bold")
	}
	if entry.Italic == chroma.Yes {
		parts = append(parts, "font-style:italic")
	}
	if entry.Underline == chroma.Yes {
		parts = append(parts, "text-decoration:underline")
	}
	return strings.Join(parts, ";")
}

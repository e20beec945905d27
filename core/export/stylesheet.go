package export

import (
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/gaurav-prasanna/mdpreview/core"
)

// FontFamily is the preview body font stack.
const FontFamily = `-apple-system, BlinkMacSystemFont, "Segoe UI", "Noto Sans", Helvetica, Arial, sans-serif, "Apple Color Emoji", "Segoe UI Emoji"`

const monoFamily = `ui-monospace, SFMono-Regular, Menlo, Consolas, "Liberation Mono", monospace`

// themeColors is the chrome palette of one theme.
type themeColors struct {
	background string
	text       string
	muted      string
	border     string
	strongLine string
	surface    string
	quoteText  string
	link       string
	linkHover  string
}

var themeColorTable = map[core.Theme]themeColors{
	core.Light: {
		background: "#ffffff", text: "#111827", muted: "#4b5563",
		border: "#e5e7eb", strongLine: "#d1d5db", surface: "#f3f4f6",
		quoteText: "#374151", link: "#2563eb", linkHover: "#1e40af",
	},
	core.Dark: {
		background: "#111827", text: "#f3f4f6", muted: "#9ca3af",
		border: "#374151", strongLine: "#4b5563", surface: "#1f2937",
		quoteText: "#d1d5db", link: "#60a5fa", linkHover: "#93c5fd",
	},
}

// structureRules are independent of the theme.
var structureRules = [][2]string{
	{".md-preview", "font-family:" + FontFamily + "; line-height:1.6; word-wrap:break-word"},
	{".md-h1", "font-size:1.875rem; font-weight:600; line-height:1.25; margin:0.75rem 0 1rem; padding-bottom:0.5rem; border-bottom:1px solid"},
	{".md-h2", "font-size:1.5rem; font-weight:600; line-height:1.25; margin:0.75rem 0 1rem; padding-bottom:0.5rem; border-bottom:1px solid"},
	{".md-h3", "font-size:1.25rem; font-weight:600; line-height:1.25; margin:0.75rem 0 1rem"},
	{".md-h4", "font-size:1rem; font-weight:600; line-height:1.25; margin:0.75rem 0 1rem"},
	{".md-h5", "font-size:0.875rem; font-weight:600; line-height:1.25; margin:0.75rem 0 1rem"},
	{".md-h6", "font-size:0.75rem; font-weight:600; line-height:1.25; margin:0.75rem 0 1rem"},
	{".md-p", "margin:0 0 1rem"},
	{".md-ul", "list-style:disc; margin:0 0 1rem 1.5rem; padding:0"},
	{".md-ol", "list-style:decimal; margin:0 0 1rem 1.5rem; padding:0"},
	{".md-li .md-ul, .md-li .md-ol", "margin-bottom:0"},
	{".md-blockquote", "margin:0 0 1rem; padding:0.5rem 1rem; border-left:4px solid; font-style:italic"},
	{".md-hr", "border:0; border-top:1px solid; margin:2rem 0"},
	{".md-link", "text-decoration:underline; text-underline-offset:2px"},
	{".md-strong", "font-weight:600"},
	{".md-em", "font-style:italic"},
	{".md-del", "text-decoration:line-through"},
	{".md-task", "margin:0 0.5em 0.2em 0; vertical-align:middle"},
	{".md-inline-code", "font-family:" + monoFamily + "; font-size:0.875em; padding:0.125rem 0.25rem; border-radius:0.25rem"},
	{".md-code", "margin:1rem 0; border:1px solid; border-radius:0.5rem; overflow:hidden"},
	{".md-code-label", "padding:0.5rem 1rem; font-size:0.875rem"},
	{".md-code-body", "margin:0; padding:1rem; overflow-x:auto; font-family:" + monoFamily + "; font-size:0.875rem"},
	{".md-table-wrap", "overflow-x:auto; margin:1rem 0"},
	{".md-table", "border-collapse:collapse; min-width:100%"},
	{".md-th, .md-td", "border:1px solid; padding:0.5rem 1rem"},
	{".md-th", "font-weight:600"},
	{".md-img", "max-width:100%; height:auto; border-radius:0.375rem; margin:1rem 0"},
	{".md-raw-html", "font-family:" + monoFamily + "; font-size:0.875em"},
}

// themeRules are expanded once per theme; "%" in a selector is replaced
// by the theme scope.
func themeRules(c themeColors) [][2]string {
	return [][2]string{
		{"%", "color:" + c.text + "; background-color:" + c.background},
		{"% .md-h1, % .md-h2", "border-color:" + c.border},
		{"% .md-h6", "color:" + c.muted},
		{"% .md-blockquote", "color:" + c.quoteText + "; background-color:" + c.surface + "; border-color:" + c.strongLine},
		{"% .md-hr", "border-color:" + c.border},
		{"% .md-link", "color:" + c.link},
		{"% .md-link:hover", "color:" + c.linkHover},
		{"% .md-del", "color:" + c.muted},
		{"% .md-inline-code", "background-color:" + c.surface},
		{"% .md-code", "border-color:" + c.border},
		{"% .md-code-label", "color:" + c.muted + "; background-color:" + c.surface},
		{"% .md-code > .md-code-body:not(.chroma)", "background-color:" + c.surface},
		{"% .md-th, % .md-td", "border-color:" + c.strongLine},
		{"% .md-th", "background-color:" + c.surface},
		{"% .md-img", "border:1px solid " + c.border},
	}
}

// Stylesheet returns the self-contained rules for rendered previews in both
// themes. The same sheet styles the live preview pane and printable
// exports.
func Stylesheet() *css.Stylesheet {
	sheet := css.NewStylesheet()
	for _, r := range structureRules {
		sheet.Rules = append(sheet.Rules, qualifiedRule(r[0], r[1]))
	}
	for _, theme := range []core.Theme{core.Light, core.Dark} {
		scope := ".md-preview.theme-" + theme.String()
		for _, r := range themeRules(themeColorTable[theme]) {
			sheet.Rules = append(sheet.Rules, qualifiedRule(strings.ReplaceAll(r[0], "%", scope), r[1]))
		}
	}
	return sheet
}

// PrintStylesheet extends Stylesheet with page rules for printing.
func PrintStylesheet(theme core.Theme) *css.Stylesheet {
	sheet := Stylesheet()
	colors := themeColorTable[theme]

	page := css.NewRule(css.AtRule)
	page.Name = "@page"
	page.Declarations = declarations("margin:2cm")
	sheet.Rules = append(sheet.Rules,
		qualifiedRule("html, body", "margin:0; padding:0; background-color:"+colors.background),
		qualifiedRule("body > .md-preview", "max-width:48rem; margin:0 auto; padding:2rem"),
		qualifiedRule(".md-code, .md-table-wrap, .md-img", "break-inside:avoid"),
		page,
	)
	return sheet
}

func qualifiedRule(selector, decls string) *css.Rule {
	rule := css.NewRule(css.QualifiedRule)
	rule.Prelude = selector
	for _, sel := range strings.Split(selector, ",") {
		rule.Selectors = append(rule.Selectors, strings.TrimSpace(sel))
	}
	rule.Declarations = declarations(decls)
	return rule
}

func declarations(decls string) []*css.Declaration {
	var out []*css.Declaration
	for _, decl := range strings.Split(decls, ";") {
		property, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		d := css.NewDeclaration()
		d.Property = strings.TrimSpace(property)
		d.Value = strings.TrimSpace(value)
		out = append(out, d)
	}
	return out
}

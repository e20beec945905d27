// Package core defines the shared types and stage interfaces of the
// mdpreview rendering pipeline: markdown text is parsed into a node tree,
// the node tree is rendered into an element tree, and the element tree is
// displayed or exported.
package core

// Parser converts markdown source into a document node tree. Parsing never
// fails; malformed input yields a best-effort tree.
type Parser interface {
	Parse(source string) *Document
}

// Highlighter turns a code string into a styled element using the style
// table selected by theme. The boolean reports whether the language was
// recognized; when it is false the element holds the code unhighlighted.
type Highlighter interface {
	Highlight(code, language string, theme Theme) (*Element, bool)
}

// Exporter serializes a snapshot of the editor into a downloadable format.
type Exporter interface {
	Export(snap Snapshot) ([]byte, error)
	// Extension returns the file extension for this exporter (e.g. ".md", ".pdf").
	Extension() string
	// MediaType returns the MIME type of the exported bytes.
	MediaType() string
}

// Extractor pulls the main content from raw HTML, stripping noise.
type Extractor interface {
	Extract(html string) (string, error)
}

// Normalizer converts cleaned HTML into Markdown.
type Normalizer interface {
	Normalize(html string) (string, error)
}

// Clipboard receives text copied out of the editor.
type Clipboard interface {
	WriteText(text string) error
}

// Printer hands a printable document to whatever print or save machinery
// the host provides.
type Printer interface {
	Print(doc Download) error
}

// Confirmer asks the user an affirmative yes/no question.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// Snapshot is everything an exporter may need about the current editor
// state. Output is the rendered element tree for Document under Theme.
type Snapshot struct {
	Text     string
	Document *Document
	Output   *Element
	Theme    Theme
	Title    string
}

// Download is a named, typed blob offered to the user.
type Download struct {
	Filename  string
	MediaType string
	Body      []byte
}

// Draft is the persisted editor state.
type Draft struct {
	Text       string  `json:"text"`
	Theme      Theme   `json:"theme"`
	Divider    float64 `json:"divider"`
	SyncScroll bool    `json:"sync_scroll"`
}

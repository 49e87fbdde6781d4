// Package template renders draft segments as a sampleSentences literal
// ready to paste into the dictation page.
package template

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/alnah/go-dictation/internal/segment"
)

// Format name constants.
// Use these instead of string literals for compile-time safety.
const (
	TSX     = "tsx"
	JSDraft = "js-draft"
)

// ---------------------------------------------------------------------------
// Name type - represents a validated snippet format
// ---------------------------------------------------------------------------

// Name represents a validated snippet format.
// Zero value is invalid and must not be passed to Render.
type Name struct {
	name string
}

// Pre-parsed format names for use in code.
var (
	TSXName     = Name{name: TSX}
	JSDraftName = Name{name: JSDraft}
)

// formatOrder defines the canonical order for Names().
var formatOrder = []string{TSX, JSDraft}

// ParseName validates and parses a format name string.
// Returns ErrUnknown if the name is not recognized. Matching is case-sensitive.
func ParseName(s string) (Name, error) {
	if s == "" {
		return Name{}, fmt.Errorf("format name cannot be empty: %w", ErrUnknown)
	}
	for _, n := range formatOrder {
		if s == n {
			return Name{name: s}, nil
		}
	}
	return Name{}, fmt.Errorf("unknown format %q (valid: %s): %w", s, strings.Join(formatOrder, ", "), ErrUnknown)
}

// String returns the format name string.
func (n Name) String() string {
	return n.name
}

// IsZero returns true if no format was set.
func (n Name) IsZero() bool {
	return n.name == ""
}

// Names returns the available format names in a stable order.
func Names() []string {
	result := make([]string, len(formatOrder))
	copy(result, formatOrder)
	return result
}

// ---------------------------------------------------------------------------
// Rendering
// ---------------------------------------------------------------------------

// Option configures Render.
type Option func(*renderConfig)

type renderConfig struct {
	placeholder bool
	source      string
	title       string
}

// WithPlaceholder replaces each text with "[Text N - Ss-Es]" so the page
// shows which sentence still needs filling in.
func WithPlaceholder() Option {
	return func(c *renderConfig) {
		c.placeholder = true
	}
}

// WithSource names the draft file in the js-draft header.
func WithSource(name string) Option {
	return func(c *renderConfig) {
		c.source = name
	}
}

// WithTitle adds the recording title to the js-draft header.
func WithTitle(title string) Option {
	return func(c *renderConfig) {
		c.title = title
	}
}

// Render writes records as a sampleSentences array literal in the given format.
func Render(w io.Writer, name Name, records []segment.Record, opts ...Option) error {
	if name.IsZero() {
		return fmt.Errorf("render: %w", ErrUnknown)
	}
	cfg := renderConfig{source: "draft_config.json"}
	for _, opt := range opts {
		opt(&cfg)
	}

	bw := bufio.NewWriter(w)
	if name == JSDraftName {
		fmt.Fprintf(bw, "// Auto-generated from %s\n", cfg.source)
		if cfg.title != "" {
			fmt.Fprintf(bw, "// %s - dictation timestamps\n", singleLine(cfg.title))
		}
		bw.WriteString("\n")
	}

	bw.WriteString("const sampleSentences = [\n")
	for _, r := range records {
		text := r.Text
		if cfg.placeholder {
			text = PlaceholderText(r)
		}
		fmt.Fprintf(bw, "  { id: %d, text: \"%s\", startTime: %s, endTime: %s },\n",
			r.ID, escape(text), r.Start, r.End)
	}
	bw.WriteString("];\n")

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write snippet: %w", err)
	}
	return nil
}

// PlaceholderText returns the fill-in marker for one record, e.g. "[Text 2 - 4.0s-8.0s]".
func PlaceholderText(r segment.Record) string {
	return fmt.Sprintf("[Text %d - %ss-%ss]", r.ID, r.Start, r.End)
}

var jsEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
	"\u2028", `\u2028`,
	"\u2029", `\u2029`,
)

// escape makes s safe inside a double-quoted JavaScript string.
func escape(s string) string {
	return jsEscaper.Replace(s)
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

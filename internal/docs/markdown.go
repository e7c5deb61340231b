package docs

import (
	"fmt"
	"io"
	"strings"

	md "github.com/nao1215/markdown"
)

// Markdown wraps the markdown package with the helpers the documentation
// pages need.
type Markdown struct {
	md     *md.Markdown
	buffer *strings.Builder
}

// NewMarkdown creates a builder writing to w.
func NewMarkdown(w io.Writer) *Markdown {
	return &Markdown{md: md.NewMarkdown(w)}
}

// NewMarkdownBuffer creates a builder with an internal buffer.
func NewMarkdownBuffer() *Markdown {
	buffer := &strings.Builder{}
	return &Markdown{md: md.NewMarkdown(buffer), buffer: buffer}
}

// String returns the buffered content after Build.
func (m *Markdown) String() string {
	if m.buffer == nil {
		return ""
	}
	return m.buffer.String()
}

// H1 creates a level 1 header
func (m *Markdown) H1(text string) *Markdown {
	m.md.H1(text)
	return m
}

// H2 creates a level 2 header
func (m *Markdown) H2(text string) *Markdown {
	m.md.H2(text)
	return m
}

// PlainText adds plain text
func (m *Markdown) PlainText(text string) *Markdown {
	m.md.PlainText(text)
	return m
}

// PlainTextf adds formatted plain text
func (m *Markdown) PlainTextf(format string, args ...any) *Markdown {
	m.md.PlainTextf(format, args...)
	return m
}

// LF adds a line feed
func (m *Markdown) LF() *Markdown {
	m.md.LF()
	return m
}

// LabeledCode adds a "**label:** `value`" line.
func (m *Markdown) LabeledCode(label string, value any) *Markdown {
	m.md.PlainText(fmt.Sprintf("%s %s", md.Bold(label+":"), md.Code(fmt.Sprint(value))))
	m.md.LF()
	return m
}

// BulletList adds a bullet list
func (m *Markdown) BulletList(items ...string) *Markdown {
	m.md.BulletList(items...)
	return m
}

// Table adds a table
func (m *Markdown) Table(table md.TableSet) *Markdown {
	m.md.Table(table)
	return m
}

// ConditionalSection adds content only if condition is true
func (m *Markdown) ConditionalSection(condition bool, f func(*Markdown)) *Markdown {
	if condition {
		f(m)
	}
	return m
}

// Build writes the document.
func (m *Markdown) Build() error {
	return m.md.Build()
}

// check renders a boolean as a check mark or a cross.
func check(v bool) string {
	if v {
		return "✅"
	}
	return "❌"
}

// escapeCell keeps table cells on one line and escapes pipes.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "\n", " ")
}

// link renders a Markdown link.
func link(text, url string) string {
	return md.Link(text, url)
}

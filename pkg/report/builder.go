package report

import (
	"fmt"
	"html"
	"strings"

	md "github.com/nao1215/markdown"
)

// builder wraps the markdown package with the blocks a report needs.
type builder struct {
	md  *md.Markdown
	buf *strings.Builder
}

func newBuilder() *builder {
	buf := &strings.Builder{}
	return &builder{md: md.NewMarkdown(buf), buf: buf}
}

func (b *builder) H1(text string) *builder {
	b.md.H1(text)
	return b
}

func (b *builder) H2(text string) *builder {
	b.md.H2(text)
	return b
}

func (b *builder) H3(text string) *builder {
	b.md.H3(text)
	return b
}

func (b *builder) PlainText(text string) *builder {
	b.md.PlainText(text)
	return b
}

func (b *builder) PlainTextf(format string, args ...any) *builder {
	b.md.PlainTextf(format, args...)
	return b
}

func (b *builder) LF() *builder {
	b.md.LF()
	return b
}

func (b *builder) Table(header []string, rows [][]string) *builder {
	b.md.Table(md.TableSet{Header: header, Rows: rows})
	return b
}

func (b *builder) BulletList(items ...string) *builder {
	b.md.BulletList(items...)
	return b
}

func (b *builder) CodeBlock(syntax, code string) *builder {
	b.md.CodeBlocks(md.SyntaxHighlight(syntax), code)
	return b
}

// Alert adds a GitHub-style alert. Every line of text is quoted.
func (b *builder) Alert(alertType, title, text string) *builder {
	var sb strings.Builder
	fmt.Fprintf(&sb, "> [!%s]\n> %s", strings.ToUpper(alertType), title)
	if text != "" {
		for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
			sb.WriteString("\n>")
			if line != "" {
				sb.WriteString(" ")
				sb.WriteString(line)
			}
		}
	}
	b.md.PlainText(sb.String()).LF()
	return b
}

// SideBySide adds an HTML two-column table of code blocks.
func (b *builder) SideBySide(leftTitle, left, rightTitle, right string) *builder {
	var sb strings.Builder
	sb.WriteString("<table>\n<tr>")
	fmt.Fprintf(&sb, "<th>%s</th><th>%s</th>", html.EscapeString(leftTitle), html.EscapeString(rightTitle))
	sb.WriteString("</tr>\n<tr>\n<td>\n\n")
	writeFence(&sb, left)
	sb.WriteString("\n</td>\n<td>\n\n")
	writeFence(&sb, right)
	sb.WriteString("\n</td>\n</tr>\n</table>")
	b.md.PlainText(sb.String()).LF()
	return b
}

func writeFence(sb *strings.Builder, code string) {
	fence := "```"
	for strings.Contains(code, fence) {
		fence += "`"
	}
	sb.WriteString(fence)
	sb.WriteString("\n")
	sb.WriteString(code)
	sb.WriteString("\n")
	sb.WriteString(fence)
	sb.WriteString("\n")
}

// Build finalizes the document and returns it.
func (b *builder) Build() (string, error) {
	if err := b.md.Build(); err != nil {
		return "", err
	}
	return b.buf.String(), nil
}

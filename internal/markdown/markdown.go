// Package markdown renders run reports to HTML and flattens markdown CVs to
// plain text before analysis.
package markdown

import (
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

func newParser() *parser.Parser {
	return parser.NewWithExtensions(parser.CommonExtensions | parser.Attributes)
}

// ToHTML renders md as an HTML fragment. When title is set a complete
// page is produced instead.
func ToHTML(md []byte, title string) string {
	opts := html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank,
		Title: title,
	}
	if title != "" {
		opts.Flags |= html.CompletePage
	}
	return string(markdown.ToHTML(md, newParser(), html.NewRenderer(opts)))
}

// ToPlainText drops markdown syntax and keeps the readable text, one block
// per line.
func ToPlainText(md []byte) string {
	doc := newParser().Parse(md)

	var sb strings.Builder
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		switch n := node.(type) {
		case *ast.Text:
			if entering {
				sb.Write(n.Literal)
			}
		case *ast.Code:
			if entering {
				sb.Write(n.Literal)
			}
		case *ast.CodeBlock:
			if entering {
				sb.Write(n.Literal)
				newline(&sb)
			}
		case *ast.Softbreak, *ast.Hardbreak:
			if entering {
				sb.WriteByte('\n')
			}
		case *ast.Paragraph, *ast.Heading, *ast.TableRow:
			if !entering {
				newline(&sb)
			}
		case *ast.TableCell:
			if !entering {
				sb.WriteByte('\t')
			}
		case *ast.ListItem:
			if entering {
				sb.WriteString("- ")
			} else {
				newline(&sb)
			}
		}
		return ast.GoToNext
	})

	lines := strings.Split(sb.String(), "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.TrimRight(l, " \t"); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

func newline(sb *strings.Builder) {
	s := sb.String()
	if len(s) > 0 && s[len(s)-1] != '\n' {
		sb.WriteByte('\n')
	}
}

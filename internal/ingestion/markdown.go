package ingestion

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// markdownToText flattens Markdown to plain text. Headings keep their "#"
// markers and list items become "- " lines so CleanText preserves them.
func markdownToText(src []byte) string {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var out []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			out = append(out, "", strings.Repeat("#", node.Level)+" "+inlineText(node, src))
			return ast.WalkSkipChildren, nil
		case *ast.List:
			out = append(out, "")
			emitList(node, 0, src, &out)
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph:
			out = append(out, "", inlineText(node, src))
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			out = append(out, "", blockLines(node, src))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(out, "\n")
}

// inlineText collects the text of n's inline descendants.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			buf.Write(node.Segment.Value(src))
			if node.HardLineBreak() || node.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(node.Value)
		case *ast.AutoLink:
			buf.Write(node.URL(src))
		case *ast.List:
			// emitted by emitList
		default:
			if buf.Len() > 0 && c.Type() == ast.TypeBlock {
				buf.WriteByte(' ')
			}
			buf.WriteString(inlineText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}

// emitList writes one "- " line per item, indenting nested lists.
func emitList(list *ast.List, depth int, src []byte, out *[]string) {
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		*out = append(*out, strings.Repeat("  ", depth)+"- "+inlineText(item, src))
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			if nested, ok := c.(*ast.List); ok {
				emitList(nested, depth+1, src, out)
			}
		}
	}
}

func blockLines(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(src))
	}
	return strings.TrimRight(buf.String(), "\n")
}

package render

import (
	"bufio"
	"bytes"
	"html"
	"io"
	"strings"
)

// WriteHTML serializes the render tree.
func WriteHTML(w io.Writer, n *Node) error {
	bw := bufio.NewWriter(w)
	if err := writeNode(bw, n); err != nil {
		return err
	}
	return bw.Flush()
}

// HTML serializes the render tree into a string.
func HTML(n *Node) string {
	var buf bytes.Buffer
	_ = WriteHTML(&buf, n)
	return buf.String()
}

func writeNode(w *bufio.Writer, n *Node) error {
	if n == nil {
		return nil
	}

	switch n.Type {
	case TextNode:
		_, err := w.WriteString(html.EscapeString(n.Text))
		return err
	case RawNode:
		_, err := w.WriteString(n.Text)
		return err
	case FragmentNode:
		return writeChildren(w, n.Children)
	}

	w.WriteByte('<')
	w.WriteString(n.Tag)
	for _, attr := range n.Attrs {
		w.WriteByte(' ')
		w.WriteString(attr.Key)
		w.WriteString(`="`)
		w.WriteString(html.EscapeString(attr.Val))
		w.WriteByte('"')
	}
	w.WriteByte('>')
	if n.Void {
		return nil
	}

	if err := writeChildren(w, n.Children); err != nil {
		return err
	}

	w.WriteString("</")
	w.WriteString(n.Tag)
	_, err := w.WriteString(">")
	return err
}

func writeChildren(w *bufio.Writer, children []*Node) error {
	for _, child := range children {
		if err := writeNode(w, child); err != nil {
			return err
		}
	}
	return nil
}

// TextContent returns the visible text of the tree, with whitespace runs collapsed.
func TextContent(n *Node) string {
	var sb strings.Builder
	collectText(&sb, n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func collectText(sb *strings.Builder, n *Node) {
	if n == nil {
		return
	}
	switch n.Type {
	case TextNode:
		sb.WriteString(n.Text)
		sb.WriteByte(' ')
	case RawNode:
		sb.WriteString(stripTags(n.Text))
		sb.WriteByte(' ')
	default:
		for _, child := range n.Children {
			collectText(sb, child)
		}
		if n.Type == ElementNode {
			sb.WriteByte(' ')
		}
	}
}

func stripTags(markup string) string {
	var sb strings.Builder
	inTag := false
	for _, r := range markup {
		switch {
		case r == '<':
			inTag = true
			sb.WriteByte(' ')
		case r == '>':
			inTag = false
		case !inTag:
			sb.WriteRune(r)
		}
	}
	return html.UnescapeString(sb.String())
}

package render

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// Options is the context of a single render pass.
type Options struct {
	Site     *SiteContext
	Page     *PageContext
	Preview  bool
	Features Features
}

// ignoredTags are parser artifacts or content that is never re-rendered.
var ignoredTags = map[string]struct{}{
	"html": {}, "head": {}, "body": {}, "script": {}, "style": {}, "title": {},
	"meta": {}, "link": {}, "noscript": {}, "svg": {}, "path": {},
}

var voidTags = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {}, "img": {},
	"input": {}, "link": {}, "meta": {}, "param": {}, "source": {}, "track": {}, "wbr": {},
}

// Render renders parsed roots into a fragment.
func Render(nodes []*html.Node, opts Options) *Node {
	children := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		children = append(children, RenderNode(n, opts))
	}
	return Fragment(children...)
}

// RenderNode renders one parsed node. Non-element nodes render nothing.
func RenderNode(n *html.Node, opts Options) *Node {
	if n == nil || n.Type != html.ElementNode || n.Data == "" {
		return nil
	}

	tag := strings.ToLower(n.Data)
	if _, ignored := ignoredTags[tag]; ignored {
		return nil
	}

	if entry, ok := Lookup(tag); ok {
		return renderComponent(entry, n, opts)
	}

	attrs := make([]Attr, 0, len(n.Attr))
	for _, attr := range n.Attr {
		if attr.Key == "style" {
			continue
		}
		attrs = append(attrs, Attr{Key: attr.Key, Val: attr.Val})
	}

	if _, void := voidTags[tag]; void {
		return VoidElement(tag, attrs)
	}
	return Element(tag, attrs, renderChildren(n, opts)...)
}

func renderComponent(entry Entry, n *html.Node, opts Options) *Node {
	fn, variant := entry.renderer(opts.Preview)
	if fn == nil {
		return nil
	}

	out := fn(componentProps(entry, n, opts), renderChildren(n, opts))
	if out == nil {
		return nil
	}
	out.Component = entry.Kind
	out.Variant = variant
	return out
}

// componentProps builds props from the static UI flag of the entry only:
// authored attributes for UI entries, site and page context otherwise.
func componentProps(entry Entry, n *html.Node, opts Options) Props {
	props := Props{Features: opts.Features}
	if entry.UI {
		props.Attrs = make(map[string]string, len(n.Attr))
		for _, attr := range n.Attr {
			props.Attrs[attr.Key] = attr.Val
		}
		return props
	}
	props.Site = opts.Site
	props.Page = opts.Page
	return props
}

func renderChildren(n *html.Node, opts Options) []*Node {
	var children []*Node
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.TextNode:
			children = append(children, Text(child.Data))
		case html.ElementNode:
			if rendered := RenderNode(child, opts); rendered != nil {
				children = append(children, rendered)
			}
		}
	}
	return children
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

package render

// NodeType distinguishes the variants of a rendered Node.
type NodeType int

const (
	// FragmentNode groups sibling nodes without emitting a wrapper element.
	FragmentNode NodeType = iota
	// ElementNode is an HTML element.
	ElementNode
	// TextNode is literal text, escaped on output.
	TextNode
	// RawNode is trusted markup produced by a component (e.g. Markdown output).
	RawNode
)

// Variant records which renderer of a registry entry produced a node.
type Variant int

const (
	VariantNone Variant = iota
	VariantElement
	VariantPreview
)

// Attr is a single HTML attribute in authored order.
type Attr struct {
	Key string
	Val string
}

// Node is the render tree produced from stored page markup.
type Node struct {
	Type     NodeType
	Tag      string
	Attrs    []Attr
	Children []*Node
	Void     bool
	Text     string

	// Component and Variant are set on the root node of a resolved registry entry.
	Component Kind
	Variant   Variant
}

// Fragment wraps nodes, dropping nil entries.
func Fragment(children ...*Node) *Node {
	return &Node{Type: FragmentNode, Children: compact(children)}
}

// Element builds a container element.
func Element(tag string, attrs []Attr, children ...*Node) *Node {
	return &Node{Type: ElementNode, Tag: tag, Attrs: attrs, Children: compact(children)}
}

// VoidElement builds a self-closing element without children.
func VoidElement(tag string, attrs []Attr) *Node {
	return &Node{Type: ElementNode, Tag: tag, Attrs: attrs, Void: true}
}

// Text builds an escaped text node.
func Text(value string) *Node {
	return &Node{Type: TextNode, Text: value}
}

// Raw builds a node emitted verbatim.
func Raw(markup string) *Node {
	return &Node{Type: RawNode, Text: markup}
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, attr := range n.Attrs {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// Find returns the first node in depth-first order that matches fn.
func (n *Node) Find(fn func(*Node) bool) *Node {
	if n == nil {
		return nil
	}
	if fn(n) {
		return n
	}
	for _, child := range n.Children {
		if found := child.Find(fn); found != nil {
			return found
		}
	}
	return nil
}

func compact(nodes []*Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, node := range nodes {
		if node != nil {
			out = append(out, node)
		}
	}
	return out
}

func classes(values ...string) string {
	out := make([]byte, 0, 32)
	for _, value := range values {
		if value == "" {
			continue
		}
		if len(out) > 0 {
			out = append(out, ' ')
		}
		out = append(out, value...)
	}
	return string(out)
}

package render

import (
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// ErrNoBody is returned when the parsed document has no body element.
var ErrNoBody = errors.New("parsed document has no body")

// Parse builds a full document from markup and returns the element children
// of its body, so markup with several top-level elements yields several roots.
func Parse(markup string) ([]*html.Node, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}

	body := findBody(doc)
	if body == nil {
		return nil, ErrNoBody
	}

	var roots []*html.Node
	for child := body.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode {
			roots = append(roots, child)
		}
	}
	return roots, nil
}

// ParseOrEmpty is Parse for previews: failures are logged and yield no roots.
func ParseOrEmpty(markup string, logger *zap.Logger) []*html.Node {
	roots, err := Parse(markup)
	if err != nil {
		if logger != nil {
			logger.Warn("page markup could not be parsed", zap.Error(err), zap.Int("length", len(markup)))
		}
		return nil
	}
	return roots
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if body := findBody(child); body != nil {
			return body
		}
	}
	return nil
}

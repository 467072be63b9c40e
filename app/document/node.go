package document

import (
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

type Kind int

const (
	KindText Kind = iota
	KindElement
)

// Node is a single location path result: either an element (or the document
// root) or a plain text value such as an attribute, a text() node or the
// result of a string/number/boolean expression.
type Node struct {
	kind Kind
	elem *html.Node
	text string
}

func Element(n *html.Node) Node {
	return Node{kind: KindElement, elem: n}
}

func Text(s string) Node {
	return Node{kind: KindText, text: s}
}

func (n Node) Kind() Kind {
	return n.kind
}

// Element returns the underlying element, or nil for text results.
func (n Node) Element() *html.Node {
	return n.elem
}

// String returns the string value of the result. Elements yield the
// concatenation of all their descendant text nodes.
func (n Node) String() string {
	if n.kind == KindElement {
		if n.elem == nil {
			return ""
		}
		return htmlquery.InnerText(n.elem)
	}
	return n.text
}

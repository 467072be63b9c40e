package document

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

type Document struct {
	root *html.Node
}

func Parse(body string) (*Document, error) {
	root, err := htmlquery.Parse(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Document{root: root}, nil
}

// Compile checks that path is a valid location path.
func Compile(path string) (*xpath.Expr, error) {
	expr, err := xpath.Compile(path)
	if err != nil {
		return nil, fmt.Errorf("invalid location path %q: %w", path, err)
	}
	return expr, nil
}

// Evaluate runs a location path against the document and returns its results
// in document order. Scalar expressions (string(), count(), ...) produce a
// single text result.
func (d *Document) Evaluate(path string) ([]Node, error) {
	// Compiled expressions keep iteration state, so they are not shared.
	expr, err := Compile(path)
	if err != nil {
		return nil, err
	}

	switch v := expr.Evaluate(htmlquery.CreateXPathNavigator(d.root)).(type) {
	case *xpath.NodeIterator:
		var nodes []Node
		for v.MoveNext() {
			nodes = append(nodes, d.fromNavigator(v.Current()))
		}
		return nodes, nil
	case string:
		return []Node{Text(v)}, nil
	case float64:
		return []Node{Text(strconv.FormatFloat(v, 'f', -1, 64))}, nil
	case bool:
		return []Node{Text(strconv.FormatBool(v))}, nil
	default:
		return nil, fmt.Errorf("unsupported result type %T for location path %q", v, path)
	}
}

// Texts evaluates path and coerces every result to its string value.
func (d *Document) Texts(path string) ([]string, error) {
	nodes, err := d.Evaluate(path)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(nodes))
	for i, node := range nodes {
		texts[i] = node.String()
	}
	return texts, nil
}

// FirstText returns the string value of the first result of path.
func (d *Document) FirstText(path string) (string, bool, error) {
	nodes, err := d.Evaluate(path)
	if err != nil {
		return "", false, err
	}
	if len(nodes) == 0 {
		return "", false, nil
	}
	return nodes[0].String(), true, nil
}

func (d *Document) fromNavigator(nav xpath.NodeNavigator) Node {
	switch nav.NodeType() {
	case xpath.ElementNode, xpath.RootNode:
		if hn, ok := nav.(*htmlquery.NodeNavigator); ok {
			return Element(hn.Current())
		}
	}
	return Text(nav.Value())
}

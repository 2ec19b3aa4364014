// Package paragraph counts addressable translation units ("paragraphs") in
// structural HTML content. Two interchangeable strategies are tried in order:
// explicit unit markers, then a structural scan of leaf-like block elements.
package paragraph

import (
	"strings"

	"golang.org/x/net/html"
)

// Strategy is one way of counting units in a parsed document.
type Strategy interface {
	Name() string
	Applies(root *html.Node) bool
	Count(root *html.Node) int
}

type Counter struct {
	strategies []Strategy
}

// NewCounter returns a counter preferring explicit markers over structural scanning.
func NewCounter() *Counter {
	return NewCounterWithStrategies(MarkerStrategy{Attr: DefaultMarkerAttr}, StructuralStrategy{})
}

func NewCounterWithStrategies(strategies ...Strategy) *Counter {
	return &Counter{strategies: strategies}
}

// CountUnits implements ports.UnitCounter. Empty or unparsable content counts as zero.
func (c *Counter) CountUnits(content string) int {
	root, ok := parse(content)
	if !ok {
		return 0
	}
	for _, strategy := range c.strategies {
		if strategy.Applies(root) {
			return strategy.Count(root)
		}
	}
	return 0
}

// StrategyFor reports which strategy would count content, or "" when none applies.
func (c *Counter) StrategyFor(content string) string {
	root, ok := parse(content)
	if !ok {
		return ""
	}
	for _, strategy := range c.strategies {
		if strategy.Applies(root) {
			return strategy.Name()
		}
	}
	return ""
}

func parse(content string) (*html.Node, bool) {
	if strings.TrimSpace(content) == "" {
		return nil, false
	}
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, false
	}
	return root, true
}

func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		walk(child, visit)
	}
}

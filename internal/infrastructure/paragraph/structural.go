package paragraph

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var blockElements = map[atom.Atom]struct{}{
	atom.Body:       {},
	atom.P:          {},
	atom.H1:         {},
	atom.H2:         {},
	atom.H3:         {},
	atom.H4:         {},
	atom.H5:         {},
	atom.H6:         {},
	atom.Li:         {},
	atom.Blockquote: {},
	atom.Pre:        {},
	atom.Td:         {},
	atom.Th:         {},
	atom.Dt:         {},
	atom.Dd:         {},
	atom.Div:        {},
	atom.Section:    {},
	atom.Article:    {},
	atom.Figure:     {},
	atom.Figcaption: {},
	atom.Caption:    {},
}

var skippedElements = map[atom.Atom]struct{}{
	atom.Head:     {},
	atom.Script:   {},
	atom.Style:    {},
	atom.Template: {},
	atom.Noscript: {},
}

// StructuralStrategy counts block elements holding non-empty text or an image.
// A block containing counted blocks contributes only those, so nesting never
// double-counts; loose text beside nested blocks is absorbed by them.
type StructuralStrategy struct{}

func (StructuralStrategy) Name() string { return "structural" }

func (StructuralStrategy) Applies(root *html.Node) bool { return root != nil }

func (StructuralStrategy) Count(root *html.Node) int {
	units, _ := countBlocks(root)
	return units
}

// countBlocks returns the units counted inside n and whether n carries content
// not yet attributed to a counted block.
func countBlocks(n *html.Node) (int, bool) {
	switch n.Type {
	case html.TextNode:
		return 0, strings.TrimSpace(n.Data) != ""
	case html.ElementNode:
		if _, skip := skippedElements[n.DataAtom]; skip {
			return 0, false
		}
		if n.DataAtom == atom.Img {
			return 0, true
		}
	case html.DocumentNode:
	default:
		return 0, false
	}

	units, loose := 0, false
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		childUnits, childLoose := countBlocks(child)
		units += childUnits
		loose = loose || childLoose
	}

	if n.Type != html.ElementNode {
		return units, loose
	}
	if _, block := blockElements[n.DataAtom]; !block {
		return units, loose
	}
	if units > 0 {
		return units, false
	}
	if loose {
		return 1, false
	}
	return 0, false
}

package paragraph

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

const DefaultMarkerAttr = "data-paragraph-index"

// MarkerStrategy counts units as max(marker index)+1. Markers are zero-based and
// may repeat (a unit split across elements), so the count is not the number of markers.
type MarkerStrategy struct {
	Attr string
}

func (s MarkerStrategy) Name() string { return "marker" }

func (s MarkerStrategy) Applies(root *html.Node) bool {
	_, found := s.maxIndex(root)
	return found
}

func (s MarkerStrategy) Count(root *html.Node) int {
	maxIndex, found := s.maxIndex(root)
	if !found {
		return 0
	}
	return maxIndex + 1
}

func (s MarkerStrategy) maxIndex(root *html.Node) (int, bool) {
	attr := s.Attr
	if attr == "" {
		attr = DefaultMarkerAttr
	}
	maxIndex, found := -1, false
	walk(root, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		for _, a := range n.Attr {
			if a.Key != attr {
				continue
			}
			idx, err := strconv.Atoi(strings.TrimSpace(a.Val))
			if err != nil || idx < 0 {
				continue
			}
			found = true
			if idx > maxIndex {
				maxIndex = idx
			}
		}
	})
	return maxIndex, found
}

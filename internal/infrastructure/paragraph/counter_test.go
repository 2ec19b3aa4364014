package paragraph

import "testing"

func TestCountUnitsEmptyContent(t *testing.T) {
	counter := NewCounter()
	for _, content := range []string{"", "   ", "\n\t"} {
		if got := counter.CountUnits(content); got != 0 {
			t.Fatalf("CountUnits(%q) = %d, want 0", content, got)
		}
	}
}

func TestCountUnitsUsesMarkersWhenPresent(t *testing.T) {
	content := `
<p data-paragraph-index="0">Intro</p>
<p data-paragraph-index="1">Body</p>
<p data-paragraph-index="1">Body, continued</p>
<p data-paragraph-index="4">Closing</p>
<p>Unmarked footer</p>`

	counter := NewCounter()
	if got := counter.CountUnits(content); got != 5 {
		t.Fatalf("expected max marker + 1 = 5, got %d", got)
	}
	if got := counter.StrategyFor(content); got != "marker" {
		t.Fatalf("expected marker strategy, got %q", got)
	}
}

func TestCountUnitsIgnoresMalformedMarkers(t *testing.T) {
	content := `<p data-paragraph-index="abc">a</p><p data-paragraph-index="-3">b</p><p>c</p>`

	counter := NewCounter()
	if got := counter.StrategyFor(content); got != "structural" {
		t.Fatalf("expected structural fallback, got %q", got)
	}
	if got := counter.CountUnits(content); got != 3 {
		t.Fatalf("expected 3 structural units, got %d", got)
	}
}

func TestStructuralCountsLeafBlocksOnce(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{name: "flat paragraphs", content: `<h1>Title</h1><p>One</p><p>Two</p>`, want: 3},
		{name: "empty paragraphs skipped", content: `<p>One</p><p>   </p><p></p>`, want: 1},
		{name: "image only paragraph", content: `<p><img src="a.png"></p><p>Text</p>`, want: 2},
		{name: "nested list item", content: `<ul><li><p>Nested</p></li><li>Plain</li></ul>`, want: 2},
		{name: "div wrapper not double counted", content: `<div><p>a</p><p>b</p></div>`, want: 2},
		{name: "loose text absorbed by nested blocks", content: `<div>lead<p>a</p></div>`, want: 1},
		{name: "table cells", content: `<table><tr><td>a</td><td>b</td></tr><tr><td></td><td>c</td></tr></table>`, want: 3},
		{name: "inline markup inside block", content: `<p><strong>bold</strong> and <em>em</em></p>`, want: 1},
		{name: "plain text is a single unit", content: `just some text`, want: 1},
		{name: "script ignored", content: `<script>var a = 1;</script><p>x</p>`, want: 1},
	}

	counter := NewCounterWithStrategies(StructuralStrategy{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := counter.CountUnits(tt.content); got != tt.want {
				t.Fatalf("CountUnits() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCustomMarkerAttribute(t *testing.T) {
	counter := NewCounterWithStrategies(MarkerStrategy{Attr: "data-unit"}, StructuralStrategy{})
	content := `<p data-unit="2">c</p><p data-paragraph-index="9">ignored marker</p>`
	if got := counter.CountUnits(content); got != 3 {
		t.Fatalf("expected 3 from custom marker, got %d", got)
	}
}

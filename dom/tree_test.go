package dom

import (
	"testing"
)

const shadowFixture = `<div id="host"><template shadowrootmode="open"><p id="inner">in</p><slot></slot></template><span id="light">light</span><b slot="missing">x</b></div>`

func parseFixture(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := ParseHTML(src)
	if err != nil {
		t.Fatalf("ParseHTML failed: %v", err)
	}
	return doc
}

func TestParseHTML_DeclarativeShadowRoot(t *testing.T) {
	doc := parseFixture(t, shadowFixture)
	host := doc.GetElementByID("host")
	if host == nil {
		t.Fatal("host not found")
	}
	sr := host.ShadowRoot()
	if sr == nil {
		t.Fatal("Expected a shadow root on host")
	}
	if sr.Mode() != ShadowRootModeOpen {
		t.Errorf("Expected mode open, got %s", sr.Mode())
	}
	if sr.GetElementByID("inner") == nil {
		t.Error("Expected #inner inside the shadow tree")
	}
	if doc.GetElementByID("inner") != nil {
		t.Error("#inner should not be visible from the document tree")
	}
	if host.AsNode().ChildCount() != 2 {
		t.Errorf("Expected 2 light children, got %d", host.AsNode().ChildCount())
	}
}

func TestFlatTree_SlotAssignment(t *testing.T) {
	doc := parseFixture(t, shadowFixture)
	host := doc.GetElementByID("host").AsNode()
	sr := host.AsElement().ShadowRoot()
	inner := sr.GetElementByID("inner").AsNode()
	slot := inner.NextSibling()
	light := doc.GetElementByID("light").AsNode()
	unassigned := light.NextSibling()

	if got := Flat.Parent(light); got != slot {
		t.Errorf("Expected flat parent of light child to be the slot, got %v", got)
	}
	if got := Flat.Parent(inner); got != host {
		t.Errorf("Expected flat parent of shadow child to be the host, got %v", got)
	}
	if got := Flat.ChildCount(host); got != 2 {
		t.Errorf("Expected host to have 2 flat children, got %d", got)
	}
	if got := Flat.ChildAt(slot, 0); got != light {
		t.Errorf("Expected slot's first flat child to be the light child, got %v", got)
	}
	if InTree(Flat, unassigned) {
		t.Error("Unassigned light child should not be in the flat tree")
	}
	if !InTree(Authored, unassigned) {
		t.Error("Unassigned light child should be in the authored tree")
	}
	if InTree(Flat, sr.AsNode()) {
		t.Error("Shadow root should not be in the flat tree")
	}
	if got := Authored.Parent(sr.AsNode()); got != host {
		t.Errorf("Expected authored parent of shadow root to be the host, got %v", got)
	}
	if got := Authored.Index(sr.AsNode()); got != -1 {
		t.Errorf("Expected shadow root index -1, got %d", got)
	}
	if got := Flat.Index(light); got != 0 {
		t.Errorf("Expected light child flat index 0, got %d", got)
	}
	if SameChildren(host) {
		t.Error("Host children differ between trees")
	}
}

func TestComparePoints(t *testing.T) {
	doc := parseFixture(t, shadowFixture)
	host := doc.GetElementByID("host").AsNode()
	inner := host.AsElement().ShadowRoot().GetElementByID("inner").AsNode()
	innerText := inner.FirstChild()
	lightText := doc.GetElementByID("light").AsNode().FirstChild()

	tests := []struct {
		name   string
		tree   Tree
		a      *Node
		ao     int
		b      *Node
		bo     int
		expect int
	}{
		{"same node", Authored, innerText, 1, innerText, 2, -1},
		{"same point", Flat, innerText, 1, innerText, 1, 0},
		{"authored shadow before light", Authored, innerText, 0, lightText, 0, -1},
		{"authored host start after shadow", Authored, host, 0, innerText, 0, 1},
		{"flat shadow before slotted", Flat, innerText, 2, lightText, 0, -1},
		{"flat host start before shadow", Flat, host, 0, innerText, 0, -1},
		{"flat host end after slotted", Flat, host, 2, lightText, 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComparePoints(tt.tree, tt.a, tt.ao, tt.b, tt.bo)
			if err != nil {
				t.Fatalf("ComparePoints failed: %v", err)
			}
			if got != tt.expect {
				t.Errorf("Expected %d, got %d", tt.expect, got)
			}
		})
	}
}

func TestComparePoints_DisconnectedTrees(t *testing.T) {
	doc := NewDocument()
	a := doc.CreateTextNode("a")
	b := doc.CreateTextNode("b")
	if _, err := ComparePoints(Authored, a, 0, b, 0); err == nil {
		t.Error("Expected an error for nodes without a common root")
	}
}

func TestNextNode_AuthoredVisitsShadowFirst(t *testing.T) {
	doc := parseFixture(t, shadowFixture)
	host := doc.GetElementByID("host").AsNode()

	var names []string
	for n := NextNode(Authored, host, host); n != nil; n = NextNode(Authored, n, host) {
		names = append(names, n.NodeName())
	}
	expected := []string{"#document-fragment", "P", "#text", "SLOT", "SPAN", "#text", "B", "#text"}
	if len(names) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, names)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("Expected %v, got %v", expected, names)
			break
		}
	}
}

func TestPreviousNode_Flat(t *testing.T) {
	doc := parseFixture(t, shadowFixture)
	host := doc.GetElementByID("host").AsNode()
	lightText := doc.GetElementByID("light").AsNode().FirstChild()

	var names []string
	for n := lightText; n != nil && n != host; n = PreviousNode(Flat, n, host) {
		names = append(names, n.NodeName())
	}
	expected := []string{"#text", "SPAN", "SLOT", "#text", "P"}
	if len(names) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, names)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("Expected %v, got %v", expected, names)
			break
		}
	}
}

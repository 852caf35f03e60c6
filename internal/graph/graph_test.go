package graph

import (
	"reflect"
	"testing"
)

func TestAddNode(t *testing.T) {
	g := New()
	g.AddNode("article")
	g.AddNode("author")

	if !g.HasNode("article") {
		t.Error("expected graph to contain 'article'")
	}
	if !g.HasNode("author") {
		t.Error("expected graph to contain 'author'")
	}
	if g.HasNode("tag") {
		t.Error("did not expect graph to contain 'tag'")
	}
	if g.NodeCount() != 2 {
		t.Errorf("expected 2 nodes, got %d", g.NodeCount())
	}
}

func TestAddEdgeRegistersEndpoints(t *testing.T) {
	g := New()
	g.AddEdge("author", "article")

	if !g.HasNode("author") || !g.HasNode("article") {
		t.Error("AddEdge should register both endpoints as nodes")
	}
	if !reflect.DeepEqual(g.Children("author"), []string{"article"}) {
		t.Errorf("expected author -> [article], got %v", g.Children("author"))
	}
	if !reflect.DeepEqual(g.Parents("article"), []string{"author"}) {
		t.Errorf("expected article <- [author], got %v", g.Parents("article"))
	}
}

func TestAddEdgeDeduplicates(t *testing.T) {
	g := New()
	g.AddEdge("author", "article")
	g.AddEdge("author", "article")

	if len(g.Children("author")) != 1 {
		t.Errorf("expected 1 edge after duplicate AddEdge, got %d", len(g.Children("author")))
	}
	if len(g.Parents("article")) != 1 {
		t.Errorf("expected 1 parent after duplicate AddEdge, got %d", len(g.Parents("article")))
	}
}

func TestAllNodesSorted(t *testing.T) {
	g := New()
	g.AddNode("tag")
	g.AddNode("article")
	g.AddNode("author")

	want := []string{"article", "author", "tag"}
	if got := g.AllNodes(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestInDegrees(t *testing.T) {
	g := New()
	g.AddEdge("author", "article")
	g.AddEdge("tag", "article")
	g.AddNode("page")

	inDegree := g.inDegrees()

	if inDegree["author"] != 0 {
		t.Errorf("expected author in-degree 0, got %d", inDegree["author"])
	}
	if inDegree["article"] != 2 {
		t.Errorf("expected article in-degree 2, got %d", inDegree["article"])
	}
	if inDegree["page"] != 0 {
		t.Errorf("expected page in-degree 0, got %d", inDegree["page"])
	}
}

package dsl

import (
	"testing"

	"github.com/aretw0/arbor/internal/codec"
	"github.com/aretw0/arbor/pkg/domain"
)

func loanBuilder() *Builder {
	b := New().Start("income")

	b.Add("income").
		When("Has stable income").
		Branch("yes", "credit").
		Branch("no", "deny")

	b.Add("credit").
		Ask("Is the credit score above 700?").
		Branch("yes", "approve").
		Branch("no", "review")

	b.Add("approve").Decide("APPROVED")
	b.Add("review").Decide("MANUAL_REVIEW").Meta("queue", "underwriting")
	b.Add("deny").Decide("DENIED")
	return b
}

func TestBuilder_Graph(t *testing.T) {
	g := loanBuilder().Graph()

	if g.Len() != 5 {
		t.Fatalf("Expected 5 nodes, got %d", g.Len())
	}
	if g.Start() != "income" {
		t.Errorf("Expected start 'income', got %q", g.Start())
	}

	income := g.Nodes["income"]
	if !income.IsQuestion() || income.Condition != "Has stable income" {
		t.Errorf("Unexpected income node: %+v", income)
	}
	if len(income.Connections) != 2 || income.Connections[0].Label != "yes" || income.Connections[0].Target != "credit" {
		t.Errorf("Expected connections in insertion order, got %+v", income.Connections)
	}

	credit := g.Nodes["credit"]
	if credit.QuestionText != "Is the credit score above 700?" {
		t.Errorf("Expected question text, got %q", credit.QuestionText)
	}

	review := g.Nodes["review"]
	if !review.IsOutcome() || review.Decision != "MANUAL_REVIEW" {
		t.Errorf("Unexpected review node: %+v", review)
	}
	if review.Metadata["queue"] != "underwriting" {
		t.Errorf("Expected metadata, got %v", review.Metadata)
	}
}

func TestBuilder_AddReturnsExisting(t *testing.T) {
	b := New()
	b.Add("q").When("x").Branch("a", "o1")
	b.Add("q").Branch("b", "o2")

	g := b.Graph()
	if got := len(g.Nodes["q"].Connections); got != 2 {
		t.Errorf("Expected 2 connections on reused builder, got %d", got)
	}
}

func TestBuilder_DecideDropsConnections(t *testing.T) {
	b := New()
	b.Add("x").Branch("yes", "y").Decide("DONE")

	if n := b.Graph().Nodes["x"]; len(n.Connections) != 0 || n.Kind != domain.KindOutcome {
		t.Errorf("Expected bare outcome, got %+v", n)
	}
}

func TestBuilder_GraphIsIndependent(t *testing.T) {
	b := loanBuilder()
	g := b.Graph()
	g.Nodes["income"].Connections[0].Target = "mutated"

	if b.Graph().Nodes["income"].Connections[0].Target != "credit" {
		t.Error("Mutating a built graph must not affect the builder")
	}
}

func TestBuilder_Build(t *testing.T) {
	loader, err := loanBuilder().Build("loan")
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	ids, err := loader.ListDocuments()
	if err != nil || len(ids) != 1 || ids[0] != "loan" {
		t.Fatalf("Expected single document 'loan', got %v (%v)", ids, err)
	}

	raw, err := loader.GetDocument("loan")
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	doc, err := codec.Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if doc.Graph.Len() != 5 || !doc.Graph.HasEdge("credit", "review") {
		t.Errorf("Round-tripped graph lost structure: %d nodes", doc.Graph.Len())
	}
	if doc.Graph.StartNode != "income" {
		t.Errorf("Expected start node to survive encoding, got %q", doc.Graph.StartNode)
	}
}

package search

import (
	"context"
	"reflect"
	"testing"

	"pcx/internal/index"
)

func TestTokenize(t *testing.T) {
	cases := map[string][]string{
		"parseHTTPDoc":     {"parse", "http", "doc"},
		"snake_case_name":  {"snake", "case", "name"},
		"load_config2json": {"load", "config", "2", "json"},
		"simple":           {"simple"},
		"XMLParser":        {"xml", "parser"},
		"a.b-c":            {"a", "b", "c"},
		"":                 nil,
		"  ,,  ":           nil,
	}
	for in, want := range cases {
		if got := Tokenize(in); !reflect.DeepEqual(got, want) {
			t.Errorf("Tokenize(%q) = %v, want %v", in, got, want)
		}
	}
}

func conceptFixture() []index.Declaration {
	return []index.Declaration{
		{FilePath: "auth/login.py", Kind: "function", Name: "authenticate_user",
			Signature: "def authenticate_user(name, password):", StartLine: 10, EndLine: 30,
			Doc: "Checks credentials against the user store."},
		{FilePath: "auth/session.py", Kind: "class", Name: "SessionStore",
			Signature: "class SessionStore:", StartLine: 5, EndLine: 80,
			Doc: "Keeps active sessions in memory."},
		{FilePath: "billing/invoice.py", Kind: "function", Name: "render_invoice",
			Signature: "def render_invoice(order):", StartLine: 12, EndLine: 40,
			Doc: "Builds a PDF invoice for an order."},
	}
}

func TestConceptRanking(t *testing.T) {
	decls := conceptFixture()
	descriptions := map[string]string{
		"auth/login.py": "User authentication helpers.",
	}

	res, err := Concept(context.Background(), "authenticate user", decls, descriptions, 10)
	if err != nil {
		t.Fatalf("concept: %v", err)
	}
	if len(res.Hits) == 0 {
		t.Fatal("no hits")
	}
	if res.Hits[0].Declaration.Name != "authenticate_user" {
		t.Errorf("top hit = %s", res.Hits[0].Declaration.Name)
	}
	for i := 1; i < len(res.Hits); i++ {
		if res.Hits[i].Score > res.Hits[i-1].Score {
			t.Errorf("scores not non-increasing at %d", i)
		}
	}
	for _, h := range res.Hits {
		if h.Declaration.Name == "render_invoice" {
			t.Error("unrelated declaration ranked")
		}
	}
}

func TestConceptDeterministic(t *testing.T) {
	decls := conceptFixture()

	first, err := Concept(context.Background(), "user session", decls, nil, 10)
	if err != nil {
		t.Fatalf("concept: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Concept(context.Background(), "user session", decls, nil, 10)
		if err != nil {
			t.Fatalf("concept: %v", err)
		}
		if !reflect.DeepEqual(first.Hits, again.Hits) {
			t.Fatal("ranking changed between identical calls")
		}
	}
}

func TestConceptTieOrder(t *testing.T) {
	decls := []index.Declaration{
		{FilePath: "b.py", Kind: "function", Name: "widget", StartLine: 3},
		{FilePath: "a.py", Kind: "function", Name: "widget", StartLine: 9},
		{FilePath: "a.py", Kind: "function", Name: "widget", StartLine: 2},
	}
	res, err := Concept(context.Background(), "widget", decls, nil, 10)
	if err != nil {
		t.Fatalf("concept: %v", err)
	}
	if len(res.Hits) != 3 {
		t.Fatalf("got %d hits", len(res.Hits))
	}
	got := []struct {
		path string
		line int
	}{}
	for _, h := range res.Hits {
		got = append(got, struct {
			path string
			line int
		}{h.Declaration.FilePath, h.Declaration.StartLine})
	}
	want := []struct {
		path string
		line int
	}{{"a.py", 2}, {"a.py", 9}, {"b.py", 3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tie order = %v, want %v", got, want)
	}
}

func TestConceptTopN(t *testing.T) {
	var decls []index.Declaration
	for i := 0; i < 20; i++ {
		decls = append(decls, index.Declaration{
			FilePath: "f.py", Kind: "function", Name: "thing", StartLine: i + 1,
		})
	}
	res, err := Concept(context.Background(), "thing", decls, nil, 5)
	if err != nil {
		t.Fatalf("concept: %v", err)
	}
	if len(res.Hits) != 5 {
		t.Errorf("got %d hits, want 5", len(res.Hits))
	}
}

func TestConceptExactNameBonus(t *testing.T) {
	decls := []index.Declaration{
		{FilePath: "a.py", Kind: "function", Name: "scan", StartLine: 1},
		{FilePath: "b.py", Kind: "function", Name: "scan_directory", StartLine: 1},
	}
	res, err := Concept(context.Background(), "scan", decls, nil, 10)
	if err != nil {
		t.Fatalf("concept: %v", err)
	}
	if res.Hits[0].Declaration.Name != "scan" {
		t.Errorf("exact identifier not preferred: top = %s", res.Hits[0].Declaration.Name)
	}
}

func TestConceptInvalidRequests(t *testing.T) {
	decls := conceptFixture()
	if _, err := Concept(context.Background(), "", decls, nil, 10); err == nil {
		t.Error("empty query accepted")
	}
	if _, err := Concept(context.Background(), "ok", decls, nil, 0); err == nil {
		t.Error("top_n 0 accepted")
	}
}

package parser

import (
	"strings"
	"testing"
)

func findDecl(t *testing.T, res Result, name string) Declaration {
	t.Helper()
	for _, d := range res.Declarations {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("declaration %q not found in %+v", name, res.Declarations)
	return Declaration{}
}

func TestForExtension(t *testing.T) {
	cases := map[string]Language{
		".py":  LangPython,
		".rs":  LangRust,
		".cs":  LangCSharp,
		".js":  LangJavaScript,
		".jsx": LangJavaScript,
		".ts":  LangTypeScript,
		".TSX": LangTypeScript,
		".go":  LangNone,
		"":     LangNone,
	}
	for ext, want := range cases {
		if got := ForExtension(ext); got != want {
			t.Errorf("ForExtension(%q) = %q, want %q", ext, got, want)
		}
	}
}

func TestParsePython(t *testing.T) {
	src := `"""Utilities for loading data."""

def load(path):
    """Read a file.

    Returns bytes.
    """
    with open(path) as f:
        return f.read()

class Loader:
    """Caches loaded files."""

    def __init__(self, root):
        self.root = root

    def get(self, path) -> bytes:
        return load(path)

def main():
    pass
`
	res := parsePython(src)

	if res.Description != "Utilities for loading data." {
		t.Errorf("description = %q", res.Description)
	}

	load := findDecl(t, res, "load")
	if load.Kind != KindFunction {
		t.Errorf("load kind = %q", load.Kind)
	}
	if load.StartLine != 3 {
		t.Errorf("load start = %d, want 3", load.StartLine)
	}
	if load.EndLine != 9 {
		t.Errorf("load end = %d, want 9", load.EndLine)
	}
	if load.Doc != "Read a file. Returns bytes." {
		t.Errorf("load doc = %q", load.Doc)
	}

	loader := findDecl(t, res, "Loader")
	if loader.Kind != KindClass {
		t.Errorf("Loader kind = %q", loader.Kind)
	}
	if loader.Doc != "Caches loaded files." {
		t.Errorf("Loader doc = %q", loader.Doc)
	}
	if loader.EndLine != 18 {
		t.Errorf("Loader end = %d, want 18", loader.EndLine)
	}

	get := findDecl(t, res, "get")
	if get.Kind != KindMethod {
		t.Errorf("get kind = %q, want method", get.Kind)
	}
	if !strings.Contains(get.Signature, "-> bytes") {
		t.Errorf("get signature = %q", get.Signature)
	}

	if main := findDecl(t, res, "main"); main.Doc != "" {
		t.Errorf("main doc = %q, want empty", main.Doc)
	}
}

func TestParseRust(t *testing.T) {
	src := `//! Connection pooling.
//! Keeps sockets warm.

use std::io;

/// A pooled connection.
pub struct Conn {
    fd: i32,
}

impl Conn {
    /// Opens a connection.
    /// Retries once.
    pub async fn open(addr: &str) -> io::Result<Conn> {
        todo!()
    }
}

fn helper(n: usize) -> usize {
    n + 1
}
`
	res := parseRust(src)

	if res.Description != "Connection pooling. Keeps sockets warm." {
		t.Errorf("description = %q", res.Description)
	}

	conn := findDecl(t, res, "Conn")
	if conn.Kind != KindType {
		t.Errorf("Conn kind = %q", conn.Kind)
	}
	if conn.Doc != "A pooled connection." {
		t.Errorf("Conn doc = %q", conn.Doc)
	}

	open := findDecl(t, res, "open")
	if open.Kind != KindMethod {
		t.Errorf("open kind = %q, want method", open.Kind)
	}
	if open.Doc != "Opens a connection. Retries once." {
		t.Errorf("open doc = %q", open.Doc)
	}
	if open.StartLine != 14 {
		t.Errorf("open start = %d, want 14", open.StartLine)
	}
	if open.EndLine != 16 {
		t.Errorf("open end = %d, want 16", open.EndLine)
	}

	helper := findDecl(t, res, "helper")
	if helper.Kind != KindFunction {
		t.Errorf("helper kind = %q, want function", helper.Kind)
	}
	if helper.Doc != "" {
		t.Errorf("helper doc = %q, want empty", helper.Doc)
	}
}

func TestParseCSharp(t *testing.T) {
	src := `/// <summary>
/// Order processing.
/// </summary>
public class OrderService
{
    public string Name { get; set; }

    /// <summary>Submits an order.</summary>
    public async Task<bool> Submit(Order order)
    {
        if (order == null)
        {
            return false;
        }
        return true;
    }

    public bool Submit(Order order, int retries)
    {
        return true;
    }
}

public interface IOrderStore
{
    Task Save(Order order);
}
`
	res := parseCSharp(src)

	if res.Description != "Order processing." {
		t.Errorf("description = %q", res.Description)
	}

	svc := findDecl(t, res, "OrderService")
	if svc.Kind != KindClass {
		t.Errorf("OrderService kind = %q", svc.Kind)
	}
	if svc.Doc != "Order processing." {
		t.Errorf("OrderService doc = %q", svc.Doc)
	}

	store := findDecl(t, res, "IOrderStore")
	if store.Kind != KindType {
		t.Errorf("IOrderStore kind = %q, want type", store.Kind)
	}

	name := findDecl(t, res, "Name")
	if name.Kind != KindMethod {
		t.Errorf("Name kind = %q", name.Kind)
	}

	// The two Submit overloads merge into one entry
	submit := findDecl(t, res, "Submit")
	if !strings.Contains(submit.Signature, " | ") {
		t.Errorf("Submit signature not merged: %q", submit.Signature)
	}
	if submit.Doc != "Submits an order." {
		t.Errorf("Submit doc = %q", submit.Doc)
	}
	count := 0
	for _, d := range res.Declarations {
		if d.Name == "Submit" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Submit appears %d times after dedup", count)
	}
}

func TestParseJavaScript(t *testing.T) {
	src := `/**
 * HTTP helpers.
 */

/**
 * Fetches JSON from a URL.
 */
export async function fetchJSON(url) {
  const res = await fetch(url);
  return res.json();
}

// Formats a status line.
const formatStatus = (code) => ` + "`status ${code}`" + `;

export class Client extends Base {
  constructor(url) {
    super(url);
  }
}
`
	res := parseJavaScript(src)

	if res.Description != "HTTP helpers." {
		t.Errorf("description = %q", res.Description)
	}

	fetchJSON := findDecl(t, res, "fetchJSON")
	if fetchJSON.Kind != KindFunction {
		t.Errorf("fetchJSON kind = %q", fetchJSON.Kind)
	}
	if fetchJSON.Doc != "Fetches JSON from a URL." {
		t.Errorf("fetchJSON doc = %q", fetchJSON.Doc)
	}
	if fetchJSON.StartLine != 8 {
		t.Errorf("fetchJSON start = %d, want 8", fetchJSON.StartLine)
	}
	if fetchJSON.EndLine != 11 {
		t.Errorf("fetchJSON end = %d, want 11", fetchJSON.EndLine)
	}

	format := findDecl(t, res, "formatStatus")
	if format.Doc != "Formats a status line." {
		t.Errorf("formatStatus doc = %q", format.Doc)
	}

	client := findDecl(t, res, "Client")
	if client.Kind != KindClass {
		t.Errorf("Client kind = %q", client.Kind)
	}
}

func TestParseUnsupported(t *testing.T) {
	res := Parse(LangNone, "some plain text\nwith no structure\n")
	if res.Description != "" || len(res.Declarations) != 0 {
		t.Errorf("unexpected result for unsupported language: %+v", res)
	}
}

func TestDedupeOverloads(t *testing.T) {
	decls := []Declaration{
		{Kind: KindFunction, Name: "f", Signature: "f(a)", StartLine: 1, Doc: "first"},
		{Kind: KindFunction, Name: "f", Signature: "f(a, b)", StartLine: 5},
		{Kind: KindFunction, Name: "f", Signature: "f(a, b, c)", StartLine: 9, Doc: "third"},
		{Kind: KindFunction, Name: "f", Signature: "f(a, b, c, d)", StartLine: 13},
		{Kind: KindFunction, Name: "g", Signature: "g()", StartLine: 20},
	}
	out := dedupeOverloads(decls)

	if len(out) != 2 {
		t.Fatalf("got %d declarations, want 2", len(out))
	}
	f := out[0]
	if f.StartLine != 1 {
		t.Errorf("merged entry keeps first position, got line %d", f.StartLine)
	}
	if want := "f(a) | f(a, b) | f(a, b, c) (and 1 more overloads)"; f.Signature != want {
		t.Errorf("signature = %q, want %q", f.Signature, want)
	}
	if f.Doc != "first | third" {
		t.Errorf("doc = %q", f.Doc)
	}
}

func TestParseEmptyContent(t *testing.T) {
	for _, lang := range []Language{LangPython, LangRust, LangCSharp, LangJavaScript} {
		res := Parse(lang, "")
		if len(res.Declarations) != 0 {
			t.Errorf("%s: declarations from empty content: %+v", lang, res.Declarations)
		}
	}
}

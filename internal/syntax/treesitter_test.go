//go:build cgo

package syntax

import (
	"context"
	"testing"
)

func findDecl(decls []Declaration, name string) (Declaration, bool) {
	for _, d := range decls {
		if d.Name == name {
			return d, true
		}
	}
	return Declaration{}, false
}

func TestDeclarations_Go(t *testing.T) {
	source := []byte(`package main

type Handler struct {
	db *Database
}

func NewHandler(db *Database) *Handler {
	return &Handler{db: db}
}

func (h *Handler) Get(id string) (*Item, error) {
	item, err := h.db.Find(id)
	if err != nil {
		return nil, err
	}
	return item, nil
}
`)

	decls, err := Declarations(context.Background(), source, LangGo)
	if err != nil {
		t.Fatalf("Declarations() error = %v", err)
	}

	handler, ok := findDecl(decls, "Handler")
	if !ok || handler.Kind != "type" || handler.StartLine != 2 || handler.EndLine != 4 {
		t.Errorf("Handler = %+v, %v", handler, ok)
	}
	ctor, ok := findDecl(decls, "NewHandler")
	if !ok || ctor.Kind != "function" || ctor.StartLine != 6 || ctor.EndLine != 8 {
		t.Errorf("NewHandler = %+v, %v", ctor, ok)
	}
	get, ok := findDecl(decls, "Get")
	if !ok || get.Kind != "method" || get.Container != "Handler" {
		t.Errorf("Get = %+v, %v", get, ok)
	}
	if get.StartLine != 10 || get.EndLine != 16 {
		t.Errorf("Get lines = %d-%d, want 10-16", get.StartLine, get.EndLine)
	}
}

func TestDeclarations_Python(t *testing.T) {
	source := []byte(`class Greeter:
    def greet(self, name):
        return "hi " + name

def main():
    Greeter().greet("x")
`)

	decls, err := Declarations(context.Background(), source, LangPython)
	if err != nil {
		t.Fatalf("Declarations() error = %v", err)
	}
	greet, ok := findDecl(decls, "greet")
	if !ok || greet.Kind != "method" || greet.Container != "Greeter" {
		t.Errorf("greet = %+v, %v", greet, ok)
	}
	main, ok := findDecl(decls, "main")
	if !ok || main.Kind != "function" || main.StartLine != 4 {
		t.Errorf("main = %+v, %v", main, ok)
	}
}

func TestDeclarations_Java(t *testing.T) {
	source := []byte(`class Foo {
    Foo() {}
    void bar() {
        baz();
    }
}
`)

	decls, err := Declarations(context.Background(), source, LangJava)
	if err != nil {
		t.Fatalf("Declarations() error = %v", err)
	}
	bar, ok := findDecl(decls, "bar")
	if !ok || bar.Container != "Foo" || bar.StartLine != 2 || bar.EndLine != 4 {
		t.Errorf("bar = %+v, %v", bar, ok)
	}
}

func TestDeclarations_Unsupported(t *testing.T) {
	if _, err := Declarations(context.Background(), []byte("x"), Language("cobol")); err == nil {
		t.Error("expected error for unsupported language")
	}
}

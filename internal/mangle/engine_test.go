package mangle

import (
	"testing"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if engine == nil {
		t.Fatal("NewEngine() returned nil engine")
	}
}

func TestEngineLoadSchemaString(t *testing.T) {
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	schema := `Decl outcome(Test, Status) bound [/string, /name].`
	if err := engine.LoadSchemaString(schema); err != nil {
		t.Fatalf("LoadSchemaString() error = %v", err)
	}
}

func TestEngineAddFactsAndGetFacts(t *testing.T) {
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	schema := `Decl outcome(Test, Status) bound [/string, /name].`
	if err := engine.LoadSchemaString(schema); err != nil {
		t.Fatalf("LoadSchemaString() error = %v", err)
	}

	facts := []Fact{
		{Predicate: "outcome", Args: []interface{}{"test_a", "/pass"}},
		{Predicate: "outcome", Args: []interface{}{"test_b", "/fail"}},
	}
	if err := engine.AddFacts(facts); err != nil {
		t.Fatalf("AddFacts() error = %v", err)
	}

	got, err := engine.GetFacts("outcome")
	if err != nil {
		t.Fatalf("GetFacts() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 facts, got %d: %v", len(got), got)
	}
}

func TestEngineAddFactsBeforeSchemaErrors(t *testing.T) {
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	err = engine.AddFacts([]Fact{{Predicate: "outcome", Args: []interface{}{"test_a", "/pass"}}})
	if err == nil {
		t.Fatal("expected AddFacts() to fail before a schema is loaded")
	}
}

func TestEngineAddFactsWrongArityErrors(t *testing.T) {
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	schema := `Decl outcome(Test, Status) bound [/string, /name].`
	if err := engine.LoadSchemaString(schema); err != nil {
		t.Fatalf("LoadSchemaString() error = %v", err)
	}

	err = engine.AddFacts([]Fact{{Predicate: "outcome", Args: []interface{}{"test_a"}}})
	if err == nil {
		t.Fatal("expected AddFacts() to reject a fact with the wrong arity")
	}
}

func TestEngineGetFactsUndeclaredPredicateErrors(t *testing.T) {
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	if _, err := engine.GetFacts("nonexistent"); err == nil {
		t.Fatal("expected GetFacts() to fail for an undeclared predicate")
	}
}

func TestEngineDerivesRules(t *testing.T) {
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	schema := `
Decl gold(Test, Outcome) bound [/string, /name].
Decl candidate(Test, Outcome) bound [/string, /name].
Decl regressed(Test) bound [/string].

regressed(Test) :- gold(Test, /pass), candidate(Test, /fail).
`
	if err := engine.LoadSchemaString(schema); err != nil {
		t.Fatalf("LoadSchemaString() error = %v", err)
	}

	facts := []Fact{
		{Predicate: "gold", Args: []interface{}{"test_a", "/pass"}},
		{Predicate: "candidate", Args: []interface{}{"test_a", "/fail"}},
	}
	if err := engine.AddFacts(facts); err != nil {
		t.Fatalf("AddFacts() error = %v", err)
	}

	got, err := engine.GetFacts("regressed")
	if err != nil {
		t.Fatalf("GetFacts() error = %v", err)
	}
	if len(got) != 1 || got[0].Args[0] != "test_a" {
		t.Fatalf("expected regressed=[test_a], got %v", got)
	}
}

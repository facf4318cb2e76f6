package mangle

import (
	"context"
	"fmt"
)

// classifySchema declares the facts and derived predicates used to turn a
// pair of test-outcome maps (gold, candidate) into FAIL_TO_PASS and
// PASS_TO_PASS sets per spec §4.6 step 5.
//
//	gold(Test, Outcome).       candidate(Test, Outcome).
//	fail_to_pass(Test) :- gold(Test, /pass), candidate(Test, /fail).
//	fail_to_pass(Test) :- gold(Test, /pass), candidate(Test, /error).
//	pass_to_pass(Test) :- gold(Test, /pass), candidate(Test, /pass).
const classifySchema = `
Decl gold(Test, Outcome)
  bound [/string, /name].

Decl candidate(Test, Outcome)
  bound [/string, /name].

Decl fail_to_pass(Test)
  bound [/string].

Decl pass_to_pass(Test)
  bound [/string].

fail_to_pass(Test) :- gold(Test, /pass), candidate(Test, /fail).

fail_to_pass(Test) :- gold(Test, /pass), candidate(Test, /error).

pass_to_pass(Test) :- gold(Test, /pass), candidate(Test, /pass).
`

// Outcome is a single test's pass/fail/error/skip/missing status.
type Outcome string

const (
	OutcomePass    Outcome = "pass"
	OutcomeFail    Outcome = "fail"
	OutcomeError   Outcome = "error"
	OutcomeSkip    Outcome = "skip"
	OutcomeMissing Outcome = "missing"
)

// Classifier evaluates the F2P/P2P classification table over a gold and a
// candidate test-outcome map using a fresh Mangle engine per call. The
// engine is process-local and short-lived: classification is run once per
// candidate, so there is no benefit to sharing state across calls.
type Classifier struct{}

// NewClassifier returns a ready-to-use Classifier.
func NewClassifier() *Classifier { return &Classifier{} }

// Classify returns the sorted FAIL_TO_PASS and PASS_TO_PASS test names for
// one candidate, given the gold and candidate outcome maps.
func (c *Classifier) Classify(ctx context.Context, gold, candidate map[string]Outcome) (fail2pass, pass2pass []string, err error) {
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("classify: new engine: %w", err)
	}
	defer engine.Close()

	if err := engine.LoadSchemaString(classifySchema); err != nil {
		return nil, nil, fmt.Errorf("classify: load schema: %w", err)
	}

	allTests := make(map[string]struct{}, len(gold)+len(candidate))
	for t := range gold {
		allTests[t] = struct{}{}
	}
	for t := range candidate {
		allTests[t] = struct{}{}
	}

	var facts []Fact
	for t := range allTests {
		if o, ok := gold[t]; ok {
			facts = append(facts, Fact{Predicate: "gold", Args: []interface{}{t, "/" + string(o)}})
		}
		if o, ok := candidate[t]; ok {
			facts = append(facts, Fact{Predicate: "candidate", Args: []interface{}{t, "/" + string(o)}})
		}
	}
	if err := engine.AddFacts(facts); err != nil {
		return nil, nil, fmt.Errorf("classify: add facts: %w", err)
	}

	f2p, err := engine.GetFacts("fail_to_pass")
	if err != nil {
		return nil, nil, fmt.Errorf("classify: query fail_to_pass: %w", err)
	}
	p2p, err := engine.GetFacts("pass_to_pass")
	if err != nil {
		return nil, nil, fmt.Errorf("classify: query pass_to_pass: %w", err)
	}

	for _, f := range f2p {
		if len(f.Args) > 0 {
			if s, ok := f.Args[0].(string); ok {
				fail2pass = append(fail2pass, s)
			}
		}
	}
	for _, f := range p2p {
		if len(f.Args) > 0 {
			if s, ok := f.Args[0].(string); ok {
				pass2pass = append(pass2pass, s)
			}
		}
	}
	return fail2pass, pass2pass, nil
}

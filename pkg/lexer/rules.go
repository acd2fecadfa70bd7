package lexer

import "fmt"

// ----------------------------------------------------------------------------
// FSM rule table
//
// This section implements the table-driven finite-state machine described in
// spec.md §4.1, grounded directly on the 'Lexer'/'set_rules' machinery of
// original_source/pycomp/src/lexer.py: rules are (state, char-class, action)
// tuples; building the table rejects two rules claiming the same
// (state, byte) pair; a per-state fallback action (the Python '-1' sentinel)
// matches any byte the state's explicit rules don't cover.

// State is one of finitely many lexer states; "init" is the start state and
// the neutral state whenever no particular token is mid-recognition.
type State string

const StateInit State = "init"

// Action decides what happens to the byte at 'pos' while scanning 'line' in
// the given state. It returns whether the byte is consumed (accept), the
// next state, and the (possibly rewound) start-of-token index — exactly the
// (accept, state, start) triple returned by action() in the Python original.
type Action func(lx *Lexer, line string, pos int) (accept bool, next State, start int)

// Rule is one (state, char-class, action) tuple. Chars lists the explicit
// byte values this rule matches; Any, when true, makes this the state's
// fallback action (the Python '-1' sentinel), matching any byte the state's
// explicit rules didn't claim.
type Rule struct {
	State  State
	Chars  []byte
	Any    bool
	Action Action
}

// table is the compiled form of a []Rule: O(1) dispatch on (state, byte).
type table struct {
	byState   map[State]map[byte]Action
	fallback  map[State]Action
	hasFallbk map[State]bool
}

// buildTable compiles a rule list, rejecting construction if two rules
// claim the same (state, byte) pair or the same state's fallback twice.
func buildTable(rules []Rule) (*table, error) {
	t := &table{
		byState:   map[State]map[byte]Action{},
		fallback:  map[State]Action{},
		hasFallbk: map[State]bool{},
	}

	for _, r := range rules {
		if r.Any {
			if t.hasFallbk[r.State] {
				return nil, fmt.Errorf("duplicate fallback rule for state %q", r.State)
			}
			t.fallback[r.State] = r.Action
			t.hasFallbk[r.State] = true
			continue
		}

		sd, ok := t.byState[r.State]
		if !ok {
			sd = map[byte]Action{}
			t.byState[r.State] = sd
		}
		for _, c := range r.Chars {
			if _, dup := sd[c]; dup {
				return nil, fmt.Errorf("duplicate rule for state %q, byte %q", r.State, c)
			}
			sd[c] = r.Action
		}
	}

	return t, nil
}

// lookup resolves the action for (state, byte), falling back to the state's
// '-1' sentinel action, and reports whether any rule matched at all.
func (t *table) lookup(state State, c byte) (Action, bool) {
	if sd, ok := t.byState[state]; ok {
		if a, ok := sd[c]; ok {
			return a, true
		}
	}
	if a, ok := t.fallback[state]; ok {
		return a, true
	}
	return nil, false
}

func (t *table) hasState(state State) bool {
	_, explicit := t.byState[state]
	_, fallback := t.hasFallbk[state]
	return explicit || fallback
}

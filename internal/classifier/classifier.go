// Package classifier is the flow classifier collaborator spec.md §1
// scopes out of the core ("a black box supporting insert(rule,
// priority, conjunction_id, n_clauses) and lookup(packet) -> rule?").
// It exists only so property P6 (spec.md §8) has something to install
// match.Result into and query; the CLI's expr-to-flows/evaluate-expr
// commands do not use it, and production callers bring their own.
package classifier

import (
	"sort"

	"github.com/flowmatch/exprc/ast"
	"github.com/flowmatch/exprc/match"
)

// Rule is one installed flow entry.
type Rule struct {
	ID        int
	Priority  int
	Fields    []match.FieldConstraint
	ConjID    uint32
	ClauseIdx uint32
	NClauses  uint32
}

// Classifier holds installed rules, highest priority first.
type Classifier struct {
	rules []Rule
	next  int
}

func New() *Classifier {
	return &Classifier{}
}

// Install adds every match in r as a rule at priority, returning the
// assigned rule IDs in the same order as r.Matches.
func (c *Classifier) Install(r match.Result, priority int) []int {
	ids := make([]int, len(r.Matches))
	for i, m := range r.Matches {
		c.next++
		id := c.next
		ids[i] = id
		c.rules = append(c.rules, Rule{
			ID:        id,
			Priority:  priority,
			Fields:    m.Fields,
			ConjID:    m.ConjID,
			ClauseIdx: m.ClauseIdx,
			NClauses:  m.NClauses,
		})
	}
	sort.SliceStable(c.rules, func(i, j int) bool { return c.rules[i].Priority > c.rules[j].Priority })
	return ids
}

// Lookup reports whether packet matches the installed rule set and, if
// so, a hit's rule ID. A plain rule (ConjID == 0) hits as soon as its
// own fields match. A conjunction-group rule's ClauseIdx names which of
// the group's NClauses independent dimensions it tests; the group as a
// whole hits only once every dimension 1..NClauses has at least one
// matching clause (spec.md §4.7, §9: "the classifier returns a hit only
// when one clause of each group matches" — "group" here is each
// dimension, not the conjunction as a whole, so every dimension must
// contribute a match, not just any single clause of the conjunction).
func (c *Classifier) Lookup(packet map[string]ast.Value128) (int, bool) {
	type conjState struct {
		satisfied map[uint32]int
		nClauses  uint32
	}
	groups := map[uint32]*conjState{}

	bestID, bestPriority := 0, 0
	found := false
	consider := func(id, priority int) {
		if !found || priority > bestPriority {
			bestID, bestPriority, found = id, priority, true
		}
	}

	groupPriority := map[uint32]int{}
	groupRepID := map[uint32]int{}
	for _, r := range c.rules {
		if !fieldsMatch(r.Fields, packet) {
			continue
		}
		if r.ConjID == 0 {
			consider(r.ID, r.Priority)
			continue
		}
		st, ok := groups[r.ConjID]
		if !ok {
			st = &conjState{satisfied: map[uint32]int{}, nClauses: r.NClauses}
			groups[r.ConjID] = st
			groupRepID[r.ConjID] = r.ID
			groupPriority[r.ConjID] = r.Priority
		}
		if _, already := st.satisfied[r.ClauseIdx]; !already {
			st.satisfied[r.ClauseIdx] = r.ID
		}
	}

	for conjID, st := range groups {
		if uint32(len(st.satisfied)) >= st.nClauses {
			consider(groupRepID[conjID], groupPriority[conjID])
		}
	}
	return bestID, found
}

func fieldsMatch(fields []match.FieldConstraint, packet map[string]ast.Value128) bool {
	for _, f := range fields {
		pv, ok := packet[f.FieldID]
		if !ok {
			return false
		}
		if !pv.And(f.Mask).Equal(f.Value) {
			return false
		}
	}
	return true
}

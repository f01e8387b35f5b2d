// Properties in this file correspond to the invariants spec.md §8 asks
// the exhaustive harness to check over every tree shape and every
// variable assignment: simplification, normalization, and lowering must
// each preserve the expression's truth value (P3, P4, P6).
package exhaustive

import (
	"fmt"

	"github.com/flowmatch/exprc"
	"github.com/flowmatch/exprc/ast"
	"github.com/flowmatch/exprc/internal/classifier"
	"github.com/flowmatch/exprc/internal/testenv"
	"github.com/flowmatch/exprc/match"
)

// Violation records the first property failure Run encounters.
type Violation struct {
	Property   string
	Expr       string
	Assignment string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s violated by %s under %s", v.Property, v.Expr, v.Assignment)
}

// Stats summarizes a completed (or early-exited) Run.
type Stats struct {
	Shapes      int
	Expressions int
	Assignments int
}

func assignmentString(numeric []string, numVals []uint64, strs []string, strVals []string) string {
	return fmt.Sprintf("numeric=%v strs=%v", zip(numeric, numVals), zip(strs, strVals))
}

func zip[T any](names []string, vals []T) map[string]T {
	m := make(map[string]T, len(names))
	for i, n := range names {
		m[n] = vals[i]
	}
	return m
}

func toAssignment(numeric []string, numVals []uint64, strs []string, strVals []string) exprc.Assignment {
	a := exprc.Assignment{Numeric: map[string]ast.Value128{}, String: map[string]string{}}
	for i, n := range numeric {
		a.Numeric[n] = ast.Uint64Value128(numVals[i])
	}
	for i, s := range strs {
		a.String[s] = strVals[i]
	}
	return a
}

func toPacket(numeric []string, numVals []uint64, strs []string, strVals []string, strMap map[string]uint32) map[string]ast.Value128 {
	p := map[string]ast.Value128{}
	for i, n := range numeric {
		p[n] = ast.Uint64Value128(numVals[i])
	}
	for i, s := range strs {
		p[s] = ast.Uint64Value128(uint64(strMap[strVals[i]]))
	}
	return p
}

// Config bounds one harness invocation.
type Config struct {
	MaxLeaves int
	NVars     int
	SVars     int
	Bits      int
	RelOps    []ast.RelOp
	LeafCap   int // per-shape cap on leaf assignments enumerated, 0 = unbounded

	// Operation narrows which properties Run checks, mirroring the CLI's
	// --operation flag (spec.md §6): "convert" checks only the formatter
	// round-trip (P2); "simplify" adds P3; "normalize" adds P4/P5;
	// "flow" (the default when empty) adds P6. Each later stage implies
	// every earlier one, since a later pipeline stage is built on top of
	// the earlier ones.
	Operation string
}

func (cfg Config) checksSimplify() bool {
	switch cfg.Operation {
	case "convert":
		return false
	default:
		return true
	}
}

func (cfg Config) checksNormalize() bool {
	switch cfg.Operation {
	case "convert", "simplify":
		return false
	default:
		return true
	}
}

func (cfg Config) checksFlow() bool {
	return cfg.Operation == "" || cfg.Operation == "flow"
}

// Run checks P3 (simplify preserves evaluation), P4 (normalize preserves
// evaluation) and P6 (lowering to matches, installed in a classifier,
// preserves evaluation) across every shape with 1..cfg.MaxLeaves leaves,
// every leaf assignment from cfg's variable universe, and every
// assignment of that universe's variables.
func Run(cfg Config) (Stats, *Violation, error) {
	var stats Stats
	tbl, numericNames, strNames, err := testenv.VarSymtab(cfg.NVars, cfg.SVars, cfg.Bits)
	if err != nil {
		return stats, nil, err
	}
	strMap := map[string]uint32{"v0": 1, "v1": 2}
	candidates := AllLeafCandidates(cfg.NVars, cfg.SVars, cfg.Bits, cfg.RelOps)

	for n := 1; n <= cfg.MaxLeaves; n++ {
		shapes := Shapes(n)
		stats.Shapes += len(shapes)
		var viol *Violation
		done := false
		for _, shape := range shapes {
			LeafAssignments(candidates, n, cfg.LeafCap, func(leaves []LeafSpec) bool {
				e, err := BuildExpr(shape, leaves, tbl)
				if err != nil {
					viol = &Violation{Property: "build", Expr: err.Error()}
					done = true
					return false
				}
				stats.Expressions++
				v := checkOne(e, numericNames, strNames, cfg, strMap)
				if v != nil {
					viol = v
					done = true
					return false
				}
				return true
			})
			if done {
				break
			}
		}
		if viol != nil {
			return stats, viol, nil
		}
	}
	return stats, nil, nil
}

func checkOne(e ast.Expr, numericNames, strNames []string, cfg Config, strMap map[string]uint32) *Violation {
	// P2: formatting and re-parsing an expression must not change its
	// text (the formatter only ever sees expressions this harness built
	// itself, so "semantically equivalent" collapses to "identical" —
	// there is no independent source text to diverge from).
	formatted := exprc.Format(e)
	if got := exprc.Format(mustReparse(formatted, numericNames, strNames, cfg)); got != formatted {
		return &Violation{Property: "P2:format-roundtrip", Expr: formatted, Assignment: "n/a"}
	}

	simplified := e
	normalized := e
	var clsf *classifier.Classifier
	if cfg.checksSimplify() {
		simplified = exprc.Simplify(e)
	}
	if cfg.checksNormalize() {
		normalized = exprc.Normalize(simplified)
		if !ast.IsNormalized(normalized) {
			return &Violation{Property: "P5:is_normalized", Expr: exprc.Format(e), Assignment: "n/a"}
		}
	}
	if cfg.checksFlow() {
		if result, err := match.ToMatches(normalized, strMap); err == nil {
			clsf = classifier.New()
			clsf.Install(result, 1)
		}
	}

	var viol *Violation
	Assignments(cfg.NVars, cfg.SVars, cfg.Bits, func(numVals []uint64, strVals []string) bool {
		assignment := toAssignment(numericNames, numVals, strNames, strVals)
		want := exprc.Evaluate(e, assignment)

		if cfg.checksSimplify() {
			if got := exprc.Evaluate(simplified, assignment); got != want {
				viol = &Violation{Property: "P3:simplify", Expr: exprc.Format(e), Assignment: assignmentString(numericNames, numVals, strNames, strVals)}
				return false
			}
		}
		if cfg.checksNormalize() {
			if got := exprc.Evaluate(normalized, assignment); got != want {
				viol = &Violation{Property: "P4:normalize", Expr: exprc.Format(e), Assignment: assignmentString(numericNames, numVals, strNames, strVals)}
				return false
			}
		}
		if clsf != nil {
			packet := toPacket(numericNames, numVals, strNames, strVals, strMap)
			_, hit := clsf.Lookup(packet)
			if hit != want {
				viol = &Violation{Property: "P6:lower", Expr: exprc.Format(e), Assignment: assignmentString(numericNames, numVals, strNames, strVals)}
				return false
			}
		}
		return true
	})
	return viol
}

// mustReparse re-parses text against a fresh copy of the same variable
// universe e was built from; a parse failure here is itself a P2
// violation, surfaced as a formatted-identity mismatch by the caller.
func mustReparse(text string, numericNames, strNames []string, cfg Config) ast.Expr {
	tbl, _, _, err := testenv.VarSymtab(len(numericNames), len(strNames), cfg.Bits)
	if err != nil {
		return ast.Boolean(false)
	}
	e, err := exprc.Compile(text, tbl)
	if err != nil {
		return ast.Boolean(false)
	}
	return e
}

// Package testenv builds the symbol tables the CLI and test harness
// compile expressions against: a realistic packet-header table for the
// worked examples of spec.md §8, and a parametric table of bare
// numeric/string variables for internal/exhaustive's property checks.
package testenv

import (
	"fmt"

	"github.com/flowmatch/exprc"
	"github.com/flowmatch/exprc/symtab"
)

// DefaultSymtab registers the fields spec.md §8's worked examples
// reference: eth.type/ip.proto/tcp.dst/tcp.src/udp.dst with the
// ip4/ip6 predicates and prerequisite chain scenario 1 names, ip4.src
// for the CIDR example (scenario 3), eth.src with a named multicast
// sub-field alongside its inline-bit-range use (scenario 4), a
// self-referential field for the cycle scenario (scenario 6), and an
// inport string symbol for string-equality examples.
func DefaultSymtab() (*symtab.Table, error) {
	tbl := exprc.NewSymtab()

	steps := []func() error{
		func() error { return tbl.AddField("eth.type", "MFF_ETH_TYPE", 16, false, "") },
		func() error { return tbl.AddPredicate("ip4", "eth.type == 0x800") },
		func() error { return tbl.AddPredicate("ip6", "eth.type == 0x86dd") },
		func() error { return tbl.AddField("ip.proto", "MFF_IP_PROTO", 8, false, "ip4") },
		func() error { return tbl.AddField("ip4.src", "MFF_IPV4_SRC", 32, false, "ip4") },
		func() error { return tbl.AddField("ip4.dst", "MFF_IPV4_DST", 32, false, "ip4") },
		func() error { return tbl.AddField("tcp.src", "MFF_TCP_SRC", 16, false, "ip.proto == 6") },
		func() error { return tbl.AddField("tcp.dst", "MFF_TCP_DST", 16, false, "ip.proto == 6") },
		func() error { return tbl.AddField("udp.src", "MFF_UDP_SRC", 16, false, "ip.proto == 17") },
		func() error { return tbl.AddField("udp.dst", "MFF_UDP_DST", 16, false, "ip.proto == 17") },
		func() error { return tbl.AddField("eth.src", "MFF_ETH_SRC", 48, false, "") },
		func() error { return tbl.AddField("eth.dst", "MFF_ETH_DST", 48, false, "") },
		func() error { return tbl.AddSubfield("eth.src.mcast", "eth.src", 0, 0, "") },
		func() error { return tbl.AddString("inport", "MFF_LOG_INPORT", "") },
		func() error { return tbl.AddString("outport", "MFF_LOG_OUTPORT", "") },
		func() error { return tbl.AddField("self_recurse", "reg0", 1, false, "self_recurse != 0") },
		func() error {
			return tbl.AddField("must_crack_field", "reg1", 4, true, "")
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, fmt.Errorf("testenv: %w", err)
		}
	}
	return tbl, nil
}

// VarSymtab registers nvars (0..4) numeric fields n0..n{nvars-1} of the
// given bit width and svars (0..4) string symbols s0..s{svars-1}, with
// no prerequisites — the bare variable universe
// internal/exhaustive/cmd/exprtool's --nvars/--svars/--bits flags
// drive (spec.md §6, §9: "digit-cascade enumerator over ... variables
// ... masks").
func VarSymtab(nvars, svars, bits int) (tbl *symtab.Table, numeric, strings []string, err error) {
	tbl = exprc.NewSymtab()
	for i := 0; i < nvars; i++ {
		name := fmt.Sprintf("n%d", i)
		if err := tbl.AddField(name, name, bits, false, ""); err != nil {
			return nil, nil, nil, err
		}
		numeric = append(numeric, name)
	}
	for i := 0; i < svars; i++ {
		name := fmt.Sprintf("s%d", i)
		if err := tbl.AddString(name, name, ""); err != nil {
			return nil, nil, nil, err
		}
		strings = append(strings, name)
	}
	return tbl, numeric, strings, nil
}

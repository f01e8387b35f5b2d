package exhaustive

import (
	"context"
	"sync"

	"github.com/flowmatch/exprc/internal/testenv"
	"golang.org/x/sync/errgroup"
)

// RunParallel shards Run's per-shape work across parallel workers
// (spec.md §9: "the harness forks N worker processes" — here, N
// goroutines coordinated by an errgroup, the idiomatic Go analogue;
// spawning N OS processes to share no state would only add IPC for
// what is already a shared-memory-safe, read-only workload). The first
// violation found by any worker is returned; workers already in flight
// finish their current shape before stopping.
func RunParallel(cfg Config, parallel int) (Stats, *Violation, error) {
	if parallel <= 1 {
		return Run(cfg)
	}
	tbl, numericNames, strNames, err := testenv.VarSymtab(cfg.NVars, cfg.SVars, cfg.Bits)
	if err != nil {
		return Stats{}, nil, err
	}
	candidates := AllLeafCandidates(cfg.NVars, cfg.SVars, cfg.Bits, cfg.RelOps)
	strMap := map[string]uint32{"v0": 1, "v1": 2}

	var allShapes []*Shape
	for n := 1; n <= cfg.MaxLeaves; n++ {
		allShapes = append(allShapes, Shapes(n)...)
	}

	var mu sync.Mutex
	var stats Stats
	var firstViol *Violation

	base, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(base)
	work := make(chan *Shape)
	g.Go(func() error {
		defer close(work)
		for _, s := range allShapes {
			select {
			case work <- s:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < parallel; i++ {
		g.Go(func() error {
			for shape := range work {
				n := LeafCount(shape)
				var localViol *Violation
				LeafAssignments(candidates, n, cfg.LeafCap, func(leaves []LeafSpec) bool {
					e, err := BuildExpr(shape, leaves, tbl)
					if err != nil {
						return true
					}
					mu.Lock()
					stats.Expressions++
					mu.Unlock()
					if v := checkOne(e, numericNames, strNames, cfg, strMap); v != nil {
						localViol = v
						return false
					}
					return true
				})
				if localViol != nil {
					mu.Lock()
					if firstViol == nil {
						firstViol = localViol
					}
					mu.Unlock()
					cancel()
					return nil
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil && firstViol == nil {
		return stats, nil, err
	}
	stats.Shapes = len(allShapes)
	return stats, firstViol, nil
}

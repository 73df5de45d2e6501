// Package regalloc implements iterated graph-coloring register allocation
// over the interference graph derived from a function's live ranges. It
// generalizes an earlier linear-scan engine into the graph-coloring family,
// keeping the RegisterAllocator-as-a-struct shape and
// PhysicalRegister-classification idiom (see DESIGN.md).
package regalloc

import (
	"sort"

	"github.com/orizon-lang/orizon/internal/codegen/liveness"
	"github.com/orizon-lang/orizon/internal/riscvlir"
)

// Result is the allocator's output: a color map for every virtual that
// could be colored, and a spill set for every virtual that could not
// (spec §4.6).
type Result struct {
	Colors map[riscvlir.Reg]riscvlir.Reg // virtual -> physical
	Spills map[riscvlir.Reg]bool
}

// node is one virtual register's entry in the interference graph.
type node struct {
	reg           riscvlir.Reg
	neighbors     map[riscvlir.Reg]struct{}
	forcedUnavail riscvlir.RegUsedStat
	useCount      int
	firstDef      int
	lastUse       int
	spillPick     bool
}

// Graph is the interference graph plus enough bookkeeping to run the
// simplify/spill/select pipeline deterministically.
type Graph struct {
	nodes map[riscvlir.Reg]*node
	order []riscvlir.Reg // insertion order, for deterministic iteration
}

// Build walks every block's instructions via the shared liveness
// traversal (spec §4.5) and derives: (1) ordinary interference edges
// between a def and everything simultaneously live, and (2) call-site
// constraint edges — every caller-save physical forced unavailable for
// every virtual live across a call (spec §4.6's "Call constraints").
// f must already have fresh liveness (liveness.Compute) before calling.
func Build(f *riscvlir.Function) *Graph {
	g := &Graph{nodes: map[riscvlir.Reg]*node{}}
	globalIdx := 0

	get := func(r riscvlir.Reg) *node {
		n, ok := g.nodes[r]
		if !ok {
			n = &node{reg: r, neighbors: map[riscvlir.Reg]struct{}{}, forcedUnavail: riscvlir.InitUnspecialRegs(), firstDef: -1, lastUse: -1}
			g.nodes[r] = n
			g.order = append(g.order, r)
		}

		return n
	}

	for _, b := range f.Blocks {
		liveness.WalkBackward(b, func(il liveness.InstLive) {
			idx := globalIdx + il.Index

			for _, d := range riscvlir.DefRegs(il.Inst) {
				if !d.IsVirtual() {
					continue
				}

				dn := get(d)

				if dn.firstDef == -1 || idx < dn.firstDef {
					dn.firstDef = idx
				}

				for live := range il.LiveNow {
					if live == d {
						continue
					}

					if live.IsVirtual() {
						if live.Kind != d.Kind {
							continue
						}

						dn.neighbors[live] = struct{}{}
						get(live).neighbors[d] = struct{}{}
					} else {
						dn.forcedUnavail.Use(live)
					}
				}
			}

			for _, u := range riscvlir.UseRegs(il.Inst) {
				if !u.IsVirtual() {
					continue
				}

				un := get(u)
				un.useCount++

				if idx > un.lastUse {
					un.lastUse = idx
				}
			}

			if riscvlir.IsCall(il.Inst) {
				for live := range il.LiveNow {
					if !live.IsVirtual() {
						continue
					}

					ln := get(live)
					for id := 0; id < 32; id++ {
						if riscvlir.IsCallerSave(id) {
							ln.forcedUnavail.Use(riscvlir.P(id, live.Kind))
						}
					}
				}
			}
		})

		globalIdx += len(b.Insts)
	}

	return g
}

// Coalesce merges move-related virtual pairs (src's only use is the move,
// dst and src don't interfere) into a single node, when the merged node
// stays colorable by a simple degree check (spec §4.6's "Move-related
// virtuals ... may be coalesced"). It returns the set of (src->dst)
// merges applied so the caller can rewrite the function and drop the
// now-redundant moves.
func (g *Graph) Coalesce(f *riscvlir.Function) map[riscvlir.Reg]riscvlir.Reg {
	merged := map[riscvlir.Reg]riscvlir.Reg{} // src -> dst (canonical)

	canon := func(r riscvlir.Reg) riscvlir.Reg {
		for {
			if d, ok := merged[r]; ok {
				r = d
				continue
			}

			return r
		}
	}

	for _, b := range f.Blocks {
		for _, inst := range b.Insts {
			mv, ok := inst.(riscvlir.Move)
			if !ok || !mv.Src.IsVirtual() || !mv.Dst.IsVirtual() {
				continue
			}

			src, dst := canon(mv.Src), canon(mv.Dst)
			if src == dst {
				continue
			}

			sn, dn := g.nodes[src], g.nodes[dst]
			if sn == nil || dn == nil || sn.useCount != 1 {
				continue
			}

			if _, interferes := sn.neighbors[dst]; interferes {
				continue
			}

			combinedDegree := len(sn.neighbors) + len(dn.neighbors)
			avail := riscvlir.InitForKind(dst.Kind).NumAvailable(dst.Kind)

			if combinedDegree >= avail {
				continue // merged node would not obviously stay colorable
			}

			for nb := range sn.neighbors {
				dn.neighbors[nb] = struct{}{}

				if nbn := g.nodes[nb]; nbn != nil {
					delete(nbn.neighbors, src)
					nbn.neighbors[dst] = struct{}{}
				}
			}

			dn.forcedUnavail.Merge(sn.forcedUnavail)
			dn.useCount += sn.useCount
			merged[src] = dst
		}
	}

	return merged
}

// Allocate runs the iterated graph-coloring algorithm to completion on g
// and returns the color/spill partition (spec §4.6).
func Allocate(g *Graph) Result {
	res := Result{Colors: map[riscvlir.Reg]riscvlir.Reg{}, Spills: map[riscvlir.Reg]bool{}}

	var stack []riscvlir.Reg

	remaining := map[riscvlir.Reg]bool{}
	for _, r := range g.order {
		remaining[r] = true
	}

	degree := func(r riscvlir.Reg) int {
		n := g.nodes[r]
		d := 0

		for nb := range n.neighbors {
			if remaining[nb] {
				d++
			}
		}

		return d
	}

	availColors := func(r riscvlir.Reg) int {
		n := g.nodes[r]

		return n.forcedUnavail.NumAvailable(r.Kind)
	}

	for len(remaining) > 0 {
		// Simplify: remove any node whose degree is strictly less than its
		// available color count — always colorable regardless of neighbor
		// choices (spec §4.6's colorability contract).
		picked := false

		candidates := sortedRemaining(remaining)
		for _, r := range candidates {
			if degree(r) < availColors(r) {
				stack = append(stack, r)
				delete(remaining, r)
				picked = true

				break
			}
		}

		if picked {
			continue
		}

		// No simplifiable node: pick a spill candidate favoring long live
		// ranges and low use frequency, ties broken by lower virtual id
		// for reproducible output (spec §4.6).
		victim := chooseSpillCandidate(g, candidates)
		g.nodes[victim].spillPick = true
		stack = append(stack, victim)
		delete(remaining, victim)
	}

	colored := map[riscvlir.Reg]riscvlir.Reg{}

	for i := len(stack) - 1; i >= 0; i-- {
		r := stack[i]
		n := g.nodes[r]

		used := n.forcedUnavail
		for nb := range n.neighbors {
			if c, ok := colored[nb]; ok {
				used.Use(c)
			}
		}

		if color, ok := used.GetAvailable(r.Kind); ok {
			colored[r] = color
			res.Colors[r] = color
		} else {
			res.Spills[r] = true
		}
	}

	return res
}

func sortedRemaining(remaining map[riscvlir.Reg]bool) []riscvlir.Reg {
	out := make([]riscvlir.Reg, 0, len(remaining))
	for r := range remaining {
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// chooseSpillCandidate scores each candidate by live-range length over
// (use count + 1) — long range, low use frequency spills first — and
// breaks ties by lower virtual id (spec §4.6).
func chooseSpillCandidate(g *Graph, candidates []riscvlir.Reg) riscvlir.Reg {
	best := candidates[0]
	bestScore := -1.0

	for _, r := range candidates {
		n := g.nodes[r]
		rangeLen := n.lastUse - n.firstDef

		if rangeLen < 0 {
			rangeLen = 0
		}

		score := float64(rangeLen) / float64(n.useCount+1)

		if score > bestScore || (score == bestScore && r.ID < best.ID) {
			bestScore = score
			best = r
		}
	}

	return best
}

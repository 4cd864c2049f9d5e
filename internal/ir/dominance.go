package ir

// DominanceInfo is the dominator tree of a function's CFG, rooted at the
// entry block, computed with the iterative Cooper/Harvey/Kennedy algorithm
// over a reverse-post-order traversal. Unreachable blocks are excluded and
// Contains reports false for them.
type DominanceInfo struct {
	fn       *Function
	order    []*BasicBlock   // reverse post-order, order[0] is entry
	index    map[*BasicBlock]int
	idom     []int // idom[i] is the RPO index of order[i]'s immediate dominator; idom[0] == 0 (entry dominates itself)
	reachable map[*BasicBlock]bool
}

// dominanceAnalysis adapts DominanceInfo to the pass.Analysis[*Function, *DominanceInfo]
// contract so it can be cached on a Function's PassManager.
type dominanceAnalysis struct{}

func (dominanceAnalysis) Identity() any { return dominanceAnalysis{} }

func (dominanceAnalysis) Compute(fn *Function) *DominanceInfo {
	return computeDominance(fn)
}

func computeDominance(fn *Function) *DominanceInfo {
	info := &DominanceInfo{fn: fn, index: make(map[*BasicBlock]int), reachable: make(map[*BasicBlock]bool)}
	entry := fn.Entry()
	if entry == nil {
		return info
	}

	order := reversePostOrder(entry)
	info.order = order
	for i, bb := range order {
		info.index[bb] = i
		info.reachable[bb] = true
	}

	idom := make([]int, len(order))
	for i := range idom {
		idom[i] = -1
	}
	idom[0] = 0

	changed := true
	for changed {
		changed = false
		for i := 1; i < len(order); i++ {
			bb := order[i]
			newIdom := -1
			for _, pred := range predecessors(fn, bb) {
				pi, ok := info.index[pred]
				if !ok || idom[pi] == -1 {
					continue // predecessor not yet processed or unreachable
				}
				if newIdom == -1 {
					newIdom = pi
					continue
				}
				newIdom = intersect(idom, pi, newIdom)
			}
			if newIdom != -1 && idom[i] != newIdom {
				idom[i] = newIdom
				changed = true
			}
		}
	}
	info.idom = idom
	return info
}

func intersect(idom []int, a, b int) int {
	for a != b {
		for a > b {
			a = idom[a]
		}
		for b > a {
			b = idom[b]
		}
	}
	return a
}

func reversePostOrder(entry *BasicBlock) []*BasicBlock {
	var post []*BasicBlock
	visited := make(map[*BasicBlock]bool)
	var visit func(bb *BasicBlock)
	visit = func(bb *BasicBlock) {
		if visited[bb] || bb == nil {
			return
		}
		visited[bb] = true
		if term := bb.Terminator(); term != nil {
			for _, succ := range term.Kind.Successors() {
				visit(succ)
			}
		}
		post = append(post, bb)
	}
	visit(entry)

	rpo := make([]*BasicBlock, len(post))
	for i, bb := range post {
		rpo[len(post)-1-i] = bb
	}
	return rpo
}

func predecessors(fn *Function, target *BasicBlock) []*BasicBlock {
	var preds []*BasicBlock
	for _, bb := range fn.Blocks {
		term := bb.Terminator()
		if term == nil {
			continue
		}
		for _, succ := range term.Kind.Successors() {
			if succ == target {
				preds = append(preds, bb)
				break
			}
		}
	}
	return preds
}

// Contains reports whether bb is reachable from the entry block.
func (d *DominanceInfo) Contains(bb *BasicBlock) bool { return d.reachable[bb] }

// Dominates reports whether a dominates b (every path from entry to b
// passes through a), including a == b.
func (d *DominanceInfo) Dominates(a, b *BasicBlock) bool {
	ai, aok := d.index[a]
	bi, bok := d.index[b]
	if !aok || !bok {
		return false
	}
	for bi != 0 {
		if bi == ai {
			return true
		}
		bi = d.idom[bi]
	}
	return ai == 0
}

// ProperlyDominates reports whether a dominates b and a != b.
func (d *DominanceInfo) ProperlyDominates(a, b *BasicBlock) bool {
	return a != b && d.Dominates(a, b)
}

// position identifies an instruction's or argument's place within a block,
// for the same-block linear-order comparison the spec calls for. Block
// parameters occupy position -1, before every instruction.
type position struct {
	block *BasicBlock
	index int
}

func definitionPosition(def Definition) (position, bool) {
	switch d := def.(type) {
	case *Argument:
		return position{block: d.Block, index: -1}, true
	case *Instruction:
		return position{block: d.Block, index: d.Block.InstructionIndex(d)}, true
	default:
		return position{}, false // Variable/Function: module-scoped, always in scope
	}
}

func userPosition(inst *Instruction) position {
	return position{block: inst.Block, index: inst.Block.InstructionIndex(inst)}
}

// DefProperlyDominatesUser reports whether the definition of def properly
// dominates the use site user, per spec §4.5: same-block uses compare
// linear index, cross-block uses consult the dominator tree. Variables and
// Functions are module-scoped and are always considered in scope. Entry
// block arguments dominate every instruction in the function.
func (d *DominanceInfo) DefProperlyDominatesUser(def Definition, user *Instruction) bool {
	defPos, scoped := definitionPosition(def)
	if !scoped {
		return true
	}
	userPos := userPosition(user)

	if defPos.block == userPos.block {
		return defPos.index < userPos.index
	}
	return d.ProperlyDominates(defPos.block, userPos.block)
}

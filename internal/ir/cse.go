package ir

import "strings"

// CommonSubexpressionElimination collapses duplicate pure computations
// within a function, processing blocks in dominator-tree pre-order so an
// expression computed in an ancestor block dominates any use in a
// descendant, per spec §4.9. It is idempotent.
type CommonSubexpressionElimination struct{}

func (CommonSubexpressionElimination) Name() string { return "CommonSubexpressionElimination" }

// cseScope is a chained value-number table: Lookup walks outward through
// parent scopes, mirroring the "push on enter, pop on leave" dominator-tree
// walk described in the spec without needing an explicit stack.
type cseScope struct {
	parent *cseScope
	table  map[string]*Instruction
}

func newCSEScope(parent *cseScope) *cseScope {
	return &cseScope{parent: parent, table: make(map[string]*Instruction)}
}

func (s *cseScope) lookup(key string) (*Instruction, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if inst, ok := sc.table[key]; ok {
			return inst, true
		}
	}
	return nil, false
}

func (s *cseScope) insert(key string, inst *Instruction) {
	s.table[key] = inst
}

func (c CommonSubexpressionElimination) Apply(fn *Function) bool {
	entry := fn.Entry()
	if entry == nil {
		return false
	}
	dom := Dominance(fn)
	children := dominatorChildren(fn, dom)

	changed := false
	var walk func(bb *BasicBlock, scope *cseScope)
	walk = func(bb *BasicBlock, scope *cseScope) {
		local := newCSEScope(scope)
		for _, inst := range append([]*Instruction(nil), bb.Instructions...) {
			if inst.Kind.IsTerminator() {
				continue
			}
			key, keyable := cseKey(inst.Kind)
			if !keyable {
				continue
			}
			if rep, ok := local.lookup(key); ok {
				replaceAllUses(fn, inst, rep)
				removeInstruction(inst)
				changed = true
				continue
			}
			local.insert(key, inst)
		}
		for _, child := range children[bb] {
			walk(child, local)
		}
	}
	walk(entry, nil)

	if changed {
		fn.InvalidatePassResults()
	}
	return changed
}

// dominatorChildren groups each reachable block's immediate dominator tree
// children, derived from DominanceInfo.
func dominatorChildren(fn *Function, dom *DominanceInfo) map[*BasicBlock][]*BasicBlock {
	children := make(map[*BasicBlock][]*BasicBlock)
	for _, bb := range fn.Blocks {
		if !dom.Contains(bb) || bb == fn.Entry() {
			continue
		}
		for _, cand := range fn.Blocks {
			if dom.Contains(cand) && isImmediateDominator(dom, cand, bb, fn) {
				children[cand] = append(children[cand], bb)
				break
			}
		}
	}
	return children
}

func isImmediateDominator(dom *DominanceInfo, idomCand, bb *BasicBlock, fn *Function) bool {
	if !dom.ProperlyDominates(idomCand, bb) {
		return false
	}
	for _, other := range fn.Blocks {
		if other == idomCand || other == bb || !dom.Contains(other) {
			continue
		}
		if dom.ProperlyDominates(idomCand, other) && dom.ProperlyDominates(other, bb) {
			return false // idomCand is not immediate: other sits between them
		}
	}
	return true
}

// cseKey derives the value-number key for pure, keyable instruction kinds.
// Commutative boolean ops sort their operand keys; every other kind is
// ordered by operand position.
func cseKey(kind InstructionKind) (string, bool) {
	switch k := kind.(type) {
	case *InstBooleanBinary:
		l, r := operandKey(k.Left), operandKey(k.Right)
		if l > r {
			l, r = r, l
		}
		return "bool:" + k.Op.String() + ":" + l + "," + r, true
	case *InstNot:
		return "not:" + operandKey(k.Operand), true
	case *InstLiteral:
		return "literal:" + k.Type.String() + ":" + k.Value.String(), true
	case *InstExtract:
		return "extract:" + operandKey(k.From) + ":" + keysKey(k.Keys), true
	case *InstElementPointer:
		return "elementPointer:" + operandKey(k.Ptr) + ":" + keysKey(k.Keys), true
	default:
		return "", false
	}
}

// operandKey derives a stable per-instruction key: the defining
// instruction's id for a definition use, else a structural key for
// literals (type + literal form), per spec §4.9.
func operandKey(u Use) string {
	if u.IsLiteral() {
		return "lit:" + u.ValueType().String() + ":" + u.Lit.String()
	}
	if inst, ok := u.Def.(*Instruction); ok {
		return "id:" + itoa(inst.ID)
	}
	return "def:" + definitionIdentifier(u.Def)
}

func keysKey(keys []ElementKey) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		switch {
		case k.Index != nil:
			parts[i] = "#" + itoa(*k.Index)
		case k.Name != nil:
			parts[i] = "." + *k.Name
		case k.Value != nil:
			parts[i] = "$" + operandKey(*k.Value)
		}
	}
	return strings.Join(parts, ",")
}

// replaceAllUses rewrites every instruction in fn that references old to
// reference rep instead.
func replaceAllUses(fn *Function, old, rep *Instruction) {
	for _, bb := range fn.Blocks {
		for _, inst := range bb.Instructions {
			Substitute(inst.Kind, old, rep)
		}
	}
}

// RunCSE applies CommonSubexpressionElimination to every function in m.
func RunCSE(m *Module, verify bool) (bool, error) {
	return mapTransform(m, CommonSubexpressionElimination{}, verify)
}

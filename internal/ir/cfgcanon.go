package ir

// CFGCanonicalization rewrites a function into single-exit form, per spec
// §4.10: every original Return is redirected through a chain of
// parameterized Branch instructions to one final exit block, and any pair
// of a Conditional's successors that both return merge through an
// inserted join block.
type CFGCanonicalization struct{}

func (CFGCanonicalization) Name() string { return "CFGCanonicalization" }

func (c CFGCanonicalization) Apply(fn *Function) bool {
	exits := exitBlocks(fn)
	if len(exits) <= 1 {
		return false
	}

	b := &Builder{fn: fn}
	exit := b.CreateBlock(fn, "exit")
	var exitParam *Argument
	if !IsVoid(fn.ReturnType) {
		exitParam = b.AddArgument(exit, "exit_value", fn.ReturnType)
	}
	b.SetInsertPoint(exit)
	if exitParam != nil {
		ret := DefUse(Definition(exitParam))
		b.Return(&ret)
	} else {
		b.Return(nil)
	}

	for _, bb := range exits {
		term := bb.Terminator()
		retInst, ok := term.Kind.(*InstReturn)
		if !ok {
			continue
		}
		var args []Use
		if retInst.Value != nil {
			args = []Use{*retInst.Value}
		}
		idx := bb.InstructionIndex(term)
		bb.Instructions = bb.Instructions[:idx]
		b.SetInsertPoint(bb)
		b.Branch(exit, args)
	}

	for insertJoinBlocks(fn, b, exit, exitParam) {
	}

	fn.InvalidatePassResults()
	return true
}

func exitBlocks(fn *Function) []*BasicBlock {
	var exits []*BasicBlock
	for _, bb := range fn.Blocks {
		if term := bb.Terminator(); term != nil {
			if _, ok := term.Kind.(*InstReturn); ok {
				exits = append(exits, bb)
			}
		}
	}
	return exits
}

// isTrampolineToExit reports whether bb is exit itself, branches directly
// to exit (this is what every original Return site looks like right after
// step 2 rewrites it, and what every join block this pass creates looks
// like too), or has already been reduced by a prior merge to a Conditional
// whose two arms both target that same trampoline. That last case is what
// lets nested conditionals (spec scenario S5) converge across repeated
// calls to insertJoinBlocks: a block that merely houses an already-merged
// inner Conditional (ThenBlock == ElseBlock) is recognized as exit-reaching
// too, so its own outer Conditional can merge on the next iteration.
func isTrampolineToExit(bb, exit *BasicBlock) bool {
	if bb == exit {
		return true
	}
	term := bb.Terminator()
	switch k := term.Kind.(type) {
	case *InstBranch:
		return k.Target == exit
	case *InstConditional:
		return k.ThenBlock == k.ElseBlock && isTrampolineToExit(k.ThenBlock, exit)
	default:
		return false
	}
}

// insertJoinBlocks handles the case where a Conditional's two arms both
// reach exit (directly, or through a chain of pure forwarding blocks this
// pass itself created): they are redirected through a shared join block
// carrying the merged value, per step 3 of §4.10. The caller loops this
// until it reports no change, so nested conditionals merge bottom-up one
// level per iteration.
func insertJoinBlocks(fn *Function, b *Builder, exit *BasicBlock, exitParam *Argument) bool {
	changed := false
	for _, bb := range append([]*BasicBlock(nil), fn.Blocks...) {
		term := bb.Terminator()
		if term == nil {
			continue
		}
		cond, ok := term.Kind.(*InstConditional)
		if !ok {
			continue
		}
		if cond.ThenBlock == cond.ElseBlock {
			continue
		}
		thenToExit := isTrampolineToExit(cond.ThenBlock, exit)
		elseToExit := isTrampolineToExit(cond.ElseBlock, exit)
		if !thenToExit || !elseToExit {
			continue
		}

		var joinParamType Type = Void()
		if exitParam != nil {
			joinParamType = exitParam.Type
		}
		join := b.CreateBlock(fn, bb.Name+"_join")
		var joinArg *Argument
		if !IsVoid(joinParamType) {
			joinArg = b.AddArgument(join, "v", joinParamType)
		}
		b.SetInsertPoint(join)
		var branchArgs []Use
		if joinArg != nil {
			branchArgs = []Use{DefUse(Definition(joinArg))}
		}
		b.Branch(exit, branchArgs)

		// Each arm keeps passing its own per-branch value; only the target
		// changes, from its old exit-reaching block to the new join block.
		cond.ThenBlock = join
		cond.ElseBlock = join
		changed = true
	}
	return changed
}

// RunCFGCanonicalization applies CFGCanonicalization to every function in m.
func RunCFGCanonicalization(m *Module, verify bool) (bool, error) {
	return mapTransform(m, CFGCanonicalization{}, verify)
}

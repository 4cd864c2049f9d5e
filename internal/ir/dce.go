package ir

import "gpir/internal/pass"

// DeadCodeElimination removes instructions with zero users whose kind is
// pure, per spec §4.8. It is idempotent: a second run over unchanged IR
// reports changed = false.
type DeadCodeElimination struct{}

func (DeadCodeElimination) Name() string { return "DeadCodeElimination" }

func (d DeadCodeElimination) Apply(fn *Function) bool {
	changed := false

	for {
		uses := UseInfo(fn)
		var dead *Instruction
	search:
		for _, bb := range fn.Blocks {
			for _, inst := range bb.Instructions {
				if inst.Kind.IsTerminator() {
					continue
				}
				if !IsPure(inst.Kind) {
					continue
				}
				if uses.HasUsers(inst) {
					continue
				}
				dead = inst
				break search
			}
		}
		if dead == nil {
			break
		}
		removeInstruction(dead)
		fn.InvalidatePassResults()
		changed = true
	}

	return changed
}

// removeInstruction detaches inst from its block. It does not go through
// Builder because DCE operates purely on existing structure and has no
// insertion-point cursor to maintain.
func removeInstruction(inst *Instruction) {
	bb := inst.Block
	idx := bb.InstructionIndex(inst)
	if idx < 0 {
		return
	}
	bb.Instructions = append(bb.Instructions[:idx], bb.Instructions[idx+1:]...)
}

// RunDCE applies DeadCodeElimination to every function in m, ORing the
// changed flags, per the mapTransform contract in spec §4.4.
func RunDCE(m *Module, verify bool) (bool, error) {
	return mapTransform(m, DeadCodeElimination{}, verify)
}

// mapTransform runs t over every function of m in module order, ORs the
// changed flags, and runs the verifier afterward unless verify is false.
func mapTransform(m *Module, t pass.Transform[*Function], verify bool) (bool, error) {
	changed := false
	for _, f := range m.Funcs {
		if f.IsDeclaration() {
			continue
		}
		if pass.RunTransform(f, t) {
			changed = true
		}
	}
	if changed {
		m.InvalidatePassResults()
	}
	if verify {
		if err := Verify(m); err != nil {
			return changed, err
		}
	}
	return changed, nil
}

package ir

// DefUseInfo maps each definition in a function to the set of instructions
// that reference it, per spec §4.6. It is computed lazily via the pass
// framework and invalidated on any mutation.
type DefUseInfo struct {
	users map[Definition][]*Instruction
}

type defUseAnalysis struct{}

func (defUseAnalysis) Identity() any { return defUseAnalysis{} }

func (defUseAnalysis) Compute(fn *Function) *DefUseInfo {
	info := &DefUseInfo{users: make(map[Definition][]*Instruction)}
	for _, bb := range fn.Blocks {
		for _, inst := range bb.Instructions {
			for _, use := range allOperands(inst.Kind) {
				if use.IsLiteral() || use.Def == nil {
					continue
				}
				info.users[use.Def] = append(info.users[use.Def], inst)
			}
		}
	}
	return info
}

// allOperands returns every Use an instruction kind references, including
// those nested inside an InstLiteral's literal value — unlike
// InstructionKind.Operands, which deliberately omits them (see the comment
// on InstLiteral.Operands).
func allOperands(kind InstructionKind) []Use {
	out := make([]Use, 0, len(kind.Operands()))
	for _, u := range kind.Operands() {
		out = append(out, *u)
	}
	if lit, ok := kind.(*InstLiteral); ok {
		out = append(out, literalOperands(lit.Value)...)
	}
	return out
}

// literalOperands recursively collects the Uses embedded in a literal
// value (tuple elements, struct fields, enum-case arguments).
func literalOperands(lit Literal) []Use {
	var direct []Use
	switch v := lit.(type) {
	case LitTuple:
		direct = v.Elements
	case LitStruct:
		for _, f := range v.Fields {
			direct = append(direct, f.Use)
		}
	case LitEnumCase:
		direct = v.Args
	}
	var out []Use
	for _, u := range direct {
		out = append(out, u)
		if u.IsLiteral() {
			out = append(out, literalOperands(u.Lit)...)
		}
	}
	return out
}

// Users returns the instructions that reference def, in discovery order
// (block order, then in-block order).
func (d *DefUseInfo) Users(def Definition) []*Instruction {
	return d.users[def]
}

// UserCount reports how many instructions reference def.
func (d *DefUseInfo) UserCount(def Definition) int {
	return len(d.users[def])
}

// HasUsers reports whether def is referenced anywhere in the function.
func (d *DefUseInfo) HasUsers(def Definition) bool {
	return len(d.users[def]) > 0
}

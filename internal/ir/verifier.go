package ir

// Verify checks m against every invariant in spec §3/§4.3, failing fast on
// the first violation found. It performs no mutation and requires no pass
// manager of its own: the per-function dominance/def-use analyses it
// leans on are computed (and cached) through the normal Dominance/UseInfo
// accessors.
func Verify(m *Module) error {
	v := &verifier{module: m, typeNames: map[string]bool{}, valueNames: map[string]bool{}}
	return v.run()
}

type verifier struct {
	module     *Module
	typeNames  map[string]bool
	valueNames map[string]bool
}

func (v *verifier) run() error {
	if !IsValidIdentifier(v.module.Name) && v.module.Name != "" {
		return newVerifierError(ErrIllegalName, v.module.Name, "module name is not a valid identifier")
	}

	for _, a := range v.module.Aliases {
		if err := v.declareType(a.Name); err != nil {
			return err
		}
	}
	for _, s := range v.module.Structs {
		if err := v.declareType(s.Name); err != nil {
			return err
		}
		if err := v.checkStruct(s); err != nil {
			return err
		}
	}
	for _, e := range v.module.Enums {
		if err := v.declareType(e.Name); err != nil {
			return err
		}
		if err := v.checkEnum(e); err != nil {
			return err
		}
	}
	for _, g := range v.module.Globals {
		if err := v.declareValue(g.Name); err != nil {
			return err
		}
		if !IsValid(g.Elem) {
			return newVerifierError(ErrInvalidType, g.Name, "global has invalid element type")
		}
	}
	for _, f := range v.module.Funcs {
		if err := v.declareValue(f.Name); err != nil {
			return err
		}
	}

	for _, f := range v.module.Funcs {
		if err := v.checkFunction(f); err != nil {
			return err
		}
	}
	return nil
}

func (v *verifier) declareType(name string) error {
	if !IsValidIdentifier(name) {
		return newVerifierError(ErrIllegalName, name, "type name is not a valid identifier")
	}
	if v.typeNames[name] {
		return newVerifierError(ErrRedeclared, name, "type name already declared")
	}
	v.typeNames[name] = true
	return nil
}

func (v *verifier) declareValue(name string) error {
	if !IsValidIdentifier(name) {
		return newVerifierError(ErrIllegalName, name, "value name is not a valid identifier")
	}
	if v.valueNames[name] {
		return newVerifierError(ErrRedeclared, name, "value name already declared")
	}
	v.valueNames[name] = true
	return nil
}

func (v *verifier) checkStruct(s *StructDecl) error {
	seen := map[string]bool{}
	for _, f := range s.Fields {
		if seen[f.Name] {
			return newVerifierError(ErrDuplicateStructField, s.Name, "duplicate field %q", f.Name)
		}
		seen[f.Name] = true
		if !IsValid(f.Type) {
			return newVerifierError(ErrInvalidType, s.Name, "field %q has invalid type", f.Name)
		}
	}
	return nil
}

func (v *verifier) checkEnum(e *EnumDecl) error {
	seen := map[string]bool{}
	for _, c := range e.Cases {
		if seen[c.Name] {
			return newVerifierError(ErrDuplicateEnumCase, e.Name, "duplicate case %q", c.Name)
		}
		seen[c.Name] = true
		for _, t := range c.AssociatedTypes {
			if !IsValid(t) {
				return newVerifierError(ErrInvalidType, e.Name, "case %q has invalid associated type", c.Name)
			}
		}
	}
	return nil
}

func (v *verifier) checkFunction(f *Function) error {
	if f.IsDeclaration() {
		if len(f.Blocks) != 0 {
			return newVerifierError(ErrDeclarationCannotHaveBody, f.Name, "external function has a body")
		}
		return nil
	}

	if len(f.Blocks) == 0 {
		return newVerifierError(ErrNoEntry, f.Name, "function has no entry block")
	}

	entry := f.Entry()
	if len(entry.Params) != len(f.ArgTypes) {
		return newVerifierError(ErrFunctionEntryArgumentMismatch, f.Name, "entry has %d parameters, function declares %d arguments", len(entry.Params), len(f.ArgTypes))
	}
	for i, arg := range entry.Params {
		if !TypesEqual(arg.Type, f.ArgTypes[i]) {
			return newVerifierError(ErrFunctionEntryArgumentMismatch, f.Name, "entry parameter %d type %s does not match declared argument type %s", i, arg.Type, f.ArgTypes[i])
		}
	}

	dom := Dominance(f)

	exitCount := 0
	blockNames := map[string]bool{}
	for _, bb := range f.Blocks {
		if bb.Parent != f {
			return newVerifierError(ErrBasicBlockParentMismatch, bb.Name, "block's parent is not its owning function")
		}
		if bb.Name != "" {
			if blockNames[bb.Name] {
				return newVerifierError(ErrRedeclared, bb.Name, "duplicate block name")
			}
			blockNames[bb.Name] = true
		}
		if !dom.Contains(bb) {
			continue // unreachable blocks are excluded from well-formedness checks
		}
		if err := v.checkBlock(f, bb, dom); err != nil {
			return err
		}
		if term := bb.Terminator(); term != nil {
			if _, isReturn := term.Kind.(*InstReturn); isReturn {
				exitCount++
			}
		}
	}
	if exitCount == 0 {
		return newVerifierError(ErrNoExit, f.Name, "function has no reachable return")
	}

	return nil
}

func (v *verifier) checkBlock(f *Function, bb *BasicBlock, dom *DominanceInfo) error {
	names := map[string]bool{}
	for _, arg := range bb.Params {
		if arg.Name != "" {
			if names[arg.Name] {
				return newVerifierError(ErrRedeclared, arg.Name, "duplicate name in block %q", bb.Name)
			}
			names[arg.Name] = true
		}
	}

	for i, inst := range bb.Instructions {
		isLast := i == len(bb.Instructions)-1
		if inst.Kind.IsTerminator() && !isLast {
			return newVerifierError(ErrTerminatorNotLast, bb.Name, "terminator is not the last instruction")
		}
		if !inst.Kind.IsTerminator() && isLast {
			return newVerifierError(ErrMissingTerminator, bb.Name, "block has no terminator")
		}
		if inst.Block != bb {
			return newVerifierError(ErrInstructionParentMismatch, inst.Name, "instruction's parent is not its owning block")
		}
		if inst.Name != "" {
			if names[inst.Name] {
				return newVerifierError(ErrRedeclared, inst.Name, "duplicate name in block %q", bb.Name)
			}
			names[inst.Name] = true
		}
		if inst.Name != "" && IsVoid(inst.Kind.InferType()) {
			return newVerifierError(ErrNamedVoidValue, inst.Name, "void-typed instruction has a name")
		}

		if err := v.checkOperands(f, inst, dom); err != nil {
			return err
		}
		if err := v.checkKind(f, inst); err != nil {
			return err
		}
	}
	return nil
}

func (v *verifier) checkOperands(f *Function, inst *Instruction, dom *DominanceInfo) error {
	for _, use := range allOperands(inst.Kind) {
		if use.IsLiteral() {
			continue
		}
		def := use.Def
		switch d := def.(type) {
		case *Argument:
			if d.Block.Parent != f {
				return newVerifierError(ErrUseInvalidParent, inst.Name, "operand argument belongs to a different function")
			}
		case *Instruction:
			if d.Block.Parent != f {
				return newVerifierError(ErrUseInvalidParent, inst.Name, "operand instruction belongs to a different function")
			}
		}
		if !dom.DefProperlyDominatesUser(def, inst) {
			return newVerifierError(ErrUseBeforeDef, inst.Name, "operand %s does not dominate its use", def.ValueName())
		}
	}

	if lit, ok := inst.Kind.(*InstLiteral); ok {
		if err := v.checkNestedLiteral(inst, lit.Value, true); err != nil {
			return err
		}
	} else {
		if err := v.rejectNestedLiteralOperands(inst); err != nil {
			return err
		}
	}
	return nil
}

// checkNestedLiteral walks the literal uses nested inside an InstLiteral's
// value (tuple elements, struct fields, enum-case args). Nesting is
// permitted there, so it reports no error; the nested-literal rule
// (invariant §3.9, bare Bool literals exempt) is enforced for every other
// instruction kind by rejectNestedLiteralOperands.
func (v *verifier) checkNestedLiteral(inst *Instruction, lit Literal, topLevel bool) error {
	switch l := lit.(type) {
	case LitTuple:
		for _, e := range l.Elements {
			if e.IsLiteral() {
				if err := v.checkNestedLiteral(inst, e.Lit, false); err != nil {
					return err
				}
			}
		}
	case LitStruct:
		for _, fld := range l.Fields {
			if fld.Use.IsLiteral() {
				if err := v.checkNestedLiteral(inst, fld.Use.Lit, false); err != nil {
					return err
				}
			}
		}
	case LitEnumCase:
		for _, a := range l.Args {
			if a.IsLiteral() {
				if err := v.checkNestedLiteral(inst, a.Lit, false); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (v *verifier) rejectNestedLiteralOperands(inst *Instruction) error {
	for _, use := range inst.Kind.Operands() {
		if !use.IsLiteral() {
			continue
		}
		switch use.Lit.(type) {
		case LitBool, nil:
			continue
		default:
			return newVerifierError(ErrNestedLiteralNotInLiteralInstruction, inst.Name, "non-bool literal used outside a literal instruction")
		}
	}
	return nil
}

func (v *verifier) checkKind(f *Function, inst *Instruction) error {
	switch k := inst.Kind.(type) {
	case *InstConditional:
		if !isBool(k.Cond.ValueType()) {
			return newVerifierError(ErrNotBool, inst.Name, "conditional requires a bool condition")
		}
		if err := v.checkBlockArgs(inst, k.ThenBlock, k.ThenArgs); err != nil {
			return err
		}
		if err := v.checkBlockArgs(inst, k.ElseBlock, k.ElseArgs); err != nil {
			return err
		}
	case *InstBranch:
		if err := v.checkBlockArgs(inst, k.Target, k.Args); err != nil {
			return err
		}
	case *InstBranchEnum:
		et, ok := Canonical(k.Subject.ValueType()).(Enum)
		if !ok {
			return newVerifierError(ErrNotEnum, inst.Name, "branchEnum requires an enum subject")
		}
		for _, c := range k.Cases {
			ec, ok := et.Decl.Case(c.CaseName)
			if !ok {
				return newVerifierError(ErrInvalidEnumCase, inst.Name, "unknown case %q", c.CaseName)
			}
			if len(c.Target.Params) != len(ec.AssociatedTypes) {
				return newVerifierError(ErrInvalidEnumCaseBranch, inst.Name, "case %q target expects %d params, associated types have %d", c.CaseName, len(c.Target.Params), len(ec.AssociatedTypes))
			}
			for i, p := range c.Target.Params {
				if !TypesEqual(p.Type, ec.AssociatedTypes[i]) {
					return newVerifierError(ErrInvalidEnumCaseBranch, inst.Name, "case %q target param %d type mismatch", c.CaseName, i)
				}
			}
		}
	case *InstReturn:
		if k.Value == nil {
			if !IsVoid(f.ReturnType) {
				return newVerifierError(ErrReturnTypeMismatch, inst.Name, "void return in a function returning %s", f.ReturnType)
			}
		} else if !TypesEqual(k.Value.ValueType(), f.ReturnType) {
			return newVerifierError(ErrReturnTypeMismatch, inst.Name, "return type %s does not match declared %s", k.Value.ValueType(), f.ReturnType)
		}
	case *InstApply:
		ft, ok := Canonical(k.Callee.ValueType()).(FunctionType)
		if !ok {
			return newVerifierError(ErrNotFunction, inst.Name, "apply callee is not a function")
		}
		if len(ft.Args) != len(k.Args) {
			return newVerifierError(ErrFunctionArgumentMismatch, inst.Name, "apply passes %d args, callee expects %d", len(k.Args), len(ft.Args))
		}
		for i, arg := range k.Args {
			if !TypesEqual(arg.ValueType(), ft.Args[i]) {
				return newVerifierError(ErrFunctionArgumentMismatch, inst.Name, "apply arg %d type mismatch", i)
			}
		}
	case *InstInsert:
		elemType := ElementType(k.Dest.ValueType(), k.Keys)
		if IsInvalid(elemType) {
			return newVerifierError(ErrInvalidIndices, inst.Name, "insert key path is invalid for destination type")
		}
		if !TypesEqual(elemType, k.Src.ValueType()) {
			return newVerifierError(ErrTypeMismatch, inst.Name, "insert source type does not match destination element type")
		}
	case *InstExtract:
		if IsInvalid(ElementType(k.From.ValueType(), k.Keys)) {
			return newVerifierError(ErrInvalidIndices, inst.Name, "extract key path is invalid for source type")
		}
	case *InstElementPointer:
		p, ok := Canonical(k.Ptr.ValueType()).(Pointer)
		if !ok {
			return newVerifierError(ErrNotPointer, inst.Name, "elementPointer requires a pointer operand")
		}
		if IsInvalid(ElementType(p.Pointee, k.Keys)) {
			return newVerifierError(ErrInvalidIndices, inst.Name, "elementPointer key path is invalid for pointee type")
		}
	case *InstLoad:
		if _, ok := Canonical(k.Ptr.ValueType()).(Pointer); !ok {
			return newVerifierError(ErrNotPointer, inst.Name, "load requires a pointer operand")
		}
	case *InstStore:
		p, ok := Canonical(k.Ptr.ValueType()).(Pointer)
		if !ok {
			return newVerifierError(ErrNotPointer, inst.Name, "store requires a pointer operand")
		}
		if !TypesEqual(p.Pointee, k.Val.ValueType()) {
			return newVerifierError(ErrTypeMismatch, inst.Name, "store value type does not match pointee type")
		}
	case *InstBooleanBinary:
		if !isBool(k.Left.ValueType()) || !isBool(k.Right.ValueType()) {
			return newVerifierError(ErrNotBool, inst.Name, "booleanBinary requires bool operands")
		}
	case *InstNot:
		if !isBool(k.Operand.ValueType()) {
			return newVerifierError(ErrNotBool, inst.Name, "not requires a bool operand")
		}
	case *InstLiteral:
		if !IsValid(k.Type) {
			return newVerifierError(ErrInvalidType, inst.Name, "literal has invalid type")
		}
		if err := v.checkLiteralShape(inst, k.Value, k.Type); err != nil {
			return err
		}
	}
	return nil
}

// checkLiteralShape verifies a literal's form matches its declared type:
// struct literals name exactly the declared fields, enum-case literals
// name a declared case with matching arity/types, tuple literals match
// element count. Zero/null/undefined/bool are shape-free.
func (v *verifier) checkLiteralShape(inst *Instruction, lit Literal, t Type) error {
	switch l := lit.(type) {
	case LitBool:
		if !isBool(t) {
			return newVerifierError(ErrInvalidLiteral, inst.Name, "bool literal used with non-bool type %s", t)
		}
	case LitTuple:
		tup, ok := Canonical(t).(Tuple)
		if !ok || len(tup.Elements) != len(l.Elements) {
			return newVerifierError(ErrInvalidLiteral, inst.Name, "tuple literal arity does not match type %s", t)
		}
		for i, e := range l.Elements {
			if !TypesEqual(e.ValueType(), tup.Elements[i]) {
				return newVerifierError(ErrInvalidLiteral, inst.Name, "tuple literal element %d type mismatch", i)
			}
		}
	case LitStruct:
		st, ok := Canonical(t).(Struct)
		if !ok || len(st.Decl.Fields) != len(l.Fields) {
			return newVerifierError(ErrInvalidLiteral, inst.Name, "struct literal field count does not match type %s", t)
		}
		for i, f := range l.Fields {
			if f.Name != st.Decl.Fields[i].Name {
				return newVerifierError(ErrInvalidLiteral, inst.Name, "struct literal field %d named %q, declaration expects %q", i, f.Name, st.Decl.Fields[i].Name)
			}
			if !TypesEqual(f.Use.ValueType(), st.Decl.Fields[i].Type) {
				return newVerifierError(ErrInvalidLiteral, inst.Name, "struct literal field %q type mismatch", f.Name)
			}
		}
	case LitEnumCase:
		et, ok := Canonical(t).(Enum)
		if !ok {
			return newVerifierError(ErrInvalidLiteral, inst.Name, "enum-case literal used with non-enum type %s", t)
		}
		ec, ok := et.Decl.Case(l.Case)
		if !ok {
			return newVerifierError(ErrInvalidEnumCase, inst.Name, "unknown case %q of %s", l.Case, t)
		}
		if len(ec.AssociatedTypes) != len(l.Args) {
			return newVerifierError(ErrInvalidLiteral, inst.Name, "case %q expects %d args, literal has %d", l.Case, len(ec.AssociatedTypes), len(l.Args))
		}
		for i, a := range l.Args {
			if !TypesEqual(a.ValueType(), ec.AssociatedTypes[i]) {
				return newVerifierError(ErrInvalidLiteral, inst.Name, "case %q arg %d type mismatch", l.Case, i)
			}
		}
	}
	return nil
}

func (v *verifier) checkBlockArgs(inst *Instruction, target *BasicBlock, args []Use) error {
	if len(target.Params) != len(args) {
		return newVerifierError(ErrBasicBlockArgumentMismatch, inst.Name, "branch to %q passes %d args, block expects %d", target.Name, len(args), len(target.Params))
	}
	for i, a := range args {
		if !TypesEqual(a.ValueType(), target.Params[i].Type) {
			return newVerifierError(ErrUseTypeMismatch, inst.Name, "branch to %q arg %d type mismatch", target.Name, i)
		}
	}
	return nil
}

func isBool(t Type) bool {
	_, ok := Canonical(t).(Bool)
	return ok
}

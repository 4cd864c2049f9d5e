package ir


// InstructionKind is the closed set of instruction payloads. Each kind
// knows how to infer its own result type from its operand types (the only
// inputs type inference is allowed to consult — invariant §3.1) and how to
// expose its operands uniformly for substitution, dominance and def-use
// bookkeeping.
type InstructionKind interface {
	isInstructionKind()
	// IsTerminator reports whether this kind ends a basic block.
	IsTerminator() bool
	// InferType computes the result type from the kind and its current
	// operand types.
	InferType() Type
	// Operands returns pointers into this kind's own Use fields, in a
	// fixed order, so that callers can rewrite operands in place
	// (Substitute) without a per-kind switch at each call site.
	Operands() []*Use
	// Successors returns the blocks this kind can transfer control to;
	// empty for every non-terminator.
	Successors() []*BasicBlock
}

// BoolOp is the operator of a BooleanBinary instruction.
type BoolOp int

const (
	OpAnd BoolOp = iota
	OpOr
)

func (op BoolOp) String() string {
	if op == OpAnd {
		return "and"
	}
	return "or"
}

// InstBuiltin applies a named intrinsic to operands. Its result type and
// purity are stored here: Builder.Builtin takes both from its caller, and
// PatchBuiltinSignatures overwrites them from an IntrinsicRegistry — the
// instruction kind itself does not depend on the registry existing at
// analysis time.
type InstBuiltin struct {
	IntrinsicID string
	Args        []Use
	ResultType  Type
	Pure_       bool
}

// InstBranch unconditionally transfers control, passing Args to Target's
// parameters.
type InstBranch struct {
	Target *BasicBlock
	Args   []Use
}

// InstConditional transfers control to ThenBlock (with ThenArgs) or
// ElseBlock (with ElseArgs) depending on Cond.
type InstConditional struct {
	Cond      Use
	ThenBlock *BasicBlock
	ThenArgs  []Use
	ElseBlock *BasicBlock
	ElseArgs  []Use
}

// BranchEnumCase pairs an enum case name with the block taken when Subject
// holds that case.
type BranchEnumCase struct {
	CaseName string
	Target   *BasicBlock
}

// InstBranchEnum dispatches on the runtime case of an enum-typed Subject.
type InstBranchEnum struct {
	Subject Use
	Cases   []BranchEnumCase
}

// InstReturn ends a function, optionally with a value (nil for void).
type InstReturn struct {
	Value *Use
}

// InstLiteral materializes a literal of a declared type as a value. Nested
// literals (struct/tuple/enum-case operands) may only ever appear inside
// an InstLiteral — elsewhere they are rejected by the verifier (invariant
// §3.9), except Bool literals which may appear as bare operands anywhere.
type InstLiteral struct {
	Value Literal
	Type  Type
}

// InstBooleanBinary computes Left <op> Right, both Bool.
type InstBooleanBinary struct {
	Op    BoolOp
	Left  Use
	Right Use
}

// InstNot computes the boolean negation of Operand.
type InstNot struct {
	Operand Use
}

// InstExtract reads the sub-value of From selected by Keys.
type InstExtract struct {
	From Use
	Keys []ElementKey
}

// InstInsert produces a copy of Dest with the sub-value at Keys replaced
// by Src.
type InstInsert struct {
	Src  Use
	Dest Use
	Keys []ElementKey
}

// InstApply calls Callee (a function-typed use) with Args.
type InstApply struct {
	Callee Use
	Args   []Use
}

// InstLoad reads through a pointer.
type InstLoad struct {
	Ptr Use
}

// InstStore writes Val through Ptr. It has no result.
type InstStore struct {
	Val Use
	Ptr Use
}

// InstElementPointer computes a pointer to a sub-element of Ptr's pointee,
// selected by Keys, without reading it.
type InstElementPointer struct {
	Ptr  Use
	Keys []ElementKey
}

// InstTrap unconditionally aborts execution.
type InstTrap struct{}

func (*InstBuiltin) isInstructionKind()        {}
func (*InstBranch) isInstructionKind()         {}
func (*InstConditional) isInstructionKind()    {}
func (*InstBranchEnum) isInstructionKind()     {}
func (*InstReturn) isInstructionKind()         {}
func (*InstLiteral) isInstructionKind()        {}
func (*InstBooleanBinary) isInstructionKind()  {}
func (*InstNot) isInstructionKind()            {}
func (*InstExtract) isInstructionKind()        {}
func (*InstInsert) isInstructionKind()         {}
func (*InstApply) isInstructionKind()          {}
func (*InstLoad) isInstructionKind()           {}
func (*InstStore) isInstructionKind()          {}
func (*InstElementPointer) isInstructionKind() {}
func (*InstTrap) isInstructionKind()           {}

func (*InstBuiltin) IsTerminator() bool        { return false }
func (*InstBranch) IsTerminator() bool         { return true }
func (*InstConditional) IsTerminator() bool    { return true }
func (*InstBranchEnum) IsTerminator() bool     { return true }
func (*InstReturn) IsTerminator() bool         { return true }
func (*InstLiteral) IsTerminator() bool        { return false }
func (*InstBooleanBinary) IsTerminator() bool  { return false }
func (*InstNot) IsTerminator() bool            { return false }
func (*InstExtract) IsTerminator() bool        { return false }
func (*InstInsert) IsTerminator() bool         { return false }
func (*InstApply) IsTerminator() bool          { return false }
func (*InstLoad) IsTerminator() bool           { return false }
func (*InstStore) IsTerminator() bool          { return false }
func (*InstElementPointer) IsTerminator() bool { return false }
func (*InstTrap) IsTerminator() bool           { return true }

func (k *InstBuiltin) InferType() Type { return k.ResultType }
func (k *InstBranch) InferType() Type  { return Void() }
func (k *InstConditional) InferType() Type {
	return Void()
}
func (k *InstBranchEnum) InferType() Type { return Void() }
func (k *InstReturn) InferType() Type     { return Void() }
func (k *InstLiteral) InferType() Type    { return k.Type }
func (k *InstBooleanBinary) InferType() Type {
	return Bool{}
}
func (k *InstNot) InferType() Type { return Bool{} }
func (k *InstApply) InferType() Type {
	ft, ok := Canonical(k.Callee.ValueType()).(FunctionType)
	if !ok || len(ft.Args) != len(k.Args) {
		return Invalid{}
	}
	for i, arg := range k.Args {
		if !TypesEqual(arg.ValueType(), ft.Args[i]) {
			return Invalid{}
		}
	}
	return ft.Ret
}
func (k *InstExtract) InferType() Type {
	t := ElementType(k.From.ValueType(), k.Keys)
	if IsInvalid(t) {
		return Invalid{}
	}
	return t
}
func (k *InstInsert) InferType() Type {
	destType := k.Dest.ValueType()
	elemType := ElementType(destType, k.Keys)
	if IsInvalid(elemType) || !TypesEqual(elemType, k.Src.ValueType()) {
		return Invalid{}
	}
	return destType
}
func (k *InstLoad) InferType() Type {
	p, ok := Canonical(k.Ptr.ValueType()).(Pointer)
	if !ok {
		return Invalid{}
	}
	return p.Pointee
}
func (k *InstStore) InferType() Type { return Void() }
func (k *InstElementPointer) InferType() Type {
	p, ok := Canonical(k.Ptr.ValueType()).(Pointer)
	if !ok {
		return Invalid{}
	}
	elem := ElementType(p.Pointee, k.Keys)
	if IsInvalid(elem) {
		return Invalid{}
	}
	return Pointer{Pointee: elem}
}
func (k *InstTrap) InferType() Type { return Void() }

func (k *InstBuiltin) Operands() []*Use {
	out := make([]*Use, len(k.Args))
	for i := range k.Args {
		out[i] = &k.Args[i]
	}
	return out
}
func (k *InstBranch) Operands() []*Use {
	out := make([]*Use, len(k.Args))
	for i := range k.Args {
		out[i] = &k.Args[i]
	}
	return out
}
func (k *InstConditional) Operands() []*Use {
	out := []*Use{&k.Cond}
	for i := range k.ThenArgs {
		out = append(out, &k.ThenArgs[i])
	}
	for i := range k.ElseArgs {
		out = append(out, &k.ElseArgs[i])
	}
	return out
}
func (k *InstBranchEnum) Operands() []*Use { return []*Use{&k.Subject} }
func (k *InstReturn) Operands() []*Use {
	if k.Value == nil {
		return nil
	}
	return []*Use{k.Value}
}
func (k *InstLiteral) Operands() []*Use {
	// Operands embedded inside a nested literal value are not surfaced
	// here: def-use reaches them through literalOperands(k.Value) and
	// Substitute through substituteInLiteralValue instead, since Literal is
	// a value type, not addressable in place without first materializing
	// it back onto k.Value. See literalOperands in defuse.go.
	return nil
}
func (k *InstBooleanBinary) Operands() []*Use { return []*Use{&k.Left, &k.Right} }
func (k *InstNot) Operands() []*Use           { return []*Use{&k.Operand} }
func (k *InstExtract) Operands() []*Use       { return []*Use{&k.From} }
func (k *InstInsert) Operands() []*Use        { return []*Use{&k.Src, &k.Dest} }
func (k *InstApply) Operands() []*Use {
	out := []*Use{&k.Callee}
	for i := range k.Args {
		out = append(out, &k.Args[i])
	}
	return out
}
func (k *InstLoad) Operands() []*Use  { return []*Use{&k.Ptr} }
func (k *InstStore) Operands() []*Use { return []*Use{&k.Val, &k.Ptr} }
func (k *InstElementPointer) Operands() []*Use {
	out := []*Use{&k.Ptr}
	for _, key := range k.Keys {
		if key.Value != nil {
			out = append(out, key.Value)
		}
	}
	return out
}
func (k *InstTrap) Operands() []*Use { return nil }

func (*InstBuiltin) Successors() []*BasicBlock { return nil }
func (k *InstBranch) Successors() []*BasicBlock {
	return []*BasicBlock{k.Target}
}
func (k *InstConditional) Successors() []*BasicBlock {
	return []*BasicBlock{k.ThenBlock, k.ElseBlock}
}
func (k *InstBranchEnum) Successors() []*BasicBlock {
	out := make([]*BasicBlock, len(k.Cases))
	for i, c := range k.Cases {
		out[i] = c.Target
	}
	return out
}
func (*InstReturn) Successors() []*BasicBlock         { return nil }
func (*InstLiteral) Successors() []*BasicBlock        { return nil }
func (*InstBooleanBinary) Successors() []*BasicBlock  { return nil }
func (*InstNot) Successors() []*BasicBlock             { return nil }
func (*InstExtract) Successors() []*BasicBlock         { return nil }
func (*InstInsert) Successors() []*BasicBlock          { return nil }
func (*InstApply) Successors() []*BasicBlock           { return nil }
func (*InstLoad) Successors() []*BasicBlock            { return nil }
func (*InstStore) Successors() []*BasicBlock           { return nil }
func (*InstElementPointer) Successors() []*BasicBlock  { return nil }
func (*InstTrap) Successors() []*BasicBlock            { return nil }

// IsPure reports whether the instruction kind has no side effects and a
// result determined solely by its operands — the set DCE and CSE are
// allowed to treat as removable/keyable.
func IsPure(kind InstructionKind) bool {
	switch k := kind.(type) {
	case *InstLiteral, *InstBooleanBinary, *InstNot, *InstExtract, *InstInsert, *InstElementPointer:
		return true
	case *InstBuiltin:
		return k.Pure_
	case *InstApply:
		if fn, ok := k.Callee.Def.(*Function); ok {
			return !fn.IsDeclaration() && isPureFunction(fn)
		}
		return false
	default:
		return false
	}
}

// isPureFunction is a conservative, callee-local approximation: a function
// is considered pure only when every instruction in its body is pure and
// it performs no load/store/apply/builtin of its own. gpir does not do
// interprocedural effect analysis (spec Non-goal), so this never looks
// past one call level.
func isPureFunction(fn *Function) bool {
	for _, bb := range fn.Blocks {
		for _, inst := range bb.Instructions {
			if inst.Kind.IsTerminator() {
				continue
			}
			switch inst.Kind.(type) {
			case *InstLoad, *InstStore, *InstApply, *InstBuiltin:
				return false
			}
			if !IsPure(inst.Kind) {
				return false
			}
		}
	}
	return true
}

// Substitute rewrites every operand of kind that currently refers to old
// (by Definition identity) to instead refer to new, preserving the
// surrounding Use's literal-vs-definition shape. It is a pure value
// rewrite: callers are responsible for def-use bookkeeping.
func Substitute(kind InstructionKind, old, new Definition) {
	for _, operand := range kind.Operands() {
		if !operand.IsLiteral() && operand.Def == old {
			*operand = DefUse(new)
		}
	}
	if lit, ok := kind.(*InstLiteral); ok {
		substituteInLiteralValue(&lit.Value, old, new)
	}
}

func substituteInLiteralValue(lit *Literal, old, new Definition) {
	switch v := (*lit).(type) {
	case LitTuple:
		for i := range v.Elements {
			substituteInUse(&v.Elements[i], old, new)
		}
		*lit = v
	case LitStruct:
		for i := range v.Fields {
			substituteInUse(&v.Fields[i].Use, old, new)
		}
		*lit = v
	case LitEnumCase:
		for i := range v.Args {
			substituteInUse(&v.Args[i], old, new)
		}
		*lit = v
	}
}

func substituteInUse(u *Use, old, new Definition) {
	if !u.IsLiteral() && u.Def == old {
		*u = DefUse(new)
		return
	}
	if u.IsLiteral() {
		substituteInLiteralValue(&u.Lit, old, new)
	}
}

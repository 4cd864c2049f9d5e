package ir

// Builder is a mutable cursor over a Module: it tracks a current function
// and a current insertion point (a block and a position within it) and
// appends instructions there. It does not run the verifier — callers that
// want well-formedness checked call Verify explicitly once construction is
// done (spec §4.1: "the builder does not run the verifier; callers may opt
// in").
type Builder struct {
	Module *Module

	fn    *Function
	block *BasicBlock
	pos   int // index in block.Instructions at which the next Insert lands
}

// NewBuilder creates a builder over an existing module. Use NewModuleBuilder
// to also create the module.
func NewBuilder(m *Module) *Builder {
	return &Builder{Module: m}
}

// NewModuleBuilder creates a fresh module and a builder positioned over it.
func NewModuleBuilder(name, stage string) *Builder {
	return NewBuilder(NewModule(name, stage))
}

// --- declarations -----------------------------------------------------

func (b *Builder) DeclareStruct(name string, fields []StructField) *StructDecl {
	d := &StructDecl{Name: name, Fields: fields}
	b.Module.Structs = append(b.Module.Structs, d)
	b.Module.InvalidatePassResults()
	return d
}

func (b *Builder) DeclareEnum(name string, cases []EnumCase) *EnumDecl {
	d := &EnumDecl{Name: name, Cases: cases}
	b.Module.Enums = append(b.Module.Enums, d)
	b.Module.InvalidatePassResults()
	return d
}

// DeclareTypeAlias creates a named alias. Pass a nil t for an opaque alias.
func (b *Builder) DeclareTypeAlias(name string, t Type) *TypeAlias {
	a := &TypeAlias{Name: name, Type: t}
	b.Module.Aliases = append(b.Module.Aliases, a)
	b.Module.InvalidatePassResults()
	return a
}

// DeclareVariable adds a module-level global of the given element type.
func (b *Builder) DeclareVariable(name string, elem Type) *Variable {
	v := &Variable{Name: name, Elem: elem}
	b.Module.Globals = append(b.Module.Globals, v)
	b.Module.InvalidatePassResults()
	return v
}

// DeclareFunction adds a function declaration or definition to the module
// and returns it with no blocks. Use CreateBlock to give it a body, or
// leave it without blocks and kind External for a declaration-only
// function.
func (b *Builder) DeclareFunction(name string, argTypes []Type, ret Type, kind DeclarationKind) *Function {
	f := NewFunction(name, argTypes, ret)
	f.Declaration = kind
	b.Module.Funcs = append(b.Module.Funcs, f)
	b.Module.InvalidatePassResults()
	return f
}

// --- blocks & arguments -------------------------------------------------

// CreateBlock appends a new, empty block to fn and returns it.
func (b *Builder) CreateBlock(fn *Function, name string) *BasicBlock {
	bb := NewBasicBlock(name, fn)
	fn.Blocks = append(fn.Blocks, bb)
	fn.InvalidatePassResults()
	return bb
}

// AddArgument appends a parameter to bb.
func (b *Builder) AddArgument(bb *BasicBlock, name string, t Type) *Argument {
	arg := &Argument{Name: name, Type: t, Block: bb}
	bb.Params = append(bb.Params, arg)
	bb.Parent.InvalidatePassResults()
	return arg
}

// SetInsertPoint moves the cursor to the end of bb; subsequent
// buildInstruction calls append there.
func (b *Builder) SetInsertPoint(bb *BasicBlock) {
	b.fn = bb.Parent
	b.block = bb
	b.pos = len(bb.Instructions)
}

// SetInsertPointBefore moves the cursor to just before inst within its own
// block, so the next instruction built lands immediately ahead of it.
func (b *Builder) SetInsertPointBefore(inst *Instruction) {
	bb := inst.Block
	b.fn = bb.Parent
	b.block = bb
	b.pos = bb.InstructionIndex(inst)
}

// --- instruction construction -------------------------------------------

// buildInstruction appends a new instruction of the given kind at the
// cursor's position and advances the cursor past it.
func (b *Builder) buildInstruction(name string, kind InstructionKind) *Instruction {
	inst := &Instruction{Name: name, ID: b.fn.nextID(), Kind: kind, Block: b.block}

	instrs := b.block.Instructions
	instrs = append(instrs, nil)
	copy(instrs[b.pos+1:], instrs[b.pos:])
	instrs[b.pos] = inst
	b.block.Instructions = instrs
	b.pos++

	b.fn.InvalidatePassResults()
	return inst
}

// RemoveInstruction detaches inst from its block. Callers are responsible
// for ensuring nothing still uses it (DCE only removes zero-user
// instructions).
func (b *Builder) RemoveInstruction(inst *Instruction) {
	bb := inst.Block
	idx := bb.InstructionIndex(inst)
	if idx < 0 {
		return
	}
	bb.Instructions = append(bb.Instructions[:idx], bb.Instructions[idx+1:]...)
	bb.Parent.InvalidatePassResults()
}

func (b *Builder) Builtin(name, intrinsicID string, args []Use, result Type, pure bool) *Instruction {
	return b.buildInstruction(name, &InstBuiltin{IntrinsicID: intrinsicID, Args: args, ResultType: result, Pure_: pure})
}

func (b *Builder) Branch(target *BasicBlock, args []Use) *Instruction {
	return b.buildInstruction("", &InstBranch{Target: target, Args: args})
}

func (b *Builder) Conditional(cond Use, thenBB *BasicBlock, thenArgs []Use, elseBB *BasicBlock, elseArgs []Use) *Instruction {
	return b.buildInstruction("", &InstConditional{
		Cond: cond, ThenBlock: thenBB, ThenArgs: thenArgs, ElseBlock: elseBB, ElseArgs: elseArgs,
	})
}

func (b *Builder) BranchEnum(subject Use, cases []BranchEnumCase) *Instruction {
	return b.buildInstruction("", &InstBranchEnum{Subject: subject, Cases: cases})
}

// Return builds a return instruction. Pass a nil value for a void return.
func (b *Builder) Return(value *Use) *Instruction {
	return b.buildInstruction("", &InstReturn{Value: value})
}

func (b *Builder) Literal(name string, lit Literal, t Type) *Instruction {
	return b.buildInstruction(name, &InstLiteral{Value: lit, Type: t})
}

func (b *Builder) Boolean(name string, op BoolOp, left, right Use) *Instruction {
	return b.buildInstruction(name, &InstBooleanBinary{Op: op, Left: left, Right: right})
}

func (b *Builder) Not(name string, operand Use) *Instruction {
	return b.buildInstruction(name, &InstNot{Operand: operand})
}

func (b *Builder) Extract(name string, from Use, keys []ElementKey) *Instruction {
	return b.buildInstruction(name, &InstExtract{From: from, Keys: keys})
}

func (b *Builder) Insert(name string, src, dest Use, keys []ElementKey) *Instruction {
	return b.buildInstruction(name, &InstInsert{Src: src, Dest: dest, Keys: keys})
}

func (b *Builder) Apply(name string, callee Use, args []Use) *Instruction {
	return b.buildInstruction(name, &InstApply{Callee: callee, Args: args})
}

func (b *Builder) Load(name string, ptr Use) *Instruction {
	return b.buildInstruction(name, &InstLoad{Ptr: ptr})
}

func (b *Builder) Store(val, ptr Use) *Instruction {
	return b.buildInstruction("", &InstStore{Val: val, Ptr: ptr})
}

func (b *Builder) ElementPointer(name string, ptr Use, keys []ElementKey) *Instruction {
	return b.buildInstruction(name, &InstElementPointer{Ptr: ptr, Keys: keys})
}

func (b *Builder) Trap() *Instruction {
	return b.buildInstruction("", &InstTrap{})
}

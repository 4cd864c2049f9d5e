package syntax

import (
	"fmt"

	"gpir/internal/ir"
)

// moduleCtx carries the name -> declaration tables needed to resolve type
// and value references while converting a parsed File into a *ir.Module.
type moduleCtx struct {
	builder *ir.Builder

	structs map[string]*ir.StructDecl
	enums   map[string]*ir.EnumDecl
	aliases map[string]*ir.TypeAlias
	globals map[string]*ir.Variable
	funcs   map[string]*ir.Function
}

// Convert builds a *ir.Module from a parsed File. Declarations are
// processed in two passes so that structs, enums and aliases may refer to
// each other (including an enum case referencing its own enum) regardless
// of declaration order.
func Convert(f *File) (*ir.Module, error) {
	mod := f.Module
	b := ir.NewModuleBuilder(mod.Name, mod.Stage)
	ctx := &moduleCtx{
		builder: b,
		structs: map[string]*ir.StructDecl{},
		enums:   map[string]*ir.EnumDecl{},
		aliases: map[string]*ir.TypeAlias{},
		globals: map[string]*ir.Variable{},
		funcs:   map[string]*ir.Function{},
	}

	for _, e := range mod.Enums {
		ctx.enums[e.Name] = b.DeclareEnum(e.Name, nil)
	}
	for _, s := range mod.Structs {
		ctx.structs[s.Name] = b.DeclareStruct(s.Name, nil)
	}
	for _, a := range mod.Aliases {
		ctx.aliases[a.Name] = b.DeclareTypeAlias(a.Name, nil)
	}

	for _, e := range mod.Enums {
		cases := make([]ir.EnumCase, len(e.Cases))
		for i, c := range e.Cases {
			types, err := convertTypes(ctx, c.Types)
			if err != nil {
				return nil, err
			}
			cases[i] = ir.EnumCase{Name: c.Name, AssociatedTypes: types}
		}
		ctx.enums[e.Name].Cases = cases
	}
	for _, s := range mod.Structs {
		fields := make([]ir.StructField, len(s.Fields))
		for i, fld := range s.Fields {
			t, err := convertType(ctx, fld.Type)
			if err != nil {
				return nil, err
			}
			fields[i] = ir.StructField{Name: fld.Name, Type: t}
		}
		ctx.structs[s.Name].Fields = fields
	}
	for _, a := range mod.Aliases {
		if a.Type == nil {
			continue // opaque
		}
		t, err := convertType(ctx, a.Type)
		if err != nil {
			return nil, err
		}
		ctx.aliases[a.Name].Type = t
	}

	for _, g := range mod.Globals {
		t, err := convertType(ctx, g.Type)
		if err != nil {
			return nil, err
		}
		ctx.globals[g.Name] = b.DeclareVariable(g.Name, t)
	}

	for _, fn := range mod.Functions {
		args, err := convertTypes(ctx, fn.Args)
		if err != nil {
			return nil, err
		}
		ret, err := convertType(ctx, fn.Ret)
		if err != nil {
			return nil, err
		}
		kind := ir.NotDeclared
		if fn.Declare {
			kind = ir.External
		}
		irfn := b.DeclareFunction(fn.Name, args, ret, kind)
		if fn.Inline {
			irfn.Attrs |= ir.AttrInline
		}
		ctx.funcs[fn.Name] = irfn
	}

	for _, fn := range mod.Functions {
		if fn.Declare {
			continue
		}
		if err := convertFunctionBody(ctx, ctx.funcs[fn.Name], fn); err != nil {
			return nil, err
		}
	}

	return ctx.builder.Module, nil
}

func convertTypes(ctx *moduleCtx, nodes []*TypeNode) ([]ir.Type, error) {
	out := make([]ir.Type, len(nodes))
	for i, n := range nodes {
		t, err := convertType(ctx, n)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func convertType(ctx *moduleCtx, n *TypeNode) (ir.Type, error) {
	switch {
	case n.Bool:
		return ir.Bool{}, nil
	case n.Nominal != nil:
		name := *n.Nominal
		if d, ok := ctx.structs[name]; ok {
			return ir.Struct{Decl: d}, nil
		}
		if d, ok := ctx.enums[name]; ok {
			return ir.Enum{Decl: d}, nil
		}
		if a, ok := ctx.aliases[name]; ok {
			return ir.Alias{Decl: a}, nil
		}
		return nil, fmt.Errorf("syntax: unknown type $%s", name)
	case n.Pointer != nil:
		pointee, err := convertType(ctx, n.Pointer.Pointee)
		if err != nil {
			return nil, err
		}
		return ir.Pointer{Pointee: pointee}, nil
	case n.Paren != nil:
		elems, err := convertTypes(ctx, n.Paren.Elements)
		if err != nil {
			return nil, err
		}
		if n.Paren.Ret != nil {
			ret, err := convertType(ctx, n.Paren.Ret)
			if err != nil {
				return nil, err
			}
			return ir.FunctionType{Args: elems, Ret: ret}, nil
		}
		return ir.Tuple{Elements: elems}, nil
	default:
		return nil, fmt.Errorf("syntax: empty type node")
	}
}

// funcCtx resolves value references (%name, %<bb>.<inst>, @name) while
// converting one function body. Names are registered as they are declared
// (block params up front, instructions as each is built) and blocks are
// converted in their declaration order, so every reference in a module
// whose blocks list dominators before the blocks they dominate — true of
// anything this package's own printer produces — resolves eagerly, with
// no forward-reference patch-up pass.
type funcCtx struct {
	*moduleCtx
	fn           *ir.Function
	blocksByName map[string]*ir.BasicBlock
	valuesByName map[string]ir.Definition
}

func convertFunctionBody(mctx *moduleCtx, fn *ir.Function, node *FunctionNode) error {
	ctx := &funcCtx{
		moduleCtx:    mctx,
		fn:           fn,
		blocksByName: map[string]*ir.BasicBlock{},
		valuesByName: map[string]ir.Definition{},
	}

	b := mctx.builder
	for _, bn := range node.Blocks {
		bb := b.CreateBlock(fn, bn.Name)
		ctx.blocksByName[bn.Name] = bb
		for _, p := range bn.Params {
			t, err := convertType(mctx, p.Type)
			if err != nil {
				return err
			}
			arg := b.AddArgument(bb, p.Name, t)
			ctx.valuesByName[p.Name] = arg
		}
	}

	for i, bn := range node.Blocks {
		bb := fn.Blocks[i]
		b.SetInsertPoint(bb)
		for _, in := range bn.Instructions {
			if err := ctx.convertInstruction(in); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *funcCtx) convertInstruction(n *InstructionNode) error {
	b := c.builder
	name := n.Name

	switch {
	case n.Boolean != nil:
		op := ir.OpAnd
		if n.Boolean.Op == "or" {
			op = ir.OpOr
		}
		left, err := c.convertUse(n.Boolean.Left)
		if err != nil {
			return err
		}
		right, err := c.convertUse(n.Boolean.Right)
		if err != nil {
			return err
		}
		c.register(name, b.Boolean(name, op, left, right))
	case n.Not != nil:
		operand, err := c.convertUse(n.Not.Operand)
		if err != nil {
			return err
		}
		c.register(name, b.Not(name, operand))
	case n.Literal != nil:
		t, err := convertType(c.moduleCtx, n.Literal.Type)
		if err != nil {
			return err
		}
		lit, err := c.convertLiteral(n.Literal.Value, t)
		if err != nil {
			return err
		}
		c.register(name, b.Literal(name, lit, t))
	case n.Apply != nil:
		callee, err := c.resolveRef(n.Apply.Callee)
		if err != nil {
			return err
		}
		args, err := c.convertUses(n.Apply.Args)
		if err != nil {
			return err
		}
		c.register(name, b.Apply(name, ir.DefUse(callee), args))
	case n.Extract != nil:
		from, err := c.convertUse(n.Extract.From)
		if err != nil {
			return err
		}
		keys, err := c.convertKeys(n.Extract.Keys)
		if err != nil {
			return err
		}
		c.register(name, b.Extract(name, from, keys))
	case n.Insert != nil:
		src, err := c.convertUse(n.Insert.Src)
		if err != nil {
			return err
		}
		dest, err := c.convertUse(n.Insert.Dest)
		if err != nil {
			return err
		}
		keys, err := c.convertKeys(n.Insert.Keys)
		if err != nil {
			return err
		}
		c.register(name, b.Insert(name, src, dest, keys))
	case n.Branch != nil:
		target := c.blockRef(n.Branch.Target)
		args, err := c.convertUses(n.Branch.Args)
		if err != nil {
			return err
		}
		b.Branch(target, args)
	case n.Conditional != nil:
		cond, err := c.convertUse(n.Conditional.Cond)
		if err != nil {
			return err
		}
		thenArgs, err := c.convertUses(n.Conditional.ThenArgs)
		if err != nil {
			return err
		}
		elseArgs, err := c.convertUses(n.Conditional.ElseArgs)
		if err != nil {
			return err
		}
		b.Conditional(cond, c.blockRef(n.Conditional.ThenBlock), thenArgs, c.blockRef(n.Conditional.ElseBlock), elseArgs)
	case n.BranchEnum != nil:
		subject, err := c.convertUse(n.BranchEnum.Subject)
		if err != nil {
			return err
		}
		cases := make([]ir.BranchEnumCase, len(n.BranchEnum.Cases))
		for i, ce := range n.BranchEnum.Cases {
			cases[i] = ir.BranchEnumCase{CaseName: ce.Case, Target: c.blockRef(ce.Target)}
		}
		b.BranchEnum(subject, cases)
	case n.Load != nil:
		ptr, err := c.convertUse(n.Load.Ptr)
		if err != nil {
			return err
		}
		c.register(name, b.Load(name, ptr))
	case n.Store != nil:
		val, err := c.convertUse(n.Store.Val)
		if err != nil {
			return err
		}
		ptr, err := c.convertUse(n.Store.Ptr)
		if err != nil {
			return err
		}
		b.Store(val, ptr)
	case n.ElementPointer != nil:
		ptr, err := c.convertUse(n.ElementPointer.Ptr)
		if err != nil {
			return err
		}
		keys, err := c.convertKeys(n.ElementPointer.Keys)
		if err != nil {
			return err
		}
		c.register(name, b.ElementPointer(name, ptr, keys))
	case n.Builtin != nil:
		args, err := c.convertUses(n.Builtin.Args)
		if err != nil {
			return err
		}
		id := joinDotted(n.Builtin.IDParts)
		// The registry assigns the result type and purity; the textual form
		// round-trips the id and args only, so reconstruct a conservative
		// signature-free instruction and let a registry-aware caller patch
		// ResultType/Pure_ via the builder's Module if it cares.
		c.register(name, b.Builtin(name, id, args, ir.Void(), false))
	case n.Trap:
		b.Trap()
	case n.Return != nil:
		if n.Return.Value == nil {
			b.Return(nil)
		} else {
			v, err := c.convertUse(n.Return.Value)
			if err != nil {
				return err
			}
			b.Return(&v)
		}
	default:
		return fmt.Errorf("syntax: empty instruction node")
	}
	return nil
}

func joinDotted(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}

func (c *funcCtx) register(name string, inst *ir.Instruction) {
	if name != "" {
		c.valuesByName[name] = inst
	}
	// Unnamed instructions need no registration: their identifier is
	// positional ("%<bb>.<inst>") and resolved directly against
	// fn.Blocks/bb.Instructions by resolveRef's caller.
}

func (c *funcCtx) blockRef(name string) *ir.BasicBlock {
	return c.blocksByName[name]
}

func (c *funcCtx) convertUses(nodes []*UseNode) ([]ir.Use, error) {
	out := make([]ir.Use, len(nodes))
	for i, n := range nodes {
		u, err := c.convertUse(n)
		if err != nil {
			return nil, err
		}
		out[i] = u
	}
	return out, nil
}

func (c *funcCtx) convertUse(n *UseNode) (ir.Use, error) {
	t, err := convertType(c.moduleCtx, n.Type)
	if err != nil {
		return ir.Use{}, err
	}
	if n.Literal != nil {
		lit, err := c.convertLiteral(n.Literal, t)
		if err != nil {
			return ir.Use{}, err
		}
		return ir.LiteralUse(lit, t), nil
	}

	if n.Ref.Index != nil {
		block, inst := n.Ref.Index.Block, n.Ref.Index.Inst
		if block < 0 || block >= len(c.fn.Blocks) {
			return ir.Use{}, fmt.Errorf("syntax: positional reference %%%d.%d: no such block", block, inst)
		}
		bb := c.fn.Blocks[block]
		if inst < 0 || inst >= len(bb.Instructions) {
			return ir.Use{}, fmt.Errorf("syntax: positional reference %%%d.%d out of range", block, inst)
		}
		return ir.DefUse(bb.Instructions[inst]), nil
	}

	def, err := c.resolveRef(n.Ref)
	if err != nil {
		return ir.Use{}, err
	}
	return ir.DefUse(def), nil
}

func (c *funcCtx) resolveRef(r *RefNode) (ir.Definition, error) {
	if r.Index != nil {
		return nil, fmt.Errorf("syntax: positional reference not valid in this position")
	}
	name := *r.Name
	if r.Sigil == "@" {
		if g, ok := c.globals[name]; ok {
			return g, nil
		}
		if f, ok := c.funcs[name]; ok {
			return f, nil
		}
		return nil, fmt.Errorf("syntax: unknown global or function @%s", name)
	}
	if v, ok := c.valuesByName[name]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("syntax: unknown value %%%s", name)
}

func (c *funcCtx) convertKeys(nodes []*KeyNode) ([]ir.ElementKey, error) {
	out := make([]ir.ElementKey, len(nodes))
	for i, n := range nodes {
		switch {
		case n.Index != nil:
			out[i] = ir.IndexKey(*n.Index)
		case n.Name != nil:
			out[i] = ir.NameKey(*n.Name)
		case n.Value != nil:
			u, err := c.convertUse(n.Value)
			if err != nil {
				return nil, err
			}
			out[i] = ir.ValueKey(u)
		default:
			return nil, fmt.Errorf("syntax: empty key node")
		}
	}
	return out, nil
}

func (c *funcCtx) convertLiteral(n *LiteralNode, t ir.Type) (ir.Literal, error) {
	switch {
	case n.BoolLit != nil:
		return ir.LitBool{Value: *n.BoolLit == "true"}, nil
	case n.Tuple != nil:
		elems, err := c.convertUses(n.Tuple.Elements)
		if err != nil {
			return nil, err
		}
		return ir.LitTuple{Elements: elems}, nil
	case n.Struct != nil:
		fields := make([]ir.LitStructField, len(n.Struct.Fields))
		for i, f := range n.Struct.Fields {
			u, err := c.convertUse(f.Use)
			if err != nil {
				return nil, err
			}
			fields[i] = ir.LitStructField{Name: f.Name, Use: u}
		}
		return ir.LitStruct{Fields: fields}, nil
	case n.EnumCase != nil:
		args, err := c.convertUses(n.EnumCase.Args)
		if err != nil {
			return nil, err
		}
		return ir.LitEnumCase{Case: n.EnumCase.Case, Args: args}, nil
	case n.Zero:
		return ir.LitZero{}, nil
	case n.Undefined:
		return ir.LitUndefined{}, nil
	case n.Null:
		return ir.LitNull{}, nil
	default:
		return nil, fmt.Errorf("syntax: empty literal node")
	}
}

package ir

import "strings"

// Print renders m in the canonical textual form defined by spec §4.2. It is
// deterministic — two calls on an unchanged module produce byte-identical
// output — and round-trips through internal/syntax's parser.
func Print(m *Module) string {
	var b strings.Builder
	b.WriteString("module ")
	b.WriteString(quoteString(m.Name))
	b.WriteString("\n")
	b.WriteString("stage ")
	b.WriteString(m.Stage)
	b.WriteString("\n")

	first := true
	blank := func() {
		if !first {
			b.WriteString("\n")
		}
		first = false
	}

	for _, e := range m.Enums {
		blank()
		printEnum(&b, e)
	}
	for _, s := range m.Structs {
		blank()
		printStruct(&b, s)
	}
	for _, a := range m.Aliases {
		blank()
		printAlias(&b, a)
	}
	for _, g := range m.Globals {
		blank()
		printGlobal(&b, g)
	}
	for _, f := range m.Funcs {
		blank()
		printFunction(&b, f)
	}

	return b.String()
}

func printEnum(b *strings.Builder, e *EnumDecl) {
	b.WriteString("enum $")
	b.WriteString(e.Name)
	b.WriteString(" {\n")
	for _, c := range e.Cases {
		b.WriteString("  ")
		b.WriteString(c.Name)
		b.WriteString("(")
		for i, t := range c.AssociatedTypes {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(t.String())
		}
		b.WriteString(")\n")
	}
	b.WriteString("}\n")
}

func printStruct(b *strings.Builder, s *StructDecl) {
	b.WriteString("struct $")
	b.WriteString(s.Name)
	b.WriteString(" {\n")
	for _, f := range s.Fields {
		b.WriteString("  #")
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(f.Type.String())
		b.WriteString("\n")
	}
	b.WriteString("}\n")
}

func printAlias(b *strings.Builder, a *TypeAlias) {
	b.WriteString("alias $")
	b.WriteString(a.Name)
	if a.IsOpaque() {
		b.WriteString("\n")
		return
	}
	b.WriteString(" = ")
	b.WriteString(a.Type.String())
	b.WriteString("\n")
}

func printGlobal(b *strings.Builder, v *Variable) {
	b.WriteString("global @")
	b.WriteString(v.Name)
	b.WriteString(": ")
	b.WriteString(v.Elem.String())
	b.WriteString("\n")
}

func printFunction(b *strings.Builder, f *Function) {
	if f.IsDeclaration() {
		b.WriteString("declare ")
	} else {
		b.WriteString("function ")
	}
	if f.Attrs.Has(AttrInline) {
		b.WriteString("inline ")
	}
	b.WriteString("@")
	b.WriteString(f.Name)
	b.WriteString("(")
	for i, t := range f.ArgTypes {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(t.String())
	}
	b.WriteString(") -> ")
	b.WriteString(f.ReturnType.String())

	if f.IsDeclaration() {
		b.WriteString("\n")
		return
	}
	b.WriteString(" {\n")
	for _, bb := range f.Blocks {
		printBlock(b, bb)
	}
	b.WriteString("}\n")
}

func printBlock(b *strings.Builder, bb *BasicBlock) {
	b.WriteString("'")
	b.WriteString(bb.Name)
	b.WriteString("(")
	for i, p := range bb.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("%")
		b.WriteString(p.Name)
		b.WriteString(": ")
		b.WriteString(p.Type.String())
	}
	b.WriteString("):\n")
	for _, inst := range bb.Instructions {
		b.WriteString("  ")
		printInstruction(b, inst)
		b.WriteString("\n")
	}
}

func printInstruction(b *strings.Builder, inst *Instruction) {
	if inst.Name != "" && !IsVoid(inst.Kind.InferType()) {
		b.WriteString("%")
		b.WriteString(inst.Name)
		b.WriteString(" = ")
	}
	switch k := inst.Kind.(type) {
	case *InstBooleanBinary:
		b.WriteString(k.Op.String())
		b.WriteString(" ")
		b.WriteString(k.Left.String())
		b.WriteString(", ")
		b.WriteString(k.Right.String())
	case *InstNot:
		b.WriteString("not ")
		b.WriteString(k.Operand.String())
	case *InstLiteral:
		b.WriteString("literal ")
		b.WriteString(k.Value.String())
		b.WriteString(": ")
		b.WriteString(k.Type.String())
	case *InstApply:
		b.WriteString("apply ")
		b.WriteString(definitionIdentifier(calleeDefinition(k.Callee)))
		b.WriteString("(")
		for i, a := range k.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.String())
		}
		b.WriteString(") -> ")
		b.WriteString(inst.Kind.InferType().String())
	case *InstExtract:
		b.WriteString("extract ")
		printKeys(b, k.Keys)
		b.WriteString(" from ")
		b.WriteString(k.From.String())
	case *InstInsert:
		b.WriteString("insert ")
		b.WriteString(k.Src.String())
		b.WriteString(" to ")
		b.WriteString(k.Dest.String())
		b.WriteString(" at ")
		printKeys(b, k.Keys)
	case *InstBranch:
		b.WriteString("branch '")
		b.WriteString(k.Target.Name)
		b.WriteString("(")
		printUses(b, k.Args)
		b.WriteString(")")
	case *InstConditional:
		b.WriteString("conditional ")
		b.WriteString(k.Cond.String())
		b.WriteString(" then '")
		b.WriteString(k.ThenBlock.Name)
		b.WriteString("(")
		printUses(b, k.ThenArgs)
		b.WriteString(") else '")
		b.WriteString(k.ElseBlock.Name)
		b.WriteString("(")
		printUses(b, k.ElseArgs)
		b.WriteString(")")
	case *InstBranchEnum:
		b.WriteString("branchEnum ")
		b.WriteString(k.Subject.String())
		for _, c := range k.Cases {
			b.WriteString(" case ?")
			b.WriteString(c.CaseName)
			b.WriteString(" '")
			b.WriteString(c.Target.Name)
		}
	case *InstLoad:
		b.WriteString("load ")
		b.WriteString(k.Ptr.String())
	case *InstStore:
		b.WriteString("store ")
		b.WriteString(k.Val.String())
		b.WriteString(" to ")
		b.WriteString(k.Ptr.String())
	case *InstElementPointer:
		b.WriteString("elementPointer ")
		b.WriteString(k.Ptr.String())
		b.WriteString(" at ")
		printKeys(b, k.Keys)
	case *InstBuiltin:
		b.WriteString("builtin ")
		b.WriteString(k.IntrinsicID)
		b.WriteString("(")
		printUses(b, k.Args)
		b.WriteString(")")
	case *InstTrap:
		b.WriteString("trap")
	case *InstReturn:
		b.WriteString("return")
		if k.Value != nil {
			b.WriteString(" ")
			b.WriteString(k.Value.String())
		}
	}
}

func calleeDefinition(u Use) Definition {
	if u.IsLiteral() {
		return nil
	}
	return u.Def
}

func printUses(b *strings.Builder, uses []Use) {
	for i, u := range uses {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(u.String())
	}
}

func printKeys(b *strings.Builder, keys []ElementKey) {
	b.WriteString("[")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		switch {
		case k.Index != nil:
			b.WriteString(itoa(*k.Index))
		case k.Name != nil:
			b.WriteString("#")
			b.WriteString(*k.Name)
		case k.Value != nil:
			b.WriteString(k.Value.String())
		}
	}
	b.WriteString("]")
}

// quoteString escapes a module name per spec §4.2: `"`, `\`, `\n`, `\t`, `\r`.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteString(`"`)
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteString(`"`)
	return b.String()
}

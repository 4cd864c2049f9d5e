package ir

import "strings"

// Value is anything with a type: every literal and every Definition is a
// Value.
type Value interface {
	ValueType() Type
}

// NamedValue is a Value that may carry an optional name and has object
// identity — the four Definition kinds (Argument, Instruction, Variable,
// Function) all implement it.
type NamedValue interface {
	Value
	ValueName() string
	HasName() bool
}

// Definition is one of Argument, Instruction, Variable or Function: the
// four things a Use can refer to.
type Definition interface {
	NamedValue
	isDefinition()
}

// Literal is gpir's closed set of constant forms. Equality is structural
// (see LiteralsEqual).
type Literal interface {
	isLiteral()
	String() string
}

type LitUndefined struct{}
type LitNull struct{}
type LitZero struct{}
type LitBool struct{ Value bool }

// LitTuple is an ordered sequence of element uses.
type LitTuple struct{ Elements []Use }

// LitStruct is a sequence of (field name, use) pairs, in declaration order.
type LitStruct struct{ Fields []LitStructField }

type LitStructField struct {
	Name string
	Use  Use
}

// LitEnumCase constructs a case of an enum with its associated-type uses.
type LitEnumCase struct {
	Case string
	Args []Use
}

func (LitUndefined) isLiteral() {}
func (LitNull) isLiteral()      {}
func (LitZero) isLiteral()      {}
func (LitBool) isLiteral()      {}
func (LitTuple) isLiteral()     {}
func (LitStruct) isLiteral()    {}
func (LitEnumCase) isLiteral()  {}

func (LitUndefined) String() string { return "undefined" }
func (LitNull) String() string      { return "null" }
func (LitZero) String() string      { return "zero" }
func (l LitBool) String() string {
	if l.Value {
		return "true"
	}
	return "false"
}
func (l LitTuple) String() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (l LitStruct) String() string {
	parts := make([]string, len(l.Fields))
	for i, f := range l.Fields {
		parts[i] = "#" + f.Name + " = " + f.Use.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (l LitEnumCase) String() string {
	parts := make([]string, len(l.Args))
	for i, a := range l.Args {
		parts[i] = a.String()
	}
	return "?" + l.Case + "(" + strings.Join(parts, ", ") + ")"
}

// LiteralsEqual reports whether two literals are structurally identical,
// including nested uses.
func LiteralsEqual(a, b Literal) bool {
	switch av := a.(type) {
	case LitUndefined:
		_, ok := b.(LitUndefined)
		return ok
	case LitNull:
		_, ok := b.(LitNull)
		return ok
	case LitZero:
		_, ok := b.(LitZero)
		return ok
	case LitBool:
		bv, ok := b.(LitBool)
		return ok && av.Value == bv.Value
	case LitTuple:
		bv, ok := b.(LitTuple)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !UsesEqual(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case LitStruct:
		bv, ok := b.(LitStruct)
		if !ok || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for i := range av.Fields {
			if av.Fields[i].Name != bv.Fields[i].Name || !UsesEqual(av.Fields[i].Use, bv.Fields[i].Use) {
				return false
			}
		}
		return true
	case LitEnumCase:
		bv, ok := b.(LitEnumCase)
		if !ok || av.Case != bv.Case || len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if !UsesEqual(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Use is a reference to a value: either an inline literal or a reference to
// a Definition elsewhere in the module. Its Type is carried explicitly for
// literals and derived from the referent for definitions.
type Use struct {
	Def     Definition // nil for a literal use
	Lit     Literal    // nil for a definition use
	litType Type       // only meaningful when Lit != nil
}

// LiteralUse builds a Use that carries an inline literal of type t.
func LiteralUse(lit Literal, t Type) Use {
	return Use{Lit: lit, litType: t}
}

// DefUse builds a Use referencing a Definition.
func DefUse(def Definition) Use {
	return Use{Def: def}
}

func (u Use) IsLiteral() bool { return u.Lit != nil }

func (u Use) ValueType() Type {
	if u.Lit != nil {
		return u.litType
	}
	return u.Def.ValueType()
}

func (u Use) String() string {
	if u.Lit != nil {
		return u.Lit.String() + ": " + u.litType.String()
	}
	return definitionIdentifier(u.Def) + ": " + u.Def.ValueType().String()
}

// UsesEqual compares two uses for value equality: same literal form and
// type, or the identical definition.
func UsesEqual(a, b Use) bool {
	if a.IsLiteral() != b.IsLiteral() {
		return false
	}
	if a.IsLiteral() {
		return LiteralsEqual(a.Lit, b.Lit) && TypesEqual(a.litType, b.litType)
	}
	return a.Def == b.Def
}

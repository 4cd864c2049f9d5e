// Package ir is gpir's in-memory intermediate representation: a typed,
// SSA-form module/function/basic-block graph, the builder that constructs
// it, the deterministic printer, the verifier, and the analysis/transform
// pass framework that operates over it.
package ir

import (
	"strings"
)

// Type is the algebraic sum of gpir's type system. Struct and Enum compare
// by identity (same declaration pointer); every other form compares
// structurally once canonicalized.
type Type interface {
	isType()
	String() string
}

// Bool is the single primitive type.
type Bool struct{}

func (Bool) isType()        {}
func (Bool) String() string { return "bool" }

// Tuple is an ordered, possibly-empty product type. Void is Tuple(nil).
type Tuple struct {
	Elements []Type
}

func (Tuple) isType() {}
func (t Tuple) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Void is the canonical empty tuple, returned by terminators, store and trap.
func Void() Type { return Tuple{} }

func IsVoid(t Type) bool {
	tup, ok := Canonical(t).(Tuple)
	return ok && len(tup.Elements) == 0
}

// StructDecl declares a nominal struct type. Two Struct types are equal iff
// they reference the identical *StructDecl.
type StructDecl struct {
	Name   string
	Fields []StructField
}

type StructField struct {
	Name string
	Type Type
}

func (d *StructDecl) FieldType(name string) (Type, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// Struct is a reference to a nominal struct declaration.
type Struct struct {
	Decl *StructDecl
}

func (Struct) isType()          {}
func (s Struct) String() string { return "$" + s.Decl.Name }

// EnumDecl declares a nominal sum type. Each case carries an ordered tuple
// of associated types (possibly empty).
type EnumDecl struct {
	Name  string
	Cases []EnumCase
}

type EnumCase struct {
	Name            string
	AssociatedTypes []Type
}

func (d *EnumDecl) Case(name string) (EnumCase, bool) {
	for _, c := range d.Cases {
		if c.Name == name {
			return c, true
		}
	}
	return EnumCase{}, false
}

// Enum is a reference to a nominal enum declaration.
type Enum struct {
	Decl *EnumDecl
}

func (Enum) isType()          {}
func (e Enum) String() string { return "$" + e.Decl.Name }

// Pointer is the type of a storage location holding a Pointee value.
type Pointer struct {
	Pointee Type
}

func (Pointer) isType()          {}
func (p Pointer) String() string { return "*" + p.Pointee.String() }

// FunctionType is the type of a callable: an ordered argument list and a
// return type.
type FunctionType struct {
	Args []Type
	Ret  Type
}

func (FunctionType) isType() {}
func (f FunctionType) String() string {
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		parts[i] = a.String()
	}
	return "(" + strings.Join(parts, ", ") + ")->" + f.Ret.String()
}

// TypeAlias names a type, or stands opaque (None) when Type is nil. Opaque
// aliases compare by name, to allow cross-module references without a
// shared declaration; resolved aliases canonicalize to their target.
type TypeAlias struct {
	Name string
	Type Type // nil when opaque
}

func (a *TypeAlias) IsOpaque() bool { return a.Type == nil }

// Alias is a reference to a type alias declaration.
type Alias struct {
	Decl *TypeAlias
}

func (Alias) isType()          {}
func (a Alias) String() string { return "$" + a.Decl.Name }

// Invalid marks a type that could not be determined (e.g. by a failed
// inference rule). It is never equal to anything, including another
// Invalid, so callers must check for it with IsInvalid rather than ==.
type Invalid struct{}

func (Invalid) isType()          {}
func (Invalid) String() string   { return "<invalid>" }
func IsInvalid(t Type) bool      { _, ok := t.(Invalid); return ok }

// Canonical recursively unfolds resolved aliases and canonicalizes
// components, leaving opaque aliases and nominal struct/enum references
// untouched (they already compare by name/identity).
func Canonical(t Type) Type {
	switch v := t.(type) {
	case Alias:
		if v.Decl.IsOpaque() {
			return v
		}
		return Canonical(v.Decl.Type)
	case Tuple:
		elems := make([]Type, len(v.Elements))
		for i, e := range v.Elements {
			elems[i] = Canonical(e)
		}
		return Tuple{Elements: elems}
	case Pointer:
		return Pointer{Pointee: Canonical(v.Pointee)}
	case FunctionType:
		args := make([]Type, len(v.Args))
		for i, a := range v.Args {
			args[i] = Canonical(a)
		}
		return FunctionType{Args: args, Ret: Canonical(v.Ret)}
	default:
		return t // Bool, Struct, Enum, Invalid
	}
}

// TypesEqual compares two types by canonical form, except Struct/Enum,
// which compare by declaration identity, and opaque Alias, which compares
// by name.
func TypesEqual(a, b Type) bool {
	ca, cb := Canonical(a), Canonical(b)

	switch av := ca.(type) {
	case Bool:
		_, ok := cb.(Bool)
		return ok
	case Struct:
		bv, ok := cb.(Struct)
		return ok && av.Decl == bv.Decl
	case Enum:
		bv, ok := cb.(Enum)
		return ok && av.Decl == bv.Decl
	case Alias: // only reached for opaque aliases
		bv, ok := cb.(Alias)
		return ok && bv.Decl.IsOpaque() && av.Decl.Name == bv.Decl.Name
	case Pointer:
		bv, ok := cb.(Pointer)
		return ok && TypesEqual(av.Pointee, bv.Pointee)
	case FunctionType:
		bv, ok := cb.(FunctionType)
		if !ok || len(av.Args) != len(bv.Args) || !TypesEqual(av.Ret, bv.Ret) {
			return false
		}
		for i := range av.Args {
			if !TypesEqual(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return true
	case Tuple:
		bv, ok := cb.(Tuple)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !TypesEqual(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case Invalid:
		return false
	default:
		return false
	}
}

// ElementKey selects a component of an aggregate type or value: a tuple
// index, a struct field name, or a dynamically-computed key (used for
// pointer element access, where any key is accepted and the pointee type
// is unchanged).
type ElementKey struct {
	Index *int  // tuple index
	Name  *string // struct field name
	Value *Use  // dynamic key (pointer element access)
}

func IndexKey(i int) ElementKey   { return ElementKey{Index: &i} }
func NameKey(name string) ElementKey { return ElementKey{Name: &name} }
func ValueKey(u Use) ElementKey   { return ElementKey{Value: &u} }

// ElementType resolves the type obtained by indexing into t with keys, in
// order. It is defined for tuples (by index), structs (by field name) and
// pointers (any key, returning the pointee type unchanged). It returns
// Invalid{} when the key path does not apply to t.
func ElementType(t Type, keys []ElementKey) Type {
	cur := t
	for _, k := range keys {
		switch c := Canonical(cur).(type) {
		case Tuple:
			if k.Index == nil || *k.Index < 0 || *k.Index >= len(c.Elements) {
				return Invalid{}
			}
			cur = c.Elements[*k.Index]
		case Struct:
			if k.Name == nil {
				return Invalid{}
			}
			ft, ok := c.Decl.FieldType(*k.Name)
			if !ok {
				return Invalid{}
			}
			cur = ft
		case Pointer:
			// Any key kind is accepted; the pointee type is unaffected by
			// a single level of indexing through a pointer.
			cur = c.Pointee
		default:
			return Invalid{}
		}
	}
	return cur
}

// IsValid reports whether every transitively referenced non-Invalid
// component of t is valid. Structs/enums are valid when all of their
// fields/case associated types are valid; an enum case may recursively
// reference its own enum without being treated as invalid.
func IsValid(t Type) bool {
	return isValid(t, map[*EnumDecl]bool{})
}

func isValid(t Type, visitingEnums map[*EnumDecl]bool) bool {
	switch v := t.(type) {
	case Invalid:
		return false
	case Bool:
		return true
	case Tuple:
		for _, e := range v.Elements {
			if !isValid(e, visitingEnums) {
				return false
			}
		}
		return true
	case Pointer:
		return isValid(v.Pointee, visitingEnums)
	case FunctionType:
		for _, a := range v.Args {
			if !isValid(a, visitingEnums) {
				return false
			}
		}
		return isValid(v.Ret, visitingEnums)
	case Alias:
		if v.Decl.IsOpaque() {
			return true
		}
		return isValid(v.Decl.Type, visitingEnums)
	case Struct:
		for _, f := range v.Decl.Fields {
			if !isValid(f.Type, visitingEnums) {
				return false
			}
		}
		return true
	case Enum:
		if visitingEnums[v.Decl] {
			return true // recursive reference to self is allowed
		}
		visitingEnums[v.Decl] = true
		for _, c := range v.Decl.Cases {
			for _, at := range c.AssociatedTypes {
				if !isValid(at, visitingEnums) {
					return false
				}
			}
		}
		return true
	default:
		return false
	}
}

package ir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarioS1StructLiteralPrinting builds the struct-literal fixture and
// checks the printed form matches the grammar in printer.go exactly:
// unnamed literal instruction, fields in declaration order.
func TestScenarioS1StructLiteralPrinting(t *testing.T) {
	b := NewModuleBuilder("demo", "0")
	sd := b.DeclareStruct("TestStruct1", []StructField{
		{Name: "foo", Type: Bool{}},
		{Name: "bar", Type: Bool{}},
	})
	fn := b.DeclareFunction("initialize_struct1", nil, Void(), NotDeclared)
	entry := b.CreateBlock(fn, "entry")
	b.SetInsertPoint(entry)
	b.Literal("", LitStruct{Fields: []LitStructField{
		{Name: "foo", Use: LiteralUse(LitBool{Value: true}, Bool{})},
		{Name: "bar", Use: LiteralUse(LitBool{Value: false}, Bool{})},
	}}, Struct{Decl: sd})
	b.Return(nil)

	require.NoError(t, Verify(b.Module))

	out := Print(b.Module)
	expected := "function @initialize_struct1() -> () {\n" +
		"'entry():\n" +
		"  literal {#foo = true: bool, #bar = false: bool}: $TestStruct1\n" +
		"  return\n" +
		"}\n"
	assert.Contains(t, out, expected)
}

// TestScenarioS2EnumLiteralPrinting builds four enum-case literals —
// including one whose associated values are themselves nested enum-case
// literals, per the nested-literal rule — and checks every operand prints
// with ?case(...) syntax.
func TestScenarioS2EnumLiteralPrinting(t *testing.T) {
	b := NewModuleBuilder("demo", "0")
	ed := b.DeclareEnum("TestEnum1", []EnumCase{
		{Name: "foo", AssociatedTypes: []Type{Bool{}, Bool{}}},
		{Name: "bar", AssociatedTypes: nil},
		{Name: "baz", AssociatedTypes: []Type{Enum{}, Bool{}, Enum{}}},
	})
	// EnumCase.AssociatedTypes for baz reference the enum itself; patch in
	// the declaration pointer now that it exists.
	ed.Cases[2].AssociatedTypes = []Type{Enum{Decl: ed}, Bool{}, Enum{Decl: ed}}
	enumType := Enum{Decl: ed}

	fn := b.DeclareFunction("make_cases", nil, Void(), NotDeclared)
	entry := b.CreateBlock(fn, "entry")
	b.SetInsertPoint(entry)

	b.Literal("", LitEnumCase{Case: "foo", Args: []Use{
		LiteralUse(LitBool{Value: true}, Bool{}),
		LiteralUse(LitBool{Value: false}, Bool{}),
	}}, enumType)
	b.Literal("", LitEnumCase{Case: "bar"}, enumType)
	b.Literal("", LitEnumCase{
		Case: "baz",
		Args: []Use{
			LiteralUse(LitEnumCase{Case: "foo", Args: []Use{
				LiteralUse(LitBool{Value: false}, Bool{}),
				LiteralUse(LitBool{Value: true}, Bool{}),
			}}, enumType),
			LiteralUse(LitBool{Value: true}, Bool{}),
			LiteralUse(LitEnumCase{Case: "bar"}, enumType),
		},
	}, enumType)
	b.Literal("", LitEnumCase{Case: "foo", Args: []Use{
		LiteralUse(LitBool{Value: true}, Bool{}),
		LiteralUse(LitBool{Value: true}, Bool{}),
	}}, enumType)
	b.Return(nil)

	require.NoError(t, Verify(b.Module))

	out := Print(b.Module)
	assert.Equal(t, 4, strings.Count(out, "literal ?"))
	assert.Contains(t, out, "literal ?foo(true: bool, false: bool): $TestEnum1")
	assert.Contains(t, out, "literal ?bar(): $TestEnum1")
	assert.Contains(t, out, "?baz(?foo(false: bool, true: bool): $TestEnum1, true: bool, ?bar(): $TestEnum1): $TestEnum1")
}

// TestScenarioS3DCE builds one used `and`, a chain of two unused
// `and`/`or` instructions, and a conditional that survives. DCE must
// remove exactly the two unused instructions, leave the conditional and
// its successors untouched, and report changed = false on a second pass.
func TestScenarioS3DCE(t *testing.T) {
	b := NewModuleBuilder("demo", "0")
	fn := b.DeclareFunction("f", []Type{Bool{}, Bool{}}, Void(), NotDeclared)
	entry := b.CreateBlock(fn, "entry")
	a := b.AddArgument(entry, "a", Bool{})
	bb := b.AddArgument(entry, "b", Bool{})
	thenBB := b.CreateBlock(fn, "then")
	elseBB := b.CreateBlock(fn, "else")

	b.SetInsertPoint(entry)
	used := b.Boolean("used", OpAnd, DefUse(a), DefUse(bb))
	dead1 := b.Boolean("dead1", OpOr, DefUse(a), DefUse(bb))
	b.Boolean("dead2", OpAnd, DefUse(dead1), DefUse(a))
	b.Conditional(DefUse(used), thenBB, nil, elseBB, nil)

	b.SetInsertPoint(thenBB)
	b.Return(nil)
	b.SetInsertPoint(elseBB)
	b.Return(nil)

	require.NoError(t, Verify(b.Module))
	require.Equal(t, 4, len(entry.Instructions))

	changed, err := RunDCE(b.Module, true)
	require.NoError(t, err)
	assert.True(t, changed)

	require.Equal(t, 2, len(entry.Instructions))
	assert.Equal(t, "used", entry.Instructions[0].Name)
	_, isCond := entry.Instructions[1].Kind.(*InstConditional)
	assert.True(t, isCond, "conditional must survive DCE")
	assert.Equal(t, 1, len(thenBB.Instructions))
	assert.Equal(t, 1, len(elseBB.Instructions))

	changed, err = RunDCE(b.Module, true)
	require.NoError(t, err)
	assert.False(t, changed, "DCE must be idempotent")
}

// TestScenarioS4CSE builds three pairs of duplicate boolean expressions
// (or/and/or) plus one instruction that combines their representatives,
// then a dominated successor block repeating one of the pairs. CSE must
// collapse each pair to its first occurrence, leave exactly four boolean
// instructions in entry, eliminate the successor's duplicate in favor of
// the entry-block representative it is dominated by, and be idempotent.
func TestScenarioS4CSE(t *testing.T) {
	b := NewModuleBuilder("demo", "0")
	fn := b.DeclareFunction("f", []Type{Bool{}, Bool{}}, Bool{}, NotDeclared)
	entry := b.CreateBlock(fn, "entry")
	x := b.AddArgument(entry, "x", Bool{})
	y := b.AddArgument(entry, "y", Bool{})
	post := b.CreateBlock(fn, "post")

	b.SetInsertPoint(entry)
	i0 := b.Boolean("", OpOr, DefUse(x), DefUse(y))
	b.Boolean("", OpOr, DefUse(x), DefUse(y)) // duplicate of i0
	trueLit := b.Literal("", LitBool{Value: true}, Bool{})
	i2 := b.Boolean("", OpAnd, DefUse(i0), DefUse(trueLit))
	b.Boolean("", OpAnd, DefUse(i0), DefUse(trueLit)) // duplicate of i2
	falseLit := b.Literal("", LitBool{Value: false}, Bool{})
	i4 := b.Boolean("", OpOr, DefUse(i2), DefUse(falseLit))
	b.Boolean("", OpOr, DefUse(i2), DefUse(falseLit)) // duplicate of i4
	b.Boolean("", OpAnd, DefUse(i4), DefUse(i2))      // unique combine, survives
	b.Branch(post, nil)

	b.SetInsertPoint(post)
	pdup := b.Boolean("", OpOr, DefUse(i2), DefUse(falseLit)) // duplicate of i4, across blocks
	pdupUse := DefUse(pdup)
	b.Return(&pdupUse)

	require.NoError(t, Verify(b.Module))
	require.Equal(t, 7, countBooleans(entry))
	require.Equal(t, 1, countBooleans(post))

	changed, err := RunCSE(b.Module, true)
	require.NoError(t, err)
	assert.True(t, changed)

	assert.Equal(t, 4, countBooleans(entry))
	assert.Equal(t, 0, countBooleans(post), "post's duplicate or must be eliminated")

	ret, ok := post.Terminator().Kind.(*InstReturn)
	require.True(t, ok)
	require.NotNil(t, ret.Value)
	assert.Equal(t, Definition(i4), ret.Value.Def, "return must now reference entry's dominating representative")

	changed, err = RunCSE(b.Module, true)
	require.NoError(t, err)
	assert.False(t, changed, "CSE must be idempotent")
}

func countBooleans(bb *BasicBlock) int {
	n := 0
	for _, inst := range bb.Instructions {
		if _, ok := inst.Kind.(*InstBooleanBinary); ok {
			n++
		}
	}
	return n
}

// TestScenarioS5CFGCanonicalization builds a function with two returning
// blocks inside a nested conditional and one direct else-return, and
// checks canonicalization converges bottom-up to a single exit block even
// though the inner conditional's own housing block has no Return of its
// own — the bug the nested-conditional convergence fix addresses.
func TestScenarioS5CFGCanonicalization(t *testing.T) {
	b := NewModuleBuilder("demo", "0")
	fn := b.DeclareFunction("f", []Type{Bool{}, Bool{}}, Bool{}, NotDeclared)
	entry := b.CreateBlock(fn, "entry")
	c1 := b.AddArgument(entry, "c1", Bool{})
	c2 := b.AddArgument(entry, "c2", Bool{})
	inner := b.CreateBlock(fn, "inner")
	innerThen := b.CreateBlock(fn, "innerThen")
	innerElse := b.CreateBlock(fn, "innerElse")
	elseReturn := b.CreateBlock(fn, "elseReturn")

	b.SetInsertPoint(entry)
	b.Conditional(DefUse(c1), inner, nil, elseReturn, nil)

	b.SetInsertPoint(inner)
	b.Conditional(DefUse(c2), innerThen, nil, innerElse, nil)

	b.SetInsertPoint(innerThen)
	trueUse := LiteralUse(LitBool{Value: true}, Bool{})
	b.Return(&trueUse)

	b.SetInsertPoint(innerElse)
	falseUse := LiteralUse(LitBool{Value: false}, Bool{})
	b.Return(&falseUse)

	b.SetInsertPoint(elseReturn)
	elseUse := LiteralUse(LitBool{Value: true}, Bool{})
	b.Return(&elseUse)

	require.NoError(t, Verify(b.Module))
	require.Equal(t, 3, len(exitBlocks(fn)))

	changed := (CFGCanonicalization{}).Apply(fn)
	assert.True(t, changed)
	require.NoError(t, Verify(b.Module))

	exits := exitBlocks(fn)
	require.Equal(t, 1, len(exits), "must converge to a single exit block")
	exit := exits[0]
	assert.Equal(t, "exit", exit.Name)
	ret, ok := exit.Terminator().Kind.(*InstReturn)
	require.True(t, ok)
	require.NotNil(t, ret.Value)
	require.Len(t, exit.Params, 1)
	assert.Equal(t, Definition(exit.Params[0]), ret.Value.Def)

	entryCond := entry.Terminator().Kind.(*InstConditional)
	assert.Equal(t, entryCond.ThenBlock, entryCond.ElseBlock, "outer conditional must merge to one join")
	innerCond := inner.Terminator().Kind.(*InstConditional)
	assert.Equal(t, innerCond.ThenBlock, innerCond.ElseBlock, "inner conditional must merge to one join")

	changed = (CFGCanonicalization{}).Apply(fn)
	assert.False(t, changed, "canonicalization must be idempotent once single-exit")
}

// TestScenarioS6VerifierRejectsUseBeforeDef builds two sibling successors
// of a conditional where one references an instruction defined in the
// other — neither dominates the other — and checks Verify reports
// ErrUseBeforeDef.
func TestScenarioS6VerifierRejectsUseBeforeDef(t *testing.T) {
	b := NewModuleBuilder("demo", "0")
	fn := b.DeclareFunction("f", []Type{Bool{}}, Bool{}, NotDeclared)
	entry := b.CreateBlock(fn, "entry")
	cond := b.AddArgument(entry, "cond", Bool{})
	blockB := b.CreateBlock(fn, "B")
	blockC := b.CreateBlock(fn, "C")

	b.SetInsertPoint(entry)
	b.Conditional(DefUse(cond), blockB, nil, blockC, nil)

	b.SetInsertPoint(blockC)
	x := b.Literal("x", LitBool{Value: true}, Bool{})
	xUse := DefUse(x)
	b.Return(&xUse)

	b.SetInsertPoint(blockB)
	r := b.Not("r", DefUse(x)) // x is defined in C, a sibling B does not dominate
	rUse := DefUse(r)
	b.Return(&rUse)

	err := Verify(b.Module)
	require.Error(t, err)
	var verr *VerifierError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, ErrUseBeforeDef, verr.Kind)
}

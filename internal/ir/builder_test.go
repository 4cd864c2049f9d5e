package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildBoolAnd builds:
//
//	function @f(bool, bool) -> bool {
//	'entry(%a: bool, %b: bool):
//	  %r = and %a, %b
//	  return %r
//	}
func buildBoolAnd(b *Builder) *Function {
	fn := b.DeclareFunction("f", []Type{Bool{}, Bool{}}, Bool{}, NotDeclared)
	entry := b.CreateBlock(fn, "entry")
	a := b.AddArgument(entry, "a", Bool{})
	arg2 := b.AddArgument(entry, "b", Bool{})
	b.SetInsertPoint(entry)
	r := b.Boolean("r", OpAnd, DefUse(a), DefUse(arg2))
	ret := DefUse(r)
	b.Return(&ret)
	return fn
}

func TestBuilderProducesVerifiableFunction(t *testing.T) {
	b := NewModuleBuilder("demo", "0")
	buildBoolAnd(b)

	require.NoError(t, Verify(b.Module))
}

func TestBuilderMissingTerminatorFailsVerify(t *testing.T) {
	b := NewModuleBuilder("demo", "0")
	fn := b.DeclareFunction("f", nil, Void(), NotDeclared)
	entry := b.CreateBlock(fn, "entry")
	b.SetInsertPoint(entry)
	b.Literal("x", LitZero{}, Void())

	err := Verify(b.Module)
	require.Error(t, err)
	var verr *VerifierError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, ErrMissingTerminator, verr.Kind)
}

func TestBuilderNamedVoidValueFailsVerify(t *testing.T) {
	b := NewModuleBuilder("demo", "0")
	fn := b.DeclareFunction("f", nil, Void(), NotDeclared)
	entry := b.CreateBlock(fn, "entry")
	b.SetInsertPoint(entry)
	b.buildInstruction("bad", &InstStore{
		Val: LiteralUse(LitZero{}, Void()),
		Ptr: LiteralUse(LitZero{}, Pointer{Pointee: Void()}),
	})
	b.Return(nil)

	err := Verify(b.Module)
	require.Error(t, err)
	var verr *VerifierError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, ErrNamedVoidValue, verr.Kind)
}

func TestRemoveInstructionDetachesFromBlock(t *testing.T) {
	b := NewModuleBuilder("demo", "0")
	fn := b.DeclareFunction("f", nil, Bool{}, NotDeclared)
	entry := b.CreateBlock(fn, "entry")
	b.SetInsertPoint(entry)
	lit := b.Literal("unused", LitBool{Value: true}, Bool{})
	litUse := DefUse(lit)
	b.Return(&litUse)

	dead := b.Literal("dead", LitBool{Value: false}, Bool{})
	b.RemoveInstruction(dead)

	assert.Equal(t, 2, len(entry.Instructions))
	assert.Equal(t, -1, entry.InstructionIndex(dead))
}

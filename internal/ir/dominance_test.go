package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildDiamond builds a diamond CFG:
//
//	function @f(bool) -> bool {
//	'entry(%c: bool):
//	  conditional %c then 'then() else 'else()
//	'then():
//	  %t = literal true: bool
//	  branch 'join(%t)
//	'else():
//	  %f = literal false: bool
//	  branch 'join(%f)
//	'join(%v: bool):
//	  return %v
//	}
func buildDiamond(b *Builder) (fn *Function, entry, thenBB, elseBB, join *BasicBlock) {
	fn = b.DeclareFunction("f", []Type{Bool{}}, Bool{}, NotDeclared)
	entry = b.CreateBlock(fn, "entry")
	cond := b.AddArgument(entry, "c", Bool{})
	thenBB = b.CreateBlock(fn, "then")
	elseBB = b.CreateBlock(fn, "else")
	join = b.CreateBlock(fn, "join")
	joinArg := b.AddArgument(join, "v", Bool{})

	b.SetInsertPoint(entry)
	b.Conditional(DefUse(cond), thenBB, nil, elseBB, nil)

	b.SetInsertPoint(thenBB)
	tlit := b.Literal("t", LitBool{Value: true}, Bool{})
	tuse := DefUse(tlit)
	b.Branch(join, []Use{tuse})

	b.SetInsertPoint(elseBB)
	flit := b.Literal("fv", LitBool{Value: false}, Bool{})
	fuse := DefUse(flit)
	b.Branch(join, []Use{fuse})

	b.SetInsertPoint(join)
	ret := DefUse(joinArg)
	b.Return(&ret)

	return fn, entry, thenBB, elseBB, join
}

func TestDominanceDiamond(t *testing.T) {
	b := NewModuleBuilder("demo", "0")
	fn, entry, thenBB, elseBB, join := buildDiamond(b)
	require.NoError(t, Verify(b.Module))

	dom := Dominance(fn)

	assert.True(t, dom.Dominates(entry, thenBB))
	assert.True(t, dom.Dominates(entry, elseBB))
	assert.True(t, dom.Dominates(entry, join))
	assert.False(t, dom.Dominates(thenBB, join))
	assert.False(t, dom.Dominates(elseBB, join))
	assert.False(t, dom.Dominates(thenBB, elseBB))
	assert.True(t, dom.ProperlyDominates(entry, join))
	assert.False(t, dom.ProperlyDominates(join, join))
}

func TestDominanceUnreachableBlockExcluded(t *testing.T) {
	b := NewModuleBuilder("demo", "0")
	fn := b.DeclareFunction("f", nil, Void(), NotDeclared)
	entry := b.CreateBlock(fn, "entry")
	orphan := b.CreateBlock(fn, "orphan")
	b.SetInsertPoint(entry)
	b.Return(nil)
	b.SetInsertPoint(orphan)
	b.Return(nil)

	dom := Dominance(fn)
	assert.True(t, dom.Contains(entry))
	assert.False(t, dom.Contains(orphan))
}

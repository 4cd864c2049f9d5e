// Package intrinsic supplies gpir's concrete intrinsic set: the external
// collaborator the core spec deliberately leaves unspecified (spec §1).
// It only has to satisfy the shape internal/ir.IntrinsicRegistry expects —
// a handful of representative, fixed-arity builtins (one pure, one
// impure) is enough to exercise Builtin instructions end to end in the
// builder, verifier and DCE/CSE passes.
package intrinsic

import "gpir/internal/ir"

// Default returns the sealed registry gpir-opt patches parsed builtins
// against.
func Default() *ir.IntrinsicRegistry {
	r := ir.NewIntrinsicRegistry()

	r.Register(ir.IntrinsicSignature{
		ID:     "bool.xor",
		Args:   []ir.Type{ir.Bool{}, ir.Bool{}},
		Result: ir.Bool{},
		Pure:   true,
	})
	r.Register(ir.IntrinsicSignature{
		ID:     "trap.unreachable",
		Args:   nil,
		Result: ir.Void(),
		Pure:   false,
	})

	r.Seal()
	return r
}

package ir

// IntrinsicSignature describes a single entry in an IntrinsicRegistry: the
// operand/result types a Builtin instruction with this ID must conform to,
// and whether DCE/CSE may treat it as pure.
type IntrinsicSignature struct {
	ID      string
	Args    []Type
	Result  Type
	Pure    bool
}

// IntrinsicRegistry is a process-wide table of known intrinsics, built
// once at startup and then sealed. The concrete intrinsic set is an
// external collaborator's concern (spec §1 "Out of scope"); gpir only
// defines the registry shape and the contract that a sealed registry is
// immutable from then on. There is no package-level registry: a caller
// hands a *IntrinsicRegistry to PatchBuiltinSignatures; neither the
// Builder nor Verify takes one.
type IntrinsicRegistry struct {
	byID   map[string]IntrinsicSignature
	sealed bool
}

// NewIntrinsicRegistry returns an empty, unsealed registry.
func NewIntrinsicRegistry() *IntrinsicRegistry {
	return &IntrinsicRegistry{byID: make(map[string]IntrinsicSignature)}
}

// Register adds sig to the registry. It panics if the registry is already
// sealed or already has an entry for sig.ID — registration is a startup
// concern, not a runtime one.
func (r *IntrinsicRegistry) Register(sig IntrinsicSignature) {
	if r.sealed {
		panic("ir: cannot register intrinsic " + sig.ID + " on a sealed registry")
	}
	if _, exists := r.byID[sig.ID]; exists {
		panic("ir: intrinsic " + sig.ID + " already registered")
	}
	r.byID[sig.ID] = sig
}

// Seal freezes the registry; subsequent Register calls panic.
func (r *IntrinsicRegistry) Seal() { r.sealed = true }

// Sealed reports whether the registry has been sealed.
func (r *IntrinsicRegistry) Sealed() bool { return r.sealed }

// Lookup returns the signature registered for id, if any.
func (r *IntrinsicRegistry) Lookup(id string) (IntrinsicSignature, bool) {
	sig, ok := r.byID[id]
	return sig, ok
}

// EmptyIntrinsicRegistry is a sealed registry with no entries, useful for
// tests and for modules that use no builtins.
func EmptyIntrinsicRegistry() *IntrinsicRegistry {
	r := NewIntrinsicRegistry()
	r.Seal()
	return r
}

// PatchBuiltinSignatures resolves every InstBuiltin's ResultType/Pure_
// against reg. The textual form (internal/syntax) has no way to spell a
// builtin's result type or purity — those are a registry lookup, not
// syntax — so a Module produced by parsing text carries placeholder
// Void/impure builtins until this runs. Builder-constructed modules carry
// whatever result type and purity the caller passed to Builder.Builtin;
// the builder does not consult a registry.
func PatchBuiltinSignatures(m *Module, reg *IntrinsicRegistry) error {
	for _, fn := range m.Funcs {
		for _, bb := range fn.Blocks {
			for _, inst := range bb.Instructions {
				bi, ok := inst.Kind.(*InstBuiltin)
				if !ok {
					continue
				}
				sig, ok := reg.Lookup(bi.IntrinsicID)
				if !ok {
					return newVerifierError(ErrInvalidIntrinsic, inst.Name, "builtin %q is not registered", bi.IntrinsicID)
				}
				bi.ResultType = sig.Result
				bi.Pure_ = sig.Pure
			}
		}
		fn.InvalidatePassResults()
	}
	return nil
}

package ir

import "fmt"

// VerifierErrorKind is the closed taxonomy of ways a Module can fail to be
// well-formed (spec §7). It carries no source position — position tracking
// is a textual-syntax concern (internal/syntax, internal/errors), not the
// in-memory IR's.
type VerifierErrorKind int

const (
	// Structural
	ErrMissingTerminator VerifierErrorKind = iota
	ErrTerminatorNotLast
	ErrNoEntry
	ErrNoExit
	ErrMultipleExits
	ErrRedeclared
	ErrIllegalName
	ErrDeclarationCannotHaveBody
	ErrInstructionParentMismatch
	ErrBasicBlockParentMismatch
	ErrNamedVoidValue

	// Typing
	ErrInvalidType
	ErrTypeMismatch
	ErrUnexpectedType
	ErrUseTypeMismatch
	ErrNotBool
	ErrNotPointer
	ErrNotEnum
	ErrNotFunction
	ErrNotTuple

	// Linking
	ErrUseBeforeDef
	ErrUseInvalidParent
	ErrFunctionArgumentMismatch
	ErrFunctionEntryArgumentMismatch
	ErrBasicBlockArgumentMismatch
	ErrReturnTypeMismatch

	// Kind-specific
	ErrInvalidIndices
	ErrMissingIndices
	ErrInvalidOffset
	ErrInvalidEnumCase
	ErrInvalidEnumCaseBranch
	ErrInvalidIntrinsic
	ErrInvalidLiteral
	ErrDuplicateStructField
	ErrDuplicateEnumCase
	ErrNestedLiteralNotInLiteralInstruction
)

var verifierErrorNames = map[VerifierErrorKind]string{
	ErrMissingTerminator:                    "MissingTerminator",
	ErrTerminatorNotLast:                    "TerminatorNotLast",
	ErrNoEntry:                              "NoEntry",
	ErrNoExit:                               "NoExit",
	ErrMultipleExits:                        "MultipleExits",
	ErrRedeclared:                           "Redeclared",
	ErrIllegalName:                          "IllegalName",
	ErrDeclarationCannotHaveBody:            "DeclarationCannotHaveBody",
	ErrInstructionParentMismatch:            "InstructionParentMismatch",
	ErrBasicBlockParentMismatch:             "BasicBlockParentMismatch",
	ErrNamedVoidValue:                       "NamedVoidValue",
	ErrInvalidType:                          "InvalidType",
	ErrTypeMismatch:                         "TypeMismatch",
	ErrUnexpectedType:                       "UnexpectedType",
	ErrUseTypeMismatch:                      "UseTypeMismatch",
	ErrNotBool:                              "NotBool",
	ErrNotPointer:                           "NotPointer",
	ErrNotEnum:                              "NotEnum",
	ErrNotFunction:                          "NotFunction",
	ErrNotTuple:                             "NotTuple",
	ErrUseBeforeDef:                         "UseBeforeDef",
	ErrUseInvalidParent:                     "UseInvalidParent",
	ErrFunctionArgumentMismatch:             "FunctionArgumentMismatch",
	ErrFunctionEntryArgumentMismatch:        "FunctionEntryArgumentMismatch",
	ErrBasicBlockArgumentMismatch:           "BasicBlockArgumentMismatch",
	ErrReturnTypeMismatch:                   "ReturnTypeMismatch",
	ErrInvalidIndices:                       "InvalidIndices",
	ErrMissingIndices:                       "MissingIndices",
	ErrInvalidOffset:                        "InvalidOffset",
	ErrInvalidEnumCase:                      "InvalidEnumCase",
	ErrInvalidEnumCaseBranch:                "InvalidEnumCaseBranch",
	ErrInvalidIntrinsic:                     "InvalidIntrinsic",
	ErrInvalidLiteral:                       "InvalidLiteral",
	ErrDuplicateStructField:                 "DuplicateStructField",
	ErrDuplicateEnumCase:                    "DuplicateEnumCase",
	ErrNestedLiteralNotInLiteralInstruction: "NestedLiteralNotInLiteralInstruction",
}

func (k VerifierErrorKind) String() string {
	if name, ok := verifierErrorNames[k]; ok {
		return name
	}
	return "Unknown"
}

// VerifierError is the single error type the verifier returns: a kind, the
// offending node (rendered as a string — the verifier has no position
// tracking to attach a real span to) and a free-form message with whatever
// contextual values explain the failure.
type VerifierError struct {
	Kind    VerifierErrorKind
	Node    string
	Message string
}

func (e *VerifierError) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Node, e.Message)
}

func newVerifierError(kind VerifierErrorKind, node, format string, args ...any) *VerifierError {
	return &VerifierError{Kind: kind, Node: node, Message: fmt.Sprintf(format, args...)}
}

package syntax

// File is the root grammar production: exactly one module per document.
type File struct {
	Module *ModuleNode `@@`
}

type ModuleNode struct {
	Name      string          `"module" @String`
	Stage     string          `"stage" @(Ident | Integer)`
	Enums     []*EnumNode     `@@*`
	Structs   []*StructNode   `@@*`
	Aliases   []*AliasNode    `@@*`
	Globals   []*GlobalNode   `@@*`
	Functions []*FunctionNode `@@*`
}

type EnumNode struct {
	Name  string          `"enum" "$" @Ident "{"`
	Cases []*EnumCaseDecl `@@* "}"`
}

type EnumCaseDecl struct {
	Name  string      `@Ident "("`
	Types []*TypeNode `[ @@ { "," @@ } ] ")"`
}

type StructNode struct {
	Name   string             `"struct" "$" @Ident "{"`
	Fields []*StructFieldNode `@@* "}"`
}

type StructFieldNode struct {
	Name string    `"#" @Ident ":"`
	Type *TypeNode `@@`
}

type AliasNode struct {
	Name string    `"alias" "$" @Ident`
	Type *TypeNode `[ "=" @@ ]`
}

type GlobalNode struct {
	Name string    `"global" "@" @Ident ":"`
	Type *TypeNode `@@`
}

type FunctionNode struct {
	Declare bool         `(  @"declare"`
	Defn    bool         ` | @"function" )`
	Inline  bool         `[ @"inline" ]`
	Name    string       `"@" @Ident "("`
	Args    []*TypeNode  `[ @@ { "," @@ } ] ")" "->"`
	Ret     *TypeNode    `@@`
	Blocks  []*BlockNode `[ "{" @@* "}" ]`
}

// --- types ----------------------------------------------------------

type TypeNode struct {
	Paren   *ParenTypeNode   `  @@`
	Pointer *PointerTypeNode `| @@`
	Nominal *string          `| "$" @Ident`
	Bool    bool             `| @"bool"`
}

type PointerTypeNode struct {
	Pointee *TypeNode `"*" @@`
}

// ParenTypeNode covers both tuple and function types: the presence of a
// trailing "->" distinguishes a function type from a tuple.
type ParenTypeNode struct {
	Elements []*TypeNode `"(" [ @@ { "," @@ } ] ")"`
	Ret      *TypeNode   `[ "->" @@ ]`
}

// --- blocks & instructions -------------------------------------------

type BlockNode struct {
	Name         string             `"'" @Ident "("`
	Params       []*BlockParamNode  `[ @@ { "," @@ } ] ")" ":"`
	Instructions []*InstructionNode `@@*`
}

type BlockParamNode struct {
	Name string    `"%" @Ident ":"`
	Type *TypeNode `@@`
}

// InstructionNode covers every instruction kind the printer emits. Each
// alternative is distinguished by its leading keyword, so a single
// ordered alternation is enough — no lookahead tricks needed.
type InstructionNode struct {
	Name string `[ "%" @Ident "=" ]`

	Boolean        *BooleanInstrNode        `(  @@`
	Not            *NotInstrNode            ` | @@`
	Literal        *LiteralInstrNode        ` | @@`
	Apply          *ApplyInstrNode          ` | @@`
	Extract        *ExtractInstrNode        ` | @@`
	Insert         *InsertInstrNode         ` | @@`
	Branch         *BranchInstrNode         ` | @@`
	Conditional    *ConditionalInstrNode    ` | @@`
	BranchEnum     *BranchEnumInstrNode     ` | @@`
	Load           *LoadInstrNode           ` | @@`
	Store          *StoreInstrNode          ` | @@`
	ElementPointer *ElementPointerInstrNode ` | @@`
	Builtin        *BuiltinInstrNode        ` | @@`
	Trap           bool                     ` | @"trap"`
	Return         *ReturnInstrNode         ` | @@ )`
}

type BooleanInstrNode struct {
	Op    string   `@("and" | "or")`
	Left  *UseNode `@@ ","`
	Right *UseNode `@@`
}

type NotInstrNode struct {
	Operand *UseNode `"not" @@`
}

type LiteralInstrNode struct {
	Value *LiteralNode `"literal" @@ ":"`
	Type  *TypeNode    `@@`
}

type ApplyInstrNode struct {
	Callee *RefNode    `"apply" @@ "("`
	Args   []*UseNode  `[ @@ { "," @@ } ] ")" "->"`
	Ret    *TypeNode   `@@`
}

type ExtractInstrNode struct {
	Keys []*KeyNode `"extract" "[" [ @@ { "," @@ } ] "]"`
	From *UseNode   `"from" @@`
}

type InsertInstrNode struct {
	Src  *UseNode   `"insert" @@`
	Dest *UseNode   `"to" @@`
	Keys []*KeyNode `"at" "[" [ @@ { "," @@ } ] "]"`
}

type BranchInstrNode struct {
	Target string     `"branch" "'" @Ident "("`
	Args   []*UseNode `[ @@ { "," @@ } ] ")"`
}

type ConditionalInstrNode struct {
	Cond      *UseNode   `"conditional" @@`
	ThenBlock string     `"then" "'" @Ident "("`
	ThenArgs  []*UseNode `[ @@ { "," @@ } ] ")"`
	ElseBlock string     `"else" "'" @Ident "("`
	ElseArgs  []*UseNode `[ @@ { "," @@ } ] ")"`
}

type BranchEnumInstrNode struct {
	Subject *UseNode                 `"branchEnum" @@`
	Cases   []*BranchEnumCaseEntry   `@@*`
}

type BranchEnumCaseEntry struct {
	Case   string `"case" "?" @Ident`
	Target string `"'" @Ident`
}

type LoadInstrNode struct {
	Ptr *UseNode `"load" @@`
}

type StoreInstrNode struct {
	Val *UseNode `"store" @@`
	Ptr *UseNode `"to" @@`
}

type ElementPointerInstrNode struct {
	Ptr  *UseNode   `"elementPointer" @@`
	Keys []*KeyNode `"at" "[" [ @@ { "," @@ } ] "]"`
}

type BuiltinInstrNode struct {
	IDParts []string   `"builtin" @Ident { "." @Ident }`
	Args    []*UseNode `"(" [ @@ { "," @@ } ] ")"`
}

type ReturnInstrNode struct {
	Value *UseNode `"return" [ @@ ]`
}

// --- literals, uses, refs, keys ----------------------------------------

type LiteralNode struct {
	BoolLit   *string      `(  @("true" | "false")`
	Tuple     *TupleLit    ` | @@`
	Struct    *StructLit   ` | @@`
	EnumCase  *EnumCaseLit ` | @@`
	Zero      bool         ` | @"zero"`
	Undefined bool         ` | @"undefined"`
	Null      bool         ` | @"null" )`
}

type TupleLit struct {
	Elements []*UseNode `"(" [ @@ { "," @@ } ] ")"`
}

type StructLit struct {
	Fields []*StructLitField `"{" [ @@ { "," @@ } ] "}"`
}

type StructLitField struct {
	Name string   `"#" @Ident "="`
	Use  *UseNode `@@`
}

type EnumCaseLit struct {
	Case string     `"?" @Ident "("`
	Args []*UseNode `[ @@ { "," @@ } ] ")"`
}

// UseNode is either an inline literal or a reference, always followed by
// its type.
type UseNode struct {
	Literal *LiteralNode `(  @@`
	Ref     *RefNode     ` | @@ )`
	Type    *TypeNode    `":" @@`
}

// RefNode is a definition identifier: "%name", "%<block>.<inst>" or
// "@name".
type RefNode struct {
	Sigil string    `@("@" | "%")`
	Name  *string   `(  @Ident`
	Index *IndexRef ` | @@ )`
}

type IndexRef struct {
	Block int `@Integer "."`
	Inst  int `@Integer`
}

// KeyNode is one element of an index path: a tuple index, a struct field
// name, or a dynamic use (pointer element access).
type KeyNode struct {
	Index *int     `(  @Integer`
	Name  *string  ` | "#" @Ident`
	Value *UseNode ` | @@ )`
}

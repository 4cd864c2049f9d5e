package errors

import "fmt"

// Builder provides a fluent interface for constructing a CompilerError.
type Builder struct {
	err CompilerError
}

// New starts a new error-level diagnostic.
func New(code, message string, pos Position) *Builder {
	return &Builder{err: CompilerError{Level: Error, Code: code, Message: message, Position: pos, Length: 1}}
}

// NewWarning starts a new warning-level diagnostic.
func NewWarning(code, message string, pos Position) *Builder {
	return &Builder{err: CompilerError{Level: Warning, Code: code, Message: message, Position: pos, Length: 1}}
}

func (b *Builder) WithLength(length int) *Builder {
	b.err.Length = length
	return b
}

func (b *Builder) WithSuggestion(message string) *Builder {
	b.err.Suggestions = append(b.err.Suggestions, Suggestion{Message: message})
	return b
}

func (b *Builder) WithNote(note string) *Builder {
	b.err.Notes = append(b.err.Notes, note)
	return b
}

func (b *Builder) WithHelp(help string) *Builder {
	b.err.HelpText = help
	return b
}

func (b *Builder) Build() CompilerError {
	return b.err
}

// UnexpectedToken reports a token that does not fit the current grammar
// production.
func UnexpectedToken(got, expected string, pos Position) CompilerError {
	return New(ErrorUnexpectedToken, fmt.Sprintf("unexpected token %q, expected %s", got, expected), pos).
		WithHelp(GetErrorDescription(ErrorUnexpectedToken)).
		Build()
}

// InvalidIdentifier reports an identifier that fails the gpir identifier
// regex.
func InvalidIdentifier(name string, pos Position) CompilerError {
	return New(ErrorInvalidIdentifier, fmt.Sprintf("%q is not a valid identifier", name), pos).
		WithNote("identifiers must match [A-Za-z_][A-Za-z0-9_.]*").
		Build()
}

// UnknownPass reports a --passes entry that does not name a known pass.
func UnknownPass(name string, known []string) CompilerError {
	b := New(ErrorUnknownPass, fmt.Sprintf("unknown pass %q", name), Position{})
	if len(known) > 0 {
		b = b.WithNote("known passes: " + joinStrings(known, ", "))
	}
	return b.Build()
}

func joinStrings(ss []string, sep string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += sep
		}
		out += s
	}
	return out
}

package syntax

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"

	"gpir/internal/errors"
	"gpir/internal/ir"
)

var parser = participle.MustBuild[File](
	participle.Lexer(Lexer),
	participle.Elide("Whitespace", "Comment"),
	participle.Unquote("String"),
	participle.UseLookahead(4),
)

// Parse parses gpir's textual module form and converts it to a *ir.Module.
// filename is used only for diagnostics.
func Parse(filename, source string) (*ir.Module, error) {
	file, err := parser.ParseString(filename, source)
	if err != nil {
		return nil, err
	}
	return Convert(file)
}

// ReportParseError prints a caret-style diagnostic for an error returned by
// Parse, using the same Reporter that gpir-opt's unknown-pass error goes
// through. Errors that are not participle errors (such as an unknown name
// found during conversion) are printed as a single red line instead.
func ReportParseError(filename, source string, err error) {
	pe, ok := err.(participle.Error)
	if !ok {
		color.Red("%s: %s", filename, err)
		return
	}

	pos := pe.Position()
	cerr := errors.New(errors.ErrorUnexpectedToken, pe.Message(), errors.Position{
		Filename: filename,
		Line:     pos.Line,
		Column:   pos.Column,
	}).Build()

	fmt.Print(errors.NewReporter(filename, source).Format(cerr))
}

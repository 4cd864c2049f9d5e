package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReporterFormatsUnexpectedToken(t *testing.T) {
	source := "module \"demo\"\nstage 1\nfunction @f() -> bool {\n'entry:\n  retur\n}\n"

	reporter := NewReporter("demo.gpir", source)
	err := UnexpectedToken("retur", "'return'", Position{Filename: "demo.gpir", Line: 5, Column: 3})
	formatted := reporter.Format(err)

	assert.Contains(t, formatted, "error["+ErrorUnexpectedToken+"]")
	assert.Contains(t, formatted, "unexpected token")
	assert.Contains(t, formatted, "demo.gpir:5:3")
}

func TestInvalidIdentifierError(t *testing.T) {
	err := InvalidIdentifier("1bad", Position{Filename: "demo.gpir", Line: 2, Column: 10})

	assert.Equal(t, ErrorInvalidIdentifier, err.Code)
	assert.Contains(t, err.Message, "1bad")
	assert.Len(t, err.Notes, 1)
}

func TestUnknownPassError(t *testing.T) {
	err := UnknownPass("Frobnicate", []string{"DCE", "CSE"})

	assert.Equal(t, ErrorUnknownPass, err.Code)
	assert.Contains(t, err.Notes[0], "DCE")
	assert.Contains(t, err.Notes[0], "CSE")
}

func TestErrorCategories(t *testing.T) {
	assert.Equal(t, "Lexical", GetErrorCategory(ErrorInvalidEscape))
	assert.Equal(t, "Parse", GetErrorCategory(ErrorUnexpectedToken))
	assert.Equal(t, "CLI", GetErrorCategory(ErrorUnknownPass))
}
